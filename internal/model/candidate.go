package model

import (
	"time"

	"github.com/tabsplit-dev/tabsplit/internal/money"
)

// Receipt field names, as reported in CandidateReceipt.Missing.
const (
	FieldMerchant = "merchant"
	FieldDate     = "date"
	FieldTotal    = "total"
	FieldTax      = "tax"
	FieldTip      = "tip"
	FieldItems    = "items"
)

// CandidateItem is an extracted line item awaiting human confirmation.
type CandidateItem struct {
	Name   string      `json:"name"`
	Amount money.Money `json:"amount"`
}

// CandidateReceipt holds untrusted field extractions from receipt text.
// Fields the language model could not determine are zero-valued and listed
// in Missing. A CandidateReceipt never feeds the allocation engine
// directly; it must be corrected and promoted to a Receipt first.
type CandidateReceipt struct {
	Merchant string          `json:"merchant,omitempty"`
	Date     time.Time       `json:"date,omitempty"`
	Total    money.Money     `json:"total"`
	Tax      money.Money     `json:"tax"`
	Tip      money.Money     `json:"tip"`
	Items    []CandidateItem `json:"items"`
	Missing  []string        `json:"missing,omitempty"`
}

// IsMissing reports whether the named field was flagged as undetermined.
func (c CandidateReceipt) IsMissing(field string) bool {
	for _, f := range c.Missing {
		if f == field {
			return true
		}
	}
	return false
}
