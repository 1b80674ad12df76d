package model

import (
	"sort"

	"github.com/tabsplit-dev/tabsplit/internal/money"
)

// ParticipantShare is one person's computed share of a receipt. All fields
// are rounded to the minor currency unit.
type ParticipantShare struct {
	ItemsSubtotal      money.Money `json:"items_subtotal"`
	TaxShare           money.Money `json:"tax_share"`
	TipShare           money.Money `json:"tip_share"`
	CashbackAdjustment money.Money `json:"cashback_adjustment"`
	TotalOwed          money.Money `json:"total_owed"`
}

// SettlementBreakdown is the output of an allocation run. It is recomputed
// from scratch on every input change, never mutated in place.
type SettlementBreakdown struct {
	Currency string                      `json:"currency"`
	Shares   map[string]ParticipantShare `json:"shares"` // keyed by participant ID
	// Total is the authoritative receipt total the shares reconcile to.
	Total money.Money `json:"total"`
	// Warnings carries non-fatal findings, e.g. an itemized sum that
	// disagrees with the stated total beyond tolerance.
	Warnings []string `json:"warnings,omitempty"`
}

// ParticipantIDs returns the share keys in sorted order, the ordering used
// for deterministic tie-breaking.
func (b SettlementBreakdown) ParticipantIDs() []string {
	ids := make([]string, 0, len(b.Shares))
	for id := range b.Shares {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Transfer is a single payment owed from one participant to another.
type Transfer struct {
	FromID string      `json:"from_id"`
	ToID   string      `json:"to_id"`
	Amount money.Money `json:"amount"`
}
