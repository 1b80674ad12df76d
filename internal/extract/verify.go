package extract

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/tabsplit-dev/tabsplit/internal/model"
	"github.com/tabsplit-dev/tabsplit/internal/money"
)

// Verify promotes a corrected candidate to a verified Receipt. It is the
// sign-off step after human review: the total and at least one item must be
// present, every amount must share one currency, and structural receipt
// invariants must hold. Item and receipt IDs are assigned here.
func Verify(c model.CandidateReceipt) (model.Receipt, error) {
	if c.Total.Currency == "" || c.IsMissing(model.FieldTotal) {
		return model.Receipt{}, fmt.Errorf("candidate has no total; correct it before verifying")
	}
	if len(c.Items) == 0 {
		return model.Receipt{}, fmt.Errorf("candidate has no line items; correct it before verifying")
	}
	currency := c.Total.Currency

	tax := c.Tax
	if tax.Currency == "" {
		tax = money.Zero(currency)
	}
	tip := c.Tip
	if tip.Currency == "" {
		tip = money.Zero(currency)
	}

	r := model.Receipt{
		ID:       uuid.NewString(),
		Merchant: c.Merchant,
		Date:     c.Date,
		Tax:      tax,
		Tip:      tip,
		Total:    c.Total,
		Currency: currency,
	}
	for _, it := range c.Items {
		r.Items = append(r.Items, model.ReceiptItem{
			ID:       uuid.NewString(),
			Name:     it.Name,
			Amount:   it.Amount,
			Quantity: 1,
		})
	}
	if err := r.Validate(); err != nil {
		return model.Receipt{}, fmt.Errorf("verifying candidate: %w", err)
	}
	return r, nil
}
