package model

import (
	"fmt"
	"time"

	"github.com/tabsplit-dev/tabsplit/internal/money"
)

// ReceiptItem is a single line on a receipt. Amount is the line's total
// cost, already inclusive of quantity.
type ReceiptItem struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Amount   money.Money `json:"amount"`
	Quantity int         `json:"quantity"`
}

// Receipt is a verified, merchant-agnostic structured receipt. It is
// read-only input to the allocation engine: callers pass fresh snapshots,
// never mutate one mid-computation.
type Receipt struct {
	ID       string        `json:"id,omitempty"`
	Merchant string        `json:"merchant,omitempty"`
	Date     time.Time     `json:"date,omitempty"` // zero = unknown
	Items    []ReceiptItem `json:"items"`
	Tax      money.Money   `json:"tax"`
	Tip      money.Money   `json:"tip"`
	Total    money.Money   `json:"total"`
	Currency string        `json:"currency"`
}

// ItemsTotal sums all line item amounts.
func (r Receipt) ItemsTotal() (money.Money, error) {
	sum := money.Zero(r.Currency)
	for _, item := range r.Items {
		var err error
		sum, err = sum.Add(item.Amount)
		if err != nil {
			return money.Money{}, fmt.Errorf("item %q: %w", item.Name, err)
		}
	}
	return sum, nil
}

// Validate checks structural invariants: a valid shared currency, at least
// one item, unique item IDs, positive quantities and non-negative amounts.
// The soft items+tax+tip vs total invariant is the engine's concern, not
// checked here.
func (r Receipt) Validate() error {
	if !money.ValidCurrency(r.Currency) {
		return fmt.Errorf("invalid receipt currency %q", r.Currency)
	}
	if len(r.Items) == 0 {
		return fmt.Errorf("receipt has no items")
	}
	for _, m := range []struct {
		name  string
		value money.Money
	}{
		{"tax", r.Tax},
		{"tip", r.Tip},
		{"total", r.Total},
	} {
		if m.value.Currency != r.Currency {
			return money.CurrencyMismatchError{Left: r.Currency, Right: m.value.Currency}
		}
		if m.value.IsNegative() {
			return fmt.Errorf("receipt %s is negative: %s", m.name, m.value)
		}
	}
	seen := make(map[string]bool, len(r.Items))
	for i, item := range r.Items {
		if item.ID == "" {
			return fmt.Errorf("item %d (%q) has no ID", i, item.Name)
		}
		if seen[item.ID] {
			return fmt.Errorf("duplicate item ID %q", item.ID)
		}
		seen[item.ID] = true
		if item.Amount.Currency != r.Currency {
			return money.CurrencyMismatchError{Left: r.Currency, Right: item.Amount.Currency}
		}
		if item.Amount.IsNegative() {
			return fmt.Errorf("item %q has negative amount %s", item.Name, item.Amount)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("item %q has non-positive quantity %d", item.Name, item.Quantity)
		}
	}
	return nil
}
