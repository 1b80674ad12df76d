package split

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tabsplit-dev/tabsplit/internal/model"
	"github.com/tabsplit-dev/tabsplit/internal/money"
)

// Allocate computes each participant's share of a verified receipt. It is a
// pure function: identical inputs always produce identical output, and the
// inputs are never mutated. The returned breakdown's TotalOwed values sum
// to the authoritative total exactly, to the minor currency unit.
func Allocate(receipt model.Receipt, participants []model.Participant, assignment Assignment, cfg Config) (model.SettlementBreakdown, error) {
	cfg, err := cfg.normalize()
	if err != nil {
		return model.SettlementBreakdown{}, err
	}
	if err := receipt.Validate(); err != nil {
		return model.SettlementBreakdown{}, fmt.Errorf("invalid receipt: %w", err)
	}
	if len(participants) == 0 {
		return model.SettlementBreakdown{}, fmt.Errorf("no participants")
	}

	known := make(map[string]bool, len(participants))
	for _, p := range participants {
		if p.ID == "" {
			return model.SettlementBreakdown{}, fmt.Errorf("participant %q has no ID", p.Name)
		}
		if known[p.ID] {
			return model.SettlementBreakdown{}, fmt.Errorf("duplicate participant ID %q", p.ID)
		}
		known[p.ID] = true
	}

	if err := checkAssignment(receipt, assignment, known); err != nil {
		return model.SettlementBreakdown{}, err
	}

	ids := make([]string, 0, len(participants))
	for _, p := range participants {
		ids = append(ids, p.ID)
	}
	sort.Strings(ids)

	// Step 1: exact per-participant item subtotals, no intermediate
	// rounding. Fractional shares accumulate at full decimal precision.
	subtotals := make(map[string]decimal.Decimal, len(ids))
	for _, id := range ids {
		subtotals[id] = decimal.Zero
	}
	itemsTotal := decimal.Zero
	for _, item := range receipt.Items {
		itemsTotal = itemsTotal.Add(item.Amount.Amount)
		a := assignment[item.ID]
		if len(a.Sharers) > 0 {
			share := item.Amount.Amount.Div(decimal.NewFromInt(int64(len(a.Sharers))))
			for _, id := range a.Sharers {
				subtotals[id] = subtotals[id].Add(share)
			}
			continue
		}
		weightSum := int64(0)
		for _, w := range a.Weights {
			weightSum += int64(w)
		}
		for id, w := range a.Weights {
			share := item.Amount.Amount.
				Mul(decimal.NewFromInt(int64(w))).
				Div(decimal.NewFromInt(weightSum))
			subtotals[id] = subtotals[id].Add(share)
		}
	}

	// Steps 3-4: distribute tax and tip by their configured policies.
	taxShares, err := distribute(ids, subtotals, itemsTotal, receipt.Tax.Amount, cfg.TaxPolicy)
	if err != nil {
		return model.SettlementBreakdown{}, fmt.Errorf("distributing tax: %w", err)
	}
	tipShares, err := distribute(ids, subtotals, itemsTotal, receipt.Tip.Amount, cfg.TipPolicy)
	if err != nil {
		return model.SettlementBreakdown{}, fmt.Errorf("distributing tip: %w", err)
	}

	// Step 5: provisional totals, still unrounded.
	provisional := make(map[string]decimal.Decimal, len(ids))
	for _, id := range ids {
		provisional[id] = subtotals[id].Add(taxShares[id]).Add(tipShares[id])
	}

	// Step 7: the stated total is authoritative by default; the itemized
	// sum can be chosen instead when the extraction is not trusted.
	itemizedSum := itemsTotal.Add(receipt.Tax.Amount).Add(receipt.Tip.Amount)
	authoritative := receipt.Total
	if cfg.TotalSource == TotalItemized {
		authoritative = money.New(itemizedSum, receipt.Currency)
	}

	var warnings []string
	if itemizedSum.Sub(receipt.Total.Amount).Abs().GreaterThan(cfg.Tolerance) {
		warnings = append(warnings, fmt.Sprintf(
			"itemized sum %s disagrees with stated total %s; shares reconciled against %s",
			money.New(itemizedSum, receipt.Currency), receipt.Total, authoritative))
	}

	// Step 6: round each vector to minor units, conserving its own sum.
	roundedItems, err := apportion(ids, subtotals, money.New(itemsTotal, receipt.Currency))
	if err != nil {
		return model.SettlementBreakdown{}, err
	}
	roundedTax, err := apportion(ids, taxShares, receipt.Tax)
	if err != nil {
		return model.SettlementBreakdown{}, err
	}
	roundedTip, err := apportion(ids, tipShares, receipt.Tip)
	if err != nil {
		return model.SettlementBreakdown{}, err
	}
	roundedTotals, err := apportion(ids, provisional, authoritative)
	if err != nil {
		return model.SettlementBreakdown{}, err
	}

	breakdown := model.SettlementBreakdown{
		Currency: receipt.Currency,
		Shares:   make(map[string]model.ParticipantShare, len(ids)),
		Total:    authoritative.Round(),
		Warnings: warnings,
	}
	for _, id := range ids {
		share := model.ParticipantShare{
			ItemsSubtotal:      roundedItems[id],
			TaxShare:           roundedTax[id],
			TipShare:           roundedTip[id],
			CashbackAdjustment: money.Zero(receipt.Currency),
			TotalOwed:          roundedTotals[id],
		}
		if err := checkNonNegative(id, share); err != nil {
			return model.SettlementBreakdown{}, err
		}
		breakdown.Shares[id] = share
	}

	if cfg.Cashback != nil {
		return DistributeCashback(breakdown, *cfg.Cashback)
	}
	return breakdown, nil
}

// distribute splits a charge across participants by policy, returning
// exact unrounded shares.
func distribute(ids []string, subtotals map[string]decimal.Decimal, itemsTotal, charge decimal.Decimal, policy Policy) (map[string]decimal.Decimal, error) {
	shares := make(map[string]decimal.Decimal, len(ids))
	if charge.IsZero() {
		for _, id := range ids {
			shares[id] = decimal.Zero
		}
		return shares, nil
	}

	switch policy {
	case PolicyProportional:
		if itemsTotal.IsZero() {
			return nil, fmt.Errorf("items total is zero; proportional shares are undefined")
		}
		for _, id := range ids {
			shares[id] = charge.Mul(subtotals[id]).Div(itemsTotal)
		}
	case PolicyEqual:
		// Evenly across participants who ordered anything.
		var eligible []string
		for _, id := range ids {
			if subtotals[id].IsPositive() {
				eligible = append(eligible, id)
			}
		}
		if len(eligible) == 0 {
			return nil, fmt.Errorf("no participant has a positive items subtotal")
		}
		per := charge.Div(decimal.NewFromInt(int64(len(eligible))))
		for _, id := range ids {
			shares[id] = decimal.Zero
		}
		for _, id := range eligible {
			shares[id] = per
		}
	default:
		return nil, fmt.Errorf("unknown split policy %q", policy)
	}
	return shares, nil
}

// checkAssignment enforces the hard precondition: every item has exactly
// one non-empty assignment and every reference resolves.
func checkAssignment(receipt model.Receipt, assignment Assignment, known map[string]bool) error {
	itemNames := make(map[string]string, len(receipt.Items))
	var unassigned []string
	for _, item := range receipt.Items {
		itemNames[item.ID] = item.Name
		a, ok := assignment[item.ID]
		if !ok || (len(a.Sharers) == 0 && len(a.Weights) == 0) {
			unassigned = append(unassigned, item.Name)
			continue
		}
		if err := a.validate(item.Name); err != nil {
			return err
		}
		for _, id := range a.participantIDs() {
			if !known[id] {
				return fmt.Errorf("item %q assigned to unknown participant %q", item.Name, id)
			}
		}
	}
	if len(unassigned) > 0 {
		return IncompleteAssignmentError{Items: unassigned}
	}
	for itemID := range assignment {
		if _, ok := itemNames[itemID]; !ok {
			return fmt.Errorf("assignment references unknown item %q", itemID)
		}
	}
	return nil
}

func checkNonNegative(participantID string, share model.ParticipantShare) error {
	for _, f := range []struct {
		name  string
		value money.Money
	}{
		{"items_subtotal", share.ItemsSubtotal},
		{"tax_share", share.TaxShare},
		{"tip_share", share.TipShare},
		{"total_owed", share.TotalOwed},
	} {
		if f.value.IsNegative() {
			return NegativeShareError{ParticipantID: participantID, Field: f.name, Amount: f.value}
		}
	}
	return nil
}
