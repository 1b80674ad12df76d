package split

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tabsplit-dev/tabsplit/internal/model"
	"github.com/tabsplit-dev/tabsplit/internal/money"
)

// DistributeCashback redistributes a card reward earned by the payer back
// across all participants, in proportion to their share of the pre-cashback
// bill. The adjustments are reconciled with the same largest-remainder rule
// as allocation, so they sum to the cashback amount exactly. A fresh
// breakdown is returned; the input is not mutated.
func DistributeCashback(breakdown model.SettlementBreakdown, cb Cashback) (model.SettlementBreakdown, error) {
	if cb.Amount.Currency != breakdown.Currency {
		return model.SettlementBreakdown{}, money.CurrencyMismatchError{
			Left: breakdown.Currency, Right: cb.Amount.Currency,
		}
	}
	if cb.Amount.IsNegative() {
		return model.SettlementBreakdown{}, fmt.Errorf("cashback amount is negative: %s", cb.Amount)
	}
	if _, ok := breakdown.Shares[cb.PayerID]; !ok {
		return model.SettlementBreakdown{}, fmt.Errorf("cashback payer %q is not a participant", cb.PayerID)
	}
	if breakdown.Total.IsZero() {
		return model.SettlementBreakdown{}, fmt.Errorf("cannot distribute cashback over a zero total")
	}

	ids := breakdown.ParticipantIDs()
	exact := make(map[string]decimal.Decimal, len(ids))
	for _, id := range ids {
		exact[id] = cb.Amount.Amount.
			Mul(breakdown.Shares[id].TotalOwed.Amount).
			Div(breakdown.Total.Amount)
	}
	adjustments, err := apportion(ids, exact, cb.Amount)
	if err != nil {
		return model.SettlementBreakdown{}, err
	}

	out := model.SettlementBreakdown{
		Currency: breakdown.Currency,
		Shares:   make(map[string]model.ParticipantShare, len(ids)),
		Total:    breakdown.Total,
		Warnings: breakdown.Warnings,
	}
	for _, id := range ids {
		share := breakdown.Shares[id]
		adj := adjustments[id]
		owed, err := share.TotalOwed.Sub(adj)
		if err != nil {
			return model.SettlementBreakdown{}, err
		}
		share.CashbackAdjustment = adj
		share.TotalOwed = owed
		if owed.IsNegative() {
			return model.SettlementBreakdown{}, NegativeShareError{
				ParticipantID: id, Field: "total_owed", Amount: owed,
			}
		}
		out.Shares[id] = share
	}
	return out, nil
}

// Transfers derives the settlement ledger: every participant other than the
// payer owes the payer their adjusted total. Zero-owed participants are
// omitted. Output is ordered by participant ID.
func Transfers(breakdown model.SettlementBreakdown, payerID string) ([]model.Transfer, error) {
	if _, ok := breakdown.Shares[payerID]; !ok {
		return nil, fmt.Errorf("payer %q is not a participant", payerID)
	}
	var transfers []model.Transfer
	for _, id := range breakdown.ParticipantIDs() {
		if id == payerID {
			continue
		}
		owed := breakdown.Shares[id].TotalOwed
		if owed.IsZero() {
			continue
		}
		transfers = append(transfers, model.Transfer{FromID: id, ToID: payerID, Amount: owed})
	}
	sort.Slice(transfers, func(i, j int) bool { return transfers[i].FromID < transfers[j].FromID })
	return transfers, nil
}
