package split

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabsplit-dev/tabsplit/internal/model"
	"github.com/tabsplit-dev/tabsplit/internal/money"
)

func breakdown7030(t *testing.T) model.SettlementBreakdown {
	t.Helper()
	r := receipt([]model.ReceiptItem{
		item("i1", "Entree", "70.00"),
		item("i2", "Dessert", "30.00"),
	}, "0.00", "0.00", "100.00")
	asn := Assignment{
		"i1": {Sharers: []string{"alice"}},
		"i2": {Sharers: []string{"bob"}},
	}
	b, err := Allocate(r, []model.Participant{alice, bob}, asn, DefaultConfig())
	require.NoError(t, err)
	return b
}

func TestDistributeCashback_Proportional(t *testing.T) {
	b := breakdown7030(t)

	out, err := DistributeCashback(b, Cashback{Amount: usd("5.00"), PayerID: "alice"})
	require.NoError(t, err)

	assert.True(t, out.Shares["alice"].CashbackAdjustment.Equal(usd("3.50")))
	assert.True(t, out.Shares["bob"].CashbackAdjustment.Equal(usd("1.50")))
	assert.True(t, out.Shares["alice"].TotalOwed.Equal(usd("66.50")))
	assert.True(t, out.Shares["bob"].TotalOwed.Equal(usd("28.50")))
}

func TestDistributeCashback_Conservation(t *testing.T) {
	// An awkward amount still sums back exactly.
	b := breakdown7030(t)

	out, err := DistributeCashback(b, Cashback{Amount: usd("0.05"), PayerID: "bob"})
	require.NoError(t, err)

	sum := money.Zero("USD")
	for _, id := range out.ParticipantIDs() {
		sum, err = sum.Add(out.Shares[id].CashbackAdjustment)
		require.NoError(t, err)
	}
	assert.True(t, sum.Equal(usd("0.05")), "adjustments sum to %s", sum)
}

func TestDistributeCashback_ViaConfig(t *testing.T) {
	r := receipt([]model.ReceiptItem{
		item("i1", "Entree", "70.00"),
		item("i2", "Dessert", "30.00"),
	}, "0.00", "0.00", "100.00")
	asn := Assignment{
		"i1": {Sharers: []string{"alice"}},
		"i2": {Sharers: []string{"bob"}},
	}
	cfg := DefaultConfig()
	cfg.Cashback = &Cashback{Amount: usd("5.00"), PayerID: "alice"}

	b, err := Allocate(r, []model.Participant{alice, bob}, asn, cfg)
	require.NoError(t, err)
	assert.True(t, sumOwed(t, b).Equal(usd("95.00")))
}

func TestDistributeCashback_DoesNotMutateInput(t *testing.T) {
	b := breakdown7030(t)
	before := b.Shares["alice"].TotalOwed

	_, err := DistributeCashback(b, Cashback{Amount: usd("5.00"), PayerID: "alice"})
	require.NoError(t, err)
	assert.True(t, b.Shares["alice"].TotalOwed.Equal(before))
	assert.True(t, b.Shares["alice"].CashbackAdjustment.IsZero())
}

func TestDistributeCashback_UnknownPayer(t *testing.T) {
	b := breakdown7030(t)
	_, err := DistributeCashback(b, Cashback{Amount: usd("5.00"), PayerID: "mallory"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mallory")
}

func TestDistributeCashback_CurrencyMismatch(t *testing.T) {
	b := breakdown7030(t)
	eur, err := money.Parse("5.00", "EUR")
	require.NoError(t, err)

	_, err = DistributeCashback(b, Cashback{Amount: eur, PayerID: "alice"})
	var mismatch money.CurrencyMismatchError
	assert.ErrorAs(t, err, &mismatch)
}

func TestDistributeCashback_ExceedsBill(t *testing.T) {
	b := breakdown7030(t)
	_, err := DistributeCashback(b, Cashback{Amount: usd("150.00"), PayerID: "alice"})

	var negative NegativeShareError
	assert.ErrorAs(t, err, &negative)
}

func TestTransfers(t *testing.T) {
	b := breakdown7030(t)

	transfers, err := Transfers(b, "alice")
	require.NoError(t, err)
	require.Len(t, transfers, 1)
	assert.Equal(t, "bob", transfers[0].FromID)
	assert.Equal(t, "alice", transfers[0].ToID)
	assert.True(t, transfers[0].Amount.Equal(usd("30.00")))
}

func TestTransfers_UnknownPayer(t *testing.T) {
	b := breakdown7030(t)
	_, err := Transfers(b, "mallory")
	assert.Error(t, err)
}
