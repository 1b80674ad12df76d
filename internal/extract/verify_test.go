package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabsplit-dev/tabsplit/internal/model"
	"github.com/tabsplit-dev/tabsplit/internal/money"
)

func candidate(t *testing.T) model.CandidateReceipt {
	t.Helper()
	usd := func(s string) money.Money {
		m, err := money.Parse(s, "USD")
		require.NoError(t, err)
		return m
	}
	return model.CandidateReceipt{
		Merchant: "Test Diner",
		Total:    usd("100.00"),
		Tax:      usd("8.00"),
		Tip:      usd("12.00"),
		Items: []model.CandidateItem{
			{Name: "Dinner", Amount: usd("80.00")},
		},
	}
}

func TestVerify(t *testing.T) {
	r, err := Verify(candidate(t))
	require.NoError(t, err)

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "USD", r.Currency)
	assert.Equal(t, "Test Diner", r.Merchant)
	require.Len(t, r.Items, 1)
	assert.NotEmpty(t, r.Items[0].ID)
	assert.Equal(t, 1, r.Items[0].Quantity)
	require.NoError(t, r.Validate())
}

func TestVerify_MissingTotal(t *testing.T) {
	c := candidate(t)
	c.Total = money.Money{}
	c.Missing = []string{model.FieldTotal}

	_, err := Verify(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "total")
}

func TestVerify_NoItems(t *testing.T) {
	c := candidate(t)
	c.Items = nil

	_, err := Verify(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "items")
}

func TestVerify_MissingTaxDefaultsToZero(t *testing.T) {
	c := candidate(t)
	c.Tax = money.Money{}
	c.Missing = []string{model.FieldTax}

	r, err := Verify(c)
	require.NoError(t, err)
	assert.True(t, r.Tax.IsZero())
	assert.Equal(t, "USD", r.Tax.Currency)
}

func TestVerify_MixedCurrencies(t *testing.T) {
	eur, err := money.Parse("5.00", "EUR")
	require.NoError(t, err)

	c := candidate(t)
	c.Items = append(c.Items, model.CandidateItem{Name: "Import", Amount: eur})

	_, err = Verify(c)
	require.Error(t, err)

	var mismatch money.CurrencyMismatchError
	assert.ErrorAs(t, err, &mismatch)
}
