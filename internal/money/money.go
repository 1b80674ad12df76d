// Package money provides a fixed-precision monetary value with an attached
// ISO 4217 currency code. Arithmetic between values of different currencies
// is rejected rather than coerced.
package money

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// CurrencyMismatchError reports arithmetic between two different currencies.
type CurrencyMismatchError struct {
	Left  string
	Right string
}

func (e CurrencyMismatchError) Error() string {
	return fmt.Sprintf("currency mismatch: %s vs %s", e.Left, e.Right)
}

// minorUnits lists currencies whose minor unit is not the usual 2 digits.
var minorUnits = map[string]int32{
	"JPY": 0, "KRW": 0, "VND": 0, "CLP": 0, "ISK": 0,
	"BHD": 3, "KWD": 3, "OMR": 3, "JOD": 3, "TND": 3,
}

// Exponent returns the number of minor-unit digits for a currency code.
func Exponent(currency string) int32 {
	if exp, ok := minorUnits[currency]; ok {
		return exp
	}
	return 2
}

// ValidCurrency reports whether code looks like an ISO 4217 currency code
// (three uppercase ASCII letters).
func ValidCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	return true
}

// Money is an exact decimal amount in a single currency.
type Money struct {
	Amount   decimal.Decimal
	Currency string
}

// New creates a Money from a decimal amount and currency code.
func New(amount decimal.Decimal, currency string) Money {
	return Money{Amount: amount, Currency: currency}
}

// Zero returns a zero amount in the given currency.
func Zero(currency string) Money {
	return Money{Amount: decimal.Zero, Currency: currency}
}

// Parse creates a Money from a decimal string like "12.34".
func Parse(amount, currency string) (Money, error) {
	if !ValidCurrency(currency) {
		return Money{}, fmt.Errorf("invalid currency code %q", currency)
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("parsing amount %q: %w", amount, err)
	}
	return Money{Amount: d, Currency: currency}, nil
}

// Add returns m + o. Fails if the currencies differ.
func (m Money) Add(o Money) (Money, error) {
	if m.Currency != o.Currency {
		return Money{}, CurrencyMismatchError{Left: m.Currency, Right: o.Currency}
	}
	return Money{Amount: m.Amount.Add(o.Amount), Currency: m.Currency}, nil
}

// Sub returns m - o. Fails if the currencies differ. The result may be
// negative; callers decide whether that is acceptable.
func (m Money) Sub(o Money) (Money, error) {
	if m.Currency != o.Currency {
		return Money{}, CurrencyMismatchError{Left: m.Currency, Right: o.Currency}
	}
	return Money{Amount: m.Amount.Sub(o.Amount), Currency: m.Currency}, nil
}

// Mul scales the amount by an arbitrary decimal factor, retaining full
// precision. No rounding is applied.
func (m Money) Mul(factor decimal.Decimal) Money {
	return Money{Amount: m.Amount.Mul(factor), Currency: m.Currency}
}

// Scale multiplies the amount by the rational num/den without pre-rounding.
// Panics if den is zero, matching decimal.Div.
func (m Money) Scale(num, den int64) Money {
	scaled := m.Amount.Mul(decimal.NewFromInt(num)).Div(decimal.NewFromInt(den))
	return Money{Amount: scaled, Currency: m.Currency}
}

// Round rounds the amount to the currency's minor unit using
// round-half-to-even.
func (m Money) Round() Money {
	return Money{Amount: m.Amount.RoundBank(Exponent(m.Currency)), Currency: m.Currency}
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m.Amount.IsNegative()
}

// Cmp compares amounts. Fails if the currencies differ.
func (m Money) Cmp(o Money) (int, error) {
	if m.Currency != o.Currency {
		return 0, CurrencyMismatchError{Left: m.Currency, Right: o.Currency}
	}
	return m.Amount.Cmp(o.Amount), nil
}

// Equal reports whether two values have the same currency and equal amounts.
func (m Money) Equal(o Money) bool {
	return m.Currency == o.Currency && m.Amount.Equal(o.Amount)
}

// String formats the amount at the currency's minor unit, e.g. "12.34 USD".
func (m Money) String() string {
	return m.Amount.StringFixed(Exponent(m.Currency)) + " " + m.Currency
}

type moneyJSON struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// MarshalJSON encodes the amount as a string to avoid float truncation.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{Amount: m.Amount.String(), Currency: m.Currency})
}

// UnmarshalJSON decodes {"amount": "12.34", "currency": "USD"}.
func (m *Money) UnmarshalJSON(data []byte) error {
	var raw moneyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := Parse(raw.Amount, raw.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
