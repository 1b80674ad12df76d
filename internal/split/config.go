package split

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tabsplit-dev/tabsplit/internal/money"
)

// Policy selects how a shared charge (tax or tip) is divided.
type Policy string

const (
	// PolicyProportional divides the charge in proportion to each
	// participant's subtotal of assigned items.
	PolicyProportional Policy = "proportional"
	// PolicyEqual divides the charge evenly across all participants who
	// ordered anything.
	PolicyEqual Policy = "equal"
)

// TotalSource selects which total the shares reconcile against when the
// itemized sum and the stated receipt total disagree.
type TotalSource string

const (
	// TotalStated trusts the receipt's extracted total field.
	TotalStated TotalSource = "stated-total"
	// TotalItemized trusts the sum of line items plus tax plus tip.
	TotalItemized TotalSource = "itemized-sum"
)

// Cashback describes a card reward earned by the payer, to be redistributed
// across participants in proportion to their share of the bill.
type Cashback struct {
	Amount  money.Money `json:"amount" yaml:"amount"`
	PayerID string      `json:"payer_id" yaml:"payer"`
}

// Config holds the closed set of allocation options.
type Config struct {
	TaxPolicy   Policy          `json:"tax_policy" yaml:"tax_policy"`
	TipPolicy   Policy          `json:"tip_policy" yaml:"tip_policy"`
	Cashback    *Cashback       `json:"cashback,omitempty" yaml:"cashback,omitempty"`
	TotalSource TotalSource     `json:"total_source,omitempty" yaml:"total_source,omitempty"`
	Tolerance   decimal.Decimal `json:"tolerance,omitempty" yaml:"tolerance,omitempty"`
}

// DefaultTolerance is the allowed gap between the itemized sum and the
// stated total before a warning is attached. Extraction is fallible, so a
// single minor unit of slack is always permitted.
var DefaultTolerance = decimal.RequireFromString("0.01")

// DefaultConfig returns proportional tax and tip against the stated total.
func DefaultConfig() Config {
	return Config{
		TaxPolicy:   PolicyProportional,
		TipPolicy:   PolicyProportional,
		TotalSource: TotalStated,
		Tolerance:   DefaultTolerance,
	}
}

// normalize fills zero values with defaults and rejects unknown options.
func (c Config) normalize() (Config, error) {
	if c.TaxPolicy == "" {
		c.TaxPolicy = PolicyProportional
	}
	if c.TipPolicy == "" {
		c.TipPolicy = PolicyProportional
	}
	if c.TotalSource == "" {
		c.TotalSource = TotalStated
	}
	if c.Tolerance.IsZero() {
		c.Tolerance = DefaultTolerance
	}
	for _, p := range []Policy{c.TaxPolicy, c.TipPolicy} {
		if p != PolicyProportional && p != PolicyEqual {
			return Config{}, fmt.Errorf("unknown split policy %q", p)
		}
	}
	if c.TotalSource != TotalStated && c.TotalSource != TotalItemized {
		return Config{}, fmt.Errorf("unknown total source %q", c.TotalSource)
	}
	if c.Tolerance.IsNegative() {
		return Config{}, fmt.Errorf("tolerance must not be negative")
	}
	return c, nil
}
