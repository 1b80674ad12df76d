// Package plan reads and writes the human-authored inputs to an allocation
// run: the split plan (participants, item assignments, policies, cashback)
// as YAML, and verified or candidate receipts as JSON.
package plan

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/tabsplit-dev/tabsplit/internal/model"
	"github.com/tabsplit-dev/tabsplit/internal/money"
	"github.com/tabsplit-dev/tabsplit/internal/split"
)

// Cashback is the plan-file form of a cashback entry. The amount is a bare
// decimal string; the currency comes from the receipt at allocation time.
type Cashback struct {
	Amount string `yaml:"amount"`
	Payer  string `yaml:"payer"`
}

// Plan is the top-level split-plan file.
type Plan struct {
	Participants []model.Participant             `yaml:"participants"`
	Assignments  map[string]split.ItemAssignment `yaml:"assignments"`
	TaxPolicy    string                          `yaml:"tax_policy,omitempty"`
	TipPolicy    string                          `yaml:"tip_policy,omitempty"`
	Cashback     *Cashback                       `yaml:"cashback,omitempty"`
	TotalSource  string                          `yaml:"total_source,omitempty"`
	Tolerance    string                          `yaml:"tolerance,omitempty"`
}

// Load reads a split-plan YAML file from disk.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan: %w", err)
	}
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing plan: %w", err)
	}
	return &p, nil
}

// Save writes a Plan to a YAML file.
func Save(path string, p *Plan) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling plan: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing plan: %w", err)
	}
	return nil
}

// Config materializes the plan's options into a split.Config, binding the
// cashback amount to the receipt's currency.
func (p *Plan) Config(currency string) (split.Config, error) {
	cfg := split.Config{
		TaxPolicy:   split.Policy(p.TaxPolicy),
		TipPolicy:   split.Policy(p.TipPolicy),
		TotalSource: split.TotalSource(p.TotalSource),
	}
	if p.Tolerance != "" {
		tol, err := decimal.NewFromString(p.Tolerance)
		if err != nil {
			return split.Config{}, fmt.Errorf("parsing tolerance %q: %w", p.Tolerance, err)
		}
		cfg.Tolerance = tol
	}
	if p.Cashback != nil {
		amount, err := money.Parse(p.Cashback.Amount, currency)
		if err != nil {
			return split.Config{}, fmt.Errorf("parsing cashback amount: %w", err)
		}
		cfg.Cashback = &split.Cashback{Amount: amount, PayerID: p.Cashback.Payer}
	}
	return cfg, nil
}
