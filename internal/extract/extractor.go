package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tabsplit-dev/tabsplit/internal/model"
	"github.com/tabsplit-dev/tabsplit/internal/money"
)

// JSON schemas passed to the model as the structured-output format, one per
// field shape.
var (
	merchantSchema = json.RawMessage(`{
		"type": "object",
		"properties": {"name": {"type": "string"}},
		"required": ["name"]
	}`)
	dateSchema = json.RawMessage(`{
		"type": "object",
		"properties": {"date": {"type": "string"}},
		"required": ["date"]
	}`)
	amountSchema = json.RawMessage(`{
		"type": "object",
		"properties": {
			"currency": {"type": "string"},
			"amount": {"type": "number"}
		},
		"required": ["currency", "amount"]
	}`)
	itemsSchema = json.RawMessage(`{
		"type": "object",
		"properties": {
			"items": {
				"type": "array",
				"items": {
					"type": "object",
					"properties": {
						"name": {"type": "string"},
						"currency": {"type": "string"},
						"amount": {"type": "number"}
					},
					"required": ["name", "currency", "amount"]
				}
			}
		},
		"required": ["items"]
	}`)
)

type merchantResponse struct {
	Name string `json:"name"`
}

type dateResponse struct {
	Date string `json:"date"`
}

type amountResponse struct {
	Currency string      `json:"currency"`
	Amount   json.Number `json:"amount"`
}

type itemsResponse struct {
	Items []struct {
		Name     string      `json:"name"`
		Currency string      `json:"currency"`
		Amount   json.Number `json:"amount"`
	} `json:"items"`
}

// Extractor runs the per-field extraction prompts against a chat model.
type Extractor struct {
	client  ChatClient
	prompts Prompts
}

// New creates an Extractor. Pass LoadPrompts("") for the default prompts.
func New(client ChatClient, prompts Prompts) *Extractor {
	return &Extractor{client: client, prompts: prompts}
}

// Extract runs all six field extractions over the recognized receipt text.
// Fields the model reports as undeterminable are zero-valued and listed in
// the candidate's Missing set; only transport or decode failures return an
// error.
func (e *Extractor) Extract(ctx context.Context, receiptText string) (model.CandidateReceipt, error) {
	var c model.CandidateReceipt

	missing := func(field string) {
		c.Missing = append(c.Missing, field)
	}

	var merchant merchantResponse
	if err := e.extractField(ctx, "extract_merchant", receiptText, merchantSchema, &merchant); err != nil {
		return model.CandidateReceipt{}, err
	}
	if merchant.Name == "" {
		missing(model.FieldMerchant)
	}
	c.Merchant = merchant.Name

	var date dateResponse
	if err := e.extractField(ctx, "extract_date", receiptText, dateSchema, &date); err != nil {
		return model.CandidateReceipt{}, err
	}
	if parsed, err := time.Parse("2006-01-02", date.Date); err == nil {
		c.Date = parsed
	} else {
		missing(model.FieldDate)
	}

	for _, f := range []struct {
		field  string
		prompt string
		dest   *money.Money
	}{
		{model.FieldTotal, "extract_total", &c.Total},
		{model.FieldTax, "extract_tax", &c.Tax},
		{model.FieldTip, "extract_tip", &c.Tip},
	} {
		var amt amountResponse
		if err := e.extractField(ctx, f.prompt, receiptText, amountSchema, &amt); err != nil {
			return model.CandidateReceipt{}, err
		}
		m, ok := toMoney(amt.Currency, amt.Amount)
		if !ok {
			missing(f.field)
			continue
		}
		*f.dest = m
	}

	var items itemsResponse
	if err := e.extractField(ctx, "extract_items", receiptText, itemsSchema, &items); err != nil {
		return model.CandidateReceipt{}, err
	}
	for _, it := range items.Items {
		m, ok := toMoney(it.Currency, it.Amount)
		if !ok {
			continue
		}
		c.Items = append(c.Items, model.CandidateItem{Name: it.Name, Amount: m})
	}
	if len(c.Items) == 0 {
		missing(model.FieldItems)
	}

	return c, nil
}

func (e *Extractor) extractField(ctx context.Context, prompt, receiptText string, schema json.RawMessage, dest any) error {
	rendered, err := e.prompts.Render(prompt, receiptText)
	if err != nil {
		return err
	}
	raw, err := e.client.Chat(ctx, rendered, schema)
	if err != nil {
		return fmt.Errorf("%s: %w", prompt, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("%s: decoding model output: %w", prompt, err)
	}
	return nil
}

// toMoney converts an extracted currency/amount pair, reporting false for
// the model's "cannot determine" convention (empty currency, zero amount)
// or malformed values.
func toMoney(currency string, amount json.Number) (money.Money, bool) {
	if !money.ValidCurrency(currency) {
		return money.Money{}, false
	}
	d, err := decimal.NewFromString(amount.String())
	if err != nil {
		return money.Money{}, false
	}
	return money.New(d, currency), true
}
