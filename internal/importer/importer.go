// Package importer parses manually entered receipt CSVs, the fallback when
// no receipt photo or recognized text is available.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/tabsplit-dev/tabsplit/internal/model"
	"github.com/tabsplit-dev/tabsplit/internal/money"
)

// Column layout: kind,name,amount,quantity. Kind is one of item, tax, tip
// or total; tax, tip and total rows leave name and quantity empty.
const (
	numFields   = 4
	colKind     = 0
	colName     = 1
	colAmount   = 2
	colQuantity = 3
)

// Parse reads a receipt CSV into a Receipt. The first row is a header and
// is skipped. Tax and tip default to zero when absent; a missing total row
// is computed from the other rows.
func Parse(r io.Reader, merchant, currency string) (model.Receipt, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return model.Receipt{}, fmt.Errorf("reading receipt CSV: %w", err)
	}
	if len(records) <= 1 {
		return model.Receipt{}, fmt.Errorf("receipt CSV has no rows")
	}

	receipt := model.Receipt{
		Merchant: merchant,
		Currency: currency,
		Tax:      money.Zero(currency),
		Tip:      money.Zero(currency),
	}
	var haveTotal bool

	for i, rec := range records[1:] {
		row := i + 2
		amount, err := money.Parse(strings.TrimSpace(rec[colAmount]), currency)
		if err != nil {
			return model.Receipt{}, fmt.Errorf("row %d: %w", row, err)
		}

		switch kind := strings.ToLower(strings.TrimSpace(rec[colKind])); kind {
		case "item":
			item, err := parseItemRow(rec, amount)
			if err != nil {
				return model.Receipt{}, fmt.Errorf("row %d: %w", row, err)
			}
			receipt.Items = append(receipt.Items, item)
		case "tax":
			receipt.Tax = amount
		case "tip":
			receipt.Tip = amount
		case "total":
			receipt.Total = amount
			haveTotal = true
		default:
			return model.Receipt{}, fmt.Errorf("row %d: unknown row kind %q", row, kind)
		}
	}

	if !haveTotal {
		total, err := receipt.ItemsTotal()
		if err != nil {
			return model.Receipt{}, err
		}
		if total, err = total.Add(receipt.Tax); err != nil {
			return model.Receipt{}, err
		}
		if total, err = total.Add(receipt.Tip); err != nil {
			return model.Receipt{}, err
		}
		receipt.Total = total
	}

	if err := receipt.Validate(); err != nil {
		return model.Receipt{}, err
	}
	return receipt, nil
}

func parseItemRow(rec []string, amount money.Money) (model.ReceiptItem, error) {
	name := strings.TrimSpace(rec[colName])
	if name == "" {
		return model.ReceiptItem{}, fmt.Errorf("item row has no name")
	}

	quantity := 1
	if q := strings.TrimSpace(rec[colQuantity]); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			return model.ReceiptItem{}, fmt.Errorf("parsing quantity %q: %w", q, err)
		}
		quantity = n
	}

	return model.ReceiptItem{
		ID:       uuid.NewString(),
		Name:     name,
		Amount:   amount,
		Quantity: quantity,
	}, nil
}
