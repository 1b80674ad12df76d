// Package storage provides abstractions for persisting receipts and their
// computed settlements, so past splits can be listed and revisited.
package storage

import (
	"context"
	"errors"

	"github.com/tabsplit-dev/tabsplit/internal/model"
)

// ErrNotFound is returned when a requested receipt or settlement does not
// exist.
var ErrNotFound = errors.New("not found")

// ReceiptSummary is a listing row: enough to pick a receipt without
// loading its items.
type ReceiptSummary struct {
	ID       string `json:"id"`
	Merchant string `json:"merchant"`
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

// Store is the persistence interface. Implementations may back it with any
// engine; the service layer only depends on this contract.
type Store interface {
	// SaveReceipt persists a verified receipt, assigning an ID if unset.
	SaveReceipt(ctx context.Context, r *model.Receipt) error

	// GetReceipt retrieves a receipt by ID. Returns ErrNotFound if absent.
	GetReceipt(ctx context.Context, id string) (*model.Receipt, error)

	// ListReceipts returns summaries of all stored receipts, newest first.
	ListReceipts(ctx context.Context) ([]ReceiptSummary, error)

	// SaveSettlement persists the breakdown computed for a stored receipt,
	// replacing any previous one.
	SaveSettlement(ctx context.Context, receiptID string, b *model.SettlementBreakdown) error

	// GetSettlement retrieves the breakdown last computed for a receipt.
	// Returns ErrNotFound if none has been saved.
	GetSettlement(ctx context.Context, receiptID string) (*model.SettlementBreakdown, error)

	// Close releases any resources held by the store.
	Close() error
}
