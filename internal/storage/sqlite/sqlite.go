// Package sqlite provides a SQLite-backed implementation of the
// storage.Store interface using a pure Go driver (no CGO).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/tabsplit-dev/tabsplit/internal/model"
	"github.com/tabsplit-dev/tabsplit/internal/money"
	"github.com/tabsplit-dev/tabsplit/internal/storage"
)

var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New opens (creating if needed) the database at dbPath and runs
// migrations.
func New(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const dateFormat = "2006-01-02"

// SaveReceipt persists a receipt and its items in one transaction.
func (s *SQLiteStore) SaveReceipt(ctx context.Context, r *model.Receipt) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	date := ""
	if !r.Date.IsZero() {
		date = r.Date.Format(dateFormat)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO receipts (id, merchant, date, currency, tax, tip, total, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Merchant, date, r.Currency,
		r.Tax.Amount.String(), r.Tip.Amount.String(), r.Total.Amount.String(),
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("inserting receipt: %w", err)
	}

	for i := range r.Items {
		item := &r.Items[i]
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO receipt_items (id, receipt_id, position, name, amount, quantity)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			item.ID, r.ID, i, item.Name, item.Amount.Amount.String(), item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("inserting item %q: %w", item.Name, err)
		}
	}

	return tx.Commit()
}

// GetReceipt retrieves a receipt with its items in original order.
func (s *SQLiteStore) GetReceipt(ctx context.Context, id string) (*model.Receipt, error) {
	var (
		r        model.Receipt
		date     string
		tax, tip string
		total    string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, merchant, date, currency, tax, tip, total FROM receipts WHERE id = ?", id,
	).Scan(&r.ID, &r.Merchant, &date, &r.Currency, &tax, &tip, &total)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying receipt: %w", err)
	}

	if date != "" {
		r.Date, err = time.Parse(dateFormat, date)
		if err != nil {
			return nil, fmt.Errorf("parsing receipt date %q: %w", date, err)
		}
	}
	if r.Tax, err = money.Parse(tax, r.Currency); err != nil {
		return nil, fmt.Errorf("parsing tax: %w", err)
	}
	if r.Tip, err = money.Parse(tip, r.Currency); err != nil {
		return nil, fmt.Errorf("parsing tip: %w", err)
	}
	if r.Total, err = money.Parse(total, r.Currency); err != nil {
		return nil, fmt.Errorf("parsing total: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, amount, quantity FROM receipt_items WHERE receipt_id = ? ORDER BY position", id,
	)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item   model.ReceiptItem
			amount string
		)
		if err := rows.Scan(&item.ID, &item.Name, &amount, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		if item.Amount, err = money.Parse(amount, r.Currency); err != nil {
			return nil, fmt.Errorf("parsing item amount: %w", err)
		}
		r.Items = append(r.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating items: %w", err)
	}
	return &r, nil
}

// ListReceipts returns summaries of all receipts, newest first.
func (s *SQLiteStore) ListReceipts(ctx context.Context) ([]storage.ReceiptSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, merchant, total, currency FROM receipts ORDER BY created_at DESC, id",
	)
	if err != nil {
		return nil, fmt.Errorf("querying receipts: %w", err)
	}
	defer rows.Close()

	var out []storage.ReceiptSummary
	for rows.Next() {
		var sum storage.ReceiptSummary
		if err := rows.Scan(&sum.ID, &sum.Merchant, &sum.Total, &sum.Currency); err != nil {
			return nil, fmt.Errorf("scanning receipt summary: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// SaveSettlement replaces the stored breakdown for a receipt.
func (s *SQLiteStore) SaveSettlement(ctx context.Context, receiptID string, b *model.SettlementBreakdown) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM settlements WHERE receipt_id = ?", receiptID); err != nil {
		return fmt.Errorf("clearing old settlement: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO settlements (receipt_id, currency, total, warnings, created_at) VALUES (?, ?, ?, ?, ?)",
		receiptID, b.Currency, b.Total.Amount.String(), strings.Join(b.Warnings, "\n"), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("inserting settlement: %w", err)
	}

	for _, id := range b.ParticipantIDs() {
		share := b.Shares[id]
		_, err = tx.ExecContext(ctx,
			`INSERT INTO settlement_shares
			 (receipt_id, participant_id, items_subtotal, tax_share, tip_share, cashback_adjustment, total_owed)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			receiptID, id,
			share.ItemsSubtotal.Amount.String(), share.TaxShare.Amount.String(),
			share.TipShare.Amount.String(), share.CashbackAdjustment.Amount.String(),
			share.TotalOwed.Amount.String(),
		)
		if err != nil {
			return fmt.Errorf("inserting share for %q: %w", id, err)
		}
	}

	return tx.Commit()
}

// GetSettlement retrieves the stored breakdown for a receipt.
func (s *SQLiteStore) GetSettlement(ctx context.Context, receiptID string) (*model.SettlementBreakdown, error) {
	var (
		b        model.SettlementBreakdown
		total    string
		warnings string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT currency, total, warnings FROM settlements WHERE receipt_id = ?", receiptID,
	).Scan(&b.Currency, &total, &warnings)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying settlement: %w", err)
	}
	if b.Total, err = money.Parse(total, b.Currency); err != nil {
		return nil, fmt.Errorf("parsing settlement total: %w", err)
	}
	if warnings != "" {
		b.Warnings = strings.Split(warnings, "\n")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT participant_id, items_subtotal, tax_share, tip_share, cashback_adjustment, total_owed
		 FROM settlement_shares WHERE receipt_id = ?`, receiptID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying shares: %w", err)
	}
	defer rows.Close()

	b.Shares = make(map[string]model.ParticipantShare)
	for rows.Next() {
		var (
			id                            string
			items, tax, tip, cashback, owed string
		)
		if err := rows.Scan(&id, &items, &tax, &tip, &cashback, &owed); err != nil {
			return nil, fmt.Errorf("scanning share: %w", err)
		}
		share := model.ParticipantShare{}
		for _, f := range []struct {
			dest *money.Money
			raw  string
		}{
			{&share.ItemsSubtotal, items},
			{&share.TaxShare, tax},
			{&share.TipShare, tip},
			{&share.CashbackAdjustment, cashback},
			{&share.TotalOwed, owed},
		} {
			if *f.dest, err = money.Parse(f.raw, b.Currency); err != nil {
				return nil, fmt.Errorf("parsing share amount: %w", err)
			}
		}
		b.Shares[id] = share
	}
	return &b, rows.Err()
}
