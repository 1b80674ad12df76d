package sqlite

import "database/sql"

// schema is run on startup; statements are idempotent. Monetary amounts
// are stored as exact decimal strings, never as floating point.
const schema = `
CREATE TABLE IF NOT EXISTS receipts (
    id TEXT PRIMARY KEY,
    merchant TEXT NOT NULL,
    date TEXT NOT NULL,
    currency TEXT NOT NULL,
    tax TEXT NOT NULL,
    tip TEXT NOT NULL,
    total TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS receipt_items (
    id TEXT PRIMARY KEY,
    receipt_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    amount TEXT NOT NULL,
    quantity INTEGER NOT NULL,
    FOREIGN KEY (receipt_id) REFERENCES receipts(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS settlements (
    receipt_id TEXT PRIMARY KEY,
    currency TEXT NOT NULL,
    total TEXT NOT NULL,
    warnings TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    FOREIGN KEY (receipt_id) REFERENCES receipts(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS settlement_shares (
    receipt_id TEXT NOT NULL,
    participant_id TEXT NOT NULL,
    items_subtotal TEXT NOT NULL,
    tax_share TEXT NOT NULL,
    tip_share TEXT NOT NULL,
    cashback_adjustment TEXT NOT NULL,
    total_owed TEXT NOT NULL,
    PRIMARY KEY (receipt_id, participant_id),
    FOREIGN KEY (receipt_id) REFERENCES settlements(receipt_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_receipt_items_receipt_id ON receipt_items(receipt_id);
CREATE INDEX IF NOT EXISTS idx_settlement_shares_receipt_id ON settlement_shares(receipt_id);
`

func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
