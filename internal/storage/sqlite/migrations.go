package sqlite

import "database/sql"

// schema sets up the database. It runs on startup to ensure tables exist.
// Money columns are TEXT holding decimal strings so no precision is lost.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    role TEXT NOT NULL,
    phone TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS wallets (
    owner_id TEXT PRIMARY KEY,
    role TEXT NOT NULL,
    balance TEXT NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS deals (
    id TEXT PRIMARY KEY,
    vendor_id TEXT NOT NULL,
    network TEXT NOT NULL,
    title TEXT NOT NULL,
    wholesale_price TEXT NOT NULL,
    active INTEGER NOT NULL DEFAULT 1,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS allocations (
    id TEXT PRIMARY KEY,
    reference TEXT NOT NULL,
    rate_table TEXT NOT NULL,
    purchaser_id TEXT NOT NULL,
    role TEXT NOT NULL,
    mode TEXT NOT NULL,
    recipient_msisdn TEXT NOT NULL DEFAULT '',
    recipient_registered INTEGER NOT NULL DEFAULT 0,
    customer_id TEXT NOT NULL DEFAULT '',
    vendor_id TEXT NOT NULL DEFAULT '',
    deal_id TEXT NOT NULL DEFAULT '',
    amount TEXT NOT NULL,
    customer_reward TEXT NOT NULL,
    vendor_profit TEXT NOT NULL,
    admin_fee TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    UNIQUE (purchaser_id, reference)
);

CREATE TABLE IF NOT EXISTS kv (
    namespace TEXT NOT NULL,
    item_key TEXT NOT NULL,
    item_value TEXT NOT NULL,
    updated_at INTEGER NOT NULL,
    PRIMARY KEY (namespace, item_key)
);

CREATE INDEX IF NOT EXISTS idx_allocations_purchaser_id ON allocations(purchaser_id);
CREATE INDEX IF NOT EXISTS idx_allocations_customer_id ON allocations(customer_id);
CREATE INDEX IF NOT EXISTS idx_allocations_vendor_id ON allocations(vendor_id);
CREATE INDEX IF NOT EXISTS idx_deals_network ON deals(network);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
