package sqlite

import "database/sql"

// schema sets up the ledger and operator tables. It runs on startup.
// Amounts are stored as TEXT so decimals round-trip exactly.
const schema = `
CREATE TABLE IF NOT EXISTS operators (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    pin_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS settlements (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL,
    guest_index INTEGER NOT NULL,
    amount TEXT NOT NULL,
    method TEXT NOT NULL,
    mode TEXT NOT NULL,
    sequence INTEGER NOT NULL,
    operator_id TEXT,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (operator_id) REFERENCES operators(id) ON DELETE SET NULL
);

CREATE INDEX IF NOT EXISTS idx_settlements_session_id ON settlements(session_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
