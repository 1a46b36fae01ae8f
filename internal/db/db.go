// Package db provides the shared SQLite connection and schema for ledclock.
package db

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite database connection
type DB struct {
	*sql.DB
}

// Open opens the database and initializes the schema
func Open(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &DB{db}, nil
}

// initSchema creates all required tables
func initSchema(db *sql.DB) error {
	// Event ledger - append-only history of clock events.
	// source holds the run id of the process that wrote the row.
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS event_ledger (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id TEXT NOT NULL,
			event_type TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			payload TEXT,
			source TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_ledger_type_ts ON event_ledger(event_type, timestamp);
		CREATE INDEX IF NOT EXISTS idx_ledger_ts ON event_ledger(timestamp);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_ledger_event_id ON event_ledger(event_id);
	`)
	if err != nil {
		return fmt.Errorf("failed to create event_ledger table: %w", err)
	}

	// Resource state - generic JSON state store keyed by (kind, id)
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS resource_state (
			kind TEXT NOT NULL,
			id TEXT NOT NULL,
			payload TEXT NOT NULL,
			version INTEGER DEFAULT 1,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (kind, id)
		);
		CREATE INDEX IF NOT EXISTS idx_resource_state_kind ON resource_state(kind);
	`)
	if err != nil {
		return fmt.Errorf("failed to create resource_state table: %w", err)
	}

	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
