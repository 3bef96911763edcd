package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

func execAll(tx *sql.Tx, queries ...string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial ledger schema",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE accounts (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL COLLATE NOCASE UNIQUE,
					balance_cents INTEGER NOT NULL DEFAULT 0 CHECK (balance_cents >= 0),
					created_at DATETIME NOT NULL
				)`,
				`CREATE TABLE transactions (
					id TEXT PRIMARY KEY,
					type TEXT NOT NULL CHECK (type IN ('expense', 'income', 'transfer_out', 'transfer_in')),
					amount_cents INTEGER NOT NULL CHECK (amount_cents > 0),
					description TEXT NOT NULL,
					account_id TEXT NOT NULL REFERENCES accounts(id),
					transfer_id TEXT,
					timestamp DATETIME NOT NULL,
					created_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_transactions_timestamp ON transactions(timestamp)`,
				`CREATE INDEX idx_transactions_account ON transactions(account_id)`,
				`CREATE INDEX idx_transactions_transfer ON transactions(transfer_id)`,
			)
		},
	},
	{
		Version:     2,
		Description: "Add fixed bills",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE fixed_bills (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL COLLATE NOCASE,
					category TEXT NOT NULL,
					amount_cents INTEGER NOT NULL CHECK (amount_cents > 0),
					due_day INTEGER NOT NULL CHECK (due_day BETWEEN 1 AND 31),
					is_active INTEGER NOT NULL DEFAULT 1,
					last_paid_at DATETIME,
					created_at DATETIME NOT NULL
				)`,
				`CREATE UNIQUE INDEX idx_fixed_bills_active_name ON fixed_bills(name) WHERE is_active = 1`,
			)
		},
	},
	{
		Version:     3,
		Description: "Add import hash for duplicate detection",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`ALTER TABLE transactions ADD COLUMN hash TEXT`,
				`CREATE UNIQUE INDEX idx_transactions_hash ON transactions(hash) WHERE hash IS NOT NULL`,
			)
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion); err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}
	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}
	return nil
}

// SchemaVersion reports the database's current schema version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
