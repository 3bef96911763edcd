// Package storage is the SQLite ledger behind the chat assistant.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mattn/go-sqlite3"

	"github.com/Veraticus/dinah/internal/common"
	"github.com/Veraticus/dinah/internal/service"
)

var _ service.Ledger = (*SQLiteStorage)(nil)

// SQLiteStorage implements service.Ledger using SQLite. Amounts are stored
// as integer cents.
type SQLiteStorage struct {
	db       *sql.DB
	validate *validator.Validate
	clock    func() time.Time
	newID    func() string
	dbPath   string
}

// Option configures a SQLiteStorage.
type Option func(*SQLiteStorage)

// WithClock sets the clock used for created_at columns.
func WithClock(clock func() time.Time) Option {
	return func(s *SQLiteStorage) {
		s.clock = clock
	}
}

// WithIDGenerator replaces the random uuid generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *SQLiteStorage) {
		s.newID = newID
	}
}

// NewSQLiteStorage opens (creating if needed) the database at dbPath. Use
// ":memory:" for a throwaway database.
func NewSQLiteStorage(dbPath string, opts ...Option) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection serializes writers and keeps ":memory:" a single database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStorage{
		db:       db,
		dbPath:   dbPath,
		validate: validator.New(),
		clock:    time.Now,
		newID:    newUUID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// inTx runs fn inside one database transaction, committing only when fn
// succeeds.
func (s *SQLiteStorage) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return translate(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return translate(err)
	}
	if err := tx.Commit(); err != nil {
		return translate(fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

// translate maps driver errors onto the application sentinels.
func translate(err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}
	switch {
	case sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked:
		return fmt.Errorf("%w: %w", common.ErrBusy, err)
	case sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique:
		return fmt.Errorf("%w: %w", common.ErrDuplicateEntry, err)
	}
	return err
}
