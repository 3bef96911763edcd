package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Backup errors.
var (
	ErrBackupExists    = errors.New("backup already exists")
	ErrBackupCorrupted = errors.New("backup integrity check failed")
	ErrInvalidPath     = errors.New("invalid backup path")
)

// BackupInfo describes a completed backup.
type BackupInfo struct {
	RowCounts     map[string]int
	Path          string
	FileSize      int64
	SchemaVersion int
}

var backupTables = []string{"accounts", "transactions", "fixed_bills"}

// Backup writes a consistent copy of the database to destPath using
// VACUUM INTO and verifies it.
func (s *SQLiteStorage) Backup(ctx context.Context, destPath string) (*BackupInfo, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	dest, err := filepath.Abs(destPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPath, err)
	}
	if strings.ContainsAny(dest, `'";`) {
		return nil, fmt.Errorf("%w: contains forbidden characters", ErrInvalidPath)
	}
	if _, err := os.Stat(dest); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrBackupExists, dest)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0750); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	version, err := s.SchemaVersion(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(backupTables))
	for _, table := range backupTables {
		var n int
		// #nosec G202 - table comes from backupTables
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[table] = n
	}

	// #nosec G201 - dest is absolute and free of quotes
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", dest)); err != nil {
		return nil, translate(fmt.Errorf("failed to back up database: %w", err))
	}
	if err := verifyIntegrity(dest); err != nil {
		if rmErr := os.Remove(dest); rmErr != nil {
			slog.Error("Failed to remove corrupted backup", "path", dest, "error", rmErr)
		}
		return nil, fmt.Errorf("%w: %w", ErrBackupCorrupted, err)
	}

	stat, err := os.Stat(dest)
	if err != nil {
		return nil, fmt.Errorf("failed to stat backup: %w", err)
	}

	slog.Info("Database backed up", "path", dest, "size", stat.Size())
	return &BackupInfo{Path: dest, FileSize: stat.Size(), SchemaVersion: version, RowCounts: counts}, nil
}

func verifyIntegrity(path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("Failed to close backup database", "error", err)
		}
	}()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return err
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}
	return nil
}
