package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/dinah/internal/common"
	"github.com/Veraticus/dinah/internal/fuzzy"
	"github.com/Veraticus/dinah/internal/model"
)

// AddAccount opens an account. Names are unique ignoring case and accents.
func (s *SQLiteStorage) AddAccount(ctx context.Context, input model.NewAccount) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	input.Name = strings.TrimSpace(input.Name)
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	acc := model.Account{
		ID:        s.newID(),
		Name:      input.Name,
		Balance:   model.RoundCents(input.InitialBalance),
		CreatedAt: s.clock(),
	}
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		existing, err := queryAccounts(ctx, tx)
		if err != nil {
			return err
		}
		for _, e := range existing {
			if fuzzy.Normalize(e.Name) == fuzzy.Normalize(acc.Name) {
				return fmt.Errorf("%w: account %q", common.ErrDuplicateEntry, e.Name)
			}
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO accounts (id, name, balance_cents, created_at) VALUES (?, ?, ?, ?)`,
			acc.ID, acc.Name, model.ToCents(acc.Balance), acc.CreatedAt.UTC())
		if err != nil {
			return fmt.Errorf("failed to insert account: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Account created", "account_id", acc.ID, "name", acc.Name)
	return &acc, nil
}

// GetAccounts returns every account ordered by creation.
func (s *SQLiteStorage) GetAccounts(ctx context.Context) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	accounts, err := queryAccounts(ctx, s.db)
	return accounts, translate(err)
}

// CountTransactionsByAccount counts the ledger rows booked on an account.
func (s *SQLiteStorage) CountTransactionsByAccount(ctx context.Context, accountID string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE account_id = ?`, accountID).Scan(&n)
	if err != nil {
		return 0, translate(fmt.Errorf("failed to count transactions: %w", err))
	}
	return n, nil
}

// DeleteAccount removes an account that has no transactions.
func (s *SQLiteStorage) DeleteAccount(ctx context.Context, accountID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(accountID, "accountID"); err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE account_id = ?`, accountID).Scan(&n); err != nil {
			return fmt.Errorf("failed to count transactions: %w", err)
		}
		if n > 0 {
			return fmt.Errorf("%w: %d transactions", common.ErrAccountInUse, n)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, accountID)
		if err != nil {
			return fmt.Errorf("failed to delete account: %w", err)
		}
		if rows, _ := res.RowsAffected(); rows == 0 {
			return fmt.Errorf("%w: account %s", common.ErrNotFound, accountID)
		}
		return nil
	})
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryAccounts(ctx context.Context, q queryer) ([]model.Account, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, name, balance_cents, created_at FROM accounts ORDER BY created_at, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		var acc model.Account
		var cents int64
		if err := rows.Scan(&acc.ID, &acc.Name, &cents, &acc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		acc.Balance = model.FromCents(cents)
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

func accountInTx(ctx context.Context, q queryer, id string) (model.Account, error) {
	var acc model.Account
	var cents int64
	err := q.QueryRowContext(ctx, `SELECT id, name, balance_cents, created_at FROM accounts WHERE id = ?`, id).
		Scan(&acc.ID, &acc.Name, &cents, &acc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return acc, fmt.Errorf("%w: account %s", common.ErrNotFound, id)
	}
	if err != nil {
		return acc, fmt.Errorf("failed to get account: %w", err)
	}
	acc.Balance = model.FromCents(cents)
	return acc, nil
}

// adjustBalance adds delta cents to an account, refusing to go below zero.
func adjustBalance(ctx context.Context, tx *sql.Tx, accountID string, delta int64) (int64, error) {
	var cents int64
	err := tx.QueryRowContext(ctx, `SELECT balance_cents FROM accounts WHERE id = ?`, accountID).Scan(&cents)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: account %s", common.ErrNotFound, accountID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read balance: %w", err)
	}
	next := cents + delta
	if next < 0 {
		return cents, fmt.Errorf("%w: account %s has %s", common.ErrInsufficientBalance, accountID,
			model.FormatBRL(model.FromCents(cents)))
	}
	if _, err := tx.ExecContext(ctx, `UPDATE accounts SET balance_cents = ? WHERE id = ?`, next, accountID); err != nil {
		return cents, fmt.Errorf("failed to update balance: %w", err)
	}
	return next, nil
}
