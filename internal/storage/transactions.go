package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/dinah/internal/common"
	"github.com/Veraticus/dinah/internal/model"
)

const transactionColumns = `id, type, amount_cents, description, account_id, COALESCE(transfer_id, ''),
	COALESCE(hash, ''), timestamp, created_at`

// AddTransaction books an expense or income and moves the account balance in
// the same database transaction. An expense larger than the balance fails
// with common.ErrInsufficientBalance and changes nothing.
func (s *SQLiteStorage) AddTransaction(ctx context.Context, input model.NewTransaction) (*model.AddTransactionResult, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	input.Description = strings.TrimSpace(input.Description)
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	txn := model.Transaction{
		ID:          s.newID(),
		Type:        input.Type,
		Amount:      model.RoundCents(input.Amount),
		Description: input.Description,
		AccountID:   input.AccountID,
		Hash:        input.Hash,
		Timestamp:   input.Timestamp,
		CreatedAt:   s.clock(),
	}
	if txn.Timestamp.IsZero() {
		txn.Timestamp = txn.CreatedAt
	}

	var result model.AddTransactionResult
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		acc, err := accountInTx(ctx, tx, txn.AccountID)
		if err != nil {
			return err
		}
		balance, err := adjustBalance(ctx, tx, acc.ID, int64(txn.Type.Sign())*model.ToCents(txn.Amount))
		if err != nil {
			return err
		}
		if err := insertTransaction(ctx, tx, txn); err != nil {
			return err
		}
		result = model.AddTransactionResult{
			Transaction: txn,
			Validation: model.BalanceValidation{
				AccountName: acc.Name,
				NewBalance:  model.FromCents(balance),
				IsValid:     true,
			},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Transaction booked", "transaction_id", txn.ID, "type", txn.Type, "account_id", txn.AccountID)
	return &result, nil
}

// PerformTransfer moves money between two accounts as a linked pair of rows.
func (s *SQLiteStorage) PerformTransfer(ctx context.Context, input model.NewTransfer) (*model.TransferResult, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if input.FromAccountID != "" && input.FromAccountID == input.ToAccountID {
		return nil, common.ErrSameAccount
	}
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	now := s.clock()
	ts := input.Timestamp
	if ts.IsZero() {
		ts = now
	}
	amount := model.RoundCents(input.Amount)
	transferID := s.newID()

	var result model.TransferResult
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		from, err := accountInTx(ctx, tx, input.FromAccountID)
		if err != nil {
			return err
		}
		to, err := accountInTx(ctx, tx, input.ToAccountID)
		if err != nil {
			return err
		}
		cents := model.ToCents(amount)
		if _, err := adjustBalance(ctx, tx, from.ID, -cents); err != nil {
			return err
		}
		if _, err := adjustBalance(ctx, tx, to.ID, cents); err != nil {
			return err
		}

		result.Out = model.Transaction{
			ID: s.newID(), Type: model.TypeTransferOut, Amount: amount, AccountID: from.ID,
			Description: "Transferência para " + to.Name, TransferID: transferID, Timestamp: ts, CreatedAt: now,
		}
		result.In = model.Transaction{
			ID: s.newID(), Type: model.TypeTransferIn, Amount: amount, AccountID: to.ID,
			Description: "Transferência de " + from.Name, TransferID: transferID, Timestamp: ts, CreatedAt: now,
		}
		if err := insertTransaction(ctx, tx, result.Out); err != nil {
			return err
		}
		return insertTransaction(ctx, tx, result.In)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Transfer booked", "transfer_id", transferID, "from", input.FromAccountID, "to", input.ToAccountID)
	return &result, nil
}

// GetTransaction returns one ledger row.
func (s *SQLiteStorage) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	txn, err := transactionInTx(ctx, s.db, id)
	if err != nil {
		return nil, translate(err)
	}
	return &txn, nil
}

// UpdateTransaction changes an expense or income in place, moving balances
// to match. Transfers cannot be updated; reverse and book them again.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, id string, update model.TransactionUpdate) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	if update.Amount != nil && *update.Amount <= 0 {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidAmount, *update.Amount)
	}
	if update.Description != nil && strings.TrimSpace(*update.Description) == "" {
		return nil, fmt.Errorf("%w: empty description", ErrInvalidInput)
	}

	var updated model.Transaction
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		old, err := transactionInTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if old.IsTransfer() {
			return fmt.Errorf("%w: transfer %s must be reversed, not updated", ErrInvalidInput, id)
		}

		updated = old
		if update.Amount != nil {
			updated.Amount = model.RoundCents(*update.Amount)
		}
		if update.Description != nil {
			updated.Description = strings.TrimSpace(*update.Description)
		}
		if update.AccountID != nil {
			if _, err := accountInTx(ctx, tx, *update.AccountID); err != nil {
				return err
			}
			updated.AccountID = *update.AccountID
		}

		sign := int64(old.Type.Sign())
		// Undo first so moving within one account sees the restored balance.
		if _, err := adjustBalance(ctx, tx, old.AccountID, -sign*model.ToCents(old.Amount)); err != nil {
			return err
		}
		if _, err := adjustBalance(ctx, tx, updated.AccountID, sign*model.ToCents(updated.Amount)); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE transactions SET amount_cents = ?, description = ?, account_id = ? WHERE id = ?`,
			model.ToCents(updated.Amount), updated.Description, updated.AccountID, id)
		if err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Transaction updated", "transaction_id", id)
	return &updated, nil
}

// ReverseTransaction removes a ledger row and undoes its balance effect. For
// a transfer both legs are removed.
func (s *SQLiteStorage) ReverseTransaction(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		txn, err := transactionInTx(ctx, tx, id)
		if err != nil {
			return err
		}
		legs := []model.Transaction{txn}
		if txn.IsTransfer() {
			legs, err = queryTransactions(ctx, tx, `WHERE transfer_id = ?`, txn.TransferID)
			if err != nil {
				return err
			}
		}
		for _, leg := range legs {
			if _, err := adjustBalance(ctx, tx, leg.AccountID, -int64(leg.Type.Sign())*model.ToCents(leg.Amount)); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, leg.ID); err != nil {
				return fmt.Errorf("failed to delete transaction: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("Transaction reversed", "transaction_id", id)
	return nil
}

// GetTransactionsByDateRange returns rows with start <= timestamp <= end,
// oldest first.
func (s *SQLiteStorage) GetTransactionsByDateRange(ctx context.Context, start, end time.Time) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, end, start)
	}
	txns, err := queryTransactions(ctx, s.db, `WHERE timestamp >= ? AND timestamp <= ?`, start.UTC(), end.UTC())
	return txns, translate(err)
}

// GetFinancialStats totals every balance plus the income and expenses of the
// month containing now. Transfers are not income or expenses.
func (s *SQLiteStorage) GetFinancialStats(ctx context.Context, now time.Time) (*model.FinancialStats, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)

	var stats model.FinancialStats
	var balance, income, expenses int64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(balance_cents), 0) FROM accounts`).Scan(&balance)
	if err != nil {
		return nil, translate(fmt.Errorf("failed to sum balances: %w", err))
	}
	err = s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN type = 'income' THEN amount_cents END), 0),
			COALESCE(SUM(CASE WHEN type = 'expense' THEN amount_cents END), 0)
		FROM transactions WHERE timestamp >= ? AND timestamp <= ?`, start.UTC(), end.UTC()).Scan(&income, &expenses)
	if err != nil {
		return nil, translate(fmt.Errorf("failed to sum month: %w", err))
	}
	stats.TotalBalance = model.FromCents(balance)
	stats.MonthlyIncome = model.FromCents(income)
	stats.MonthlyExpenses = model.FromCents(expenses)
	return &stats, nil
}

func insertTransaction(ctx context.Context, tx *sql.Tx, txn model.Transaction) error {
	var transferID, hash any
	if txn.TransferID != "" {
		transferID = txn.TransferID
	}
	if txn.Hash != "" {
		hash = txn.Hash
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (id, type, amount_cents, description, account_id, transfer_id, hash, timestamp, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, string(txn.Type), model.ToCents(txn.Amount), txn.Description, txn.AccountID,
		transferID, hash, txn.Timestamp.UTC(), txn.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
	}
	return nil
}

func transactionInTx(ctx context.Context, q queryer, id string) (model.Transaction, error) {
	txns, err := queryTransactions(ctx, q, `WHERE id = ?`, id)
	if err != nil {
		return model.Transaction{}, err
	}
	if len(txns) == 0 {
		return model.Transaction{}, fmt.Errorf("%w: transaction %s", common.ErrNotFound, id)
	}
	return txns[0], nil
}

func queryTransactions(ctx context.Context, q queryer, where string, args ...any) ([]model.Transaction, error) {
	// #nosec G202 - where is one of the fixed clauses above
	query := `SELECT ` + transactionColumns + ` FROM transactions ` + where + ` ORDER BY timestamp, created_at`
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txns []model.Transaction
	for rows.Next() {
		var txn model.Transaction
		var kind string
		var cents int64
		if err := rows.Scan(&txn.ID, &kind, &cents, &txn.Description, &txn.AccountID, &txn.TransferID,
			&txn.Hash, &txn.Timestamp, &txn.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txn.Type = model.TransactionType(kind)
		txn.Amount = model.FromCents(cents)
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txns, nil
}
