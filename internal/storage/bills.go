package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/dinah/internal/common"
	"github.com/Veraticus/dinah/internal/model"
)

// AddRecurringBill registers a fixed bill. Active bill names are unique.
func (s *SQLiteStorage) AddRecurringBill(ctx context.Context, input model.NewFixedBill) (*model.FixedBill, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	input.Name = strings.TrimSpace(input.Name)
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	bill := model.FixedBill{
		ID:        s.newID(),
		Name:      input.Name,
		Category:  input.Category,
		Amount:    model.RoundCents(input.Amount),
		DueDay:    input.DueDay,
		IsActive:  true,
		CreatedAt: s.clock(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fixed_bills (id, name, category, amount_cents, due_day, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, 1, ?)`,
		bill.ID, bill.Name, bill.Category, model.ToCents(bill.Amount), bill.DueDay, bill.CreatedAt.UTC())
	if err != nil {
		return nil, translate(fmt.Errorf("failed to insert fixed bill: %w", err))
	}

	slog.Info("Fixed bill registered", "bill_id", bill.ID, "name", bill.Name)
	return &bill, nil
}

// GetRecurringBills returns every bill, active or not, ordered by due day.
func (s *SQLiteStorage) GetRecurringBills(ctx context.Context) ([]model.FixedBill, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, amount_cents, due_day, is_active, last_paid_at, created_at
		FROM fixed_bills ORDER BY due_day, name`)
	if err != nil {
		return nil, translate(fmt.Errorf("failed to query fixed bills: %w", err))
	}
	defer func() { _ = rows.Close() }()

	var bills []model.FixedBill
	for rows.Next() {
		var b model.FixedBill
		var cents int64
		var lastPaid sql.NullTime
		if err := rows.Scan(&b.ID, &b.Name, &b.Category, &cents, &b.DueDay, &b.IsActive, &lastPaid, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fixed bill: %w", err)
		}
		b.Amount = model.FromCents(cents)
		if lastPaid.Valid {
			paid := lastPaid.Time
			b.LastPaidAt = &paid
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

// UpdateRecurringBill changes the non-nil fields of update.
func (s *SQLiteStorage) UpdateRecurringBill(ctx context.Context, id string, update model.FixedBillUpdate) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	var sets []string
	var args []any
	if update.Amount != nil {
		if *update.Amount <= 0 {
			return fmt.Errorf("%w: %v", common.ErrInvalidAmount, *update.Amount)
		}
		sets, args = append(sets, "amount_cents = ?"), append(args, model.ToCents(*update.Amount))
	}
	if update.DueDay != nil {
		if *update.DueDay < 1 || *update.DueDay > 31 {
			return fmt.Errorf("%w: due day %d", ErrInvalidInput, *update.DueDay)
		}
		sets, args = append(sets, "due_day = ?"), append(args, *update.DueDay)
	}
	if update.IsActive != nil {
		sets, args = append(sets, "is_active = ?"), append(args, *update.IsActive)
	}
	if update.LastPaidAt != nil {
		sets, args = append(sets, "last_paid_at = ?"), append(args, update.LastPaidAt.UTC())
	}
	if len(sets) == 0 {
		return nil
	}

	// #nosec G202 - sets only holds the fixed column assignments above
	query := `UPDATE fixed_bills SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	res, err := s.db.ExecContext(ctx, query, append(args, id)...)
	if err != nil {
		return translate(fmt.Errorf("failed to update fixed bill: %w", err))
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("%w: fixed bill %s", common.ErrNotFound, id)
	}
	return nil
}

// DeleteRecurringBill removes a bill.
func (s *SQLiteStorage) DeleteRecurringBill(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM fixed_bills WHERE id = ?`, id)
	if err != nil {
		return translate(fmt.Errorf("failed to delete fixed bill: %w", err))
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("%w: fixed bill %s", common.ErrNotFound, id)
	}
	return nil
}
