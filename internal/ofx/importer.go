package ofx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/dinah/internal/common"
	"github.com/Veraticus/dinah/internal/model"
	"github.com/Veraticus/dinah/internal/service"
	"github.com/Veraticus/dinah/internal/storage"
)

// Booker is the part of the ledger an import writes through.
type Booker interface {
	AddTransaction(ctx context.Context, txn model.NewTransaction) (*model.AddTransactionResult, error)
}

// Skipped is an entry the import could not book.
type Skipped struct {
	Reason string
	Entry  Entry
}

// Report summarizes an import.
type Report struct {
	Skipped    []Skipped
	Booked     int
	Duplicates int
	Income     float64
	Expenses   float64
	DryRun     bool
}

// Importer books statement entries into one Dinah account.
type Importer struct {
	ledger     Booker
	onProgress func()
	retry      service.RetryOptions
	dryRun     bool
}

// ImporterOption configures an Importer.
type ImporterOption func(*Importer)

// WithDryRun makes the import report what it would book without writing.
func WithDryRun(dryRun bool) ImporterOption {
	return func(i *Importer) {
		i.dryRun = dryRun
	}
}

// WithProgress sets a callback run after each entry is handled.
func WithProgress(fn func()) ImporterOption {
	return func(i *Importer) {
		i.onProgress = fn
	}
}

// WithRetryOptions sets how busy-database writes are retried.
func WithRetryOptions(opts service.RetryOptions) ImporterOption {
	return func(i *Importer) {
		i.retry = opts
	}
}

// NewImporter creates an importer writing through ledger.
func NewImporter(ledger Booker, opts ...ImporterOption) *Importer {
	i := &Importer{ledger: ledger, retry: common.DefaultRetryOptions()}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Import books entries into accountID in order. Entries already imported are
// counted as duplicates; entries that would overdraw the account are skipped
// and reported. Any other ledger failure stops the import.
func (i *Importer) Import(ctx context.Context, accountID string, entries []Entry) (*Report, error) {
	if len(entries) == 0 {
		return nil, common.ErrNoTransactions
	}

	report := &Report{DryRun: i.dryRun}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := i.book(ctx, accountID, entry, report); err != nil {
			return report, err
		}
		if i.onProgress != nil {
			i.onProgress()
		}
	}

	slog.Info("Imported OFX entries",
		"account_id", accountID,
		"booked", report.Booked,
		"duplicates", report.Duplicates,
		"skipped", len(report.Skipped),
		"dry_run", i.dryRun)

	return report, nil
}

func (i *Importer) book(ctx context.Context, accountID string, entry Entry, report *Report) error {
	if i.dryRun {
		report.count(entry)
		return nil
	}

	txn := model.NewTransaction{
		Timestamp:   entry.Timestamp,
		Type:        entry.Type,
		Description: entry.Description,
		AccountID:   accountID,
		Hash:        entry.Hash(accountID),
		Amount:      entry.Amount,
	}
	err := common.WithRetry(ctx, func() error {
		_, err := i.ledger.AddTransaction(ctx, txn)
		return err
	}, i.retry)

	switch {
	case err == nil:
		report.count(entry)
	case errors.Is(err, common.ErrDuplicateEntry):
		report.Duplicates++
	case errors.Is(err, common.ErrInsufficientBalance):
		report.Skipped = append(report.Skipped, Skipped{Entry: entry, Reason: "saldo insuficiente"})
	case errors.Is(err, common.ErrInvalidAmount), errors.Is(err, storage.ErrInvalidInput):
		report.Skipped = append(report.Skipped, Skipped{Entry: entry, Reason: "lançamento inválido"})
	default:
		return fmt.Errorf("failed to book entry %s: %w", entry.FitID, err)
	}
	return nil
}

func (r *Report) count(entry Entry) {
	r.Booked++
	if entry.Type == model.TypeIncome {
		r.Income = model.RoundCents(r.Income + entry.Amount)
		return
	}
	r.Expenses = model.RoundCents(r.Expenses + entry.Amount)
}
