// Package service defines the contracts between the chat layer and the
// collaborators that persist and report on the user's money.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/dinah/internal/model"
)

// Ledger is the persistence contract for accounts, transactions and fixed
// bills. Every operation that changes a balance checks and applies it
// atomically with the ledger row it writes.
type Ledger interface {
	// Account operations
	AddAccount(ctx context.Context, account model.NewAccount) (*model.Account, error)
	GetAccounts(ctx context.Context) ([]model.Account, error)
	CountTransactionsByAccount(ctx context.Context, accountID string) (int, error)
	DeleteAccount(ctx context.Context, accountID string) error

	// Transaction operations
	AddTransaction(ctx context.Context, txn model.NewTransaction) (*model.AddTransactionResult, error)
	PerformTransfer(ctx context.Context, transfer model.NewTransfer) (*model.TransferResult, error)
	GetTransaction(ctx context.Context, id string) (*model.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, update model.TransactionUpdate) (*model.Transaction, error)
	ReverseTransaction(ctx context.Context, id string) error
	GetTransactionsByDateRange(ctx context.Context, start, end time.Time) ([]model.Transaction, error)
	GetFinancialStats(ctx context.Context, now time.Time) (*model.FinancialStats, error)

	// Fixed bill operations
	AddRecurringBill(ctx context.Context, bill model.NewFixedBill) (*model.FixedBill, error)
	GetRecurringBills(ctx context.Context) ([]model.FixedBill, error)
	UpdateRecurringBill(ctx context.Context, id string, update model.FixedBillUpdate) error
	DeleteRecurringBill(ctx context.Context, id string) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// SummaryKind selects what a summary reports on.
type SummaryKind string

// Summary kinds.
const (
	SummaryOverview SummaryKind = "summary"
	SummaryExpenses SummaryKind = "expenses"
	SummaryIncome   SummaryKind = "income"
	SummaryPix      SummaryKind = "pix"
)

// SummaryRequest asks for a report over [Start, End].
type SummaryRequest struct {
	Start time.Time
	End   time.Time
	Now   time.Time
	Kind  SummaryKind
	Label string
}

// Summarizer renders the chat answer to a summary or period query.
type Summarizer interface {
	Summarize(ctx context.Context, req SummaryRequest) (string, error)
}

// CategorySummary is the total spent or received under one category.
type CategorySummary struct {
	Category string
	Amount   float64
	Count    int
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
