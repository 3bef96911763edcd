package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// TransactionType is the direction of a ledger entry.
type TransactionType string

// Transaction types. Transfers are stored as a linked pair of entries.
const (
	TypeExpense     TransactionType = "expense"
	TypeIncome      TransactionType = "income"
	TypeTransferOut TransactionType = "transfer_out"
	TypeTransferIn  TransactionType = "transfer_in"
)

// Label returns the Portuguese label shown in chat.
func (t TransactionType) Label() string {
	switch t {
	case TypeExpense:
		return "despesa"
	case TypeIncome:
		return "receita"
	case TypeTransferOut, TypeTransferIn:
		return "transferência"
	}
	return string(t)
}

// Sign is -1 for entries that reduce the account balance and +1 otherwise.
func (t TransactionType) Sign() int {
	if t == TypeExpense || t == TypeTransferOut {
		return -1
	}
	return 1
}

// Transaction is a single ledger entry.
type Transaction struct {
	Timestamp   time.Time
	CreatedAt   time.Time
	ID          string
	Type        TransactionType
	Description string
	AccountID   string
	// TransferID links the two legs of a transfer; empty for plain entries.
	TransferID string
	Hash       string
	Amount     float64
}

// IsTransfer reports whether the entry is one leg of a transfer.
func (t *Transaction) IsTransfer() bool {
	return t.TransferID != ""
}

// GenerateHash creates a hash for duplicate detection on imports.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%.2f:%s:%s",
		t.Timestamp.Format("2006-01-02"),
		t.Type,
		t.Amount,
		t.Description,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// NewTransaction is the input for recording an expense or income.
type NewTransaction struct {
	Timestamp   time.Time
	Type        TransactionType `validate:"required,oneof=expense income"`
	Description string          `validate:"required"`
	AccountID   string          `validate:"required"`
	Hash        string
	Amount      float64 `validate:"gt=0"`
}

// BalanceValidation reports the account state after a transaction was booked.
type BalanceValidation struct {
	AccountName string
	NewBalance  float64
	IsValid     bool
}

// AddTransactionResult is returned by the ledger after booking a transaction.
type AddTransactionResult struct {
	Transaction Transaction
	Validation  BalanceValidation
}

// TransferResult holds both legs of a completed transfer.
type TransferResult struct {
	Out Transaction
	In  Transaction
}

// TransactionUpdate carries the fields to change in place. Nil fields are left alone.
type TransactionUpdate struct {
	Amount      *float64
	Description *string
	AccountID   *string
}

// IsEmpty reports whether the update changes nothing.
func (u TransactionUpdate) IsEmpty() bool {
	return u.Amount == nil && u.Description == nil && u.AccountID == nil
}

// NewTransfer is the input for moving money between two of the user's accounts.
type NewTransfer struct {
	Timestamp     time.Time
	FromAccountID string  `validate:"required"`
	ToAccountID   string  `validate:"required,nefield=FromAccountID"`
	Amount        float64 `validate:"gt=0"`
}
