// Package model defines the entities the chat assistant reads and the ledger stores.
package model

import "time"

// Account is a user wallet or bank account with a running balance.
type Account struct {
	CreatedAt time.Time
	ID        string  `validate:"required"`
	Name      string  `validate:"required,min=2"`
	Balance   float64 `validate:"gte=0"`
}

// FindAccount returns the account with the given id.
func FindAccount(accounts []Account, id string) (Account, bool) {
	for _, acc := range accounts {
		if acc.ID == id {
			return acc, true
		}
	}
	return Account{}, false
}

// TotalBalance sums the balance of every account.
func TotalBalance(accounts []Account) float64 {
	total := 0.0
	for _, acc := range accounts {
		total += acc.Balance
	}
	return RoundCents(total)
}

// FinancialStats aggregates the ledger for the current month.
type FinancialStats struct {
	TotalBalance    float64
	MonthlyIncome   float64
	MonthlyExpenses float64
}

// NewAccount is the input for opening an account.
type NewAccount struct {
	Name           string  `validate:"required,min=2,max=60"`
	InitialBalance float64 `validate:"gte=0"`
}
