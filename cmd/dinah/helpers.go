package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/dinah/internal/fuzzy"
	"github.com/Veraticus/dinah/internal/model"
	"github.com/Veraticus/dinah/internal/storage"
)

// openStorage opens the configured database and brings its schema up to date.
func openStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(appConfig.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// findAccount looks an account up by name, ignoring case and accents.
func findAccount(accounts []model.Account, name string) (model.Account, error) {
	want := fuzzy.Normalize(name)
	for _, acc := range accounts {
		if fuzzy.Normalize(acc.Name) == want {
			return acc, nil
		}
	}

	names := make([]string, 0, len(accounts))
	for _, acc := range accounts {
		names = append(names, acc.Name)
	}
	if len(names) == 0 {
		return model.Account{}, fmt.Errorf("account %q not found: no accounts yet", name)
	}
	return model.Account{}, fmt.Errorf("account %q not found (have: %s)", name, strings.Join(names, ", "))
}

// findBill looks an active bill up by name, ignoring case and accents.
func findBill(bills []model.FixedBill, name string) (model.FixedBill, error) {
	want := fuzzy.Normalize(name)
	for _, b := range model.ActiveBills(bills) {
		if fuzzy.Normalize(b.Name) == want {
			return b, nil
		}
	}
	return model.FixedBill{}, fmt.Errorf("fixed bill %q not found", name)
}
