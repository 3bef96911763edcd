package storage

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/dinah/internal/common"
	"github.com/Veraticus/dinah/internal/model"
)

var testNow = time.Date(2026, time.March, 18, 15, 4, 0, 0, time.UTC)

func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"), WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func addAccount(t *testing.T, s *SQLiteStorage, name string, balance float64) *model.Account {
	t.Helper()
	acc, err := s.AddAccount(context.Background(), model.NewAccount{Name: name, InitialBalance: balance})
	require.NoError(t, err)
	return acc
}

func balances(t *testing.T, s *SQLiteStorage) map[string]float64 {
	t.Helper()
	accounts, err := s.GetAccounts(context.Background())
	require.NoError(t, err)
	out := make(map[string]float64, len(accounts))
	for _, a := range accounts {
		out[a.Name] = a.Balance
	}
	return out
}

func TestMigrate_Idempotent(t *testing.T) {
	t.Parallel()
	s := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Migrate(ctx))
	version, err := s.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestInMemoryStorage(t *testing.T) {
	t.Parallel()
	s, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))

	addAccount(t, s, "Carteira", 10)
	assert.Equal(t, map[string]float64{"Carteira": 10}, balances(t, s))
}

func TestAddAccount(t *testing.T) {
	t.Parallel()
	s := createTestStorage(t)
	ctx := context.Background()

	acc := addAccount(t, s, "Itaú", 1200.456)
	assert.InDelta(t, 1200.46, acc.Balance, 1e-9)
	assert.NotEmpty(t, acc.ID)

	tests := []struct {
		wantErr error
		name    string
		input   model.NewAccount
	}{
		{name: "accent-insensitive duplicate", input: model.NewAccount{Name: "itau"}, wantErr: common.ErrDuplicateEntry},
		{name: "negative balance", input: model.NewAccount{Name: "Inter", InitialBalance: -1}, wantErr: common.ErrInvalidAmount},
		{name: "short name", input: model.NewAccount{Name: "X"}, wantErr: ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.AddAccount(ctx, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAddTransaction(t *testing.T) {
	t.Parallel()
	s := createTestStorage(t)
	ctx := context.Background()
	acc := addAccount(t, s, "Nubank", 100)

	res, err := s.AddTransaction(ctx, model.NewTransaction{
		Type: model.TypeExpense, Description: "almoço", AccountID: acc.ID, Amount: 30.1, Timestamp: testNow,
	})
	require.NoError(t, err)
	assert.InDelta(t, 69.9, res.Validation.NewBalance, 1e-9)
	assert.Equal(t, "Nubank", res.Validation.AccountName)

	_, err = s.AddTransaction(ctx, model.NewTransaction{
		Type: model.TypeIncome, Description: "salário", AccountID: acc.ID, Amount: 1000,
	})
	require.NoError(t, err)
	assert.InDelta(t, 1069.9, balances(t, s)["Nubank"], 1e-9)

	got, err := s.GetTransaction(ctx, res.Transaction.ID)
	require.NoError(t, err)
	assert.Equal(t, "almoço", got.Description)
	assert.True(t, testNow.Equal(got.Timestamp))
}

func TestAddTransaction_InsufficientBalanceChangesNothing(t *testing.T) {
	t.Parallel()
	s := createTestStorage(t)
	ctx := context.Background()
	acc := addAccount(t, s, "Nubank", 100)

	_, err := s.AddTransaction(ctx, model.NewTransaction{
		Type: model.TypeExpense, Description: "notebook", AccountID: acc.ID, Amount: 100.01,
	})
	require.ErrorIs(t, err, common.ErrInsufficientBalance)
	assert.InDelta(t, 100, balances(t, s)["Nubank"], 1e-9)

	n, err := s.CountTransactionsByAccount(ctx, acc.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = s.AddTransaction(ctx, model.NewTransaction{
		Type: model.TypeExpense, Description: "tudo", AccountID: acc.ID, Amount: 100,
	})
	assert.NoError(t, err, "spending the exact balance is allowed")
}

func TestAddTransaction_Invalid(t *testing.T) {
	t.Parallel()
	s := createTestStorage(t)
	ctx := context.Background()
	acc := addAccount(t, s, "Nubank", 100)

	tests := []struct {
		wantErr error
		name    string
		input   model.NewTransaction
	}{
		{name: "zero amount", input: model.NewTransaction{Type: model.TypeExpense, Description: "x", AccountID: acc.ID}, wantErr: common.ErrInvalidAmount},
		{name: "unknown account", input: model.NewTransaction{Type: model.TypeExpense, Description: "x", AccountID: "nope", Amount: 1}, wantErr: common.ErrNotFound},
		{name: "transfer type", input: model.NewTransaction{Type: model.TypeTransferIn, Description: "x", AccountID: acc.ID, Amount: 1}, wantErr: ErrInvalidInput},
		{name: "blank description", input: model.NewTransaction{Type: model.TypeIncome, Description: "  ", AccountID: acc.ID, Amount: 1}, wantErr: ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.AddTransaction(ctx, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAddTransaction_DuplicateHash(t *testing.T) {
	t.Parallel()
	s := createTestStorage(t)
	ctx := context.Background()
	acc := addAccount(t, s, "Nubank", 0)

	in := model.NewTransaction{Type: model.TypeIncome, Description: "PIX", AccountID: acc.ID, Amount: 10, Hash: "abc"}
	_, err := s.AddTransaction(ctx, in)
	require.NoError(t, err)
	_, err = s.AddTransaction(ctx, in)
	require.ErrorIs(t, err, common.ErrDuplicateEntry)
	assert.InDelta(t, 10, balances(t, s)["Nubank"], 1e-9)
}

func TestPerformTransfer(t *testing.T) {
	t.Parallel()
	s := createTestStorage(t)
	ctx := context.Background()
	nubank := addAccount(t, s, "Nubank", 500)
	itau := addAccount(t, s, "Itaú", 0)

	res, err := s.PerformTransfer(ctx, model.NewTransfer{FromAccountID: nubank.ID, ToAccountID: itau.ID, Amount: 200})
	require.NoError(t, err)
	assert.Equal(t, res.Out.TransferID, res.In.TransferID)
	assert.Equal(t, map[string]float64{"Nubank": 300, "Itaú": 200}, balances(t, s))

	_, err = s.PerformTransfer(ctx, model.NewTransfer{FromAccountID: itau.ID, ToAccountID: nubank.ID, Amount: 200.01})
	require.ErrorIs(t, err, common.ErrInsufficientBalance)
	assert.Equal(t, map[string]float64{"Nubank": 300, "Itaú": 200}, balances(t, s), "a failed transfer moves nothing")

	_, err = s.PerformTransfer(ctx, model.NewTransfer{FromAccountID: itau.ID, ToAccountID: itau.ID, Amount: 1})
	assert.ErrorIs(t, err, common.ErrSameAccount)
}

func TestUpdateTransaction(t *testing.T) {
	t.Parallel()
	s := createTestStorage(t)
	ctx := context.Background()
	nubank := addAccount(t, s, "Nubank", 100)
	itau := addAccount(t, s, "Itaú", 100)

	res, err := s.AddTransaction(ctx, model.NewTransaction{
		Type: model.TypeExpense, Description: "almoço", AccountID: nubank.ID, Amount: 50,
	})
	require.NoError(t, err)
	id := res.Transaction.ID

	amount := 60.0
	updated, err := s.UpdateTransaction(ctx, id, model.TransactionUpdate{Amount: &amount})
	require.NoError(t, err)
	assert.InDelta(t, 60, updated.Amount, 1e-9)
	assert.InDelta(t, 40, balances(t, s)["Nubank"], 1e-9)

	updated, err = s.UpdateTransaction(ctx, id, model.TransactionUpdate{AccountID: &itau.ID})
	require.NoError(t, err)
	assert.Equal(t, itau.ID, updated.AccountID)
	assert.Equal(t, map[string]float64{"Nubank": 100, "Itaú": 40}, balances(t, s))

	tooMuch := 150.0
	_, err = s.UpdateTransaction(ctx, id, model.TransactionUpdate{Amount: &tooMuch})
	require.ErrorIs(t, err, common.ErrInsufficientBalance)
	assert.Equal(t, map[string]float64{"Nubank": 100, "Itaú": 40}, balances(t, s))

	_, err = s.UpdateTransaction(ctx, "missing", model.TransactionUpdate{Amount: &amount})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpdateTransaction_RejectsTransfers(t *testing.T) {
	t.Parallel()
	s := createTestStorage(t)
	ctx := context.Background()
	a := addAccount(t, s, "Nubank", 100)
	b := addAccount(t, s, "Itaú", 0)

	res, err := s.PerformTransfer(ctx, model.NewTransfer{FromAccountID: a.ID, ToAccountID: b.ID, Amount: 10})
	require.NoError(t, err)
	amount := 20.0
	_, err = s.UpdateTransaction(ctx, res.Out.ID, model.TransactionUpdate{Amount: &amount})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestReverseTransaction(t *testing.T) {
	t.Parallel()
	s := createTestStorage(t)
	ctx := context.Background()
	a := addAccount(t, s, "Nubank", 100)
	b := addAccount(t, s, "Itaú", 0)

	res, err := s.PerformTransfer(ctx, model.NewTransfer{FromAccountID: a.ID, ToAccountID: b.ID, Amount: 40})
	require.NoError(t, err)

	require.NoError(t, s.ReverseTransaction(ctx, res.In.ID))
	assert.Equal(t, map[string]float64{"Nubank": 100, "Itaú": 0}, balances(t, s))
	_, err = s.GetTransaction(ctx, res.Out.ID)
	assert.ErrorIs(t, err, common.ErrNotFound, "both legs are removed")

	income, err := s.AddTransaction(ctx, model.NewTransaction{Type: model.TypeIncome, Description: "pix", AccountID: b.ID, Amount: 30})
	require.NoError(t, err)
	_, err = s.AddTransaction(ctx, model.NewTransaction{Type: model.TypeExpense, Description: "mercado", AccountID: b.ID, Amount: 20})
	require.NoError(t, err)
	err = s.ReverseTransaction(ctx, income.Transaction.ID)
	require.ErrorIs(t, err, common.ErrInsufficientBalance, "the income was already spent")
	assert.InDelta(t, 10, balances(t, s)["Itaú"], 1e-9)
}

func TestGetTransactionsByDateRange(t *testing.T) {
	t.Parallel()
	s := createTestStorage(t)
	ctx := context.Background()
	acc := addAccount(t, s, "Nubank", 1000)

	for i, day := range []int{1, 10, 17, 18} {
		_, err := s.AddTransaction(ctx, model.NewTransaction{
			Type: model.TypeExpense, Description: "gasto", AccountID: acc.ID, Amount: float64(i + 1),
			Timestamp: time.Date(2026, time.March, day, 12, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}

	start := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.March, 17, 23, 59, 59, 0, time.UTC)
	txns, err := s.GetTransactionsByDateRange(ctx, start, end)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.InDelta(t, 2, txns[0].Amount, 1e-9)
	assert.InDelta(t, 3, txns[1].Amount, 1e-9)

	_, err = s.GetTransactionsByDateRange(ctx, end, start)
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestGetFinancialStats(t *testing.T) {
	t.Parallel()
	s := createTestStorage(t)
	ctx := context.Background()
	a := addAccount(t, s, "Nubank", 1000)
	b := addAccount(t, s, "Itaú", 0)

	book := func(kind model.TransactionType, amount float64, ts time.Time) {
		_, err := s.AddTransaction(ctx, model.NewTransaction{Type: kind, Description: "x", AccountID: a.ID, Amount: amount, Timestamp: ts})
		require.NoError(t, err)
	}
	book(model.TypeIncome, 500, testNow)
	book(model.TypeExpense, 120, testNow)
	book(model.TypeExpense, 80, time.Date(2026, time.February, 20, 0, 0, 0, 0, time.UTC))
	_, err := s.PerformTransfer(ctx, model.NewTransfer{FromAccountID: a.ID, ToAccountID: b.ID, Amount: 100, Timestamp: testNow})
	require.NoError(t, err)

	stats, err := s.GetFinancialStats(ctx, testNow)
	require.NoError(t, err)
	assert.InDelta(t, 1300, stats.TotalBalance, 1e-9)
	assert.InDelta(t, 500, stats.MonthlyIncome, 1e-9)
	assert.InDelta(t, 120, stats.MonthlyExpenses, 1e-9)
}

func TestDeleteAccount(t *testing.T) {
	t.Parallel()
	s := createTestStorage(t)
	ctx := context.Background()
	used := addAccount(t, s, "Nubank", 100)
	empty := addAccount(t, s, "Inter", 0)

	_, err := s.AddTransaction(ctx, model.NewTransaction{Type: model.TypeExpense, Description: "x", AccountID: used.ID, Amount: 1})
	require.NoError(t, err)

	assert.ErrorIs(t, s.DeleteAccount(ctx, used.ID), common.ErrAccountInUse)
	require.NoError(t, s.DeleteAccount(ctx, empty.ID))
	assert.ErrorIs(t, s.DeleteAccount(ctx, empty.ID), common.ErrNotFound)
}

func TestRecurringBills(t *testing.T) {
	t.Parallel()
	s := createTestStorage(t)
	ctx := context.Background()

	bill, err := s.AddRecurringBill(ctx, model.NewFixedBill{Name: "Aluguel", Category: "moradia", Amount: 1500, DueDay: 10})
	require.NoError(t, err)
	assert.True(t, bill.IsActive)

	_, err = s.AddRecurringBill(ctx, model.NewFixedBill{Name: "aluguel", Category: "moradia", Amount: 1, DueDay: 1})
	require.ErrorIs(t, err, common.ErrDuplicateEntry)

	_, err = s.AddRecurringBill(ctx, model.NewFixedBill{Name: "Luz", Category: "utilidades", Amount: 100, DueDay: 32})
	require.ErrorIs(t, err, ErrInvalidInput)

	paid := testNow
	amount := 1600.0
	require.NoError(t, s.UpdateRecurringBill(ctx, bill.ID, model.FixedBillUpdate{LastPaidAt: &paid, Amount: &amount}))

	bills, err := s.GetRecurringBills(ctx)
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.InDelta(t, 1600, bills[0].Amount, 1e-9)
	require.NotNil(t, bills[0].LastPaidAt)
	assert.True(t, bills[0].PaidIn(testNow))

	inactive := false
	require.NoError(t, s.UpdateRecurringBill(ctx, bill.ID, model.FixedBillUpdate{IsActive: &inactive}))
	_, err = s.AddRecurringBill(ctx, model.NewFixedBill{Name: "Aluguel", Category: "moradia", Amount: 1700, DueDay: 5})
	require.NoError(t, err, "an inactive bill frees its name")

	require.NoError(t, s.DeleteRecurringBill(ctx, bill.ID))
	assert.ErrorIs(t, s.DeleteRecurringBill(ctx, bill.ID), common.ErrNotFound)
	assert.ErrorIs(t, s.UpdateRecurringBill(ctx, bill.ID, model.FixedBillUpdate{Amount: &amount}), common.ErrNotFound)
}

func TestConcurrentExpensesNeverOverdraw(t *testing.T) {
	t.Parallel()
	s := createTestStorage(t)
	ctx := context.Background()
	acc := addAccount(t, s, "Nubank", 100)

	var wg sync.WaitGroup
	results := make(chan error, 20)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.AddTransaction(ctx, model.NewTransaction{
				Type: model.TypeExpense, Description: "café", AccountID: acc.ID, Amount: 10,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	ok := 0
	for err := range results {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, common.ErrInsufficientBalance)
	}
	assert.Equal(t, 10, ok)
	assert.Zero(t, balances(t, s)["Nubank"])
}

func TestBackup(t *testing.T) {
	t.Parallel()
	s := createTestStorage(t)
	ctx := context.Background()
	addAccount(t, s, "Nubank", 100)

	dest := filepath.Join(t.TempDir(), "backups", "dinah.db")
	info, err := s.Backup(ctx, dest)
	require.NoError(t, err)
	assert.Equal(t, 1, info.RowCounts["accounts"])
	assert.Equal(t, ExpectedSchemaVersion, info.SchemaVersion)
	assert.Positive(t, info.FileSize)

	copied, err := NewSQLiteStorage(dest)
	require.NoError(t, err)
	t.Cleanup(func() { _ = copied.Close() })
	accounts, err := copied.GetAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "Nubank", accounts[0].Name)

	_, err = s.Backup(ctx, dest)
	assert.ErrorIs(t, err, ErrBackupExists)
}
