package chat

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/dinah/internal/common"
	"github.com/Veraticus/dinah/internal/dialogue"
	"github.com/Veraticus/dinah/internal/model"
	"github.com/Veraticus/dinah/internal/service"
)

// busyLedger fails the first writes with common.ErrBusy.
type busyLedger struct {
	service.Ledger
	failures int
	calls    int
}

func (b *busyLedger) AddTransaction(ctx context.Context, in model.NewTransaction) (*model.AddTransactionResult, error) {
	b.calls++
	if b.calls <= b.failures {
		return nil, common.ErrBusy
	}
	return b.Ledger.AddTransaction(ctx, in)
}

func accountIDs(t *testing.T, ledger service.Ledger) map[string]model.Account {
	t.Helper()
	accounts, err := ledger.GetAccounts(context.Background())
	require.NoError(t, err)
	out := make(map[string]model.Account, len(accounts))
	for _, a := range accounts {
		out[a.Name] = a
	}
	return out
}

func TestExecutor_InsufficientBalanceBreakdown(t *testing.T) {
	t.Parallel()
	store := createTestStorage(t, map[string]float64{"Nubank": 10, "Itaú": 500})
	ids := accountIDs(t, store)

	// The turn was decided on balances that are out of date.
	stale := []model.Account{ids["Nubank"], ids["Itaú"]}
	stale[0].Balance = 5000

	x := NewExecutor(store, nil, fastRetry())
	_, err := x.Execute(context.Background(), dialogue.TransactionData{
		Type: model.TypeExpense, Description: "notebook", AccountID: ids["Nubank"].ID, Amount: 100, Timestamp: testNow,
	}, stale, testNow)
	require.ErrorIs(t, err, common.ErrInsufficientBalance)

	msg := common.UserMessage(err, "")
	assert.Contains(t, msg, "Saldo insuficiente em Nubank: você tem R$ 10,00 e precisa de R$ 100,00 (faltam R$ 90,00).")
	assert.Contains(t, msg, "Você pode usar: Itaú.")
	assert.InDelta(t, 10, balances(t, store)["Nubank"], 1e-9)
}

func TestExecutor_RetriesBusyWrites(t *testing.T) {
	t.Parallel()
	store := createTestStorage(t, map[string]float64{"Nubank": 100})
	ids := accountIDs(t, store)
	ledger := &busyLedger{Ledger: store, failures: 2}

	x := NewExecutor(ledger, nil, fastRetry())
	out, err := x.Execute(context.Background(), dialogue.TransactionData{
		Type: model.TypeIncome, Description: "pix", AccountID: ids["Nubank"].ID, Amount: 5, Timestamp: testNow,
	}, nil, testNow)
	require.NoError(t, err)
	assert.Equal(t, 3, ledger.calls)
	require.Len(t, out.Booked, 1)
	assert.InDelta(t, 105, balances(t, store)["Nubank"], 1e-9)
}

func TestExecutor_GivesUpWhenAlwaysBusy(t *testing.T) {
	t.Parallel()
	store := createTestStorage(t, map[string]float64{"Nubank": 100})
	ids := accountIDs(t, store)
	ledger := &busyLedger{Ledger: store, failures: 10}

	x := NewExecutor(ledger, nil, fastRetry())
	_, err := x.Execute(context.Background(), dialogue.TransactionData{
		Type: model.TypeIncome, Description: "pix", AccountID: ids["Nubank"].ID, Amount: 5,
	}, nil, testNow)
	require.ErrorIs(t, err, common.ErrMaxRetries)
	msg := common.UserMessage(err, "")
	assert.True(t, strings.HasPrefix(msg, msgLedgerFailure), msg)
	assert.Contains(t, msg, "database is busy")
}

func TestExecutor_DuplicateAccount(t *testing.T) {
	t.Parallel()
	store := createTestStorage(t, map[string]float64{"Itaú": 0})

	x := NewExecutor(store, nil, fastRetry())
	_, err := x.Execute(context.Background(), dialogue.CreateAccountData{Name: "itau"}, nil, testNow)
	require.ErrorIs(t, err, common.ErrDuplicateEntry)
	assert.Equal(t, msgDuplicateAcct, common.UserMessage(err, ""))
}

func TestExecutor_CancelBlockedBySpentIncome(t *testing.T) {
	t.Parallel()
	store := createTestStorage(t, map[string]float64{"Nubank": 0})
	ids := accountIDs(t, store)
	ctx := context.Background()

	income, err := store.AddTransaction(ctx, model.NewTransaction{Type: model.TypeIncome, Description: "salário", AccountID: ids["Nubank"].ID, Amount: 100})
	require.NoError(t, err)
	_, err = store.AddTransaction(ctx, model.NewTransaction{Type: model.TypeExpense, Description: "mercado", AccountID: ids["Nubank"].ID, Amount: 60})
	require.NoError(t, err)

	x := NewExecutor(store, nil, fastRetry())
	_, err = x.Execute(ctx, dialogue.CancelTransactionData{Transaction: income.Transaction}, nil, testNow)
	require.ErrorIs(t, err, common.ErrInsufficientBalance)
	assert.Equal(t, msgReversalBlocked, common.UserMessage(err, ""))
}

func TestExecutor_MoveTransferSource(t *testing.T) {
	t.Parallel()
	store := createTestStorage(t, map[string]float64{"Nubank": 300, "Itaú": 0})
	ctx := context.Background()
	ids := accountIDs(t, store)
	inter, err := store.AddAccount(ctx, model.NewAccount{Name: "Inter", InitialBalance: 200})
	require.NoError(t, err)

	res, err := store.PerformTransfer(ctx, model.NewTransfer{
		FromAccountID: ids["Nubank"].ID, ToAccountID: ids["Itaú"].ID, Amount: 100, Timestamp: testNow,
	})
	require.NoError(t, err)

	x := NewExecutor(store, nil, fastRetry())
	out, err := x.Execute(ctx, dialogue.ReverseAndRecreateData{Original: res.Out, FromAccountID: &inter.ID}, nil, testNow)
	require.NoError(t, err)
	assert.Equal(t, []string{res.Out.ID}, out.Removed)
	require.Len(t, out.Booked, 1)
	assert.Equal(t, inter.ID, out.Booked[0].AccountID)
	assert.Equal(t, map[string]float64{"Nubank": 300, "Itaú": 100, "Inter": 100}, balances(t, store))
}

func TestExecutor_FailedRecreateRestoresTransfer(t *testing.T) {
	t.Parallel()
	store := createTestStorage(t, map[string]float64{"Nubank": 300, "Itaú": 0})
	ctx := context.Background()
	ids := accountIDs(t, store)

	res, err := store.PerformTransfer(ctx, model.NewTransfer{
		FromAccountID: ids["Nubank"].ID, ToAccountID: ids["Itaú"].ID, Amount: 100, Timestamp: testNow,
	})
	require.NoError(t, err)

	tooMuch := 1000.0
	x := NewExecutor(store, nil, fastRetry())
	out, err := x.Execute(ctx, dialogue.ReverseAndRecreateData{Original: res.Out, Amount: &tooMuch},
		[]model.Account{ids["Nubank"], ids["Itaú"]}, testNow)
	require.ErrorIs(t, err, common.ErrInsufficientBalance)
	assert.Equal(t, map[string]float64{"Nubank": 200, "Itaú": 100}, balances(t, store))
	require.Len(t, out.Booked, 1, "the restored transfer replaces the original")
	assert.InDelta(t, 100, out.Booked[0].Amount, 1e-9)
}

func TestExecutor_NilData(t *testing.T) {
	t.Parallel()
	out, err := NewExecutor(nil, nil, fastRetry()).Execute(context.Background(), nil, nil, testNow)
	require.NoError(t, err)
	assert.Equal(t, Outcome{}, out)
}
