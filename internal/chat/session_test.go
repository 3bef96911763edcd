package chat

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/dinah/internal/dialogue"
	"github.com/Veraticus/dinah/internal/model"
	"github.com/Veraticus/dinah/internal/service"
	"github.com/Veraticus/dinah/internal/storage"
	"github.com/Veraticus/dinah/internal/summary"
)

var testNow = time.Date(2026, time.March, 18, 15, 4, 0, 0, time.UTC)

func clock() time.Time { return testNow }

func fastRetry() service.RetryOptions {
	return service.RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}
}

func createTestStorage(t *testing.T, accounts map[string]float64) *storage.SQLiteStorage {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "dinah.db"), storage.WithClock(clock))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))
	for _, name := range []string{"Nubank", "Itaú"} {
		if balance, ok := accounts[name]; ok {
			_, err := store.AddAccount(ctx, model.NewAccount{Name: name, InitialBalance: balance})
			require.NoError(t, err)
		}
	}
	return store
}

func newTestSession(ledger service.Ledger, opts ...Option) *Session {
	engine := dialogue.New(dialogue.WithClock(clock))
	opts = append([]Option{WithClock(clock), WithRetryOptions(fastRetry())}, opts...)
	return NewSession(engine, ledger, opts...)
}

func balances(t *testing.T, ledger service.Ledger) map[string]float64 {
	t.Helper()
	accounts, err := ledger.GetAccounts(context.Background())
	require.NoError(t, err)
	out := make(map[string]float64, len(accounts))
	for _, a := range accounts {
		out[a.Name] = a.Balance
	}
	return out
}

func send(t *testing.T, s *Session, message string) Reply {
	t.Helper()
	reply, err := s.Send(context.Background(), message)
	require.NoError(t, err)
	return reply
}

func TestSession_ExpenseIsBookedAndCorrectable(t *testing.T) {
	t.Parallel()
	store := createTestStorage(t, map[string]float64{"Nubank": 100, "Itaú": 50})
	s := newTestSession(store)

	reply := send(t, s, "gastei 30 no mercado no nubank")
	require.Equal(t, dialogue.StatusSuccess, reply.Status, reply.Text)
	assert.Equal(t, dialogue.ActionAddTransaction, reply.Action)
	assert.InDelta(t, 70, balances(t, store)["Nubank"], 1e-9)
	require.Len(t, s.Recent(), 1)

	reply = send(t, s, "errei o valor")
	require.Equal(t, dialogue.StatusClarification, reply.Status)
	reply = send(t, s, "40")
	require.Equal(t, dialogue.StatusSuccess, reply.Status, reply.Text)
	assert.InDelta(t, 60, balances(t, store)["Nubank"], 1e-9)
	require.Len(t, s.Recent(), 1)
	assert.InDelta(t, 40, s.Recent()[0].Amount, 1e-9)

	reply = send(t, s, "errei")
	require.Equal(t, dialogue.StatusClarification, reply.Status)
	reply = send(t, s, "excluir")
	require.Equal(t, dialogue.StatusSuccess, reply.Status, reply.Text)
	assert.InDelta(t, 100, balances(t, store)["Nubank"], 1e-9)
	assert.Empty(t, s.Recent())
}

func TestSession_TransferCorrectionRecreatesTransfer(t *testing.T) {
	t.Parallel()
	store := createTestStorage(t, map[string]float64{"Nubank": 500, "Itaú": 50})
	s := newTestSession(store)

	reply := send(t, s, "transferir 100 do Nubank para o Itaú")
	require.Equal(t, dialogue.StatusSuccess, reply.Status, reply.Text)
	assert.Equal(t, map[string]float64{"Nubank": 400, "Itaú": 150}, balances(t, store))

	reply = send(t, s, "errei o valor, era 80")
	require.Equal(t, dialogue.StatusSuccess, reply.Status, reply.Text)
	assert.Equal(t, dialogue.ActionReverseAndRecreate, reply.Action)
	assert.Equal(t, map[string]float64{"Nubank": 420, "Itaú": 130}, balances(t, store))

	recent := s.Recent()
	require.Len(t, recent, 1)
	assert.Equal(t, model.TypeTransferOut, recent[0].Type)
	assert.InDelta(t, 80, recent[0].Amount, 1e-9)
}

func TestSession_PayFixedBillMarksItPaid(t *testing.T) {
	t.Parallel()
	store := createTestStorage(t, map[string]float64{"Nubank": 2000, "Itaú": 50})
	ctx := context.Background()
	_, err := store.AddRecurringBill(ctx, model.NewFixedBill{Name: "Aluguel", Category: "moradia", Amount: 1500, DueDay: 10})
	require.NoError(t, err)
	s := newTestSession(store)

	reply := send(t, s, "paguei o aluguel no nubank")
	require.Equal(t, dialogue.StatusSuccess, reply.Status, reply.Text)
	assert.Equal(t, dialogue.ActionPayFixedBill, reply.Action)
	assert.InDelta(t, 500, balances(t, store)["Nubank"], 1e-9)

	bills, err := store.GetRecurringBills(ctx)
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.True(t, bills[0].PaidIn(testNow))
	require.Len(t, s.Recent(), 1, "a bill payment can be corrected like any expense")
}

func TestSession_CreateAccount(t *testing.T) {
	t.Parallel()
	store := createTestStorage(t, map[string]float64{"Nubank": 10})
	s := newTestSession(store)

	reply := send(t, s, "criar conta Inter")
	require.Equal(t, dialogue.StatusClarification, reply.Status)
	require.True(t, s.Pending())

	reply = send(t, s, "500")
	require.Equal(t, dialogue.StatusSuccess, reply.Status, reply.Text)
	assert.False(t, s.Pending())
	assert.Equal(t, map[string]float64{"Nubank": 10, "Inter": 500}, balances(t, store))
}

func TestSession_CreateFixedBill(t *testing.T) {
	t.Parallel()
	store := createTestStorage(t, map[string]float64{"Nubank": 10})
	s := newTestSession(store)

	reply := send(t, s, "cadastrar conta fixa de internet 100 reais")
	require.Equal(t, dialogue.StatusClarification, reply.Status)
	reply = send(t, s, "20")
	require.Equal(t, dialogue.StatusSuccess, reply.Status, reply.Text)

	bills, err := store.GetRecurringBills(context.Background())
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.Equal(t, "Internet", bills[0].Name)
	assert.Equal(t, 20, bills[0].DueDay)

	reply = send(t, s, "cadastrar conta fixa de internet 100 reais")
	assert.Equal(t, dialogue.StatusError, reply.Status, "already registered")
}

func TestSession_SummaryQuery(t *testing.T) {
	t.Parallel()
	store := createTestStorage(t, map[string]float64{"Nubank": 100})
	ctx := context.Background()
	accounts, err := store.GetAccounts(ctx)
	require.NoError(t, err)
	_, err = store.AddTransaction(ctx, model.NewTransaction{
		Type: model.TypeExpense, Description: "mercado", AccountID: accounts[0].ID, Amount: 20,
		Timestamp: testNow.AddDate(0, 0, -1),
	})
	require.NoError(t, err)

	s := newTestSession(store, WithSummarizer(summary.New(store)))
	reply := send(t, s, "quanto gastei ontem")
	require.Equal(t, dialogue.StatusSuccess, reply.Status, reply.Text)
	assert.Equal(t, "Gastos (ontem): R$ 20,00 em 1 lançamento.\n• Alimentação: R$ 20,00 (1)", reply.Text)

	bare := newTestSession(store)
	reply = send(t, bare, "quanto gastei ontem")
	assert.Equal(t, dialogue.StatusError, reply.Status)
	assert.Equal(t, msgSummaryFailure, reply.Text)
}

type failingSummarizer struct{}

func (failingSummarizer) Summarize(context.Context, service.SummaryRequest) (string, error) {
	return "", errors.New("disk I/O error")
}

func TestSession_CollaboratorFailureKeepsCause(t *testing.T) {
	t.Parallel()
	store := createTestStorage(t, map[string]float64{"Nubank": 100})

	s := newTestSession(store, WithSummarizer(failingSummarizer{}))
	reply := send(t, s, "quanto gastei ontem")
	assert.Equal(t, dialogue.StatusError, reply.Status)
	assert.True(t, strings.HasPrefix(reply.Text, msgSummaryFailure), reply.Text)
	assert.Contains(t, reply.Text, "disk I/O error")
}

func TestSession_Reset(t *testing.T) {
	t.Parallel()
	store := createTestStorage(t, map[string]float64{"Nubank": 100, "Itaú": 50})
	s := newTestSession(store)

	send(t, s, "gastei 30 no mercado no nubank")
	send(t, s, "errei")
	require.True(t, s.Pending())

	s.Reset()
	assert.False(t, s.Pending())
	assert.Empty(t, s.Recent())

	reply := send(t, s, "errei")
	assert.Equal(t, dialogue.StatusError, reply.Status)
}

type failingLedger struct {
	service.Ledger
	err error
}

func (f failingLedger) GetAccounts(context.Context) ([]model.Account, error) {
	return nil, f.err
}

func TestSession_LoadFailure(t *testing.T) {
	t.Parallel()
	boom := errors.New("disk gone")
	s := newTestSession(failingLedger{err: boom})

	_, err := s.Send(context.Background(), "qual meu saldo?")
	assert.ErrorIs(t, err, boom)
}

func TestOptionAnswer(t *testing.T) {
	t.Parallel()
	two := []dialogue.Option{{Name: "Nubank", ID: "id-1"}, {Name: "Itaú", ID: "id-2"}}
	one := []dialogue.Option{{Name: "Começar zerada", ID: "zero"}}

	tests := []struct {
		name    string
		input   string
		options []dialogue.Option
		want    string
	}{
		{name: "number selects", input: "2", options: two, want: "id-2"},
		{name: "padded number", input: " 1 ", options: two, want: "id-1"},
		{name: "out of range", input: "3", options: two, want: "3"},
		{name: "text passes through", input: "nubank", options: two, want: "nubank"},
		{name: "single option keeps numbers", input: "1", options: one, want: "1"},
		{name: "no options", input: "1", want: "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, OptionAnswer(tt.input, tt.options))
		})
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()
	got := Format(Reply{
		Text:        "De qual conta?",
		Options:     []dialogue.Option{{Name: "Nubank", ID: "1"}, {Name: "Itaú", ID: "2"}},
		Suggestions: []string{"criar conta Nubank"},
	})
	assert.Equal(t, "De qual conta?\n  1. Nubank\n  2. Itaú\n  → criar conta Nubank", got)
}
