package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatBRL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		want string
		in   float64
	}{
		{in: 0, want: "R$ 0,00"},
		{in: 50, want: "R$ 50,00"},
		{in: 50.5, want: "R$ 50,50"},
		{in: 1000, want: "R$ 1.000,00"},
		{in: 1234567.891, want: "R$ 1.234.567,89"},
		{in: -20.1, want: "-R$ 20,10"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FormatBRL(tt.in))
		})
	}
}

func TestCents(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(1001), ToCents(10.01))
	assert.Equal(t, int64(30), ToCents(0.1+0.2))
	assert.InDelta(t, 10.01, FromCents(1001), 1e-9)
	assert.InDelta(t, 0.3, RoundCents(0.1+0.2), 1e-9)
}

func TestFixedBill_DueDate(t *testing.T) {
	t.Parallel()

	bill := FixedBill{DueDay: 31}
	feb := time.Date(2026, time.February, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 28, bill.DueDate(feb).Day())

	bill.DueDay = 10
	assert.Equal(t, time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC), bill.DueDate(feb))
}

func TestFixedBill_PaidIn(t *testing.T) {
	t.Parallel()

	paid := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)
	bill := FixedBill{LastPaidAt: &paid}
	assert.True(t, bill.PaidIn(time.Date(2026, time.March, 30, 0, 0, 0, 0, time.UTC)))
	assert.False(t, bill.PaidIn(time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, (&FixedBill{}).PaidIn(paid))
}

func TestTransactionType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, -1, TypeExpense.Sign())
	assert.Equal(t, -1, TypeTransferOut.Sign())
	assert.Equal(t, 1, TypeIncome.Sign())
	assert.Equal(t, 1, TypeTransferIn.Sign())
	assert.Equal(t, "despesa", TypeExpense.Label())
}

func TestTotalBalance(t *testing.T) {
	t.Parallel()

	accounts := []Account{{ID: "1", Balance: 10.1}, {ID: "2", Balance: 20.2}}
	assert.InDelta(t, 30.3, TotalBalance(accounts), 1e-9)

	acc, ok := FindAccount(accounts, "2")
	assert.True(t, ok)
	assert.InDelta(t, 20.2, acc.Balance, 1e-9)
}
