package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/dinah/internal/knowledge"
	"github.com/Veraticus/dinah/internal/model"
)

// Wednesday.
var testNow = time.Date(2026, time.March, 18, 15, 4, 0, 0, time.UTC)

func TestMonetaryValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		message string
		want    float64
		found   bool
	}{
		{name: "currency symbol", message: "R$50", want: 50, found: true},
		{name: "currency symbol with space", message: "gastei R$ 12,90 no café", want: 12.9, found: true},
		{name: "reais", message: "50 reais", want: 50, found: true},
		{name: "comma decimal", message: "50,50", want: 50.5, found: true},
		{name: "centavos", message: "50 centavos", want: 0.5, found: true},
		{name: "thousands", message: "recebi R$ 1.500,00 de salário", want: 1500, found: true},
		{name: "international", message: "paid 1,500.25 reais", want: 1500.25, found: true},
		{name: "mil", message: "recebi 3 mil de bônus", want: 3000, found: true},
		{name: "contos", message: "torrei 20 contos no bar", want: 20, found: true},
		{name: "bare number", message: "gastei 35 no uber", want: 35, found: true},
		{name: "date is not an amount", message: "no dia 10/03", found: false},
		{name: "time is not an amount", message: "às 14h", found: false},
		{name: "day reference is not an amount", message: "do dia 1 ao dia 10", found: false},
		{name: "amount after date", message: "ontem 14:30 gastei 20 no lanche", want: 20, found: true},
		{name: "nothing", message: "oi tudo bem", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := MonetaryValue(tt.message)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestDate(t *testing.T) {
	t.Parallel()

	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		want     time.Time
		name     string
		message  string
		kind     DateKind
		found    bool
		needTime bool
	}{
		{name: "today", message: "gastei 10 hoje", want: day(2026, 3, 18), kind: DateToday, found: true},
		{name: "yesterday", message: "ontem paguei 30", want: day(2026, 3, 17), kind: DateYesterday, found: true, needTime: true},
		{name: "tomorrow", message: "amanhã", want: day(2026, 3, 19), kind: DateTomorrow, found: true},
		{name: "day before yesterday", message: "anteontem", want: day(2026, 3, 16), kind: DatePast, found: true, needTime: true},
		{name: "weekday ahead", message: "na sexta", want: day(2026, 3, 20), kind: DateWeekday, found: true},
		{name: "weekday today", message: "quarta-feira", want: day(2026, 3, 18), kind: DateWeekday, found: true},
		{name: "weekday wraps", message: "segunda", want: day(2026, 3, 23), kind: DateWeekday, found: true},
		{name: "slash full year", message: "dia 05/01/2025", want: day(2025, 1, 5), kind: DatePast, found: true, needTime: true},
		{name: "slash short year", message: "05/01/25", want: day(2025, 1, 5), kind: DatePast, found: true, needTime: true},
		{name: "slash no year", message: "em 25/12", want: day(2026, 12, 25), kind: DateFuture, found: true},
		{name: "words", message: "10 de março de 2026", want: day(2026, 3, 10), kind: DatePast, found: true, needTime: true},
		{name: "invalid calendar date", message: "dia 30/02/2025", found: false},
		{name: "none", message: "gastei 50 no mercado", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Date(tt.message, testNow)
			require.Equal(t, tt.found, ok)
			if !tt.found {
				return
			}
			assert.Equal(t, tt.want, got.Date)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.needTime, got.NeedsTime())
		})
	}
}

func TestParseTimeOfDay(t *testing.T) {
	t.Parallel()

	valid := map[string]TimeOfDay{
		"14:30":    {Hour: 14, Minute: 30},
		"14 horas": {Hour: 14},
		"9":        {Hour: 9},
		"às 8":     {Hour: 8},
		"14,30":    {Hour: 14, Minute: 30},
		"14.15":    {Hour: 14, Minute: 15},
		"14hrs":    {Hour: 14},
		"14h":      {Hour: 14},
		"14h45":    {Hour: 14, Minute: 45},
		"meio dia": {Hour: 12},
	}
	for in, want := range valid {
		got, ok := ParseTimeOfDay(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"25:00", "14:75", "sei lá", "24h"} {
		_, ok := ParseTimeOfDay(in)
		assert.False(t, ok, in)
	}

	got, ok := MentionedTime("ontem às 19h paguei 40")
	require.True(t, ok)
	assert.Equal(t, "19:00", got.String())
}

func TestFindPeriod(t *testing.T) {
	t.Parallel()

	p, ok := FindPeriod("quanto gastei ontem", testNow)
	require.True(t, ok)
	assert.Equal(t, "ontem", p.Label)
	assert.Equal(t, time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC), p.Start)
	assert.Equal(t, time.Date(2026, 3, 17, 23, 59, 59, 0, time.UTC), p.End)

	p, ok = FindPeriod("gastos desta semana", testNow)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), p.Start, "week starts on Sunday")

	p, ok = FindPeriod("resumo do mês passado", testNow)
	require.True(t, ok)
	assert.Equal(t, "mês passado", p.Label)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), p.Start)
	assert.Equal(t, time.Date(2026, 2, 28, 23, 59, 59, 0, time.UTC), p.End)

	p, ok = FindPeriod("gastos em janeiro", testNow)
	require.True(t, ok)
	assert.Equal(t, "janeiro de 2026", p.Label)

	p, ok = FindPeriod("gastos em novembro", testNow)
	require.True(t, ok)
	assert.Equal(t, 2025, p.Start.Year(), "months after the current one are last year")

	p, ok = FindPeriod("resumo do mês 2", testNow)
	require.True(t, ok)
	assert.Equal(t, time.February, p.Start.Month())

	p, ok = FindPeriod("últimos 7 dias", testNow)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC), p.Start)

	p, ok = FindPeriod("gastei do dia 1 ao dia 10", testNow)
	require.True(t, ok)
	assert.True(t, p.NeedsMonthClarification)
	assert.Equal(t, 1, p.DayFrom)
	assert.Equal(t, 10, p.DayTo)

	p, ok = FindPeriod("do dia 1 ao dia 10 de fevereiro", testNow)
	require.True(t, ok)
	assert.False(t, p.NeedsMonthClarification)
	assert.Equal(t, time.Date(2026, 2, 10, 23, 59, 59, 0, time.UTC), p.End)

	_, ok = FindPeriod("gastei 50 no mercado", testNow)
	assert.False(t, ok)

	def := PeriodOrDefault("quanto gastei", testNow)
	assert.Equal(t, "este mês", def.Label)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), def.Start)
}

func TestBarePeriod(t *testing.T) {
	t.Parallel()

	for _, msg := range []string{"e ontem?", "e no mês passado", "hoje", "E em fevereiro?"} {
		_, ok := BarePeriod(msg, testNow)
		assert.True(t, ok, msg)
	}
	for _, msg := range []string{"quanto gastei ontem", "gastei 50 hoje", "oi"} {
		_, ok := BarePeriod(msg, testNow)
		assert.False(t, ok, msg)
	}
}

func TestDescription(t *testing.T) {
	t.Parallel()

	accounts := []string{"Nubank", "Itaú"}
	tests := []struct {
		message string
		want    string
	}{
		{message: "gastei 100 reais no mercado", want: "mercado"},
		{message: "Gastei R$50", want: ""},
		{message: "gastei 50 no almoço no nubank", want: "almoço"},
		{message: "paguei 120 de luz ontem", want: "luz"},
		{message: "gastei 30 com uber hoje às 14h", want: "uber"},
		{message: "almoço 30 reais", want: "almoço"},
		{message: "recebi 3000 de salário", want: "salário"},
		{message: "comprei um tênis por 200 no itaú", want: "tênis"},
		{message: "paguei o uber no nubank", want: "uber"},
		{message: "30 reais uber", want: "uber"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Description(tt.message, accounts...))
		})
	}

	assert.Equal(t, "almoço", CleanDescription("almoço"))
	assert.Equal(t, "conta de luz", CleanDescription("conta de luz hoje"))
}

func TestPersonName(t *testing.T) {
	t.Parallel()

	name, ok := PersonName("mandei 50 pro João", "Nubank")
	require.True(t, ok)
	assert.Equal(t, "João", name)

	name, ok = PersonName("fiz um pix de 30 para a Maria Clara", "Nubank")
	require.True(t, ok)
	assert.Equal(t, "Maria Clara", name)

	_, ok = PersonName("transferi 100 para o Itaú", "Nubank", "Itaú")
	assert.False(t, ok)
}

func TestResolveAccount(t *testing.T) {
	t.Parallel()

	nubank := model.Account{ID: "1", Name: "Nubank"}
	empresarial := model.Account{ID: "2", Name: "Nubank Empresarial"}
	itau := model.Account{ID: "3", Name: "Itaú"}
	inter := model.Account{ID: "4", Name: "Inter"}

	t.Run("specific name wins", func(t *testing.T) {
		t.Parallel()
		m := ResolveAccount("paguei com o nubank empresarial", []model.Account{nubank, empresarial})
		require.Equal(t, MatchFound, m.Status)
		assert.Equal(t, "2", m.Account.ID)
	})

	t.Run("bare name", func(t *testing.T) {
		t.Parallel()
		m := ResolveAccount("nubank", []model.Account{nubank, itau})
		require.Equal(t, MatchFound, m.Status)
		assert.Equal(t, "1", m.Account.ID)
	})

	t.Run("bare name with qualified sibling", func(t *testing.T) {
		t.Parallel()
		m := ResolveAccount("nubank", []model.Account{nubank, empresarial})
		require.Equal(t, MatchFound, m.Status)
		assert.Equal(t, "1", m.Account.ID)
	})

	t.Run("accents and case", func(t *testing.T) {
		t.Parallel()
		m := ResolveAccount("no ITAU", []model.Account{nubank, itau})
		assert.Equal(t, "3", m.Account.ID)
	})

	t.Run("abbreviation", func(t *testing.T) {
		t.Parallel()
		m := ResolveAccount("gastei no nu", []model.Account{nubank, itau})
		require.Equal(t, MatchFound, m.Status)
		assert.Equal(t, "1", m.Account.ID)
	})

	t.Run("typo", func(t *testing.T) {
		t.Parallel()
		m := ResolveAccount("nubanck", []model.Account{nubank, itau, inter})
		require.Equal(t, MatchFound, m.Status)
		assert.Equal(t, "1", m.Account.ID)
	})

	t.Run("ambiguous", func(t *testing.T) {
		t.Parallel()
		pessoal := model.Account{ID: "5", Name: "Inter Pessoal"}
		empresa := model.Account{ID: "6", Name: "Inter Empresa"}
		m := ResolveAccount("inter", []model.Account{pessoal, empresa})
		require.Equal(t, MatchAmbiguous, m.Status)
		assert.Len(t, m.Candidates, 2)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		m := ResolveAccount("bradesco", []model.Account{nubank, itau})
		assert.Equal(t, MatchNotFound, m.Status)
	})

	t.Run("single account is selected", func(t *testing.T) {
		t.Parallel()
		m := ResolveAccount("qualquer coisa", []model.Account{itau})
		require.Equal(t, MatchFound, m.Status)
		assert.Equal(t, "3", m.Account.ID)
	})

	t.Run("by id", func(t *testing.T) {
		t.Parallel()
		m := ResolveAccount("3", []model.Account{nubank, itau})
		assert.Equal(t, "3", m.Account.ID)
	})
}

func TestTransferAccounts(t *testing.T) {
	t.Parallel()

	accounts := []model.Account{{ID: "1", Name: "Nubank"}, {ID: "2", Name: "Itaú"}, {ID: "3", Name: "Banco do Brasil"}}

	msg := "transferi 100 reais da conta do Nubank para o Itaú"
	src := SourceAccount(msg, accounts)
	require.True(t, src.Found())
	assert.Equal(t, "1", src.Account.ID)

	dst := DestinationAccount(msg, accounts, src.Account.ID)
	require.True(t, dst.Found())
	assert.Equal(t, "2", dst.Account.ID)

	dst = DestinationAccount("passa 50 pro banco do brasil", accounts, "")
	require.True(t, dst.Found())
	assert.Equal(t, "3", dst.Account.ID)

	none := DestinationAccount("transferi 100 do nubank para o nubank", accounts, "1")
	assert.Equal(t, MatchNotFound, none.Status)

	assert.False(t, SourceAccount("transferi 100", accounts[:1]).Found(), "no auto-select for explicit references")
}

func TestBank(t *testing.T) {
	t.Parallel()

	m, ok := Bank("abri uma conta no banco do brasil")
	require.True(t, ok)
	assert.Equal(t, "bb", m.Key)
	assert.Equal(t, knowledge.BankPublic, m.Category)

	m, ok = Bank("Nubank")
	require.True(t, ok)
	assert.Equal(t, knowledge.BankDigital, m.Category)

	_, ok = Bank("minha poupança")
	assert.False(t, ok)
}

func TestFixedBill(t *testing.T) {
	t.Parallel()

	bills := []model.FixedBill{
		{ID: "b1", Name: "Conta de Luz", Category: "utilidades", Amount: 180, DueDay: 15, IsActive: true},
		{ID: "b2", Name: "Aluguel", Category: "moradia", Amount: 1500, DueDay: 10, IsActive: true},
		{ID: "b3", Name: "Netflix", Category: "assinatura", Amount: 55, DueDay: 20},
	}

	m, ok := FixedBill("paguei o aluguel", bills)
	require.True(t, ok)
	assert.Equal(t, BillRegistered, m.Source)
	assert.Equal(t, "b2", m.Bill.ID)

	m, ok = FixedBill("paguei a luz", bills)
	require.True(t, ok)
	assert.Equal(t, "b1", m.Bill.ID)

	m, ok = FixedBill("paguei a energia", bills)
	require.True(t, ok)
	assert.Equal(t, BillRegistered, m.Source, "synonyms map back to registered bills")
	assert.Equal(t, "b1", m.Bill.ID)

	m, ok = FixedBill("paguei a netflix", bills)
	require.True(t, ok)
	assert.Equal(t, BillSynonym, m.Source, "inactive bills are ignored")
	assert.Nil(t, m.Bill)

	m, ok = FixedBill("paguei a fatura", nil)
	require.True(t, ok)
	assert.Equal(t, BillCommon, m.Source)

	_, ok = FixedBill("comprei pão", bills)
	assert.False(t, ok)
}
