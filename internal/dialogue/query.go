package dialogue

import (
	"fmt"

	"github.com/Veraticus/dinah/internal/extract"
	"github.com/Veraticus/dinah/internal/fuzzy"
	"github.com/Veraticus/dinah/internal/intent"
	"github.com/Veraticus/dinah/internal/model"
)

var (
	incomeQueryWords  = []string{"recebi", "ganhei", "entrou", "entrada", "entradas", "receita", "receitas", "ganhos"}
	expenseQueryWords = []string{"gastei", "gasto", "gastos", "paguei", "despesa", "despesas", "saiu", "saidas"}
)

var queryLabels = map[QueryKind]string{
	QuerySummary:  "o resumo",
	QueryExpenses: "seus gastos",
	QueryIncome:   "suas receitas",
	QueryPix:      "seus pix",
}

func queryKind(kind intent.Kind, message string) QueryKind {
	switch kind {
	case intent.ExpenseQuery:
		return QueryExpenses
	case intent.IncomeQuery:
		return QueryIncome
	case intent.PixQuery:
		return QueryPix
	case intent.PeriodQuery:
		words := fuzzy.Words(fuzzy.Normalize(message))
		for _, w := range words {
			for _, k := range incomeQueryWords {
				if w == k {
					return QueryIncome
				}
			}
			for _, k := range expenseQueryWords {
				if w == k {
					return QueryExpenses
				}
			}
		}
	}
	return QuerySummary
}

// queryIntent maps a query kind back to the intent that asks for it, so a
// follow-up like "e ontem?" repeats the same question.
func queryIntent(q QueryKind) intent.Kind {
	switch q {
	case QueryExpenses:
		return intent.ExpenseQuery
	case QueryIncome:
		return intent.IncomeQuery
	case QueryPix:
		return intent.PixQuery
	}
	return intent.GetSummary
}

// query resolves the period of a summary-style question. The report itself is
// produced by the summary collaborator when the action runs.
func (e *Engine) query(t *turn, kind intent.Kind, period extract.Period) ActionResult {
	q := queryKind(kind, t.message)
	if period.NeedsMonthClarification {
		this := extract.ThisMonth(t.now)
		last := extract.MonthPeriod(t.now.Year(), t.now.Month()-1, t.now.Location())
		question := fmt.Sprintf("Do dia %d ao dia %d de qual mês?", period.DayFrom, period.DayTo)
		return ask(queryIntent(q), question, AwaitSummaryMonth{Query: q, DayFrom: period.DayFrom, DayTo: period.DayTo},
			Option{Name: this.Label, ID: "este mês"},
			Option{Name: last.Label, ID: "mês passado"})
	}
	return querySuccess(q, period)
}

func querySuccess(q QueryKind, period extract.Period) ActionResult {
	text := fmt.Sprintf("Consultando %s de %s.", queryLabels[q], period.Label)
	return success(queryIntent(q), text, SummaryQueryData{Query: q, Period: period})
}

func (e *Engine) resumeSummaryMonth(t *turn, p AwaitSummaryMonth) (ActionResult, bool) {
	found, ok := extract.FindPeriod(t.message, t.now)
	if !ok || found.NeedsMonthClarification {
		return failure(queryIntent(p.Query), msgMonthExample), false
	}
	period, ok := extract.DayRange(p.DayFrom, p.DayTo, found.Start.Year(), found.Start.Month(), t.now.Location())
	if !ok {
		return failure(queryIntent(p.Query), fmt.Sprintf("Esse mês não tem os dias %d a %d.", p.DayFrom, p.DayTo)), true
	}
	return querySuccess(p.Query, period), true
}

// balance lists every account and the total. It only reads its input, so the
// same accounts always produce the same text.
func (e *Engine) balance(t *turn) ActionResult {
	if len(t.accounts) == 0 {
		return success(intent.GetBalance, msgNoAccounts, nil)
	}
	text := fmt.Sprintf("Seus saldos:\n%s\nTotal: %s",
		balanceBreakdown(t.accounts), model.FormatBRL(model.TotalBalance(t.accounts)))
	return success(intent.GetBalance, text, nil)
}
