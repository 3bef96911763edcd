// Package summary answers period questions ("quanto gastei este mês",
// "resumo", "quanto recebi de pix") from the ledger.
package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/Veraticus/dinah/internal/fuzzy"
	"github.com/Veraticus/dinah/internal/knowledge"
	"github.com/Veraticus/dinah/internal/model"
	"github.com/Veraticus/dinah/internal/service"
)

// TopCategoryCount is how many categories a report lists.
const TopCategoryCount = 3

// upcomingWindow is how far ahead a bill counts as "vence em breve".
const upcomingWindow = 7 * 24 * time.Hour

// ErrInvalidPeriod is returned when a request ends before it starts.
var ErrInvalidPeriod = errors.New("summary period ends before it starts")

// Source is the part of the ledger a summary reads.
type Source interface {
	GetAccounts(ctx context.Context) ([]model.Account, error)
	GetTransactionsByDateRange(ctx context.Context, start, end time.Time) ([]model.Transaction, error)
	GetRecurringBills(ctx context.Context) ([]model.FixedBill, error)
}

// Service implements service.Summarizer.
type Service struct {
	source Source
}

var _ service.Summarizer = (*Service)(nil)

// New creates a summary service over source.
func New(source Source) *Service {
	return &Service{source: source}
}

// Summarize renders the answer for req.
func (s *Service) Summarize(ctx context.Context, req service.SummaryRequest) (string, error) {
	if req.End.Before(req.Start) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPeriod, req.Label)
	}
	if req.Now.IsZero() {
		req.Now = time.Now()
	}

	txns, err := s.source.GetTransactionsByDateRange(ctx, req.Start, req.End)
	if err != nil {
		return "", fmt.Errorf("failed to load transactions: %w", err)
	}
	slog.Debug("Summarizing period", "kind", req.Kind, "label", req.Label, "transactions", len(txns))

	switch req.Kind {
	case service.SummaryExpenses:
		return expenseReport(req, txns), nil
	case service.SummaryIncome:
		return incomeReport(req, txns), nil
	case service.SummaryPix:
		return pixReport(req, txns), nil
	case service.SummaryOverview, "":
		return s.overview(ctx, req, txns)
	default:
		return "", fmt.Errorf("unknown summary kind %q", req.Kind)
	}
}

func (s *Service) overview(ctx context.Context, req service.SummaryRequest, txns []model.Transaction) (string, error) {
	accounts, err := s.source.GetAccounts(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load accounts: %w", err)
	}
	bills, err := s.source.GetRecurringBills(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load fixed bills: %w", err)
	}

	totals := Totals(txns)
	var sections []string

	header := fmt.Sprintf("Resumo (%s)\nReceitas: %s\nGastos: %s\nResultado: %s",
		req.Label, model.FormatBRL(totals.Income), model.FormatBRL(totals.Expenses),
		model.FormatBRL(totals.Income-totals.Expenses))
	sections = append(sections, header)

	if cats := TopCategories(txns, TopCategoryCount); len(cats) > 0 {
		sections = append(sections, "Onde você mais gastou:\n"+formatCategories(cats))
	}

	if coversCurrentMonth(req) {
		projected := Projection(totals.Expenses, req.Now)
		sections = append(sections, fmt.Sprintf("No ritmo atual, você deve gastar %s até o fim do mês.",
			model.FormatBRL(projected)))
	}

	if status := ClassifyBills(bills, req.Now); !status.Empty() {
		sections = append(sections, status.String())
	}

	sections = append(sections, "Saldo total: "+model.FormatBRL(model.TotalBalance(accounts)))
	return strings.Join(sections, "\n\n"), nil
}

func expenseReport(req service.SummaryRequest, txns []model.Transaction) string {
	totals := Totals(txns)
	if totals.ExpenseCount == 0 {
		return fmt.Sprintf("Nenhum gasto registrado (%s).", req.Label)
	}
	text := fmt.Sprintf("Gastos (%s): %s em %s.", req.Label, model.FormatBRL(totals.Expenses),
		plural(totals.ExpenseCount, "lançamento", "lançamentos"))
	if cats := TopCategories(txns, TopCategoryCount); len(cats) > 0 {
		text += "\n" + formatCategories(cats)
	}
	return text
}

func incomeReport(req service.SummaryRequest, txns []model.Transaction) string {
	totals := Totals(txns)
	if totals.IncomeCount == 0 {
		return fmt.Sprintf("Nenhuma receita registrada (%s).", req.Label)
	}
	text := fmt.Sprintf("Receitas (%s): %s em %s.", req.Label, model.FormatBRL(totals.Income),
		plural(totals.IncomeCount, "lançamento", "lançamentos"))
	if sources := topIncomeSources(txns, TopCategoryCount); len(sources) > 0 {
		text += "\n" + formatCategories(sources)
	}
	return text
}

func pixReport(req service.SummaryRequest, txns []model.Transaction) string {
	var sent, received float64
	var nSent, nReceived int
	for _, t := range txns {
		if !IsPix(t.Description) {
			continue
		}
		switch t.Type {
		case model.TypeExpense:
			sent += t.Amount
			nSent++
		case model.TypeIncome:
			received += t.Amount
			nReceived++
		}
	}
	if nSent+nReceived == 0 {
		return fmt.Sprintf("Nenhum pix registrado (%s).", req.Label)
	}
	return fmt.Sprintf("Pix (%s)\nEnviados: %s (%d)\nRecebidos: %s (%d)", req.Label,
		model.FormatBRL(model.RoundCents(sent)), nSent, model.FormatBRL(model.RoundCents(received)), nReceived)
}

// PeriodTotals sums income and expenses. Transfers are neither.
type PeriodTotals struct {
	Income       float64
	Expenses     float64
	IncomeCount  int
	ExpenseCount int
}

// Totals sums txns by type.
func Totals(txns []model.Transaction) PeriodTotals {
	var income, expenses int64
	var totals PeriodTotals
	for _, t := range txns {
		switch t.Type {
		case model.TypeIncome:
			income += model.ToCents(t.Amount)
			totals.IncomeCount++
		case model.TypeExpense:
			expenses += model.ToCents(t.Amount)
			totals.ExpenseCount++
		}
	}
	totals.Income = model.FromCents(income)
	totals.Expenses = model.FromCents(expenses)
	return totals
}

// Categorize assigns an expense description to a spending category.
func Categorize(description string) string {
	for _, cat := range knowledge.SpendingCategories {
		for _, kw := range cat.Keywords {
			if fuzzy.ContainsWord(description, kw) {
				return cat.Name
			}
		}
	}
	return knowledge.UncategorizedName
}

// IsPix reports whether a description mentions pix.
func IsPix(description string) bool {
	return fuzzy.ContainsWord(description, "pix")
}

// TopCategories returns the n expense categories with the highest totals,
// largest first. Ties are broken by name.
func TopCategories(txns []model.Transaction, n int) []service.CategorySummary {
	return top(txns, model.TypeExpense, Categorize, n)
}

func topIncomeSources(txns []model.Transaction, n int) []service.CategorySummary {
	return top(txns, model.TypeIncome, func(desc string) string {
		if desc == "" {
			return knowledge.UncategorizedName
		}
		r, size := utf8.DecodeRuneInString(desc)
		return string(unicode.ToUpper(r)) + desc[size:]
	}, n)
}

func top(txns []model.Transaction, kind model.TransactionType, group func(string) string, n int) []service.CategorySummary {
	cents := make(map[string]int64)
	counts := make(map[string]int)
	for _, t := range txns {
		if t.Type != kind {
			continue
		}
		name := group(t.Description)
		cents[name] += model.ToCents(t.Amount)
		counts[name]++
	}

	out := make([]service.CategorySummary, 0, len(cents))
	for name, c := range cents {
		out = append(out, service.CategorySummary{Category: name, Amount: model.FromCents(c), Count: counts[name]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Category < out[j].Category
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Projection extrapolates the month's spending linearly from the days
// elapsed so far, today included.
func Projection(spent float64, now time.Time) float64 {
	elapsed := now.Day()
	days := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
	return model.RoundCents(spent / float64(elapsed) * float64(days))
}

func coversCurrentMonth(req service.SummaryRequest) bool {
	first := time.Date(req.Now.Year(), req.Now.Month(), 1, 0, 0, 0, 0, req.Now.Location())
	return !req.Start.After(first) && !req.End.Before(req.Now) &&
		req.End.Before(first.AddDate(0, 1, 0))
}

func formatCategories(cats []service.CategorySummary) string {
	lines := make([]string, len(cats))
	for i, c := range cats {
		lines[i] = fmt.Sprintf("• %s: %s (%d)", c.Category, model.FormatBRL(c.Amount), c.Count)
	}
	return strings.Join(lines, "\n")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}
