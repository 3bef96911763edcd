package dialogue

import (
	"fmt"
	"time"

	"github.com/Veraticus/dinah/internal/extract"
	"github.com/Veraticus/dinah/internal/intent"
	"github.com/Veraticus/dinah/internal/model"
)

func transactionIntent(tt model.TransactionType) intent.Kind {
	if tt == model.TypeIncome {
		return intent.AddIncome
	}
	return intent.AddExpense
}

// when fills the date and time slots shared by transactions and transfers.
func when(message string, now time.Time) (*extract.DateInfo, *extract.TimeOfDay) {
	var (
		date *extract.DateInfo
		tod  *extract.TimeOfDay
	)
	if d, ok := extract.Date(message, now); ok {
		date = &d
	}
	if tm, ok := extract.MentionedTime(message); ok {
		tod = &tm
	}
	return date, tod
}

// timestamp is date at the given time, date at now's clock time when no time
// was given, or now when there is no date.
func timestamp(date *extract.DateInfo, tod *extract.TimeOfDay, now time.Time) time.Time {
	switch {
	case date == nil:
		return now
	case tod != nil:
		return extract.Combine(date.Date, *tod)
	}
	y, m, d := date.Date.Date()
	return time.Date(y, m, d, now.Hour(), now.Minute(), now.Second(), 0, now.Location())
}

func needsTime(date *extract.DateInfo, tod *extract.TimeOfDay) bool {
	return date != nil && date.NeedsTime() && tod == nil
}

func (e *Engine) processTransaction(t *turn, tt model.TransactionType) ActionResult {
	d := TransactionDraft{Type: tt}
	d.Amount, d.HasAmount = extract.MonetaryValue(t.message)
	d.Description = extract.Description(t.message, t.accountNames()...)
	d.Date, d.Time = when(t.message, t.now)

	var candidates []model.Account
	switch m := extract.MentionedAccount(t.message, t.accounts); m.Status {
	case extract.MatchFound:
		d.AccountID = m.Account.ID
	case extract.MatchAmbiguous:
		candidates = m.Candidates
	}
	return e.advanceTransaction(t, d, candidates)
}

// advanceTransaction asks for the first missing slot of d or completes it.
func (e *Engine) advanceTransaction(t *turn, d TransactionDraft, candidates []model.Account) ActionResult {
	kind := transactionIntent(d.Type)

	if !d.HasAmount {
		q := "Qual foi o valor do gasto?"
		if d.Type == model.TypeIncome {
			q = "Qual foi o valor recebido?"
		}
		return ask(kind, q, AwaitTransactionAmount{Draft: d})
	}
	if d.Amount <= 0 {
		return failure(kind, "O valor precisa ser maior que zero.")
	}

	if d.Description == "" {
		q := fmt.Sprintf("Com o que foi esse gasto de %s?", model.FormatBRL(d.Amount))
		if d.Type == model.TypeIncome {
			q = fmt.Sprintf("De onde veio essa receita de %s?", model.FormatBRL(d.Amount))
		}
		return ask(kind, q, AwaitTransactionDescription{Draft: d})
	}

	if d.AccountID == "" {
		switch {
		case len(t.accounts) == 0:
			return failure(kind, msgNoAccounts)
		case len(t.accounts) == 1:
			d.AccountID = t.accounts[0].ID
		default:
			options := t.accounts
			q := "Em qual conta?"
			if len(candidates) > 0 {
				options = candidates
				q = "Encontrei mais de uma conta parecida. Qual delas?"
			}
			return ask(kind, q, AwaitTransactionAccount{Draft: d, Candidates: candidates}, accountOptions(options, "")...)
		}
	}
	acc, ok := model.FindAccount(t.accounts, d.AccountID)
	if !ok {
		return failure(kind, accountNotFound(t.accounts))
	}

	if needsTime(d.Date, d.Time) {
		return ask(kind, fmt.Sprintf("Que horas foi, em %s?", d.Date.Date.Format("02/01")), AwaitTransactionTime{Draft: d})
	}

	if d.Type == model.TypeExpense && d.Amount > acc.Balance {
		return failure(kind, InsufficientFunds(acc, d.Amount, t.accounts))
	}

	if d.Amount > e.config.ConfirmationThreshold && !d.Confirmed {
		q := fmt.Sprintf("Confirma %s de %s (%s) na conta %s?",
			d.Type.Label(), model.FormatBRL(d.Amount), d.Description, acc.Name)
		return confirm(kind, q, AwaitTransactionConfirm{Draft: d})
	}

	data := TransactionData{
		Timestamp:   timestamp(d.Date, d.Time, t.now),
		Type:        d.Type,
		Description: d.Description,
		AccountID:   acc.ID,
		Amount:      d.Amount,
	}
	verb := "Gasto registrado"
	if d.Type == model.TypeIncome {
		verb = "Receita registrada"
	}
	text := fmt.Sprintf("%s: %s em %s na conta %s.", verb, model.FormatBRL(d.Amount), d.Description, acc.Name)
	return success(kind, text, data)
}

func (e *Engine) resumeTransactionAmount(t *turn, p AwaitTransactionAmount) (ActionResult, bool) {
	amount, ok := extract.MonetaryValue(t.message)
	if !ok || amount <= 0 {
		return failure(transactionIntent(p.Draft.Type), msgAmountExample), false
	}
	d := p.Draft
	d.Amount, d.HasAmount = amount, true
	if d.Description == "" {
		d.Description = extract.Description(t.message, t.accountNames()...)
	}
	return e.advanceTransaction(t, d, nil), true
}

func (e *Engine) resumeTransactionDescription(t *turn, p AwaitTransactionDescription) (ActionResult, bool) {
	desc := extract.CleanDescription(t.message)
	if desc == "" {
		return failure(transactionIntent(p.Draft.Type), `Não entendi a descrição. Responda, por exemplo, "almoço".`), false
	}
	d := p.Draft
	d.Description = desc
	return e.advanceTransaction(t, d, nil), true
}

func (e *Engine) resumeTransactionAccount(t *turn, p AwaitTransactionAccount) (ActionResult, bool) {
	kind := transactionIntent(p.Draft.Type)
	pool := t.accounts
	if len(p.Candidates) > 0 {
		pool = p.Candidates
	}
	m := extract.MentionedAccount(t.message, pool)
	switch m.Status {
	case extract.MatchAmbiguous:
		return ask(kind, "Ainda ficou ambíguo. Qual destas contas?", AwaitTransactionAccount{Draft: p.Draft, Candidates: m.Candidates},
			accountOptions(m.Candidates, "")...), true
	case extract.MatchNotFound:
		return failure(kind, accountNotFound(pool)), false
	}
	d := p.Draft
	d.AccountID = m.Account.ID
	return e.advanceTransaction(t, d, nil), true
}

func (e *Engine) resumeTransactionTime(t *turn, p AwaitTransactionTime) (ActionResult, bool) {
	tod, ok := extract.ParseTimeOfDay(t.message)
	if !ok {
		return failure(transactionIntent(p.Draft.Type), msgTimeExample), false
	}
	d := p.Draft
	d.Time = &tod
	return e.advanceTransaction(t, d, nil), true
}

func (e *Engine) resumeTransactionConfirm(t *turn, p AwaitTransactionConfirm) (ActionResult, bool) {
	if !intent.IsAffirmative(t.message) {
		return confirm(transactionIntent(p.Draft.Type), msgConfirmAgain, p), false
	}
	d := p.Draft
	d.Confirmed = true
	return e.advanceTransaction(t, d, nil), true
}
