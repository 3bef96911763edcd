package dialogue

import (
	"fmt"

	"github.com/Veraticus/dinah/internal/extract"
	"github.com/Veraticus/dinah/internal/intent"
	"github.com/Veraticus/dinah/internal/model"
)

func (e *Engine) processTransfer(t *turn) ActionResult {
	d := TransferDraft{}
	d.Amount, d.HasAmount = extract.MonetaryValue(t.message)
	d.Date, d.Time = when(t.message, t.now)

	var sourceCandidates, destCandidates []model.Account
	switch m := extract.SourceAccount(t.message, t.accounts); m.Status {
	case extract.MatchFound:
		d.FromAccountID = m.Account.ID
	case extract.MatchAmbiguous:
		sourceCandidates = m.Candidates
	}

	dest := extract.DestinationAccount(t.message, t.accounts, d.FromAccountID)
	switch dest.Status {
	case extract.MatchFound:
		d.ToAccountID = dest.Account.ID
	case extract.MatchAmbiguous:
		destCandidates = dest.Candidates
	case extract.MatchNotFound:
		// Money sent to a person rather than to one of the user's accounts
		// is an expense on the source account.
		if person, ok := extract.PersonName(t.message, t.accountNames()...); ok {
			return e.advanceTransaction(t, TransactionDraft{
				Type:        model.TypeExpense,
				Description: "Transferência para " + person,
				AccountID:   d.FromAccountID,
				Amount:      d.Amount,
				HasAmount:   d.HasAmount,
				Date:        d.Date,
				Time:        d.Time,
			}, sourceCandidates)
		}
	}

	if len(t.accounts) < 2 {
		return failure(intent.Transfer, msgNeedsTwoAccts)
	}
	return e.advanceTransfer(t, d, sourceCandidates, destCandidates)
}

// advanceTransfer asks for the first missing slot of d or completes it.
func (e *Engine) advanceTransfer(t *turn, d TransferDraft, sourceCandidates, destCandidates []model.Account) ActionResult {
	if len(t.accounts) < 2 {
		return failure(intent.Transfer, msgNeedsTwoAccts)
	}
	if !d.HasAmount {
		return ask(intent.Transfer, "Quanto você quer transferir?", AwaitTransferAmount{Draft: d})
	}
	if d.Amount <= 0 {
		return failure(intent.Transfer, "O valor da transferência precisa ser maior que zero.")
	}

	if d.FromAccountID == "" {
		options := t.accounts
		if len(sourceCandidates) > 0 {
			options = sourceCandidates
		}
		return ask(intent.Transfer, "De qual conta sai o dinheiro?",
			AwaitTransferSource{Draft: d, Candidates: sourceCandidates}, accountOptions(options, d.ToAccountID)...)
	}
	if d.ToAccountID == "" {
		options := t.accounts
		if len(destCandidates) > 0 {
			options = destCandidates
		}
		return ask(intent.Transfer, "Para qual conta vai o dinheiro?",
			AwaitTransferDestination{Draft: d, Candidates: destCandidates}, accountOptions(options, d.FromAccountID)...)
	}
	if d.FromAccountID == d.ToAccountID {
		return failure(intent.Transfer, msgSameAccount)
	}

	from, ok := model.FindAccount(t.accounts, d.FromAccountID)
	if !ok {
		return failure(intent.Transfer, accountNotFound(t.accounts))
	}
	to, ok := model.FindAccount(t.accounts, d.ToAccountID)
	if !ok {
		return failure(intent.Transfer, accountNotFound(t.accounts))
	}

	if needsTime(d.Date, d.Time) {
		return ask(intent.Transfer, fmt.Sprintf("Que horas foi a transferência, em %s?", d.Date.Date.Format("02/01")),
			AwaitTransferTime{Draft: d})
	}

	if d.Amount > from.Balance {
		return failure(intent.Transfer, InsufficientFunds(from, d.Amount, t.accounts))
	}

	if d.Amount > e.config.ConfirmationThreshold && !d.Confirmed {
		q := fmt.Sprintf("Confirma transferência de %s de %s para %s?", model.FormatBRL(d.Amount), from.Name, to.Name)
		return confirm(intent.Transfer, q, AwaitTransferConfirm{Draft: d})
	}

	data := TransferData{
		Timestamp:     timestamp(d.Date, d.Time, t.now),
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        d.Amount,
	}
	text := fmt.Sprintf("Transferência de %s de %s para %s registrada.", model.FormatBRL(d.Amount), from.Name, to.Name)
	return success(intent.Transfer, text, data)
}

func (e *Engine) resumeTransferAmount(t *turn, p AwaitTransferAmount) (ActionResult, bool) {
	amount, ok := extract.MonetaryValue(t.message)
	if !ok || amount <= 0 {
		return failure(intent.Transfer, msgAmountExample), false
	}
	d := p.Draft
	d.Amount, d.HasAmount = amount, true
	return e.advanceTransfer(t, d, nil, nil), true
}

func (e *Engine) resumeTransferSource(t *turn, p AwaitTransferSource) (ActionResult, bool) {
	pool := t.accounts
	if len(p.Candidates) > 0 {
		pool = p.Candidates
	}
	m := extract.MentionedAccount(t.message, pool)
	switch m.Status {
	case extract.MatchAmbiguous:
		return ask(intent.Transfer, "Ainda ficou ambíguo. De qual destas contas sai o dinheiro?",
			AwaitTransferSource{Draft: p.Draft, Candidates: m.Candidates}, accountOptions(m.Candidates, "")...), true
	case extract.MatchNotFound:
		return failure(intent.Transfer, accountNotFound(pool)), false
	}
	d := p.Draft
	if m.Account.ID == d.ToAccountID {
		return failure(intent.Transfer, msgSameAccount), true
	}
	d.FromAccountID = m.Account.ID
	return e.advanceTransfer(t, d, nil, nil), true
}

func (e *Engine) resumeTransferDestination(t *turn, p AwaitTransferDestination) (ActionResult, bool) {
	pool := t.accounts
	if len(p.Candidates) > 0 {
		pool = p.Candidates
	}
	m := extract.MentionedAccount(t.message, pool)
	switch m.Status {
	case extract.MatchAmbiguous:
		return ask(intent.Transfer, "Ainda ficou ambíguo. Para qual destas contas vai o dinheiro?",
			AwaitTransferDestination{Draft: p.Draft, Candidates: m.Candidates}, accountOptions(m.Candidates, "")...), true
	case extract.MatchNotFound:
		return failure(intent.Transfer, accountNotFound(pool)), false
	}
	d := p.Draft
	if m.Account.ID == d.FromAccountID {
		return failure(intent.Transfer, msgSameAccount), true
	}
	d.ToAccountID = m.Account.ID
	return e.advanceTransfer(t, d, nil, nil), true
}

func (e *Engine) resumeTransferTime(t *turn, p AwaitTransferTime) (ActionResult, bool) {
	tod, ok := extract.ParseTimeOfDay(t.message)
	if !ok {
		return failure(intent.Transfer, msgTimeExample), false
	}
	d := p.Draft
	d.Time = &tod
	return e.advanceTransfer(t, d, nil, nil), true
}

func (e *Engine) resumeTransferConfirm(t *turn, p AwaitTransferConfirm) (ActionResult, bool) {
	if !intent.IsAffirmative(t.message) {
		return confirm(intent.Transfer, msgConfirmAgain, p), false
	}
	d := p.Draft
	d.Confirmed = true
	return e.advanceTransfer(t, d, nil, nil), true
}
