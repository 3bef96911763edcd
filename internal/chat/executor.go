package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/dinah/internal/common"
	"github.com/Veraticus/dinah/internal/dialogue"
	"github.com/Veraticus/dinah/internal/model"
	"github.com/Veraticus/dinah/internal/service"
)

const (
	msgLedgerFailure   = "Não consegui salvar isso agora. Tente de novo em instantes."
	msgSummaryFailure  = "Não consegui montar o resumo agora. Tente de novo em instantes."
	msgDuplicateAcct   = "Já existe uma conta com esse nome."
	msgDuplicateBill   = "Já existe uma conta fixa ativa com esse nome."
	msgEntryGone       = "Esse lançamento não existe mais."
	msgAccountGone     = "Não encontrei essa conta. Atualize suas contas e tente de novo."
	msgReversalBlocked = "Não dá para desfazer: o saldo da conta ficaria negativo."
)

// Outcome is what executing an action changed.
type Outcome struct {
	// Text replaces the engine's response when set.
	Text string
	// Booked are new entries the user may correct later.
	Booked []model.Transaction
	// Removed are ids of entries that no longer exist.
	Removed []string
	// Updated are entries changed in place.
	Updated []model.Transaction
}

// Executor performs the side effect of a successful turn against the ledger.
// Errors it returns carry a user-facing message (common.UserError).
type Executor struct {
	ledger     service.Ledger
	summarizer service.Summarizer
	retry      service.RetryOptions
}

// NewExecutor creates an executor. A nil summarizer answers summary queries
// with an apology.
func NewExecutor(ledger service.Ledger, summarizer service.Summarizer, retry service.RetryOptions) *Executor {
	return &Executor{ledger: ledger, summarizer: summarizer, retry: retry}
}

// Execute runs the ledger calls for data. accounts is the account list the
// turn was decided on.
func (x *Executor) Execute(ctx context.Context, data dialogue.ActionData, accounts []model.Account, now time.Time) (Outcome, error) {
	switch d := data.(type) {
	case dialogue.CreateAccountData:
		return x.createAccount(ctx, d)
	case dialogue.TransactionData:
		return x.addTransaction(ctx, d, accounts)
	case dialogue.TransferData:
		return x.transfer(ctx, d, accounts)
	case dialogue.FixedBillData:
		return x.createFixedBill(ctx, d)
	case dialogue.BillPaymentData:
		return x.payFixedBill(ctx, d, accounts)
	case dialogue.UpdateTransactionData:
		return x.updateTransaction(ctx, d, accounts)
	case dialogue.ReverseAndRecreateData:
		return x.reverseAndRecreate(ctx, d, accounts)
	case dialogue.CancelTransactionData:
		return x.cancel(ctx, d)
	case dialogue.SummaryQueryData:
		return x.summarize(ctx, d, now)
	case nil:
		return Outcome{}, nil
	default:
		return Outcome{}, fmt.Errorf("unsupported action %T", data)
	}
}

// write runs a ledger write, retrying while the database is busy.
func (x *Executor) write(ctx context.Context, op func() error) error {
	return common.WithRetry(ctx, op, x.retry)
}

func (x *Executor) createAccount(ctx context.Context, d dialogue.CreateAccountData) (Outcome, error) {
	err := x.write(ctx, func() error {
		_, err := x.ledger.AddAccount(ctx, model.NewAccount{Name: d.Name, InitialBalance: d.InitialBalance})
		return err
	})
	if err != nil {
		return Outcome{}, x.explain(ctx, err, nil, 0)
	}
	return Outcome{}, nil
}

func (x *Executor) addTransaction(ctx context.Context, d dialogue.TransactionData, accounts []model.Account) (Outcome, error) {
	var res *model.AddTransactionResult
	err := x.write(ctx, func() error {
		var err error
		res, err = x.ledger.AddTransaction(ctx, model.NewTransaction{
			Timestamp:   d.Timestamp,
			Type:        d.Type,
			Description: d.Description,
			AccountID:   d.AccountID,
			Amount:      d.Amount,
		})
		return err
	})
	if err != nil {
		return Outcome{}, x.explain(ctx, err, accountRef(accounts, d.AccountID), d.Amount)
	}
	return Outcome{Booked: []model.Transaction{res.Transaction}}, nil
}

func (x *Executor) transfer(ctx context.Context, d dialogue.TransferData, accounts []model.Account) (Outcome, error) {
	res, err := x.performTransfer(ctx, model.NewTransfer{
		Timestamp:     d.Timestamp,
		FromAccountID: d.FromAccountID,
		ToAccountID:   d.ToAccountID,
		Amount:        d.Amount,
	})
	if err != nil {
		return Outcome{}, x.explain(ctx, err, accountRef(accounts, d.FromAccountID), d.Amount)
	}
	return Outcome{Booked: []model.Transaction{res.Out}}, nil
}

func (x *Executor) performTransfer(ctx context.Context, in model.NewTransfer) (*model.TransferResult, error) {
	var res *model.TransferResult
	err := x.write(ctx, func() error {
		var err error
		res, err = x.ledger.PerformTransfer(ctx, in)
		return err
	})
	return res, err
}

func (x *Executor) createFixedBill(ctx context.Context, d dialogue.FixedBillData) (Outcome, error) {
	err := x.write(ctx, func() error {
		_, err := x.ledger.AddRecurringBill(ctx, model.NewFixedBill{
			Name:     d.Name,
			Category: d.Category,
			Amount:   d.Amount,
			DueDay:   d.DueDay,
		})
		return err
	})
	if errors.Is(err, common.ErrDuplicateEntry) {
		return Outcome{}, common.NewUserError(msgDuplicateBill, err)
	}
	if err != nil {
		return Outcome{}, x.explain(ctx, err, nil, 0)
	}
	return Outcome{}, nil
}

// payFixedBill books the payment as an expense and marks the bill paid for
// the month. A failure to mark the bill is logged; the payment stands.
func (x *Executor) payFixedBill(ctx context.Context, d dialogue.BillPaymentData, accounts []model.Account) (Outcome, error) {
	out, err := x.addTransaction(ctx, dialogue.TransactionData{
		Timestamp:   d.Timestamp,
		Type:        model.TypeExpense,
		Description: d.BillName,
		AccountID:   d.AccountID,
		Amount:      d.Amount,
	}, accounts)
	if err != nil {
		return Outcome{}, err
	}

	paidAt := d.Timestamp
	if paidAt.IsZero() && len(out.Booked) > 0 {
		paidAt = out.Booked[0].Timestamp
	}
	err = x.write(ctx, func() error {
		return x.ledger.UpdateRecurringBill(ctx, d.BillID, model.FixedBillUpdate{LastPaidAt: &paidAt})
	})
	if err != nil {
		common.LogError(err, "Failed to mark fixed bill as paid", common.Fields{"bill_id": d.BillID})
	}
	return out, nil
}

func (x *Executor) updateTransaction(ctx context.Context, d dialogue.UpdateTransactionData, accounts []model.Account) (Outcome, error) {
	var updated *model.Transaction
	err := x.write(ctx, func() error {
		var err error
		updated, err = x.ledger.UpdateTransaction(ctx, d.TransactionID, d.Update)
		return err
	})
	if err != nil {
		var target *model.Account
		var amount float64
		if d.Update.AccountID != nil {
			target = accountRef(accounts, *d.Update.AccountID)
		}
		if d.Update.Amount != nil {
			amount = *d.Update.Amount
		}
		if target == nil && errors.Is(err, common.ErrInsufficientBalance) {
			if orig, getErr := x.ledger.GetTransaction(ctx, d.TransactionID); getErr == nil {
				target = accountRef(accounts, orig.AccountID)
				if amount == 0 {
					amount = orig.Amount
				}
			}
		}
		return Outcome{}, x.explain(ctx, err, target, amount)
	}
	return Outcome{Updated: []model.Transaction{*updated}}, nil
}

// reverseAndRecreate undoes a transfer and books it again with the corrected
// amount or source account. When booking the replacement fails the original
// is restored.
func (x *Executor) reverseAndRecreate(ctx context.Context, d dialogue.ReverseAndRecreateData, accounts []model.Account) (Outcome, error) {
	orig := d.Original
	from, to, err := x.transferEnds(ctx, orig)
	if err != nil {
		return Outcome{}, x.explain(ctx, err, nil, 0)
	}

	next := model.NewTransfer{Timestamp: orig.Timestamp, FromAccountID: from, ToAccountID: to, Amount: orig.Amount}
	if d.Amount != nil {
		next.Amount = *d.Amount
	}
	if d.FromAccountID != nil {
		next.FromAccountID = *d.FromAccountID
	}
	if next.FromAccountID == next.ToAccountID {
		return Outcome{}, common.NewUserError("A conta de origem e a de destino ficariam iguais.", common.ErrSameAccount)
	}

	if err := x.write(ctx, func() error { return x.ledger.ReverseTransaction(ctx, orig.ID) }); err != nil {
		if errors.Is(err, common.ErrInsufficientBalance) {
			return Outcome{}, common.NewUserError(msgReversalBlocked, err)
		}
		return Outcome{}, x.explain(ctx, err, nil, 0)
	}

	res, err := x.performTransfer(ctx, next)
	if err != nil {
		restore := model.NewTransfer{Timestamp: orig.Timestamp, FromAccountID: from, ToAccountID: to, Amount: orig.Amount}
		restored, restoreErr := x.performTransfer(ctx, restore)
		if restoreErr != nil {
			common.LogError(restoreErr, "Failed to restore reversed transfer", common.Fields{"transfer_id": orig.TransferID})
			return Outcome{Removed: []string{orig.ID}}, x.explain(ctx, err, accountRef(accounts, next.FromAccountID), next.Amount)
		}
		return Outcome{Removed: []string{orig.ID}, Booked: []model.Transaction{restored.Out}},
			x.explain(ctx, err, accountRef(accounts, next.FromAccountID), next.Amount)
	}

	slog.Info("Transfer recreated", "old_transfer_id", orig.TransferID, "new_transfer_id", res.Out.TransferID)
	return Outcome{Removed: []string{orig.ID}, Booked: []model.Transaction{res.Out}}, nil
}

// transferEnds finds the source and destination accounts of the transfer
// orig belongs to.
func (x *Executor) transferEnds(ctx context.Context, orig model.Transaction) (string, string, error) {
	legs, err := x.ledger.GetTransactionsByDateRange(ctx, orig.Timestamp, orig.Timestamp)
	if err != nil {
		return "", "", err
	}
	var from, to string
	for _, leg := range legs {
		if leg.TransferID != orig.TransferID {
			continue
		}
		switch leg.Type {
		case model.TypeTransferOut:
			from = leg.AccountID
		case model.TypeTransferIn:
			to = leg.AccountID
		}
	}
	if from == "" || to == "" {
		return "", "", fmt.Errorf("%w: transfer %s", common.ErrNotFound, orig.TransferID)
	}
	return from, to, nil
}

func (x *Executor) cancel(ctx context.Context, d dialogue.CancelTransactionData) (Outcome, error) {
	err := x.write(ctx, func() error { return x.ledger.ReverseTransaction(ctx, d.Transaction.ID) })
	if errors.Is(err, common.ErrInsufficientBalance) {
		return Outcome{}, common.NewUserError(msgReversalBlocked, err)
	}
	if err != nil {
		return Outcome{}, x.explain(ctx, err, nil, 0)
	}
	return Outcome{Removed: []string{d.Transaction.ID}}, nil
}

func (x *Executor) summarize(ctx context.Context, d dialogue.SummaryQueryData, now time.Time) (Outcome, error) {
	if x.summarizer == nil {
		return Outcome{}, common.NewUserError(msgSummaryFailure, errors.New("no summarizer configured"))
	}
	text, err := x.summarizer.Summarize(ctx, service.SummaryRequest{
		Start: d.Period.Start,
		End:   d.Period.End,
		Now:   now,
		Kind:  summaryKind(d.Query),
		Label: d.Period.Label,
	})
	if err != nil {
		return Outcome{}, common.NewUserError(withCause(msgSummaryFailure, err), err)
	}
	return Outcome{Text: text}, nil
}

func summaryKind(q dialogue.QueryKind) service.SummaryKind {
	switch q {
	case dialogue.QueryExpenses:
		return service.SummaryExpenses
	case dialogue.QueryIncome:
		return service.SummaryIncome
	case dialogue.QueryPix:
		return service.SummaryPix
	}
	return service.SummaryOverview
}

// explain turns a ledger error into a UserError. For insufficient balance
// the current balances are reloaded so the breakdown is accurate.
func (x *Executor) explain(ctx context.Context, err error, acc *model.Account, amount float64) error {
	switch {
	case errors.Is(err, common.ErrInsufficientBalance):
		accounts, loadErr := x.ledger.GetAccounts(ctx)
		if loadErr != nil || acc == nil {
			return common.NewUserError("Saldo insuficiente para essa operação.", err)
		}
		if fresh := accountRef(accounts, acc.ID); fresh != nil {
			acc = fresh
		}
		return common.NewUserError(dialogue.InsufficientFunds(*acc, amount, accounts), err)
	case errors.Is(err, common.ErrDuplicateEntry):
		return common.NewUserError(msgDuplicateAcct, err)
	case errors.Is(err, common.ErrSameAccount):
		return common.NewUserError("A conta de origem e a de destino são a mesma.", err)
	case errors.Is(err, common.ErrInvalidAmount):
		return common.NewUserError("O valor precisa ser maior que zero.", err)
	case errors.Is(err, common.ErrNotFound):
		if acc == nil {
			return common.NewUserError(msgEntryGone, err)
		}
		return common.NewUserError(msgAccountGone, err)
	}
	return common.NewUserError(withCause(msgLedgerFailure, err), err)
}

// withCause appends the underlying error to a user message.
func withCause(msg string, err error) string {
	return fmt.Sprintf("%s (%v)", msg, err)
}

func accountRef(accounts []model.Account, id string) *model.Account {
	for i := range accounts {
		if accounts[i].ID == id {
			return &accounts[i]
		}
	}
	return nil
}
