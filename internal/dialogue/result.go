// Package dialogue turns chat messages into financial actions. It keeps one
// pending action per conversation, resumes it when the user answers a
// clarification or confirmation, and otherwise classifies the message as a
// fresh intent and runs the matching processor.
package dialogue

import (
	"time"

	"github.com/Veraticus/dinah/internal/extract"
	"github.com/Veraticus/dinah/internal/intent"
	"github.com/Veraticus/dinah/internal/model"
)

// Status is the outcome of a turn.
type Status string

// Turn statuses. Clarification and confirmation always carry a pending action.
const (
	StatusSuccess       Status = "success"
	StatusClarification Status = "clarification"
	StatusConfirmation  Status = "confirmation"
	StatusError         Status = "error"
)

// Action names the side effect the caller must execute after a successful turn.
type Action string

// Actions.
const (
	ActionCreateAccount      Action = "create_account"
	ActionAddTransaction     Action = "add_transaction"
	ActionPerformTransfer    Action = "perform_transfer"
	ActionCreateFixedBill    Action = "create_fixed_bill"
	ActionPayFixedBill       Action = "pay_fixed_bill"
	ActionUpdateTransaction  Action = "update_transaction"
	ActionReverseAndRecreate Action = "reverse_and_recreate"
	ActionCancelTransaction  Action = "cancel_last_transaction"
	ActionQuerySummary       Action = "query_summary"
)

// Option is a choice offered with a clarification, rendered as a button or a
// numbered item. Answering with the ID selects it.
type Option struct {
	Name string
	ID   string
}

// ActionResult is what a turn produces.
type ActionResult struct {
	Data        ActionData
	Pending     PendingAction
	Status      Status
	Response    string
	Action      Action
	Intent      intent.Kind
	Options     []Option
	Suggestions []string
}

// ActionData is the payload of a successful action. The set of payloads is
// closed: each one belongs to exactly one Action.
type ActionData interface {
	Action() Action
}

// CreateAccountData creates an account.
type CreateAccountData struct {
	Name           string
	InitialBalance float64
}

// TransactionData records an expense or income.
type TransactionData struct {
	Timestamp   time.Time
	Type        model.TransactionType
	Description string
	AccountID   string
	Amount      float64
}

// TransferData moves money between two of the user's accounts.
type TransferData struct {
	Timestamp     time.Time
	FromAccountID string
	ToAccountID   string
	Amount        float64
}

// FixedBillData registers a recurring bill.
type FixedBillData struct {
	Name     string
	Category string
	Amount   float64
	DueDay   int
	IsActive bool
}

// BillPaymentData pays a registered bill from an account.
type BillPaymentData struct {
	Timestamp time.Time
	BillID    string
	BillName  string
	AccountID string
	Amount    float64
}

// UpdateTransactionData changes a single transaction in place.
type UpdateTransactionData struct {
	Update        model.TransactionUpdate
	TransactionID string
}

// ReverseAndRecreateData undoes a transfer and books it again with the new
// amount or source account. Nil fields keep the original value.
type ReverseAndRecreateData struct {
	Amount        *float64
	FromAccountID *string
	Original      model.Transaction
}

// CancelTransactionData reverses a transaction completely.
type CancelTransactionData struct {
	Transaction model.Transaction
}

// QueryKind selects what a summary query reports.
type QueryKind string

// Query kinds.
const (
	QuerySummary  QueryKind = "summary"
	QueryExpenses QueryKind = "expenses"
	QueryIncome   QueryKind = "income"
	QueryPix      QueryKind = "pix"
)

// SummaryQueryData asks the summary collaborator for a report.
type SummaryQueryData struct {
	Query  QueryKind
	Period extract.Period
}

// Action implements ActionData.
func (CreateAccountData) Action() Action { return ActionCreateAccount }

// Action implements ActionData.
func (TransactionData) Action() Action { return ActionAddTransaction }

// Action implements ActionData.
func (TransferData) Action() Action { return ActionPerformTransfer }

// Action implements ActionData.
func (FixedBillData) Action() Action { return ActionCreateFixedBill }

// Action implements ActionData.
func (BillPaymentData) Action() Action { return ActionPayFixedBill }

// Action implements ActionData.
func (UpdateTransactionData) Action() Action { return ActionUpdateTransaction }

// Action implements ActionData.
func (ReverseAndRecreateData) Action() Action { return ActionReverseAndRecreate }

// Action implements ActionData.
func (CancelTransactionData) Action() Action { return ActionCancelTransaction }

// Action implements ActionData.
func (SummaryQueryData) Action() Action { return ActionQuerySummary }

// ConversationContext is the per-conversation memory the caller owns and
// passes into every turn.
type ConversationContext struct {
	// LastIntent is the intent of the last completed, non read-only action.
	LastIntent intent.Kind
	// PendingQuestion is the last clarification or confirmation asked.
	PendingQuestion string
}

// Reset empties the context, as on logout or after clearing data.
func (c *ConversationContext) Reset() {
	c.LastIntent = ""
	c.PendingQuestion = ""
}

func success(kind intent.Kind, response string, data ActionData) ActionResult {
	res := ActionResult{Status: StatusSuccess, Response: response, Intent: kind, Data: data}
	if data != nil {
		res.Action = data.Action()
	}
	return res
}

func failure(kind intent.Kind, response string) ActionResult {
	return ActionResult{Status: StatusError, Response: response, Intent: kind}
}

func ask(kind intent.Kind, question string, pending PendingAction, options ...Option) ActionResult {
	return ActionResult{Status: StatusClarification, Response: question, Intent: kind, Pending: pending, Options: options}
}

func confirm(kind intent.Kind, question string, pending PendingAction) ActionResult {
	return ActionResult{
		Status:   StatusConfirmation,
		Response: question,
		Intent:   kind,
		Pending:  pending,
		Options:  []Option{{Name: "Sim", ID: "sim"}, {Name: "Não", ID: "não"}},
	}
}
