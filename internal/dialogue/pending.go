package dialogue

import (
	"github.com/Veraticus/dinah/internal/extract"
	"github.com/Veraticus/dinah/internal/knowledge"
	"github.com/Veraticus/dinah/internal/model"
)

// PendingKind names the slot a pending action is waiting for.
type PendingKind string

// Pending kinds, one per question the engine can ask.
const (
	PendingCreateAccountName      PendingKind = "create_account"
	PendingCreateAccountBalance   PendingKind = "create_account_balance"
	PendingTransactionAmount      PendingKind = "transaction_amount"
	PendingTransactionDescription PendingKind = "transaction_description"
	PendingTransactionAccount     PendingKind = "transaction_account"
	PendingTransactionTime        PendingKind = "transaction_time"
	PendingTransactionConfirm     PendingKind = "transaction_confirmation"
	PendingTransferAmount         PendingKind = "transfer_amount"
	PendingTransferSource         PendingKind = "transfer_source"
	PendingTransferDestination    PendingKind = "transfer_destination"
	PendingTransferTime           PendingKind = "transfer_time"
	PendingTransferConfirm        PendingKind = "transfer_confirmation"
	PendingBillPaymentSelection   PendingKind = "fixed_bill_payment_selection"
	PendingBillPaymentAccount     PendingKind = "fixed_bill_payment_account"
	PendingFixedBillName          PendingKind = "create_fixed_bill_name"
	PendingFixedBillAmount        PendingKind = "create_fixed_bill_amount"
	PendingFixedBillDueDay        PendingKind = "create_fixed_bill_due_day"
	PendingCorrectionField        PendingKind = "correct_transaction"
	PendingCorrectionValue        PendingKind = "correct_transaction_value"
	PendingCorrectionDescription  PendingKind = "correct_transaction_description"
	PendingCorrectionAccount      PendingKind = "correct_transaction_account"
	PendingSummaryMonth           PendingKind = "summary_month"
)

// PendingAction is an intent still waiting for the user. The set of
// implementations is closed and every one is handled by Engine.resume.
type PendingAction interface {
	Kind() PendingKind
	sealed()
}

// TransactionDraft collects the slots of an expense or income.
type TransactionDraft struct {
	Date        *extract.DateInfo
	Time        *extract.TimeOfDay
	Type        model.TransactionType
	Description string
	AccountID   string
	Amount      float64
	HasAmount   bool
	Confirmed   bool
}

// TransferDraft collects the slots of a transfer between own accounts.
type TransferDraft struct {
	Date          *extract.DateInfo
	Time          *extract.TimeOfDay
	FromAccountID string
	ToAccountID   string
	Amount        float64
	HasAmount     bool
	Confirmed     bool
}

// FixedBillDraft collects the slots of a new fixed bill.
type FixedBillDraft struct {
	Name      string
	Category  knowledge.BillCategory
	Amount    float64
	DueDay    int
	HasAmount bool
}

// AwaitAccountName waits for the name of a new account.
type AwaitAccountName struct{}

// AwaitAccountBalance waits for the initial balance of a new account.
type AwaitAccountBalance struct {
	Name string
}

// AwaitTransactionAmount waits for the amount of an expense or income.
type AwaitTransactionAmount struct {
	Draft TransactionDraft
}

// AwaitTransactionDescription waits for what an expense or income was.
type AwaitTransactionDescription struct {
	Draft TransactionDraft
}

// AwaitTransactionAccount waits for the account of an expense or income.
// Candidates narrows the choice after an ambiguous reference.
type AwaitTransactionAccount struct {
	Candidates []model.Account
	Draft      TransactionDraft
}

// AwaitTransactionTime waits for the time of a past expense or income.
type AwaitTransactionTime struct {
	Draft TransactionDraft
}

// AwaitTransactionConfirm waits for approval of a large expense or income.
type AwaitTransactionConfirm struct {
	Draft TransactionDraft
}

// AwaitTransferAmount waits for the amount of a transfer.
type AwaitTransferAmount struct {
	Draft TransferDraft
}

// AwaitTransferSource waits for the account the money leaves.
type AwaitTransferSource struct {
	Candidates []model.Account
	Draft      TransferDraft
}

// AwaitTransferDestination waits for the account the money goes to.
type AwaitTransferDestination struct {
	Candidates []model.Account
	Draft      TransferDraft
}

// AwaitTransferTime waits for the time of a past transfer.
type AwaitTransferTime struct {
	Draft TransferDraft
}

// AwaitTransferConfirm waits for approval of a large transfer.
type AwaitTransferConfirm struct {
	Draft TransferDraft
}

// AwaitBillSelection waits for which registered bill was paid.
type AwaitBillSelection struct {
	AccountID string
	Amount    float64
	HasAmount bool
}

// AwaitBillAccount waits for the account a bill is paid from.
type AwaitBillAccount struct {
	Bill   model.FixedBill
	Amount float64
}

// AwaitFixedBillName waits for the name of a new fixed bill.
type AwaitFixedBillName struct {
	Draft FixedBillDraft
}

// AwaitFixedBillAmount waits for the monthly amount of a new fixed bill.
type AwaitFixedBillAmount struct {
	Draft FixedBillDraft
}

// AwaitFixedBillDueDay waits for the due day of a new fixed bill.
type AwaitFixedBillDueDay struct {
	Draft FixedBillDraft
}

// AwaitCorrectionField waits for which part of the last entry is wrong.
type AwaitCorrectionField struct {
	Transaction model.Transaction
}

// AwaitCorrectionValue waits for the right amount of the last entry.
type AwaitCorrectionValue struct {
	Transaction model.Transaction
}

// AwaitCorrectionDescription waits for the right description of the last entry.
type AwaitCorrectionDescription struct {
	Transaction model.Transaction
}

// AwaitCorrectionAccount waits for the right account of the last entry.
type AwaitCorrectionAccount struct {
	Transaction model.Transaction
}

// AwaitSummaryMonth waits for the month of a day-range query.
type AwaitSummaryMonth struct {
	Query   QueryKind
	DayFrom int
	DayTo   int
}

func (AwaitAccountName) Kind() PendingKind            { return PendingCreateAccountName }
func (AwaitAccountBalance) Kind() PendingKind         { return PendingCreateAccountBalance }
func (AwaitTransactionAmount) Kind() PendingKind      { return PendingTransactionAmount }
func (AwaitTransactionDescription) Kind() PendingKind { return PendingTransactionDescription }
func (AwaitTransactionAccount) Kind() PendingKind     { return PendingTransactionAccount }
func (AwaitTransactionTime) Kind() PendingKind        { return PendingTransactionTime }
func (AwaitTransactionConfirm) Kind() PendingKind     { return PendingTransactionConfirm }
func (AwaitTransferAmount) Kind() PendingKind         { return PendingTransferAmount }
func (AwaitTransferSource) Kind() PendingKind         { return PendingTransferSource }
func (AwaitTransferDestination) Kind() PendingKind    { return PendingTransferDestination }
func (AwaitTransferTime) Kind() PendingKind           { return PendingTransferTime }
func (AwaitTransferConfirm) Kind() PendingKind        { return PendingTransferConfirm }
func (AwaitBillSelection) Kind() PendingKind          { return PendingBillPaymentSelection }
func (AwaitBillAccount) Kind() PendingKind            { return PendingBillPaymentAccount }
func (AwaitFixedBillName) Kind() PendingKind          { return PendingFixedBillName }
func (AwaitFixedBillAmount) Kind() PendingKind        { return PendingFixedBillAmount }
func (AwaitFixedBillDueDay) Kind() PendingKind        { return PendingFixedBillDueDay }
func (AwaitCorrectionField) Kind() PendingKind        { return PendingCorrectionField }
func (AwaitCorrectionValue) Kind() PendingKind        { return PendingCorrectionValue }
func (AwaitCorrectionDescription) Kind() PendingKind  { return PendingCorrectionDescription }
func (AwaitCorrectionAccount) Kind() PendingKind      { return PendingCorrectionAccount }
func (AwaitSummaryMonth) Kind() PendingKind           { return PendingSummaryMonth }

func (AwaitAccountName) sealed()            {}
func (AwaitAccountBalance) sealed()         {}
func (AwaitTransactionAmount) sealed()      {}
func (AwaitTransactionDescription) sealed() {}
func (AwaitTransactionAccount) sealed()     {}
func (AwaitTransactionTime) sealed()        {}
func (AwaitTransactionConfirm) sealed()     {}
func (AwaitTransferAmount) sealed()         {}
func (AwaitTransferSource) sealed()         {}
func (AwaitTransferDestination) sealed()    {}
func (AwaitTransferTime) sealed()           {}
func (AwaitTransferConfirm) sealed()        {}
func (AwaitBillSelection) sealed()          {}
func (AwaitBillAccount) sealed()            {}
func (AwaitFixedBillName) sealed()          {}
func (AwaitFixedBillAmount) sealed()        {}
func (AwaitFixedBillDueDay) sealed()        {}
func (AwaitCorrectionField) sealed()        {}
func (AwaitCorrectionValue) sealed()        {}
func (AwaitCorrectionDescription) sealed()  {}
func (AwaitCorrectionAccount) sealed()      {}
func (AwaitSummaryMonth) sealed()           {}

// freeText reports whether any answer fits p. Such questions give way to a
// clearly recognised new intent before the answer is taken.
func freeText(p PendingAction) bool {
	switch p.(type) {
	case AwaitAccountName, AwaitTransactionDescription, AwaitFixedBillName, AwaitCorrectionDescription:
		return true
	}
	return false
}

// resume interprets the answer to p. fit is false when the answer does not
// have the shape the question expects.
func (e *Engine) resume(t *turn, p PendingAction) (res ActionResult, fit bool) {
	switch p := p.(type) {
	case AwaitAccountName:
		return e.resumeAccountName(t)
	case AwaitAccountBalance:
		return e.resumeAccountBalance(t, p)
	case AwaitTransactionAmount:
		return e.resumeTransactionAmount(t, p)
	case AwaitTransactionDescription:
		return e.resumeTransactionDescription(t, p)
	case AwaitTransactionAccount:
		return e.resumeTransactionAccount(t, p)
	case AwaitTransactionTime:
		return e.resumeTransactionTime(t, p)
	case AwaitTransactionConfirm:
		return e.resumeTransactionConfirm(t, p)
	case AwaitTransferAmount:
		return e.resumeTransferAmount(t, p)
	case AwaitTransferSource:
		return e.resumeTransferSource(t, p)
	case AwaitTransferDestination:
		return e.resumeTransferDestination(t, p)
	case AwaitTransferTime:
		return e.resumeTransferTime(t, p)
	case AwaitTransferConfirm:
		return e.resumeTransferConfirm(t, p)
	case AwaitBillSelection:
		return e.resumeBillSelection(t, p)
	case AwaitBillAccount:
		return e.resumeBillAccount(t, p)
	case AwaitFixedBillName:
		return e.resumeFixedBillName(t, p)
	case AwaitFixedBillAmount:
		return e.resumeFixedBillAmount(t, p)
	case AwaitFixedBillDueDay:
		return e.resumeFixedBillDueDay(t, p)
	case AwaitCorrectionField:
		return e.resumeCorrectionField(t, p)
	case AwaitCorrectionValue:
		return e.resumeCorrectionValue(t, p)
	case AwaitCorrectionDescription:
		return e.resumeCorrectionDescription(t, p)
	case AwaitCorrectionAccount:
		return e.resumeCorrectionAccount(t, p)
	case AwaitSummaryMonth:
		return e.resumeSummaryMonth(t, p)
	}
	return failure("", msgInternalError), true
}
