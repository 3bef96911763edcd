// Package intent classifies Portuguese chat messages into financial intents.
//
// Detectors are independent predicates over a normalized message. Every
// detector that fires becomes a candidate; an explicit precedence policy
// removes candidates that a more specific intent overrides, a session-scoped
// scorer assigns confidences, and arbitration picks the winner.
package intent

// Kind identifies what the user wants to do.
type Kind string

// Intent kinds, in detector declaration order.
const (
	Greeting        Kind = "greeting"
	Help            Kind = "help"
	Correction      Kind = "correction"
	CreateFixedBill Kind = "create_fixed_bill"
	ListFixedBills  Kind = "list_fixed_bills"
	PayFixedBill    Kind = "pay_fixed_bill"
	PixQuery        Kind = "pix_query"
	PeriodQuery     Kind = "period_query"
	ExpenseQuery    Kind = "expense_query"
	IncomeQuery     Kind = "income_query"
	GetSummary      Kind = "get_summary"
	GetBalance      Kind = "get_balance"
	CreateAccount   Kind = "create_account"
	Transfer        Kind = "transfer"
	AddExpense      Kind = "add_expense"
	AddIncome       Kind = "add_income"
	Unknown         Kind = "unknown"
)

// IsReadOnly reports whether the intent only reads data. Read-only intents do
// not become the conversation's last intent.
func (k Kind) IsReadOnly() bool {
	switch k {
	case GetBalance, Help, Greeting, ListFixedBills, Unknown:
		return true
	}
	return false
}

// IsQuery reports whether the intent asks for a period-based report.
func (k Kind) IsQuery() bool {
	switch k {
	case GetSummary, ExpenseQuery, IncomeQuery, PeriodQuery, PixQuery:
		return true
	}
	return false
}
