package intent

// precedence says that when kind fires, the overridden kinds are dropped.
type precedence struct {
	kind       Kind
	overridden []Kind
}

// policy is applied top to bottom. A kind already dropped by an earlier rule
// no longer overrides anything.
var policy = []precedence{
	// A greeting is answered before anything else; the caller may reprocess
	// whatever followed it.
	{kind: Greeting, overridden: []Kind{Help, Correction, CreateFixedBill, ListFixedBills, PayFixedBill, PixQuery,
		PeriodQuery, ExpenseQuery, IncomeQuery, GetSummary, GetBalance, CreateAccount, Transfer, AddExpense, AddIncome}},
	{kind: Correction, overridden: []Kind{AddExpense, AddIncome, Transfer, CreateAccount}},
	{kind: CreateFixedBill, overridden: []Kind{CreateAccount, AddExpense, PayFixedBill, ListFixedBills}},
	{kind: ListFixedBills, overridden: []Kind{PayFixedBill, GetBalance, GetSummary, AddExpense}},
	// Paying a registered bill is a specialization of an expense.
	{kind: PayFixedBill, overridden: []Kind{AddExpense}},
	{kind: PixQuery, overridden: []Kind{AddExpense, AddIncome, Transfer, ExpenseQuery, IncomeQuery, PeriodQuery}},
	// "quanto recebi ontem" is a question about a period, not new income.
	{kind: PeriodQuery, overridden: []Kind{AddIncome, AddExpense, ExpenseQuery, IncomeQuery, GetSummary}},
	{kind: ExpenseQuery, overridden: []Kind{AddExpense, GetSummary}},
	{kind: IncomeQuery, overridden: []Kind{AddIncome, GetSummary}},
	{kind: GetBalance, overridden: []Kind{AddExpense, AddIncome, CreateAccount, GetSummary}},
	{kind: GetSummary, overridden: []Kind{AddExpense, AddIncome}},
	{kind: Transfer, overridden: []Kind{AddExpense, CreateAccount}},
	{kind: Help, overridden: []Kind{CreateAccount}},
}

// applyPolicy filters fired kinds through the precedence table, keeping
// declaration order.
func applyPolicy(fired []Kind) []Kind {
	dropped := map[Kind]bool{}
	present := map[Kind]bool{}
	for _, k := range fired {
		present[k] = true
	}
	for _, rule := range policy {
		if !present[rule.kind] || dropped[rule.kind] {
			continue
		}
		for _, k := range rule.overridden {
			dropped[k] = true
		}
	}

	kept := make([]Kind, 0, len(fired))
	for _, k := range fired {
		if !dropped[k] {
			kept = append(kept, k)
		}
	}
	return kept
}
