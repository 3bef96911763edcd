package dialogue

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Veraticus/dinah/internal/extract"
	"github.com/Veraticus/dinah/internal/fuzzy"
	"github.com/Veraticus/dinah/internal/intent"
	"github.com/Veraticus/dinah/internal/knowledge"
	"github.com/Veraticus/dinah/internal/model"
)

const minBillNameRunes = 2

var (
	dueDayPattern = regexp.MustCompile(`\bdia\s+(\d{1,2})\b`)
	dueDayAnswer  = regexp.MustCompile(`\b(\d{1,2})\b`)
)

func (e *Engine) processPayFixedBill(t *turn, slots intent.Slots) ActionResult {
	active := model.ActiveBills(t.bills)
	if len(active) == 0 {
		return failure(intent.PayFixedBill, msgNoFixedBills)
	}

	accountID := ""
	if m := extract.MentionedAccount(t.message, t.accounts); m.Found() {
		accountID = m.Account.ID
	}

	if slots.Bill == nil {
		return ask(intent.PayFixedBill, "Qual conta fixa você pagou?",
			AwaitBillSelection{AccountID: accountID, Amount: slots.Amount, HasAmount: slots.HasAmount}, billOptions(active)...)
	}
	if slots.Bill.Bill == nil {
		return failure(intent.PayFixedBill, billNotFound(slots.Bill.Name, active))
	}
	return e.payBill(t, *slots.Bill.Bill, slots.Amount, slots.HasAmount, accountID)
}

// payBill charges bill from the named account when it can cover the amount,
// otherwise asks among the accounts that can.
func (e *Engine) payBill(t *turn, bill model.FixedBill, amount float64, hasAmount bool, accountID string) ActionResult {
	if !hasAmount {
		amount = bill.Amount
	}
	if amount <= 0 {
		return failure(intent.PayFixedBill,
			fmt.Sprintf(`Não sei o valor de %s. Informe junto, por exemplo: "paguei %s 150".`, bill.Name, strings.ToLower(bill.Name)))
	}
	if len(t.accounts) == 0 {
		return failure(intent.PayFixedBill, msgNoAccounts)
	}

	if acc, ok := model.FindAccount(t.accounts, accountID); ok && acc.Balance >= amount {
		return billPaid(t, bill, acc, amount)
	}
	if len(t.accounts) == 1 && t.accounts[0].Balance >= amount {
		return billPaid(t, bill, t.accounts[0], amount)
	}

	covering := accountsCovering(t.accounts, amount, "")
	if len(covering) == 0 {
		text := fmt.Sprintf("Nenhuma conta tem saldo suficiente para pagar %s (%s).\nSeus saldos:\n%s",
			bill.Name, model.FormatBRL(amount), balanceBreakdown(t.accounts))
		return failure(intent.PayFixedBill, text)
	}
	q := fmt.Sprintf("De qual conta sai o pagamento de %s (%s)?", bill.Name, model.FormatBRL(amount))
	return ask(intent.PayFixedBill, q, AwaitBillAccount{Bill: bill, Amount: amount}, accountOptions(covering, "")...)
}

func billPaid(t *turn, bill model.FixedBill, acc model.Account, amount float64) ActionResult {
	data := BillPaymentData{
		Timestamp: t.now,
		BillID:    bill.ID,
		BillName:  bill.Name,
		AccountID: acc.ID,
		Amount:    amount,
	}
	text := fmt.Sprintf("Pagamento de %s registrado: %s debitados de %s.", bill.Name, model.FormatBRL(amount), acc.Name)
	return success(intent.PayFixedBill, text, data)
}

func billOptions(bills []model.FixedBill) []Option {
	opts := make([]Option, len(bills))
	for i, b := range bills {
		opts[i] = Option{Name: fmt.Sprintf("%s (%s)", b.Name, model.FormatBRL(b.Amount)), ID: b.ID}
	}
	return opts
}

func billNotFound(name string, bills []model.FixedBill) string {
	names := make([]string, len(bills))
	for i, b := range bills {
		names[i] = b.Name
	}
	return fmt.Sprintf("Não encontrei a conta fixa %s. Suas contas fixas são: %s.", name, strings.Join(names, ", "))
}

func (e *Engine) resumeBillSelection(t *turn, p AwaitBillSelection) (ActionResult, bool) {
	active := model.ActiveBills(t.bills)
	answer := strings.TrimSpace(t.message)
	for _, b := range active {
		if b.ID == answer {
			return e.payBill(t, b, p.Amount, p.HasAmount, p.AccountID), true
		}
	}
	m, ok := extract.FixedBill(answer, active)
	if !ok || m.Bill == nil {
		return failure(intent.PayFixedBill, billNotFound(answer, active)), false
	}
	return e.payBill(t, *m.Bill, p.Amount, p.HasAmount, p.AccountID), true
}

func (e *Engine) resumeBillAccount(t *turn, p AwaitBillAccount) (ActionResult, bool) {
	m := extract.MentionedAccount(t.message, t.accounts)
	switch m.Status {
	case extract.MatchAmbiguous:
		return ask(intent.PayFixedBill, "Qual destas contas?", p, accountOptions(m.Candidates, "")...), true
	case extract.MatchNotFound:
		return failure(intent.PayFixedBill, accountNotFound(t.accounts)), false
	}
	if m.Account.Balance < p.Amount {
		return failure(intent.PayFixedBill, InsufficientFunds(m.Account, p.Amount, t.accounts)), true
	}
	return billPaid(t, p.Bill, m.Account, p.Amount), true
}

func (e *Engine) processCreateFixedBill(t *turn, slots intent.Slots) ActionResult {
	var d FixedBillDraft
	if slots.Bill != nil {
		d.Name, d.Category = slots.Bill.Name, slots.Bill.Category
	} else {
		d.Name, d.Category = extract.BillName(t.message)
	}
	d.Amount, d.HasAmount = slots.Amount, slots.HasAmount
	if m := dueDayPattern.FindStringSubmatch(fuzzy.Normalize(t.message)); m != nil {
		d.DueDay, _ = strconv.Atoi(m[1])
		if d.DueDay < 1 || d.DueDay > 31 {
			return failure(intent.CreateFixedBill, msgDueDayRange)
		}
	}
	return e.advanceFixedBill(t, d)
}

func (e *Engine) advanceFixedBill(t *turn, d FixedBillDraft) ActionResult {
	if d.Name == "" {
		return ask(intent.CreateFixedBill, "Qual o nome da conta fixa? Por exemplo: aluguel, internet, academia.",
			AwaitFixedBillName{Draft: d})
	}
	for _, b := range t.bills {
		if fuzzy.Normalize(b.Name) == fuzzy.Normalize(d.Name) {
			return failure(intent.CreateFixedBill, fmt.Sprintf("Você já tem a conta fixa %s cadastrada.", b.Name))
		}
	}
	if !d.HasAmount {
		return ask(intent.CreateFixedBill, fmt.Sprintf("Qual o valor mensal de %s?", d.Name), AwaitFixedBillAmount{Draft: d})
	}
	if d.Amount <= 0 {
		return failure(intent.CreateFixedBill, "O valor da conta fixa precisa ser maior que zero.")
	}
	if d.DueDay == 0 {
		var options []Option
		if day := knowledge.DefaultDueDay(d.Category); day > 0 {
			options = append(options, Option{Name: fmt.Sprintf("Dia %d", day), ID: strconv.Itoa(day)})
		}
		return ask(intent.CreateFixedBill, fmt.Sprintf("Em que dia do mês %s vence?", d.Name),
			AwaitFixedBillDueDay{Draft: d}, options...)
	}

	data := FixedBillData{
		Name:     d.Name,
		Category: string(d.Category),
		Amount:   d.Amount,
		DueDay:   d.DueDay,
		IsActive: true,
	}
	text := fmt.Sprintf("Conta fixa %s cadastrada: %s todo dia %d.", d.Name, model.FormatBRL(d.Amount), d.DueDay)
	return success(intent.CreateFixedBill, text, data)
}

func (e *Engine) resumeFixedBillName(t *turn, p AwaitFixedBillName) (ActionResult, bool) {
	name, category := extract.BillName(t.message)
	if len([]rune(name)) < minBillNameRunes {
		return failure(intent.CreateFixedBill, `Não entendi o nome. Responda, por exemplo, "internet".`), false
	}
	d := p.Draft
	d.Name, d.Category = name, category
	if !d.HasAmount {
		d.Amount, d.HasAmount = extract.MonetaryValue(t.message)
	}
	return e.advanceFixedBill(t, d), true
}

func (e *Engine) resumeFixedBillAmount(t *turn, p AwaitFixedBillAmount) (ActionResult, bool) {
	amount, ok := extract.MonetaryValue(t.message)
	if !ok || amount <= 0 {
		return failure(intent.CreateFixedBill, msgAmountExample), false
	}
	d := p.Draft
	d.Amount, d.HasAmount = amount, true
	return e.advanceFixedBill(t, d), true
}

func (e *Engine) resumeFixedBillDueDay(t *turn, p AwaitFixedBillDueDay) (ActionResult, bool) {
	m := dueDayAnswer.FindStringSubmatch(t.message)
	if m == nil {
		return failure(intent.CreateFixedBill, msgDueDayRange), false
	}
	day, _ := strconv.Atoi(m[1])
	if day < 1 || day > 31 {
		return failure(intent.CreateFixedBill, msgDueDayRange), false
	}
	d := p.Draft
	d.DueDay = day
	return e.advanceFixedBill(t, d), true
}

func (e *Engine) listFixedBills(t *turn) ActionResult {
	active := model.ActiveBills(t.bills)
	if len(active) == 0 {
		return success(intent.ListFixedBills, msgNoFixedBills, nil)
	}
	lines := make([]string, len(active))
	total := 0.0
	for i := range active {
		b := &active[i]
		status := "a vencer"
		switch {
		case b.PaidIn(t.now):
			status = "paga"
		case t.now.After(b.DueDate(t.now).AddDate(0, 0, 1)):
			status = "vencida"
		}
		lines[i] = fmt.Sprintf("%s: %s, dia %d (%s)", b.Name, model.FormatBRL(b.Amount), b.DueDay, status)
		total += b.Amount
	}
	text := fmt.Sprintf("Suas contas fixas:\n%s\nTotal mensal: %s", bulletList(lines), model.FormatBRL(model.RoundCents(total)))
	return success(intent.ListFixedBills, text, nil)
}
