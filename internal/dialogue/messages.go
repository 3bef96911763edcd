package dialogue

import (
	"fmt"
	"strings"

	"github.com/Veraticus/dinah/internal/model"
)

const (
	msgInternalError  = "Ops, tive um erro interno. Recarregue a conversa e tente de novo."
	msgEmptyMessage   = "Não recebi nenhuma mensagem. Me diga o que você quer fazer."
	msgCancelled      = "Tudo bem, deixei pra lá. Posso ajudar com outra coisa?"
	msgNoAccounts     = `Você ainda não tem nenhuma conta cadastrada. Crie uma com "criar conta Nubank".`
	msgAmountExample  = `Não entendi o valor. Responda só com o número, por exemplo "50" ou "R$ 25,90".`
	msgTimeExample    = `Não entendi o horário. Responda, por exemplo, "14:30" ou "14h".`
	msgConfirmAgain   = `Responda "sim" para confirmar ou "não" para cancelar.`
	msgNeedsTwoAccts  = `Para transferir entre contas você precisa de pelo menos duas contas. Crie outra com "criar conta Itaú".`
	msgSameAccount    = "A conta de origem e a de destino são a mesma. Escolha contas diferentes."
	msgNoRecent       = "Não encontrei nenhum lançamento nesta conversa para corrigir."
	msgChooseField    = "O que você quer corrigir no último lançamento?"
	msgMonthExample   = `Não entendi o mês. Responda, por exemplo, "março" ou "mês passado".`
	msgDueDayRange    = `O dia de vencimento deve estar entre 1 e 31. Responda, por exemplo, "10".`
	msgNoFixedBills   = `Você não tem contas fixas cadastradas. Cadastre com "cadastrar conta fixa aluguel 1500 dia 10".`
	msgInvalidBalance = `Não entendi o saldo. Responda com um valor como "500" ou "zero".`
	msgNegativeStart  = "O saldo inicial não pode ser negativo."
)

var examples = []string{
	`"gastei 50 no almoço"`,
	`"recebi 3000 de salário"`,
	`"transferir 100 do Nubank para o Itaú"`,
	`"qual meu saldo?"`,
	`"quanto gastei este mês?"`,
	`"paguei o aluguel"`,
}

func unknownMessage() string {
	return "Desculpe, não entendi. Você pode tentar, por exemplo:\n" + bulletList(examples)
}

func helpMessage() string {
	return "Eu registro seus gastos, receitas e transferências e respondo sobre seu dinheiro. Experimente:\n" +
		bulletList(append(append([]string{}, examples...),
			`"criar conta Nubank"`,
			`"cadastrar conta fixa internet 100 dia 15"`,
			`"minhas contas fixas"`,
			`"errei o valor"`,
		))
}

func bulletList(items []string) string {
	var b strings.Builder
	for i, it := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("• ")
		b.WriteString(it)
	}
	return b.String()
}

func accountNamesList(accounts []model.Account) string {
	names := make([]string, len(accounts))
	for i, a := range accounts {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}

func balanceBreakdown(accounts []model.Account) string {
	lines := make([]string, len(accounts))
	for i, a := range accounts {
		lines[i] = fmt.Sprintf("%s: %s", a.Name, model.FormatBRL(a.Balance))
	}
	return bulletList(lines)
}

// InsufficientFunds explains why acc cannot cover amount and points at the
// accounts that can.
func InsufficientFunds(acc model.Account, amount float64, accounts []model.Account) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Saldo insuficiente em %s: você tem %s e precisa de %s (faltam %s).\n",
		acc.Name, model.FormatBRL(acc.Balance), model.FormatBRL(amount), model.FormatBRL(model.RoundCents(amount-acc.Balance)))
	b.WriteString("Seus saldos:\n")
	b.WriteString(balanceBreakdown(accounts))

	if alt := accountsCovering(accounts, amount, acc.ID); len(alt) > 0 {
		fmt.Fprintf(&b, "\nVocê pode usar: %s.", accountNamesList(alt))
	} else {
		b.WriteString("\nNenhuma conta tem saldo suficiente. Registre uma receita ou transfira dinheiro antes.")
	}
	return b.String()
}

func accountsCovering(accounts []model.Account, amount float64, excludeID string) []model.Account {
	var out []model.Account
	for _, a := range accounts {
		if a.ID != excludeID && a.Balance >= amount {
			out = append(out, a)
		}
	}
	return out
}

func accountNotFound(accounts []model.Account) string {
	return fmt.Sprintf("Não encontrei essa conta. Suas contas são: %s.", accountNamesList(accounts))
}

func accountOptions(accounts []model.Account, excludeID string) []Option {
	opts := make([]Option, 0, len(accounts))
	for _, a := range accounts {
		if a.ID == excludeID {
			continue
		}
		opts = append(opts, Option{Name: a.Name, ID: a.ID})
	}
	return opts
}
