package dialogue

import (
	"fmt"

	"github.com/Veraticus/dinah/internal/extract"
	"github.com/Veraticus/dinah/internal/fuzzy"
	"github.com/Veraticus/dinah/internal/intent"
	"github.com/Veraticus/dinah/internal/model"
)

type correctionField string

const (
	fieldValue       correctionField = "valor"
	fieldAccount     correctionField = "conta"
	fieldDescription correctionField = "descricao"
	fieldDelete      correctionField = "excluir"
)

var fieldWords = []struct {
	field correctionField
	words []string
}{
	{fieldDelete, []string{"excluir", "exclui", "apagar", "apaga", "deletar", "remover", "remove", "desfazer", "desfaz", "cancelar", "cancela"}},
	{fieldValue, []string{"valor", "quantia", "preco", "montante"}},
	{fieldDescription, []string{"descricao", "nome"}},
	{fieldAccount, []string{"conta", "banco", "cartao"}},
}

func correctionOptions() []Option {
	return []Option{
		{Name: "Valor", ID: string(fieldValue)},
		{Name: "Conta", ID: string(fieldAccount)},
		{Name: "Descrição", ID: string(fieldDescription)},
		{Name: "Excluir lançamento", ID: string(fieldDelete)},
	}
}

func detectField(message string) (correctionField, bool) {
	words := fuzzy.Words(fuzzy.Normalize(message))
	for _, fw := range fieldWords {
		for _, w := range words {
			for _, k := range fw.words {
				if w == k {
					return fw.field, true
				}
			}
		}
	}
	return "", false
}

// processCorrection starts fixing the most recent entry of the conversation.
// RecentTransactions is ordered oldest first.
func (e *Engine) processCorrection(t *turn) ActionResult {
	if len(t.recent) == 0 {
		return failure(intent.Correction, msgNoRecent)
	}
	tx := t.recent[len(t.recent)-1]

	// Deleting always goes through the explicit option.
	field, ok := detectField(t.message)
	if !ok || field == fieldDelete {
		return ask(intent.Correction, msgChooseField+"\n"+describe(tx), AwaitCorrectionField{Transaction: tx}, correctionOptions()...)
	}
	if field == fieldValue {
		if amount, ok := extract.MonetaryValue(t.message); ok {
			return correctValue(tx, amount)
		}
	}
	return e.askCorrection(t, tx, field)
}

func describe(tx model.Transaction) string {
	return fmt.Sprintf("Último lançamento: %s de %s (%s).", tx.Type.Label(), model.FormatBRL(tx.Amount), tx.Description)
}

func (e *Engine) askCorrection(t *turn, tx model.Transaction, field correctionField) ActionResult {
	switch field {
	case fieldValue:
		return ask(intent.Correction, fmt.Sprintf("Qual o valor correto? Hoje está %s.", model.FormatBRL(tx.Amount)),
			AwaitCorrectionValue{Transaction: tx})
	case fieldDescription:
		return ask(intent.Correction, fmt.Sprintf("Qual a descrição correta? Hoje está \"%s\".", tx.Description),
			AwaitCorrectionDescription{Transaction: tx})
	case fieldAccount:
		options := accountOptions(t.accounts, tx.AccountID)
		if len(options) == 0 {
			return failure(intent.Correction, "Você só tem uma conta, então não há outra para mover o lançamento.")
		}
		return ask(intent.Correction, "Para qual conta devo mover o lançamento?", AwaitCorrectionAccount{Transaction: tx}, options...)
	}
	text := fmt.Sprintf("Lançamento removido: %s de %s (%s).", tx.Type.Label(), model.FormatBRL(tx.Amount), tx.Description)
	return success(intent.Correction, text, CancelTransactionData{Transaction: tx})
}

// correctValue updates a plain entry in place. Transfers are linked pairs and
// are reversed and booked again instead.
func correctValue(tx model.Transaction, amount float64) ActionResult {
	if amount <= 0 {
		return failure(intent.Correction, msgAmountExample)
	}
	text := fmt.Sprintf("Valor corrigido de %s para %s.", model.FormatBRL(tx.Amount), model.FormatBRL(amount))
	if tx.IsTransfer() {
		return success(intent.Correction, text, ReverseAndRecreateData{Original: tx, Amount: &amount})
	}
	return success(intent.Correction, text, UpdateTransactionData{
		TransactionID: tx.ID,
		Update:        model.TransactionUpdate{Amount: &amount},
	})
}

func correctAccount(tx model.Transaction, acc model.Account) ActionResult {
	if acc.ID == tx.AccountID {
		return failure(intent.Correction, fmt.Sprintf("O lançamento já está na conta %s.", acc.Name))
	}
	text := fmt.Sprintf("Lançamento movido para a conta %s.", acc.Name)
	id := acc.ID
	if tx.IsTransfer() {
		return success(intent.Correction, text, ReverseAndRecreateData{Original: tx, FromAccountID: &id})
	}
	return success(intent.Correction, text, UpdateTransactionData{
		TransactionID: tx.ID,
		Update:        model.TransactionUpdate{AccountID: &id},
	})
}

func (e *Engine) resumeCorrectionField(t *turn, p AwaitCorrectionField) (ActionResult, bool) {
	field := correctionField(fuzzy.Normalize(t.message))
	switch field {
	case fieldValue, fieldAccount, fieldDescription, fieldDelete:
	default:
		var ok bool
		if field, ok = detectField(t.message); !ok {
			return ask(intent.Correction, msgChooseField, p, correctionOptions()...), false
		}
	}
	return e.askCorrection(t, p.Transaction, field), true
}

func (e *Engine) resumeCorrectionValue(t *turn, p AwaitCorrectionValue) (ActionResult, bool) {
	amount, ok := extract.MonetaryValue(t.message)
	if !ok {
		return failure(intent.Correction, msgAmountExample), false
	}
	return correctValue(p.Transaction, amount), true
}

func (e *Engine) resumeCorrectionDescription(t *turn, p AwaitCorrectionDescription) (ActionResult, bool) {
	desc := extract.CleanDescription(t.message)
	if desc == "" {
		return failure(intent.Correction, `Não entendi a descrição. Responda, por exemplo, "almoço".`), false
	}
	text := fmt.Sprintf("Descrição corrigida para \"%s\".", desc)
	return success(intent.Correction, text, UpdateTransactionData{
		TransactionID: p.Transaction.ID,
		Update:        model.TransactionUpdate{Description: &desc},
	}), true
}

func (e *Engine) resumeCorrectionAccount(t *turn, p AwaitCorrectionAccount) (ActionResult, bool) {
	m := extract.MentionedAccount(t.message, t.accounts)
	switch m.Status {
	case extract.MatchAmbiguous:
		return ask(intent.Correction, "Qual destas contas?", p, accountOptions(m.Candidates, p.Transaction.AccountID)...), true
	case extract.MatchNotFound:
		return failure(intent.Correction, accountNotFound(t.accounts)), false
	}
	return correctAccount(p.Transaction, m.Account), true
}
