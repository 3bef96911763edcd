package dialogue

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Veraticus/dinah/internal/extract"
	"github.com/Veraticus/dinah/internal/fuzzy"
	"github.com/Veraticus/dinah/internal/intent"
	"github.com/Veraticus/dinah/internal/model"
)

const (
	minAccountNameLen    = 2
	similarNameMaxLenGap = 3
)

var (
	negativeAmount = regexp.MustCompile(`(^|\s)-\s*(r\$\s*)?\d`)
	zeroWords      = []string{"zero", "zerada", "zerado", "vazia", "vazio"}
)

func (e *Engine) processCreateAccount(t *turn) ActionResult {
	name := extract.AccountName(t.message)
	if name == "" {
		return ask(intent.CreateAccount, "Qual o nome da nova conta?", AwaitAccountName{})
	}
	if msg, ok := validateAccountName(name, t.accounts); !ok {
		return failure(intent.CreateAccount, msg)
	}
	if amount, ok := extract.MonetaryValue(t.message); ok {
		if negativeAmount.MatchString(strings.ToLower(t.message)) {
			return failure(intent.CreateAccount, msgNegativeStart)
		}
		return createAccount(name, amount)
	}
	return askBalance(name)
}

func askBalance(name string) ActionResult {
	return ask(intent.CreateAccount, fmt.Sprintf("Qual o saldo atual da conta %s?", name), AwaitAccountBalance{Name: name},
		Option{Name: "Começar zerada", ID: "zero"})
}

func createAccount(name string, balance float64) ActionResult {
	text := fmt.Sprintf("Conta %s criada com saldo de %s.", name, model.FormatBRL(balance))
	return success(intent.CreateAccount, text, CreateAccountData{Name: name, InitialBalance: model.RoundCents(balance)})
}

// validateAccountName rejects empty, duplicate and confusingly similar names.
// Multi-word names such as "Nubank Empresarial" are never too similar.
func validateAccountName(name string, accounts []model.Account) (string, bool) {
	if utf8.RuneCountInString(strings.TrimSpace(name)) < minAccountNameLen {
		return "O nome da conta precisa ter pelo menos 2 letras.", false
	}
	norm := fuzzy.Normalize(name)
	for _, a := range accounts {
		existing := fuzzy.Normalize(a.Name)
		if existing == norm {
			return fmt.Sprintf("Você já tem uma conta chamada %s.", a.Name), false
		}
		if tooSimilar(norm, existing) {
			return fmt.Sprintf("O nome %s é muito parecido com a conta %s. Use um nome mais específico, como \"%s Pessoal\".",
				name, a.Name, name), false
		}
	}
	return "", true
}

func tooSimilar(a, b string) bool {
	if strings.Contains(a, " ") || strings.Contains(b, " ") {
		return false
	}
	gap := utf8.RuneCountInString(a) - utf8.RuneCountInString(b)
	if gap < 0 {
		gap = -gap
	}
	return gap <= similarNameMaxLenGap && fuzzy.Similarity(a, b) >= fuzzy.DefaultThreshold
}

func (e *Engine) resumeAccountName(t *turn) (ActionResult, bool) {
	name := extract.AccountName(t.message)
	if name == "" {
		name = strings.TrimSpace(t.message)
	}
	if msg, ok := validateAccountName(name, t.accounts); !ok {
		return failure(intent.CreateAccount, msg), false
	}
	return askBalance(name), true
}

func (e *Engine) resumeAccountBalance(t *turn, p AwaitAccountBalance) (ActionResult, bool) {
	text := strings.ToLower(t.message)
	if negativeAmount.MatchString(text) {
		return failure(intent.CreateAccount, msgNegativeStart), false
	}
	if amount, ok := extract.MonetaryValue(t.message); ok {
		return createAccount(p.Name, amount), true
	}
	words := fuzzy.Words(fuzzy.Normalize(text))
	for _, w := range words {
		for _, z := range zeroWords {
			if w == z {
				return createAccount(p.Name, 0), true
			}
		}
	}
	return failure(intent.CreateAccount, msgInvalidBalance), false
}
