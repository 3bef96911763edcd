package intent

import (
	"strings"

	"github.com/Veraticus/dinah/internal/extract"
	"github.com/Veraticus/dinah/internal/fuzzy"
	"github.com/Veraticus/dinah/internal/model"
)

// detector is one intent predicate. Detectors run in declaration order, which
// also breaks confidence ties during arbitration.
type detector struct {
	detect func(in *Input) bool
	kind   Kind
}

var detectors = []detector{
	{kind: Greeting, detect: detectGreeting},
	{kind: Help, detect: detectHelp},
	{kind: Correction, detect: func(in *Input) bool { return IsCorrection(in.Raw) }},
	{kind: CreateFixedBill, detect: detectCreateFixedBill},
	{kind: ListFixedBills, detect: detectListFixedBills},
	{kind: PayFixedBill, detect: detectPayFixedBill},
	{kind: PixQuery, detect: detectPixQuery},
	{kind: PeriodQuery, detect: detectPeriodQuery},
	{kind: ExpenseQuery, detect: detectExpenseQuery},
	{kind: IncomeQuery, detect: detectIncomeQuery},
	{kind: GetSummary, detect: detectSummary},
	{kind: GetBalance, detect: detectBalance},
	{kind: CreateAccount, detect: detectCreateAccount},
	{kind: Transfer, detect: detectTransfer},
	{kind: AddExpense, detect: detectExpense},
	{kind: AddIncome, detect: detectIncome},
}

// SplitGreeting separates a leading greeting from the rest of message. It
// matches when the greeting is the whole message or is followed by a space or
// a comma: "oi", "bom dia!", "oi, quanto gastei hoje?".
func SplitGreeting(message string) (greeting, rest string, ok bool) {
	text := strings.TrimSpace(fuzzy.Normalize(message))
	for _, g := range greetingPhrases {
		if trimmed(text) == g {
			return g, "", true
		}
		if !strings.HasPrefix(text, g) || len(text) == len(g) {
			continue
		}
		switch text[len(g)] {
		case ' ', ',', '!', '.':
			// Normalizing keeps one rune per letter, so the greeting spans the
			// same number of runes in the original message.
			original := []rune(strings.TrimSpace(message))
			n := len([]rune(g))
			if len(original) < n {
				return g, "", true
			}
			return g, strings.TrimSpace(strings.TrimLeft(string(original[n:]), " ,!.")), true
		}
	}
	return "", "", false
}

// IsCancellation reports whether message asks to drop the pending question:
// an exact cancellation word or phrase, any word starting with "cancel", or a
// cancellation phrase contained in a longer message.
func IsCancellation(message string) bool {
	text := trimmed(fuzzy.Normalize(message))
	if text == "" {
		return false
	}
	for _, w := range cancellationWords {
		if text == w {
			return true
		}
	}
	for _, p := range cancellationPhrases {
		if text == p {
			return true
		}
	}
	if hasPhrase(text, cancellationPhrases) {
		return true
	}
	for _, w := range fuzzy.Words(text) {
		if strings.HasPrefix(w, "cancel") {
			return true
		}
	}
	return false
}

// IsCorrection reports whether message asks to fix the last recorded entry.
func IsCorrection(message string) bool {
	text := fuzzy.Normalize(message)
	return hasPhrase(text, correctionPhrases) || hasWord(fuzzy.Words(text), correctionWords)
}

// IsAffirmative reports whether message answers yes to a confirmation.
func IsAffirmative(message string) bool {
	text := trimmed(fuzzy.Normalize(message))
	for _, p := range affirmativePhrases {
		if text == p || strings.HasPrefix(text, p+" ") {
			return true
		}
	}
	words := fuzzy.Words(text)
	if len(words) == 0 || len(words) > 3 {
		return false
	}
	for _, w := range affirmativeWords {
		if words[0] == w {
			return true
		}
	}
	return false
}

// IsOwnTransfer reports whether message moves money between accounts rather
// than spends it: a movement word with a "de X para Y" direction where X or Y
// names an account, or an amount and a movement word without any word that
// indicates a purchase or bill.
func IsOwnTransfer(message string, accounts []model.Account) bool {
	words := fuzzy.Words(fuzzy.Normalize(message))
	if !hasWord(words, movementWords) {
		return false
	}
	if hasDirection(words, accounts) {
		return true
	}
	_, hasAmount := extract.MonetaryValue(message)
	if !hasAmount {
		return false
	}
	for _, w := range words {
		for _, ind := range expenseIndicators {
			if w == ind {
				return false
			}
		}
	}
	return true
}

var (
	directionFrom = []string{"de", "da", "do"}
	directionTo   = []string{"para", "pra", "pro", "no", "na"}
	sideArticles  = []string{"o", "a", "os", "as", "meu", "minha"}
	currencyWords = []string{"r", "reais", "real", "conto", "contos", "pila", "mil", "centavos"}
)

// hasDirection looks for "de X ... para Y" where neither side is an amount
// and at least one side refers to an account.
func hasDirection(words []string, accounts []model.Account) bool {
	for i := 0; i+1 < len(words); i++ {
		if !containsWordExact(directionFrom, words[i]) {
			continue
		}
		from := words[i+1]
		if isAmountWord(from) {
			continue
		}
		for j := i + 2; j+1 < len(words); j++ {
			if !containsWordExact(directionTo, words[j]) {
				continue
			}
			k := j + 1
			for k+1 < len(words) && containsWordExact(sideArticles, words[k]) {
				k++
			}
			to := words[k]
			if isAmountWord(to) {
				continue
			}
			if namesAccount(from, accounts) || namesAccount(to, accounts) {
				return true
			}
		}
	}
	return false
}

func isAmountWord(word string) bool {
	return strings.ContainsAny(word, "0123456789") || containsWordExact(currencyWords, word)
}

func namesAccount(word string, accounts []model.Account) bool {
	if containsWordExact(accountNouns, word) {
		return true
	}
	if _, ok := extract.Bank(word); ok {
		return true
	}
	return extract.MentionedAccount(word, accounts).Status != extract.MatchNotFound
}

func detectGreeting(in *Input) bool {
	_, _, ok := SplitGreeting(in.Raw)
	return ok
}

func detectHelp(in *Input) bool {
	return hasPhrase(in.Text, helpPhrases) || hasWord(in.Words, helpWords)
}

func detectCreateFixedBill(in *Input) bool {
	fixed := hasPhrase(in.Text, fixedPhrases)
	create := hasWord(in.Words, createWords)
	if fixed && (create || (in.Slots.HasAmount && !hasWord(in.Words, payWords))) && !hasWord(in.Words, listWords) {
		return true
	}
	if in.Slots.Bill == nil || in.Slots.Bill.Source == extract.BillRegistered {
		return false
	}
	return create || (hasPhrase(in.Text, recurrencePhrases) && in.Slots.HasAmount)
}

func detectListFixedBills(in *Input) bool {
	if hasPhrase(in.Text, billListPhrases) {
		return true
	}
	return hasPhrase(in.Text, fixedPhrases) && !in.Slots.HasAmount &&
		(hasWord(in.Words, listWords) || strings.Contains(in.Text, "contas fixas"))
}

func detectPayFixedBill(in *Input) bool {
	if !hasWord(in.Words, payWords) {
		return false
	}
	if in.Slots.Bill != nil && in.Slots.Bill.Source == extract.BillRegistered {
		return true
	}
	return hasPhrase(in.Text, fixedPhrases) && len(model.ActiveBills(in.FixedBills)) > 0
}

func detectPixQuery(in *Input) bool {
	if in.Slots.HasAmount || !containsWordExact(in.Words, "pix") {
		return false
	}
	return hasWord(in.Words, queryWords) || hasWord(in.Words, []string{"recebi", "mandei", "enviei", "fiz", "recebidos", "enviados"})
}

func detectPeriodQuery(in *Input) bool {
	if in.Slots.HasAmount || in.Slots.Period == nil {
		return false
	}
	return hasPhrase(in.Text, expenseQueryPhrases) || hasPhrase(in.Text, incomeQueryPhrases) ||
		(hasWord(in.Words, queryWords) && (hasWord(in.Words, expenseWords) || hasWord(in.Words, incomeWords)))
}

func detectExpenseQuery(in *Input) bool {
	return !in.Slots.HasAmount && hasPhrase(in.Text, expenseQueryPhrases)
}

func detectIncomeQuery(in *Input) bool {
	return !in.Slots.HasAmount && hasPhrase(in.Text, incomeQueryPhrases)
}

func detectSummary(in *Input) bool {
	return hasPhrase(in.Text, summaryPhrases) || hasWord(in.Words, summaryWords)
}

func detectBalance(in *Input) bool {
	return !in.Slots.HasAmount && (hasPhrase(in.Text, balancePhrases) || hasWord(in.Words, balanceWords))
}

func detectCreateAccount(in *Input) bool {
	if !hasWord(in.Words, createWords) || hasPhrase(in.Text, fixedPhrases) {
		return false
	}
	if in.Slots.Bill != nil && !hasWord(in.Words, []string{"carteira", "banco", "poupanca", "caixinha"}) {
		return false
	}
	if hasWord(in.Words, accountNouns) {
		return true
	}
	_, isBank := extract.Bank(in.Raw)
	return isBank
}

func detectTransfer(in *Input) bool {
	if hasPhrase(in.Text, incomePhrases) || hasWord(in.Words, incomeWords) {
		return false
	}
	if containsWordExact(in.Words, "transferencia") || containsWordExact(in.Words, "transferir") {
		return true
	}
	return IsOwnTransfer(in.Raw, in.Accounts)
}

func detectExpense(in *Input) bool {
	if IsOwnTransfer(in.Raw, in.Accounts) {
		return false
	}
	return hasWord(in.Words, expenseWords)
}

func detectIncome(in *Input) bool {
	return hasWord(in.Words, incomeWords) || hasPhrase(in.Text, incomePhrases)
}

func containsWordExact(words []string, word string) bool {
	for _, w := range words {
		if w == word {
			return true
		}
	}
	return false
}

// fallbackTriggers are word stems that hint at a transaction when no detector fires.
var fallbackTriggers = []struct {
	kind  Kind
	stems []string
}{
	{kind: AddExpense, stems: []string{"gast", "pag", "compr", "despes", "cust"}},
	{kind: AddIncome, stems: []string{"receb", "ganh", "salar", "receit"}},
}

// fallback guesses a transaction kind from bare trigger stems, or from an
// amount next to a known spending category.
func fallback(in *Input) (Kind, bool) {
	for _, t := range fallbackTriggers {
		for _, w := range in.Words {
			for _, stem := range t.stems {
				if strings.HasPrefix(w, stem) {
					return t.kind, true
				}
			}
		}
	}
	if in.Slots.HasAmount && extract.Description(in.Raw) != "" {
		return AddExpense, true
	}
	return "", false
}
