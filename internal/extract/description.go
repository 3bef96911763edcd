package extract

import (
	"strings"
	"unicode"

	"github.com/Veraticus/dinah/internal/fuzzy"
	"github.com/Veraticus/dinah/internal/knowledge"
)

var (
	descriptionPrepositions = wordSet("em", "com", "de", "para", "pra", "no", "na", "nos", "nas", "num", "numa", "do", "da")

	// Words that start a message but say nothing about what the money was for.
	leadingWords = wordSet("gastei", "gasto", "gastar", "paguei", "pago", "pagar", "comprei", "compra", "comprar",
		"recebi", "receber", "recebo", "ganhei", "ganho", "entrou", "caiu", "torrei", "desembolsei", "tive", "fiz",
		"foi", "foram", "um", "uma", "o", "a", "os", "as", "meu", "minha", "mais", "de", "com", "no", "na", "em",
		"hoje", "ontem", "anteontem", "despesa", "receita", "gasto", "registra", "registrar", "anota", "anotar",
		"adiciona", "adicionar", "lanca", "lancar", "coloca", "bota", "eu", "ai", "la")

	// Residue left behind by amounts, dates and times.
	noiseWords = wordSet("r$", "r", "$", "reais", "real", "conto", "contos", "pila", "centavo", "centavos", "mil",
		"hoje", "ontem", "anteontem", "amanha", "as", "dia", "horas", "hora", "hrs", "h", "feira",
		"domingo", "segunda", "terca", "quarta", "quinta", "sexta", "sabado", "valor")

	// Connectors after which an account name usually follows.
	accountMarkers = wordSet("no", "na", "do", "da", "pelo", "pela", "via", "usando", "com", "em", "conta", "cartao")

	edgeWords = wordSet("em", "com", "de", "para", "pra", "no", "na", "do", "da", "o", "a", "os", "as", "e", "um", "uma", "pelo", "pela", "via", "por")
)

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// token is a word of the original message with its normalized form.
type token struct {
	raw  string
	norm string
}

func tokenize(text string) []token {
	fields := strings.Fields(text)
	tokens := make([]token, 0, len(fields))
	for _, f := range fields {
		raw := strings.TrimFunc(f, func(r rune) bool {
			return unicode.IsPunct(r) && r != '$' && r != '/' && r != ':'
		})
		if raw == "" {
			continue
		}
		tokens = append(tokens, token{raw: raw, norm: fuzzy.Normalize(raw)})
	}
	return tokens
}

// Description extracts what a transaction was for. It takes the text after the
// first preposition following the amount ("gastei 50 no mercado"), else the
// text before the amount ("almoço 30 reais"), and strips account references,
// currency words, lone numbers, dates and times. accountNames are the user's
// accounts, used to cut "no nubank" off the end.
func Description(message string, accountNames ...string) string {
	accountWords := accountVocabulary(accountNames)

	match, ok := FindAmount(message)
	if !ok {
		return joinTokens(clean(stripLeading(cutAccount(tokenize(message), accountWords))))
	}

	lower := strings.ToLower(message)
	source := message
	if len(lower) != len(message) {
		source = lower
	}
	after := tokenize(source[match.End:])
	before := tokenize(source[:match.Start])

	for i, t := range after {
		if descriptionPrepositions[t.norm] {
			if rest := cutAccount(after[i:], accountWords); len(rest) > 1 {
				if desc := joinTokens(clean(rest[1:])); desc != "" {
					return desc
				}
			}
			break
		}
	}

	if desc := joinTokens(clean(stripLeading(cutAccount(before, accountWords)))); desc != "" {
		return desc
	}
	return joinTokens(clean(cutAccount(after, accountWords)))
}

// CleanDescription removes currency words, lone numbers, date and time words
// and dangling prepositions from a description.
func CleanDescription(text string) string {
	return joinTokens(clean(tokenize(text)))
}

func clean(tokens []token) []token {
	kept := make([]token, 0, len(tokens))
	for _, t := range tokens {
		if noiseWords[t.norm] || isNumberish(t.norm) {
			continue
		}
		kept = append(kept, t)
	}
	for len(kept) > 0 && edgeWords[kept[0].norm] {
		kept = kept[1:]
	}
	for len(kept) > 0 && edgeWords[kept[len(kept)-1].norm] {
		kept = kept[:len(kept)-1]
	}
	return kept
}

func joinTokens(tokens []token) string {
	words := make([]string, len(tokens))
	for i, t := range tokens {
		words[i] = t.raw
	}
	return strings.Join(words, " ")
}

// isNumberish matches numbers, "r$50", "14h", "14h30", "14:30" and "30/01".
func isNumberish(word string) bool {
	word = strings.TrimPrefix(word, "r$")
	if word == "" {
		return true
	}
	hasDigit := false
	for _, r := range word {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case r == '.' || r == ',' || r == ':' || r == '/' || r == 'h' || r == 'x':
		default:
			return false
		}
	}
	return hasDigit
}

func stripLeading(tokens []token) []token {
	for len(tokens) > 0 && (leadingWords[tokens[0].norm] || isNumberish(tokens[0].norm)) {
		tokens = tokens[1:]
	}
	return tokens
}

// cutAccount drops a trailing "no nubank" or "do cartão" from tokens.
func cutAccount(tokens []token, accountWords map[string]bool) []token {
	for i, t := range tokens {
		if !accountMarkers[t.norm] {
			continue
		}
		if t.norm == "conta" || t.norm == "cartao" {
			if i > 0 {
				return tokens[:i]
			}
			continue
		}
		if i+1 < len(tokens) {
			next := tokens[i+1].norm
			if next == "conta" || next == "cartao" || accountWords[next] {
				return tokens[:i]
			}
		}
	}
	return tokens
}

// accountVocabulary collects the words that name an account: the user's own
// account names plus every known bank alias.
func accountVocabulary(accountNames []string) map[string]bool {
	words := map[string]bool{}
	for _, name := range accountNames {
		for _, w := range fuzzy.Words(fuzzy.Normalize(name)) {
			if len(w) > 1 {
				words[w] = true
			}
		}
	}
	for _, bank := range knowledge.Banks {
		for _, alias := range bank.Aliases {
			if !strings.Contains(alias, " ") && len(alias) > 2 {
				words[alias] = true
			}
		}
	}
	return words
}

var (
	personMarkers   = wordSet("para", "pra", "pro", "ao")
	notPersonWords  = wordSet("mim", "conta", "cartao", "o", "a", "os", "as", "minha", "meu", "poupanca", "carteira", "hoje", "ontem", "amanha", "casa", "mercado", "loja", "pagar", "investir", "guardar", "reserva", "que", "ele", "ela")
	personArticles  = wordSet("o", "a", "seu", "sua", "dona")
	personStopWords = wordSet("de", "do", "da", "no", "na", "em", "hoje", "ontem", "amanha", "via", "pelo", "pela", "por", "e", "com")
)

// PersonName finds the recipient of a pix or transfer addressed to someone who
// is not one of the user's accounts: "mandei 50 pro João" yields "João".
func PersonName(message string, accountNames ...string) (string, bool) {
	accountWords := accountVocabulary(accountNames)
	tokens := tokenize(message)
	for i := 0; i < len(tokens); i++ {
		if !personMarkers[tokens[i].norm] {
			continue
		}
		j := i + 1
		for j < len(tokens) && personArticles[tokens[j].norm] {
			j++
		}
		if j >= len(tokens) {
			break
		}
		first := tokens[j]
		if notPersonWords[first.norm] || accountWords[first.norm] || isNumberish(first.norm) || noiseWords[first.norm] {
			continue
		}
		name := []token{first}
		if j+1 < len(tokens) {
			second := tokens[j+1]
			r := []rune(second.raw)
			if len(r) > 0 && unicode.IsUpper(r[0]) && !personStopWords[second.norm] && !accountWords[second.norm] {
				name = append(name, second)
			}
		}
		return titleCase(joinTokens(name)), true
	}
	return "", false
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		for k := 1; k < len(r); k++ {
			r[k] = unicode.ToLower(r[k])
		}
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
