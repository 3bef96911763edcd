package extract

import (
	"github.com/Veraticus/dinah/internal/fuzzy"
	"github.com/Veraticus/dinah/internal/model"
)

var (
	sourceMarkers      = wordSet("de", "da", "do", "desde")
	destinationMarkers = wordSet("para", "pra", "pro", "em", "no", "na", "ao")

	// Words that end an account fragment.
	fragmentStopWords = wordSet("para", "pra", "pro", "de", "da", "do", "em", "no", "na", "ao", "hoje", "ontem",
		"anteontem", "amanha", "as", "e", "r$", "reais", "real", "valor", "agora", "dia", "com", "por", "pelo", "pela", "via")
)

// SourceAccount resolves the account money leaves from, looking at what follows
// "de", "da" or "do": "transferi 100 do Nubank para o Itaú".
func SourceAccount(message string, accounts []model.Account) AccountMatch {
	return accountAfter(message, sourceMarkers, accounts)
}

// DestinationAccount resolves the account money goes to, looking at what
// follows "para", "pra", "em", "no" or "na". The already chosen source account
// is never a candidate.
func DestinationAccount(message string, accounts []model.Account, excludeID string) AccountMatch {
	candidates := make([]model.Account, 0, len(accounts))
	for _, acc := range accounts {
		if acc.ID != excludeID {
			candidates = append(candidates, acc)
		}
	}
	return accountAfter(message, destinationMarkers, candidates)
}

func accountAfter(message string, markers map[string]bool, accounts []model.Account) AccountMatch {
	tokens := tokenize(fuzzy.Normalize(message))
	best := AccountMatch{Status: MatchNotFound}
	for i, t := range tokens {
		if !markers[t.norm] {
			continue
		}
		fragment := accountFragment(tokens[i+1:])
		if fragment == "" {
			continue
		}
		switch m := resolveAccount(fragment, accounts); m.Status {
		case MatchFound:
			return m
		case MatchAmbiguous:
			best = m
		case MatchNotFound:
		}
	}
	return best
}

// accountFragment collects the words after a preposition up to the next stop
// word, skipping leading articles and "conta".
func accountFragment(tokens []token) string {
	var words []token
	for _, t := range tokens {
		if len(words) == 0 && (t.norm == "o" || t.norm == "a" || t.norm == "conta" || t.norm == "minha" || t.norm == "meu") {
			continue
		}
		if fragmentStopWords[t.norm] || isNumberish(t.norm) {
			break
		}
		words = append(words, t)
	}
	return joinTokens(words)
}
