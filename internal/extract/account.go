package extract

import (
	"sort"
	"strings"

	"github.com/Veraticus/dinah/internal/fuzzy"
	"github.com/Veraticus/dinah/internal/knowledge"
	"github.com/Veraticus/dinah/internal/model"
)

// MatchStatus is the outcome of resolving an account reference.
type MatchStatus string

// Match statuses.
const (
	MatchFound     MatchStatus = "found"
	MatchAmbiguous MatchStatus = "ambiguous"
	MatchNotFound  MatchStatus = "not_found"
)

const (
	exactScore        = 1.0
	wordScore         = 0.3
	maxWordScore      = 0.9
	abbreviationScore = 0.5
	wordSimilarity    = 0.8
	// ambiguityRatio: a runner-up scoring at least this share of the best
	// score makes the match ambiguous.
	ambiguityRatio = 0.8
)

// AccountMatch is the result of ResolveAccount. Candidates holds the tied
// accounts when Status is MatchAmbiguous.
type AccountMatch struct {
	Status     MatchStatus
	Account    model.Account
	Candidates []model.Account
}

// Found reports whether exactly one account was resolved.
func (m AccountMatch) Found() bool {
	return m.Status == MatchFound
}

// genericAccountWords appear in many account names and identify none of them.
var genericAccountWords = wordSet("conta", "banco", "cartao", "corrente", "poupanca", "pessoal")

type scoredAccount struct {
	account model.Account
	name    string
	score   float64
}

// ResolveAccount finds the account text refers to, in three tiers: the account
// name appearing as words in text scores 1; otherwise each significant name
// word found in text (exactly or by fuzzy match) adds 0.3; otherwise a known
// abbreviation or bank alias scores 0.5. When the best two scores are close,
// the longer name wins if it contains the other, else the match is ambiguous.
// With no match and a single account, that account is selected.
func ResolveAccount(text string, accounts []model.Account) AccountMatch {
	m := resolveAccount(text, accounts)
	if m.Status == MatchNotFound && len(accounts) == 1 {
		return AccountMatch{Status: MatchFound, Account: accounts[0]}
	}
	return m
}

// MentionedAccount is ResolveAccount without the single-account fallback: it
// only reports accounts the text actually names.
func MentionedAccount(text string, accounts []model.Account) AccountMatch {
	return resolveAccount(text, accounts)
}

func resolveAccount(text string, accounts []model.Account) AccountMatch {
	norm := fuzzy.Normalize(text)
	if strings.TrimSpace(norm) == "" {
		return AccountMatch{Status: MatchNotFound}
	}
	words := fuzzy.Words(norm)

	var scored []scoredAccount
	for _, acc := range accounts {
		if acc.ID == text {
			return AccountMatch{Status: MatchFound, Account: acc}
		}
		name := fuzzy.Normalize(acc.Name)
		if score := accountScore(norm, words, name); score > 0 {
			scored = append(scored, scoredAccount{account: acc, name: name, score: score})
		}
	}
	if len(scored) == 0 {
		return AccountMatch{Status: MatchNotFound}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return len(scored[i].name) > len(scored[j].name)
	})

	top := scored[0]
	rivals := []scoredAccount{top}
	for _, s := range scored[1:] {
		if s.score >= top.score*ambiguityRatio {
			rivals = append(rivals, s)
		}
	}
	if len(rivals) == 1 {
		return AccountMatch{Status: MatchFound, Account: top.account}
	}

	// A more specific name that contains every close rival wins.
	longest := rivals[0]
	for _, s := range rivals[1:] {
		if len(s.name) > len(longest.name) {
			longest = s
		}
	}
	for _, s := range rivals {
		if s.account.ID != longest.account.ID && !strings.Contains(longest.name, s.name) {
			candidates := make([]model.Account, len(rivals))
			for i, c := range rivals {
				candidates[i] = c.account
			}
			return AccountMatch{Status: MatchAmbiguous, Candidates: candidates}
		}
	}
	return AccountMatch{Status: MatchFound, Account: longest.account}
}

func accountScore(text string, words []string, name string) float64 {
	if name == "" {
		return 0
	}
	if fuzzy.ContainsWord(text, name) {
		return exactScore
	}

	score := 0.0
	for _, nw := range fuzzy.Words(name) {
		if len(nw) <= 2 || genericAccountWords[nw] {
			continue
		}
		for _, w := range words {
			if w == nw || (len(w) > 3 && fuzzy.Similarity(w, nw) >= wordSimilarity) {
				score += wordScore
				break
			}
		}
	}
	if score > 0 {
		return min(score, maxWordScore)
	}

	for _, w := range words {
		if fragment, ok := knowledge.Abbreviations[w]; ok && strings.Contains(name, fragment) {
			return abbreviationScore
		}
	}
	for _, bank := range knowledge.Banks {
		if !bankNamed(name, bank) {
			continue
		}
		for _, alias := range bank.Aliases {
			if fuzzy.ContainsWord(text, alias) {
				return abbreviationScore
			}
		}
	}
	return 0
}

func bankNamed(name string, bank knowledge.Bank) bool {
	if fuzzy.ContainsWord(name, bank.Key) {
		return true
	}
	for _, alias := range bank.Aliases {
		if len(alias) > 2 && fuzzy.ContainsWord(name, alias) {
			return true
		}
	}
	return false
}

// AccountNames lists the names of accounts.
func AccountNames(accounts []model.Account) []string {
	names := make([]string, len(accounts))
	for i, acc := range accounts {
		names[i] = acc.Name
	}
	return names
}

var (
	accountNameNoise = wordSet("criar", "crie", "cria", "abrir", "abra", "abre", "cadastrar", "cadastre", "cadastra",
		"adicionar", "adicione", "adiciona", "registrar", "registre", "nova", "novo", "conta", "contas", "chamada",
		"chamado", "nome", "saldo", "inicial", "quero", "favor")
	accountNameEdges = wordSet("uma", "um", "minha", "meu", "no", "na", "do", "da", "de", "o", "a", "com", "e", "por")
)

// AccountName extracts the name of a new account from a request such as
// "criar conta Nubank Empresarial com 500 reais".
func AccountName(message string) string {
	kept := make([]token, 0, 4)
	for _, t := range tokenize(message) {
		if accountNameNoise[t.norm] || noiseWords[t.norm] || isNumberish(t.norm) {
			continue
		}
		kept = append(kept, t)
	}
	for len(kept) > 0 && accountNameEdges[kept[0].norm] {
		kept = kept[1:]
	}
	for len(kept) > 0 && accountNameEdges[kept[len(kept)-1].norm] {
		kept = kept[:len(kept)-1]
	}
	return joinTokens(kept)
}
