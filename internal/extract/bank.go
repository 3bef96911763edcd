package extract

import (
	"github.com/Veraticus/dinah/internal/fuzzy"
	"github.com/Veraticus/dinah/internal/knowledge"
)

// BankMatch is a known bank named in a message.
type BankMatch struct {
	Key      string
	Category knowledge.BankCategory
	Alias    string
}

// Bank finds a known bank in message. The longest matching alias wins, so
// "banco do brasil" beats "brasil"-like fragments of other entries.
func Bank(message string) (BankMatch, bool) {
	text := fuzzy.Normalize(message)
	var best BankMatch
	for _, bank := range knowledge.Banks {
		for _, alias := range bank.Aliases {
			if len(alias) > len(best.Alias) && fuzzy.ContainsWord(text, alias) {
				best = BankMatch{Key: bank.Key, Category: bank.Category, Alias: alias}
			}
		}
	}
	return best, best.Key != ""
}
