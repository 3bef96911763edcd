// Package fuzzy provides the edit-distance similarity used by every intent
// detector and entity extractor to tolerate typos in chat messages.
package fuzzy

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultThreshold is the minimum similarity CorrectTypo accepts.
	DefaultThreshold = 0.7
	// DetectorThreshold is the per-word similarity intent detectors use.
	DetectorThreshold = 0.6
	// minFuzzyWordLen keeps short words out of fuzzy matching, where a single
	// edit already changes most of the word.
	minFuzzyWordLen = 4
)

// Distance returns the Levenshtein edit distance between a and b, counted in runes.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// Similarity returns 1 - distance/max(len(a), len(b)), a value in [0,1].
// Two empty strings are identical.
func Similarity(a, b string) float64 {
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 1
	}
	return 1 - float64(Distance(a, b))/float64(longest)
}

// CorrectTypo returns the candidate most similar to word when that similarity
// reaches threshold. Only a strictly greater similarity replaces the current
// best, so the first of several equally good candidates wins.
func CorrectTypo(word string, candidates []string, threshold float64) (string, bool) {
	best := ""
	bestScore := -1.0
	for _, candidate := range candidates {
		score := Similarity(word, candidate)
		if score < threshold {
			continue
		}
		if score > bestScore {
			best = candidate
			bestScore = score
		}
	}
	return best, bestScore >= 0
}

// MatchesAny reports whether word is similar enough to any keyword.
// Words shorter than four runes must match exactly.
func MatchesAny(word string, keywords []string, threshold float64) bool {
	short := len([]rune(word)) < minFuzzyWordLen
	for _, keyword := range keywords {
		if word == keyword {
			return true
		}
		if short || len([]rune(keyword)) < minFuzzyWordLen {
			continue
		}
		if Similarity(word, keyword) >= threshold {
			return true
		}
	}
	return false
}

// ContainsFuzzy reports whether text contains one of the keywords. Multi-word
// keywords must appear literally; single-word keywords are compared word by
// word with MatchesAny.
func ContainsFuzzy(text string, keywords []string, threshold float64) bool {
	normalized := Normalize(text)
	padded := " " + strings.Join(Words(normalized), " ") + " "

	var single []string
	for _, keyword := range keywords {
		nk := Normalize(keyword)
		if strings.Contains(nk, " ") {
			if strings.Contains(padded, " "+nk+" ") {
				return true
			}
			continue
		}
		single = append(single, nk)
	}

	for _, word := range Words(normalized) {
		if MatchesAny(word, single, threshold) {
			return true
		}
	}
	return false
}

// Normalize lowercases s and strips diacritics, so "Itaú" and "itau" compare equal.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// Words splits s into runs of letters and digits.
func Words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// ContainsWord reports whether phrase appears in text on word boundaries.
// Both sides are normalized first.
func ContainsWord(text, phrase string) bool {
	np := strings.Join(Words(Normalize(phrase)), " ")
	if np == "" {
		return false
	}
	padded := " " + strings.Join(Words(Normalize(text)), " ") + " "
	return strings.Contains(padded, " "+np+" ")
}
