// Package extract pulls amounts, dates, periods, accounts, banks and bills out
// of Portuguese chat messages.
package extract

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/Veraticus/dinah/internal/fuzzy"
	"github.com/shopspring/decimal"
)

// AmountMatch is a monetary value found in a message, with its byte span.
type AmountMatch struct {
	Value float64
	Start int
	End   int
}

var (
	currencyPattern = regexp.MustCompile(`(?i)r\$\s*(\d+(?:[.,]\d+)*)(\s*mil\b)?`)
	unitPattern     = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)*)\s*(mil\s+)?(reais|real|contos|conto|pila|centavos|centavo)\b`)
	numberPattern   = regexp.MustCompile(`\d+(?:[.,]\d+)*`)
	hundred         = decimal.NewFromInt(100)
	thousand        = decimal.NewFromInt(1000)
)

// MonetaryValue returns the first amount in message. Patterns are tried in
// order: currency symbol + number, number + unit word, then a bare number that
// is not part of a date or time.
func MonetaryValue(message string) (float64, bool) {
	m, ok := FindAmount(message)
	return m.Value, ok
}

// FindAmount is MonetaryValue with the span of the matched text.
func FindAmount(message string) (AmountMatch, bool) {
	lower := strings.ToLower(message)

	if loc := currencyPattern.FindStringSubmatchIndex(lower); loc != nil {
		value, ok := parseNumber(lower[loc[2]:loc[3]])
		if ok {
			if loc[4] >= 0 {
				value = value.Mul(thousand)
			}
			return newAmountMatch(value, loc[0], loc[1])
		}
	}

	if loc := unitPattern.FindStringSubmatchIndex(lower); loc != nil {
		value, ok := parseNumber(lower[loc[2]:loc[3]])
		if ok {
			if loc[4] >= 0 {
				value = value.Mul(thousand)
			}
			if strings.HasPrefix(lower[loc[6]:loc[7]], "centavo") {
				value = value.Div(hundred)
			}
			return newAmountMatch(value, loc[0], loc[1])
		}
	}

	for _, loc := range numberPattern.FindAllStringIndex(lower, -1) {
		if !isBareAmount(lower, loc[0], loc[1]) {
			continue
		}
		value, ok := parseNumber(lower[loc[0]:loc[1]])
		if !ok {
			continue
		}
		end := loc[1]
		if rest := lower[end:]; strings.HasPrefix(strings.TrimLeft(rest, " "), "mil") && wordEndsAt(rest, strings.Index(rest, "mil")+3) {
			value = value.Mul(thousand)
			end += strings.Index(rest, "mil") + 3
		}
		return newAmountMatch(value, loc[0], end)
	}

	return AmountMatch{}, false
}

func newAmountMatch(value decimal.Decimal, start, end int) (AmountMatch, bool) {
	f, _ := value.Round(2).Float64()
	return AmountMatch{Value: f, Start: start, End: end}, true
}

// parseNumber reads Brazilian and international number formats:
// "1.500,50", "1,500.50", "50,5", "50.5", "1.500".
func parseNumber(raw string) (decimal.Decimal, bool) {
	lastDot := strings.LastIndex(raw, ".")
	lastComma := strings.LastIndex(raw, ",")

	var normalized string
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			normalized = strings.ReplaceAll(strings.ReplaceAll(raw, ".", ""), ",", ".")
		} else {
			normalized = strings.ReplaceAll(raw, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(raw, ",") > 1 {
			normalized = strings.ReplaceAll(raw, ",", "")
		} else {
			normalized = strings.Replace(raw, ",", ".", 1)
		}
	case lastDot >= 0:
		// "1.500" and "1.500.000" group thousands; "50.5" is a decimal.
		groups := strings.Split(raw, ".")
		thousands := len(groups) > 1
		for _, g := range groups[1:] {
			if len(g) != 3 {
				thousands = false
			}
		}
		if thousands {
			normalized = strings.ReplaceAll(raw, ".", "")
		} else if len(groups) == 2 {
			normalized = raw
		} else {
			return decimal.Decimal{}, false
		}
	default:
		normalized = raw
	}

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// isBareAmount rejects numbers that belong to dates, times, ordinals and day
// references rather than to a price.
func isBareAmount(s string, start, end int) bool {
	if start > 0 {
		prev := s[start-1]
		if prev == '/' || prev == ':' || prev == '-' && start > 1 && isDigit(s[start-2]) {
			return false
		}
		if unicode.IsLetter(rune(prev)) {
			return false
		}
	}
	if end < len(s) {
		next := s[end]
		if next == '/' || next == ':' || next == 'h' || next == '%' || strings.HasPrefix(s[end:], "º") {
			return false
		}
		if unicode.IsLetter(rune(next)) {
			return false
		}
	}

	rest := strings.TrimLeft(s[end:], " ")
	for _, unit := range []string{"horas", "hora", "hrs", "hr", "de janeiro", "de fevereiro", "de marco", "de março",
		"de abril", "de maio", "de junho", "de julho", "de agosto", "de setembro", "de outubro", "de novembro",
		"de dezembro", "dias", "dia", "meses", "vezes"} {
		if strings.HasPrefix(rest, unit) {
			return false
		}
	}
	if strings.HasPrefix(rest, "de ") {
		// "10 de 12 de 2025"
		after := strings.TrimPrefix(rest, "de ")
		if len(after) > 0 && isDigit(after[0]) {
			return false
		}
	}

	before := strings.Fields(s[:start])
	if n := len(before); n > 0 {
		switch before[n-1] {
		case "dia", "dias", "mês", "mes", "às", "as", "ás", "ao", "parcela", "parcelas", "número", "numero", "nº":
			return false
		case "a", "e", "até", "ate":
			// "dia 1 a 10"
			if n >= 3 && isAllDigits(before[n-2]) && strings.HasPrefix(before[n-3], "dia") {
				return false
			}
		case "de":
			// "10 de 12 de 2025", "março de 2026"
			if n >= 2 && (isAllDigits(before[n-2]) || monthNumbers[fuzzy.Normalize(before[n-2])] > 0) {
				return false
			}
		}
	}
	return true
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func wordEndsAt(s string, i int) bool {
	if i < 0 || i > len(s) {
		return false
	}
	if i == len(s) {
		return true
	}
	return !unicode.IsLetter(rune(s[i]))
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
