package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/dinah/internal/fuzzy"
)

// Period is a concrete date range for a query.
type Period struct {
	Start time.Time
	End   time.Time
	Label string
	// Phrase is the normalized text that produced the period.
	Phrase string
	// DayFrom and DayTo hold a day range whose month was not given.
	DayFrom int
	DayTo   int
	// NeedsMonthClarification is set for "do dia 1 ao dia 10" without a month.
	NeedsMonthClarification bool
}

var (
	dayRangePattern  = regexp.MustCompile(`\b(?:do|de|entre|dos)?\s*dias?\s+(\d{1,2})\s+(?:ao|a|ate|e)\s+(?:o\s+)?(?:dia\s+)?(\d{1,2})\b`)
	lastDaysPattern  = regexp.MustCompile(`\bultimos\s+(\d{1,3})\s+dias\b`)
	monthNumPattern  = regexp.MustCompile(`\bmes\s+(\d{1,2})\b`)
	yearPattern      = regexp.MustCompile(`\b(20\d{2})\b`)
	namedMonthRegexp = regexp.MustCompile(`\b(janeiro|fevereiro|marco|abril|maio|junho|julho|agosto|setembro|outubro|novembro|dezembro)\b`)

	relativePeriods = []struct {
		re   *regexp.Regexp
		kind string
	}{
		{regexp.MustCompile(`\banteontem\b`), "anteontem"},
		{regexp.MustCompile(`\bontem\b`), "ontem"},
		{regexp.MustCompile(`\bhoje\b`), "hoje"},
		{regexp.MustCompile(`\b(?:semana passada|ultima semana|semana anterior)\b`), "last_week"},
		{regexp.MustCompile(`\b(?:(?:n)?(?:est|ess)a semana|d(?:est|ess)a semana|da semana|na semana|semana atual)\b`), "this_week"},
		{regexp.MustCompile(`\b(?:mes passado|ultimo mes|mes anterior)\b`), "last_month"},
		{regexp.MustCompile(`\b(?:(?:n|d)?(?:est|ess)e mes|mes atual|do mes|no mes)\b`), "this_month"},
		{regexp.MustCompile(`\b(?:ano passado|ultimo ano)\b`), "last_year"},
		{regexp.MustCompile(`\b(?:(?:n|d)?(?:est|ess)e ano|ano atual)\b`), "this_year"},
	}

	periodConnectors = map[string]bool{
		"e": true, "o": true, "a": true, "do": true, "da": true, "de": true, "no": true, "na": true,
		"em": true, "agora": true, "entao": true, "tambem": true, "mas": true, "pra": true, "para": true,
		"sobre": true, "ao": true, "que": true, "tal": true, "pro": true, "periodo": true, "e quanto": true,
	}
)

// ThisMonth is the default period for queries that name none.
func ThisMonth(now time.Time) Period {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return Period{Start: start, End: start.AddDate(0, 1, 0).Add(-time.Second), Label: "este mês"}
}

// MonthPeriod covers a whole calendar month. Out-of-range months roll over
// into the neighbouring year.
func MonthPeriod(year int, month time.Month, loc *time.Location) Period {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return Period{
		Start: start,
		End:   start.AddDate(0, 1, 0).Add(-time.Second),
		Label: fmt.Sprintf("%s de %d", MonthNames[start.Month()], start.Year()),
	}
}

// DayRange builds "dia from a to" within the given month. Days past the end of
// the month are clamped to its last day.
func DayRange(from, to int, year int, month time.Month, loc *time.Location) (Period, bool) {
	if from < 1 || to < 1 || from > 31 || to > 31 || from > to {
		return Period{}, false
	}
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
	if from > last {
		return Period{}, false
	}
	to = min(to, last)
	start := time.Date(year, month, from, 0, 0, 0, 0, loc)
	end := endOfDay(time.Date(year, month, to, 0, 0, 0, 0, loc))
	return Period{
		Start:   start,
		End:     end,
		Label:   fmt.Sprintf("de %d a %d de %s de %d", from, to, MonthNames[month], year),
		DayFrom: from,
		DayTo:   to,
	}, true
}

// PeriodOrDefault is FindPeriod falling back to the current month.
func PeriodOrDefault(message string, now time.Time) Period {
	if p, ok := FindPeriod(message, now); ok {
		return p
	}
	return ThisMonth(now)
}

// FindPeriod maps an explicit period expression to a date range: "hoje",
// "ontem", "esta semana", "este mês", "mês passado", a month name, "mês 3",
// "últimos 7 dias", "este ano" or "do dia 1 ao dia 10 [de março]".
func FindPeriod(message string, now time.Time) (Period, bool) {
	text := fuzzy.Normalize(message)
	today := startOfDay(now)
	loc := now.Location()

	if m := dayRangePattern.FindStringSubmatch(text); m != nil {
		from, _ := strconv.Atoi(m[1])
		to, _ := strconv.Atoi(m[2])
		rest := strings.Replace(text, m[0], " ", 1)
		if month, year, ok := monthIn(rest, now); ok {
			if p, ok := DayRange(from, to, year, month, loc); ok {
				p.Phrase = m[0]
				return p, true
			}
			return Period{}, false
		}
		if from < 1 || to > 31 || from > to {
			return Period{}, false
		}
		return Period{
			Label:                   fmt.Sprintf("de %d a %d", from, to),
			Phrase:                  m[0],
			DayFrom:                 from,
			DayTo:                   to,
			NeedsMonthClarification: true,
		}, true
	}

	if m := lastDaysPattern.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		if n > 0 {
			return Period{
				Start:  today.AddDate(0, 0, -(n - 1)),
				End:    endOfDay(today),
				Label:  fmt.Sprintf("últimos %d dias", n),
				Phrase: m[0],
			}, true
		}
	}

	if month, year, ok := monthIn(text, now); ok {
		p := MonthPeriod(year, month, loc)
		if m := namedMonthRegexp.FindString(text); m != "" {
			p.Phrase = m
		} else {
			p.Phrase = monthNumPattern.FindString(text)
		}
		if y := yearPattern.FindString(text); y != "" {
			p.Phrase += " de " + y
		}
		return p, true
	}

	for _, rp := range relativePeriods {
		phrase := rp.re.FindString(text)
		if phrase == "" {
			continue
		}
		p := relativePeriod(rp.kind, today, now)
		p.Phrase = phrase
		return p, true
	}

	return Period{}, false
}

func relativePeriod(kind string, today, now time.Time) Period {
	switch kind {
	case "anteontem":
		day := today.AddDate(0, 0, -2)
		return Period{Start: day, End: endOfDay(day), Label: "anteontem"}
	case "ontem":
		day := today.AddDate(0, 0, -1)
		return Period{Start: day, End: endOfDay(day), Label: "ontem"}
	case "hoje":
		return Period{Start: today, End: endOfDay(today), Label: "hoje"}
	case "this_week":
		start := today.AddDate(0, 0, -int(today.Weekday()))
		return Period{Start: start, End: endOfDay(today), Label: "esta semana"}
	case "last_week":
		start := today.AddDate(0, 0, -int(today.Weekday())-7)
		return Period{Start: start, End: endOfDay(start.AddDate(0, 0, 6)), Label: "semana passada"}
	case "last_month":
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -1, 0)
		p := MonthPeriod(first.Year(), first.Month(), now.Location())
		p.Label = "mês passado"
		return p
	case "this_year":
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		return Period{Start: start, End: endOfDay(today), Label: "este ano"}
	case "last_year":
		start := time.Date(now.Year()-1, time.January, 1, 0, 0, 0, 0, now.Location())
		return Period{Start: start, End: start.AddDate(1, 0, 0).Add(-time.Second), Label: fmt.Sprintf("%d", now.Year()-1)}
	default:
		return ThisMonth(now)
	}
}

// monthIn finds a month named in text, by full name or as "mês N". Without an
// explicit year, months after the current one refer to last year.
func monthIn(text string, now time.Time) (time.Month, int, bool) {
	month := 0
	if m := namedMonthRegexp.FindStringSubmatch(text); m != nil {
		month = monthNumbers[m[1]]
	} else if m := monthNumPattern.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > 12 {
			return 0, 0, false
		}
		month = n
	}
	if month == 0 {
		return 0, 0, false
	}

	year := now.Year()
	if y := yearPattern.FindString(text); y != "" {
		year, _ = strconv.Atoi(y)
	} else if month > int(now.Month()) {
		year--
	}
	return time.Month(month), year, true
}

// BarePeriod reports whether message is nothing but a period expression, such
// as "e ontem?" or "e no mês passado", which continues the previous query.
func BarePeriod(message string, now time.Time) (Period, bool) {
	p, ok := FindPeriod(message, now)
	if !ok {
		return Period{}, false
	}
	rest := strings.Replace(fuzzy.Normalize(message), p.Phrase, " ", 1)
	for _, w := range fuzzy.Words(rest) {
		if !periodConnectors[w] && !isAllDigits(w) {
			return Period{}, false
		}
	}
	return p, true
}
