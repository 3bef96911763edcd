package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/dinah/internal/fuzzy"
)

// Clock returns the current time. Extractors take one so tests can pin "now".
type Clock func() time.Time

// DateKind classifies an extracted date relative to today.
type DateKind string

// Date kinds.
const (
	DateToday     DateKind = "today"
	DateYesterday DateKind = "yesterday"
	DateTomorrow  DateKind = "tomorrow"
	DateWeekday   DateKind = "weekday"
	DatePast      DateKind = "past_date"
	DateFuture    DateKind = "future_date"
)

// DateInfo is a calendar day mentioned in a message.
type DateInfo struct {
	Date time.Time
	Kind DateKind
}

// NeedsTime reports whether a transaction on this date must carry an explicit
// time so it can be ordered among the entries already booked that day.
func (d DateInfo) NeedsTime() bool {
	return d.Kind == DateYesterday || d.Kind == DatePast
}

var monthNumbers = map[string]int{
	"janeiro": 1, "jan": 1,
	"fevereiro": 2, "fev": 2,
	"marco": 3, "mar": 3,
	"abril": 4, "abr": 4,
	"maio": 5,
	"junho": 6, "jun": 6,
	"julho": 7, "jul": 7,
	"agosto": 8, "ago": 8,
	"setembro": 9, "set": 9,
	"outubro": 10, "out": 10,
	"novembro": 11, "nov": 11,
	"dezembro": 12, "dez": 12,
}

// MonthNames are the Portuguese month names indexed by month number.
var MonthNames = [...]string{"", "janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro"}

var weekdays = []struct {
	names []string
	day   time.Weekday
}{
	{[]string{"domingo"}, time.Sunday},
	{[]string{"segunda", "segunda-feira", "segunda feira"}, time.Monday},
	{[]string{"terca", "terca-feira", "terca feira"}, time.Tuesday},
	{[]string{"quarta", "quarta-feira", "quarta feira"}, time.Wednesday},
	{[]string{"quinta", "quinta-feira", "quinta feira"}, time.Thursday},
	{[]string{"sexta", "sexta-feira", "sexta feira"}, time.Friday},
	{[]string{"sabado"}, time.Saturday},
}

var (
	slashDatePattern = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?\b`)
	wordDatePattern  = regexp.MustCompile(`\b(\d{1,2})\s+de\s+(\d{1,2}|[a-z]+)(?:\s+de\s+(\d{2,4}))?\b`)
)

// Date finds the day a message refers to: "anteontem", "ontem", "hoje",
// "amanhã", a weekday name (next occurrence from today, today included), or an
// absolute date such as "30/01/2025", "30/01/25", "30/01" or "30 de janeiro de 2025".
// Calendar-invalid dates such as 30/02 yield no result.
func Date(message string, now time.Time) (DateInfo, bool) {
	text := fuzzy.Normalize(message)
	today := startOfDay(now)

	switch {
	case fuzzy.ContainsWord(text, "anteontem"):
		return classify(today.AddDate(0, 0, -2), today), true
	case fuzzy.ContainsWord(text, "ontem"):
		return DateInfo{Date: today.AddDate(0, 0, -1), Kind: DateYesterday}, true
	case fuzzy.ContainsWord(text, "hoje"):
		return DateInfo{Date: today, Kind: DateToday}, true
	case fuzzy.ContainsWord(text, "amanha"):
		return DateInfo{Date: today.AddDate(0, 0, 1), Kind: DateTomorrow}, true
	}

	for _, wd := range weekdays {
		for _, name := range wd.names {
			if fuzzy.ContainsWord(text, name) {
				ahead := (int(wd.day) - int(today.Weekday()) + 7) % 7
				return DateInfo{Date: today.AddDate(0, 0, ahead), Kind: DateWeekday}, true
			}
		}
	}

	if m := slashDatePattern.FindStringSubmatch(text); m != nil {
		return absoluteDate(m[1], m[2], m[3], today)
	}
	for _, m := range wordDatePattern.FindAllStringSubmatch(text, -1) {
		month := m[2]
		if n, ok := monthNumbers[month]; ok {
			month = strconv.Itoa(n)
		}
		if _, err := strconv.Atoi(month); err == nil {
			return absoluteDate(m[1], month, m[3], today)
		}
	}

	return DateInfo{}, false
}

func absoluteDate(dayText, monthText, yearText string, today time.Time) (DateInfo, bool) {
	day, err := strconv.Atoi(dayText)
	if err != nil {
		return DateInfo{}, false
	}
	month, err := strconv.Atoi(monthText)
	if err != nil {
		return DateInfo{}, false
	}
	year := today.Year()
	if yearText != "" {
		year, err = strconv.Atoi(yearText)
		if err != nil {
			return DateInfo{}, false
		}
		if len(yearText) == 2 {
			year += 2000
		} else if len(yearText) != 4 {
			return DateInfo{}, false
		}
	}

	date, ok := makeDate(year, month, day, today.Location())
	if !ok {
		return DateInfo{}, false
	}
	return classify(date, today), true
}

// makeDate builds a date and rejects values time.Date would normalize,
// e.g. 30 February rolling over into March.
func makeDate(year, month, day int, loc *time.Location) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if date.Year() != year || int(date.Month()) != month || date.Day() != day {
		return time.Time{}, false
	}
	return date, true
}

func classify(date, today time.Time) DateInfo {
	switch {
	case date.Equal(today):
		return DateInfo{Date: date, Kind: DateToday}
	case date.Equal(today.AddDate(0, 0, -1)):
		return DateInfo{Date: date, Kind: DateYesterday}
	case date.Equal(today.AddDate(0, 0, 1)):
		return DateInfo{Date: date, Kind: DateTomorrow}
	case date.Before(today):
		return DateInfo{Date: date, Kind: DatePast}
	default:
		return DateInfo{Date: date, Kind: DateFuture}
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Second)
}

// Combine returns the date at the given time of day.
func Combine(date time.Time, tod TimeOfDay) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, tod.Hour, tod.Minute, 0, 0, date.Location())
}

// MonthNumber parses a month given by name ("março", "mar") or number ("3").
func MonthNumber(text string) (int, bool) {
	word := strings.TrimSpace(fuzzy.Normalize(text))
	word = strings.TrimPrefix(word, "mes ")
	word = strings.TrimPrefix(word, "de ")
	if n, ok := monthNumbers[word]; ok {
		return n, true
	}
	for _, w := range fuzzy.Words(word) {
		if n, ok := monthNumbers[w]; ok && len(w) > 3 {
			return n, true
		}
	}
	if n, err := strconv.Atoi(word); err == nil && n >= 1 && n <= 12 {
		return n, true
	}
	return 0, false
}
