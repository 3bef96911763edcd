package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Veraticus/dinah/internal/fuzzy"
)

// TimeOfDay is an hour and minute on a 24-hour clock.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// String renders the time as "14:05".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

var (
	// Patterns for an answer to "que horas foi?", tried in order.
	answerTimePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(\d{1,2}):(\d{1,2})\b`),
		regexp.MustCompile(`\b(\d{1,2})\s*horas?\b`),
		regexp.MustCompile(`^\s*(?:as\s+)?(\d{1,2})\s*$`),
		regexp.MustCompile(`\b(\d{1,2})[,.](\d{2})\b`),
		regexp.MustCompile(`\b(\d{1,2})\s*hrs?\b`),
		regexp.MustCompile(`\b(\d{1,2})h(\d{2})?\b`),
	}

	// Patterns for a time mentioned inside a longer message. Bare numbers and
	// "14,30" are left out since they read as amounts there.
	mentionedTimePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`),
		regexp.MustCompile(`\b(\d{1,2})h(\d{2})?\b`),
		regexp.MustCompile(`\b(\d{1,2})\s*(?:horas?|hrs?)\b`),
		regexp.MustCompile(`\bas\s+(\d{1,2})\b`),
	}
)

// ParseTimeOfDay parses a time given as an answer: "14:30", "14 horas", "14",
// "14,30", "14.30", "14hrs", "14h" or "14h30". Out-of-range values yield no result.
func ParseTimeOfDay(answer string) (TimeOfDay, bool) {
	text := fuzzy.Normalize(strings.TrimSpace(answer))
	if t, ok := namedTime(text); ok {
		return t, true
	}
	return firstTime(text, answerTimePatterns)
}

// MentionedTime finds an explicit time inside a message, e.g. "ontem às 14h".
func MentionedTime(message string) (TimeOfDay, bool) {
	text := fuzzy.Normalize(message)
	if t, ok := namedTime(text); ok {
		return t, true
	}
	return firstTime(text, mentionedTimePatterns)
}

func namedTime(text string) (TimeOfDay, bool) {
	switch {
	case fuzzy.ContainsWord(text, "meio dia"), fuzzy.ContainsWord(text, "meiodia"):
		return TimeOfDay{Hour: 12}, true
	case fuzzy.ContainsWord(text, "meia noite"), fuzzy.ContainsWord(text, "meianoite"):
		return TimeOfDay{Hour: 0}, true
	}
	return TimeOfDay{}, false
}

func firstTime(text string, patterns []*regexp.Regexp) (TimeOfDay, bool) {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		hour, err := strconv.Atoi(m[1])
		if err != nil {
			return TimeOfDay{}, false
		}
		minute := 0
		if len(m) > 2 && m[2] != "" {
			minute, err = strconv.Atoi(m[2])
			if err != nil {
				return TimeOfDay{}, false
			}
		}
		if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
			return TimeOfDay{}, false
		}
		return TimeOfDay{Hour: hour, Minute: minute}, true
	}
	return TimeOfDay{}, false
}
