// Package dates extracts and orders Spanish date phrases found in event
// listings. Phrases are kept as display text ("10 de mayo", "del 3 al 7 de
// junio", "todo el mes de mayo"); this package derives day numbers, a sort
// key, and a future/past decision from them without ever converting to a
// full calendar date.
package dates

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Months in Spanish, lowercase, January first.
var Months = []string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

var monthAlternation = strings.Join(Months, "|")

var (
	delAlPattern     = regexp.MustCompile(`(?i)del\s+(\d{1,2})\s+al\s+(\d{1,2})\s+de\s+(` + monthAlternation + `)`)
	rangePattern     = regexp.MustCompile(`(?i)(\d{1,2})\s*[-/]\s*(\d{1,2})\s+de\s+(` + monthAlternation + `)`)
	withTimePattern  = regexp.MustCompile(`(?i)(\d{1,2})\s+de\s+(` + monthAlternation + `)\s+a\s+las\s+(\d{1,2}):(\d{2})`)
	singleDayPattern = regexp.MustCompile(`(?i)(\d{1,2})\s+de\s+(` + monthAlternation + `)`)
	monthLongPattern = regexp.MustCompile(`(?i)(todo\s+el\s+mes|durante\s+todo\s+el\s+mes)(\s+de\s+(` + monthAlternation + `))?`)
)

// Ordered most specific first so that "del 10 al 15 de mayo" is not
// swallowed by the single-day pattern matching "15 de mayo".
var extractionOrder = []*regexp.Regexp{
	delAlPattern,
	rangePattern,
	withTimePattern,
	singleDayPattern,
	monthLongPattern,
}

var monthLongMarkers = []string{"todo el mes", "durante todo el mes"}

// Day-number scanners used by ExtractDays.
var (
	singleDays = regexp.MustCompile(`(\d+)\s+de\s+[a-zA-Z]+`)
	hyphenDays = regexp.MustCompile(`(\d+)-(\d+)\s+de\s+[a-zA-Z]+`)
	aRangeDays = regexp.MustCompile(`(\d+)\s+a\s+(\d+)\s+de\s+[a-zA-Z]+`)
	ySeparated = regexp.MustCompile(`(\d+)\s+y\s+\d+`)
	delAlDays  = regexp.MustCompile(`(?i)del\s+(\d+)\s+al\s+(\d+)`)
)

// Extract returns the first date phrase found in text, or "" if none.
func Extract(text string) string {
	if text == "" {
		return ""
	}
	for _, re := range extractionOrder {
		if match := re.FindString(text); match != "" {
			return match
		}
	}
	return ""
}

// ExtractDays returns every day number covered by a date phrase, unique and
// ascending. Ranges are expanded ("10-15 de mayo" yields 10 through 15);
// month-long phrases yield 1 through 31.
func ExtractDays(phrase string) []int {
	if phrase == "" {
		return nil
	}

	set := make(map[int]bool)

	for _, m := range singleDays.FindAllStringSubmatch(phrase, -1) {
		if d, err := strconv.Atoi(m[1]); err == nil {
			set[d] = true
		}
	}
	for _, m := range hyphenDays.FindAllStringSubmatch(phrase, -1) {
		addRange(set, m[1], m[2])
	}
	for _, m := range aRangeDays.FindAllStringSubmatch(phrase, -1) {
		addRange(set, m[1], m[2])
	}
	for _, m := range ySeparated.FindAllStringSubmatch(phrase, -1) {
		if d, err := strconv.Atoi(m[1]); err == nil {
			set[d] = true
		}
	}
	if m := delAlDays.FindStringSubmatch(phrase); m != nil {
		addRange(set, m[1], m[2])
	}
	if IsMonthLong(phrase) {
		for d := 1; d <= 31; d++ {
			set[d] = true
		}
	}

	days := make([]int, 0, len(set))
	for d := range set {
		days = append(days, d)
	}
	sort.Ints(days)
	return days
}

func addRange(set map[int]bool, startStr, endStr string) {
	start, err1 := strconv.Atoi(startStr)
	end, err2 := strconv.Atoi(endStr)
	if err1 != nil || err2 != nil || end < start {
		return
	}
	for d := start; d <= end; d++ {
		set[d] = true
	}
}

// IsMonthLong reports whether the phrase marks an event spanning a whole
// month ("todo el mes de mayo").
func IsMonthLong(phrase string) bool {
	lower := strings.ToLower(phrase)
	for _, marker := range monthLongMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// MonthIndex returns the 0-based index of the first Spanish month name
// found in the phrase, or -1 if none is present.
func MonthIndex(phrase string) int {
	lower := strings.ToLower(phrase)
	for i, month := range Months {
		if strings.Contains(lower, month) {
			return i
		}
	}
	return -1
}

// MonthName returns the lowercase Spanish name for a 1-based month number.
func MonthName(monthNum int) string {
	if monthNum < 1 || monthNum > 12 {
		return ""
	}
	return Months[monthNum-1]
}

// IsFuture reports whether an event with the given date phrase is still
// upcoming relative to now. Future months always pass, past months never do.
// Within the current month, month-long events pass, as does any phrase with
// at least one day >= today. Phrases with no extractable day are kept: the
// filter is deliberately biased toward false positives.
func IsFuture(phrase string, now time.Time) bool {
	currentMonth := int(now.Month()) - 1

	if idx := MonthIndex(phrase); idx >= 0 {
		if idx > currentMonth {
			return true
		}
		if idx < currentMonth {
			return false
		}
	}

	if IsMonthLong(phrase) {
		return true
	}

	days := ExtractDays(phrase)
	if len(days) == 0 {
		return true
	}
	for _, day := range days {
		if day >= now.Day() {
			return true
		}
	}
	return false
}

// Key orders events chronologically within a run.
type Key struct {
	Month int // 0-based Spanish month index
	Day   int // earliest day, 0 for month-long, 100 when unparseable
}

// Less reports whether k sorts before other.
func (k Key) Less(other Key) bool {
	if k.Month != other.Month {
		return k.Month < other.Month
	}
	return k.Day < other.Day
}

// SortKey derives the chronological sort key for a date phrase. Phrases
// with no recognizable month default to the current month; month-long
// events sort first within their month.
func SortKey(phrase string, now time.Time) Key {
	month := int(now.Month()) - 1
	if idx := MonthIndex(phrase); idx >= 0 {
		month = idx
	}

	if IsMonthLong(phrase) {
		return Key{Month: month, Day: 0}
	}

	days := ExtractDays(phrase)
	if len(days) == 0 {
		return Key{Month: month, Day: 100}
	}
	return Key{Month: month, Day: days[0]}
}

var (
	weekdayPrefix = regexp.MustCompile(`(?i)^(lunes|martes|miércoles|jueves|viernes|sábado|domingo)\s+`)
	leadingZero   = regexp.MustCompile(`\b0(\d)(\s+de|\s*[-/])`)
	yearSuffix    = regexp.MustCompile(`\s+(\d{4})\b`)
)

// Standardize normalizes a date phrase across sources: the weekday prefix
// is dropped ("lunes 12 de mayo" becomes "12 de mayo"), leading zeros in
// day numbers are removed, and a trailing current-year suffix is stripped.
func Standardize(phrase string, now time.Time) string {
	if phrase == "" {
		return phrase
	}
	phrase = weekdayPrefix.ReplaceAllString(strings.TrimSpace(phrase), "")
	phrase = leadingZero.ReplaceAllString(phrase, "$1$2")

	year := strconv.Itoa(now.Year())
	phrase = yearSuffix.ReplaceAllStringFunc(phrase, func(m string) string {
		if strings.TrimSpace(m) == year {
			return ""
		}
		return m
	})

	return strings.TrimSpace(phrase)
}

// FormatRange renders a same-month day range as "X - Y de <month>".
func FormatRange(startDay, endDay, month string) string {
	startDay = strings.TrimLeft(startDay, "0")
	endDay = strings.TrimLeft(endDay, "0")
	return startDay + " - " + endDay + " de " + strings.ToLower(month)
}

var (
	clockTime = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
	hTime     = regexp.MustCompile(`(?i)(\d{1,2})h(\d{2})?`)
	aLasTime  = regexp.MustCompile(`(?i)a\s+las\s+(\d{1,2})[.:]?(\d{2})?`)
)

// ExtractTime pulls a time of day out of free text, normalized to "HH:MM".
// Recognizes "19:00", "19h30", "19h" and "a las 19.30" forms.
func ExtractTime(text string) string {
	if text == "" {
		return ""
	}
	if m := clockTime.FindString(text); m != "" {
		return m
	}
	if m := hTime.FindStringSubmatch(text); m != nil {
		minute := m[2]
		if minute == "" {
			minute = "00"
		}
		return m[1] + ":" + minute
	}
	if m := aLasTime.FindStringSubmatch(text); m != nil {
		minute := m[2]
		if minute == "" {
			minute = "00"
		}
		return m[1] + ":" + minute
	}
	return ""
}
