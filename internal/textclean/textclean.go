// Package textclean repairs the noisy free text scraped from event listings:
// stray quotes, HTML entities, concatenated words, date prefixes glued onto
// titles. Everything here is best-effort string surgery.
package textclean

import (
	"regexp"
	"strings"
)

// Small Spanish words kept lowercase inside titles unless they lead.
var smallWords = map[string]bool{
	"a": true, "e": true, "o": true, "y": true, "u": true,
	"de": true, "la": true, "el": true, "del": true, "los": true, "las": true,
	"en": true, "con": true, "por": true, "para": true, "al": true,
	"su": true, "sus": true, "tu": true, "tus": true, "mi": true, "mis": true,
	"un": true, "una": true, "unos": true, "unas": true, "lo": true, "que": true,
}

var nonEventPatterns = []*regexp.Regexp{
	regexp.MustCompile(`agenda`),
	regexp.MustCompile(`asturias en [a-z]+`),
	regexp.MustCompile(`¿quieres saber`),
	regexp.MustCompile(`planes`),
	regexp.MustCompile(`vamos allá`),
}

var datePrefixPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^Hasta el \d+ de [a-zA-Z]+`),
	regexp.MustCompile(`^Durante todo el mes de [a-zA-Z]+`),
	regexp.MustCompile(`^\d+ a \d+ de [a-zA-Z]+`),
	regexp.MustCompile(`^\d+-\d+ de [a-zA-Z]+`),
}

var (
	leadingDayDate   = regexp.MustCompile(`^\d+\s+de\s+[a-zA-Z]+\s+`)
	leadingPunct     = regexp.MustCompile(`^[:\-–—]+\s*`)
	leadingQuotes    = regexp.MustCompile(`^["']\s*`)
	trailingQuotes   = regexp.MustCompile(`\s*["']$`)
	midQuote         = regexp.MustCompile(`([a-zA-Z])"([a-zA-Z])`)
	multiSpace       = regexp.MustCompile(`\s{2,}`)
	verEventoPrefix  = regexp.MustCompile(`^Ver evento\s+`)
	concatBoundary   = regexp.MustCompile(`([a-záéíóúñ])([A-ZÁÉÍÓÚÑ])`)
	missingDotSpace  = regexp.MustCompile(`([a-zA-Z])\.([A-Z])`)
	missingCommaGap  = regexp.MustCompile(`([a-zA-Z]),([a-zA-Z])`)
	enArticlePrefix  = regexp.MustCompile(`^en\s+(el|la|los|las)\s+`)
	enPrefix         = regexp.MustCompile(`^en\s+`)
	trailingElDia    = regexp.MustCompile(`el día$`)
	trailingConBanda = regexp.MustCompile(`con la banda.*$`)
	trailingPresenta = regexp.MustCompile(`para presentar.*$`)
	drAbbrev         = regexp.MustCompile(`Dr,`)
)

// Article prefixes that sites tend to glue onto a capitalized word
// ("laFlorida", "delTeatro").
var concatArticles = regexp.MustCompile(`(del|la|el|de|un)([A-Z])`)

// CleanTitle strips structural noise from a raw event title. If datePhrase
// is non-empty and the title starts with it, the phrase is removed. The
// degenerate ":" placeholder titles collapse to "".
func CleanTitle(title, datePhrase string) string {
	title = strings.TrimSpace(title)
	if title == "" || title == ":" {
		return ""
	}

	title = strings.TrimSpace(strings.TrimPrefix(title, ":"))

	if datePhrase != "" && strings.HasPrefix(title, datePhrase) {
		title = strings.TrimSpace(title[len(datePhrase):])
	}
	title = leadingDayDate.ReplaceAllString(title, "")
	for _, re := range datePrefixPatterns {
		title = re.ReplaceAllString(title, "")
	}

	// Quote repair: paired quotes are stripped, a lone quote anywhere is
	// dropped entirely.
	title = strings.TrimSpace(title)
	if strings.HasPrefix(title, `"`) && strings.HasSuffix(title, `"`) && len(title) >= 2 {
		title = strings.TrimSpace(title[1 : len(title)-1])
	}
	title = strings.ReplaceAll(title, `"`, "")

	title = verEventoPrefix.ReplaceAllString(title, "")

	title = strings.ReplaceAll(title, "&amp;", "&")
	title = strings.ReplaceAll(title, "&quot;", `"`)

	title = leadingPunct.ReplaceAllString(title, "")
	title = FixFormatting(title)

	return title
}

// FixCapitalization normalizes SHOUTING titles. All-uppercase words longer
// than two characters become capitalized, small connective words are
// lowercased unless leading, and the first word is capitalized unless it is
// an acronym.
func FixCapitalization(title string) string {
	words := strings.Fields(title)
	for i, word := range words {
		switch {
		case word == strings.ToUpper(word) && hasLetter(word) && len([]rune(word)) > 2:
			words[i] = capitalize(strings.ToLower(word))
		case smallWords[strings.ToLower(word)] && i > 0:
			words[i] = strings.ToLower(word)
		case i == 0 && word != strings.ToUpper(word):
			words[i] = capitalize(word)
		}
	}
	return strings.Join(words, " ")
}

func hasLetter(s string) bool {
	return strings.ContainsFunc(s, func(r rune) bool {
		return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
	})
}

func capitalize(word string) string {
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	return strings.ToUpper(string(runes[0])) + strings.ToLower(string(runes[1:]))
}

// FixFormatting applies the shared text repairs: lone mid-word quotes,
// missing spaces at case boundaries and after punctuation, glued article
// prefixes, leading "en el/la" phrases, trailing truncation artifacts, and
// collapsed whitespace.
func FixFormatting(text string) string {
	text = midQuote.ReplaceAllString(text, "$1 $2")
	text = leadingQuotes.ReplaceAllString(text, "")
	text = trailingQuotes.ReplaceAllString(text, "")
	text = strings.TrimSpace(multiSpace.ReplaceAllString(text, " "))

	text = concatBoundary.ReplaceAllString(text, "$1 $2")
	text = missingDotSpace.ReplaceAllString(text, "$1. $2")
	text = missingCommaGap.ReplaceAllString(text, "$1, $2")

	text = concatArticles.ReplaceAllString(text, "$1 $2")

	text = enArticlePrefix.ReplaceAllString(text, "")
	text = enPrefix.ReplaceAllString(text, "")

	text = trailingElDia.ReplaceAllString(text, "")
	text = trailingConBanda.ReplaceAllString(text, "")
	text = trailingPresenta.ReplaceAllString(text, "")
	text = drAbbrev.ReplaceAllString(text, "Dr.")

	return strings.TrimRight(text, "- ,:")
}

var (
	urlInText    = regexp.MustCompile(`https?://\S+`)
	leadingDesc  = regexp.MustCompile(`^\d+(\s+[ay]\s+\d+)?\s+de\s+[a-zA-Z]+:?`)
	leadingRange = regexp.MustCompile(`^\d+-\d+(\s+[ay]\s+\d+-\d+)?\s+de\s+[a-zA-Z]+:?`)
)

var weekdayDescPrefixes = []string{
	"el día", "los días", "el viernes", "el sábado", "el domingo",
	"el lunes", "el martes", "el miércoles", "el jueves",
}

// CleanDescription strips URLs, leading date phrases and weekday prefixes
// from a description, repairs spacing, and capitalizes the first letter.
func CleanDescription(text string) string {
	if text == "" {
		return ""
	}

	text = urlInText.ReplaceAllString(text, "")
	text = leadingDesc.ReplaceAllString(text, "")
	text = leadingRange.ReplaceAllString(text, "")

	for _, prefix := range weekdayDescPrefixes {
		if strings.HasPrefix(strings.ToLower(text), prefix) {
			text = strings.TrimSpace(text[len(prefix):])
		}
	}

	text = strings.TrimLeft(text, ".:,;- ")

	text = missingDotSpace.ReplaceAllString(text, "$1. $2")
	text = missingCommaGap.ReplaceAllString(text, "$1, $2")
	text = concatBoundary.ReplaceAllString(text, "$1 $2")
	text = strings.TrimSpace(multiSpace.ReplaceAllString(text, " "))

	runes := []rune(text)
	if len(runes) > 1 {
		text = strings.ToUpper(string(runes[0])) + string(runes[1:])
	}
	return text
}

// IsNonEvent reports whether a title looks like navigation or editorial
// text rather than an actual event ("agenda", "planes", ...).
func IsNonEvent(title string) bool {
	lower := strings.ToLower(title)
	for _, re := range nonEventPatterns {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}
