// Package location derives a short venue/city string from the noisy text
// that event listings carry. Extraction is layered: the canonical venue
// rule table wins, then generic venue keywords, then "en el ..." preposition
// phrases, then a known-city fallback. The result is best effort; the rule
// table in venues.yaml exists precisely because the heuristics need
// per-venue exceptions.
package location

import (
	"regexp"
	"strings"

	"github.com/pmenendez/explorastur/internal/textclean"
)

// Venue keywords recognized by the generic extractors.
var VenueWords = []string{
	"Teatro", "Auditorio", "Sala", "Centro", "Pabellón",
	"Plaza", "Factoría", "Recinto", "Museo",
}

// Cities used as a last-resort match.
var CityNames = []string{"Oviedo", "Gijón", "Avilés", "Langreo", "Mieres", "Siero", "Lugones"}

const maxLen = 80

var (
	venueAlternation = strings.Join(VenueWords, "|")

	venuePhrase    = regexp.MustCompile(`(?i)(` + venueAlternation + `)\s+[\wáéíóúñÁÉÍÓÚÑ\s.]+`)
	lugarPattern   = regexp.MustCompile(`(?i)lugar:?\s*([^.,\n]+)`)
	enElPattern    = regexp.MustCompile(`(?i)en\s+(?:el|la|los|las)?\s*([\wáéíóúñÁÉÍÓÚÑ\s.-]+)`)
	lineBreaks     = regexp.MustCompile(`[\r\n]+`)
	doubleComma    = regexp.MustCompile(`,\s*,`)
	anyWhitespace  = regexp.MustCompile(`\s+`)
	trailingDate   = regexp.MustCompile(`\d+\s+de\s+\w+$`)
	trailingElDay  = regexp.MustCompile(`el\s+\w+\s+\d+$`)
	venueHead      = regexp.MustCompile(`^([^,.]*(?:` + venueAlternation + `)[^,.]{0,30})`)
	venueCityPart  = regexp.MustCompile(`([^,.]+(?:` + venueAlternation + `)[^,.]+)(?:de|en)\s+([^,.]+)`)
	lugarPrefix    = regexp.MustCompile(`(?i)^lugar:?\s*`)
	inlineDatePart = regexp.MustCompile(`\d+\s+de\s+\w+`)
	inlineElDay    = regexp.MustCompile(`el\s+\w+\s+\d+`)
)

// FromTitle extracts a venue phrase from an event title, or "".
func FromTitle(title string) string {
	cleaned := textclean.FixFormatting(title)
	if m := venuePhrase.FindString(cleaned); m != "" {
		return strings.TrimSpace(m)
	}
	return ""
}

var titleVenueSplit = regexp.MustCompile(`^(.*\S)\s+en\s+(?:el|la|los|las)\s+((?:` + venueAlternation + `)\s+.+)$`)

// SplitTitle separates a trailing "en el <venue>" clause from a title,
// so "Concierto en el Teatro Jovellanos" becomes ("Concierto", "Teatro
// Jovellanos"). Titles without such a clause come back unchanged with
// an empty venue.
func SplitTitle(title string) (string, string) {
	if m := titleVenueSplit.FindStringSubmatch(title); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	return title, ""
}

// FromText extracts a location from arbitrary text: venue keywords first,
// then "lugar:" and "en el/la" phrases, then known city names.
func FromText(text string) string {
	if text == "" {
		return ""
	}

	if m := venuePhrase.FindString(text); m != "" {
		return strings.TrimSpace(m)
	}

	for _, re := range []*regexp.Regexp{lugarPattern, enElPattern} {
		if m := re.FindString(text); m != "" {
			loc := strings.TrimSpace(m)
			loc = lugarPrefix.ReplaceAllString(loc, "")
			loc = textclean.FixFormatting(loc)
			return loc
		}
	}

	lower := strings.ToLower(text)
	for _, city := range CityNames {
		if strings.Contains(lower, strings.ToLower(city)) {
			return city
		}
	}

	return ""
}

// Clean normalizes a raw location string: formatting repair, the venue rule
// table, comma/space cleanup, venue+city extraction, and truncation to 80
// characters. rules may be nil, in which case only the heuristics run.
func Clean(raw string, rules []Rule) string {
	if raw == "" {
		return ""
	}

	loc := lineBreaks.ReplaceAllString(raw, " ")
	loc = textclean.FixFormatting(loc)

	if replaced, ok := applyRules(rules, loc); ok {
		return replaced
	}

	// Truncated "Centro Social ..." fragments come from one source whose
	// markup cuts locations short; they are always in Oviedo.
	trimmed := strings.TrimSpace(loc)
	if strings.Contains(trimmed, "Centro Social") && len(trimmed) < 20 && !strings.Contains(trimmed, "Oviedo") {
		return trimmed + ", Oviedo"
	}

	loc = doubleComma.ReplaceAllString(loc, ",")
	loc = anyWhitespace.ReplaceAllString(loc, " ")
	loc = venueAndCity(loc)

	return strings.TrimSpace(loc)
}

// venueAndCity extracts "Venue (City)" when both parts are recognizable, or
// shortens an over-long location to its venue head, truncating as a last
// resort.
func venueAndCity(loc string) string {
	if len([]rune(loc)) > maxLen {
		if m := venueHead.FindStringSubmatch(loc); m != nil {
			loc = strings.TrimSpace(m[1])
		}
		if runes := []rune(loc); len(runes) > maxLen {
			loc = string(runes[:maxLen-3]) + "..."
		}
	}

	if m := venueCityPart.FindStringSubmatch(loc); m != nil {
		venue := strings.TrimSpace(m[1])
		city := strings.TrimSpace(m[2])
		city = strings.TrimSpace(trailingDate.ReplaceAllString(city, ""))
		city = strings.TrimSpace(trailingElDay.ReplaceAllString(city, ""))
		if city != "" {
			return venue + " (" + city + ")"
		}
		return venue
	}

	for _, keyword := range VenueWords {
		if strings.Contains(loc, keyword) {
			loc = strings.TrimSpace(inlineDatePart.ReplaceAllString(loc, ""))
			loc = strings.TrimSpace(inlineElDay.ReplaceAllString(loc, ""))
			return loc
		}
	}

	return loc
}
