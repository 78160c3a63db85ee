// Package render formats the processed event list for output. The
// primary format is a Markdown digest grouped by date; JSON and a plain
// console listing are also available.
package render

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/pmenendez/explorastur/internal/calendar"
	"github.com/pmenendez/explorastur/internal/dates"
	"github.com/pmenendez/explorastur/internal/event"
	"github.com/pmenendez/explorastur/internal/textclean"
)

// Format selects an output renderer.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatConsole  Format = "console"
	FormatICS      Format = "ics"
)

// ParseFormat validates a format name from the command line.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(name)) {
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatConsole, "text":
		return FormatConsole, nil
	case FormatICS, "calendar":
		return FormatICS, nil
	}
	return "", fmt.Errorf("unknown output format: %s", name)
}

// Render produces the event list in the requested format.
func Render(format Format, events []event.Event, now time.Time) (string, error) {
	switch format {
	case FormatMarkdown:
		return Markdown(events, now), nil
	case FormatJSON:
		return JSON(events)
	case FormatConsole:
		return Console(events), nil
	case FormatICS:
		return calendar.Generate(events, now), nil
	}
	return "", fmt.Errorf("unknown output format: %s", format)
}

// sourceURLs maps source names to their listing page, used for the
// Fuente link in the digest.
var sourceURLs = map[string]string{
	"Telecable":               "https://blog.telecable.es/agenda-planes-asturias/",
	"Turismo Asturias":        "https://www.turismoasturias.es/agenda-de-asturias",
	"Centros Sociales Oviedo": "https://www.oviedo.es/centrossociales/avisos",
	"Visit Oviedo":            "https://www.visitoviedo.info/agenda",
	"Biodevas":                "https://biodevas.org/",
	"Avilés":                  "https://aviles.es/es/proximos-eventos",
}

var sourceHosts = []struct {
	host string
	name string
}{
	{"blog.telecable.es", "Telecable"},
	{"turismoasturias.es", "Turismo Asturias"},
	{"oviedo.es/centrossociales", "Centros Sociales Oviedo"},
	{"visitoviedo.info", "Visit Oviedo"},
	{"biodevas.org", "Biodevas"},
	{"aviles.es", "Avilés"},
}

var (
	timeInDate  = regexp.MustCompile(`a las (\d+[:h]\d*\w*)`)
	trailingH   = regexp.MustCompile(`\s+h\s*$`)
	hourRangeH  = regexp.MustCompile(`,\s*h\s*-\s*\d+:\d+\s*h`)
	elDiaSuffix = regexp.MustCompile(`,\s*el\s+dia`)
	bareHour    = regexp.MustCompile(`h$`)
)

// entry is one digest line with its presentation fields resolved.
type entry struct {
	title      string
	time       string
	location   string
	url        string
	sourceName string
	sourceURL  string
}

// Markdown renders the digest: a month-long group first, then one
// section per date phrase in calendar order.
func Markdown(events []event.Event, now time.Time) string {
	if len(events) == 0 {
		return "# No events found"
	}

	var b strings.Builder
	b.WriteString("# Eventos en Asturias\n\n")
	fmt.Fprintf(&b, "_Actualizado: %s_\n\n", now.Format("02/01/2006"))

	groups := make(map[string][]entry)
	var monthLong []entry
	var order []string

	for _, evt := range events {
		info, dateStr := prepare(evt)
		if dates.IsMonthLong(dateStr) {
			monthLong = append(monthLong, info)
			continue
		}
		if _, ok := groups[dateStr]; !ok {
			order = append(order, dateStr)
		}
		groups[dateStr] = append(groups[dateStr], info)
	}

	if len(monthLong) > 0 {
		writeGroup(&b, "Durante todo el mes", monthLong)
	}

	sort.SliceStable(order, func(i, j int) bool {
		return dates.SortKey(order[i], now).Less(dates.SortKey(order[j], now))
	})
	for _, dateStr := range order {
		writeGroup(&b, dateStr, groups[dateStr])
	}
	return b.String()
}

// prepare resolves an event's presentation fields and splits the time
// out of its date phrase.
func prepare(evt event.Event) (entry, string) {
	title := strings.ReplaceAll(evt.Title, `"`, "")
	title = textclean.FixCapitalization(title)

	dateStr, timeStr := splitTime(evt.Date)
	if timeStr == "" {
		timeStr = evt.Time
	}

	// A bare "Asturias" says nothing useful.
	loc := evt.Location
	if strings.EqualFold(loc, "asturias") {
		loc = ""
	}

	name, url := sourceInfo(evt)
	return entry{
		title:      title,
		time:       timeStr,
		location:   loc,
		url:        evt.URL,
		sourceName: name,
		sourceURL:  url,
	}, dateStr
}

// splitTime removes an "a las HH:MM" clause from a date phrase and
// returns it separately, normalized to end in "h".
func splitTime(dateStr string) (string, string) {
	dateStr = elDiaSuffix.ReplaceAllString(dateStr, "")
	dateStr = hourRangeH.ReplaceAllString(dateStr, "")
	dateStr = trailingH.ReplaceAllString(dateStr, "")
	dateStr = strings.Join(strings.Fields(dateStr), " ")

	m := timeInDate.FindStringSubmatch(dateStr)
	if m == nil {
		return dateStr, ""
	}
	timeStr := m[1]
	if strings.HasSuffix(timeStr, "h") {
		timeStr = bareHour.ReplaceAllString(timeStr, ":00h")
	} else if !strings.Contains(timeStr, "h") {
		timeStr += "h"
	}
	dateStr = strings.TrimSpace(timeInDate.ReplaceAllString(dateStr, ""))
	return dateStr, timeStr
}

// sourceInfo resolves the Fuente name and link, falling back to URL
// matching for records without a source name.
func sourceInfo(evt event.Event) (string, string) {
	if evt.Source != "" {
		if url, ok := sourceURLs[evt.Source]; ok {
			return evt.Source, url
		}
		return evt.Source, evt.URL
	}
	for _, s := range sourceHosts {
		if strings.Contains(evt.URL, s.host) {
			return s.name, sourceURLs[s.name]
		}
	}
	return "Otros eventos", evt.URL
}

func writeGroup(b *strings.Builder, title string, entries []entry) {
	fmt.Fprintf(b, "## %s\n\n", title)
	for _, e := range entries {
		if e.time != "" {
			fmt.Fprintf(b, "- **%s** - %s\n", e.time, e.title)
		} else {
			fmt.Fprintf(b, "- **%s**\n", e.title)
		}
		if e.location != "" {
			fmt.Fprintf(b, "  - Lugar: %s\n", e.location)
		}
		if e.url != "" {
			fmt.Fprintf(b, "  - Link: %s\n", e.url)
		}
		fmt.Fprintf(b, "  - Fuente: [%s](%s)\n\n", e.sourceName, e.sourceURL)
	}
}

// JSON renders the events as an indented JSON array.
func JSON(events []event.Event) (string, error) {
	if events == nil {
		events = []event.Event{}
	}
	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding events: %w", err)
	}
	return string(data), nil
}

// Console renders a compact plain-text listing for terminal use.
func Console(events []event.Event) string {
	if len(events) == 0 {
		return "No events found\n"
	}
	var b strings.Builder
	for _, evt := range events {
		fmt.Fprintf(&b, "%s\n", evt.Title)
		if evt.Date != "" {
			fmt.Fprintf(&b, "  Fecha:  %s\n", evt.Date)
		}
		if evt.Location != "" {
			fmt.Fprintf(&b, "  Lugar:  %s\n", evt.Location)
		}
		if evt.URL != "" {
			fmt.Fprintf(&b, "  Link:   %s\n", evt.URL)
		}
		if evt.Source != "" {
			fmt.Fprintf(&b, "  Fuente: %s\n", evt.Source)
		}
		b.WriteString("\n")
	}
	return b.String()
}
