package scrape

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pmenendez/explorastur/internal/config"
	"github.com/pmenendez/explorastur/internal/dates"
	"github.com/pmenendez/explorastur/internal/event"
	"github.com/pmenendez/explorastur/internal/location"
	"github.com/pmenendez/explorastur/internal/logger"
	"github.com/pmenendez/explorastur/internal/textclean"
)

// OviedoCentros scrapes the announcements board of Oviedo's social
// centers. Posts are either a weekly agenda, whose bold headings mark
// individual activities, or standalone announcements.
type OviedoCentros struct {
	site
}

func NewOviedoCentros(src config.Source, settings config.Settings, f *Fetcher, log *logger.Logger, now time.Time) *OviedoCentros {
	return &OviedoCentros{site: newSite(src, settings, f, log, now)}
}

var (
	ocDateRange  = regexp.MustCompile(`(?i)(\d{1,2})\s+de\s+([a-zA-Záéíóúñ]+)\s+a\s+(\d{1,2})\s+de\s+([a-zA-Záéíóúñ]+)`)
	ocDayOfMonth = regexp.MustCompile(`(?i)(\d{1,2})\s+de\s+([a-zA-Záéíóúñ]+)`)
	ocClock      = regexp.MustCompile(`(\d{1,2})[.:](\d{2})h?`)
	ocCSAbbrev   = regexp.MustCompile(`CS\s+([A-ZÁÉÍÓÚÑ][a-zA-Záéíóúñ]+)`)
	ocCSFull     = regexp.MustCompile(`(?i)Centro\s+Social\s+([A-ZÁÉÍÓÚÑ][a-zA-Záéíóúñ\s]+)`)
	ocLugar      = regexp.MustCompile(`(?i)(?:lugar|centro):?\s*([^.,\n]+)`)

	// Bold labels inside an agenda that introduce metadata, not a new
	// activity.
	ocLabelTitles = map[string]bool{
		"fecha:": true, "lugar:": true, "horario:": true,
		"información:": true, "inscripciones:": true,
	}
	ocSkipSections    = []string{"inscripciones", "información", "más información"}
	ocAnnouncementFyi = []string{"apertura de plazo", "servicio de asesoramiento", "concurso"}
)

func (o *OviedoCentros) Scrape(ctx context.Context) ([]event.Event, error) {
	doc, err := o.fetcher.FetchDocument(ctx, o.url)
	if err != nil {
		return nil, err
	}
	events := o.parse(doc)
	o.log.Info("scraped source", logger.Fields{"source": o.id, "count": len(events)})
	return events, nil
}

func (o *OviedoCentros) parse(doc *goquery.Document) []event.Event {
	sections := doc.Find(".asset-full-content")
	if sections.Length() == 0 {
		o.log.Warn("no announcement sections found", logger.Fields{"source": o.id})
		return nil
	}

	var events []event.Event
	sections.Each(func(_ int, section *goquery.Selection) {
		header := cleanText(section.PrevAllFiltered("h3.header-title").First().Find("span").First())

		article := section.Find(".journal-content-article").First()
		if article.Length() == 0 {
			return
		}

		if o.isAgenda(header) {
			events = append(events, o.parseAgenda(article, header)...)
		} else if evt, ok := o.parseAnnouncement(article, header); ok {
			events = append(events, evt)
		}
	})
	return events
}

// isAgenda reports whether a post is a weekly agenda, recognizable by
// "agenda" plus a date range in its header.
func (o *OviedoCentros) isAgenda(header string) bool {
	lower := strings.ToLower(header)
	return strings.Contains(lower, "agenda") && ocDateRange.MatchString(lower)
}

// agendaSection is one activity inside a weekly agenda: a bold heading
// plus the text that follows it.
type agendaSection struct {
	title   string
	content []string
}

func (o *OviedoCentros) parseAgenda(article *goquery.Selection, header string) []event.Event {
	dateRange := o.headerDateRange(header)

	text := article.Find(".text").First()
	if text.Length() == 0 {
		return nil
	}

	var sections []agendaSection
	var current agendaSection

	text.Find("p, ul, li").Each(func(_ int, el *goquery.Selection) {
		strongs := el.Find("strong")
		if strongs.Length() > 0 && !el.Is("li") {
			strongs.Each(func(_ int, strong *goquery.Selection) {
				title := strings.TrimSpace(strong.Text())
				if len(title) < 3 || ocLabelTitles[strings.ToLower(title)] {
					return
				}
				if current.title != "" {
					sections = append(sections, current)
				}
				current = agendaSection{title: title}
				rest := strings.TrimSpace(strings.Replace(cleanText(el), title, "", 1))
				if rest != "" {
					current.content = append(current.content, rest)
				}
			})
		} else if current.title != "" {
			current.content = append(current.content, cleanText(el))
		}
	})
	if current.title != "" {
		sections = append(sections, current)
	}

	var events []event.Event
	for _, section := range sections {
		lower := strings.ToLower(section.title)
		skip := false
		for _, word := range ocSkipSections {
			if strings.Contains(lower, word) {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		if evt, ok := o.parseSection(section.title, strings.Join(section.content, "\n"), dateRange); ok {
			events = append(events, evt)
		}
	}
	return events
}

func (o *OviedoCentros) parseAnnouncement(article *goquery.Selection, header string) (event.Event, bool) {
	text := article.Find(".text").First()
	if text.Length() == 0 {
		return event.Event{}, false
	}
	details := cleanText(text)

	lower := strings.ToLower(header)
	for _, word := range ocAnnouncementFyi {
		if strings.Contains(lower, word) {
			return o.announcementEvent(header, details)
		}
	}
	return o.parseSection(header, details, "")
}

// announcementEvent handles general notices like enrollment periods.
func (o *OviedoCentros) announcementEvent(title, details string) (event.Event, bool) {
	date := dates.Extract(details)
	if date == "" {
		date = o.monthFallback()
	}

	loc := "Centros Sociales Oviedo"
	if m := ocLugar.FindStringSubmatch(details); m != nil {
		loc = strings.TrimSpace(m[1])
	}

	lower := strings.ToLower(details)
	var venues []string
	if strings.Contains(lower, "villa magdalena") {
		venues = append(venues, "Villa Magdalena")
	}
	if strings.Contains(lower, "la corredoria") {
		venues = append(venues, "Centro Juvenil y Telecentro de La Corredoria")
	}
	if len(venues) > 0 {
		loc = strings.Join(venues, ", ")
	}

	return o.newEvent(title, date, loc, details, o.url), true
}

// parseSection extracts one activity from its heading and body text,
// scanning line by line for dates, times and Centro Social names.
func (o *OviedoCentros) parseSection(title, details, dateRange string) (event.Event, bool) {
	title = strings.TrimLeft(strings.TrimSpace(title), ":-–— ")
	if len(title) < 3 || textclean.IsNonEvent(title) {
		return event.Event{}, false
	}

	var date, clock, loc string
	for _, line := range strings.Split(details, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if date == "" {
			if m := ocDayOfMonth.FindStringSubmatch(line); m != nil {
				date = m[1] + " de " + strings.ToLower(m[2])
			}
		}
		if clock == "" {
			if m := ocClock.FindStringSubmatch(line); m != nil {
				clock = m[1] + ":" + m[2]
			}
		}
		if loc == "" {
			loc = o.lineLocation(line)
		}
	}

	switch {
	case date != "":
	case dateRange != "":
		date = dateRange
	default:
		date = o.monthFallback()
	}
	if clock != "" {
		date += " a las " + clock
	}

	if loc == "" {
		loc = location.FromTitle(title)
	}
	if loc == "" {
		loc = "Centros Sociales Oviedo"
	}

	return o.newEvent(title, date, loc, details, o.url), true
}

// lineLocation finds a venue mention in one line, expanding the "CS"
// abbreviation used for social centers.
func (o *OviedoCentros) lineLocation(line string) string {
	if m := ocCSAbbrev.FindStringSubmatch(line); m != nil {
		return "Centro Social " + m[1]
	}
	if m := ocCSFull.FindStringSubmatch(line); m != nil {
		return "Centro Social " + strings.TrimSpace(m[1])
	}
	return location.FromText(line)
}

// headerDateRange turns the header's "12 de mayo a 18 de mayo" into the
// compact range form.
func (o *OviedoCentros) headerDateRange(header string) string {
	m := ocDateRange.FindStringSubmatch(header)
	if m == nil {
		return ""
	}
	startMonth := strings.ToLower(m[2])
	endMonth := strings.ToLower(m[4])
	if startMonth == endMonth {
		return dates.FormatRange(m[1], m[3], startMonth)
	}
	return m[1] + " de " + startMonth + " - " + m[3] + " de " + endMonth
}
