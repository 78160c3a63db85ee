package scrape

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pmenendez/explorastur/internal/config"
	"github.com/pmenendez/explorastur/internal/event"
	"github.com/pmenendez/explorastur/internal/logger"
)

// VisitOviedo scrapes the city agenda's week view. The listing shows the
// current week plus a "Siguiente" link to the next one; only those two
// weeks are fetched.
type VisitOviedo struct {
	site
}

func NewVisitOviedo(src config.Source, settings config.Settings, f *Fetcher, log *logger.Logger, now time.Time) *VisitOviedo {
	return &VisitOviedo{site: newSite(src, settings, f, log, now)}
}

var (
	visitOviedoTime = regexp.MustCompile(`\d{1,2}:\d{2}`)
	// Title attributes on event links are sometimes emitted with broken
	// quoting, leaving fragments like `ciudad="" de="" oviedo""="">`.
	visitOviedoMalformed = strings.NewReplacer(
		`ciudad=""`, "Ciudad",
		`de=""`, "de",
		`oviedo""`, "Oviedo",
		`="">`, "",
		`=""`, "",
	)
)

func (v *VisitOviedo) Scrape(ctx context.Context) ([]event.Event, error) {
	// Week view plus one next-week page.
	return paginate(ctx, v.fetcher, v.log, v.url, 2,
		v.parseWeek,
		func(doc *goquery.Document) string {
			return findLinkContaining(doc, ".paginator .pager li a", "Siguiente", v.baseURL)
		})
}

func (v *VisitOviedo) parseWeek(doc *goquery.Document) []event.Event {
	week := doc.Find(".week-view").First()
	if week.Length() == 0 {
		v.log.Warn("no week view found", logger.Fields{"source": v.id})
		return nil
	}

	var events []event.Event
	week.Find(".day-entry").Each(func(_ int, day *goquery.Selection) {
		events = append(events, v.parseDay(day)...)
	})
	return events
}

func (v *VisitOviedo) parseDay(day *goquery.Selection) []event.Event {
	dayNum := strings.TrimLeft(cleanText(day.Find(".day .day-of-month").First()), "0")
	month := cleanText(day.Find(".day .month").First())

	var dayDate string
	if dayNum != "" && month != "" {
		dayDate = dayNum + " de " + strings.ToLower(month)
	}

	var events []event.Event
	day.Find(".entry").Each(func(_ int, entry *goquery.Selection) {
		if evt, ok := v.parseEntry(entry, dayDate); ok {
			events = append(events, evt)
		}
	})
	return events
}

func (v *VisitOviedo) parseEntry(entry *goquery.Selection, dayDate string) (event.Event, bool) {
	link := entry.Find("a").First()
	if link.Length() == 0 {
		return event.Event{}, false
	}

	href, _ := link.Attr("href")
	eventURL := AbsoluteURL(v.baseURL, href)

	title := v.entryTitle(entry, link)
	if title == "" {
		return event.Event{}, false
	}

	timeStr := visitOviedoTime.FindString(entry.Find(".hour").First().Text())

	location := cleanText(entry.Find(".location").First())
	location = strings.TrimSpace(strings.TrimPrefix(location, "marker"))

	date := dayDate
	if timeStr != "" && dayDate != "" {
		date = dayDate + " a las " + timeStr
	}

	return v.newEvent(title, date, location, "", eventURL), true
}

// entryTitle prefers the link's title attribute, repairing the broken
// quoting, and falls back to the visible .title element.
func (v *VisitOviedo) entryTitle(entry, link *goquery.Selection) string {
	title, _ := link.Attr("title")
	title = strings.TrimPrefix(title, "Ver evento ")
	title = visitOviedoMalformed.Replace(title)
	title = strings.TrimSpace(title)

	if title == "" || strings.Contains(title, `""`) {
		title = cleanText(entry.Find(".title").First())
		title = strings.ReplaceAll(title, "&amp;", "&")
		title = strings.ReplaceAll(title, "&quot;", `"`)
	}
	return strings.TrimSpace(title)
}
