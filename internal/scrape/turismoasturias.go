package scrape

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pmenendez/explorastur/internal/config"
	"github.com/pmenendez/explorastur/internal/dates"
	"github.com/pmenendez/explorastur/internal/event"
	"github.com/pmenendez/explorastur/internal/logger"
)

// TurismoAsturias scrapes the regional tourism agenda. Listings are a
// paginated card grid with machine-readable dates in itemprop spans.
type TurismoAsturias struct {
	site
}

func NewTurismoAsturias(src config.Source, settings config.Settings, f *Fetcher, log *logger.Logger, now time.Time) *TurismoAsturias {
	return &TurismoAsturias{site: newSite(src, settings, f, log, now)}
}

func (t *TurismoAsturias) Scrape(ctx context.Context) ([]event.Event, error) {
	return paginate(ctx, t.fetcher, t.log, t.url, t.maxPages,
		t.parsePage,
		func(doc *goquery.Document) string {
			return findLinkContaining(doc, "ul.lfr-pagination-buttons li a", "Siguiente", t.baseURL)
		})
}

func (t *TurismoAsturias) parsePage(doc *goquery.Document) []event.Event {
	var events []event.Event
	cards := doc.Find("div.template-cards .col-xl-4 .card")
	if cards.Length() == 0 {
		t.log.Warn("no event cards found on page", logger.Fields{"source": t.id})
		return nil
	}
	cards.Each(func(_ int, card *goquery.Selection) {
		if evt, ok := t.parseCard(card); ok {
			events = append(events, evt)
		}
	})
	return events
}

func (t *TurismoAsturias) parseCard(card *goquery.Selection) (event.Event, bool) {
	title := cleanText(card.Find(".card-title").First())
	if title == "" {
		return event.Event{}, false
	}

	href, _ := card.Find("a[href]").First().Attr("href")
	eventURL := AbsoluteURL(t.baseURL, href)

	location := t.parseAddress(card)

	startDate := itempropDate(card, "startDate")
	endDate := itempropDate(card, "endDate")

	timeInfo := cleanText(card.Find(".hour").First())
	timeInfo = strings.TrimSpace(strings.TrimPrefix(timeInfo, "Horario"))
	if strings.EqualFold(timeInfo, "Todo el dia") || strings.EqualFold(timeInfo, "Todo el día") {
		timeInfo = ""
	}

	date := t.formatDate(startDate, endDate, timeInfo)
	return t.newEvent(title, date, location, "", eventURL), true
}

func (t *TurismoAsturias) parseAddress(card *goquery.Selection) string {
	addr := card.Find(".address").First()
	if addr.Length() == 0 {
		return ""
	}
	if span := addr.Find(`span[itemprop="address"]`).First(); span.Length() != 0 {
		return cleanText(span)
	}
	return cleanText(addr)
}

// itempropDate pulls the YYYY-MM-DD part of a hidden itemprop span's
// date attribute.
func itempropDate(card *goquery.Selection, prop string) string {
	val, ok := card.Find(fmt.Sprintf(`.date span[itemprop=%q]`, prop)).First().Attr("date")
	if !ok {
		return ""
	}
	if i := strings.IndexByte(val, ' '); i >= 0 {
		val = val[:i]
	}
	return val
}

// formatDate turns ISO dates into the Spanish phrases the rest of the
// pipeline understands, e.g. "21 de mayo - 3 de junio, 19:00".
func (t *TurismoAsturias) formatDate(startDate, endDate, timeInfo string) string {
	if startDate == "" {
		return ""
	}
	startDay, startMonth, ok := splitISODate(startDate)
	if !ok {
		return startDate
	}

	date := fmt.Sprintf("%d de %s", startDay, startMonth)
	if endDate != "" && endDate != startDate {
		if endDay, endMonth, ok := splitISODate(endDate); ok {
			if endMonth == startMonth {
				date = dates.FormatRange(fmt.Sprint(startDay), fmt.Sprint(endDay), startMonth)
			} else {
				date = fmt.Sprintf("%d de %s - %d de %s", startDay, startMonth, endDay, endMonth)
			}
		}
	}
	if timeInfo != "" {
		date += ", " + timeInfo
	}
	return date
}

// splitISODate parses "YYYY-MM-DD" into a day number and Spanish month
// name.
func splitISODate(iso string) (day int, month string, ok bool) {
	parsed, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return 0, "", false
	}
	return parsed.Day(), dates.MonthName(int(parsed.Month())), true
}
