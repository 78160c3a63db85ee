package scrape

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pmenendez/explorastur/internal/config"
	"github.com/pmenendez/explorastur/internal/dates"
	"github.com/pmenendez/explorastur/internal/event"
	"github.com/pmenendez/explorastur/internal/location"
	"github.com/pmenendez/explorastur/internal/logger"
)

// Aviles scrapes the city calendar. Events come as Bootstrap cards with
// INICIO/FIN date badges and a detail popup opened from an onclick
// handler that carries the event ID.
type Aviles struct {
	site
}

func NewAviles(src config.Source, settings config.Settings, f *Fetcher, log *logger.Logger, now time.Time) *Aviles {
	return &Aviles{site: newSite(src, settings, f, log, now)}
}

var (
	avilesPopupID  = regexp.MustCompile(`showPopup\('/-/calendar/calendar/event/(\d+)`)
	avilesDMY      = regexp.MustCompile(`(\d{2})-(\d{2})-(\d{4})`)
	avilesClock    = regexp.MustCompile(`\d{2}:\d{2}`)
	avilesFinaliza = regexp.MustCompile(`Finaliza:\s*(\d{2}-\d{2}-\d{4})`)
)

func (a *Aviles) Scrape(ctx context.Context) ([]event.Event, error) {
	return paginate(ctx, a.fetcher, a.log, a.url, a.maxPages,
		a.parsePage,
		func(doc *goquery.Document) string {
			return findLinkContaining(doc, ".pagination .page-link", "Siguientes", a.baseURL)
		})
}

func (a *Aviles) parsePage(doc *goquery.Document) []event.Event {
	cards := doc.Find(".card.border-info")
	if cards.Length() == 0 {
		a.log.Warn("no event cards found on page", logger.Fields{"source": a.id})
		return nil
	}

	var events []event.Event
	cards.Each(func(_ int, card *goquery.Selection) {
		if evt, ok := a.parseCard(card); ok {
			events = append(events, evt)
		}
	})
	return events
}

func (a *Aviles) parseCard(card *goquery.Selection) (event.Event, bool) {
	title := cleanText(card.Find("h5").First())
	if title == "" {
		return event.Event{}, false
	}

	eventURL := a.url
	if onclick, ok := card.Find(".btn.btn-primary").First().Attr("onclick"); ok {
		if m := avilesPopupID.FindStringSubmatch(onclick); m != nil {
			eventURL = a.baseURL + "/-/calendar/calendar/event/" + m[1]
		}
	}

	cardText := cleanText(card.Find(".card-text").First())

	date := a.extractDate(card, cardText)
	loc := a.extractLocation(cardText, title)

	return a.newEvent(title, date, loc, cardText, eventURL), true
}

// extractDate reads the INICIO/FIN badges, handling recurring events
// whose end date lives in a "Finaliza:" badge, and falls back to date
// phrases in the card text.
func (a *Aviles) extractDate(card *goquery.Selection, cardText string) string {
	var startBadge, recurrentEnd string
	card.Find(".badge.badge-secondary").Each(func(_ int, badge *goquery.Selection) {
		text := strings.TrimSpace(badge.Text())
		switch {
		case strings.HasPrefix(text, "INICIO:"):
			startBadge = strings.TrimSpace(strings.TrimPrefix(text, "INICIO:"))
		case strings.Contains(text, "Finaliza:"):
			if m := avilesFinaliza.FindStringSubmatch(text); m != nil {
				recurrentEnd = m[1]
			}
		}
	})

	if startBadge != "" {
		if date := a.formatBadgeDate(startBadge, recurrentEnd); date != "" {
			return date
		}
	}

	if d := dates.Extract(cardText); d != "" {
		return d
	}
	return a.monthFallback()
}

// formatBadgeDate turns "DD-MM-YYYY HH:MM" badge values into a Spanish
// date phrase.
func (a *Aviles) formatBadgeDate(start, recurrentEnd string) string {
	m := avilesDMY.FindStringSubmatch(start)
	if m == nil {
		return ""
	}
	day := strings.TrimLeft(m[1], "0")
	monthNum, _ := strconv.Atoi(m[2])
	month := dates.MonthName(monthNum)
	if month == "" {
		return ""
	}

	if recurrentEnd != "" {
		if em := avilesDMY.FindStringSubmatch(recurrentEnd); em != nil {
			endDay := strings.TrimLeft(em[1], "0")
			endMonthNum, _ := strconv.Atoi(em[2])
			if endMonthNum == monthNum {
				return dates.FormatRange(day, endDay, month)
			}
			if endMonth := dates.MonthName(endMonthNum); endMonth != "" {
				return fmt.Sprintf("%s de %s - %s de %s", day, month, endDay, endMonth)
			}
		}
	}

	if clock := avilesClock.FindString(start); clock != "" {
		return fmt.Sprintf("%s de %s a las %s", day, month, clock)
	}
	return day + " de " + month
}

func (a *Aviles) extractLocation(cardText, title string) string {
	if cardText != "" {
		if loc := location.FromText(cardText); loc != "" {
			return loc
		}
	}
	if loc := location.FromTitle(title); loc != "" {
		return loc
	}
	return "Avilés"
}
