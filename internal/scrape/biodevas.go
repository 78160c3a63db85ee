package scrape

import (
	"context"
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

// Biodevas scrapes the Biodevas association blog. Posts mix event
// announcements with general articles, so membership posts without a
// date reference are filtered out. Post URLs carry a /YYYY/MM/ segment
// used as the date fallback.
type Biodevas struct {
	site
}

func NewBiodevas(src config.Source, settings config.Settings, f *Fetcher, log *logger.Logger, now time.Time) *Biodevas {
	return &Biodevas{site: newSite(src, settings, f, log, now)}
}

var (
	biodevasURLDate    = regexp.MustCompile(`/(\d{4})/(\d{2})/`)
	biodevasDestacado  = regexp.MustCompile(`^\s*Destacado\s*[-:]\s*`)
	biodevasDateRef    = regexp.MustCompile(`(?i)(?:fecha|día|mes)(?:\s|:)`)
	biodevasActivity   = regexp.MustCompile(`(?i)(?:actividad|taller|paseo|ruta|visita)`)
	biodevasFechaLabel = regexp.MustCompile(`(?i)fecha:?\s*(\d{1,2}\s+de\s+[a-zA-Záéíóúñ]+)`)
	biodevasDayMonth   = regexp.MustCompile(`(?i)día\s+(\d{1,2})`)
	biodevasMonthOf    = regexp.MustCompile(`(?i)mes\s+de\s+([a-zA-Záéíóúñ]+)`)

	biodevasLocationTags = []string{
		"Lugones", "Siero", "Oviedo", "Gijón", "Avilés", "Villaviciosa",
		"Rodiles", "El Sueve", "El Fitu",
	}
)

func (b *Biodevas) Scrape(ctx context.Context) ([]event.Event, error) {
	// Front page plus one more page of posts.
	return paginate(ctx, b.fetcher, b.log, b.url, 2,
		b.parsePage,
		func(doc *goquery.Document) string {
			href, ok := doc.Find(".navigation.pagination .next.page-numbers").First().Attr("href")
			if !ok {
				return ""
			}
			return AbsoluteURL(b.baseURL, href)
		})
}

func (b *Biodevas) parsePage(doc *goquery.Document) []event.Event {
	masonry := doc.Find("#content-masonry").First()
	if masonry.Length() == 0 {
		b.log.Warn("no content-masonry container found", logger.Fields{"source": b.id})
		return nil
	}

	var events []event.Event
	masonry.Find("article.hentry").Each(func(_ int, article *goquery.Selection) {
		if evt, ok := b.parseArticle(article); ok {
			events = append(events, evt)
		}
	})
	return events
}

func (b *Biodevas) parseArticle(article *goquery.Selection) (event.Event, bool) {
	titleLink := article.Find(".entry-title a").First()
	if titleLink.Length() == 0 {
		return event.Event{}, false
	}

	title := strings.TrimSpace(titleLink.Text())
	if title == "" {
		return event.Event{}, false
	}
	title = biodevasDestacado.ReplaceAllString(title, "")

	href, _ := titleLink.Attr("href")
	eventURL := AbsoluteURL(b.baseURL, href)

	summary := cleanText(article.Find(".entry-summary").First())

	// Membership-drive posts without any date reference are articles,
	// not events.
	if strings.Contains(strings.ToLower(summary), "asóciate") &&
		!biodevasDateRef.MatchString(summary) &&
		!biodevasActivity.MatchString(title) {
		return event.Event{}, false
	}

	loc := b.extractLocation(article, title, summary)
	date := b.extractDate(title, summary, eventURL)

	return b.newEvent(title, date, loc, summary, eventURL), true
}

func (b *Biodevas) extractLocation(article *goquery.Selection, title, summary string) string {
	if loc := location.FromTitle(title); loc != "" {
		return loc
	}

	categories := cleanText(article.Find(".category-metas").First())
	if strings.Contains(categories, "Centro Social los Lugg") {
		return "Centro Social los Lugg, Lugones"
	}

	if loc := location.FromText(summary); loc != "" {
		return loc
	}

	tags := strings.ToLower(cleanText(article.Find(".tags").First()))
	for _, tag := range biodevasLocationTags {
		if strings.Contains(tags, strings.ToLower(tag)) {
			return tag
		}
	}

	return "Asturias"
}

func (b *Biodevas) extractDate(title, summary, eventURL string) string {
	if m := biodevasFechaLabel.FindStringSubmatch(summary); m != nil {
		return m[1]
	}
	if d := dates.Extract(summary); d != "" {
		return d
	}

	// "día 15" plus "mes de mayo" spread across the summary.
	dayMatch := biodevasDayMonth.FindStringSubmatch(summary)
	monthMatch := biodevasMonthOf.FindStringSubmatch(summary)
	if dayMatch != nil && monthMatch != nil {
		return dayMatch[1] + " de " + strings.ToLower(monthMatch[1])
	}

	if d := dates.Extract(title); d != "" {
		return d
	}

	// The post URL embeds its publication month.
	if m := biodevasURLDate.FindStringSubmatch(eventURL); m != nil {
		monthNum, _ := strconv.Atoi(m[2])
		if name := dates.MonthName(monthNum); name != "" {
			return "Todo el mes de " + name + " " + m[1]
		}
	}

	return b.monthFallback()
}
