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

// Telecable scrapes the monthly agenda post on the Telecable blog. The
// post is one long article with h2 category headers and paragraphs
// whose bold text carries "DATE: Title" entries.
type Telecable struct {
	site
}

func NewTelecable(src config.Source, settings config.Settings, f *Fetcher, log *logger.Logger, now time.Time) *Telecable {
	return &Telecable{site: newSite(src, settings, f, log, now)}
}

var (
	telecableDatePrefix = regexp.MustCompile(`^(\d{1,2}(?:\s*[-y]\s*\d{1,2})?\s+de\s+[a-zA-Záéíóúñ]+):\s*(.+)$`)
	telecableDelAl      = regexp.MustCompile(`(?i)del\s+\d{1,2}\s+al\s+\d{1,2}\s+de\s+[a-zA-Záéíóúñ]+`)
	telecableSingleDay  = regexp.MustCompile(`\d{1,2}\s+de\s+[a-zA-Záéíóúñ]+`)
	telecableMonthLong  = regexp.MustCompile(`(?i)(?:durante\s+)?todo\s+el\s+mes\s+de\s+[a-zA-Záéíóúñ]+`)
	telecableURL        = regexp.MustCompile(`https?://[^\s'"]+`)
	telecableVenue      = regexp.MustCompile(`(?i)en\s+(?:el\s+|la\s+|los\s+|las\s+)?((?:Teatro|Auditorio|Centro|Sala|Pabellón|Plaza|Factoría|Museo|Recinto)\s+[^.]+)`)
	telecableCity       = regexp.MustCompile(`(?i)en\s+((?:Oviedo|Gijón|Avilés|Villaviciosa|Llanera|Cabranes|Corvera)[^.]*)`)
)

func (t *Telecable) Scrape(ctx context.Context) ([]event.Event, error) {
	doc, err := t.fetcher.FetchDocument(ctx, t.url)
	if err != nil {
		return nil, err
	}
	events := t.parse(doc)
	t.log.Info("scraped source", logger.Fields{"source": t.id, "count": len(events)})
	return events, nil
}

func (t *Telecable) parse(doc *goquery.Document) []event.Event {
	body := doc.Find(".article-body").First()
	if body.Length() == 0 {
		// Older posts use generic article containers.
		body = doc.Find("article, .post-content, .entry-content").First()
	}
	if body.Length() == 0 {
		t.log.Warn("no article body found", logger.Fields{"source": t.id})
		return nil
	}

	var events []event.Event
	body.Find("p").Each(func(_ int, p *goquery.Selection) {
		details := cleanText(p)

		p.Find("b, strong").Each(func(_ int, bold *goquery.Selection) {
			boldText := strings.TrimSpace(bold.Text())
			if len(boldText) < 3 {
				return
			}

			var title, date string
			if m := telecableDatePrefix.FindStringSubmatch(boldText); m != nil {
				date = m[1]
				title = strings.TrimSpace(m[2])
			} else {
				title = boldText
				date = t.extractDate(details)
			}

			location := t.extractLocation(details)
			url := t.url
			if m := telecableURL.FindString(details); m != "" {
				url = m
			}

			events = append(events, t.newEvent(title, date, location, details, url))
		})
	})
	return events
}

// extractDate scans paragraph text for a date phrase, most specific
// pattern first, falling back to the current month.
func (t *Telecable) extractDate(details string) string {
	for _, re := range []*regexp.Regexp{telecableDelAl, telecableSingleDay, telecableMonthLong} {
		if m := re.FindString(details); m != "" {
			return m
		}
	}
	return t.monthFallback()
}

func (t *Telecable) extractLocation(details string) string {
	if m := telecableVenue.FindStringSubmatch(details); m != nil {
		return strings.TrimRight(strings.TrimSpace(m[1]), ",.:;")
	}
	if m := telecableCity.FindStringSubmatch(details); m != nil {
		return strings.TrimRight(strings.TrimSpace(m[1]), ",.:;")
	}
	return ""
}
