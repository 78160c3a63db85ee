// Package scrape fetches Asturian event websites and extracts raw event
// records from their HTML. Each source implements the Source interface
// with its own selectors; the shared Fetcher handles HTTP, retries and
// pagination.
package scrape

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pmenendez/explorastur/internal/event"
	"github.com/pmenendez/explorastur/internal/logger"
)

// Source scrapes one website into raw event records. Implementations
// return partial records; normalization happens downstream.
type Source interface {
	ID() string
	Name() string
	Scrape(ctx context.Context) ([]event.Event, error)
}

// AbsoluteURL resolves href against base. Already-absolute hrefs pass
// through unchanged; unresolvable input returns href as-is.
func AbsoluteURL(base, href string) string {
	if href == "" {
		return base
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	h, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(h).String()
}

// cleanText collapses whitespace runs in a selection's text.
func cleanText(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(sel.Text()), " ")
}

// paginate walks a paginated listing, calling extract on each page.
// nextURL receives the current document and returns the absolute URL of
// the next page, or "" to stop. At most maxPages pages are fetched.
func paginate(ctx context.Context, f *Fetcher, log *logger.Logger, startURL string, maxPages int,
	extract func(*goquery.Document) []event.Event,
	nextURL func(*goquery.Document) string) ([]event.Event, error) {

	if maxPages <= 0 {
		maxPages = 3
	}

	var all []event.Event
	current := startURL
	for page := 1; page <= maxPages; page++ {
		log.Info("fetching page", logger.Fields{"page": page, "url": current})

		doc, err := f.FetchDocument(ctx, current)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			log.Warn("failed to fetch page, keeping earlier results", logger.Fields{
				"page":  page,
				"url":   current,
				"error": err.Error(),
			})
			break
		}

		pageEvents := extract(doc)
		all = append(all, pageEvents...)
		log.Info("extracted events from page", logger.Fields{
			"page":  page,
			"count": len(pageEvents),
		})

		next := nextURL(doc)
		if next == "" || next == current {
			break
		}
		current = next
	}
	return all, nil
}

// findLinkContaining returns the href of the first link under selector
// whose text contains substr, resolved against base.
func findLinkContaining(doc *goquery.Document, selector, substr, base string) string {
	var href string
	doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if !strings.Contains(sel.Text(), substr) {
			return true
		}
		if sel.HasClass("disabled") || sel.Parent().HasClass("disabled") {
			return true
		}
		h, ok := sel.Attr("href")
		if !ok || h == "" || strings.HasPrefix(h, "javascript") {
			return true
		}
		href = AbsoluteURL(base, h)
		return false
	})
	return href
}
