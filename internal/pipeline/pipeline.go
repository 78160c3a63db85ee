// Package pipeline filters, normalizes and orders the raw records the
// scrapers produce into the final event list.
package pipeline

import (
	"sort"
	"time"

	"github.com/pmenendez/explorastur/internal/dates"
	"github.com/pmenendez/explorastur/internal/event"
	"github.com/pmenendez/explorastur/internal/location"
	"github.com/pmenendez/explorastur/internal/logger"
	"github.com/pmenendez/explorastur/internal/textclean"
)

// Processor applies the normalization and filtering rules to scraped
// records. The reference time fixes what "upcoming" means for the whole
// run.
type Processor struct {
	rules []location.Rule
	now   time.Time
	log   *logger.Logger
}

func New(rules []location.Rule, now time.Time, log *logger.Logger) *Processor {
	if log == nil {
		log = logger.Discard()
	}
	return &Processor{rules: rules, now: now, log: log}
}

// Process cleans each record, drops the ones that are not upcoming
// events, fills missing locations and sorts by date. Sorting is stable:
// records with equal dates keep their scrape order.
func (p *Processor) Process(events []event.Event) []event.Event {
	kept := make([]event.Event, 0, len(events))
	seen := make(map[dedupKey]bool)
	dropped := map[string]int{}

	for _, evt := range events {
		evt.Title = textclean.CleanTitle(evt.Title, evt.Date)
		evt.Description = textclean.CleanDescription(evt.Description)

		if !evt.Valid() {
			dropped["incomplete"]++
			continue
		}
		if textclean.IsNonEvent(evt.Title) {
			dropped["non_event"]++
			continue
		}
		if !dates.IsFuture(evt.Date, p.now) {
			dropped["past"]++
			continue
		}

		p.completeLocation(&evt)

		key := dedupKey{evt.Title, evt.Date, evt.URL}
		if seen[key] {
			dropped["duplicate"]++
			continue
		}
		seen[key] = true

		kept = append(kept, evt)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return dates.SortKey(kept[i].Date, p.now).Less(dates.SortKey(kept[j].Date, p.now))
	})

	p.log.Info("processed events", logger.Fields{
		"in":      len(events),
		"out":     len(kept),
		"dropped": dropped,
	})
	return kept
}

type dedupKey struct {
	title, date, url string
}

// completeLocation fills a missing location from the title, then the
// description, and normalizes whatever value ends up in the field.
func (p *Processor) completeLocation(evt *event.Event) {
	// "Concierto en el Teatro Jovellanos" carries its venue in the
	// title; move it to the location field.
	if title, venue := location.SplitTitle(evt.Title); venue != "" {
		evt.Title = title
		if evt.Location == "" {
			evt.Location = venue
		}
	}
	if evt.Location == "" {
		evt.Location = location.FromTitle(evt.Title)
	}
	if evt.Location == "" && evt.Description != "" {
		evt.Location = location.FromText(evt.Description)
	}
	if evt.Location != "" {
		evt.Location = location.Clean(evt.Location, p.rules)
	}
}
