package scrape

import (
	"time"

	"github.com/pmenendez/explorastur/internal/config"
	"github.com/pmenendez/explorastur/internal/dates"
	"github.com/pmenendez/explorastur/internal/event"
	"github.com/pmenendez/explorastur/internal/logger"
)

// site carries the wiring every source needs. Concrete scrapers embed
// it and add their own selectors on top.
type site struct {
	id       string
	name     string
	url      string
	baseURL  string
	maxPages int
	fetcher  *Fetcher
	log      *logger.Logger
	now      time.Time
}

func newSite(src config.Source, settings config.Settings, f *Fetcher, log *logger.Logger, now time.Time) site {
	base := src.BaseURL
	if base == "" {
		base = src.URL
	}
	return site{
		id:       src.ID,
		name:     src.Name,
		url:      src.URL,
		baseURL:  base,
		maxPages: settings.MaxPages,
		fetcher:  f,
		log:      log,
		now:      now,
	}
}

func (s site) ID() string   { return s.id }
func (s site) Name() string { return s.name }

// monthFallback is the date used when a listing carries no explicit
// date: assume it runs all through the current month.
func (s site) monthFallback() string {
	return "Todo el mes de " + dates.MonthName(int(s.now.Month()))
}

// newEvent builds a record tagged with the source name, standardizing
// the date phrase on the way in.
func (s site) newEvent(title, date, location, description, url string) event.Event {
	return event.New(title, dates.Standardize(date, s.now), location, description, url, s.name)
}
