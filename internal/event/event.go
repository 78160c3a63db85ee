// Package event defines the normalized event record produced by the
// scraping pipeline.
package event

import "strings"

// Event is a normalized listing entry. Date is a human-readable Spanish
// date phrase ("10 de mayo", "todo el mes de junio"), not a parsed calendar
// date. Records have no identity beyond their content and live only for
// the duration of one run.
type Event struct {
	Title       string `json:"title"`
	Date        string `json:"date,omitempty"`
	Time        string `json:"time,omitempty"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	Source      string `json:"source,omitempty"`
}

// New builds an Event, normalizing the ":" placeholder some sources emit
// for unset titles to the empty string. Records with empty titles are kept
// here and discarded later by the processing stage.
func New(title, date, location, description, url, source string) Event {
	title = strings.TrimSpace(title)
	if title == ":" {
		title = ""
	}
	return Event{
		Title:       title,
		Date:        strings.TrimSpace(date),
		Location:    strings.TrimSpace(location),
		Description: strings.TrimSpace(description),
		URL:         url,
		Source:      source,
	}
}

// Valid reports whether the record survived cleaning with both a title and
// a date, the minimum needed to render it.
func (e Event) Valid() bool {
	return e.Title != "" && e.Date != ""
}
