// Package calendar renders the processed event list as an iCalendar
// feed. Date phrases are fuzzy, so events resolve to all-day entries on
// their first listed day, or to a two-hour slot when a start time is
// known. Events whose month cannot be resolved are skipped.
package calendar

import (
	"crypto/sha1"
	"fmt"
	"strings"
	"time"

	"github.com/pmenendez/explorastur/internal/dates"
	"github.com/pmenendez/explorastur/internal/event"
)

const prodID = "-//ExplorAstur//explorastur//ES"

// Generate builds a VCALENDAR containing one VEVENT per resolvable
// event. now anchors the year and the DTSTAMP.
func Generate(events []event.Event, now time.Time) string {
	var ics strings.Builder
	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:" + prodID + "\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")

	stamp := formatUTC(now)
	for _, evt := range events {
		writeEvent(&ics, evt, now, stamp)
	}

	ics.WriteString("END:VCALENDAR\r\n")
	return ics.String()
}

func writeEvent(ics *strings.Builder, evt event.Event, now time.Time, stamp string) {
	start, allDay, ok := resolveStart(evt, now)
	if !ok {
		return
	}

	ics.WriteString("BEGIN:VEVENT\r\n")
	fmt.Fprintf(ics, "UID:%s@explorastur\r\n", uid(evt))
	fmt.Fprintf(ics, "DTSTAMP:%s\r\n", stamp)

	if allDay {
		fmt.Fprintf(ics, "DTSTART;VALUE=DATE:%s\r\n", start.Format("20060102"))
		fmt.Fprintf(ics, "DTEND;VALUE=DATE:%s\r\n", start.AddDate(0, 0, 1).Format("20060102"))
	} else {
		fmt.Fprintf(ics, "DTSTART:%s\r\n", formatUTC(start))
		fmt.Fprintf(ics, "DTEND:%s\r\n", formatUTC(start.Add(2*time.Hour)))
	}

	fmt.Fprintf(ics, "SUMMARY:%s\r\n", escape(evt.Title))

	description := "Fecha: " + evt.Date
	if evt.Source != "" {
		description += "\nFuente: " + evt.Source
	}
	fmt.Fprintf(ics, "DESCRIPTION:%s\r\n", escape(description))

	if evt.Location != "" {
		fmt.Fprintf(ics, "LOCATION:%s\r\n", escape(evt.Location))
	}
	if evt.URL != "" {
		fmt.Fprintf(ics, "URL:%s\r\n", evt.URL)
	}

	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("TRANSP:TRANSPARENT\r\n")
	ics.WriteString("END:VEVENT\r\n")
}

// resolveStart maps a date phrase to a concrete start. Month-long
// phrases anchor to the first of the month; phrases with a day use the
// earliest day; a recognizable time upgrades the entry from all-day.
func resolveStart(evt event.Event, now time.Time) (time.Time, bool, bool) {
	monthIdx := dates.MonthIndex(evt.Date)
	if monthIdx < 0 {
		return time.Time{}, false, false
	}
	month := time.Month(monthIdx + 1)

	day := 1
	if !dates.IsMonthLong(evt.Date) {
		days := dates.ExtractDays(evt.Date)
		if len(days) == 0 {
			return time.Time{}, false, false
		}
		day = days[0]
	}

	clock := dates.ExtractTime(evt.Date)
	if clock == "" {
		clock = dates.ExtractTime(evt.Time)
	}
	if clock != "" {
		if t, err := time.Parse("15:04", clock); err == nil {
			return time.Date(now.Year(), month, day, t.Hour(), t.Minute(), 0, 0, time.Local), false, true
		}
	}
	return time.Date(now.Year(), month, day, 0, 0, 0, 0, time.Local), true, true
}

// uid derives a stable identifier from the event content.
func uid(evt event.Event) string {
	sum := sha1.Sum([]byte(evt.Title + "|" + evt.Date + "|" + evt.URL))
	return fmt.Sprintf("%x", sum[:8])
}

func formatUTC(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escape escapes text values per RFC 5545.
func escape(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
