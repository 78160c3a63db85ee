package scrape

import (
	"strings"
	"testing"
)

func TestAvilesParsePage(t *testing.T) {
	src, settings := fixtureSource("aviles", "Avilés",
		"https://aviles.es/es/proximos-eventos", "https://aviles.es")
	s := NewAviles(src, settings, nil, discard(), testNow)

	events := s.parsePage(loadDoc(t, "aviles.html"))
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}

	expo := events[0]
	if expo.Title != "EXPOSICIÓN SOBRE EL ACERO" {
		t.Errorf("title = %q", expo.Title)
	}
	if expo.Date != "14 de marzo - 15 de junio" {
		t.Errorf("date = %q, want recurrent range from badges", expo.Date)
	}
	if !strings.Contains(expo.Location, "Centro Niemeyer") {
		t.Errorf("location = %q", expo.Location)
	}
	if expo.URL != "https://aviles.es/-/calendar/calendar/event/12345" {
		t.Errorf("url = %q, want id from popup handler", expo.URL)
	}

	banda := events[1]
	if banda.Date != "25 de mayo a las 19:30" {
		t.Errorf("date = %q, want badge time appended", banda.Date)
	}
	if !strings.Contains(banda.Location, "Parque de Ferrera") {
		t.Errorf("location = %q", banda.Location)
	}

	feria := events[2]
	if feria.Date != "Del 23 al 25 de mayo" {
		t.Errorf("date = %q, want range from card text", feria.Date)
	}
	if feria.URL != s.url {
		t.Errorf("url = %q, want listing url when no popup", feria.URL)
	}
	if !strings.Contains(feria.Location, "Plaza de España") {
		t.Errorf("location = %q", feria.Location)
	}
}

func TestAvilesFormatBadgeDate(t *testing.T) {
	src, settings := fixtureSource("aviles", "Avilés", "https://aviles.es/es/proximos-eventos", "")
	s := NewAviles(src, settings, nil, discard(), testNow)

	tests := []struct {
		start, end string
		want       string
	}{
		{"25-05-2025 19:30", "", "25 de mayo a las 19:30"},
		{"05-05-2025", "", "5 de mayo"},
		{"23-05-2025 10:00", "25-05-2025", "23 - 25 de mayo"},
		{"14-03-2025 10:00", "15-06-2025", "14 de marzo - 15 de junio"},
		{"sin fecha", "", ""},
	}
	for _, tt := range tests {
		if got := s.formatBadgeDate(tt.start, tt.end); got != tt.want {
			t.Errorf("formatBadgeDate(%q, %q) = %q, want %q", tt.start, tt.end, got, tt.want)
		}
	}
}
