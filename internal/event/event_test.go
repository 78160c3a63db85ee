package event

import "testing"

func TestNew(t *testing.T) {
	e := New("  Concierto  ", " 10 de mayo ", " Teatro ", "desc", "https://example.com", "Telecable")
	if e.Title != "Concierto" {
		t.Errorf("Title = %q, expected trimmed", e.Title)
	}
	if e.Date != "10 de mayo" || e.Location != "Teatro" {
		t.Errorf("fields not trimmed: %+v", e)
	}
	if !e.Valid() {
		t.Error("expected event to be valid")
	}
}

func TestNewPlaceholderTitle(t *testing.T) {
	e := New(":", "10 de mayo", "", "", "", "")
	if e.Title != "" {
		t.Errorf("Title = %q, expected placeholder to be normalized to empty", e.Title)
	}
	if e.Valid() {
		t.Error("placeholder-title event should not be valid")
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		valid bool
	}{
		{"both set", Event{Title: "Concierto", Date: "10 de mayo"}, true},
		{"no title", Event{Date: "10 de mayo"}, false},
		{"no date", Event{Title: "Concierto"}, false},
		{"neither", Event{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.Valid(); got != tt.valid {
				t.Errorf("Valid() = %v, expected %v", got, tt.valid)
			}
		})
	}
}
