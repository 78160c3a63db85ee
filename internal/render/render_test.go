package render

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/pmenendez/explorastur/internal/event"
)

var testNow = time.Date(2025, time.May, 15, 12, 0, 0, 0, time.UTC)

func TestMarkdownEmpty(t *testing.T) {
	got := Markdown(nil, testNow)
	if got != "# No events found" {
		t.Errorf("Markdown(nil) = %q", got)
	}
}

func TestMarkdownHeader(t *testing.T) {
	events := []event.Event{
		{Title: "Concierto", Date: "20 de mayo", Source: "Telecable"},
	}
	got := Markdown(events, testNow)
	if !strings.HasPrefix(got, "# Eventos en Asturias\n\n") {
		t.Errorf("missing title header:\n%s", got)
	}
	if !strings.Contains(got, "_Actualizado: 15/05/2025_") {
		t.Errorf("missing update line:\n%s", got)
	}
}

func TestMarkdownGroupsByDate(t *testing.T) {
	events := []event.Event{
		{Title: "Mes entero", Date: "Todo el mes de mayo", Source: "Telecable"},
		{Title: "Primero", Date: "20 de mayo", Source: "Telecable"},
		{Title: "Segundo", Date: "20 de mayo", Source: "Telecable"},
		{Title: "Junio", Date: "2 de junio", Source: "Telecable"},
	}
	got := Markdown(events, testNow)

	monthIdx := strings.Index(got, "## Durante todo el mes")
	mayIdx := strings.Index(got, "## 20 de mayo")
	juneIdx := strings.Index(got, "## 2 de junio")
	if monthIdx < 0 || mayIdx < 0 || juneIdx < 0 {
		t.Fatalf("missing group headers:\n%s", got)
	}
	if !(monthIdx < mayIdx && mayIdx < juneIdx) {
		t.Errorf("groups out of order: month=%d may=%d june=%d", monthIdx, mayIdx, juneIdx)
	}
	if strings.Count(got, "## 20 de mayo") != 1 {
		t.Error("same-date events split into separate groups")
	}
}

func TestMarkdownEventBullets(t *testing.T) {
	events := []event.Event{
		{
			Title:    "Concierto",
			Date:     "20 de mayo a las 19:00",
			Location: "Teatro Jovellanos, Gijón",
			URL:      "https://example.com/concierto",
			Source:   "Telecable",
		},
	}
	got := Markdown(events, testNow)

	if !strings.Contains(got, "- **19:00h** - Concierto") {
		t.Errorf("missing time-prefixed bullet:\n%s", got)
	}
	if !strings.Contains(got, "  - Lugar: Teatro Jovellanos, Gijón") {
		t.Errorf("missing Lugar line:\n%s", got)
	}
	if !strings.Contains(got, "  - Link: https://example.com/concierto") {
		t.Errorf("missing Link line:\n%s", got)
	}
	if !strings.Contains(got, "  - Fuente: [Telecable](https://blog.telecable.es/agenda-planes-asturias/)") {
		t.Errorf("missing Fuente line:\n%s", got)
	}
	if !strings.Contains(got, "## 20 de mayo\n") {
		t.Errorf("time not stripped from group header:\n%s", got)
	}
}

func TestMarkdownSuppressesBareAsturias(t *testing.T) {
	events := []event.Event{
		{Title: "Ruta", Date: "20 de mayo", Location: "Asturias", Source: "Biodevas"},
	}
	got := Markdown(events, testNow)
	if strings.Contains(got, "Lugar:") {
		t.Errorf("bare Asturias location should be suppressed:\n%s", got)
	}
}

func TestMarkdownSourceFromURL(t *testing.T) {
	events := []event.Event{
		{Title: "Evento", Date: "20 de mayo", URL: "https://www.visitoviedo.info/agenda/x"},
	}
	got := Markdown(events, testNow)
	if !strings.Contains(got, "[Visit Oviedo]") {
		t.Errorf("source not resolved from URL:\n%s", got)
	}
}

func TestJSON(t *testing.T) {
	events := []event.Event{
		{Title: "Concierto", Date: "20 de mayo", Source: "Telecable"},
	}
	got, err := JSON(events)
	if err != nil {
		t.Fatalf("JSON returned error: %v", err)
	}
	var decoded []event.Event
	if err := json.Unmarshal([]byte(got), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Title != "Concierto" {
		t.Errorf("round trip mismatch: %+v", decoded)
	}

	empty, err := JSON(nil)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(empty) != "[]" {
		t.Errorf("JSON(nil) = %q, want empty array", empty)
	}
}

func TestConsole(t *testing.T) {
	events := []event.Event{
		{Title: "Concierto", Date: "20 de mayo", Location: "Gijón", Source: "Telecable"},
	}
	got := Console(events)
	for _, want := range []string{"Concierto", "Fecha:  20 de mayo", "Lugar:  Gijón", "Fuente: Telecable"} {
		if !strings.Contains(got, want) {
			t.Errorf("Console output missing %q:\n%s", want, got)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"markdown", FormatMarkdown, false},
		{"md", FormatMarkdown, false},
		{"JSON", FormatJSON, false},
		{"console", FormatConsole, false},
		{"text", FormatConsole, false},
		{"ics", FormatICS, false},
		{"calendar", FormatICS, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFormat(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseFormat(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir() + "/nested/output"
	path, err := WriteFile(dir, FormatMarkdown, "# digest\n", testNow)
	if err != nil {
		t.Fatalf("WriteFile returned error: %v", err)
	}
	if !strings.HasSuffix(path, "events_2025-05-15.md") {
		t.Errorf("unexpected path: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "# digest\n" {
		t.Errorf("file content = %q", data)
	}
}
