package scrape

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pmenendez/explorastur/internal/config"
	"github.com/pmenendez/explorastur/internal/logger"
)

var testNow = time.Date(2025, time.May, 15, 12, 0, 0, 0, time.UTC)

// loadDoc parses a fixture from testdata.
func loadDoc(t *testing.T, name string) *goquery.Document {
	t.Helper()
	f, err := os.Open(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("opening fixture: %v", err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		t.Fatalf("parsing fixture: %v", err)
	}
	return doc
}

// fixtureSource builds the config for one scraper under test.
func fixtureSource(id, name, url, base string) (config.Source, config.Settings) {
	return config.Source{ID: id, Name: name, URL: url, BaseURL: base}, config.Settings{MaxPages: 3}
}

func discard() *logger.Logger { return logger.Discard() }

func TestAbsoluteURL(t *testing.T) {
	tests := []struct {
		base string
		href string
		want string
	}{
		{"https://example.com", "/agenda", "https://example.com/agenda"},
		{"https://example.com/listado/", "detalle", "https://example.com/listado/detalle"},
		{"https://example.com", "https://other.org/x", "https://other.org/x"},
		{"https://example.com", "", "https://example.com"},
	}
	for _, tt := range tests {
		if got := AbsoluteURL(tt.base, tt.href); got != tt.want {
			t.Errorf("AbsoluteURL(%q, %q) = %q, want %q", tt.base, tt.href, got, tt.want)
		}
	}
}

func TestFindLinkContaining(t *testing.T) {
	doc := loadDoc(t, "turismo_asturias.html")
	got := findLinkContaining(doc, "ul.lfr-pagination-buttons li a", "Siguiente", "https://www.turismoasturias.es")
	want := "https://www.turismoasturias.es/agenda-de-asturias?page=2"
	if got != want {
		t.Errorf("findLinkContaining = %q, want %q", got, want)
	}

	if got := findLinkContaining(doc, "ul.lfr-pagination-buttons li a", "Inexistente", "https://www.turismoasturias.es"); got != "" {
		t.Errorf("expected no link, got %q", got)
	}
}

func TestBuildAll(t *testing.T) {
	cfg := config.Default()
	sources := BuildAll(cfg, nil, discard(), testNow)
	if len(sources) != 6 {
		t.Fatalf("got %d sources, want 6", len(sources))
	}
	seen := map[string]bool{}
	for _, src := range sources {
		seen[src.ID()] = true
	}
	for _, id := range KnownIDs() {
		if !seen[id] {
			t.Errorf("missing source %s", id)
		}
	}
}

func TestBuildUnknownSource(t *testing.T) {
	src := config.Source{ID: "mystery", URL: "https://example.com"}
	if _, err := Build(src, config.Settings{}, nil, discard(), testNow); err == nil {
		t.Error("expected error for unknown source ID")
	}
}
