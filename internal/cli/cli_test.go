package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pmenendez/explorastur/internal/dates"
	"github.com/pmenendez/explorastur/internal/event"
)

// writeConfig points the telecable source at a test server, keeping
// logs and output inside the test's temp dir.
func writeConfig(t *testing.T, url string) string {
	t.Helper()
	dir := t.TempDir()
	cfg := fmt.Sprintf(`settings:
  output_dir: %s
  log_dir: %s
  max_pages: 1
sources:
  - id: telecable
    name: Telecable
    url: %s
`, filepath.Join(dir, "output"), filepath.Join(dir, "logs"), url)

	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunScrapeToStdout(t *testing.T) {
	// An event spanning the current month is always upcoming, whatever
	// day the test runs on.
	month := dates.MonthName(int(time.Now().Month()))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body><article><div class="article-body">
<p><b>Festival de prueba</b> Durante todo el mes de %s en el Teatro Palacio Valdés.</p>
</div></article></body></html>`, month)
	}))
	defer server.Close()

	out, err := runCommand(t,
		"--config", writeConfig(t, server.URL),
		"--scraper", "telecable",
		"--stdout", "--format", "json")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}

	var events []event.Event
	if err := json.Unmarshal([]byte(out), &events); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Title != "Festival de prueba" {
		t.Errorf("title = %q", events[0].Title)
	}
	if !strings.Contains(events[0].Location, "Teatro Palacio Valdés") {
		t.Errorf("location = %q", events[0].Location)
	}
}

func TestRunScrapeWritesFile(t *testing.T) {
	month := dates.MonthName(int(time.Now().Month()))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body><article><div class="article-body">
<p><b>Festival de prueba</b> Durante todo el mes de %s.</p>
</div></article></body></html>`, month)
	}))
	defer server.Close()

	outDir := t.TempDir()
	out, err := runCommand(t,
		"--config", writeConfig(t, server.URL),
		"--scraper", "telecable",
		"--output", outDir,
		"--format", "markdown")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if !strings.Contains(out, "Wrote 1 events") {
		t.Errorf("output = %q", out)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("output dir entries = %v, err = %v", entries, err)
	}
	content, err := os.ReadFile(filepath.Join(outDir, entries[0].Name()))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !strings.Contains(string(content), "# Eventos en Asturias") {
		t.Errorf("digest missing header:\n%s", content)
	}
}

func TestRunScrapeUnknownFormat(t *testing.T) {
	if _, err := runCommand(t, "--format", "xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestRunScrapeUnknownScraper(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	_, err := runCommand(t,
		"--config", writeConfig(t, server.URL),
		"--scraper", "periodico_inventado",
		"--stdout")
	if err == nil {
		t.Fatal("expected error for unknown scraper ID")
	}
	if !strings.Contains(err.Error(), "unknown source") {
		t.Errorf("error = %v", err)
	}
}
