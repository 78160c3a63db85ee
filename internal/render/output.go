package render

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// extensions maps each format to its output file extension.
var extensions = map[Format]string{
	FormatMarkdown: "md",
	FormatJSON:     "json",
	FormatConsole:  "txt",
	FormatICS:      "ics",
}

// OutputPath returns the dated file path for a run, e.g.
// output/events_2025-05-15.md.
func OutputPath(dir string, format Format, now time.Time) string {
	ext := extensions[format]
	if ext == "" {
		ext = "txt"
	}
	return filepath.Join(dir, fmt.Sprintf("events_%s.%s", now.Format("2006-01-02"), ext))
}

// WriteFile writes rendered output to the dated file under dir,
// creating the directory if needed, and returns the path written.
func WriteFile(dir string, format Format, content string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	path := OutputPath(dir, format, now)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing output file: %w", err)
	}
	return path, nil
}
