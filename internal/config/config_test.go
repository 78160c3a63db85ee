package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte("settings:\n  timeout: 10s\n"))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if cfg.Settings.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", cfg.Settings.Timeout)
	}
	if cfg.Settings.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want default 3", cfg.Settings.MaxRetries)
	}
	if cfg.Settings.OutputDir != "output" {
		t.Errorf("OutputDir = %q, want default %q", cfg.Settings.OutputDir, "output")
	}
	if len(cfg.Sources) != 6 {
		t.Errorf("got %d default sources, want 6", len(cfg.Sources))
	}
}

func TestParseSources(t *testing.T) {
	data := []byte(`
sources:
  - id: telecable
    name: Telecable
    url: https://blog.telecable.es/agenda-planes-asturias/
  - id: aviles
    name: Avilés
    url: https://aviles.es/es/proximos-eventos
    enabled: false
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(cfg.Sources) != 2 {
		t.Fatalf("got %d sources, want 2", len(cfg.Sources))
	}

	enabled := cfg.Enabled()
	if len(enabled) != 1 || enabled[0].ID != "telecable" {
		t.Errorf("Enabled() = %+v, want only telecable", enabled)
	}

	src, ok := cfg.FindSource("aviles")
	if !ok {
		t.Fatal("FindSource(aviles) not found")
	}
	if src.IsEnabled() {
		t.Error("aviles should be disabled")
	}
}

func TestParseMissingID(t *testing.T) {
	_, err := Parse([]byte("sources:\n  - name: Broken\n    url: https://example.com\n"))
	if err == nil {
		t.Fatal("expected error for source without id")
	}
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("settings: [not a map"))
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("settings:\n  max_pages: 5\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Settings.MaxPages != 5 {
		t.Errorf("MaxPages = %d, want 5", cfg.Settings.MaxPages)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLLMFromEnv(t *testing.T) {
	t.Setenv("LLM_API_BASE_URL", "")
	t.Setenv("LLM_MODEL", "")
	cfg := LLMFromEnv()
	if cfg.BaseURL != "http://localhost:1234/v1" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.Model != "default" {
		t.Errorf("Model = %q", cfg.Model)
	}

	t.Setenv("LLM_API_BASE_URL", "http://gpu-box:8000/v1")
	t.Setenv("LLM_MODEL", "qwen2.5-14b")
	cfg = LLMFromEnv()
	if cfg.BaseURL != "http://gpu-box:8000/v1" || cfg.Model != "qwen2.5-14b" {
		t.Errorf("env override not applied: %+v", cfg)
	}
}
