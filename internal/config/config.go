// Package config loads run configuration: the YAML source list with global
// fetch settings, and the LLM environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings are the global fetch/output knobs shared by every source.
type Settings struct {
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
	MaxPages   int           `yaml:"max_pages"`
	UserAgent  string        `yaml:"user_agent"`
	OutputDir  string        `yaml:"output_dir"`
	LogDir     string        `yaml:"log_dir"`
}

// Source configures one scraped website. BaseURL defaults to URL's origin
// and is used to resolve relative links.
type Source struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	BaseURL string `yaml:"base_url,omitempty"`
	Enabled *bool  `yaml:"enabled,omitempty"`
}

// IsEnabled treats a missing enabled key as true.
func (s Source) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// Config is the full file: global settings plus the source list.
type Config struct {
	Settings Settings `yaml:"settings"`
	Sources  []Source `yaml:"sources"`
}

// Default returns the built-in configuration covering all six sources.
func Default() *Config {
	return &Config{
		Settings: defaultSettings(),
		Sources: []Source{
			{ID: "telecable", Name: "Telecable", URL: "https://blog.telecable.es/agenda-planes-asturias/"},
			{ID: "turismo_asturias", Name: "Turismo Asturias", URL: "https://www.turismoasturias.es/agenda-de-asturias", BaseURL: "https://www.turismoasturias.es"},
			{ID: "oviedo_centros_sociales", Name: "Centros Sociales Oviedo", URL: "https://www.oviedo.es/centrossociales/avisos", BaseURL: "https://www.oviedo.es"},
			{ID: "visit_oviedo", Name: "Visit Oviedo", URL: "https://www.visitoviedo.info/agenda", BaseURL: "https://www.visitoviedo.info"},
			{ID: "biodevas", Name: "Biodevas", URL: "https://biodevas.org/", BaseURL: "https://biodevas.org"},
			{ID: "aviles", Name: "Avilés", URL: "https://aviles.es/es/proximos-eventos", BaseURL: "https://aviles.es"},
		},
	}
}

func defaultSettings() Settings {
	return Settings{
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		RetryDelay: 2 * time.Second,
		MaxPages:   3,
		UserAgent:  "explorastur/1.0 (github.com/pmenendez/explorastur)",
		OutputDir:  "output",
		LogDir:     "logs",
	}
}

// Load reads a YAML config file. Missing settings keys fall back to the
// defaults; a missing or empty sources list falls back to the built-in
// source set.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse decodes config YAML, applying defaults for anything unset.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{Settings: defaultSettings()}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	defaults := defaultSettings()
	if cfg.Settings.Timeout == 0 {
		cfg.Settings.Timeout = defaults.Timeout
	}
	if cfg.Settings.MaxRetries == 0 {
		cfg.Settings.MaxRetries = defaults.MaxRetries
	}
	if cfg.Settings.RetryDelay == 0 {
		cfg.Settings.RetryDelay = defaults.RetryDelay
	}
	if cfg.Settings.MaxPages == 0 {
		cfg.Settings.MaxPages = defaults.MaxPages
	}
	if cfg.Settings.UserAgent == "" {
		cfg.Settings.UserAgent = defaults.UserAgent
	}
	if cfg.Settings.OutputDir == "" {
		cfg.Settings.OutputDir = defaults.OutputDir
	}
	if cfg.Settings.LogDir == "" {
		cfg.Settings.LogDir = defaults.LogDir
	}
	if len(cfg.Sources) == 0 {
		cfg.Sources = Default().Sources
	}

	for i, src := range cfg.Sources {
		if src.ID == "" || src.URL == "" {
			return nil, fmt.Errorf("source %d: id and url are required", i)
		}
	}
	return cfg, nil
}

// Enabled returns the enabled sources, keeping file order.
func (c *Config) Enabled() []Source {
	out := make([]Source, 0, len(c.Sources))
	for _, src := range c.Sources {
		if src.IsEnabled() {
			out = append(out, src)
		}
	}
	return out
}

// FindSource returns the source with the given ID, enabled or not.
func (c *Config) FindSource(id string) (Source, bool) {
	for _, src := range c.Sources {
		if src.ID == id {
			return src, true
		}
	}
	return Source{}, false
}

// LLM holds the chat-completion endpoint settings from the environment.
type LLM struct {
	BaseURL string
	Model   string
}

const (
	defaultLLMBaseURL = "http://localhost:1234/v1"
	defaultLLMModel   = "default"
)

// LLMFromEnv reads LLM_API_BASE_URL and LLM_MODEL, with local defaults
// suiting an LM Studio style server.
func LLMFromEnv() LLM {
	cfg := LLM{
		BaseURL: os.Getenv("LLM_API_BASE_URL"),
		Model:   os.Getenv("LLM_MODEL"),
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultLLMBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultLLMModel
	}
	return cfg
}
