// Package cli defines the cobra commands behind the explorastur and
// explorastur-llm binaries.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pmenendez/explorastur/internal/config"
	"github.com/pmenendez/explorastur/internal/event"
	"github.com/pmenendez/explorastur/internal/location"
	"github.com/pmenendez/explorastur/internal/logger"
	"github.com/pmenendez/explorastur/internal/pipeline"
	"github.com/pmenendez/explorastur/internal/render"
	"github.com/pmenendez/explorastur/internal/scrape"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig  string
	flagScraper string
	flagOutput  string
	flagFormat  string
	flagStdout  bool
	flagDebug   bool
)

// NewRootCmd creates the scraper command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explorastur",
		Short: "Collect upcoming events in Asturias",
		Long: `Scrapes Asturian event listings, normalizes their Spanish dates and
locations, and writes a Markdown digest of upcoming events.`,
		SilenceUsage: true,
		RunE:         runScrape,
	}

	cmd.Flags().StringVarP(&flagConfig, "config", "c", "", "Path to YAML config file")
	cmd.Flags().StringVarP(&flagScraper, "scraper", "s", "", "Run only these source IDs (comma-separated)")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output directory (default from config)")
	cmd.Flags().StringVar(&flagFormat, "format", "markdown", "Output format: markdown, json, console or ics")
	cmd.Flags().BoolVar(&flagStdout, "stdout", false, "Print output instead of writing a file")
	cmd.Flags().BoolVarP(&flagDebug, "debug", "d", false, "Enable debug logging")

	return cmd
}

// Execute runs a command and maps errors to the process exit code.
func Execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}

func runScrape(cmd *cobra.Command, args []string) error {
	now := time.Now()

	format, err := render.ParseFormat(flagFormat)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagOutput != "" {
		cfg.Settings.OutputDir = flagOutput
	}

	log, closeLog := newRunLogger(cfg.Settings.LogDir, now)
	defer closeLog()

	events, err := scrapeAll(cmd, cfg, log, now)
	if err != nil {
		return err
	}

	processor := pipeline.New(location.DefaultRules(), now, log)
	processed := processor.Process(events)
	log.Info("run complete", logger.Fields{"events": len(processed)})

	content, err := render.Render(format, processed, now)
	if err != nil {
		return err
	}

	if flagStdout || format == render.FormatConsole {
		fmt.Fprint(cmd.OutOrStdout(), content)
		return nil
	}

	path, err := render.WriteFile(cfg.Settings.OutputDir, format, content, now)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d events to %s\n", len(processed), path)
	return nil
}

func loadConfig() (*config.Config, error) {
	if flagConfig == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// scrapeAll runs every selected source, isolating failures so one site
// outage cannot empty the digest.
func scrapeAll(cmd *cobra.Command, cfg *config.Config, log *logger.Logger, now time.Time) ([]event.Event, error) {
	fetcher := scrape.NewFetcher(scrape.FetcherOptions{
		Timeout:    cfg.Settings.Timeout,
		UserAgent:  cfg.Settings.UserAgent,
		MaxRetries: cfg.Settings.MaxRetries,
		RetryDelay: cfg.Settings.RetryDelay,
		Logger:     log,
	})

	var sources []scrape.Source
	if flagScraper != "" {
		for _, id := range strings.Split(flagScraper, ",") {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			src, ok := cfg.FindSource(id)
			if !ok {
				return nil, fmt.Errorf("unknown source: %s (known: %s)",
					id, strings.Join(scrape.KnownIDs(), ", "))
			}
			s, err := scrape.Build(src, cfg.Settings, fetcher, log, now)
			if err != nil {
				return nil, err
			}
			sources = append(sources, s)
		}
	} else {
		sources = scrape.BuildAll(cfg, fetcher, log, now)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no sources enabled")
	}

	var all []event.Event
	failures := 0
	for _, src := range sources {
		events, err := src.Scrape(cmd.Context())
		if err != nil {
			failures++
			log.Error("source failed", logger.Fields{"source": src.ID()}, err)
			continue
		}
		log.Info("source done", logger.Fields{"source": src.ID(), "count": len(events)})
		all = append(all, events...)
	}
	if failures == len(sources) {
		return nil, fmt.Errorf("all %d sources failed", failures)
	}
	return all, nil
}

// newRunLogger logs to stderr and, when possible, to the dated file
// under the log directory. The returned func closes the file.
func newRunLogger(logDir string, now time.Time) (*logger.Logger, func()) {
	level := logger.LevelInfo
	if flagDebug {
		level = logger.LevelDebug
	}

	file, err := logger.DailyFile(logDir, now)
	if err != nil {
		log := logger.New(level, os.Stderr)
		log.Warn("could not open log file, logging to stderr only", logger.Fields{
			"dir":   logDir,
			"error": err.Error(),
		})
		return log, func() {}
	}
	return logger.New(level, io.MultiWriter(os.Stderr, file)), func() { file.Close() }
}
