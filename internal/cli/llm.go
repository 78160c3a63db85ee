package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pmenendez/explorastur/internal/config"
	"github.com/pmenendez/explorastur/internal/llm"
	"github.com/pmenendez/explorastur/internal/logger"
	"github.com/pmenendez/explorastur/internal/scrape"
)

var (
	flagLLMURL      string
	flagLLMURLFile  string
	flagLLMURLList  []string
	flagLLMAPI      string
	flagLLMModel    string
	flagLLMSelector string
	flagLLMFormat   string
	flagLLMOutput   string
	flagLLMDebug    bool
)

// NewLLMCmd creates the explorastur-llm command, the model-backed
// extraction variant.
func NewLLMCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explorastur-llm",
		Short: "Extract events from URLs with a language model",
		Long: `Sends page URLs to an OpenAI-compatible chat completions endpoint
(typically a local model server) and collects the structured events it
extracts. Each URL is processed independently; a failing URL is
reported in its result without aborting the rest.`,
		SilenceUsage: true,
		RunE:         runLLM,
	}

	cmd.Flags().StringVar(&flagLLMURL, "url", "", "Single URL to process")
	cmd.Flags().StringVar(&flagLLMURLFile, "urls", "", "File with URLs to process, one per line")
	cmd.Flags().StringSliceVar(&flagLLMURLList, "url-list", nil, "Comma-separated URLs to process")
	cmd.Flags().StringVar(&flagLLMAPI, "llm-api", "", "Base URL of the LLM API (default from LLM_API_BASE_URL)")
	cmd.Flags().StringVar(&flagLLMModel, "model", "", "Model name (default from LLM_MODEL)")
	cmd.Flags().StringVar(&flagLLMSelector, "selector", "", "Fetch pages locally and send only HTML matching this CSS selector")
	cmd.Flags().StringVar(&flagLLMFormat, "format", "console", "Output format: json or console")
	cmd.Flags().StringVarP(&flagLLMOutput, "output", "o", "", "Write JSON results to this file")
	cmd.Flags().BoolVarP(&flagLLMDebug, "debug", "d", false, "Enable debug logging")

	cmd.MarkFlagsOneRequired("url", "urls", "url-list")
	cmd.MarkFlagsMutuallyExclusive("url", "urls", "url-list")

	return cmd
}

func runLLM(cmd *cobra.Command, args []string) error {
	if flagLLMFormat != "json" && flagLLMFormat != "console" {
		return fmt.Errorf("unknown output format: %s (must be json or console)", flagLLMFormat)
	}

	urls, err := collectURLs()
	if err != nil {
		return err
	}

	llmCfg := config.LLMFromEnv()
	if flagLLMAPI != "" {
		llmCfg.BaseURL = flagLLMAPI
	}
	if flagLLMModel != "" {
		llmCfg.Model = flagLLMModel
	}

	level := logger.LevelInfo
	if flagLLMDebug {
		level = logger.LevelDebug
	}
	log := logger.New(level, os.Stderr)

	client := llm.NewClient(llmCfg, log)

	var results []llm.Result
	if flagLLMSelector != "" {
		fetcher := scrape.NewFetcher(scrape.FetcherOptions{Logger: log})
		results = client.ProcessHTMLURLs(cmd.Context(), urls, flagLLMSelector, fetcher.Fetch)
	} else {
		results = client.ProcessURLs(cmd.Context(), urls)
	}

	// A failing batch URL is reported in its result, but when the run is
	// a single URL its failure is the run's failure.
	var runErr error
	if flagLLMURL != "" && len(results) == 1 && results[0].Error != "" {
		runErr = fmt.Errorf("extracting %s: %s", flagLLMURL, results[0].Error)
	}

	if flagLLMOutput != "" {
		if err := writeResults(flagLLMOutput, results); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Results saved to %s\n", flagLLMOutput)
		return runErr
	}

	if flagLLMFormat == "json" {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding results: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return runErr
	}

	printResults(cmd, results)
	return runErr
}

func collectURLs() ([]string, error) {
	switch {
	case flagLLMURL != "":
		return []string{flagLLMURL}, nil
	case flagLLMURLFile != "":
		return readURLFile(flagLLMURLFile)
	default:
		return flagLLMURLList, nil
	}
}

func readURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening URL file: %w", err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			urls = append(urls, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading URL file: %w", err)
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("no URLs found in %s", path)
	}
	return urls, nil
}

func writeResults(path string, results []llm.Result) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	return nil
}

func printResults(cmd *cobra.Command, results []llm.Result) {
	out := cmd.OutOrStdout()
	for _, result := range results {
		fmt.Fprintf(out, "\nURL: %s\n", result.URL)
		if result.Error != "" {
			fmt.Fprintf(out, "Error: %s\n", result.Error)
			continue
		}
		fmt.Fprintf(out, "Found %d events:\n", len(result.Events))
		for i, evt := range result.Events {
			fmt.Fprintf(out, "\nEvent %d:\n", i+1)
			fmt.Fprintf(out, "  Title: %s\n", evt.Title)
			if evt.Date != "" {
				fmt.Fprintf(out, "  Date: %s\n", evt.Date)
			}
			if evt.Time != "" {
				fmt.Fprintf(out, "  Time: %s\n", evt.Time)
			}
			if evt.Location != "" {
				fmt.Fprintf(out, "  Location: %s\n", evt.Location)
			}
			if evt.Description != "" {
				fmt.Fprintf(out, "  Description: %s\n", evt.Description)
			}
		}
	}
}
