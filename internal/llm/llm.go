// Package llm extracts event listings from web pages with a language
// model behind an OpenAI-compatible chat completions API, typically a
// local server.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pmenendez/explorastur/internal/config"
	"github.com/pmenendez/explorastur/internal/logger"
)

// promptTemplate asks for a strict JSON array so the reply can be
// decoded directly. %s receives the page URL.
const promptTemplate = `Analyze the content at this URL and extract all upcoming events:
%s

Return a JSON array of events, where each event has these fields:
- "title": Short name of the event
- "date": In "YYYY-MM-DD" format (or best effort if not available)
- "time": In "HH:MM" 24-hour format (or "All day" / "Unknown" if unclear)
- "location": Venue or address
- "description": 1 to 2 sentence summary

Only include actual events - skip ads, generic text, or navigation elements. Return only the JSON array, no extra text.`

const systemPrompt = "You extract structured event information from web content."

// Extracted is one event as returned by the model.
type Extracted struct {
	Title       string `json:"title"`
	Date        string `json:"date,omitempty"`
	Time        string `json:"time,omitempty"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
}

// Result holds the outcome for one URL. Failures are isolated per URL:
// Error is set and Events is empty.
type Result struct {
	URL         string      `json:"url"`
	Events      []Extracted `json:"events"`
	Error       string      `json:"error,omitempty"`
	ProcessedAt time.Time   `json:"processed_at"`
}

// Client talks to the chat completions endpoint.
type Client struct {
	api   *openai.Client
	model string
	log   *logger.Logger
	now   func() time.Time
}

// NewClient builds a client against the configured base URL. The API
// key is blank: local servers do not check it.
func NewClient(cfg config.LLM, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Discard()
	}
	apiConfig := openai.DefaultConfig("")
	apiConfig.BaseURL = cfg.BaseURL
	return &Client{
		api:   openai.NewClientWithConfig(apiConfig),
		model: cfg.Model,
		log:   log,
		now:   time.Now,
	}
}

// ValidURL reports whether s has a scheme and host.
func ValidURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// ProcessURL extracts events from one URL. Extraction errors are
// reported in the Result, not returned.
func (c *Client) ProcessURL(ctx context.Context, pageURL string) Result {
	result := Result{URL: pageURL, Events: []Extracted{}, ProcessedAt: c.now()}

	if !ValidURL(pageURL) {
		result.Error = "invalid URL format"
		return result
	}

	events, err := c.extract(ctx, pageURL)
	if err != nil {
		c.log.Warn("extraction failed", logger.Fields{"url": pageURL, "error": err.Error()})
		result.Error = err.Error()
		return result
	}

	result.Events = events
	return result
}

// ProcessURLs extracts events from each URL in turn. One failing URL
// does not stop the others.
func (c *Client) ProcessURLs(ctx context.Context, urls []string) []Result {
	results := make([]Result, 0, len(urls))
	for _, u := range urls {
		results = append(results, c.ProcessURL(ctx, u))
	}
	return results
}

func (c *Client) extract(ctx context.Context, pageURL string) ([]Extracted, error) {
	c.log.Info("extracting events", logger.Fields{"url": pageURL, "model": c.model})

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(promptTemplate, pageURL)},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from model")
	}

	return parseReply(resp.Choices[0].Message.Content)
}

// parseReply decodes the model's reply. A single object is accepted and
// wrapped in a one-element slice; models sometimes fence the JSON in a
// code block, which is stripped first.
func parseReply(content string) ([]Extracted, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var events []Extracted
	if err := json.Unmarshal([]byte(content), &events); err == nil {
		return validEvents(events), nil
	}

	var single Extracted
	if err := json.Unmarshal([]byte(content), &single); err != nil {
		return nil, fmt.Errorf("parsing model reply: %w", err)
	}
	return validEvents([]Extracted{single}), nil
}

// validEvents drops entries without a title.
func validEvents(events []Extracted) []Extracted {
	kept := make([]Extracted, 0, len(events))
	for _, e := range events {
		if strings.TrimSpace(e.Title) != "" {
			kept = append(kept, e)
		}
	}
	return kept
}
