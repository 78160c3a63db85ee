package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pmenendez/explorastur/internal/logger"
)

const htmlPromptTemplate = `You are a helpful assistant that extracts structured event information from web content. Extract all upcoming events from this HTML:

%s

Return a JSON array of events, where each event has these fields:
- "title": Short name of the event
- "date": In "YYYY-MM-DD" format (or best effort if not available)
- "time": In "HH:MM" 24-hour format (or "All day" / "Unknown" if unclear)
- "location": Venue or address
- "description": 1 to 2 sentence summary

Only include actual events - skip ads, generic text, or navigation elements. Return only the JSON array, no extra text.`

const htmlSystemPrompt = "You extract structured event information from HTML."

// ExtractHTML feeds raw HTML to the model instead of a URL, for pages
// the model cannot fetch itself.
func (c *Client) ExtractHTML(ctx context.Context, html string) ([]Extracted, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: htmlSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(htmlPromptTemplate, html)},
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

// FetchFunc downloads a page body.
type FetchFunc func(ctx context.Context, url string) ([]byte, error)

// ProcessHTMLURLs downloads each URL, optionally narrows the HTML to
// the elements matching selector, and sends the HTML itself to the
// model. Used when the model server cannot fetch pages on its own.
// Failures stay isolated per URL, as in ProcessURLs.
func (c *Client) ProcessHTMLURLs(ctx context.Context, urls []string, selector string, fetch FetchFunc) []Result {
	results := make([]Result, 0, len(urls))
	for _, u := range urls {
		results = append(results, c.processHTMLURL(ctx, u, selector, fetch))
	}
	return results
}

func (c *Client) processHTMLURL(ctx context.Context, pageURL, selector string, fetch FetchFunc) Result {
	result := Result{URL: pageURL, Events: []Extracted{}, ProcessedAt: c.now()}

	if !ValidURL(pageURL) {
		result.Error = "invalid URL format"
		return result
	}

	body, err := fetch(ctx, pageURL)
	if err != nil {
		c.log.Warn("fetch failed", logger.Fields{"url": pageURL, "error": err.Error()})
		result.Error = err.Error()
		return result
	}

	html := string(body)
	if selector != "" {
		narrowed, err := SelectHTML(html, selector)
		if err != nil {
			result.Error = err.Error()
			return result
		}
		if narrowed == "" {
			result.Error = fmt.Sprintf("selector %q matched nothing", selector)
			return result
		}
		html = narrowed
	}

	events, err := c.ExtractHTML(ctx, html)
	if err != nil {
		c.log.Warn("extraction failed", logger.Fields{"url": pageURL, "error": err.Error()})
		result.Error = err.Error()
		return result
	}

	result.Events = events
	return result
}

// SelectHTML narrows HTML to the elements matching a CSS selector,
// trimming the payload before it is sent to the model. Returns "" when
// nothing matches.
func SelectHTML(html, selector string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	var parts []string
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		if out, err := goquery.OuterHtml(sel); err == nil {
			parts = append(parts, out)
		}
	})
	return strings.Join(parts, "\n"), nil
}
