package tools

import (
	"context"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	readability "github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
)

// maxFetchedContent caps how much page text is returned to the model.
const maxFetchedContent = 5000

// WebFetchTool fetches a URL and extracts the readable main content as
// sanitized plain text.
type WebFetchTool struct {
	Client    *http.Client
	UserAgent string
	policy    *bluemonday.Policy
}

// NewWebFetchTool creates a WebFetchTool with a 10 second request timeout.
func NewWebFetchTool() *WebFetchTool {
	return &WebFetchTool{
		Client:    &http.Client{Timeout: 10 * time.Second},
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		policy:    bluemonday.StrictPolicy(),
	}
}

func (t *WebFetchTool) Name() string { return "fetch_web_content" }

func (t *WebFetchTool) Description() string {
	return "Fetch and extract text content from a web URL"
}

func (t *WebFetchTool) Parameters() []Parameter {
	return []Parameter{
		{Name: "url", Type: "string", Description: "The URL to fetch content from", Required: true},
	}
}

func (t *WebFetchTool) Execute(ctx context.Context, args map[string]any) Result {
	rawURL, ok := StringArg(args, "url")
	if !ok || rawURL == "" {
		return Errorf("url is required")
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil || parsedURL.Scheme == "" {
		return Errorf("invalid url: %s", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Errorf("error building request: %v", err)
	}
	req.Header.Set("User-Agent", t.UserAgent)

	resp, err := t.Client.Do(req)
	if err != nil {
		return Errorf("error fetching URL: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Errorf("error fetching URL: status code %d", resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, parsedURL)
	if err != nil {
		return Errorf("error parsing content: %v", err)
	}

	content := truncateText(t.policy.Sanitize(article.TextContent), maxFetchedContent)

	return Ok(map[string]any{
		"url":         rawURL,
		"title":       article.Title,
		"content":     content,
		"status_code": resp.StatusCode,
	})
}

// truncateText cuts s to at most n bytes, backing up so a multi-byte rune
// is never split.
func truncateText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
