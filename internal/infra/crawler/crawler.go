// Package crawler calls an external headless-browser/markdown-extraction
// service to fetch full article body text from a publisher URL (spec §4.6).
// Grounded on the teacher's internal/usecase/fetch/content_fetcher.go
// ContentFetcher contract (same "fetch full content, let the caller fall
// back" role), adapted from an in-process Readability extractor to an
// external HTTP collaborator reached through internal/infra/httpclient.
package crawler

import (
	"context"
	"encoding/json"
	"fmt"

	"catchup-feed/internal/infra/httpclient"
	"catchup-feed/internal/resilience/circuitbreaker"
	"catchup-feed/internal/resilience/retry"
)

// maxResponseBytes bounds the crawler response body read (spec §4.1 body
// limits apply uniformly across external collaborators).
const maxResponseBytes = 1 << 20 // 1 MiB

// minContentChars is the content-length floor below which a crawl result is
// treated as too short/empty (spec §4.6).
const minContentChars = 50

// maxContentChars is the truncate ceiling (spec §4.6).
const maxContentChars = 4000

// truncationSuffix is appended when content is truncated to maxContentChars.
const truncationSuffix = "... [truncated]"

// mdEndpoint is the external crawler's markdown extraction endpoint (spec
// §6: POST /md body {url} -> {success, markdown, error_message}).
const mdEndpoint = "/md"

// Client calls the external crawler service.
type Client struct {
	http    *httpclient.Client
	baseURL string
}

// NewClient builds a Client against the crawler service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		http:    httpclient.New("crawler", circuitbreaker.CrawlerConfig(), retry.CrawlerConfig()),
		baseURL: baseURL,
	}
}

type mdRequest struct {
	URL string `json:"url"`
}

type mdResponse struct {
	Success      bool   `json:"success"`
	Markdown     string `json:"markdown"`
	ErrorMessage string `json:"error_message"`
}

// FetchContent crawls url and returns its extracted body text, truncated to
// maxContentChars. A returned error is a normal control-flow signal per
// spec §4.6 ("a null content is a normal control-flow signal") — callers
// should record it as a retryable ai_error and move on rather than treat it
// as fatal.
func (c *Client) FetchContent(ctx context.Context, url string) (string, error) {
	reqBody, err := json.Marshal(mdRequest{URL: url})
	if err != nil {
		return "", fmt.Errorf("crawler: marshal request: %w", err)
	}

	resp, err := c.http.PostJSON(ctx, c.baseURL+mdEndpoint, reqBody)
	if err != nil {
		return "", fmt.Errorf("crawler: %w", err)
	}

	body, err := httpclient.ReadBody(resp, maxResponseBytes)
	if err != nil {
		return "", fmt.Errorf("crawler: %w", err)
	}

	var parsed mdResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("crawler: decode response: %w", err)
	}

	if !parsed.Success {
		return "", fmt.Errorf("%w: %s", ErrCrawlFailed, parsed.ErrorMessage)
	}

	content := parsed.Markdown
	if len([]rune(content)) < minContentChars {
		return "", ErrTooShort
	}
	return truncate(content), nil
}

func truncate(content string) string {
	runes := []rune(content)
	if len(runes) <= maxContentChars {
		return content
	}
	return string(runes[:maxContentChars]) + truncationSuffix
}
