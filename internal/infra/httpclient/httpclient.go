// Package httpclient provides a retry- and circuit-breaker-wrapped HTTP
// client shared by every outbound integration (aggregator, crawler, LLM).
// All SSRF validation is delegated to entity.ValidateURL before a request is
// ever issued.
package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/resilience/circuitbreaker"
	"catchup-feed/internal/resilience/retry"
)

// DefaultTimeout is the request timeout enforced on every call (spec §4.1).
const DefaultTimeout = 30 * time.Second

// maxErrorBodyBytes caps how much of a non-2xx response body is captured
// into the resulting *retry.HTTPError message.
const maxErrorBodyBytes = 4 << 10 // 4 KiB

// Client wraps *http.Client with SSRF validation, retry-with-backoff, and a
// named circuit breaker. One Client is built per external collaborator
// (aggregator, crawler, LLM) so each gets an independent breaker.
type Client struct {
	http           *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	name           string
}

// New creates a Client using the given circuit breaker and retry
// configuration. Callers pick the Config pair matching the collaborator,
// e.g. circuitbreaker.AggregatorConfig()/retry.AggregatorConfig().
func New(name string, cbCfg circuitbreaker.Config, retryCfg retry.Config) *Client {
	return &Client{
		http:           &http.Client{Timeout: DefaultTimeout},
		circuitBreaker: circuitbreaker.New(cbCfg),
		retryConfig:    retryCfg,
		name:           name,
	}
}

// Do executes an HTTP request through the retry and circuit breaker
// wrappers, after validating the request URL against SSRF rules. The
// request body, if any, must be re-creatable across retries — callers pass
// a bodyFn rather than an already-built *http.Request so every attempt gets
// a fresh io.Reader.
func (c *Client) Do(ctx context.Context, method, url string, headers map[string]string, bodyFn func() io.Reader) (*http.Response, error) {
	if err := entity.ValidateURL(url); err != nil {
		return nil, fmt.Errorf("%s: %w", c.name, err)
	}

	var resp *http.Response
	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		var body io.Reader
		if bodyFn != nil {
			body = bodyFn()
		}

		req, err := http.NewRequestWithContext(ctx, method, url, body)
		if err != nil {
			return fmt.Errorf("%s: build request: %w", c.name, err)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		cbResult, cbErr := c.circuitBreaker.Execute(func() (interface{}, error) {
			httpResp, doErr := c.http.Do(req)
			if doErr != nil {
				return nil, doErr
			}
			if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
				message, _ := ReadBody(httpResp, maxErrorBodyBytes)
				return nil, &retry.HTTPError{
					StatusCode: httpResp.StatusCode,
					Message:    fmt.Sprintf("%s: %s", httpResp.Status, message),
				}
			}
			return httpResp, nil
		})
		if cbErr != nil {
			if errors.Is(cbErr, gobreaker.ErrOpenState) {
				slog.Warn("http client circuit breaker open, request rejected",
					slog.String("service", c.name),
					slog.String("url", url),
					slog.String("state", c.circuitBreaker.State().String()))
			}
			return cbErr
		}

		resp = cbResult.(*http.Response)
		return nil
	})
	if retryErr != nil {
		return nil, retryErr
	}
	return resp, nil
}

// Get is a convenience wrapper over Do for header-less GET requests.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	return c.Do(ctx, http.MethodGet, url, nil, nil)
}

// PostJSON is a convenience wrapper over Do that sends body as a JSON
// request, re-reading it fresh on every retry attempt.
func (c *Client) PostJSON(ctx context.Context, url string, body []byte) (*http.Response, error) {
	return c.Do(ctx, http.MethodPost, url, map[string]string{"Content-Type": "application/json"}, func() io.Reader {
		return bytes.NewReader(body)
	})
}

// ReadBody reads and closes resp.Body, capping it at maxBytes to bound
// memory use against oversized responses.
func ReadBody(resp *http.Response, maxBytes int64) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}
