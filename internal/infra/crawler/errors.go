package crawler

import "errors"

// Sentinel errors for the crawler client, named after the teacher's
// internal/usecase/fetch/content_fetcher.go ContentFetcher error set —
// this client plays the same "fetch full article body, fall back
// gracefully" role, just against an external service instead of an
// in-process extractor.
var (
	// ErrTooShort indicates the crawler returned content under the
	// 50-character floor (spec §4.6) — treated as "too short/empty".
	ErrTooShort = errors.New("crawled content too short or empty")

	// ErrCrawlFailed wraps the crawler's own reported error_message when
	// success=false.
	ErrCrawlFailed = errors.New("crawl failed")
)
