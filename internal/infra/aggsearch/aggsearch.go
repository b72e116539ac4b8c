// Package aggsearch builds a region-scoped aggregator search URL per
// keyword phrase and parses the result feed (spec §4.4). New package,
// grounded on internal/infra/feedreader (reuses its RSS parsing) plus the
// URL-building conventions of the teacher's internal/infra/scraper.
package aggsearch

import (
	"context"
	"net/url"
	"strings"
	"time"

	"catchup-feed/internal/infra/feedreader"
)

// DefaultSearchBase is the aggregator's keyword-search RSS endpoint (spec
// §6), the base URL production callers should pass to NewSearcher.
const DefaultSearchBase = "https://news.google.com/rss/search"

// titlePublisherSeparator is what aggregator result titles use to append
// the publisher name: "Title - Publisher". The component splits on the
// *last* occurrence so publisher names that themselves contain " - " are
// not mis-split.
const titlePublisherSeparator = " - "

// Result is one aggregator search hit, already tagged with the topic whose
// keyword produced it (spec §4.4 point: "each result is tagged with the
// originating topic identifier at emission time"). Aggregator results carry
// no photo.
type Result struct {
	Title         string
	Link          string
	Snippet       string
	PublisherName string
	PublishedAt   *time.Time
	TopicID       int64
}

// Searcher runs keyword searches against the aggregator, reusing the same
// RSS parsing as the feed reader since the aggregator's search endpoint
// returns RSS.
type Searcher struct {
	reader  *feedreader.Reader
	baseURL string
}

// NewSearcher builds a Searcher over the given feed reader and search base
// URL. Production callers pass DefaultSearchBase; tests pass an httptest
// server URL, so no package-level test-only hook is needed.
func NewSearcher(reader *feedreader.Reader, baseURL string) *Searcher {
	return &Searcher{reader: reader, baseURL: baseURL}
}

// Search queries the aggregator for keyword and tags every result with
// topicID.
func (s *Searcher) Search(ctx context.Context, keyword string, topicID int64) ([]Result, error) {
	items, err := s.reader.Fetch(ctx, s.buildSearchURL(keyword))
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(items))
	for _, it := range items {
		title, publisher := splitTitlePublisher(it.Title)
		results = append(results, Result{
			Title:         title,
			Link:          it.Link,
			Snippet:       it.Snippet,
			PublisherName: publisher,
			PublishedAt:   it.PublishedAt,
			TopicID:       topicID,
		})
	}
	return results, nil
}

// buildSearchURL builds the region-scoped search URL named by spec §6:
// /rss/search?q=…&hl=id&gl=ID&ceid=ID:id.
func (s *Searcher) buildSearchURL(keyword string) string {
	v := url.Values{}
	v.Set("q", keyword)
	v.Set("hl", "id")
	v.Set("gl", "ID")
	v.Set("ceid", "ID:id")
	return s.baseURL + "?" + v.Encode()
}

// splitTitlePublisher splits "Title - Publisher" on the last separator
// occurrence, assigning the right half to publisher (spec §4.4).
func splitTitlePublisher(full string) (title, publisher string) {
	idx := strings.LastIndex(full, titlePublisherSeparator)
	if idx == -1 {
		return full, ""
	}
	return full[:idx], full[idx+len(titlePublisherSeparator):]
}
