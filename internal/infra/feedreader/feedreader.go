// Package feedreader parses RSS 2.0 and Atom feeds (spec §4.3). Adapts the
// teacher's internal/infra/scraper/rss.go wholesale: same gofeed wiring,
// same retry/circuit-breaker wrapping, generalized field extraction for the
// snippet/photo fallback chains and the ISO-normalized publish time.
package feedreader

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"

	"catchup-feed/internal/resilience/circuitbreaker"
	"catchup-feed/internal/resilience/retry"
)

// parserTimeout bounds a single feed parse (spec §4.3).
const parserTimeout = 15 * time.Second

// maxSnippetRunes caps the extracted snippet (spec §4.3).
const maxSnippetRunes = 500

// Item is one entry parsed out of a feed, before topic matching assigns it
// to any MatchedTopicIDs.
type Item struct {
	Title         string
	Link          string
	Snippet       string
	PublisherName string
	PublisherURL  string
	PhotoURL      string
	PublishedAt   *time.Time
}

// Reader fetches and parses RSS/Atom feeds. Same shape as the teacher's
// RSSFetcher: a circuit breaker and retry config wrap gofeed's own HTTP
// fetch, since gofeed.Parser takes a *http.Client directly rather than
// going through internal/infra/httpclient.
type Reader struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewReader builds a Reader using client for the underlying HTTP fetch.
func NewReader(client *http.Client) *Reader {
	return &Reader{
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.FeedFetchConfig()),
		retryConfig:    retry.FeedFetchConfig(),
	}
}

// Fetch retrieves and parses feedURL, wrapped in retry-with-backoff and a
// named circuit breaker.
func (r *Reader) Fetch(ctx context.Context, feedURL string) ([]Item, error) {
	var items []Item

	retryErr := retry.WithBackoff(ctx, r.retryConfig, func() error {
		cbResult, err := r.circuitBreaker.Execute(func() (interface{}, error) {
			return r.doFetch(ctx, feedURL)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("feed reader circuit breaker open, request rejected",
					slog.String("service", "feed-reader"),
					slog.String("url", feedURL),
					slog.String("state", r.circuitBreaker.State().String()))
			}
			return err
		}
		items = cbResult.([]Item)
		return nil
	})
	if retryErr != nil {
		return nil, retryErr
	}
	return items, nil
}

// doFetch performs the actual parse without retry or circuit breaker.
func (r *Reader) doFetch(ctx context.Context, feedURL string) ([]Item, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, parserTimeout)
	defer cancel()

	fp := gofeed.NewParser()
	fp.UserAgent = "CatchUpFeedBot/1.0"
	fp.Client = r.client

	feed, err := fp.ParseURLWithContext(feedURL, fetchCtx)
	if err != nil {
		return nil, err
	}
	return itemsFromFeed(feed), nil
}

func itemsFromFeed(feed *gofeed.Feed) []Item {
	items := make([]Item, 0, len(feed.Items))
	for _, it := range feed.Items {
		title := strings.TrimSpace(it.Title)
		link := strings.TrimSpace(it.Link)
		if title == "" || link == "" {
			continue
		}

		items = append(items, Item{
			Title:         title,
			Link:          link,
			Snippet:       extractSnippet(it),
			PublisherName: feed.Title,
			PublisherURL:  feed.Link,
			PhotoURL:      extractPhoto(it),
			PublishedAt:   it.PublishedParsed,
		})
	}
	return items
}

// extractSnippet follows the spec's fallback chain. gofeed already folds
// <content:encoded> and Atom <content> into Item.Content, so the chain
// collapses to two fields in practice: Description (the plain-text/summary
// tier) and Content (the richly-formatted tier), both HTML-stripped and
// capped at maxSnippetRunes.
func extractSnippet(it *gofeed.Item) string {
	if plain := strings.TrimSpace(stripHTML(it.Description)); plain != "" {
		return capSnippet(plain)
	}
	if plain := strings.TrimSpace(stripHTML(it.Content)); plain != "" {
		return capSnippet(plain)
	}
	return ""
}

// extractPhoto follows the enclosure -> media:content -> media:thumbnail
// fallback chain of spec §4.3.
func extractPhoto(it *gofeed.Item) string {
	if u := firstEnclosureURL(it); u != "" {
		return u
	}
	if u := mediaExtensionURL(it, "content"); u != "" {
		return u
	}
	return mediaExtensionURL(it, "thumbnail")
}

func firstEnclosureURL(it *gofeed.Item) string {
	for _, enc := range it.Enclosures {
		if enc != nil && enc.URL != "" {
			return enc.URL
		}
	}
	return ""
}

func mediaExtensionURL(it *gofeed.Item, name string) string {
	media, ok := it.Extensions["media"]
	if !ok {
		return ""
	}
	exts, ok := media[name]
	if !ok || len(exts) == 0 {
		return ""
	}
	return exts[0].Attrs["url"]
}

func stripHTML(html string) string {
	if html == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	return strings.TrimSpace(doc.Text())
}

func capSnippet(s string) string {
	runes := []rune(s)
	if len(runes) <= maxSnippetRunes {
		return s
	}
	return string(runes[:maxSnippetRunes])
}
