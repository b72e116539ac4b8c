// Package decode drives the URL-decode stream engine (spec §4.9): for a
// batch of not-yet-decoded articles, resolve aggregator links to their
// publisher URL via internal/infra/urlcodec, emitting progress events a
// caller can forward over a server-sent stream.
//
// New package. Grounded on internal/usecase/ingest's cache-then-network
// ordering and the teacher's "emit structured progress, cooperative
// cancellation" idiom implicit in internal/usecase/fetch/service.go's
// per-item loop.
package decode

import (
	"context"
	"time"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/infra/urlcodec"
	"catchup-feed/internal/repository"
)

// batchSize is the maximum number of pending-decode articles pulled per run
// (spec §4.9 point 1).
const batchSize = 100

// interItemDelay is the throttle applied after any iteration that required
// a remote call (spec §4.9 point 3e). Cache hits and pass-throughs skip it.
const interItemDelay = 3 * time.Second

// EventType distinguishes a mid-stream progress tick from the terminal event.
type EventType string

const (
	EventProgress EventType = "progress"
	EventComplete EventType = "complete"
)

// Event is emitted once per article (EventProgress) and once at the end of
// the run (EventComplete), per spec §4.9 points 3d and 4.
type Event struct {
	Type    EventType
	Decoded int
	Failed  int
	Total   int
}

// Engine drives the decode stream for one user's pending articles.
type Engine struct {
	articles repository.ArticleRepository
	cache    repository.URLCacheRepository
	decoder  *urlcodec.Decoder
}

// New builds an Engine.
func New(articles repository.ArticleRepository, cache repository.URLCacheRepository, decoder *urlcodec.Decoder) *Engine {
	return &Engine{articles: articles, cache: cache, decoder: decoder}
}

// Run loads up to 100 pending-decode articles for userID and resolves each
// in order, calling emit after every article and once more on completion.
// It returns early, without emitting EventComplete, if ctx is cancelled
// between articles (spec's cooperative-cancellation convention, shared with
// the analyzer stream engine).
func (e *Engine) Run(ctx context.Context, userID string, emit func(Event)) error {
	articles, err := e.articles.ListPendingDecode(ctx, userID, batchSize)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(articles))
	seen := make(map[string]struct{}, len(articles))
	for _, a := range articles {
		id, ok := urlcodec.ExtractAggregatorID(a.Link)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	cached, err := e.cache.GetBatch(ctx, ids)
	if err != nil {
		return err
	}

	total := len(articles)
	decoded, failed := 0, 0

	for _, article := range articles {
		if err := ctx.Err(); err != nil {
			return err
		}

		remote := e.resolve(ctx, article, cached)
		if article.DecodeFailed {
			failed++
		} else {
			decoded++
		}

		if err := e.articles.Update(ctx, article); err != nil {
			return err
		}
		emit(Event{Type: EventProgress, Decoded: decoded, Failed: failed, Total: total})

		if remote {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interItemDelay):
			}
		}
	}

	emit(Event{Type: EventComplete, Decoded: decoded, Failed: failed, Total: total})
	return nil
}

// resolve mutates article in place to reflect its decode outcome and
// reports whether resolving it required a remote call (spec §4.9 points
// 3a-3c).
func (e *Engine) resolve(ctx context.Context, article *entity.Article, preloaded map[string]string) (remote bool) {
	id, ok := urlcodec.ExtractAggregatorID(article.Link)
	if !ok {
		article.URLDecoded = true
		return false
	}

	if url, hit := preloaded[id]; hit {
		article.DecodedURL = &url
		article.URLDecoded = true
		return false
	}

	result, err := e.decoder.Decode(ctx, article.Link)
	if err != nil {
		article.URLDecoded = true
		article.DecodeFailed = true
		// Even on failure, result.Remote reflects whether a network attempt
		// was made (the signed-batch path) — the politeness throttle below
		// must still apply so failing retries don't hammer the aggregator
		// faster than a success would.
		return result.Remote
	}
	article.URLDecoded = true
	if result.URL != "" && result.URL != article.Link {
		url := result.URL
		article.DecodedURL = &url
	}
	return result.Remote
}
