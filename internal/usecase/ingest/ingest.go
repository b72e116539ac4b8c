// Package ingest implements the dual-fan-out ingestion orchestrator (spec
// §4.8): an aggregator-search pass and an RSS/Atom pass, both funneled
// through a shared dedupe-then-upsert step. Grounded on the teacher's
// internal/usecase/fetch/service.go two-tier concurrency pattern
// (errgroup + a channel-based semaphore for summarization parallelism);
// the RSS concurrency-5 gate here uses golang.org/x/sync/semaphore's
// weighted semaphore instead of a raw channel, a closer fit for a fixed
// concurrency budget and already an indirect dependency of
// golang.org/x/sync.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/infra/aggsearch"
	"catchup-feed/internal/infra/feedreader"
	"catchup-feed/internal/observability/metrics"
	"catchup-feed/internal/repository"
	"catchup-feed/internal/usecase/match"
)

// maxKeywordsPerTopic caps the aggregator keyword queue per topic, to
// prevent quota blow-ups (spec §4.8).
const maxKeywordsPerTopic = 5

// aggregatorPoliteDelay is the inter-call delay on the aggregator path
// (spec §4.8).
const aggregatorPoliteDelay = 500 * time.Millisecond

// rssConcurrency is the fixed RSS fan-out concurrency budget (spec §4.8).
const rssConcurrency = 5

// insertChunkSize bounds how many new articles are inserted per repository
// call (spec §4.8).
const insertChunkSize = 50

// Result is the outcome of one orchestrator run (spec §4.8).
type Result struct {
	Inserted int
	Skipped  int
	Errors   []error
}

// Orchestrator runs the ingestion pipeline's fetch and upsert stages.
type Orchestrator struct {
	topics   repository.TopicRepository
	feeds    repository.FeedRepository
	articles repository.ArticleRepository
	searcher *aggsearch.Searcher
	reader   *feedreader.Reader
}

// New builds an Orchestrator from its collaborators.
func New(
	topics repository.TopicRepository,
	feeds repository.FeedRepository,
	articles repository.ArticleRepository,
	searcher *aggsearch.Searcher,
	reader *feedreader.Reader,
) *Orchestrator {
	return &Orchestrator{
		topics:   topics,
		feeds:    feeds,
		articles: articles,
		searcher: searcher,
		reader:   reader,
	}
}

// candidate is an incoming item awaiting the upsert step, already tagged
// with the user it belongs to and every topic id that caused its ingestion.
type candidate struct {
	userID          string
	sourceType      entity.SourceType
	title           string
	link            string
	snippet         string
	publisherName   string
	publisherURL    string
	photoURL        string
	publishedAt     *time.Time
	matchedTopicIDs []int64
}

// Run executes one full ingestion pass: the aggregator fan-out, the RSS
// fan-out, and the shared upsert step.
func (o *Orchestrator) Run(ctx context.Context) (Result, error) {
	now := time.Now()

	topics, err := o.topics.ListEnabledWithKeywords(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list enabled topics: %w", err)
	}

	var result Result
	queriedTopicIDs := make(map[int64]struct{})

	aggCandidates := o.runAggregatorPath(ctx, topics, now, queriedTopicIDs, &result)
	rssCandidates := o.runRSSPath(ctx, topics, &result)

	all := append(aggCandidates, rssCandidates...)
	if err := o.upsert(ctx, all, queriedTopicIDs, now, &result); err != nil {
		return result, fmt.Errorf("upsert: %w", err)
	}

	return result, nil
}

// runAggregatorPath implements spec §4.8's aggregator fan-out: for every
// enabled topic with non-empty keywords, query up to its first 5 keywords
// sequentially with a politeness delay, dropping results at or before the
// topic's own cutoff.
func (o *Orchestrator) runAggregatorPath(
	ctx context.Context,
	topics []*entity.Topic,
	now time.Time,
	queriedTopicIDs map[int64]struct{},
	result *Result,
) []candidate {
	var candidates []candidate
	first := true

	for _, topic := range topics {
		cutoff := topic.Cutoff(now)
		keywords := topic.Keywords
		if len(keywords) > maxKeywordsPerTopic {
			keywords = keywords[:maxKeywordsPerTopic]
		}

		for _, kw := range keywords {
			if !first {
				if err := politeSleep(ctx, aggregatorPoliteDelay); err != nil {
					result.Errors = append(result.Errors, err)
					return candidates
				}
			}
			first = false

			queriedTopicIDs[topic.ID] = struct{}{}

			results, err := o.searcher.Search(ctx, kw, topic.ID)
			if err != nil {
				slog.Warn("aggregator search failed",
					slog.Int64("topic_id", topic.ID),
					slog.String("keyword", kw),
					slog.Any("error", err))
				metrics.RecordFeedCrawlError(topic.ID, "aggregator_search_failed")
				result.Errors = append(result.Errors, fmt.Errorf("aggregator search topic=%d keyword=%q: %w", topic.ID, kw, err))
				continue
			}

			for _, r := range results {
				if r.PublishedAt == nil || !r.PublishedAt.After(cutoff) {
					continue
				}
				candidates = append(candidates, candidate{
					userID:          topic.UserID,
					sourceType:      entity.SourceAggregator,
					title:           r.Title,
					link:            r.Link,
					snippet:         r.Snippet,
					publisherName:   r.PublisherName,
					publishedAt:     r.PublishedAt,
					matchedTopicIDs: []int64{r.TopicID},
				})
			}
		}
	}
	return candidates
}

// runRSSPath implements spec §4.8's RSS fan-out: every enabled feed is
// fetched in parallel (concurrency 5), collected items run through the
// §4.5 matcher scoped to the owning user's topics, and survivors are kept
// only if published after the earliest (most permissive) cutoff among that
// user's topics.
func (o *Orchestrator) runRSSPath(ctx context.Context, topics []*entity.Topic, result *Result) []candidate {
	feeds, err := o.feeds.ListAllEnabled(ctx)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("list enabled feeds: %w", err))
		return nil
	}

	topicsByUser := make(map[string][]entity.Topic)
	for _, t := range topics {
		topicsByUser[t.UserID] = append(topicsByUser[t.UserID], *t)
	}

	now := time.Now()
	sem := semaphore.NewWeighted(rssConcurrency)
	eg, egCtx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	var candidates []candidate

	for _, feed := range feeds {
		f := feed
		userTopics := topicsByUser[f.UserID]
		if len(userTopics) == 0 {
			continue
		}
		cutoff := earliestCutoff(userTopics, now)

		if err := sem.Acquire(egCtx, 1); err != nil {
			break
		}
		eg.Go(func() error {
			defer sem.Release(1)

			items, err := o.reader.Fetch(egCtx, f.URL)
			if err != nil {
				slog.Warn("rss fetch failed",
					slog.Int64("feed_id", f.ID),
					slog.String("url", f.URL),
					slog.Any("error", err))
				metrics.RecordFeedCrawlError(f.ID, "rss_fetch_failed")
				mu.Lock()
				result.Errors = append(result.Errors, fmt.Errorf("rss fetch feed=%d: %w", f.ID, err))
				mu.Unlock()
				return nil
			}

			var local []candidate
			for _, item := range items {
				if item.PublishedAt == nil || !item.PublishedAt.After(cutoff) {
					continue
				}
				matched := match.Match(match.Candidate{Title: item.Title, Snippet: item.Snippet}, userTopics)
				if matched == nil {
					continue
				}
				local = append(local, candidate{
					userID:          f.UserID,
					sourceType:      entity.SourceRSS,
					title:           item.Title,
					link:            item.Link,
					snippet:         item.Snippet,
					publisherName:   item.PublisherName,
					publisherURL:    item.PublisherURL,
					photoURL:        item.PhotoURL,
					publishedAt:     item.PublishedAt,
					matchedTopicIDs: matched,
				})
			}

			mu.Lock()
			candidates = append(candidates, local...)
			mu.Unlock()
			return nil
		})
	}

	_ = eg.Wait()
	return candidates
}

// earliestCutoff returns the smallest (most permissive) cutoff among
// topics, per spec §4.8's RSS-path rule.
func earliestCutoff(topics []entity.Topic, now time.Time) time.Time {
	earliest := topics[0].Cutoff(now)
	for _, t := range topics[1:] {
		if c := t.Cutoff(now); c.Before(earliest) {
			earliest = c
		}
	}
	return earliest
}

// upsert implements spec §4.8's dedupe-then-write step, per user.
func (o *Orchestrator) upsert(
	ctx context.Context,
	candidates []candidate,
	queriedTopicIDs map[int64]struct{},
	now time.Time,
	result *Result,
) error {
	byUser := make(map[string][]candidate)
	for _, c := range candidates {
		byUser[c.userID] = append(byUser[c.userID], c)
	}

	touchedTopicIDs := make(map[int64]struct{})
	for id := range queriedTopicIDs {
		touchedTopicIDs[id] = struct{}{}
	}

	for userID, userCandidates := range byUser {
		merged := dedupeByLink(userCandidates)

		links := make([]string, 0, len(merged))
		for link := range merged {
			links = append(links, link)
		}
		exists, err := o.articles.ExistsByLinkBatch(ctx, userID, links)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("exists batch user=%s: %w", userID, err))
			continue
		}

		var toInsert []*entity.Article
		for _, link := range links {
			c := merged[link]
			if exists[link] {
				existing, err := o.articles.GetByLink(ctx, userID, link)
				if err != nil {
					result.Errors = append(result.Errors, fmt.Errorf("get by link user=%s link=%s: %w", userID, link, err))
					continue
				}
				if existing == nil {
					// Raced with ExistsByLinkBatch; treat as new.
					toInsert = append(toInsert, newArticle(c))
					continue
				}
				existing.MergeTopicIDs(c.matchedTopicIDs)
				if err := o.articles.UpdateMatchedTopicIDs(ctx, userID, link, existing.MatchedTopicIDs); err != nil {
					result.Errors = append(result.Errors, fmt.Errorf("update matched topic ids user=%s link=%s: %w", userID, link, err))
					continue
				}
				for _, id := range existing.MatchedTopicIDs {
					touchedTopicIDs[id] = struct{}{}
				}
				result.Skipped++
				continue
			}
			toInsert = append(toInsert, newArticle(c))
		}

		for _, chunk := range chunkArticles(toInsert, insertChunkSize) {
			for _, art := range chunk {
				if err := o.articles.Create(ctx, art); err != nil {
					result.Errors = append(result.Errors, fmt.Errorf("create user=%s link=%s: %w", userID, art.Link, err))
					continue
				}
				result.Inserted++
				for _, id := range art.MatchedTopicIDs {
					touchedTopicIDs[id] = struct{}{}
				}
			}
		}
	}

	for id := range touchedTopicIDs {
		if err := o.topics.TouchFetchedAt(ctx, id, now); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("touch fetched at topic=%d: %w", id, err))
		}
	}

	return nil
}

func newArticle(c candidate) *entity.Article {
	return &entity.Article{
		UserID:          c.userID,
		Link:            c.link,
		SourceType:      c.sourceType,
		Title:           c.title,
		Snippet:         c.snippet,
		PublisherName:   c.publisherName,
		PublisherURL:    c.publisherURL,
		PhotoURL:        c.photoURL,
		PublishedAt:     c.publishedAt,
		MatchedTopicIDs: c.matchedTopicIDs,
		AIProcessed:     false,
		URLDecoded:      c.sourceType == entity.SourceRSS,
		DecodeFailed:    false,
	}
}

// dedupeByLink merges candidates sharing the same link, unioning their
// matched topic ids (spec §4.8 point 1).
func dedupeByLink(candidates []candidate) map[string]candidate {
	merged := make(map[string]candidate, len(candidates))
	for _, c := range candidates {
		existing, ok := merged[c.link]
		if !ok {
			merged[c.link] = c
			continue
		}
		existing.matchedTopicIDs = unionInt64(existing.matchedTopicIDs, c.matchedTopicIDs)
		merged[c.link] = existing
	}
	return merged
}

func unionInt64(a, b []int64) []int64 {
	seen := make(map[int64]struct{}, len(a))
	out := append([]int64{}, a...)
	for _, id := range a {
		seen[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

func chunkArticles(articles []*entity.Article, size int) [][]*entity.Article {
	if len(articles) == 0 {
		return nil
	}
	var chunks [][]*entity.Article
	for i := 0; i < len(articles); i += size {
		end := i + size
		if end > len(articles) {
			end = len(articles)
		}
		chunks = append(chunks, articles[i:end])
	}
	return chunks
}

func politeSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
