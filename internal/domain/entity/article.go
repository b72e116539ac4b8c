// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects — Topic, Feed, Article, and the
// global URL cache — along with their validation rules and domain-specific errors.
package entity

import "time"

// SourceType identifies where an Article was discovered.
type SourceType string

const (
	SourceAggregator SourceType = "aggregator"
	SourceRSS        SourceType = "rss"
)

// Sentiment is the ternary sentiment label produced by the LLM enrichment step.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Article represents a single ingested news article, owned by a user.
//
// Identity is (UserID, Link): re-ingesting the same link from a different
// topic merges MatchedTopicIDs into the existing row and never touches the
// enrichment fields (Summary, Sentiment, Categories, FullContent, AIReason).
type Article struct {
	ID         int64
	UserID     string
	Link       string // original aggregator or publisher URL
	SourceType SourceType

	Title         string
	Snippet       string // capped at 500 chars
	PublisherName string
	PublisherURL  string
	PhotoURL      string
	PublishedAt   *time.Time // nil means unknown; excluded from every cutoff comparison

	MatchedTopicIDs []int64

	// Decode state.
	DecodedURL   *string
	URLDecoded   bool
	DecodeFailed bool

	// Enrichment state.
	AIProcessed   bool
	AIError       *string
	AIProcessedAt *time.Time
	FullContent   *string
	Summary       *string
	Sentiment     *Sentiment
	Categories    []string
	AIReason      *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CrawlURL returns the URL the crawler should fetch: the decoded publisher
// URL if one was resolved, otherwise the original link.
func (a *Article) CrawlURL() string {
	if a.DecodedURL != nil && *a.DecodedURL != "" {
		return *a.DecodedURL
	}
	return a.Link
}

// EligibleForCrawl reports whether the article's decode state permits
// crawling: it must have been decoded and the decode must not have failed.
func (a *Article) EligibleForCrawl() bool {
	return a.URLDecoded && !a.DecodeFailed
}

// EligibleForAnalysis reports whether the article is a candidate for the
// analyzer stream: decoded, not decode-failed, and not yet AI-processed.
func (a *Article) EligibleForAnalysis() bool {
	return a.EligibleForCrawl() && !a.AIProcessed
}

// MergeTopicIDs unions newIDs into the article's MatchedTopicIDs, de-duplicating.
func (a *Article) MergeTopicIDs(newIDs []int64) {
	seen := make(map[int64]struct{}, len(a.MatchedTopicIDs))
	for _, id := range a.MatchedTopicIDs {
		seen[id] = struct{}{}
	}
	for _, id := range newIDs {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			a.MatchedTopicIDs = append(a.MatchedTopicIDs, id)
		}
	}
}

// ArticleCounters are the three derived KPI counters defined in the spec,
// computed for a given period cutoff.
type ArticleCounters struct {
	Analyzed       int64 // ai_processed AND ai_error IS NULL
	Failed         int64 // ai_processed AND ai_error IS NOT NULL
	PendingAnalyze int64 // NOT ai_processed AND url_decoded AND NOT decode_failed
	PendingDecode  int64 // NOT url_decoded
}
