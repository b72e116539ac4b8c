package repository

import (
	"context"
	"time"

	"catchup-feed/internal/domain/entity"
)

// ArticleSearchFilters contains optional filters for article search, applied
// in addition to the mandatory user scope and multi-keyword AND logic.
type ArticleSearchFilters struct {
	TopicID *int64     // Optional: articles whose MatchedTopicIDs contains this topic
	From    *time.Time // Optional: published_at >= this date
	To      *time.Time // Optional: published_at <= this date
}

// ArticleRepository persists per-user ingested articles.
type ArticleRepository interface {
	Get(ctx context.Context, userID string, id int64) (*entity.Article, error)
	List(ctx context.Context, userID string) ([]*entity.Article, error)
	ListPaginated(ctx context.Context, userID string, offset, limit int) ([]*entity.Article, error)
	Count(ctx context.Context, userID string) (int64, error)
	Search(ctx context.Context, userID string, keywords []string, filters ArticleSearchFilters) ([]*entity.Article, error)

	// GetByLink returns the existing article for (userID, link), or nil if
	// none exists. Used by the ingestion orchestrator's upsert step to
	// decide between Create and a topic-id merge via Update.
	GetByLink(ctx context.Context, userID string, link string) (*entity.Article, error)
	// ExistsByLinkBatch checks (userID, link) existence for many links at
	// once, avoiding an N+1 round trip during a fetch pass.
	ExistsByLinkBatch(ctx context.Context, userID string, links []string) (map[string]bool, error)

	Create(ctx context.Context, article *entity.Article) error
	Update(ctx context.Context, article *entity.Article) error
	Delete(ctx context.Context, userID string, id int64) error

	// UpdateMatchedTopicIDs writes only matched_topic_ids (and updated_at)
	// for the (userID, link) row. The ingestion orchestrator's upsert path
	// uses this rather than Update for an existing row so a concurrent
	// decode/analyze write landing between its read and write is never
	// reverted — Update's full-row write would otherwise clobber it.
	UpdateMatchedTopicIDs(ctx context.Context, userID, link string, ids []int64) error

	// ListPendingDecode returns articles not yet URL-decoded, oldest first,
	// for the URL-decode stream engine.
	ListPendingDecode(ctx context.Context, userID string, limit int) ([]*entity.Article, error)
	// ListPendingAnalyze returns articles eligible for analysis (decoded,
	// decode not failed, not yet AI-processed), oldest first, for the
	// analyzer stream engine.
	ListPendingAnalyze(ctx context.Context, userID string, limit int) ([]*entity.Article, error)
	// ListRetryEligible returns AI-processed articles whose ai_error is set,
	// for an admin-triggered retry.
	ListRetryEligible(ctx context.Context, userID string, limit int) ([]*entity.Article, error)

	// ListUserIDsWithPendingWork returns the distinct user ids that own at
	// least one article pending decode or pending analysis. The auto-fetch
	// scheduler drives internal/usecase/decode and internal/usecase/analyze
	// per user (both are written against a single user's backlog, matching
	// the per-SSE-connection shape they're also used through), so it needs
	// this to discover which users have work before looping over them.
	ListUserIDsWithPendingWork(ctx context.Context) ([]string, error)

	// Counters computes the KPI counters defined in the data model, scoped
	// to articles created at or after since.
	Counters(ctx context.Context, userID string, since time.Time) (entity.ArticleCounters, error)
}
