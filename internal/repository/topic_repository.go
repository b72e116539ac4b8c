package repository

import (
	"context"
	"time"

	"catchup-feed/internal/domain/entity"
)

// TopicRepository persists per-user Topic keyword bundles.
type TopicRepository interface {
	Get(ctx context.Context, userID string, id int64) (*entity.Topic, error)
	List(ctx context.Context, userID string) ([]*entity.Topic, error)
	// ListEnabledWithKeywords returns every enabled topic, across all users,
	// that contributes at least one keyword. Used by the ingestion
	// orchestrator's fan-out: topics with no keywords are never matched and
	// are excluded here rather than filtered by every caller.
	ListEnabledWithKeywords(ctx context.Context) ([]*entity.Topic, error)
	Create(ctx context.Context, topic *entity.Topic) error
	Update(ctx context.Context, topic *entity.Topic) error
	// Delete removes the topic and, in the same transaction, strips its id
	// out of every article's matched_topic_ids via the
	// remove_topic_from_articles stored procedure.
	Delete(ctx context.Context, userID string, id int64) error
	// TouchFetchedAt advances LastFetchedAt after a successful ingestion pass.
	TouchFetchedAt(ctx context.Context, id int64, fetchedAt time.Time) error
}
