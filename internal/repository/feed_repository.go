package repository

import (
	"context"

	"catchup-feed/internal/domain/entity"
)

// FeedRepository persists per-user RSS/Atom Feed configuration.
type FeedRepository interface {
	Get(ctx context.Context, userID string, id int64) (*entity.Feed, error)
	List(ctx context.Context, userID string) ([]*entity.Feed, error)
	// ListAllEnabled returns every enabled feed, across all users, for the
	// ingestion orchestrator's RSS fan-out.
	ListAllEnabled(ctx context.Context) ([]*entity.Feed, error)
	Create(ctx context.Context, feed *entity.Feed) error
	Update(ctx context.Context, feed *entity.Feed) error
	Delete(ctx context.Context, userID string, id int64) error
}
