package repository

import (
	"context"

	"catchup-feed/internal/domain/entity"
)

// URLCacheRepository persists the global aggregator-id -> publisher-URL
// cache backing internal/infra/urlcodec. It is global rather than per-user:
// a successful resolution for one user's article benefits every other user
// who later meets the same opaque aggregator id.
type URLCacheRepository interface {
	// Get returns the cached entry for id, or nil if not cached.
	Get(ctx context.Context, id string) (*entity.URLCacheEntry, error)
	// GetBatch looks up many ids at once, returning only the ones found.
	GetBatch(ctx context.Context, ids []string) (map[string]string, error)
	// Put inserts or refreshes a resolved mapping. Safe to call concurrently
	// for the same id: the later write wins.
	Put(ctx context.Context, entry entity.URLCacheEntry) error
}
