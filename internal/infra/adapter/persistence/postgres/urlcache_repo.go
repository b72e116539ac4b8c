package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/repository"

	"github.com/lib/pq"
)

type URLCacheRepo struct{ db *sql.DB }

func NewURLCacheRepo(db *sql.DB) repository.URLCacheRepository {
	return &URLCacheRepo{db: db}
}

func (repo *URLCacheRepo) Get(ctx context.Context, id string) (*entity.URLCacheEntry, error) {
	const query = `SELECT id, resolved_url FROM url_cache WHERE id = $1 LIMIT 1`
	var entry entity.URLCacheEntry
	err := repo.db.QueryRowContext(ctx, query, id).Scan(&entry.ID, &entry.ResolvedURL)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &entry, nil
}

func (repo *URLCacheRepo) GetBatch(ctx context.Context, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return make(map[string]string), nil
	}

	const query = `SELECT id, resolved_url FROM url_cache WHERE id = ANY($1)`
	rows, err := repo.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("GetBatch: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]string, len(ids))
	for rows.Next() {
		var id, resolved string
		if err := rows.Scan(&id, &resolved); err != nil {
			return nil, fmt.Errorf("GetBatch: Scan: %w", err)
		}
		result[id] = resolved
	}
	return result, rows.Err()
}

func (repo *URLCacheRepo) Put(ctx context.Context, entry entity.URLCacheEntry) error {
	const query = `
INSERT INTO url_cache (id, resolved_url, created_at)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET resolved_url = EXCLUDED.resolved_url`
	_, err := repo.db.ExecContext(ctx, query, entry.ID, entry.ResolvedURL, time.Now())
	if err != nil {
		return fmt.Errorf("Put: %w", err)
	}
	return nil
}
