package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/repository"
)

type FeedRepo struct{ db *sql.DB }

func NewFeedRepo(db *sql.DB) repository.FeedRepository {
	return &FeedRepo{db: db}
}

func scanFeed(scanner interface{ Scan(...interface{}) error }) (*entity.Feed, error) {
	var f entity.Feed
	if err := scanner.Scan(&f.ID, &f.UserID, &f.Name, &f.URL, &f.Enabled); err != nil {
		return nil, err
	}
	return &f, nil
}

func (repo *FeedRepo) Get(ctx context.Context, userID string, id int64) (*entity.Feed, error) {
	const query = `
SELECT id, user_id, name, url, enabled
FROM feeds
WHERE user_id = $1 AND id = $2
LIMIT 1`
	feed, err := scanFeed(repo.db.QueryRowContext(ctx, query, userID, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return feed, nil
}

func (repo *FeedRepo) List(ctx context.Context, userID string) ([]*entity.Feed, error) {
	const query = `
SELECT id, user_id, name, url, enabled
FROM feeds
WHERE user_id = $1
ORDER BY id ASC`
	rows, err := repo.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	feeds := make([]*entity.Feed, 0, 20)
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		feeds = append(feeds, feed)
	}
	return feeds, rows.Err()
}

func (repo *FeedRepo) ListAllEnabled(ctx context.Context) ([]*entity.Feed, error) {
	const query = `
SELECT id, user_id, name, url, enabled
FROM feeds
WHERE enabled = TRUE
ORDER BY id ASC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ListAllEnabled: %w", err)
	}
	defer func() { _ = rows.Close() }()

	feeds := make([]*entity.Feed, 0, 100)
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("ListAllEnabled: Scan: %w", err)
		}
		feeds = append(feeds, feed)
	}
	return feeds, rows.Err()
}

func (repo *FeedRepo) Create(ctx context.Context, feed *entity.Feed) error {
	const query = `
INSERT INTO feeds (user_id, name, url, enabled)
VALUES ($1, $2, $3, $4)
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query, feed.UserID, feed.Name, feed.URL, feed.Enabled).Scan(&feed.ID)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *FeedRepo) Update(ctx context.Context, feed *entity.Feed) error {
	const query = `
UPDATE feeds SET name = $1, url = $2, enabled = $3
WHERE user_id = $4 AND id = $5`
	res, err := repo.db.ExecContext(ctx, query, feed.Name, feed.URL, feed.Enabled, feed.UserID, feed.ID)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: no rows affected")
	}
	return nil
}

func (repo *FeedRepo) Delete(ctx context.Context, userID string, id int64) error {
	const query = `DELETE FROM feeds WHERE user_id = $1 AND id = $2`
	res, err := repo.db.ExecContext(ctx, query, userID, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: no rows affected")
	}
	return nil
}
