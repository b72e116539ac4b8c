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

type TopicRepo struct{ db *sql.DB }

func NewTopicRepo(db *sql.DB) repository.TopicRepository {
	return &TopicRepo{db: db}
}

func scanTopic(scanner interface{ Scan(...interface{}) error }) (*entity.Topic, error) {
	var t entity.Topic
	if err := scanner.Scan(&t.ID, &t.UserID, &t.Name, pq.Array(&t.Keywords), &t.Enabled, &t.LastFetchedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (repo *TopicRepo) Get(ctx context.Context, userID string, id int64) (*entity.Topic, error) {
	const query = `
SELECT id, user_id, name, keywords, enabled, last_fetched_at
FROM topics
WHERE user_id = $1 AND id = $2
LIMIT 1`
	topic, err := scanTopic(repo.db.QueryRowContext(ctx, query, userID, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return topic, nil
}

func (repo *TopicRepo) List(ctx context.Context, userID string) ([]*entity.Topic, error) {
	const query = `
SELECT id, user_id, name, keywords, enabled, last_fetched_at
FROM topics
WHERE user_id = $1
ORDER BY id ASC`
	rows, err := repo.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	topics := make([]*entity.Topic, 0, 20)
	for rows.Next() {
		topic, err := scanTopic(rows)
		if err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		topics = append(topics, topic)
	}
	return topics, rows.Err()
}

func (repo *TopicRepo) ListEnabledWithKeywords(ctx context.Context) ([]*entity.Topic, error) {
	const query = `
SELECT id, user_id, name, keywords, enabled, last_fetched_at
FROM topics
WHERE enabled = TRUE AND array_length(keywords, 1) > 0
ORDER BY id ASC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ListEnabledWithKeywords: %w", err)
	}
	defer func() { _ = rows.Close() }()

	topics := make([]*entity.Topic, 0, 100)
	for rows.Next() {
		topic, err := scanTopic(rows)
		if err != nil {
			return nil, fmt.Errorf("ListEnabledWithKeywords: Scan: %w", err)
		}
		topics = append(topics, topic)
	}
	return topics, rows.Err()
}

func (repo *TopicRepo) Create(ctx context.Context, topic *entity.Topic) error {
	const query = `
INSERT INTO topics (user_id, name, keywords, enabled, last_fetched_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		topic.UserID, topic.Name, pq.Array(topic.Keywords), topic.Enabled, topic.LastFetchedAt,
	).Scan(&topic.ID)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *TopicRepo) Update(ctx context.Context, topic *entity.Topic) error {
	const query = `
UPDATE topics SET name = $1, keywords = $2, enabled = $3, last_fetched_at = $4
WHERE user_id = $5 AND id = $6`
	res, err := repo.db.ExecContext(ctx, query,
		topic.Name, pq.Array(topic.Keywords), topic.Enabled, topic.LastFetchedAt, topic.UserID, topic.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: no rows affected")
	}
	return nil
}

// Delete removes the topic and strips its id out of every article's
// matched_topic_ids inside one transaction, via the
// remove_topic_from_articles stored procedure (see migrate.go).
func (repo *TopicRepo) Delete(ctx context.Context, userID string, id int64) error {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Delete: BeginTx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM topics WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: no rows affected")
	}

	if _, err := tx.ExecContext(ctx, `SELECT remove_topic_from_articles($1)`, id); err != nil {
		return fmt.Errorf("Delete: remove_topic_from_articles: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("Delete: Commit: %w", err)
	}
	return nil
}

func (repo *TopicRepo) TouchFetchedAt(ctx context.Context, id int64, fetchedAt time.Time) error {
	const query = `UPDATE topics SET last_fetched_at = $1 WHERE id = $2`
	_, err := repo.db.ExecContext(ctx, query, fetchedAt, id)
	return err
}
