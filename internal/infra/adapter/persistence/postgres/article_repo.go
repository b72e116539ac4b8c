package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/pkg/search"
	"catchup-feed/internal/repository"

	"github.com/lib/pq"
)

const articleColumns = `
id, user_id, link, source_type, title, snippet, publisher_name, publisher_url,
photo_url, published_at, matched_topic_ids, decoded_url, url_decoded, decode_failed,
ai_processed, ai_error, ai_processed_at, full_content, summary, sentiment, categories,
ai_reason, created_at, updated_at`

type ArticleRepo struct{ db *sql.DB }

func NewArticleRepo(db *sql.DB) repository.ArticleRepository {
	return &ArticleRepo{db: db}
}

func scanArticle(scanner interface{ Scan(...interface{}) error }) (*entity.Article, error) {
	var a entity.Article
	var sentiment sql.NullString
	if err := scanner.Scan(
		&a.ID, &a.UserID, &a.Link, &a.SourceType, &a.Title, &a.Snippet, &a.PublisherName,
		&a.PublisherURL, &a.PhotoURL, &a.PublishedAt, pq.Array(&a.MatchedTopicIDs),
		&a.DecodedURL, &a.URLDecoded, &a.DecodeFailed,
		&a.AIProcessed, &a.AIError, &a.AIProcessedAt, &a.FullContent, &a.Summary,
		&sentiment, pq.Array(&a.Categories), &a.AIReason,
		&a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if sentiment.Valid {
		s := entity.Sentiment(sentiment.String)
		a.Sentiment = &s
	}
	return &a, nil
}

func (repo *ArticleRepo) Get(ctx context.Context, userID string, id int64) (*entity.Article, error) {
	query := `SELECT` + articleColumns + ` FROM articles WHERE user_id = $1 AND id = $2 LIMIT 1`
	row := repo.db.QueryRowContext(ctx, query, userID, id)
	article, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return article, nil
}

func (repo *ArticleRepo) GetByLink(ctx context.Context, userID string, link string) (*entity.Article, error) {
	query := `SELECT` + articleColumns + ` FROM articles WHERE user_id = $1 AND link = $2 LIMIT 1`
	row := repo.db.QueryRowContext(ctx, query, userID, link)
	article, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByLink: %w", err)
	}
	return article, nil
}

func (repo *ArticleRepo) List(ctx context.Context, userID string) ([]*entity.Article, error) {
	query := `SELECT` + articleColumns + ` FROM articles WHERE user_id = $1 ORDER BY published_at DESC`
	return repo.queryArticles(ctx, "List", query, userID)
}

func (repo *ArticleRepo) ListPaginated(ctx context.Context, userID string, offset, limit int) ([]*entity.Article, error) {
	query := `SELECT` + articleColumns + ` FROM articles WHERE user_id = $1 ORDER BY published_at DESC LIMIT $2 OFFSET $3`
	return repo.queryArticles(ctx, "ListPaginated", query, userID, limit, offset)
}

func (repo *ArticleRepo) Count(ctx context.Context, userID string) (int64, error) {
	const query = `SELECT COUNT(*) FROM articles WHERE user_id = $1`
	var count int64
	if err := repo.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return count, nil
}

func (repo *ArticleRepo) Search(ctx context.Context, userID string, keywords []string, filters repository.ArticleSearchFilters) ([]*entity.Article, error) {
	ctx, cancel := context.WithTimeout(ctx, search.DefaultSearchTimeout)
	defer cancel()

	qb := NewArticleQueryBuilder()
	where, args := qb.BuildWhereClause(userID, keywords, filters, "")
	query := `SELECT` + articleColumns + ` FROM articles ` + where + ` ORDER BY published_at DESC`
	return repo.queryArticles(ctx, "Search", query, args...)
}

func (repo *ArticleRepo) ListPendingDecode(ctx context.Context, userID string, limit int) ([]*entity.Article, error) {
	query := `SELECT` + articleColumns + ` FROM articles
WHERE user_id = $1 AND url_decoded = FALSE AND decode_failed = FALSE
ORDER BY created_at ASC
LIMIT $2`
	return repo.queryArticles(ctx, "ListPendingDecode", query, userID, limit)
}

func (repo *ArticleRepo) ListPendingAnalyze(ctx context.Context, userID string, limit int) ([]*entity.Article, error) {
	query := `SELECT` + articleColumns + ` FROM articles
WHERE user_id = $1 AND url_decoded = TRUE AND decode_failed = FALSE AND ai_processed = FALSE
ORDER BY created_at ASC
LIMIT $2`
	return repo.queryArticles(ctx, "ListPendingAnalyze", query, userID, limit)
}

func (repo *ArticleRepo) ListRetryEligible(ctx context.Context, userID string, limit int) ([]*entity.Article, error) {
	query := `SELECT` + articleColumns + ` FROM articles
WHERE user_id = $1 AND ai_processed = TRUE AND ai_error IS NOT NULL
ORDER BY ai_processed_at ASC
LIMIT $2`
	return repo.queryArticles(ctx, "ListRetryEligible", query, userID, limit)
}

func (repo *ArticleRepo) ListUserIDsWithPendingWork(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT user_id FROM articles
WHERE (url_decoded = FALSE AND decode_failed = FALSE)
   OR (url_decoded = TRUE AND decode_failed = FALSE AND ai_processed = FALSE)`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ListUserIDsWithPendingWork: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ListUserIDsWithPendingWork: Scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListUserIDsWithPendingWork: %w", err)
	}
	return ids, nil
}

func (repo *ArticleRepo) queryArticles(ctx context.Context, op, query string, args ...interface{}) ([]*entity.Article, error) {
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.Article, 0, 50)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: Scan: %w", op, err)
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

func (repo *ArticleRepo) Create(ctx context.Context, article *entity.Article) error {
	const query = `
INSERT INTO articles
	(user_id, link, source_type, title, snippet, publisher_name, publisher_url, photo_url,
	 published_at, matched_topic_ids, decoded_url, url_decoded, decode_failed,
	 ai_processed, ai_error, ai_processed_at, full_content, summary, sentiment, categories,
	 ai_reason, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
RETURNING id`
	var sentiment *string
	if article.Sentiment != nil {
		s := string(*article.Sentiment)
		sentiment = &s
	}
	err := repo.db.QueryRowContext(ctx, query,
		article.UserID, article.Link, article.SourceType, article.Title, article.Snippet,
		article.PublisherName, article.PublisherURL, article.PhotoURL, article.PublishedAt,
		pq.Array(article.MatchedTopicIDs), article.DecodedURL, article.URLDecoded, article.DecodeFailed,
		article.AIProcessed, article.AIError, article.AIProcessedAt, article.FullContent,
		article.Summary, sentiment, pq.Array(article.Categories), article.AIReason,
		article.CreatedAt, article.UpdatedAt,
	).Scan(&article.ID)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *ArticleRepo) Update(ctx context.Context, article *entity.Article) error {
	const query = `
UPDATE articles SET
	title = $1, snippet = $2, publisher_name = $3, publisher_url = $4, photo_url = $5,
	matched_topic_ids = $6, decoded_url = $7, url_decoded = $8, decode_failed = $9,
	ai_processed = $10, ai_error = $11, ai_processed_at = $12, full_content = $13,
	summary = $14, sentiment = $15, categories = $16, ai_reason = $17, updated_at = $18
WHERE user_id = $19 AND id = $20`
	var sentiment *string
	if article.Sentiment != nil {
		s := string(*article.Sentiment)
		sentiment = &s
	}
	res, err := repo.db.ExecContext(ctx, query,
		article.Title, article.Snippet, article.PublisherName, article.PublisherURL, article.PhotoURL,
		pq.Array(article.MatchedTopicIDs), article.DecodedURL, article.URLDecoded, article.DecodeFailed,
		article.AIProcessed, article.AIError, article.AIProcessedAt, article.FullContent,
		article.Summary, sentiment, pq.Array(article.Categories), article.AIReason, time.Now(),
		article.UserID, article.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: no rows affected")
	}
	return nil
}

// UpdateMatchedTopicIDs writes only matched_topic_ids, leaving every
// enrichment column (ai_processed, summary, sentiment, categories, ...)
// untouched so it can't race with a concurrent decode/analyze write.
func (repo *ArticleRepo) UpdateMatchedTopicIDs(ctx context.Context, userID, link string, ids []int64) error {
	const query = `UPDATE articles SET matched_topic_ids = $1, updated_at = $2 WHERE user_id = $3 AND link = $4`
	res, err := repo.db.ExecContext(ctx, query, pq.Array(ids), time.Now(), userID, link)
	if err != nil {
		return fmt.Errorf("UpdateMatchedTopicIDs: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("UpdateMatchedTopicIDs: no rows affected")
	}
	return nil
}

func (repo *ArticleRepo) Delete(ctx context.Context, userID string, id int64) error {
	const query = `DELETE FROM articles WHERE user_id = $1 AND id = $2`
	res, err := repo.db.ExecContext(ctx, query, userID, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: no rows affected")
	}
	return nil
}

func (repo *ArticleRepo) ExistsByLinkBatch(ctx context.Context, userID string, links []string) (map[string]bool, error) {
	if len(links) == 0 {
		return make(map[string]bool), nil
	}

	const query = `SELECT link FROM articles WHERE user_id = $1 AND link = ANY($2)`
	rows, err := repo.db.QueryContext(ctx, query, userID, pq.Array(links))
	if err != nil {
		return nil, fmt.Errorf("ExistsByLinkBatch: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]bool)
	for rows.Next() {
		var link string
		if err := rows.Scan(&link); err != nil {
			return nil, fmt.Errorf("ExistsByLinkBatch: Scan: %w", err)
		}
		result[link] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ExistsByLinkBatch: rows.Err: %w", err)
	}
	return result, nil
}

func (repo *ArticleRepo) Counters(ctx context.Context, userID string, since time.Time) (entity.ArticleCounters, error) {
	const query = `
SELECT
	COUNT(*) FILTER (WHERE ai_processed AND ai_error IS NULL)                       AS analyzed,
	COUNT(*) FILTER (WHERE ai_processed AND ai_error IS NOT NULL)                   AS failed,
	COUNT(*) FILTER (WHERE NOT ai_processed AND url_decoded AND NOT decode_failed)  AS pending_analyze,
	COUNT(*) FILTER (WHERE NOT url_decoded)                                        AS pending_decode
FROM articles
WHERE user_id = $1 AND created_at >= $2`
	var c entity.ArticleCounters
	err := repo.db.QueryRowContext(ctx, query, userID, since).
		Scan(&c.Analyzed, &c.Failed, &c.PendingAnalyze, &c.PendingDecode)
	if err != nil {
		return entity.ArticleCounters{}, fmt.Errorf("Counters: %w", err)
	}
	return c, nil
}
