package db

import (
	"database/sql"
)

// MigrateUp creates the schema: topics, feeds, articles, and the shared
// url_cache table, plus the topic-delete cascade stored procedure.
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS topics (
    id              BIGSERIAL PRIMARY KEY,
    user_id         TEXT NOT NULL,
    name            TEXT NOT NULL,
    keywords        TEXT[] NOT NULL DEFAULT '{}',
    enabled         BOOLEAN NOT NULL DEFAULT TRUE,
    last_fetched_at TIMESTAMPTZ,
    UNIQUE (user_id, name)
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS feeds (
    id      BIGSERIAL PRIMARY KEY,
    user_id TEXT NOT NULL,
    name    TEXT NOT NULL,
    url     TEXT NOT NULL,
    enabled BOOLEAN NOT NULL DEFAULT TRUE,
    UNIQUE (user_id, url)
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS articles (
    id                BIGSERIAL PRIMARY KEY,
    user_id           TEXT NOT NULL,
    link              TEXT NOT NULL,
    source_type       VARCHAR(20) NOT NULL,
    title             TEXT NOT NULL,
    snippet           TEXT,
    publisher_name    TEXT,
    publisher_url     TEXT,
    photo_url         TEXT,
    published_at      TIMESTAMPTZ,
    matched_topic_ids BIGINT[] NOT NULL DEFAULT '{}',

    decoded_url       TEXT,
    url_decoded       BOOLEAN NOT NULL DEFAULT FALSE,
    decode_failed     BOOLEAN NOT NULL DEFAULT FALSE,

    ai_processed      BOOLEAN NOT NULL DEFAULT FALSE,
    ai_error          TEXT,
    ai_processed_at   TIMESTAMPTZ,
    full_content      TEXT,
    summary           TEXT,
    sentiment         VARCHAR(10),
    categories        TEXT[] NOT NULL DEFAULT '{}',
    ai_reason         TEXT,

    created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (user_id, link)
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS url_cache (
    id           TEXT PRIMARY KEY,
    resolved_url TEXT NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	// scheduler_state is a single persisted row (id = 1) tracking the
	// auto-fetch scheduler's last run, matching internal/usecase/scheduler's
	// single-writer contract: last_fetch_at is the only field another
	// process instance needs to recover a correct next_fetch_at after a
	// restart.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS scheduler_state (
    id            SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
    last_fetch_at TIMESTAMPTZ,
    status        VARCHAR(20) NOT NULL DEFAULT 'idle'
)`); err != nil {
		return err
	}
	if _, err := db.Exec(`
INSERT INTO scheduler_state (id) VALUES (1) ON CONFLICT (id) DO NOTHING
`); err != nil {
		return err
	}

	// パフォーマンス最適化: インデックス追加
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_topics_user_id ON topics(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_topics_enabled ON topics(enabled) WHERE enabled = TRUE`,
		`CREATE INDEX IF NOT EXISTS idx_feeds_user_id ON feeds(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_feeds_enabled ON feeds(enabled) WHERE enabled = TRUE`,
		`CREATE INDEX IF NOT EXISTS idx_articles_user_id ON articles(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_published_at ON articles(published_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_matched_topic_ids ON articles USING gin(matched_topic_ids)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_pending_decode ON articles(user_id, created_at) WHERE url_decoded = FALSE`,
		`CREATE INDEX IF NOT EXISTS idx_articles_pending_analyze ON articles(user_id, created_at) WHERE url_decoded = TRUE AND decode_failed = FALSE AND ai_processed = FALSE`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	// pg_trgm拡張を有効化(ILIKE検索高速化用)
	// エラーを無視(既に存在する場合やスーパーユーザー権限がない場合)
	_, _ = db.Exec(`CREATE EXTENSION IF NOT EXISTS pg_trgm`)

	searchIndexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_articles_title_gin ON articles USING gin(title gin_trgm_ops)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_snippet_gin ON articles USING gin(snippet gin_trgm_ops)`,
	}
	for _, idx := range searchIndexes {
		// pg_trgm拡張がない場合はエラーになるため無視
		_, _ = db.Exec(idx)
	}

	if _, err := db.Exec(`
DO $$
BEGIN
    IF NOT EXISTS (
        SELECT 1 FROM pg_constraint
        WHERE conname = 'chk_articles_source_type'
    ) THEN
        ALTER TABLE articles ADD CONSTRAINT chk_articles_source_type
        CHECK (source_type IN ('aggregator', 'rss'));
    END IF;
    IF NOT EXISTS (
        SELECT 1 FROM pg_constraint
        WHERE conname = 'chk_articles_sentiment'
    ) THEN
        ALTER TABLE articles ADD CONSTRAINT chk_articles_sentiment
        CHECK (sentiment IS NULL OR sentiment IN ('positive', 'neutral', 'negative'));
    END IF;
END $$;
`); err != nil {
		return err
	}

	// remove_topic_from_articles strips topicID out of every article's
	// matched_topic_ids. Called inside the same transaction that deletes a
	// topic (see postgres.TopicRepo.Delete) instead of taking an app-level
	// exclusive lock, per the data model's cascade design note.
	if _, err := db.Exec(`
CREATE OR REPLACE FUNCTION remove_topic_from_articles(topic_id BIGINT)
RETURNS VOID AS $$
BEGIN
    UPDATE articles
    SET matched_topic_ids = array_remove(matched_topic_ids, topic_id)
    WHERE topic_id = ANY(matched_topic_ids);
END;
$$ LANGUAGE plpgsql;
`); err != nil {
		return err
	}

	return nil
}

// MigrateDown rolls back the database schema.
// This function removes tables and indexes in reverse order of creation.
// Use with caution: this will delete all data in the affected tables.
func MigrateDown(db *sql.DB) error {
	dropStatements := []string{
		`DROP FUNCTION IF EXISTS remove_topic_from_articles(BIGINT)`,
		`DROP TABLE IF EXISTS scheduler_state CASCADE`,
		`DROP TABLE IF EXISTS url_cache CASCADE`,
		`DROP TABLE IF EXISTS articles CASCADE`,
		`DROP TABLE IF EXISTS feeds CASCADE`,
		`DROP TABLE IF EXISTS topics CASCADE`,
	}
	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
