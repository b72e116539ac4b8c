package postgres_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/lib/pq"

	"catchup-feed/internal/domain/entity"
	pg "catchup-feed/internal/infra/adapter/persistence/postgres"
	"catchup-feed/internal/repository"
)

var articleColumnNames = []string{
	"id", "user_id", "link", "source_type", "title", "snippet", "publisher_name", "publisher_url",
	"photo_url", "published_at", "matched_topic_ids", "decoded_url", "url_decoded", "decode_failed",
	"ai_processed", "ai_error", "ai_processed_at", "full_content", "summary", "sentiment", "categories",
	"ai_reason", "created_at", "updated_at",
}

func articleRow(a *entity.Article) *sqlmock.Rows {
	var sentiment *string
	if a.Sentiment != nil {
		s := string(*a.Sentiment)
		sentiment = &s
	}
	return sqlmock.NewRows(articleColumnNames).AddRow(
		a.ID, a.UserID, a.Link, a.SourceType, a.Title, a.Snippet, a.PublisherName, a.PublisherURL,
		a.PhotoURL, a.PublishedAt, pq.Array(a.MatchedTopicIDs), a.DecodedURL, a.URLDecoded, a.DecodeFailed,
		a.AIProcessed, a.AIError, a.AIProcessedAt, a.FullContent, a.Summary, sentiment, pq.Array(a.Categories),
		a.AIReason, a.CreatedAt, a.UpdatedAt,
	)
}

func sampleArticle() *entity.Article {
	now := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	return &entity.Article{
		ID: 1, UserID: "u1", Link: "https://news.google.com/rss/articles/abc",
		SourceType: entity.SourceAggregator, Title: "Judul berita", Snippet: "ringkasan",
		PublisherName: "Kompas", PublisherURL: "https://kompas.com/a", PhotoURL: "",
		PublishedAt: &now, MatchedTopicIDs: []int64{1, 2},
		CreatedAt: now, UpdatedAt: now,
	}
}

func TestArticleRepo_Get(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	want := sampleArticle()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs("u1", int64(1)).
		WillReturnRows(articleRow(want))

	repo := pg.NewArticleRepo(db)
	got, err := repo.Get(context.Background(), "u1", 1)
	if err != nil {
		t.Fatalf("Get err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestArticleRepo_Get_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("FROM articles").
		WithArgs("u1", int64(999)).
		WillReturnRows(sqlmock.NewRows(articleColumnNames))

	repo := pg.NewArticleRepo(db)
	got, err := repo.Get(context.Background(), "u1", 999)
	if err != nil {
		t.Fatalf("Get should not error on not found, err=%v", err)
	}
	if got != nil {
		t.Fatalf("Get should return nil, got=%v", got)
	}
}

func TestArticleRepo_GetByLink(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	want := sampleArticle()
	mock.ExpectQuery("FROM articles").
		WithArgs("u1", want.Link).
		WillReturnRows(articleRow(want))

	repo := pg.NewArticleRepo(db)
	got, err := repo.GetByLink(context.Background(), "u1", want.Link)
	if err != nil {
		t.Fatalf("GetByLink err=%v", err)
	}
	if got == nil || got.ID != want.ID {
		t.Fatalf("GetByLink mismatch, got=%v", got)
	}
}

func TestArticleRepo_List(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("FROM articles").WithArgs("u1").WillReturnRows(articleRow(sampleArticle()))

	repo := pg.NewArticleRepo(db)
	got, err := repo.List(context.Background(), "u1")
	if err != nil || len(got) != 1 {
		t.Fatalf("List err=%v len=%d", err, len(got))
	}
}

func TestArticleRepo_ListPaginated(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("FROM articles").
		WithArgs("u1", 10, 20).
		WillReturnRows(articleRow(sampleArticle()))

	repo := pg.NewArticleRepo(db)
	got, err := repo.ListPaginated(context.Background(), "u1", 20, 10)
	if err != nil || len(got) != 1 {
		t.Fatalf("ListPaginated err=%v len=%d", err, len(got))
	}
}

func TestArticleRepo_Count(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM articles")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	repo := pg.NewArticleRepo(db)
	count, err := repo.Count(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Count err=%v", err)
	}
	if count != 42 {
		t.Errorf("Count = %d, want 42", count)
	}
}

func TestArticleRepo_Search(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("FROM articles").
		WithArgs("u1", "%go%").
		WillReturnRows(sqlmock.NewRows(articleColumnNames))

	repo := pg.NewArticleRepo(db)
	if _, err := repo.Search(context.Background(), "u1", []string{"go"}, repository.ArticleSearchFilters{}); err != nil {
		t.Fatalf("Search err=%v", err)
	}
}

func TestArticleRepo_Search_WithTopicFilter(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	topicID := int64(5)
	mock.ExpectQuery("FROM articles").
		WithArgs("u1", "%ekonomi%", topicID).
		WillReturnRows(articleRow(sampleArticle()))

	repo := pg.NewArticleRepo(db)
	got, err := repo.Search(context.Background(), "u1", []string{"ekonomi"}, repository.ArticleSearchFilters{TopicID: &topicID})
	if err != nil {
		t.Fatalf("Search err=%v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 article, got %d", len(got))
	}
}

func TestArticleRepo_Create(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO articles")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	repo := pg.NewArticleRepo(db)
	article := sampleArticle()
	article.ID = 0
	if err := repo.Create(context.Background(), article); err != nil {
		t.Fatalf("Create err=%v", err)
	}
	if article.ID != 1 {
		t.Errorf("Create should set ID, got %d", article.ID)
	}
}

func TestArticleRepo_Update(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec("UPDATE articles").WillReturnResult(sqlmock.NewResult(0, 1))

	repo := pg.NewArticleRepo(db)
	if err := repo.Update(context.Background(), sampleArticle()); err != nil {
		t.Fatalf("Update err=%v", err)
	}
}

func TestArticleRepo_Update_NoRowsAffected(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec("UPDATE articles").WillReturnResult(sqlmock.NewResult(0, 0))

	repo := pg.NewArticleRepo(db)
	if err := repo.Update(context.Background(), sampleArticle()); err == nil {
		t.Fatal("Update should fail when no rows affected")
	}
}

func TestArticleRepo_UpdateMatchedTopicIDs(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec("UPDATE articles SET matched_topic_ids").WillReturnResult(sqlmock.NewResult(0, 1))

	repo := pg.NewArticleRepo(db)
	if err := repo.UpdateMatchedTopicIDs(context.Background(), "u1", "https://example.com/a", []int64{2, 9}); err != nil {
		t.Fatalf("UpdateMatchedTopicIDs err=%v", err)
	}
}

func TestArticleRepo_UpdateMatchedTopicIDs_NoRowsAffected(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec("UPDATE articles SET matched_topic_ids").WillReturnResult(sqlmock.NewResult(0, 0))

	repo := pg.NewArticleRepo(db)
	if err := repo.UpdateMatchedTopicIDs(context.Background(), "u1", "https://example.com/a", []int64{2, 9}); err == nil {
		t.Fatal("UpdateMatchedTopicIDs should fail when no rows affected")
	}
}

func TestArticleRepo_Delete(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec("DELETE FROM articles").
		WithArgs("u1", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := pg.NewArticleRepo(db)
	if err := repo.Delete(context.Background(), "u1", 1); err != nil {
		t.Fatalf("Delete err=%v", err)
	}
}

func TestArticleRepo_ExistsByLinkBatch(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	links := []string{"https://a", "https://b"}
	mock.ExpectQuery("FROM articles").
		WithArgs("u1", pq.Array(links)).
		WillReturnRows(sqlmock.NewRows([]string{"link"}).AddRow("https://a"))

	repo := pg.NewArticleRepo(db)
	got, err := repo.ExistsByLinkBatch(context.Background(), "u1", links)
	if err != nil {
		t.Fatalf("ExistsByLinkBatch err=%v", err)
	}
	if !got["https://a"] || got["https://b"] {
		t.Errorf("ExistsByLinkBatch = %v, want only https://a present", got)
	}
}

func TestArticleRepo_ExistsByLinkBatch_EmptyInput(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	repo := pg.NewArticleRepo(db)
	got, err := repo.ExistsByLinkBatch(context.Background(), "u1", nil)
	if err != nil {
		t.Fatalf("ExistsByLinkBatch err=%v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty map, got %v", got)
	}
}

func TestArticleRepo_ListPendingDecode(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("url_decoded = FALSE")).
		WithArgs("u1", 50).
		WillReturnRows(articleRow(sampleArticle()))

	repo := pg.NewArticleRepo(db)
	got, err := repo.ListPendingDecode(context.Background(), "u1", 50)
	if err != nil || len(got) != 1 {
		t.Fatalf("ListPendingDecode err=%v len=%d", err, len(got))
	}
}

func TestArticleRepo_ListPendingAnalyze(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("ai_processed = FALSE")).
		WithArgs("u1", 50).
		WillReturnRows(articleRow(sampleArticle()))

	repo := pg.NewArticleRepo(db)
	got, err := repo.ListPendingAnalyze(context.Background(), "u1", 50)
	if err != nil || len(got) != 1 {
		t.Fatalf("ListPendingAnalyze err=%v len=%d", err, len(got))
	}
}

func TestArticleRepo_ListRetryEligible(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	aiErr := "llm: timeout"
	retryable := sampleArticle()
	retryable.AIProcessed = true
	retryable.AIError = &aiErr

	mock.ExpectQuery(regexp.QuoteMeta("ai_error IS NOT NULL")).
		WithArgs("u1", 50).
		WillReturnRows(articleRow(retryable))

	repo := pg.NewArticleRepo(db)
	got, err := repo.ListRetryEligible(context.Background(), "u1", 50)
	if err != nil || len(got) != 1 {
		t.Fatalf("ListRetryEligible err=%v len=%d", err, len(got))
	}
	if got[0].AIError == nil {
		t.Error("ListRetryEligible returned an article without ai_error set")
	}
}

func TestArticleRepo_ListUserIDsWithPendingWork(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT user_id FROM articles")).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("u1").AddRow("u2"))

	repo := pg.NewArticleRepo(db)
	got, err := repo.ListUserIDsWithPendingWork(context.Background())
	if err != nil {
		t.Fatalf("ListUserIDsWithPendingWork err=%v", err)
	}
	if len(got) != 2 || got[0] != "u1" || got[1] != "u2" {
		t.Errorf("got = %v, want [u1 u2]", got)
	}
}

func TestArticleRepo_Counters(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	since := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs("u1", since).
		WillReturnRows(sqlmock.NewRows([]string{"analyzed", "failed", "pending_analyze", "pending_decode"}).
			AddRow(10, 2, 3, 1))

	repo := pg.NewArticleRepo(db)
	got, err := repo.Counters(context.Background(), "u1", since)
	if err != nil {
		t.Fatalf("Counters err=%v", err)
	}
	want := entity.ArticleCounters{Analyzed: 10, Failed: 2, PendingAnalyze: 3, PendingDecode: 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestArticleRepo_Get_DatabaseError(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("FROM articles").
		WithArgs("u1", int64(1)).
		WillReturnError(errors.New("connection lost"))

	repo := pg.NewArticleRepo(db)
	got, err := repo.Get(context.Background(), "u1", 1)
	if err == nil {
		t.Fatal("Get should return error for database error")
	}
	if got != nil {
		t.Errorf("Get should return nil on error, got=%v", got)
	}
}

func TestArticleRepo_List_ScanError(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("FROM articles").WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(articleColumnNames).AddRow(
			"invalid", "u1", "link", "rss", "t", "s", "p", "pu", "ph", nil,
			pq.Array([]int64{}), nil, false, false, false, nil, nil, nil, nil, nil,
			pq.Array([]string{}), nil, time.Now(), time.Now(),
		))

	repo := pg.NewArticleRepo(db)
	got, err := repo.List(context.Background(), "u1")
	if err == nil {
		t.Fatal("List should return error for scan error")
	}
	if got != nil {
		t.Errorf("List should return nil on error, got=%v", got)
	}
}
