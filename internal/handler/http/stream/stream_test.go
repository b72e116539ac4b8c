package stream_test

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/handler/http/stream"
	"catchup-feed/internal/infra/crawler"
	"catchup-feed/internal/infra/httpclient"
	"catchup-feed/internal/infra/llm"
	"catchup-feed/internal/infra/urlcodec"
	"catchup-feed/internal/repository"
	"catchup-feed/internal/resilience/circuitbreaker"
	"catchup-feed/internal/resilience/retry"
	"catchup-feed/internal/usecase/analyze"
	"catchup-feed/internal/usecase/decode"
)

// emptyArticleRepo implements repository.ArticleRepository with every list
// method returning no rows, so the stream engines under test drain
// immediately without needing a live decoder/crawler/LLM collaborator.
type emptyArticleRepo struct{}

func (emptyArticleRepo) Get(ctx context.Context, userID string, id int64) (*entity.Article, error) {
	return nil, entity.ErrNotFound
}
func (emptyArticleRepo) List(ctx context.Context, userID string) ([]*entity.Article, error) {
	return nil, nil
}
func (emptyArticleRepo) ListPaginated(ctx context.Context, userID string, offset, limit int) ([]*entity.Article, error) {
	return nil, nil
}
func (emptyArticleRepo) Count(ctx context.Context, userID string) (int64, error) { return 0, nil }
func (emptyArticleRepo) Search(ctx context.Context, userID string, keywords []string, filters repository.ArticleSearchFilters) ([]*entity.Article, error) {
	return nil, nil
}
func (emptyArticleRepo) GetByLink(ctx context.Context, userID string, link string) (*entity.Article, error) {
	return nil, nil
}
func (emptyArticleRepo) ExistsByLinkBatch(ctx context.Context, userID string, links []string) (map[string]bool, error) {
	return nil, nil
}
func (emptyArticleRepo) Create(ctx context.Context, a *entity.Article) error { return nil }
func (emptyArticleRepo) Update(ctx context.Context, a *entity.Article) error { return nil }
func (emptyArticleRepo) UpdateMatchedTopicIDs(ctx context.Context, userID, link string, ids []int64) error {
	return nil
}
func (emptyArticleRepo) Delete(ctx context.Context, userID string, id int64) error { return nil }
func (emptyArticleRepo) ListPendingDecode(ctx context.Context, userID string, limit int) ([]*entity.Article, error) {
	return nil, nil
}
func (emptyArticleRepo) ListPendingAnalyze(ctx context.Context, userID string, limit int) ([]*entity.Article, error) {
	return nil, nil
}
func (emptyArticleRepo) ListRetryEligible(ctx context.Context, userID string, limit int) ([]*entity.Article, error) {
	return nil, nil
}
func (emptyArticleRepo) ListUserIDsWithPendingWork(ctx context.Context) ([]string, error) {
	return nil, nil
}
func (emptyArticleRepo) Counters(ctx context.Context, userID string, since time.Time) (entity.ArticleCounters, error) {
	return entity.ArticleCounters{}, nil
}

// emptyCache implements repository.URLCacheRepository with no entries.
type emptyCache struct{}

func (emptyCache) Get(ctx context.Context, id string) (*entity.URLCacheEntry, error) {
	return nil, nil
}
func (emptyCache) GetBatch(ctx context.Context, ids []string) (map[string]string, error) {
	return map[string]string{}, nil
}
func (emptyCache) Put(ctx context.Context, entry entity.URLCacheEntry) error { return nil }

func readSSEFrames(t *testing.T, body string) []string {
	t.Helper()
	var frames []string
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "data: ") {
			frames = append(frames, strings.TrimPrefix(line, "data: "))
		}
	}
	return frames
}

func TestDecodeHandler_EmptyBacklogEmitsComplete(t *testing.T) {
	client := httpclient.New("test-decode", circuitbreaker.AggregatorConfig(), retry.AggregatorConfig())
	decoder := urlcodec.New(client, emptyCache{})
	engine := decode.New(emptyArticleRepo{}, emptyCache{}, decoder)

	req := httptest.NewRequest(http.MethodGet, "/stream/decode", nil)
	rr := httptest.NewRecorder()

	stream.DecodeHandler{Decoder: engine}.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}
	frames := readSSEFrames(t, rr.Body.String())
	if len(frames) != 1 || !strings.Contains(frames[0], `"type":"complete"`) {
		t.Errorf("frames = %v, want a single complete event", frames)
	}
}

// blockingArticleRepo lets a test hold an analyze.Engine.Run call open
// (inside ListPendingAnalyze) so a second concurrent call for the same
// user can be observed hitting the already-running guard.
type blockingArticleRepo struct {
	emptyArticleRepo
	entered chan struct{}
	release chan struct{}
}

func (r blockingArticleRepo) ListPendingAnalyze(ctx context.Context, userID string, limit int) ([]*entity.Article, error) {
	close(r.entered)
	<-r.release
	return nil, nil
}

func TestAnalyzeHandler_AlreadyRunningIsNoOp(t *testing.T) {
	repo := blockingArticleRepo{entered: make(chan struct{}), release: make(chan struct{})}
	engine := analyze.New(repo, crawler.NewClient("http://127.0.0.1:0"), llm.NewClient("", "test-key", "test-model"))

	go func() {
		req := httptest.NewRequest(http.MethodGet, "/stream/analyze", nil)
		stream.AnalyzeHandler{Analyzer: engine}.ServeHTTP(httptest.NewRecorder(), req)
	}()
	<-repo.entered

	req := httptest.NewRequest(http.MethodGet, "/stream/analyze", nil)
	rr := httptest.NewRecorder()
	stream.AnalyzeHandler{Analyzer: engine}.ServeHTTP(rr, req)
	close(repo.release)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	frames := readSSEFrames(t, rr.Body.String())
	if len(frames) != 1 || !strings.Contains(frames[0], `"type":"already_running"`) {
		t.Errorf("frames = %v, want a single already_running event", frames)
	}
}

func TestAnalyzeHandler_EmptyBacklogEmitsComplete(t *testing.T) {
	engine := analyze.New(emptyArticleRepo{}, crawler.NewClient("http://127.0.0.1:0"), llm.NewClient("", "test-key", "test-model"))

	req := httptest.NewRequest(http.MethodGet, "/stream/analyze", nil)
	rr := httptest.NewRecorder()

	stream.AnalyzeHandler{Analyzer: engine}.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	frames := readSSEFrames(t, rr.Body.String())
	if len(frames) != 1 || !strings.Contains(frames[0], `"type":"complete"`) {
		t.Errorf("frames = %v, want a single complete event", frames)
	}
}
