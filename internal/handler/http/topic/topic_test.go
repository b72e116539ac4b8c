package topic_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/handler/http/topic"
)

// stubTopicRepo implements repository.TopicRepository. Only the methods
// exercised by the handlers under test carry real behavior; the rest are
// implemented to satisfy the interface but unused here.
type stubTopicRepo struct {
	topics  map[int64]*entity.Topic
	nextID  int64
	created *entity.Topic
	updated *entity.Topic
	deleted bool
	listErr error
}

func newStubTopicRepo() *stubTopicRepo {
	return &stubTopicRepo{topics: map[int64]*entity.Topic{}, nextID: 1}
}

func (r *stubTopicRepo) Get(ctx context.Context, userID string, id int64) (*entity.Topic, error) {
	t, ok := r.topics[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return t, nil
}

func (r *stubTopicRepo) List(ctx context.Context, userID string) ([]*entity.Topic, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]*entity.Topic, 0, len(r.topics))
	for _, t := range r.topics {
		out = append(out, t)
	}
	return out, nil
}

// 以下は未使用だが、インターフェースを満たすために実装
func (r *stubTopicRepo) ListEnabledWithKeywords(ctx context.Context) ([]*entity.Topic, error) {
	return nil, nil
}

func (r *stubTopicRepo) Create(ctx context.Context, t *entity.Topic) error {
	t.ID = r.nextID
	r.nextID++
	r.topics[t.ID] = t
	r.created = t
	return nil
}

func (r *stubTopicRepo) Update(ctx context.Context, t *entity.Topic) error {
	r.topics[t.ID] = t
	r.updated = t
	return nil
}

func (r *stubTopicRepo) Delete(ctx context.Context, userID string, id int64) error {
	delete(r.topics, id)
	r.deleted = true
	return nil
}

func (r *stubTopicRepo) TouchFetchedAt(ctx context.Context, id int64, fetchedAt time.Time) error {
	return nil
}

func TestListHandler_Success(t *testing.T) {
	repo := newStubTopicRepo()
	repo.topics[1] = &entity.Topic{ID: 1, UserID: "alice@example.com", Name: "tech", Keywords: []string{"ai"}, Enabled: true}

	req := httptest.NewRequest(http.MethodGet, "/topics", nil)
	rr := httptest.NewRecorder()

	topic.ListHandler{Topics: repo}.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	var got []topic.DTO
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got) != 1 || got[0].Name != "tech" {
		t.Errorf("got %+v, want one topic named tech", got)
	}
}

func TestListHandler_Error(t *testing.T) {
	repo := newStubTopicRepo()
	repo.listErr = entity.ErrNotFound

	req := httptest.NewRequest(http.MethodGet, "/topics", nil)
	rr := httptest.NewRecorder()

	topic.ListHandler{Topics: repo}.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusInternalServerError)
	}
}

func TestCreateHandler_Success(t *testing.T) {
	repo := newStubTopicRepo()
	body := bytes.NewBufferString(`{"name":"golang","keywords":["golang","go 1.x"]}`)

	req := httptest.NewRequest(http.MethodPost, "/topics", body)
	rr := httptest.NewRecorder()

	topic.CreateHandler{Topics: repo}.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d, body=%s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	if repo.created == nil || repo.created.Name != "golang" {
		t.Errorf("repo.created = %+v, want name=golang", repo.created)
	}
	if !repo.created.Enabled {
		t.Errorf("expected a new topic to default to enabled")
	}
}

func TestCreateHandler_InvalidInput(t *testing.T) {
	repo := newStubTopicRepo()
	body := bytes.NewBufferString(`{"name":""}`)

	req := httptest.NewRequest(http.MethodPost, "/topics", body)
	rr := httptest.NewRecorder()

	topic.CreateHandler{Topics: repo}.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestUpdateHandler_NotFound(t *testing.T) {
	repo := newStubTopicRepo()
	body := bytes.NewBufferString(`{"name":"x"}`)

	req := httptest.NewRequest(http.MethodPut, "/topics/99", body)
	rr := httptest.NewRecorder()

	topic.UpdateHandler{Topics: repo}.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestDeleteHandler_Success(t *testing.T) {
	repo := newStubTopicRepo()
	repo.topics[1] = &entity.Topic{ID: 1, Name: "x"}

	req := httptest.NewRequest(http.MethodDelete, "/topics/1", nil)
	rr := httptest.NewRecorder()

	topic.DeleteHandler{Topics: repo}.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNoContent)
	}
	if !repo.deleted {
		t.Errorf("expected Delete to be called")
	}
}

func TestDeleteHandler_InvalidID(t *testing.T) {
	repo := newStubTopicRepo()

	req := httptest.NewRequest(http.MethodDelete, "/topics/not-a-number", nil)
	rr := httptest.NewRecorder()

	topic.DeleteHandler{Topics: repo}.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
