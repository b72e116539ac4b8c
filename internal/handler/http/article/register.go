// Package article exposes per-user ingested Article data over HTTP: list
// with multi-keyword search and topic/date filters, get, delete, and the
// KPI counters used for the user-visible failure surface (spec §7:
// "aggregated KPI counters (failed, pending) and the ai_error column").
// Grounded on the teacher's internal/handler/http/article package (deleted
// along with usecase/article during the domain rework), rebuilt directly
// against repository.ArticleRepository since there is no longer a
// dedicated article usecase layer — CRUD here is thin pass-through, the
// same shape the teacher's ArticleRepository-backed service had.
package article

import (
	"net/http"

	"catchup-feed/internal/common/pagination"
	"catchup-feed/internal/handler/http/auth"
	"catchup-feed/internal/handler/http/middleware"
	"catchup-feed/internal/repository"
)

// Register registers Article read/delete handlers and the KPI counters
// endpoint with mux. Search is rate-limited like the teacher's source
// search endpoint, since multi-keyword ILIKE search is the most expensive
// query this service exposes. The plain (non-keyword) list path paginates
// with the teacher's internal/common/pagination framework.
func Register(mux *http.ServeMux, articles repository.ArticleRepository, paginationCfg pagination.Config, searchRateLimiter *middleware.RateLimiter) {
	mux.Handle("GET    /articles", auth.Authz(searchRateLimiter.Middleware(ListHandler{Articles: articles, Pagination: paginationCfg})))
	mux.Handle("GET    /articles/counters", auth.Authz(CountersHandler{Articles: articles}))
	mux.Handle("DELETE /articles/", auth.Authz(DeleteHandler{Articles: articles}))
}
