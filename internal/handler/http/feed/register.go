// Package feed exposes per-user RSS/Atom Feed configuration over HTTP,
// mirroring internal/handler/http/topic's layout.
package feed

import (
	"net/http"

	"catchup-feed/internal/handler/http/auth"
	"catchup-feed/internal/repository"
)

// Register registers Feed CRUD handlers with mux.
func Register(mux *http.ServeMux, feeds repository.FeedRepository) {
	mux.Handle("GET    /feeds", auth.Authz(ListHandler{Feeds: feeds}))
	mux.Handle("POST   /feeds", auth.Authz(CreateHandler{Feeds: feeds}))
	mux.Handle("PUT    /feeds/", auth.Authz(UpdateHandler{Feeds: feeds}))
	mux.Handle("DELETE /feeds/", auth.Authz(DeleteHandler{Feeds: feeds}))
}
