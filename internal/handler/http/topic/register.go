// Package topic exposes per-user Topic keyword bundles over HTTP (spec §3
// data model, §6 external interfaces). Grounded on the teacher's
// internal/handler/http/source package: same register/list/create/update/delete
// handler-per-file layout, swapped from a single shared Source resource to
// a per-user Topic resource scoped by auth.UserFromContext.
package topic

import (
	"net/http"

	"catchup-feed/internal/handler/http/auth"
	"catchup-feed/internal/repository"
)

// Register registers Topic CRUD handlers with mux. All routes require
// authentication: topics are per-user configuration, not public data.
func Register(mux *http.ServeMux, topics repository.TopicRepository) {
	mux.Handle("GET    /topics", auth.Authz(ListHandler{Topics: topics}))
	mux.Handle("POST   /topics", auth.Authz(CreateHandler{Topics: topics}))
	mux.Handle("PUT    /topics/", auth.Authz(UpdateHandler{Topics: topics}))
	mux.Handle("DELETE /topics/", auth.Authz(DeleteHandler{Topics: topics}))
}
