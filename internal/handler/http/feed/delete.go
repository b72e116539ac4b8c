package feed

import (
	"net/http"

	"catchup-feed/internal/handler/http/auth"
	"catchup-feed/internal/handler/http/pathutil"
	"catchup-feed/internal/handler/http/respond"
	"catchup-feed/internal/repository"
)

type DeleteHandler struct{ Feeds repository.FeedRepository }

// @Summary      Delete feed
// @Tags         feeds
// @Security     BearerAuth
// @Param        id path int true "feed id"
// @Success      204 "No Content"
// @Router       /feeds/{id} [delete]
func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/feeds/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	userID := auth.UserFromContext(r.Context())
	if err := h.Feeds.Delete(r.Context(), userID, id); err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
