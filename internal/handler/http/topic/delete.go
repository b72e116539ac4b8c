package topic

import (
	"net/http"

	"catchup-feed/internal/handler/http/auth"
	"catchup-feed/internal/handler/http/pathutil"
	"catchup-feed/internal/handler/http/respond"
	"catchup-feed/internal/repository"
)

type DeleteHandler struct{ Topics repository.TopicRepository }

// ServeHTTP deletes a topic owned by the authenticated user. The
// repository strips the deleted id out of every article's
// matched_topic_ids in the same transaction (spec §6 datastore
// collaborator: remove_topic_from_articles stored procedure).
//
// @Summary      Delete topic
// @Tags         topics
// @Security     BearerAuth
// @Param        id path int true "topic id"
// @Success      204 "No Content"
// @Failure      400 {string} string "invalid id"
// @Router       /topics/{id} [delete]
func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/topics/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	userID := auth.UserFromContext(r.Context())
	if err := h.Topics.Delete(r.Context(), userID, id); err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
