package article

import (
	"net/http"

	"catchup-feed/internal/handler/http/auth"
	"catchup-feed/internal/handler/http/pathutil"
	"catchup-feed/internal/handler/http/respond"
	"catchup-feed/internal/repository"
)

type DeleteHandler struct{ Articles repository.ArticleRepository }

// @Summary      Delete article
// @Tags         articles
// @Security     BearerAuth
// @Param        id path int true "article id"
// @Success      204 "No Content"
// @Router       /articles/{id} [delete]
func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/articles/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	userID := auth.UserFromContext(r.Context())
	if err := h.Articles.Delete(r.Context(), userID, id); err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
