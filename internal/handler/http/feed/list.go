package feed

import (
	"net/http"

	"catchup-feed/internal/handler/http/auth"
	"catchup-feed/internal/handler/http/respond"
	"catchup-feed/internal/repository"
)

type ListHandler struct{ Feeds repository.FeedRepository }

// @Summary      List feeds
// @Tags         feeds
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array} DTO
// @Router       /feeds [get]
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserFromContext(r.Context())
	list, err := h.Feeds.List(r.Context(), userID)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]DTO, 0, len(list))
	for _, f := range list {
		out = append(out, toDTO(f))
	}
	respond.JSON(w, http.StatusOK, out)
}
