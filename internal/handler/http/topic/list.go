package topic

import (
	"net/http"

	"catchup-feed/internal/handler/http/auth"
	"catchup-feed/internal/handler/http/respond"
	"catchup-feed/internal/repository"
)

type ListHandler struct{ Topics repository.TopicRepository }

// ServeHTTP lists every topic owned by the authenticated user.
//
// @Summary      List topics
// @Tags         topics
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array} DTO
// @Failure      401 {string} string "unauthorized"
// @Failure      500 {string} string "internal server error"
// @Router       /topics [get]
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserFromContext(r.Context())
	list, err := h.Topics.List(r.Context(), userID)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]DTO, 0, len(list))
	for _, t := range list {
		out = append(out, toDTO(t))
	}
	respond.JSON(w, http.StatusOK, out)
}
