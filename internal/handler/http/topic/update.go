package topic

import (
	"encoding/json"
	"errors"
	"net/http"

	"catchup-feed/internal/handler/http/auth"
	"catchup-feed/internal/handler/http/pathutil"
	"catchup-feed/internal/handler/http/respond"
	"catchup-feed/internal/repository"
)

type UpdateHandler struct{ Topics repository.TopicRepository }

// ServeHTTP updates a topic owned by the authenticated user.
//
// @Summary      Update topic
// @Tags         topics
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path int true "topic id"
// @Param        topic body object true "topic"
// @Success      200 {object} DTO
// @Failure      400 {string} string "invalid input"
// @Failure      404 {string} string "not found"
// @Router       /topics/{id} [put]
func (h UpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/topics/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	userID := auth.UserFromContext(r.Context())

	existing, err := h.Topics.Get(r.Context(), userID, id)
	if err != nil {
		respond.SafeError(w, http.StatusNotFound, errors.New("topic not found"))
		return
	}

	var req struct {
		Name     string   `json:"name"`
		Keywords []string `json:"keywords"`
		Enabled  *bool    `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	existing.Name = req.Name
	existing.Keywords = req.Keywords
	if req.Enabled != nil {
		existing.Enabled = *req.Enabled
	}

	if err := existing.Validate(); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.Topics.Update(r.Context(), existing); err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(existing))
}
