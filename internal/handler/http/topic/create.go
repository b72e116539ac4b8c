package topic

import (
	"encoding/json"
	"net/http"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/handler/http/auth"
	"catchup-feed/internal/handler/http/respond"
	"catchup-feed/internal/repository"
)

type CreateHandler struct{ Topics repository.TopicRepository }

// ServeHTTP creates a topic for the authenticated user.
//
// @Summary      Create topic
// @Tags         topics
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        topic body object true "topic"
// @Success      201 {object} DTO
// @Failure      400 {string} string "invalid input"
// @Failure      401 {string} string "unauthorized"
// @Router       /topics [post]
func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string   `json:"name"`
		Keywords []string `json:"keywords"`
		Enabled  *bool    `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	topic := &entity.Topic{
		UserID:   auth.UserFromContext(r.Context()),
		Name:     req.Name,
		Keywords: req.Keywords,
		Enabled:  enabled,
	}
	if err := topic.Validate(); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.Topics.Create(r.Context(), topic); err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusCreated, toDTO(topic))
}
