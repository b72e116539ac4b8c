package feed

import (
	"encoding/json"
	"net/http"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/handler/http/auth"
	"catchup-feed/internal/handler/http/respond"
	"catchup-feed/internal/repository"
)

type CreateHandler struct{ Feeds repository.FeedRepository }

// @Summary      Create feed
// @Tags         feeds
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        feed body object true "feed"
// @Success      201 {object} DTO
// @Failure      400 {string} string "invalid input"
// @Router       /feeds [post]
func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		URL     string `json:"url"`
		Enabled *bool  `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	feed := &entity.Feed{
		UserID:  auth.UserFromContext(r.Context()),
		Name:    req.Name,
		URL:     req.URL,
		Enabled: enabled,
	}
	if err := feed.Validate(); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.Feeds.Create(r.Context(), feed); err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusCreated, toDTO(feed))
}
