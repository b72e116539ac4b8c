package feed

import (
	"encoding/json"
	"errors"
	"net/http"

	"catchup-feed/internal/handler/http/auth"
	"catchup-feed/internal/handler/http/pathutil"
	"catchup-feed/internal/handler/http/respond"
	"catchup-feed/internal/repository"
)

type UpdateHandler struct{ Feeds repository.FeedRepository }

// @Summary      Update feed
// @Tags         feeds
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path int true "feed id"
// @Param        feed body object true "feed"
// @Success      200 {object} DTO
// @Failure      404 {string} string "not found"
// @Router       /feeds/{id} [put]
func (h UpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/feeds/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	userID := auth.UserFromContext(r.Context())

	existing, err := h.Feeds.Get(r.Context(), userID, id)
	if err != nil {
		respond.SafeError(w, http.StatusNotFound, errors.New("feed not found"))
		return
	}

	var req struct {
		Name    string `json:"name"`
		URL     string `json:"url"`
		Enabled *bool  `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	existing.Name = req.Name
	existing.URL = req.URL
	if req.Enabled != nil {
		existing.Enabled = *req.Enabled
	}

	if err := existing.Validate(); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.Feeds.Update(r.Context(), existing); err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(existing))
}
