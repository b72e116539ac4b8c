package fetch

import (
	"net/http"
	"time"

	"catchup-feed/internal/handler/http/respond"
	"catchup-feed/internal/usecase/scheduler"
)

type StatusHandler struct{ Scheduler *scheduler.Scheduler }

type statusDTO struct {
	NextFetchAt time.Time `json:"next_fetch_at"`
}

// ServeHTTP reports when the next automatic fetch is due (spec §4.11 point
// 5: next_fetch_at is derived, not stored).
//
// @Summary      Auto-fetch schedule status
// @Tags         fetch
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} statusDTO
// @Router       /fetch/status [get]
func (h StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	next, err := h.Scheduler.NextFetchAt(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, statusDTO{NextFetchAt: next})
}
