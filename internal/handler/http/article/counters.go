package article

import (
	"net/http"
	"time"

	"catchup-feed/internal/handler/http/auth"
	"catchup-feed/internal/handler/http/respond"
	"catchup-feed/internal/repository"
)

// countersWindow bounds the KPI counters to a recent rolling window so the
// dashboard reflects current pipeline health rather than all-time totals.
const countersWindow = 30 * 24 * time.Hour

type CountersHandler struct{ Articles repository.ArticleRepository }

// ServeHTTP returns the aggregated KPI counters — the user-visible failure
// surface per spec §7 ("the aggregated KPI counters (failed, pending) and
// the ai_error column").
//
// @Summary      Article KPI counters
// @Tags         articles
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} CountersDTO
// @Router       /articles/counters [get]
func (h CountersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserFromContext(r.Context())
	counters, err := h.Articles.Counters(r.Context(), userID, time.Now().Add(-countersWindow))
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, toCountersDTO(counters))
}
