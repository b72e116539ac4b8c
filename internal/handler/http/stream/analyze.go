package stream

import (
	"errors"
	"net/http"
	"strconv"

	"catchup-feed/internal/handler/http/auth"
	"catchup-feed/internal/handler/http/respond"
	"catchup-feed/internal/usecase/analyze"
)

// defaultAnalyzeLimit bounds a manually-started analyze stream when the
// caller omits ?limit=, matching the scheduler's own per-user backlog
// query pattern rather than an unbounded run.
const defaultAnalyzeLimit = 100

type AnalyzeHandler struct{ Analyzer *analyze.Engine }

type analyzeEventDTO struct {
	Type     string `json:"type"`
	Analyzed int    `json:"analyzed"`
	Failed   int    `json:"failed"`
	Total    int    `json:"total"`
}

// ServeHTTP streams analyzer progress for the authenticated user's
// eligible backlog (spec §4.10) over server-sent events.
//
// @Summary      Stream analyzer progress
// @Tags         stream
// @Security     BearerAuth
// @Produce      text/event-stream
// @Param        limit query int false "max articles to analyze this run"
// @Success      200 {string} string "text/event-stream"
// @Router       /stream/analyze [get]
func (h AnalyzeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	limit := defaultAnalyzeLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	sse, ok := newWriter(w)
	if !ok {
		respond.SafeError(w, http.StatusInternalServerError, errStreamingUnsupported)
		return
	}

	userID := auth.UserFromContext(r.Context())
	err := h.Analyzer.Run(r.Context(), userID, limit, func(e analyze.Event) {
		sse.send(analyzeEventDTO{
			Type:     string(e.Type),
			Analyzed: e.Analyzed,
			Failed:   e.Failed,
			Total:    e.Total,
		})
	})
	if errors.Is(err, analyze.ErrAlreadyRunning) {
		// No-op per spec: analysis is already running for this user, don't
		// start a second stream.
		sse.send(analyzeEventDTO{Type: "already_running"})
		return
	}
	if err != nil {
		sse.sendError(err)
	}
}
