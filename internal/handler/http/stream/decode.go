package stream

import (
	"net/http"

	"catchup-feed/internal/handler/http/auth"
	"catchup-feed/internal/handler/http/respond"
	"catchup-feed/internal/usecase/decode"
)

type DecodeHandler struct{ Decoder *decode.Engine }

type decodeEventDTO struct {
	Type    string `json:"type"`
	Decoded int    `json:"decoded"`
	Failed  int    `json:"failed"`
	Total   int    `json:"total"`
}

// ServeHTTP streams URL-decode progress for the authenticated user's
// pending-decode backlog (spec §4.9) over server-sent events.
//
// @Summary      Stream URL-decode progress
// @Tags         stream
// @Security     BearerAuth
// @Produce      text/event-stream
// @Success      200 {string} string "text/event-stream"
// @Router       /stream/decode [get]
func (h DecodeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sse, ok := newWriter(w)
	if !ok {
		respond.SafeError(w, http.StatusInternalServerError, errStreamingUnsupported)
		return
	}

	userID := auth.UserFromContext(r.Context())
	err := h.Decoder.Run(r.Context(), userID, func(e decode.Event) {
		sse.send(decodeEventDTO{
			Type:    string(e.Type),
			Decoded: e.Decoded,
			Failed:  e.Failed,
			Total:   e.Total,
		})
	})
	if err != nil {
		sse.sendError(err)
	}
}
