package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// errStreamingUnsupported is returned when the ResponseWriter doesn't
// support flushing (shouldn't happen with net/http's server, but guards
// against being wrapped by a buffering middleware).
var errStreamingUnsupported = errors.New("streaming unsupported")

// writer wraps an http.ResponseWriter configured for server-sent events and
// flushes after every frame, so the client sees progress incrementally
// rather than buffered until the connection closes.
type writer struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newWriter(w http.ResponseWriter) (*writer, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, false
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	return &writer{w: w, flusher: flusher}, true
}

func (s *writer) send(v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal SSE event", slog.Any("error", err))
		return
	}
	fmt.Fprintf(s.w, "data: %s\n\n", payload)
	s.flusher.Flush()
}

// errorEvent is the SSE error shape for a stream that cannot start at all
// (spec §6: event shapes include "error"). Per-article failures inside a
// running stream are accounted for by the engines' own progress/complete
// events instead (spec §7's "stream engines convert errors into
// per-article accounting").
type errorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (s *writer) sendError(err error) {
	s.send(errorEvent{Type: "error", Message: err.Error()})
}
