// Package stream forwards the URL-decode and analyzer stream engines'
// progress events over server-sent events (spec §6: "decode and analyze
// each emit data: <json>\n\n lines with event shapes {type: "progress" |
// "complete" | "error", ...}"). New package — there is no teacher
// precedent for SSE, so this follows the standard library's
// http.Flusher-based streaming idiom alongside the project's existing
// respond.JSON conventions for the one-shot trigger/status endpoints
// nearby in internal/handler/http/scheduler.
package stream

import (
	"net/http"

	"catchup-feed/internal/handler/http/auth"
	"catchup-feed/internal/usecase/analyze"
	"catchup-feed/internal/usecase/decode"
)

// Register registers the SSE decode and analyze endpoints with mux.
func Register(mux *http.ServeMux, decoder *decode.Engine, analyzer *analyze.Engine) {
	mux.Handle("GET /stream/decode", auth.Authz(DecodeHandler{Decoder: decoder}))
	mux.Handle("GET /stream/analyze", auth.Authz(AnalyzeHandler{Analyzer: analyzer}))
}
