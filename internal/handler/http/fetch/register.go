// Package fetch exposes the auto-fetch scheduler's manual and
// visibility-based triggers over HTTP (spec §4.11 Triggers), alongside a
// status endpoint reporting next_fetch_at. Both triggers call the same
// scheduler.Scheduler.PerformFetch entry point the worker's cron and mount
// triggers use — per the spec's explicit "implementers must not duplicate
// the pipeline" note, no pipeline logic is re-implemented here.
package fetch

import (
	"net/http"

	"catchup-feed/internal/handler/http/auth"
	"catchup-feed/internal/usecase/scheduler"
)

// Register registers the manual-trigger and status endpoints with mux.
func Register(mux *http.ServeMux, sched *scheduler.Scheduler) {
	mux.Handle("POST /fetch/trigger", auth.Authz(TriggerHandler{Scheduler: sched}))
	mux.Handle("GET  /fetch/status", auth.Authz(StatusHandler{Scheduler: sched}))
}
