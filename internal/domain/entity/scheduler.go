package entity

import "time"

// SchedulerStatus is the auto-fetch scheduler's current phase (spec §4.11).
type SchedulerStatus string

const (
	SchedulerIdle      SchedulerStatus = "idle"
	SchedulerFetching  SchedulerStatus = "fetching"
	SchedulerDecoding  SchedulerStatus = "decoding"
	SchedulerAnalyzing SchedulerStatus = "analyzing"
	SchedulerSuccess   SchedulerStatus = "success"
	SchedulerError     SchedulerStatus = "error"
)

// SchedulerState is the single persisted row backing the auto-fetch
// scheduler's single-writer contract: LastFetchAt survives a process
// restart so NextFetchAt can be recomputed correctly.
type SchedulerState struct {
	LastFetchAt *time.Time
	Status      SchedulerStatus
}

// NextFetchAt returns LastFetchAt plus the fetch interval, or the zero
// value if the scheduler has never run (spec §4.11 point 5).
func (s SchedulerState) NextFetchAt() time.Time {
	if s.LastFetchAt == nil {
		return time.Time{}
	}
	return s.LastFetchAt.Add(time.Hour)
}
