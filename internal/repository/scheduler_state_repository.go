package repository

import (
	"context"

	"catchup-feed/internal/domain/entity"
)

// SchedulerStateRepository persists the auto-fetch scheduler's single state
// row (spec §4.11). Global, not per-user: there is exactly one scheduler
// loop for the whole process.
type SchedulerStateRepository interface {
	// Get returns the current state, seeded to {LastFetchAt: nil, Status:
	// idle} by the migration's initial insert.
	Get(ctx context.Context) (entity.SchedulerState, error)
	// Update overwrites the state row.
	Update(ctx context.Context, state entity.SchedulerState) error
}
