package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/repository"
)

type SchedulerStateRepo struct{ db *sql.DB }

func NewSchedulerStateRepo(db *sql.DB) repository.SchedulerStateRepository {
	return &SchedulerStateRepo{db: db}
}

func (repo *SchedulerStateRepo) Get(ctx context.Context) (entity.SchedulerState, error) {
	const query = `SELECT last_fetch_at, status FROM scheduler_state WHERE id = 1`
	var state entity.SchedulerState
	var status string
	err := repo.db.QueryRowContext(ctx, query).Scan(&state.LastFetchAt, &status)
	if err != nil {
		return entity.SchedulerState{}, fmt.Errorf("Get: %w", err)
	}
	state.Status = entity.SchedulerStatus(status)
	return state, nil
}

func (repo *SchedulerStateRepo) Update(ctx context.Context, state entity.SchedulerState) error {
	const query = `
UPDATE scheduler_state
SET last_fetch_at = $1, status = $2
WHERE id = 1`
	_, err := repo.db.ExecContext(ctx, query, state.LastFetchAt, string(state.Status))
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	return nil
}
