// Package scheduler implements the auto-fetch pipeline (spec §4.11): a
// single-writer state machine that drives ingestion, URL decoding, and AI
// analysis back-to-back on a process-local latch. Grounded on the teacher's
// internal/infra/worker cron-driven job shape, generalized from one
// "daily crawl" cron entry into the spec's mount/hourly/visibility/manual
// trigger model behind one shared performFetch entry point.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/infra/notifier"
	"catchup-feed/internal/repository"
	"catchup-feed/internal/usecase/analyze"
	"catchup-feed/internal/usecase/decode"
	"catchup-feed/internal/usecase/ingest"
	"catchup-feed/internal/usecase/notify"
)

// minGap is the minimum time between automatic runs, unless skipGapCheck is
// set (spec §4.11 point 1).
const minGap = 55 * time.Minute

// fetchInterval is the period next_fetch_at is derived from (spec §4.11
// point 5).
const fetchInterval = time.Hour

// pendingCountLimit bounds the "query current pending count" step in phase
// 3 (spec §4.11 point 4): a user backlog larger than this is analyzed over
// multiple scheduler runs instead of one unbounded pass.
const pendingCountLimit = 10_000

// Scheduler drives the auto-fetch pipeline under a single-process latch.
// Manual and automatic triggers share PerformFetch as their only entry
// point, per spec §4.11's "implementers must not duplicate the pipeline."
type Scheduler struct {
	orchestrator *ingest.Orchestrator
	decoder      *decode.Engine
	analyzer     *analyze.Engine
	articles     repository.ArticleRepository
	state        repository.SchedulerStateRepository
	notify       notify.Service

	fetching atomic.Bool
}

// New builds a Scheduler from its collaborators.
func New(
	orchestrator *ingest.Orchestrator,
	decoder *decode.Engine,
	analyzer *analyze.Engine,
	articles repository.ArticleRepository,
	state repository.SchedulerStateRepository,
	notifySvc notify.Service,
) *Scheduler {
	return &Scheduler{
		orchestrator: orchestrator,
		decoder:      decoder,
		analyzer:     analyzer,
		articles:     articles,
		state:        state,
		notify:       notifySvc,
	}
}

// Result summarizes one performFetch run, for logging and tests.
type Result struct {
	Ran      bool // false if the latch or gap check rejected this attempt
	Inserted int
	Skipped  int
	Decoded  int
	Analyzed int
	Errors   []error
}

// PerformFetch runs one full fetch/decode/analyze cycle, or returns
// immediately if another run is already in flight or the minimum gap since
// the last run hasn't elapsed. skipGapCheck is set by manual (explicit)
// triggers (spec §4.11 point 1 and Triggers).
func (s *Scheduler) PerformFetch(ctx context.Context, skipGapCheck bool) (Result, error) {
	if !s.fetching.CompareAndSwap(false, true) {
		return Result{Ran: false}, nil
	}
	defer s.fetching.Store(false)

	state, err := s.state.Get(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("get scheduler state: %w", err)
	}

	if !skipGapCheck && state.LastFetchAt != nil && time.Since(*state.LastFetchAt) < minGap {
		return Result{Ran: false}, nil
	}

	result := Result{Ran: true}

	if err := s.setStatus(ctx, &state, entity.SchedulerFetching); err != nil {
		return result, err
	}

	fetchErr := s.runFetchPhase(ctx, &state, &result)
	if fetchErr != nil {
		s.enterErrorState(ctx, &state, fetchErr)
		return result, nil
	}

	if err := s.setStatus(ctx, &state, entity.SchedulerDecoding); err != nil {
		return result, err
	}
	if err := s.runDecodePhase(ctx, &result); err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("decode phase: %w", err))
	}

	if err := s.setStatus(ctx, &state, entity.SchedulerAnalyzing); err != nil {
		return result, err
	}
	if err := s.runAnalyzePhase(ctx, &result); err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("analyze phase: %w", err))
	}

	now := time.Now()
	state.LastFetchAt = &now
	state.Status = entity.SchedulerSuccess
	if err := s.state.Update(ctx, state); err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("persist success state: %w", err))
	}

	return result, nil
}

// NextFetchAt reports when the next automatic run is due, derived from the
// persisted last_fetch_at (spec §4.11 point 5).
func (s *Scheduler) NextFetchAt(ctx context.Context) (time.Time, error) {
	state, err := s.state.Get(ctx)
	if err != nil {
		return time.Time{}, fmt.Errorf("get scheduler state: %w", err)
	}
	return state.NextFetchAt(), nil
}

// runFetchPhase implements spec §4.11 phase 1: aggregator then RSS via the
// shared ingest.Orchestrator, entering an error only if the pass produced no
// insertions, no skips (merges), and at least one error — i.e. every source
// failed entirely.
func (s *Scheduler) runFetchPhase(ctx context.Context, state *entity.SchedulerState, result *Result) error {
	fetchResult, err := s.orchestrator.Run(ctx)
	result.Inserted = fetchResult.Inserted
	result.Skipped = fetchResult.Skipped
	result.Errors = append(result.Errors, fetchResult.Errors...)
	if err != nil {
		return err
	}

	allSourcesFailed := fetchResult.Inserted == 0 && fetchResult.Skipped == 0 && len(fetchResult.Errors) > 0
	if allSourcesFailed {
		return fmt.Errorf("all ingestion sources failed: %w", fetchResult.Errors[0])
	}

	now := time.Now()
	state.LastFetchAt = &now
	if err := s.state.Update(ctx, *state); err != nil {
		return fmt.Errorf("persist last_fetch_at: %w", err)
	}
	return nil
}

// runDecodePhase implements spec §4.11 phase 2: drive decode to completion
// for every user with pending decode work.
func (s *Scheduler) runDecodePhase(ctx context.Context, result *Result) error {
	userIDs, err := s.articles.ListUserIDsWithPendingWork(ctx)
	if err != nil {
		return fmt.Errorf("list users with pending work: %w", err)
	}

	for _, userID := range userIDs {
		err := s.decoder.Run(ctx, userID, func(e decode.Event) {
			if e.Type == decode.EventComplete {
				result.Decoded += e.Decoded
			}
		})
		if err != nil {
			slog.Warn("decode phase failed for user", slog.String("user_id", userID), slog.Any("error", err))
			result.Errors = append(result.Errors, fmt.Errorf("decode user=%s: %w", userID, err))
		}
	}
	return nil
}

// runAnalyzePhase implements spec §4.11 phase 3: query the current pending
// count and drive analysis for that many articles, per user. If a given
// user's analysis is already running — e.g. an HTTP-triggered stream hit
// s.analyzer concurrently — s.analyzer.Run's own in-flight guard rejects
// the second start with analyze.ErrAlreadyRunning, which this phase treats
// as a no-op rather than a failure.
func (s *Scheduler) runAnalyzePhase(ctx context.Context, result *Result) error {
	userIDs, err := s.articles.ListUserIDsWithPendingWork(ctx)
	if err != nil {
		return fmt.Errorf("list users with pending work: %w", err)
	}

	for _, userID := range userIDs {
		pending, err := s.articles.ListPendingAnalyze(ctx, userID, pendingCountLimit)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("count pending analyze user=%s: %w", userID, err))
			continue
		}
		if len(pending) == 0 {
			continue
		}

		err = s.analyzer.Run(ctx, userID, len(pending), func(e analyze.Event) {
			if e.Type == analyze.EventComplete {
				result.Analyzed += e.Analyzed
			}
		})
		if errors.Is(err, analyze.ErrAlreadyRunning) {
			continue
		}
		if err != nil {
			slog.Warn("analyze phase failed for user", slog.String("user_id", userID), slog.Any("error", err))
			result.Errors = append(result.Errors, fmt.Errorf("analyze user=%s: %w", userID, err))
		}
	}
	return nil
}

func (s *Scheduler) setStatus(ctx context.Context, state *entity.SchedulerState, status entity.SchedulerStatus) error {
	state.Status = status
	if err := s.state.Update(ctx, *state); err != nil {
		return fmt.Errorf("persist status=%s: %w", status, err)
	}
	return nil
}

// enterErrorState persists status=error and raises an operational alert
// (spec §4.11 and §7's "the scheduler enters status=error only when the
// entire fetch phase produced nothing from all sources").
func (s *Scheduler) enterErrorState(ctx context.Context, state *entity.SchedulerState, cause error) {
	state.Status = entity.SchedulerError
	if err := s.state.Update(ctx, *state); err != nil {
		slog.Error("failed to persist scheduler error state", slog.Any("error", err))
	}

	slog.Error("auto-fetch scheduler entered error state", slog.Any("cause", cause))

	alert := notifier.AlertEvent{
		Title:      "Auto-fetch pipeline failed",
		Message:    cause.Error(),
		Severity:   notifier.SeverityError,
		Source:     "scheduler",
		OccurredAt: time.Now(),
	}
	if err := s.notify.NotifyAlert(ctx, alert); err != nil {
		slog.Error("failed to dispatch scheduler error alert", slog.Any("error", err))
	}
}
