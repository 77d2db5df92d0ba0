package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sharplineio/cardengine/internal/domain/jobrun"
	"github.com/sharplineio/cardengine/internal/platform/id"
	"github.com/sharplineio/cardengine/internal/platform/logging"
	"github.com/sharplineio/cardengine/internal/platform/resilience"
	"github.com/sharplineio/cardengine/internal/store"
)

// JobOutcome reports how a JobRuntime.Run call was resolved.
type JobOutcome struct {
	JobRunID string
	Skipped  string // "" | "already_running" | "idempotent"
	Success  bool
}

// JobRuntime enforces at-most-one-running-per-key and records every
// execution attempt as a JobRun row, the sole layer that translates a
// caller's error into a JobRun{status:failed,error_message}.
type JobRuntime struct {
	store          *store.Store
	ids            id.Generator
	logger         *logging.Logger
	singleFlight   *resilience.SingleFlight
	successWindow  time.Duration
}

func NewJobRuntime(st *store.Store, ids id.Generator, logger *logging.Logger, successWindow time.Duration) *JobRuntime {
	if successWindow <= 0 {
		successWindow = time.Hour
	}
	return &JobRuntime{
		store:         st,
		ids:           ids,
		logger:        logger,
		singleFlight:  &resilience.SingleFlight{},
		successWindow: successWindow,
	}
}

// Run executes fn under the job runtime's idempotency contract. jobKey, when
// non-nil, must match one of the documented job_key patterns for jobName;
// this is enforced by callers constructing keys via the helpers in
// job_key.go rather than checked here, matching how the teacher's dedup-key
// builders were the only place allowed to shape a key.
func (rt *JobRuntime) Run(ctx context.Context, jobName string, jobKey *string, fn func(context.Context, string) error) (JobOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "JobRuntime.Run:"+jobName)
	defer span.End()

	flightKey := jobName
	if jobKey != nil {
		flightKey = jobName + "|" + *jobKey
	}

	result, err, _ := rt.singleFlight.Do(flightKey, func() (any, error) {
		return rt.runOnce(ctx, jobName, jobKey, fn)
	})
	if err != nil {
		return JobOutcome{}, err
	}
	return result.(JobOutcome), nil
}

func (rt *JobRuntime) runOnce(ctx context.Context, jobName string, jobKey *string, fn func(context.Context, string) error) (JobOutcome, error) {
	running, err := rt.store.HasRunningJob(ctx, jobName, jobKey)
	if err != nil {
		return JobOutcome{}, fmt.Errorf("check running job: %w", err)
	}
	if running {
		return JobOutcome{Skipped: "already_running"}, nil
	}

	recentlyOK, err := rt.store.WasJobKeyRecentlySuccessful(ctx, jobName, jobKey, rt.successWindow)
	if err != nil {
		return JobOutcome{}, fmt.Errorf("check recent success: %w", err)
	}
	if recentlyOK {
		return JobOutcome{Skipped: "idempotent"}, nil
	}

	runID, err := rt.ids.NewID()
	if err != nil {
		return JobOutcome{}, fmt.Errorf("generate job run id: %w", err)
	}
	startedAt := time.Now().UTC()
	if err := rt.store.JobRuns.Insert(ctx, jobrun.JobRun{
		ID:        runID,
		JobName:   jobName,
		JobKey:    jobKey,
		Status:    jobrun.StatusRunning,
		StartedAt: startedAt,
	}); err != nil {
		return JobOutcome{}, fmt.Errorf("insert job run: %w", err)
	}

	runErr := fn(ctx, runID)
	endedAt := time.Now().UTC()
	if runErr != nil {
		if markErr := rt.store.JobRuns.MarkFailed(ctx, runID, endedAt, runErr.Error()); markErr != nil {
			rt.logger.ErrorContext(ctx, "job_run_mark_failed_error", "job_name", jobName, "error", markErr)
		}
		rt.logger.WarnContext(ctx, "job_run_failed", "job_name", jobName, "job_run_id", runID, "error", runErr)
		return JobOutcome{JobRunID: runID, Success: false}, runErr
	}

	if err := rt.store.JobRuns.MarkSuccess(ctx, runID, endedAt); err != nil {
		return JobOutcome{}, fmt.Errorf("mark job success: %w", err)
	}
	rt.logger.InfoContext(ctx, "job_run_succeeded", "job_name", jobName, "job_run_id", runID)
	return JobOutcome{JobRunID: runID, Success: true}, nil
}

// SweepOrphaned marks job_runs rows still "running" with StartedAt older
// than threshold as failed{reason:orphaned}, run once at process startup.
func (rt *JobRuntime) SweepOrphaned(ctx context.Context, threshold time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-threshold)
	orphaned, err := rt.store.JobRuns.ListOrphaned(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list orphaned job runs: %w", err)
	}

	now := time.Now().UTC()
	for _, run := range orphaned {
		if err := rt.store.JobRuns.MarkFailed(ctx, run.ID, now, "orphaned"); err != nil {
			rt.logger.ErrorContext(ctx, "orphan_sweep_mark_failed_error", "job_run_id", run.ID, "error", err)
			continue
		}
		rt.logger.WarnContext(ctx, "job_run_orphaned", "job_run_id", run.ID, "job_name", run.JobName)
	}
	return len(orphaned), nil
}
