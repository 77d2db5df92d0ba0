package jobrun

import (
	"context"
	"time"
)

// Repository persists JobRun rows and answers the idempotency questions the
// Job Runtime needs before starting work.
type Repository interface {
	HasRunning(ctx context.Context, jobName string, jobKey *string) (bool, error)
	WasRecentlySuccessful(ctx context.Context, jobName string, jobKey *string, window time.Duration) (bool, error)
	Insert(ctx context.Context, run JobRun) error
	MarkSuccess(ctx context.Context, id string, endedAt time.Time) error
	MarkFailed(ctx context.Context, id string, endedAt time.Time, errMessage string) error
	// ListOrphaned returns rows still StatusRunning with StartedAt older than olderThan.
	ListOrphaned(ctx context.Context, olderThan time.Time) ([]JobRun, error)
	// LastSuccessByJobName returns the most recent successful run per job
	// name, for the health endpoint.
	LastSuccessByJobName(ctx context.Context) (map[string]JobRun, error)
	RecentKeys(ctx context.Context, limit int) ([]JobRun, error)
}
