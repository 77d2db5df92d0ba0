package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sharplineio/cardengine/internal/domain/jobrun"
	"github.com/sharplineio/cardengine/internal/usecase"
)

type JobRunRepository struct {
	mu   sync.RWMutex
	byID map[string]jobrun.JobRun
}

func NewJobRunRepository() *JobRunRepository {
	return &JobRunRepository{byID: make(map[string]jobrun.JobRun)}
}

func keyOf(jobKey *string) string {
	if jobKey == nil {
		return ""
	}
	return *jobKey
}

func (r *JobRunRepository) HasRunning(_ context.Context, jobName string, jobKey *string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, run := range r.byID {
		if run.JobName == jobName && keyOf(run.JobKey) == keyOf(jobKey) && run.Status == jobrun.StatusRunning {
			return true, nil
		}
	}
	return false, nil
}

func (r *JobRunRepository) WasRecentlySuccessful(_ context.Context, jobName string, jobKey *string, window time.Duration) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cutoff := time.Now().UTC().Add(-window)
	for _, run := range r.byID {
		if run.JobName != jobName || keyOf(run.JobKey) != keyOf(jobKey) || run.Status != jobrun.StatusSuccess {
			continue
		}
		if run.EndedAt != nil && run.EndedAt.After(cutoff) {
			return true, nil
		}
	}
	return false, nil
}

func (r *JobRunRepository) Insert(_ context.Context, run jobrun.JobRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[run.ID]; ok {
		return usecase.ErrInvalidInput
	}
	r.byID[run.ID] = run
	return nil
}

func (r *JobRunRepository) MarkSuccess(_ context.Context, id string, endedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, ok := r.byID[id]
	if !ok {
		return usecase.ErrNotFound
	}
	run.Status = jobrun.StatusSuccess
	run.EndedAt = &endedAt
	r.byID[id] = run
	return nil
}

func (r *JobRunRepository) MarkFailed(_ context.Context, id string, endedAt time.Time, errMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, ok := r.byID[id]
	if !ok {
		return usecase.ErrNotFound
	}
	run.Status = jobrun.StatusFailed
	run.EndedAt = &endedAt
	run.ErrorMessage = errMessage
	r.byID[id] = run
	return nil
}

func (r *JobRunRepository) ListOrphaned(_ context.Context, olderThan time.Time) ([]jobrun.JobRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []jobrun.JobRun
	for _, run := range r.byID {
		if run.Status == jobrun.StatusRunning && run.StartedAt.Before(olderThan) {
			out = append(out, run)
		}
	}
	return out, nil
}

func (r *JobRunRepository) LastSuccessByJobName(_ context.Context) (map[string]jobrun.JobRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]jobrun.JobRun)
	for _, run := range r.byID {
		if run.Status != jobrun.StatusSuccess || run.EndedAt == nil {
			continue
		}
		cur, ok := out[run.JobName]
		if !ok || run.EndedAt.After(*cur.EndedAt) {
			out[run.JobName] = run
		}
	}
	return out, nil
}

func (r *JobRunRepository) RecentKeys(_ context.Context, limit int) ([]jobrun.JobRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]jobrun.JobRun, 0, len(r.byID))
	for _, run := range r.byID {
		all = append(all, run)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].StartedAt.After(all[j].StartedAt)
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
