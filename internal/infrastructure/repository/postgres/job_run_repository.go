package postgres

import (
	"context"
	"database/sql"
	crerr "github.com/cockroachdb/errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sharplineio/cardengine/internal/domain/jobrun"
	qb "github.com/sharplineio/cardengine/internal/platform/querybuilder"
)

type JobRunRepository struct {
	db *sqlx.DB
}

func NewJobRunRepository(db *sqlx.DB) *JobRunRepository {
	return &JobRunRepository{db: db}
}

func (r *JobRunRepository) HasRunning(ctx context.Context, jobName string, jobKey *string) (bool, error) {
	conditions := []qb.Condition{
		qb.Eq("job_name", jobName),
		qb.Eq("status", jobrun.StatusRunning),
	}
	conditions = append(conditions, jobKeyCondition(jobKey))

	query, args, err := qb.Select("1").From("job_runs").
		Where(conditions...).
		Limit(1).
		ToSQL()
	if err != nil {
		return false, crerr.Wrap(err, "build has-running job query")
	}

	var found int
	if err := r.db.GetContext(ctx, &found, query, args...); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, crerr.Wrap(err, "check running job")
	}
	return true, nil
}

func (r *JobRunRepository) WasRecentlySuccessful(ctx context.Context, jobName string, jobKey *string, window time.Duration) (bool, error) {
	conditions := []qb.Condition{
		qb.Eq("job_name", jobName),
		qb.Eq("status", jobrun.StatusSuccess),
		qb.Expr("started_at >= ?", time.Now().UTC().Add(-window)),
	}
	conditions = append(conditions, jobKeyCondition(jobKey))

	query, args, err := qb.Select("1").From("job_runs").
		Where(conditions...).
		Limit(1).
		ToSQL()
	if err != nil {
		return false, crerr.Wrap(err, "build recently-successful job query")
	}

	var found int
	if err := r.db.GetContext(ctx, &found, query, args...); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, crerr.Wrap(err, "check recently successful job")
	}
	return true, nil
}

func (r *JobRunRepository) Insert(ctx context.Context, run jobrun.JobRun) error {
	insertModel := jobRunTableModel{
		ID:        run.ID,
		JobName:   run.JobName,
		JobKey:    stringPtrToNullString(run.JobKey),
		Status:    run.Status,
		StartedAt: run.StartedAt,
	}
	query, args, err := qb.InsertModel("job_runs", insertModel, "")
	if err != nil {
		return crerr.Wrap(err, "build insert job run query")
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return crerr.Wrapf(err, "insert job run %s", run.ID)
	}
	return nil
}

func (r *JobRunRepository) MarkSuccess(ctx context.Context, id string, endedAt time.Time) error {
	query, args, err := qb.Update("job_runs").
		Set("status", jobrun.StatusSuccess).
		Set("ended_at", endedAt).
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return crerr.Wrap(err, "build mark job run success query")
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return crerr.Wrapf(err, "mark job run %s success", id)
	}
	return nil
}

func (r *JobRunRepository) MarkFailed(ctx context.Context, id string, endedAt time.Time, errMessage string) error {
	query, args, err := qb.Update("job_runs").
		Set("status", jobrun.StatusFailed).
		Set("ended_at", endedAt).
		Set("error_message", errMessage).
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return crerr.Wrap(err, "build mark job run failed query")
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return crerr.Wrapf(err, "mark job run %s failed", id)
	}
	return nil
}

func (r *JobRunRepository) ListOrphaned(ctx context.Context, olderThan time.Time) ([]jobrun.JobRun, error) {
	query, args, err := qb.Select("*").From("job_runs").
		Where(
			qb.Eq("status", jobrun.StatusRunning),
			qb.Expr("started_at < ?", olderThan),
		).
		OrderBy("started_at").
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build list orphaned job runs query")
	}

	var rows []jobRunTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrap(err, "list orphaned job runs")
	}
	return jobRunsFromRows(rows), nil
}

func (r *JobRunRepository) LastSuccessByJobName(ctx context.Context) (map[string]jobrun.JobRun, error) {
	query, args, err := qb.Select("DISTINCT ON (job_name) *").From("job_runs").
		Where(qb.Eq("status", jobrun.StatusSuccess)).
		OrderBy("job_name", "started_at DESC").
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build last success by job name query")
	}

	var rows []jobRunTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrap(err, "list last success by job name")
	}

	out := make(map[string]jobrun.JobRun, len(rows))
	for _, row := range rows {
		run := jobRunFromRow(row)
		out[run.JobName] = run
	}
	return out, nil
}

func (r *JobRunRepository) RecentKeys(ctx context.Context, limit int) ([]jobrun.JobRun, error) {
	query, args, err := qb.Select("*").From("job_runs").
		OrderBy("started_at DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build recent job runs query")
	}

	var rows []jobRunTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrap(err, "list recent job runs")
	}
	return jobRunsFromRows(rows), nil
}

func jobKeyCondition(jobKey *string) qb.Condition {
	if jobKey == nil {
		return qb.IsNull("job_key")
	}
	return qb.Eq("job_key", *jobKey)
}

func stringPtrToNullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func jobRunFromRow(row jobRunTableModel) jobrun.JobRun {
	run := jobrun.JobRun{
		ID:           row.ID,
		JobName:      row.JobName,
		Status:       row.Status,
		StartedAt:    row.StartedAt,
		EndedAt:      nullTimeToTimePtr(row.EndedAt),
		ErrorMessage: nullStringToString(row.ErrorMessage),
	}
	if row.JobKey.Valid {
		key := row.JobKey.String
		run.JobKey = &key
	}
	return run
}

func jobRunsFromRows(rows []jobRunTableModel) []jobrun.JobRun {
	out := make([]jobrun.JobRun, 0, len(rows))
	for _, row := range rows {
		out = append(out, jobRunFromRow(row))
	}
	return out
}
