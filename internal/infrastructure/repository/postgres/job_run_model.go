package postgres

import (
	"database/sql"
	"time"
)

type jobRunTableModel struct {
	ID           string         `db:"id"`
	JobName      string         `db:"job_name"`
	JobKey       sql.NullString `db:"job_key"`
	Status       string         `db:"status"`
	StartedAt    time.Time      `db:"started_at"`
	EndedAt      sql.NullTime   `db:"ended_at"`
	ErrorMessage sql.NullString `db:"error_message"`
}
