package postgres

import "time"

type oddsSnapshotTableModel struct {
	ID         string    `db:"id"`
	GameID     string    `db:"game_id"`
	CapturedAt time.Time `db:"captured_at"`
	Markets    string    `db:"markets"`
	RawPayload []byte    `db:"raw_payload"`
	JobRunID   string    `db:"job_run_id"`
}
