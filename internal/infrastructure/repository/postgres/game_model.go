package postgres

import "time"

type gameTableModel struct {
	GameID    string    `db:"game_id"`
	Sport     string    `db:"sport"`
	Home      string    `db:"home"`
	Away      string    `db:"away"`
	StartUTC  time.Time `db:"start_utc"`
	Status    string    `db:"status"`
	UpdatedAt time.Time `db:"updated_at"`
}
