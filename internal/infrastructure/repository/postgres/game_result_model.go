package postgres

import "time"

type gameResultTableModel struct {
	GameID         string    `db:"game_id"`
	FinalScoreHome int       `db:"final_score_home"`
	FinalScoreAway int       `db:"final_score_away"`
	Status         string    `db:"status"`
	ResultSource   string    `db:"result_source"`
	SettledAt      time.Time `db:"settled_at"`
}
