package postgres

import "time"

type modelOutputTableModel struct {
	ID                string    `db:"id"`
	GameID            string    `db:"game_id"`
	Sport             string    `db:"sport"`
	OddsSnapshotID    string    `db:"odds_snapshot_id"`
	DriverKey         string    `db:"driver_key"`
	CardType          string    `db:"card_type"`
	Prediction        string    `db:"prediction"`
	Confidence        float64   `db:"confidence"`
	Score             float64   `db:"score"`
	Status            string    `db:"status"`
	Reasoning         string    `db:"reasoning"`
	Inputs            string    `db:"inputs"`
	EVThresholdPassed bool      `db:"ev_threshold_passed"`
	CreatedAt         time.Time `db:"created_at"`
}
