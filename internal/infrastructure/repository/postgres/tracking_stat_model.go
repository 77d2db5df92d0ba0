package postgres

import "time"

type trackingStatTableModel struct {
	Sport              string    `db:"sport"`
	CardCategory       string    `db:"card_category"`
	RecommendedBetType string    `db:"recommended_bet_type"`
	Wins               int       `db:"wins"`
	Losses             int       `db:"losses"`
	Pushes             int       `db:"pushes"`
	TotalPnLUnits      float64   `db:"total_pnl_units"`
	LastUpdated        time.Time `db:"last_updated"`
}
