package postgres

import "database/sql"

type cardResultTableModel struct {
	ID                 string         `db:"id"`
	CardID             string         `db:"card_id"`
	GameID             string         `db:"game_id"`
	Sport              string         `db:"sport"`
	CardCategory       string         `db:"card_category"`
	RecommendedBetType string         `db:"recommended_bet_type"`
	Status             string         `db:"status"`
	Result             sql.NullString `db:"result"`
	PnLUnits           float64        `db:"pnl_units"`
	SettledAt          sql.NullTime   `db:"settled_at"`
}
