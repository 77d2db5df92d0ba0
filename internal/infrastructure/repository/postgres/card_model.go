package postgres

import (
	"database/sql"
	"time"
)

type cardTableModel struct {
	ID             string       `db:"id"`
	GameID         string       `db:"game_id"`
	Sport          string       `db:"sport"`
	CardType       string       `db:"card_type"`
	CardTitle      string       `db:"card_title"`
	CardCategory   string       `db:"card_category"`
	CreatedAt      time.Time    `db:"created_at"`
	ExpiresAt      sql.NullTime `db:"expires_at"`
	PayloadData    []byte       `db:"payload_data"`
	ModelOutputIDs string       `db:"model_output_ids"`
}
