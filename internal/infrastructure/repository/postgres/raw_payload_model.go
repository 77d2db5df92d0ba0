package postgres

import "time"

type rawPayloadTableModel struct {
	ID              string    `db:"id"`
	Source          string    `db:"source"`
	EntityType      string    `db:"entity_type"`
	EntityKey       string    `db:"entity_key"`
	PayloadJSON     []byte    `db:"payload_json"`
	PayloadHash     string    `db:"payload_hash"`
	SourceUpdatedAt time.Time `db:"source_updated_at"`
	CreatedAt       time.Time `db:"created_at"`
}
