package oddssnapshot

import "context"

// Repository persists append-only OddsSnapshot rows.
type Repository interface {
	// InsertBatch inserts rows atomically; a conflict on (game_id,captured_at)
	// for any row fails the whole batch.
	InsertBatch(ctx context.Context, rows []OddsSnapshot) error
	// LatestByGame returns the most recently captured snapshot for gameID.
	LatestByGame(ctx context.Context, gameID string) (OddsSnapshot, error)
}
