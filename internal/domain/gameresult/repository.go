package gameresult

import "context"

// Repository persists GameResult rows.
type Repository interface {
	Upsert(ctx context.Context, r GameResult) error
	GetByGameID(ctx context.Context, gameID string) (GameResult, error)
}
