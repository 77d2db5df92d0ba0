package modeloutput

import "context"

// Repository persists ModelOutput rows.
type Repository interface {
	InsertBatch(ctx context.Context, rows []ModelOutput) error
	// ClearForGameCardType deletes prior outputs for (gameID, cardType),
	// called before a fan-out pass writes a fresh set.
	ClearForGameCardType(ctx context.Context, gameID, cardType string) error
	ListByGame(ctx context.Context, gameID string) ([]ModelOutput, error)
}
