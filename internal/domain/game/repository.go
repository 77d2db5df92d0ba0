package game

import (
	"context"
	"time"
)

// Repository persists Game rows. Implementations must make UpsertGame safe
// to call repeatedly with the same GameID without creating duplicates.
type Repository interface {
	UpsertGame(ctx context.Context, g Game) error
	GetByID(ctx context.Context, gameID string) (Game, error)
	ListBySport(ctx context.Context, sport string) ([]Game, error)
	// ListFrom returns games with StartUTC >= from, ordered by StartUTC ascending.
	ListFrom(ctx context.Context, from time.Time) ([]Game, error)
	// ListNotFinalPastStart returns games whose StartUTC has passed and whose
	// Status is not yet StatusFinal, for the settlement sweep.
	ListNotFinalPastStart(ctx context.Context, asOf time.Time) ([]Game, error)
	UpdateStatus(ctx context.Context, gameID, status string) error
}
