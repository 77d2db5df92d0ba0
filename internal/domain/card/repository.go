package card

import (
	"context"
	"time"
)

// Dedupe selects how ListCards collapses multiple payloads for the same
// (game_id, card_type).
type Dedupe string

const (
	DedupeLatestPerGameType Dedupe = "latest_per_game_type"
	DedupeNone              Dedupe = "none"
)

// ListFilter narrows ListCards.
type ListFilter struct {
	GameID  string
	Dedupe  Dedupe
	AsOf    time.Time // expiry comparison point; zero value disables expiry filtering
}

// Repository persists CardPayload rows. Insert is expected to run inside the
// same transaction that clears prior model outputs and creates the
// associated pending CardResult.
type Repository interface {
	Insert(ctx context.Context, c CardPayload) error
	ListCards(ctx context.Context, filter ListFilter) ([]CardPayload, error)
	GetByID(ctx context.Context, id string) (CardPayload, error)
}
