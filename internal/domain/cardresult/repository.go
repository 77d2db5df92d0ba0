package cardresult

import (
	"context"
	"time"
)

type ResultFilter struct {
	Sport              string
	Market             string // moneyline|spread|total, matched against RecommendedBetType
	CardCategory       string
	Dedupe             bool
}

// Repository persists CardResult rows.
type Repository interface {
	// InsertPending creates the CardResult row for a freshly inserted card,
	// in the same transaction as the card insert.
	InsertPending(ctx context.Context, r CardResult) error
	ListPendingWithFinalGame(ctx context.Context) ([]CardResult, error)
	// MarkSettled transitions a pending row; implementations must gate on
	// status='pending' so a concurrent second settlement pass is a no-op.
	MarkSettled(ctx context.Context, cardID, result string, pnlUnits float64, settledAt time.Time) (bool, error)
	ListSettledByKey(ctx context.Context, sport, cardCategory, recommendedBetType string) ([]CardResult, error)
	ListForLedger(ctx context.Context, filter ResultFilter) ([]CardResult, error)
}
