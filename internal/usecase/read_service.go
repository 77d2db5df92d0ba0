package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sharplineio/cardengine/internal/domain/card"
	"github.com/sharplineio/cardengine/internal/domain/cardresult"
	"github.com/sharplineio/cardengine/internal/domain/game"
	"github.com/sharplineio/cardengine/internal/domain/jobrun"
	"github.com/sharplineio/cardengine/internal/domain/trackingstat"
	"github.com/sharplineio/cardengine/internal/store"
)

// PingFunc checks store reachability for the health endpoint; app wires it
// to the sqlx handle's PingContext so this package never imports sqlx.
type PingFunc func(ctx context.Context) error

// ReadService backs the HTTP read API: games, cards, the play ledger, and
// health. All queries are read-only and never open a transaction, per the
// Read API's own concurrency contract.
type ReadService struct {
	store *store.Store
	ping  PingFunc
}

func NewReadService(st *store.Store, ping PingFunc) *ReadService {
	return &ReadService{store: st, ping: ping}
}

// ListGames returns games starting at or after midnight of "today" in loc,
// the deterministic boundary the Read API filters on.
func (s *ReadService) ListGames(ctx context.Context, loc *time.Location) ([]game.Game, error) {
	if loc == nil {
		loc = time.UTC
	}
	now := time.Now().In(loc)
	boundary := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	return s.store.Games.ListFrom(ctx, boundary)
}

func (s *ReadService) ListCards(ctx context.Context, filter card.ListFilter) ([]card.CardPayload, error) {
	return s.store.Cards.ListCards(ctx, filter)
}

// LedgerResult bundles the play ledger rows with the tracking-stat segments
// the same (sport, card_category, recommended_bet_type) filter applies to.
type LedgerResult struct {
	Results  []cardresult.CardResult
	Segments []trackingstat.TrackingStat
}

func (s *ReadService) ListResults(ctx context.Context, filter cardresult.ResultFilter) (LedgerResult, error) {
	results, err := s.store.CardResults.ListForLedger(ctx, filter)
	if err != nil {
		return LedgerResult{}, fmt.Errorf("list ledger results: %w", err)
	}

	allSegments, err := s.store.TrackingStats.ListAll(ctx)
	if err != nil {
		return LedgerResult{}, fmt.Errorf("list tracking stat segments: %w", err)
	}

	segments := make([]trackingstat.TrackingStat, 0, len(allSegments))
	for _, seg := range allSegments {
		if filter.Sport != "" && seg.Sport != filter.Sport {
			continue
		}
		if filter.CardCategory != "" && seg.CardCategory != filter.CardCategory {
			continue
		}
		if filter.Market != "" && seg.RecommendedBetType != filter.Market {
			continue
		}
		segments = append(segments, seg)
	}

	return LedgerResult{Results: results, Segments: segments}, nil
}

// HealthResult reports store reachability and the last successful run per
// job name, the two signals the Read API's health check exposes.
type HealthResult struct {
	DBReachable   bool
	LastSuccesses map[string]jobrun.JobRun
}

func (s *ReadService) Health(ctx context.Context) HealthResult {
	result := HealthResult{DBReachable: true}

	if s.ping != nil {
		if err := s.ping(ctx); err != nil {
			result.DBReachable = false
		}
	}

	lastSuccesses, err := s.store.JobRuns.LastSuccessByJobName(ctx)
	if err != nil {
		result.LastSuccesses = map[string]jobrun.JobRun{}
		return result
	}
	result.LastSuccesses = lastSuccesses
	return result
}
