package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sharplineio/cardengine/internal/domain/card"
	"github.com/sharplineio/cardengine/internal/store"
)

// AnalyzeProgress is one step of an on-demand analysis run, reported to the
// caller's progress callback as the run advances.
type AnalyzeProgress struct {
	Phase    string
	Progress int
}

// AnalyzeService drives an on-demand, single-game re-run of the fan-out
// pass against the latest odds snapshot, for the Read API's progress
// stream. It reuses FanoutService rather than duplicating driver dispatch.
type AnalyzeService struct {
	store  *store.Store
	fanout *FanoutService
}

func NewAnalyzeService(st *store.Store, fanout *FanoutService) *AnalyzeService {
	return &AnalyzeService{store: st, fanout: fanout}
}

// Run resolves gameID, re-runs its driver set against the latest snapshot,
// and returns the resulting (deduped) cards. onProgress may be nil.
func (s *AnalyzeService) Run(ctx context.Context, gameID string, onProgress func(AnalyzeProgress)) ([]card.CardPayload, error) {
	report := func(phase string, pct int) {
		if onProgress != nil {
			onProgress(AnalyzeProgress{Phase: phase, Progress: pct})
		}
	}

	report("loading_game", 10)
	g, err := s.store.Games.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("load game %s: %w", gameID, err)
	}

	report("loading_odds", 35)
	snapshot, err := s.store.OddsSnapshots.LatestByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("load latest odds snapshot for %s: %w", gameID, err)
	}

	report("running_drivers", 65)
	if _, err := s.fanout.Run(ctx, FanoutInput{
		Sport: g.Sport,
		Games: []FanoutGame{{GameID: g.GameID, GameTimeUTC: g.StartUTC, Snapshot: snapshot}},
	}); err != nil {
		return nil, fmt.Errorf("run drivers for %s: %w", gameID, err)
	}

	report("loading_cards", 90)
	cards, err := s.store.Cards.ListCards(ctx, card.ListFilter{
		GameID: gameID,
		Dedupe: card.DedupeLatestPerGameType,
		AsOf:   time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("load cards for %s: %w", gameID, err)
	}

	report("done", 100)
	return cards, nil
}
