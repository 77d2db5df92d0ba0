package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/sharplineio/cardengine/internal/config"
	"github.com/sharplineio/cardengine/internal/domain/card"
	"github.com/sharplineio/cardengine/internal/domain/game"
	"github.com/sharplineio/cardengine/internal/domain/modeloutput"
	"github.com/sharplineio/cardengine/internal/domain/oddssnapshot"
	"github.com/sharplineio/cardengine/internal/infrastructure/repository/memory"
	"github.com/sharplineio/cardengine/internal/platform/id"
	"github.com/sharplineio/cardengine/internal/store"
	"github.com/sharplineio/cardengine/internal/usecase/driver"
)

func newSchedulerTestStore(t *testing.T) *store.Store {
	t.Helper()
	games := memory.NewGameRepository()
	cards := memory.NewCardRepository()
	return &store.Store{
		Games:         games,
		OddsSnapshots: memory.NewOddsSnapshotRepository(),
		JobRuns:       memory.NewJobRunRepository(),
		ModelOutputs:  memory.NewModelOutputRepository(),
		Cards:         cards,
		CardResults:   memory.NewCardResultRepository(games, cards),
		GameResults:   memory.NewGameResultRepository(),
		TrackingStats: memory.NewTrackingStatRepository(),
		RawPayloads:   memory.NewRawPayloadRepository(),
		Registry:      card.NewRegistry(),
		IDs:           id.NewRandomGenerator(),
	}
}

type schedulerStubDriver struct{}

func (schedulerStubDriver) Key() string      { return "nhl-goalie" }
func (schedulerStubDriver) CardType() string { return "nhl-goalie" }

func (schedulerStubDriver) Compute(snapshot oddssnapshot.OddsSnapshot) (*driver.Descriptor, bool) {
	if snapshot.Markets.MoneylineHome == nil {
		return nil, false
	}
	return &driver.Descriptor{
		Key:                "nhl-goalie",
		CardType:           "nhl-goalie",
		CardTitle:          "Test Card",
		CardCategory:       "test",
		Confidence:         0.8,
		Prediction:         modeloutput.PredictionHome,
		Recommendation:     card.RecommendationMLHome,
		RecommendedBetType: "moneyline",
	}, true
}

func TestDispatchTMinus_RunsFanoutAtTargetWindow(t *testing.T) {
	st := newSchedulerTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	gameTime := now.Add(90 * time.Minute)

	if err := st.Games.UpsertGame(ctx, game.Game{GameID: "g1", Sport: "nhl", StartUTC: gameTime}); err != nil {
		t.Fatalf("upsert game: %v", err)
	}
	line := -150
	if err := st.OddsSnapshots.InsertBatch(ctx, []oddssnapshot.OddsSnapshot{
		{ID: "snap-1", GameID: "g1", CapturedAt: now, Markets: oddssnapshot.Markets{MoneylineHome: &line}},
	}); err != nil {
		t.Fatalf("insert odds snapshot: %v", err)
	}

	registry := map[string][]driver.Driver{"nhl": {schedulerStubDriver{}}}
	fanout := NewFanoutService(st, registry, 1, nil)
	runtime := NewJobRuntime(st, id.NewRandomGenerator(), nil, time.Hour)

	cfg := config.Config{Timezone: "UTC"}
	scheduler := NewSchedulerService(cfg, SchedulerDeps{
		Store:        st,
		Runtime:      runtime,
		Fanout:       fanout,
		ActiveSports: []string{"nhl"},
	}, nil)

	scheduler.dispatchTMinus(ctx, "nhl", now)

	cards, err := st.Cards.ListCards(ctx, card.ListFilter{GameID: "g1", Dedupe: card.DedupeNone})
	if err != nil {
		t.Fatalf("ListCards: %v", err)
	}
	if len(cards) == 0 {
		t.Fatalf("expected a T-minus window dispatch to write at least one card")
	}
}

func TestDispatchTMinus_SkipsOutsideToleranceWindow(t *testing.T) {
	st := newSchedulerTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	gameTime := now.Add(45 * time.Minute)

	if err := st.Games.UpsertGame(ctx, game.Game{GameID: "g2", Sport: "nhl", StartUTC: gameTime}); err != nil {
		t.Fatalf("upsert game: %v", err)
	}

	registry := map[string][]driver.Driver{"nhl": {schedulerStubDriver{}}}
	fanout := NewFanoutService(st, registry, 1, nil)
	runtime := NewJobRuntime(st, id.NewRandomGenerator(), nil, time.Hour)

	cfg := config.Config{Timezone: "UTC"}
	scheduler := NewSchedulerService(cfg, SchedulerDeps{
		Store:        st,
		Runtime:      runtime,
		Fanout:       fanout,
		ActiveSports: []string{"nhl"},
	}, nil)

	scheduler.dispatchTMinus(ctx, "nhl", now)

	cards, err := st.Cards.ListCards(ctx, card.ListFilter{GameID: "g2", Dedupe: card.DedupeNone})
	if err != nil {
		t.Fatalf("ListCards: %v", err)
	}
	if len(cards) != 0 {
		t.Fatalf("expected no cards written outside the T-minus tolerance window, got %d", len(cards))
	}
}
