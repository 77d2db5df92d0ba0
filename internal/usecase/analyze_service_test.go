package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/sharplineio/cardengine/internal/domain/card"
	"github.com/sharplineio/cardengine/internal/domain/game"
	"github.com/sharplineio/cardengine/internal/domain/modeloutput"
	"github.com/sharplineio/cardengine/internal/domain/oddssnapshot"
	"github.com/sharplineio/cardengine/internal/usecase"
	"github.com/sharplineio/cardengine/internal/usecase/driver"
)

type stubDriver struct {
	key      string
	cardType string
}

func (d stubDriver) Key() string      { return d.key }
func (d stubDriver) CardType() string { return d.cardType }

func (d stubDriver) Compute(snapshot oddssnapshot.OddsSnapshot) (*driver.Descriptor, bool) {
	if snapshot.Markets.MoneylineHome == nil {
		return nil, false
	}
	return &driver.Descriptor{
		Key:                d.key,
		CardType:           d.cardType,
		CardTitle:          "Test Card",
		CardCategory:       "test",
		Confidence:         0.8,
		Score:              1.2,
		Prediction:         modeloutput.PredictionHome,
		EVThresholdPassed:  true,
		Recommendation:     card.RecommendationMLHome,
		RecommendedBetType: "moneyline",
	}, true
}

func intPtr(v int) *int { return &v }

func TestAnalyzeService_Run_ReturnsCardsFromLatestSnapshot(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	gameTime := time.Now().UTC().Add(3 * time.Hour)
	if err := st.Games.UpsertGame(ctx, game.Game{GameID: "g1", Sport: "nhl", StartUTC: gameTime}); err != nil {
		t.Fatalf("upsert game: %v", err)
	}
	if err := st.OddsSnapshots.InsertBatch(ctx, []oddssnapshot.OddsSnapshot{
		{
			ID:         "snap-1",
			GameID:     "g1",
			CapturedAt: time.Now().UTC(),
			Markets:    oddssnapshot.Markets{MoneylineHome: intPtr(-150)},
		},
	}); err != nil {
		t.Fatalf("insert odds snapshot: %v", err)
	}

	registry := map[string][]driver.Driver{
		"nhl": {stubDriver{key: "nhl-goalie", cardType: "nhl-goalie"}},
	}
	fanout := usecase.NewFanoutService(st, registry, 1, nil)
	analyze := usecase.NewAnalyzeService(st, fanout)

	var phases []string
	cards, err := analyze.Run(ctx, "g1", func(p usecase.AnalyzeProgress) {
		phases = append(phases, p.Phase)
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(cards) != 1 {
		t.Fatalf("expected 1 card, got %d", len(cards))
	}
	if cards[0].GameID != "g1" {
		t.Fatalf("unexpected game id: %s", cards[0].GameID)
	}
	if len(phases) == 0 || phases[len(phases)-1] != "done" {
		t.Fatalf("expected progress callback to report a final 'done' phase, got %v", phases)
	}
}

func TestAnalyzeService_Run_UnknownGameReturnsNotFound(t *testing.T) {
	st := newTestStore(t)
	fanout := usecase.NewFanoutService(st, map[string][]driver.Driver{}, 1, nil)
	analyze := usecase.NewAnalyzeService(st, fanout)

	_, err := analyze.Run(context.Background(), "missing-game", nil)
	if err == nil {
		t.Fatalf("expected error for unknown game id")
	}
}
