package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/sharplineio/cardengine/internal/domain/card"
	"github.com/sharplineio/cardengine/internal/domain/oddssnapshot"
	"github.com/sharplineio/cardengine/internal/usecase"
	"github.com/sharplineio/cardengine/internal/usecase/driver"
)

func TestFanoutService_Run_SkipsGamesWhereEveryDriverIsMissing(t *testing.T) {
	st := newTestStore(t)

	registry := map[string][]driver.Driver{
		"nhl": {stubDriver{key: "nhl-goalie", cardType: "nhl-goalie"}},
	}
	fanout := usecase.NewFanoutService(st, registry, 2, nil)

	input := usecase.FanoutInput{
		Sport: "nhl",
		Games: []usecase.FanoutGame{
			{
				GameID:      "g-no-line",
				GameTimeUTC: time.Now().UTC().Add(2 * time.Hour),
				Snapshot:    oddssnapshot.OddsSnapshot{GameID: "g-no-line", Markets: oddssnapshot.Markets{}},
			},
		},
	}

	result, err := fanout.Run(context.Background(), input)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.GamesSkipped != 1 {
		t.Fatalf("expected the game to be skipped, got %+v", result)
	}
	if result.CardsWritten != 0 {
		t.Fatalf("expected no cards written, got %d", result.CardsWritten)
	}
	if result.DriversMissing["nhl-goalie"] != 1 {
		t.Fatalf("expected driver to be counted missing, got %+v", result.DriversMissing)
	}
}

func TestFanoutService_Run_WritesOneCardPerMatchedDriver(t *testing.T) {
	st := newTestStore(t)

	registry := map[string][]driver.Driver{
		"nhl": {stubDriver{key: "nhl-goalie", cardType: "nhl-goalie"}},
	}
	fanout := usecase.NewFanoutService(st, registry, 2, nil)

	line := -150
	input := usecase.FanoutInput{
		Sport: "nhl",
		Games: []usecase.FanoutGame{
			{
				GameID:      "g1",
				GameTimeUTC: time.Now().UTC().Add(2 * time.Hour),
				Snapshot:    oddssnapshot.OddsSnapshot{GameID: "g1", Markets: oddssnapshot.Markets{MoneylineHome: &line}},
			},
		},
	}

	result, err := fanout.Run(context.Background(), input)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.GamesProcessed != 1 {
		t.Fatalf("expected 1 game processed, got %+v", result)
	}
	if result.CardsWritten == 0 {
		t.Fatalf("expected at least one card written, got %+v", result)
	}

	cards, err := st.Cards.ListCards(context.Background(), card.ListFilter{GameID: "g1", Dedupe: card.DedupeNone})
	if err != nil {
		t.Fatalf("ListCards: %v", err)
	}
	if len(cards) == 0 {
		t.Fatalf("expected persisted cards for g1")
	}
}
