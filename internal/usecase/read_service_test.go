package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/sharplineio/cardengine/internal/domain/card"
	"github.com/sharplineio/cardengine/internal/domain/cardresult"
	"github.com/sharplineio/cardengine/internal/domain/game"
	"github.com/sharplineio/cardengine/internal/domain/jobrun"
	"github.com/sharplineio/cardengine/internal/domain/trackingstat"
	"github.com/sharplineio/cardengine/internal/infrastructure/repository/memory"
	"github.com/sharplineio/cardengine/internal/platform/id"
	"github.com/sharplineio/cardengine/internal/store"
	"github.com/sharplineio/cardengine/internal/usecase"
)

func newTestStore(t *testing.T) *store.Store {
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

func TestReadService_ListGames_FiltersToTodayForward(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := st.Games.UpsertGame(ctx, game.Game{GameID: "g-yesterday", Sport: "nhl", StartUTC: now.AddDate(0, 0, -1)}); err != nil {
		t.Fatalf("upsert yesterday game: %v", err)
	}
	if err := st.Games.UpsertGame(ctx, game.Game{GameID: "g-today", Sport: "nhl", StartUTC: now}); err != nil {
		t.Fatalf("upsert today game: %v", err)
	}

	svc := usecase.NewReadService(st, nil)
	games, err := svc.ListGames(ctx, time.UTC)
	if err != nil {
		t.Fatalf("ListGames: %v", err)
	}

	for _, g := range games {
		if g.GameID == "g-yesterday" {
			t.Fatalf("expected yesterday's game to be filtered out, found %s", g.GameID)
		}
	}
}

func TestReadService_ListResults_FiltersSegmentsByFilter(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if err := st.TrackingStats.Upsert(ctx, trackingstat.TrackingStat{
		Sport: "nhl", CardCategory: "goalie", RecommendedBetType: "moneyline", Wins: 3,
	}); err != nil {
		t.Fatalf("upsert tracking stat: %v", err)
	}
	if err := st.TrackingStats.Upsert(ctx, trackingstat.TrackingStat{
		Sport: "nfl", CardCategory: "qb", RecommendedBetType: "spread", Wins: 1,
	}); err != nil {
		t.Fatalf("upsert tracking stat: %v", err)
	}

	svc := usecase.NewReadService(st, nil)
	result, err := svc.ListResults(ctx, cardresult.ResultFilter{Sport: "nhl"})
	if err != nil {
		t.Fatalf("ListResults: %v", err)
	}

	if len(result.Segments) != 1 || result.Segments[0].Sport != "nhl" {
		t.Fatalf("expected exactly one nhl segment, got %+v", result.Segments)
	}
}

func TestReadService_Health_ReportsDegradedOnPingFailure(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if err := st.JobRuns.Insert(ctx, jobrun.JobRun{ID: "r1", JobName: "ingest", StartedAt: time.Now().UTC(), Status: jobrun.StatusRunning}); err != nil {
		t.Fatalf("insert job run: %v", err)
	}
	if err := st.JobRuns.MarkSuccess(ctx, "r1", time.Now().UTC()); err != nil {
		t.Fatalf("mark job run success: %v", err)
	}

	svc := usecase.NewReadService(st, func(context.Context) error {
		return context.DeadlineExceeded
	})

	health := svc.Health(ctx)
	if health.DBReachable {
		t.Fatalf("expected DBReachable=false when ping fails")
	}
}
