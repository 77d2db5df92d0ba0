package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sharplineio/cardengine/internal/domain/card"
	"github.com/sharplineio/cardengine/internal/domain/game"
	"github.com/sharplineio/cardengine/internal/domain/gameresult"
	"github.com/sharplineio/cardengine/internal/domain/jobrun"
	"github.com/sharplineio/cardengine/internal/platform/id"
	"github.com/sharplineio/cardengine/internal/store"
)

func TestJobRuntime_Run_MarksSuccessOnNilError(t *testing.T) {
	st := newSchedulerTestStore(t)
	rt := NewJobRuntime(st, id.NewRandomGenerator(), nil, time.Hour)

	outcome, err := rt.Run(context.Background(), "pull_odds_hourly", nil, func(ctx context.Context, runID string) error {
		if runID == "" {
			t.Fatalf("expected a non-empty job run id")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !outcome.Success || outcome.Skipped != "" {
		t.Fatalf("expected a clean success, got %+v", outcome)
	}
}

func TestJobRuntime_Run_MarksFailedAndPropagatesError(t *testing.T) {
	st := newSchedulerTestStore(t)
	rt := NewJobRuntime(st, id.NewRandomGenerator(), nil, time.Hour)

	wantErr := errors.New("boom")
	outcome, err := rt.Run(context.Background(), "pull_odds_hourly", nil, func(ctx context.Context, runID string) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected the run error to propagate, got %v", err)
	}
	if outcome.Success {
		t.Fatalf("expected Success=false on a failed run")
	}

	runs, err := st.JobRuns.RecentKeys(context.Background(), 10)
	if err != nil {
		t.Fatalf("RecentKeys: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != jobrun.StatusFailed {
		t.Fatalf("expected one failed job run, got %+v", runs)
	}
}

// A crashed or still-executing process elsewhere is represented here by a
// "running" JobRun row already sitting in the store before Run is called —
// concurrent calls through the same *JobRuntime instead coalesce via
// resilience.SingleFlight and never reach this check at all.
func TestJobRuntime_Run_SkipsWhenAlreadyRunning(t *testing.T) {
	st := newSchedulerTestStore(t)
	ctx := context.Background()
	rt := NewJobRuntime(st, id.NewRandomGenerator(), nil, time.Hour)

	jobKey := "nhl:2026-08-02"
	if err := st.JobRuns.Insert(ctx, jobrun.JobRun{
		ID:        "existing-run",
		JobName:   "nhl_fixed_model_run",
		JobKey:    &jobKey,
		Status:    jobrun.StatusRunning,
		StartedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seed running job run: %v", err)
	}

	outcome, err := rt.Run(ctx, "nhl_fixed_model_run", &jobKey, func(ctx context.Context, runID string) error {
		t.Fatalf("fn must not execute while a run is already in progress")
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Skipped != "already_running" {
		t.Fatalf("expected skipped=already_running, got %+v", outcome)
	}
}

func TestJobRuntime_Run_SkipsWhenRecentlySuccessful(t *testing.T) {
	st := newSchedulerTestStore(t)
	rt := NewJobRuntime(st, id.NewRandomGenerator(), nil, time.Hour)
	ctx := context.Background()

	jobKey := "nhl:2026-08-02"
	calls := 0
	first, err := rt.Run(ctx, "nhl_fixed_model_run", &jobKey, func(ctx context.Context, runID string) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Run (first): %v", err)
	}
	if !first.Success {
		t.Fatalf("expected the first run to succeed, got %+v", first)
	}

	second, err := rt.Run(ctx, "nhl_fixed_model_run", &jobKey, func(ctx context.Context, runID string) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Run (second): %v", err)
	}
	if second.Skipped != "idempotent" {
		t.Fatalf("expected the second run to be skipped as idempotent, got %+v", second)
	}
	if calls != 1 {
		t.Fatalf("expected fn to run exactly once, got %d calls", calls)
	}
}

// TestSettlePendingCards_DoubleSettleGuardAndTrackingStats exercises
// SettlePendingCards end to end against the in-memory store: a pending card
// on a final game is graded and its tracking stat recomputed on the first
// run, then a second run is a no-op because InsertCardPayload's pending
// CardResult has already transitioned to settled.
func TestSettlePendingCards_DoubleSettleGuardAndTrackingStats(t *testing.T) {
	st := newSchedulerTestStore(t)
	ctx := context.Background()

	if err := st.UpsertGame(ctx, game.Game{GameID: "g1", Sport: "nhl", Home: "LA Kings", Away: "NY Rangers", StartUTC: time.Now()}); err != nil {
		t.Fatalf("upsert game: %v", err)
	}
	if err := st.UpsertGameResult(ctx, gameresult.GameResult{
		GameID: "g1", FinalScoreHome: 4, FinalScoreAway: 2, Status: game.StatusFinal, ResultSource: "results_source", SettledAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("upsert game result: %v", err)
	}

	payload := card.Payload{
		Prediction:         "HOME",
		Confidence:         0.7,
		RecommendedBetType: "moneyline",
		Recommendation:     &card.Recommendation{Type: card.RecommendationMLHome},
		OddsContext:        card.OddsContext{H2HHome: intPtrST(-150)},
	}
	payloadData, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	if _, err := st.InsertCardPayload(ctx, store.CardWrite{
		Card: card.CardPayload{
			ID: "c1", GameID: "g1", Sport: "nhl", CardType: "nhl-goalie",
			CardCategory: "goalie", PayloadData: payloadData, CreatedAt: time.Now(),
		},
		RecommendedBetType: "moneyline",
	}); err != nil {
		t.Fatalf("insert card payload: %v", err)
	}

	svc := NewSettlementService(st, nil, nil)

	settled, err := svc.SettlePendingCards(ctx)
	if err != nil {
		t.Fatalf("SettlePendingCards (first): %v", err)
	}
	if settled != 1 {
		t.Fatalf("expected 1 card settled on the first pass, got %d", settled)
	}

	stats, err := st.TrackingStats.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("expected exactly one tracking stat row, got %d", len(stats))
	}
	stat := stats[0]
	if stat.Sport != "nhl" || stat.CardCategory != "goalie" || stat.RecommendedBetType != "moneyline" {
		t.Fatalf("unexpected tracking stat key: %+v", stat)
	}
	if stat.Wins != 1 || stat.Losses != 0 || stat.Pushes != 0 {
		t.Fatalf("expected a single win recorded, got %+v", stat)
	}
	if stat.TotalPnLUnits <= 0 {
		t.Fatalf("expected positive PnL for a -150 moneyline win, got %f", stat.TotalPnLUnits)
	}

	settledAgain, err := svc.SettlePendingCards(ctx)
	if err != nil {
		t.Fatalf("SettlePendingCards (second): %v", err)
	}
	if settledAgain != 0 {
		t.Fatalf("expected the double-settle guard to return 0, got %d", settledAgain)
	}
}
