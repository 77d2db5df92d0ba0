package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sharplineio/cardengine/internal/domain/oddssnapshot"
	"github.com/sharplineio/cardengine/internal/platform/id"
)

func TestIngestPipelineService_Run_Succeeds(t *testing.T) {
	st := newSchedulerTestStore(t)
	line := -150

	fetch := func(ctx context.Context, sport string, hoursAhead int) FetchResult {
		return FetchResult{
			RawCount: 1,
			Games: []FetchedGame{
				{
					GameID: "g1", Sport: sport, Home: "LA Kings", Away: "NY Rangers",
					GameTimeUTC: time.Now(), CapturedAtUTC: time.Now(),
					Markets: oddssnapshot.Markets{MoneylineHome: &line},
				},
			},
		}
	}

	svc := NewIngestPipelineService(st, fetch, id.NewRandomGenerator(), nil)
	result, err := svc.Run(context.Background(), "run-1", []string{"nhl"}, 48)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.GamesUpserted != 1 || result.SnapshotsInserted != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.ContractViolations) != 0 {
		t.Fatalf("expected no contract violations, got %v", result.ContractViolations)
	}
}

// TestIngestPipelineService_Run_FailsOnContractViolation guards against the
// ingest job silently reporting success when a sport's provider response
// collapses below contractMinRatio: the job runtime relies on a non-nil
// error here to mark pull_odds_hourly failed.
func TestIngestPipelineService_Run_FailsOnContractViolation(t *testing.T) {
	st := newSchedulerTestStore(t)

	fetch := func(ctx context.Context, sport string, hoursAhead int) FetchResult {
		return FetchResult{
			RawCount: 10,
			Games:    []FetchedGame{{GameID: "g1", Sport: sport, Home: "LA Kings", Away: "NY Rangers", GameTimeUTC: time.Now()}},
		}
	}

	svc := NewIngestPipelineService(st, fetch, id.NewRandomGenerator(), nil)
	result, err := svc.Run(context.Background(), "run-1", []string{"nhl"}, 48)
	if !errors.Is(err, ErrContractViolation) {
		t.Fatalf("expected ErrContractViolation, got %v", err)
	}
	if len(result.ContractViolations) != 1 {
		t.Fatalf("expected one recorded violation, got %v", result.ContractViolations)
	}
}

func TestIngestPipelineService_Run_WiredThroughJobRuntimeMarksFailed(t *testing.T) {
	st := newSchedulerTestStore(t)
	rt := NewJobRuntime(st, id.NewRandomGenerator(), nil, time.Hour)

	fetch := func(ctx context.Context, sport string, hoursAhead int) FetchResult {
		return FetchResult{
			RawCount: 10,
			Games:    []FetchedGame{{GameID: "g1", Sport: sport, Home: "LA Kings", Away: "NY Rangers", GameTimeUTC: time.Now()}},
		}
	}
	ingest := NewIngestPipelineService(st, fetch, id.NewRandomGenerator(), nil)

	outcome, err := rt.Run(context.Background(), "pull_odds_hourly", nil, func(ctx context.Context, runID string) error {
		_, runErr := ingest.Run(ctx, runID, []string{"nhl"}, 48)
		return runErr
	})
	if !errors.Is(err, ErrContractViolation) {
		t.Fatalf("expected ErrContractViolation to propagate out of the job runtime, got %v", err)
	}
	if outcome.Success {
		t.Fatalf("expected the pull_odds_hourly run to be marked failed, got %+v", outcome)
	}
}
