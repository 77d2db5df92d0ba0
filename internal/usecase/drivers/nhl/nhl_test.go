package nhl_test

import (
	"testing"

	"github.com/sharplineio/cardengine/internal/domain/card"
	"github.com/sharplineio/cardengine/internal/domain/modeloutput"
	"github.com/sharplineio/cardengine/internal/domain/oddssnapshot"
	"github.com/sharplineio/cardengine/internal/usecase/drivers/nhl"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestDrivers_ReturnsFiveInFixedOrder(t *testing.T) {
	drivers := nhl.Drivers()
	if len(drivers) != 5 {
		t.Fatalf("expected 5 drivers, got %d", len(drivers))
	}
	wantKeys := []string{"goalie", "special_teams", "shot_environment", "empty_net", "total_fragility"}
	for i, want := range wantKeys {
		if got := drivers[i].Key(); got != want {
			t.Fatalf("driver %d: expected key %q, got %q", i, want, got)
		}
	}
}

func TestGoalieDriver_MissingMoneylineReturnsFalse(t *testing.T) {
	d := nhl.GoalieDriver{}
	_, ok := d.Compute(oddssnapshot.OddsSnapshot{Markets: oddssnapshot.Markets{}})
	if ok {
		t.Fatalf("expected ok=false without a moneyline")
	}
}

func TestGoalieDriver_HeavyHomeFavoriteRecommendsHome(t *testing.T) {
	d := nhl.GoalieDriver{}
	desc, ok := d.Compute(oddssnapshot.OddsSnapshot{
		Markets: oddssnapshot.Markets{MoneylineHome: intPtr(-300), MoneylineAway: intPtr(250)},
	})
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if desc.Prediction != modeloutput.PredictionHome {
		t.Fatalf("expected home prediction, got %s", desc.Prediction)
	}
	if desc.Recommendation != card.RecommendationMLHome {
		t.Fatalf("expected ML home recommendation, got %s", desc.Recommendation)
	}
	if desc.Confidence <= 0 || desc.Confidence > 0.35 {
		t.Fatalf("expected confidence in (0, 0.35], got %f", desc.Confidence)
	}
}

func TestGoalieDriver_HeavyAwayFavoriteRecommendsAway(t *testing.T) {
	d := nhl.GoalieDriver{}
	desc, ok := d.Compute(oddssnapshot.OddsSnapshot{
		Markets: oddssnapshot.Markets{MoneylineHome: intPtr(250), MoneylineAway: intPtr(-300)},
	})
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if desc.Prediction != modeloutput.PredictionAway {
		t.Fatalf("expected away prediction, got %s", desc.Prediction)
	}
	if desc.Recommendation != card.RecommendationMLAway {
		t.Fatalf("expected ML away recommendation, got %s", desc.Recommendation)
	}
}

func TestShotEnvironmentDriver_HighTotalRecommendsOver(t *testing.T) {
	d := nhl.ShotEnvironmentDriver{}
	desc, ok := d.Compute(oddssnapshot.OddsSnapshot{Markets: oddssnapshot.Markets{Total: floatPtr(7.5)}})
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if desc.Prediction != modeloutput.PredictionOver {
		t.Fatalf("expected over prediction, got %s", desc.Prediction)
	}
	if desc.Recommendation != card.RecommendationTotalOver {
		t.Fatalf("expected total-over recommendation, got %s", desc.Recommendation)
	}
}

func TestShotEnvironmentDriver_MissingTotalReturnsFalse(t *testing.T) {
	d := nhl.ShotEnvironmentDriver{}
	_, ok := d.Compute(oddssnapshot.OddsSnapshot{Markets: oddssnapshot.Markets{}})
	if ok {
		t.Fatalf("expected ok=false without a total")
	}
}

func TestEmptyNetDriver_WideHomeSpreadRecommendsHome(t *testing.T) {
	d := nhl.EmptyNetDriver{}
	desc, ok := d.Compute(oddssnapshot.OddsSnapshot{
		Markets: oddssnapshot.Markets{SpreadHome: floatPtr(-2.0), SpreadAway: floatPtr(2.0)},
	})
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if desc.Prediction != modeloutput.PredictionHome {
		t.Fatalf("expected home prediction, got %s", desc.Prediction)
	}
	if desc.RecommendedBetType != "spread" {
		t.Fatalf("expected spread bet type, got %s", desc.RecommendedBetType)
	}
}

func TestTotalFragilityDriver_AlwaysNeutralAndPass(t *testing.T) {
	d := nhl.TotalFragilityDriver{}
	desc, ok := d.Compute(oddssnapshot.OddsSnapshot{Markets: oddssnapshot.Markets{Total: floatPtr(6.5)}})
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if desc.Prediction != modeloutput.PredictionNeutral {
		t.Fatalf("expected neutral prediction, got %s", desc.Prediction)
	}
	if desc.Recommendation != card.RecommendationPass {
		t.Fatalf("expected PASS recommendation, got %s", desc.Recommendation)
	}
	if desc.EVThresholdPassed {
		t.Fatalf("expected EV threshold never to pass for the fragility watch")
	}
}

func TestTotalFragilityDriver_OnFragileHalfGoalScoresHigh(t *testing.T) {
	d := nhl.TotalFragilityDriver{}
	onNumber, _ := d.Compute(oddssnapshot.OddsSnapshot{Markets: oddssnapshot.Markets{Total: floatPtr(6.5)}})
	offNumber, _ := d.Compute(oddssnapshot.OddsSnapshot{Markets: oddssnapshot.Markets{Total: floatPtr(6.0)}})
	if onNumber.Score <= offNumber.Score {
		t.Fatalf("expected a half-goal total to score higher fragility than a whole-goal total: %f vs %f", onNumber.Score, offNumber.Score)
	}
}
