package nfl_test

import (
	"testing"

	"github.com/sharplineio/cardengine/internal/domain/card"
	"github.com/sharplineio/cardengine/internal/domain/modeloutput"
	"github.com/sharplineio/cardengine/internal/domain/oddssnapshot"
	"github.com/sharplineio/cardengine/internal/usecase/drivers/nfl"
)

func floatPtr(v float64) *float64 { return &v }

func TestDrivers_ReturnsTwoInFixedOrder(t *testing.T) {
	drivers := nfl.Drivers()
	if len(drivers) != 2 {
		t.Fatalf("expected 2 drivers, got %d", len(drivers))
	}
	if drivers[0].Key() != "favorite_edge" || drivers[1].Key() != "game_script" {
		t.Fatalf("unexpected driver order: %s, %s", drivers[0].Key(), drivers[1].Key())
	}
}

func TestFavoriteEdgeDriver_MissingSpreadReturnsFalse(t *testing.T) {
	d := nfl.FavoriteEdgeDriver{}
	_, ok := d.Compute(oddssnapshot.OddsSnapshot{Markets: oddssnapshot.Markets{}})
	if ok {
		t.Fatalf("expected ok=false without a home spread")
	}
}

func TestFavoriteEdgeDriver_NegativeHomeSpreadRecommendsHome(t *testing.T) {
	d := nfl.FavoriteEdgeDriver{}
	desc, ok := d.Compute(oddssnapshot.OddsSnapshot{Markets: oddssnapshot.Markets{SpreadHome: floatPtr(-7.0)}})
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if desc.Prediction != modeloutput.PredictionHome {
		t.Fatalf("expected home prediction, got %s", desc.Prediction)
	}
	if desc.Recommendation != card.RecommendationSpreadHome {
		t.Fatalf("expected spread-home recommendation, got %s", desc.Recommendation)
	}
}

func TestFavoriteEdgeDriver_PositiveHomeSpreadRecommendsAway(t *testing.T) {
	d := nfl.FavoriteEdgeDriver{}
	desc, ok := d.Compute(oddssnapshot.OddsSnapshot{Markets: oddssnapshot.Markets{SpreadHome: floatPtr(7.0)}})
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if desc.Prediction != modeloutput.PredictionAway {
		t.Fatalf("expected away prediction, got %s", desc.Prediction)
	}
	if desc.Recommendation != card.RecommendationSpreadAway {
		t.Fatalf("expected spread-away recommendation, got %s", desc.Recommendation)
	}
}

func TestGameScriptDriver_MissingTotalReturnsFalse(t *testing.T) {
	d := nfl.GameScriptDriver{}
	_, ok := d.Compute(oddssnapshot.OddsSnapshot{Markets: oddssnapshot.Markets{}})
	if ok {
		t.Fatalf("expected ok=false without a total")
	}
}

func TestGameScriptDriver_HighTotalRecommendsOver(t *testing.T) {
	d := nfl.GameScriptDriver{}
	desc, ok := d.Compute(oddssnapshot.OddsSnapshot{Markets: oddssnapshot.Markets{Total: floatPtr(52.0)}})
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if desc.Prediction != modeloutput.PredictionOver {
		t.Fatalf("expected over prediction, got %s", desc.Prediction)
	}
	if desc.RecommendedBetType != "total" {
		t.Fatalf("expected total bet type, got %s", desc.RecommendedBetType)
	}
}

func TestGameScriptDriver_LowTotalRecommendsUnder(t *testing.T) {
	d := nfl.GameScriptDriver{}
	desc, ok := d.Compute(oddssnapshot.OddsSnapshot{Markets: oddssnapshot.Markets{Total: floatPtr(36.0)}})
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if desc.Prediction != modeloutput.PredictionUnder {
		t.Fatalf("expected under prediction, got %s", desc.Prediction)
	}
	if desc.Recommendation != card.RecommendationTotalUnder {
		t.Fatalf("expected total-under recommendation, got %s", desc.Recommendation)
	}
}
