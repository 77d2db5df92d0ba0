// Package nfl implements the NFL driver set: a moneyline-based favorite
// driver and a totals-based game-script driver. The set is deliberately
// smaller than NHL's — it exists to prove the driver.Driver contract is
// sport-agnostic, not to exhaustively model football.
package nfl

import (
	"math"

	"github.com/sharplineio/cardengine/internal/domain/card"
	"github.com/sharplineio/cardengine/internal/domain/modeloutput"
	"github.com/sharplineio/cardengine/internal/domain/oddssnapshot"
	"github.com/sharplineio/cardengine/internal/usecase/driver"
)

const Sport = "nfl"

func Drivers() []driver.Driver {
	return []driver.Driver{
		FavoriteEdgeDriver{},
		GameScriptDriver{},
	}
}

func impliedProbability(americanOdds int) float64 {
	if americanOdds < 0 {
		f := float64(-americanOdds)
		return f / (f + 100)
	}
	f := float64(americanOdds)
	return 100 / (f + 100)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func confidenceFromScore(score, maxRange float64) float64 {
	c := math.Abs(score-0.5) * 2 * maxRange
	if c > maxRange {
		return maxRange
	}
	return c
}

// FavoriteEdgeDriver reads the spread as a direct favorite-strength signal.
type FavoriteEdgeDriver struct{}

func (FavoriteEdgeDriver) Key() string      { return "favorite_edge" }
func (FavoriteEdgeDriver) CardType() string { return "nfl-favorite-edge" }

func (FavoriteEdgeDriver) Compute(snap oddssnapshot.OddsSnapshot) (*driver.Descriptor, bool) {
	m := snap.Markets
	if m.SpreadHome == nil {
		return nil, false
	}

	const maxSpread = 14.0
	score := clamp01(0.5 - (*m.SpreadHome)/(maxSpread*2))
	confidence := confidenceFromScore(score, 0.40)
	prediction := modeloutput.PredictionAway
	recType := card.RecommendationSpreadAway
	title := "Away Favorite Edge"
	if score > 0.5 {
		prediction = modeloutput.PredictionHome
		recType = card.RecommendationSpreadHome
		title = "Home Favorite Edge"
	}

	return &driver.Descriptor{
		Key:                "favorite_edge",
		CardType:           "nfl-favorite-edge",
		CardTitle:          title,
		CardCategory:       "favorite_edge",
		Confidence:         confidence,
		Score:              score,
		Prediction:         prediction,
		Reasoning:          "Point spread magnitude as a favorite-strength signal.",
		EVThresholdPassed:  confidence >= 0.18,
		Inputs:             map[string]any{"spread_home": *m.SpreadHome},
		Recommendation:     recType,
		RecommendedBetType: "spread",
	}, true
}

// GameScriptDriver reads the total line as a proxy for expected game script
// (high total implies a more pass-heavy, over-leaning script).
type GameScriptDriver struct{}

func (GameScriptDriver) Key() string      { return "game_script" }
func (GameScriptDriver) CardType() string { return "nfl-game-script" }

func (GameScriptDriver) Compute(snap oddssnapshot.OddsSnapshot) (*driver.Descriptor, bool) {
	m := snap.Markets
	if m.Total == nil {
		return nil, false
	}

	const midpoint, spread = 44.0, 7.0
	score := clamp01(0.5 + (*m.Total-midpoint)/(spread*2))
	confidence := confidenceFromScore(score, 0.30)
	prediction := modeloutput.PredictionUnder
	recType := card.RecommendationTotalUnder
	title := "Under: Grind Game Script"
	if score > 0.5 {
		prediction = modeloutput.PredictionOver
		recType = card.RecommendationTotalOver
		title = "Over: Shootout Game Script"
	}

	return &driver.Descriptor{
		Key:                "game_script",
		CardType:           "nfl-game-script",
		CardTitle:          title,
		CardCategory:       "game_script",
		Confidence:         confidence,
		Score:              score,
		Prediction:         prediction,
		Reasoning:          "Total line distance from league-average implied pace.",
		EVThresholdPassed:  confidence >= 0.15,
		Inputs:             map[string]any{"total": *m.Total},
		Recommendation:     recType,
		RecommendedBetType: "total",
	}, true
}
