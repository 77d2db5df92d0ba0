// Package nba implements the NBA driver set: a moneyline-based favorite
// driver and a totals-based pace driver.
package nba

import (
	"math"

	"github.com/sharplineio/cardengine/internal/domain/card"
	"github.com/sharplineio/cardengine/internal/domain/modeloutput"
	"github.com/sharplineio/cardengine/internal/domain/oddssnapshot"
	"github.com/sharplineio/cardengine/internal/usecase/driver"
)

const Sport = "nba"

func Drivers() []driver.Driver {
	return []driver.Driver{
		FavoriteEdgeDriver{},
		PaceDriver{},
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

// FavoriteEdgeDriver reads the moneyline as a direct favorite-strength
// signal.
type FavoriteEdgeDriver struct{}

func (FavoriteEdgeDriver) Key() string      { return "favorite_edge" }
func (FavoriteEdgeDriver) CardType() string { return "nba-favorite-edge" }

func (FavoriteEdgeDriver) Compute(snap oddssnapshot.OddsSnapshot) (*driver.Descriptor, bool) {
	m := snap.Markets
	if m.MoneylineHome == nil {
		return nil, false
	}

	score := clamp01(impliedProbability(*m.MoneylineHome))
	confidence := confidenceFromScore(score, 0.35)
	prediction := modeloutput.PredictionAway
	recType := card.RecommendationMLAway
	title := "Away Favorite Edge"
	if score > 0.5 {
		prediction = modeloutput.PredictionHome
		recType = card.RecommendationMLHome
		title = "Home Favorite Edge"
	}

	return &driver.Descriptor{
		Key:                "favorite_edge",
		CardType:           "nba-favorite-edge",
		CardTitle:          title,
		CardCategory:       "favorite_edge",
		Confidence:         confidence,
		Score:              score,
		Prediction:         prediction,
		Reasoning:          "Moneyline-implied probability as a favorite-strength signal.",
		EVThresholdPassed:  confidence >= 0.15,
		Inputs:             map[string]any{"h2h_home": *m.MoneylineHome},
		Recommendation:     recType,
		RecommendedBetType: "moneyline",
	}, true
}

// PaceDriver reads the total line as a proxy for expected pace: a high
// total implies a fast, over-leaning game.
type PaceDriver struct{}

func (PaceDriver) Key() string      { return "pace" }
func (PaceDriver) CardType() string { return "nba-pace" }

func (PaceDriver) Compute(snap oddssnapshot.OddsSnapshot) (*driver.Descriptor, bool) {
	m := snap.Markets
	if m.Total == nil {
		return nil, false
	}

	const midpoint, spread = 222.0, 12.0
	score := clamp01(0.5 + (*m.Total-midpoint)/(spread*2))
	confidence := confidenceFromScore(score, 0.28)
	prediction := modeloutput.PredictionUnder
	recType := card.RecommendationTotalUnder
	title := "Under: Slow Pace"
	if score > 0.5 {
		prediction = modeloutput.PredictionOver
		recType = card.RecommendationTotalOver
		title = "Over: Fast Pace"
	}

	return &driver.Descriptor{
		Key:                "pace",
		CardType:           "nba-pace",
		CardTitle:          title,
		CardCategory:       "pace",
		Confidence:         confidence,
		Score:              score,
		Prediction:         prediction,
		Reasoning:          "Total line distance from league-average pace.",
		EVThresholdPassed:  confidence >= 0.12,
		Inputs:             map[string]any{"total": *m.Total},
		Recommendation:     recType,
		RecommendedBetType: "total",
	}, true
}
