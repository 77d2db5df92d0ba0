// Package nhl implements the NHL driver set: goalie, special-teams,
// shot-environment, empty-net, and total-fragility. Each driver is a pure
// function of the latest odds snapshot for a game — there is no separate
// stats feed in this pipeline, so a driver's "score" is derived
// deterministically from the market fields it needs, which is also why two
// snapshots with different lines always yield different confidences.
package nhl

import (
	"math"

	"github.com/sharplineio/cardengine/internal/domain/card"
	"github.com/sharplineio/cardengine/internal/domain/modeloutput"
	"github.com/sharplineio/cardengine/internal/domain/oddssnapshot"
	"github.com/sharplineio/cardengine/internal/usecase/driver"
)

const Sport = "nhl"

// Drivers returns the five NHL drivers in a fixed order, for deterministic
// fan-out iteration.
func Drivers() []driver.Driver {
	return []driver.Driver{
		GoalieDriver{},
		SpecialTeamsDriver{},
		ShotEnvironmentDriver{},
		EmptyNetDriver{},
		TotalFragilityDriver{},
	}
}

// impliedProbability converts american odds into the bookmaker's implied
// win probability, ignoring vig.
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

// confidenceFromScore maps a 0..1 score to a confidence in [0, maxRange],
// scaling with distance from the 0.5 midpoint; each driver owns its own
// range rather than sharing a global baseline.
func confidenceFromScore(score, maxRange float64) float64 {
	c := math.Abs(score-0.5) * 2 * maxRange
	if c > maxRange {
		return maxRange
	}
	return c
}

// GoalieDriver reads the moneyline split as a proxy for starting-goalie
// matchup quality: a heavily-favored home moneyline implies the stronger
// projected goalie start at home.
type GoalieDriver struct{}

func (GoalieDriver) Key() string      { return "goalie" }
func (GoalieDriver) CardType() string { return "nhl-goalie" }

func (GoalieDriver) Compute(snap oddssnapshot.OddsSnapshot) (*driver.Descriptor, bool) {
	m := snap.Markets
	if m.MoneylineHome == nil || m.MoneylineAway == nil {
		return nil, false
	}

	score := clamp01(impliedProbability(*m.MoneylineHome))
	confidence := confidenceFromScore(score, 0.35)
	prediction := modeloutput.PredictionAway
	recType := card.RecommendationMLAway
	title := "Away Goalie Edge"
	if score > 0.5 {
		prediction = modeloutput.PredictionHome
		recType = card.RecommendationMLHome
		title = "Home Goalie Edge"
	}

	return &driver.Descriptor{
		Key:                "goalie",
		CardType:           "nhl-goalie",
		CardTitle:          title,
		CardCategory:       "goalie",
		Confidence:         confidence,
		Score:              score,
		Prediction:         prediction,
		Reasoning:          "Moneyline-implied starting goalie matchup edge.",
		EVThresholdPassed:  confidence >= 0.15,
		Inputs:             map[string]any{"h2h_home": *m.MoneylineHome, "h2h_away": *m.MoneylineAway},
		Recommendation:     recType,
		RecommendedBetType: "moneyline",
	}, true
}

// SpecialTeamsDriver reads the same moneyline split through a narrower lens
// (power-play/penalty-kill proxy), producing a distinct confidence band from
// GoalieDriver even on the same snapshot.
type SpecialTeamsDriver struct{}

func (SpecialTeamsDriver) Key() string      { return "special_teams" }
func (SpecialTeamsDriver) CardType() string { return "nhl-special-teams" }

func (SpecialTeamsDriver) Compute(snap oddssnapshot.OddsSnapshot) (*driver.Descriptor, bool) {
	m := snap.Markets
	if m.MoneylineHome == nil || m.MoneylineAway == nil {
		return nil, false
	}

	homeProb := impliedProbability(*m.MoneylineHome)
	awayProb := impliedProbability(*m.MoneylineAway)
	total := homeProb + awayProb
	if total <= 0 {
		return nil, false
	}
	score := clamp01(homeProb / total)
	confidence := confidenceFromScore(score, 0.25)
	prediction := modeloutput.PredictionAway
	recType := card.RecommendationMLAway
	title := "Away Special Teams Edge"
	if score > 0.5 {
		prediction = modeloutput.PredictionHome
		recType = card.RecommendationMLHome
		title = "Home Special Teams Edge"
	}

	return &driver.Descriptor{
		Key:                "special_teams",
		CardType:           "nhl-special-teams",
		CardTitle:          title,
		CardCategory:       "special_teams",
		Confidence:         confidence,
		Score:              score,
		Prediction:         prediction,
		Reasoning:          "Vig-normalized moneyline split as a special-teams proxy.",
		EVThresholdPassed:  confidence >= 0.10,
		Inputs:             map[string]any{"h2h_home": *m.MoneylineHome, "h2h_away": *m.MoneylineAway},
		Recommendation:     recType,
		RecommendedBetType: "moneyline",
	}, true
}

// ShotEnvironmentDriver reads the total line: a high total implies an
// expected shot-volume environment favoring the over.
type ShotEnvironmentDriver struct{}

func (ShotEnvironmentDriver) Key() string      { return "shot_environment" }
func (ShotEnvironmentDriver) CardType() string { return "nhl-shot-environment" }

func (ShotEnvironmentDriver) Compute(snap oddssnapshot.OddsSnapshot) (*driver.Descriptor, bool) {
	m := snap.Markets
	if m.Total == nil {
		return nil, false
	}

	const midpoint, spread = 6.0, 2.0
	score := clamp01(0.5 + (*m.Total-midpoint)/(spread*2))
	confidence := confidenceFromScore(score, 0.30)
	prediction := modeloutput.PredictionUnder
	recType := card.RecommendationTotalUnder
	title := "Under: Low Shot Environment"
	if score > 0.5 {
		prediction = modeloutput.PredictionOver
		recType = card.RecommendationTotalOver
		title = "Over: High Shot Environment"
	}

	return &driver.Descriptor{
		Key:                "shot_environment",
		CardType:           "nhl-shot-environment",
		CardTitle:          title,
		CardCategory:       "shot_environment",
		Confidence:         confidence,
		Score:              score,
		Prediction:         prediction,
		Reasoning:          "Total line distance from league-average shot volume.",
		EVThresholdPassed:  confidence >= 0.12,
		Inputs:             map[string]any{"total": *m.Total},
		Recommendation:     recType,
		RecommendedBetType: "total",
	}, true
}

// EmptyNetDriver reads the puck line (spread) as a blowout-likelihood
// proxy: a wide home spread implies more empty-net opportunity for the
// favored side late in games.
type EmptyNetDriver struct{}

func (EmptyNetDriver) Key() string      { return "empty_net" }
func (EmptyNetDriver) CardType() string { return "nhl-empty-net" }

func (EmptyNetDriver) Compute(snap oddssnapshot.OddsSnapshot) (*driver.Descriptor, bool) {
	m := snap.Markets
	if m.SpreadHome == nil || m.SpreadAway == nil {
		return nil, false
	}

	const maxSpread = 2.5
	score := clamp01(0.5 - (*m.SpreadHome)/(maxSpread*2))
	confidence := confidenceFromScore(score, 0.20)
	prediction := modeloutput.PredictionAway
	recType := card.RecommendationSpreadAway
	title := "Away Empty-Net Lean"
	if score > 0.5 {
		prediction = modeloutput.PredictionHome
		recType = card.RecommendationSpreadHome
		title = "Home Empty-Net Lean"
	}

	return &driver.Descriptor{
		Key:                "empty_net",
		CardType:           "nhl-empty-net",
		CardTitle:          title,
		CardCategory:       "empty_net",
		Confidence:         confidence,
		Score:              score,
		Prediction:         prediction,
		Reasoning:          "Puck line width as a blowout/empty-net proxy.",
		EVThresholdPassed:  confidence >= 0.08,
		Inputs:             map[string]any{"spread_home": *m.SpreadHome, "spread_away": *m.SpreadAway},
		Recommendation:     recType,
		RecommendedBetType: "spread",
	}, true
}

// TotalFragilityDriver flags totals that sit exactly on a fragile number
// (a half-goal off a common final-score margin). It always reports
// prediction=NEUTRAL regardless of score — the card exists to surface the
// fragility itself, not to recommend a side.
type TotalFragilityDriver struct{}

func (TotalFragilityDriver) Key() string      { return "total_fragility" }
func (TotalFragilityDriver) CardType() string { return "nhl-total-fragility" }

func (TotalFragilityDriver) Compute(snap oddssnapshot.OddsSnapshot) (*driver.Descriptor, bool) {
	m := snap.Markets
	if m.Total == nil {
		return nil, false
	}

	frac := *m.Total - math.Floor(*m.Total)
	score := clamp01(1 - math.Abs(frac-0.5)*2)
	confidence := score

	return &driver.Descriptor{
		Key:                "total_fragility",
		CardType:           "nhl-total-fragility",
		CardTitle:          "Total Fragility Watch",
		CardCategory:       "total_fragility",
		Confidence:         confidence,
		Score:              score,
		Prediction:         modeloutput.PredictionNeutral,
		Reasoning:          "Total sits near a single-goal fragile number.",
		EVThresholdPassed:  false,
		Inputs:             map[string]any{"total": *m.Total},
		Recommendation:     card.RecommendationPass,
		RecommendedBetType: "total",
	}, true
}
