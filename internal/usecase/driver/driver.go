// Package driver defines the capability set every per-sport analytical
// driver implements, so the Fan-out usecase can treat NHL/NFL/NBA drivers
// polymorphically instead of branching on sport.
package driver

import (
	"github.com/sharplineio/cardengine/internal/domain/card"
	"github.com/sharplineio/cardengine/internal/domain/modeloutput"
	"github.com/sharplineio/cardengine/internal/domain/oddssnapshot"
)

// Descriptor is one driver's computed output for a game at a point in time.
type Descriptor struct {
	Key                string
	CardType           string
	CardTitle          string
	CardCategory       string
	Confidence         float64
	Score              float64
	Prediction         modeloutput.Prediction
	Reasoning          string
	EVThresholdPassed  bool
	Inputs             map[string]any
	Recommendation     card.RecommendationType
	RecommendedBetType string
}

// Driver computes one analytical signal for a game from its latest odds
// snapshot. Compute returns (nil, false) when the snapshot is missing the
// inputs this driver needs — that is "missing", not a NEUTRAL prediction.
type Driver interface {
	Key() string
	CardType() string
	Compute(snapshot oddssnapshot.OddsSnapshot) (*Descriptor, bool)
}
