package modeloutput

import "time"

// Prediction is the direction a driver settles on.
type Prediction string

const (
	PredictionHome    Prediction = "HOME"
	PredictionAway    Prediction = "AWAY"
	PredictionOver    Prediction = "OVER"
	PredictionUnder   Prediction = "UNDER"
	PredictionNeutral Prediction = "NEUTRAL"
	PredictionPass    Prediction = "PASS"
)

// DriverStatus reports whether a driver produced a descriptor at all.
type DriverStatus string

const (
	DriverStatusOK      DriverStatus = "ok"
	DriverStatusMissing DriverStatus = "missing"
)

// ModelOutput is the raw driver-set output captured for a game at a point in
// time, referencing the odds snapshot it was computed from.
type ModelOutput struct {
	ID             string
	GameID         string
	Sport          string
	OddsSnapshotID string
	DriverKey      string
	CardType       string
	Prediction     Prediction
	Confidence     float64
	Score          float64
	Status         DriverStatus
	Reasoning      string
	Inputs         map[string]any
	EVThresholdPassed bool
	CreatedAt      time.Time
}
