package card

import "time"

// RecommendationType is the authoritative bet direction settlement grades
// against; it is independent of (and takes priority over) the legacy
// Prediction field carried in a payload for human display.
type RecommendationType string

const (
	RecommendationMLHome      RecommendationType = "ML_HOME"
	RecommendationMLAway      RecommendationType = "ML_AWAY"
	RecommendationSpreadHome  RecommendationType = "SPREAD_HOME"
	RecommendationSpreadAway  RecommendationType = "SPREAD_AWAY"
	RecommendationTotalOver   RecommendationType = "TOTAL_OVER"
	RecommendationTotalUnder  RecommendationType = "TOTAL_UNDER"
	RecommendationPass        RecommendationType = "PASS"
)

// Payload is the decoded shape of CardPayload.PayloadData. Other fields the
// driver adds (odds_context, driver sub-object, meta) travel as raw JSON
// inside the stored payload but are not needed by the Go type to route
// settlement, which only needs Recommendation (and Prediction as a legacy
// fallback).
type Payload struct {
	Prediction         string             `json:"prediction"`
	Confidence         float64            `json:"confidence"`
	Reasoning          string             `json:"reasoning,omitempty"`
	RecommendedBetType string             `json:"recommended_bet_type,omitempty"`
	Recommendation     *Recommendation    `json:"recommendation,omitempty"`
	OddsContext        OddsContext        `json:"odds_context"`
	Driver             map[string]any     `json:"driver,omitempty"`
	Meta               Meta               `json:"meta,omitempty"`
}

type Recommendation struct {
	Type RecommendationType `json:"type"`
}

// OddsContext is the exact subset of market fields the card was graded
// against at creation time, copied from the odds snapshot so settlement
// never has to re-join back to odds_snapshots.
type OddsContext struct {
	H2HHome        *int     `json:"h2h_home,omitempty"`
	H2HAway        *int     `json:"h2h_away,omitempty"`
	Total          *float64 `json:"total,omitempty"`
	TotalOverOdds  *int     `json:"total_over_odds,omitempty"`
	TotalUnderOdds *int     `json:"total_under_odds,omitempty"`
	SpreadHome       *float64 `json:"spread_home,omitempty"`
	SpreadAway       *float64 `json:"spread_away,omitempty"`
	SpreadHomeOdds   *int     `json:"spread_home_odds,omitempty"`
	SpreadAwayOdds   *int     `json:"spread_away_odds,omitempty"`
}

type Meta struct {
	InferenceSource string `json:"inference_source,omitempty"`
	IsMock          bool   `json:"is_mock,omitempty"`
}

// Payload is a CardPayload: the card produced by a driver for a game at a
// point in time.
type CardPayload struct {
	ID              string
	GameID          string
	Sport           string
	CardType        string
	CardTitle       string
	CardCategory    string
	CreatedAt       time.Time
	ExpiresAt       *time.Time
	PayloadData     []byte
	ModelOutputIDs  []string
}
