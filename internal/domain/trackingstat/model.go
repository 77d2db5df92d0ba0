package trackingstat

import "time"

// TrackingStat is a rolling aggregate of settled CardResults, keyed by
// (sport, card_category, recommended_bet_type).
type TrackingStat struct {
	Sport              string
	CardCategory       string
	RecommendedBetType string
	Wins               int
	Losses             int
	Pushes             int
	TotalPnLUnits      float64
	LastUpdated        time.Time
}

type Key struct {
	Sport              string
	CardCategory       string
	RecommendedBetType string
}
