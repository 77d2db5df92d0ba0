package gameresult

import "time"

// GameResult is the final score/status for a game, sourced from an external
// results feed.
type GameResult struct {
	GameID         string
	FinalScoreHome int
	FinalScoreAway int
	Status         string // "final"
	ResultSource   string
	SettledAt      time.Time
}
