package oddssnapshot

import "time"

// Markets captures the exact odds fields a driver or the settlement engine
// grades against. Fields are pointers so "provider omitted this market" is
// distinguishable from "the value is zero".
type Markets struct {
	MoneylineHome *int     // american odds, e.g. -150
	MoneylineAway *int     // american odds, e.g. +130
	Total         *float64 // combined-score line, e.g. 6.0
	TotalOverOdds *int     // american odds, defaults to -110 when omitted
	TotalUnderOdds *int    // american odds, defaults to -110 when omitted
	SpreadHome      *float64
	SpreadAway      *float64
	SpreadHomeOdds  *int // american odds, defaults to -110 when omitted
	SpreadAwayOdds  *int // american odds, defaults to -110 when omitted
}

// OddsSnapshot is one append-only capture of a game's betting lines.
type OddsSnapshot struct {
	ID         string
	GameID     string
	CapturedAt time.Time
	Markets    Markets
	RawPayload []byte
	JobRunID   string
}

const DefaultAmericanOdds = -110
