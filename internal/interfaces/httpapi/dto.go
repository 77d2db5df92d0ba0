package httpapi

import (
	"encoding/json"
	"time"

	"github.com/sharplineio/cardengine/internal/domain/card"
	"github.com/sharplineio/cardengine/internal/domain/cardresult"
	"github.com/sharplineio/cardengine/internal/domain/game"
	"github.com/sharplineio/cardengine/internal/domain/jobrun"
	"github.com/sharplineio/cardengine/internal/domain/trackingstat"
)

type gameDTO struct {
	GameID    string    `json:"game_id"`
	Sport     string    `json:"sport"`
	Home      string    `json:"home"`
	Away      string    `json:"away"`
	StartUTC  time.Time `json:"game_time_utc"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

func gameToDTO(g game.Game) gameDTO {
	return gameDTO{
		GameID:    g.GameID,
		Sport:     g.Sport,
		Home:      g.Home,
		Away:      g.Away,
		StartUTC:  g.StartUTC,
		Status:    g.Status,
		UpdatedAt: g.UpdatedAt,
	}
}

type cardDTO struct {
	ID           string          `json:"id"`
	GameID       string          `json:"game_id"`
	Sport        string          `json:"sport"`
	CardType     string          `json:"card_type"`
	CardTitle    string          `json:"card_title"`
	CardCategory string          `json:"card_category"`
	CreatedAt    time.Time       `json:"created_at"`
	ExpiresAt    *time.Time      `json:"expires_at,omitempty"`
	Payload      json.RawMessage `json:"payload"`
}

func cardToDTO(c card.CardPayload) cardDTO {
	return cardDTO{
		ID:           c.ID,
		GameID:       c.GameID,
		Sport:        c.Sport,
		CardType:     c.CardType,
		CardTitle:    c.CardTitle,
		CardCategory: c.CardCategory,
		CreatedAt:    c.CreatedAt,
		ExpiresAt:    c.ExpiresAt,
		Payload:      json.RawMessage(c.PayloadData),
	}
}

type cardResultDTO struct {
	ID                 string     `json:"id"`
	CardID             string     `json:"card_id"`
	GameID             string     `json:"game_id"`
	Sport              string     `json:"sport"`
	CardCategory       string     `json:"card_category"`
	RecommendedBetType string     `json:"recommended_bet_type"`
	Status             string     `json:"status"`
	Result             *string    `json:"result,omitempty"`
	PnLUnits           float64    `json:"pnl_units"`
	SettledAt          *time.Time `json:"settled_at,omitempty"`
}

func cardResultToDTO(cr cardresult.CardResult) cardResultDTO {
	return cardResultDTO{
		ID:                 cr.ID,
		CardID:             cr.CardID,
		GameID:             cr.GameID,
		Sport:              cr.Sport,
		CardCategory:       cr.CardCategory,
		RecommendedBetType: cr.RecommendedBetType,
		Status:             cr.Status,
		Result:             cr.Result,
		PnLUnits:           cr.PnLUnits,
		SettledAt:          cr.SettledAt,
	}
}

type segmentDTO struct {
	Sport              string    `json:"sport"`
	CardCategory       string    `json:"card_category"`
	RecommendedBetType string    `json:"recommended_bet_type"`
	Wins               int       `json:"wins"`
	Losses             int       `json:"losses"`
	Pushes             int       `json:"pushes"`
	TotalPnLUnits      float64   `json:"total_pnl_units"`
	LastUpdated        time.Time `json:"last_updated"`
}

func segmentToDTO(s trackingstat.TrackingStat) segmentDTO {
	return segmentDTO{
		Sport:              s.Sport,
		CardCategory:       s.CardCategory,
		RecommendedBetType: s.RecommendedBetType,
		Wins:               s.Wins,
		Losses:             s.Losses,
		Pushes:             s.Pushes,
		TotalPnLUnits:      s.TotalPnLUnits,
		LastUpdated:        s.LastUpdated,
	}
}

type ledgerDTO struct {
	Results  []cardResultDTO `json:"results"`
	Segments []segmentDTO    `json:"segments"`
}

type healthDTO struct {
	Status        string               `json:"status"`
	DBReachable   bool                 `json:"db_reachable"`
	LastSuccesses map[string]jobRunDTO `json:"last_successes"`
}

type jobRunDTO struct {
	ID        string    `json:"id"`
	JobName   string    `json:"job_name"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

func jobRunToDTO(r jobrun.JobRun) jobRunDTO {
	return jobRunDTO{
		ID:        r.ID,
		JobName:   r.JobName,
		StartedAt: r.StartedAt,
		EndedAt:   r.EndedAt,
	}
}
