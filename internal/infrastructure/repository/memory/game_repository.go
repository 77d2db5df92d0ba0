package memory

import (
	"context"
	"sync"
	"time"

	"github.com/sharplineio/cardengine/internal/domain/game"
	"github.com/sharplineio/cardengine/internal/usecase"
)

type GameRepository struct {
	mu    sync.RWMutex
	byID  map[string]game.Game
}

func NewGameRepository() *GameRepository {
	return &GameRepository{byID: make(map[string]game.Game)}
}

func (r *GameRepository) UpsertGame(_ context.Context, g game.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byID[g.GameID]; ok {
		g.Status = existing.Status
	}
	if g.Status == "" {
		g.Status = game.StatusScheduled
	}
	g.UpdatedAt = time.Now().UTC()
	r.byID[g.GameID] = g
	return nil
}

func (r *GameRepository) GetByID(_ context.Context, gameID string) (game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.byID[gameID]
	if !ok {
		return game.Game{}, usecase.ErrNotFound
	}
	return g, nil
}

func (r *GameRepository) ListBySport(_ context.Context, sport string) ([]game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []game.Game
	for _, g := range r.byID {
		if g.Sport == sport {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *GameRepository) ListFrom(_ context.Context, from time.Time) ([]game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []game.Game
	for _, g := range r.byID {
		if !g.StartUTC.Before(from) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *GameRepository) ListNotFinalPastStart(_ context.Context, asOf time.Time) ([]game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []game.Game
	for _, g := range r.byID {
		if g.Status != game.StatusFinal && g.StartUTC.Before(asOf) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *GameRepository) UpdateStatus(_ context.Context, gameID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.byID[gameID]
	if !ok {
		return usecase.ErrNotFound
	}
	g.Status = status
	g.UpdatedAt = time.Now().UTC()
	r.byID[gameID] = g
	return nil
}
