package memory

import (
	"context"
	"sync"

	"github.com/sharplineio/cardengine/internal/domain/gameresult"
	"github.com/sharplineio/cardengine/internal/usecase"
)

type GameResultRepository struct {
	mu     sync.RWMutex
	byGame map[string]gameresult.GameResult
}

func NewGameResultRepository() *GameResultRepository {
	return &GameResultRepository{byGame: make(map[string]gameresult.GameResult)}
}

func (r *GameResultRepository) Upsert(_ context.Context, res gameresult.GameResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byGame[res.GameID] = res
	return nil
}

func (r *GameResultRepository) GetByGameID(_ context.Context, gameID string) (gameresult.GameResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, ok := r.byGame[gameID]
	if !ok {
		return gameresult.GameResult{}, usecase.ErrNotFound
	}
	return res, nil
}
