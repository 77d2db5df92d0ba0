package memory

import (
	"context"
	"sync"

	"github.com/sharplineio/cardengine/internal/domain/modeloutput"
)

type ModelOutputRepository struct {
	mu            sync.RWMutex
	byGameAndType map[string][]modeloutput.ModelOutput
}

func NewModelOutputRepository() *ModelOutputRepository {
	return &ModelOutputRepository{byGameAndType: make(map[string][]modeloutput.ModelOutput)}
}

func keyGameType(gameID, cardType string) string {
	return gameID + "|" + cardType
}

func (r *ModelOutputRepository) InsertBatch(_ context.Context, rows []modeloutput.ModelOutput) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range rows {
		k := keyGameType(row.GameID, row.CardType)
		r.byGameAndType[k] = append(r.byGameAndType[k], row)
	}
	return nil
}

func (r *ModelOutputRepository) ClearForGameCardType(_ context.Context, gameID, cardType string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.byGameAndType, keyGameType(gameID, cardType))
	return nil
}

func (r *ModelOutputRepository) ListByGame(_ context.Context, gameID string) ([]modeloutput.ModelOutput, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []modeloutput.ModelOutput
	for k, rows := range r.byGameAndType {
		if len(k) >= len(gameID)+1 && k[:len(gameID)] == gameID && k[len(gameID)] == '|' {
			out = append(out, rows...)
		}
	}
	return out, nil
}
