package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/sharplineio/cardengine/internal/domain/card"
	"github.com/sharplineio/cardengine/internal/usecase"
)

type CardRepository struct {
	mu   sync.RWMutex
	byID map[string]card.CardPayload
}

func NewCardRepository() *CardRepository {
	return &CardRepository{byID: make(map[string]card.CardPayload)}
}

func (r *CardRepository) Insert(_ context.Context, c card.CardPayload) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID[c.ID] = c
	return nil
}

func (r *CardRepository) GetByID(_ context.Context, id string) (card.CardPayload, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return card.CardPayload{}, usecase.ErrNotFound
	}
	return c, nil
}

func (r *CardRepository) ListCards(_ context.Context, filter card.ListFilter) ([]card.CardPayload, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []card.CardPayload
	for _, c := range r.byID {
		if filter.GameID != "" && c.GameID != filter.GameID {
			continue
		}
		if !filter.AsOf.IsZero() && c.ExpiresAt != nil && c.ExpiresAt.Before(filter.AsOf) {
			continue
		}
		all = append(all, c)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if filter.Dedupe != card.DedupeLatestPerGameType {
		return all, nil
	}

	seen := make(map[string]bool)
	out := make([]card.CardPayload, 0, len(all))
	for _, c := range all {
		k := c.GameID + "|" + c.CardType
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, c)
	}
	return out, nil
}
