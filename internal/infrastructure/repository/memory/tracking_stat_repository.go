package memory

import (
	"context"
	"sync"

	"github.com/sharplineio/cardengine/internal/domain/trackingstat"
)

type TrackingStatRepository struct {
	mu     sync.RWMutex
	byKey  map[trackingstat.Key]trackingstat.TrackingStat
}

func NewTrackingStatRepository() *TrackingStatRepository {
	return &TrackingStatRepository{byKey: make(map[trackingstat.Key]trackingstat.TrackingStat)}
}

func (r *TrackingStatRepository) Upsert(_ context.Context, s trackingstat.TrackingStat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byKey[trackingstat.Key{Sport: s.Sport, CardCategory: s.CardCategory, RecommendedBetType: s.RecommendedBetType}] = s
	return nil
}

func (r *TrackingStatRepository) ListAll(_ context.Context) ([]trackingstat.TrackingStat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]trackingstat.TrackingStat, 0, len(r.byKey))
	for _, s := range r.byKey {
		out = append(out, s)
	}
	return out, nil
}
