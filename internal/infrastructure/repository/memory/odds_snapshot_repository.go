package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sharplineio/cardengine/internal/domain/oddssnapshot"
	"github.com/sharplineio/cardengine/internal/usecase"
)

type OddsSnapshotRepository struct {
	mu        sync.RWMutex
	byGame    map[string][]oddssnapshot.OddsSnapshot
	seenKey   map[string]bool
}

func NewOddsSnapshotRepository() *OddsSnapshotRepository {
	return &OddsSnapshotRepository{
		byGame:  make(map[string][]oddssnapshot.OddsSnapshot),
		seenKey: make(map[string]bool),
	}
}

func (r *OddsSnapshotRepository) InsertBatch(_ context.Context, rows []oddssnapshot.OddsSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range rows {
		key := fmt.Sprintf("%s|%s", row.GameID, row.CapturedAt.Format("2006-01-02T15:04:05.000000000Z"))
		if r.seenKey[key] {
			return fmt.Errorf("%w: odds snapshot already exists for %s at %s", usecase.ErrInvalidInput, row.GameID, row.CapturedAt)
		}
	}

	for _, row := range rows {
		key := fmt.Sprintf("%s|%s", row.GameID, row.CapturedAt.Format("2006-01-02T15:04:05.000000000Z"))
		r.seenKey[key] = true
		r.byGame[row.GameID] = append(r.byGame[row.GameID], row)
	}
	return nil
}

func (r *OddsSnapshotRepository) LatestByGame(_ context.Context, gameID string) (oddssnapshot.OddsSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.byGame[gameID]
	if len(rows) == 0 {
		return oddssnapshot.OddsSnapshot{}, usecase.ErrNotFound
	}

	out := append([]oddssnapshot.OddsSnapshot(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CapturedAt.After(out[j].CapturedAt)
	})
	return out[0], nil
}
