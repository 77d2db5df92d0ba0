package memory

import (
	"context"
	"sync"
	"time"

	"github.com/sharplineio/cardengine/internal/domain/cardresult"
	"github.com/sharplineio/cardengine/internal/domain/game"
)

// CardResultRepository needs read access to Game and Card state to answer
// "pending cards whose game is final" and ledger filters without a real
// join; that mirrors how the postgres implementation queries across tables
// but keeps the in-memory fake dependency-free rather than re-deriving SQL.
type CardResultRepository struct {
	mu     sync.RWMutex
	byCard map[string]cardresult.CardResult

	games *GameRepository
	cards *CardRepository
}

func NewCardResultRepository(games *GameRepository, cards *CardRepository) *CardResultRepository {
	return &CardResultRepository{
		byCard: make(map[string]cardresult.CardResult),
		games:  games,
		cards:  cards,
	}
}

func (r *CardResultRepository) InsertPending(_ context.Context, cr cardresult.CardResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cr.Status = cardresult.StatusPending
	r.byCard[cr.CardID] = cr
	return nil
}

func (r *CardResultRepository) ListPendingWithFinalGame(ctx context.Context) ([]cardresult.CardResult, error) {
	r.mu.RLock()
	pending := make([]cardresult.CardResult, 0)
	for _, cr := range r.byCard {
		if cr.Status == cardresult.StatusPending {
			pending = append(pending, cr)
		}
	}
	r.mu.RUnlock()

	var out []cardresult.CardResult
	for _, cr := range pending {
		g, err := r.games.GetByID(ctx, cr.GameID)
		if err != nil || g.Status != game.StatusFinal {
			continue
		}
		out = append(out, cr)
	}
	return out, nil
}

func (r *CardResultRepository) MarkSettled(_ context.Context, cardID, result string, pnlUnits float64, settledAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cr, ok := r.byCard[cardID]
	if !ok || cr.Status != cardresult.StatusPending {
		return false, nil
	}
	cr.Status = cardresult.StatusSettled
	cr.Result = &result
	cr.PnLUnits = pnlUnits
	cr.SettledAt = &settledAt
	r.byCard[cardID] = cr
	return true, nil
}

func (r *CardResultRepository) ListSettledByKey(_ context.Context, sport, cardCategory, recommendedBetType string) ([]cardresult.CardResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []cardresult.CardResult
	for _, cr := range r.byCard {
		if cr.Status != cardresult.StatusSettled {
			continue
		}
		if cr.Sport == sport && cr.CardCategory == cardCategory && cr.RecommendedBetType == recommendedBetType {
			out = append(out, cr)
		}
	}
	return out, nil
}

func (r *CardResultRepository) ListForLedger(ctx context.Context, filter cardresult.ResultFilter) ([]cardresult.CardResult, error) {
	r.mu.RLock()
	all := make([]cardresult.CardResult, 0, len(r.byCard))
	for _, cr := range r.byCard {
		all = append(all, cr)
	}
	r.mu.RUnlock()

	var out []cardresult.CardResult
	for _, cr := range all {
		if filter.Sport != "" && cr.Sport != filter.Sport {
			continue
		}
		if filter.Market != "" && cr.RecommendedBetType != filter.Market {
			continue
		}
		if filter.CardCategory != "" && cr.CardCategory != filter.CardCategory {
			continue
		}
		out = append(out, cr)
	}

	if !filter.Dedupe {
		return out, nil
	}

	seen := make(map[string]bool)
	deduped := make([]cardresult.CardResult, 0, len(out))
	for _, cr := range out {
		c, err := r.cards.GetByID(ctx, cr.CardID)
		var k string
		if err == nil {
			k = c.GameID + "|" + c.CardType
		} else {
			k = cr.CardID
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		deduped = append(deduped, cr)
	}
	return deduped, nil
}
