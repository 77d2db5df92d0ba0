package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/sharplineio/cardengine/internal/domain/card"
	"github.com/sharplineio/cardengine/internal/domain/game"
	basecache "github.com/sharplineio/cardengine/internal/platform/cache"
)

// GameRepository wraps a game.Repository with a read-through cache over the
// lookups the HTTP read API hits on every poll. The settlement sweep talks
// to the underlying repository directly (see ListNotFinalPastStart) since
// that path needs the freshest status, not a cached one.
type GameRepository struct {
	next  game.Repository
	cache *basecache.Store
}

func NewGameRepository(next game.Repository, cache *basecache.Store) *GameRepository {
	return &GameRepository{next: next, cache: cache}
}

func (r *GameRepository) UpsertGame(ctx context.Context, g game.Game) error {
	if err := r.next.UpsertGame(ctx, g); err != nil {
		return err
	}
	r.cache.Delete(ctx, gameByIDKey(g.GameID))
	r.cache.DeletePrefix(ctx, "game:list:sport:"+g.Sport)
	r.cache.DeletePrefix(ctx, "game:list:from:")
	return nil
}

func (r *GameRepository) GetByID(ctx context.Context, gameID string) (game.Game, error) {
	v, err := r.cache.GetOrLoad(ctx, gameByIDKey(gameID), func(ctx context.Context) (any, error) {
		return r.next.GetByID(ctx, gameID)
	})
	if err != nil {
		return game.Game{}, err
	}
	g, _ := v.(game.Game)
	return g, nil
}

func (r *GameRepository) ListBySport(ctx context.Context, sport string) ([]game.Game, error) {
	key := "game:list:sport:" + sport
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListBySport(ctx, sport)
		if err != nil {
			return nil, err
		}
		return append([]game.Game(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	items, _ := v.([]game.Game)
	return append([]game.Game(nil), items...), nil
}

func (r *GameRepository) ListFrom(ctx context.Context, from time.Time) ([]game.Game, error) {
	key := fmt.Sprintf("game:list:from:%d", from.Unix())
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListFrom(ctx, from)
		if err != nil {
			return nil, err
		}
		return append([]game.Game(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	items, _ := v.([]game.Game)
	return append([]game.Game(nil), items...), nil
}

// ListNotFinalPastStart is the settlement sweep's entry point; it bypasses
// the cache so a just-finished game is never read back as still scheduled.
func (r *GameRepository) ListNotFinalPastStart(ctx context.Context, asOf time.Time) ([]game.Game, error) {
	return r.next.ListNotFinalPastStart(ctx, asOf)
}

func (r *GameRepository) UpdateStatus(ctx context.Context, gameID, status string) error {
	if err := r.next.UpdateStatus(ctx, gameID, status); err != nil {
		return err
	}
	r.cache.Delete(ctx, gameByIDKey(gameID))
	return nil
}

func gameByIDKey(gameID string) string {
	return "game:id:" + gameID
}

// CardRepository wraps a card.Repository with a read-through cache for
// ListCards/GetByID, the two paths the read API polls repeatedly. Insert
// invalidates the game's card list rather than trying to patch it in place.
type CardRepository struct {
	next  card.Repository
	cache *basecache.Store
}

func NewCardRepository(next card.Repository, cache *basecache.Store) *CardRepository {
	return &CardRepository{next: next, cache: cache}
}

func (r *CardRepository) Insert(ctx context.Context, c card.CardPayload) error {
	if err := r.next.Insert(ctx, c); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, "card:list:game:"+c.GameID)
	return nil
}

func (r *CardRepository) ListCards(ctx context.Context, filter card.ListFilter) ([]card.CardPayload, error) {
	key := fmt.Sprintf("card:list:game:%s:dedupe:%s:asof:%d", filter.GameID, filter.Dedupe, filter.AsOf.Unix())
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListCards(ctx, filter)
		if err != nil {
			return nil, err
		}
		return append([]card.CardPayload(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	items, _ := v.([]card.CardPayload)
	return append([]card.CardPayload(nil), items...), nil
}

func (r *CardRepository) GetByID(ctx context.Context, id string) (card.CardPayload, error) {
	key := "card:id:" + id
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return r.next.GetByID(ctx, id)
	})
	if err != nil {
		return card.CardPayload{}, err
	}
	c, _ := v.(card.CardPayload)
	return c, nil
}
