package postgres

import (
	"context"
	crerr "github.com/cockroachdb/errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sharplineio/cardengine/internal/domain/game"
	"github.com/sharplineio/cardengine/internal/usecase"
	qb "github.com/sharplineio/cardengine/internal/platform/querybuilder"
)

type GameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

// UpsertGame never touches status on conflict — status is owned by the
// settlement sweep (UpdateStatus), not by re-ingest.
func (r *GameRepository) UpsertGame(ctx context.Context, g game.Game) error {
	insertModel := gameTableModel{
		GameID:    g.GameID,
		Sport:     g.Sport,
		Home:      g.Home,
		Away:      g.Away,
		StartUTC:  g.StartUTC,
		Status:    game.StatusScheduled,
		UpdatedAt: time.Now().UTC(),
	}
	query, args, err := qb.InsertModel("games", insertModel, `ON CONFLICT (game_id)
DO UPDATE SET
    sport = EXCLUDED.sport,
    home = EXCLUDED.home,
    away = EXCLUDED.away,
    start_utc = EXCLUDED.start_utc,
    updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return crerr.Wrap(err, "build upsert game query")
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return crerr.Wrapf(err, "upsert game %s", g.GameID)
	}
	return nil
}

func (r *GameRepository) GetByID(ctx context.Context, gameID string) (game.Game, error) {
	query, args, err := qb.Select("*").From("games").
		Where(qb.Eq("game_id", gameID)).
		ToSQL()
	if err != nil {
		return game.Game{}, crerr.Wrap(err, "build get game by id query")
	}

	var row gameTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return game.Game{}, usecase.ErrNotFound
		}
		return game.Game{}, crerr.Wrap(err, "get game by id")
	}
	return gameFromRow(row), nil
}

func (r *GameRepository) ListBySport(ctx context.Context, sport string) ([]game.Game, error) {
	query, args, err := qb.Select("*").From("games").
		Where(qb.Eq("sport", sport)).
		OrderBy("start_utc").
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build list games by sport query")
	}

	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrap(err, "list games by sport")
	}
	return gamesFromRows(rows), nil
}

func (r *GameRepository) ListFrom(ctx context.Context, from time.Time) ([]game.Game, error) {
	query, args, err := qb.Select("*").From("games").
		Where(qb.Expr("start_utc >= ?", from)).
		OrderBy("start_utc").
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build list games from query")
	}

	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrap(err, "list games from")
	}
	return gamesFromRows(rows), nil
}

func (r *GameRepository) ListNotFinalPastStart(ctx context.Context, asOf time.Time) ([]game.Game, error) {
	query, args, err := qb.Select("*").From("games").
		Where(
			qb.Expr("start_utc <= ?", asOf),
			qb.Expr("status != ?", game.StatusFinal),
		).
		OrderBy("start_utc").
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build list not-final past-start games query")
	}

	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrap(err, "list not-final past-start games")
	}
	return gamesFromRows(rows), nil
}

func (r *GameRepository) UpdateStatus(ctx context.Context, gameID, status string) error {
	query, args, err := qb.Update("games").
		Set("status", status).
		Set("updated_at", time.Now().UTC()).
		Where(qb.Eq("game_id", gameID)).
		ToSQL()
	if err != nil {
		return crerr.Wrap(err, "build update game status query")
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return crerr.Wrapf(err, "update game status %s", gameID)
	}
	return nil
}

func gameFromRow(row gameTableModel) game.Game {
	return game.Game{
		GameID:    row.GameID,
		Sport:     row.Sport,
		Home:      row.Home,
		Away:      row.Away,
		StartUTC:  row.StartUTC,
		Status:    row.Status,
		UpdatedAt: row.UpdatedAt,
	}
}

func gamesFromRows(rows []gameTableModel) []game.Game {
	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		out = append(out, gameFromRow(row))
	}
	return out
}
