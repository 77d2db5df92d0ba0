package postgres

import (
	"context"
	crerr "github.com/cockroachdb/errors"

	"github.com/jmoiron/sqlx"

	"github.com/sharplineio/cardengine/internal/domain/gameresult"
	qb "github.com/sharplineio/cardengine/internal/platform/querybuilder"
	"github.com/sharplineio/cardengine/internal/usecase"
)

type GameResultRepository struct {
	db *sqlx.DB
}

func NewGameResultRepository(db *sqlx.DB) *GameResultRepository {
	return &GameResultRepository{db: db}
}

func (r *GameResultRepository) Upsert(ctx context.Context, gr gameresult.GameResult) error {
	insertModel := gameResultTableModel{
		GameID:         gr.GameID,
		FinalScoreHome: gr.FinalScoreHome,
		FinalScoreAway: gr.FinalScoreAway,
		Status:         gr.Status,
		ResultSource:   gr.ResultSource,
		SettledAt:      gr.SettledAt,
	}
	query, args, err := qb.InsertModel("game_results", insertModel, `ON CONFLICT (game_id)
DO UPDATE SET
    final_score_home = EXCLUDED.final_score_home,
    final_score_away = EXCLUDED.final_score_away,
    status = EXCLUDED.status,
    result_source = EXCLUDED.result_source,
    settled_at = EXCLUDED.settled_at`)
	if err != nil {
		return crerr.Wrap(err, "build upsert game result query")
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return crerr.Wrapf(err, "upsert game result %s", gr.GameID)
	}
	return nil
}

func (r *GameResultRepository) GetByGameID(ctx context.Context, gameID string) (gameresult.GameResult, error) {
	query, args, err := qb.Select("*").From("game_results").
		Where(qb.Eq("game_id", gameID)).
		ToSQL()
	if err != nil {
		return gameresult.GameResult{}, crerr.Wrap(err, "build get game result query")
	}

	var row gameResultTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return gameresult.GameResult{}, usecase.ErrNotFound
		}
		return gameresult.GameResult{}, crerr.Wrap(err, "get game result")
	}
	return gameresult.GameResult{
		GameID:         row.GameID,
		FinalScoreHome: row.FinalScoreHome,
		FinalScoreAway: row.FinalScoreAway,
		Status:         row.Status,
		ResultSource:   row.ResultSource,
		SettledAt:      row.SettledAt,
	}, nil
}
