package postgres

import (
	"context"
	"encoding/json"
	crerr "github.com/cockroachdb/errors"

	"github.com/jmoiron/sqlx"

	"github.com/sharplineio/cardengine/internal/domain/modeloutput"
	qb "github.com/sharplineio/cardengine/internal/platform/querybuilder"
)

type ModelOutputRepository struct {
	db *sqlx.DB
}

func NewModelOutputRepository(db *sqlx.DB) *ModelOutputRepository {
	return &ModelOutputRepository{db: db}
}

func (r *ModelOutputRepository) InsertBatch(ctx context.Context, rows []modeloutput.ModelOutput) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return crerr.Wrap(err, "begin tx insert model outputs")
	}
	defer func() { _ = tx.Rollback() }()

	for _, o := range rows {
		inputs, err := json.Marshal(o.Inputs)
		if err != nil {
			return crerr.Wrapf(err, "encode inputs for model output %s", o.ID)
		}

		insertModel := modelOutputTableModel{
			ID:                o.ID,
			GameID:            o.GameID,
			Sport:             o.Sport,
			OddsSnapshotID:    o.OddsSnapshotID,
			DriverKey:         o.DriverKey,
			CardType:          o.CardType,
			Prediction:        string(o.Prediction),
			Confidence:        o.Confidence,
			Score:             o.Score,
			Status:            string(o.Status),
			Reasoning:         o.Reasoning,
			Inputs:            string(inputs),
			EVThresholdPassed: o.EVThresholdPassed,
			CreatedAt:         o.CreatedAt,
		}
		query, args, err := qb.InsertModel("model_outputs", insertModel, "")
		if err != nil {
			return crerr.Wrap(err, "build insert model output query")
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return crerr.Wrapf(err, "insert model output %s", o.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return crerr.Wrap(err, "commit insert model outputs tx")
	}
	return nil
}

// ClearForGameCardType deletes prior outputs for (gameID, cardType) so a
// fresh fan-out pass never leaves a stale driver run behind it.
func (r *ModelOutputRepository) ClearForGameCardType(ctx context.Context, gameID, cardType string) error {
	query := "DELETE FROM model_outputs WHERE game_id = $1 AND card_type = $2"
	if _, err := r.db.ExecContext(ctx, query, gameID, cardType); err != nil {
		return crerr.Wrapf(err, "clear model outputs for %s/%s", gameID, cardType)
	}
	return nil
}

func (r *ModelOutputRepository) ListByGame(ctx context.Context, gameID string) ([]modeloutput.ModelOutput, error) {
	query, args, err := qb.Select("*").From("model_outputs").
		Where(qb.Eq("game_id", gameID)).
		OrderBy("created_at DESC").
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build list model outputs by game query")
	}

	var rows []modelOutputTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrap(err, "list model outputs by game")
	}

	out := make([]modeloutput.ModelOutput, 0, len(rows))
	for _, row := range rows {
		var inputs map[string]any
		if row.Inputs != "" {
			if err := json.Unmarshal([]byte(row.Inputs), &inputs); err != nil {
				return nil, crerr.Wrapf(err, "decode inputs for model output %s", row.ID)
			}
		}
		out = append(out, modeloutput.ModelOutput{
			ID:                row.ID,
			GameID:            row.GameID,
			Sport:             row.Sport,
			OddsSnapshotID:    row.OddsSnapshotID,
			DriverKey:         row.DriverKey,
			CardType:          row.CardType,
			Prediction:        modeloutput.Prediction(row.Prediction),
			Confidence:        row.Confidence,
			Score:             row.Score,
			Status:            modeloutput.DriverStatus(row.Status),
			Reasoning:         row.Reasoning,
			Inputs:            inputs,
			EVThresholdPassed: row.EVThresholdPassed,
			CreatedAt:         row.CreatedAt,
		})
	}
	return out, nil
}
