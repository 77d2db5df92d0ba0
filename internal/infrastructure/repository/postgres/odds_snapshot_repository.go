package postgres

import (
	"context"
	"encoding/json"
	crerr "github.com/cockroachdb/errors"

	"github.com/jmoiron/sqlx"

	"github.com/sharplineio/cardengine/internal/domain/oddssnapshot"
	qb "github.com/sharplineio/cardengine/internal/platform/querybuilder"
	"github.com/sharplineio/cardengine/internal/usecase"
)

type OddsSnapshotRepository struct {
	db *sqlx.DB
}

func NewOddsSnapshotRepository(db *sqlx.DB) *OddsSnapshotRepository {
	return &OddsSnapshotRepository{db: db}
}

// InsertBatch runs inside one transaction so a conflict on any row fails the
// whole batch rather than recording a partial tick for a sport.
func (r *OddsSnapshotRepository) InsertBatch(ctx context.Context, rows []oddssnapshot.OddsSnapshot) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return crerr.Wrap(err, "begin tx insert odds snapshots")
	}
	defer func() { _ = tx.Rollback() }()

	for _, s := range rows {
		markets, err := json.Marshal(s.Markets)
		if err != nil {
			return crerr.Wrapf(err, "encode markets for snapshot %s", s.ID)
		}

		insertModel := oddsSnapshotTableModel{
			ID:         s.ID,
			GameID:     s.GameID,
			CapturedAt: s.CapturedAt,
			Markets:    string(markets),
			RawPayload: s.RawPayload,
			JobRunID:   s.JobRunID,
		}
		query, args, err := qb.InsertModel("odds_snapshots", insertModel, "")
		if err != nil {
			return crerr.Wrap(err, "build insert odds snapshot query")
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return crerr.Wrapf(err, "insert odds snapshot %s", s.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return crerr.Wrap(err, "commit insert odds snapshots tx")
	}
	return nil
}

func (r *OddsSnapshotRepository) LatestByGame(ctx context.Context, gameID string) (oddssnapshot.OddsSnapshot, error) {
	query, args, err := qb.Select("*").From("odds_snapshots").
		Where(qb.Eq("game_id", gameID)).
		OrderBy("captured_at DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return oddssnapshot.OddsSnapshot{}, crerr.Wrap(err, "build latest odds snapshot query")
	}

	var row oddsSnapshotTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return oddssnapshot.OddsSnapshot{}, usecase.ErrNotFound
		}
		return oddssnapshot.OddsSnapshot{}, crerr.Wrap(err, "select latest odds snapshot")
	}

	var markets oddssnapshot.Markets
	if err := json.Unmarshal([]byte(row.Markets), &markets); err != nil {
		return oddssnapshot.OddsSnapshot{}, crerr.Wrapf(err, "decode markets for snapshot %s", row.ID)
	}

	return oddssnapshot.OddsSnapshot{
		ID:         row.ID,
		GameID:     row.GameID,
		CapturedAt: row.CapturedAt,
		Markets:    markets,
		RawPayload: row.RawPayload,
		JobRunID:   row.JobRunID,
	}, nil
}
