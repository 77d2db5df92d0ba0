package postgres

import (
	"context"
	crerr "github.com/cockroachdb/errors"

	"github.com/jmoiron/sqlx"

	"github.com/sharplineio/cardengine/internal/domain/trackingstat"
	qb "github.com/sharplineio/cardengine/internal/platform/querybuilder"
)

type TrackingStatRepository struct {
	db *sqlx.DB
}

func NewTrackingStatRepository(db *sqlx.DB) *TrackingStatRepository {
	return &TrackingStatRepository{db: db}
}

// Upsert fully replaces the row for (sport, card_category, recommended_bet_type),
// matching the settlement engine's recompute-the-whole-row model.
func (r *TrackingStatRepository) Upsert(ctx context.Context, s trackingstat.TrackingStat) error {
	insertModel := trackingStatTableModel{
		Sport:              s.Sport,
		CardCategory:       s.CardCategory,
		RecommendedBetType: s.RecommendedBetType,
		Wins:               s.Wins,
		Losses:             s.Losses,
		Pushes:             s.Pushes,
		TotalPnLUnits:      s.TotalPnLUnits,
		LastUpdated:        s.LastUpdated,
	}
	query, args, err := qb.InsertModel("tracking_stats", insertModel, `ON CONFLICT (sport, card_category, recommended_bet_type)
DO UPDATE SET
    wins = EXCLUDED.wins,
    losses = EXCLUDED.losses,
    pushes = EXCLUDED.pushes,
    total_pnl_units = EXCLUDED.total_pnl_units,
    last_updated = EXCLUDED.last_updated`)
	if err != nil {
		return crerr.Wrap(err, "build upsert tracking stat query")
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return crerr.Wrapf(err, "upsert tracking stat %s/%s/%s", s.Sport, s.CardCategory, s.RecommendedBetType)
	}
	return nil
}

func (r *TrackingStatRepository) ListAll(ctx context.Context) ([]trackingstat.TrackingStat, error) {
	query, args, err := qb.Select("*").From("tracking_stats").
		OrderBy("sport", "card_category", "recommended_bet_type").
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build list tracking stats query")
	}

	var rows []trackingStatTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrap(err, "list tracking stats")
	}

	out := make([]trackingstat.TrackingStat, 0, len(rows))
	for _, row := range rows {
		out = append(out, trackingstat.TrackingStat{
			Sport:              row.Sport,
			CardCategory:       row.CardCategory,
			RecommendedBetType: row.RecommendedBetType,
			Wins:               row.Wins,
			Losses:             row.Losses,
			Pushes:             row.Pushes,
			TotalPnLUnits:      row.TotalPnLUnits,
			LastUpdated:        row.LastUpdated,
		})
	}
	return out, nil
}
