package postgres

import (
	"context"
	crerr "github.com/cockroachdb/errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sharplineio/cardengine/internal/domain/cardresult"
	qb "github.com/sharplineio/cardengine/internal/platform/querybuilder"
)

type CardResultRepository struct {
	db *sqlx.DB
}

func NewCardResultRepository(db *sqlx.DB) *CardResultRepository {
	return &CardResultRepository{db: db}
}

func (r *CardResultRepository) InsertPending(ctx context.Context, cr cardresult.CardResult) error {
	insertModel := cardResultTableModel{
		ID:                 cr.ID,
		CardID:             cr.CardID,
		GameID:             cr.GameID,
		Sport:              cr.Sport,
		CardCategory:       cr.CardCategory,
		RecommendedBetType: cr.RecommendedBetType,
		Status:             cardresult.StatusPending,
	}
	query, args, err := qb.InsertModel("card_results", insertModel, "")
	if err != nil {
		return crerr.Wrap(err, "build insert card result query")
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return crerr.Wrapf(err, "insert card result %s", cr.ID)
	}
	return nil
}

// ListPendingWithFinalGame joins against games directly, the way the teacher's
// stats repositories join fixtures — the query builder only composes
// single-table selects, so a real JOIN goes in the From() string verbatim.
func (r *CardResultRepository) ListPendingWithFinalGame(ctx context.Context) ([]cardresult.CardResult, error) {
	query, args, err := qb.Select("cr.*").
		From("card_results cr JOIN games g ON g.game_id = cr.game_id").
		Where(
			qb.Eq("cr.status", cardresult.StatusPending),
			qb.Eq("g.status", "final"),
		).
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build list pending card results query")
	}

	var rows []cardResultTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrap(err, "list pending card results with final game")
	}
	return cardResultsFromRows(rows), nil
}

func (r *CardResultRepository) MarkSettled(ctx context.Context, cardID, result string, pnlUnits float64, settledAt time.Time) (bool, error) {
	query, args, err := qb.Update("card_results").
		Set("status", cardresult.StatusSettled).
		Set("result", result).
		Set("pnl_units", pnlUnits).
		Set("settled_at", settledAt).
		Where(
			qb.Eq("card_id", cardID),
			qb.Eq("status", cardresult.StatusPending),
		).
		ToSQL()
	if err != nil {
		return false, crerr.Wrap(err, "build mark card result settled query")
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, crerr.Wrapf(err, "mark card result %s settled", cardID)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, crerr.Wrapf(err, "rows affected marking card result %s settled", cardID)
	}
	return affected > 0, nil
}

func (r *CardResultRepository) ListSettledByKey(ctx context.Context, sport, cardCategory, recommendedBetType string) ([]cardresult.CardResult, error) {
	query, args, err := qb.Select("*").From("card_results").
		Where(
			qb.Eq("sport", sport),
			qb.Eq("card_category", cardCategory),
			qb.Eq("recommended_bet_type", recommendedBetType),
			qb.Eq("status", cardresult.StatusSettled),
		).
		OrderBy("settled_at").
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build list settled card results by key query")
	}

	var rows []cardResultTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrap(err, "list settled card results by key")
	}
	return cardResultsFromRows(rows), nil
}

func (r *CardResultRepository) ListForLedger(ctx context.Context, filter cardresult.ResultFilter) ([]cardresult.CardResult, error) {
	conditions := []qb.Condition{qb.Eq("status", cardresult.StatusSettled)}
	if filter.Sport != "" {
		conditions = append(conditions, qb.Eq("sport", filter.Sport))
	}
	if filter.Market != "" {
		conditions = append(conditions, qb.Eq("recommended_bet_type", filter.Market))
	}
	if filter.CardCategory != "" {
		conditions = append(conditions, qb.Eq("card_category", filter.CardCategory))
	}

	query, args, err := qb.Select("*").From("card_results").
		Where(conditions...).
		OrderBy("settled_at DESC").
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build list ledger card results query")
	}

	var rows []cardResultTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrap(err, "list ledger card results")
	}
	results := cardResultsFromRows(rows)
	if !filter.Dedupe {
		return results, nil
	}

	seen := make(map[string]bool, len(results))
	out := make([]cardresult.CardResult, 0, len(results))
	for _, cr := range results {
		key := cr.GameID + "|" + cr.CardCategory
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, cr)
	}
	return out, nil
}

func cardResultFromRow(row cardResultTableModel) cardresult.CardResult {
	cr := cardresult.CardResult{
		ID:                 row.ID,
		CardID:             row.CardID,
		GameID:             row.GameID,
		Sport:              row.Sport,
		CardCategory:       row.CardCategory,
		RecommendedBetType: row.RecommendedBetType,
		Status:             row.Status,
		PnLUnits:           row.PnLUnits,
		SettledAt:          nullTimeToTimePtr(row.SettledAt),
	}
	if row.Result.Valid {
		result := row.Result.String
		cr.Result = &result
	}
	return cr
}

func cardResultsFromRows(rows []cardResultTableModel) []cardresult.CardResult {
	out := make([]cardresult.CardResult, 0, len(rows))
	for _, row := range rows {
		out = append(out, cardResultFromRow(row))
	}
	return out
}
