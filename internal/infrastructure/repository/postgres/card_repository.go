package postgres

import (
	"context"
	"encoding/json"
	crerr "github.com/cockroachdb/errors"

	"github.com/jmoiron/sqlx"

	"github.com/sharplineio/cardengine/internal/domain/card"
	qb "github.com/sharplineio/cardengine/internal/platform/querybuilder"
	"github.com/sharplineio/cardengine/internal/usecase"
)

type CardRepository struct {
	db *sqlx.DB
}

func NewCardRepository(db *sqlx.DB) *CardRepository {
	return &CardRepository{db: db}
}

func (r *CardRepository) Insert(ctx context.Context, c card.CardPayload) error {
	modelOutputIDs, err := json.Marshal(c.ModelOutputIDs)
	if err != nil {
		return crerr.Wrapf(err, "encode model output ids for card %s", c.ID)
	}

	insertModel := cardTableModel{
		ID:             c.ID,
		GameID:         c.GameID,
		Sport:          c.Sport,
		CardType:       c.CardType,
		CardTitle:      c.CardTitle,
		CardCategory:   c.CardCategory,
		CreatedAt:      c.CreatedAt,
		ExpiresAt:      timePtrToNullTime(c.ExpiresAt),
		PayloadData:    c.PayloadData,
		ModelOutputIDs: string(modelOutputIDs),
	}
	query, args, err := qb.InsertModel("card_payloads", insertModel, "")
	if err != nil {
		return crerr.Wrap(err, "build insert card query")
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return crerr.Wrapf(err, "insert card %s", c.ID)
	}
	return nil
}

func (r *CardRepository) GetByID(ctx context.Context, id string) (card.CardPayload, error) {
	query, args, err := qb.Select("*").From("card_payloads").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return card.CardPayload{}, crerr.Wrap(err, "build get card by id query")
	}

	var row cardTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return card.CardPayload{}, usecase.ErrNotFound
		}
		return card.CardPayload{}, crerr.Wrap(err, "get card by id")
	}
	return cardFromRow(row)
}

func (r *CardRepository) ListCards(ctx context.Context, filter card.ListFilter) ([]card.CardPayload, error) {
	conditions := make([]qb.Condition, 0, 2)
	if filter.GameID != "" {
		conditions = append(conditions, qb.Eq("game_id", filter.GameID))
	}
	if !filter.AsOf.IsZero() {
		conditions = append(conditions, qb.Expr("(expires_at IS NULL OR expires_at >= ?)", filter.AsOf))
	}

	query, args, err := qb.Select("*").From("card_payloads").
		Where(conditions...).
		OrderBy("created_at DESC").
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build list cards query")
	}

	var rows []cardTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrap(err, "list cards")
	}

	out := make([]card.CardPayload, 0, len(rows))
	if filter.Dedupe != card.DedupeLatestPerGameType {
		for _, row := range rows {
			c, err := cardFromRow(row)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
		return out, nil
	}

	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		key := row.GameID + "|" + row.CardType
		if seen[key] {
			continue
		}
		seen[key] = true
		c, err := cardFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func cardFromRow(row cardTableModel) (card.CardPayload, error) {
	var modelOutputIDs []string
	if row.ModelOutputIDs != "" {
		if err := json.Unmarshal([]byte(row.ModelOutputIDs), &modelOutputIDs); err != nil {
			return card.CardPayload{}, crerr.Wrapf(err, "decode model output ids for card %s", row.ID)
		}
	}
	return card.CardPayload{
		ID:             row.ID,
		GameID:         row.GameID,
		Sport:          row.Sport,
		CardType:       row.CardType,
		CardTitle:      row.CardTitle,
		CardCategory:   row.CardCategory,
		CreatedAt:      row.CreatedAt,
		ExpiresAt:      nullTimeToTimePtr(row.ExpiresAt),
		PayloadData:    row.PayloadData,
		ModelOutputIDs: modelOutputIDs,
	}, nil
}
