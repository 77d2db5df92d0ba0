package postgres

import (
	"context"
	crerr "github.com/cockroachdb/errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sharplineio/cardengine/internal/domain/rawpayload"
	"github.com/sharplineio/cardengine/internal/platform/id"
	qb "github.com/sharplineio/cardengine/internal/platform/querybuilder"
)

// RawPayloadRepository writes the audit trail; nothing reads it back, so it
// owns its own id generation rather than expecting one from the caller.
type RawPayloadRepository struct {
	db  *sqlx.DB
	ids id.Generator
}

func NewRawPayloadRepository(db *sqlx.DB, ids id.Generator) *RawPayloadRepository {
	return &RawPayloadRepository{db: db, ids: ids}
}

func (r *RawPayloadRepository) Insert(ctx context.Context, p rawpayload.Payload) error {
	recordID, err := r.ids.NewID()
	if err != nil {
		return crerr.Wrap(err, "generate raw payload id")
	}

	insertModel := rawPayloadTableModel{
		ID:              recordID,
		Source:          p.Source,
		EntityType:      p.EntityType,
		EntityKey:       p.EntityKey,
		PayloadJSON:     p.PayloadJSON,
		PayloadHash:     p.PayloadHash,
		SourceUpdatedAt: p.SourceUpdatedAt,
		CreatedAt:       time.Now().UTC(),
	}
	query, args, err := qb.InsertModel("raw_payloads", insertModel, "")
	if err != nil {
		return crerr.Wrap(err, "build insert raw payload query")
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return crerr.Wrapf(err, "insert raw payload %s/%s", p.Source, p.EntityType)
	}
	return nil
}
