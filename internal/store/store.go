// Package store composes the per-entity repositories behind the single
// transactional write surface spec'd for the pipeline: game upserts, batch
// odds-snapshot appends, the prepare-then-insert card write, settlement
// writes, and the job-runtime idempotency checks. Callers depend on *Store,
// not on individual repositories, so a card write can never skip the
// validation/model-output/pending-result sequence.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/sharplineio/cardengine/internal/domain/card"
	"github.com/sharplineio/cardengine/internal/domain/cardresult"
	"github.com/sharplineio/cardengine/internal/domain/game"
	"github.com/sharplineio/cardengine/internal/domain/gameresult"
	"github.com/sharplineio/cardengine/internal/domain/jobrun"
	"github.com/sharplineio/cardengine/internal/domain/modeloutput"
	"github.com/sharplineio/cardengine/internal/domain/oddssnapshot"
	"github.com/sharplineio/cardengine/internal/domain/rawpayload"
	"github.com/sharplineio/cardengine/internal/domain/trackingstat"
	"github.com/sharplineio/cardengine/internal/platform/id"
	"github.com/sharplineio/cardengine/internal/usecase"
)

type Store struct {
	Games         game.Repository
	OddsSnapshots oddssnapshot.Repository
	JobRuns       jobrun.Repository
	ModelOutputs  modeloutput.Repository
	Cards         card.Repository
	CardResults   cardresult.Repository
	GameResults   gameresult.Repository
	TrackingStats trackingstat.Repository
	RawPayloads   rawpayload.Repository
	Registry      *card.Registry
	IDs           id.Generator
}

// UpsertGame inserts or updates a Game's identity fields (status survives,
// managed only by the Settlement Engine).
func (s *Store) UpsertGame(ctx context.Context, g game.Game) error {
	if err := s.Games.UpsertGame(ctx, g); err != nil {
		return fmt.Errorf("%w: upsert game %s: %v", usecase.ErrStoreFailure, g.GameID, err)
	}
	return nil
}

// InsertOddsSnapshots appends a batch pinned to one JobRun; a conflict on
// any row fails the whole batch, so the ingest pipeline never records a
// partial tick for a sport.
func (s *Store) InsertOddsSnapshots(ctx context.Context, rows []oddssnapshot.OddsSnapshot) error {
	if len(rows) == 0 {
		return nil
	}
	if err := s.OddsSnapshots.InsertBatch(ctx, rows); err != nil {
		return fmt.Errorf("%w: insert odds snapshots: %v", usecase.ErrStoreFailure, err)
	}
	return nil
}

// CardWrite is what the Driver->Card Fan-out hands to InsertCardPayload:
// one driver's model output plus the card it produces, already carrying the
// recommended bet type settlement will key tracking stats on.
type CardWrite struct {
	Card               card.CardPayload
	ModelOutputs       []modeloutput.ModelOutput
	RecommendedBetType string
}

// InsertCardPayload runs the prepare/validate/insert/pending-result sequence
// for one (game_id, card_type): prior model outputs for that pair are
// cleared, the new outputs are written, the payload is validated against
// its card-type schema, the card row is inserted, and a pending CardResult
// is created alongside it. A validation failure here aborts only this card;
// callers loop per-card so siblings still get their own chance.
func (s *Store) InsertCardPayload(ctx context.Context, w CardWrite) (cardresult.CardResult, error) {
	if err := s.Registry.Validate(w.Card.CardType, w.Card.PayloadData); err != nil {
		return cardresult.CardResult{}, fmt.Errorf("%w: %s/%s: %v", usecase.ErrValidationFailure, w.Card.GameID, w.Card.CardType, err)
	}

	if err := s.ModelOutputs.ClearForGameCardType(ctx, w.Card.GameID, w.Card.CardType); err != nil {
		return cardresult.CardResult{}, fmt.Errorf("%w: clear model outputs: %v", usecase.ErrStoreFailure, err)
	}
	if len(w.ModelOutputs) > 0 {
		if err := s.ModelOutputs.InsertBatch(ctx, w.ModelOutputs); err != nil {
			return cardresult.CardResult{}, fmt.Errorf("%w: insert model outputs: %v", usecase.ErrStoreFailure, err)
		}
	}
	if err := s.Cards.Insert(ctx, w.Card); err != nil {
		return cardresult.CardResult{}, fmt.Errorf("%w: insert card: %v", usecase.ErrStoreFailure, err)
	}

	resultID, err := s.IDs.NewID()
	if err != nil {
		return cardresult.CardResult{}, fmt.Errorf("%w: generate card result id: %v", usecase.ErrStoreFailure, err)
	}
	cr := cardresult.CardResult{
		ID:                 resultID,
		CardID:             w.Card.ID,
		GameID:             w.Card.GameID,
		Sport:              w.Card.Sport,
		CardCategory:       w.Card.CardCategory,
		RecommendedBetType: w.RecommendedBetType,
		Status:             cardresult.StatusPending,
	}
	if err := s.CardResults.InsertPending(ctx, cr); err != nil {
		return cardresult.CardResult{}, fmt.Errorf("%w: insert pending card result: %v", usecase.ErrStoreFailure, err)
	}
	return cr, nil
}

func (s *Store) UpsertGameResult(ctx context.Context, r gameresult.GameResult) error {
	if err := s.GameResults.Upsert(ctx, r); err != nil {
		return fmt.Errorf("%w: upsert game result: %v", usecase.ErrStoreFailure, err)
	}
	if err := s.Games.UpdateStatus(ctx, r.GameID, game.StatusFinal); err != nil {
		return fmt.Errorf("%w: update game status: %v", usecase.ErrStoreFailure, err)
	}
	return nil
}

func (s *Store) UpsertTrackingStat(ctx context.Context, t trackingstat.TrackingStat) error {
	if err := s.TrackingStats.Upsert(ctx, t); err != nil {
		return fmt.Errorf("%w: upsert tracking stat: %v", usecase.ErrStoreFailure, err)
	}
	return nil
}

// MarkCardResult transitions a pending CardResult; ok is false when the row
// was already settled (or missing), making re-runs of settlement no-ops.
func (s *Store) MarkCardResult(ctx context.Context, cardID, result string, pnlUnits float64, settledAt time.Time) (bool, error) {
	ok, err := s.CardResults.MarkSettled(ctx, cardID, result, pnlUnits, settledAt)
	if err != nil {
		return false, fmt.Errorf("%w: mark card result: %v", usecase.ErrStoreFailure, err)
	}
	return ok, nil
}

func (s *Store) HasRunningJob(ctx context.Context, jobName string, jobKey *string) (bool, error) {
	return s.JobRuns.HasRunning(ctx, jobName, jobKey)
}

func (s *Store) WasJobKeyRecentlySuccessful(ctx context.Context, jobName string, jobKey *string, window time.Duration) (bool, error) {
	return s.JobRuns.WasRecentlySuccessful(ctx, jobName, jobKey, window)
}
