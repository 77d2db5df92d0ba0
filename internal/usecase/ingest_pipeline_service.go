package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sharplineio/cardengine/internal/domain/game"
	"github.com/sharplineio/cardengine/internal/domain/oddssnapshot"
	"github.com/sharplineio/cardengine/internal/platform/id"
	"github.com/sharplineio/cardengine/internal/platform/logging"
	"github.com/sharplineio/cardengine/internal/store"
)

// OddsFetchFunc adapts external/oddsprovider.Client.Fetch (or a test
// double) into the shape the pipeline consumes. It is a func type rather
// than an interface because the provider package already imports usecase
// for its error sentinels; wiring a closure at construction time avoids a
// reverse import.
type OddsFetchFunc func(ctx context.Context, sport string, hoursAhead int) FetchResult

// FetchResult mirrors external/oddsprovider.FetchResult without importing
// that package from usecase, keeping the dependency direction inward.
type FetchResult struct {
	Games    []FetchedGame
	Errors   []string
	RawCount int
}

type FetchedGame struct {
	GameID        string
	Sport         string
	Home          string
	Away          string
	GameTimeUTC   time.Time
	CapturedAtUTC time.Time
	Markets       oddssnapshot.Markets
}

// contractMinRatio is the minimum fraction of raw provider rows that must
// survive normalization for a sport's tick to be trusted; below this the
// pipeline treats the response as a broken contract and writes nothing for
// that sport.
const contractMinRatio = 0.6

// IngestPipelineResult aggregates one pull_odds_hourly run across sports.
type IngestPipelineResult struct {
	GamesUpserted        int
	SnapshotsInserted    int
	SkippedMissingFields int
	ContractViolations   []string
}

// IngestPipelineService is the job_name=pull_odds_hourly handler: fetch each
// active sport's odds, guard against a collapsed provider contract, and
// write games + one odds snapshot batch per sport.
type IngestPipelineService struct {
	store    *store.Store
	fetch    OddsFetchFunc
	ids      id.Generator
	logger   *logging.Logger
}

func NewIngestPipelineService(st *store.Store, fetch OddsFetchFunc, ids id.Generator, logger *logging.Logger) *IngestPipelineService {
	if logger == nil {
		logger = logging.Default()
	}
	return &IngestPipelineService{store: st, fetch: fetch, ids: ids, logger: logger}
}

// Run fetches and writes odds for every active sport. jobRunID pins the
// odds snapshots written in this tick to the JobRun that produced them.
func (s *IngestPipelineService) Run(ctx context.Context, jobRunID string, activeSports []string, hoursAhead int) (IngestPipelineResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestPipelineService.Run")
	defer span.End()

	result := IngestPipelineResult{}
	for _, sport := range activeSports {
		fetch := s.fetch(ctx, sport, hoursAhead)
		for _, providerErr := range fetch.Errors {
			s.logger.WarnContext(ctx, "ingest_provider_error", "sport", sport, "error", providerErr)
		}

		if fetch.RawCount > 0 {
			survivalRatio := float64(len(fetch.Games)) / float64(fetch.RawCount)
			if survivalRatio < contractMinRatio {
				msg := fmt.Sprintf("%s: only %d/%d rows normalized (ratio=%.2f)", sport, len(fetch.Games), fetch.RawCount, survivalRatio)
				result.ContractViolations = append(result.ContractViolations, msg)
				s.logger.ErrorContext(ctx, "ingest_contract_violation", "sport", sport, "normalized", len(fetch.Games), "raw_count", fetch.RawCount)
				continue
			}
		}
		result.SkippedMissingFields += fetch.RawCount - len(fetch.Games)

		if len(fetch.Games) == 0 {
			continue
		}

		snapshots := make([]oddssnapshot.OddsSnapshot, 0, len(fetch.Games))
		for _, g := range fetch.Games {
			if err := s.store.UpsertGame(ctx, game.Game{
				GameID:   g.GameID,
				Sport:    g.Sport,
				Home:     g.Home,
				Away:     g.Away,
				StartUTC: g.GameTimeUTC,
			}); err != nil {
				s.logger.ErrorContext(ctx, "ingest_upsert_game_failed", "game_id", g.GameID, "error", err)
				continue
			}
			result.GamesUpserted++

			snapshotID, err := s.ids.NewID()
			if err != nil {
				s.logger.ErrorContext(ctx, "ingest_snapshot_id_failed", "game_id", g.GameID, "error", err)
				continue
			}
			snapshots = append(snapshots, oddssnapshot.OddsSnapshot{
				ID:         snapshotID,
				GameID:     g.GameID,
				CapturedAt: g.CapturedAtUTC,
				Markets:    g.Markets,
				JobRunID:   jobRunID,
			})
		}

		if len(snapshots) == 0 {
			continue
		}
		if err := s.store.InsertOddsSnapshots(ctx, snapshots); err != nil {
			s.logger.ErrorContext(ctx, "ingest_insert_snapshots_failed", "sport", sport, "error", err)
			continue
		}
		result.SnapshotsInserted += len(snapshots)
	}

	if len(result.ContractViolations) > 0 {
		return result, fmt.Errorf("%w: %s", ErrContractViolation, strings.Join(result.ContractViolations, "; "))
	}
	return result, nil
}
