package usecase

import (
	"context"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/sharplineio/cardengine/internal/config"
	"github.com/sharplineio/cardengine/internal/platform/logging"
	"github.com/sharplineio/cardengine/internal/store"
)

// tMinusTargets are the minutes-before-kickoff marks a sport model re-runs
// at, each with its own tolerance band so a tick that lands a few minutes
// off the exact mark still fires once.
var tMinusTargets = []int{120, 90, 60, 30}

const tMinusToleranceMinutes = 5

// fixedRunLocalTime is the time of day (in the scheduler's configured
// timezone) each enabled sport gets one guaranteed model refresh,
// independent of T-minus proximity to any one game.
const fixedRunHour, fixedRunMinute = 9, 0

// SchedulerDeps collects the pieces the scheduler dispatches jobs through.
// Odds/Settlement fetch functions and the fan-out/per-sport driver registry
// are supplied by the caller (internal/app) since they depend on external
// clients the usecase package cannot import directly.
type SchedulerDeps struct {
	Store        *store.Store
	Runtime      *JobRuntime
	Ingest       *IngestPipelineService
	Fanout       *FanoutService
	Settlement   *SettlementService
	ActiveSports []string // e.g. ["nhl", "nfl", "nba"], gated by ENABLE_<SPORT>_MODEL upstream

	// TokensForFetch estimates the provider-billed token cost of one ingest
	// tick across ActiveSports, for logging/budget checks only — it never
	// gates whether the tick runs. Wired to external/oddsprovider.TokensForFetch;
	// nil is treated as an unknown/unbudgeted cost.
	TokensForFetch func(activeSports []string) int
}

// SchedulerService runs the tick loop that drives the ingest, fan-out, and
// settlement jobs on their respective cadences.
type SchedulerService struct {
	cfg    config.Config
	deps   SchedulerDeps
	loc    *time.Location
	logger *logging.Logger
}

func NewSchedulerService(cfg config.Config, deps SchedulerDeps, logger *logging.Logger) *SchedulerService {
	if logger == nil {
		logger = logging.Default()
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return &SchedulerService{cfg: cfg, deps: deps, loc: loc, logger: logger}
}

// Run blocks, ticking at cfg.TickInterval until ctx is canceled.
func (s *SchedulerService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.tick(ctx, now.UTC())
		}
	}
}

func (s *SchedulerService) tick(ctx context.Context, now time.Time) {
	var wg conc.WaitGroup

	if s.cfg.EnableOddsPull {
		wg.Go(func() { s.dispatchIngest(ctx, now) })
	}

	for _, sport := range s.deps.ActiveSports {
		sport := sport
		wg.Go(func() { s.dispatchFixed(ctx, sport, now) })
		wg.Go(func() { s.dispatchTMinus(ctx, sport, now) })
		wg.Go(func() { s.dispatchSettlement(ctx, sport) })
	}

	wg.Wait()
}

func (s *SchedulerService) dispatchIngest(ctx context.Context, now time.Time) {
	jobKey := OddsHourlyKey(now, s.loc)
	if s.deps.TokensForFetch != nil {
		s.logger.DebugContext(ctx, "ingest_tokens_budgeted", "job_key", jobKey, "tokens", s.deps.TokensForFetch(s.deps.ActiveSports))
	}
	outcome, err := s.deps.Runtime.Run(ctx, "pull_odds_hourly", &jobKey, func(ctx context.Context, runID string) error {
		result, runErr := s.deps.Ingest.Run(ctx, runID, s.deps.ActiveSports, 48)
		s.logger.InfoContext(ctx, "ingest_tick_complete",
			"games_upserted", result.GamesUpserted,
			"snapshots_inserted", result.SnapshotsInserted,
			"skipped_missing_fields", result.SkippedMissingFields,
			"contract_violations", len(result.ContractViolations))
		return runErr
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "ingest_dispatch_failed", "job_key", jobKey, "error", err)
		return
	}
	if outcome.Skipped != "" {
		s.logger.DebugContext(ctx, "ingest_dispatch_skipped", "job_key", jobKey, "reason", outcome.Skipped)
	}
}

func (s *SchedulerService) dispatchFixed(ctx context.Context, sport string, now time.Time) {
	local := now.In(s.loc)
	fixedTime := time.Date(local.Year(), local.Month(), local.Day(), fixedRunHour, fixedRunMinute, 0, 0, s.loc)

	due := local.After(fixedTime) || local.Equal(fixedTime)
	if !due {
		return
	}
	if !s.cfg.FixedCatchUp {
		// Without catch-up, only fire within one tick interval of the mark.
		if local.Sub(fixedTime) > s.cfg.TickInterval {
			return
		}
	}

	jobKey := SportFixedKey(sport, fixedTime, s.loc)
	_, err := s.deps.Runtime.Run(ctx, sport+"_fixed_model_run", &jobKey, func(ctx context.Context, _ string) error {
		return s.runFanoutForSport(ctx, sport)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "fixed_dispatch_failed", "sport", sport, "job_key", jobKey, "error", err)
	}
}

func (s *SchedulerService) dispatchTMinus(ctx context.Context, sport string, now time.Time) {
	games, err := s.deps.Store.Games.ListFrom(ctx, now)
	if err != nil {
		s.logger.ErrorContext(ctx, "tminus_list_games_failed", "sport", sport, "error", err)
		return
	}

	for _, g := range games {
		if g.Sport != sport {
			continue
		}
		minutesToStart := g.StartUTC.Sub(now).Minutes()
		for _, target := range tMinusTargets {
			if abs(minutesToStart-float64(target)) > tMinusToleranceMinutes {
				continue
			}
			jobKey := SportTMinusKey(sport, g.GameID, target)
			gameID := g.GameID
			_, err := s.deps.Runtime.Run(ctx, sport+"_tminus_model_run", &jobKey, func(ctx context.Context, _ string) error {
				return s.runFanoutForGame(ctx, sport, gameID)
			})
			if err != nil {
				s.logger.ErrorContext(ctx, "tminus_dispatch_failed", "sport", sport, "game_id", gameID, "target_minutes", target, "error", err)
			}
			break
		}
	}
}

func (s *SchedulerService) dispatchSettlement(ctx context.Context, sport string) {
	if _, err := s.deps.Runtime.Run(ctx, "settle_game_results", nil, func(ctx context.Context, _ string) error {
		_, err := s.deps.Settlement.SettleGameResults(ctx, sport)
		return err
	}); err != nil {
		s.logger.ErrorContext(ctx, "settle_game_results_dispatch_failed", "sport", sport, "error", err)
	}

	if _, err := s.deps.Runtime.Run(ctx, "settle_pending_cards", nil, func(ctx context.Context, _ string) error {
		_, err := s.deps.Settlement.SettlePendingCards(ctx)
		return err
	}); err != nil {
		s.logger.ErrorContext(ctx, "settle_pending_cards_dispatch_failed", "error", err)
	}
}

func (s *SchedulerService) runFanoutForSport(ctx context.Context, sport string) error {
	games, err := s.deps.Store.Games.ListBySport(ctx, sport)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(games))
	startByID := make(map[string]time.Time, len(games))
	for _, g := range games {
		ids = append(ids, g.GameID)
		startByID[g.GameID] = g.StartUTC
	}
	return s.runFanout(ctx, sport, ids, startByID)
}

func (s *SchedulerService) runFanoutForGame(ctx context.Context, sport, gameID string) error {
	g, err := s.deps.Store.Games.GetByID(ctx, gameID)
	if err != nil {
		return err
	}
	return s.runFanout(ctx, sport, []string{g.GameID}, map[string]time.Time{g.GameID: g.StartUTC})
}

// runFanout resolves each game's latest odds snapshot and hands the
// resulting (game, snapshot) pairs to the Fan-out usecase. Games with no
// snapshot yet (odds not ingested ahead of this dispatch) are skipped
// rather than failing the whole run.
func (s *SchedulerService) runFanout(ctx context.Context, sport string, gameIDs []string, startByID map[string]time.Time) error {
	fanoutGames := make([]FanoutGame, 0, len(gameIDs))
	for _, gameID := range gameIDs {
		snapshot, err := s.deps.Store.OddsSnapshots.LatestByGame(ctx, gameID)
		if err != nil {
			continue
		}
		fanoutGames = append(fanoutGames, FanoutGame{GameID: gameID, GameTimeUTC: startByID[gameID], Snapshot: snapshot})
	}

	_, err := s.deps.Fanout.Run(ctx, FanoutInput{Sport: sport, Games: fanoutGames})
	return err
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
