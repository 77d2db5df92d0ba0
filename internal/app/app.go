package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/sharplineio/cardengine/external/oddsprovider"
	"github.com/sharplineio/cardengine/external/resultsclient"
	"github.com/sharplineio/cardengine/internal/config"
	"github.com/sharplineio/cardengine/internal/domain/card"
	"github.com/sharplineio/cardengine/internal/domain/cardresult"
	"github.com/sharplineio/cardengine/internal/domain/game"
	"github.com/sharplineio/cardengine/internal/domain/gameresult"
	"github.com/sharplineio/cardengine/internal/domain/jobrun"
	"github.com/sharplineio/cardengine/internal/domain/modeloutput"
	"github.com/sharplineio/cardengine/internal/domain/oddssnapshot"
	"github.com/sharplineio/cardengine/internal/domain/rawpayload"
	"github.com/sharplineio/cardengine/internal/domain/trackingstat"
	cacherepo "github.com/sharplineio/cardengine/internal/infrastructure/repository/cache"
	postgresrepo "github.com/sharplineio/cardengine/internal/infrastructure/repository/postgres"
	"github.com/sharplineio/cardengine/internal/interfaces/httpapi"
	basecache "github.com/sharplineio/cardengine/internal/platform/cache"
	idgen "github.com/sharplineio/cardengine/internal/platform/id"
	"github.com/sharplineio/cardengine/internal/platform/logging"
	"github.com/sharplineio/cardengine/internal/platform/resilience"
	"github.com/sharplineio/cardengine/internal/store"
	"github.com/sharplineio/cardengine/internal/usecase"
	"github.com/sharplineio/cardengine/internal/usecase/driver"
	"github.com/sharplineio/cardengine/internal/usecase/drivers/nba"
	"github.com/sharplineio/cardengine/internal/usecase/drivers/nfl"
	"github.com/sharplineio/cardengine/internal/usecase/drivers/nhl"
)

// App bundles the long-running pieces NewApp wires together: the HTTP
// handler for the read API and the scheduler that drives ingest, fan-out,
// and settlement on their own cadence. cmd/ decides which (or both) of
// these to run.
type App struct {
	Handler    http.Handler
	Scheduler  *usecase.SchedulerService
	Settlement *usecase.SettlementService
	Close      func() error
}

func NewApp(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	db, err := otelsqlx.Open("postgres", normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary),
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	ids := idgen.NewRandomGenerator()

	var gameRepo game.Repository = postgresrepo.NewGameRepository(db)
	var cardRepo card.Repository = postgresrepo.NewCardRepository(db)
	var oddsSnapshotRepo oddssnapshot.Repository = postgresrepo.NewOddsSnapshotRepository(db)
	var jobRunRepo jobrun.Repository = postgresrepo.NewJobRunRepository(db)
	var modelOutputRepo modeloutput.Repository = postgresrepo.NewModelOutputRepository(db)
	var cardResultRepo cardresult.Repository = postgresrepo.NewCardResultRepository(db)
	var gameResultRepo gameresult.Repository = postgresrepo.NewGameResultRepository(db)
	var trackingStatRepo trackingstat.Repository = postgresrepo.NewTrackingStatRepository(db)
	var rawPayloadRepo rawpayload.Repository = postgresrepo.NewRawPayloadRepository(db, ids)

	if cfg.CacheEnabled {
		cacheStore := basecache.NewStore(cfg.CacheTTL)
		gameRepo = cacherepo.NewGameRepository(gameRepo, cacheStore)
		cardRepo = cacherepo.NewCardRepository(cardRepo, cacheStore)
	}

	registry := card.NewRegistry()

	st := &store.Store{
		Games:         gameRepo,
		OddsSnapshots: oddsSnapshotRepo,
		JobRuns:       jobRunRepo,
		ModelOutputs:  modelOutputRepo,
		Cards:         cardRepo,
		CardResults:   cardResultRepo,
		GameResults:   gameResultRepo,
		TrackingStats: trackingStatRepo,
		RawPayloads:   rawPayloadRepo,
		Registry:      registry,
		IDs:           ids,
	}

	oddsClient := oddsprovider.NewClient(oddsprovider.ClientConfig{
		BaseURL:    cfg.OddsBaseURL,
		APIKey:     cfg.OddsAPIKey,
		Timeout:    cfg.OddsTimeout,
		MaxRetries: cfg.OddsMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.OddsCircuitEnabled,
			FailureThreshold: cfg.OddsCircuitFailureCount,
			OpenTimeout:      cfg.OddsCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.OddsCircuitHalfOpenMaxReq,
		},
	})
	resultsClient := resultsclient.NewClient(resultsclient.ClientConfig{
		BaseURL:        cfg.ResultsBaseURL,
		APIKey:         cfg.ResultsAPIKey,
		HTTPTimeout:    cfg.ResultsTimeout,
		Logger:         logger,
		MaxRequests:    cfg.ResultsCircuitMaxRequests,
		Interval:       cfg.ResultsCircuitInterval,
		BreakerTimeout: cfg.ResultsCircuitTimeout,
		FailureRatio:   cfg.ResultsCircuitFailureRatio,
	})

	runtime := usecase.NewJobRuntime(st, ids, logger, 0)
	ingest := usecase.NewIngestPipelineService(st, adaptOddsFetch(oddsClient), ids, logger)
	fanout := usecase.NewFanoutService(st, driverRegistry(), 0, logger)
	settlement := usecase.NewSettlementService(st, adaptScoreboardFetch(resultsClient), logger)

	var activeSports []string
	if cfg.EnableNHLModel {
		activeSports = append(activeSports, "nhl")
	}
	if cfg.EnableNFLModel {
		activeSports = append(activeSports, "nfl")
	}
	if cfg.EnableNBAModel {
		activeSports = append(activeSports, "nba")
	}

	scheduler := usecase.NewSchedulerService(cfg, usecase.SchedulerDeps{
		Store:          st,
		Runtime:        runtime,
		Ingest:         ingest,
		Fanout:         fanout,
		Settlement:     settlement,
		ActiveSports:   activeSports,
		TokensForFetch: oddsprovider.TokensForFetch,
	}, logger)

	readSvc := usecase.NewReadService(st, func(ctx context.Context) error {
		return db.PingContext(ctx)
	})
	analyzeSvc := usecase.NewAnalyzeService(st, fanout)
	handler := httpapi.NewRouter(httpapi.NewHandler(readSvc, analyzeSvc, cfg.Timezone, logger), cfg.SwaggerEnabled, logger)

	return &App{
		Handler:    handler,
		Scheduler:  scheduler,
		Settlement: settlement,
		Close:      db.Close,
	}, nil
}

func driverRegistry() map[string][]driver.Driver {
	return map[string][]driver.Driver{
		"nhl": nhl.Drivers(),
		"nfl": nfl.Drivers(),
		"nba": nba.Drivers(),
	}
}

// adaptOddsFetch closes over the external odds-provider client so usecase
// never imports it directly — oddsprovider already imports usecase for its
// error sentinels, and a direct import back would cycle.
func adaptOddsFetch(client *oddsprovider.Client) usecase.OddsFetchFunc {
	return func(ctx context.Context, sport string, hoursAhead int) usecase.FetchResult {
		result := client.Fetch(ctx, sport, hoursAhead)
		games := make([]usecase.FetchedGame, 0, len(result.Games))
		for _, g := range result.Games {
			games = append(games, usecase.FetchedGame{
				GameID:        g.GameID,
				Sport:         g.Sport,
				Home:          g.Home,
				Away:          g.Away,
				GameTimeUTC:   g.GameTimeUTC,
				CapturedAtUTC: g.CapturedAtUTC,
				Markets:       g.Markets,
			})
		}
		return usecase.FetchResult{
			Games:    games,
			Errors:   result.Errors,
			RawCount: result.RawCount,
		}
	}
}

// adaptScoreboardFetch mirrors adaptOddsFetch for the results-source client.
func adaptScoreboardFetch(client *resultsclient.Client) usecase.ScoreboardFetchFunc {
	return func(ctx context.Context, sport string) ([]usecase.ScoreboardEvent, error) {
		events, err := client.FetchScoreboard(ctx, sport)
		if err != nil {
			return nil, err
		}
		out := make([]usecase.ScoreboardEvent, 0, len(events))
		for _, e := range events {
			competitors := make([]usecase.ScoreboardCompetitor, 0, len(e.Competitors))
			for _, c := range e.Competitors {
				competitors = append(competitors, usecase.ScoreboardCompetitor{
					HomeAway: c.HomeAway,
					Score:    c.Score,
					TeamName: c.TeamName,
				})
			}
			out = append(out, usecase.ScoreboardEvent{
				EventID:     e.EventID,
				Completed:   e.Completed,
				Competitors: competitors,
			})
		}
		return out, nil
	}
}
