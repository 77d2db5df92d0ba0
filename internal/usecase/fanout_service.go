package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/sharplineio/cardengine/internal/domain/card"
	"github.com/sharplineio/cardengine/internal/domain/modeloutput"
	"github.com/sharplineio/cardengine/internal/domain/oddssnapshot"
	"github.com/sharplineio/cardengine/internal/platform/logging"
	"github.com/sharplineio/cardengine/internal/store"
	"github.com/sharplineio/cardengine/internal/usecase/driver"
)

// cardExpiryLead is how far before kickoff a card stops being servable.
const cardExpiryLead = time.Hour

// FanoutInput is one sport's worth of games to run the driver set against.
type FanoutInput struct {
	Sport string
	Games []FanoutGame
}

// FanoutGame pairs a game with the odds snapshot its drivers should read.
// The caller (ingest or scheduler) resolves the latest snapshot so the
// fan-out itself never touches OddsSnapshots directly.
type FanoutGame struct {
	GameID      string
	GameTimeUTC time.Time
	Snapshot    oddssnapshot.OddsSnapshot
}

// FanoutResult summarizes one sport's fan-out pass.
type FanoutResult struct {
	Sport          string
	GamesProcessed int
	GamesSkipped   int
	CardsWritten   int
	DriversMissing map[string]int
}

type fanoutTask struct {
	game FanoutGame
	drv  driver.Driver
}

type fanoutOutcome struct {
	gameID string
	drv    driver.Driver
	desc   *driver.Descriptor
	ok     bool
}

// FanoutService runs each sport's registered drivers over its games'
// latest odds snapshots on a bounded worker pool, then writes one card per
// driver plus one composite card per game.
type FanoutService struct {
	store       *store.Store
	registry    map[string][]driver.Driver
	workerCount int
	logger      *logging.Logger
}

func NewFanoutService(st *store.Store, registry map[string][]driver.Driver, workerCount int, logger *logging.Logger) *FanoutService {
	if workerCount <= 0 {
		workerCount = 4
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &FanoutService{store: st, registry: registry, workerCount: workerCount, logger: logger}
}

// Run fans the sport's drivers out across its games and writes resulting
// cards. A game whose every driver reports "missing" is skipped entirely —
// no empty or neutral-by-default card is written for it.
func (f *FanoutService) Run(ctx context.Context, input FanoutInput) (FanoutResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FanoutService.Run")
	defer span.End()

	result := FanoutResult{Sport: input.Sport, DriversMissing: map[string]int{}}
	drivers := f.registry[input.Sport]
	if len(drivers) == 0 || len(input.Games) == 0 {
		return result, nil
	}

	tasks := make([]fanoutTask, 0, len(input.Games)*len(drivers))
	for _, g := range input.Games {
		for _, d := range drivers {
			tasks = append(tasks, fanoutTask{game: g, drv: d})
		}
	}

	outcomes := make(chan fanoutOutcome, len(tasks))
	pool, err := ants.NewPool(f.workerCount)
	if err != nil {
		return FanoutResult{}, fmt.Errorf("create fan-out worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	var missingCount atomic.Int64
	for _, task := range tasks {
		task := task
		workers.Add(1)
		if submitErr := pool.Submit(func() {
			defer workers.Done()
			desc, ok := task.drv.Compute(task.game.Snapshot)
			if !ok {
				missingCount.Add(1)
			}
			outcomes <- fanoutOutcome{gameID: task.game.GameID, drv: task.drv, desc: desc, ok: ok}
		}); submitErr != nil {
			workers.Done()
			return FanoutResult{}, fmt.Errorf("submit fan-out task: %w", submitErr)
		}
	}
	workers.Wait()
	close(outcomes)

	byGame := make(map[string][]fanoutOutcome, len(input.Games))
	gameByID := make(map[string]FanoutGame, len(input.Games))
	for _, g := range input.Games {
		gameByID[g.GameID] = g
	}
	for outcome := range outcomes {
		if !outcome.ok {
			result.DriversMissing[outcome.drv.Key()]++
			continue
		}
		byGame[outcome.gameID] = append(byGame[outcome.gameID], outcome)
	}

	// Deterministic write order regardless of pool completion order.
	gameIDs := make([]string, 0, len(input.Games))
	for _, g := range input.Games {
		gameIDs = append(gameIDs, g.GameID)
	}
	sort.Strings(gameIDs)

	for _, gameID := range gameIDs {
		entries := byGame[gameID]
		if len(entries) == 0 {
			result.GamesSkipped++
			continue
		}
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].drv.Key() < entries[j].drv.Key()
		})

		g := gameByID[gameID]
		written, writeErr := f.writeGameCards(ctx, input.Sport, g, entries)
		if writeErr != nil {
			f.logger.WarnContext(ctx, "fanout_write_failed", "game_id", gameID, "sport", input.Sport, "error", writeErr)
		}
		result.CardsWritten += written
		result.GamesProcessed++
	}

	return result, nil
}

func (f *FanoutService) writeGameCards(ctx context.Context, sport string, g FanoutGame, entries []fanoutOutcome) (int, error) {
	written := 0
	var weightedSum, weightTotal float64

	for _, entry := range entries {
		desc := entry.desc
		if desc.EVThresholdPassed {
			weightedSum += desc.Score * desc.Confidence
			weightTotal += desc.Confidence
		}

		outputID, err := f.store.IDs.NewID()
		if err != nil {
			return written, fmt.Errorf("generate model output id: %w", err)
		}
		cardID, err := f.store.IDs.NewID()
		if err != nil {
			return written, fmt.Errorf("generate card id: %w", err)
		}

		modelOutput := modeloutput.ModelOutput{
			ID:                outputID,
			GameID:            g.GameID,
			Sport:             sport,
			OddsSnapshotID:    g.Snapshot.ID,
			DriverKey:         desc.Key,
			CardType:          desc.CardType,
			Prediction:        desc.Prediction,
			Confidence:        desc.Confidence,
			Score:             desc.Score,
			Status:            modeloutput.DriverStatusOK,
			Reasoning:         desc.Reasoning,
			Inputs:            desc.Inputs,
			EVThresholdPassed: desc.EVThresholdPassed,
			CreatedAt:         time.Now().UTC(),
		}

		payloadData, err := buildCardPayload(desc, g.Snapshot.Markets)
		if err != nil {
			return written, fmt.Errorf("encode card payload %s/%s: %w", g.GameID, desc.CardType, err)
		}

		expiresAt := g.GameTimeUTC.Add(-cardExpiryLead)
		cardWrite := store.CardWrite{
			Card: card.CardPayload{
				ID:             cardID,
				GameID:         g.GameID,
				Sport:          sport,
				CardType:       desc.CardType,
				CardTitle:      desc.CardTitle,
				CardCategory:   desc.CardCategory,
				CreatedAt:      time.Now().UTC(),
				ExpiresAt:      &expiresAt,
				PayloadData:    payloadData,
				ModelOutputIDs: []string{outputID},
			},
			ModelOutputs:       []modeloutput.ModelOutput{modelOutput},
			RecommendedBetType: desc.RecommendedBetType,
		}

		if _, err := f.store.InsertCardPayload(ctx, cardWrite); err != nil {
			if errors.Is(err, ErrValidationFailure) {
				f.logger.WarnContext(ctx, "fanout_card_validation_failed", "game_id", g.GameID, "card_type", desc.CardType, "error", err)
				continue
			}
			return written, err
		}
		written++
	}

	if weightTotal <= 0 {
		return written, nil
	}

	compositeDesc := buildCompositeDescriptor(sport, weightedSum/weightTotal)
	outputID, err := f.store.IDs.NewID()
	if err != nil {
		return written, fmt.Errorf("generate composite model output id: %w", err)
	}
	cardID, err := f.store.IDs.NewID()
	if err != nil {
		return written, fmt.Errorf("generate composite card id: %w", err)
	}
	compositeOutput := modeloutput.ModelOutput{
		ID:             outputID,
		GameID:         g.GameID,
		Sport:          sport,
		OddsSnapshotID: g.Snapshot.ID,
		DriverKey:      compositeDesc.Key,
		CardType:       compositeDesc.CardType,
		Prediction:     compositeDesc.Prediction,
		Confidence:     compositeDesc.Confidence,
		Score:          compositeDesc.Score,
		Status:         modeloutput.DriverStatusOK,
		Reasoning:      compositeDesc.Reasoning,
		CreatedAt:      time.Now().UTC(),
	}
	payloadData, err := buildCardPayload(compositeDesc, g.Snapshot.Markets)
	if err != nil {
		return written, fmt.Errorf("encode composite card payload: %w", err)
	}
	expiresAt := g.GameTimeUTC.Add(-cardExpiryLead)
	if _, err := f.store.InsertCardPayload(ctx, store.CardWrite{
		Card: card.CardPayload{
			ID:             cardID,
			GameID:         g.GameID,
			Sport:          sport,
			CardType:       compositeDesc.CardType,
			CardTitle:      compositeDesc.CardTitle,
			CardCategory:   compositeDesc.CardCategory,
			CreatedAt:      time.Now().UTC(),
			ExpiresAt:      &expiresAt,
			PayloadData:    payloadData,
			ModelOutputIDs: []string{outputID},
		},
		ModelOutputs:       []modeloutput.ModelOutput{compositeOutput},
		RecommendedBetType: compositeDesc.RecommendedBetType,
	}); err != nil {
		if errors.Is(err, ErrValidationFailure) {
			f.logger.WarnContext(ctx, "fanout_composite_validation_failed", "game_id", g.GameID, "error", err)
			return written, nil
		}
		return written, err
	}
	return written + 1, nil
}

// buildCompositeDescriptor never reads raw odds directly — the composite
// direction comes only from the confidence-weighted average of driver
// scores that already cleared their own EV threshold.
func buildCompositeDescriptor(sport string, weightedScore float64) *driver.Descriptor {
	prediction := modeloutput.PredictionNeutral
	recommendation := card.RecommendationPass
	switch {
	case weightedScore > 0.5:
		prediction = modeloutput.PredictionHome
		recommendation = card.RecommendationMLHome
	case weightedScore < 0.5:
		prediction = modeloutput.PredictionAway
		recommendation = card.RecommendationMLAway
	}

	return &driver.Descriptor{
		Key:                "composite",
		CardType:           sport + "-composite",
		CardTitle:          "Composite Signal",
		CardCategory:       "composite",
		Confidence:         absDiffFromMidpoint(weightedScore),
		Score:              weightedScore,
		Prediction:         prediction,
		Reasoning:          "Confidence-weighted average of driver signals that passed their EV threshold.",
		EVThresholdPassed:  false,
		Recommendation:     recommendation,
		RecommendedBetType: "moneyline",
	}
}

func absDiffFromMidpoint(score float64) float64 {
	d := score - 0.5
	if d < 0 {
		d = -d
	}
	return d * 2
}

// buildCardPayload copies the odds fields the card was graded against at
// creation time into OddsContext, so settlement never has to re-join back to
// odds_snapshots to find the price it's grading against.
func buildCardPayload(desc *driver.Descriptor, markets oddssnapshot.Markets) ([]byte, error) {
	payload := card.Payload{
		Prediction:         string(desc.Prediction),
		Confidence:         desc.Confidence,
		Reasoning:          desc.Reasoning,
		RecommendedBetType: desc.RecommendedBetType,
		Recommendation:     &card.Recommendation{Type: desc.Recommendation},
		OddsContext: card.OddsContext{
			H2HHome:        markets.MoneylineHome,
			H2HAway:        markets.MoneylineAway,
			Total:          markets.Total,
			TotalOverOdds:  markets.TotalOverOdds,
			TotalUnderOdds: markets.TotalUnderOdds,
			SpreadHome:     markets.SpreadHome,
			SpreadAway:     markets.SpreadAway,
			SpreadHomeOdds: markets.SpreadHomeOdds,
			SpreadAwayOdds: markets.SpreadAwayOdds,
		},
		Driver: map[string]any{
			"key":                 desc.Key,
			"score":               desc.Score,
			"ev_threshold_passed": desc.EVThresholdPassed,
			"inputs":              desc.Inputs,
		},
		Meta: card.Meta{InferenceSource: "driver_engine"},
	}
	return json.Marshal(payload)
}
