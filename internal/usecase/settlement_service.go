package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/sharplineio/cardengine/internal/domain/card"
	"github.com/sharplineio/cardengine/internal/domain/cardresult"
	"github.com/sharplineio/cardengine/internal/domain/game"
	"github.com/sharplineio/cardengine/internal/domain/gameresult"
	"github.com/sharplineio/cardengine/internal/domain/trackingstat"
	"github.com/sharplineio/cardengine/internal/platform/logging"
	"github.com/sharplineio/cardengine/internal/store"
)

// ScoreboardFetchFunc adapts external/resultsclient.Client.FetchScoreboard
// (or a test double) for the same reverse-import reason OddsFetchFunc
// exists: resultsclient already imports usecase for its error sentinel.
type ScoreboardFetchFunc func(ctx context.Context, sport string) ([]ScoreboardEvent, error)

type ScoreboardEvent struct {
	EventID     string
	Completed   bool
	Competitors []ScoreboardCompetitor
}

type ScoreboardCompetitor struct {
	HomeAway string
	Score    int
	TeamName string
}

// teamAliases maps common short forms to the city token used in full team
// names, so "LA Kings" and "Los Angeles Kings" are recognized as the same
// team without a hardcoded team table.
var teamAliases = map[string]string{
	"la":  "los angeles",
	"ny":  "new york",
	"sf":  "san francisco",
	"sj":  "san jose",
	"lv":  "las vegas",
	"tb":  "tampa bay",
	"nj":  "new jersey",
	"stl": "st louis",
	"no":  "new orleans",
}

func normalizeTeamName(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	tokens := strings.Fields(lower)
	for i, tok := range tokens {
		if expanded, ok := teamAliases[tok]; ok {
			tokens[i] = expanded
		}
	}
	return strings.Join(tokens, " ")
}

// teamNamesMatch treats two team names as the same franchise when one
// normalized name fully contains the other — enough to bridge "LA Kings"
// against "Los Angeles Kings" without requiring an exact string match.
func teamNamesMatch(a, b string) bool {
	na, nb := normalizeTeamName(a), normalizeTeamName(b)
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

// SettlementService runs the two settlement jobs: resolving official game
// results against still-open games, and grading pending cards once their
// game is final.
type SettlementService struct {
	store           *store.Store
	fetchScoreboard ScoreboardFetchFunc
	logger          *logging.Logger
}

func NewSettlementService(st *store.Store, fetchScoreboard ScoreboardFetchFunc, logger *logging.Logger) *SettlementService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SettlementService{store: st, fetchScoreboard: fetchScoreboard, logger: logger}
}

// SettleGameResults is job_name=settle_game_results: match completed
// scoreboard events against games that have started but aren't final yet,
// and record their official result.
func (s *SettlementService) SettleGameResults(ctx context.Context, sport string) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.SettleGameResults")
	defer span.End()

	openGames, err := s.store.Games.ListNotFinalPastStart(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	if len(openGames) == 0 {
		return 0, nil
	}

	events, err := s.fetchScoreboard(ctx, sport)
	if err != nil {
		s.logger.WarnContext(ctx, "settlement_scoreboard_fetch_failed", "sport", sport, "error", err)
		return 0, err
	}

	settled := 0
	for _, g := range openGames {
		if g.Sport != strings.ToLower(sport) {
			continue
		}
		event, ok := matchEventToGame(events, g)
		if !ok || !event.Completed {
			continue
		}

		homeScore, awayScore, ok := scoresFromEvent(event)
		if !ok {
			continue
		}

		if err := s.store.UpsertGameResult(ctx, gameresult.GameResult{
			GameID:         g.GameID,
			FinalScoreHome: homeScore,
			FinalScoreAway: awayScore,
			Status:         game.StatusFinal,
			ResultSource:   "results_source",
			SettledAt:      time.Now().UTC(),
		}); err != nil {
			s.logger.ErrorContext(ctx, "settlement_upsert_game_result_failed", "game_id", g.GameID, "error", err)
			continue
		}
		settled++
	}
	return settled, nil
}

func matchEventToGame(events []ScoreboardEvent, g game.Game) (ScoreboardEvent, bool) {
	for _, event := range events {
		if len(event.Competitors) < 2 {
			continue
		}
		var home, away string
		for _, c := range event.Competitors {
			switch c.HomeAway {
			case "home":
				home = c.TeamName
			case "away":
				away = c.TeamName
			}
		}
		if teamNamesMatch(home, g.Home) && teamNamesMatch(away, g.Away) {
			return event, true
		}
	}
	return ScoreboardEvent{}, false
}

func scoresFromEvent(event ScoreboardEvent) (home, away int, ok bool) {
	found := 0
	for _, c := range event.Competitors {
		switch c.HomeAway {
		case "home":
			home = c.Score
			found++
		case "away":
			away = c.Score
			found++
		}
	}
	return home, away, found == 2
}

// SettlePendingCards is job_name=settle_pending_cards: grade every pending
// CardResult whose game is final, then recompute tracking stats for every
// (sport, card_category, recommended_bet_type) key touched this pass.
func (s *SettlementService) SettlePendingCards(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.SettlePendingCards")
	defer span.End()

	pending, err := s.store.CardResults.ListPendingWithFinalGame(ctx)
	if err != nil {
		return 0, err
	}

	touched := map[trackingstat.Key]struct{}{}
	settledCount := 0
	for _, pendingResult := range pending {
		graded, key, ok, err := s.gradeOne(ctx, pendingResult)
		if err != nil {
			s.logger.ErrorContext(ctx, "settlement_grade_failed", "card_id", pendingResult.CardID, "error", err)
			continue
		}
		if !ok {
			continue
		}
		if graded {
			settledCount++
			touched[key] = struct{}{}
		}
	}

	for key := range touched {
		if err := s.recomputeTrackingStat(ctx, key); err != nil {
			s.logger.ErrorContext(ctx, "settlement_recompute_tracking_stat_failed", "key", key, "error", err)
		}
	}
	return settledCount, nil
}

// gradeOne grades a single pending CardResult. ok=false means the card was
// skipped (PASS/NEUTRAL recommendation, or a decode failure) without being
// an error worth surfacing to the caller.
func (s *SettlementService) gradeOne(ctx context.Context, pending cardresult.CardResult) (graded bool, key trackingstat.Key, ok bool, err error) {
	cardRow, err := s.store.Cards.GetByID(ctx, pending.CardID)
	if err != nil {
		return false, key, false, err
	}
	var payload card.Payload
	if err := json.Unmarshal(cardRow.PayloadData, &payload); err != nil {
		return false, key, false, err
	}
	if payload.Recommendation == nil {
		recType, resolved := legacyRecommendationType(payload.Prediction, payload.RecommendedBetType)
		if !resolved {
			return false, key, false, nil
		}
		payload.Recommendation = &card.Recommendation{Type: recType}
	}
	if payload.Recommendation.Type == card.RecommendationPass {
		return false, key, false, nil
	}

	result, err := s.store.GameResults.GetByGameID(ctx, pending.GameID)
	if err != nil {
		return false, key, false, err
	}

	outcome, odds, ok := gradeRecommendation(payload, result)
	if !ok {
		return false, key, false, nil
	}

	pnl := 0.0
	switch outcome {
	case cardresult.ResultWin:
		pnl = cardresult.ToUnits(odds)
	case cardresult.ResultLoss:
		pnl = -1.0
	case cardresult.ResultPush:
		pnl = 0.0
	}

	didTransition, err := s.store.MarkCardResult(ctx, pending.CardID, outcome, pnl, time.Now().UTC())
	if err != nil {
		return false, key, false, err
	}
	key = trackingstat.Key{Sport: pending.Sport, CardCategory: pending.CardCategory, RecommendedBetType: pending.RecommendedBetType}
	return didTransition, key, true, nil
}

// legacyRecommendationType resolves a CardResult's authoritative bet
// direction for payloads written before the recommendation object existed,
// by combining the legacy prediction field with recommended_bet_type.
// NEUTRAL and PASS predictions, and any bet type the pair doesn't resolve
// to a concrete direction for, are not a play and return ok=false.
func legacyRecommendationType(prediction, betType string) (card.RecommendationType, bool) {
	switch strings.ToUpper(strings.TrimSpace(betType)) {
	case "MONEYLINE":
		switch strings.ToUpper(strings.TrimSpace(prediction)) {
		case "HOME":
			return card.RecommendationMLHome, true
		case "AWAY":
			return card.RecommendationMLAway, true
		}
	case "SPREAD":
		switch strings.ToUpper(strings.TrimSpace(prediction)) {
		case "HOME":
			return card.RecommendationSpreadHome, true
		case "AWAY":
			return card.RecommendationSpreadAway, true
		}
	case "TOTAL":
		switch strings.ToUpper(strings.TrimSpace(prediction)) {
		case "OVER":
			return card.RecommendationTotalOver, true
		case "UNDER":
			return card.RecommendationTotalUnder, true
		}
	}
	return "", false
}

// gradeRecommendation resolves the actual outcome for one recommendation
// type against the final score, and the odds price the result pays at.
func gradeRecommendation(payload card.Payload, result gameresult.GameResult) (outcome string, odds int, ok bool) {
	switch payload.Recommendation.Type {
	case card.RecommendationMLHome:
		return moneylineOutcome(result.FinalScoreHome, result.FinalScoreAway, payload.OddsContext.H2HHome)
	case card.RecommendationMLAway:
		return moneylineOutcome(result.FinalScoreAway, result.FinalScoreHome, payload.OddsContext.H2HAway)
	case card.RecommendationSpreadHome:
		return spreadOutcome(result.FinalScoreHome, result.FinalScoreAway, payload.OddsContext.SpreadHome, payload.OddsContext.SpreadHomeOdds)
	case card.RecommendationSpreadAway:
		return spreadOutcome(result.FinalScoreAway, result.FinalScoreHome, payload.OddsContext.SpreadAway, payload.OddsContext.SpreadAwayOdds)
	case card.RecommendationTotalOver:
		return totalOutcome(result.FinalScoreHome+result.FinalScoreAway, payload.OddsContext.Total, payload.OddsContext.TotalOverOdds, true)
	case card.RecommendationTotalUnder:
		return totalOutcome(result.FinalScoreHome+result.FinalScoreAway, payload.OddsContext.Total, payload.OddsContext.TotalUnderOdds, false)
	default:
		return "", 0, false
	}
}

func moneylineOutcome(pickedScore, opponentScore int, odds *int) (string, int, bool) {
	if odds == nil {
		return "", 0, false
	}
	if pickedScore == opponentScore {
		return cardresult.ResultPush, *odds, true
	}
	if pickedScore > opponentScore {
		return cardresult.ResultWin, *odds, true
	}
	return cardresult.ResultLoss, *odds, true
}

func spreadOutcome(pickedScore, opponentScore int, line *float64, odds *int) (string, int, bool) {
	if line == nil || odds == nil {
		return "", 0, false
	}
	margin := float64(pickedScore-opponentScore) + *line
	switch {
	case margin > 0:
		return cardresult.ResultWin, *odds, true
	case margin < 0:
		return cardresult.ResultLoss, *odds, true
	default:
		return cardresult.ResultPush, *odds, true
	}
}

func totalOutcome(combinedScore int, line *float64, odds *int, over bool) (string, int, bool) {
	if line == nil || odds == nil {
		return "", 0, false
	}
	diff := float64(combinedScore) - *line
	switch {
	case diff == 0:
		return cardresult.ResultPush, *odds, true
	case (diff > 0) == over:
		return cardresult.ResultWin, *odds, true
	default:
		return cardresult.ResultLoss, *odds, true
	}
}

func (s *SettlementService) recomputeTrackingStat(ctx context.Context, key trackingstat.Key) error {
	settled, err := s.store.CardResults.ListSettledByKey(ctx, key.Sport, key.CardCategory, key.RecommendedBetType)
	if err != nil {
		return err
	}

	stat := trackingstat.TrackingStat{
		Sport:              key.Sport,
		CardCategory:       key.CardCategory,
		RecommendedBetType: key.RecommendedBetType,
		LastUpdated:        time.Now().UTC(),
	}
	for _, r := range settled {
		if r.Result == nil {
			continue
		}
		switch *r.Result {
		case cardresult.ResultWin:
			stat.Wins++
		case cardresult.ResultLoss:
			stat.Losses++
		case cardresult.ResultPush:
			stat.Pushes++
		}
		stat.TotalPnLUnits += r.PnLUnits
	}
	return s.store.UpsertTrackingStat(ctx, stat)
}
