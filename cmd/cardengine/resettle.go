package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sharplineio/cardengine/internal/app"
)

// allSports is the fallback sport list for resettle when --sport isn't
// given; it mirrors the three driver packages the scheduler can enable.
var allSports = []string{"nhl", "nfl", "nba"}

func newResettleCmd() *cobra.Command {
	var sport string

	cmd := &cobra.Command{
		Use:   "resettle",
		Short: "Manually settle game results and grade pending cards",
		Long: "resettle re-runs the settlement jobs outside the scheduler's own cadence, " +
			"for backfilling a results-source outage or catching up after downtime.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResettle(cmd, sport)
		},
	}

	cmd.Flags().StringVar(&sport, "sport", "", "limit to one sport (nhl, nfl, nba); default is all enabled sports")

	return cmd
}

func runResettle(cmd *cobra.Command, sport string) error {
	cfg, logger, err := loadConfigAndLogger()
	if err != nil {
		return err
	}

	application, err := app.NewApp(cfg, logger)
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	defer application.Close()

	sports := allSports
	if sport != "" {
		sports = []string{sport}
	}

	ctx := cmd.Context()
	totalResolved := 0
	for _, s := range sports {
		resolved, err := application.Settlement.SettleGameResults(ctx, s)
		if err != nil {
			return fmt.Errorf("settle game results for %s: %w", s, err)
		}
		totalResolved += resolved
		logger.Info("settle_game_results complete", "sport", s, "resolved", resolved)
	}

	graded, err := application.Settlement.SettlePendingCards(ctx)
	if err != nil {
		return fmt.Errorf("settle pending cards: %w", err)
	}
	logger.Info("settle_pending_cards complete", "graded", graded)

	fmt.Printf("resolved %d game result(s), graded %d card(s)\n", totalResolved, graded)
	return nil
}
