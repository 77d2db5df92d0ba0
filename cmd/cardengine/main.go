// Command cardengine runs the odds-ingest/fan-out/settlement pipeline and
// its read API, or drives one-off operator tasks (schema migrations, manual
// settlement backfill) against the same database.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sharplineio/cardengine/internal/config"
	"github.com/sharplineio/cardengine/internal/platform/logging"
)

func main() {
	root := &cobra.Command{
		Use:           "cardengine",
		Short:         "Odds ingest, analytical card fan-out, and settlement pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newResettleCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfigAndLogger is shared by every subcommand: config.Load() is the
// single source of truth for both env parsing and the base JSON logger.
func loadConfigAndLogger() (config.Config, *logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)
	return cfg, logger, nil
}

// slogBridge gives pprof/pyroscope (which predate this repo's zap-backed
// logger) a standard-library logger that still ends up on the same stream.
func slogBridge(logger *logging.Logger) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{}))
}
