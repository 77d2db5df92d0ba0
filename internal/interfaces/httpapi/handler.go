package httpapi

import (
	"time"

	"github.com/sharplineio/cardengine/internal/platform/logging"
	"github.com/sharplineio/cardengine/internal/usecase"
)

// Handler serves the Read API: games, cards, the play ledger, health, and
// the optional analysis progress stream. It holds no write path — every
// method here is a query against the store via ReadService.
type Handler struct {
	readService    *usecase.ReadService
	analyzeService *usecase.AnalyzeService
	location       *time.Location
	logger         *logging.Logger
}

func NewHandler(readService *usecase.ReadService, analyzeService *usecase.AnalyzeService, timezone string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		logger.Warn("unknown read api timezone, falling back to UTC", "timezone", timezone, "error", err)
		loc = time.UTC
	}

	return &Handler{
		readService:    readService,
		analyzeService: analyzeService,
		location:       loc,
		logger:         logger,
	}
}
