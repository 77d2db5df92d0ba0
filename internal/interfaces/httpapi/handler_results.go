package httpapi

import (
	"net/http"

	"github.com/sharplineio/cardengine/internal/domain/cardresult"
)

// ListResults serves GET /api/results?sport=&market=&card_category=, the
// play ledger plus its (sport, card_category, recommended_bet_type)
// tracking-stat segments.
func (h *Handler) ListResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListResults")
	defer span.End()

	query := r.URL.Query()
	filter := cardresult.ResultFilter{
		Sport:        query.Get("sport"),
		Market:       query.Get("market"),
		CardCategory: query.Get("card_category"),
		Dedupe:       true,
	}

	ledger, err := h.readService.ListResults(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "list results failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	results := make([]cardResultDTO, 0, len(ledger.Results))
	for _, cr := range ledger.Results {
		results = append(results, cardResultToDTO(cr))
	}
	segments := make([]segmentDTO, 0, len(ledger.Segments))
	for _, seg := range ledger.Segments {
		segments = append(segments, segmentToDTO(seg))
	}

	writeSuccess(ctx, w, http.StatusOK, ledgerDTO{Results: results, Segments: segments})
}
