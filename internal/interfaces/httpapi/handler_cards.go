package httpapi

import (
	"net/http"
	"time"

	"github.com/sharplineio/cardengine/internal/domain/card"
)

// ListCards serves GET /api/cards?game_id=&dedupe=(latest_per_game_type|none).
// dedupe defaults to latest_per_game_type per the Read API contract.
func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListCards")
	defer span.End()

	dedupe := card.DedupeLatestPerGameType
	if v := r.URL.Query().Get("dedupe"); v == string(card.DedupeNone) {
		dedupe = card.DedupeNone
	}

	filter := card.ListFilter{
		GameID: r.URL.Query().Get("game_id"),
		Dedupe: dedupe,
		AsOf:   time.Now().UTC(),
	}

	cards, err := h.readService.ListCards(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "list cards failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]cardDTO, 0, len(cards))
	for _, c := range cards {
		items = append(items, cardToDTO(c))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}
