package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sharplineio/cardengine/internal/usecase"
)

const analyzeWriteDeadline = 5 * time.Second

// closeNotFound/closeFailure are the Read API's documented WebSocket close
// codes: 4004 for an unknown analysis id, 4000 for any run failure.
const (
	closeNotFound = 4004
	closeFailure  = 4000
)

var analyzeUpgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool { return true },
}

type analyzeMessage struct {
	Type      string `json:"type"`
	Progress  int    `json:"progress,omitempty"`
	Phase     string `json:"phase,omitempty"`
	Results   any    `json:"results,omitempty"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp"`
}

// AnalyzeStream serves GET /api/analyze/{id}/stream: it re-runs the driver
// set for game id and reports progress/heartbeat/complete/error frames
// while the run is in flight. The heartbeat ticker guarantees a frame at
// least every 2s even while the analysis itself is computing.
func (h *Handler) AnalyzeStream(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AnalyzeStream")
	defer span.End()

	gameID := r.PathValue("id")

	conn, err := analyzeUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(ctx, "analyze stream upgrade failed", "game_id", gameID, "error", err)
		return
	}
	defer conn.Close()

	heartbeat := time.NewTicker(2 * time.Second)
	defer heartbeat.Stop()

	progress := make(chan usecase.AnalyzeProgress, 8)
	done := make(chan struct{})
	var runErr error
	var cards any

	go func() {
		defer close(done)
		result, err := h.analyzeService.Run(ctx, gameID, func(p usecase.AnalyzeProgress) {
			progress <- p
		})
		runErr = err
		if err == nil {
			items := make([]cardDTO, 0, len(result))
			for _, c := range result {
				items = append(items, cardToDTO(c))
			}
			cards = items
		}
	}()

	for {
		select {
		case p := <-progress:
			sendAnalyzeMessage(conn, analyzeMessage{Type: "progress", Progress: p.Progress, Phase: p.Phase, Timestamp: nowUTC()})
		case <-heartbeat.C:
			sendAnalyzeMessage(conn, analyzeMessage{Type: "heartbeat", Timestamp: nowUTC()})
		case <-done:
			if runErr != nil {
				code := closeFailure
				if errors.Is(runErr, usecase.ErrNotFound) {
					code = closeNotFound
				}
				sendAnalyzeMessage(conn, analyzeMessage{Type: "error", Message: runErr.Error(), Timestamp: nowUTC()})
				closeWithCode(conn, code, runErr.Error())
				return
			}
			sendAnalyzeMessage(conn, analyzeMessage{Type: "complete", Results: cards, Timestamp: nowUTC()})
			closeWithCode(conn, websocket.CloseNormalClosure, "")
			return
		}
	}
}

func sendAnalyzeMessage(conn *websocket.Conn, msg analyzeMessage) {
	conn.SetWriteDeadline(time.Now().Add(analyzeWriteDeadline))
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	_ = conn.WriteMessage(websocket.TextMessage, payload)
}

func closeWithCode(conn *websocket.Conn, code int, reason string) {
	conn.SetWriteDeadline(time.Now().Add(analyzeWriteDeadline))
	frame := websocket.FormatCloseMessage(code, reason)
	_ = conn.WriteMessage(websocket.CloseMessage, frame)
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}
