package httpapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sharplineio/cardengine/internal/domain/card"
	"github.com/sharplineio/cardengine/internal/domain/game"
	"github.com/sharplineio/cardengine/internal/infrastructure/repository/memory"
	"github.com/sharplineio/cardengine/internal/interfaces/httpapi"
	"github.com/sharplineio/cardengine/internal/platform/id"
	"github.com/sharplineio/cardengine/internal/store"
	"github.com/sharplineio/cardengine/internal/usecase"
)

func newTestRouter(t *testing.T) (http.Handler, *store.Store) {
	t.Helper()
	games := memory.NewGameRepository()
	cards := memory.NewCardRepository()
	st := &store.Store{
		Games:         games,
		OddsSnapshots: memory.NewOddsSnapshotRepository(),
		JobRuns:       memory.NewJobRunRepository(),
		ModelOutputs:  memory.NewModelOutputRepository(),
		Cards:         cards,
		CardResults:   memory.NewCardResultRepository(games, cards),
		GameResults:   memory.NewGameResultRepository(),
		TrackingStats: memory.NewTrackingStatRepository(),
		RawPayloads:   memory.NewRawPayloadRepository(),
		Registry:      card.NewRegistry(),
		IDs:           id.NewRandomGenerator(),
	}

	readSvc := usecase.NewReadService(st, func(context.Context) error { return nil })
	fanout := usecase.NewFanoutService(st, nil, 1, nil)
	analyzeSvc := usecase.NewAnalyzeService(st, fanout)
	handler := httpapi.NewHandler(readSvc, analyzeSvc, "UTC", nil)
	return httpapi.NewRouter(handler, false, nil), st
}

func TestListGames_ReturnsEnvelopedJSON(t *testing.T) {
	router, st := newTestRouter(t)
	ctx := context.Background()

	if err := st.Games.UpsertGame(ctx, game.Game{
		GameID: "g1", Sport: "nhl", Home: "BOS", Away: "NYR", StartUTC: time.Now().UTC().Add(time.Hour),
	}); err != nil {
		t.Fatalf("upsert game: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/games", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		APIVersion string `json:"apiVersion"`
		Data       []struct {
			GameID string `json:"game_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(body.Data) != 1 || body.Data[0].GameID != "g1" {
		t.Fatalf("expected one game g1, got %+v", body.Data)
	}
}

func TestHealth_ReturnsOKWhenStoreReachable(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSwaggerRoutes_NotRegisteredWhenDisabled(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/docs", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for /docs when swagger disabled, got %d", rec.Code)
	}
}
