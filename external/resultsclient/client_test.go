package resultsclient_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sharplineio/cardengine/external/resultsclient"
	"github.com/sharplineio/cardengine/internal/usecase"
)

const sampleScoreboard = `{
  "events": [
    {
      "id": "e1",
      "competitions": [
        {
          "status": {"type": {"completed": true}},
          "competitors": [
            {"homeAway": "home", "score": "4", "team": {"displayName": "Boston Bruins"}},
            {"homeAway": "away", "score": "2", "team": {"displayName": "New York Rangers"}}
          ]
        }
      ]
    }
  ]
}`

func TestFetchScoreboard_ParsesCompletedEvent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/nhl/scoreboard" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleScoreboard))
	}))
	defer srv.Close()

	client := resultsclient.NewClient(resultsclient.ClientConfig{BaseURL: srv.URL})
	events, err := client.FetchScoreboard(context.Background(), "nhl")
	if err != nil {
		t.Fatalf("FetchScoreboard: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}

	ev := events[0]
	if !ev.Completed {
		t.Fatalf("expected event to be marked completed")
	}
	if len(ev.Competitors) != 2 {
		t.Fatalf("expected two competitors, got %d", len(ev.Competitors))
	}
	if ev.Competitors[0].Score != 4 || ev.Competitors[0].TeamName != "Boston Bruins" {
		t.Fatalf("unexpected home competitor: %+v", ev.Competitors[0])
	}
	if ev.Competitors[1].Score != 2 || ev.Competitors[1].TeamName != "New York Rangers" {
		t.Fatalf("unexpected away competitor: %+v", ev.Competitors[1])
	}
}

func TestFetchScoreboard_HTTPErrorWrapsProviderUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := resultsclient.NewClient(resultsclient.ClientConfig{BaseURL: srv.URL})
	_, err := client.FetchScoreboard(context.Background(), "nhl")
	if err == nil {
		t.Fatalf("expected an error for a 500 response")
	}
	if !errors.Is(err, usecase.ErrProviderUnavailable) {
		t.Fatalf("expected error to wrap ErrProviderUnavailable, got %v", err)
	}
}

func TestFetchScoreboard_SkipsEventsWithNoCompetitions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"events": [{"id": "e1", "competitions": []}]}`))
	}))
	defer srv.Close()

	client := resultsclient.NewClient(resultsclient.ClientConfig{BaseURL: srv.URL})
	events, err := client.FetchScoreboard(context.Background(), "nhl")
	if err != nil {
		t.Fatalf("FetchScoreboard: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected events with no competitions to be skipped, got %d", len(events))
	}
}
