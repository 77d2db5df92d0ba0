package oddsprovider_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sharplineio/cardengine/external/oddsprovider"
)

const samplePayload = `[
  {
    "id": "abc123",
    "commence_time": "2026-08-02T23:00:00Z",
    "home_team": "Boston Bruins",
    "away_team": "New York Rangers",
    "bookmakers": [
      {
        "key": "draftkings",
        "markets": [
          {
            "key": "h2h",
            "outcomes": [
              {"name": "Boston Bruins", "price": -150},
              {"name": "New York Rangers", "price": 130}
            ]
          },
          {
            "key": "totals",
            "outcomes": [
              {"name": "Over", "price": -110, "point": 6.0},
              {"name": "Under", "price": -110, "point": 6.0}
            ]
          }
        ]
      }
    ]
  }
]`

func TestFetch_NormalizesProviderResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/nhl/odds" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(samplePayload))
	}))
	defer srv.Close()

	client := oddsprovider.NewClient(oddsprovider.ClientConfig{BaseURL: srv.URL, APIKey: "test-key"})
	result := client.Fetch(context.Background(), "nhl", 48)

	if len(result.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", result.Errors)
	}
	if len(result.Games) != 1 {
		t.Fatalf("expected one normalized game, got %d", len(result.Games))
	}

	g := result.Games[0]
	if g.Home != "Boston Bruins" || g.Away != "New York Rangers" {
		t.Fatalf("unexpected teams: %+v", g)
	}
	if g.Markets.MoneylineHome == nil || *g.Markets.MoneylineHome != -150 {
		t.Fatalf("expected home moneyline -150, got %+v", g.Markets.MoneylineHome)
	}
	if g.Markets.Total == nil || *g.Markets.Total != 6.0 {
		t.Fatalf("expected total 6.0, got %+v", g.Markets.Total)
	}
}

func TestFetch_ProviderFailureReturnsErrorsNotGoError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := oddsprovider.NewClient(oddsprovider.ClientConfig{BaseURL: srv.URL, APIKey: "test-key"})
	result := client.Fetch(context.Background(), "nhl", 48)

	if len(result.Games) != 0 {
		t.Fatalf("expected no games on provider failure, got %d", len(result.Games))
	}
	if len(result.Errors) == 0 {
		t.Fatalf("expected a reported error for the failed fetch")
	}
}

func TestFetch_RetriesOn5xxThenSucceeds(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(samplePayload))
	}))
	defer srv.Close()

	client := oddsprovider.NewClient(oddsprovider.ClientConfig{BaseURL: srv.URL, APIKey: "test-key", MaxRetries: 2})
	result := client.Fetch(context.Background(), "nhl", 48)

	if len(result.Errors) != 0 {
		t.Fatalf("expected the retry to eventually succeed, got errors %v", result.Errors)
	}
	if attempts != 2 {
		t.Fatalf("expected exactly 2 attempts, got %d", attempts)
	}
	if len(result.Games) != 1 {
		t.Fatalf("expected one normalized game after retry, got %d", len(result.Games))
	}
}

func TestTokensForFetch_CountsActiveSports(t *testing.T) {
	if got := oddsprovider.TokensForFetch([]string{"nhl", "nfl", "nba"}); got != 3 {
		t.Fatalf("expected 3 tokens, got %d", got)
	}
	if got := oddsprovider.TokensForFetch(nil); got != 0 {
		t.Fatalf("expected 0 tokens for no sports, got %d", got)
	}
}

func TestFetch_MalformedGameIsSkippedNotFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id": "missing-fields"}]`))
	}))
	defer srv.Close()

	client := oddsprovider.NewClient(oddsprovider.ClientConfig{BaseURL: srv.URL, APIKey: "test-key"})
	result := client.Fetch(context.Background(), "nhl", 48)

	if len(result.Errors) != 0 {
		t.Fatalf("expected no hard errors for a row missing fields, got %v", result.Errors)
	}
	if len(result.Games) != 0 {
		t.Fatalf("expected the incomplete row to be skipped, got %d games", len(result.Games))
	}
	if result.RawCount != 1 {
		t.Fatalf("expected raw count to still reflect the one row decoded, got %d", result.RawCount)
	}
}
