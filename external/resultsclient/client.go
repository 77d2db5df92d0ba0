// Package resultsclient fetches official game results for settlement. It
// guards its HTTP calls with sony/gobreaker rather than the hand-rolled
// resilience.CircuitBreaker the odds provider uses — two independent
// integrations, two different breaker libraries, added to solve the same
// problem at different times.
package resultsclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sony/gobreaker"

	"github.com/sharplineio/cardengine/internal/platform/logging"
	"github.com/sharplineio/cardengine/internal/usecase"
)

const defaultBaseURL = "https://site.api.espn.com/apis/site/v2/sports"

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	HTTPTimeout    time.Duration
	Logger         *logging.Logger
	MaxRequests    uint32
	Interval       time.Duration
	BreakerTimeout time.Duration
	FailureRatio   float64
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *logging.Logger
	breaker    *gobreaker.CircuitBreaker
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	failureRatio := cfg.FailureRatio
	if failureRatio <= 0 {
		failureRatio = 0.6
	}
	maxRequests := cfg.MaxRequests
	if maxRequests == 0 {
		maxRequests = 3
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	openTimeout := cfg.BreakerTimeout
	if openTimeout <= 0 {
		openTimeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "results_source",
		MaxRequests: maxRequests,
		Interval:    interval,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 3 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= failureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("results_source_circuit_state_change", "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		logger:     logger,
		breaker:    breaker,
	}
}

// Competitor is one side of a scoreboard event.
type Competitor struct {
	HomeAway string
	Score    int
	TeamName string
}

// Event is one scoreboard entry for a sport.
type Event struct {
	EventID     string
	Completed   bool
	Competitors []Competitor
}

// FetchScoreboard returns the current scoreboard for a sport. On any
// provider failure (HTTP error, breaker open, non-array payload) it returns
// an empty slice and a typed ErrProviderUnavailable, matching the Odds
// Adapter's "never half-write" contract.
func (c *Client) FetchScoreboard(ctx context.Context, sport string) ([]Event, error) {
	path := fmt.Sprintf("/%s/scoreboard", strings.ToLower(sport))

	out, err := c.breaker.Execute(func() (any, error) {
		return c.doGET(ctx, path)
	})
	if err != nil {
		c.logger.WarnContext(ctx, "results_source_fetch_failed", "sport", sport, "error", err)
		return nil, fmt.Errorf("%w: %v", usecase.ErrProviderUnavailable, err)
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected payload type", usecase.ErrProviderUnavailable)
	}

	var envelope scoreboardEnvelope
	if err := jsoniter.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: decode scoreboard: %v", usecase.ErrProviderUnavailable, err)
	}

	events := make([]Event, 0, len(envelope.Events))
	for _, ev := range envelope.Events {
		if len(ev.Competitions) == 0 {
			continue
		}
		comp := ev.Competitions[0]
		event := Event{
			EventID:   ev.ID,
			Completed: comp.Status.Type.Completed,
		}
		for _, competitor := range comp.Competitors {
			score := 0
			fmt.Sscanf(competitor.Score, "%d", &score)
			event.Competitors = append(event.Competitors, Competitor{
				HomeAway: competitor.HomeAway,
				Score:    score,
				TeamName: competitor.Team.DisplayName,
			})
		}
		events = append(events, event)
	}
	return events, nil
}

func (c *Client) doGET(ctx context.Context, path string) ([]byte, error) {
	fullURL := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("results source status=%d", resp.StatusCode)
	}
	return raw, nil
}

type scoreboardEnvelope struct {
	Events []scoreboardEvent `json:"events"`
}

type scoreboardEvent struct {
	ID           string               `json:"id"`
	Competitions []scoreboardCompetition `json:"competitions"`
}

type scoreboardCompetition struct {
	Status       scoreboardStatus        `json:"status"`
	Competitors  []scoreboardCompetitor  `json:"competitors"`
}

type scoreboardStatus struct {
	Type scoreboardStatusType `json:"type"`
}

type scoreboardStatusType struct {
	Completed bool `json:"completed"`
}

type scoreboardCompetitor struct {
	HomeAway string            `json:"homeAway"`
	Score    string            `json:"score"`
	Team     scoreboardTeamRef `json:"team"`
}

type scoreboardTeamRef struct {
	DisplayName string `json:"displayName"`
}
