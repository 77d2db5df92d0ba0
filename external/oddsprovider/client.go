// Package oddsprovider talks to the third-party odds feed and normalizes its
// response into the shape the Ingest Pipeline writes to the Store. Fetch is
// a pure function of (sport, hoursAhead): it never writes, and on any
// provider failure it returns an empty result set rather than erroring, so
// the pipeline can decide per-sport what a failure means.
package oddsprovider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/bytebufferpool"

	"github.com/sharplineio/cardengine/internal/domain/game"
	"github.com/sharplineio/cardengine/internal/domain/oddssnapshot"
	"github.com/sharplineio/cardengine/internal/platform/logging"
	"github.com/sharplineio/cardengine/internal/platform/resilience"
	"github.com/sharplineio/cardengine/internal/usecase"
)

const defaultBaseURL = "https://api.the-odds-api.com/v4/sports"

var errTransient = errors.New("odds provider transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// NormalizedGame is the Odds Adapter's output shape for one game.
type NormalizedGame struct {
	GameID        string
	Sport         string
	Home          string
	Away          string
	GameTimeUTC   time.Time
	CapturedAtUTC time.Time
	Markets       oddssnapshot.Markets
}

// FetchResult is the (games, errors, rawCount) triple spec'd for the
// adapter.
type FetchResult struct {
	Games    []NormalizedGame
	Errors   []string
	RawCount int
}

// Fetch calls the provider for one sport and normalizes the response. It
// never writes to the Store and never returns a Go error for provider
// failures — those are reported via FetchResult.Errors with an empty game
// set, so the ingest pipeline can still complete the tick for other sports.
func (c *Client) Fetch(ctx context.Context, sport string, hoursAhead int) FetchResult {
	path := fmt.Sprintf("/%s/odds", strings.ToLower(sport))
	query := url.Values{}
	query.Set("apiKey", c.apiKey)
	query.Set("regions", "us")
	query.Set("markets", "h2h,totals,spreads")
	query.Set("oddsFormat", "american")

	raw, err := c.doGET(ctx, path, query)
	if err != nil {
		c.logger.WarnContext(ctx, "odds_provider_fetch_failed", "sport", sport, "error", err)
		return FetchResult{Errors: []string{err.Error()}}
	}

	var rows []providerGame
	if err := jsoniter.Unmarshal(raw, &rows); err != nil {
		return FetchResult{Errors: []string{fmt.Sprintf("decode provider response: %v", err)}}
	}

	result := FetchResult{RawCount: len(rows)}
	for _, row := range rows {
		normalized, ok := normalizeGame(sport, row)
		if !ok {
			continue
		}
		result.Games = append(result.Games, normalized)
	}
	return result
}

// TokensForFetch is a pure helper for logging/budget accounting: the
// provider bills one token per active sport per call, regardless of how
// many games come back.
func TokensForFetch(activeSports []string) int {
	return len(activeSports)
}

func normalizeGame(sport string, row providerGame) (NormalizedGame, bool) {
	home := strings.TrimSpace(row.HomeTeam)
	away := strings.TrimSpace(row.AwayTeam)
	if home == "" || away == "" || strings.TrimSpace(row.CommenceTime) == "" {
		return NormalizedGame{}, false
	}

	gameTime, err := time.Parse(time.RFC3339, row.CommenceTime)
	if err != nil {
		return NormalizedGame{}, false
	}

	markets := extractMarkets(row, home, away)
	if markets.MoneylineHome == nil && markets.Total == nil && markets.SpreadHome == nil {
		return NormalizedGame{}, false
	}

	return NormalizedGame{
		GameID:        game.BuildID(sport, row.ID),
		Sport:         strings.ToLower(sport),
		Home:          home,
		Away:          away,
		GameTimeUTC:   gameTime.UTC(),
		CapturedAtUTC: time.Now().UTC(),
		Markets:       markets,
	}, true
}

func extractMarkets(row providerGame, home, away string) oddssnapshot.Markets {
	var out oddssnapshot.Markets
	for _, bk := range row.Bookmakers {
		for _, mkt := range bk.Markets {
			switch mkt.Key {
			case "h2h":
				for _, o := range mkt.Outcomes {
					price := americanFromDecimal(o.Price)
					switch o.Name {
					case home:
						out.MoneylineHome = intPtr(price)
					case away:
						out.MoneylineAway = intPtr(price)
					}
				}
			case "totals":
				for _, o := range mkt.Outcomes {
					point := o.Point
					price := americanFromDecimal(o.Price)
					switch strings.ToLower(o.Name) {
					case "over":
						out.Total = floatPtr(point)
						out.TotalOverOdds = intPtr(price)
					case "under":
						out.Total = floatPtr(point)
						out.TotalUnderOdds = intPtr(price)
					}
				}
			case "spreads":
				for _, o := range mkt.Outcomes {
					point := o.Point
					price := americanFromDecimal(o.Price)
					switch o.Name {
					case home:
						out.SpreadHome = floatPtr(point)
						out.SpreadHomeOdds = intPtr(price)
					case away:
						out.SpreadAway = floatPtr(point)
						out.SpreadAwayOdds = intPtr(price)
					}
				}
			}
		}
		break // first bookmaker's lines are authoritative for this snapshot
	}

	if out.SpreadHome != nil && out.SpreadHomeOdds == nil {
		out.SpreadHomeOdds = intPtr(oddssnapshot.DefaultAmericanOdds)
	}
	if out.SpreadAway != nil && out.SpreadAwayOdds == nil {
		out.SpreadAwayOdds = intPtr(oddssnapshot.DefaultAmericanOdds)
	}
	return out
}

// americanFromDecimal accepts either an already-american integer price or a
// decimal odds value (the provider's oddsFormat query param controls which
// one arrives; this handles both defensively since the adapter is the only
// place this ambiguity can be resolved).
func americanFromDecimal(price float64) int {
	if price >= 100 || price <= -100 {
		return int(price)
	}
	if price >= 2.0 {
		return int((price - 1) * 100)
	}
	if price > 1.0 {
		return int(-100 / (price - 1))
	}
	return oddssnapshot.DefaultAmericanOdds
}

func (c *Client) doGET(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "odds_provider_circuit_rejected", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: odds provider temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	fullURL := c.baseURL + path + "?" + query.Encode()
	key := fullURL
	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && errors.Is(reqErr, errTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}
	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}
	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errTransient, err)
		} else {
			buf.Reset()
			if _, copyErr := io.Copy(buf, io.LimitReader(resp.Body, 4<<20)); copyErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errTransient, copyErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				_ = resp.Body.Close()
				out := make([]byte, buf.Len())
				copy(out, buf.B)
				return out, nil
			} else if isRetryableStatus(resp.StatusCode) {
				lastErr = fmt.Errorf("%w: provider status=%d", errTransient, resp.StatusCode)
			} else {
				_ = resp.Body.Close()
				return nil, fmt.Errorf("provider status=%d", resp.StatusCode)
			}
			_ = resp.Body.Close()
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * 500 * time.Millisecond
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	return nil, lastErr
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func intPtr(v int) *int          { return &v }
func floatPtr(v float64) *float64 { return &v }
func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

type providerGame struct {
	ID           string             `json:"id"`
	CommenceTime string             `json:"commence_time"`
	HomeTeam     string             `json:"home_team"`
	AwayTeam     string             `json:"away_team"`
	Bookmakers   []providerBookmaker `json:"bookmakers"`
}

type providerBookmaker struct {
	Key     string           `json:"key"`
	Markets []providerMarket `json:"markets"`
}

type providerMarket struct {
	Key      string            `json:"key"`
	Outcomes []providerOutcome `json:"outcomes"`
}

type providerOutcome struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Point float64 `json:"point"`
}
