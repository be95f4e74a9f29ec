package alphavantage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/wonny/whalewatch/pkg/config"
	"github.com/wonny/whalewatch/pkg/httputil"
	"github.com/wonny/whalewatch/pkg/logger"
)

var (
	// ErrTickerNotFound means the upstream has no quote for the symbol
	ErrTickerNotFound = errors.New("ticker not found")
	// ErrRateLimited means the API key ran out of requests
	ErrRateLimited = errors.New("alpha vantage rate limit reached")
	// ErrUpstream covers transport failures and unexpected responses
	ErrUpstream = errors.New("alpha vantage request failed")
)

const (
	functionGlobalQuote = "GLOBAL_QUOTE"
	functionDaily       = "TIME_SERIES_DAILY"

	compactSessions = 100 // sessions returned with outputsize=compact

	breakerInterval     = 60 * time.Second
	breakerTimeout      = 60 * time.Second
	breakerMaxFailures  = 3
	breakerMinRequests  = 20
	breakerFailureRatio = 0.05
)

// Client handles communication with the Alpha Vantage API
// ⭐ SSOT: Alpha Vantage 호출은 이 클라이언트에서만
type Client struct {
	httpClient   *httputil.Client
	breaker      *gobreaker.CircuitBreaker
	logger       *logger.Logger
	baseURL      string
	apiKey       string
	lookbackDays int
}

// NewClient creates a new Alpha Vantage client
func NewClient(httpClient *httputil.Client, log *logger.Logger, cfg config.AlphaVantageConfig) *Client {
	lookback := cfg.LookbackDays
	if lookback <= 0 {
		lookback = 30
	}

	return &Client{
		httpClient:   httpClient,
		breaker:      newBreaker(log),
		logger:       log,
		baseURL:      cfg.BaseURL,
		apiKey:       cfg.APIKey,
		lookbackDays: lookback,
	}
}

// newBreaker opens after repeated transport or 5xx failures.
// Rate limits, unknown tickers and cancelled requests do not count.
func newBreaker(log *logger.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     "alphavantage",
		Interval: breakerInterval,
		Timeout:  breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= breakerMaxFailures {
				return true
			}
			if counts.Requests < breakerMinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) > breakerFailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrRateLimited) ||
				errors.Is(err, ErrTickerNotFound) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})
}

// BreakerState reports the upstream circuit state (closed, half-open, open)
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}

// apiMessages are the informational payloads Alpha Vantage returns with HTTP 200
type apiMessages struct {
	Note         string `json:"Note"`
	Information  string `json:"Information"`
	ErrorMessage string `json:"Error Message"`
}

// err maps an informational payload to a sentinel error
func (m apiMessages) err(symbol string) error {
	switch {
	case m.Note != "":
		return fmt.Errorf("%w: %s", ErrRateLimited, m.Note)
	case m.Information != "":
		return fmt.Errorf("%w: %s", ErrRateLimited, m.Information)
	case m.ErrorMessage != "":
		return fmt.Errorf("%w: %q: %s", ErrTickerNotFound, symbol, m.ErrorMessage)
	}
	return nil
}

// query performs one API call and decodes the JSON body into dest
func (c *Client) query(ctx context.Context, function, symbol string, extra url.Values, dest interface{}) error {
	params := url.Values{}
	params.Set("function", function)
	params.Set("symbol", symbol)
	params.Set("apikey", c.apiKey)
	for k, v := range extra {
		params[k] = v
	}

	fullURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	_, err := c.breaker.Execute(func() (interface{}, error) {
		if err := c.httpClient.GetJSON(ctx, fullURL, dest); err != nil {
			var statusErr *httputil.StatusError
			if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusTooManyRequests {
				return nil, fmt.Errorf("%w: %s", ErrRateLimited, function)
			}
			return nil, fmt.Errorf("%w: %s: %w", ErrUpstream, function, err)
		}
		return nil, nil
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s: %w", ErrUpstream, function, err)
	}
	return err
}
