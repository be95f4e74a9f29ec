package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/whalewatch/internal/api/handlers"
	"github.com/wonny/whalewatch/internal/api/stream"
	"github.com/wonny/whalewatch/internal/contracts"
	"github.com/wonny/whalewatch/internal/external/alphavantage"
	"github.com/wonny/whalewatch/internal/history"
	"github.com/wonny/whalewatch/internal/tracker"
	"github.com/wonny/whalewatch/internal/watchlist"
	"github.com/wonny/whalewatch/pkg/logger"
	"github.com/wonny/whalewatch/pkg/metrics"
	"github.com/wonny/whalewatch/pkg/redis"
)

type stubSource map[string]contracts.StockSnapshot

func (s stubSource) FetchSnapshot(_ context.Context, ticker string) (*contracts.StockSnapshot, error) {
	switch ticker {
	case "LIMIT":
		return nil, alphavantage.ErrRateLimited
	case "DOWN":
		return nil, fmt.Errorf("%w: connection refused", alphavantage.ErrUpstream)
	}
	snap, ok := s[ticker]
	if !ok {
		return nil, fmt.Errorf("%w: %s", alphavantage.ErrTickerNotFound, ticker)
	}
	return &snap, nil
}

type testEnv struct {
	router http.Handler
	hub    *stream.Hub
}

func newTestEnv() *testEnv {
	log := logger.Nop()
	rec := metrics.New()

	source := stubSource{
		"NVDA": {Ticker: "NVDA", CurrentVolume: 310, AverageVolume: 100, PriceChange: 5},
		"TSLA": {Ticker: "TSLA", CurrentVolume: 70, AverageVolume: 100, PriceChange: -1},
	}
	svc := tracker.NewService(source, redis.NewCache(redis.Disabled(), "test"), 0, rec, log).
		WithHistory(history.NewMemoryStore(10))
	hub := stream.NewHub(10, log)

	router := NewRouter(Routes{
		Signals:   handlers.NewSignalHandler(svc, hub, log),
		History:   handlers.NewHistoryHandler(svc, log),
		Watchlist: handlers.NewWatchlistHandler(watchlist.NewService(watchlist.NewMemoryStore(), log), log),
		Stream:    hub,
		Metrics:   rec.Handler(),
	}, log)

	return &testEnv{router: router, hub: hub}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(dest))
}

func TestHealth(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	decode(t, rec, &body)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "whalewatch", body["service"])
}

func TestGetSignal(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, http.MethodGet, "/api/signals/nvda", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var analysis contracts.Analysis
	decode(t, rec, &analysis)
	assert.Equal(t, "NVDA", analysis.Snapshot.Ticker)
	assert.Equal(t, contracts.StatusGreen, analysis.Signal.Status)
	assert.True(t, analysis.Signal.IsWhale)
	assert.Equal(t, 95, analysis.Signal.Confidence)
	assert.Contains(t, analysis.Signal.Message, "3.1x")
	assert.Len(t, analysis.Pattern.Timeframes, 3)

	// lookups feed the alert stream
	require.Len(t, env.hub.History(), 1)
	assert.Equal(t, "NVDA", env.hub.History()[0].Ticker)
}

func TestGetSignal_ErrorMapping(t *testing.T) {
	tests := []struct {
		path string
		want int
	}{
		{"/api/signals/ZZZZ", http.StatusNotFound},
		{"/api/signals/LIMIT", http.StatusTooManyRequests},
		{"/api/signals/DOWN", http.StatusBadGateway},
		{"/api/signals/WAY-TOO-LONG-TICKER", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			env := newTestEnv()
			rec := env.do(t, http.MethodGet, tt.path, "")
			assert.Equal(t, tt.want, rec.Code)

			var body map[string]interface{}
			decode(t, rec, &body)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestClassify(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, http.MethodPost, "/api/signals/classify",
		`{"ticker":"tsla","current_volume":70,"average_volume":100,"price_change":-1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var analysis contracts.Analysis
	decode(t, rec, &analysis)
	assert.Equal(t, contracts.StatusRed, analysis.Signal.Status)
	assert.Equal(t, 21, analysis.Signal.Confidence)
	assert.Equal(t, "TSLA", analysis.Snapshot.Ticker)
}

func TestClassify_Validation(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, http.MethodPost, "/api/signals/classify",
		`{"ticker":"NVDA","current_volume":10,"average_volume":0}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Error  string                     `json:"error"`
		Errors []handlers.ValidationError `json:"errors"`
	}
	decode(t, rec, &body)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "average_volume", body.Errors[0].Field)
	assert.Equal(t, "ERR_REQUIRED", body.Errors[0].Code)

	rec = env.do(t, http.MethodPost, "/api/signals/classify", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPattern(t *testing.T) {
	env := newTestEnv()

	t.Run("explicit status", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/patterns/aapl?status=yellow", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var p contracts.HistoricalPattern
		decode(t, rec, &p)
		assert.Equal(t, "AAPL", p.Ticker)
		assert.Equal(t, contracts.StatusYellow, p.Status)
		assert.Len(t, p.Timeframes, 3)
	})

	t.Run("classified status", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/patterns/TSLA", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var p contracts.HistoricalPattern
		decode(t, rec, &p)
		assert.Equal(t, contracts.StatusRed, p.Status)
	})

	t.Run("unknown status", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/patterns/AAPL?status=purple", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetAlerts(t *testing.T) {
	env := newTestEnv()

	t.Run("examples without ticker", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/alerts", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var alerts []contracts.PatternAlert
		decode(t, rec, &alerts)
		require.Len(t, alerts, 3)
		assert.Equal(t, "NVDA", alerts[0].Ticker)
	})

	t.Run("derived for ticker", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/alerts?ticker=tsla", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var alerts []contracts.PatternAlert
		decode(t, rec, &alerts)
		require.Len(t, alerts, 1)
		assert.Equal(t, contracts.AlertDeclining, alerts[0].Kind)
	})
}

func TestWatchlistEndpoints(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, http.MethodPost, "/api/watchlist", `{"ticker":"nvda"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/watchlist", `{"ticker":"NVDA"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/watchlist", `{"ticker":"aapl"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/watchlist", `{"ticker":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/watchlist", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Entries []watchlist.Entry `json:"entries"`
		Count   int               `json:"count"`
	}
	decode(t, rec, &list)
	assert.Equal(t, 2, list.Count)
	assert.Equal(t, "NVDA", list.Entries[0].Ticker)
	assert.Equal(t, "AAPL", list.Entries[1].Ticker)

	rec = env.do(t, http.MethodDelete, "/api/watchlist/nvda", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/watchlist/nvda", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv()
	env.do(t, http.MethodGet, "/api/signals/NVDA", "")

	rec := env.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `whalewatch_signals_total{status="green"} 1`)
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := recoveryMiddleware(logger.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetHistory(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, http.MethodGet, "/api/signals/NVDA/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var empty struct {
		Count int `json:"count"`
	}
	decode(t, rec, &empty)
	assert.Equal(t, 0, empty.Count)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/signals/NVDA", "").Code)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/signals/NVDA", "").Code)

	rec = env.do(t, http.MethodGet, "/api/signals/nvda/history?limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Records []history.Record `json:"records"`
		Count   int              `json:"count"`
	}
	decode(t, rec, &body)
	assert.Equal(t, 1, body.Count)
	require.Len(t, body.Records, 1)
	assert.Equal(t, "NVDA", body.Records[0].Ticker)
	assert.Equal(t, contracts.StatusGreen, body.Records[0].Status)
}

func TestGetHistory_BadRequests(t *testing.T) {
	env := newTestEnv()

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/signals/NVDA/history?limit=0", "").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/signals/NVDA/history?limit=abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/signals/NV%20DA/history", "").Code)
}

func TestGetHistory_Disabled(t *testing.T) {
	log := logger.Nop()
	svc := tracker.NewService(stubSource{}, redis.NewCache(redis.Disabled(), "test"), 0, metrics.New(), log)
	router := NewRouter(Routes{
		Signals:   handlers.NewSignalHandler(svc, nil, log),
		History:   handlers.NewHistoryHandler(svc, log),
		Watchlist: handlers.NewWatchlistHandler(watchlist.NewService(watchlist.NewMemoryStore(), log), log),
	}, log)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/signals/NVDA/history", nil))
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}
