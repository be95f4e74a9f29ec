package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveSignal(t *testing.T) {
	r := New()

	r.ObserveSignal("green")
	r.ObserveSignal("red")
	r.ObserveSignal("green")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.signalsTotal.WithLabelValues("green")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.signalsTotal.WithLabelValues("red")))
	assert.Equal(t, 0, testutil.CollectAndCount(r.volumeRatio))
	assert.Equal(t, 0, testutil.CollectAndCount(r.whalesTotal))
}

func TestObserveTicker(t *testing.T) {
	r := New()

	r.ObserveTicker("NVDA", 3.1, true)
	r.ObserveTicker("AAPL", 0.7, false)
	r.ObserveTicker("NVDA", 3.4, true)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.whalesTotal.WithLabelValues("NVDA")))
	assert.Equal(t, 3.4, testutil.ToFloat64(r.volumeRatio.WithLabelValues("NVDA")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.volumeRatio))
	assert.Equal(t, 1, testutil.CollectAndCount(r.whalesTotal))
}

func TestCountersAndHistogram(t *testing.T) {
	r := New()

	r.ObserveAlert("divergence")
	r.FetchError("rate_limited")
	r.CacheResult(true)
	r.CacheResult(false)
	r.CacheResult(false)
	r.ObserveFetch(120 * time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.alertsTotal.WithLabelValues("divergence")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.fetchErrors.WithLabelValues("rate_limited")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.cacheRequests.WithLabelValues("miss")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.fetchLatency))
}

func TestHandler(t *testing.T) {
	r := New()
	r.ObserveSignal("yellow")

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `whalewatch_signals_total{status="yellow"} 1`)
}
