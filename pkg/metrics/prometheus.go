package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder exposes the service's Prometheus metrics
// ⭐ SSOT: 메트릭 정의는 여기서만
type Recorder struct {
	registry *prometheus.Registry

	signalsTotal  *prometheus.CounterVec
	whalesTotal   *prometheus.CounterVec
	alertsTotal   *prometheus.CounterVec
	fetchErrors   *prometheus.CounterVec
	fetchLatency  prometheus.Histogram
	volumeRatio   *prometheus.GaugeVec
	cacheRequests *prometheus.CounterVec
}

// New creates a Recorder backed by its own registry
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		signalsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "whalewatch",
				Name:      "signals_total",
				Help:      "Volume signals classified, by status",
			},
			[]string{"status"},
		),
		whalesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "whalewatch",
				Name:      "whales_total",
				Help:      "Whale signals detected, by ticker",
			},
			[]string{"ticker"},
		),
		alertsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "whalewatch",
				Name:      "pattern_alerts_total",
				Help:      "Pattern alerts derived, by kind",
			},
			[]string{"kind"},
		),
		fetchErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "whalewatch",
				Subsystem: "marketdata",
				Name:      "errors_total",
				Help:      "Market data fetch failures, by reason",
			},
			[]string{"reason"},
		),
		fetchLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "whalewatch",
				Subsystem: "marketdata",
				Name:      "fetch_seconds",
				Help:      "Latency of snapshot fetches",
				Buckets:   prometheus.DefBuckets,
			},
		),
		volumeRatio: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "whalewatch",
				Name:      "volume_ratio",
				Help:      "Latest current/average volume ratio, by ticker",
			},
			[]string{"ticker"},
		),
		cacheRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "whalewatch",
				Name:      "snapshot_cache_requests_total",
				Help:      "Snapshot cache lookups, by result",
			},
			[]string{"result"},
		),
	}

	r.registry.MustRegister(
		r.signalsTotal,
		r.whalesTotal,
		r.alertsTotal,
		r.fetchErrors,
		r.fetchLatency,
		r.volumeRatio,
		r.cacheRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveSignal records a classification result by status
func (r *Recorder) ObserveSignal(status string) {
	r.signalsTotal.WithLabelValues(status).Inc()
}

// ObserveTicker records the latest ratio and whale count of a fetched ticker.
// Only tickers resolved by the market data source belong here.
func (r *Recorder) ObserveTicker(ticker string, ratio float64, whale bool) {
	r.volumeRatio.WithLabelValues(ticker).Set(ratio)
	if whale {
		r.whalesTotal.WithLabelValues(ticker).Inc()
	}
}

// ObserveAlert records a derived pattern alert
func (r *Recorder) ObserveAlert(kind string) {
	r.alertsTotal.WithLabelValues(kind).Inc()
}

// ObserveFetch records a snapshot fetch duration
func (r *Recorder) ObserveFetch(d time.Duration) {
	r.fetchLatency.Observe(d.Seconds())
}

// FetchError records a failed fetch
func (r *Recorder) FetchError(reason string) {
	r.fetchErrors.WithLabelValues(reason).Inc()
}

// CacheResult records a snapshot cache hit or miss
func (r *Recorder) CacheResult(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheRequests.WithLabelValues(result).Inc()
}
