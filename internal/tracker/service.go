package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/whalewatch/internal/cache"
	"github.com/wonny/whalewatch/internal/contracts"
	"github.com/wonny/whalewatch/internal/external/alphavantage"
	"github.com/wonny/whalewatch/internal/history"
	"github.com/wonny/whalewatch/internal/pattern"
	"github.com/wonny/whalewatch/internal/volume"
	"github.com/wonny/whalewatch/pkg/logger"
	"github.com/wonny/whalewatch/pkg/metrics"
	"github.com/wonny/whalewatch/pkg/redis"
)

// SnapshotSource supplies classifier-ready snapshots
type SnapshotSource interface {
	FetchSnapshot(ctx context.Context, ticker string) (*contracts.StockSnapshot, error)
}

// Service runs the lookup pipeline: snapshot -> classify -> synthesize -> alerts
// ⭐ SSOT: 티커 분석 흐름은 여기서만
type Service struct {
	source   SnapshotSource
	cache    *redis.Cache
	cacheTTL time.Duration
	local    *cache.SnapshotCache // optional, checked before Redis
	history  history.Store        // optional
	metrics  *metrics.Recorder
	logger   *logger.Logger
}

// ErrHistoryDisabled is returned by History when no store is configured
var ErrHistoryDisabled = errors.New("signal history is not enabled")

// NewService creates a tracker service. A non-positive ttl uses redis.TTLShort.
func NewService(source SnapshotSource, cache *redis.Cache, ttl time.Duration, rec *metrics.Recorder, log *logger.Logger) *Service {
	if ttl <= 0 {
		ttl = redis.TTLShort
	}
	return &Service{
		source:   source,
		cache:    cache,
		cacheTTL: ttl,
		metrics:  rec,
		logger:   log,
	}
}

// WithLocalCache puts an in-process cache in front of Redis
func (s *Service) WithLocalCache(c *cache.SnapshotCache) *Service {
	s.local = c
	return s
}

// WithHistory records every fetched analysis in store
func (s *Service) WithHistory(store history.Store) *Service {
	s.history = store
	return s
}

// Snapshot returns the (possibly cached) snapshot for a ticker
func (s *Service) Snapshot(ctx context.Context, rawTicker string) (*contracts.StockSnapshot, error) {
	ticker, err := contracts.NormalizeTicker(rawTicker)
	if err != nil {
		return nil, err
	}

	if s.local != nil {
		if snapshot, ok := s.local.Get(ticker); ok {
			s.metrics.CacheResult(true)
			return snapshot, nil
		}
	}

	var snapshot contracts.StockSnapshot
	fetched := false

	err = s.cache.GetOrSet(ctx, redis.SnapshotKey(ticker), &snapshot, s.cacheTTL, func() (interface{}, error) {
		fetched = true
		return s.fetch(ctx, ticker)
	})
	if err != nil {
		return nil, err
	}

	if s.local != nil {
		s.local.Put(snapshot)
	}
	if s.cache.Enabled() || s.local != nil {
		s.metrics.CacheResult(!fetched)
	}

	return &snapshot, nil
}

func (s *Service) fetch(ctx context.Context, ticker string) (*contracts.StockSnapshot, error) {
	start := time.Now()
	snapshot, err := s.source.FetchSnapshot(ctx, ticker)
	s.metrics.ObserveFetch(time.Since(start))

	if err != nil {
		s.metrics.FetchError(errorReason(err))
		s.logger.WithTicker(ticker).WithError(err).Warn("Snapshot fetch failed")
		return nil, fmt.Errorf("fetch %s: %w", ticker, err)
	}

	return snapshot, nil
}

// Analyze fetches and evaluates a ticker. The result is recorded in the
// history store when one is configured; a failed write is only logged.
func (s *Service) Analyze(ctx context.Context, rawTicker string) (*contracts.Analysis, error) {
	snapshot, err := s.Snapshot(ctx, rawTicker)
	if err != nil {
		return nil, err
	}

	analysis, err := s.Evaluate(*snapshot)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveTicker(snapshot.Ticker, analysis.Signal.VolumeRatio, analysis.Signal.IsWhale)

	if s.history != nil {
		if err := s.history.Save(ctx, history.FromAnalysis(analysis)); err != nil {
			s.logger.WithTicker(snapshot.Ticker).WithError(err).Warn("Failed to record signal history")
		}
	}

	return analysis, nil
}

// History returns the latest recorded analyses for a ticker, newest first
func (s *Service) History(ctx context.Context, rawTicker string, limit int) ([]history.Record, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}

	ticker, err := contracts.NormalizeTicker(rawTicker)
	if err != nil {
		return nil, err
	}

	return s.history.Recent(ctx, ticker, limit)
}

// Evaluate runs the pure pipeline over a snapshot without fetching.
// Only status and alert kind metrics are recorded; the ticker is caller-supplied.
func (s *Service) Evaluate(snapshot contracts.StockSnapshot) (*contracts.Analysis, error) {
	signal, err := volume.Classify(snapshot)
	if err != nil {
		s.metrics.FetchError(errorReason(err))
		return nil, err
	}

	historical, err := pattern.Synthesize(signal.Status, snapshot.Ticker)
	if err != nil {
		return nil, err
	}

	alerts := pattern.DeriveAlerts(&signal, snapshot.Ticker)

	s.metrics.ObserveSignal(string(signal.Status))
	for _, a := range alerts {
		s.metrics.ObserveAlert(string(a.Kind))
	}

	s.logger.WithFields(map[string]interface{}{
		"ticker":       snapshot.Ticker,
		"status":       signal.Status,
		"confidence":   signal.Confidence,
		"volume_ratio": signal.VolumeRatio,
		"whale":        signal.IsWhale,
		"rule":         signal.Rule,
		"alerts":       len(alerts),
	}).Info("Volume signal classified")

	return &contracts.Analysis{
		Snapshot:   snapshot,
		Signal:     signal,
		Pattern:    historical,
		Alerts:     alerts,
		AnalyzedAt: time.Now().UTC(),
	}, nil
}

// errorReason is the metric label for a failure
func errorReason(err error) string {
	switch {
	case errors.Is(err, alphavantage.ErrTickerNotFound):
		return "not_found"
	case errors.Is(err, alphavantage.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, contracts.ErrInvalidSnapshot):
		return "invalid_snapshot"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "upstream"
	}
}
