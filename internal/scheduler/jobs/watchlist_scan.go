package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/whalewatch/internal/contracts"
	"github.com/wonny/whalewatch/internal/external/alphavantage"
	"github.com/wonny/whalewatch/pkg/logger"
)

// WatchlistScanJobName is the scheduler key of the scan job
const WatchlistScanJobName = "watchlist_scan"

// TickerLister returns the tickers to scan
type TickerLister interface {
	Tickers(ctx context.Context) ([]string, error)
}

// Analyzer fetches and classifies one ticker
type Analyzer interface {
	Analyze(ctx context.Context, ticker string) (*contracts.Analysis, error)
}

// Publisher receives each fresh result (the alert stream)
type Publisher interface {
	Publish(ticker string, signal *contracts.VolumeSignal, alerts []contracts.PatternAlert)
}

// ScanReport summarizes one pass over the watchlist
type ScanReport struct {
	StartedAt time.Time             `json:"started_at"`
	Duration  time.Duration         `json:"duration"`
	Analyses  []*contracts.Analysis `json:"analyses"`
	Failures  map[string]string     `json:"failures,omitempty"` // ticker -> error
	Skipped   []string              `json:"skipped,omitempty"`  // not reached after a rate limit
}

// Whales returns the tickers whose signal was a whale
func (r ScanReport) Whales() []string {
	whales := make([]string, 0)
	for _, a := range r.Analyses {
		if a.Signal.IsWhale {
			whales = append(whales, a.Snapshot.Ticker)
		}
	}
	return whales
}

// WatchlistScanJob classifies every watchlist ticker on a schedule
// ⭐ SSOT: 관심종목 주기 스캔은 이 Job에서만
type WatchlistScanJob struct {
	watchlist TickerLister
	analyzer  Analyzer
	publisher Publisher
	schedule  string
	logger    *logger.Logger

	mu   sync.RWMutex
	last *ScanReport
}

// NewWatchlistScanJob creates a new scan job. publisher may be nil.
func NewWatchlistScanJob(watchlist TickerLister, analyzer Analyzer, publisher Publisher, schedule string, log *logger.Logger) *WatchlistScanJob {
	return &WatchlistScanJob{
		watchlist: watchlist,
		analyzer:  analyzer,
		publisher: publisher,
		schedule:  schedule,
		logger:    log,
	}
}

// Name returns the job name
func (j *WatchlistScanJob) Name() string {
	return WatchlistScanJobName
}

// Schedule returns the cron schedule (with seconds)
func (j *WatchlistScanJob) Schedule() string {
	return j.schedule
}

// LastReport returns the report of the most recent run
func (j *WatchlistScanJob) LastReport() (ScanReport, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.last == nil {
		return ScanReport{}, false
	}
	return *j.last, true
}

// Run scans the watchlist. Per-ticker failures are logged and skipped;
// the run fails only when no ticker could be analyzed.
func (j *WatchlistScanJob) Run(ctx context.Context) error {
	tickers, err := j.watchlist.Tickers(ctx)
	if err != nil {
		return fmt.Errorf("list watchlist: %w", err)
	}

	if len(tickers) == 0 {
		j.logger.Debug("Watchlist empty, nothing to scan")
		return nil
	}

	j.logger.WithField("tickers", len(tickers)).Info("Starting watchlist scan")

	report := ScanReport{
		StartedAt: time.Now().UTC(),
		Analyses:  make([]*contracts.Analysis, 0, len(tickers)),
		Failures:  make(map[string]string),
	}

	for i, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			report.Skipped = append(report.Skipped, tickers[i:]...)
			break
		}

		analysis, err := j.analyzer.Analyze(ctx, ticker)
		if err != nil {
			report.Failures[ticker] = err.Error()
			j.logger.WithTicker(ticker).WithError(err).Warn("Scan failed for ticker")

			if errors.Is(err, alphavantage.ErrRateLimited) {
				report.Skipped = append(report.Skipped, tickers[i+1:]...)
				break
			}
			continue
		}

		report.Analyses = append(report.Analyses, analysis)
		j.notify(analysis)
	}

	report.Duration = time.Since(report.StartedAt)
	j.store(report)

	j.logger.WithFields(map[string]interface{}{
		"analyzed": len(report.Analyses),
		"failed":   len(report.Failures),
		"skipped":  len(report.Skipped),
		"whales":   len(report.Whales()),
		"duration": report.Duration.String(),
	}).Info("Watchlist scan completed")

	if len(report.Analyses) == 0 {
		return fmt.Errorf("watchlist scan: all %d tickers failed", len(tickers))
	}

	return nil
}

// notify logs actionable alerts and forwards the result to the stream
func (j *WatchlistScanJob) notify(analysis *contracts.Analysis) {
	for _, alert := range analysis.Alerts {
		if alert.Kind != contracts.AlertWhale && alert.Kind != contracts.AlertDivergence {
			continue
		}
		j.logger.WithTicker(analysis.Snapshot.Ticker).WithFields(map[string]interface{}{
			"kind":         alert.Kind,
			"volume_ratio": analysis.Signal.VolumeRatio,
			"status":       analysis.Signal.Status,
		}).Warn(alert.Title)
	}

	if j.publisher != nil {
		j.publisher.Publish(analysis.Snapshot.Ticker, &analysis.Signal, analysis.Alerts)
	}
}

func (j *WatchlistScanJob) store(report ScanReport) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.last = &report
}
