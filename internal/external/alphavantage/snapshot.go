package alphavantage

import (
	"context"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/whalewatch/internal/contracts"
)

// HistorySessions is how many prior sessions a snapshot carries
const HistorySessions = 5

// FetchSnapshot fetches the quote and the daily series concurrently and
// builds a classifier-ready snapshot. A missing daily series is not fatal:
// the average falls back to the current volume.
func (c *Client) FetchSnapshot(ctx context.Context, ticker string) (*contracts.StockSnapshot, error) {
	symbol := strings.ToUpper(ticker)

	var (
		quote    *Quote
		bars     []contracts.DayBar
		dailyErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		q, err := c.FetchQuote(gctx, symbol)
		if err != nil {
			return err
		}
		quote = q
		return nil
	})
	g.Go(func() error {
		b, err := c.FetchDaily(gctx, symbol)
		if err != nil {
			dailyErr = err
			return nil
		}
		bars = b
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if dailyErr != nil {
		c.logger.WithTicker(symbol).WithError(dailyErr).Warn("Daily series unavailable, using current volume as average")
	}

	snapshot := BuildSnapshot(symbol, quote, bars, c.lookbackDays)

	c.logger.WithFields(map[string]interface{}{
		"ticker":         symbol,
		"current_volume": snapshot.CurrentVolume,
		"average_volume": snapshot.AverageVolume,
		"price_change":   snapshot.PriceChange,
		"sessions":       len(bars),
	}).Debug("Built stock snapshot")

	return snapshot, nil
}

// BuildSnapshot combines a quote with daily bars (newest first).
// The average covers up to lookback sessions before the quote's trading day;
// the current session is excluded. With no prior sessions the average equals
// the current volume.
func BuildSnapshot(symbol string, quote *Quote, bars []contracts.DayBar, lookback int) *contracts.StockSnapshot {
	prior := priorSessions(bars, quote.LatestTradingDay)

	snapshot := &contracts.StockSnapshot{
		Ticker:             symbol,
		CurrentVolume:      quote.Volume,
		AverageVolume:      averageVolume(prior, lookback),
		PriceChange:        quote.Change,
		CurrentPrice:       quote.Price,
		PriceChangePercent: quote.ChangePercent,
		History:            recentHistory(prior, HistorySessions),
	}

	if snapshot.AverageVolume <= 0 {
		snapshot.AverageVolume = quote.Volume
	}

	return snapshot
}

// priorSessions drops bars on or after the current trading day.
// Without a trading day the newest bar is treated as the current session.
func priorSessions(bars []contracts.DayBar, tradingDay string) []contracts.DayBar {
	if tradingDay == "" {
		if len(bars) == 0 {
			return nil
		}
		return bars[1:]
	}

	for i, bar := range bars {
		if bar.Date < tradingDay {
			return bars[i:]
		}
	}
	return nil
}

func averageVolume(prior []contracts.DayBar, lookback int) int64 {
	if len(prior) > lookback {
		prior = prior[:lookback]
	}
	if len(prior) == 0 {
		return 0
	}

	var total int64
	for _, bar := range prior {
		total += bar.Volume
	}
	return int64(math.Round(float64(total) / float64(len(prior))))
}

// recentHistory returns the n most recent prior sessions in chronological order
func recentHistory(prior []contracts.DayBar, n int) []contracts.DayBar {
	if len(prior) > n {
		prior = prior[:n]
	}

	history := make([]contracts.DayBar, len(prior))
	for i, bar := range prior {
		history[len(prior)-1-i] = bar
	}
	return history
}
