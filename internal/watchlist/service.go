package watchlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/whalewatch/internal/contracts"
	"github.com/wonny/whalewatch/pkg/logger"
)

// ErrNotFound is returned when removing a ticker that is not watched
var ErrNotFound = errors.New("ticker not in watchlist")

// Service validates tickers before they reach the store
type Service struct {
	store  Store
	logger *logger.Logger
}

// NewService creates a watchlist service
func NewService(store Store, log *logger.Logger) *Service {
	return &Service{store: store, logger: log}
}

// List returns the watchlist in insertion order
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	return s.store.List(ctx)
}

// Tickers returns only the symbols, in insertion order
func (s *Service) Tickers(ctx context.Context) ([]string, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	tickers := make([]string, len(entries))
	for i, e := range entries {
		tickers[i] = e.Ticker
	}
	return tickers, nil
}

// Add watches a ticker. Adding a watched ticker is a no-op that returns false.
func (s *Service) Add(ctx context.Context, raw string) (string, bool, error) {
	ticker, err := contracts.NormalizeTicker(raw)
	if err != nil {
		return "", false, err
	}

	added, err := s.store.Add(ctx, ticker)
	if err != nil {
		return "", false, err
	}

	if added {
		s.logger.WithTicker(ticker).Info("Added to watchlist")
	}
	return ticker, added, nil
}

// Remove stops watching a ticker
func (s *Service) Remove(ctx context.Context, raw string) (string, error) {
	ticker, err := contracts.NormalizeTicker(raw)
	if err != nil {
		return "", err
	}

	removed, err := s.store.Remove(ctx, ticker)
	if err != nil {
		return "", err
	}
	if !removed {
		return "", fmt.Errorf("%w: %s", ErrNotFound, ticker)
	}

	s.logger.WithTicker(ticker).Info("Removed from watchlist")
	return ticker, nil
}

// Contains reports whether a ticker is watched
func (s *Service) Contains(ctx context.Context, raw string) (bool, error) {
	ticker, err := contracts.NormalizeTicker(raw)
	if err != nil {
		return false, err
	}

	entries, err := s.store.List(ctx)
	if err != nil {
		return false, err
	}

	for _, e := range entries {
		if e.Ticker == ticker {
			return true, nil
		}
	}
	return false, nil
}
