package history

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wonny/whalewatch/internal/contracts"
)

// DefaultLimit is used when a caller asks for a non-positive number of records
const DefaultLimit = 20

// Record is one persisted classification
type Record struct {
	Ticker         string                 `json:"ticker"`
	Status         contracts.SignalStatus `json:"status"`
	Confidence     int                    `json:"confidence"`
	VolumeRatio    float64                `json:"volume_ratio"`
	PriceConfirmed bool                   `json:"price_confirmed"`
	IsWhale        bool                   `json:"is_whale"`
	Rule           string                 `json:"rule"`
	CurrentVolume  int64                  `json:"current_volume"`
	AverageVolume  int64                  `json:"average_volume"`
	PriceChange    float64                `json:"price_change"`
	Alerts         []string               `json:"alerts"` // alert kinds, in order
	AnalyzedAt     time.Time              `json:"analyzed_at"`
}

// FromAnalysis flattens an analysis into a Record
func FromAnalysis(a *contracts.Analysis) Record {
	kinds := make([]string, len(a.Alerts))
	for i, alert := range a.Alerts {
		kinds[i] = string(alert.Kind)
	}

	return Record{
		Ticker:         a.Snapshot.Ticker,
		Status:         a.Signal.Status,
		Confidence:     a.Signal.Confidence,
		VolumeRatio:    a.Signal.VolumeRatio,
		PriceConfirmed: a.Signal.PriceConfirmed,
		IsWhale:        a.Signal.IsWhale,
		Rule:           a.Signal.Rule,
		CurrentVolume:  a.Snapshot.CurrentVolume,
		AverageVolume:  a.Snapshot.AverageVolume,
		PriceChange:    a.Snapshot.PriceChange,
		Alerts:         kinds,
		AnalyzedAt:     a.AnalyzedAt,
	}
}

// Store persists classification history
type Store interface {
	Save(ctx context.Context, records ...Record) error
	// Recent returns up to limit records for ticker, newest first
	Recent(ctx context.Context, ticker string, limit int) ([]Record, error)
}

// MemoryStore keeps the latest records per ticker in process memory
type MemoryStore struct {
	mu        sync.RWMutex
	byTicker  map[string][]Record
	perTicker int
}

// NewMemoryStore keeps at most perTicker records for each ticker
func NewMemoryStore(perTicker int) *MemoryStore {
	if perTicker <= 0 {
		perTicker = 200
	}
	return &MemoryStore{
		byTicker:  make(map[string][]Record),
		perTicker: perTicker,
	}
}

func (s *MemoryStore) Save(_ context.Context, records ...Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		list := append(s.byTicker[r.Ticker], r)
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].AnalyzedAt.Before(list[j].AnalyzedAt)
		})
		if len(list) > s.perTicker {
			list = list[len(list)-s.perTicker:]
		}
		s.byTicker[r.Ticker] = list
	}
	return nil
}

func (s *MemoryStore) Recent(_ context.Context, ticker string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.byTicker[ticker]
	if limit > len(list) {
		limit = len(list)
	}

	out := make([]Record, 0, limit)
	for i := len(list) - 1; i >= len(list)-limit; i-- {
		out = append(out, list[i])
	}
	return out, nil
}
