package watchlist

import (
	"context"
	"sync"
	"time"
)

// Entry is one watched ticker
type Entry struct {
	Ticker  string    `json:"ticker"`
	AddedAt time.Time `json:"added_at"`
}

// Store persists the watchlist in insertion order without duplicates.
// Tickers passed to a Store are already normalized.
type Store interface {
	List(ctx context.Context) ([]Entry, error)
	Add(ctx context.Context, ticker string) (bool, error)    // false if already present
	Remove(ctx context.Context, ticker string) (bool, error) // false if absent
}

// MemoryStore keeps the watchlist in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (s *MemoryStore) List(_ context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

func (s *MemoryStore) Add(_ context.Context, ticker string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(ticker) >= 0 {
		return false, nil
	}
	s.entries = append(s.entries, Entry{Ticker: ticker, AddedAt: s.now().UTC()})
	return true, nil
}

func (s *MemoryStore) Remove(_ context.Context, ticker string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(ticker)
	if i < 0 {
		return false, nil
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	return true, nil
}

// indexOf must be called with mu held
func (s *MemoryStore) indexOf(ticker string) int {
	for i, e := range s.entries {
		if e.Ticker == ticker {
			return i
		}
	}
	return -1
}
