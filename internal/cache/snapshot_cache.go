package cache

import (
	"sync"
	"time"

	"github.com/wonny/whalewatch/internal/contracts"
	"github.com/wonny/whalewatch/pkg/logger"
)

type entry struct {
	snapshot  contracts.StockSnapshot
	fetchedAt time.Time
}

// SnapshotCache is an in-process snapshot cache in front of Redis.
// Expired entries are never served; CleanStale reclaims them.
// ⭐ SSOT: 프로세스 내 스냅샷 캐싱은 이 구조체에서만
type SnapshotCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
	logger  *logger.Logger
}

// Stats summarizes cache contents
type Stats struct {
	TotalCount int `json:"total_count"`
	StaleCount int `json:"stale_count"`
}

// NewSnapshotCache creates a new snapshot cache
func NewSnapshotCache(ttl time.Duration, log *logger.Logger) *SnapshotCache {
	return &SnapshotCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
		logger:  log,
	}
}

// Put stores a snapshot under its ticker
func (c *SnapshotCache) Put(snapshot contracts.StockSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[snapshot.Ticker] = entry{snapshot: snapshot, fetchedAt: c.now()}
}

// Get returns a fresh snapshot for ticker
func (c *SnapshotCache) Get(ticker string) (*contracts.StockSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[ticker]
	if !exists || c.expired(e) {
		return nil, false
	}

	snapshot := e.snapshot
	return &snapshot, true
}

// Delete removes a ticker from the cache
func (c *SnapshotCache) Delete(ticker string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, ticker)
}

// Len returns the number of entries, stale ones included
func (c *SnapshotCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// CleanStale removes expired snapshots and returns how many were dropped
func (c *SnapshotCache) CleanStale() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for ticker, e := range c.entries {
		if c.expired(e) {
			delete(c.entries, ticker)
			count++
		}
	}

	if count > 0 {
		c.logger.WithField("count", count).Debug("Cleaned stale snapshots from cache")
	}

	return count
}

// Stats returns cache statistics
func (c *SnapshotCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := Stats{TotalCount: len(c.entries)}
	for _, e := range c.entries {
		if c.expired(e) {
			stats.StaleCount++
		}
	}
	return stats
}

func (c *SnapshotCache) expired(e entry) bool {
	return c.now().Sub(e.fetchedAt) > c.ttl
}
