package watchlist

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/whalewatch/internal/contracts"
	"github.com/wonny/whalewatch/pkg/logger"
)

func newTestService() *Service {
	return NewService(NewMemoryStore(), logger.Nop())
}

func TestService_AddKeepsOrderAndUniqueness(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	for _, raw := range []string{"nvda", "AAPL", " tsla "} {
		_, added, err := svc.Add(ctx, raw)
		require.NoError(t, err)
		assert.True(t, added)
	}

	ticker, added, err := svc.Add(ctx, "Nvda")
	require.NoError(t, err)
	assert.Equal(t, "NVDA", ticker)
	assert.False(t, added)

	tickers, err := svc.Tickers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"NVDA", "AAPL", "TSLA"}, tickers)
}

func TestService_Remove(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	_, _, err := svc.Add(ctx, "NVDA")
	require.NoError(t, err)
	_, _, err = svc.Add(ctx, "AAPL")
	require.NoError(t, err)

	ticker, err := svc.Remove(ctx, "nvda")
	require.NoError(t, err)
	assert.Equal(t, "NVDA", ticker)

	_, err = svc.Remove(ctx, "NVDA")
	assert.ErrorIs(t, err, ErrNotFound)

	entries, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "AAPL", entries[0].Ticker)
	assert.False(t, entries[0].AddedAt.IsZero())
}

func TestService_Contains(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	_, _, err := svc.Add(ctx, "BRK.B")
	require.NoError(t, err)

	ok, err := svc.Contains(ctx, "brk.b")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Contains(ctx, "MSFT")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_InvalidTicker(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	_, _, err := svc.Add(ctx, "not a ticker")
	assert.ErrorIs(t, err, contracts.ErrInvalidTicker)

	_, err = svc.Remove(ctx, "")
	assert.ErrorIs(t, err, contracts.ErrInvalidTicker)

	_, err = svc.Contains(ctx, "$$$")
	assert.ErrorIs(t, err, contracts.ErrInvalidTicker)
}

func TestMemoryStore_ConcurrentAdd(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Add(ctx, "NVDA")
		}()
	}
	wg.Wait()

	entries, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestMemoryStore_ListReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_, _ = store.Add(ctx, "NVDA")

	entries, _ := store.List(ctx)
	entries[0].Ticker = "CHANGED"

	again, _ := store.List(ctx)
	assert.Equal(t, "NVDA", again[0].Ticker)
}
