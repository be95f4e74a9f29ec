package history

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/whalewatch/internal/contracts"
	"github.com/wonny/whalewatch/pkg/config"
	"github.com/wonny/whalewatch/pkg/database"
)

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.New(ctx, &config.Config{
		Database: config.DatabaseConfig{URL: os.Getenv("DATABASE_URL"), MaxConns: 2, MinConns: 1, MaxConnLifetime: time.Hour, MaxConnIdleTime: time.Minute},
	})
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgresStore(db.Pool)
	require.NoError(t, store.EnsureSchema(ctx))

	const ticker = "ZZHIST"
	cleanup := func() {
		_, _ = db.Pool.Exec(context.Background(), "DELETE FROM signals.history WHERE ticker = $1", ticker)
	}
	cleanup()
	t.Cleanup(cleanup)

	now := time.Now().UTC().Truncate(time.Microsecond)
	older := Record{
		Ticker: ticker, Status: contracts.StatusYellow, Confidence: 55, VolumeRatio: 1.3,
		Rule: "caution", CurrentVolume: 130, AverageVolume: 100, PriceChange: -0.4,
		Alerts: []string{"divergence"}, AnalyzedAt: now.Add(-time.Minute),
	}
	newer := Record{
		Ticker: ticker, Status: contracts.StatusGreen, Confidence: 95, VolumeRatio: 3.2,
		PriceConfirmed: true, IsWhale: true, Rule: "whale", CurrentVolume: 320, AverageVolume: 100,
		PriceChange: 2.5, Alerts: []string{"whale", "surge"}, AnalyzedAt: now,
	}
	require.NoError(t, store.Save(ctx, older, newer))
	require.NoError(t, store.Save(ctx))

	got, err := store.Recent(ctx, ticker, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, contracts.StatusGreen, got[0].Status)
	assert.Equal(t, []string{"whale", "surge"}, got[0].Alerts)
	assert.True(t, got[0].AnalyzedAt.Equal(now))
	assert.Equal(t, contracts.StatusYellow, got[1].Status)
}
