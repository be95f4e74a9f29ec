package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/wonny/whalewatch/internal/cache"
	"github.com/wonny/whalewatch/internal/external/alphavantage"
	"github.com/wonny/whalewatch/internal/history"
	"github.com/wonny/whalewatch/internal/tracker"
	"github.com/wonny/whalewatch/internal/watchlist"
	"github.com/wonny/whalewatch/pkg/config"
	"github.com/wonny/whalewatch/pkg/database"
	"github.com/wonny/whalewatch/pkg/httputil"
	"github.com/wonny/whalewatch/pkg/logger"
	"github.com/wonny/whalewatch/pkg/metrics"
	"github.com/wonny/whalewatch/pkg/redis"
)

// keyPrefix namespaces every Redis key
const keyPrefix = "whalewatch"

// runtime holds the services shared by commands
// ⭐ SSOT: 의존성 조립은 여기서만
type runtime struct {
	cfg       *config.Config
	log       *logger.Logger
	redis     *redis.Client
	db        *database.DB // nil without DATABASE_URL
	metrics   *metrics.Recorder
	snapshots *cache.SnapshotCache
	tracker   *tracker.Service
	watchlist *watchlist.Service
}

// loadConfig reads the environment and applies global flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	return cfg, nil
}

// newRuntime wires redis, postgres, the market-data client and the services.
// Redis is optional; a failed connection degrades to no cache.
func newRuntime(ctx context.Context, cfg *config.Config, logOut io.Writer) (*runtime, error) {
	log := logger.NewWithWriter(cfg, logOut)

	rdb, err := redis.New(ctx, cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, continuing without cache")
		rdb = redis.Disabled()
	}

	rt := &runtime{
		cfg:     cfg,
		log:     log,
		redis:   rdb,
		metrics: metrics.New(),
	}

	if cfg.HasDatabase() {
		db, err := database.New(ctx, cfg)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		rt.db = db
		log.Info("Connected to database")
	} else {
		log.Info("DATABASE_URL not set, watchlist and signal history are in-memory")
	}

	watchStore, historyStore, err := rt.stores(ctx)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.watchlist = watchlist.NewService(watchStore, log)

	httpClient := httputil.New(log, cfg.AlphaVantage.Timeout).
		WithLocalRateLimit(cfg.AlphaVantage.RequestsPerMinute).
		WithRateLimiter(
			redis.NewRateLimiter(rdb, keyPrefix),
			redis.AlphaVantageRateLimit(cfg.AlphaVantage.RequestsPerMinute),
		)

	ttl := cfg.QuoteCacheTTL
	if ttl <= 0 {
		ttl = redis.TTLShort
	}
	rt.snapshots = cache.NewSnapshotCache(ttl, log)

	source := alphavantage.NewClient(httpClient, log, cfg.AlphaVantage)
	rt.tracker = tracker.NewService(source, redis.NewCache(rdb, keyPrefix).WithLogger(log), ttl, rt.metrics, log).
		WithLocalCache(rt.snapshots).
		WithHistory(historyStore)

	log.WithFields(map[string]interface{}{
		"redis":    rdb.Enabled(),
		"postgres": rt.db != nil,
	}).Debug("Runtime initialized")

	return rt, nil
}

// stores picks Postgres when connected, memory otherwise
func (rt *runtime) stores(ctx context.Context) (watchlist.Store, history.Store, error) {
	if rt.db == nil {
		return watchlist.NewMemoryStore(), history.NewMemoryStore(0), nil
	}

	watchStore := watchlist.NewPostgresStore(rt.db.Pool)
	if err := watchStore.EnsureSchema(ctx); err != nil {
		return nil, nil, fmt.Errorf("ensure watchlist schema: %w", err)
	}

	historyStore := history.NewPostgresStore(rt.db.Pool)
	if err := historyStore.EnsureSchema(ctx); err != nil {
		return nil, nil, fmt.Errorf("ensure signal history schema: %w", err)
	}

	return watchStore, historyStore, nil
}

// Close releases connections
func (rt *runtime) Close() {
	if rt.db != nil {
		rt.db.Close()
	}
	if err := rt.redis.Close(); err != nil {
		rt.log.WithError(err).Warn("Failed to close redis")
	}
}
