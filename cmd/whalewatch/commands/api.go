package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/whalewatch/internal/api"
	"github.com/wonny/whalewatch/internal/api/handlers"
	"github.com/wonny/whalewatch/internal/api/stream"
	"github.com/wonny/whalewatch/internal/scheduler"
	"github.com/wonny/whalewatch/internal/scheduler/jobs"
)

// streamHistory is how many recent events a new alert-stream client receives
const streamHistory = 50

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Start the REST API server.

This command:
- serves signal, pattern, alert and watchlist endpoints
- streams fresh alerts over WebSocket
- evicts expired snapshots from the in-process cache every 5 minutes
- runs the periodic watchlist scan when SCAN_ENABLED=true

Endpoints:
  GET    /health                        - Health check
  GET    /metrics                       - Prometheus metrics (METRICS_ENABLED)
  GET    /ws/alerts[?ticker=]           - Alert stream
  GET    /api/signals/{ticker}          - Fetch and classify
  GET    /api/signals/{ticker}/history  - Recorded signals
  POST   /api/signals/classify          - Classify a supplied snapshot
  GET    /api/patterns/{ticker}         - Historical pattern stats
  GET    /api/alerts[?ticker=]          - Pattern alerts
  GET    /api/watchlist                 - List watchlist
  POST   /api/watchlist                 - Add ticker
  DELETE /api/watchlist/{ticker}        - Remove ticker

Example:
  go run ./cmd/whalewatch api
  go run ./cmd/whalewatch api --port 9090`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default PORT or 8080)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== whalewatch API Server ===")

	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Wire services
	rt, err := newRuntime(ctx, cfg, os.Stdout)
	if err != nil {
		return err
	}
	defer rt.Close()

	log := rt.log
	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Alert stream
	hub := stream.NewHub(streamHistory, log)

	// 4. Background jobs
	sched := scheduler.New(log)
	if err := sched.AddJob(jobs.NewCacheCleanupJob(rt.snapshots, log)); err != nil {
		return fmt.Errorf("schedule cache cleanup: %w", err)
	}
	if cfg.Scan.Enabled {
		scan := jobs.NewWatchlistScanJob(rt.watchlist, rt.tracker, hub, cfg.Scan.Schedule, log)
		if err := sched.AddJob(scan); err != nil {
			return fmt.Errorf("schedule watchlist scan: %w", err)
		}
	}
	sched.Start()
	defer sched.Stop()

	// 5. Router
	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		metricsHandler = rt.metrics.Handler()
	}

	router := api.NewRouter(api.Routes{
		Signals:   handlers.NewSignalHandler(rt.tracker, hub, log),
		History:   handlers.NewHistoryHandler(rt.tracker, log),
		Watchlist: handlers.NewWatchlistHandler(rt.watchlist, log),
		Stream:    hub,
		Metrics:   metricsHandler,
	}, log)

	// 6. Serve until interrupted
	server := api.New(cfg, log, router)

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	if cfg.Scan.Enabled {
		PrintInfo(fmt.Sprintf("Watchlist scan scheduled: %s", cfg.Scan.Schedule))
	}
	fmt.Println("\nPress Ctrl+C to stop")

	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
