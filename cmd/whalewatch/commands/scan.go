package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/whalewatch/internal/scheduler"
	"github.com/wonny/whalewatch/internal/scheduler/jobs"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan [TICKER...]",
	Short: "Classify every watchlist ticker",
	Long: `Run the watchlist scan once and print a summary, or with --watch
scan immediately and then keep scanning on SCAN_SCHEDULE. Tickers given as arguments replace the
stored watchlist for this run.

Whale and divergence alerts are logged at warn level.

Example:
  go run ./cmd/whalewatch scan
  go run ./cmd/whalewatch scan NVDA AAPL
  go run ./cmd/whalewatch scan --watch --schedule "0 */5 * * * *"`,
	RunE: runScan,
}

var (
	scanWatch    bool
	scanSchedule string
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().BoolVar(&scanWatch, "watch", false, "keep scanning on the schedule until interrupted")
	scanCmd.Flags().StringVar(&scanSchedule, "schedule", "", "cron spec with seconds (default SCAN_SCHEDULE)")
}

// argTickers scans the tickers given on the command line
type argTickers []string

func (a argTickers) Tickers(context.Context) ([]string, error) {
	return a, nil
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if scanSchedule != "" {
		cfg.Scan.Schedule = scanSchedule
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := newRuntime(ctx, cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer rt.Close()

	var source jobs.TickerLister = rt.watchlist
	if len(args) > 0 {
		source = argTickers(args)
	}

	job := jobs.NewWatchlistScanJob(source, rt.tracker, nil, cfg.Scan.Schedule, rt.log)

	sched := scheduler.New(rt.log, scheduler.WithRetry(0, 0))
	if err := sched.AddJob(job); err != nil {
		return fmt.Errorf("schedule watchlist scan: %w", err)
	}

	if !scanWatch {
		_, runErr := sched.RunNow(ctx, job.Name())
		printScanReport(job)
		return runErr
	}

	sched.Start()
	if err := sched.Trigger(job.Name()); err != nil {
		sched.Stop()
		return err
	}
	PrintSuccess(fmt.Sprintf("Scanning now and on %q, press Ctrl+C to stop", cfg.Scan.Schedule))

	<-ctx.Done()
	sched.Stop()

	stats := sched.Stats()[job.Name()]
	PrintInfo(fmt.Sprintf("%d scans, %d failed", stats.TotalRuns, stats.FailureCount))
	return nil
}

func printScanReport(job *jobs.WatchlistScanJob) {
	report, ok := job.LastReport()
	if !ok {
		PrintInfo("Nothing to scan: the watchlist is empty")
		return
	}

	if jsonOutput {
		if err := PrintJSON(report); err != nil {
			PrintError(err.Error())
		}
		return
	}

	fmt.Println()
	widths := []int{8, 8, 12, 6, 30}
	PrintTableHeader([]string{"Ticker", "Ratio", "Signal", "Conf", "Alerts"}, widths)
	for _, a := range report.Analyses {
		kinds := make([]string, 0, len(a.Alerts))
		for _, alert := range a.Alerts {
			kinds = append(kinds, string(alert.Kind))
		}
		PrintTableRow([]string{
			a.Snapshot.Ticker,
			a.Signal.RatioText(),
			statusIcon(a.Signal.Status) + " " + string(a.Signal.Status),
			fmt.Sprintf("%d%%", a.Signal.Confidence),
			strings.Join(kinds, ", "),
		}, widths)
	}

	if len(report.Failures) > 0 {
		fmt.Println()
		failed := make([]string, 0, len(report.Failures))
		for ticker := range report.Failures {
			failed = append(failed, ticker)
		}
		sort.Strings(failed)
		for _, ticker := range failed {
			PrintError(fmt.Sprintf("%s: %s", ticker, report.Failures[ticker]))
		}
	}

	if len(report.Skipped) > 0 {
		PrintWarning(fmt.Sprintf("Not scanned (rate limit or interrupt): %s", strings.Join(report.Skipped, ", ")))
	}

	if whales := report.Whales(); len(whales) > 0 {
		PrintSuccess(fmt.Sprintf("🐋 Whale activity: %s", strings.Join(whales, ", ")))
	}
}
