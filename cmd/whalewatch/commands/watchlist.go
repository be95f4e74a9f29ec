package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// watchlistCmd represents the watchlist command
var watchlistCmd = &cobra.Command{
	Use:   "watchlist",
	Short: "Manage the watchlist",
	Long: `Add, remove and list watched tickers.

The watchlist is stored in PostgreSQL (DATABASE_URL). Without a database
the list only lives for the duration of the command.

Subcommands:
  list     - show watched tickers
  add      - watch tickers
  remove   - stop watching tickers

Example:
  go run ./cmd/whalewatch watchlist add NVDA TSLA
  go run ./cmd/whalewatch watchlist list
  go run ./cmd/whalewatch watchlist remove TSLA`,
}

var (
	watchlistListCmd = &cobra.Command{
		Use:   "list",
		Short: "Show watched tickers",
		Args:  cobra.NoArgs,
		RunE:  listWatchlist,
	}

	watchlistAddCmd = &cobra.Command{
		Use:   "add TICKER [TICKER...]",
		Short: "Watch tickers",
		Args:  cobra.MinimumNArgs(1),
		RunE:  addToWatchlist,
	}

	watchlistRemoveCmd = &cobra.Command{
		Use:   "remove TICKER [TICKER...]",
		Short: "Stop watching tickers",
		Args:  cobra.MinimumNArgs(1),
		RunE:  removeFromWatchlist,
	}
)

func init() {
	rootCmd.AddCommand(watchlistCmd)
	watchlistCmd.AddCommand(watchlistListCmd)
	watchlistCmd.AddCommand(watchlistAddCmd)
	watchlistCmd.AddCommand(watchlistRemoveCmd)
}

// openWatchlist wires the runtime and warns when nothing will persist
func openWatchlist(cmd *cobra.Command) (context.Context, *runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	rt, err := newRuntime(ctx, cfg, os.Stderr)
	if err != nil {
		return nil, nil, err
	}

	if rt.db == nil {
		PrintWarning("DATABASE_URL not set: watchlist changes will not be saved")
	}

	return ctx, rt, nil
}

func listWatchlist(cmd *cobra.Command, args []string) error {
	ctx, rt, err := openWatchlist(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	entries, err := rt.watchlist.List(ctx)
	if err != nil {
		return fmt.Errorf("list watchlist: %w", err)
	}

	if jsonOutput {
		return PrintJSON(entries)
	}

	if len(entries) == 0 {
		PrintInfo("Watchlist is empty")
		return nil
	}

	widths := []int{4, 10, 20}
	PrintTableHeader([]string{"#", "Ticker", "Added"}, widths)
	for i, e := range entries {
		PrintTableRow([]string{
			fmt.Sprintf("%d", i+1),
			e.Ticker,
			e.AddedAt.Local().Format("2006-01-02 15:04"),
		}, widths)
	}

	return nil
}

func addToWatchlist(cmd *cobra.Command, args []string) error {
	ctx, rt, err := openWatchlist(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	failed := 0
	for _, raw := range args {
		ticker, added, err := rt.watchlist.Add(ctx, raw)
		switch {
		case err != nil:
			failed++
			PrintError(fmt.Sprintf("%s: %v", raw, err))
		case added:
			PrintSuccess(fmt.Sprintf("Watching %s", ticker))
		default:
			PrintInfo(fmt.Sprintf("%s is already watched", ticker))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d tickers not added", failed, len(args))
	}
	return nil
}

func removeFromWatchlist(cmd *cobra.Command, args []string) error {
	ctx, rt, err := openWatchlist(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	failed := 0
	for _, raw := range args {
		ticker, err := rt.watchlist.Remove(ctx, raw)
		if err != nil {
			failed++
			PrintError(fmt.Sprintf("%s: %v", raw, err))
			continue
		}
		PrintSuccess(fmt.Sprintf("Stopped watching %s", ticker))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d tickers not removed", failed, len(args))
	}
	return nil
}
