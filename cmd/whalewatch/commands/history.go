package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/whalewatch/internal/contracts"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history TICKER",
	Short: "Show recorded signals for a ticker",
	Long: `Show the most recent classifications recorded by analyze, scan and the
API server. Requires DATABASE_URL; without it nothing outlives a command.

Example:
  go run ./cmd/whalewatch history NVDA
  go run ./cmd/whalewatch history NVDA --limit 50 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runHistory,
}

var (
	historyLimit int
)

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of records")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	rt, err := newRuntime(ctx, cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer rt.Close()

	records, err := rt.tracker.History(ctx, args[0], historyLimit)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	if jsonOutput {
		return PrintJSON(records)
	}

	if len(records) == 0 {
		PrintInfo(fmt.Sprintf("No signals recorded for %s", strings.ToUpper(args[0])))
		return nil
	}

	widths := []int{17, 8, 11, 5, 6, 24}
	PrintTableHeader([]string{"Analyzed", "Ratio", "Signal", "Conf", "Whale", "Alerts"}, widths)
	for _, r := range records {
		PrintTableRow([]string{
			r.AnalyzedAt.Local().Format("2006-01-02 15:04"),
			contracts.FormatRatio(r.VolumeRatio),
			statusIcon(r.Status) + " " + string(r.Status),
			fmt.Sprintf("%d%%", r.Confidence),
			yesNo(r.IsWhale),
			strings.Join(r.Alerts, ", "),
		}, widths)
	}

	return nil
}
