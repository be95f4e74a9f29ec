package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/whalewatch/internal/contracts"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze TICKER [TICKER...]",
	Short: "Fetch and classify tickers",
	Long: `Fetch the latest quote and daily bars from Alpha Vantage, then print
the volume signal, historical pattern stats and pattern alerts.

The free API tier allows 5 requests per minute and each ticker costs two,
so analyzing several tickers waits on the rate limiter.

Example:
  go run ./cmd/whalewatch analyze NVDA
  go run ./cmd/whalewatch analyze nvda aapl --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
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

	results := make([]*contracts.Analysis, 0, len(args))
	failed := 0

	for _, ticker := range args {
		analysis, err := rt.tracker.Analyze(ctx, ticker)
		if err != nil {
			failed++
			PrintError(fmt.Sprintf("%s: %v", ticker, err))
			continue
		}
		results = append(results, analysis)

		if !jsonOutput {
			PrintAnalysis(analysis)
		}
	}

	if jsonOutput {
		if err := PrintJSON(results); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d tickers failed", failed, len(args))
	}
	return nil
}
