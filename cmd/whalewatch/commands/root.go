package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	logLevel   string
	jsonOutput bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "whalewatch",
	Short: "Whale volume tracker - unusual volume signals for US stocks",
	Long: `whalewatch CLI

Compares today's volume with the trailing average, confirms it against
price direction, and reports a BUY SIGNAL / CAUTION / SELL SIGNAL with
historical pattern stats and alerts.

Usage:
  go run ./cmd/whalewatch [command]

Examples:
  go run ./cmd/whalewatch api
  go run ./cmd/whalewatch analyze NVDA
  go run ./cmd/whalewatch classify --ticker NVDA --volume 31000000 --avg 10000000 --change 4.2
  go run ./cmd/whalewatch watchlist add TSLA
  go run ./cmd/whalewatch scan`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL (debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
}
