package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wonny/whalewatch/internal/contracts"
	"github.com/wonny/whalewatch/internal/tracker"
	"github.com/wonny/whalewatch/pkg/config"
	"github.com/wonny/whalewatch/pkg/logger"
	"github.com/wonny/whalewatch/pkg/metrics"
	"github.com/wonny/whalewatch/pkg/redis"
)

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify a snapshot without fetching",
	Long: `Run the classifier, pattern synthesizer and alert deriver over a
snapshot given on the command line or in a YAML/JSON file. No API key or
network access is needed.

Snapshot file fields:
  ticker, current_volume, average_volume, price_change
  (optional) current_price, price_change_percent, history

Example:
  go run ./cmd/whalewatch classify --ticker NVDA --volume 31000000 --avg 10000000 --change 4.2
  go run ./cmd/whalewatch classify --file snapshot.yaml --json`,
	Args: cobra.NoArgs,
	RunE: runClassify,
}

var (
	classifyFile   string
	classifyTicker string
	classifyVolume int64
	classifyAvg    int64
	classifyChange float64
)

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().StringVarP(&classifyFile, "file", "f", "", "snapshot file (YAML or JSON)")
	classifyCmd.Flags().StringVar(&classifyTicker, "ticker", "", "ticker symbol")
	classifyCmd.Flags().Int64Var(&classifyVolume, "volume", 0, "current session volume")
	classifyCmd.Flags().Int64Var(&classifyAvg, "avg", 0, "trailing average volume")
	classifyCmd.Flags().Float64Var(&classifyChange, "change", 0, "price change vs previous close")
}

func runClassify(cmd *cobra.Command, args []string) error {
	snapshot, err := classifyInput()
	if err != nil {
		return err
	}

	ticker, err := contracts.NormalizeTicker(snapshot.Ticker)
	if err != nil {
		return err
	}
	snapshot.Ticker = ticker

	level := "warn"
	if logLevel != "" {
		level = logLevel
	}
	log := logger.NewWithWriter(&config.Config{
		Env:       "development",
		LogLevel:  level,
		LogFormat: "console",
	}, os.Stderr)

	// Evaluate never touches the source or the cache
	svc := tracker.NewService(nil, redis.NewCache(redis.Disabled(), keyPrefix), 0, metrics.New(), log)

	analysis, err := svc.Evaluate(snapshot)
	if err != nil {
		return err
	}

	if jsonOutput {
		return PrintJSON(analysis)
	}

	PrintAnalysis(analysis)
	return nil
}

// classifyInput builds the snapshot from --file or the individual flags
func classifyInput() (contracts.StockSnapshot, error) {
	if classifyFile != "" {
		return loadSnapshotFile(classifyFile)
	}

	if classifyTicker == "" {
		return contracts.StockSnapshot{}, fmt.Errorf("either --file or --ticker is required")
	}

	return contracts.StockSnapshot{
		Ticker:        classifyTicker,
		CurrentVolume: classifyVolume,
		AverageVolume: classifyAvg,
		PriceChange:   classifyChange,
	}, nil
}

// loadSnapshotFile reads a YAML or JSON snapshot
func loadSnapshotFile(path string) (contracts.StockSnapshot, error) {
	var snapshot contracts.StockSnapshot

	data, err := os.ReadFile(path)
	if err != nil {
		return snapshot, fmt.Errorf("read snapshot file: %w", err)
	}

	if err := yaml.Unmarshal(data, &snapshot); err != nil {
		return snapshot, fmt.Errorf("parse snapshot file %s: %w", path, err)
	}

	return snapshot, nil
}
