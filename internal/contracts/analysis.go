package contracts

import "time"

// Analysis bundles everything produced for one ticker lookup
type Analysis struct {
	Snapshot   StockSnapshot     `json:"snapshot"`
	Signal     VolumeSignal      `json:"signal"`
	Pattern    HistoricalPattern `json:"pattern"`
	Alerts     []PatternAlert    `json:"alerts"`
	AnalyzedAt time.Time         `json:"analyzed_at"`
}
