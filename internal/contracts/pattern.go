package contracts

// Timeframe labels, shortest first
const (
	Period30D = "30 days"
	Period90D = "90 days"
	Period1Y  = "1 year"
)

// Periods returns the three timeframes in display order
func Periods() []string {
	return []string{Period30D, Period90D, Period1Y}
}

// TimeframeStat summarizes forward outcomes of similar setups over one period
type TimeframeStat struct {
	Period       string  `json:"period"`
	WinRate      int     `json:"win_rate"` // percent, 0~100
	AvgMove      float64 `json:"avg_move"` // percent, signed for green/red, magnitude for yellow
	AvgMoveLabel string  `json:"avg_move_label"`
	Samples      int     `json:"samples"`
	Color        string  `json:"color"`
}

// HistoricalPattern is the per-ticker historical backdrop for a status.
// Values are synthesized deterministically from the ticker.
type HistoricalPattern struct {
	Ticker     string          `json:"ticker"`
	Status     SignalStatus    `json:"status"`
	Timeframes []TimeframeStat `json:"timeframes"`
	Summary    string          `json:"summary"`
}

// Timeframe returns the stat for a period
func (p *HistoricalPattern) Timeframe(period string) (TimeframeStat, bool) {
	for _, tf := range p.Timeframes {
		if tf.Period == period {
			return tf, true
		}
	}
	return TimeframeStat{}, false
}
