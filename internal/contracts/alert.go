package contracts

// AlertKind identifies which pattern rule produced an alert
type AlertKind string

const (
	AlertWhale       AlertKind = "whale"
	AlertSurge       AlertKind = "surge"
	AlertDivergence  AlertKind = "divergence"
	AlertLowBreakout AlertKind = "low_volume_breakout"
	AlertDeclining   AlertKind = "declining"
	AlertNormal      AlertKind = "normal"
)

// PatternAlert is a human-readable alert derived from a volume signal
type PatternAlert struct {
	ID          string       `json:"id"` // ticker:kind
	Kind        AlertKind    `json:"kind"`
	Icon        string       `json:"icon"`
	Title       string       `json:"title"`
	Ticker      string       `json:"ticker"`
	Description string       `json:"description"`
	Status      SignalStatus `json:"status"`
}
