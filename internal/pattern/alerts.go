package pattern

import (
	"fmt"

	"github.com/wonny/whalewatch/internal/contracts"
)

// Alert thresholds on the volume ratio
const (
	SurgeRatio      = 2.0
	DivergenceRatio = 1.3
	BreakoutCeiling = 1.0 // below this with price up
	DecliningRatio  = 0.8
)

type alertCheck struct {
	kind   contracts.AlertKind
	icon   string
	title  string
	status contracts.SignalStatus
	match  func(s *contracts.VolumeSignal) bool
	text   func(s *contracts.VolumeSignal, ticker string) string
}

// alertChecks are independent; every match emits an alert, in this order
var alertChecks = []alertCheck{
	{
		kind:   contracts.AlertWhale,
		icon:   "🐋",
		title:  "Whale Activity Detected",
		status: contracts.StatusGreen,
		match:  func(s *contracts.VolumeSignal) bool { return s.IsWhale },
		text: func(s *contracts.VolumeSignal, ticker string) string {
			return fmt.Sprintf("Massive institutional buying, volume is %s average. Large players are accumulating %s.",
				s.RatioText(), ticker)
		},
	},
	{
		kind:   contracts.AlertSurge,
		icon:   "📈",
		title:  "High Volume Surge",
		status: contracts.StatusGreen,
		match: func(s *contracts.VolumeSignal) bool {
			return s.VolumeRatio >= SurgeRatio && s.PriceConfirmed
		},
		text: func(s *contracts.VolumeSignal, _ string) string {
			return fmt.Sprintf("Volume is %s above normal with price moving up. This often confirms a strong trend continuation.",
				s.RatioText())
		},
	},
	{
		kind:   contracts.AlertDivergence,
		icon:   "⚠️",
		title:  "Divergence Warning",
		status: contracts.StatusRed,
		match: func(s *contracts.VolumeSignal) bool {
			return s.VolumeRatio >= DivergenceRatio && !s.PriceConfirmed
		},
		text: func(*contracts.VolumeSignal, string) string {
			return "Volume is rising but price is falling. This divergence can signal that selling pressure is increasing despite high activity."
		},
	},
	{
		kind:   contracts.AlertLowBreakout,
		icon:   "⚠️",
		title:  "Low Volume Breakout",
		status: contracts.StatusYellow,
		match: func(s *contracts.VolumeSignal) bool {
			return s.VolumeRatio < BreakoutCeiling && s.PriceConfirmed
		},
		text: func(*contracts.VolumeSignal, string) string {
			return "Price is moving up but on below-average volume. Breakouts without volume support are more likely to reverse, so wait for confirmation."
		},
	},
	{
		kind:   contracts.AlertDeclining,
		icon:   "📉",
		title:  "Volume Declining",
		status: contracts.StatusRed,
		match:  func(s *contracts.VolumeSignal) bool { return s.VolumeRatio < DecliningRatio },
		text: func(s *contracts.VolumeSignal, _ string) string {
			return fmt.Sprintf("Trading activity is only %s of average. Low interest suggests the stock may be range-bound or losing momentum.",
				s.RatioText())
		},
	},
}

// DeriveAlerts turns a signal into display alerts. A nil signal means no
// lookup has happened yet and yields DefaultAlerts.
func DeriveAlerts(signal *contracts.VolumeSignal, ticker string) []contracts.PatternAlert {
	if signal == nil {
		return DefaultAlerts()
	}

	var alerts []contracts.PatternAlert
	for _, c := range alertChecks {
		if !c.match(signal) {
			continue
		}
		alerts = append(alerts, newAlert(ticker, c.kind, c.icon, c.title, c.status, c.text(signal, ticker)))
	}

	if len(alerts) == 0 {
		alerts = append(alerts, newAlert(ticker, contracts.AlertNormal, "📊", "Normal Activity", contracts.StatusYellow,
			"Volume and price action are within typical ranges. No unusual patterns detected."))
	}

	return alerts
}

// DefaultAlerts are illustrative examples shown before any lookup
func DefaultAlerts() []contracts.PatternAlert {
	return []contracts.PatternAlert{
		newAlert("NVDA", contracts.AlertWhale, "🐋", "Whale Activity Detected", contracts.StatusGreen,
			"Massive institutional buying, volume 3.1x average with strong price confirmation."),
		newAlert("AAPL", contracts.AlertSurge, "📈", "High Volume Surge", contracts.StatusYellow,
			"Volume 1.7x above normal with price up. Potential trend continuation."),
		newAlert("TSLA", contracts.AlertDeclining, "📉", "Volume Declining", contracts.StatusRed,
			"Below-average volume with negative price action. Momentum is fading."),
	}
}

func newAlert(ticker string, kind contracts.AlertKind, icon, title string, status contracts.SignalStatus, description string) contracts.PatternAlert {
	return contracts.PatternAlert{
		ID:          ticker + ":" + string(kind),
		Kind:        kind,
		Icon:        icon,
		Title:       title,
		Ticker:      ticker,
		Description: description,
		Status:      status,
	}
}
