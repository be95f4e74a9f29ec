package volume

import (
	"fmt"
	"math"

	"github.com/wonny/whalewatch/internal/contracts"
)

// Rule names, in evaluation order
const (
	RuleWhale     = "whale"
	RuleStrongBuy = "strong_buy"
	RuleCaution   = "caution"
	RuleWeak      = "weak"
)

// Thresholds on current/average volume
const (
	WhaleRatio       = 3.0
	StrongBuyRatio   = 1.5
	TrendRatio       = 1.5 // strictly greater than
	CautionRatio     = 1.2
	ConfirmedCaution = 1.0

	whaleConfidence = 95
)

// inputs are the derived booleans every rule sees
type inputs struct {
	ticker         string
	ratio          float64
	priceConfirmed bool
	trendAlignment bool
}

// rule is one guarded case of the decision list
type rule struct {
	name  string
	match func(in inputs) bool
	build func(in inputs) contracts.VolumeSignal
}

// rules is evaluated top to bottom; the first match wins.
// The last rule always matches.
var rules = []rule{
	{
		name: RuleWhale,
		match: func(in inputs) bool {
			return in.ratio >= WhaleRatio && in.priceConfirmed
		},
		build: func(in inputs) contracts.VolumeSignal {
			return contracts.VolumeSignal{
				Status:         contracts.StatusGreen,
				Confidence:     whaleConfidence,
				IsWhale:        true,
				TrendAlignment: true,
				Message: fmt.Sprintf("Whale detected on %s! Volume is %s average with strong price confirmation.",
					in.ticker, contracts.FormatRatio(in.ratio)),
			}
		},
	},
	{
		// Fires on ratio and confirmation alone. The stored trendAlignment stays
		// strict, so it is false at exactly 1.5.
		name: RuleStrongBuy,
		match: func(in inputs) bool {
			return in.ratio >= StrongBuyRatio && in.priceConfirmed
		},
		build: func(in inputs) contracts.VolumeSignal {
			return contracts.VolumeSignal{
				Status:         contracts.StatusGreen,
				Confidence:     round(math.Min(70+(in.ratio-StrongBuyRatio)*20, 100)),
				TrendAlignment: in.trendAlignment,
				Message: fmt.Sprintf("Strong buy signal on %s. Volume %s above average with bullish price action.",
					in.ticker, contracts.FormatRatio(in.ratio)),
			}
		},
	},
	{
		name: RuleCaution,
		match: func(in inputs) bool {
			return in.ratio >= CautionRatio || (in.ratio >= ConfirmedCaution && in.priceConfirmed)
		},
		build: func(in inputs) contracts.VolumeSignal {
			base := 35.0
			detail := "price action is mixed"
			if in.priceConfirmed {
				base = 50.0
				detail = "price rising but needs confirmation"
			}
			return contracts.VolumeSignal{
				Status:         contracts.StatusYellow,
				Confidence:     round(clamp(base+(in.ratio-1.0)*30, 30, 70)),
				TrendAlignment: in.trendAlignment,
				Message: fmt.Sprintf("Caution on %s. Volume is %s average, %s.",
					in.ticker, contracts.FormatRatio(in.ratio), detail),
			}
		},
	},
	{
		name:  RuleWeak,
		match: func(inputs) bool { return true },
		build: func(in inputs) contracts.VolumeSignal {
			suffix := ""
			if !in.priceConfirmed {
				suffix = " with negative price action"
			}
			return contracts.VolumeSignal{
				Status:         contracts.StatusRed,
				Confidence:     round(clamp(in.ratio*30, 0, 30)),
				TrendAlignment: in.trendAlignment,
				Message: fmt.Sprintf("Weak signal on %s. Volume is %s average%s.",
					in.ticker, contracts.FormatRatio(in.ratio), suffix),
			}
		},
	},
}

// RuleNames returns the rule names in evaluation order
func RuleNames() []string {
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.name
	}
	return names
}

// Classify maps a snapshot to a volume signal. It performs no I/O.
// Invalid snapshots return an error wrapping contracts.ErrInvalidSnapshot.
func Classify(snapshot contracts.StockSnapshot) (contracts.VolumeSignal, error) {
	if err := snapshot.Validate(); err != nil {
		return contracts.VolumeSignal{}, err
	}

	ratio := snapshot.VolumeRatio()
	priceConfirmed := snapshot.PriceChange > 0

	return evaluate(inputs{
		ticker:         snapshot.Ticker,
		ratio:          ratio,
		priceConfirmed: priceConfirmed,
		trendAlignment: ratio > TrendRatio && priceConfirmed,
	}), nil
}

func evaluate(in inputs) contracts.VolumeSignal {
	for _, r := range rules {
		if !r.match(in) {
			continue
		}
		signal := r.build(in)
		signal.VolumeRatio = in.ratio
		signal.PriceConfirmed = in.priceConfirmed
		signal.Rule = r.name
		return signal
	}

	// unreachable: the weak rule matches everything
	panic("volume: no classifier rule matched")
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

// round matches half-away-from-zero on the non-negative values used here
func round(v float64) int {
	return int(math.Round(v))
}
