package pattern

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/whalewatch/internal/contracts"
)

var sampleTickers = []string{"NVDA", "AAPL", "TSLA", "MSFT", "AMZN", "META", "GOOG", "AMD", "BRK.B", "SPY"}

func TestSynthesize_Deterministic(t *testing.T) {
	for _, status := range contracts.AllStatuses() {
		a, err := Synthesize(status, "NVDA")
		require.NoError(t, err)
		b, err := Synthesize(status, "NVDA")
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func TestSynthesize_Bands(t *testing.T) {
	type want struct {
		win     [2]int
		move    [2]float64
		samples [2]int
	}
	bands := map[contracts.SignalStatus][3]want{
		contracts.StatusGreen: {
			{[2]int{68, 82}, [2]float64{2.5, 7.0}, [2]int{40, 100}},
			{[2]int{64, 76}, [2]float64{5.0, 13.0}, [2]int{30, 80}},
			{[2]int{78, 90}, [2]float64{10.0, 28.0}, [2]int{20, 55}},
		},
		contracts.StatusYellow: {
			{[2]int{45, 60}, [2]float64{1.0, 3.0}, [2]int{35, 85}},
			{[2]int{48, 62}, [2]float64{2.0, 6.0}, [2]int{25, 65}},
			{[2]int{55, 70}, [2]float64{4.0, 12.0}, [2]int{18, 48}},
		},
		contracts.StatusRed: {
			{[2]int{58, 76}, [2]float64{-5.5, -2.0}, [2]int{30, 75}},
			{[2]int{52, 68}, [2]float64{-10.0, -4.0}, [2]int{22, 57}},
			{[2]int{45, 60}, [2]float64{-18.0, -6.0}, [2]int{15, 40}},
		},
	}

	for status, frames := range bands {
		for _, ticker := range sampleTickers {
			p, err := Synthesize(status, ticker)
			require.NoError(t, err)
			require.Len(t, p.Timeframes, 3)

			for i, tf := range p.Timeframes {
				w := frames[i]
				assert.Equal(t, contracts.Periods()[i], tf.Period)
				assert.GreaterOrEqual(t, tf.WinRate, w.win[0], "%s %s %s", status, ticker, tf.Period)
				assert.LessOrEqual(t, tf.WinRate, w.win[1], "%s %s %s", status, ticker, tf.Period)
				assert.GreaterOrEqual(t, tf.AvgMove, w.move[0], "%s %s %s", status, ticker, tf.Period)
				assert.LessOrEqual(t, tf.AvgMove, w.move[1], "%s %s %s", status, ticker, tf.Period)
				assert.GreaterOrEqual(t, tf.Samples, w.samples[0], "%s %s %s", status, ticker, tf.Period)
				assert.LessOrEqual(t, tf.Samples, w.samples[1], "%s %s %s", status, ticker, tf.Period)
				assert.Equal(t, status.Color(), tf.Color)
			}
		}
	}
}

func TestSynthesize_MoveLabels(t *testing.T) {
	prefixes := map[contracts.SignalStatus]string{
		contracts.StatusGreen:  "+",
		contracts.StatusYellow: "±",
		contracts.StatusRed:    "-",
	}

	for status, prefix := range prefixes {
		p, err := Synthesize(status, "AAPL")
		require.NoError(t, err)

		for _, tf := range p.Timeframes {
			magnitude := tf.AvgMove
			if magnitude < 0 {
				magnitude = -magnitude
			}
			assert.Equal(t, fmt.Sprintf("%s%.1f%%", prefix, magnitude), tf.AvgMoveLabel)
		}
	}
}

func TestSynthesize_SummaryCitesCards(t *testing.T) {
	green, err := Synthesize(contracts.StatusGreen, "NVDA")
	require.NoError(t, err)
	assert.Contains(t, green.Summary, "NVDA")
	assert.Contains(t, green.Summary, fmt.Sprintf("up %d%% of the time after 30 days", green.Timeframes[0].WinRate))
	assert.Contains(t, green.Summary, fmt.Sprintf("gains %d%% of the time", green.Timeframes[2].WinRate))

	yellow, err := Synthesize(contracts.StatusYellow, "NVDA")
	require.NoError(t, err)
	assert.Contains(t, yellow.Summary, fmt.Sprintf("%d%% of the time after 30 days", yellow.Timeframes[0].WinRate))
	assert.Contains(t, yellow.Summary, fmt.Sprintf("profitable %d%% of the time", yellow.Timeframes[1].WinRate))

	red, err := Synthesize(contracts.StatusRed, "NVDA")
	require.NoError(t, err)
	assert.Contains(t, red.Summary, fmt.Sprintf("fell further %d%% of the time", red.Timeframes[0].WinRate))
	assert.Contains(t, red.Summary, fmt.Sprintf("persisted %d%% of the time", red.Timeframes[2].WinRate))
}

func TestSynthesize_TickerChangesNumbers(t *testing.T) {
	base, err := Synthesize(contracts.StatusGreen, sampleTickers[0])
	require.NoError(t, err)

	differing := 0
	for _, ticker := range sampleTickers[1:] {
		p, err := Synthesize(contracts.StatusGreen, ticker)
		require.NoError(t, err)
		if !equalFrames(base.Timeframes, p.Timeframes) {
			differing++
		}
	}

	assert.Equal(t, len(sampleTickers)-1, differing)
}

func TestSynthesize_SharedStreamAcrossStatuses(t *testing.T) {
	// same ticker, same random draw: green and yellow 30-day win rates sit at
	// the same relative position inside their bands
	green, err := Synthesize(contracts.StatusGreen, "TSLA")
	require.NoError(t, err)
	yellow, err := Synthesize(contracts.StatusYellow, "TSLA")
	require.NoError(t, err)

	r := SeededRandom(SeedFromTicker("TSLA"), winOffset30D)
	assert.InDelta(t, 68+14*r, float64(green.Timeframes[0].WinRate), 0.5)
	assert.InDelta(t, 45+15*r, float64(yellow.Timeframes[0].WinRate), 0.5)
}

func TestSynthesize_UnknownStatus(t *testing.T) {
	_, err := Synthesize(contracts.SignalStatus("purple"), "NVDA")
	assert.ErrorIs(t, err, contracts.ErrUnknownStatus)
	assert.True(t, strings.Contains(err.Error(), "purple"))
}

func equalFrames(a, b []contracts.TimeframeStat) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
