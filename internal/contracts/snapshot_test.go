package contracts

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockSnapshot_Validate(t *testing.T) {
	tests := []struct {
		name     string
		snapshot StockSnapshot
		wantErr  string
	}{
		{
			name:     "valid",
			snapshot: StockSnapshot{Ticker: "NVDA", CurrentVolume: 310, AverageVolume: 100, PriceChange: 5},
		},
		{
			name:     "zero current volume is allowed",
			snapshot: StockSnapshot{Ticker: "NVDA", CurrentVolume: 0, AverageVolume: 100},
		},
		{
			name:     "zero average volume",
			snapshot: StockSnapshot{Ticker: "NVDA", CurrentVolume: 10, AverageVolume: 0},
			wantErr:  "average_volume must be greater than 0",
		},
		{
			name:     "negative current volume",
			snapshot: StockSnapshot{Ticker: "NVDA", CurrentVolume: -1, AverageVolume: 100},
			wantErr:  "current_volume must be greater than or equal to 0",
		},
		{
			name:     "missing ticker",
			snapshot: StockSnapshot{CurrentVolume: 10, AverageVolume: 100},
			wantErr:  "ticker is required",
		},
		{
			name:     "NaN price change",
			snapshot: StockSnapshot{Ticker: "NVDA", CurrentVolume: 10, AverageVolume: 100, PriceChange: math.NaN()},
			wantErr:  "price_change must be finite",
		},
		{
			name:     "infinite price change",
			snapshot: StockSnapshot{Ticker: "NVDA", CurrentVolume: 10, AverageVolume: 100, PriceChange: math.Inf(-1)},
			wantErr:  "price_change must be finite",
		},
		{
			name: "bad history date",
			snapshot: StockSnapshot{
				Ticker: "NVDA", CurrentVolume: 10, AverageVolume: 100,
				History: []DayBar{{Date: "01/02/2026", Volume: 5}},
			},
			wantErr: "date must be a 2006-01-02 date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.snapshot.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidSnapshot)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStockSnapshot_VolumeRatio(t *testing.T) {
	s := StockSnapshot{Ticker: "AAPL", CurrentVolume: 150, AverageVolume: 100}
	assert.InDelta(t, 1.5, s.VolumeRatio(), 1e-12)
}
