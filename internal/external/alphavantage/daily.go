package alphavantage

import (
	"context"
	"fmt"
	"net/url"
	"sort"

	"github.com/wonny/whalewatch/internal/contracts"
)

type dailyResponse struct {
	Series map[string]map[string]string `json:"Time Series (Daily)"`
	apiMessages
}

// FetchDaily retrieves daily bars for a symbol, newest first
func (c *Client) FetchDaily(ctx context.Context, symbol string) ([]contracts.DayBar, error) {
	extra := url.Values{}
	extra.Set("outputsize", "compact")
	if c.lookbackDays >= compactSessions {
		extra.Set("outputsize", "full")
	}

	var resp dailyResponse
	if err := c.query(ctx, functionDaily, symbol, extra, &resp); err != nil {
		return nil, err
	}

	if err := resp.apiMessages.err(symbol); err != nil {
		return nil, err
	}

	if len(resp.Series) == 0 {
		return nil, fmt.Errorf("%w: empty daily series for %q", ErrUpstream, symbol)
	}

	return parseDaily(resp.Series), nil
}

// parseDaily converts the date-keyed series into bars sorted newest first.
// Entries with unparsable volume are skipped.
func parseDaily(series map[string]map[string]string) []contracts.DayBar {
	bars := make([]contracts.DayBar, 0, len(series))
	for date, entry := range series {
		volume, err := parseInt(entry["5. volume"])
		if err != nil {
			continue
		}

		bar := contracts.DayBar{Date: date, Volume: volume}
		bar.Open, _ = parseFloat(entry["1. open"])
		bar.High, _ = parseFloat(entry["2. high"])
		bar.Low, _ = parseFloat(entry["3. low"])
		bar.Close, _ = parseFloat(entry["4. close"])
		bars = append(bars, bar)
	}

	// ISO dates sort lexically
	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Date > bars[j].Date
	})

	return bars
}
