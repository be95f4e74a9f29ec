package alphavantage

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Quote is the parsed GLOBAL_QUOTE payload
type Quote struct {
	Symbol           string
	Price            float64
	Volume           int64
	LatestTradingDay string // YYYY-MM-DD
	PreviousClose    float64
	Change           float64
	ChangePercent    float64
}

type globalQuoteResponse struct {
	Quote map[string]string `json:"Global Quote"`
	apiMessages
}

// FetchQuote retrieves the latest quote for a symbol
func (c *Client) FetchQuote(ctx context.Context, symbol string) (*Quote, error) {
	var resp globalQuoteResponse
	if err := c.query(ctx, functionGlobalQuote, symbol, nil, &resp); err != nil {
		return nil, err
	}

	if err := resp.apiMessages.err(symbol); err != nil {
		return nil, err
	}

	if resp.Quote == nil || resp.Quote["05. price"] == "" {
		return nil, fmt.Errorf("%w: No data found for %q. Check the ticker and try again.", ErrTickerNotFound, symbol)
	}

	return parseQuote(resp.Quote)
}

// parseQuote converts the string-keyed quote into typed fields
func parseQuote(raw map[string]string) (*Quote, error) {
	price, err := parseFloat(raw["05. price"])
	if err != nil {
		return nil, fmt.Errorf("%w: invalid price: %w", ErrUpstream, err)
	}

	volume, err := parseInt(raw["06. volume"])
	if err != nil {
		return nil, fmt.Errorf("%w: invalid volume: %w", ErrUpstream, err)
	}

	change, err := parseFloat(raw["09. change"])
	if err != nil {
		return nil, fmt.Errorf("%w: invalid change: %w", ErrUpstream, err)
	}

	q := &Quote{
		Symbol:           raw["01. symbol"],
		Price:            price,
		Volume:           volume,
		LatestTradingDay: raw["07. latest trading day"],
		Change:           change,
	}

	// optional fields
	if v, err := parseFloat(raw["08. previous close"]); err == nil {
		q.PreviousClose = v
	}
	if v, err := parseFloat(strings.TrimSuffix(raw["10. change percent"], "%")); err == nil {
		q.ChangePercent = v
	}

	return q, nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func parseInt(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}
