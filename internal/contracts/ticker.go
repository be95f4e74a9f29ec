package contracts

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidTicker is returned for symbols that cannot be looked up
var ErrInvalidTicker = errors.New("invalid ticker")

// tickerPattern allows class shares (BRK.B) and dashed symbols (BF-B)
var tickerPattern = regexp.MustCompile(`^[A-Z0-9.\-]{1,10}$`)

// NormalizeTicker trims and upper-cases a user-entered symbol
func NormalizeTicker(raw string) (string, error) {
	ticker := strings.ToUpper(strings.TrimSpace(raw))
	if !tickerPattern.MatchString(ticker) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTicker, raw)
	}
	return ticker, nil
}
