package collector

import (
	"errors"
	"strings"

	"QEngine/internal/model"
)

// ErrUnavailable marks any failure to fetch or parse exchange data.
// The pipeline reacts with a HOLD record instead of surfacing it.
var ErrUnavailable = errors.New("market data unavailable")

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	FetchKlines(symbol string, limit int) ([]model.OHLCV, error)
	FetchFundingRate(symbol string) (float64, error)
	FetchLongShortRatio(symbol string) (float64, error)
	Name() string
}

// NormalizeSymbol canonicalizes user input: upper-case, no quote suffix.
// "btcusdt" and "BTC" both map to "BTC".
func NormalizeSymbol(ticker string) string {
	s := strings.ToUpper(strings.TrimSpace(ticker))
	return strings.TrimSuffix(s, "USDT")
}

// ValidSymbol reports whether the normalized ticker looks like a
// tradable symbol: 2-10 alphanumeric characters.
func ValidSymbol(symbol string) bool {
	if len(symbol) < 2 || len(symbol) > 10 {
		return false
	}
	for _, r := range symbol {
		switch {
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
