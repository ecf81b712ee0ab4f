package model

import "time"

// Trend indicates the EMA20/EMA50 cross direction.
type Trend string

const (
	TrendBull Trend = "bull"
	TrendBear Trend = "bear"
)

// MarketSnapshot is an immutable point-in-time view of one symbol:
// the last price plus every derived indicator the prompt embeds.
type MarketSnapshot struct {
	Symbol        string
	Price         float64
	Change24h     float64 // percent
	RSI           float64
	EMA20         float64
	EMA50         float64
	Trend         Trend
	MACD          float64
	MACDHistogram float64
	VolumeSpike   float64 // last bar volume vs mean of prior bars
	FundingRate   float64 // percent
	LongShort     float64 // long/short account ratio
	POC           float64 // point of control price
	FetchedAt     time.Time
}
