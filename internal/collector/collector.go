package collector

import (
	"fmt"
	"time"

	"QEngine/internal/calculator"
	"QEngine/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Bars      []model.OHLCV
	Funding   float64
	LongShort float64
	Err       error

	KlineCalls int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchKlines(_ string, limit int) ([]model.OHLCV, error) {
	m.KlineCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Bars) > limit {
		return m.Bars[len(m.Bars)-limit:], nil
	}
	return m.Bars, nil
}

func (m *MockFetcher) FetchFundingRate(_ string) (float64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	return m.Funding, nil
}

func (m *MockFetcher) FetchLongShortRatio(_ string) (float64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	return m.LongShort, nil
}

// GenerateBars builds a synthetic hourly series drifting around basePrice.
func GenerateBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   time.Now().Add(-time.Duration(count-i) * time.Hour),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Collector orchestrates data fetching and indicator computation, with
// a bounded-TTL cache in front of the exchange.
type Collector struct {
	Fetcher  Fetcher
	Lookback int
	cache    *snapshotCache
}

// NewCollector creates a Collector. lookback is the number of closed
// hourly bars analyzed per snapshot; cacheTTL <= 0 disables caching.
func NewCollector(fetcher Fetcher, lookback int, cacheTTL time.Duration) *Collector {
	if lookback < 2 {
		lookback = 100
	}
	return &Collector{
		Fetcher:  fetcher,
		Lookback: lookback,
		cache:    newSnapshotCache(cacheTTL),
	}
}

// Snapshot returns the market snapshot for a ticker, serving a cached
// value when one is still fresh.
func (c *Collector) Snapshot(ticker string) (*model.MarketSnapshot, error) {
	symbol := NormalizeSymbol(ticker)
	if snap, ok := c.cache.get(symbol); ok {
		return snap, nil
	}
	return c.fetch(symbol)
}

// Refresh bypasses the cache, fetches fresh data, and stores the result.
func (c *Collector) Refresh(ticker string) (*model.MarketSnapshot, error) {
	symbol := NormalizeSymbol(ticker)
	c.cache.invalidate(symbol)
	return c.fetch(symbol)
}

// fetch issues all exchange calls and derives the snapshot. Any failed
// call fails the whole fetch; no partial snapshot is ever produced.
func (c *Collector) fetch(symbol string) (*model.MarketSnapshot, error) {
	// One extra bar so the still-open candle can be dropped.
	bars, err := c.Fetcher.FetchKlines(symbol, c.Lookback+1)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, symbol, err)
	}
	if len(bars) < 2 {
		return nil, fmt.Errorf("%w: %s: only %d bars returned", ErrUnavailable, symbol, len(bars))
	}
	bars = bars[:len(bars)-1]

	funding, err := c.Fetcher.FetchFundingRate(symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, symbol, err)
	}
	longShort, err := c.Fetcher.FetchLongShortRatio(symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, symbol, err)
	}

	series := &model.PriceSeries{Symbol: symbol, Bars: bars, FetchedAt: time.Now()}
	snap := buildSnapshot(series, funding, longShort)
	c.cache.put(symbol, snap)
	return snap, nil
}

// buildSnapshot derives every indicator from a closed-bar series.
func buildSnapshot(series *model.PriceSeries, funding, longShort float64) *model.MarketSnapshot {
	closes := series.Closes()
	volumes := series.Volumes()
	price := series.LastClose()

	ema20 := calculator.CalculateEMA(closes, 20)
	ema50 := calculator.CalculateEMA(closes, 50)
	macd, hist := calculator.CalculateMACD(closes)

	return &model.MarketSnapshot{
		Symbol:        series.Symbol,
		Price:         price,
		Change24h:     change24h(closes),
		RSI:           calculator.CalculateRSI(closes, 14),
		EMA20:         ema20,
		EMA50:         ema50,
		Trend:         calculator.CrossDirection(ema20, ema50),
		MACD:          macd,
		MACDHistogram: hist,
		VolumeSpike:   calculator.VolumeSpikeRatio(volumes),
		FundingRate:   funding,
		LongShort:     longShort,
		POC:           calculator.PointOfControl(closes, volumes),
		FetchedAt:     series.FetchedAt,
	}
}

// change24h is the percent move of the last close against the close 24
// bars earlier, or against the first close for shorter series.
func change24h(closes []float64) float64 {
	if len(closes) < 2 {
		return 0
	}
	base := closes[0]
	if len(closes) >= 25 {
		base = closes[len(closes)-25]
	}
	if base == 0 {
		return 0
	}
	return (closes[len(closes)-1]/base - 1) * 100
}
