package collector

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"QEngine/internal/model"
)

// BinanceFetcher implements Fetcher using the Binance spot and futures
// REST APIs. Candles come from the spot klines endpoint, funding rate
// and long/short ratio from the futures API.
type BinanceFetcher struct {
	SpotURL    string
	FuturesURL string
	Client     *http.Client
}

// NewBinanceFetcher creates a fetcher with optional proxy support.
func NewBinanceFetcher(spotURL, futuresURL, proxyURL string, timeout time.Duration) *BinanceFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if spotURL == "" {
		spotURL = "https://api.binance.com"
	}
	if futuresURL == "" {
		futuresURL = "https://fapi.binance.com"
	}
	return &BinanceFetcher{
		SpotURL:    spotURL,
		FuturesURL: futuresURL,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (f *BinanceFetcher) Name() string { return "binance" }

// pair maps a normalized symbol to its USDT perpetual/spot pair.
func pair(symbol string) string { return symbol + "USDT" }

// FetchKlines returns up to `limit` hourly bars, oldest first. The last
// element is the still-open bar; callers drop it before analysis.
func (f *BinanceFetcher) FetchKlines(symbol string, limit int) ([]model.OHLCV, error) {
	endpoint := fmt.Sprintf("%s/api/v3/klines?symbol=%s&interval=1h&limit=%d",
		f.SpotURL, url.QueryEscape(pair(symbol)), limit)

	body, err := f.get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch klines: %w", err)
	}

	// Binance klines are positional arrays with numbers encoded as strings:
	// [openTime, open, high, low, close, volume, closeTime, ...]
	var raw [][]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode klines: %w", err)
	}

	bars := make([]model.OHLCV, 0, len(raw))
	for _, k := range raw {
		if len(k) < 6 {
			return nil, fmt.Errorf("decode klines: short row (%d fields)", len(k))
		}
		var openTime int64
		if err := json.Unmarshal(k[0], &openTime); err != nil {
			return nil, fmt.Errorf("decode kline open time: %w", err)
		}
		fields := make([]float64, 5)
		for i := 1; i <= 5; i++ {
			v, err := numericField(k[i])
			if err != nil {
				return nil, fmt.Errorf("decode kline field %d: %w", i, err)
			}
			fields[i-1] = v
		}
		bars = append(bars, model.OHLCV{
			Time:   time.UnixMilli(openTime),
			Open:   fields[0],
			High:   fields[1],
			Low:    fields[2],
			Close:  fields[3],
			Volume: fields[4],
		})
	}
	return bars, nil
}

// FetchFundingRate returns the most recent funding rate as a percentage.
func (f *BinanceFetcher) FetchFundingRate(symbol string) (float64, error) {
	endpoint := fmt.Sprintf("%s/fapi/v1/fundingRate?symbol=%s&limit=1",
		f.FuturesURL, url.QueryEscape(pair(symbol)))

	body, err := f.get(endpoint)
	if err != nil {
		return 0, fmt.Errorf("fetch funding rate: %w", err)
	}
	var rows []struct {
		FundingRate string `json:"fundingRate"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return 0, fmt.Errorf("decode funding rate: %w", err)
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("funding rate: no data for %s", pair(symbol))
	}
	rate, err := strconv.ParseFloat(rows[0].FundingRate, 64)
	if err != nil {
		return 0, fmt.Errorf("parse funding rate %q: %w", rows[0].FundingRate, err)
	}
	return rate * 100, nil
}

// FetchLongShortRatio returns the latest global long/short account ratio.
func (f *BinanceFetcher) FetchLongShortRatio(symbol string) (float64, error) {
	endpoint := fmt.Sprintf("%s/futures/data/globalLongShortAccountRatio?symbol=%s&period=1h&limit=1",
		f.FuturesURL, url.QueryEscape(pair(symbol)))

	body, err := f.get(endpoint)
	if err != nil {
		return 0, fmt.Errorf("fetch long/short ratio: %w", err)
	}
	var rows []struct {
		LongShortRatio string `json:"longShortRatio"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return 0, fmt.Errorf("decode long/short ratio: %w", err)
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("long/short ratio: no data for %s", pair(symbol))
	}
	ratio, err := strconv.ParseFloat(rows[0].LongShortRatio, 64)
	if err != nil {
		return 0, fmt.Errorf("parse long/short ratio %q: %w", rows[0].LongShortRatio, err)
	}
	return ratio, nil
}

func (f *BinanceFetcher) get(endpoint string) ([]byte, error) {
	resp, err := f.Client.Get(endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// numericField parses a kline cell that may arrive as a JSON string or
// a bare number.
func numericField(raw json.RawMessage) (float64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strconv.ParseFloat(s, 64)
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, err
	}
	return v, nil
}
