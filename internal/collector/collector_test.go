package collector

import (
	"errors"
	"testing"
	"time"
)

func TestNormalizeSymbol(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"btc", "BTC"},
		{"BTCUSDT", "BTC"},
		{" eth ", "ETH"},
		{"solusdt", "SOL"},
	}
	for _, tt := range tests {
		if got := NormalizeSymbol(tt.in); got != tt.want {
			t.Errorf("NormalizeSymbol(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidSymbol(t *testing.T) {
	tests := []struct {
		symbol string
		want   bool
	}{
		{"BTC", true},
		{"1000PEPE", true},
		{"B", false},
		{"TOOLONGSYMBOL", false},
		{"BT-C", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidSymbol(tt.symbol); got != tt.want {
			t.Errorf("ValidSymbol(%q) = %v, want %v", tt.symbol, got, tt.want)
		}
	}
}

func TestCollector_SnapshotIndicators(t *testing.T) {
	mock := &MockFetcher{
		Bars:      GenerateBars(50000, 101),
		Funding:   0.01,
		LongShort: 1.8,
	}
	col := NewCollector(mock, 100, 0)

	snap, err := col.Snapshot("btcusdt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Symbol != "BTC" {
		t.Errorf("expected normalized symbol BTC, got %s", snap.Symbol)
	}
	if snap.Price <= 0 {
		t.Errorf("expected positive price, got %.2f", snap.Price)
	}
	if snap.RSI < 0 || snap.RSI > 100 {
		t.Errorf("RSI out of range: %.2f", snap.RSI)
	}
	if snap.FundingRate != 0.01 || snap.LongShort != 1.8 {
		t.Errorf("derivative fields not carried through: funding=%.4f ls=%.2f", snap.FundingRate, snap.LongShort)
	}
	// GenerateBars drifts upward, so the fast average leads the slow one.
	if snap.EMA20 <= snap.EMA50 {
		t.Errorf("expected EMA20 > EMA50 on an up-drifting series, got %.2f vs %.2f", snap.EMA20, snap.EMA50)
	}
}

func TestCollector_DropsOpenBar(t *testing.T) {
	mock := &MockFetcher{Bars: GenerateBars(100, 101), Funding: 0, LongShort: 1}
	col := NewCollector(mock, 100, 0)
	snap, err := col.Snapshot("BTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The final (still-open) bar must not be the priced one.
	open := mock.Bars[len(mock.Bars)-1].Close
	closed := mock.Bars[len(mock.Bars)-2].Close
	if snap.Price == open || snap.Price != closed {
		t.Errorf("expected price from last closed bar %.4f, got %.4f", closed, snap.Price)
	}
}

func TestCollector_CacheServesWithinTTL(t *testing.T) {
	mock := &MockFetcher{Bars: GenerateBars(100, 101), Funding: 0, LongShort: 1}
	col := NewCollector(mock, 100, time.Minute)

	if _, err := col.Snapshot("BTC"); err != nil {
		t.Fatalf("first snapshot: %v", err)
	}
	if _, err := col.Snapshot("btcusdt"); err != nil {
		t.Fatalf("second snapshot: %v", err)
	}
	if mock.KlineCalls != 1 {
		t.Errorf("expected 1 kline fetch for cached symbol, got %d", mock.KlineCalls)
	}
}

func TestCollector_RefreshBypassesCache(t *testing.T) {
	mock := &MockFetcher{Bars: GenerateBars(100, 101), Funding: 0, LongShort: 1}
	col := NewCollector(mock, 100, time.Minute)

	if _, err := col.Snapshot("BTC"); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if _, err := col.Refresh("BTC"); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if mock.KlineCalls != 2 {
		t.Errorf("expected refresh to hit the exchange again, got %d fetches", mock.KlineCalls)
	}
}

func TestCollector_FailureIsAtomic(t *testing.T) {
	mock := &MockFetcher{Err: errors.New("connection refused")}
	col := NewCollector(mock, 100, time.Minute)

	snap, err := col.Snapshot("BTC")
	if snap != nil {
		t.Error("expected no partial snapshot on fetch failure")
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}

	// A failed fetch must not poison the cache.
	mock.Err = nil
	mock.Bars = GenerateBars(100, 101)
	if _, err := col.Snapshot("BTC"); err != nil {
		t.Fatalf("snapshot after recovery: %v", err)
	}
}
