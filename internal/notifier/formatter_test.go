package notifier

import (
	"math"
	"strings"
	"testing"

	"QEngine/internal/model"
)

func longRecord() *model.SignalRecord {
	return &model.SignalRecord{
		Symbol:     "BTC",
		Signal:     model.DirectionLong,
		TargetPct:  5.0,
		StopPct:    -2.0,
		Confidence: 91,
		Reason:     "RSI rising | funding flat",
	}
}

func TestPriceLevels_Long(t *testing.T) {
	rec := longRecord()
	if got := TargetPrice(rec, 100); math.Abs(got-105) > 1e-9 {
		t.Errorf("LONG target: expected 105, got %.4f", got)
	}
	if got := StopPrice(rec, 100); math.Abs(got-98) > 1e-9 {
		t.Errorf("LONG stop: expected 98, got %.4f", got)
	}
}

func TestPriceLevels_Short(t *testing.T) {
	rec := longRecord()
	rec.Signal = model.DirectionShort
	if got := TargetPrice(rec, 100); math.Abs(got-95) > 1e-9 {
		t.Errorf("SHORT target: expected 95, got %.4f", got)
	}
	if got := StopPrice(rec, 100); math.Abs(got-102) > 1e-9 {
		t.Errorf("SHORT stop: expected 102, got %.4f", got)
	}
}

func TestFormatSignal_Long(t *testing.T) {
	text := FormatSignal(longRecord(), 100)
	for _, want := range []string{"*BTC/USDT*", "*LONG*", "105", "98", "91%", "RSI rising"} {
		if !strings.Contains(text, want) {
			t.Errorf("message missing %q:\n%s", want, text)
		}
	}
}

func TestFormatSignal_HoldOmitsLevels(t *testing.T) {
	rec := model.Hold("BTC", "Timeout")
	text := FormatSignal(rec, 50000)
	if strings.Contains(text, "Target") || strings.Contains(text, "Stop") || strings.Contains(text, "Confidence") {
		t.Errorf("HOLD message should carry no levels:\n%s", text)
	}
	if !strings.Contains(text, "Timeout") {
		t.Errorf("HOLD message should carry the reason:\n%s", text)
	}
}

func TestFormatSignal_Idempotent(t *testing.T) {
	a := FormatSignal(longRecord(), 43210.98)
	b := FormatSignal(longRecord(), 43210.98)
	if a != b {
		t.Error("identical inputs must render byte-identical output")
	}
}

func TestUpdateKeyboard(t *testing.T) {
	kb := UpdateKeyboard("ETH")
	if len(kb.InlineKeyboard) != 1 || len(kb.InlineKeyboard[0]) != 1 {
		t.Fatalf("expected a single-button row, got %+v", kb.InlineKeyboard)
	}
	btn := kb.InlineKeyboard[0][0]
	if btn.CallbackData != "UPDATE ETH" {
		t.Errorf("callback payload should name the action and ticker, got %q", btn.CallbackData)
	}
}
