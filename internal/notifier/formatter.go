package notifier

import (
	"fmt"
	"math"
	"strings"

	"QEngine/internal/model"

	"github.com/dustin/go-humanize"
)

// TargetPrice applies the target percent as a distance magnitude in the
// signal's direction: above the price for LONG, below it for SHORT.
func TargetPrice(rec *model.SignalRecord, price float64) float64 {
	d := math.Abs(rec.TargetPct) / 100
	if rec.Signal == model.DirectionShort {
		return price * (1 - d)
	}
	return price * (1 + d)
}

// StopPrice applies the stop percent with the inverted sign convention:
// below the price for LONG, above it for SHORT.
func StopPrice(rec *model.SignalRecord, price float64) float64 {
	d := math.Abs(rec.StopPct) / 100
	if rec.Signal == model.DirectionShort {
		return price * (1 + d)
	}
	return price * (1 - d)
}

func directionMarker(d model.Direction) string {
	switch d {
	case model.DirectionLong:
		return "UP"
	case model.DirectionShort:
		return "DOWN"
	default:
		return "NEUTRAL"
	}
}

// FormatSignal renders the final chat message for a signal at the given
// price. HOLD records show price and reason only; directional records
// add the computed target and stop levels. Output is deterministic for
// identical inputs.
func FormatSignal(rec *model.SignalRecord, price float64) string {
	var b strings.Builder

	fmt.Fprintf(&b, "*%s/USDT* → *%s* %s\n", rec.Symbol, rec.Signal, directionMarker(rec.Signal))
	if price > 0 {
		fmt.Fprintf(&b, "Price: `$%s`\n", humanize.CommafWithDigits(price, 2))
	}

	if rec.Signal != model.DirectionHold {
		fmt.Fprintf(&b, "Target: `%+.1f%%` ($%s) | Stop: `%+.1f%%` ($%s)\n",
			rec.TargetPct, humanize.CommafWithDigits(TargetPrice(rec, price), 2),
			rec.StopPct, humanize.CommafWithDigits(StopPrice(rec, price), 2))
		fmt.Fprintf(&b, "Confidence: `%d%%`\n", rec.Confidence)
	}

	fmt.Fprintf(&b, "\n_%s_", rec.Reason)
	return b.String()
}

// UpdateKeyboard is the single-row keyboard whose one button asks the
// bot to regenerate the signal for the same ticker in place.
func UpdateKeyboard(symbol string) *InlineKeyboard {
	return &InlineKeyboard{
		InlineKeyboard: [][]InlineButton{{
			{Text: "Update", CallbackData: "UPDATE " + symbol},
		}},
	}
}
