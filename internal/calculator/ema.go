package calculator

import "QEngine/internal/model"

// CalculateEMA computes the exponential moving average with smoothing
// factor 2/(period+1), seeded with the first value of the window.
// Returns 0 for an empty input.
func CalculateEMA(values []float64, period int) float64 {
	if len(values) == 0 || period <= 0 {
		return 0
	}
	k := 2.0 / float64(period+1)
	ema := values[0]
	for _, v := range values[1:] {
		ema = v*k + ema*(1-k)
	}
	return ema
}

// CalculateMACD returns the MACD line (EMA12 − EMA26 of closes) and the
// histogram against a signal line derived from the current MACD value
// repeated nine times. A constant series has an EMA equal to itself, so
// the histogram collapses to zero; this matches the behavior the rest
// of the pipeline was tuned against, not a rolling 9-period signal line.
func CalculateMACD(closes []float64) (macd, histogram float64) {
	macd = CalculateEMA(closes, 12) - CalculateEMA(closes, 26)

	repeated := make([]float64, 9)
	for i := range repeated {
		repeated[i] = macd
	}
	signal := CalculateEMA(repeated, 9)
	return macd, macd - signal
}

// CrossDirection reports the EMA20/EMA50 cross: bull when the fast
// average sits above the slow one. No hysteresis.
func CrossDirection(ema20, ema50 float64) model.Trend {
	if ema20 > ema50 {
		return model.TrendBull
	}
	return model.TrendBear
}
