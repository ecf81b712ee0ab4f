package calculator

// CalculateRSI computes the RSI over the trailing `period` deltas using
// simple averages of gains and losses. Returns the neutral 50.0 when
// fewer than period+1 samples are available, and 100.0 when the window
// contains no losses.
func CalculateRSI(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period+1 {
		return 50.0
	}

	var up, down float64
	for i := len(closes) - period; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			up += change
		} else {
			down -= change // make positive
		}
	}
	up /= float64(period)
	down /= float64(period)

	if down == 0 {
		return 100.0
	}
	rs := up / down
	return 100.0 - 100.0/(1.0+rs)
}
