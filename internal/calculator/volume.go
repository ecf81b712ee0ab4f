package calculator

const pocBins = 20

// VolumeSpikeRatio divides the most recent bar's volume by the mean
// volume of all prior bars. Returns 1.0 when there is no history to
// compare against.
func VolumeSpikeRatio(volumes []float64) float64 {
	if len(volumes) < 2 {
		return 1.0
	}
	var sum float64
	for _, v := range volumes[:len(volumes)-1] {
		sum += v
	}
	mean := sum / float64(len(volumes)-1)
	if mean == 0 {
		return 1.0
	}
	return volumes[len(volumes)-1] / mean
}

// PointOfControl partitions the observed close range into 20 bins,
// accumulates each bar's volume into the nearest bin, and returns the
// price of the bin holding the most volume. Ties resolve to the first
// bin reaching the maximum. Degenerate input (empty series or a flat
// price range) returns the last close.
func PointOfControl(closes, volumes []float64) float64 {
	if len(closes) == 0 || len(closes) != len(volumes) {
		return 0
	}
	low, high := closes[0], closes[0]
	for _, c := range closes {
		if c < low {
			low = c
		}
		if c > high {
			high = c
		}
	}
	if high == low {
		return closes[len(closes)-1]
	}

	width := (high - low) / float64(pocBins)
	bins := make([]float64, pocBins)
	for i, c := range closes {
		idx := int((c - low) / width)
		if idx >= pocBins {
			idx = pocBins - 1
		}
		bins[idx] += volumes[i]
	}

	best := 0
	for i, v := range bins {
		if v > bins[best] {
			best = i
		}
	}
	// Center of the winning bin.
	return low + (float64(best)+0.5)*width
}
