package indicators

// Volume-based calculators.

// VolumeMA calculates the latest simple moving average of volume.
func VolumeMA(volumes []float64, period int) (float64, bool) {
	if len(volumes) < period || period <= 0 {
		return 0, false
	}
	return mean(volumes[len(volumes)-period:]), true
}

// OBV calculates On-Balance Volume accumulated over the full series.
// Volume is added on up closes and subtracted on down closes.
func OBV(closes, volumes []float64) (float64, bool) {
	n := len(closes)
	if n < 2 || len(volumes) != n {
		return 0, false
	}

	var obv float64
	for i := 1; i < n; i++ {
		switch {
		case closes[i] > closes[i-1]:
			obv += volumes[i]
		case closes[i] < closes[i-1]:
			obv -= volumes[i]
		}
	}
	return obv, true
}

// ADLine calculates the Accumulation/Distribution line accumulated over the
// full series using the close location value of each bar.
func ADLine(highs, lows, closes, volumes []float64) (float64, bool) {
	n := len(closes)
	if n == 0 || len(highs) != n || len(lows) != n || len(volumes) != n {
		return 0, false
	}

	var ad float64
	for i := 0; i < n; i++ {
		spread := highs[i] - lows[i]
		if spread == 0 {
			continue
		}
		clv := ((closes[i] - lows[i]) - (highs[i] - closes[i])) / spread
		ad += clv * volumes[i]
	}
	return ad, true
}
