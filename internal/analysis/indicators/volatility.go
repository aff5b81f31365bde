package indicators

// Latest-value volatility calculators.

// ATR calculates the latest Average True Range over the given period.
func ATR(highs, lows, closes []float64, period int) (float64, bool) {
	n := len(closes)
	if n < period+1 || len(highs) != n || len(lows) != n {
		return 0, false
	}

	var total float64
	for i := n - period; i < n; i++ {
		total += trueRange(highs[i], lows[i], closes[i-1])
	}
	return total / float64(period), true
}

// StdDev calculates the latest rolling standard deviation over the period.
func StdDev(values []float64, period int) (float64, bool) {
	if len(values) < period || period < 2 {
		return 0, false
	}
	return stdDev(values[len(values)-period:]), true
}

// Bollinger calculates the latest Bollinger Bands: an SMA with bands at the
// given number of standard deviations.
func Bollinger(closes []float64, period int, numStdDev float64) (upper, middle, lower float64, ok bool) {
	sma, smaOK := SMA(closes, period)
	if !smaOK {
		return 0, 0, 0, false
	}
	sd, sdOK := StdDev(closes, period)
	if !sdOK {
		return 0, 0, 0, false
	}
	return sma + sd*numStdDev, sma, sma - sd*numStdDev, true
}
