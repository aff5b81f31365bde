package indicators

// Latest-value oscillator calculators. Each returns the most recent value of
// the indicator and an ok flag; ok is false when the series is too short.

// RSI calculates the latest Relative Strength Index over the given period.
// Degenerate inputs (flat series, all gains, all losses) resolve to a bounded
// value rather than an error so downstream scoring never sees NaN.
func RSI(closes []float64, period int) (float64, bool) {
	if len(closes) < period+1 {
		return 0, false
	}

	var avgGain, avgLoss float64
	for i := len(closes) - period; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	// Avoid division by zero on one-sided series.
	if avgGain == 0 {
		avgGain = 0.0001
	}
	if avgLoss == 0 {
		avgLoss = 0.0001
	}

	rsi := 100 - (100 / (1 + avgGain/avgLoss))
	return clampFloat(rsi, 0, 100), true
}

// MACD calculates the latest MACD line, signal line, and histogram.
func MACD(closes []float64, fast, slow, signal int) (macd, signalLine, histogram float64, ok bool) {
	if len(closes) < slow+signal {
		return 0, 0, 0, false
	}

	fastSeries := emaSeries(closes, fast)
	slowSeries := emaSeries(closes, slow)

	macdSeries := make([]float64, len(closes))
	for i := range closes {
		macdSeries[i] = fastSeries[i] - slowSeries[i]
	}
	signalSeries := emaSeries(macdSeries, signal)

	n := len(closes) - 1
	return macdSeries[n], signalSeries[n], macdSeries[n] - signalSeries[n], true
}

// Stochastic calculates the latest %K and %D of the stochastic oscillator.
func Stochastic(highs, lows, closes []float64, kPeriod, dPeriod int) (k, d float64, ok bool) {
	if len(closes) < kPeriod+dPeriod-1 {
		return 0, 0, false
	}

	kValues := make([]float64, dPeriod)
	for j := 0; j < dPeriod; j++ {
		end := len(closes) - j
		k, kOK := rawStochK(highs[:end], lows[:end], closes[:end], kPeriod)
		if !kOK {
			return 0, 0, false
		}
		kValues[dPeriod-1-j] = k
	}

	return kValues[dPeriod-1], mean(kValues), true
}

func rawStochK(highs, lows, closes []float64, period int) (float64, bool) {
	if len(closes) < period {
		return 0, false
	}
	hh := highs[len(highs)-period]
	ll := lows[len(lows)-period]
	for i := len(highs) - period; i < len(highs); i++ {
		if highs[i] > hh {
			hh = highs[i]
		}
		if lows[i] < ll {
			ll = lows[i]
		}
	}
	if hh == ll {
		return 50, true
	}
	return 100 * (closes[len(closes)-1] - ll) / (hh - ll), true
}

// WilliamsR calculates the latest Williams %R, in [-100, 0].
func WilliamsR(highs, lows, closes []float64, period int) (float64, bool) {
	if len(closes) < period {
		return 0, false
	}
	hh := highs[len(highs)-period]
	ll := lows[len(lows)-period]
	for i := len(highs) - period; i < len(highs); i++ {
		if highs[i] > hh {
			hh = highs[i]
		}
		if lows[i] < ll {
			ll = lows[i]
		}
	}
	if hh == ll {
		return -50, true
	}
	return -100 * (hh - closes[len(closes)-1]) / (hh - ll), true
}

// DeMarker calculates the latest DeMarker value, in [0, 1].
func DeMarker(highs, lows []float64, period int) (float64, bool) {
	if len(highs) < period+1 || len(lows) < period+1 {
		return 0, false
	}

	var deMax, deMin float64
	for i := len(highs) - period; i < len(highs); i++ {
		if highs[i] > highs[i-1] {
			deMax += highs[i] - highs[i-1]
		}
		if lows[i] < lows[i-1] {
			deMin += lows[i-1] - lows[i]
		}
	}
	if deMax+deMin == 0 {
		return 0.5, true
	}
	return deMax / (deMax + deMin), true
}

// emaSeries computes an exponential moving average series with the standard
// 2/(period+1) smoothing, seeded from the first value.
func emaSeries(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / (float64(period) + 1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}
