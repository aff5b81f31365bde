package indicators

// Latest-value trend calculators.

// SMA calculates the latest simple moving average over the given period.
func SMA(values []float64, period int) (float64, bool) {
	if len(values) < period || period <= 0 {
		return 0, false
	}
	return mean(values[len(values)-period:]), true
}

// EMA calculates the latest exponential moving average over the given period.
func EMA(values []float64, period int) (float64, bool) {
	if len(values) < period || period <= 0 {
		return 0, false
	}
	series := emaSeries(values, period)
	return series[len(series)-1], true
}

// Envelopes calculates moving average envelopes: an SMA shifted up and down
// by a fixed percentage (e.g. 2.5 means 2.5%).
func Envelopes(closes []float64, period int, percent float64) (upper, middle, lower float64, ok bool) {
	sma, smaOK := SMA(closes, period)
	if !smaOK {
		return 0, 0, 0, false
	}
	offset := sma * percent / 100
	return sma + offset, sma, sma - offset, true
}

// ParabolicSAR calculates the latest Parabolic Stop-and-Reverse value using
// the classic acceleration-factor recurrence.
func ParabolicSAR(highs, lows []float64, acceleration, maximum float64) (float64, bool) {
	if len(highs) != len(lows) || len(highs) < 3 {
		return 0, false
	}

	sar := lows[0]
	ep := highs[0]
	af := acceleration
	uptrend := true

	for i := 2; i < len(highs); i++ {
		if uptrend {
			sar = sar + af*(ep-sar)
			if lows[i] < sar {
				uptrend = false
				sar = ep
				ep = lows[i]
				af = acceleration
			} else if highs[i] > ep {
				ep = highs[i]
				af = minFloat(maximum, af+acceleration)
			}
		} else {
			sar = sar - af*(sar-ep)
			if highs[i] > sar {
				uptrend = true
				sar = ep
				ep = highs[i]
				af = acceleration
			} else if lows[i] < ep {
				ep = lows[i]
				af = minFloat(maximum, af+acceleration)
			}
		}
	}

	return sar, true
}

// ADX calculates the latest Average Directional Index with its +DI and -DI
// components. Requires at least 2*period candles.
func ADX(highs, lows, closes []float64, period int) (adx, plusDI, minusDI float64, ok bool) {
	n := len(closes)
	if n < period*2 || len(highs) != n || len(lows) != n {
		return 0, 0, 0, false
	}

	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	tr := make([]float64, n)
	for i := 1; i < n; i++ {
		up := highs[i] - highs[i-1]
		down := lows[i-1] - lows[i]
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
		tr[i] = trueRange(highs[i], lows[i], closes[i-1])
	}

	// Wilder smoothing of DM and TR.
	alpha := 1.0 / float64(period)
	smPlus := mean(plusDM[1 : period+1])
	smMinus := mean(minusDM[1 : period+1])
	smTR := mean(tr[1 : period+1])
	dx := make([]float64, 0, n-period)

	for i := period + 1; i < n; i++ {
		smPlus = smPlus + alpha*(plusDM[i]-smPlus)
		smMinus = smMinus + alpha*(minusDM[i]-smMinus)
		smTR = smTR + alpha*(tr[i]-smTR)

		if smTR == 0 {
			dx = append(dx, 0)
			continue
		}
		pdi := 100 * smPlus / smTR
		mdi := 100 * smMinus / smTR
		den := pdi + mdi
		if den == 0 {
			den = 1
		}
		dx = append(dx, 100*absFloat(pdi-mdi)/den)
		plusDI, minusDI = pdi, mdi
	}

	if len(dx) == 0 {
		return 0, 0, 0, false
	}
	adxVal := dx[0]
	for _, v := range dx[1:] {
		adxVal = adxVal + alpha*(v-adxVal)
	}

	return adxVal, plusDI, minusDI, true
}

func trueRange(high, low, prevClose float64) float64 {
	tr := high - low
	if d := absFloat(high - prevClose); d > tr {
		tr = d
	}
	if d := absFloat(low - prevClose); d > tr {
		tr = d
	}
	return tr
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func absFloat(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
