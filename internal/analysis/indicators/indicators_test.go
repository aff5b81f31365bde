package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptopilot/internal/models"
)

func TestSMA(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5}

	v, ok := SMA(closes, 3)
	require.True(t, ok)
	assert.InDelta(t, 4.0, v, 1e-9)

	_, ok = SMA(closes, 6)
	assert.False(t, ok)
}

func TestEMAConvergesToConstant(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 42.0
	}
	v, ok := EMA(closes, 12)
	require.True(t, ok)
	assert.InDelta(t, 42.0, v, 1e-9)
}

func TestRSI(t *testing.T) {
	t.Run("all gains near 100", func(t *testing.T) {
		closes := make([]float64, 20)
		for i := range closes {
			closes[i] = 100 + float64(i)
		}
		v, ok := RSI(closes, 14)
		require.True(t, ok)
		assert.Greater(t, v, 99.0)
	})

	t.Run("all losses near 0", func(t *testing.T) {
		closes := make([]float64, 20)
		for i := range closes {
			closes[i] = 100 - float64(i)
		}
		v, ok := RSI(closes, 14)
		require.True(t, ok)
		assert.Less(t, v, 1.0)
	})

	t.Run("flat series stays bounded", func(t *testing.T) {
		closes := make([]float64, 20)
		for i := range closes {
			closes[i] = 100
		}
		v, ok := RSI(closes, 14)
		require.True(t, ok)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	})

	t.Run("insufficient data", func(t *testing.T) {
		_, ok := RSI([]float64{1, 2, 3}, 14)
		assert.False(t, ok)
	})
}

func TestMACDHistogramIsLineMinusSignal(t *testing.T) {
	closes := make([]float64, 80)
	for i := range closes {
		closes[i] = 100 + 5*math.Sin(float64(i)/7)
	}
	macd, signal, hist, ok := MACD(closes, 12, 26, 9)
	require.True(t, ok)
	assert.InDelta(t, macd-signal, hist, 1e-9)
}

func TestStochasticBounds(t *testing.T) {
	highs := make([]float64, 30)
	lows := make([]float64, 30)
	closes := make([]float64, 30)
	for i := range highs {
		base := 100 + 3*math.Sin(float64(i)/4)
		highs[i] = base + 1
		lows[i] = base - 1
		closes[i] = base
	}
	k, d, ok := Stochastic(highs, lows, closes, 14, 3)
	require.True(t, ok)
	assert.GreaterOrEqual(t, k, 0.0)
	assert.LessOrEqual(t, k, 100.0)
	assert.GreaterOrEqual(t, d, 0.0)
	assert.LessOrEqual(t, d, 100.0)
}

func TestWilliamsRAtExtremes(t *testing.T) {
	highs := make([]float64, 20)
	lows := make([]float64, 20)
	closes := make([]float64, 20)
	for i := range highs {
		highs[i] = 110
		lows[i] = 90
		closes[i] = 100
	}

	closes[19] = 110
	v, ok := WilliamsR(highs, lows, closes, 14)
	require.True(t, ok)
	assert.InDelta(t, 0.0, v, 1e-9)

	closes[19] = 90
	v, ok = WilliamsR(highs, lows, closes, 14)
	require.True(t, ok)
	assert.InDelta(t, -100.0, v, 1e-9)
}

func TestOBV(t *testing.T) {
	closes := []float64{10, 11, 10, 10, 12}
	vols := []float64{100, 200, 300, 400, 500}
	v, ok := OBV(closes, vols)
	require.True(t, ok)
	// +200 -300 +0 +500
	assert.InDelta(t, 400.0, v, 1e-9)
}

func TestADLineSkipsZeroSpreadBars(t *testing.T) {
	highs := []float64{10, 10}
	lows := []float64{10, 8}
	closes := []float64{10, 10}
	vols := []float64{100, 100}
	v, ok := ADLine(highs, lows, closes, vols)
	require.True(t, ok)
	// First bar has zero spread; second closes at its high, CLV=1.
	assert.InDelta(t, 100.0, v, 1e-9)
}

func TestATRFlatSeriesIsRange(t *testing.T) {
	highs := make([]float64, 20)
	lows := make([]float64, 20)
	closes := make([]float64, 20)
	for i := range highs {
		highs[i] = 105
		lows[i] = 95
		closes[i] = 100
	}
	v, ok := ATR(highs, lows, closes, 14)
	require.True(t, ok)
	assert.InDelta(t, 10.0, v, 1e-9)
}

func TestBollingerBandOrdering(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + 2*math.Sin(float64(i))
	}
	upper, middle, lower, ok := Bollinger(closes, 20, 2)
	require.True(t, ok)
	assert.Greater(t, upper, middle)
	assert.Less(t, lower, middle)
}

func TestEnvelopesOffset(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 200
	}
	upper, middle, lower, ok := Envelopes(closes, 20, 2.5)
	require.True(t, ok)
	assert.InDelta(t, 200.0, middle, 1e-9)
	assert.InDelta(t, 205.0, upper, 1e-9)
	assert.InDelta(t, 195.0, lower, 1e-9)
}

func TestADXDirectionalComponents(t *testing.T) {
	n := 60
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		base := 100 + float64(i)*2
		highs[i] = base + 1
		lows[i] = base - 1
		closes[i] = base
	}
	adx, plusDI, minusDI, ok := ADX(highs, lows, closes, 14)
	require.True(t, ok)
	assert.Greater(t, plusDI, minusDI, "steady uptrend should favor +DI")
	assert.Greater(t, adx, 20.0, "sustained trend should produce a strong ADX")
}

func TestDeMarker(t *testing.T) {
	highs := make([]float64, 20)
	lows := make([]float64, 20)
	for i := range highs {
		highs[i] = 100 + float64(i)
		lows[i] = 90 + float64(i)
	}
	v, ok := DeMarker(highs, lows, 14)
	require.True(t, ok)
	assert.InDelta(t, 1.0, v, 1e-9, "rising highs with rising lows is pure demand")
}

func TestBuildSnapshot(t *testing.T) {
	t.Run("insufficient history is invalid", func(t *testing.T) {
		candles := syntheticCandles(20)
		snap := BuildSnapshot("BTC", models.TimeframeShort, candles)
		assert.False(t, snap.Valid)
		assert.Zero(t, snap.RSI)
	})

	t.Run("full history populates everything", func(t *testing.T) {
		candles := syntheticCandles(120)
		snap := BuildSnapshot("BTC", models.TimeframeLong, candles)
		require.True(t, snap.Valid)
		assert.Equal(t, "BTC", snap.Symbol)
		assert.Equal(t, models.TimeframeLong, snap.Timeframe)
		assert.Equal(t, candles[len(candles)-1].Close, snap.CurrentPrice)
		assert.NotZero(t, snap.SMA20)
		assert.NotZero(t, snap.SMA50)
		assert.NotZero(t, snap.ATR)
		assert.GreaterOrEqual(t, snap.RSI, 0.0)
		assert.LessOrEqual(t, snap.RSI, 100.0)
		assert.Greater(t, snap.BBUpper, snap.BBLower)
		assert.Greater(t, snap.MAEnvUpper, snap.MAEnvLower)
	})
}

func syntheticCandles(n int) []models.Candle {
	candles := make([]models.Candle, n)
	ts := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		base := 100 + 10*math.Sin(float64(i)/9) + float64(i)*0.1
		candles[i] = models.Candle{
			Timestamp: ts.Add(time.Duration(i) * 5 * time.Minute),
			Open:      base - 0.5,
			High:      base + 1.5,
			Low:       base - 1.5,
			Close:     base,
			Volume:    int64(1000 + 50*i%400),
		}
	}
	return candles
}
