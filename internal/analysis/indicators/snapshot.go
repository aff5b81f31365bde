package indicators

import (
	"time"

	"cryptopilot/internal/models"
)

// Minimum candle history required to populate every indicator in a snapshot.
// SMA50 is the longest lookback; ATR and ADX need one extra bar for the
// previous close.
const MinCandles = 51

// BuildSnapshot computes the full indicator set from candle history. When the
// history is too short the returned snapshot has Valid=false and zeroed
// numeric fields.
func BuildSnapshot(symbol string, timeframe models.Timeframe, candles []models.Candle) models.IndicatorSnapshot {
	snap := models.IndicatorSnapshot{
		Symbol:    symbol,
		Timeframe: timeframe,
		FetchedAt: time.Now(),
	}
	if len(candles) < MinCandles {
		return snap
	}

	closes := closePrices(candles)
	highs := highPrices(candles)
	lows := lowPrices(candles)
	vols := volumes(candles)

	n := len(closes)
	snap.CurrentPrice = closes[n-1]
	snap.PreviousClose = closes[n-2]
	snap.CurrentVolume = vols[n-1]
	if snap.PreviousClose != 0 {
		snap.DailyChangePct = (snap.CurrentPrice - snap.PreviousClose) / snap.PreviousClose * 100
	}

	snap.SMA20, _ = SMA(closes, 20)
	snap.SMA50, _ = SMA(closes, 50)
	snap.EMA12, _ = EMA(closes, 12)
	snap.EMA26, _ = EMA(closes, 26)

	snap.RSI, _ = RSI(closes, 14)
	snap.MACD, snap.MACDSignal, snap.MACDHistogram, _ = MACD(closes, 12, 26, 9)

	snap.BBUpper, snap.BBMiddle, snap.BBLower, _ = Bollinger(closes, 20, 2)

	snap.StochK, snap.StochD, _ = Stochastic(highs, lows, closes, 14, 3)
	snap.WilliamsR, _ = WilliamsR(highs, lows, closes, 14)

	snap.VolumeMA, _ = VolumeMA(vols, 20)
	snap.OBV, _ = OBV(closes, vols)
	snap.ADLine, _ = ADLine(highs, lows, closes, vols)
	snap.ATR, _ = ATR(highs, lows, closes, 14)
	snap.Volatility20, _ = StdDev(closes, 20)

	snap.ADX, snap.PlusDI, snap.MinusDI, _ = ADX(highs, lows, closes, 14)

	snap.ParabolicSAR, _ = ParabolicSAR(highs, lows, 0.02, 0.2)
	snap.DeMarker, _ = DeMarker(highs, lows, 14)
	snap.MAEnvUpper, _, snap.MAEnvLower, _ = Envelopes(closes, 20, 2.5)

	snap.Valid = true
	return snap
}
