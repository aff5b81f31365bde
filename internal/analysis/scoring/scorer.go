// Package scoring combines indicator snapshots into composite technical
// assessments used by the rest of the trading pipeline.
package scoring

import (
	"fmt"

	"cryptopilot/internal/analysis"
	"cryptopilot/internal/models"
)

// Scorer evaluates indicator snapshots with a fixed additive rule table.
// Each rule contributes weighted evidence to a bullish or bearish tally;
// the composite score is the neutral midpoint 5 shifted by the net tally
// and clamped to [0, 10].
type Scorer struct{}

// NewScorer creates an indicator scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// tally accumulates weighted signal evidence across rule evaluations.
type tally struct {
	bullish float64
	bearish float64
	signals []string
}

func (t *tally) bull(weight float64, format string, args ...interface{}) {
	t.bullish += weight
	t.signals = append(t.signals, fmt.Sprintf(format, args...))
}

func (t *tally) bear(weight float64, format string, args ...interface{}) {
	t.bearish += weight
	t.signals = append(t.signals, fmt.Sprintf(format, args...))
}

func (t *tally) note(format string, args ...interface{}) {
	t.signals = append(t.signals, fmt.Sprintf(format, args...))
}

// Assess scores a single-timeframe snapshot. An invalid snapshot yields the
// degenerate assessment (score 0, WEAK, LOW confidence, no signals) without
// touching any numeric field.
func (s *Scorer) Assess(snap models.IndicatorSnapshot) analysis.TechnicalAssessment {
	if !snap.Valid {
		return degenerate()
	}

	var t tally
	evaluate(&t, snap, 1)

	net := t.bullish - t.bearish
	strength, confidence := classify(net, 3, 5, 1, 2)

	return analysis.TechnicalAssessment{
		Score:         clampScore(5 + net),
		NetScore:      net,
		BullishWeight: t.bullish,
		BearishWeight: t.bearish,
		Strength:      strength,
		Confidence:    confidence,
		Signals:       t.signals,
		Alignment:     analysis.NoData,
	}
}

// evaluate applies the full rule table to one snapshot, scaling every rule
// weight by the timeframe multiplier.
func evaluate(t *tally, snap models.IndicatorSnapshot, mult float64) {
	price := snap.CurrentPrice

	// Moving average stack.
	if price > snap.SMA20 && snap.SMA20 > snap.SMA50 {
		t.bull(2*mult, "uptrend: price above SMA20 above SMA50")
	} else if price < snap.SMA20 && snap.SMA20 < snap.SMA50 {
		t.bear(2*mult, "downtrend: price below SMA20 below SMA50")
	}

	if price > snap.EMA12 && snap.EMA12 > snap.EMA26 {
		t.bull(1*mult, "short-term EMAs aligned bullish")
	} else if price < snap.EMA12 && snap.EMA12 < snap.EMA26 {
		t.bear(1*mult, "short-term EMAs aligned bearish")
	}

	// RSI extremes.
	switch {
	case snap.RSI < 30:
		t.bull(2*mult, "RSI oversold at %.1f", snap.RSI)
	case snap.RSI > 70:
		t.bear(2*mult, "RSI overbought at %.1f", snap.RSI)
	case snap.RSI >= 40 && snap.RSI <= 60:
		t.note("RSI neutral at %.1f", snap.RSI)
	}

	// MACD crossover with histogram confirmation.
	if snap.MACD > snap.MACDSignal && snap.MACDHistogram > 0 {
		t.bull(2*mult, "MACD bullish crossover")
	} else if snap.MACD < snap.MACDSignal && snap.MACDHistogram < 0 {
		t.bear(2*mult, "MACD bearish crossover")
	}

	// Bollinger position. Above the upper band reads as overextension, not
	// strength.
	switch {
	case price > snap.BBUpper:
		t.bear(1*mult, "price above upper Bollinger band")
	case price < snap.BBLower:
		t.bull(1*mult, "price below lower Bollinger band")
	case price > snap.BBMiddle:
		t.bull(0.5*mult, "price above Bollinger midline")
	}

	// Stochastic extremes need both lines in the zone.
	if snap.StochK < 20 && snap.StochD < 20 {
		t.bull(1*mult, "stochastic oversold")
	} else if snap.StochK > 80 && snap.StochD > 80 {
		t.bear(1*mult, "stochastic overbought")
	}

	if snap.WilliamsR < -80 {
		t.bull(1*mult, "Williams %%R oversold")
	} else if snap.WilliamsR > -20 {
		t.bear(1*mult, "Williams %%R overbought")
	}

	// Volume surge confirms the direction of the daily move.
	if snap.CurrentVolume > 1.5*snap.VolumeMA {
		if snap.DailyChangePct > 0 {
			t.bull(1*mult, "volume surge on up move")
		} else if snap.DailyChangePct < 0 {
			t.bear(1*mult, "volume surge on down move")
		}
	}

	// Elevated realized volatility versus ATR is a caution flag.
	if snap.Volatility20 > 1.5*snap.ATR {
		t.bear(0.5*mult, "volatility elevated versus ATR")
	}

	// ADX gates the directional movement reading.
	if snap.ADX > 25 {
		if snap.PlusDI > snap.MinusDI {
			t.bull(2*mult, "strong trend with +DI dominant (ADX %.1f)", snap.ADX)
		} else if snap.MinusDI > snap.PlusDI {
			t.bear(2*mult, "strong trend with -DI dominant (ADX %.1f)", snap.ADX)
		}
	} else if snap.ADX < 20 {
		t.note("weak trend (ADX %.1f)", snap.ADX)
	}

	if price > snap.ParabolicSAR {
		t.bull(1*mult, "price above parabolic SAR")
	} else {
		t.bear(1*mult, "price at or below parabolic SAR")
	}

	if snap.DeMarker < 0.3 {
		t.bull(1*mult, "DeMarker oversold")
	} else if snap.DeMarker > 0.7 {
		t.bear(1*mult, "DeMarker overbought")
	}

	if price < snap.MAEnvLower {
		t.bull(1*mult, "price below MA envelope")
	} else if price > snap.MAEnvUpper {
		t.bear(1*mult, "price above MA envelope")
	}

	// Cumulative volume flow agreeing with the daily move.
	if snap.OBV > 0 && snap.DailyChangePct > 0 {
		t.bull(0.5*mult, "OBV confirms up move")
	} else if snap.OBV < 0 && snap.DailyChangePct < 0 {
		t.bear(0.5*mult, "OBV confirms down move")
	}

	if snap.DailyChangePct > 2 && snap.ADLine > 0 {
		t.bull(1*mult, "accumulation on strong up day")
	} else if snap.DailyChangePct < -2 && snap.ADLine < 0 {
		t.bear(1*mult, "distribution on strong down day")
	}
}

// classify maps a net score onto a strength and confidence grade using the
// given strong/weak thresholds and their confidence escalation points.
func classify(net, strong, strongHigh, weak, weakMed float64) (analysis.Strength, models.Confidence) {
	switch {
	case net >= strong:
		if net >= strongHigh {
			return analysis.StrongBullish, models.ConfidenceHigh
		}
		return analysis.StrongBullish, models.ConfidenceMedium
	case net >= weak:
		if net >= weakMed {
			return analysis.WeakBullish, models.ConfidenceMedium
		}
		return analysis.WeakBullish, models.ConfidenceLow
	case net <= -strong:
		if net <= -strongHigh {
			return analysis.StrongBearish, models.ConfidenceHigh
		}
		return analysis.StrongBearish, models.ConfidenceMedium
	case net <= -weak:
		if net <= -weakMed {
			return analysis.WeakBearish, models.ConfidenceMedium
		}
		return analysis.WeakBearish, models.ConfidenceLow
	default:
		return analysis.Neutral, models.ConfidenceLow
	}
}

func degenerate() analysis.TechnicalAssessment {
	return analysis.TechnicalAssessment{
		Score:      0,
		Strength:   analysis.Weak,
		Confidence: models.ConfidenceLow,
		Signals:    []string{},
		Alignment:  analysis.NoData,
	}
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}
