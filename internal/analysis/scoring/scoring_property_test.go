package scoring

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"cryptopilot/internal/analysis"
	"cryptopilot/internal/models"
)

// Properties:
// - composite scores stay in [0, 10] and equal the clamped shifted net score
// - strength classification is consistent with the net score
// - weight tallies are non-negative
// - invalid snapshots always produce the degenerate assessment

// snapshotGen generates valid snapshots across wide but realistic ranges.
func snapshotGen() gopter.Gen {
	return gen.Struct(reflect.TypeOf(models.IndicatorSnapshot{}), map[string]gopter.Gen{
		"CurrentPrice":   gen.Float64Range(1, 1000),
		"PreviousClose":  gen.Float64Range(1, 1000),
		"DailyChangePct": gen.Float64Range(-10, 10),
		"CurrentVolume":  gen.Float64Range(0, 1e7),
		"SMA20":          gen.Float64Range(1, 1000),
		"SMA50":          gen.Float64Range(1, 1000),
		"EMA12":          gen.Float64Range(1, 1000),
		"EMA26":          gen.Float64Range(1, 1000),
		"RSI":            gen.Float64Range(0, 100),
		"MACD":           gen.Float64Range(-20, 20),
		"MACDSignal":     gen.Float64Range(-20, 20),
		"MACDHistogram":  gen.Float64Range(-10, 10),
		"BBUpper":        gen.Float64Range(1, 1200),
		"BBMiddle":       gen.Float64Range(1, 1000),
		"BBLower":        gen.Float64Range(1, 900),
		"StochK":         gen.Float64Range(0, 100),
		"StochD":         gen.Float64Range(0, 100),
		"WilliamsR":      gen.Float64Range(-100, 0),
		"VolumeMA":       gen.Float64Range(1, 1e7),
		"OBV":            gen.Float64Range(-1e8, 1e8),
		"ADLine":         gen.Float64Range(-1e8, 1e8),
		"ATR":            gen.Float64Range(0.01, 100),
		"Volatility20":   gen.Float64Range(0.01, 100),
		"ADX":            gen.Float64Range(0, 100),
		"PlusDI":         gen.Float64Range(0, 100),
		"MinusDI":        gen.Float64Range(0, 100),
		"ParabolicSAR":   gen.Float64Range(1, 1000),
		"DeMarker":       gen.Float64Range(0, 1),
		"MAEnvUpper":     gen.Float64Range(1, 1200),
		"MAEnvLower":     gen.Float64Range(1, 900),
	}).Map(func(s models.IndicatorSnapshot) models.IndicatorSnapshot {
		s.Symbol = "X"
		s.Timeframe = models.TimeframeShort
		s.Valid = true
		return s
	})
}

func strengthConsistent(a analysis.TechnicalAssessment) bool {
	switch a.Strength {
	case analysis.StrongBullish:
		return a.NetScore >= 3
	case analysis.WeakBullish:
		return a.NetScore >= 1 && a.NetScore < 3
	case analysis.StrongBearish:
		return a.NetScore <= -3
	case analysis.WeakBearish:
		return a.NetScore <= -1 && a.NetScore > -3
	case analysis.Neutral:
		return a.NetScore > -1 && a.NetScore < 1
	default:
		return false
	}
}

func TestScoringProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)
	scorer := NewScorer()

	properties.Property("score bounded and derived from net score", prop.ForAll(
		func(snap models.IndicatorSnapshot) bool {
			a := scorer.Assess(snap)
			if a.Score < 0 || a.Score > 10 {
				return false
			}
			want := clampScore(5 + a.NetScore)
			return a.Score == want
		},
		snapshotGen(),
	))

	properties.Property("strength matches net score", prop.ForAll(
		func(snap models.IndicatorSnapshot) bool {
			return strengthConsistent(scorer.Assess(snap))
		},
		snapshotGen(),
	))

	properties.Property("weights are non-negative and reconcile", prop.ForAll(
		func(snap models.IndicatorSnapshot) bool {
			a := scorer.Assess(snap)
			return a.BullishWeight >= 0 && a.BearishWeight >= 0 &&
				a.NetScore == a.BullishWeight-a.BearishWeight
		},
		snapshotGen(),
	))

	properties.Property("invalid snapshots degenerate regardless of fields", prop.ForAll(
		func(snap models.IndicatorSnapshot) bool {
			snap.Valid = false
			a := scorer.Assess(snap)
			return a.Score == 0 && a.Strength == analysis.Weak &&
				a.Confidence == models.ConfidenceLow && len(a.Signals) == 0
		},
		snapshotGen(),
	))

	properties.Property("any invalid frame degenerates the dual assessment", prop.ForAll(
		func(short, long models.IndicatorSnapshot) bool {
			long.Valid = false
			a := scorer.AssessDual(short, long)
			b := scorer.AssessDual(long, short)
			return a.Score == 0 && a.Strength == analysis.Weak &&
				a.Alignment == analysis.NoData &&
				b.Score == 0 && b.Strength == analysis.Weak
		},
		snapshotGen(), snapshotGen(),
	))

	properties.Property("dual score bounded with valid alignment state", prop.ForAll(
		func(short, long models.IndicatorSnapshot) bool {
			long.Timeframe = models.TimeframeLong
			a := scorer.AssessDual(short, long)
			if a.Score < 0 || a.Score > 10 {
				return false
			}
			switch a.Alignment {
			case analysis.BullishAligned, analysis.BearishAligned,
				analysis.Conflicted, analysis.AlignNeutral, analysis.NoData:
				return true
			}
			return false
		},
		snapshotGen(), snapshotGen(),
	))

	properties.TestingRun(t)
}
