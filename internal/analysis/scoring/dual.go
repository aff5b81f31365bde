package scoring

import (
	"cryptopilot/internal/analysis"
	"cryptopilot/internal/models"
)

// Longer-timeframe evidence counts double in the dual assessment.
const longTimeframeWeight = 2

// AssessDual scores a symbol across two timeframes. The full rule table runs
// on both snapshots with the long timeframe weighted double, then a
// cross-timeframe alignment check adds a bonus when both frames agree on
// trend and momentum, or a penalty when their moving-average trends conflict.
// Either frame being invalid degenerates the whole assessment.
func (s *Scorer) AssessDual(short, long models.IndicatorSnapshot) analysis.TechnicalAssessment {
	if !short.Valid || !long.Valid {
		return degenerate()
	}

	var t tally
	evaluate(&t, short, 1)
	evaluate(&t, long, longTimeframeWeight)

	alignment, alignScore := alignTimeframes(&t, short, long)

	net := t.bullish - t.bearish
	strength, confidence := classify(net, 4, 6, 2, 3)

	return analysis.TechnicalAssessment{
		Score:          clampScore(5 + net),
		NetScore:       net,
		BullishWeight:  t.bullish,
		BearishWeight:  t.bearish,
		Strength:       strength,
		Confidence:     confidence,
		Signals:        t.signals,
		Alignment:      alignment,
		AlignmentScore: alignScore,
	}
}

// alignTimeframes compares the moving-average trend and RSI momentum of the
// two frames. Full agreement on both is worth a 3-point bonus in the agreed
// direction; disagreeing MA trends cost a 1-point bearish penalty.
func alignTimeframes(t *tally, short, long models.IndicatorSnapshot) (analysis.TimeframeAlignment, float64) {
	shortUp := short.CurrentPrice > short.SMA20
	longUp := long.CurrentPrice > long.SMA20

	if shortUp == longUp {
		if shortUp && short.RSI >= 50 && long.RSI >= 50 {
			t.bull(3, "timeframes aligned bullish")
			return analysis.BullishAligned, 3
		}
		if !shortUp && short.RSI <= 50 && long.RSI <= 50 {
			t.bear(3, "timeframes aligned bearish")
			return analysis.BearishAligned, -3
		}
		return analysis.AlignNeutral, 0
	}

	t.bear(1, "timeframe trends conflict")
	return analysis.Conflicted, -1
}
