// Package analysis provides technical analysis functionality including
// indicator calculation and composite signal scoring.
package analysis

import (
	"cryptopilot/internal/models"
)

// Strength represents the qualitative reading of a technical assessment.
type Strength string

const (
	StrongBullish Strength = "STRONG_BULLISH"
	WeakBullish   Strength = "WEAK_BULLISH"
	Neutral       Strength = "NEUTRAL"
	WeakBearish   Strength = "WEAK_BEARISH"
	StrongBearish Strength = "STRONG_BEARISH"
	// Weak is the degenerate reading for snapshots with insufficient data.
	Weak Strength = "WEAK"
)

// TimeframeAlignment describes how two timeframes relate in the dual scorer.
type TimeframeAlignment string

const (
	BullishAligned TimeframeAlignment = "BULLISH_ALIGNED"
	BearishAligned TimeframeAlignment = "BEARISH_ALIGNED"
	Conflicted     TimeframeAlignment = "CONFLICTED"
	AlignNeutral   TimeframeAlignment = "NEUTRAL"
	NoData         TimeframeAlignment = "NO_DATA"
)

// TechnicalAssessment is the composite output of the indicator scorer.
// It is derived fresh each cycle from an IndicatorSnapshot and never stored.
type TechnicalAssessment struct {
	Score          float64 // 0..10, 5 is neutral
	NetScore       float64 // bullish minus bearish signal weight
	BullishWeight  float64
	BearishWeight  float64
	Strength       Strength
	Confidence     models.Confidence
	Signals        []string
	Alignment      TimeframeAlignment // dual-timeframe scorer only
	AlignmentScore float64
}

// Bullish reports whether the assessment leans bullish.
func (a *TechnicalAssessment) Bullish() bool {
	return a.Strength == StrongBullish || a.Strength == WeakBullish
}

// Bearish reports whether the assessment leans bearish.
func (a *TechnicalAssessment) Bearish() bool {
	return a.Strength == StrongBearish || a.Strength == WeakBearish
}
