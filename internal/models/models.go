// Package models provides domain models for the trading application.
package models

import (
	"time"
)

// Timeframe identifies a candle interval.
type Timeframe string

const (
	TimeframeShort Timeframe = "5m"
	TimeframeLong  Timeframe = "1h"
)

// Action represents a trade action.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// Priority represents the urgency of a recommendation.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// Trend represents a directional market view.
type Trend string

const (
	TrendBullish Trend = "BULLISH"
	TrendBearish Trend = "BEARISH"
	TrendNeutral Trend = "NEUTRAL"
)

// RiskLevel represents a qualitative risk grade.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "HIGH"
	RiskMedium RiskLevel = "MEDIUM"
	RiskLow    RiskLevel = "LOW"
)

// Candle represents OHLCV data for a time period.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// IndicatorSnapshot is the per-symbol, per-timeframe bag of technical values
// produced once per cycle by the market data provider. Valid is false when the
// provider had insufficient history; consumers must not touch the numeric
// fields in that case.
type IndicatorSnapshot struct {
	Symbol    string
	Timeframe Timeframe
	FetchedAt time.Time
	Valid     bool

	CurrentPrice   float64
	PreviousClose  float64
	DailyChangePct float64
	CurrentVolume  float64

	SMA20 float64
	SMA50 float64
	EMA12 float64
	EMA26 float64

	RSI           float64
	MACD          float64
	MACDSignal    float64
	MACDHistogram float64

	BBUpper  float64
	BBMiddle float64
	BBLower  float64

	StochK    float64
	StochD    float64
	WilliamsR float64

	VolumeMA     float64
	OBV          float64
	ADLine       float64
	ATR          float64
	Volatility20 float64

	ADX     float64
	PlusDI  float64
	MinusDI float64

	ParabolicSAR float64
	DeMarker     float64
	MAEnvUpper   float64
	MAEnvLower   float64
}

// Recommendation is an AI-proposed action for a symbol. It is untrusted input:
// every field is re-validated before any trade can execute.
type Recommendation struct {
	Symbol         string
	Action         Action
	Priority       Priority
	Reasoning      string
	TechnicalScore float64
	Confidence     Confidence
}

// Confidence is a qualitative confidence grade.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// TrendAnalysis is the AI trend view for a symbol.
type TrendAnalysis struct {
	Symbol     string
	Trend      Trend
	Confidence Confidence
	RiskLevel  RiskLevel
	Reasoning  string
}

// PositionState is the per-symbol mutable position record. Shares and
// AverageCost are mutated only by the execution layer after a fill;
// PeakPrice is owned exclusively by the trigger engine and only increases
// while the position is held continuously.
type PositionState struct {
	Symbol      string
	Shares      float64
	AverageCost float64
	PeakPrice   float64
}

// Held reports whether the position is currently open.
func (p *PositionState) Held() bool {
	return p != nil && p.Shares > 0
}

// ValidationDecision is the outcome of one validation pass.
type ValidationDecision string

const (
	DecisionProceed ValidationDecision = "proceed"
	DecisionRerun   ValidationDecision = "rerun"
	DecisionAbort   ValidationDecision = "abort"
)

// ValidationAttempt is one append-only entry in a cycle's validation history.
type ValidationAttempt struct {
	Attempt   int
	Timestamp time.Time
	Decision  ValidationDecision
	Reason    string
}

// Trade records an executed fill.
type Trade struct {
	ID        string
	Timestamp time.Time
	Symbol    string
	Action    Action
	Shares    float64
	Price     float64
	Fee       float64
	Reason    string
	CycleID   string
}

// CycleRecord summarizes one completed trading cycle for persistence.
type CycleRecord struct {
	ID            string
	StartedAt     time.Time
	FinishedAt    time.Time
	Outcome       ValidationDecision
	Attempts      []ValidationAttempt
	TradeCount    int
	NetPnL        float64
	EmergencyStop bool
}
