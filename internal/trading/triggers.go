package trading

import (
	"cryptopilot/internal/models"
)

// TriggerConfig holds the threshold settings for the position trigger engine.
// StopLossPct is negative (e.g. -3.0), TakeProfitPct positive (e.g. 5.0),
// TrailingStopPct a positive drawdown percentage from the peak.
type TriggerConfig struct {
	StopLossPct     float64
	TakeProfitPct   float64
	TrailingStopPct float64
	FeePerTrade     float64
}

// TriggerKind identifies which rule fired a forced exit.
type TriggerKind string

const (
	TriggerStopLoss     TriggerKind = "stop-loss"
	TriggerTrailingStop TriggerKind = "trailing-stop"
	TriggerTakeProfit   TriggerKind = "take-profit"
)

// TriggerResult is the outcome of evaluating one held position.
type TriggerResult struct {
	Symbol      string
	Fired       bool
	Kind        TriggerKind
	ChangePct   float64
	DrawdownPct float64
	PeakPrice   float64
}

// TriggerEngine evaluates per-position exit rules once per cycle.
type TriggerEngine struct {
	cfg TriggerConfig
}

// NewTriggerEngine creates a trigger engine with the given thresholds.
func NewTriggerEngine(cfg TriggerConfig) *TriggerEngine {
	return &TriggerEngine{cfg: cfg}
}

// Evaluate runs the exit rules for one position at the current price. Rules
// are checked in a fixed order and the first hit wins:
//
//  1. stop-loss on the percent move from cost, which always fires and
//     bypasses the fee-profitability gate
//  2. peak update, persisted into the position even when nothing fires
//  3. trailing stop on the drawdown from peak, gated on fee profitability
//  4. take-profit on the percent move from cost, gated on fee profitability
//
// Flat positions never trigger and never touch the peak.
func (e *TriggerEngine) Evaluate(pos *models.PositionState, currentPrice float64) TriggerResult {
	result := TriggerResult{Symbol: pos.Symbol}
	if !pos.Held() || pos.AverageCost <= 0 {
		return result
	}

	changePct := (currentPrice - pos.AverageCost) / pos.AverageCost * 100
	result.ChangePct = changePct

	if changePct <= e.cfg.StopLossPct {
		result.Fired = true
		result.Kind = TriggerStopLoss
		result.PeakPrice = pos.PeakPrice
		return result
	}

	// The peak advances before the trailing check so a new high this cycle
	// can never read as a drawdown.
	if pos.PeakPrice <= 0 {
		pos.PeakPrice = pos.AverageCost
	}
	if currentPrice > pos.PeakPrice {
		pos.PeakPrice = currentPrice
	}
	result.PeakPrice = pos.PeakPrice

	profitable := IsProfitableToSell(currentPrice, pos.AverageCost, pos.Shares, e.cfg.FeePerTrade)

	if pos.PeakPrice > 0 {
		drawdown := (pos.PeakPrice - currentPrice) / pos.PeakPrice * 100
		result.DrawdownPct = drawdown
		if drawdown >= e.cfg.TrailingStopPct && profitable {
			result.Fired = true
			result.Kind = TriggerTrailingStop
			return result
		}
	}

	if changePct >= e.cfg.TakeProfitPct && profitable {
		result.Fired = true
		result.Kind = TriggerTakeProfit
	}

	return result
}
