package trading

import (
	"fmt"
	"strings"

	"cryptopilot/internal/analysis"
	"cryptopilot/internal/models"
)

// Churn limits: fraction of the portfolio allowed to turn over in one cycle.
const (
	churnLimitAggressive = 0.9
	churnLimitBalanced   = 0.7
)

// ValidatorConfig holds the settings for recommendation validation.
type ValidatorConfig struct {
	Aggressive    bool
	StopLossPct   float64
	FeePerTrade   float64
	PortfolioSize int
}

// SymbolContext bundles everything the validator knows about one symbol when
// judging a recommendation for it.
type SymbolContext struct {
	Snapshot     models.IndicatorSnapshot
	Assessment   analysis.TechnicalAssessment
	Trend        models.TrendAnalysis
	Position     *models.PositionState
	CurrentPrice float64
}

// ValidationReport is the outcome of one validation pass over a full
// recommendation set. Issues force a rerun; warnings are advisory only.
type ValidationReport struct {
	Decision models.ValidationDecision
	Issues   []string
	Warnings []string
	Reason   string
}

// Validator cross-checks AI recommendations against technical evidence,
// position economics, and portfolio-level sanity limits.
type Validator struct {
	cfg ValidatorConfig
}

// NewValidator creates a validator with the given settings.
func NewValidator(cfg ValidatorConfig) *Validator {
	return &Validator{cfg: cfg}
}

// Validate runs every rule against the recommendation set. The decision is
// rerun exactly when at least one issue was raised; warnings never block.
func (v *Validator) Validate(recs map[string]models.Recommendation, contexts map[string]SymbolContext) ValidationReport {
	var report ValidationReport

	for symbol, rec := range recs {
		if rec.Action == models.ActionHold {
			continue
		}
		sc := contexts[symbol]
		v.checkRecommendation(&report, symbol, rec, sc)
	}

	v.checkPortfolio(&report, recs)

	if len(report.Issues) > 0 {
		report.Decision = models.DecisionRerun
		report.Reason = strings.Join(report.Issues, "; ")
	} else {
		report.Decision = models.DecisionProceed
		report.Reason = fmt.Sprintf("validation passed with %d warning(s)", len(report.Warnings))
	}
	return report
}

func (v *Validator) checkRecommendation(report *ValidationReport, symbol string, rec models.Recommendation, sc SymbolContext) {
	confident := func(c models.Confidence) bool {
		return c == models.ConfidenceMedium || c == models.ConfidenceHigh
	}

	switch rec.Action {
	case models.ActionBuy:
		if sc.Trend.Trend == models.TrendBearish && confident(sc.Trend.Confidence) {
			report.issue("%s: BUY contradicts bearish AI trend", symbol)
		}
		if sc.Assessment.Bearish() && confident(sc.Assessment.Confidence) {
			report.issue("%s: BUY contradicts bearish technical signals", symbol)
		}
		if rec.TechnicalScore < 3 && rec.Priority == models.PriorityHigh {
			if v.cfg.Aggressive {
				report.warn("%s: high-priority BUY on weak technical score %.1f", symbol, rec.TechnicalScore)
			} else {
				report.issue("%s: high-priority BUY on weak technical score %.1f", symbol, rec.TechnicalScore)
			}
		}
		if sc.Snapshot.Valid && sc.Snapshot.RSI > 75 &&
			(rec.Priority == models.PriorityHigh || rec.Priority == models.PriorityMedium) {
			report.warn("%s: BUY into overbought RSI %.1f", symbol, sc.Snapshot.RSI)
		}

	case models.ActionSell:
		if sc.Trend.Trend == models.TrendBullish && confident(sc.Trend.Confidence) {
			report.issue("%s: SELL contradicts bullish AI trend", symbol)
		}
		if sc.Assessment.Bullish() && confident(sc.Assessment.Confidence) {
			report.issue("%s: SELL contradicts bullish technical signals", symbol)
		}
		if rec.TechnicalScore > 7 && rec.Priority == models.PriorityHigh && !v.cfg.Aggressive {
			report.issue("%s: high-priority SELL against strong technical score %.1f", symbol, rec.TechnicalScore)
		}
		if sc.Position.Held() && sc.Position.AverageCost > 0 {
			pnl := FeeAdjustedPnL(sc.CurrentPrice, sc.Position.AverageCost, sc.Position.Shares, v.cfg.FeePerTrade)
			changePct := (sc.CurrentPrice - sc.Position.AverageCost) / sc.Position.AverageCost * 100
			// Selling inside stop-loss territory is damage control, not a
			// voluntary loss.
			if pnl.Net <= 0 && changePct > v.cfg.StopLossPct {
				report.issue("%s: SELL would result in loss after fees (net %.2f)", symbol, pnl.Net)
			}
		}
		if sc.Snapshot.Valid && sc.Snapshot.RSI < 25 &&
			(rec.Priority == models.PriorityHigh || rec.Priority == models.PriorityMedium) {
			report.warn("%s: SELL into oversold RSI %.1f", symbol, sc.Snapshot.RSI)
		}
	}

	if !v.cfg.Aggressive && rec.Priority == models.PriorityHigh &&
		sc.Snapshot.Valid && sc.Snapshot.Volatility20 > 2*sc.Snapshot.ATR {
		report.warn("%s: high-priority action in elevated volatility", symbol)
	}

	if !v.cfg.Aggressive && rec.Priority == models.PriorityHigh &&
		sc.Trend.RiskLevel == models.RiskHigh && sc.Assessment.Confidence == models.ConfidenceLow {
		report.issue("%s: high AI risk with low technical confidence", symbol)
	}
}

func (v *Validator) checkPortfolio(report *ValidationReport, recs map[string]models.Recommendation) {
	var buys, sells int
	for _, rec := range recs {
		switch rec.Action {
		case models.ActionBuy:
			buys++
		case models.ActionSell:
			sells++
		}
	}
	active := buys + sells
	if active == 0 {
		return
	}

	limit := churnLimitBalanced
	if v.cfg.Aggressive {
		limit = churnLimitAggressive
	}
	if v.cfg.PortfolioSize > 0 && float64(active) > float64(v.cfg.PortfolioSize)*limit {
		report.issue("portfolio churn too high: %d actions across %d symbols", active, v.cfg.PortfolioSize)
	}

	if buys > 0 && sells > 0 {
		ratio := float64(buys) / float64(active)
		if ratio >= 0.3 && ratio <= 0.7 {
			report.warn("mixed market signals: %d buys vs %d sells", buys, sells)
		}
	}
}

func (r *ValidationReport) issue(format string, args ...interface{}) {
	r.Issues = append(r.Issues, fmt.Sprintf(format, args...))
}

func (r *ValidationReport) warn(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}
