package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"cryptopilot/internal/analysis"
	"cryptopilot/internal/errors"
	"cryptopilot/internal/models"
)

const trendSystemPrompt = `You are a market trend analyst for a crypto trading desk.
Given technical indicator readings for a symbol, respond in exactly this format:

TREND: BULLISH|BEARISH|NEUTRAL
CONFIDENCE: HIGH|MEDIUM|LOW
RISK: HIGH|MEDIUM|LOW
REASONING: <one or two sentences>`

// TrendAnalyst asks the LLM for a directional view per symbol.
type TrendAnalyst struct {
	llm LLMClient
	log zerolog.Logger
}

// NewTrendAnalyst creates a trend analyst.
func NewTrendAnalyst(llm LLMClient, log zerolog.Logger) *TrendAnalyst {
	return &TrendAnalyst{llm: llm, log: log}
}

// Analyze returns the AI trend view for one symbol. A snapshot without valid
// data short-circuits to a NEUTRAL, low-confidence, high-risk view without
// calling the LLM.
func (a *TrendAnalyst) Analyze(ctx context.Context, snap models.IndicatorSnapshot, assessment analysis.TechnicalAssessment) (models.TrendAnalysis, error) {
	if !snap.Valid {
		return models.TrendAnalysis{
			Symbol:     snap.Symbol,
			Trend:      models.TrendNeutral,
			Confidence: models.ConfidenceLow,
			RiskLevel:  models.RiskHigh,
			Reasoning:  "insufficient market data",
		}, nil
	}

	prompt := a.buildPrompt(snap, assessment)
	response, err := a.llm.CompleteWithSystem(ctx, trendSystemPrompt, prompt)
	if err != nil {
		return models.TrendAnalysis{}, errors.NewAgentError("trend-analyst", "complete", err)
	}

	result := parseTrendResponse(snap.Symbol, response)
	a.log.Debug().
		Str("symbol", snap.Symbol).
		Str("trend", string(result.Trend)).
		Str("confidence", string(result.Confidence)).
		Msg("Trend analysis complete")
	return result, nil
}

func (a *TrendAnalyst) buildPrompt(snap models.IndicatorSnapshot, assessment analysis.TechnicalAssessment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Symbol: %s\n", snap.Symbol)
	fmt.Fprintf(&b, "Price: %.2f (%.2f%% daily change)\n", snap.CurrentPrice, snap.DailyChangePct)
	fmt.Fprintf(&b, "SMA20: %.2f  SMA50: %.2f\n", snap.SMA20, snap.SMA50)
	fmt.Fprintf(&b, "RSI: %.1f  MACD: %.3f (signal %.3f)\n", snap.RSI, snap.MACD, snap.MACDSignal)
	fmt.Fprintf(&b, "ADX: %.1f (+DI %.1f, -DI %.1f)\n", snap.ADX, snap.PlusDI, snap.MinusDI)
	fmt.Fprintf(&b, "ATR: %.3f  20-period volatility: %.3f\n", snap.ATR, snap.Volatility20)
	fmt.Fprintf(&b, "Composite technical score: %.1f/10 (%s)\n", assessment.Score, assessment.Strength)
	if len(assessment.Signals) > 0 {
		fmt.Fprintf(&b, "Signals: %s\n", strings.Join(assessment.Signals, "; "))
	}
	return b.String()
}

// parseTrendResponse reads the labeled lines of the response. Missing or
// unrecognized fields fall back to the conservative defaults.
func parseTrendResponse(symbol, response string) models.TrendAnalysis {
	result := models.TrendAnalysis{
		Symbol:     symbol,
		Trend:      models.TrendNeutral,
		Confidence: models.ConfidenceLow,
		RiskLevel:  models.RiskHigh,
	}

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		upper := strings.ToUpper(line)
		switch {
		case strings.HasPrefix(upper, "TREND:"):
			switch {
			case strings.Contains(upper, "BULLISH"):
				result.Trend = models.TrendBullish
			case strings.Contains(upper, "BEARISH"):
				result.Trend = models.TrendBearish
			default:
				result.Trend = models.TrendNeutral
			}
		case strings.HasPrefix(upper, "CONFIDENCE:"):
			result.Confidence = parseConfidence(upper)
		case strings.HasPrefix(upper, "RISK:"):
			result.RiskLevel = parseRisk(upper)
		case strings.HasPrefix(upper, "REASONING:"):
			result.Reasoning = strings.TrimSpace(line[len("REASONING:"):])
		}
	}
	return result
}

func parseConfidence(s string) models.Confidence {
	switch {
	case strings.Contains(s, "HIGH"):
		return models.ConfidenceHigh
	case strings.Contains(s, "MEDIUM"):
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

func parseRisk(s string) models.RiskLevel {
	switch {
	case strings.Contains(s, "LOW"):
		return models.RiskLow
	case strings.Contains(s, "MEDIUM"):
		return models.RiskMedium
	default:
		return models.RiskHigh
	}
}
