package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"cryptopilot/internal/analysis"
	"cryptopilot/internal/models"
	"cryptopilot/internal/trading"
)

const recommenderSystemPrompt = `You are a portfolio manager for a crypto trading desk.
Given per-symbol technical assessments, AI trend views, and current positions,
recommend an action for every symbol. Respond with exactly one line per symbol:

SYMBOL: BUY|SELL|HOLD | HIGH|MEDIUM|LOW | <short reasoning>

Recommend only actions the evidence supports. HOLD is always acceptable.`

// RecommendationRequest is the per-cycle portfolio context the recommender
// works from.
type RecommendationRequest struct {
	Symbols     []string
	Assessments map[string]analysis.TechnicalAssessment
	Trends      map[string]models.TrendAnalysis
	Positions   map[string]*models.PositionState
	Prices      map[string]float64
	Summary     trading.PortfolioSummary
}

// Recommender asks the LLM for a full recommendation set. Its output is
// untrusted; the validator judges every set before execution.
type Recommender struct {
	llm LLMClient
	log zerolog.Logger
}

// NewRecommender creates a recommendation generator.
func NewRecommender(llm LLMClient, log zerolog.Logger) *Recommender {
	return &Recommender{llm: llm, log: log}
}

// Generate produces one recommendation per symbol. Validator feedback from a
// rejected pass is appended to the prompt so the next set can address it. A
// failed fetch or an unparseable response degrades to HOLD for every symbol
// rather than failing the cycle.
func (r *Recommender) Generate(ctx context.Context, req RecommendationRequest, feedback string) (map[string]models.Recommendation, error) {
	prompt := r.buildPrompt(req, feedback)

	response, err := r.llm.CompleteWithSystem(ctx, recommenderSystemPrompt, prompt)
	if err != nil {
		r.log.Warn().Err(err).Msg("Recommendation fetch failed, holding all symbols")
		return holdAll(req), nil
	}

	recs := ParseRecommendations(response, req.Symbols)
	for symbol, rec := range recs {
		if assessment, ok := req.Assessments[symbol]; ok {
			rec.TechnicalScore = assessment.Score
			rec.Confidence = assessment.Confidence
			recs[symbol] = rec
		}
	}

	r.log.Debug().
		Int("symbols", len(req.Symbols)).
		Bool("with_feedback", feedback != "").
		Msg("Recommendations generated")
	return recs, nil
}

func (r *Recommender) buildPrompt(req RecommendationRequest, feedback string) string {
	var b strings.Builder

	b.WriteString("Portfolio state:\n")
	fmt.Fprintf(&b, "Total value: %.2f, unrealized net P&L after fees: %.2f\n\n", req.Summary.TotalValue, req.Summary.TotalNetPnL)

	for _, symbol := range req.Symbols {
		fmt.Fprintf(&b, "%s:\n", symbol)
		if price, ok := req.Prices[symbol]; ok {
			fmt.Fprintf(&b, "  price: %.2f\n", price)
		}
		if assessment, ok := req.Assessments[symbol]; ok {
			fmt.Fprintf(&b, "  technical: %.1f/10 %s (%s confidence)\n", assessment.Score, assessment.Strength, assessment.Confidence)
		}
		if trend, ok := req.Trends[symbol]; ok {
			fmt.Fprintf(&b, "  AI trend: %s (%s confidence, %s risk)\n", trend.Trend, trend.Confidence, trend.RiskLevel)
		}
		if pos := req.Positions[symbol]; pos.Held() {
			fmt.Fprintf(&b, "  position: %.4f shares at avg cost %.2f\n", pos.Shares, pos.AverageCost)
		} else {
			b.WriteString("  position: none\n")
		}
	}

	if feedback != "" {
		fmt.Fprintf(&b, "\nYour previous recommendations were rejected: %s\nAddress these concerns.\n", feedback)
	}
	return b.String()
}

func holdAll(req RecommendationRequest) map[string]models.Recommendation {
	recs := make(map[string]models.Recommendation, len(req.Symbols))
	for _, symbol := range req.Symbols {
		rec := models.Recommendation{
			Symbol:    symbol,
			Action:    models.ActionHold,
			Priority:  models.PriorityLow,
			Reasoning: "recommendation unavailable",
		}
		if assessment, ok := req.Assessments[symbol]; ok {
			rec.TechnicalScore = assessment.Score
			rec.Confidence = assessment.Confidence
		}
		recs[symbol] = rec
	}
	return recs
}
