package trading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptopilot/internal/analysis"
	"cryptopilot/internal/models"
)

func balancedValidator() *Validator {
	return NewValidator(ValidatorConfig{
		Aggressive:    false,
		StopLossPct:   -3.0,
		FeePerTrade:   1.0,
		PortfolioSize: 10,
	})
}

func aggressiveValidator() *Validator {
	return NewValidator(ValidatorConfig{
		Aggressive:    true,
		StopLossPct:   -3.0,
		FeePerTrade:   1.0,
		PortfolioSize: 10,
	})
}

// quietContext returns a symbol context that raises nothing on its own.
func quietContext() SymbolContext {
	return SymbolContext{
		Snapshot: models.IndicatorSnapshot{
			Valid:        true,
			RSI:          50,
			ATR:          2,
			Volatility20: 2,
		},
		Assessment: analysis.TechnicalAssessment{
			Strength:   analysis.Neutral,
			Confidence: models.ConfidenceMedium,
			Score:      5,
		},
		Trend: models.TrendAnalysis{
			Trend:      models.TrendNeutral,
			Confidence: models.ConfidenceMedium,
			RiskLevel:  models.RiskLow,
		},
		CurrentPrice: 100,
	}
}

func buyRec(priority models.Priority, score float64) models.Recommendation {
	return models.Recommendation{
		Symbol: "BTC", Action: models.ActionBuy, Priority: priority, TechnicalScore: score,
	}
}

func sellRec(priority models.Priority, score float64) models.Recommendation {
	return models.Recommendation{
		Symbol: "BTC", Action: models.ActionSell, Priority: priority, TechnicalScore: score,
	}
}

func TestValidateCleanSetProceeds(t *testing.T) {
	recs := map[string]models.Recommendation{
		"BTC": buyRec(models.PriorityMedium, 7),
		"ETH": {Symbol: "ETH", Action: models.ActionHold},
	}
	ctxs := map[string]SymbolContext{"BTC": quietContext(), "ETH": quietContext()}

	report := balancedValidator().Validate(recs, ctxs)

	assert.Equal(t, models.DecisionProceed, report.Decision)
	assert.Empty(t, report.Issues)
	assert.Contains(t, report.Reason, "validation passed")
}

func TestValidateBuyContradictions(t *testing.T) {
	t.Run("bearish AI trend blocks a BUY", func(t *testing.T) {
		sc := quietContext()
		sc.Trend.Trend = models.TrendBearish
		sc.Trend.Confidence = models.ConfidenceHigh

		report := balancedValidator().Validate(
			map[string]models.Recommendation{"BTC": buyRec(models.PriorityMedium, 7)},
			map[string]SymbolContext{"BTC": sc},
		)

		require.Equal(t, models.DecisionRerun, report.Decision)
		assert.Contains(t, report.Reason, "bearish AI trend")
	})

	t.Run("low-confidence bearish trend does not block", func(t *testing.T) {
		sc := quietContext()
		sc.Trend.Trend = models.TrendBearish
		sc.Trend.Confidence = models.ConfidenceLow

		report := balancedValidator().Validate(
			map[string]models.Recommendation{"BTC": buyRec(models.PriorityMedium, 7)},
			map[string]SymbolContext{"BTC": sc},
		)

		assert.Equal(t, models.DecisionProceed, report.Decision)
	})

	t.Run("bearish technicals block a BUY", func(t *testing.T) {
		sc := quietContext()
		sc.Assessment.Strength = analysis.StrongBearish
		sc.Assessment.Confidence = models.ConfidenceHigh

		report := balancedValidator().Validate(
			map[string]models.Recommendation{"BTC": buyRec(models.PriorityMedium, 7)},
			map[string]SymbolContext{"BTC": sc},
		)

		require.Equal(t, models.DecisionRerun, report.Decision)
		assert.Contains(t, report.Reason, "bearish technical")
	})
}

func TestValidateScoreVersusPriority(t *testing.T) {
	t.Run("weak score on high-priority BUY is an issue in balanced mode", func(t *testing.T) {
		report := balancedValidator().Validate(
			map[string]models.Recommendation{"BTC": buyRec(models.PriorityHigh, 2)},
			map[string]SymbolContext{"BTC": quietContext()},
		)
		assert.Equal(t, models.DecisionRerun, report.Decision)
	})

	t.Run("same check downgrades to a warning in aggressive mode", func(t *testing.T) {
		report := aggressiveValidator().Validate(
			map[string]models.Recommendation{"BTC": buyRec(models.PriorityHigh, 2)},
			map[string]SymbolContext{"BTC": quietContext()},
		)
		assert.Equal(t, models.DecisionProceed, report.Decision)
		assert.Len(t, report.Warnings, 1)
	})

	t.Run("strong score against a high-priority SELL is an issue", func(t *testing.T) {
		report := balancedValidator().Validate(
			map[string]models.Recommendation{"BTC": sellRec(models.PriorityHigh, 8)},
			map[string]SymbolContext{"BTC": quietContext()},
		)
		assert.Equal(t, models.DecisionRerun, report.Decision)
	})

	t.Run("aggressive mode allows the strong-score SELL", func(t *testing.T) {
		report := aggressiveValidator().Validate(
			map[string]models.Recommendation{"BTC": sellRec(models.PriorityHigh, 8)},
			map[string]SymbolContext{"BTC": quietContext()},
		)
		assert.Equal(t, models.DecisionProceed, report.Decision)
	})
}

func TestValidateRSIExtremeWarnings(t *testing.T) {
	t.Run("BUY into overbought RSI warns", func(t *testing.T) {
		sc := quietContext()
		sc.Snapshot.RSI = 80

		report := balancedValidator().Validate(
			map[string]models.Recommendation{"BTC": buyRec(models.PriorityHigh, 7)},
			map[string]SymbolContext{"BTC": sc},
		)

		assert.Equal(t, models.DecisionProceed, report.Decision)
		require.Len(t, report.Warnings, 1)
		assert.Contains(t, report.Warnings[0], "overbought")
	})

	t.Run("SELL into oversold RSI warns", func(t *testing.T) {
		sc := quietContext()
		sc.Snapshot.RSI = 20

		report := balancedValidator().Validate(
			map[string]models.Recommendation{"BTC": sellRec(models.PriorityMedium, 5)},
			map[string]SymbolContext{"BTC": sc},
		)

		assert.Equal(t, models.DecisionProceed, report.Decision)
		require.Len(t, report.Warnings, 1)
		assert.Contains(t, report.Warnings[0], "oversold")
	})

	t.Run("low-priority actions skip the RSI warnings", func(t *testing.T) {
		sc := quietContext()
		sc.Snapshot.RSI = 80

		report := balancedValidator().Validate(
			map[string]models.Recommendation{"BTC": buyRec(models.PriorityLow, 7)},
			map[string]SymbolContext{"BTC": sc},
		)

		assert.Empty(t, report.Warnings)
	})
}

func TestValidateVoluntaryLossSell(t *testing.T) {
	t.Run("selling at a net loss above the stop is an issue", func(t *testing.T) {
		sc := quietContext()
		sc.Position = &models.PositionState{Symbol: "BTC", Shares: 1, AverageCost: 100}
		sc.CurrentPrice = 101 // gross +1, net -1 after fees; change +1% above -3%

		report := balancedValidator().Validate(
			map[string]models.Recommendation{"BTC": sellRec(models.PriorityMedium, 5)},
			map[string]SymbolContext{"BTC": sc},
		)

		require.Equal(t, models.DecisionRerun, report.Decision)
		assert.Contains(t, report.Reason, "loss after fees")
	})

	t.Run("stop-loss territory exempts the loss check", func(t *testing.T) {
		sc := quietContext()
		sc.Position = &models.PositionState{Symbol: "BTC", Shares: 1, AverageCost: 100}
		sc.CurrentPrice = 95 // -5% is past the -3% stop, damage control

		report := balancedValidator().Validate(
			map[string]models.Recommendation{"BTC": sellRec(models.PriorityMedium, 5)},
			map[string]SymbolContext{"BTC": sc},
		)

		assert.Equal(t, models.DecisionProceed, report.Decision)
	})

	t.Run("flat positions skip the loss check", func(t *testing.T) {
		report := balancedValidator().Validate(
			map[string]models.Recommendation{"BTC": sellRec(models.PriorityMedium, 5)},
			map[string]SymbolContext{"BTC": quietContext()},
		)
		assert.Equal(t, models.DecisionProceed, report.Decision)
	})
}

func TestValidateVolatilityAndRisk(t *testing.T) {
	t.Run("high-priority action in elevated volatility warns in balanced mode", func(t *testing.T) {
		sc := quietContext()
		sc.Snapshot.Volatility20 = 5
		sc.Snapshot.ATR = 2

		report := balancedValidator().Validate(
			map[string]models.Recommendation{"BTC": buyRec(models.PriorityHigh, 7)},
			map[string]SymbolContext{"BTC": sc},
		)

		assert.Equal(t, models.DecisionProceed, report.Decision)
		require.Len(t, report.Warnings, 1)
		assert.Contains(t, report.Warnings[0], "volatility")
	})

	t.Run("aggressive mode skips the volatility warning", func(t *testing.T) {
		sc := quietContext()
		sc.Snapshot.Volatility20 = 5
		sc.Snapshot.ATR = 2

		report := aggressiveValidator().Validate(
			map[string]models.Recommendation{"BTC": buyRec(models.PriorityHigh, 7)},
			map[string]SymbolContext{"BTC": sc},
		)

		assert.Empty(t, report.Warnings)
	})

	t.Run("high AI risk with low confidence blocks a high-priority action", func(t *testing.T) {
		sc := quietContext()
		sc.Trend.RiskLevel = models.RiskHigh
		sc.Assessment.Confidence = models.ConfidenceLow

		report := balancedValidator().Validate(
			map[string]models.Recommendation{"BTC": buyRec(models.PriorityHigh, 7)},
			map[string]SymbolContext{"BTC": sc},
		)

		require.Equal(t, models.DecisionRerun, report.Decision)
		assert.Contains(t, report.Reason, "high AI risk")
	})

	t.Run("risk check ignores medium-priority actions", func(t *testing.T) {
		sc := quietContext()
		sc.Trend.RiskLevel = models.RiskHigh
		sc.Assessment.Confidence = models.ConfidenceLow

		report := balancedValidator().Validate(
			map[string]models.Recommendation{"BTC": buyRec(models.PriorityMedium, 7)},
			map[string]SymbolContext{"BTC": sc},
		)

		assert.Equal(t, models.DecisionProceed, report.Decision)
		assert.Empty(t, report.Issues)
	})

	t.Run("aggressive mode skips the risk check", func(t *testing.T) {
		sc := quietContext()
		sc.Trend.RiskLevel = models.RiskHigh
		sc.Assessment.Confidence = models.ConfidenceLow

		report := aggressiveValidator().Validate(
			map[string]models.Recommendation{"BTC": buyRec(models.PriorityHigh, 7)},
			map[string]SymbolContext{"BTC": sc},
		)

		assert.Equal(t, models.DecisionProceed, report.Decision)
		assert.Empty(t, report.Issues)
	})
}

func TestValidatePortfolioLimits(t *testing.T) {
	makeRecs := func(buys, sells int) (map[string]models.Recommendation, map[string]SymbolContext) {
		recs := make(map[string]models.Recommendation)
		ctxs := make(map[string]SymbolContext)
		for i := 0; i < buys; i++ {
			sym := string(rune('A' + i))
			recs[sym] = models.Recommendation{Symbol: sym, Action: models.ActionBuy, Priority: models.PriorityLow, TechnicalScore: 6}
			ctxs[sym] = quietContext()
		}
		for i := 0; i < sells; i++ {
			sym := string(rune('N' + i))
			recs[sym] = models.Recommendation{Symbol: sym, Action: models.ActionSell, Priority: models.PriorityLow, TechnicalScore: 5}
			ctxs[sym] = quietContext()
		}
		return recs, ctxs
	}

	t.Run("churn over the balanced limit is an issue", func(t *testing.T) {
		recs, ctxs := makeRecs(8, 0) // 8 > 10*0.7
		report := balancedValidator().Validate(recs, ctxs)
		require.Equal(t, models.DecisionRerun, report.Decision)
		assert.Contains(t, report.Reason, "churn")
	})

	t.Run("aggressive mode raises the churn limit", func(t *testing.T) {
		recs, ctxs := makeRecs(8, 0) // 8 <= 10*0.9
		report := aggressiveValidator().Validate(recs, ctxs)
		assert.Equal(t, models.DecisionProceed, report.Decision)
	})

	t.Run("balanced buy and sell mix warns", func(t *testing.T) {
		recs, ctxs := makeRecs(3, 3)
		report := balancedValidator().Validate(recs, ctxs)
		assert.Equal(t, models.DecisionProceed, report.Decision)
		require.NotEmpty(t, report.Warnings)
		assert.Contains(t, report.Warnings[len(report.Warnings)-1], "mixed market signals")
	})

	t.Run("lopsided mix does not warn", func(t *testing.T) {
		recs, ctxs := makeRecs(6, 1)
		report := balancedValidator().Validate(recs, ctxs)
		assert.Equal(t, models.DecisionProceed, report.Decision)
		assert.Empty(t, report.Warnings)
	})
}

func TestValidateHoldsAreNeverChecked(t *testing.T) {
	sc := quietContext()
	sc.Trend.Trend = models.TrendBearish
	sc.Trend.Confidence = models.ConfidenceHigh

	report := balancedValidator().Validate(
		map[string]models.Recommendation{"BTC": {Symbol: "BTC", Action: models.ActionHold}},
		map[string]SymbolContext{"BTC": sc},
	)

	assert.Equal(t, models.DecisionProceed, report.Decision)
	assert.Empty(t, report.Issues)
	assert.Empty(t, report.Warnings)
}
