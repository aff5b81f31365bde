package trading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptopilot/internal/models"
)

func TestSummarize(t *testing.T) {
	positions := map[string]*models.PositionState{
		"BTC":  {Symbol: "BTC", Shares: 2, AverageCost: 100},
		"ETH":  {Symbol: "ETH", Shares: 10, AverageCost: 50},
		"FLAT": {Symbol: "FLAT"},
		"GONE": {Symbol: "GONE", Shares: 1, AverageCost: 10},
	}
	prices := map[string]float64{"BTC": 110, "ETH": 48, "FLAT": 1}

	summary := Summarize(positions, prices, 1)

	require.Len(t, summary.Positions, 2, "flat and unquoted positions are skipped")
	assert.Equal(t, "BTC", summary.Positions[0].Symbol)
	assert.Equal(t, "ETH", summary.Positions[1].Symbol)

	// BTC: gross +20, net +18. ETH: gross -20, net -22.
	assert.True(t, summary.Positions[0].Profitable)
	assert.False(t, summary.Positions[1].Profitable)
	assert.InDelta(t, 18.0, summary.Positions[0].PnL.Net, 1e-9)
	assert.InDelta(t, -22.0, summary.Positions[1].PnL.Net, 1e-9)

	assert.InDelta(t, 700.0, summary.TotalValue, 1e-9)
	assert.InDelta(t, 700.0, summary.TotalCost, 1e-9)
	assert.InDelta(t, 0.0, summary.TotalGrossPnL, 1e-9)
	assert.InDelta(t, -4.0, summary.TotalNetPnL, 1e-9)
}

func TestEmergencyStop(t *testing.T) {
	t.Run("trips at the threshold", func(t *testing.T) {
		summary := PortfolioSummary{TotalValue: 1000, TotalNetPnL: -100}
		assert.True(t, EmergencyStop(summary, -10.0))
	})

	t.Run("holds above the threshold", func(t *testing.T) {
		summary := PortfolioSummary{TotalValue: 1000, TotalNetPnL: -99}
		assert.False(t, EmergencyStop(summary, -10.0))
	})

	t.Run("empty portfolio never trips", func(t *testing.T) {
		assert.False(t, EmergencyStop(PortfolioSummary{}, -10.0))
	})
}
