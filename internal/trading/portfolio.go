package trading

import (
	"sort"

	"cryptopilot/internal/models"
)

// SymbolPnL is the fee-adjusted unrealized P&L of one held position.
type SymbolPnL struct {
	Symbol       string
	Shares       float64
	AverageCost  float64
	CurrentPrice float64
	ChangePct    float64
	PnL          PnLBreakdown
	Profitable   bool
}

// PortfolioSummary aggregates per-symbol unrealized P&L across the portfolio.
type PortfolioSummary struct {
	Positions     []SymbolPnL
	TotalValue    float64
	TotalCost     float64
	TotalNetPnL   float64
	TotalGrossPnL float64
}

// Summarize computes the fee-adjusted profitability of every held position at
// the given prices. Symbols without a price quote are skipped.
func Summarize(positions map[string]*models.PositionState, prices map[string]float64, feePerTrade float64) PortfolioSummary {
	var summary PortfolioSummary

	for symbol, pos := range positions {
		if !pos.Held() {
			continue
		}
		price, ok := prices[symbol]
		if !ok {
			continue
		}

		pnl := FeeAdjustedPnL(price, pos.AverageCost, pos.Shares, feePerTrade)
		var changePct float64
		if pos.AverageCost > 0 {
			changePct = (price - pos.AverageCost) / pos.AverageCost * 100
		}

		summary.Positions = append(summary.Positions, SymbolPnL{
			Symbol:       symbol,
			Shares:       pos.Shares,
			AverageCost:  pos.AverageCost,
			CurrentPrice: price,
			ChangePct:    changePct,
			PnL:          pnl,
			Profitable:   pnl.Net > 0,
		})
		summary.TotalValue += price * pos.Shares
		summary.TotalCost += pos.AverageCost * pos.Shares
		summary.TotalNetPnL += pnl.Net
		summary.TotalGrossPnL += pnl.Gross
	}

	sort.Slice(summary.Positions, func(i, j int) bool {
		return summary.Positions[i].Symbol < summary.Positions[j].Symbol
	})
	return summary
}

// EmergencyStop reports whether total unrealized losses have breached the
// portfolio stop-loss. portfolioStopPct is negative (e.g. -10.0). A portfolio
// with no held value never trips the stop.
func EmergencyStop(summary PortfolioSummary, portfolioStopPct float64) bool {
	if summary.TotalValue <= 0 {
		return false
	}
	lossPct := summary.TotalNetPnL / summary.TotalValue * 100
	return lossPct <= portfolioStopPct
}
