// Package trading implements the deterministic trade-lifecycle core: fee
// accounting, position triggers, recommendation validation, and the
// validation retry loop.
package trading

// PnLBreakdown itemizes the fee-adjusted profit and loss of closing a
// position at a given price.
type PnLBreakdown struct {
	Gross    float64
	BuyFee   float64
	SellFee  float64
	TotalFee float64
	Net      float64
}

// FeeAdjustedPnL computes the round-trip P&L of a position: gross move on the
// full share count minus the flat fee charged on each side of the trade.
// Non-positive shares or purchase price fail closed to an all-zero breakdown.
func FeeAdjustedPnL(currentPrice, purchasePrice, shares, feePerTrade float64) PnLBreakdown {
	if shares <= 0 || purchasePrice <= 0 {
		return PnLBreakdown{}
	}

	gross := (currentPrice - purchasePrice) * shares
	total := 2 * feePerTrade
	return PnLBreakdown{
		Gross:    gross,
		BuyFee:   feePerTrade,
		SellFee:  feePerTrade,
		TotalFee: total,
		Net:      gross - total,
	}
}

// IsProfitableToSell reports whether closing the position now clears both
// sides of fees. Break-even after fees is not profitable.
func IsProfitableToSell(currentPrice, purchasePrice, shares, feePerTrade float64) bool {
	return FeeAdjustedPnL(currentPrice, purchasePrice, shares, feePerTrade).Net > 0
}
