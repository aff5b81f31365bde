package trading

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"cryptopilot/internal/models"
)

// Properties:
// - the stop-loss fires exactly when the move from cost breaches its
//   threshold, regardless of fee profitability
// - a trailing-stop or take-profit exit is always profitable after fees
// - the tracked peak never decreases and the sign of net P&L is invariant
//   under the fee identity net = gross - 2*fee

func positionGen() gopter.Gen {
	return gen.Float64Range(10, 500).FlatMap(func(v interface{}) gopter.Gen {
		cost := v.(float64)
		return gen.Float64Range(cost, cost*2).Map(func(peak float64) *models.PositionState {
			return &models.PositionState{
				Symbol:      "X",
				Shares:      10,
				AverageCost: cost,
				PeakPrice:   peak,
			}
		})
	}, nil)
}

func TestTriggerProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)
	cfg := TriggerConfig{
		StopLossPct:     -3.0,
		TakeProfitPct:   5.0,
		TrailingStopPct: 3.0,
		FeePerTrade:     1.0,
	}
	engine := NewTriggerEngine(cfg)

	properties.Property("stop-loss fires iff the threshold is breached", prop.ForAll(
		func(pos *models.PositionState, price float64) bool {
			changePct := (price - pos.AverageCost) / pos.AverageCost * 100
			got := engine.Evaluate(pos, price)
			breached := changePct <= cfg.StopLossPct
			fired := got.Fired && got.Kind == TriggerStopLoss
			return breached == fired
		},
		positionGen(), gen.Float64Range(1, 1000),
	))

	properties.Property("gated exits are always profitable after fees", prop.ForAll(
		func(pos *models.PositionState, price float64) bool {
			cost, shares := pos.AverageCost, pos.Shares
			got := engine.Evaluate(pos, price)
			if !got.Fired || got.Kind == TriggerStopLoss {
				return true
			}
			return FeeAdjustedPnL(price, cost, shares, cfg.FeePerTrade).Net > 0
		},
		positionGen(), gen.Float64Range(1, 1000),
	))

	properties.Property("peak never decreases across evaluations", prop.ForAll(
		func(pos *models.PositionState, prices []float64) bool {
			prev := pos.PeakPrice
			for _, p := range prices {
				engine.Evaluate(pos, p)
				if pos.PeakPrice < prev {
					return false
				}
				prev = pos.PeakPrice
			}
			return true
		},
		positionGen(), gen.SliceOfN(20, gen.Float64Range(1, 1000)),
	))

	properties.Property("net is gross minus both fees", prop.ForAll(
		func(current, purchase, shares, fee float64) bool {
			got := FeeAdjustedPnL(current, purchase, shares, fee)
			return got.Net == got.Gross-2*fee && got.TotalFee == 2*fee
		},
		gen.Float64Range(1, 1000),
		gen.Float64Range(1, 1000),
		gen.Float64Range(0.001, 1000),
		gen.Float64Range(0, 50),
	))

	properties.TestingRun(t)
}
