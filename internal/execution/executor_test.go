package execution

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptopilot/internal/errors"
	"cryptopilot/internal/models"
)

func newTestExecutor() *PaperExecutor {
	e := NewPaperExecutor(PaperExecutorConfig{
		InitialCash: 10000,
		FeePerTrade: 1,
		BuyFraction: 0.1,
	}, zerolog.Nop())
	e.UpdatePrice("BTC", 100)
	return e
}

func TestExecuteBuy(t *testing.T) {
	t.Run("explicit size", func(t *testing.T) {
		e := newTestExecutor()
		trade, err := e.Execute(context.Background(), Order{Symbol: "BTC", Action: models.ActionBuy, Shares: 10})

		require.NoError(t, err)
		assert.Equal(t, models.ActionBuy, trade.Action)
		assert.InDelta(t, 10.0, trade.Shares, 1e-9)
		assert.InDelta(t, 1.0, trade.Fee, 1e-9)

		pos := e.Position("BTC")
		require.True(t, pos.Held())
		assert.InDelta(t, 100.0, pos.AverageCost, 1e-9)
		assert.InDelta(t, 100.0, pos.PeakPrice, 1e-9, "peak initializes to cost")
		assert.InDelta(t, 10000-1001, e.Cash(), 1e-9)
	})

	t.Run("auto size commits the buy fraction", func(t *testing.T) {
		e := newTestExecutor()
		trade, err := e.Execute(context.Background(), Order{Symbol: "BTC", Action: models.ActionBuy})

		require.NoError(t, err)
		assert.InDelta(t, 10.0, trade.Shares, 1e-9) // 10% of 10000 at price 100
	})

	t.Run("averages cost across lots", func(t *testing.T) {
		e := newTestExecutor()
		_, err := e.Execute(context.Background(), Order{Symbol: "BTC", Action: models.ActionBuy, Shares: 10})
		require.NoError(t, err)

		e.UpdatePrice("BTC", 110)
		_, err = e.Execute(context.Background(), Order{Symbol: "BTC", Action: models.ActionBuy, Shares: 10})
		require.NoError(t, err)

		pos := e.Position("BTC")
		assert.InDelta(t, 20.0, pos.Shares, 1e-9)
		assert.InDelta(t, 105.0, pos.AverageCost, 1e-9)
	})

	t.Run("insufficient funds", func(t *testing.T) {
		e := newTestExecutor()
		_, err := e.Execute(context.Background(), Order{Symbol: "BTC", Action: models.ActionBuy, Shares: 1000})

		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrInsufficientFunds))
		assert.InDelta(t, 10000.0, e.Cash(), 1e-9, "failed fill leaves cash untouched")
	})
}

func TestExecuteSell(t *testing.T) {
	buyTen := func(e *PaperExecutor) {
		_, err := e.Execute(context.Background(), Order{Symbol: "BTC", Action: models.ActionBuy, Shares: 10})
		require.NoError(t, err)
	}

	t.Run("partial exit keeps cost basis and peak", func(t *testing.T) {
		e := newTestExecutor()
		buyTen(e)
		e.Position("BTC").PeakPrice = 120

		e.UpdatePrice("BTC", 110)
		trade, err := e.Execute(context.Background(), Order{Symbol: "BTC", Action: models.ActionSell, Shares: 4})

		require.NoError(t, err)
		assert.InDelta(t, 4.0, trade.Shares, 1e-9)
		pos := e.Position("BTC")
		assert.InDelta(t, 6.0, pos.Shares, 1e-9)
		assert.InDelta(t, 100.0, pos.AverageCost, 1e-9)
		assert.InDelta(t, 120.0, pos.PeakPrice, 1e-9)
	})

	t.Run("full exit resets cost basis and peak", func(t *testing.T) {
		e := newTestExecutor()
		buyTen(e)
		e.Position("BTC").PeakPrice = 120

		e.UpdatePrice("BTC", 110)
		_, err := e.Execute(context.Background(), Order{Symbol: "BTC", Action: models.ActionSell})

		require.NoError(t, err)
		pos := e.Position("BTC")
		assert.False(t, pos.Held())
		assert.Zero(t, pos.AverageCost)
		assert.Zero(t, pos.PeakPrice)
		// 10000 - 1001 + (10*110 - 1)
		assert.InDelta(t, 10098.0, e.Cash(), 1e-9)
	})

	t.Run("selling flat is an error", func(t *testing.T) {
		e := newTestExecutor()
		_, err := e.Execute(context.Background(), Order{Symbol: "BTC", Action: models.ActionSell})

		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrPositionNotFound))
	})

	t.Run("overselling is an error", func(t *testing.T) {
		e := newTestExecutor()
		buyTen(e)
		_, err := e.Execute(context.Background(), Order{Symbol: "BTC", Action: models.ActionSell, Shares: 20})

		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrInsufficientShares))
		assert.InDelta(t, 10.0, e.Position("BTC").Shares, 1e-9)
	})
}

func TestExecuteRejections(t *testing.T) {
	t.Run("no price quote", func(t *testing.T) {
		e := newTestExecutor()
		_, err := e.Execute(context.Background(), Order{Symbol: "ETH", Action: models.ActionBuy, Shares: 1})

		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrDataNotFound))
	})

	t.Run("hold is not tradable", func(t *testing.T) {
		e := newTestExecutor()
		_, err := e.Execute(context.Background(), Order{Symbol: "BTC", Action: models.ActionHold})
		assert.Error(t, err)
	})
}
