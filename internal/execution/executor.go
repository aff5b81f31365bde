// Package execution simulates trade execution against current prices. The
// decision core never talks to an exchange; fills happen here.
package execution

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"cryptopilot/internal/errors"
	"cryptopilot/internal/models"
)

// Order is a request to fill a trade. Shares of zero means auto-sizing: a
// configured fraction of cash for a BUY, the full position for a SELL.
type Order struct {
	Symbol  string
	Action  models.Action
	Shares  float64
	Reason  string
	CycleID string
}

// Executor fills orders and owns the resulting position state.
type Executor interface {
	Execute(ctx context.Context, order Order) (*models.Trade, error)
	UpdatePrice(symbol string, price float64)
	Position(symbol string) *models.PositionState
	Positions() map[string]*models.PositionState
	Cash() float64
}

// PaperExecutorConfig holds the simulation settings.
type PaperExecutorConfig struct {
	InitialCash float64
	FeePerTrade float64
	// BuyFraction is the share of available cash committed to an
	// auto-sized BUY.
	BuyFraction float64
}

// PaperExecutor fills orders instantly at the last known price, charging the
// flat per-trade fee from cash.
type PaperExecutor struct {
	mu           sync.Mutex
	cash         float64
	positions    map[string]*models.PositionState
	prices       map[string]float64
	cfg          PaperExecutorConfig
	tradeCounter int
	log          zerolog.Logger
}

// NewPaperExecutor creates a paper trading executor.
func NewPaperExecutor(cfg PaperExecutorConfig, log zerolog.Logger) *PaperExecutor {
	if cfg.BuyFraction <= 0 || cfg.BuyFraction > 1 {
		cfg.BuyFraction = 0.1
	}
	return &PaperExecutor{
		cash:      cfg.InitialCash,
		positions: make(map[string]*models.PositionState),
		prices:    make(map[string]float64),
		cfg:       cfg,
		log:       log,
	}
}

// Restore replaces the executor's book with previously persisted positions.
// Flat entries are dropped.
func (e *PaperExecutor) Restore(positions map[string]*models.PositionState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.positions = make(map[string]*models.PositionState, len(positions))
	for symbol, pos := range positions {
		if !pos.Held() {
			continue
		}
		cp := *pos
		e.positions[symbol] = &cp
	}
}

// UpdatePrice sets the fill price for a symbol.
func (e *PaperExecutor) UpdatePrice(symbol string, price float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.prices[symbol] = price
}

// Execute fills the order at the last known price. HOLD orders are rejected;
// the caller should never submit them.
func (e *PaperExecutor) Execute(_ context.Context, order Order) (*models.Trade, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	price, ok := e.prices[order.Symbol]
	if !ok || price <= 0 {
		return nil, errors.NewExecutionError(order.Symbol, string(order.Action), "no price quote", errors.ErrDataNotFound)
	}

	switch order.Action {
	case models.ActionBuy:
		return e.fillBuy(order, price)
	case models.ActionSell:
		return e.fillSell(order, price)
	default:
		return nil, errors.NewExecutionError(order.Symbol, string(order.Action), "not a tradable action", nil)
	}
}

func (e *PaperExecutor) fillBuy(order Order, price float64) (*models.Trade, error) {
	shares := order.Shares
	if shares <= 0 {
		shares = e.cash * e.cfg.BuyFraction / price
	}
	cost := shares*price + e.cfg.FeePerTrade
	if shares <= 0 || cost > e.cash {
		return nil, errors.NewExecutionError(order.Symbol, "BUY",
			fmt.Sprintf("need %.2f, have %.2f", cost, e.cash), errors.ErrInsufficientFunds)
	}

	pos, exists := e.positions[order.Symbol]
	if !exists {
		pos = &models.PositionState{Symbol: order.Symbol}
		e.positions[order.Symbol] = pos
	}

	// Weighted average cost across the old and new lots.
	totalCost := pos.AverageCost*pos.Shares + price*shares
	pos.Shares += shares
	pos.AverageCost = totalCost / pos.Shares
	if pos.PeakPrice <= 0 {
		pos.PeakPrice = pos.AverageCost
	}

	e.cash -= cost
	return e.record(order, models.ActionBuy, shares, price), nil
}

func (e *PaperExecutor) fillSell(order Order, price float64) (*models.Trade, error) {
	pos := e.positions[order.Symbol]
	if !pos.Held() {
		return nil, errors.NewExecutionError(order.Symbol, "SELL", "no position", errors.ErrPositionNotFound)
	}

	shares := order.Shares
	if shares <= 0 {
		shares = pos.Shares
	}
	if shares > pos.Shares {
		return nil, errors.NewExecutionError(order.Symbol, "SELL",
			fmt.Sprintf("have %.4f shares, asked %.4f", pos.Shares, shares), errors.ErrInsufficientShares)
	}

	pos.Shares -= shares
	if pos.Shares == 0 {
		// Full exit clears the cost basis and the trailing peak.
		pos.AverageCost = 0
		pos.PeakPrice = 0
	}

	e.cash += shares*price - e.cfg.FeePerTrade
	return e.record(order, models.ActionSell, shares, price), nil
}

func (e *PaperExecutor) record(order Order, action models.Action, shares, price float64) *models.Trade {
	e.tradeCounter++
	trade := &models.Trade{
		ID:        fmt.Sprintf("PAPER_%d_%d", time.Now().Unix(), e.tradeCounter),
		Timestamp: time.Now(),
		Symbol:    order.Symbol,
		Action:    action,
		Shares:    shares,
		Price:     price,
		Fee:       e.cfg.FeePerTrade,
		Reason:    order.Reason,
		CycleID:   order.CycleID,
	}
	e.log.Info().
		Str("trade_id", trade.ID).
		Str("symbol", trade.Symbol).
		Str("action", string(action)).
		Float64("shares", shares).
		Float64("price", price).
		Msg("Paper trade filled")
	return trade
}

// Position returns the live position record for a symbol, or nil when the
// symbol was never traded.
func (e *PaperExecutor) Position(symbol string) *models.PositionState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.positions[symbol]
}

// Positions returns the live position map. The trigger engine mutates peak
// prices through these pointers.
func (e *PaperExecutor) Positions() map[string]*models.PositionState {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]*models.PositionState, len(e.positions))
	for k, v := range e.positions {
		out[k] = v
	}
	return out
}

// Cash returns available cash.
func (e *PaperExecutor) Cash() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cash
}
