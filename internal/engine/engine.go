// Package engine orchestrates one trading cycle end to end: market data,
// scoring, AI collaboration, validation, triggers, execution, persistence.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"cryptopilot/internal/agents"
	"cryptopilot/internal/analysis"
	"cryptopilot/internal/analysis/scoring"
	"cryptopilot/internal/config"
	"cryptopilot/internal/errors"
	"cryptopilot/internal/execution"
	"cryptopilot/internal/models"
	"cryptopilot/internal/monitoring"
	"cryptopilot/internal/store"
	"cryptopilot/internal/trading"
)

// Snapshotter supplies the per-cycle indicator snapshots.
type Snapshotter interface {
	SnapshotPair(ctx context.Context, symbol string) (short, long models.IndicatorSnapshot)
}

// TrendSource supplies the AI trend view per symbol.
type TrendSource interface {
	Analyze(ctx context.Context, snap models.IndicatorSnapshot, assessment analysis.TechnicalAssessment) (models.TrendAnalysis, error)
}

// RecommendationSource supplies candidate recommendation sets.
type RecommendationSource interface {
	Generate(ctx context.Context, req agents.RecommendationRequest, feedback string) (map[string]models.Recommendation, error)
}

// Engine runs trading cycles.
type Engine struct {
	cfg         *config.Config
	snapshots   Snapshotter
	scorer      *scoring.Scorer
	trends      TrendSource
	recommender RecommendationSource
	validator   *trading.Validator
	triggers    *trading.TriggerEngine
	executor    execution.Executor
	store       store.DataStore
	log         zerolog.Logger
}

// symbolState is everything the cycle learned about one symbol.
type symbolState struct {
	Short      models.IndicatorSnapshot
	Long       models.IndicatorSnapshot
	Assessment analysis.TechnicalAssessment
	Trend      models.TrendAnalysis
	Price      float64
	ForcedExit bool
}

// CycleResult summarizes one completed cycle.
type CycleResult struct {
	Record models.CycleRecord
	Trades []models.Trade
}

// New creates a cycle engine.
func New(
	cfg *config.Config,
	snapshots Snapshotter,
	scorer *scoring.Scorer,
	trends TrendSource,
	recommender RecommendationSource,
	executor execution.Executor,
	st store.DataStore,
	log zerolog.Logger,
) *Engine {
	return &Engine{
		cfg:         cfg,
		snapshots:   snapshots,
		scorer:      scorer,
		trends:      trends,
		recommender: recommender,
		validator: trading.NewValidator(trading.ValidatorConfig{
			Aggressive:    cfg.Trading.Aggressive,
			StopLossPct:   cfg.Risk.StopLossPct,
			FeePerTrade:   cfg.Risk.FeePerTrade,
			PortfolioSize: len(cfg.Trading.Symbols),
		}),
		triggers: trading.NewTriggerEngine(trading.TriggerConfig{
			StopLossPct:     cfg.Risk.StopLossPct,
			TakeProfitPct:   cfg.Risk.TakeProfitPct,
			TrailingStopPct: cfg.Risk.TrailingStopPct,
			FeePerTrade:     cfg.Risk.FeePerTrade,
		}),
		executor: executor,
		store:    st,
		log:      log,
	}
}

// RunCycle executes one full trading cycle.
func (e *Engine) RunCycle(ctx context.Context) (*CycleResult, error) {
	started := time.Now()
	cycleID := fmt.Sprintf("cycle_%d", started.UnixNano())
	log := e.log.With().Str("cycle_id", cycleID).Logger()
	log.Info().Msg("Cycle started")

	result := &CycleResult{
		Record: models.CycleRecord{ID: cycleID, StartedAt: started},
	}

	states := e.collectStates(ctx)

	// Trend analysis stays sequential: one LLM conversation at a time.
	for _, symbol := range e.cfg.Trading.Symbols {
		st := states[symbol]
		trend, err := e.trends.Analyze(ctx, st.Short, st.Assessment)
		if err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("Trend analysis failed")
			monitoring.RecordError("trend_analysis")
			trend = models.TrendAnalysis{
				Symbol:     symbol,
				Trend:      models.TrendNeutral,
				Confidence: models.ConfidenceLow,
				RiskLevel:  models.RiskHigh,
				Reasoning:  "trend analysis unavailable",
			}
		}
		st.Trend = trend
	}

	prices := e.priceMap(states)
	summary := trading.Summarize(e.executor.Positions(), prices, e.cfg.Risk.FeePerTrade)
	monitoring.UpdatePortfolioNetPnL(summary.TotalNetPnL)

	// Emergency stop flattens everything and skips the AI entirely.
	if trading.EmergencyStop(summary, e.cfg.Risk.PortfolioStopPct) {
		log.Error().
			Float64("net_pnl", summary.TotalNetPnL).
			Float64("value", summary.TotalValue).
			Msg("Emergency portfolio stop tripped, liquidating")
		e.liquidate(ctx, cycleID, result)
		result.Record.Outcome = models.DecisionAbort
		result.Record.EmergencyStop = true
		return e.finish(ctx, result, states)
	}

	// Forced exits run before the AI sees the portfolio.
	e.runTriggers(ctx, cycleID, states, result)

	loop := trading.NewValidationLoop(
		&cycleGenerator{engine: e, states: states, summary: summary},
		e.validator,
		func(recs map[string]models.Recommendation) map[string]trading.SymbolContext {
			return e.validationContexts(states)
		},
		log,
	)

	loopResult, err := loop.Run(ctx)
	if err != nil {
		monitoring.RecordError("validation_loop")
		return nil, errors.Wrap(err, "running validation loop")
	}
	result.Record.Attempts = loopResult.Attempts
	result.Record.Outcome = loopResult.Decision

	if loopResult.Decision == models.DecisionProceed {
		if err := e.store.SaveRecommendations(ctx, cycleID, loopResult.Recommendations); err != nil {
			log.Warn().Err(err).Msg("Failed to persist recommendations")
			monitoring.RecordError("store")
		}
		e.executeRecommendations(ctx, cycleID, loopResult.Recommendations, states, result)
	}

	return e.finish(ctx, result, states)
}

// collectStates fans snapshot fetching and scoring out per symbol. Each
// goroutine owns its own state; results meet only at the join.
func (e *Engine) collectStates(ctx context.Context) map[string]*symbolState {
	states := make(map[string]*symbolState, len(e.cfg.Trading.Symbols))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, symbol := range e.cfg.Trading.Symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			short, long := e.snapshots.SnapshotPair(ctx, symbol)
			st := &symbolState{
				Short:      short,
				Long:       long,
				Assessment: e.scorer.AssessDual(short, long),
			}
			if short.Valid {
				st.Price = short.CurrentPrice
			}
			mu.Lock()
			states[symbol] = st
			mu.Unlock()
		}(symbol)
	}
	wg.Wait()

	for symbol, st := range states {
		if st.Price > 0 {
			e.executor.UpdatePrice(symbol, st.Price)
			monitoring.UpdatePrice(symbol, st.Price)
		}
		monitoring.UpdateTechnicalScore(symbol, st.Assessment.Score)
	}
	return states
}

func (e *Engine) priceMap(states map[string]*symbolState) map[string]float64 {
	prices := make(map[string]float64, len(states))
	for symbol, st := range states {
		if st.Price > 0 {
			prices[symbol] = st.Price
		}
	}
	return prices
}

// runTriggers evaluates every held position and executes forced exits.
// Trigger sells bypass validation; the peak updates persist regardless.
func (e *Engine) runTriggers(ctx context.Context, cycleID string, states map[string]*symbolState, result *CycleResult) {
	for symbol, pos := range e.executor.Positions() {
		st, ok := states[symbol]
		if !ok || st.Price <= 0 {
			continue
		}

		outcome := e.triggers.Evaluate(pos, st.Price)
		if !outcome.Fired {
			continue
		}

		monitoring.RecordTrigger(symbol, string(outcome.Kind))
		e.log.Info().
			Str("symbol", symbol).
			Str("trigger", string(outcome.Kind)).
			Float64("change_pct", outcome.ChangePct).
			Msg("Position trigger fired")

		trade, err := e.executor.Execute(ctx, execution.Order{
			Symbol:  symbol,
			Action:  models.ActionSell,
			Reason:  string(outcome.Kind),
			CycleID: cycleID,
		})
		if err != nil {
			e.log.Error().Err(err).Str("symbol", symbol).Msg("Trigger exit failed")
			monitoring.RecordError("execution")
			continue
		}
		st.ForcedExit = true
		e.recordTrade(ctx, trade, result)
	}
}

func (e *Engine) liquidate(ctx context.Context, cycleID string, result *CycleResult) {
	for symbol, pos := range e.executor.Positions() {
		if !pos.Held() {
			continue
		}
		trade, err := e.executor.Execute(ctx, execution.Order{
			Symbol:  symbol,
			Action:  models.ActionSell,
			Reason:  "emergency-stop",
			CycleID: cycleID,
		})
		if err != nil {
			e.log.Error().Err(err).Str("symbol", symbol).Msg("Emergency liquidation failed")
			monitoring.RecordError("execution")
			continue
		}
		e.recordTrade(ctx, trade, result)
	}
}

func (e *Engine) executeRecommendations(ctx context.Context, cycleID string, recs map[string]models.Recommendation, states map[string]*symbolState, result *CycleResult) {
	for symbol, rec := range recs {
		if rec.Action == models.ActionHold {
			continue
		}
		// A trigger already closed this position this cycle.
		if st := states[symbol]; st != nil && st.ForcedExit {
			continue
		}

		trade, err := e.executor.Execute(ctx, execution.Order{
			Symbol:  symbol,
			Action:  rec.Action,
			Reason:  rec.Reasoning,
			CycleID: cycleID,
		})
		if err != nil {
			e.log.Warn().Err(err).Str("symbol", symbol).Str("action", string(rec.Action)).Msg("Execution failed")
			monitoring.RecordError("execution")
			continue
		}
		e.recordTrade(ctx, trade, result)
	}
}

func (e *Engine) recordTrade(ctx context.Context, trade *models.Trade, result *CycleResult) {
	result.Trades = append(result.Trades, *trade)
	monitoring.RecordTrade(trade.Symbol, string(trade.Action))
	if err := e.store.LogTrade(ctx, trade); err != nil {
		e.log.Warn().Err(err).Str("trade_id", trade.ID).Msg("Failed to persist trade")
		monitoring.RecordError("store")
	}
}

// finish persists positions and the cycle record.
func (e *Engine) finish(ctx context.Context, result *CycleResult, states map[string]*symbolState) (*CycleResult, error) {
	for _, pos := range e.executor.Positions() {
		if err := e.store.SavePosition(ctx, pos); err != nil {
			e.log.Warn().Err(err).Str("symbol", pos.Symbol).Msg("Failed to persist position")
			monitoring.RecordError("store")
		}
	}

	summary := trading.Summarize(e.executor.Positions(), e.priceMap(states), e.cfg.Risk.FeePerTrade)
	result.Record.FinishedAt = time.Now()
	result.Record.TradeCount = len(result.Trades)
	result.Record.NetPnL = summary.TotalNetPnL

	if err := e.store.SaveCycle(ctx, &result.Record); err != nil {
		e.log.Warn().Err(err).Msg("Failed to persist cycle")
		monitoring.RecordError("store")
	}

	monitoring.RecordCycle(string(result.Record.Outcome), len(result.Record.Attempts))
	e.log.Info().
		Str("outcome", string(result.Record.Outcome)).
		Int("trades", len(result.Trades)).
		Float64("net_pnl", result.Record.NetPnL).
		Msg("Cycle finished")
	return result, nil
}

// validationContexts assembles the validator's per-symbol view.
func (e *Engine) validationContexts(states map[string]*symbolState) map[string]trading.SymbolContext {
	ctxs := make(map[string]trading.SymbolContext, len(states))
	for symbol, st := range states {
		ctxs[symbol] = trading.SymbolContext{
			Snapshot:     st.Short,
			Assessment:   st.Assessment,
			Trend:        st.Trend,
			Position:     e.executor.Position(symbol),
			CurrentPrice: st.Price,
		}
	}
	return ctxs
}

// cycleGenerator adapts the recommender to the validation loop, rebuilding
// the portfolio request fresh on every pass.
type cycleGenerator struct {
	engine  *Engine
	states  map[string]*symbolState
	summary trading.PortfolioSummary
}

func (g *cycleGenerator) Generate(ctx context.Context, feedback string) (map[string]models.Recommendation, error) {
	e := g.engine
	req := agents.RecommendationRequest{
		Symbols:     e.cfg.Trading.Symbols,
		Assessments: make(map[string]analysis.TechnicalAssessment, len(g.states)),
		Trends:      make(map[string]models.TrendAnalysis, len(g.states)),
		Positions:   e.executor.Positions(),
		Prices:      e.priceMap(g.states),
		Summary:     g.summary,
	}
	for symbol, st := range g.states {
		req.Assessments[symbol] = st.Assessment
		req.Trends[symbol] = st.Trend
	}
	return e.recommender.Generate(ctx, req, feedback)
}
