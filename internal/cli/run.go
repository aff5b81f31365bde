package cli

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"cryptopilot/internal/agents"
	"cryptopilot/internal/analysis/scoring"
	"cryptopilot/internal/engine"
	"cryptopilot/internal/execution"
	"cryptopilot/internal/marketdata"
	"cryptopilot/internal/monitoring"
	"cryptopilot/pkg/utils"
)

// defaultBasePrices seeds the simulated feed with plausible starting levels.
var defaultBasePrices = map[string]float64{
	"BTC": 60000,
	"ETH": 3000,
	"SOL": 150,
}

// buildEngine wires the full cycle engine from the app dependencies.
func buildEngine(app *App, seed int64) (*engine.Engine, *execution.PaperExecutor, error) {
	if app.LLMClient == nil {
		return nil, nil, fmt.Errorf("OpenAI API key required: set OPENAI_API_KEY or credentials.toml")
	}
	if app.Store == nil {
		return nil, nil, fmt.Errorf("data store unavailable")
	}

	cfg := app.Config
	provider := marketdata.NewSimProvider(marketdata.SimConfig{
		BasePrices: defaultBasePrices,
		Drift:      0.0001,
		Volatility: 0.01,
		Seed:       seed,
	})
	snapshots := marketdata.NewSnapshotBuilder(provider, app.Logger)

	executor := execution.NewPaperExecutor(execution.PaperExecutorConfig{
		InitialCash: cfg.Trading.InitialCash,
		FeePerTrade: cfg.Risk.FeePerTrade,
		BuyFraction: cfg.Trading.BuyFraction,
	}, app.Logger)

	// Carry open positions across restarts.
	if positions, err := app.Store.GetPositions(context.Background()); err != nil {
		app.Logger.Warn().Err(err).Msg("Failed to restore positions")
	} else if len(positions) > 0 {
		executor.Restore(positions)
		app.Logger.Info().Int("count", len(positions)).Msg("Restored persisted positions")
	}

	eng := engine.New(
		cfg,
		snapshots,
		scoring.NewScorer(),
		agents.NewTrendAnalyst(app.LLMClient, app.Logger),
		agents.NewRecommender(app.LLMClient, app.Logger),
		executor,
		app.Store,
		app.Logger,
	)
	return eng, executor, nil
}

func newRunCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run trading cycles continuously",
		Long: `Run executes trading cycles at the configured interval until
interrupted or the --cycles limit is reached.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			maxCycles, _ := cmd.Flags().GetInt("cycles")
			seed, _ := cmd.Flags().GetInt64("seed")

			eng, executor, err := buildEngine(app, seed)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if app.Config.Metrics.Enabled {
				go serveMetrics(app, ctx)
			}

			interval := app.Config.Trading.CycleInterval
			if interval <= 0 {
				interval = 5 * time.Minute
			}

			output.Info("Starting trading loop (interval %s, %d symbols)", interval, len(app.Config.Trading.Symbols))

			completed := 0
			for {
				result, err := eng.RunCycle(ctx)
				if err != nil {
					if ctx.Err() != nil {
						break
					}
					output.Error("Cycle failed: %v", err)
				} else {
					printCycleResult(output, result, executor.Cash())
					if result.Record.EmergencyStop {
						output.Error("Emergency portfolio stop tripped, halting")
						return nil
					}
				}

				completed++
				if maxCycles > 0 && completed >= maxCycles {
					break
				}

				select {
				case <-ctx.Done():
					output.Dim("Interrupted, shutting down")
					return nil
				case <-time.After(interval):
				}
			}
			return nil
		},
	}

	cmd.Flags().Int("cycles", 0, "stop after N cycles (0 = run until interrupted)")
	cmd.Flags().Int64("seed", 0, "seed for the simulated market feed (0 = random)")
	return cmd
}

func newCycleCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cycle",
		Short: "Run a single trading cycle",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			seed, _ := cmd.Flags().GetInt64("seed")

			eng, executor, err := buildEngine(app, seed)
			if err != nil {
				return err
			}

			result, err := eng.RunCycle(cmd.Context())
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(result)
			}
			printCycleResult(output, result, executor.Cash())
			return nil
		},
	}

	cmd.Flags().Int64("seed", 0, "seed for the simulated market feed (0 = random)")
	return cmd
}

func printCycleResult(output *Output, result *engine.CycleResult, cash float64) {
	rec := result.Record
	lines := []string{
		fmt.Sprintf("Outcome:   %s", output.Decision(string(rec.Outcome))),
		fmt.Sprintf("Attempts:  %d", len(rec.Attempts)),
		fmt.Sprintf("Trades:    %d", rec.TradeCount),
		fmt.Sprintf("Net P&L:   %s", output.FormatPnL(rec.NetPnL)),
		fmt.Sprintf("Cash:      %s", utils.FormatCurrency(cash)),
	}
	if rec.EmergencyStop {
		lines = append(lines, output.Red("EMERGENCY STOP"))
	}
	output.Box(fmt.Sprintf("Cycle %s", rec.ID), lines)

	for _, trade := range result.Trades {
		output.Printf("  %s %s %s @ %s (fee %s) %s\n",
			output.Action(string(trade.Action)),
			utils.FormatShares(trade.Shares),
			trade.Symbol,
			utils.FormatCurrency(trade.Price),
			utils.FormatCurrency(trade.Fee),
			output.DimText(trade.Reason),
		)
	}
}

func serveMetrics(app *App, ctx context.Context) {
	server := &http.Server{
		Addr:    app.Config.Metrics.Listen,
		Handler: monitoring.Handler(),
	}
	go func() {
		<-ctx.Done()
		server.Close()
	}()
	app.Logger.Info().Str("listen", app.Config.Metrics.Listen).Msg("Metrics endpoint started")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		app.Logger.Warn().Err(err).Msg("Metrics endpoint failed")
	}
}
