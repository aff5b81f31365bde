package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cryptopilot/internal/models"
	"cryptopilot/internal/store"
	"cryptopilot/pkg/utils"
)

func newDecisionsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decisions",
		Short: "Show recent cycle decisions and validation history",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("data store unavailable")
			}

			limit, _ := cmd.Flags().GetInt("limit")
			cycleID, _ := cmd.Flags().GetString("cycle")
			outcome, _ := cmd.Flags().GetString("outcome")

			if cycleID != "" {
				return showCycleDetail(cmd.Context(), app, output, cycleID)
			}

			cycles, err := app.Store.GetCycles(cmd.Context(), store.CycleFilter{
				Outcome: models.ValidationDecision(outcome),
				Limit:   limit,
			})
			if err != nil {
				return fmt.Errorf("loading cycles: %w", err)
			}

			if output.IsJSON() {
				return output.JSON(cycles)
			}

			if len(cycles) == 0 {
				output.Dim("No cycles recorded")
				return nil
			}

			table := NewTable(output, "CYCLE", "STARTED", "OUTCOME", "ATTEMPTS", "TRADES", "NET P&L")
			for _, c := range cycles {
				outcomeCell := output.Decision(string(c.Outcome))
				if c.EmergencyStop {
					outcomeCell = output.Red("EMERGENCY")
				}
				table.AddRow(
					c.ID,
					c.StartedAt.Format(time.RFC3339),
					outcomeCell,
					fmt.Sprintf("%d", len(c.Attempts)),
					fmt.Sprintf("%d", c.TradeCount),
					output.FormatPnL(c.NetPnL),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().Int("limit", 20, "maximum cycles to show")
	cmd.Flags().String("cycle", "", "show full detail for one cycle ID")
	cmd.Flags().String("outcome", "", "filter by outcome (proceed, rerun, abort)")
	return cmd
}

func showCycleDetail(ctx context.Context, app *App, output *Output, cycleID string) error {
	cycles, err := app.Store.GetCycles(ctx, store.CycleFilter{Limit: 0})
	if err != nil {
		return fmt.Errorf("loading cycles: %w", err)
	}

	for _, c := range cycles {
		if c.ID != cycleID {
			continue
		}

		output.Box(fmt.Sprintf("Cycle %s", c.ID), []string{
			fmt.Sprintf("Outcome:  %s", output.Decision(string(c.Outcome))),
			fmt.Sprintf("Started:  %s", c.StartedAt.Format(time.RFC3339)),
			fmt.Sprintf("Trades:   %d", c.TradeCount),
			fmt.Sprintf("Net P&L:  %s", output.FormatPnL(c.NetPnL)),
		})

		if len(c.Attempts) > 0 {
			output.Bold("Validation attempts:")
			for _, a := range c.Attempts {
				output.Printf("  %d. %s  %s\n", a.Attempt, output.Decision(string(a.Decision)), output.DimText(a.Reason))
			}
		}

		recs, err := app.Store.GetRecommendations(ctx, cycleID)
		if err == nil && len(recs) > 0 {
			output.Bold("Recommendations:")
			for symbol, rec := range recs {
				output.Printf("  %s %s [%s] %s\n",
					output.Action(string(rec.Action)),
					symbol,
					rec.Priority,
					output.DimText(rec.Reasoning),
				)
			}
		}
		return nil
	}
	return fmt.Errorf("cycle %s not found", cycleID)
}

func newTradesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trades",
		Short: "Show executed trades",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("data store unavailable")
			}

			limit, _ := cmd.Flags().GetInt("limit")
			symbol, _ := cmd.Flags().GetString("symbol")

			trades, err := app.Store.GetTrades(cmd.Context(), store.TradeFilter{
				Symbol: strings.ToUpper(symbol),
				Limit:  limit,
			})
			if err != nil {
				return fmt.Errorf("loading trades: %w", err)
			}

			if output.IsJSON() {
				return output.JSON(trades)
			}

			if len(trades) == 0 {
				output.Dim("No trades recorded")
				return nil
			}

			table := NewTable(output, "TIME", "SYMBOL", "ACTION", "SHARES", "PRICE", "FEE", "REASON")
			for _, t := range trades {
				table.AddRow(
					t.Timestamp.Format("2006-01-02 15:04:05"),
					t.Symbol,
					output.Action(string(t.Action)),
					utils.FormatShares(t.Shares),
					utils.FormatCurrency(t.Price),
					utils.FormatCurrency(t.Fee),
					t.Reason,
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().Int("limit", 50, "maximum trades to show")
	cmd.Flags().String("symbol", "", "filter by symbol")
	return cmd
}
