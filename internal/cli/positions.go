package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"cryptopilot/pkg/utils"
)

func newPositionsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "positions",
		Short: "Show persisted portfolio positions",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("data store unavailable")
			}

			positions, err := app.Store.GetPositions(cmd.Context())
			if err != nil {
				return fmt.Errorf("loading positions: %w", err)
			}

			if output.IsJSON() {
				return output.JSON(positions)
			}

			if len(positions) == 0 {
				output.Dim("No open positions")
				return nil
			}

			symbols := make([]string, 0, len(positions))
			for symbol := range positions {
				symbols = append(symbols, symbol)
			}
			sort.Strings(symbols)

			table := NewTable(output, "SYMBOL", "SHARES", "AVG COST", "PEAK", "COST BASIS")
			for _, symbol := range symbols {
				pos := positions[symbol]
				table.AddRow(
					pos.Symbol,
					utils.FormatShares(pos.Shares),
					utils.FormatCurrency(pos.AverageCost),
					utils.FormatCurrency(pos.PeakPrice),
					utils.FormatCurrency(pos.Shares*pos.AverageCost),
				)
			}
			table.Render()
			return nil
		},
	}
}
