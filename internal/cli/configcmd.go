package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cryptopilot/internal/config"
	"cryptopilot/pkg/utils"
)

func newConfigCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			cfg := app.Config

			if output.IsJSON() {
				return output.JSON(cfg)
			}

			output.Box("Trading", []string{
				fmt.Sprintf("Symbols:        %s", strings.Join(cfg.Trading.Symbols, ", ")),
				fmt.Sprintf("Mode:           %s", tradingMode(cfg)),
				fmt.Sprintf("Initial cash:   %s", utils.FormatCurrency(cfg.Trading.InitialCash)),
				fmt.Sprintf("Buy fraction:   %.0f%%", cfg.Trading.BuyFraction*100),
				fmt.Sprintf("Cycle interval: %s", cfg.Trading.CycleInterval),
			})
			output.Box("Risk", []string{
				fmt.Sprintf("Stop loss:      %s", utils.FormatPercent(cfg.Risk.StopLossPct)),
				fmt.Sprintf("Take profit:    %s", utils.FormatPercent(cfg.Risk.TakeProfitPct)),
				fmt.Sprintf("Trailing stop:  %s", utils.FormatPercent(cfg.Risk.TrailingStopPct)),
				fmt.Sprintf("Portfolio stop: %s", utils.FormatPercent(cfg.Risk.PortfolioStopPct)),
				fmt.Sprintf("Fee per trade:  %s", utils.FormatCurrency(cfg.Risk.FeePerTrade)),
			})
			output.Box("Agents", []string{
				fmt.Sprintf("Model:   %s", cfg.Agents.Model),
				fmt.Sprintf("API key: %s", maskedKey(cfg)),
			})
			output.Box("Store", []string{
				fmt.Sprintf("Path: %s", cfg.Store.Path),
			})
			if cfg.Metrics.Enabled {
				output.Box("Metrics", []string{
					fmt.Sprintf("Listen: %s", cfg.Metrics.Listen),
				})
			}
			return nil
		},
	}
}

func tradingMode(cfg *config.Config) string {
	if cfg.Trading.Aggressive {
		return "aggressive"
	}
	return "balanced"
}

func maskedKey(cfg *config.Config) string {
	key := cfg.Credentials.OpenAI.APIKey
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func newVersionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			}
			output.Printf("cryptopilot %s (built %s)\n", Version, BuildDate)
			return nil
		},
	}
}
