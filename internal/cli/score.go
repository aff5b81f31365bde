package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cryptopilot/internal/analysis/scoring"
	"cryptopilot/internal/marketdata"
)

func newScoreCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score [symbol...]",
		Short: "Score technical indicators for symbols",
		Long: `Score fetches candles for each symbol on both timeframes, computes the
full indicator set, and prints the dual-timeframe technical assessment.
Without arguments the configured symbols are scored.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			seed, _ := cmd.Flags().GetInt64("seed")

			symbols := args
			if len(symbols) == 0 {
				symbols = app.Config.Trading.Symbols
			}

			provider := marketdata.NewSimProvider(marketdata.SimConfig{
				BasePrices: defaultBasePrices,
				Drift:      0.0001,
				Volatility: 0.01,
				Seed:       seed,
			})
			snapshots := marketdata.NewSnapshotBuilder(provider, app.Logger)
			scorer := scoring.NewScorer()

			type symbolScore struct {
				Symbol     string   `json:"symbol"`
				Price      float64  `json:"price"`
				Score      float64  `json:"score"`
				NetScore   float64  `json:"net_score"`
				Strength   string   `json:"strength"`
				Confidence string   `json:"confidence"`
				Alignment  string   `json:"alignment"`
				Signals    []string `json:"signals"`
			}
			var scores []symbolScore

			for _, symbol := range symbols {
				symbol = strings.ToUpper(symbol)
				short, long := snapshots.SnapshotPair(cmd.Context(), symbol)
				assessment := scorer.AssessDual(short, long)
				scores = append(scores, symbolScore{
					Symbol:     symbol,
					Price:      short.CurrentPrice,
					Score:      assessment.Score,
					NetScore:   assessment.NetScore,
					Strength:   string(assessment.Strength),
					Confidence: string(assessment.Confidence),
					Alignment:  string(assessment.Alignment),
					Signals:    assessment.Signals,
				})
			}

			if output.IsJSON() {
				return output.JSON(scores)
			}

			for _, s := range scores {
				output.Bold("%s @ %.2f", s.Symbol, s.Price)
				output.Printf("  Score:      %.1f/10 (net %+.1f)\n", s.Score, s.NetScore)
				output.Printf("  Strength:   %s\n", output.Strength(s.Strength))
				output.Printf("  Confidence: %s\n", s.Confidence)
				output.Printf("  Alignment:  %s\n", s.Alignment)
				if len(s.Signals) > 0 {
					output.Dim("  Signals:")
					for _, sig := range s.Signals {
						output.Printf("    %s\n", output.DimText(fmt.Sprintf("- %s", sig)))
					}
				}
				output.Println()
			}
			return nil
		},
	}

	cmd.Flags().Int64("seed", 0, "seed for the simulated market feed (0 = random)")
	return cmd
}
