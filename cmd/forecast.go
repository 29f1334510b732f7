package cmd

import (
	"github.com/huangsam/flowcast/core"
	"github.com/huangsam/flowcast/internal/contract"
	"github.com/spf13/cobra"
)

// forecastCmd runs walk-forward validation on every series.
var forecastCmd = &cobra.Command{
	Use:   "forecast <tickets.csv>",
	Short: "Validate a regressor on each daily series with walk-forward retraining.",
	Long: `Frame each daily series as a lag window, split it into an ordered train
prefix and test suffix, then predict every test day with a model refitted on
all days before it.

Each step fits the chosen --model (forest, boost, ridge). The --strategy
decides its hyperparameters:
  fixed  - --params on top of the model defaults
  grid   - exhaustive search over the config file grid
  random - --n-iter samples from the config file distributions

Searches score candidates with time-series cross-validation (--cv-splits).
Series run concurrently, up to --workers at once.

Set --run-backend to record every run, series and step for later export.

Examples:
  # Default boosted trees with random search
  flowcast forecast tickets.csv

  # Fast ridge baseline on flow only
  flowcast forecast tickets.csv --model ridge --strategy fixed --kinds flow

  # Record runs and reuse the best parameters next time
  flowcast forecast tickets.csv --run-backend sqlite
  flowcast forecast tickets.csv --run-backend sqlite --reuse-best

  # Workbook with predictions and summary sheets
  flowcast forecast tickets.csv --output xlsx --output-file forecast.xlsx`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteForecast(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run forecast", err)
		}
	},
}
