package cmd

import (
	"github.com/huangsam/flowcast/core"
	"github.com/huangsam/flowcast/internal/contract"
	"github.com/spf13/cobra"
)

// generateCmd produces a synthetic ticket history.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic ticket-status history.",
	Long: `Generate a table of ticket status events for three example projects.

Each ticket walks through Refined, To Do, In Progress, In Review and Done,
stopping early at a project-specific rate. Every event carries its program
increment (PI), team, feature, type, priority, scope and story points.

The same --gen-seed always yields the same table. CSV output written to a file
also writes the PI planning window next to it (<name>_pis.csv).

Examples:
  # Write 1000 tickets to tickets.csv and tickets_pis.csv
  flowcast generate --output csv --output-file tickets.csv

  # A smaller, reproducible history ending on a fixed date
  flowcast generate --tickets 200 --gen-seed 7 --gen-end 2023-06-30 --output csv

  # Columnar output for pandas or DuckDB
  flowcast generate --output parquet --output-file tickets.parquet`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteGenerate(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot generate tickets", err)
		}
	},
}
