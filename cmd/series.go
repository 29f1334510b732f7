package cmd

import (
	"github.com/huangsam/flowcast/core"
	"github.com/huangsam/flowcast/internal/contract"
	"github.com/spf13/cobra"
)

// seriesCmd derives the daily series of a ticket table.
var seriesCmd = &cobra.Command{
	Use:   "series <tickets.csv>",
	Short: "Derive daily done and flow ticket counts per project.",
	Long: `Aggregate a ticket table into one gap-free daily series per project and kind.

  Done - tickets reaching Done on each created date
  Flow - distinct tickets in Refined, To Do, In Progress or In Review

Missing calendar days are forward-filled from the previous day. The flow per
program increment and its running total are reported alongside.

Derived series are cached by input checksum (see 'flowcast cache').

Examples:
  # Summary table of every series
  flowcast series tickets.csv

  # Long-format CSV of one project
  flowcast series tickets.csv --projects ADA_Project_1 --output csv`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSeries(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot derive series", err)
		}
	},
}
