// Package cmd defines the command-line interface for flowcast.
package cmd

import (
	"github.com/huangsam/flowcast/internal/contract"
	"github.com/huangsam/flowcast/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(seriesCmd)
	rootCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet or xlsx")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of series validated concurrently")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().StringP("projects", "p", "", "Comma-separated list of projects to keep (default all)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Series cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("run-backend", "", "Run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("run-db-connect", "", "Database connection string for run tracking (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("emoji", "no", "Enable emojis in section headers (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of generateCmd to Viper
	generateCmd.Flags().Int("tickets", contract.DefaultTickets, "Number of tickets to generate")
	generateCmd.Flags().Uint64("gen-seed", contract.DefaultSeed, "Seed of the ticket generator")
	generateCmd.Flags().String("gen-end", "", "Last status date as YYYY-MM-DD (default today)")
	if err := viper.BindPFlags(generateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding generate flags", err)
	}

	// Bind all flags of forecastCmd to Viper
	forecastCmd.Flags().String("kinds", "", "Comma-separated series kinds to forecast: done, flow (default both)")
	forecastCmd.Flags().Int("n-in", contract.DefaultNIn, "Number of lagged days used as features")
	forecastCmd.Flags().Int("n-out", contract.DefaultNOut, "Number of target days per supervised row")
	forecastCmd.Flags().Float64("split-ratio", contract.DefaultSplitRatio, "Share of rows used as the initial training history")
	forecastCmd.Flags().Int("last-n-days", 0, "Keep only the last N days of each series in the forecast table (0 means all)")
	forecastCmd.Flags().String("strategy", string(schema.RandomStrategy), "Hyperparameter search per step: fixed or grid or random")
	forecastCmd.Flags().String("model", string(schema.BoostModel), "Regressor: forest or boost or ridge")
	forecastCmd.Flags().Int("n-iter", contract.DefaultNIter, "Random search candidates per step")
	forecastCmd.Flags().Int("cv-splits", contract.DefaultCVSplits, "Time-series cross-validation folds per search")
	forecastCmd.Flags().Uint64("seed", contract.DefaultSeed, "Seed of the search and of the tree ensembles")
	forecastCmd.Flags().Bool("round", true, "Round predictions half-to-even before scoring")
	forecastCmd.Flags().Bool("reuse-best", false, "Reuse the final parameters of the latest recorded run of each series")
	forecastCmd.Flags().String("params", "", "Fixed parameters as key=value pairs (e.g., 'max_depth=4,learning_rate=0.1')")
	if err := viper.BindPFlags(forecastCmd.Flags()); err != nil {
		contract.LogFatal("Error binding forecast flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
