package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/flowcast/internal/contract"
	"github.com/huangsam/flowcast/internal/iocache"
	"github.com/huangsam/flowcast/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runBackendConfig reads and validates the run store settings.
// An empty backend means run tracking is disabled.
func runBackendConfig() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	backend := schema.NoneBackend
	if backendStr := viper.GetString("run-backend"); backendStr != "" {
		backend = schema.DatabaseBackend(backendStr)
	}
	connStr := viper.GetString("run-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// runsSetup loads minimal configuration needed for run store operations.
// This is used by commands that need run access without full shared setup.
func runsSetup() error {
	backend, connStr, err := runBackendConfig()
	if err != nil {
		return err
	}

	// No series cache for runs commands
	if err := iocache.InitStores("", "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize run store: %w", err)
	}
	cfg.RunBackend = backend
	cfg.RunDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// runsSetupWrapper wraps runsSetup to provide PreRunE for runs commands.
func runsSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsSetup()
}

// runsMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize stores or create tables,
// allowing migrations to run on a fresh database.
func runsMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := runBackendConfig()
	if err != nil {
		return err
	}
	cfg.RunBackend = backend
	cfg.RunDBConnect = connStr
	return nil
}

// runsCmd focused on forecast run management.
//
// Note: Runs subcommands use minimal initialization (runsSetup) instead of
// the full sharedSetup used by the forecast commands.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage recorded forecast runs and exports",
	Long: `Manage the history of forecast runs recorded with --run-backend.

Every tracked forecast stores:
- Run metadata (label, timestamps, configuration, duration)
- One result per series (model, strategy, partition sizes, MAE, final parameters)
- Every walk-forward step (target date, actual, predicted, history size, parameters)

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show run tracking statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all tracking data
  migrate - Run database schema migrations

Examples:
  # Check tracking status
  flowcast runs status --run-backend sqlite

  # Export for analysis in pandas/DuckDB
  flowcast runs export --run-backend sqlite --output-file runs`,
}

// runsClearCmd clears the run data.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded forecast runs",
	Long: `Delete all stored runs, series results and predictions.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  flowcast runs export --run-backend sqlite --output-file backup
  flowcast runs clear --run-backend sqlite`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		// Release the SQLite handle before removing its file
		iocache.CloseStores()
		if err := iocache.ClearRuns(cfg.RunBackend, runFilePath(), cfg.RunDBConnect); err != nil {
			contract.LogFatal("Failed to clear run data", err)
		}
		fmt.Println("Run data cleared successfully.")
	},
}

// runsStatusCmd shows run store status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run tracking statistics and connection details",
	Long: `Show the backend, connection state, run count, latest run, series and
prediction totals and table sizes of the run store.

Examples:
  flowcast runs status --run-backend sqlite`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetRunStore()
		if store == nil {
			contract.LogFatal("Failed to get run status", fmt.Errorf("run tracking is disabled; set --run-backend"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run status", err)
		}
		iocache.PrintRunStatus(os.Stdout, status)
	},
}

// runsExportCmd exports run data to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded runs to Parquet for BI tools and analytics",
	Long: `Export all stored run data to three Parquet files sharing the
--output-file prefix:
  <prefix>.runs.parquet
  <prefix>.series_results.parquet
  <prefix>.predictions.parquet

Examples:
  flowcast runs export --run-backend sqlite --output-file runs
  duckdb -c "SELECT * FROM read_parquet('runs.predictions.parquet') LIMIT 10"`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExportRuns(iocache.Manager.GetRunStore(), cfg.OutputFile, os.Stdout); err != nil {
			contract.LogFatal("Failed to export run data", err)
		}
	},
}

// runsMigrateCmd runs database migrations for the run store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Upgrade to latest
  flowcast runs migrate --run-backend sqlite

  # Roll back everything
  flowcast runs migrate --run-backend sqlite --target-version 0`,
	PreRunE: runsMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateRuns(cfg.RunBackend, cfg.RunDBConnect, targetVersion, os.Stdout); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}

// runFilePath returns the SQLite file of the run store, honoring a custom path.
func runFilePath() string {
	if cfg.RunBackend == schema.SQLiteBackend && cfg.RunDBConnect != "" {
		return cfg.RunDBConnect
	}
	return iocache.GetRunDBFilePath()
}
