package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/flowcast/internal/contract"
	"github.com/huangsam/flowcast/internal/parquet"
)

// ExportRuns writes the run history of a store to three Parquet files that
// share the outputFile prefix.
func ExportRuns(store contract.RunStore, outputFile string, w io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run tracking is disabled; set --run-backend")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no forecast runs found to export")
	}
	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	results, err := store.GetAllSeriesResults()
	if err != nil {
		return fmt.Errorf("failed to retrieve series results: %w", err)
	}
	predictions, err := store.GetAllPredictions()
	if err != nil {
		return fmt.Errorf("failed to retrieve predictions: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteFile(parquet.ConvertRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(runs), runsFile)

	resultsFile := outputFile + ".series_results.parquet"
	if err := parquet.WriteFile(parquet.ConvertSeriesResultRecords(results), resultsFile); err != nil {
		return fmt.Errorf("failed to write series results: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d series results to: %s\n", len(results), resultsFile)

	predictionsFile := outputFile + ".predictions.parquet"
	if err := parquet.WriteFile(parquet.ConvertPredictionRecords(predictions), predictionsFile); err != nil {
		return fmt.Errorf("failed to write predictions: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d predictions to: %s\n", len(predictions), predictionsFile)
	return nil
}
