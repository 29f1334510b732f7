package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/flowcast/internal/contract"
	"github.com/huangsam/flowcast/internal/parquet"
	"github.com/huangsam/flowcast/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteForecastResults outputs the forecast results, dispatching based on the output format configured.
func WriteForecastResults(result schema.ForecastResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := floatFormatter(cfg.Precision)

	var err error
	switch cfg.Output {
	case schema.JSONOut:
		err = writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONResultsForForecast(w, result)
		}, "Wrote JSON forecast")
	case schema.CSVOut:
		err = writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForForecast(w, result.Rows, fmtFloat)
		}, "Wrote CSV forecast")
	case schema.ParquetOut:
		err = writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.Write(w, parquet.ConvertForecastRows(result.Rows))
		}, "Wrote Parquet forecast")
	case schema.ExcelOut:
		err = writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeExcelResultsForForecast(w, result)
		}, "Wrote forecast workbook")
	default:
		err = writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeForecastTable(w, result, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
	if err != nil {
		return fmt.Errorf("error writing %s output: %w", cfg.Output, err)
	}
	return nil
}

// writeForecastTable renders the series summary and the per-day predictions.
func writeForecastTable(w io.Writer, result schema.ForecastResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	if _, err := fmt.Fprintln(w, heading(cfg, "📈", "Walk-forward validation")); err != nil {
		return err
	}

	summary := tablewriter.NewWriter(w)
	summary.Header([]string{"Rank", "Series", "Model", "Strategy", "Train", "Test", "MAE", "Label", "Params"})
	summary.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})
	paramsWidth := getMaxTableParamsWidth(cfg)
	var data [][]string
	for _, s := range schema.Summarize(result.Series) {
		data = append(data, []string{
			strconv.Itoa(s.Rank),
			s.Key,
			string(s.Model),
			string(s.Strategy),
			strconv.Itoa(s.TrainSize),
			strconv.Itoa(s.TestSize),
			fmtFloat(s.MAE),
			label(cfg, s.Label),
			contract.TruncateText(s.Params, paramsWidth),
		})
	}
	if err := summary.Bulk(data); err != nil {
		return err
	}
	if err := summary.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, heading(cfg, "🗓️ ", "Actual vs predicted")); err != nil {
		return err
	}
	rows := tablewriter.NewWriter(w)
	rows.Header([]string{"Date", "Series", "Type", "Actual", "Predicted", "Cum Actual", "Cum Predicted"})
	rows.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})
	data = data[:0]
	for _, r := range result.Rows {
		data = append(data, []string{
			r.Date.Format(schema.DateFormat),
			r.PredictionInfo,
			string(r.Type),
			fmtFloat(r.Actual),
			fmtFloat(r.Predicted),
			fmtFloat(r.CumulativeActual),
			fmtFloat(r.CumulativePredicted),
		})
	}
	if err := rows.Bulk(data); err != nil {
		return err
	}
	if err := rows.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "Run %s validated %d series in %v with %d workers. Run backend: %s\n",
		result.RunID, len(result.Series), duration, cfg.Workers, cfg.RunBackend)
	return err
}

// writeCSVResultsForForecast writes the combined actual-vs-predicted table in CSV format.
func writeCSVResultsForForecast(w io.Writer, rows []schema.ForecastRow, fmtFloat func(float64) string) error {
	header := []string{
		"date",
		"actual",
		"predicted",
		"cumulative_actual",
		"cumulative_predicted",
		"prediction_info",
		"type",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range rows {
			rec := []string{
				r.Date.Format(schema.DateFormat),
				fmtFloat(r.Actual),
				fmtFloat(r.Predicted),
				fmtFloat(r.CumulativeActual),
				fmtFloat(r.CumulativePredicted),
				r.PredictionInfo,
				string(r.Type),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeJSONResultsForForecast writes the run, the ranked summaries and the combined rows.
func writeJSONResultsForForecast(w io.Writer, result schema.ForecastResult) error {
	output := struct {
		RunID   string                  `json:"run_id"`
		Summary []schema.SeriesSummary  `json:"summary"`
		Series  []schema.SeriesForecast `json:"series"`
		Rows    []schema.ForecastRow    `json:"rows"`
	}{
		RunID:   result.RunID,
		Summary: schema.Summarize(result.Series),
		Series:  result.Series,
		Rows:    result.Rows,
	}
	return writeJSON(w, output)
}

// writeExcelResultsForForecast writes a workbook with a Predictions and a Summary sheet.
func writeExcelResultsForForecast(w io.Writer, result schema.ForecastResult) error {
	predictions := sheet{
		name:    "Predictions",
		headers: []string{"Date", "Actual", "Predicted", "CumulativeActual", "CumulativePredicted", "PredictionInfo", "Type"},
	}
	for _, r := range result.Rows {
		predictions.rows = append(predictions.rows, []any{
			r.Date.Format(schema.DateFormat), r.Actual, r.Predicted,
			r.CumulativeActual, r.CumulativePredicted, r.PredictionInfo, string(r.Type),
		})
	}

	summary := sheet{
		name:    "Summary",
		headers: []string{"Rank", "Series", "Kind", "Model", "Strategy", "Train", "Test", "MAE", "Label", "Params"},
	}
	for _, s := range schema.Summarize(result.Series) {
		summary.rows = append(summary.rows, []any{
			s.Rank, s.Key, string(s.Kind), string(s.Model), string(s.Strategy),
			s.TrainSize, s.TestSize, s.MAE, s.Label, s.Params,
		})
	}

	return writeWorkbook(w, []sheet{predictions, summary})
}
