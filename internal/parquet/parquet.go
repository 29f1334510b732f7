// Package parquet provides data structures and functions for exporting flowcast
// tickets, forecasts and run history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/flowcast/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents a single forecast run with metadata.
// This struct maps to the flowcast_runs database table.
type Run struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// RunLabel is the UUID printed to the user when the run started
	RunLabel string `parquet:"run_label,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TotalSeries is the number of series validated in this run
	TotalSeries int32 `parquet:"total_series,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// SeriesResult is the validation outcome of one series within a run.
// This struct maps to the flowcast_series_results database table.
type SeriesResult struct {
	RunID       int64   `parquet:"run_id,snappy"`
	SeriesKey   string  `parquet:"series_key,snappy"`
	Project     string  `parquet:"project,snappy"`
	Kind        string  `parquet:"kind,snappy"`
	Model       string  `parquet:"model,snappy"`
	Strategy    string  `parquet:"strategy,snappy"`
	TrainSize   int32   `parquet:"train_size,snappy"`
	TestSize    int32   `parquet:"test_size,snappy"`
	MAE         float64 `parquet:"mae,snappy"`
	FinalParams *string `parquet:"final_params,optional,snappy"`
}

// Prediction is one walk-forward step of a series within a run.
// This struct maps to the flowcast_predictions database table.
type Prediction struct {
	RunID       int64     `parquet:"run_id,snappy"`
	SeriesKey   string    `parquet:"series_key,snappy"`
	StepIndex   int32     `parquet:"step_index,snappy"`
	TargetDate  time.Time `parquet:"target_date,snappy"`
	Actual      float64   `parquet:"actual,snappy"`
	Predicted   float64   `parquet:"predicted,snappy"`
	HistorySize int32     `parquet:"history_size,snappy"`
	Params      *string   `parquet:"params,optional,snappy"`
}

// Ticket is one generated ticket status event.
type Ticket struct {
	PI          string    `parquet:"pi,dict,snappy"`
	Name        string    `parquet:"ticket_name,snappy"`
	Status      string    `parquet:"ticket_status,dict,snappy"`
	Project     string    `parquet:"ticket_project,dict,snappy"`
	Team        string    `parquet:"ticket_team,dict,snappy"`
	StatusDate  time.Time `parquet:"ticket_status_date,snappy"`
	CreatedDate time.Time `parquet:"ticket_created_date,snappy"`
	Feature     string    `parquet:"ticket_feature_name,dict,snappy"`
	Type        string    `parquet:"ticket_type,dict,snappy"`
	Priority    string    `parquet:"ticket_priority,dict,snappy"`
	Scope       string    `parquet:"ticket_scope,dict,snappy"`
	TeamMembers int32     `parquet:"team_members,snappy"`
	StoryPoints int32     `parquet:"ticket_story_point,snappy"`
}

// ForecastRow is one line of the actual-vs-predicted table.
type ForecastRow struct {
	Date                time.Time `parquet:"date,snappy"`
	Actual              float64   `parquet:"actual,snappy"`
	Predicted           float64   `parquet:"predicted,snappy"`
	CumulativeActual    float64   `parquet:"cumulative_actual,snappy"`
	CumulativePredicted float64   `parquet:"cumulative_predicted,snappy"`
	PredictionInfo      string    `parquet:"prediction_info,snappy"`
	Type                string    `parquet:"type,dict,snappy"`
}

// SeriesPoint is one day of a derived daily series.
type SeriesPoint struct {
	Key     string    `parquet:"series_key,dict,snappy"`
	Project string    `parquet:"project,dict,snappy"`
	Kind    string    `parquet:"kind,dict,snappy"`
	Date    time.Time `parquet:"date,snappy"`
	Value   float64   `parquet:"value,snappy"`
}

// Write encodes the rows to w as a single Parquet file. The schema is derived
// from the struct tags of T.
func Write[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteFile writes the rows to a new Parquet file at outputPath.
func WriteFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Write(file, data); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:         record.RunID,
			RunLabel:      record.RunLabel,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalSeries:   record.TotalSeries,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertSeriesResultRecords converts schema.SeriesResultRecord to SeriesResult for Parquet export.
func ConvertSeriesResultRecords(records []schema.SeriesResultRecord) []SeriesResult {
	result := make([]SeriesResult, len(records))
	for i, record := range records {
		result[i] = SeriesResult{
			RunID:       record.RunID,
			SeriesKey:   record.SeriesKey,
			Project:     record.Project,
			Kind:        record.Kind,
			Model:       record.Model,
			Strategy:    record.Strategy,
			TrainSize:   record.TrainSize,
			TestSize:    record.TestSize,
			MAE:         record.MAE,
			FinalParams: record.FinalParams,
		}
	}
	return result
}

// ConvertPredictionRecords converts schema.PredictionRecord to Prediction for Parquet export.
func ConvertPredictionRecords(records []schema.PredictionRecord) []Prediction {
	result := make([]Prediction, len(records))
	for i, record := range records {
		result[i] = Prediction{
			RunID:       record.RunID,
			SeriesKey:   record.SeriesKey,
			StepIndex:   record.StepIndex,
			TargetDate:  record.TargetDate,
			Actual:      record.Actual,
			Predicted:   record.Predicted,
			HistorySize: record.HistorySize,
			Params:      record.Params,
		}
	}
	return result
}

// ConvertTickets converts generated tickets for Parquet export.
func ConvertTickets(tickets []schema.Ticket) []Ticket {
	result := make([]Ticket, len(tickets))
	for i, t := range tickets {
		result[i] = Ticket{
			PI:          t.PI,
			Name:        t.Name,
			Status:      t.Status,
			Project:     t.Project,
			Team:        t.Team,
			StatusDate:  t.StatusDate,
			CreatedDate: t.CreatedDate,
			Feature:     t.Feature,
			Type:        t.Type,
			Priority:    t.Priority,
			Scope:       t.Scope,
			TeamMembers: int32(t.TeamMembers),
			StoryPoints: int32(t.StoryPoints),
		}
	}
	return result
}

// ConvertForecastRows converts forecast table rows for Parquet export.
func ConvertForecastRows(rows []schema.ForecastRow) []ForecastRow {
	result := make([]ForecastRow, len(rows))
	for i, r := range rows {
		result[i] = ForecastRow{
			Date:                r.Date,
			Actual:              r.Actual,
			Predicted:           r.Predicted,
			CumulativeActual:    r.CumulativeActual,
			CumulativePredicted: r.CumulativePredicted,
			PredictionInfo:      r.PredictionInfo,
			Type:                string(r.Type),
		}
	}
	return result
}

// ConvertSeries flattens daily series into one row per day.
func ConvertSeries(series []schema.DailySeries) []SeriesPoint {
	var result []SeriesPoint
	for _, s := range series {
		for _, p := range s.Points {
			result = append(result, SeriesPoint{
				Key:     s.Key,
				Project: s.Project,
				Kind:    string(s.Kind),
				Date:    p.Date,
				Value:   p.Value,
			})
		}
	}
	return result
}
