package schema

import "time"

// RunRecord represents a row from the flowcast_runs table.
type RunRecord struct {
	RunID         int64
	RunLabel      string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalSeries   int32
	ConfigParams  *string
}

// SeriesResultRecord represents a row from the flowcast_series_results table.
type SeriesResultRecord struct {
	RunID       int64
	SeriesKey   string
	Project     string
	Kind        string
	Model       string
	Strategy    string
	TrainSize   int32
	TestSize    int32
	MAE         float64
	FinalParams *string
}

// PredictionRecord represents a row from the flowcast_predictions table.
type PredictionRecord struct {
	RunID       int64
	SeriesKey   string
	StepIndex   int32
	TargetDate  time.Time
	Actual      float64
	Predicted   float64
	HistorySize int32
	Params      *string
}
