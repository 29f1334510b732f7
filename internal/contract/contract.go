// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/flowcast/schema"
)

// CacheManager defines the interface for managing stores.
// This allows the storage layer to be mocked for testing.
type CacheManager interface {
	GetSeriesStore() CacheStore
	GetRunStore() RunStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// RunStore defines the interface for tracking forecast runs and their predictions.
type RunStore interface {
	// BeginRun creates a new forecast run and returns its unique ID
	BeginRun(label string, startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, totalSeries int) error

	// RecordSeriesResult stores the outcome of one series and all its walk-forward steps
	RecordSeriesResult(runID int64, forecast schema.SeriesForecast) error

	// GetLatestParams returns the final parameters of the most recent run of a series
	GetLatestParams(seriesKey string, model schema.ModelKind) (schema.Params, bool, error)

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStatus, error)

	// GetAllRuns returns every recorded run, oldest first
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllSeriesResults returns every recorded series result
	GetAllSeriesResults() ([]schema.SeriesResultRecord, error)

	// GetAllPredictions returns every recorded walk-forward step
	GetAllPredictions() ([]schema.PredictionRecord, error)

	// Close closes the underlying connection
	Close() error
}
