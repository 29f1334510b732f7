package iocache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/flowcast/internal/contract"
	"github.com/huangsam/flowcast/schema"
)

// Table names for run tracking.
const (
	runsTable          = "flowcast_runs"
	seriesResultsTable = "flowcast_series_results"
	predictionsTable   = "flowcast_predictions"
)

// runTables lists the run tables in drop order.
var runTables = []string{predictionsTable, seriesResultsTable, runsTable}

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend and brings its
// schema to the latest migration.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	if backend == schema.NoneBackend {
		return &RunStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, GetRunDBFilePath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize run store: %w", err)
	}
	if err := migrateDB(db, backend, -1, nil); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run tables: %w", err)
	}
	return &RunStoreImpl{db: db, backend: backend}, nil
}

func (rs *RunStoreImpl) table(name string) string {
	return quoteTableName(name, rs.backend)
}

// BeginRun creates a new run and returns its unique ID.
func (rs *RunStoreImpl) BeginRun(label string, startTime time.Time, configParams map[string]any) (int64, error) {
	if rs.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	var runID int64
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (run_label, start_time, config_params) VALUES ($1, $2, $3) RETURNING run_id`, rs.table(runsTable))
		err = rs.db.QueryRow(query, label, startTime, string(configJSON)).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (run_label, start_time, config_params) VALUES (?, ?, ?)`, rs.table(runsTable))
		var result sql.Result
		result, err = rs.db.Exec(query, label, formatTime(startTime, rs.backend), string(configJSON))
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// EndRun updates the run with completion data.
func (rs *RunStoreImpl) EndRun(runID int64, endTime time.Time, totalSeries int) error {
	if rs.db == nil {
		return nil
	}

	start := timeScanner{backend: rs.backend}
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, rs.table(runsTable), placeholder(rs.backend, 1))
	if err := rs.db.QueryRow(query, runID).Scan(start.dest()); err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	startTime, err := start.value()
	if err != nil {
		return err
	}
	if startTime == nil {
		return fmt.Errorf("run %d has no start_time", runID)
	}

	update := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_series = %s WHERE run_id = %s`,
		rs.table(runsTable),
		placeholder(rs.backend, 1), placeholder(rs.backend, 2), placeholder(rs.backend, 3), placeholder(rs.backend, 4))
	durationMs := endTime.Sub(*startTime).Milliseconds()
	if _, err := rs.db.Exec(update, formatTime(endTime, rs.backend), durationMs, totalSeries, runID); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// RecordSeriesResult stores a series outcome and every walk-forward step in one transaction.
func (rs *RunStoreImpl) RecordSeriesResult(runID int64, forecast schema.SeriesForecast) (err error) {
	if rs.db == nil {
		return nil
	}

	tx, err := rs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	resultQuery := fmt.Sprintf(`INSERT INTO %s (run_id, series_key, project, kind, model, strategy, train_size, test_size, mae, final_params)
		VALUES (%s)`, rs.table(seriesResultsTable), placeholders(rs.backend, 10))
	if _, err = tx.Exec(resultQuery,
		runID, forecast.Key, forecast.Project, string(forecast.Kind), string(forecast.Model), string(forecast.Strategy),
		forecast.TrainSize, forecast.TestSize, forecast.Result.MAE, nullableParams(forecast.Result.FinalParams),
	); err != nil {
		return fmt.Errorf("failed to insert series result for %s: %w", forecast.Key, err)
	}

	stepQuery := fmt.Sprintf(`INSERT INTO %s (run_id, series_key, step_index, target_date, actual, predicted, history_size, params)
		VALUES (%s)`, rs.table(predictionsTable), placeholders(rs.backend, 8))
	stmt, err := tx.Prepare(stepQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare prediction insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, step := range forecast.Result.Steps {
		if _, err = stmt.Exec(
			runID, forecast.Key, step.Index, step.Date.Format(schema.DateFormat),
			step.Actual, step.Predicted, step.HistorySize, nullableParams(step.Params),
		); err != nil {
			return fmt.Errorf("failed to insert prediction %d for %s: %w", step.Index, forecast.Key, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit series result: %w", err)
	}
	return nil
}

func nullableParams(p schema.Params) any {
	if len(p) == 0 {
		return nil
	}
	return p.String()
}

// GetLatestParams returns the final parameters of the most recent run of a
// series with the given model. The boolean is false when none was recorded.
func (rs *RunStoreImpl) GetLatestParams(seriesKey string, model schema.ModelKind) (schema.Params, bool, error) {
	if rs.db == nil {
		return nil, false, nil
	}

	query := fmt.Sprintf(`SELECT final_params FROM %s WHERE series_key = %s AND model = %s AND final_params IS NOT NULL
		ORDER BY run_id DESC LIMIT 1`, rs.table(seriesResultsTable), placeholder(rs.backend, 1), placeholder(rs.backend, 2))
	var raw string
	err := rs.db.QueryRow(query, seriesKey, string(model)).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query latest params for %s: %w", seriesKey, err)
	}

	params, err := schema.ParseParams(raw)
	if err != nil {
		return nil, false, fmt.Errorf("stored params for %s are invalid: %w", seriesKey, err)
	}
	return params, true, nil
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStatus, error) {
	status := schema.RunStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if rs.db == nil {
		return status, nil
	}

	for _, table := range runTables {
		var count int64
		if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", rs.table(table))).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalRuns = int(status.TableSizes[runsTable])
	status.TotalSeries = int(status.TableSizes[seriesResultsTable])
	status.TotalPredictions = int(status.TableSizes[predictionsTable])
	if status.TotalRuns == 0 {
		return status, nil
	}

	last := timeScanner{backend: rs.backend}
	query := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", rs.table(runsTable))
	if err := rs.db.QueryRow(query).Scan(&status.LastRunID, last.dest()); err != nil {
		return status, fmt.Errorf("failed to get last run: %w", err)
	}
	oldest := timeScanner{backend: rs.backend}
	query = fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", rs.table(runsTable))
	if err := rs.db.QueryRow(query).Scan(oldest.dest()); err != nil {
		return status, fmt.Errorf("failed to get oldest run: %w", err)
	}
	if t, err := last.value(); err == nil && t != nil {
		status.LastRunTime = *t
	}
	if t, err := oldest.value(); err == nil && t != nil {
		status.OldestRunTime = *t
	}
	return status, nil
}

// GetAllRuns retrieves all runs from the store, oldest first.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT run_id, run_label, start_time, end_time, run_duration_ms, total_series, config_params FROM %s ORDER BY run_id", rs.table(runsTable))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		start := timeScanner{backend: rs.backend}
		end := timeScanner{backend: rs.backend}
		if err := rows.Scan(&record.RunID, &record.RunLabel, start.dest(), end.dest(),
			&record.RunDurationMs, &record.TotalSeries, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		startTime, err := start.value()
		if err != nil {
			return nil, err
		}
		if startTime != nil {
			record.StartTime = *startTime
		}
		if record.EndTime, err = end.value(); err != nil {
			return nil, err
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllSeriesResults retrieves all series results from the store.
func (rs *RunStoreImpl) GetAllSeriesResults() ([]schema.SeriesResultRecord, error) {
	if rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, series_key, project, kind, model, strategy, train_size, test_size, mae, final_params
		FROM %s ORDER BY run_id, series_key`, rs.table(seriesResultsTable))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query series results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.SeriesResultRecord
	for rows.Next() {
		var r schema.SeriesResultRecord
		if err := rows.Scan(&r.RunID, &r.SeriesKey, &r.Project, &r.Kind, &r.Model, &r.Strategy,
			&r.TrainSize, &r.TestSize, &r.MAE, &r.FinalParams); err != nil {
			return nil, fmt.Errorf("failed to scan series result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating series results: %w", err)
	}
	return results, nil
}

// GetAllPredictions retrieves all walk-forward steps from the store.
func (rs *RunStoreImpl) GetAllPredictions() ([]schema.PredictionRecord, error) {
	if rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, series_key, step_index, target_date, actual, predicted, history_size, params
		FROM %s ORDER BY run_id, series_key, step_index`, rs.table(predictionsTable))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.PredictionRecord
	for rows.Next() {
		var r schema.PredictionRecord
		var date string
		if err := rows.Scan(&r.RunID, &r.SeriesKey, &r.StepIndex, &date, &r.Actual, &r.Predicted,
			&r.HistorySize, &r.Params); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		if r.TargetDate, err = time.Parse(schema.DateFormat, date); err != nil {
			return nil, fmt.Errorf("failed to parse target_date %q: %w", date, err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating predictions: %w", err)
	}
	return results, nil
}
