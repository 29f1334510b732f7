package core

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/flowcast/core/algo"
	"github.com/huangsam/flowcast/core/search"
	"github.com/huangsam/flowcast/core/validate"
	"github.com/huangsam/flowcast/internal/contract"
	"github.com/huangsam/flowcast/schema"
	"golang.org/x/sync/errgroup"
)

// ErrSeriesTooShort is returned when a series cannot fill both partitions.
var ErrSeriesTooShort = errors.New("series too short for the lag window and split")

// forecastRun tracks a forecast run in the run store.
type forecastRun struct {
	label string
	id    int64
}

// beginRun labels the run and registers it with the run store, if one is configured.
// Tracking failures are logged and never abort the forecast.
func beginRun(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (context.Context, forecastRun) {
	run := forecastRun{label: uuid.NewString()}
	store := getRunStore(mgr)
	if store == nil {
		return ctx, run
	}

	runID, err := store.BeginRun(run.label, time.Now(), cfg.ConfigParams())
	if err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return ctx, run
	}
	if runID > 0 {
		run.id = runID
		ctx = withRunID(ctx, runID)
	}
	contract.Logger().Debug().Str("label", run.label).Int64("run_id", runID).Msg("run started")
	return ctx, run
}

// end finalizes the run in the run store.
func (r forecastRun) end(mgr contract.CacheManager, totalSeries int) {
	store := getRunStore(mgr)
	if store == nil || r.id == 0 {
		return
	}
	if err := store.EndRun(r.id, time.Now(), totalSeries); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}

// abandon leaves the run without an end time so the store reports it as incomplete.
func (r forecastRun) abandon(err error) {
	if r.id == 0 {
		return
	}
	contract.Logger().Warn().Err(err).Str("label", r.label).Int64("run_id", r.id).Msg("run left incomplete")
}

func getRunStore(mgr contract.CacheManager) contract.RunStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetRunStore()
}

// forecastAll validates every series with at most cfg.Workers running at once.
// The first failure cancels the rest. Results are ordered by series key.
func forecastAll(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, series []schema.DailySeries) ([]schema.SeriesForecast, error) {
	results := make([]schema.SeriesForecast, len(series))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for i, s := range series {
		g.Go(func() error {
			forecast, err := forecastSeries(gctx, cfg, mgr, s)
			if err != nil {
				return fmt.Errorf("series %s: %w", s.Key, err)
			}
			results[i] = forecast
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b schema.SeriesForecast) int {
		return strings.Compare(a.Key, b.Key)
	})
	return results, nil
}

// forecastSeries frames one series as a supervised table and runs the
// walk-forward validation over its test partition.
func forecastSeries(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, s schema.DailySeries) (schema.SeriesForecast, error) {
	logger := contract.Logger().With().Str("series", s.Key).Logger()

	rows, err := algo.SeriesToSupervised(s.Values(), cfg.NIn, cfg.NOut, true)
	if err != nil {
		return schema.SeriesForecast{}, err
	}
	train, test, err := algo.TrainTestSplit(rows, cfg.SplitRatio)
	if err != nil {
		return schema.SeriesForecast{}, err
	}
	if len(train) == 0 || len(test) == 0 {
		return schema.SeriesForecast{}, fmt.Errorf("%w: %d days give %d train and %d test rows",
			ErrSeriesTooShort, len(s.Points), len(train), len(test))
	}

	override := reuseParams(cfg, mgr, s.Key)
	fitter, err := search.NewFitter(cfg, override)
	if err != nil {
		return schema.SeriesForecast{}, err
	}
	strategy := cfg.Strategy
	if override != nil {
		strategy = schema.FixedStrategy
	}

	logger.Debug().Int("train", len(train)).Int("test", len(test)).Str("strategy", string(strategy)).Msg("walk-forward start")
	result, err := validate.WalkForward(ctx, fitter, train, test, validate.Options{
		Round: cfg.Round,
		OnStep: func(step schema.Step) {
			logger.Debug().
				Int("step", step.Index).
				Int("history", step.HistorySize).
				Float64("actual", step.Actual).
				Float64("predicted", step.Predicted).
				Msg("walk-forward step")
		},
	})
	if err != nil {
		return schema.SeriesForecast{}, err
	}

	// Test row j predicts the day nIn+nOut-1 positions after its anchor.
	offset := len(train) + cfg.NIn + cfg.NOut - 1
	for j := range result.Steps {
		result.Steps[j].Date = s.Points[offset+j].Date
	}

	forecast := schema.SeriesForecast{
		Key:       s.Key,
		Project:   s.Project,
		Kind:      s.Kind,
		Model:     cfg.Model,
		Strategy:  strategy,
		TrainSize: len(train),
		TestSize:  len(test),
		Result:    result,
	}
	logger.Debug().Float64("mae", result.MAE).Msg("walk-forward done")

	recordSeries(ctx, mgr, forecast)
	return forecast, nil
}

// reuseParams returns the final parameters of the latest recorded run of the
// series when --reuse-best is set, or nil to search as configured.
func reuseParams(cfg *contract.Config, mgr contract.CacheManager, key string) schema.Params {
	if !cfg.ReuseBest {
		return nil
	}
	store := getRunStore(mgr)
	if store == nil {
		return nil
	}
	params, ok, err := store.GetLatestParams(key, cfg.Model)
	if err != nil {
		contract.LogWarn(fmt.Sprintf("Cannot load previous parameters of %s", key), err)
		return nil
	}
	if !ok || len(params) == 0 {
		return nil
	}
	contract.Logger().Debug().Str("series", key).Str("params", params.String()).Msg("reusing parameters")
	return params
}

// recordSeries stores the forecast in the run store when run tracking is enabled.
func recordSeries(ctx context.Context, mgr contract.CacheManager, forecast schema.SeriesForecast) {
	runID, ok := getRunID(ctx)
	if !ok {
		return
	}
	store := getRunStore(mgr)
	if store == nil {
		return
	}
	if err := store.RecordSeriesResult(runID, forecast); err != nil {
		contract.LogWarn(fmt.Sprintf("Run tracking failed for %s", forecast.Key), err)
	}
}
