// Package core wires the ticket generator, the aggregation layer and the
// walk-forward validator into the flowcast commands.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/flowcast/core/synth"
	"github.com/huangsam/flowcast/internal/contract"
	"github.com/huangsam/flowcast/internal/outwriter"
	"github.com/huangsam/flowcast/schema"
)

// ExecutorFunc defines the function signature for executing the flowcast commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ErrNoSeries is returned when the input yields no series to work on.
var ErrNoSeries = errors.New("no series found")

// ExecuteGenerate builds a synthetic ticket table and writes it out.
// It serves as the main entry point for the 'generate' command.
func ExecuteGenerate(_ context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	start := time.Now()
	out, err := synth.NewGenerator().Generate(synth.Options{
		Tickets: cfg.Tickets,
		Seed:    cfg.GenSeed,
		Start:   schema.PIEpoch,
		End:     cfg.GenEndDate,
	})
	if err != nil {
		return fmt.Errorf("generate tickets: %w", err)
	}
	contract.Logger().Debug().
		Int("events", len(out.Tickets)).
		Strs("pis", out.PIs).
		Msg("generated tickets")
	return outwriter.NewOutWriter().WriteTickets(out.Tickets, out.PIs, cfg, time.Since(start))
}

// ExecuteSeries derives the daily done and flow series of every project and writes them out.
// It serves as the main entry point for the 'series' command.
func ExecuteSeries(_ context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	projects, err := LoadProjectSeries(cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteSeries(projects, cfg, time.Since(start))
}

// ExecuteForecast validates a regressor on every selected series and writes
// the combined actual-vs-predicted table.
// It serves as the main entry point for the 'forecast' command.
func ExecuteForecast(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	result, err := RunForecast(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteForecast(result, cfg, time.Since(start))
}

// RunForecast loads the input, validates every selected series and returns
// the forecasts in series key order together with the combined rows.
func RunForecast(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.ForecastResult, error) {
	projects, err := LoadProjectSeries(cfg, mgr)
	if err != nil {
		return schema.ForecastResult{}, err
	}
	series := selectSeries(cfg, projects)
	if len(series) == 0 {
		return schema.ForecastResult{}, fmt.Errorf("%w for kinds %v", ErrNoSeries, cfg.Kinds)
	}

	ctx, run := beginRun(ctx, cfg, mgr)
	forecasts, err := forecastAll(ctx, cfg, mgr, series)
	if err != nil {
		run.abandon(err)
		return schema.ForecastResult{}, err
	}
	run.end(mgr, len(forecasts))

	return schema.ForecastResult{
		RunID:  run.label,
		Series: forecasts,
		Rows:   LastNDays(BuildRows(forecasts), cfg.LastNDays),
	}, nil
}

// selectSeries flattens the project series, keeping the kinds the config asks for.
func selectSeries(cfg *contract.Config, projects []schema.ProjectSeries) []schema.DailySeries {
	var out []schema.DailySeries
	for _, p := range projects {
		for _, s := range p.Series {
			if cfg.WantsKind(s.Kind) {
				out = append(out, s)
			}
		}
	}
	return out
}
