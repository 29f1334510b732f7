// Package search picks the hyperparameters of the model refitted at every
// walk-forward step.
package search

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/huangsam/flowcast/core/algo"
	"github.com/huangsam/flowcast/internal/contract"
	"github.com/huangsam/flowcast/schema"
)

// Sentinel errors returned by the search package.
var (
	ErrHistoryTooShort  = errors.New("history too short for cross-validation")
	ErrEmptySearchSpace = errors.New("search space is empty")
)

// Fitter fits a model on the supervised history rows and reports the
// parameters the model was fitted with. The last column of each row is the target.
type Fitter interface {
	Fit(ctx context.Context, history [][]float64) (algo.Model, schema.Params, error)
}

// NewFitter builds the fitter selected by the config. A non-nil override
// pins the parameters, which turns any strategy into a fixed fit.
func NewFitter(cfg *contract.Config, override schema.Params) (Fitter, error) {
	base := cfg.FixedParams.Clone()
	if base == nil {
		base = schema.Params{}
	}
	if slices.Contains(algo.ParamNames(cfg.Model), algo.ParamSeed) {
		if _, ok := base[algo.ParamSeed]; !ok {
			base[algo.ParamSeed] = float64(cfg.Seed)
		}
	}
	if _, err := algo.ResolveParams(cfg.Model, base); err != nil {
		return nil, err
	}

	if override != nil {
		merged := base.Clone()
		maps.Copy(merged, override)
		return &FixedFitter{Model: cfg.Model, Params: merged}, nil
	}

	cv := TimeSeriesSplit{NSplits: cfg.CVSplits}
	switch cfg.Strategy {
	case schema.FixedStrategy:
		return &FixedFitter{Model: cfg.Model, Params: base}, nil
	case schema.GridStrategy:
		grid := cfg.Grid
		if grid == nil {
			grid = DefaultGrid(cfg.Model)
		}
		if err := checkNames(cfg.Model, slices.Collect(maps.Keys(grid))); err != nil {
			return nil, err
		}
		return &GridFitter{Model: cfg.Model, Base: base, Grid: grid, CV: cv}, nil
	case schema.RandomStrategy:
		dists := cfg.Distributions
		if dists == nil {
			dists = DefaultDistributions(cfg.Model)
		}
		if err := checkNames(cfg.Model, slices.Collect(maps.Keys(dists))); err != nil {
			return nil, err
		}
		return &RandomFitter{Model: cfg.Model, Base: base, Distributions: dists, NIter: cfg.NIter, Seed: cfg.Seed, CV: cv}, nil
	}
	return nil, fmt.Errorf("unknown search strategy %q", cfg.Strategy)
}

// checkNames rejects search parameters the model does not accept.
func checkNames(kind schema.ModelKind, names []string) error {
	accepted := algo.ParamNames(kind)
	slices.Sort(names)
	for _, name := range names {
		if !slices.Contains(accepted, name) {
			return fmt.Errorf("%w %q in search space for model %s (accepted: %v)", algo.ErrUnknownParam, name, kind, accepted)
		}
	}
	return nil
}

// fitRows fits a regressor on supervised rows.
func fitRows(kind schema.ModelKind, params schema.Params, rows [][]float64) (algo.Model, error) {
	reg, err := algo.NewRegressor(kind, params)
	if err != nil {
		return nil, err
	}
	X, y := algo.SplitXY(rows)
	return reg.Fit(X, y)
}

// FixedFitter fits one regressor with preset parameters.
type FixedFitter struct {
	Model  schema.ModelKind
	Params schema.Params
}

// Fit fits the preset regressor on the full history.
func (f *FixedFitter) Fit(ctx context.Context, history [][]float64) (algo.Model, schema.Params, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	model, err := fitRows(f.Model, f.Params, history)
	if err != nil {
		return nil, nil, err
	}
	return model, f.Params.Clone(), nil
}

// selectBest scores every candidate with cross-validation, refits the winner
// on the full history and returns it. Ties keep the earlier candidate.
func selectBest(ctx context.Context, kind schema.ModelKind, base schema.Params, candidates []schema.Params, cv TimeSeriesSplit, history [][]float64) (algo.Model, schema.Params, error) {
	if len(candidates) == 0 {
		return nil, nil, ErrEmptySearchSpace
	}
	folds, err := cv.Split(len(history))
	if err != nil {
		return nil, nil, err
	}

	var best schema.Params
	bestScore := 0.0
	for i, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		params := base.Clone()
		maps.Copy(params, candidate)
		score, err := cv.Score(kind, params, history, folds)
		if err != nil {
			return nil, nil, fmt.Errorf("candidate %s: %w", params, err)
		}
		if i == 0 || score < bestScore {
			best, bestScore = params, score
		}
	}

	model, err := fitRows(kind, best, history)
	if err != nil {
		return nil, nil, fmt.Errorf("refitting %s: %w", best, err)
	}
	return model, best, nil
}
