package search

import (
	"context"
	"maps"
	"slices"

	"github.com/huangsam/flowcast/core/algo"
	"github.com/huangsam/flowcast/schema"
)

// GridFitter tries every combination of a parameter grid.
type GridFitter struct {
	Model schema.ModelKind
	Base  schema.Params
	Grid  map[string][]float64
	CV    TimeSeriesSplit
}

// Fit cross-validates every grid point on the history and refits the best.
func (f *GridFitter) Fit(ctx context.Context, history [][]float64) (algo.Model, schema.Params, error) {
	return selectBest(ctx, f.Model, f.Base, GridCandidates(f.Grid), f.CV, history)
}

// GridCandidates expands a grid into its Cartesian product. Names are taken
// in sorted order and the last name varies fastest.
func GridCandidates(grid map[string][]float64) []schema.Params {
	if len(grid) == 0 {
		return nil
	}
	names := slices.Sorted(maps.Keys(grid))
	candidates := []schema.Params{{}}
	for _, name := range names {
		next := make([]schema.Params, 0, len(candidates)*len(grid[name]))
		for _, c := range candidates {
			for _, v := range grid[name] {
				p := c.Clone()
				p[name] = v
				next = append(next, p)
			}
		}
		candidates = next
	}
	return candidates
}

// DefaultGrid returns the grid used when none is configured.
func DefaultGrid(kind schema.ModelKind) map[string][]float64 {
	switch kind {
	case schema.ForestModel:
		return map[string][]float64{
			algo.ParamNEstimators: {50, 100},
			algo.ParamMaxDepth:    {4, 6},
		}
	case schema.BoostModel:
		return map[string][]float64{
			algo.ParamNEstimators:  {50, 100},
			algo.ParamLearningRate: {0.05, 0.1},
			algo.ParamMaxDepth:     {4, 5},
		}
	case schema.RidgeModel:
		return map[string][]float64{
			algo.ParamAlpha: {0.1, 1, 10},
		}
	}
	return nil
}
