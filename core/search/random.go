package search

import (
	"context"
	"maps"
	"math/rand/v2"
	"slices"

	"github.com/huangsam/flowcast/core/algo"
	"github.com/huangsam/flowcast/internal/contract"
	"github.com/huangsam/flowcast/schema"
	"gonum.org/v1/gonum/stat/distuv"
)

// RandomFitter samples NIter candidates from per-parameter distributions.
type RandomFitter struct {
	Model         schema.ModelKind
	Base          schema.Params
	Distributions map[string]contract.Distribution
	NIter         int
	Seed          uint64
	CV            TimeSeriesSplit
}

// Fit cross-validates the sampled candidates on the history and refits the
// best. The generator is reseeded on every call, so every step draws the
// same candidates.
func (f *RandomFitter) Fit(ctx context.Context, history [][]float64) (algo.Model, schema.Params, error) {
	return selectBest(ctx, f.Model, f.Base, RandomCandidates(f.Distributions, f.NIter, f.Seed), f.CV, history)
}

// RandomCandidates draws n parameter sets. Names are sampled in sorted order.
func RandomCandidates(dists map[string]contract.Distribution, n int, seed uint64) []schema.Params {
	if len(dists) == 0 || n < 1 {
		return nil
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x5851f42d4c957f2d))
	names := slices.Sorted(maps.Keys(dists))
	candidates := make([]schema.Params, n)
	for i := range candidates {
		p := make(schema.Params, len(names))
		for _, name := range names {
			p[name] = sample(dists[name], rng)
		}
		candidates[i] = p
	}
	return candidates
}

// sample draws one value from a distribution.
func sample(d contract.Distribution, rng *rand.Rand) float64 {
	switch d.Kind {
	case contract.RandIntDistribution:
		low := int64(d.Low)
		span := int64(d.High) - low
		if span < 1 {
			return float64(low)
		}
		return float64(low + rng.Int64N(span))
	case contract.UniformDistribution:
		return distuv.Uniform{Min: d.Loc, Max: d.Loc + d.Scale, Src: rng}.Rand()
	case contract.ChoiceDistribution:
		return d.Values[rng.IntN(len(d.Values))]
	}
	return 0
}

// DefaultDistributions returns the distributions used when none are configured.
func DefaultDistributions(kind schema.ModelKind) map[string]contract.Distribution {
	switch kind {
	case schema.ForestModel:
		return map[string]contract.Distribution{
			algo.ParamNEstimators: {Kind: contract.RandIntDistribution, Low: 50, High: 100},
			algo.ParamMaxDepth:    {Kind: contract.RandIntDistribution, Low: 4, High: 8},
			algo.ParamMaxFeatures: {Kind: contract.ChoiceDistribution, Values: []float64{0.5, 1}},
		}
	case schema.BoostModel:
		return map[string]contract.Distribution{
			algo.ParamNEstimators:  {Kind: contract.RandIntDistribution, Low: 50, High: 100},
			algo.ParamLearningRate: {Kind: contract.UniformDistribution, Loc: 0.01, Scale: 0.10},
			algo.ParamMaxDepth:     {Kind: contract.RandIntDistribution, Low: 4, High: 6},
		}
	case schema.RidgeModel:
		return map[string]contract.Distribution{
			algo.ParamAlpha: {Kind: contract.UniformDistribution, Loc: 0.01, Scale: 10},
		}
	}
	return nil
}
