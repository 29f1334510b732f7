package search

import (
	"context"
	"testing"

	"github.com/huangsam/flowcast/core/algo"
	"github.com/huangsam/flowcast/internal/contract"
	"github.com/huangsam/flowcast/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lineRows returns supervised rows with two lags from a straight line.
func lineRows(n int) [][]float64 {
	series := make([]float64, n+2)
	for i := range series {
		series[i] = float64(i)
	}
	rows, _ := algo.SeriesToSupervised(series, 2, 1, true)
	return rows
}

func baseConfig(strategy schema.SearchStrategy, model schema.ModelKind) *contract.Config {
	return &contract.Config{
		Strategy: strategy,
		Model:    model,
		NIter:    3,
		CVSplits: 3,
		Seed:     123,
	}
}

func TestTimeSeriesSplit(t *testing.T) {
	t.Run("ten rows three splits", func(t *testing.T) {
		folds, err := TimeSeriesSplit{NSplits: 3}.Split(10)
		require.NoError(t, err)
		assert.Equal(t, []Fold{{TrainEnd: 4, TestEnd: 6}, {TrainEnd: 6, TestEnd: 8}, {TrainEnd: 8, TestEnd: 10}}, folds)
	})

	t.Run("remainder goes to the first train block", func(t *testing.T) {
		folds, err := TimeSeriesSplit{NSplits: 2}.Split(7)
		require.NoError(t, err)
		assert.Equal(t, []Fold{{TrainEnd: 3, TestEnd: 5}, {TrainEnd: 5, TestEnd: 7}}, folds)
	})

	t.Run("minimum history", func(t *testing.T) {
		folds, err := TimeSeriesSplit{NSplits: 5}.Split(6)
		require.NoError(t, err)
		assert.Len(t, folds, 5)
		assert.Equal(t, 1, folds[0].TrainEnd)
	})

	t.Run("history too short", func(t *testing.T) {
		_, err := TimeSeriesSplit{NSplits: 5}.Split(5)
		assert.ErrorIs(t, err, ErrHistoryTooShort)
	})

	t.Run("single split rejected", func(t *testing.T) {
		_, err := TimeSeriesSplit{NSplits: 1}.Split(10)
		assert.Error(t, err)
	})
}

func TestGridCandidates(t *testing.T) {
	got := GridCandidates(map[string][]float64{
		"max_depth":    {3, 4},
		"n_estimators": {10, 20, 30},
	})
	require.Len(t, got, 6)
	assert.Equal(t, schema.Params{"max_depth": 3, "n_estimators": 10}, got[0])
	assert.Equal(t, schema.Params{"max_depth": 3, "n_estimators": 20}, got[1])
	assert.Equal(t, schema.Params{"max_depth": 4, "n_estimators": 30}, got[5])
	assert.Nil(t, GridCandidates(nil))
}

func TestRandomCandidates(t *testing.T) {
	dists := DefaultDistributions(schema.BoostModel)

	a := RandomCandidates(dists, 5, 123)
	b := RandomCandidates(dists, 5, 123)
	require.Len(t, a, 5)
	assert.Equal(t, a, b, "same seed must give same candidates")

	for _, p := range a {
		assert.GreaterOrEqual(t, p[algo.ParamNEstimators], 50.0)
		assert.Less(t, p[algo.ParamNEstimators], 100.0)
		assert.Equal(t, float64(int(p[algo.ParamNEstimators])), p[algo.ParamNEstimators])
		assert.GreaterOrEqual(t, p[algo.ParamLearningRate], 0.01)
		assert.LessOrEqual(t, p[algo.ParamLearningRate], 0.11)
		assert.Contains(t, []float64{4, 5}, p[algo.ParamMaxDepth])
	}

	c := RandomCandidates(dists, 5, 124)
	assert.NotEqual(t, a, c)

	choice := RandomCandidates(map[string]contract.Distribution{
		"alpha": {Kind: contract.ChoiceDistribution, Values: []float64{7}},
	}, 2, 1)
	assert.Equal(t, []schema.Params{{"alpha": 7}, {"alpha": 7}}, choice)
}

func TestNewFitter(t *testing.T) {
	t.Run("fixed", func(t *testing.T) {
		cfg := baseConfig(schema.FixedStrategy, schema.RidgeModel)
		cfg.FixedParams = schema.Params{algo.ParamAlpha: 2}
		f, err := NewFitter(cfg, nil)
		require.NoError(t, err)
		fixed, ok := f.(*FixedFitter)
		require.True(t, ok)
		assert.Equal(t, schema.Params{algo.ParamAlpha: 2}, fixed.Params)
	})

	t.Run("seed added for tree models", func(t *testing.T) {
		f, err := NewFitter(baseConfig(schema.FixedStrategy, schema.BoostModel), nil)
		require.NoError(t, err)
		assert.Equal(t, 123.0, f.(*FixedFitter).Params[algo.ParamSeed])
	})

	t.Run("grid uses default space", func(t *testing.T) {
		f, err := NewFitter(baseConfig(schema.GridStrategy, schema.RidgeModel), nil)
		require.NoError(t, err)
		grid, ok := f.(*GridFitter)
		require.True(t, ok)
		assert.Equal(t, DefaultGrid(schema.RidgeModel), grid.Grid)
	})

	t.Run("random uses default space", func(t *testing.T) {
		f, err := NewFitter(baseConfig(schema.RandomStrategy, schema.BoostModel), nil)
		require.NoError(t, err)
		random, ok := f.(*RandomFitter)
		require.True(t, ok)
		assert.Equal(t, 3, random.NIter)
		assert.Len(t, random.Distributions, 3)
	})

	t.Run("override pins parameters", func(t *testing.T) {
		f, err := NewFitter(baseConfig(schema.RandomStrategy, schema.RidgeModel), schema.Params{algo.ParamAlpha: 4})
		require.NoError(t, err)
		fixed, ok := f.(*FixedFitter)
		require.True(t, ok)
		assert.Equal(t, 4.0, fixed.Params[algo.ParamAlpha])
	})

	t.Run("unknown grid parameter", func(t *testing.T) {
		cfg := baseConfig(schema.GridStrategy, schema.RidgeModel)
		cfg.Grid = map[string][]float64{algo.ParamMaxDepth: {3}}
		_, err := NewFitter(cfg, nil)
		assert.ErrorIs(t, err, algo.ErrUnknownParam)
	})

	t.Run("unknown fixed parameter", func(t *testing.T) {
		cfg := baseConfig(schema.FixedStrategy, schema.RidgeModel)
		cfg.FixedParams = schema.Params{"depth": 3}
		_, err := NewFitter(cfg, nil)
		assert.ErrorIs(t, err, algo.ErrUnknownParam)
	})
}

func TestGridFitterPicksLowestError(t *testing.T) {
	f := &GridFitter{
		Model: schema.RidgeModel,
		Base:  schema.Params{},
		Grid:  map[string][]float64{algo.ParamAlpha: {1000, 0.001}},
		CV:    TimeSeriesSplit{NSplits: 3},
	}
	model, params, err := f.Fit(context.Background(), lineRows(20))
	require.NoError(t, err)
	assert.Equal(t, 0.001, params[algo.ParamAlpha], "a weak penalty fits a line better")

	got, err := model.Predict([]float64{30, 31})
	require.NoError(t, err)
	assert.InDelta(t, 32, got, 0.1)
}

func TestSelectBestKeepsEarlierOnTie(t *testing.T) {
	candidates := []schema.Params{{algo.ParamAlpha: 1}, {algo.ParamAlpha: 1}}
	_, params, err := selectBest(context.Background(), schema.RidgeModel, schema.Params{}, candidates, TimeSeriesSplit{NSplits: 2}, lineRows(10))
	require.NoError(t, err)
	assert.Equal(t, schema.Params{algo.ParamAlpha: 1}, params)
}

func TestRandomFitterReportsSameCandidatesEachStep(t *testing.T) {
	f, err := NewFitter(baseConfig(schema.RandomStrategy, schema.BoostModel), nil)
	require.NoError(t, err)

	_, first, err := f.Fit(context.Background(), lineRows(12))
	require.NoError(t, err)
	_, second, err := f.Fit(context.Background(), lineRows(12))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFitterErrors(t *testing.T) {
	t.Run("history too short for cv", func(t *testing.T) {
		f := &GridFitter{Model: schema.RidgeModel, Base: schema.Params{}, Grid: DefaultGrid(schema.RidgeModel), CV: TimeSeriesSplit{NSplits: 5}}
		_, _, err := f.Fit(context.Background(), lineRows(3))
		assert.ErrorIs(t, err, ErrHistoryTooShort)
	})

	t.Run("empty search space", func(t *testing.T) {
		f := &GridFitter{Model: schema.RidgeModel, Base: schema.Params{}, CV: TimeSeriesSplit{NSplits: 2}}
		_, _, err := f.Fit(context.Background(), lineRows(10))
		assert.ErrorIs(t, err, ErrEmptySearchSpace)
	})

	t.Run("fixed on empty history", func(t *testing.T) {
		f := &FixedFitter{Model: schema.RidgeModel, Params: schema.Params{}}
		_, _, err := f.Fit(context.Background(), nil)
		assert.ErrorIs(t, err, algo.ErrEmptyTrainingSet)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		f := &FixedFitter{Model: schema.RidgeModel, Params: schema.Params{}}
		_, _, err := f.Fit(ctx, lineRows(5))
		assert.ErrorIs(t, err, context.Canceled)
	})
}
