package algo

import (
	"testing"

	"github.com/huangsam/flowcast/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// linearData builds rows of two lags from a straight-line series.
func linearData(n int) ([][]float64, []float64) {
	series := make([]float64, n+2)
	for i := range series {
		series[i] = 2*float64(i) + 1
	}
	rows, _ := SeriesToSupervised(series, 2, 1, true)
	return SplitXY(rows)
}

func TestNewRegressor(t *testing.T) {
	t.Run("defaults for every model", func(t *testing.T) {
		for kind := range schema.ValidModels {
			reg, err := NewRegressor(kind, nil)
			require.NoError(t, err, kind)
			assert.NotNil(t, reg)
		}
	})

	t.Run("overrides applied", func(t *testing.T) {
		reg, err := NewRegressor(schema.BoostModel, schema.Params{ParamNEstimators: 60, ParamLearningRate: 0.05})
		require.NoError(t, err)
		boost, ok := reg.(*BoostRegressor)
		require.True(t, ok)
		assert.Equal(t, 60, boost.NEstimators)
		assert.Equal(t, 0.05, boost.LearningRate)
		assert.Equal(t, 6, boost.MaxDepth)
	})

	t.Run("unknown parameter rejected", func(t *testing.T) {
		_, err := NewRegressor(schema.RidgeModel, schema.Params{ParamMaxDepth: 3})
		assert.ErrorIs(t, err, ErrUnknownParam)
	})

	t.Run("invalid value rejected", func(t *testing.T) {
		_, err := NewRegressor(schema.ForestModel, schema.Params{ParamMaxFeatures: 1.5})
		assert.ErrorIs(t, err, ErrInvalidParam)
		_, err = NewRegressor(schema.BoostModel, schema.Params{ParamLearningRate: 0})
		assert.ErrorIs(t, err, ErrInvalidParam)
	})

	t.Run("unknown model", func(t *testing.T) {
		_, err := NewRegressor("xgb", nil)
		assert.ErrorIs(t, err, ErrUnknownModel)
	})
}

func TestParamNames(t *testing.T) {
	assert.Equal(t, []string{ParamAlpha}, ParamNames(schema.RidgeModel))
	assert.Equal(t, []string{ParamLearningRate, ParamMaxDepth, ParamNEstimators, ParamSeed, ParamSubsample}, ParamNames(schema.BoostModel))
}

func TestRegressorsFit(t *testing.T) {
	X, y := linearData(40)

	tests := []struct {
		name      string
		kind      schema.ModelKind
		params    schema.Params
		tolerance float64
	}{
		{"ridge", schema.RidgeModel, schema.Params{ParamAlpha: 0.001}, 0.1},
		{"boost", schema.BoostModel, nil, 1.0},
		{"forest", schema.ForestModel, schema.Params{ParamNEstimators: 30}, 6.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := NewRegressor(tt.kind, tt.params)
			require.NoError(t, err)
			model, err := reg.Fit(X, y)
			require.NoError(t, err)

			// An in-sample point from the middle of the line.
			got, err := model.Predict(X[20])
			require.NoError(t, err)
			assert.InDelta(t, y[20], got, tt.tolerance)

			_, err = model.Predict([]float64{1})
			assert.ErrorIs(t, err, ErrFeatureMismatch)
		})
	}
}

func TestRidgeExtrapolates(t *testing.T) {
	X, y := linearData(20)
	// Lags of a line are collinear, so a tiny alpha keeps the system definite.
	model, err := (&RidgeRegressor{Alpha: 1e-6}).Fit(X, y)
	require.NoError(t, err)

	got, err := model.Predict([]float64{101, 103})
	require.NoError(t, err)
	assert.InDelta(t, 105, got, 0.01)
}

func TestRegressorsDeterministic(t *testing.T) {
	X, y := linearData(30)
	for _, kind := range []schema.ModelKind{schema.ForestModel, schema.BoostModel} {
		t.Run(string(kind), func(t *testing.T) {
			params := schema.Params{ParamNEstimators: 10, ParamSeed: 7}
			if kind == schema.BoostModel {
				params[ParamSubsample] = 0.5
			}
			regA, err := NewRegressor(kind, params)
			require.NoError(t, err)
			regB, err := NewRegressor(kind, params)
			require.NoError(t, err)

			a, err := regA.Fit(X, y)
			require.NoError(t, err)
			b, err := regB.Fit(X, y)
			require.NoError(t, err)

			for _, row := range X {
				pa, _ := a.Predict(row)
				pb, _ := b.Predict(row)
				assert.Equal(t, pa, pb)
			}
		})
	}
}

func TestFitErrors(t *testing.T) {
	for kind := range schema.ValidModels {
		reg, err := NewRegressor(kind, nil)
		require.NoError(t, err)

		_, err = reg.Fit(nil, nil)
		assert.ErrorIs(t, err, ErrEmptyTrainingSet, kind)

		_, err = reg.Fit([][]float64{{1}, {2}}, []float64{1})
		assert.ErrorIs(t, err, ErrLengthMismatch, kind)

		_, err = reg.Fit([][]float64{{1, 2}, {2}}, []float64{1, 2})
		assert.ErrorIs(t, err, ErrFeatureMismatch, kind)
	}
}

func TestTreeConstantTarget(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {4}}
	y := []float64{5, 5, 5, 5}
	tree := fitTree(X, y, []int{0, 1, 2, 3}, treeConfig{maxDepth: 4, minLeaf: 1})
	assert.Len(t, tree.nodes, 1)
	assert.Equal(t, 5.0, tree.predict([]float64{100}))
}

func TestTreeStepFunction(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {10}, {11}, {12}}
	y := []float64{0, 0, 0, 9, 9, 9}
	tree := fitTree(X, y, []int{0, 1, 2, 3, 4, 5}, treeConfig{maxDepth: 1, minLeaf: 1})
	assert.Equal(t, 0.0, tree.predict([]float64{2.5}))
	assert.Equal(t, 9.0, tree.predict([]float64{6.6}))
	assert.Equal(t, 6.5, tree.nodes[0].threshold)
}

func BenchmarkBoostFit(b *testing.B) {
	X, y := linearData(200)
	reg := &BoostRegressor{NEstimators: 50, LearningRate: 0.1, MaxDepth: 4, Subsample: 1}
	for b.Loop() {
		_, _ = reg.Fit(X, y)
	}
}
