package validate

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/huangsam/flowcast/core/algo"
	"github.com/huangsam/flowcast/core/search"
	"github.com/huangsam/flowcast/schema"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// meanModel predicts a constant.
type meanModel struct{ value float64 }

func (m meanModel) Predict([]float64) (float64, error) { return m.value, nil }

// meanFitter predicts the mean target of the history.
type meanFitter struct{}

func (meanFitter) Fit(_ context.Context, history [][]float64) (algo.Model, schema.Params, error) {
	if len(history) == 0 {
		return nil, nil, algo.ErrEmptyTrainingSet
	}
	var sum float64
	for _, row := range history {
		sum += row[len(row)-1]
	}
	return meanModel{sum / float64(len(history))}, schema.Params{"rows": float64(len(history))}, nil
}

// MockFitter is a testify mock of search.Fitter.
type MockFitter struct {
	mock.Mock
}

var _ search.Fitter = &MockFitter{}

func (m *MockFitter) Fit(ctx context.Context, history [][]float64) (algo.Model, schema.Params, error) {
	args := m.Called(ctx, history)
	model, _ := args.Get(0).(algo.Model)
	params, _ := args.Get(1).(schema.Params)
	return model, params, args.Error(2)
}

func supervised(t *testing.T, series []float64, nIn int) ([][]float64, [][]float64) {
	t.Helper()
	rows, err := algo.SeriesToSupervised(series, nIn, 1, true)
	require.NoError(t, err)
	train, test, err := algo.TrainTestSplit(rows, 0.8)
	require.NoError(t, err)
	return train, test
}

func TestWalkForward(t *testing.T) {
	train, test := supervised(t, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, 2)
	require.Len(t, train, 8)
	require.Len(t, test, 2)

	var observed []schema.Step
	result, err := WalkForward(context.Background(), meanFitter{}, train, test, Options{
		OnStep: func(s schema.Step) { observed = append(observed, s) },
	})
	require.NoError(t, err)

	require.Len(t, result.Steps, 2)
	assert.Equal(t, observed, result.Steps)

	// Targets of the train rows are 3..10, so the first prediction is their mean.
	assert.Equal(t, 11.0, result.Steps[0].Actual)
	assert.InDelta(t, 6.5, result.Steps[0].Predicted, 1e-12)
	assert.Equal(t, 8, result.Steps[0].HistorySize)

	// The first test row joins the history before the second fit.
	assert.InDelta(t, 7.0, result.Steps[1].Predicted, 1e-12)
	assert.Equal(t, 9, result.Steps[1].HistorySize)
	assert.Equal(t, schema.Params{"rows": 9}, result.FinalParams)

	assert.InDelta(t, (4.5+5.0)/2, result.MAE, 1e-12)
	assert.Len(t, train, 8, "train partition is not mutated")
}

func TestWalkForwardRounding(t *testing.T) {
	train := [][]float64{{0, 2}, {0, 3}}
	test := [][]float64{{0, 3}}

	result, err := WalkForward(context.Background(), meanFitter{}, train, test, Options{Round: true})
	require.NoError(t, err)
	assert.Equal(t, 2.0, result.Steps[0].Predicted, "2.5 rounds half to even")
	assert.Equal(t, 1.0, result.MAE)

	result, err = WalkForward(context.Background(), meanFitter{}, train, test, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2.5, result.Steps[0].Predicted)
}

func TestWalkForwardFailFast(t *testing.T) {
	train := [][]float64{{1, 2}, {2, 3}}
	test := [][]float64{{3, 4}, {4, 5}, {5, 6}}

	fitter := &MockFitter{}
	fitter.On("Fit", mock.Anything, mock.Anything).Return(meanModel{1}, schema.Params{}, nil).Once()
	fitter.On("Fit", mock.Anything, mock.Anything).Return(nil, nil, errors.New("boom")).Once()

	result, err := WalkForward(context.Background(), fitter, train, test, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 1")
	assert.Contains(t, err.Error(), "boom")
	assert.Empty(t, result.Steps, "no partial trace")
	fitter.AssertNumberOfCalls(t, "Fit", 2)
}

func TestWalkForwardEmptyTest(t *testing.T) {
	result, err := WalkForward(context.Background(), meanFitter{}, [][]float64{{1, 2}}, nil, Options{})
	require.NoError(t, err)
	assert.Empty(t, result.Steps)
	assert.Zero(t, result.MAE)
}

func TestStep(t *testing.T) {
	t.Run("history grows by one", func(t *testing.T) {
		history := [][]float64{{1, 2}}
		next, res, err := Step(context.Background(), meanFitter{}, history, []float64{2, 3}, Options{})
		require.NoError(t, err)
		assert.Len(t, next, 2)
		assert.Equal(t, []float64{2, 3}, next[1])
		assert.Equal(t, 3.0, res.Actual)
		assert.Equal(t, 2.0, res.Predicted)
		assert.Equal(t, 1, res.HistorySize)
	})

	t.Run("empty history fails", func(t *testing.T) {
		_, _, err := Step(context.Background(), meanFitter{}, nil, []float64{2, 3}, Options{})
		assert.ErrorIs(t, err, algo.ErrEmptyTrainingSet)
	})

	t.Run("row without features fails", func(t *testing.T) {
		_, _, err := Step(context.Background(), meanFitter{}, [][]float64{{1, 2}}, []float64{3}, Options{})
		assert.ErrorIs(t, err, algo.ErrFeatureMismatch)
	})
}

func TestWalkForwardWithRealFitter(t *testing.T) {
	series := make([]float64, 40)
	for i := range series {
		series[i] = float64(i % 5)
	}
	train, test := supervised(t, series, 5)

	fitter := &search.FixedFitter{Model: schema.BoostModel, Params: schema.Params{algo.ParamNEstimators: 20}}
	result, err := WalkForward(context.Background(), fitter, train, test, Options{Round: true})
	require.NoError(t, err)
	assert.Len(t, result.Steps, len(test))
	assert.InDelta(t, 0, result.MAE, 0.5, "a periodic series is easy to learn from five lags")
}

func TestWalkForwardProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.MaxSize = 40

	properties := gopter.NewProperties(parameters)

	properties.Property("one result per test row, history grows by one, MAE is the mean error", prop.ForAll(
		func(series []float64, nIn int) bool {
			rows, err := algo.SeriesToSupervised(series, nIn, 1, true)
			if err != nil {
				return false
			}
			train, test, err := algo.TrainTestSplit(rows, 0.8)
			if err != nil {
				return false
			}
			if len(train) == 0 {
				return true
			}
			result, err := WalkForward(context.Background(), meanFitter{}, train, test, Options{})
			if err != nil || len(result.Steps) != len(test) {
				return false
			}
			var sum float64
			for i, s := range result.Steps {
				if s.HistorySize != len(train)+i {
					return false
				}
				sum += math.Abs(s.Actual - s.Predicted)
			}
			if len(test) == 0 {
				return result.MAE == 0
			}
			return math.Abs(result.MAE-sum/float64(len(test))) < 1e-9
		},
		gen.SliceOf(gen.Float64Range(0, 50)),
		gen.IntRange(1, 4),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
