package algo

import (
	"fmt"
	"maps"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/huangsam/flowcast/schema"
)

// Model predicts one value from one feature row.
type Model interface {
	Predict(x []float64) (float64, error)
}

// Regressor fits a Model from a feature matrix and its targets.
type Regressor interface {
	Fit(X [][]float64, y []float64) (Model, error)
}

// Hyperparameter names understood by the regressors.
const (
	ParamNEstimators    = "n_estimators"
	ParamMaxDepth       = "max_depth"
	ParamMinSamplesLeaf = "min_samples_leaf"
	ParamMaxFeatures    = "max_features"
	ParamLearningRate   = "learning_rate"
	ParamSubsample      = "subsample"
	ParamAlpha          = "alpha"
	ParamSeed           = "seed"
)

// defaultParams are the parameters each model starts from before overrides.
var defaultParams = map[schema.ModelKind]schema.Params{
	schema.ForestModel: {
		ParamNEstimators:    100,
		ParamMaxDepth:       8,
		ParamMinSamplesLeaf: 1,
		ParamMaxFeatures:    1,
		ParamSeed:           0,
	},
	schema.BoostModel: {
		ParamNEstimators:  100,
		ParamLearningRate: 0.3,
		ParamMaxDepth:     6,
		ParamSubsample:    1,
		ParamSeed:         0,
	},
	schema.RidgeModel: {
		ParamAlpha: 1,
	},
}

// DefaultParams returns a copy of the default parameters of a model kind.
func DefaultParams(kind schema.ModelKind) (schema.Params, error) {
	params, ok := defaultParams[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, kind)
	}
	return params.Clone(), nil
}

// ParamNames returns the sorted parameter names accepted by a model kind.
func ParamNames(kind schema.ModelKind) []string {
	return slices.Sorted(maps.Keys(defaultParams[kind]))
}

// ResolveParams merges overrides onto the model defaults and validates them.
func ResolveParams(kind schema.ModelKind, overrides schema.Params) (schema.Params, error) {
	params, err := DefaultParams(kind)
	if err != nil {
		return nil, err
	}
	for _, name := range slices.Sorted(maps.Keys(overrides)) {
		if _, ok := params[name]; !ok {
			return nil, fmt.Errorf("%w %q for model %s (accepted: %v)", ErrUnknownParam, name, kind, ParamNames(kind))
		}
		params[name] = overrides[name]
	}
	if err := validateParams(params); err != nil {
		return nil, err
	}
	return params, nil
}

// validateParams checks the value range of every known parameter present.
func validateParams(params schema.Params) error {
	for _, name := range slices.Sorted(maps.Keys(params)) {
		v := params[name]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s=%g", ErrInvalidParam, name, v)
		}
		var ok bool
		switch name {
		case ParamNEstimators, ParamMaxDepth, ParamMinSamplesLeaf:
			ok = v >= 1
		case ParamMaxFeatures, ParamSubsample:
			ok = v > 0 && v <= 1
		case ParamLearningRate:
			ok = v > 0
		case ParamAlpha, ParamSeed:
			ok = v >= 0
		default:
			ok = true
		}
		if !ok {
			return fmt.Errorf("%w: %s=%g", ErrInvalidParam, name, v)
		}
	}
	return nil
}

// NewRegressor builds the regressor of the given kind. Parameters not set in
// params take the model defaults; unknown names are rejected.
func NewRegressor(kind schema.ModelKind, params schema.Params) (Regressor, error) {
	resolved, err := ResolveParams(kind, params)
	if err != nil {
		return nil, err
	}
	switch kind {
	case schema.ForestModel:
		return &ForestRegressor{
			NEstimators:    int(resolved[ParamNEstimators]),
			MaxDepth:       int(resolved[ParamMaxDepth]),
			MinSamplesLeaf: int(resolved[ParamMinSamplesLeaf]),
			MaxFeatures:    resolved[ParamMaxFeatures],
			Seed:           uint64(resolved[ParamSeed]),
		}, nil
	case schema.BoostModel:
		return &BoostRegressor{
			NEstimators:  int(resolved[ParamNEstimators]),
			LearningRate: resolved[ParamLearningRate],
			MaxDepth:     int(resolved[ParamMaxDepth]),
			Subsample:    resolved[ParamSubsample],
			Seed:         uint64(resolved[ParamSeed]),
		}, nil
	case schema.RidgeModel:
		return &RidgeRegressor{Alpha: resolved[ParamAlpha]}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownModel, kind)
}

// checkTrainingSet validates the shape of a training set and returns its feature count.
func checkTrainingSet(X [][]float64, y []float64) (int, error) {
	if len(X) == 0 {
		return 0, ErrEmptyTrainingSet
	}
	if len(X) != len(y) {
		return 0, fmt.Errorf("%w: %d rows vs %d targets", ErrLengthMismatch, len(X), len(y))
	}
	width := len(X[0])
	for i, row := range X {
		if len(row) != width {
			return 0, fmt.Errorf("%w: row %d has %d features, want %d", ErrFeatureMismatch, i, len(row), width)
		}
	}
	return width, nil
}

// checkFeatures validates a prediction row against the fitted width.
func checkFeatures(x []float64, width int) error {
	if len(x) != width {
		return fmt.Errorf("%w: got %d features, want %d", ErrFeatureMismatch, len(x), width)
	}
	return nil
}

// newRand returns a deterministic generator for a seed.
func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
