// Package validate runs walk-forward validation: every test row is predicted
// by a model refitted on all rows that precede it.
package validate

import (
	"context"
	"fmt"

	"github.com/huangsam/flowcast/core/algo"
	"github.com/huangsam/flowcast/core/search"
	"github.com/huangsam/flowcast/schema"
)

// Options tune a walk-forward run.
type Options struct {
	// Round rounds every prediction half-to-even before it is scored.
	Round bool

	// OnStep, when set, observes each completed step.
	OnStep func(step schema.Step)
}

// StepResult is the outcome of one walk-forward step.
type StepResult struct {
	Actual      float64
	Predicted   float64
	Params      schema.Params
	HistorySize int
}

// Step fits on history, predicts the target of row and returns history with
// row appended. The returned history may share storage with the input.
func Step(ctx context.Context, fitter search.Fitter, history [][]float64, row []float64, opts Options) ([][]float64, StepResult, error) {
	if len(row) < 2 {
		return history, StepResult{}, fmt.Errorf("%w: test row has %d columns", algo.ErrFeatureMismatch, len(row))
	}
	last := len(row) - 1
	features, actual := row[:last], row[last]

	model, params, err := fitter.Fit(ctx, history)
	if err != nil {
		return history, StepResult{}, fmt.Errorf("fit on %d rows: %w", len(history), err)
	}
	predicted, err := model.Predict(features)
	if err != nil {
		return history, StepResult{}, fmt.Errorf("predict: %w", err)
	}
	if opts.Round {
		predicted = algo.RoundHalfEven(predicted)
	}

	result := StepResult{Actual: actual, Predicted: predicted, Params: params, HistorySize: len(history)}
	return append(history, row), result, nil
}

// WalkForward predicts every test row in order, growing the history by one
// row per step. Any failure aborts the run and no partial trace is returned.
func WalkForward(ctx context.Context, fitter search.Fitter, train, test [][]float64, opts Options) (schema.ValidationResult, error) {
	history := make([][]float64, len(train), len(train)+len(test))
	copy(history, train)

	steps := make([]schema.Step, 0, len(test))
	for i, row := range test {
		var (
			res StepResult
			err error
		)
		history, res, err = Step(ctx, fitter, history, row, opts)
		if err != nil {
			return schema.ValidationResult{}, fmt.Errorf("walk-forward step %d: %w", i, err)
		}
		step := schema.Step{
			Index:       i,
			Actual:      res.Actual,
			Predicted:   res.Predicted,
			HistorySize: res.HistorySize,
			Params:      res.Params,
		}
		steps = append(steps, step)
		if opts.OnStep != nil {
			opts.OnStep(step)
		}
	}

	result := schema.ValidationResult{Steps: steps}
	mae, err := algo.MAE(result.Actuals(), result.Predictions())
	if err != nil {
		return schema.ValidationResult{}, err
	}
	result.MAE = mae
	if len(steps) > 0 {
		result.FinalParams = steps[len(steps)-1].Params
	}
	return result, nil
}
