package algo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// MAE returns the mean absolute error of the predictions.
func MAE(actual, predicted []float64) (float64, error) {
	if len(actual) != len(predicted) {
		return 0, fmt.Errorf("%w: %d actual values vs %d predictions", ErrLengthMismatch, len(actual), len(predicted))
	}
	if len(actual) == 0 {
		return 0, nil
	}
	return floats.Distance(actual, predicted, 1) / float64(len(actual)), nil
}

// RoundHalfEven rounds to the nearest integer, ties to even.
func RoundHalfEven(v float64) float64 {
	return math.RoundToEven(v)
}
