package search

import (
	"fmt"

	"github.com/huangsam/flowcast/core/algo"
	"github.com/huangsam/flowcast/schema"
	"gonum.org/v1/gonum/stat"
)

// Fold is one forward-chaining split: train on [0, TrainEnd), test on [TrainEnd, TestEnd).
type Fold struct {
	TrainEnd int
	TestEnd  int
}

// TimeSeriesSplit is forward-chaining cross-validation. The last
// NSplits*n/(NSplits+1) rows are cut into NSplits equal test blocks and each
// block is scored by a model trained on every row before it.
type TimeSeriesSplit struct {
	NSplits int
}

// Split returns the folds for n rows.
func (s TimeSeriesSplit) Split(n int) ([]Fold, error) {
	if s.NSplits < 2 {
		return nil, fmt.Errorf("cross-validation needs at least 2 splits, got %d", s.NSplits)
	}
	if n < s.NSplits+1 {
		return nil, fmt.Errorf("%w: %d rows for %d splits", ErrHistoryTooShort, n, s.NSplits)
	}
	size := n / (s.NSplits + 1)
	folds := make([]Fold, s.NSplits)
	for i := range folds {
		start := n - (s.NSplits-i)*size
		folds[i] = Fold{TrainEnd: start, TestEnd: start + size}
	}
	return folds, nil
}

// Score returns the mean fold MAE of a parameter set.
func (s TimeSeriesSplit) Score(kind schema.ModelKind, params schema.Params, rows [][]float64, folds []Fold) (float64, error) {
	scores := make([]float64, len(folds))
	for i, fold := range folds {
		model, err := fitRows(kind, params, rows[:fold.TrainEnd])
		if err != nil {
			return 0, err
		}
		X, y := algo.SplitXY(rows[fold.TrainEnd:fold.TestEnd])
		predicted := make([]float64, len(X))
		for j, x := range X {
			if predicted[j], err = model.Predict(x); err != nil {
				return 0, err
			}
		}
		if scores[i], err = algo.MAE(y, predicted); err != nil {
			return 0, err
		}
	}
	return stat.Mean(scores, nil), nil
}
