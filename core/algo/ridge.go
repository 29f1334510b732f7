package algo

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// RidgeRegressor is L2-regularised least squares with an unpenalised intercept.
type RidgeRegressor struct {
	Alpha float64
}

// ridgeModel is a fitted linear model.
type ridgeModel struct {
	weights   []float64
	intercept float64
}

// Fit centers the features and target, then solves (XᵀX + αI)w = Xᵀy.
func (r *RidgeRegressor) Fit(X [][]float64, y []float64) (Model, error) {
	width, err := checkTrainingSet(X, y)
	if err != nil {
		return nil, err
	}
	n := len(X)

	means := make([]float64, width)
	column := make([]float64, n)
	for j := range width {
		for i := range n {
			column[i] = X[i][j]
		}
		means[j] = stat.Mean(column, nil)
	}
	yMean := stat.Mean(y, nil)

	centered := mat.NewDense(n, width, nil)
	for i, row := range X {
		for j, v := range row {
			centered.Set(i, j, v-means[j])
		}
	}
	target := mat.NewVecDense(n, nil)
	for i, v := range y {
		target.SetVec(i, v-yMean)
	}

	gram := mat.NewSymDense(width, nil)
	gram.SymOuterK(1, centered.T())
	for j := range width {
		gram.SetSym(j, j, gram.At(j, j)+r.Alpha)
	}

	var rhs mat.VecDense
	rhs.MulVec(centered.T(), target)

	var chol mat.Cholesky
	if ok := chol.Factorize(gram); !ok {
		return nil, fmt.Errorf("ridge system is not positive definite (alpha=%g); raise alpha", r.Alpha)
	}
	var w mat.VecDense
	if err := chol.SolveVecTo(&w, &rhs); err != nil {
		return nil, fmt.Errorf("solving ridge system: %w", err)
	}

	weights := make([]float64, width)
	for j := range weights {
		weights[j] = w.AtVec(j)
	}
	return &ridgeModel{weights: weights, intercept: yMean - floats.Dot(means, weights)}, nil
}

// Predict returns the linear prediction for one row.
func (m *ridgeModel) Predict(x []float64) (float64, error) {
	if err := checkFeatures(x, len(m.weights)); err != nil {
		return 0, err
	}
	return m.intercept + floats.Dot(x, m.weights), nil
}
