package algo

import (
	"fmt"
	"math"
)

// SeriesToSupervised frames a univariate series as a supervised learning table.
//
// The row anchored at position k holds the nIn lagged values s[k-nIn..k-1]
// followed by the nOut targets s[k..k+nOut-1]. With dropNaN, rows that reach
// outside the series are dropped, leaving len(series)-nIn-nOut+1 rows (or none
// for a short series). Without it, one row per position is returned and the
// out-of-range cells hold NaN.
func SeriesToSupervised(series []float64, nIn, nOut int, dropNaN bool) ([][]float64, error) {
	if nIn < 1 || nOut < 1 {
		return nil, fmt.Errorf("%w: nIn=%d nOut=%d", ErrInvalidWindow, nIn, nOut)
	}

	width := nIn + nOut
	n := len(series)
	rows := make([][]float64, 0, max(n-width+1, 0))
	for k := range n {
		if dropNaN && (k < nIn || k+nOut > n) {
			continue
		}
		row := make([]float64, width)
		for j := range width {
			idx := k - nIn + j
			if idx < 0 || idx >= n {
				row[j] = math.NaN()
				continue
			}
			row[j] = series[idx]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// SplitXY separates supervised rows into features and target. The last column
// of every row is the target and everything before it is the feature vector.
func SplitXY(rows [][]float64) ([][]float64, []float64) {
	X := make([][]float64, len(rows))
	y := make([]float64, len(rows))
	for i, row := range rows {
		last := len(row) - 1
		X[i] = row[:last]
		y[i] = row[last]
	}
	return X, y
}
