package algo

import "math"

// ForestRegressor is a random forest of bootstrapped regression trees.
type ForestRegressor struct {
	NEstimators    int
	MaxDepth       int
	MinSamplesLeaf int
	MaxFeatures    float64 // fraction of features tried per split
	Seed           uint64
}

// forestModel averages the predictions of its trees.
type forestModel struct {
	trees []*regressionTree
	width int
}

// Fit grows NEstimators trees, each on a bootstrap sample of the rows.
func (r *ForestRegressor) Fit(X [][]float64, y []float64) (Model, error) {
	width, err := checkTrainingSet(X, y)
	if err != nil {
		return nil, err
	}

	rng := newRand(r.Seed)
	cfg := treeConfig{
		maxDepth:    r.MaxDepth,
		minLeaf:     r.MinSamplesLeaf,
		maxFeatures: max(1, int(math.Round(r.MaxFeatures*float64(width)))),
		rng:         rng,
	}

	n := len(X)
	model := &forestModel{trees: make([]*regressionTree, r.NEstimators), width: width}
	sample := make([]int, n)
	for t := range model.trees {
		for i := range sample {
			sample[i] = rng.IntN(n)
		}
		model.trees[t] = fitTree(X, y, sample, cfg)
	}
	return model, nil
}

// Predict returns the mean tree prediction.
func (m *forestModel) Predict(x []float64) (float64, error) {
	if err := checkFeatures(x, m.width); err != nil {
		return 0, err
	}
	var sum float64
	for _, t := range m.trees {
		sum += t.predict(x)
	}
	return sum / float64(len(m.trees)), nil
}
