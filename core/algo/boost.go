package algo

// BoostRegressor is gradient boosting of regression trees under squared loss.
type BoostRegressor struct {
	NEstimators  int
	LearningRate float64
	MaxDepth     int
	Subsample    float64 // fraction of rows each round is fitted on
	Seed         uint64
}

// boostModel is the initial mean plus the shrunken sum of its trees.
type boostModel struct {
	base         float64
	learningRate float64
	trees        []*regressionTree
	width        int
}

// Fit starts from the target mean and adds one tree per round, each fitted
// on the residuals of the model so far.
func (r *BoostRegressor) Fit(X [][]float64, y []float64) (Model, error) {
	width, err := checkTrainingSet(X, y)
	if err != nil {
		return nil, err
	}

	n := len(X)
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}

	model := &boostModel{learningRate: r.LearningRate, width: width, trees: make([]*regressionTree, 0, r.NEstimators)}
	model.base = meanAt(y, all)

	current := make([]float64, n)
	for i := range current {
		current[i] = model.base
	}
	residuals := make([]float64, n)

	rng := newRand(r.Seed)
	cfg := treeConfig{maxDepth: r.MaxDepth, minLeaf: 1}
	rows := max(1, int(r.Subsample*float64(n)))
	for range r.NEstimators {
		for i := range residuals {
			residuals[i] = y[i] - current[i]
		}
		sample := all
		if rows < n {
			sample = rng.Perm(n)[:rows]
		}
		tree := fitTree(X, residuals, sample, cfg)
		model.trees = append(model.trees, tree)
		for i := range current {
			current[i] += r.LearningRate * tree.predict(X[i])
		}
	}
	return model, nil
}

// Predict returns the boosted prediction for one row.
func (m *boostModel) Predict(x []float64) (float64, error) {
	if err := checkFeatures(x, m.width); err != nil {
		return 0, err
	}
	out := m.base
	for _, t := range m.trees {
		out += m.learningRate * t.predict(x)
	}
	return out, nil
}
