package algo

import (
	"math/rand/v2"
	"slices"
)

// treeNode is a node of a fitted regression tree. Leaves have feature -1.
type treeNode struct {
	feature   int
	threshold float64
	left      int
	right     int
	value     float64
}

// regressionTree is a CART tree fitted by greedy squared-error splits.
type regressionTree struct {
	nodes []treeNode
}

// treeConfig controls how a regression tree grows.
type treeConfig struct {
	maxDepth    int
	minLeaf     int
	maxFeatures int        // features considered per split; all when >= width
	rng         *rand.Rand // only used when maxFeatures < width
}

// fitTree grows a tree on the rows of X listed in idx.
func fitTree(X [][]float64, y []float64, idx []int, cfg treeConfig) *regressionTree {
	t := &regressionTree{}
	t.grow(X, y, slices.Clone(idx), 0, cfg)
	return t
}

// grow appends the subtree for idx and returns its node index.
func (t *regressionTree) grow(X [][]float64, y []float64, idx []int, depth int, cfg treeConfig) int {
	node := len(t.nodes)
	t.nodes = append(t.nodes, treeNode{feature: -1, value: meanAt(y, idx)})

	if depth >= cfg.maxDepth || len(idx) < 2*cfg.minLeaf {
		return node
	}
	feature, threshold, ok := bestSplit(X, y, idx, cfg)
	if !ok {
		return node
	}

	var left, right []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	l := t.grow(X, y, left, depth+1, cfg)
	r := t.grow(X, y, right, depth+1, cfg)
	t.nodes[node] = treeNode{feature: feature, threshold: threshold, left: l, right: r, value: t.nodes[node].value}
	return node
}

// predict walks the tree for one feature row.
func (t *regressionTree) predict(x []float64) float64 {
	n := t.nodes[0]
	for n.feature >= 0 {
		if x[n.feature] <= n.threshold {
			n = t.nodes[n.left]
		} else {
			n = t.nodes[n.right]
		}
	}
	return n.value
}

// bestSplit finds the feature and threshold with the lowest summed squared
// error over both children. It sweeps each candidate feature in sorted order
// with running sums, so a feature costs one sort.
func bestSplit(X [][]float64, y []float64, idx []int, cfg treeConfig) (int, float64, bool) {
	width := len(X[idx[0]])
	features := make([]int, width)
	for f := range features {
		features[f] = f
	}
	if cfg.maxFeatures > 0 && cfg.maxFeatures < width && cfg.rng != nil {
		features = cfg.rng.Perm(width)[:cfg.maxFeatures]
		slices.Sort(features)
	}

	var totalSum, totalSq float64
	for _, i := range idx {
		totalSum += y[i]
		totalSq += y[i] * y[i]
	}
	n := float64(len(idx))
	parentSSE := totalSq - totalSum*totalSum/n

	bestSSE := parentSSE
	bestFeature, bestThreshold, found := -1, 0.0, false
	order := slices.Clone(idx)
	for _, f := range features {
		slices.SortStableFunc(order, func(a, b int) int {
			switch {
			case X[a][f] < X[b][f]:
				return -1
			case X[a][f] > X[b][f]:
				return 1
			}
			return 0
		})

		var leftSum, leftSq float64
		for pos := 0; pos < len(order)-1; pos++ {
			v := y[order[pos]]
			leftSum += v
			leftSq += v * v

			nLeft := pos + 1
			nRight := len(order) - nLeft
			if nLeft < cfg.minLeaf || nRight < cfg.minLeaf {
				continue
			}
			cur, next := X[order[pos]][f], X[order[pos+1]][f]
			if cur == next {
				continue
			}
			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq
			sse := leftSq - leftSum*leftSum/float64(nLeft) + rightSq - rightSum*rightSum/float64(nRight)
			if sse < bestSSE-1e-12 {
				bestSSE = sse
				bestFeature = f
				bestThreshold = cur + (next-cur)/2
				found = true
			}
		}
	}
	return bestFeature, bestThreshold, found
}

// meanAt averages y over idx.
func meanAt(y []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	var sum float64
	for _, i := range idx {
		sum += y[i]
	}
	return sum / float64(len(idx))
}
