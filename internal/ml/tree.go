// Package ml implements the gradient-boosted decision tree ensemble used for
// credit default prediction, plus dataset loading and holdout evaluation.
package ml

import (
	"math"
	"sort"
)

// treeNode is one node of a regression tree in flattened slice form. Child
// fields index into the owning tree's node slice; -1 marks a leaf.
type treeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	Value      float64 `json:"value"`
	IsLeaf     bool    `json:"is_leaf"`
}

// regressionTree fits residual targets; leaves hold Newton-step values.
type regressionTree struct {
	Nodes []treeNode `json:"nodes"`
}

// predict walks the tree for one feature vector.
func (t *regressionTree) predict(features []float64) float64 {
	idx := 0
	for {
		node := t.Nodes[idx]
		if node.IsLeaf {
			return node.Value
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
	}
}

// fitTree builds a regression tree on the given sample gradients.
// gradients are the residuals y - p, hessians the p(1-p) weights; the leaf
// value is the Newton step sum(g)/sum(h).
func fitTree(features [][]float64, gradients, hessians []float64, maxDepth, minLeaf int) regressionTree {
	indices := make([]int, len(features))
	for i := range indices {
		indices[i] = i
	}
	nodes := buildNodes(features, gradients, hessians, indices, 0, maxDepth, minLeaf)
	return regressionTree{Nodes: nodes}
}

func buildNodes(features [][]float64, gradients, hessians []float64, indices []int, depth, maxDepth, minLeaf int) []treeNode {
	if depth >= maxDepth || len(indices) < 2*minLeaf {
		return []treeNode{leafNode(gradients, hessians, indices)}
	}

	featureIdx, threshold, ok := bestSplit(features, gradients, indices, minLeaf)
	if !ok {
		return []treeNode{leafNode(gradients, hessians, indices)}
	}

	left := make([]int, 0, len(indices))
	right := make([]int, 0, len(indices))
	for _, i := range indices {
		if features[i][featureIdx] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < minLeaf || len(right) < minLeaf {
		return []treeNode{leafNode(gradients, hessians, indices)}
	}

	leftNodes := buildNodes(features, gradients, hessians, left, depth+1, maxDepth, minLeaf)
	rightNodes := buildNodes(features, gradients, hessians, right, depth+1, maxDepth, minLeaf)

	root := treeNode{
		FeatureIdx: featureIdx,
		Threshold:  threshold,
		LeftChild:  1,
		RightChild: 1 + len(leftNodes),
		IsLeaf:     false,
	}

	nodes := make([]treeNode, 0, 1+len(leftNodes)+len(rightNodes))
	nodes = append(nodes, root)
	nodes = append(nodes, shiftChildren(leftNodes, 1)...)
	nodes = append(nodes, shiftChildren(rightNodes, 1+len(leftNodes))...)
	return nodes
}

// shiftChildren rebases child indices of a subtree appended at offset.
func shiftChildren(nodes []treeNode, offset int) []treeNode {
	for i := range nodes {
		if !nodes[i].IsLeaf {
			nodes[i].LeftChild += offset
			nodes[i].RightChild += offset
		}
	}
	return nodes
}

func leafNode(gradients, hessians []float64, indices []int) treeNode {
	var gradSum, hessSum float64
	for _, i := range indices {
		gradSum += gradients[i]
		hessSum += hessians[i]
	}
	value := 0.0
	if hessSum > 1e-12 {
		value = gradSum / hessSum
	}
	return treeNode{
		FeatureIdx: -1,
		LeftChild:  -1,
		RightChild: -1,
		Value:      value,
		IsLeaf:     true,
	}
}

// bestSplit picks the (feature, median threshold) pair with the largest
// reduction in gradient variance.
func bestSplit(features [][]float64, gradients []float64, indices []int, minLeaf int) (int, float64, bool) {
	featureCount := len(features[indices[0]])
	bestFeature := -1
	bestThreshold := 0.0
	bestScore := math.Inf(1)

	parentSSE := gradientSSE(gradients, indices)

	for featureIdx := 0; featureIdx < featureCount; featureIdx++ {
		values := make([]float64, len(indices))
		for i, idx := range indices {
			values[i] = features[idx][featureIdx]
		}
		threshold := median(values)

		left := make([]int, 0, len(indices))
		right := make([]int, 0, len(indices))
		for _, idx := range indices {
			if features[idx][featureIdx] <= threshold {
				left = append(left, idx)
			} else {
				right = append(right, idx)
			}
		}
		if len(left) < minLeaf || len(right) < minLeaf {
			continue
		}
		score := gradientSSE(gradients, left) + gradientSSE(gradients, right)
		if score < bestScore {
			bestScore = score
			bestFeature = featureIdx
			bestThreshold = threshold
		}
	}

	if bestFeature == -1 || bestScore >= parentSSE {
		return -1, 0, false
	}
	return bestFeature, bestThreshold, true
}

func gradientSSE(gradients []float64, indices []int) float64 {
	if len(indices) == 0 {
		return 0
	}
	var sum float64
	for _, i := range indices {
		sum += gradients[i]
	}
	mean := sum / float64(len(indices))
	var sse float64
	for _, i := range indices {
		d := gradients[i] - mean
		sse += d * d
	}
	return sse
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
