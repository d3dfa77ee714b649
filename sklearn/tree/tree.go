// Package tree holds pre-fitted regression trees exported from scikit-learn.
//
// Trees are read-only after loading and safe for concurrent prediction.
package tree

import (
	"math"

	"github.com/YuminosukeSato/forestopt/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Leaf marks a missing child, matching scikit-learn's TREE_LEAF.
const Leaf = -1

// Node represents a single node in a regression tree
type Node struct {
	LeftChild  int // Leaf if terminal
	RightChild int // Leaf if terminal

	// Split information (for non-leaf nodes)
	Feature       int
	Threshold     float64
	MissingGoLeft bool // Default direction for NaN

	// Value is the mean target of the training samples in this node.
	Value float64
}

// IsLeaf returns true if the node is a leaf node
func (n *Node) IsLeaf() bool {
	return n.LeftChild == Leaf && n.RightChild == Leaf
}

// Tree is a single fitted regression tree. Nodes[0] is the root.
type Tree struct {
	Nodes     []Node
	NFeatures int
	Criterion Criterion
}

// PredictRow walks the tree for one row and returns the leaf value.
// The row must have at least NFeatures entries.
func (t *Tree) PredictRow(features []float64) float64 {
	nodeID := 0

	for {
		node := &t.Nodes[nodeID]
		if node.IsLeaf() {
			return node.Value
		}

		v := features[node.Feature]
		switch {
		case math.IsNaN(v):
			if node.MissingGoLeft {
				nodeID = node.LeftChild
			} else {
				nodeID = node.RightChild
			}
		case v <= node.Threshold:
			nodeID = node.LeftChild
		default:
			nodeID = node.RightChild
		}
	}
}

// Predict returns an n×1 matrix of per-row predictions.
func (t *Tree) Predict(X mat.Matrix) (mat.Matrix, error) {
	rows, cols := X.Dims()
	if cols != t.NFeatures {
		return nil, errors.NewShapeMismatchError("Tree.Predict", t.NFeatures, cols, 1)
	}
	if rows == 0 {
		return &mat.Dense{}, nil
	}

	out := mat.NewDense(rows, 1, nil)
	row := make([]float64, cols)
	for i := 0; i < rows; i++ {
		mat.Row(row, i, X)
		out.Set(i, 0, t.PredictRow(row))
	}
	return out, nil
}

// Validate checks the node layout. Children must point forward in the node
// array, which scikit-learn's depth-first builder guarantees and which also
// rules out cycles.
func (t *Tree) Validate() error {
	if len(t.Nodes) == 0 {
		return errors.NewValidationError("nodes", "tree has no nodes", 0)
	}
	if t.NFeatures <= 0 {
		return errors.NewValidationError("n_features", "must be positive", t.NFeatures)
	}
	if t.Criterion != "" && !t.Criterion.Valid() {
		return errors.NewValidationError("criterion", "unknown criterion", string(t.Criterion))
	}

	for i := range t.Nodes {
		n := &t.Nodes[i]
		if n.IsLeaf() {
			if math.IsNaN(n.Value) || math.IsInf(n.Value, 0) {
				return errors.NewNumericalInstabilityError("Tree.Validate", []float64{n.Value}, i)
			}
			continue
		}
		if n.LeftChild == Leaf || n.RightChild == Leaf {
			return errors.Newf("tree: node %d has exactly one child", i)
		}
		if n.LeftChild <= i || n.RightChild <= i || n.LeftChild >= len(t.Nodes) || n.RightChild >= len(t.Nodes) {
			return errors.Newf("tree: node %d has out-of-order children (%d, %d)", i, n.LeftChild, n.RightChild)
		}
		if n.Feature < 0 || n.Feature >= t.NFeatures {
			return errors.NewValidationError("feature", "split feature out of range", n.Feature)
		}
	}
	return nil
}

// Depth returns the maximum root-to-leaf depth.
func (t *Tree) Depth() int {
	if len(t.Nodes) == 0 {
		return 0
	}
	depth := make([]int, len(t.Nodes))
	maxDepth := 0
	for i := range t.Nodes {
		n := &t.Nodes[i]
		if depth[i] > maxDepth {
			maxDepth = depth[i]
		}
		if !n.IsLeaf() {
			depth[n.LeftChild] = depth[i] + 1
			depth[n.RightChild] = depth[i] + 1
		}
	}
	return maxDepth
}

// NumLeaves returns the number of terminal nodes.
func (t *Tree) NumLeaves() int {
	count := 0
	for i := range t.Nodes {
		if t.Nodes[i].IsLeaf() {
			count++
		}
	}
	return count
}
