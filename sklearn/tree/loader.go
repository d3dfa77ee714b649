package tree

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/YuminosukeSato/forestopt/pkg/errors"
)

// JSONTree is the array layout of sklearn.tree._tree.Tree, as produced by
//
//	{k: getattr(est.tree_, k).tolist() for k in
//	    ("children_left", "children_right", "feature", "threshold", "value")}
//
// plus the estimator's criterion and n_features_in_.
type JSONTree struct {
	NFeatures       int             `json:"n_features"`
	Criterion       Criterion       `json:"criterion,omitempty"`
	ChildrenLeft    []int           `json:"children_left"`
	ChildrenRight   []int           `json:"children_right"`
	Feature         []int           `json:"feature"`
	Threshold       []float64       `json:"threshold"`
	Value           json.RawMessage `json:"value"`
	MissingGoToLeft []int           `json:"missing_go_to_left,omitempty"`
}

// decodeValues accepts the flat form [v, ...], the per-output form
// [[v], ...] and scikit-learn's native (n_nodes, n_outputs, 1) form.
func decodeValues(raw json.RawMessage) ([]float64, error) {
	var flat []float64
	if err := json.Unmarshal(raw, &flat); err == nil {
		return flat, nil
	}

	var nested2 [][]float64
	if err := json.Unmarshal(raw, &nested2); err == nil {
		out := make([]float64, len(nested2))
		for i, v := range nested2 {
			if len(v) != 1 {
				return nil, errors.NewValidationError("value", "only single-output trees are supported", len(v))
			}
			out[i] = v[0]
		}
		return out, nil
	}

	var nested3 [][][]float64
	if err := json.Unmarshal(raw, &nested3); err != nil {
		return nil, errors.Wrap(err, "failed to decode node values")
	}
	out := make([]float64, len(nested3))
	for i, v := range nested3 {
		if len(v) != 1 || len(v[0]) != 1 {
			return nil, errors.NewValidationError("value", "only single-output trees are supported", len(v))
		}
		out[i] = v[0][0]
	}
	return out, nil
}

// Build converts the array layout into a validated Tree.
func (j *JSONTree) Build() (*Tree, error) {
	values, err := decodeValues(j.Value)
	if err != nil {
		return nil, err
	}

	n := len(j.ChildrenLeft)
	for _, got := range []int{len(j.ChildrenRight), len(j.Feature), len(j.Threshold), len(values)} {
		if got != n {
			return nil, errors.NewShapeMismatchError("tree.Build", n, got, 0)
		}
	}
	if j.MissingGoToLeft != nil && len(j.MissingGoToLeft) != n {
		return nil, errors.NewShapeMismatchError("tree.Build", n, len(j.MissingGoToLeft), 0)
	}

	t := &Tree{
		Nodes:     make([]Node, n),
		NFeatures: j.NFeatures,
		Criterion: j.Criterion,
	}
	for i := 0; i < n; i++ {
		t.Nodes[i] = Node{
			LeftChild:  j.ChildrenLeft[i],
			RightChild: j.ChildrenRight[i],
			Feature:    j.Feature[i],
			Threshold:  j.Threshold[i],
			Value:      values[i],
		}
		if j.MissingGoToLeft != nil {
			t.Nodes[i].MissingGoLeft = j.MissingGoToLeft[i] != 0
		}
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Export converts the tree back into its array layout.
func (t *Tree) Export() (*JSONTree, error) {
	n := len(t.Nodes)
	j := &JSONTree{
		NFeatures:       t.NFeatures,
		Criterion:       t.Criterion,
		ChildrenLeft:    make([]int, n),
		ChildrenRight:   make([]int, n),
		Feature:         make([]int, n),
		Threshold:       make([]float64, n),
		MissingGoToLeft: make([]int, n),
	}
	values := make([]float64, n)
	for i, node := range t.Nodes {
		j.ChildrenLeft[i] = node.LeftChild
		j.ChildrenRight[i] = node.RightChild
		j.Feature[i] = node.Feature
		j.Threshold[i] = node.Threshold
		values[i] = node.Value
		if node.MissingGoLeft {
			j.MissingGoToLeft[i] = 1
		}
	}

	raw, err := json.Marshal(values)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode node values")
	}
	j.Value = raw
	return j, nil
}

// MarshalJSON encodes the tree in its array layout.
func (t *Tree) MarshalJSON() ([]byte, error) {
	j, err := t.Export()
	if err != nil {
		return nil, err
	}
	return json.Marshal(j)
}

// UnmarshalJSON decodes and validates the array layout.
func (t *Tree) UnmarshalJSON(data []byte) error {
	var j JSONTree
	if err := json.Unmarshal(data, &j); err != nil {
		return errors.Wrap(err, "failed to parse tree JSON")
	}
	built, err := j.Build()
	if err != nil {
		return err
	}
	*t = *built
	return nil
}

// LoadJSON reads a single tree from r.
func LoadJSON(r io.Reader) (*Tree, error) {
	var t Tree
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// LoadJSONFile reads a single tree from a file.
func LoadJSONFile(filePath string) (*Tree, error) {
	cleanPath := filepath.Clean(filePath)
	if strings.Contains(cleanPath, "..") {
		return nil, errors.Newf("path traversal detected in file path: %s", filePath)
	}

	f, err := os.Open(cleanPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open tree file %s", filePath)
	}
	defer f.Close()

	return LoadJSON(f)
}
