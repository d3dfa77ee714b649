package ensemble

import (
	"encoding/json"
	"io"

	"github.com/YuminosukeSato/forestopt/core/model"
	"github.com/YuminosukeSato/forestopt/pkg/errors"
	"github.com/YuminosukeSato/forestopt/sklearn/tree"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Forest is a fitted collection of regression trees sharing one feature schema.
// Its mean prediction is the arithmetic mean of the per-tree predictions.
//
// Trees are fixed once added; Append is the only mutation and takes the write
// lock, so growth never interleaves with a prediction in flight.
type Forest struct {
	state     *model.StateManager
	kind      Kind
	criterion tree.Criterion
	trees     []model.TreePredictor
}

// NewForest assembles a forest from already-fitted trees.
func NewForest(kind Kind, criterion tree.Criterion, nFeatures int, trees ...model.TreePredictor) (*Forest, error) {
	if kind != RandomForest && kind != ExtraTrees {
		return nil, errors.NewValidationError("kind", "must be random_forest or extra_trees", string(kind))
	}
	if !criterion.Valid() {
		return nil, errors.NewValidationError("criterion", "unknown criterion", string(criterion))
	}
	if nFeatures <= 0 {
		return nil, errors.NewValidationError("n_features", "must be positive", nFeatures)
	}
	if len(trees) == 0 {
		return nil, errors.WithStack(errors.ErrEmptyEnsemble)
	}

	f := &Forest{
		state:     model.NewStateManager(),
		kind:      kind,
		criterion: criterion,
	}
	f.state.NFeatures = nFeatures
	if err := f.Append(trees...); err != nil {
		return nil, err
	}
	return f, nil
}

// Kind returns how the trees were grown.
func (f *Forest) Kind() Kind { return f.kind }

// Criterion returns the split criterion the trees were grown with.
func (f *Forest) Criterion() string { return string(f.criterion) }

// NFeatures returns the feature count every tree expects.
func (f *Forest) NFeatures() int {
	n, _ := f.state.GetDimensions()
	return n
}

// Len returns the current number of trees.
func (f *Forest) Len() int {
	_, n := f.state.GetDimensions()
	return n
}

// Estimators returns a snapshot of the trees in the order they were added.
func (f *Forest) Estimators() []model.TreePredictor {
	var out []model.TreePredictor
	_ = f.state.WithState(func() error {
		out = make([]model.TreePredictor, len(f.trees))
		copy(out, f.trees)
		return nil
	})
	return out
}

// Append adds trees after the existing ones. Trees loaded from a
// scikit-learn export are checked against the forest's schema.
func (f *Forest) Append(trees ...model.TreePredictor) error {
	return f.state.WithStateMut(func() error {
		for i, t := range trees {
			if t == nil {
				return errors.NewValidationError("trees", "nil tree", i)
			}
			st, ok := t.(*tree.Tree)
			if !ok {
				continue
			}
			if st.NFeatures != f.state.NFeatures {
				return errors.NewShapeMismatchError("Forest.Append", f.state.NFeatures, st.NFeatures, 1)
			}
			if st.Criterion != "" && st.Criterion != f.criterion {
				return errors.NewValidationError("criterion", "tree criterion differs from forest criterion", string(st.Criterion))
			}
		}
		f.trees = append(f.trees, trees...)
		f.state.NTrees = len(f.trees)
		f.state.Fitted = len(f.trees) > 0
		return nil
	})
}

// Predict returns the n×1 mean of the per-tree predictions.
func (f *Forest) Predict(X mat.Matrix) (mat.Matrix, error) {
	var out mat.Matrix
	err := f.state.WithState(func() error {
		rows, cols := X.Dims()
		if cols != f.state.NFeatures && rows > 0 {
			return errors.NewShapeMismatchError("Forest.Predict", f.state.NFeatures, cols, 1)
		}
		if len(f.trees) == 0 {
			return errors.NewNotFittedError("Forest", "Predict")
		}
		if rows == 0 {
			out = &mat.Dense{}
			return nil
		}

		data := rowsOf(X)
		sum := make([]float64, rows)
		pred := make([]float64, rows)
		for _, t := range f.trees {
			for i, row := range data {
				pred[i] = t.PredictRow(row)
			}
			floats.Add(sum, pred)
		}
		floats.Scale(1/float64(len(f.trees)), sum)

		out = mat.NewDense(rows, 1, sum)
		return nil
	})
	return out, err
}

// rowsOf copies every row of X once so trees can walk plain slices.
func rowsOf(X mat.Matrix) [][]float64 {
	rows, cols := X.Dims()
	data := make([][]float64, rows)
	if rm, ok := X.(mat.RawMatrixer); ok {
		raw := rm.RawMatrix()
		for i := range data {
			data[i] = raw.Data[i*raw.Stride : i*raw.Stride+cols]
		}
		return data
	}
	for i := range data {
		data[i] = mat.Row(nil, i, X)
	}
	return data
}

type forestJSON struct {
	Kind      Kind           `json:"kind"`
	Criterion tree.Criterion `json:"criterion"`
	NFeatures int            `json:"n_features"`
	Trees     []*tree.Tree   `json:"trees"`
}

// MarshalJSON encodes the forest. Only trees from package tree can be saved.
func (f *Forest) MarshalJSON() ([]byte, error) {
	doc := forestJSON{Kind: f.kind, Criterion: f.criterion}
	err := f.state.WithState(func() error {
		doc.NFeatures = f.state.NFeatures
		doc.Trees = make([]*tree.Tree, len(f.trees))
		for i, t := range f.trees {
			st, ok := t.(*tree.Tree)
			if !ok {
				return errors.Newf("forest: tree %d (%T) cannot be serialized", i, t)
			}
			doc.Trees[i] = st
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// UnmarshalJSON decodes and validates a forest.
func (f *Forest) UnmarshalJSON(data []byte) error {
	var doc forestJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return errors.Wrap(err, "failed to parse forest JSON")
	}
	trees := make([]model.TreePredictor, len(doc.Trees))
	for i, t := range doc.Trees {
		trees[i] = t
	}
	built, err := NewForest(doc.Kind, doc.Criterion, doc.NFeatures, trees...)
	if err != nil {
		return err
	}
	*f = *built
	return nil
}

// Save writes the forest as JSON to filename.
func (f *Forest) Save(filename string) error {
	return model.SaveJSON(f, filename)
}

// Write writes the forest as JSON to w.
func (f *Forest) Write(w io.Writer) error {
	return model.SaveJSONToWriter(f, w)
}

// LoadForest reads a forest saved by Save, or exported from scikit-learn in
// the same layout.
func LoadForest(filename string) (*Forest, error) {
	f := &Forest{}
	if err := model.LoadJSON(f, filename); err != nil {
		return nil, err
	}
	return f, nil
}

// ReadForest reads a forest from r.
func ReadForest(r io.Reader) (*Forest, error) {
	f := &Forest{}
	if err := model.LoadJSONFromReader(f, r); err != nil {
		return nil, err
	}
	return f, nil
}

var (
	_ model.Ensemble = (*Forest)(nil)
	_ model.Grower   = (*Forest)(nil)
)
