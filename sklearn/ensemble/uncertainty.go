package ensemble

import (
	"math"

	"github.com/YuminosukeSato/forestopt/core/model"
	"github.com/YuminosukeSato/forestopt/core/parallel"
	"github.com/YuminosukeSato/forestopt/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ReturnStd returns, for each row of X, the standard deviation of the
// per-tree predictions around the supplied mean:
//
//	var[i] = Σ_t (tree_t(X_i) - mean[i])² / len(trees)
//	std[i] = sqrt(max(var[i], minVariance))
//
// mean is used as given and never recomputed. Each tree is evaluated once
// over the whole batch; at most nJobs trees run concurrently (<= 0 means all
// CPUs). The reduction sums per-tree slots in tree order, so the result does
// not depend on scheduling.
func ReturnStd(X mat.Matrix, trees []model.TreePredictor, mean []float64, minVariance float64, nJobs int) ([]float64, error) {
	std, _, err := returnStd(X, trees, mean, minVariance, nJobs)
	return std, err
}

// returnStd also reports how many rows had their variance raised to the floor.
func returnStd(X mat.Matrix, trees []model.TreePredictor, mean []float64, minVariance float64, nJobs int) ([]float64, int, error) {
	if len(trees) == 0 {
		return nil, 0, errors.WithStack(errors.ErrEmptyEnsemble)
	}
	if math.IsNaN(minVariance) || math.IsInf(minVariance, 0) || minVariance < 0 {
		return nil, 0, errors.NewValidationError("min_variance", "must be finite and non-negative", minVariance)
	}
	rows, _ := X.Dims()
	if len(mean) != rows {
		return nil, 0, errors.NewShapeMismatchError("ReturnStd", rows, len(mean), 0)
	}
	if rows == 0 {
		return []float64{}, 0, nil
	}
	if err := errors.CheckNumericalStability("ReturnStd", mean); err != nil {
		return nil, 0, err
	}

	data := rowsOf(X)

	// preds[t][i] is tree t's prediction for row i.
	preds := make([][]float64, len(trees))
	parallel.Parallelize(len(trees), nJobs, func(start, end int) {
		for t := start; t < end; t++ {
			p := make([]float64, rows)
			for i, row := range data {
				p[i] = trees[t].PredictRow(row)
			}
			preds[t] = p
		}
	})

	variance := make([]float64, rows)
	diff := make([]float64, rows)
	for _, p := range preds {
		floats.SubTo(diff, p, mean)
		floats.Mul(diff, diff)
		floats.Add(variance, diff)
	}
	floats.Scale(1/float64(len(trees)), variance)

	floored := 0
	std := variance
	for i, v := range variance {
		if v <= minVariance {
			v = minVariance
			floored++
		}
		std[i] = math.Sqrt(v)
	}
	return std, floored, nil
}
