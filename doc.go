// Package forestopt provides tree-ensemble surrogate models for sequential
// black-box optimization in Go.
//
// forestopt turns a pre-fitted random forest or extra-trees ensemble into an
// uncertainty-aware regressor, and adapts user scoring functions so that an
// always-minimizing optimizer can drive them.
//
// # Features
//
// - Mean and standard deviation across the trees of an ensemble, with a variance floor
// - Parallel per-tree fan-out with order-independent reduction
// - Objective adapter with maximize/minimize polarity
// - Ordered, JSON-stable named parameters
// - Search spaces derived from struct tags
// - Result tracking, stopping callbacks and compressed checkpoints
//
// # Installation
//
//	go get github.com/YuminosukeSato/forestopt
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/forestopt/sklearn/ensemble"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    forest, err := ensemble.LoadForest("forest.json")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    rf, err := ensemble.NewRandomForestRegressor(
//	        ensemble.WithEnsemble(forest),
//	        ensemble.WithMinVariance(1e-6),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    X := mat.NewDense(2, 2, []float64{0.1, 0.4, 0.8, 0.2})
//	    mean, std, err := rf.PredictWithStd(X)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(mat.Formatted(mean), mat.Formatted(std))
//	}
//
// # Packages
//
//   - sklearn/tree: Regression trees loaded from the scikit-learn array export
//   - sklearn/ensemble: Forests, ReturnStd and the uncertainty-aware regressors
//   - optimize: Objective adapter, parameter marshalling, search spaces, results
//   - metrics: Regression metrics (MSE, RMSE, MAE, R²)
//   - core/model: Core interfaces and state management
//   - core/parallel: Bounded parallel fan-out
//   - pkg/errors: Typed errors and warnings
//   - pkg/log: Structured logging
//
// # Objectives
//
// A user objective receives named parameters in search-space order:
//
//	space, _ := optimize.SpaceOf(Config{})
//	adapted := optimize.Wrap(func(p optimize.Params) (float64, error) {
//	    var cfg Config
//	    if err := optimize.Populate(p, &cfg); err != nil {
//	        return 0, err
//	    }
//	    return evaluate(cfg)
//	}, space.Names(), optimize.Maximize)
//
// The adapted objective returns the negated score for Maximize, so the
// optimizer always minimizes.
package forestopt
