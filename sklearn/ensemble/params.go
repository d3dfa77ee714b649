package ensemble

import (
	"math"

	"github.com/YuminosukeSato/forestopt/pkg/errors"
	"github.com/YuminosukeSato/forestopt/sklearn/tree"
)

// Kind identifies how the trees of a forest were grown.
type Kind string

const (
	// RandomForest trees are grown on bootstrap samples with best splits.
	RandomForest Kind = "random_forest"
	// ExtraTrees trees are grown on the full sample with random thresholds.
	ExtraTrees Kind = "extra_trees"
)

// Params are the scikit-learn hyperparameters of a forest regressor.
// Only MinVariance and NJobs are interpreted here; the rest are forwarded to
// the Builder that grows trees.
type Params struct {
	NEstimators     int
	Criterion       tree.Criterion
	MaxDepth        int // 0 means unlimited
	MinSamplesSplit int
	MinSamplesLeaf  int
	Bootstrap       bool
	NJobs           int // <= 0 means all CPUs
	RandomState     int64
	WarmStart       bool
	MinVariance     float64
}

// DefaultParams mirrors the defaults skopt uses for its forest surrogates.
func DefaultParams(kind Kind) Params {
	p := Params{
		NEstimators:     10,
		Criterion:       tree.SquaredError,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		NJobs:           1,
	}
	if kind == RandomForest {
		p.Criterion = tree.MSE
		p.Bootstrap = true
	}
	return p
}

// Validate checks ranges that do not depend on a fitted ensemble.
func (p Params) Validate() error {
	if math.IsNaN(p.MinVariance) || math.IsInf(p.MinVariance, 0) {
		return errors.NewValidationError("min_variance", "must be finite", p.MinVariance)
	}
	if p.MinVariance < 0 {
		return errors.NewValidationError("min_variance", "must be non-negative", p.MinVariance)
	}
	if p.NEstimators < 1 {
		return errors.NewValidationError("n_estimators", "must be at least 1", p.NEstimators)
	}
	if !p.Criterion.Valid() {
		return errors.NewValidationError("criterion", "unknown criterion", string(p.Criterion))
	}
	if p.MaxDepth < 0 {
		return errors.NewValidationError("max_depth", "must be non-negative", p.MaxDepth)
	}
	if p.MinSamplesSplit < 2 {
		return errors.NewValidationError("min_samples_split", "must be at least 2", p.MinSamplesSplit)
	}
	if p.MinSamplesLeaf < 1 {
		return errors.NewValidationError("min_samples_leaf", "must be at least 1", p.MinSamplesLeaf)
	}
	return nil
}

// Map returns the parameters keyed by their scikit-learn names.
func (p Params) Map() map[string]interface{} {
	var maxDepth interface{}
	if p.MaxDepth > 0 {
		maxDepth = p.MaxDepth
	}
	return map[string]interface{}{
		"n_estimators":      p.NEstimators,
		"criterion":         string(p.Criterion),
		"max_depth":         maxDepth,
		"min_samples_split": p.MinSamplesSplit,
		"min_samples_leaf":  p.MinSamplesLeaf,
		"bootstrap":         p.Bootstrap,
		"n_jobs":            p.NJobs,
		"random_state":      p.RandomState,
		"warm_start":        p.WarmStart,
		"min_variance":      p.MinVariance,
	}
}

// Apply returns a copy of p with values updated. Unknown keys and values of
// the wrong kind are rejected; the result is validated.
func (p Params) Apply(values map[string]interface{}) (Params, error) {
	for key, value := range values {
		var err error
		switch key {
		case "n_estimators":
			p.NEstimators, err = toInt(key, value)
		case "criterion":
			s, ok := value.(string)
			if !ok {
				if c, isCrit := value.(tree.Criterion); isCrit {
					s, ok = string(c), true
				}
			}
			if !ok {
				err = errors.NewValidationError(key, "must be a string", value)
			}
			p.Criterion = tree.Criterion(s)
		case "max_depth":
			if value == nil {
				p.MaxDepth = 0
			} else {
				p.MaxDepth, err = toInt(key, value)
			}
		case "min_samples_split":
			p.MinSamplesSplit, err = toInt(key, value)
		case "min_samples_leaf":
			p.MinSamplesLeaf, err = toInt(key, value)
		case "bootstrap":
			p.Bootstrap, err = toBool(key, value)
		case "n_jobs":
			if value == nil {
				p.NJobs = 1
			} else {
				p.NJobs, err = toInt(key, value)
			}
		case "random_state":
			var seed int
			seed, err = toInt(key, value)
			p.RandomState = int64(seed)
		case "warm_start":
			p.WarmStart, err = toBool(key, value)
		case "min_variance":
			p.MinVariance, err = toFloat(key, value)
		default:
			err = errors.NewValidationError(key, "unknown parameter", value)
		}
		if err != nil {
			return p, err
		}
	}
	return p, p.Validate()
}

func toInt(key string, value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		if v == math.Trunc(v) {
			return int(v), nil
		}
	}
	return 0, errors.NewValidationError(key, "must be an integer", value)
}

func toFloat(key string, value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return 0, errors.NewValidationError(key, "must be a number", value)
}

func toBool(key string, value interface{}) (bool, error) {
	if v, ok := value.(bool); ok {
		return v, nil
	}
	return false, errors.NewValidationError(key, "must be a boolean", value)
}
