// Package model provides the interfaces shared by the surrogate regressors and
// their tree-growing collaborators.
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Scorer is the interface for models that can compute a score.
type Scorer interface {
	// Score returns the coefficient of determination R^2 of the prediction.
	Score(X mat.Matrix, y mat.Matrix) (float64, error)
}

// ParameterGetter is the interface for models that expose their parameters.
type ParameterGetter interface {
	// GetParams returns the model's hyperparameters keyed by their
	// scikit-learn names.
	GetParams() map[string]interface{}
}

// ParameterSetter is the interface for models that allow parameter modification.
type ParameterSetter interface {
	// SetParams sets the model's hyperparameters.
	SetParams(params map[string]interface{}) error
}

// Grower is implemented by ensembles that support warm-start growth.
// Appending never removes or mutates existing trees.
type Grower interface {
	Append(trees ...TreePredictor) error
}

// UncertaintyRegressor is the surface the optimizer loop consumes: mean
// prediction, mean plus std, and a goodness-of-fit score.
type UncertaintyRegressor interface {
	UncertaintyPredictor
	Scorer
	ParameterGetter
	ParameterSetter
}
