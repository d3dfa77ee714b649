// Package ensemble provides random-forest and extra-trees surrogate regressors
// that report a per-row standard deviation alongside the mean prediction.
//
// Tree growth is delegated to a Builder; the regressors only aggregate the
// predictions of an already-fitted ensemble.
package ensemble

import (
	"github.com/YuminosukeSato/forestopt/core/model"
	"github.com/YuminosukeSato/forestopt/metrics"
	"github.com/YuminosukeSato/forestopt/pkg/errors"
	"github.com/YuminosukeSato/forestopt/pkg/log"
	"github.com/YuminosukeSato/forestopt/sklearn/tree"
	"gonum.org/v1/gonum/mat"
)

// Builder grows a fitted ensemble of the given kind. Tree growth lives
// outside this package.
type Builder interface {
	Build(X, y mat.Matrix, kind Kind, params Params) (model.Ensemble, error)
}

// BuilderFunc adapts a function to Builder.
type BuilderFunc func(X, y mat.Matrix, kind Kind, params Params) (model.Ensemble, error)

// Build calls f.
func (f BuilderFunc) Build(X, y mat.Matrix, kind Kind, params Params) (model.Ensemble, error) {
	return f(X, y, kind, params)
}

// Option configures a regressor at construction.
type Option func(*surrogate)

// WithMinVariance sets the variance floor applied before the square root.
func WithMinVariance(v float64) Option {
	return func(s *surrogate) { s.params.MinVariance = v }
}

// WithNJobs bounds the per-tree fan-out. n <= 0 means all CPUs.
func WithNJobs(n int) Option {
	return func(s *surrogate) { s.params.NJobs = n }
}

// WithLogger replaces the default component logger.
func WithLogger(l log.Logger) Option {
	return func(s *surrogate) { s.logger = l }
}

// WithEnsemble attaches an already-fitted ensemble.
func WithEnsemble(e model.Ensemble) Option {
	return func(s *surrogate) { s.pending = e }
}

// WithBuilder sets the collaborator used by Fit.
func WithBuilder(b Builder) Option {
	return func(s *surrogate) { s.builder = b }
}

// WithParams replaces every parameter. Options applied after it override
// single fields.
func WithParams(p Params) Option {
	return func(s *surrogate) { s.params = p }
}

// surrogate is the core shared by RandomForestRegressor and
// ExtraTreesRegressor. They differ only in the ensemble kind they accept.
type surrogate struct {
	name    string
	kind    Kind
	state   *model.StateManager
	params  Params
	builder Builder
	logger  log.Logger

	ensemble model.Ensemble
	pending  model.Ensemble
}

func newSurrogate(name string, kind Kind, opts []Option) (*surrogate, error) {
	s := &surrogate{
		name:   name,
		kind:   kind,
		state:  model.NewStateManager(),
		params: DefaultParams(kind),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.GetLoggerWithName("ensemble." + string(kind))
	}
	s.logger = s.logger.With(log.ModelNameKey, name, log.EnsembleKindKey, string(kind))

	if err := s.params.Validate(); err != nil {
		return nil, err
	}
	if s.pending != nil {
		if err := s.SetEnsemble(s.pending); err != nil {
			return nil, err
		}
		s.pending = nil
	}
	return s, nil
}

// SetEnsemble attaches a fitted ensemble, replacing any previous one.
// Ensembles that report a different Kind are rejected.
func (s *surrogate) SetEnsemble(e model.Ensemble) error {
	if e == nil {
		return errors.NewValidationError("ensemble", "must not be nil", nil)
	}
	if k, ok := e.(interface{ Kind() Kind }); ok && k.Kind() != s.kind {
		return errors.NewValidationError("ensemble", s.name+" requires a "+string(s.kind)+" ensemble", string(k.Kind()))
	}
	if e.NFeatures() <= 0 {
		return errors.NewValidationError("n_features", "ensemble must report a positive feature count", e.NFeatures())
	}
	n := len(e.Estimators())
	if n == 0 {
		return errors.WithStack(errors.ErrEmptyEnsemble)
	}

	return s.state.WithStateMut(func() error {
		s.ensemble = e
		s.state.Fitted = true
		s.state.NFeatures = e.NFeatures()
		s.state.NTrees = n
		return nil
	})
}

// Ensemble returns the attached ensemble, or nil before Fit.
func (s *surrogate) Ensemble() model.Ensemble {
	var e model.Ensemble
	_ = s.state.WithState(func() error {
		e = s.ensemble
		return nil
	})
	return e
}

// MinVariance returns the configured variance floor.
func (s *surrogate) MinVariance() float64 {
	var v float64
	_ = s.state.WithState(func() error {
		v = s.params.MinVariance
		return nil
	})
	return v
}

// IsFitted reports whether an ensemble is attached.
func (s *surrogate) IsFitted() bool {
	return s.state.IsFitted()
}

// snapshot returns the ensemble and parameters under the read lock.
func (s *surrogate) snapshot(method string) (model.Ensemble, Params, error) {
	var (
		e model.Ensemble
		p Params
	)
	err := s.state.WithState(func() error {
		if !s.state.Fitted || s.ensemble == nil {
			return errors.NewNotFittedError(s.name, method)
		}
		e, p = s.ensemble, s.params
		return nil
	})
	return e, p, err
}

// Fit grows a new ensemble through the configured Builder. With warm_start
// and a growable ensemble attached, only the missing trees are grown and
// appended.
func (s *surrogate) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, s.name+".Fit")

	if s.builder == nil {
		return errors.Wrapf(errors.ErrNotImplemented, "%s.Fit: no tree builder configured", s.name)
	}

	rows, cols := X.Dims()
	yRows, yCols := y.Dims()
	if rows != yRows {
		return errors.NewShapeMismatchError(s.name+".Fit", rows, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewShapeMismatchError(s.name+".Fit", 1, yCols, 1)
	}

	var (
		params   Params
		existing model.Ensemble
	)
	_ = s.state.WithState(func() error {
		params, existing = s.params, s.ensemble
		return nil
	})

	s.logger.Info("Growing ensemble",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
		log.TreesKey, params.NEstimators,
	)

	grower, canGrow := existing.(model.Grower)
	if params.WarmStart && canGrow && existing.NFeatures() == cols {
		have := len(existing.Estimators())
		if have >= params.NEstimators {
			s.logger.Warn("Warm start requested but ensemble already has enough trees",
				log.TreesKey, have)
			return nil
		}
		extra := params
		extra.NEstimators = params.NEstimators - have
		grown, err := s.builder.Build(X, y, s.kind, extra)
		if err != nil {
			return errors.NewModelError(s.name+".Fit", "tree builder failed", err)
		}
		if err := grower.Append(grown.Estimators()...); err != nil {
			return err
		}
		return s.SetEnsemble(existing)
	}

	grown, err := s.builder.Build(X, y, s.kind, params)
	if err != nil {
		return errors.NewModelError(s.name+".Fit", "tree builder failed", err)
	}
	return s.SetEnsemble(grown)
}

// Predict returns the n×1 mean prediction computed by the ensemble's own
// aggregation.
func (s *surrogate) Predict(X mat.Matrix) (result mat.Matrix, err error) {
	defer errors.Recover(&err, s.name+".Predict")

	e, _, err := s.snapshot("Predict")
	if err != nil {
		return nil, err
	}

	rows, cols := X.Dims()
	if rows == 0 {
		return &mat.Dense{}, nil
	}
	if cols != e.NFeatures() {
		return nil, errors.NewShapeMismatchError(s.name+".Predict", e.NFeatures(), cols, 1)
	}

	s.logger.Debug("Predicting mean",
		log.OperationKey, log.OperationPredict,
		log.SamplesKey, rows,
		log.TreesKey, len(e.Estimators()),
	)
	return e.Predict(X)
}

// PredictWithStd returns the mean (identical to Predict) and the per-row
// standard deviation of the tree predictions. The ensemble must have been
// grown with a squared-error criterion; otherwise an
// IncompatibleCriterionError is returned regardless of the batch size.
func (s *surrogate) PredictWithStd(X mat.Matrix) (mean, std mat.Matrix, err error) {
	defer errors.Recover(&err, s.name+".PredictWithStd")

	e, p, err := s.snapshot("PredictWithStd")
	if err != nil {
		return nil, nil, err
	}

	criterion := e.Criterion()
	if !tree.IsVarianceConsistent(tree.Criterion(criterion)) {
		s.logger.Debug("Refusing std for non-variance criterion",
			log.CriterionKey, criterion,
			log.ErrorCodeKey, log.ErrorIncompatibleCriterion,
		)
		return nil, nil, errors.NewIncompatibleCriterionError(s.name+".PredictWithStd", criterion)
	}

	rows, cols := X.Dims()
	if rows == 0 {
		return &mat.Dense{}, &mat.Dense{}, nil
	}
	if cols != e.NFeatures() {
		return nil, nil, errors.NewShapeMismatchError(s.name+".PredictWithStd", e.NFeatures(), cols, 1)
	}

	mean, err = e.Predict(X)
	if err != nil {
		return nil, nil, err
	}

	trees := e.Estimators()
	values, floored, err := returnStd(X, trees, mat.Col(nil, 0, mean), p.MinVariance, p.NJobs)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Debug("Predicted mean and std",
		log.OperationKey, log.OperationPredictStd,
		log.SamplesKey, rows,
		log.TreesKey, len(trees),
		log.CriterionKey, criterion,
		log.MinVarianceKey, p.MinVariance,
		log.JobsKey, p.NJobs,
	)
	if p.MinVariance > 0 && floored == rows {
		errors.Warn(errors.NewVarianceFloorWarning(rows, p.MinVariance))
	}

	return mean, mat.NewDense(rows, 1, values), nil
}

// Score returns the coefficient of determination R^2 of the mean prediction.
func (s *surrogate) Score(X, y mat.Matrix) (float64, error) {
	pred, err := s.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(y, pred)
}

// GetParams returns the parameters keyed by their scikit-learn names.
func (s *surrogate) GetParams() map[string]interface{} {
	var m map[string]interface{}
	_ = s.state.WithState(func() error {
		m = s.params.Map()
		return nil
	})
	return m
}

// SetParams updates parameters. The update is all-or-nothing.
func (s *surrogate) SetParams(params map[string]interface{}) error {
	return s.state.WithStateMut(func() error {
		next, err := s.params.Apply(params)
		if err != nil {
			return err
		}
		s.params = next
		return nil
	})
}

// RandomForestRegressor is a surrogate over bootstrap-aggregated trees.
type RandomForestRegressor struct {
	*surrogate
}

// NewRandomForestRegressor creates a regressor with skopt's defaults
// (10 trees, criterion "mse", bootstrap, min_variance 0).
func NewRandomForestRegressor(opts ...Option) (*RandomForestRegressor, error) {
	s, err := newSurrogate("RandomForestRegressor", RandomForest, opts)
	if err != nil {
		return nil, err
	}
	return &RandomForestRegressor{surrogate: s}, nil
}

// ExtraTreesRegressor is a surrogate over extremely randomized trees.
type ExtraTreesRegressor struct {
	*surrogate
}

// NewExtraTreesRegressor creates a regressor with skopt's defaults
// (10 trees, criterion "squared_error", no bootstrap, min_variance 0).
func NewExtraTreesRegressor(opts ...Option) (*ExtraTreesRegressor, error) {
	s, err := newSurrogate("ExtraTreesRegressor", ExtraTrees, opts)
	if err != nil {
		return nil, err
	}
	return &ExtraTreesRegressor{surrogate: s}, nil
}

var (
	_ model.UncertaintyRegressor = (*RandomForestRegressor)(nil)
	_ model.UncertaintyRegressor = (*ExtraTreesRegressor)(nil)
	_ model.Fitter               = (*ExtraTreesRegressor)(nil)
)
