// Package log defines standard attribute keys for surrogate-model and
// objective-evaluation logging.
//
// Keys follow a hierarchical naming convention ("model.name", "data.samples")
// so log pipelines can filter on a prefix.

package log

// Model and operation context.
const (
	// ModelNameKey identifies the type of model, e.g. "RandomForestRegressor".
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	OperationKey = "ml.operation"

	// ComponentKey identifies which component is logging.
	ComponentKey = "ml.component"
)

// Data shape.
const (
	// SamplesKey is the number of query rows.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of feature columns.
	FeaturesKey = "data.features"
)

// Ensemble context.
const (
	// TreesKey is the number of trees consulted for a prediction.
	TreesKey = "ensemble.trees"

	// CriterionKey is the splitting criterion the ensemble was grown with.
	CriterionKey = "ensemble.criterion"

	// EnsembleKindKey is "random_forest" or "extra_trees".
	EnsembleKindKey = "ensemble.kind"

	// MinVarianceKey is the configured variance floor.
	MinVarianceKey = "ensemble.min_variance"

	// JobsKey is the parallelism bound of the per-tree fan-out.
	JobsKey = "ensemble.n_jobs"
)

// Optimization context.
const (
	// DirectionKey is "minimize" or "maximize".
	DirectionKey = "opt.direction"

	// ParamsKey holds the named parameters of an evaluation.
	ParamsKey = "opt.params"

	// ScoreKey is the score returned by the user objective.
	ScoreKey = "opt.score"

	// IterationKey is the index of an evaluation within a run.
	IterationKey = "opt.iteration"

	// CallbackKey names the callback that requested a stop.
	CallbackKey = "opt.callback"

	// CheckpointPathKey is the destination of a checkpoint.
	CheckpointPathKey = "opt.checkpoint_path"
)

// Performance and error context.
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// SuggestionKey provides a hint for resolving an issue.
	SuggestionKey = "error.suggestion"
)

// Standard attribute values.
const (
	OperationFit        = "fit"
	OperationPredict    = "predict"
	OperationPredictStd = "predict_std"
	OperationScore      = "score"
	OperationEvaluate   = "evaluate"
	OperationCheckpoint = "checkpoint"

	ErrorNotFitted             = "NOT_FITTED"
	ErrorShapeMismatch         = "SHAPE_MISMATCH"
	ErrorIncompatibleCriterion = "INCOMPATIBLE_CRITERION"
	ErrorInvalidInput          = "INVALID_INPUT"
)
