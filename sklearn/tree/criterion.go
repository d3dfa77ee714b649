package tree

// Criterion names the impurity measure a regression tree was grown with.
type Criterion string

const (
	// SquaredError is the default regression criterion.
	SquaredError Criterion = "squared_error"
	// MSE is the legacy scikit-learn alias of SquaredError.
	MSE Criterion = "mse"
	// FriedmanMSE is squared error with Friedman's improvement score.
	FriedmanMSE Criterion = "friedman_mse"
	// AbsoluteError splits on median absolute deviation.
	AbsoluteError Criterion = "absolute_error"
	// Poisson splits on Poisson deviance.
	Poisson Criterion = "poisson"
)

// IsVarianceConsistent reports whether the spread of per-tree predictions is
// an estimate of predictive variance under c. Only the squared error family
// qualifies.
func IsVarianceConsistent(c Criterion) bool {
	switch c {
	case SquaredError, MSE, FriedmanMSE:
		return true
	default:
		return false
	}
}

// Valid reports whether c is a criterion this package knows about.
func (c Criterion) Valid() bool {
	switch c {
	case SquaredError, MSE, FriedmanMSE, AbsoluteError, Poisson:
		return true
	default:
		return false
	}
}

func (c Criterion) String() string { return string(c) }
