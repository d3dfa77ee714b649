package optimize

import (
	"fmt"
	"math"
	"time"

	"github.com/YuminosukeSato/forestopt/pkg/log"
)

// Callback is invoked after every evaluation. Returning true asks the
// optimizer to stop.
type Callback interface {
	Step(res *Result) (stop bool, err error)
}

// CallbackFunc adapts a function to Callback.
type CallbackFunc func(res *Result) (bool, error)

// Step calls f.
func (f CallbackFunc) Step(res *Result) (bool, error) { return f(res) }

// RunCallbacks runs every callback, even after one asks to stop, and reports
// whether any did. The first error aborts.
func RunCallbacks(res *Result, callbacks ...Callback) (bool, error) {
	logger := log.GetLoggerWithName("optimize.callbacks")
	stop := false
	for _, cb := range callbacks {
		s, err := cb.Step(res)
		if err != nil {
			return stop, err
		}
		if s {
			logger.Info("Callback requested stop",
				log.CallbackKey, callbackName(cb),
				log.IterationKey, res.Len(),
			)
			stop = true
		}
	}
	return stop, nil
}

func callbackName(cb Callback) string {
	if s, ok := cb.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", cb)
}

// EarlyStopper stops as soon as Criterion holds. It never fires on an empty
// result.
type EarlyStopper struct {
	Name      string
	Criterion func(res *Result) bool
}

func (e *EarlyStopper) Step(res *Result) (bool, error) {
	if res.Len() == 0 {
		return false, nil
	}
	return e.Criterion(res), nil
}

func (e *EarlyStopper) String() string {
	if e.Name != "" {
		return e.Name
	}
	return "EarlyStopper"
}

// IterationCallback calls Fn with the latest evaluation. Fn returning true
// stops the run.
type IterationCallback struct {
	Fn func(e Evaluation) bool
}

func (c *IterationCallback) Step(res *Result) (bool, error) {
	evals := res.Iterations()
	if len(evals) == 0 {
		return false, nil
	}
	return c.Fn(evals[len(evals)-1]), nil
}

func (c *IterationCallback) String() string { return "IterationCallback" }

// DeltaYStopper stops when the nBest lowest minimized scores are within
// delta of each other.
func DeltaYStopper(delta float64, nBest int) *EarlyStopper {
	if nBest < 1 {
		nBest = 5
	}
	return &EarlyStopper{
		Name: fmt.Sprintf("DeltaYStopper(delta=%g, n_best=%d)", delta, nBest),
		Criterion: func(res *Result) bool {
			top := res.Top(nBest)
			if len(top) < nBest {
				return false
			}
			return math.Abs(top[0].Minimized-top[nBest-1].Minimized) < delta
		},
	}
}

// DeltaXStopper stops when the last two evaluated points are closer than
// delta under space.Distance.
func DeltaXStopper(space *Space, delta float64) *EarlyStopper {
	return &EarlyStopper{
		Name: fmt.Sprintf("DeltaXStopper(delta=%g)", delta),
		Criterion: func(res *Result) bool {
			evals := res.Iterations()
			if len(evals) < 2 {
				return false
			}
			a := evals[len(evals)-2].Params.Values()
			b := evals[len(evals)-1].Params.Values()
			d, err := space.Distance(a, b)
			return err == nil && d < delta
		},
	}
}

// DeadlineStopper stops before the time budget runs out: once the remaining
// budget is no larger than the slowest evaluation so far.
type DeadlineStopper struct {
	Total time.Duration
}

func (d *DeadlineStopper) Step(res *Result) (bool, error) {
	evals := res.Iterations()
	if len(evals) < 2 {
		return false, nil
	}
	var spent, slowest time.Duration
	for _, e := range evals {
		spent += e.Duration
		slowest = max(slowest, e.Duration)
	}
	return d.Total-spent <= slowest, nil
}

func (d *DeadlineStopper) String() string {
	return fmt.Sprintf("DeadlineStopper(total=%s)", d.Total)
}

// CheckpointSaver saves the result after every evaluation. It never stops
// the run.
type CheckpointSaver struct {
	Path  string
	Codec Codec
}

func (c *CheckpointSaver) Step(res *Result) (bool, error) {
	return false, SaveResult(c.Path, res, c.Codec)
}

func (c *CheckpointSaver) String() string {
	return fmt.Sprintf("CheckpointSaver(%s)", c.Path)
}

// VerboseCallback logs progress every N evaluations.
type VerboseCallback struct {
	N      int
	Logger log.Logger
}

func (v *VerboseCallback) Step(res *Result) (bool, error) {
	n := res.Len()
	if n == 0 || (v.N > 1 && n%v.N != 0) {
		return false, nil
	}
	logger := v.Logger
	if logger == nil {
		logger = log.GetLoggerWithName("optimize")
	}
	best, _ := res.Best()
	evals := res.Iterations()
	last := evals[len(evals)-1]
	logger.Info("Evaluation finished",
		log.IterationKey, last.Iteration,
		log.ScoreKey, last.Score,
		"best_score", best.Score,
		log.DurationMsKey, last.Duration.Milliseconds(),
	)
	return false, nil
}
