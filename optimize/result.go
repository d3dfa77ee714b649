package optimize

import (
	"math"
	"sort"
	"sync"
	"time"
)

// Evaluation is one recorded objective call.
type Evaluation struct {
	Iteration int           `json:"iteration"`
	Params    Params        `json:"params"`
	Score     float64       `json:"score"`     // as returned by the user objective
	Minimized float64       `json:"minimized"` // as seen by the optimizer
	Duration  time.Duration `json:"duration_ns"`
}

// Result collects the evaluations of one optimization run. It is safe for
// concurrent use.
type Result struct {
	mu          sync.RWMutex
	Direction   Direction    `json:"direction"`
	Names       []string     `json:"names"`
	Evaluations []Evaluation `json:"evaluations"`
}

// NewResult creates an empty result for a space with the given names.
func NewResult(names []string, direction Direction) *Result {
	return &Result{Direction: direction, Names: append([]string(nil), names...)}
}

// Record appends an evaluation given the minimized score and returns it.
func (r *Result) Record(params Params, minimized float64, d time.Duration) Evaluation {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := Evaluation{
		Iteration: len(r.Evaluations),
		Params:    params,
		Score:     minimized * r.Direction.Sign(),
		Minimized: minimized,
		Duration:  d,
	}
	r.Evaluations = append(r.Evaluations, e)
	return e
}

// Len returns the number of evaluations.
func (r *Result) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Evaluations)
}

// Iterations returns a copy of the evaluations in call order.
func (r *Result) Iterations() []Evaluation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Evaluation(nil), r.Evaluations...)
}

// Best returns the evaluation with the lowest minimized score. Ties keep the
// earliest.
func (r *Result) Best() (Evaluation, bool) {
	top := r.Top(1)
	if len(top) == 0 {
		return Evaluation{}, false
	}
	return top[0], true
}

// Top returns up to n evaluations, best first.
func (r *Result) Top(n int) []Evaluation {
	evals := r.Iterations()
	sort.SliceStable(evals, func(a, b int) bool {
		return less(evals[a].Minimized, evals[b].Minimized)
	})
	if n < len(evals) {
		evals = evals[:max(n, 0)]
	}
	return evals
}

// less orders NaN after every number.
func less(a, b float64) bool {
	if math.IsNaN(b) {
		return !math.IsNaN(a)
	}
	return a < b
}

// Minimized returns the optimizer-facing scores in call order.
func (r *Result) Minimized() []float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]float64, len(r.Evaluations))
	for i, e := range r.Evaluations {
		out[i] = e.Minimized
	}
	return out
}

// Convergence returns the best minimized score seen after each evaluation.
func (r *Result) Convergence() []float64 {
	vals := r.Minimized()
	best := math.Inf(1)
	for i, v := range vals {
		if less(v, best) {
			best = v
		}
		vals[i] = best
	}
	return vals
}

// Track records every successful call of fn into r. The raw point is named
// with r.Names.
func (r *Result) Track(fn AdaptedObjective) AdaptedObjective {
	return func(point []any) (float64, error) {
		start := time.Now()
		score, err := fn(point)
		if err != nil {
			return score, err
		}
		params, perr := ToNamed(r.Names, point)
		if perr != nil {
			return score, perr
		}
		r.Record(params, score, time.Since(start))
		return score, nil
	}
}
