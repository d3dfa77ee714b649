// Package optimize adapts user objectives for an always-minimizing sequential
// optimizer and describes the search space, results and stopping rules around
// it.
package optimize

import (
	"strings"

	"github.com/YuminosukeSato/forestopt/pkg/errors"
)

// Objective scores one candidate point.
type Objective func(params Params) (float64, error)

// AdaptedObjective is what the optimizer calls: it receives a raw point
// ordered like the search space and always minimizes the result.
type AdaptedObjective func(point []any) (float64, error)

// Direction states whether the user objective should be minimized or
// maximized.
type Direction int

const (
	Minimize Direction = iota
	Maximize
)

func (d Direction) String() string {
	if d == Maximize {
		return "maximize"
	}
	return "minimize"
}

// Sign is the factor that turns a user score into a minimized score and back.
func (d Direction) Sign() float64 {
	if d == Maximize {
		return -1
	}
	return 1
}

// ParseDirection accepts "minimize"/"min" and "maximize"/"max".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "minimize", "min", "":
		return Minimize, nil
	case "maximize", "max":
		return Maximize, nil
	default:
		return Minimize, errors.NewValidationError("direction", "must be minimize or maximize", s)
	}
}

// Wrap adapts objective for an optimizer that always minimizes. The raw point
// is converted with ToNamed(names, point) and the score is negated when
// direction is Maximize. Errors and panics from objective pass through
// unchanged; nothing is retried or cached.
func Wrap[N any](objective Objective, names []N, direction Direction) AdaptedObjective {
	sign := direction.Sign()
	return func(point []any) (float64, error) {
		params, err := ToNamed(names, point)
		if err != nil {
			return 0, err
		}
		score, err := objective(params)
		if err != nil {
			return 0, err
		}
		return sign * score, nil
	}
}
