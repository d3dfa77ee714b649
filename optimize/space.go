package optimize

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/YuminosukeSato/forestopt/pkg/errors"
	"golang.org/x/exp/constraints"
)

// Number is any integer or float type a dimension bound can be given in.
type Number interface {
	constraints.Integer | constraints.Float
}

// Prior is the distribution a numerical dimension is sampled from.
type Prior string

const (
	Uniform    Prior = "uniform"
	LogUniform Prior = "log-uniform"
)

// Dimension is one axis of a search space. Transform maps a value onto
// [0, 1]; Inverse maps it back.
type Dimension interface {
	Name() string
	Validate(v any) error
	Sample(rng *rand.Rand) any
	Transform(v any) (float64, error)
	Inverse(x float64) any
	Distance(a, b any) (float64, error)
}

// Real is a continuous dimension over [Low, High].
type Real struct {
	name      string
	Low, High float64
	Prior     Prior
}

// NewReal creates a continuous dimension. Log-uniform bounds must be positive.
func NewReal[T Number](name string, low, high T, prior Prior) (*Real, error) {
	r := &Real{name: name, Low: float64(low), High: float64(high), Prior: prior}
	if r.Prior == "" {
		r.Prior = Uniform
	}
	if err := checkBounds(name, r.Low, r.High, r.Prior); err != nil {
		return nil, err
	}
	return r, nil
}

func checkBounds(name string, low, high float64, prior Prior) error {
	if math.IsNaN(low) || math.IsNaN(high) || math.IsInf(low, 0) || math.IsInf(high, 0) {
		return errors.NewValidationError(name, "bounds must be finite", [2]float64{low, high})
	}
	if low >= high {
		return errors.NewValidationError(name, "low must be less than high", [2]float64{low, high})
	}
	switch prior {
	case Uniform:
	case LogUniform:
		if low <= 0 {
			return errors.NewValidationError(name, "log-uniform bounds must be positive", low)
		}
	default:
		return errors.NewValidationError(name, "unknown prior", string(prior))
	}
	return nil
}

func (r *Real) Name() string { return r.name }

func (r *Real) String() string {
	return fmt.Sprintf("Real(%s, low=%g, high=%g, prior=%s)", r.name, r.Low, r.High, r.Prior)
}

func (r *Real) Validate(v any) error {
	f, ok := toFloat64(v)
	if !ok {
		return errors.NewValidationError(r.name, "not numeric", v)
	}
	if f < r.Low || f > r.High {
		return errors.NewValidationError(r.name, fmt.Sprintf("outside [%g, %g]", r.Low, r.High), f)
	}
	return nil
}

func (r *Real) Sample(rng *rand.Rand) any {
	u := rng.Float64()
	if r.Prior == LogUniform {
		lo, hi := math.Log(r.Low), math.Log(r.High)
		return math.Exp(lo + u*(hi-lo))
	}
	return r.Low + u*(r.High-r.Low)
}

func (r *Real) Transform(v any) (float64, error) {
	if err := r.Validate(v); err != nil {
		return 0, err
	}
	f, _ := toFloat64(v)
	if r.Prior == LogUniform {
		lo, hi := math.Log(r.Low), math.Log(r.High)
		return (math.Log(f) - lo) / (hi - lo), nil
	}
	return (f - r.Low) / (r.High - r.Low), nil
}

func (r *Real) Inverse(x float64) any {
	x = clamp01(x)
	if r.Prior == LogUniform {
		lo, hi := math.Log(r.Low), math.Log(r.High)
		return math.Min(r.High, math.Max(r.Low, math.Exp(lo+x*(hi-lo))))
	}
	return r.Low + x*(r.High-r.Low)
}

func (r *Real) Distance(a, b any) (float64, error) {
	fa, okA := toFloat64(a)
	fb, okB := toFloat64(b)
	if !okA || !okB {
		return 0, errors.NewValidationError(r.name, "not numeric", [2]any{a, b})
	}
	return math.Abs(fa - fb), nil
}

// Integer is a discrete dimension over [Low, High], both inclusive.
type Integer struct {
	name      string
	Low, High int64
	Prior     Prior
}

// NewInteger creates a discrete dimension.
func NewInteger[T constraints.Integer](name string, low, high T, prior Prior) (*Integer, error) {
	d := &Integer{name: name, Low: int64(low), High: int64(high), Prior: prior}
	if d.Prior == "" {
		d.Prior = Uniform
	}
	if err := checkBounds(name, float64(d.Low), float64(d.High), d.Prior); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Integer) Name() string { return d.name }

func (d *Integer) String() string {
	return fmt.Sprintf("Integer(%s, low=%d, high=%d, prior=%s)", d.name, d.Low, d.High, d.Prior)
}

func (d *Integer) Validate(v any) error {
	f, ok := toFloat64(v)
	if !ok || f != math.Trunc(f) {
		return errors.NewValidationError(d.name, "not an integer", v)
	}
	if int64(f) < d.Low || int64(f) > d.High {
		return errors.NewValidationError(d.name, fmt.Sprintf("outside [%d, %d]", d.Low, d.High), v)
	}
	return nil
}

func (d *Integer) Sample(rng *rand.Rand) any {
	if d.Prior == LogUniform {
		lo, hi := math.Log(float64(d.Low)), math.Log(float64(d.High)+1)
		v := int64(math.Floor(math.Exp(lo + rng.Float64()*(hi-lo))))
		return min(max(v, d.Low), d.High)
	}
	return d.Low + rng.Int64N(d.High-d.Low+1)
}

func (d *Integer) Transform(v any) (float64, error) {
	if err := d.Validate(v); err != nil {
		return 0, err
	}
	f, _ := toFloat64(v)
	if d.Prior == LogUniform {
		lo, hi := math.Log(float64(d.Low)), math.Log(float64(d.High))
		return (math.Log(f) - lo) / (hi - lo), nil
	}
	return (f - float64(d.Low)) / float64(d.High-d.Low), nil
}

func (d *Integer) Inverse(x float64) any {
	x = clamp01(x)
	var f float64
	if d.Prior == LogUniform {
		lo, hi := math.Log(float64(d.Low)), math.Log(float64(d.High))
		f = math.Exp(lo + x*(hi-lo))
	} else {
		f = float64(d.Low) + x*float64(d.High-d.Low)
	}
	return min(max(int64(math.Round(f)), d.Low), d.High)
}

func (d *Integer) Distance(a, b any) (float64, error) {
	fa, okA := toFloat64(a)
	fb, okB := toFloat64(b)
	if !okA || !okB {
		return 0, errors.NewValidationError(d.name, "not numeric", [2]any{a, b})
	}
	return math.Abs(fa - fb), nil
}

// Categorical is an unordered set of text labels.
type Categorical struct {
	name       string
	Categories []string
	index      map[string]int
}

// NewCategorical creates a categorical dimension with at least one label.
func NewCategorical(name string, categories ...string) (*Categorical, error) {
	if len(categories) == 0 {
		return nil, errors.NewValidationError(name, "needs at least one category", 0)
	}
	c := &Categorical{name: name, Categories: categories, index: make(map[string]int, len(categories))}
	for i, cat := range categories {
		if _, dup := c.index[cat]; dup {
			return nil, errors.NewValidationError(name, "duplicate category", cat)
		}
		c.index[cat] = i
	}
	return c, nil
}

func (c *Categorical) Name() string { return c.name }

func (c *Categorical) String() string {
	return fmt.Sprintf("Categorical(%s, %v)", c.name, c.Categories)
}

func (c *Categorical) Validate(v any) error {
	if _, ok := c.index[nameOf(v)]; !ok {
		return errors.NewValidationError(c.name, "unknown category", v)
	}
	return nil
}

func (c *Categorical) Sample(rng *rand.Rand) any {
	return c.Categories[rng.IntN(len(c.Categories))]
}

// Transform maps a label to its index scaled onto [0, 1].
func (c *Categorical) Transform(v any) (float64, error) {
	i, ok := c.index[nameOf(v)]
	if !ok {
		return 0, errors.NewValidationError(c.name, "unknown category", v)
	}
	if len(c.Categories) == 1 {
		return 0, nil
	}
	return float64(i) / float64(len(c.Categories)-1), nil
}

func (c *Categorical) Inverse(x float64) any {
	i := int(math.Round(clamp01(x) * float64(len(c.Categories)-1)))
	return c.Categories[i]
}

// Distance is 0 for equal labels and 1 otherwise.
func (c *Categorical) Distance(a, b any) (float64, error) {
	if nameOf(a) == nameOf(b) {
		return 0, nil
	}
	return 1, nil
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return math.Min(1, math.Max(0, x))
}

// Space is an ordered set of uniquely named dimensions. Its order is the
// order of raw points handed to an AdaptedObjective.
type Space struct {
	dims   []Dimension
	byName map[string]int
}

// NewSpace creates a space from dims in order.
func NewSpace(dims ...Dimension) (*Space, error) {
	if len(dims) == 0 {
		return nil, errors.WithStack(errors.ErrEmptyData)
	}
	s := &Space{dims: dims, byName: make(map[string]int, len(dims))}
	for i, d := range dims {
		if _, dup := s.byName[d.Name()]; dup {
			return nil, errors.NewValidationError("space", "duplicate dimension name", d.Name())
		}
		s.byName[d.Name()] = i
	}
	return s, nil
}

// Len returns the number of dimensions.
func (s *Space) Len() int { return len(s.dims) }

// Dimensions returns the dimensions in order.
func (s *Space) Dimensions() []Dimension { return append([]Dimension(nil), s.dims...) }

// Dimension returns the dimension called name.
func (s *Space) Dimension(name string) (Dimension, bool) {
	i, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	return s.dims[i], true
}

// Names returns the dimension names in order.
func (s *Space) Names() []string {
	out := make([]string, len(s.dims))
	for i, d := range s.dims {
		out[i] = d.Name()
	}
	return out
}

func (s *Space) checkLen(op string, n int) error {
	if n != len(s.dims) {
		return errors.NewShapeMismatchError(op, len(s.dims), n, 0)
	}
	return nil
}

// Validate checks every coordinate of point against its dimension.
func (s *Space) Validate(point []any) error {
	if err := s.checkLen("Space.Validate", len(point)); err != nil {
		return err
	}
	for i, d := range s.dims {
		if err := d.Validate(point[i]); err != nil {
			return err
		}
	}
	return nil
}

// Sample draws one point.
func (s *Space) Sample(rng *rand.Rand) []any {
	out := make([]any, len(s.dims))
	for i, d := range s.dims {
		out[i] = d.Sample(rng)
	}
	return out
}

// Transform maps point onto the unit hypercube.
func (s *Space) Transform(point []any) ([]float64, error) {
	if err := s.checkLen("Space.Transform", len(point)); err != nil {
		return nil, err
	}
	out := make([]float64, len(s.dims))
	for i, d := range s.dims {
		x, err := d.Transform(point[i])
		if err != nil {
			return nil, err
		}
		out[i] = x
	}
	return out, nil
}

// Inverse maps a unit-hypercube point back into the space.
func (s *Space) Inverse(x []float64) ([]any, error) {
	if err := s.checkLen("Space.Inverse", len(x)); err != nil {
		return nil, err
	}
	out := make([]any, len(s.dims))
	for i, d := range s.dims {
		out[i] = d.Inverse(x[i])
	}
	return out, nil
}

// Distance sums the per-dimension distances between a and b.
func (s *Space) Distance(a, b []any) (float64, error) {
	if err := s.checkLen("Space.Distance", len(a)); err != nil {
		return 0, err
	}
	if err := s.checkLen("Space.Distance", len(b)); err != nil {
		return 0, err
	}
	var total float64
	for i, d := range s.dims {
		dist, err := d.Distance(a[i], b[i])
		if err != nil {
			return 0, err
		}
		total += dist
	}
	return total, nil
}

// Named pairs point with the space's names.
func (s *Space) Named(point []any) (Params, error) {
	return ToNamed(s.Names(), point)
}
