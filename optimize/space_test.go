package optimize

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/YuminosukeSato/forestopt/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSpace(t *testing.T) *Space {
	t.Helper()
	lr, err := NewReal("learning_rate", 1e-4, 1.0, LogUniform)
	require.NoError(t, err)
	depth, err := NewInteger("max_depth", 1, 10, Uniform)
	require.NoError(t, err)
	kernel, err := NewCategorical("kernel", "linear", "rbf", "poly")
	require.NoError(t, err)
	s, err := NewSpace(lr, depth, kernel)
	require.NoError(t, err)
	return s
}

func TestDimensionConstructors(t *testing.T) {
	_, err := NewReal("x", 1.0, 1.0, Uniform)
	assert.Error(t, err)
	_, err = NewReal("x", 0, 1, LogUniform)
	assert.Error(t, err)
	_, err = NewReal("x", 0, math.Inf(1), Uniform)
	assert.Error(t, err)
	_, err = NewReal("x", float32(0), float32(1), "gaussian")
	assert.Error(t, err)
	_, err = NewInteger("n", uint8(5), uint8(2), Uniform)
	assert.Error(t, err)
	_, err = NewCategorical("c")
	assert.Error(t, err)
	_, err = NewCategorical("c", "a", "a")
	assert.Error(t, err)

	r, err := NewReal("x", 0, 10, "")
	require.NoError(t, err)
	assert.Equal(t, Uniform, r.Prior)
}

func TestSpaceSampleStaysInBounds(t *testing.T) {
	s := testSpace(t)
	rng := rand.New(rand.NewPCG(1, 2))

	for i := 0; i < 500; i++ {
		point := s.Sample(rng)
		require.NoError(t, s.Validate(point))
	}
}

func TestSpaceTransformRoundTrip(t *testing.T) {
	s := testSpace(t)
	point := []any{0.01, int64(4), "rbf"}

	x, err := s.Transform(point)
	require.NoError(t, err)
	for _, v := range x {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
	assert.InDelta(t, 0.5, x[0], 1e-12) // log10(0.01) is halfway between -4 and 0
	assert.InDelta(t, 1.0/3.0, x[1], 1e-12)
	assert.InDelta(t, 0.5, x[2], 1e-12)

	back, err := s.Inverse(x)
	require.NoError(t, err)
	assert.InDelta(t, 0.01, back[0].(float64), 1e-12)
	assert.Equal(t, int64(4), back[1])
	assert.Equal(t, "rbf", back[2])
}

func TestSpaceInverseClamps(t *testing.T) {
	s := testSpace(t)
	back, err := s.Inverse([]float64{-1, 2, math.NaN()})
	require.NoError(t, err)
	assert.InDelta(t, 1e-4, back[0].(float64), 1e-15)
	assert.Equal(t, int64(10), back[1])
	assert.Equal(t, "linear", back[2])
}

func TestSpaceValidate(t *testing.T) {
	s := testSpace(t)

	err := s.Validate([]any{0.1, 3})
	var shapeErr *errors.ShapeMismatchError
	assert.True(t, errors.As(err, &shapeErr))

	assert.Error(t, s.Validate([]any{2.0, 3, "rbf"}))
	assert.Error(t, s.Validate([]any{0.1, 3.5, "rbf"}))
	assert.Error(t, s.Validate([]any{0.1, 3, "sigmoid"}))
	assert.NoError(t, s.Validate([]any{0.1, 3.0, "rbf"}))
}

func TestSpaceDistance(t *testing.T) {
	s := testSpace(t)
	d, err := s.Distance([]any{0.1, 3, "rbf"}, []any{0.3, 5, "poly"})
	require.NoError(t, err)
	assert.InDelta(t, 0.2+2+1, d, 1e-12)
}

func TestSpaceNamesAndLookup(t *testing.T) {
	s := testSpace(t)
	assert.Equal(t, []string{"learning_rate", "max_depth", "kernel"}, s.Names())
	assert.Equal(t, 3, s.Len())

	d, ok := s.Dimension("kernel")
	require.True(t, ok)
	assert.Equal(t, "kernel", d.Name())

	_, err := NewSpace(d, d)
	assert.Error(t, err)

	p, err := s.Named([]any{0.1, 3, "rbf"})
	require.NoError(t, err)
	assert.Equal(t, s.Names(), p.Names())
}

func TestIntegerLogUniformSample(t *testing.T) {
	d, err := NewInteger("n", 1, 1000, LogUniform)
	require.NoError(t, err)
	rng := rand.New(rand.NewPCG(3, 4))

	small := 0
	for i := 0; i < 1000; i++ {
		v := d.Sample(rng).(int64)
		require.NoError(t, d.Validate(v))
		if v < 32 {
			small++
		}
	}
	// Half of the log range lies below ~32.
	assert.Greater(t, small, 350)
}
