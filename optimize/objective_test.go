package optimize

import (
	"testing"

	"github.com/YuminosukeSato/forestopt/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quadratic(p Params) (float64, error) {
	x, err := p.Float("x")
	if err != nil {
		return 0, err
	}
	y, err := p.Float("y")
	if err != nil {
		return 0, err
	}
	return (x-1)*(x-1) + y, nil
}

func TestWrapDirection(t *testing.T) {
	names := []string{"x", "y"}
	points := [][]any{{0.0, 2}, {1.0, -3}, {[]float64{3}, 0.5}}

	for _, point := range points {
		params, err := ToNamed(names, point)
		require.NoError(t, err)
		want, err := quadratic(params)
		require.NoError(t, err)

		got, err := Wrap(quadratic, names, Minimize)(point)
		require.NoError(t, err)
		assert.Equal(t, want, got)

		got, err = Wrap(quadratic, names, Maximize)(point)
		require.NoError(t, err)
		assert.Equal(t, -want, got)
	}
}

func TestWrapPassesNamedParams(t *testing.T) {
	var seen Params
	adapted := Wrap(func(p Params) (float64, error) {
		seen = p
		return 0, nil
	}, []string{"depth", "kernel"}, Minimize)

	_, err := adapted([]any{[]int64{4}, "rbf"})
	require.NoError(t, err)
	assert.Equal(t, Params{{"depth", int64(4)}, {"kernel", "rbf"}}, seen)
}

func TestWrapPropagatesObjectiveErrors(t *testing.T) {
	sentinel := errors.New("simulation diverged")
	adapted := Wrap(func(Params) (float64, error) { return 0, sentinel }, []string{"x"}, Maximize)

	_, err := adapted([]any{1.0})
	assert.Equal(t, sentinel, err)
}

func TestWrapPropagatesPanics(t *testing.T) {
	adapted := Wrap(func(Params) (float64, error) { panic("boom") }, []string{"x"}, Minimize)
	assert.PanicsWithValue(t, "boom", func() { _, _ = adapted([]any{1.0}) })
}

func TestWrapShapeMismatch(t *testing.T) {
	called := false
	adapted := Wrap(func(Params) (float64, error) { called = true; return 0, nil }, []string{"x", "y"}, Minimize)

	_, err := adapted([]any{1.0})
	var shapeErr *errors.ShapeMismatchError
	assert.True(t, errors.As(err, &shapeErr))
	assert.False(t, called)
}

func TestParseDirection(t *testing.T) {
	for in, want := range map[string]Direction{"minimize": Minimize, "MAX": Maximize, " max ": Maximize, "": Minimize} {
		got, err := ParseDirection(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseDirection("sideways")
	assert.Error(t, err)

	assert.Equal(t, "maximize", Maximize.String())
	assert.Equal(t, -1.0, Maximize.Sign())
}
