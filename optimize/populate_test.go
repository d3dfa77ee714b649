package optimize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type svmParams struct {
	C       float64 `space:"real,0.001,100,log-uniform"`
	Degree  int     `space:"integer,1,5"`
	Kernel  string  `space:"categorical,linear|rbf|poly"`
	Verbose bool
}

func TestSpaceOfOrdersByName(t *testing.T) {
	s, err := SpaceOf(svmParams{})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "Degree", "Kernel"}, s.Names())

	c, ok := s.Dimension("C")
	require.True(t, ok)
	rd, ok := c.(*Real)
	require.True(t, ok)
	assert.Equal(t, LogUniform, rd.Prior)
	assert.Equal(t, 100.0, rd.High)

	k, _ := s.Dimension("Kernel")
	assert.Equal(t, []string{"linear", "rbf", "poly"}, k.(*Categorical).Categories)
}

func TestSpaceOfRejectsBadTags(t *testing.T) {
	type badKind struct {
		X float64 `space:"normal,0,1"`
	}
	type badBounds struct {
		X float64 `space:"real,a,1"`
	}
	type wrongField struct {
		X int `space:"real,0,1"`
	}
	type categoricalOnInt struct {
		X int `space:"categorical,a|b"`
	}
	type untagged struct {
		X int
	}
	for _, v := range []any{badKind{}, badBounds{}, wrongField{}, categoricalOnInt{}, untagged{}, 42} {
		_, err := SpaceOf(v)
		assert.Error(t, err, "%T", v)
	}
}

func TestPopulate(t *testing.T) {
	var dst svmParams
	err := Populate(Params{{"Kernel", "rbf"}, {"C", 2.5}, {"Degree", 3.0}}, &dst)
	require.NoError(t, err)
	assert.Equal(t, svmParams{C: 2.5, Degree: 3, Kernel: "rbf"}, dst)
}

func TestPopulateErrors(t *testing.T) {
	var dst svmParams
	assert.Error(t, Populate(Params{{"C", 2.5}, {"Degree", 3}}, &dst), "missing Kernel")
	assert.Error(t, Populate(Params{{"C", 2.5}, {"Degree", 3.5}, {"Kernel", "rbf"}}, &dst))
	assert.Error(t, Populate(Params{{"C", "big"}, {"Degree", 3}, {"Kernel", "rbf"}}, &dst))
	assert.Error(t, Populate(Params{}, dst), "not a pointer")
}

func TestPointOfRoundTrip(t *testing.T) {
	src := svmParams{C: 0.5, Degree: 2, Kernel: "poly"}
	s, err := SpaceOf(&src)
	require.NoError(t, err)

	point, err := PointOf(&src)
	require.NoError(t, err)
	require.NoError(t, s.Validate(point))

	named, err := s.Named(point)
	require.NoError(t, err)

	var dst svmParams
	require.NoError(t, Populate(named, &dst))
	assert.Equal(t, src, dst)
}
