package metrics

import (
	"math"
	"testing"

	"github.com/YuminosukeSato/forestopt/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestMSE(t *testing.T) {
	tests := []struct {
		name  string
		yTrue []float64
		yPred []float64
		want  float64
	}{
		{"perfect prediction", []float64{1, 2, 3, 4, 5}, []float64{1, 2, 3, 4, 5}, 0},
		{"simple case", []float64{1, 2, 3, 4}, []float64{1.5, 2.5, 2.5, 3.5}, 0.25},
		{"larger errors", []float64{10, 20, 30}, []float64{12, 18, 33}, 17.0 / 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MSE(mat.NewVecDense(len(tt.yTrue), tt.yTrue), mat.NewVecDense(len(tt.yPred), tt.yPred))
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-10)
		})
	}
}

func TestMSEShapeMismatch(t *testing.T) {
	_, err := MSE(mat.NewVecDense(3, []float64{1, 2, 3}), mat.NewVecDense(2, []float64{1, 2}))
	require.Error(t, err)

	var shapeErr *errors.ShapeMismatchError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, 3, shapeErr.Expected)
	assert.Equal(t, 2, shapeErr.Got)
}

func TestMSERejectsEmptyAndWide(t *testing.T) {
	_, err := MSE(&mat.Dense{}, &mat.Dense{})
	assert.Error(t, err)

	wide := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	_, err = MSE(wide, wide)
	assert.Error(t, err)
}

func TestRMSE(t *testing.T) {
	got, err := RMSE(mat.NewVecDense(3, []float64{10, 20, 30}), mat.NewVecDense(3, []float64{12, 18, 33}))
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(17.0/3.0), got, 1e-10)
}

func TestMAE(t *testing.T) {
	got, err := MAE(mat.NewVecDense(4, []float64{1, 2, 3, 4}), mat.NewVecDense(4, []float64{2, 2, 1, 4}))
	require.NoError(t, err)
	assert.InDelta(t, 0.75, got, 1e-10)
}

func TestR2Score(t *testing.T) {
	yTrue := mat.NewDense(4, 1, []float64{1, 2, 3, 4})

	perfect, err := R2Score(yTrue, yTrue)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, perfect, 1e-12)

	meanOnly, err := R2Score(yTrue, mat.NewDense(4, 1, []float64{2.5, 2.5, 2.5, 2.5}))
	require.NoError(t, err)
	assert.InDelta(t, 0.0, meanOnly, 1e-12)

	_, err = R2Score(mat.NewDense(2, 1, []float64{1, 1}), mat.NewDense(2, 1, []float64{1, 2}))
	assert.Error(t, err)
}

func BenchmarkMSE(b *testing.B) {
	n := 10000
	yTrue := mat.NewVecDense(n, nil)
	yPred := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		yTrue.SetVec(i, float64(i))
		yPred.SetVec(i, float64(i)+0.5)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = MSE(yTrue, yPred)
	}
}
