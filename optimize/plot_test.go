package optimize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/YuminosukeSato/forestopt/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlotConvergence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plots", "convergence.png")
	require.NoError(t, PlotConvergence(sampleResult(), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestConvergencePlotLabels(t *testing.T) {
	p, err := ConvergencePlot(sampleResult())
	require.NoError(t, err)
	assert.Equal(t, "max f(x) after n calls", p.Y.Label.Text)
}

func TestPlotConvergenceEmpty(t *testing.T) {
	err := PlotConvergence(NewResult([]string{"x"}, Minimize), filepath.Join(t.TempDir(), "c.png"))
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
}
