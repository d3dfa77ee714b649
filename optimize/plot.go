package optimize

import (
	"image/color"
	"os"
	"path/filepath"

	"github.com/YuminosukeSato/forestopt/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ConvergencePlot builds a plot of every evaluation (points) and the best
// score so far (line), both in the user's polarity.
func ConvergencePlot(res *Result) (*plot.Plot, error) {
	evals := res.Iterations()
	if len(evals) == 0 {
		return nil, errors.WithStack(errors.ErrEmptyData)
	}

	sign := res.Direction.Sign()
	points := make(plotter.XYs, len(evals))
	for i, e := range evals {
		points[i] = plotter.XY{X: float64(i + 1), Y: e.Score}
	}
	conv := res.Convergence()
	best := make(plotter.XYs, len(conv))
	for i, v := range conv {
		best[i] = plotter.XY{X: float64(i + 1), Y: v * sign}
	}

	p := plot.New()
	p.Title.Text = "Convergence plot"
	p.X.Label.Text = "Number of calls n"
	if res.Direction == Maximize {
		p.Y.Label.Text = "max f(x) after n calls"
	} else {
		p.Y.Label.Text = "min f(x) after n calls"
	}
	p.Add(plotter.NewGrid())

	sc, err := plotter.NewScatter(points)
	if err != nil {
		return nil, errors.Wrap(err, "failed to plot evaluations")
	}
	sc.GlyphStyle.Color = color.RGBA{R: 120, G: 120, B: 120, A: 180}
	sc.GlyphStyle.Radius = vg.Points(2)
	p.Add(sc)
	p.Legend.Add("evaluations", sc)

	line, err := plotter.NewLine(best)
	if err != nil {
		return nil, errors.Wrap(err, "failed to plot best score")
	}
	line.Color = color.RGBA{R: 20, G: 80, B: 200, A: 255}
	line.Width = vg.Points(1.5)
	p.Add(line)
	p.Legend.Add("best so far", line)

	return p, nil
}

// PlotConvergence writes the convergence plot to path. The image format
// follows the file extension (.png, .svg, .pdf, ...).
func PlotConvergence(res *Result, path string) error {
	p, err := ConvergencePlot(res)
	if err != nil {
		return err
	}
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create plot directory")
	}
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "failed to save plot %s", path)
	}
	return nil
}
