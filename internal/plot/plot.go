// Package plot renders simulation results to PNG figures.
package plot

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/jmkerr/odelab/internal/chaos"
	"github.com/jmkerr/odelab/internal/dynamics"
)

const (
	widthIn  = 8.0
	heightIn = 6.0
)

func style(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.TextStyle.Font.Size = vg.Points(13)
	p.Y.Label.TextStyle.Font.Size = vg.Points(13)
	p.X.Tick.Label.Font.Size = vg.Points(11)
	p.Y.Tick.Label.Font.Size = vg.Points(11)
	p.Add(plotter.NewGrid())
}

// finitePoints pairs xs with ys, dropping samples where either value is
// not finite so a failed tail of a run does not blank the whole figure.
func finitePoints(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, 0, len(xs))
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsInf(xs[i], 0) || math.IsNaN(ys[i]) || math.IsInf(ys[i], 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: xs[i], Y: ys[i]})
	}
	return pts
}

func addLine(p *plot.Plot, name string, xs, ys []float64) error {
	pts := finitePoints(xs, ys)
	if len(pts) == 0 {
		return fmt.Errorf("plot: no finite samples for %s", name)
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(1.5)
	p.Add(line)
	if name != "" {
		p.Legend.Add(name, line)
	}
	return nil
}

// TimeSeries plots the selected state components against time.
func TimeSeries(path, title string, tr *dynamics.Trajectory, labels map[int]string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "t"
	style(p)

	components := tr.Components()
	for idx, label := range labels {
		if idx < 0 || idx >= len(components) {
			return fmt.Errorf("plot: component %d out of range", idx)
		}
		if err := addLine(p, label, tr.Times, components[idx]); err != nil {
			return err
		}
	}
	p.Legend.Top = true

	return p.Save(widthIn*vg.Inch, heightIn*vg.Inch, path)
}

// Orbit plots the planar paths of both bodies of a two-body trajectory.
func Orbit(path, title string, tr *dynamics.Trajectory) error {
	c := tr.Components()
	if len(c) != 8 {
		return fmt.Errorf("plot: orbit needs an 8-component trajectory, got %d", len(c))
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	style(p)

	if err := addLine(p, "body 1", c[0], c[2]); err != nil {
		return err
	}
	if err := addLine(p, "body 2", c[4], c[6]); err != nil {
		return err
	}
	p.Legend.Top = true

	return p.Save(widthIn*vg.Inch, heightIn*vg.Inch, path)
}

// Phase plots one state component against another.
func Phase(path, title, xLabel, yLabel string, tr *dynamics.Trajectory, xIdx, yIdx int) error {
	c := tr.Components()
	if xIdx < 0 || xIdx >= len(c) || yIdx < 0 || yIdx >= len(c) {
		return fmt.Errorf("plot: phase indices %d,%d out of range for %d components", xIdx, yIdx, len(c))
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	style(p)

	if err := addLine(p, "", c[xIdx], c[yIdx]); err != nil {
		return err
	}

	return p.Save(widthIn*vg.Inch, heightIn*vg.Inch, path)
}

// Divergence plots trajectory separation on a log scale, the natural
// view for exponential growth.
func Divergence(path, title string, d *chaos.Divergence) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "t"
	p.Y.Label.Text = "separation"
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	style(p)

	// Log scale rejects non-positive values.
	times := make([]float64, 0, len(d.Times))
	sep := make([]float64, 0, len(d.Separation))
	for i, s := range d.Separation {
		if s > 0 && !math.IsInf(s, 0) && !math.IsNaN(s) {
			times = append(times, d.Times[i])
			sep = append(sep, s)
		}
	}

	if err := addLine(p, "", times, sep); err != nil {
		return err
	}

	return p.Save(widthIn*vg.Inch, heightIn*vg.Inch, path)
}
