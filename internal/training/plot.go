package training

import (
	"fmt"
	. "github.com/janpfeifer/tictactoeGo/internal/state"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// SaveLearningCurve plots the moving average of wins and draws over the episodes, and saves it to
// the given path. The format is taken from the file extension (e.g. ".png", ".svg").
func SaveLearningCurve(path string, results *Results) error {
	if results == nil || len(results.Curve) == 0 {
		return errors.Errorf("no results to plot in %q", path)
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Self-play outcomes (%d episodes)", results.NumEpisodes)
	p.X.Label.Text = "Episode"
	p.Y.Label.Text = "Moving average"
	p.Y.Min, p.Y.Max = 0, 1
	p.Legend.Top = true

	names := []string{fmt.Sprintf("%s wins", PlayerOne), fmt.Sprintf("%s wins", PlayerTwo), "Draws"}
	for i, name := range names {
		points := make(plotter.XYs, len(results.Curve))
		for j, point := range results.Curve {
			points[j] = plotter.XY{
				X: float64(point.Episode),
				Y: point.Stats[i],
			}
		}
		line, err := plotter.NewLine(points)
		if err != nil {
			return errors.Wrapf(err, "failed to create line %q for the learning curve", name)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(name, line)
	}
	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "failed to save learning curve to %q", path)
	}
	return nil
}
