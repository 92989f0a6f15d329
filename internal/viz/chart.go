package viz

import (
	"fmt"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/autoxsim/internal/dynamo"
	"github.com/san-kum/autoxsim/internal/kinetics"
)

const (
	figWidth  = 8 * vg.Inch
	figHeight = 6 * vg.Inch
)

var chartFormats = map[string]bool{".png": true, ".pdf": true, ".svg": true, ".eps": true, ".jpg": true, ".jpeg": true, ".tif": true, ".tiff": true}

type Series struct {
	Name   string
	Values []float64
}

// Chart is the plotting hand-off: a shared time axis, named series and
// axis labels.
type Chart struct {
	Title  string
	XLabel string
	YLabel string
	Times  []float64
	Series []Series
}

// ChartFromTrajectory selects species from traj; nil species means all.
func ChartFromTrajectory(traj *dynamo.Trajectory, species []string, xlabel, ylabel string) (Chart, error) {
	names := traj.Species()
	if species == nil {
		species = names
	}
	index := make(map[string]int, len(names))
	for i, n := range names {
		index[n] = i
	}

	c := Chart{XLabel: xlabel, YLabel: ylabel, Times: traj.Times()}
	for _, s := range species {
		i, ok := index[s]
		if !ok {
			return Chart{}, fmt.Errorf("species %q not in trajectory (have %v)", s, names)
		}
		c.Series = append(c.Series, Series{Name: s, Values: traj.Series(i)})
	}
	return c, nil
}

func (c Chart) build() (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	for i, s := range c.Series {
		if len(s.Values) != len(c.Times) {
			return nil, fmt.Errorf("series %s has %d values for %d times", s.Name, len(s.Values), len(c.Times))
		}
		pts := make(plotter.XYs, len(c.Times))
		for j := range c.Times {
			pts[j].X = c.Times[j]
			pts[j].Y = s.Values[j]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", s.Name, err)
		}
		style := styleFor(s.Name, i)
		line.Color = style.color
		line.Width = vg.Points(1.5)
		if style.dashed {
			line.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
		}
		p.Add(line)
		p.Legend.Add(kinetics.Label(s.Name), line)
	}
	return p, nil
}

// Save draws the chart once per path. The extension picks the format:
// .png for raster, .pdf or .svg for vector output.
func (c Chart) Save(paths ...string) error {
	for _, path := range paths {
		ext := strings.ToLower(filepath.Ext(path))
		if !chartFormats[ext] {
			return fmt.Errorf("unsupported chart format %q for %s", ext, path)
		}
	}
	p, err := c.build()
	if err != nil {
		return err
	}
	for _, path := range paths {
		if err := p.Save(figWidth, figHeight, path); err != nil {
			return fmt.Errorf("save %s: %w", path, err)
		}
	}
	return nil
}
