package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/autoxsim/internal/kinetics"
)

// ASCII renders one terminal plot per series.
func ASCII(c Chart, width, height int) string {
	var b strings.Builder
	for _, s := range c.Series {
		b.WriteString(plotSeries(c, s, width, height))
		b.WriteString("\n\n")
	}
	return b.String()
}

func plotSeries(c Chart, s Series, width, height int) string {
	if len(s.Values) == 0 {
		return ""
	}
	caption := fmt.Sprintf("%s vs time (%s .. %s)", kinetics.Label(s.Name), fmtTime(c.Times[0]), fmtTime(c.Times[len(c.Times)-1]))
	return asciigraph.Plot(s.Values,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(3),
		asciigraph.Caption(caption),
	)
}

// plotAll overlays every series; values are left unscaled so species
// with tiny concentrations hug the axis.
func plotAll(c Chart, width, height int) string {
	data := make([][]float64, 0, len(c.Series))
	names := make([]string, 0, len(c.Series))
	for _, s := range c.Series {
		data = append(data, s.Values)
		names = append(names, kinetics.Label(s.Name))
	}
	if len(data) == 0 {
		return ""
	}
	return asciigraph.PlotMany(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(3),
		asciigraph.SeriesColors(seriesColors(len(data))...),
		asciigraph.SeriesLegends(names...),
		asciigraph.Caption("all species"),
	)
}

func seriesColors(n int) []asciigraph.AnsiColor {
	palette := []asciigraph.AnsiColor{
		asciigraph.Blue, asciigraph.White, asciigraph.Green, asciigraph.Pink,
		asciigraph.Purple, asciigraph.Orange, asciigraph.Red, asciigraph.Cyan,
		asciigraph.Brown, asciigraph.Gray, asciigraph.Yellow,
	}
	out := make([]asciigraph.AnsiColor, n)
	for i := range out {
		out[i] = palette[i%len(palette)]
	}
	return out
}

func fmtTime(t float64) string {
	return fmt.Sprintf("%gs", t)
}
