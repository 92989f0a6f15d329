package viz

import (
	"image/color"

	"github.com/charmbracelet/lipgloss"
)

var (
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(1, 2)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899"))

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	Good = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ff88"))

	Warn = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#ffaa00"))

	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)
)

// lineStyle is how one species is drawn on a chart.
type lineStyle struct {
	color  color.NRGBA
	dashed bool
}

var speciesStyles = map[string]lineStyle{
	"R":      {color: nrgba(0, 0, 255)},
	"OH":     {color: nrgba(0, 0, 0), dashed: true},
	"ROH":    {color: nrgba(0, 128, 0)},
	"O2":     {color: nrgba(255, 192, 203)},
	"RO2":    {color: nrgba(128, 0, 128)},
	"RO22":   {color: nrgba(255, 165, 0)},
	"ALD":    {color: nrgba(255, 0, 0)},
	"RO2_OH": {color: nrgba(0, 0, 255), dashed: true},
	"POZ":    {color: nrgba(165, 42, 42)},
	"VHP":    {color: nrgba(128, 128, 128)},
	"VO":     {color: nrgba(0, 0, 0)},
}

func nrgba(r, g, b uint8) color.NRGBA {
	return color.NRGBA{R: r, G: g, B: b, A: 204}
}

func styleFor(name string, i int) lineStyle {
	if s, ok := speciesStyles[name]; ok {
		return s
	}
	fallback := []color.NRGBA{nrgba(31, 119, 180), nrgba(255, 127, 14), nrgba(44, 160, 44), nrgba(214, 39, 40)}
	return lineStyle{color: fallback[i%len(fallback)]}
}
