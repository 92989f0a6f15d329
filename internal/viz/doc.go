// Package viz renders finished runs. Nothing here feeds back into the
// integration.
//
//   - [Chart]: time-series chart written as PNG, PDF or SVG via gonum/plot
//   - [ASCII]: asciigraph terminal plots, one per species
//   - [RenderReport]: conservation summary styled with lipgloss
//   - [RunViewer]: Bubble Tea viewer that pages through species
//
// # Key Bindings
//
//	h/l, ←/→ - previous/next species
//	a        - toggle all species on one chart
//	q        - quit
package viz
