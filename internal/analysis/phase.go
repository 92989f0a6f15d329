package analysis

import (
	"fmt"
	"strings"

	"github.com/san-kum/autoxsim/internal/dynamo"
)

// PhasePortrait2D holds two species of a trajectory plotted against each other.
type PhasePortrait2D struct {
	XName, YName string
	Points       []struct{ X, Y float64 }
}

// NewPhasePortrait pairs species x and y over every sample of traj.
func NewPhasePortrait(traj *dynamo.Trajectory, x, y string) (*PhasePortrait2D, error) {
	xIdx, yIdx := -1, -1
	for i, name := range traj.Species() {
		if name == x {
			xIdx = i
		}
		if name == y {
			yIdx = i
		}
	}
	if xIdx < 0 || yIdx < 0 {
		return nil, fmt.Errorf("phase portrait: unknown species %q or %q", x, y)
	}

	portrait := &PhasePortrait2D{
		XName:  x,
		YName:  y,
		Points: make([]struct{ X, Y float64 }, 0, traj.Len()),
	}
	traj.Each(func(_ int, _ float64, s dynamo.State) {
		portrait.Points = append(portrait.Points, struct{ X, Y float64 }{X: s[xIdx], Y: s[yIdx]})
	})
	return portrait, nil
}

// PhasePortraitToASCII converts phase portrait to ASCII art
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	// Find bounds
	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y

	for _, p := range portrait.Points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))

		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%.3g, %.3g]\n", portrait.YName, minY, maxY)
	for _, row := range canvas {
		sb.WriteRune('│')
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	sb.WriteString("└" + strings.Repeat("─", width) + "\n")
	fmt.Fprintf(&sb, " %s [%.3g, %.3g]\n", portrait.XName, minX, maxX)
	return sb.String()
}
