package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type viewer struct {
	chart         Chart
	cursor        int
	all           bool
	width, height int
}

func NewViewer(c Chart) *viewer {
	return &viewer{chart: c, width: 80, height: 24}
}

func (m viewer) Init() tea.Cmd { return nil }

func (m viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	}
	return m, nil
}

func (m viewer) handleKey(msg tea.KeyMsg) (viewer, tea.Cmd) {
	n := len(m.chart.Series)
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "l", "right", "j", "down":
		if n > 0 {
			m.cursor = (m.cursor + 1) % n
		}
	case "h", "left", "k", "up":
		if n > 0 {
			m.cursor = (m.cursor - 1 + n) % n
		}
	case "a":
		m.all = !m.all
	}
	return m, nil
}

func (m viewer) View() string {
	if len(m.chart.Series) == 0 {
		return Subtle.Render("no series to show") + "\n"
	}
	w := max(m.width-14, 20)
	h := max(m.height-8, 5)

	var b strings.Builder
	title := m.chart.Title
	if title == "" {
		title = "trajectory"
	}
	b.WriteString(Title.Render(title) + "  " + Subtle.Render(fmt.Sprintf("%d/%d", m.cursor+1, len(m.chart.Series))) + "\n\n")
	if m.all {
		b.WriteString(plotAll(m.chart, w, h))
	} else {
		b.WriteString(plotSeries(m.chart, m.chart.Series[m.cursor], w, h))
	}
	b.WriteString("\n\n" + KeyHint.Render("h/l species  a all  q quit") + "\n")
	return b.String()
}

// RunViewer blocks until the user quits.
func RunViewer(c Chart) error {
	_, err := tea.NewProgram(NewViewer(c), tea.WithAltScreen()).Run()
	return err
}
