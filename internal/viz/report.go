package viz

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/san-kum/autoxsim/internal/dynamo"
	"github.com/san-kum/autoxsim/internal/metrics"
)

// ReportData is the reporting hand-off for one run.
type ReportData struct {
	Title   string
	Summary metrics.Summary
	Minimum metrics.Extreme
	Metrics map[string]float64
	Stats   dynamo.Stats
	Elapsed time.Duration
	// Branching holds f1 and f2 of the RO2 + OH channel; zero hides the row.
	Branching [2]float64
	// Oxygen is nil when O2 is a fixed reservoir.
	OxygenNonIncreasing *bool
}

// SummaryLines are the plain conservation lines, one per quantity and end.
func SummaryLines(s metrics.Summary) []string {
	return []string{
		fmt.Sprintf("Total reactive species (start): %g atm", s.Total.Start),
		fmt.Sprintf("Total reactive species (end): %g atm", s.Total.End),
		fmt.Sprintf("Total carbon atoms (start): %g atm-equivalent", s.Carbon.Start),
		fmt.Sprintf("Total carbon atoms (end): %g atm-equivalent", s.Carbon.End),
	}
}

func RenderReport(r ReportData) string {
	var b strings.Builder
	if r.Title != "" {
		b.WriteString(Title.Render(r.Title) + "\n\n")
	}

	row := func(label, value string) {
		b.WriteString(MetricLabel.Render(fmt.Sprintf("%-24s", label)) + " " + MetricValue.Render(value) + "\n")
	}

	for _, bal := range []metrics.Balance{r.Summary.Total, r.Summary.Carbon} {
		row(bal.Name+" start", fmt.Sprintf("%.6e", bal.Start))
		row(bal.Name+" end", fmt.Sprintf("%.6e", bal.End))
		row(bal.Name+" rel. drift", fmt.Sprintf("%.3e", bal.RelDrift()))
	}
	if r.Branching != [2]float64{} {
		row("RO2+OH branching", fmt.Sprintf("f1=%.6e f2=%.6e", r.Branching[0], r.Branching[1]))
	}
	b.WriteString("\n")

	minStyle := Good
	if r.Minimum.Value < 0 {
		minStyle = Warn
	}
	b.WriteString(MetricLabel.Render(fmt.Sprintf("%-24s", "min concentration")) + " " +
		minStyle.Render(fmt.Sprintf("%.3e (%s at t=%g)", r.Minimum.Value, r.Minimum.Species, r.Minimum.Time)) + "\n")

	if r.OxygenNonIncreasing != nil {
		status := Good.Render("non-increasing")
		if !*r.OxygenNonIncreasing {
			status = Warn.Render("rises")
		}
		b.WriteString(MetricLabel.Render(fmt.Sprintf("%-24s", "O2")) + " " + status + "\n")
	}

	names := make([]string, 0, len(r.Metrics))
	for name := range r.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		row(name, fmt.Sprintf("%.3e", r.Metrics[name]))
	}
	b.WriteString("\n")

	row("steps", fmt.Sprintf("%d accepted, %d rejected", r.Stats.Accepted, r.Stats.Rejected))
	row("evaluations", fmt.Sprintf("%d f, %d jacobian, %d lu", r.Stats.Evaluations, r.Stats.Jacobians, r.Stats.Factorizations))
	if r.Elapsed > 0 {
		row("elapsed", r.Elapsed.Round(time.Microsecond).String())
	}

	return Panel.Render(strings.TrimRight(b.String(), "\n"))
}
