// Package metrics computes diagnostics over a finished trajectory. None
// of them modify the trajectory.
package metrics

import "github.com/san-kum/autoxsim/internal/dynamo"

// Metric observes samples in time order and condenses them into one value.
type Metric interface {
	Name() string
	Observe(x dynamo.State, t float64)
	Value() float64
	Reset()
}

// Apply resets each metric, replays the trajectory through it and
// returns the values keyed by name.
func Apply(traj *dynamo.Trajectory, ms ...Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
	}
	traj.Each(func(_ int, t float64, x dynamo.State) {
		for _, m := range ms {
			m.Observe(x, t)
		}
	})
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
