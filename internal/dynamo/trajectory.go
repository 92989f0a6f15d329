package dynamo

// Trajectory is a sampled solution. It is built once by the solver and
// only read afterwards; the accessors copy.
type Trajectory struct {
	times   []float64
	states  []State
	species []string
	stats   Stats
}

func NewTrajectory(times []float64, states []State, species []string, stats Stats) *Trajectory {
	t := &Trajectory{
		times:   append([]float64(nil), times...),
		states:  make([]State, len(states)),
		species: append([]string(nil), species...),
		stats:   stats,
	}
	for i, s := range states {
		t.states[i] = s.Clone()
	}
	return t
}

func (t *Trajectory) Len() int { return len(t.times) }

func (t *Trajectory) Time(i int) float64 { return t.times[i] }

func (t *Trajectory) State(i int) State { return t.states[i].Clone() }

func (t *Trajectory) First() State { return t.State(0) }

func (t *Trajectory) Last() State { return t.State(t.Len() - 1) }

func (t *Trajectory) Times() []float64 { return append([]float64(nil), t.times...) }

func (t *Trajectory) Species() []string { return append([]string(nil), t.species...) }

func (t *Trajectory) Stats() Stats { return t.stats }

// Series returns component idx over all samples.
func (t *Trajectory) Series(idx int) []float64 {
	out := make([]float64, len(t.states))
	for i, s := range t.states {
		out[i] = s[idx]
	}
	return out
}

// Each visits samples in order without copying; fn must not retain or
// modify x.
func (t *Trajectory) Each(fn func(i int, time float64, x State)) {
	for i := range t.times {
		fn(i, t.times[i], t.states[i])
	}
}
