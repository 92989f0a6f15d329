package metrics

import (
	"math"

	"github.com/san-kum/autoxsim/internal/dynamo"
)

// Negativity is the fraction of samples whose smallest component is
// below -threshold. Concentrations cannot be negative, so anything
// above zero points at a loose tolerance or a vector-field defect.
type Negativity struct {
	threshold  float64
	violations int
	samples    int
}

func NewNegativity(threshold float64) *Negativity {
	return &Negativity{threshold: math.Abs(threshold)}
}

func (n *Negativity) Name() string { return "negativity" }

func (n *Negativity) Observe(x dynamo.State, t float64) {
	n.samples++
	if v, _ := x.Min(); v < -n.threshold {
		n.violations++
	}
}

func (n *Negativity) Value() float64 {
	if n.samples == 0 {
		return 0
	}
	return float64(n.violations) / float64(n.samples)
}

func (n *Negativity) Reset() {
	n.violations = 0
	n.samples = 0
}

// Extreme locates one sample component.
type Extreme struct {
	Value   float64 `json:"value"`
	Species string  `json:"species"`
	Time    float64 `json:"time"`
}

// MinConcentration finds the smallest concentration anywhere in traj.
func MinConcentration(traj *dynamo.Trajectory) Extreme {
	var ext Extreme
	if traj == nil || traj.Len() == 0 {
		return ext
	}
	species := traj.Species()
	found := false
	traj.Each(func(_ int, t float64, x dynamo.State) {
		v, idx := x.Min()
		if idx < 0 {
			return
		}
		if !found || v < ext.Value {
			ext = Extreme{Value: v, Time: t}
			if idx < len(species) {
				ext.Species = species[idx]
			}
			found = true
		}
	})
	return ext
}

// NonIncreasing reports whether component idx never rises by more than
// tol between consecutive samples.
func NonIncreasing(traj *dynamo.Trajectory, idx int, tol float64) bool {
	if traj == nil || traj.Len() < 2 {
		return true
	}
	series := traj.Series(idx)
	for i := 1; i < len(series); i++ {
		if series[i] > series[i-1]+tol {
			return false
		}
	}
	return true
}
