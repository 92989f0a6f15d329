package metrics

import (
	"math"

	"github.com/san-kum/autoxsim/internal/dynamo"
)

// Quantity is a scalar function of a state, e.g. a conserved pool.
type Quantity interface {
	Name() string
	Value(x dynamo.State) float64
}

type quantityFunc struct {
	name string
	fn   func(dynamo.State) float64
}

func (q quantityFunc) Name() string                 { return q.name }
func (q quantityFunc) Value(x dynamo.State) float64 { return q.fn(x) }

// NewQuantity wraps fn as a Quantity.
func NewQuantity(name string, fn func(dynamo.State) float64) Quantity {
	return quantityFunc{name: name, fn: fn}
}

// Balance is a quantity evaluated at the first and last sample.
type Balance struct {
	Name  string  `json:"name"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func (b Balance) Drift() float64 { return b.End - b.Start }

// RelDrift is |end-start|/|start|, or |end| when start is zero.
func (b Balance) RelDrift() float64 {
	if b.Start == 0 {
		return math.Abs(b.End)
	}
	return math.Abs(b.End-b.Start) / math.Abs(b.Start)
}

// Summary carries the two pools checked after every run.
type Summary struct {
	Total  Balance `json:"total_reactive"`
	Carbon Balance `json:"carbon_atoms"`
}

// Conservation evaluates total and carbon at the first and last sample.
// An empty trajectory yields a zero Summary.
func Conservation(traj *dynamo.Trajectory, total, carbon Quantity) Summary {
	s := Summary{
		Total:  Balance{Name: total.Name()},
		Carbon: Balance{Name: carbon.Name()},
	}
	if traj == nil || traj.Len() == 0 {
		return s
	}
	first, last := traj.First(), traj.Last()
	s.Total.Start, s.Total.End = total.Value(first), total.Value(last)
	s.Carbon.Start, s.Carbon.End = carbon.Value(first), carbon.Value(last)
	return s
}

// Drift tracks the largest relative deviation of a quantity from its
// value at the first observed sample.
type Drift struct {
	q        Quantity
	initial  float64
	maxDrift float64
	samples  int
}

func NewDrift(q Quantity) *Drift {
	return &Drift{q: q}
}

func (d *Drift) Name() string { return d.q.Name() + "_drift" }

func (d *Drift) Observe(x dynamo.State, t float64) {
	v := d.q.Value(x)
	if d.samples == 0 {
		d.initial = v
	}
	d.samples++

	drift := math.Abs(v - d.initial)
	if d.initial != 0 {
		drift /= math.Abs(d.initial)
	}
	d.maxDrift = math.Max(d.maxDrift, drift)
}

func (d *Drift) Value() float64 { return d.maxDrift }

func (d *Drift) Reset() {
	d.initial = 0
	d.maxDrift = 0
	d.samples = 0
}
