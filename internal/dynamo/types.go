package dynamo

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Sum() float64 {
	return floats.Sum(s)
}

// Min returns the smallest component and its index, or (0, -1) for an empty state.
func (s State) Min() (float64, int) {
	if len(s) == 0 {
		return 0, -1
	}
	i := floats.MinIdx(s)
	return s[i], i
}

// System is an autonomous ODE right-hand side. t is passed through for
// interface symmetry with time-dependent systems and may be ignored.
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

// Jacobian is implemented by systems that can supply df/dx exactly.
// jac is StateDim x StateDim and is fully overwritten.
type Jacobian interface {
	Jacobian(x State, t float64, jac *mat.Dense)
}

// Named is implemented by systems whose state components carry labels.
type Named interface {
	Species() []string
}

type Tolerance struct {
	Rel float64 `yaml:"rtol" toml:"rtol" json:"rtol"`
	Abs float64 `yaml:"atol" toml:"atol" json:"atol"`
}

// Scale returns the error weight for a component whose magnitude is
// bounded by a and b.
func (tol Tolerance) Scale(a, b float64) float64 {
	return tol.Abs + tol.Rel*math.Max(math.Abs(a), math.Abs(b))
}

type Config struct {
	Tolerance Tolerance
	// InitialStep of zero selects a step from the starting derivative.
	InitialStep float64
	// MaxStep of zero means unbounded within the interval.
	MaxStep  float64
	MaxSteps int
}

func DefaultConfig() Config {
	return Config{
		Tolerance: Tolerance{Rel: 1e-6, Abs: 1e-12},
		MaxSteps:  500000,
	}
}

type Stats struct {
	Accepted       int `json:"accepted"`
	Rejected       int `json:"rejected"`
	Evaluations    int `json:"evaluations"`
	Jacobians      int `json:"jacobians"`
	Factorizations int `json:"factorizations"`
}

func (s *Stats) Add(o Stats) {
	s.Accepted += o.Accepted
	s.Rejected += o.Rejected
	s.Evaluations += o.Evaluations
	s.Jacobians += o.Jacobians
	s.Factorizations += o.Factorizations
}
