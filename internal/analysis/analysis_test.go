package analysis

import (
	"errors"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/autoxsim/internal/dynamo"
	"github.com/san-kum/autoxsim/internal/kinetics"
)

// diagonal is x_i' = -rates_i * x_i.
type diagonal struct{ rates []float64 }

func (d diagonal) StateDim() int { return len(d.rates) }
func (d diagonal) Derive(x dynamo.State, t float64) dynamo.State {
	out := make(dynamo.State, len(x))
	for i := range x {
		out[i] = -d.rates[i] * x[i]
	}
	return out
}
func (d diagonal) Jacobian(x dynamo.State, t float64, jac *mat.Dense) {
	jac.Zero()
	for i, r := range d.rates {
		jac.Set(i, i, -r)
	}
}

func TestLocalStiffnessDiagonal(t *testing.T) {
	s, err := LocalStiffness(diagonal{rates: []float64{1, 1e6, 0}}, dynamo.State{1, 1, 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Eigenvalues) != 3 {
		t.Fatalf("eigenvalues = %v", s.Eigenvalues)
	}
	if real(s.Eigenvalues[0]) != -1e6 {
		t.Errorf("eigenvalues not sorted: %v", s.Eigenvalues)
	}
	if math.Abs(s.Ratio-1e6) > 1 || math.Abs(s.Fastest-1e-6) > 1e-18 || math.Abs(s.Slowest-1) > 1e-12 {
		t.Errorf("stiffness = %+v", s)
	}
}

func TestLocalStiffnessNoDecay(t *testing.T) {
	_, err := LocalStiffness(diagonal{rates: []float64{0, 0}}, dynamo.State{1, 1})
	if !errors.Is(err, ErrNoDecay) {
		t.Errorf("got %v, want ErrNoDecay", err)
	}
}

func TestAtmosphereIsStiff(t *testing.T) {
	n, err := kinetics.NewNetwork(kinetics.Atmosphere, kinetics.AtmosphereRates(), kinetics.ReservoirO2)
	if err != nil {
		t.Fatal(err)
	}
	x0, _ := kinetics.InitialState(kinetics.Atmosphere, kinetics.AtmosphereInitial())

	s, err := LocalStiffness(n, x0)
	if err != nil {
		t.Fatal(err)
	}
	if s.Ratio < 1e6 {
		t.Errorf("stiffness ratio = %g, want a stiff system", s.Ratio)
	}
	// ROH + O2 sets the fastest timescale, 1/(kd*O2) = 5e-9 s.
	if s.Fastest > 1e-8 {
		t.Errorf("fastest timescale = %g s", s.Fastest)
	}
}

func TestPhasePortrait(t *testing.T) {
	traj := dynamo.NewTrajectory(
		[]float64{0, 1, 2},
		[]dynamo.State{{1, 0, 5}, {0.5, 0.5, 5}, {0, 1, 5}},
		[]string{"R", "ALD", "O2"},
		dynamo.Stats{},
	)

	p, err := NewPhasePortrait(traj, "R", "ALD")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Points) != 3 || p.Points[2].X != 0 || p.Points[2].Y != 1 {
		t.Errorf("points = %v", p.Points)
	}

	out := PhasePortraitToASCII(p, 20, 10)
	if strings.Count(out, "•") != 3 {
		t.Errorf("expected 3 points:\n%s", out)
	}
	if !strings.Contains(out, "ALD [0, 1]") || !strings.Contains(out, "R [0, 1]") {
		t.Errorf("missing axis labels:\n%s", out)
	}

	if _, err := NewPhasePortrait(traj, "R", "VO"); err == nil {
		t.Error("expected error for unknown species")
	}
	if PhasePortraitToASCII(nil, 20, 10) != "" {
		t.Error("nil portrait should render empty")
	}
}
