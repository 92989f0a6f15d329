package kinetics

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/autoxsim/internal/dynamo"
)

func mustNetwork(t *testing.T, v Variant) *Network {
	t.Helper()
	rates := AtmosphereRates()
	if v == Cells {
		rates = CellsRates()
	}
	n, err := NewNetwork(v, rates, ReservoirO2)
	if err != nil {
		t.Fatalf("NewNetwork: %v", err)
	}
	return n
}

// busyState has every species nonzero so every term of f contributes.
func busyState(v Variant) dynamo.State {
	x := make(dynamo.State, v.Dim())
	for i := range x {
		x[i] = 1e-6 * float64(i+1)
	}
	if i := v.Index("O2"); i >= 0 {
		x[i] = 1e-2
	}
	return x
}

func TestBranchingFractions(t *testing.T) {
	for _, r := range []RateConstants{AtmosphereRates(), CellsRates(), {Kd: 0, K3: 5}, {Kd: 3, K3: 0}} {
		f1, f2, err := BranchingFractions(r)
		if err != nil {
			t.Fatalf("BranchingFractions(%+v): %v", r, err)
		}
		if f1 < 0 || f2 < 0 || math.Abs(f1+f2-1) > 1e-15 {
			t.Errorf("f1=%g f2=%g, want non-negative and summing to 1", f1, f2)
		}
	}

	r := AtmosphereRates()
	if _, f2, _ := BranchingFractions(r); f2 != r.K3/(r.Kd+r.K3) {
		t.Errorf("f2 = %g, want k3/kfr = %g", f2, r.K3/(r.Kd+r.K3))
	}

	_, _, err := BranchingFractions(RateConstants{})
	if !errors.Is(err, dynamo.ErrConfiguration) {
		t.Errorf("kd=k3=0: got %v, want configuration error", err)
	}
}

func TestRatesValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RateConstants)
		wantErr bool
	}{
		{"atmosphere", func(*RateConstants) {}, false},
		{"negative k4", func(r *RateConstants) { r.K4 = -1 }, true},
		{"nan k1", func(r *RateConstants) { r.K1 = math.NaN() }, true},
		{"inf kd", func(r *RateConstants) { r.Kd = math.Inf(1) }, true},
		{"no branching", func(r *RateConstants) { r.Kd, r.K3 = 0, 0 }, true},
		{"zero k2", func(r *RateConstants) { r.K2 = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := AtmosphereRates()
			tt.mutate(&r)
			err := r.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, dynamo.ErrConfiguration) {
				t.Errorf("error %v is not a configuration error", err)
			}
		})
	}
}

func TestRatesSet(t *testing.T) {
	r := CellsRates()
	if err := r.Set("k6", 2); err != nil {
		t.Fatal(err)
	}
	if r.K6 != 2 || r.Map()["k6"] != 2 {
		t.Errorf("K6 = %g after Set", r.K6)
	}
	if err := r.Set("k9", 1); !errors.Is(err, dynamo.ErrConfiguration) {
		t.Errorf("Set(k9) = %v, want configuration error", err)
	}
}

func TestVariantsDoNotShareK2(t *testing.T) {
	if AtmosphereRates().K2 == CellsRates().K2 {
		t.Fatal("atmosphere and cells must use different k2")
	}
	a, c := AtmosphereRates(), CellsRates()
	a.K2, c.K2 = 0, 0
	if a != c {
		t.Errorf("variants differ beyond k2: %+v vs %+v", a, c)
	}
}

func TestParseVariant(t *testing.T) {
	for in, want := range map[string]Variant{"atmosphere": Atmosphere, "ATM": Atmosphere, " cells ": Cells, "cell": Cells} {
		got, err := ParseVariant(in)
		if err != nil || got != want {
			t.Errorf("ParseVariant(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseVariant("ocean"); !errors.Is(err, dynamo.ErrConfiguration) {
		t.Errorf("ParseVariant(ocean) = %v", err)
	}
}

func TestSpeciesLayout(t *testing.T) {
	if Atmosphere.Dim() != 10 || Cells.Dim() != 11 {
		t.Fatalf("dims = %d, %d", Atmosphere.Dim(), Cells.Dim())
	}
	if Atmosphere.Index("O2") != -1 {
		t.Error("atmosphere must not track O2")
	}
	if Cells.Index("O2") != 3 {
		t.Errorf("cells O2 index = %d", Cells.Index("O2"))
	}
	if Label("RO22") != "RO2 dimer" || Label("ALD") != "ALD" {
		t.Errorf("labels: %q %q", Label("RO22"), Label("ALD"))
	}
}

func TestInitialState(t *testing.T) {
	x, err := InitialState(Cells, CellsInitial())
	if err != nil {
		t.Fatal(err)
	}
	if x[Cells.Index("O2")] != 1e-2 || x[Cells.Index("R")] != 1e-4 || x[Cells.Index("OH")] != 1e-10 {
		t.Errorf("cells initial state = %v", x)
	}
	if x[Cells.Index("ALD")] != 0 {
		t.Errorf("unlisted species must start at zero")
	}

	for _, bad := range []map[string]float64{
		{"O2": 0.2},
		{"R": -1},
		{"OH": math.NaN()},
	} {
		if _, err := InitialState(Atmosphere, bad); !errors.Is(err, dynamo.ErrConfiguration) {
			t.Errorf("InitialState(%v) = %v, want configuration error", bad, err)
		}
	}
}

func TestDeriveAtmosphereStart(t *testing.T) {
	n := mustNetwork(t, Atmosphere)
	x, _ := InitialState(Atmosphere, AtmosphereInitial())
	dx := n.Derive(x, 0)

	r := 4.05e-12
	want := AtmosphereRates().Kd * r * r
	if got := dx[Atmosphere.Index("R")]; math.Abs(got+want) > 1e-12*want {
		t.Errorf("dR/dt = %g, want %g", got, -want)
	}
	if got := dx[Atmosphere.Index("ROH")]; math.Abs(got-want) > 1e-12*want {
		t.Errorf("dROH/dt = %g, want %g", got, want)
	}
	for _, s := range []string{"RO2", "RO22", "ALD", "POZ", "VHP", "VO", "RO2_OH"} {
		if dx[Atmosphere.Index(s)] != 0 {
			t.Errorf("d%s/dt = %g, want 0", s, dx[Atmosphere.Index(s)])
		}
	}
}

func TestDeriveUsesReservoir(t *testing.T) {
	r := AtmosphereRates()
	lo, _ := NewNetwork(Atmosphere, r, 0.1)
	hi, _ := NewNetwork(Atmosphere, r, 0.2)
	x := busyState(Atmosphere)

	i := Atmosphere.Index("ROH")
	dlo, dhi := lo.Derive(x, 0)[i], hi.Derive(x, 0)[i]
	// dROH/dt = kd*R*OH - kd*ROH*O2
	prod := r.Kd * x[Atmosphere.Index("R")] * x[Atmosphere.Index("OH")]
	if math.Abs((prod-dhi)-2*(prod-dlo)) > 1e-9*math.Abs(prod-dhi) {
		t.Errorf("ROH loss does not scale with reservoir O2: %g vs %g", prod-dlo, prod-dhi)
	}
}

func TestDeriveToMatchesDerive(t *testing.T) {
	n := mustNetwork(t, Cells)
	x := busyState(Cells)
	dst := make(dynamo.State, len(x))
	n.DeriveTo(dst, x)
	want := n.Derive(x, 0)
	for i := range dst {
		if dst[i] != want[i] {
			t.Fatalf("component %d: %g != %g", i, dst[i], want[i])
		}
	}
}

func TestFixedPointWithoutReactants(t *testing.T) {
	n := mustNetwork(t, Cells)
	x, _ := InitialState(Cells, map[string]float64{"O2": 1e-2})
	for i, v := range n.Derive(x, 0) {
		if v != 0 {
			t.Errorf("component %s: derivative %g, want exactly 0", Cells.Species()[i], v)
		}
	}
}

func TestJacobianMatchesFiniteDifferences(t *testing.T) {
	for _, v := range []Variant{Atmosphere, Cells} {
		t.Run(v.String(), func(t *testing.T) {
			n := mustNetwork(t, v)
			x := busyState(v)
			dim := v.Dim()

			jac := mat.NewDense(dim, dim, nil)
			n.Jacobian(x, 0, jac)

			// f is at most quadratic, so central differences are exact up
			// to rounding; noise bounds that rounding per row.
			noise := make([]float64, dim)
			for i := 0; i < dim; i++ {
				for k := 0; k < dim; k++ {
					noise[i] += math.Abs(jac.At(i, k)) * x[k]
				}
				noise[i] *= 1e-14
			}

			for j := 0; j < dim; j++ {
				h := 0.1 * x[j]
				xp, xm := x.Clone(), x.Clone()
				xp[j] += h
				xm[j] -= h
				fp, fm := n.Derive(xp, 0), n.Derive(xm, 0)
				for i := 0; i < dim; i++ {
					fd := (fp[i] - fm[i]) / (2 * h)
					got := jac.At(i, j)
					if math.Abs(fd-got) > 1e-8*math.Abs(got)+noise[i]/h {
						t.Errorf("J[%s][%s] = %g, finite difference %g", v.Species()[i], v.Species()[j], got, fd)
					}
				}
			}
		})
	}
}

func TestCarbonAndTotal(t *testing.T) {
	n := mustNetwork(t, Cells)
	x := make(dynamo.State, Cells.Dim())
	x[Cells.Index("O2")] = 5
	x[Cells.Index("OH")] = 1
	x[Cells.Index("RO22")] = 2
	x[Cells.Index("ALD")] = 3

	if got := n.TotalReactive(x); got != 6 {
		t.Errorf("TotalReactive = %g, want 6 (O2 excluded)", got)
	}
	if got := n.CarbonAtoms(x); got != 7 {
		t.Errorf("CarbonAtoms = %g, want 7 (dimer counts twice, OH none)", got)
	}

	a := mustNetwork(t, Atmosphere)
	x0, _ := InitialState(Atmosphere, AtmosphereInitial())
	if got := a.TotalReactive(x0); math.Abs(got-8.1e-12) > 1e-25 {
		t.Errorf("atmosphere total at start = %g, want 8.1e-12", got)
	}
}

func TestNewNetworkRejects(t *testing.T) {
	if _, err := NewNetwork(Atmosphere, AtmosphereRates(), -0.2); !errors.Is(err, dynamo.ErrConfiguration) {
		t.Errorf("negative reservoir: %v", err)
	}
	if _, err := NewNetwork(Variant(7), AtmosphereRates(), 0.2); !errors.Is(err, dynamo.ErrConfiguration) {
		t.Errorf("unknown variant: %v", err)
	}
	if _, err := NewNetwork(Cells, CellsRates(), -1); err != nil {
		t.Errorf("cells ignores the reservoir, got %v", err)
	}
}
