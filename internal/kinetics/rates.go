package kinetics

import (
	"math"

	"github.com/san-kum/autoxsim/internal/dynamo"
)

// RateConstants holds the eight rate constants of the mechanism.
// First-order constants are in 1/s, bimolecular ones in 1/(atm*s).
type RateConstants struct {
	K1 float64 `yaml:"k1" toml:"k1" json:"k1"` // RO2 -> ALD + OH
	K2 float64 `yaml:"k2" toml:"k2" json:"k2"` // RO2_OH -> RO2 + OH, VHP -> VO + OH
	K3 float64 `yaml:"k3" toml:"k3" json:"k3"` // RO2 + OH -> POZ
	K4 float64 `yaml:"k4" toml:"k4" json:"k4"` // RO22 -> POZ
	K5 float64 `yaml:"k5" toml:"k5" json:"k5"` // POZ -> VHP
	K6 float64 `yaml:"k6" toml:"k6" json:"k6"` // VO + O2 -> ALD + OH
	K7 float64 `yaml:"k7" toml:"k7" json:"k7"` // RO22 -> RO2 + RO2
	Kd float64 `yaml:"kd" toml:"kd" json:"kd"` // diffusion limited
}

// AtmosphereRates uses photolysis for the k2 channels.
func AtmosphereRates() RateConstants {
	r := baseRates()
	r.K2 = 1.0e-5
	return r
}

// CellsRates uses Fenton-type chemistry for the k2 channels.
func CellsRates() RateConstants {
	r := baseRates()
	r.K2 = 1.0e-3
	return r
}

func baseRates() RateConstants {
	return RateConstants{
		K1: 3.14e-4,
		K3: 2.16e5,
		K4: 6.27e1,
		K5: 6.53e-2,
		K6: 1.79e-3,
		K7: 1e8,
		Kd: 1.0e9,
	}
}

// Map returns the constants keyed by their symbol.
func (r RateConstants) Map() map[string]float64 {
	return map[string]float64{
		"k1": r.K1, "k2": r.K2, "k3": r.K3, "k4": r.K4,
		"k5": r.K5, "k6": r.K6, "k7": r.K7, "kd": r.Kd,
	}
}

func (r RateConstants) Validate() error {
	for name, v := range r.Map() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return dynamo.Configf("rates."+name, "must be finite, got %g", v)
		}
		if v < 0 {
			return dynamo.Configf("rates."+name, "must be non-negative, got %g", v)
		}
	}
	if r.Kd+r.K3 <= 0 {
		return dynamo.Configf("rates", "kd and k3 are both zero, branching fractions undefined")
	}
	return nil
}

// BranchingFractions splits the RO2 + OH channel: f1 towards RO2_OH and
// f2 towards POZ. f1+f2 == 1.
func BranchingFractions(r RateConstants) (f1, f2 float64, err error) {
	kfr := r.Kd + r.K3
	if kfr <= 0 {
		return 0, 0, dynamo.Configf("rates", "kd and k3 are both zero, branching fractions undefined")
	}
	f1 = r.Kd / kfr
	f2 = r.K3 / kfr
	return f1, f2, nil
}

// Set assigns one constant by symbol (k1..k7, kd).
func (r *RateConstants) Set(name string, v float64) error {
	switch name {
	case "k1":
		r.K1 = v
	case "k2":
		r.K2 = v
	case "k3":
		r.K3 = v
	case "k4":
		r.K4 = v
	case "k5":
		r.K5 = v
	case "k6":
		r.K6 = v
	case "k7":
		r.K7 = v
	case "kd":
		r.Kd = v
	default:
		return dynamo.Configf("rates", "unknown rate constant %q", name)
	}
	return nil
}
