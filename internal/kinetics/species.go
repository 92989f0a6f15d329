package kinetics

import (
	"fmt"
	"strings"

	"github.com/san-kum/autoxsim/internal/dynamo"
)

type Variant int

const (
	Atmosphere Variant = iota
	Cells
)

// ReservoirO2 is the fixed O2 partial pressure of the atmosphere variant, in atm.
const ReservoirO2 = 0.2

var (
	atmosphereSpecies = []string{"R", "OH", "ROH", "RO2", "RO22", "ALD", "RO2_OH", "POZ", "VHP", "VO"}
	cellsSpecies      = []string{"R", "OH", "ROH", "O2", "RO2", "RO22", "ALD", "RO2_OH", "POZ", "VHP", "VO"}
)

var labels = map[string]string{
	"RO22": "RO2 dimer",
}

func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "atmosphere", "atm":
		return Atmosphere, nil
	case "cells", "cell":
		return Cells, nil
	}
	return 0, dynamo.Configf("variant", "unknown variant %q (want atmosphere or cells)", s)
}

func (v Variant) String() string {
	switch v {
	case Atmosphere:
		return "atmosphere"
	case Cells:
		return "cells"
	}
	return fmt.Sprintf("variant(%d)", int(v))
}

// DynamicOxygen reports whether O2 is part of the state vector.
func (v Variant) DynamicOxygen() bool { return v == Cells }

func (v Variant) Species() []string {
	if v.DynamicOxygen() {
		return append([]string(nil), cellsSpecies...)
	}
	return append([]string(nil), atmosphereSpecies...)
}

func (v Variant) Dim() int {
	if v.DynamicOxygen() {
		return len(cellsSpecies)
	}
	return len(atmosphereSpecies)
}

// Index returns the state position of a species, or -1 if the variant
// does not track it.
func (v Variant) Index(name string) int {
	names := atmosphereSpecies
	if v.DynamicOxygen() {
		names = cellsSpecies
	}
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

// Label is the display name used on plots and reports.
func Label(name string) string {
	if l, ok := labels[name]; ok {
		return l
	}
	return name
}

// indices of each species in the state vector; o2 is -1 when O2 is a reservoir.
type indices struct {
	r, oh, roh, o2, ro2, ro22, ald, ro2oh, poz, vhp, vo int
}

func indicesFor(v Variant) indices {
	return indices{
		r:     v.Index("R"),
		oh:    v.Index("OH"),
		roh:   v.Index("ROH"),
		o2:    v.Index("O2"),
		ro2:   v.Index("RO2"),
		ro22:  v.Index("RO22"),
		ald:   v.Index("ALD"),
		ro2oh: v.Index("RO2_OH"),
		poz:   v.Index("POZ"),
		vhp:   v.Index("VHP"),
		vo:    v.Index("VO"),
	}
}

// InitialState builds a state vector from named concentrations; species
// not listed start at zero.
func InitialState(v Variant, conc map[string]float64) (dynamo.State, error) {
	x := make(dynamo.State, v.Dim())
	for name, val := range conc {
		i := v.Index(name)
		if i < 0 {
			return nil, dynamo.Configf("initial."+name, "species not tracked by the %s variant", v)
		}
		if val < 0 || val != val {
			return nil, dynamo.Configf("initial."+name, "concentration must be non-negative, got %g", val)
		}
		x[i] = val
	}
	return x, nil
}

// AtmosphereInitial is R and OH at 4.05e-12 atm, everything else zero.
func AtmosphereInitial() map[string]float64 {
	return map[string]float64{"R": 4.05e-12, "OH": 4.05e-12}
}

// CellsInitial is O2 at 1e-2, R at 1e-4 and OH at 1e-10 atm.
func CellsInitial() map[string]float64 {
	return map[string]float64{"O2": 1e-2, "R": 1e-4, "OH": 1e-10}
}
