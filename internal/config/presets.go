package config

import (
	"sort"

	"github.com/san-kum/autoxsim/internal/dynamo"
	"github.com/san-kum/autoxsim/internal/kinetics"
)

// Presets are keyed by variant, then preset name. Each variant only ever
// carries its own rate constants.
var Presets = map[string]map[string]*Config{
	"atmosphere": {
		"default": atmosphere(10000, 10000),
		"short":   atmosphere(1000, 1000),
	},
	"cells": {
		"default": cells(1e4, 1000),
		"long":    cells(1e5, 1000),
	},
}

func atmosphere(end float64, samples int) *Config {
	return &Config{
		Variant:     "atmosphere",
		Method:      DefaultMethod,
		Rates:       kinetics.AtmosphereRates(),
		ReservoirO2: kinetics.ReservoirO2,
		Initial:     kinetics.AtmosphereInitial(),
		Start:       0,
		End:         end,
		Samples:     samples,
		Tolerance:   dynamo.Tolerance{Rel: DefaultRelTol, Abs: DefaultAbsTol},
		MaxSteps:    DefaultMaxSteps,
		Output: OutputConfig{
			Plots:  []string{"coupled_rate_equations_atmosphere.png", "coupled_rate_equations_atmosphere.pdf"},
			XLabel: "Time / s",
			YLabel: "Concentration / atm",
		},
	}
}

func cells(end float64, samples int) *Config {
	return &Config{
		Variant:   "cells",
		Method:    DefaultMethod,
		Rates:     kinetics.CellsRates(),
		Initial:   kinetics.CellsInitial(),
		Start:     0,
		End:       end,
		Samples:   samples,
		Tolerance: dynamo.Tolerance{Rel: DefaultRelTol, Abs: DefaultAbsTol},
		MaxSteps:  DefaultMaxSteps,
		Output: OutputConfig{
			Plots:  []string{"coupled_rate_equations_cells.png", "coupled_rate_equations_cells.pdf"},
			XLabel: "Time / s",
			YLabel: "Concentration / atm",
			Hidden: []string{"R", "OH", "O2", "RO2"},
		},
	}
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(variant, preset string) *Config {
	variantPresets, ok := Presets[variant]
	if !ok {
		return nil
	}
	cfg, ok := variantPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(variant string) []string {
	variantPresets, ok := Presets[variant]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(variantPresets))
	for name := range variantPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
