package config

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/autoxsim/internal/dynamo"
	"github.com/san-kum/autoxsim/internal/kinetics"
	"github.com/san-kum/autoxsim/internal/sim"
)

const (
	DefaultMethod   = "rosenbrock23"
	DefaultRelTol   = 1e-6
	DefaultAbsTol   = 1e-12
	DefaultMaxSteps = 500000
)

// Config describes one scenario run.
type Config struct {
	Variant     string                 `yaml:"variant" toml:"variant"`
	Method      string                 `yaml:"method" toml:"method"`
	Rates       kinetics.RateConstants `yaml:"rates" toml:"rates"`
	ReservoirO2 float64                `yaml:"reservoir_o2,omitempty" toml:"reservoir_o2,omitempty"`
	Initial     map[string]float64     `yaml:"initial" toml:"initial"`
	Start       float64                `yaml:"start" toml:"start"`
	End         float64                `yaml:"end" toml:"end"`
	Samples     int                    `yaml:"samples" toml:"samples"`
	// Times, when set, replaces the uniform grid. The first entry must be Start.
	Times     []float64        `yaml:"times,omitempty" toml:"times,omitempty"`
	Tolerance dynamo.Tolerance `yaml:"tolerance" toml:"tolerance"`
	MaxSteps  int              `yaml:"max_steps" toml:"max_steps"`
	MaxStep   float64          `yaml:"max_step,omitempty" toml:"max_step,omitempty"`
	Output    OutputConfig     `yaml:"output" toml:"output"`
}

type OutputConfig struct {
	// Plots lists chart files; the extension picks the format (.png, .pdf, .svg).
	Plots  []string `yaml:"plots,omitempty" toml:"plots,omitempty"`
	XLabel string   `yaml:"xlabel" toml:"xlabel"`
	YLabel string   `yaml:"ylabel" toml:"ylabel"`
	// Hidden species are left off the charts but kept in the trajectory.
	Hidden []string `yaml:"hidden,omitempty" toml:"hidden,omitempty"`
}

// DefaultConfig is the atmosphere scenario.
func DefaultConfig() *Config {
	return GetPreset("atmosphere", "default")
}

// Load reads a YAML or TOML scenario, chosen by extension. Fields missing
// from the file keep the values of the default preset of the file's
// variant, so a cells file never inherits atmosphere rate constants.
// An initial table replaces the preset's initial concentrations as a
// whole; species it leaves out start at zero.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	unmarshal := yaml.Unmarshal
	if isTOML(path) {
		unmarshal = func(b []byte, v interface{}) error {
			_, err := toml.Decode(string(b), v)
			return err
		}
	}
	var head struct {
		Variant string             `yaml:"variant" toml:"variant"`
		Initial map[string]float64 `yaml:"initial" toml:"initial"`
	}
	if err := unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	variant := "atmosphere"
	if head.Variant != "" {
		v, err := kinetics.ParseVariant(head.Variant)
		if err != nil {
			return nil, err
		}
		variant = v.String()
	}
	cfg := GetPreset(variant, "default")
	if head.Initial != nil {
		cfg.Initial = make(map[string]float64, len(head.Initial))
	}
	if err := unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return err
		}
		return os.WriteFile(path, buf.Bytes(), 0644)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func (c *Config) Clone() *Config {
	cp := *c
	cp.Initial = make(map[string]float64, len(c.Initial))
	for k, v := range c.Initial {
		cp.Initial[k] = v
	}
	cp.Times = append([]float64(nil), c.Times...)
	cp.Output.Plots = append([]string(nil), c.Output.Plots...)
	cp.Output.Hidden = append([]string(nil), c.Output.Hidden...)
	return &cp
}

func (c *Config) GetVariant() (kinetics.Variant, error) {
	return kinetics.ParseVariant(c.Variant)
}

// GetInitState builds the initial species vector for the configured variant.
func (c *Config) GetInitState() (dynamo.State, error) {
	v, err := c.GetVariant()
	if err != nil {
		return nil, err
	}
	return kinetics.InitialState(v, c.Initial)
}

// SolverConfig maps the scenario onto solver settings.
func (c *Config) SolverConfig() dynamo.Config {
	sc := dynamo.DefaultConfig()
	sc.Tolerance = c.Tolerance
	sc.MaxStep = c.MaxStep
	if c.MaxSteps > 0 {
		sc.MaxSteps = c.MaxSteps
	}
	return sc
}

// OutputTimes returns the requested sample times, first one at Start.
func (c *Config) OutputTimes() ([]float64, error) {
	if len(c.Times) == 0 {
		return sim.Grid(c.Start, c.End, c.Samples)
	}
	times := append([]float64(nil), c.Times...)
	if times[0] != c.Start {
		return nil, dynamo.Configf("times", "first output time %g must equal start %g", times[0], c.Start)
	}
	for i, t := range times {
		if math.IsNaN(t) || t < c.Start || t > c.End {
			return nil, dynamo.Configf("times", "output time %g outside [%g, %g]", t, c.Start, c.End)
		}
		if i > 0 && t <= times[i-1] {
			return nil, dynamo.Configf("times", "output times must be strictly increasing (%g after %g)", t, times[i-1])
		}
	}
	return times, nil
}

// Validate checks everything that can be checked before integrating.
func (c *Config) Validate() error {
	v, err := c.GetVariant()
	if err != nil {
		return err
	}
	if _, err := kinetics.NewNetwork(v, c.Rates, c.ReservoirO2); err != nil {
		return err
	}
	if _, err := c.GetInitState(); err != nil {
		return err
	}
	if math.IsNaN(c.Start) || math.IsNaN(c.End) || c.End <= c.Start {
		return dynamo.Configf("interval", "end (%g) must be after start (%g)", c.End, c.Start)
	}
	if _, err := c.OutputTimes(); err != nil {
		return err
	}
	if c.Tolerance.Rel < 0 || c.Tolerance.Abs < 0 || c.Tolerance.Rel+c.Tolerance.Abs == 0 {
		return dynamo.Configf("tolerance", "rtol=%g atol=%g", c.Tolerance.Rel, c.Tolerance.Abs)
	}
	if c.MaxSteps < 0 {
		return dynamo.Configf("max_steps", "must be non-negative, got %d", c.MaxSteps)
	}
	return nil
}

// PlottedSpecies lists the species drawn on charts, in state order.
func (c *Config) PlottedSpecies() []string {
	v, err := c.GetVariant()
	if err != nil {
		return nil
	}
	hidden := make(map[string]bool, len(c.Output.Hidden))
	for _, h := range c.Output.Hidden {
		hidden[h] = true
	}
	var out []string
	for _, s := range v.Species() {
		if !hidden[s] {
			out = append(out, s)
		}
	}
	return out
}
