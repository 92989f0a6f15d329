// Package automation runs many scenarios in one go: scripted batches of
// scenario files or presets, and sweeps of a single rate constant.
package automation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/autoxsim/internal/config"
	"github.com/san-kum/autoxsim/internal/dynamo"
	"github.com/san-kum/autoxsim/internal/experiment"
)

// Batch is a scripted sequence of runs.
type Batch struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Steps       []BatchStep `yaml:"steps"`
}

// BatchStep selects a scenario either by file or by variant and preset.
// Method and End override the scenario when set.
type BatchStep struct {
	Config  string  `yaml:"config"`
	Variant string  `yaml:"variant"`
	Preset  string  `yaml:"preset"`
	Method  string  `yaml:"method"`
	End     float64 `yaml:"end"`
}

// LoadBatch reads a batch file. Relative config paths are resolved
// against the batch file's directory.
func LoadBatch(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var batch Batch
	if err := yaml.Unmarshal(data, &batch); err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	for i := range batch.Steps {
		if c := batch.Steps[i].Config; c != "" && !filepath.IsAbs(c) {
			batch.Steps[i].Config = filepath.Join(dir, c)
		}
	}
	return &batch, nil
}

// Resolve builds the scenario config for a step.
func (s BatchStep) Resolve() (*config.Config, error) {
	var cfg *config.Config
	if s.Config != "" {
		loaded, err := config.Load(s.Config)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", s.Config, err)
		}
		cfg = loaded
	} else {
		variant, preset := s.Variant, s.Preset
		if variant == "" {
			variant = "atmosphere"
		}
		if preset == "" {
			preset = "default"
		}
		cfg = config.GetPreset(variant, preset)
		if cfg == nil {
			return nil, dynamo.Configf("preset", "unknown preset %s/%s", variant, preset)
		}
	}
	if s.Method != "" {
		cfg.Method = s.Method
	}
	if s.End > 0 {
		cfg.End = s.End
	}
	cfg.Output.Plots = nil
	return cfg, nil
}

// RunBatch executes all steps in order and stops at the first failure,
// returning the results gathered so far.
func RunBatch(ctx context.Context, batch *Batch, log logrus.FieldLogger) ([]*experiment.Result, error) {
	results := make([]*experiment.Result, 0, len(batch.Steps))

	for i, step := range batch.Steps {
		cfg, err := step.Resolve()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		log.WithFields(logrus.Fields{
			"step":    i + 1,
			"of":      len(batch.Steps),
			"variant": cfg.Variant,
		}).Info("batch step")

		res, err := experiment.New(cfg, log).Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		results = append(results, res)
	}

	return results, nil
}

// RateSweep varies one rate constant over a log-spaced range.
type RateSweep struct {
	Base   *config.Config
	Rate   string
	Min    float64
	Max    float64
	Points int
	// Track lists species whose end concentration is recorded.
	Track []string
	// Workers bounds how many points integrate at once; below 2 runs in order.
	Workers int
}

// SweepResult is one point of a sweep.
type SweepResult struct {
	Value       float64
	End         map[string]float64
	TotalEnd    float64
	CarbonDrift float64
	Stats       dynamo.Stats
	// Err is set when this point failed to integrate; the sweep continues.
	Err error
}

// Values returns the swept rate constant values.
func (s *RateSweep) Values() ([]float64, error) {
	if s.Points < 1 {
		return nil, dynamo.Configf("points", "must be at least 1, got %d", s.Points)
	}
	if !(s.Min > 0) || !(s.Max >= s.Min) || math.IsInf(s.Max, 0) {
		return nil, dynamo.Configf("range", "need 0 < min <= max, got [%g, %g]", s.Min, s.Max)
	}
	if s.Points == 1 {
		return []float64{s.Min}, nil
	}
	lo, hi := math.Log10(s.Min), math.Log10(s.Max)
	vals := make([]float64, s.Points)
	for i := range vals {
		vals[i] = math.Pow(10, lo+(hi-lo)*float64(i)/float64(s.Points-1))
	}
	vals[0], vals[len(vals)-1] = s.Min, s.Max
	return vals, nil
}

// RunSweep integrates the base scenario once per value. Configuration
// errors abort the sweep; integration failures are recorded per point.
func RunSweep(ctx context.Context, sweep *RateSweep, log logrus.FieldLogger) ([]SweepResult, error) {
	values, err := sweep.Values()
	if err != nil {
		return nil, err
	}
	if _, ok := sweep.Base.Rates.Map()[sweep.Rate]; !ok {
		return nil, dynamo.Configf("rate", "unknown rate constant %q", sweep.Rate)
	}

	workers := sweep.Workers
	if workers < 1 {
		workers = 1
	}
	results := make([]SweepResult, len(values))
	errs := make([]error, len(values))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, v := range values {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(i int, v float64) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i], errs[i] = sweepPoint(ctx, sweep, i, v, log)
		}(i, v)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return results[:i], err
		}
	}
	return results, nil
}

func sweepPoint(ctx context.Context, sweep *RateSweep, i int, v float64, log logrus.FieldLogger) (SweepResult, error) {
	cfg := sweep.Base.Clone()
	cfg.Output.Plots = nil
	if err := cfg.Rates.Set(sweep.Rate, v); err != nil {
		return SweepResult{Value: v}, err
	}

	log.WithFields(logrus.Fields{
		"rate":  sweep.Rate,
		"value": v,
		"point": i + 1,
	}).Debug("sweep point")

	res, err := experiment.New(cfg, log).Run(ctx)
	if err != nil {
		if errors.Is(err, dynamo.ErrConfiguration) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return SweepResult{Value: v}, err
		}
		return SweepResult{Value: v, Err: err}, nil
	}

	last := res.Trajectory.Last()
	species := res.Trajectory.Species()
	end := make(map[string]float64, len(sweep.Track))
	for _, name := range sweep.Track {
		for j, s := range species {
			if s == name {
				end[name] = last[j]
			}
		}
	}
	return SweepResult{
		Value:       v,
		End:         end,
		TotalEnd:    res.Summary.Total.End,
		CarbonDrift: res.Summary.Carbon.RelDrift(),
		Stats:       res.Trajectory.Stats(),
	}, nil
}

// TotalStats adds up the solver statistics of the points that integrated.
func TotalStats(results []SweepResult) dynamo.Stats {
	var st dynamo.Stats
	for _, r := range results {
		if r.Err == nil {
			st.Add(r.Stats)
		}
	}
	return st
}

// Failed counts the points that did not integrate.
func Failed(results []SweepResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
