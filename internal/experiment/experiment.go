package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/autoxsim/internal/config"
	"github.com/san-kum/autoxsim/internal/dynamo"
	"github.com/san-kum/autoxsim/internal/kinetics"
	"github.com/san-kum/autoxsim/internal/metrics"
	"github.com/san-kum/autoxsim/internal/sim"
)

// Result is everything a finished run hands to the report, plot and
// archive adapters.
type Result struct {
	Config     *config.Config
	Network    *kinetics.Network
	Trajectory *dynamo.Trajectory
	Summary    metrics.Summary
	Metrics    map[string]float64
	Minimum    metrics.Extreme
	// OxygenNonIncreasing is only meaningful when O2 is a state component.
	OxygenNonIncreasing bool
	Elapsed             time.Duration
}

type Experiment struct {
	cfg      *config.Config
	registry *Registry
	log      logrus.FieldLogger
}

func New(cfg *config.Config, log logrus.FieldLogger) *Experiment {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Experiment{
		cfg:      cfg.Clone(),
		registry: NewRegistry(),
		log:      log,
	}
}

func (e *Experiment) Config() *config.Config { return e.cfg.Clone() }

// Run validates the scenario, integrates it and computes the
// diagnostics. On error nothing is returned.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	cfg := e.cfg
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	variant, err := cfg.GetVariant()
	if err != nil {
		return nil, err
	}
	network, err := kinetics.NewNetwork(variant, cfg.Rates, cfg.ReservoirO2)
	if err != nil {
		return nil, err
	}
	x0, err := cfg.GetInitState()
	if err != nil {
		return nil, err
	}
	times, err := cfg.OutputTimes()
	if err != nil {
		return nil, err
	}
	method, err := e.registry.GetMethod(cfg.Method)
	if err != nil {
		return nil, dynamo.Configf("method", "%v", err)
	}

	log := e.log.WithFields(logrus.Fields{
		"variant": variant.String(),
		"method":  method.Name(),
	})
	log.WithFields(logrus.Fields{
		"start":   times[0],
		"end":     times[len(times)-1],
		"samples": len(times),
		"rtol":    cfg.Tolerance.Rel,
		"atol":    cfg.Tolerance.Abs,
	}).Info("integrating")

	started := time.Now()
	solver := sim.New(method, log)
	traj, err := solver.Solve(ctx, network, x0, times, cfg.SolverConfig())
	if err != nil {
		return nil, fmt.Errorf("%s run: %w", variant, err)
	}
	elapsed := time.Since(started)

	total := metrics.NewQuantity("total_reactive", network.TotalReactive)
	carbon := metrics.NewQuantity("carbon_atoms", network.CarbonAtoms)

	res := &Result{
		Config:     cfg.Clone(),
		Network:    network,
		Trajectory: traj,
		Summary:    metrics.Conservation(traj, total, carbon),
		Metrics: metrics.Apply(traj,
			metrics.NewDrift(total),
			metrics.NewDrift(carbon),
			metrics.NewNegativity(cfg.Tolerance.Abs),
		),
		Minimum:             metrics.MinConcentration(traj),
		OxygenNonIncreasing: true,
		Elapsed:             elapsed,
	}
	if i := variant.Index("O2"); i >= 0 {
		o2 := traj.First()[i]
		res.OxygenNonIncreasing = metrics.NonIncreasing(traj, i, cfg.Tolerance.Scale(o2, o2))
	}

	stats := traj.Stats()
	log.WithFields(logrus.Fields{
		"elapsed":  elapsed.String(),
		"accepted": stats.Accepted,
		"rejected": stats.Rejected,
	}).Info("integration complete")

	return res, nil
}
