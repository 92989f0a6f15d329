package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/autoxsim/internal/dynamo"
	"github.com/san-kum/autoxsim/internal/integrators"
)

// Solver drives an adaptive Method across an interval and samples the
// solution at the requested output times. Internal steps are chosen by
// the error estimate only; the output grid never constrains them.
type Solver struct {
	method   integrators.Method
	log      logrus.FieldLogger
	safety   float64
	minScale float64
	maxScale float64
}

func New(method integrators.Method, log logrus.FieldLogger) *Solver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Solver{
		method:   method,
		log:      log,
		safety:   0.9,
		minScale: 0.2,
		maxScale: 5.0,
	}
}

func (s *Solver) Method() integrators.Method { return s.method }

// Solve integrates sys from x0 over [times[0], times[len(times)-1]] and
// returns exactly one sample per requested time. The first sample is x0
// itself. Invalid input yields a *dynamo.ConfigurationError, solver
// breakdown a *dynamo.IntegrationFailure; no partial trajectory is
// returned in either case.
func (s *Solver) Solve(ctx context.Context, sys dynamo.System, x0 dynamo.State, times []float64, cfg dynamo.Config) (*dynamo.Trajectory, error) {
	if err := validate(sys, x0, times, cfg); err != nil {
		return nil, err
	}
	if cfg.MaxSteps == 0 {
		cfg.MaxSteps = dynamo.DefaultConfig().MaxSteps
	}

	var stats dynamo.Stats
	out := make([]dynamo.State, 1, len(times))
	out[0] = x0.Clone()
	species := speciesOf(sys, len(x0))

	tEnd := times[len(times)-1]
	next := 1
	if next == len(times) {
		return dynamo.NewTrajectory(times, out, species, stats), nil
	}

	x := x0.Clone()
	t := times[0]
	f := sys.Derive(x, t)
	stats.Evaluations++
	if !f.IsValid() {
		return nil, &dynamo.IntegrationFailure{Time: t, Wrapped: dynamo.ErrInvalidState}
	}

	h := cfg.InitialStep
	if h <= 0 {
		h = s.initialStep(sys, x, f, t, tEnd, cfg.Tolerance, &stats)
	}

	fail := func(cause error, h float64) error {
		s.log.WithFields(logrus.Fields{
			"method":   s.method.Name(),
			"t":        t,
			"h":        h,
			"accepted": stats.Accepted,
			"rejected": stats.Rejected,
		}).WithError(cause).Debug("integration failed")
		return &dynamo.IntegrationFailure{Step: stats.Accepted, Time: t, StepSize: h, Wrapped: cause}
	}

	q := float64(s.method.Order() + 1)
	rejected := false
	for next < len(times) {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("solve interrupted at t=%g: %w", t, ctx.Err())
		default:
		}

		if stats.Accepted >= cfg.MaxSteps {
			return nil, fail(dynamo.ErrMaxSteps, h)
		}
		if cfg.MaxStep > 0 {
			h = math.Min(h, cfg.MaxStep)
		}
		if h < minStep(t) {
			return nil, fail(dynamo.ErrStepTooSmall, h)
		}
		// Never leave a remainder too short to step over.
		last := false
		if t+h >= tEnd || tEnd-(t+h) < minStep(tEnd) {
			h = tEnd - t
			last = true
		}

		st, err := s.method.Attempt(sys, x, f, t, h, cfg.Tolerance)
		stats.Evaluations += st.Evaluations
		stats.Jacobians += st.Jacobians
		stats.Factorizations += st.Factorizations
		if err != nil || !st.X.IsValid() || !st.F.IsValid() || math.IsNaN(st.Err) {
			stats.Rejected++
			rejected = true
			h *= 0.25
			continue
		}
		if st.Err > 1 {
			stats.Rejected++
			rejected = true
			h *= math.Max(s.minScale, s.safety*math.Pow(st.Err, -1/q))
			continue
		}

		tNew := t + h
		if last {
			tNew = tEnd
		}
		for next < len(times) && times[next] <= tNew {
			if times[next] == tNew {
				out = append(out, st.X.Clone())
			} else {
				y := make(dynamo.State, len(x))
				integrators.Hermite(y, t, tNew, x, f, st.X, st.F, times[next])
				out = append(out, y)
			}
			next++
		}

		x, f, t = st.X, st.F, tNew
		stats.Accepted++

		scale := s.maxScale
		if st.Err > 0 {
			scale = math.Min(s.maxScale, s.safety*math.Pow(st.Err, -1/q))
		}
		if rejected {
			scale = math.Min(scale, 1)
			rejected = false
		}
		h *= scale
	}

	s.log.WithFields(logrus.Fields{
		"method":      s.method.Name(),
		"accepted":    stats.Accepted,
		"rejected":    stats.Rejected,
		"evaluations": stats.Evaluations,
		"jacobians":   stats.Jacobians,
	}).Debug("integration finished")

	return dynamo.NewTrajectory(times, out, species, stats), nil
}

// initialStep follows Hairer, Norsett & Wanner, Solving ODEs I, II.4.
func (s *Solver) initialStep(sys dynamo.System, x, f dynamo.State, t, tEnd float64, tol dynamo.Tolerance, stats *dynamo.Stats) float64 {
	span := tEnd - t
	n := float64(len(x))
	d0, d1 := 0.0, 0.0
	for i := range x {
		sc := tol.Scale(x[i], x[i])
		d0 += (x[i] / sc) * (x[i] / sc)
		d1 += (f[i] / sc) * (f[i] / sc)
	}
	d0 = math.Sqrt(d0 / n)
	d1 = math.Sqrt(d1 / n)

	h0 := 1e-6
	if d0 >= 1e-5 && d1 >= 1e-5 {
		h0 = 0.01 * d0 / d1
	}
	h0 = math.Min(h0, span)

	x1 := make(dynamo.State, len(x))
	for i := range x {
		x1[i] = x[i] + h0*f[i]
	}
	f1 := sys.Derive(x1, t+h0)
	stats.Evaluations++

	d2 := 0.0
	for i := range x {
		sc := tol.Scale(x[i], x[i])
		d := (f1[i] - f[i]) / sc
		d2 += d * d
	}
	d2 = math.Sqrt(d2/n) / h0

	var h1 float64
	if dm := math.Max(d1, d2); dm <= 1e-15 || math.IsNaN(dm) {
		h1 = math.Max(1e-6, h0*1e-3)
	} else {
		h1 = math.Pow(0.01/dm, 1/float64(s.method.Order()+1))
	}
	return math.Min(math.Min(100*h0, h1), span)
}

// minStep is the smallest step that still advances t in floating point.
func minStep(t float64) float64 {
	return 16 * (math.Nextafter(math.Abs(t), math.Inf(1)) - math.Abs(t))
}

func speciesOf(sys dynamo.System, n int) []string {
	if named, ok := sys.(dynamo.Named); ok {
		return named.Species()
	}
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("x%d", i)
	}
	return names
}
