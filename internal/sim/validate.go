package sim

import (
	"math"

	"github.com/san-kum/autoxsim/internal/dynamo"
)

func validate(sys dynamo.System, x0 dynamo.State, times []float64, cfg dynamo.Config) error {
	if len(x0) != sys.StateDim() {
		return dynamo.Configf("initial", "%v: state has %d components, system expects %d",
			dynamo.ErrDimensionMismatch, len(x0), sys.StateDim())
	}
	for i, v := range x0 {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return dynamo.Configf("initial", "component %d is not finite", i)
		}
		if v < 0 {
			return dynamo.Configf("initial", "component %d is negative (%g)", i, v)
		}
	}

	if len(times) == 0 {
		return dynamo.Configf("times", "at least one output time is required")
	}
	for i, t := range times {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return dynamo.Configf("times", "output time %d is not finite", i)
		}
		if i > 0 && t <= times[i-1] {
			return dynamo.Configf("times", "output times must be strictly increasing (times[%d]=%g after %g)", i, t, times[i-1])
		}
	}

	tol := cfg.Tolerance
	if tol.Rel < 0 || tol.Abs < 0 || math.IsNaN(tol.Rel) || math.IsNaN(tol.Abs) {
		return dynamo.Configf("tolerance", "rtol and atol must be non-negative")
	}
	if tol.Rel == 0 && tol.Abs == 0 {
		return dynamo.Configf("tolerance", "rtol and atol cannot both be zero")
	}
	if cfg.MaxSteps < 0 {
		return dynamo.Configf("max_steps", "must be non-negative, got %d", cfg.MaxSteps)
	}
	if cfg.MaxStep < 0 || cfg.InitialStep < 0 {
		return dynamo.Configf("step", "step limits must be non-negative")
	}
	return nil
}

// Grid returns n uniformly spaced times covering [start, end], both ends
// included, like numpy.linspace.
func Grid(start, end float64, n int) ([]float64, error) {
	if n < 1 {
		return nil, dynamo.Configf("samples", "need at least one sample, got %d", n)
	}
	if math.IsNaN(start) || math.IsNaN(end) || math.IsInf(start, 0) || math.IsInf(end, 0) {
		return nil, dynamo.Configf("interval", "bounds must be finite")
	}
	if n == 1 {
		return []float64{start}, nil
	}
	if end <= start {
		return nil, dynamo.Configf("interval", "end (%g) must be after start (%g)", end, start)
	}
	times := make([]float64, n)
	step := (end - start) / float64(n-1)
	for i := range times {
		times[i] = start + float64(i)*step
	}
	times[n-1] = end
	return times, nil
}
