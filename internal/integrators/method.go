package integrators

import (
	"math"

	"github.com/san-kum/autoxsim/internal/dynamo"
)

// Step is the outcome of one attempted step of size h.
type Step struct {
	X   dynamo.State // candidate state at t+h
	F   dynamo.State // f(X), reused as the next f0
	Err float64      // weighted RMS error estimate; the step is acceptable when Err <= 1

	Evaluations    int
	Jacobians      int
	Factorizations int
}

// Method attempts single adaptive steps. Implementations keep scratch
// space and are not safe for concurrent use.
type Method interface {
	Name() string
	// Order is the order of the lower-order solution of the embedded pair.
	Order() int
	// Stiff reports whether the method stays stable on stiff systems.
	Stiff() bool
	// Attempt advances x by h. f0 must be f(x). x and f0 are not modified.
	Attempt(sys dynamo.System, x, f0 dynamo.State, t, h float64, tol dynamo.Tolerance) (Step, error)
}

// errNorm is the RMS of e scaled by the tolerance weight of each component.
func errNorm(e, x, xNew dynamo.State, tol dynamo.Tolerance) float64 {
	if len(e) == 0 {
		return 0
	}
	sum := 0.0
	for i := range e {
		r := e[i] / tol.Scale(x[i], xNew[i])
		sum += r * r
	}
	return math.Sqrt(sum / float64(len(e)))
}
