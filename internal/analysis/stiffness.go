package analysis

import (
	"errors"
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/autoxsim/internal/dynamo"
	"github.com/san-kum/autoxsim/internal/integrators"
)

var ErrNoDecay = errors.New("analysis: jacobian has no decaying modes")

// Stiffness describes the local linearisation at one state.
type Stiffness struct {
	Eigenvalues []complex128
	// Fastest and Slowest are 1/|Re(lambda)| of the decaying modes, in s.
	Fastest float64
	Slowest float64
	Ratio   float64
}

// LocalStiffness computes the eigenvalues of df/dx at x. Modes with
// |Re(lambda)| below 1e-14 of the largest one count as conserved
// directions and are left out of the ratio.
func LocalStiffness(sys dynamo.System, x dynamo.State) (Stiffness, error) {
	n := sys.StateDim()
	jac := mat.NewDense(n, n, nil)
	if j, ok := sys.(dynamo.Jacobian); ok {
		j.Jacobian(x, 0, jac)
	} else {
		integrators.NumericJacobian(sys, x, sys.Derive(x, 0), 0, jac)
	}

	var eig mat.Eigen
	if ok := eig.Factorize(jac, mat.EigenNone); !ok {
		return Stiffness{}, errors.New("analysis: eigendecomposition did not converge")
	}
	vals := eig.Values(nil)
	sort.Slice(vals, func(i, j int) bool { return real(vals[i]) < real(vals[j]) })

	s := Stiffness{Eigenvalues: vals}
	largest := 0.0
	for _, v := range vals {
		largest = math.Max(largest, math.Abs(real(v)))
	}
	if largest == 0 {
		return s, ErrNoDecay
	}

	fast, slow := 0.0, math.Inf(1)
	for _, v := range vals {
		re := real(v)
		if re >= 0 || -re < 1e-14*largest || cmplx.IsNaN(v) {
			continue
		}
		fast = math.Max(fast, -re)
		slow = math.Min(slow, -re)
	}
	if fast == 0 {
		return s, ErrNoDecay
	}
	s.Fastest = 1 / fast
	s.Slowest = 1 / slow
	s.Ratio = fast / slow
	return s, nil
}
