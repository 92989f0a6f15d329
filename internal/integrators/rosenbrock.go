package integrators

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/autoxsim/internal/dynamo"
)

// Shampine-Reichelt Rosenbrock 2(3) coefficients.
var (
	rosD   = 1.0 / (2.0 + math.Sqrt2)
	rosE32 = 6.0 + math.Sqrt2
)

var errSingular = errors.New("integrators: iteration matrix is singular")

// Rosenbrock23 is the L-stable linearly implicit pair behind MATLAB's
// ode23s. Every attempt factors W = I - h*d*J once and solves three
// linear systems with it.
type Rosenbrock23 struct {
	jac  *mat.Dense
	w    *mat.Dense
	lu   mat.LU
	rhs  *mat.VecDense
	sol  *mat.VecDense
	k1   dynamo.State
	k2   dynamo.State
	k3   dynamo.State
	tmp  dynamo.State
	errE dynamo.State
}

func NewRosenbrock23() *Rosenbrock23 {
	return &Rosenbrock23{}
}

func (r *Rosenbrock23) Name() string { return "rosenbrock23" }
func (r *Rosenbrock23) Order() int   { return 2 }
func (r *Rosenbrock23) Stiff() bool  { return true }

func (r *Rosenbrock23) ensureScratch(n int) {
	if len(r.k1) == n {
		return
	}
	r.jac = mat.NewDense(n, n, nil)
	r.w = mat.NewDense(n, n, nil)
	r.rhs = mat.NewVecDense(n, nil)
	r.sol = mat.NewVecDense(n, nil)
	r.k1 = make(dynamo.State, n)
	r.k2 = make(dynamo.State, n)
	r.k3 = make(dynamo.State, n)
	r.tmp = make(dynamo.State, n)
	r.errE = make(dynamo.State, n)
}

func (r *Rosenbrock23) Attempt(sys dynamo.System, x, f0 dynamo.State, t, h float64, tol dynamo.Tolerance) (Step, error) {
	n := len(x)
	r.ensureScratch(n)
	st := Step{Jacobians: 1, Factorizations: 1}

	if j, ok := sys.(dynamo.Jacobian); ok {
		j.Jacobian(x, t, r.jac)
	} else {
		st.Evaluations += n
		NumericJacobian(sys, x, f0, t, r.jac)
	}

	hd := h * rosD
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := -hd * r.jac.At(i, j)
			if i == j {
				v += 1
			}
			r.w.Set(i, j, v)
		}
	}
	r.lu.Factorize(r.w)

	// k1 = W \ f0
	if err := r.solve(r.k1, f0); err != nil {
		return st, err
	}

	for i := 0; i < n; i++ {
		r.tmp[i] = x[i] + 0.5*h*r.k1[i]
	}
	f1 := sys.Derive(r.tmp, t+0.5*h)
	st.Evaluations++

	// k2 = W \ (f1 - k1) + k1
	for i := 0; i < n; i++ {
		r.tmp[i] = f1[i] - r.k1[i]
	}
	if err := r.solve(r.k2, r.tmp); err != nil {
		return st, err
	}
	for i := 0; i < n; i++ {
		r.k2[i] += r.k1[i]
	}

	xNew := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + h*r.k2[i]
	}
	f2 := sys.Derive(xNew, t+h)
	st.Evaluations++

	// k3 = W \ (f2 - e32*(k2 - f1) - 2*(k1 - f0))
	for i := 0; i < n; i++ {
		r.tmp[i] = f2[i] - rosE32*(r.k2[i]-f1[i]) - 2*(r.k1[i]-f0[i])
	}
	if err := r.solve(r.k3, r.tmp); err != nil {
		return st, err
	}

	for i := 0; i < n; i++ {
		r.errE[i] = h / 6 * (r.k1[i] - 2*r.k2[i] + r.k3[i])
	}

	st.X = xNew
	st.F = f2
	st.Err = errNorm(r.errE, x, xNew, tol)
	return st, nil
}

func (r *Rosenbrock23) solve(dst, b dynamo.State) error {
	copy(r.rhs.RawVector().Data, b)
	if err := r.lu.SolveVecTo(r.sol, false, r.rhs); err != nil {
		// A finite condition number is only a precision warning.
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 0) || math.IsNaN(float64(cond)) {
			return errSingular
		}
	}
	copy(dst, r.sol.RawVector().Data)
	if !dst.IsValid() {
		return errSingular
	}
	return nil
}

// NumericJacobian fills jac with forward differences around x; f0 must be f(x).
func NumericJacobian(sys dynamo.System, x, f0 dynamo.State, t float64, jac *mat.Dense) {
	n := len(x)
	xp := x.Clone()
	sq := math.Sqrt(2.220446049250313e-16)
	for j := 0; j < n; j++ {
		delta := sq * math.Max(math.Abs(x[j]), 1e-8)
		xp[j] = x[j] + delta
		fp := sys.Derive(xp, t)
		for i := 0; i < n; i++ {
			jac.Set(i, j, (fp[i]-f0[i])/delta)
		}
		xp[j] = x[j]
	}
}
