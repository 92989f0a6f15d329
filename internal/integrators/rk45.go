package integrators

import "github.com/san-kum/autoxsim/internal/dynamo"

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// RK45 is the explicit Dormand-Prince 5(4) pair. It is not stable on
// stiff systems and only serves as a reference.
type RK45 struct {
	x dynamo.State
	e dynamo.State
}

func NewRK45() *RK45 {
	return &RK45{}
}

func (r *RK45) Name() string { return "rk45" }
func (r *RK45) Order() int   { return 4 }
func (r *RK45) Stiff() bool  { return false }

func (r *RK45) ensureScratch(n int) {
	if len(r.x) != n {
		r.x = make(dynamo.State, n)
		r.e = make(dynamo.State, n)
	}
}

func (r *RK45) Attempt(dyn dynamo.System, x, f0 dynamo.State, t, dt float64, tol dynamo.Tolerance) (Step, error) {
	n := len(x)
	r.ensureScratch(n)
	k1 := f0

	for i := 0; i < n; i++ {
		r.x[i] = x[i] + dt*b21*k1[i]
	}
	k2 := dyn.Derive(r.x, t+a2*dt)

	for i := 0; i < n; i++ {
		r.x[i] = x[i] + dt*(b31*k1[i]+b32*k2[i])
	}
	k3 := dyn.Derive(r.x, t+a3*dt)

	for i := 0; i < n; i++ {
		r.x[i] = x[i] + dt*(b41*k1[i]+b42*k2[i]+b43*k3[i])
	}
	k4 := dyn.Derive(r.x, t+a4*dt)

	for i := 0; i < n; i++ {
		r.x[i] = x[i] + dt*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
	}
	k5 := dyn.Derive(r.x, t+a5*dt)

	for i := 0; i < n; i++ {
		r.x[i] = x[i] + dt*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
	}
	k6 := dyn.Derive(r.x, t+dt)

	xNew := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + dt*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}

	k7 := dyn.Derive(xNew, t+dt)

	for i := 0; i < n; i++ {
		r.e[i] = dt * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
	}

	return Step{
		X:           xNew,
		F:           k7,
		Err:         errNorm(r.e, x, xNew, tol),
		Evaluations: 6,
	}, nil
}
