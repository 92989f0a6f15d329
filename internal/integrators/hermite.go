package integrators

import "github.com/san-kum/autoxsim/internal/dynamo"

// Hermite writes the cubic Hermite interpolant through (t0, x0, f0) and
// (t1, x1, f1) evaluated at t into dst. With x1 == x0 and zero
// derivatives the result is x0 exactly.
func Hermite(dst dynamo.State, t0, t1 float64, x0, f0, x1, f1 dynamo.State, t float64) {
	h := t1 - t0
	th := (t - t0) / h
	th2 := th * th
	th3 := th2 * th

	a := 3*th2 - 2*th3
	b := h * (th3 - 2*th2 + th)
	c := h * (th3 - th2)
	for i := range dst {
		dst[i] = x0[i] + (x1[i]-x0[i])*a + f0[i]*b + f1[i]*c
	}
}
