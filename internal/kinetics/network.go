package kinetics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/autoxsim/internal/dynamo"
)

// Network is the vector field of one scenario. It is immutable after
// NewNetwork and safe for concurrent use.
type Network struct {
	variant Variant
	rates   RateConstants
	o2      float64
	idx     indices

	// RO2 + OH channel, hoisted out of Derive.
	kfr, f1, f2 float64
	f1kfr       float64
	f2kfr       float64
}

// NewNetwork validates the constants and precomputes the branching
// fractions. reservoirO2 is only used when the variant keeps O2 fixed.
func NewNetwork(v Variant, r RateConstants, reservoirO2 float64) (*Network, error) {
	if v != Atmosphere && v != Cells {
		return nil, dynamo.Configf("variant", "unknown variant %d", int(v))
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if !v.DynamicOxygen() && (reservoirO2 < 0 || math.IsNaN(reservoirO2) || math.IsInf(reservoirO2, 0)) {
		return nil, dynamo.Configf("reservoir_o2", "must be a non-negative pressure, got %g", reservoirO2)
	}
	f1, f2, err := BranchingFractions(r)
	if err != nil {
		return nil, err
	}
	kfr := r.Kd + r.K3
	return &Network{
		variant: v,
		rates:   r,
		o2:      reservoirO2,
		idx:     indicesFor(v),
		kfr:     kfr,
		f1:      f1,
		f2:      f2,
		f1kfr:   f1 * kfr,
		f2kfr:   f2 * kfr,
	}, nil
}

func (n *Network) Variant() Variant            { return n.variant }
func (n *Network) Rates() RateConstants        { return n.rates }
func (n *Network) StateDim() int               { return n.variant.Dim() }
func (n *Network) Species() []string           { return n.variant.Species() }
func (n *Network) Branching() (f1, f2 float64) { return n.f1, n.f2 }

// Oxygen returns the O2 pressure seen by the oxygen-dependent channels.
func (n *Network) Oxygen(x dynamo.State) float64 {
	if n.idx.o2 >= 0 {
		return x[n.idx.o2]
	}
	return n.o2
}

func (n *Network) Derive(x dynamo.State, t float64) dynamo.State {
	dx := make(dynamo.State, len(x))
	n.DeriveTo(dx, x)
	return dx
}

// DeriveTo writes f(x) into dst without allocating.
func (n *Network) DeriveTo(dst, x dynamo.State) {
	k := &n.rates
	i := &n.idx

	r, oh, roh := x[i.r], x[i.oh], x[i.roh]
	ro2, ro22 := x[i.ro2], x[i.ro22]
	ro2oh, poz, vhp, vo := x[i.ro2oh], x[i.poz], x[i.vhp], x[i.vo]
	o2 := n.Oxygen(x)

	rOH := k.Kd * r * oh
	rohO2 := k.Kd * roh * o2
	ro2OH := n.kfr * ro2 * oh
	voO2 := k.K6 * vo * o2
	self := k.Kd * ro2 * ro2

	dst[i.r] = -rOH
	dst[i.oh] = -rOH + k.K1*ro2 - ro2OH + k.K2*ro2oh + k.K2*vhp + voO2
	dst[i.roh] = rOH - rohO2
	if i.o2 >= 0 {
		dst[i.o2] = -rohO2 - voO2
	}
	dst[i.ro2] = rohO2 - k.K1*ro2 - ro2OH + k.K2*ro2oh - 2*self + k.K7*ro22
	dst[i.ro22] = self - k.K7*ro22 - k.K4*ro22
	dst[i.ald] = k.K1*ro2 + k.K5*poz + voO2
	dst[i.ro2oh] = n.f1kfr*ro2*oh - k.K2*ro2oh
	dst[i.poz] = k.K4*ro22 + n.f2kfr*ro2*oh - k.K5*poz
	dst[i.vhp] = k.K5*poz - k.K2*vhp
	dst[i.vo] = k.K2*vhp - voO2
}

// Jacobian writes df/dx into jac, which must be StateDim x StateDim.
func (n *Network) Jacobian(x dynamo.State, t float64, jac *mat.Dense) {
	k := &n.rates
	i := &n.idx

	r, oh, roh := x[i.r], x[i.oh], x[i.roh]
	ro2, vo := x[i.ro2], x[i.vo]
	o2 := n.Oxygen(x)

	jac.Zero()
	set := func(row, col int, v float64) {
		jac.Set(row, col, jac.At(row, col)+v)
	}

	set(i.r, i.r, -k.Kd*oh)
	set(i.r, i.oh, -k.Kd*r)

	set(i.oh, i.r, -k.Kd*oh)
	set(i.oh, i.oh, -k.Kd*r-n.kfr*ro2)
	set(i.oh, i.ro2, k.K1-n.kfr*oh)
	set(i.oh, i.ro2oh, k.K2)
	set(i.oh, i.vhp, k.K2)
	set(i.oh, i.vo, k.K6*o2)

	set(i.roh, i.r, k.Kd*oh)
	set(i.roh, i.oh, k.Kd*r)
	set(i.roh, i.roh, -k.Kd*o2)

	set(i.ro2, i.roh, k.Kd*o2)
	set(i.ro2, i.oh, -n.kfr*ro2)
	set(i.ro2, i.ro2, -k.K1-n.kfr*oh-4*k.Kd*ro2)
	set(i.ro2, i.ro2oh, k.K2)
	set(i.ro2, i.ro22, k.K7)

	set(i.ro22, i.ro2, 2*k.Kd*ro2)
	set(i.ro22, i.ro22, -k.K7-k.K4)

	set(i.ald, i.ro2, k.K1)
	set(i.ald, i.poz, k.K5)
	set(i.ald, i.vo, k.K6*o2)

	set(i.ro2oh, i.ro2, n.f1kfr*oh)
	set(i.ro2oh, i.oh, n.f1kfr*ro2)
	set(i.ro2oh, i.ro2oh, -k.K2)

	set(i.poz, i.ro22, k.K4)
	set(i.poz, i.ro2, n.f2kfr*oh)
	set(i.poz, i.oh, n.f2kfr*ro2)
	set(i.poz, i.poz, -k.K5)

	set(i.vhp, i.poz, k.K5)
	set(i.vhp, i.vhp, -k.K2)

	set(i.vo, i.vhp, k.K2)
	set(i.vo, i.vo, -k.K6*o2)

	if i.o2 < 0 {
		return
	}
	set(i.oh, i.o2, k.K6*vo)
	set(i.roh, i.o2, -k.Kd*roh)
	set(i.o2, i.roh, -k.Kd*o2)
	set(i.o2, i.vo, -k.K6*o2)
	set(i.o2, i.o2, -k.Kd*roh-k.K6*vo)
	set(i.ro2, i.o2, k.Kd*roh)
	set(i.ald, i.o2, k.K6*vo)
	set(i.vo, i.o2, -k.K6*vo)
}
