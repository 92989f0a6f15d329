package kinetics

import "github.com/san-kum/autoxsim/internal/dynamo"

// TotalReactive sums every tracked species except O2.
func (n *Network) TotalReactive(x dynamo.State) float64 {
	if o := n.idx.o2; o >= 0 {
		return x[:o].Sum() + x[o+1:].Sum()
	}
	return x.Sum()
}

// CarbonAtoms counts carbon-bearing species, the dimer twice. OH and O2
// carry no carbon.
func (n *Network) CarbonAtoms(x dynamo.State) float64 {
	i := &n.idx
	return x[i.r] + x[i.roh] + x[i.ro2] + x[i.ro2oh] + x[i.ald] +
		x[i.poz] + x[i.vhp] + x[i.vo] + 2*x[i.ro22]
}
