// Package analysis inspects the dynamics of a reaction network.
//
//   - [LocalStiffness]: Jacobian eigenvalues, timescales and stiffness ratio
//   - [NewPhasePortrait]: two species plotted against each other
//
// A stiffness ratio far above 1e3 rules out explicit integrators:
//
//	s, _ := analysis.LocalStiffness(network, x0)
//	if s.Ratio > 1e3 {
//	    // use rosenbrock23
//	}
package analysis
