// Package dynamo provides the core primitives shared by the kinetics
// model, the integrators and the solver driver.
//
//   - [State]: concentration vector of a reaction network
//   - [System]: autonomous ODE right-hand side (dX/dt = f(X))
//   - [Jacobian]: optional exact Jacobian used by implicit steppers
//   - [Trajectory]: immutable sampled solution
//   - [Config]: tolerances and step limits for one solve
//
// # Errors
//
// Invalid inputs are reported as [ConfigurationError] and match
// [ErrConfiguration]; solver breakdowns are reported as
// [IntegrationFailure] and match [ErrIntegration] as well as the
// underlying cause ([ErrStepTooSmall], [ErrMaxSteps], [ErrInvalidState]).
//
//	traj, err := solver.Solve(ctx, network, x0, times, cfg)
//	if errors.Is(err, dynamo.ErrIntegration) {
//	    // tolerances could not be met
//	}
package dynamo
