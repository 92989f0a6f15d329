package dynamo

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is matched by every ConfigurationError.
	ErrConfiguration = errors.New("dynamo: invalid configuration")

	// ErrIntegration is matched by every IntegrationFailure.
	ErrIntegration = errors.New("dynamo: integration failed")

	// ErrInvalidState indicates a state vector with NaN or Inf values.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrStepTooSmall indicates the adaptive step collapsed below
	// representable precision.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrMaxSteps indicates the step budget ran out before the final time.
	ErrMaxSteps = errors.New("dynamo: maximum number of steps exceeded")

	// ErrDimensionMismatch indicates mismatched state/system dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")
)

// ConfigurationError reports an input rejected before integration starts.
type ConfigurationError struct {
	Field  string
	Reason string
}

func Configf(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// IntegrationFailure wraps a solver breakdown with the point where it
// happened.
type IntegrationFailure struct {
	Step     int
	Time     float64
	StepSize float64
	Wrapped  error
}

func (e *IntegrationFailure) Error() string {
	return fmt.Sprintf("step %d (t=%.6g, h=%.3g): %v", e.Step, e.Time, e.StepSize, e.Wrapped)
}

func (e *IntegrationFailure) Unwrap() error {
	return e.Wrapped
}

func (e *IntegrationFailure) Is(target error) bool {
	return target == ErrIntegration
}
