package dynamo

import (
	"errors"
	"fmt"
	"math"
	"testing"
)

func TestStateClone(t *testing.T) {
	s := State{1, 2, 3}
	c := s.Clone()
	c[0] = 99
	if s[0] != 1 {
		t.Errorf("clone shares storage: s[0] = %v", s[0])
	}
}

func TestStateIsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  bool
	}{
		{"finite", State{1, -2, 0}, true},
		{"empty", State{}, true},
		{"nan", State{1, math.NaN()}, false},
		{"inf", State{math.Inf(-1)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStateMin(t *testing.T) {
	v, i := State{3, -1e-13, 2}.Min()
	if v != -1e-13 || i != 1 {
		t.Errorf("Min() = (%g, %d), want (-1e-13, 1)", v, i)
	}
	if _, i := (State{}).Min(); i != -1 {
		t.Errorf("Min() on empty state index = %d, want -1", i)
	}
}

func TestStateSum(t *testing.T) {
	if s := (State{3, 4}); s.Sum() != 7 {
		t.Errorf("Sum() = %v", s.Sum())
	}
	if s := (State{}); s.Sum() != 0 {
		t.Errorf("empty Sum() = %v", s.Sum())
	}
}

func TestToleranceScale(t *testing.T) {
	tol := Tolerance{Rel: 1e-6, Abs: 1e-12}
	got := tol.Scale(-2, 1)
	want := 1e-12 + 2e-6
	if math.Abs(got-want) > 1e-24 {
		t.Errorf("Scale() = %g, want %g", got, want)
	}
}

func TestTrajectoryIsImmutable(t *testing.T) {
	times := []float64{0, 1}
	states := []State{{1, 2}, {3, 4}}
	traj := NewTrajectory(times, states, []string{"a", "b"}, Stats{Accepted: 3})

	states[0][0] = 100
	times[1] = 50
	traj.First()[1] = 100
	traj.Times()[0] = 7

	if traj.State(0)[0] != 1 || traj.State(0)[1] != 2 {
		t.Errorf("trajectory state changed: %v", traj.State(0))
	}
	if traj.Time(1) != 1 || traj.Time(0) != 0 {
		t.Errorf("trajectory times changed: %v", traj.Times())
	}
	if traj.Stats().Accepted != 3 {
		t.Errorf("Stats().Accepted = %d", traj.Stats().Accepted)
	}
	if s := traj.Series(1); s[0] != 2 || s[1] != 4 {
		t.Errorf("Series(1) = %v", s)
	}
	if traj.Last()[0] != 3 {
		t.Errorf("Last() = %v", traj.Last())
	}
}

func TestConfigurationError(t *testing.T) {
	err := fmt.Errorf("loading: %w", Configf("rtol", "must be positive, got %g", -1.0))

	if !errors.Is(err, ErrConfiguration) {
		t.Error("expected errors.Is(err, ErrConfiguration)")
	}
	if errors.Is(err, ErrIntegration) {
		t.Error("configuration error must not match ErrIntegration")
	}
	var ce *ConfigurationError
	if !errors.As(err, &ce) || ce.Field != "rtol" {
		t.Errorf("errors.As failed or wrong field: %+v", ce)
	}
}

func TestIntegrationFailure(t *testing.T) {
	err := fmt.Errorf("run: %w", &IntegrationFailure{Step: 12, Time: 3.5, StepSize: 1e-20, Wrapped: ErrStepTooSmall})

	if !errors.Is(err, ErrIntegration) {
		t.Error("expected errors.Is(err, ErrIntegration)")
	}
	if !errors.Is(err, ErrStepTooSmall) {
		t.Error("expected wrapped cause to match")
	}
	if errors.Is(err, ErrMaxSteps) {
		t.Error("unexpected match on ErrMaxSteps")
	}
	if errors.Is(err, ErrConfiguration) {
		t.Error("integration failure must not match ErrConfiguration")
	}
}

func TestStatsAdd(t *testing.T) {
	s := Stats{Accepted: 1, Rejected: 2}
	s.Add(Stats{Accepted: 3, Evaluations: 4, Factorizations: 5})
	if s.Accepted != 4 || s.Rejected != 2 || s.Evaluations != 4 || s.Factorizations != 5 {
		t.Errorf("Add() = %+v", s)
	}
}
