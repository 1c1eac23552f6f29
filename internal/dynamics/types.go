package dynamics

import "math"

// State holds the instantaneous configuration of a system: generalized
// coordinates interleaved with their time derivatives, in the field order
// fixed by each model.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

// NaNState returns a state of dimension n with every component NaN. It is
// used to pad trajectory samples past the point where integration failed.
func NaNState(n int) State {
	s := make(State, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

// System is an autonomous or time-dependent ODE system dX/dt = f(X, t).
// Derive must be a pure function: no retained references to x and no
// mutation of receiver state.
type System interface {
	Derive(x State, t float64) State
	Dim() int
}

// ConservesEnergy is implemented by systems with a well-defined total
// mechanical energy, used for drift diagnostics.
type ConservesEnergy interface {
	Energy(x State) float64
}

// Configurable exposes named scalar parameters for interactive tuning.
type Configurable interface {
	Params() map[string]float64
	SetParam(name string, value float64) error
}

type Integrator interface {
	Step(sys System, x State, t, dt float64) State
}

// AdaptiveIntegrator extends Integrator with a single embedded-error step.
// The returned float64 is the suggested size for the next step.
type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(sys System, x State, t, dt, abstol, reltol float64) (State, float64, error)
}

// Metric observes sampled states during a run and reduces them to a scalar.
type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}
