package dynamics

import (
	"errors"
	"fmt"
)

// Domain errors for integration operations.
var (
	// ErrNonFinite indicates the state picked up a NaN or Inf, e.g. from
	// the two-body collision singularity.
	ErrNonFinite = errors.New("dynamics: state is non-finite (NaN or Inf)")

	// ErrStepTooSmall indicates the adaptive step size collapsed below its
	// minimum without meeting the error tolerances.
	ErrStepTooSmall = errors.New("dynamics: adaptive step below minimum")

	// ErrMaxSteps indicates the step budget ran out before the final time.
	ErrMaxSteps = errors.New("dynamics: maximum step count exceeded")

	// ErrTimeGrid indicates a sample-time grid that is empty or not
	// strictly increasing.
	ErrTimeGrid = errors.New("dynamics: time grid must be strictly increasing")

	// ErrDimensionMismatch indicates mismatched state/system dimensions.
	ErrDimensionMismatch = errors.New("dynamics: state dimension does not match system")
)

// StepError wraps an error with the time and step count at which
// integration failed.
type StepError struct {
	Time    float64
	Step    int
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.6g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
