package solver

import (
	"fmt"
	"math"

	"github.com/jmkerr/odelab/internal/dynamics"
)

// Options bound the local truncation error and the step-size range of an
// adaptive integration.
type Options struct {
	AbsTol      float64
	RelTol      float64
	InitialStep float64 // 0 means derive from the grid spacing
	MinStep     float64
	MaxStep     float64 // 0 means unbounded
	MaxSteps    int
}

// DefaultOptions matches the trajectory-integration contract: both
// tolerances default to 1e-9.
func DefaultOptions() Options {
	return Options{
		AbsTol:   1e-9,
		RelTol:   1e-9,
		MinStep:  1e-12,
		MaxSteps: 2_000_000,
	}
}

// UniformGrid returns n sample times evenly spaced over [t0, tf].
func UniformGrid(t0, tf float64, n int) []float64 {
	if n < 2 {
		return []float64{t0}
	}
	grid := make([]float64, n)
	step := (tf - t0) / float64(n-1)
	for i := range grid {
		grid[i] = t0 + float64(i)*step
	}
	grid[n-1] = tf
	return grid
}

func validateGrid(times []float64) error {
	if len(times) < 2 {
		return fmt.Errorf("%w: need at least 2 sample times, got %d", dynamics.ErrTimeGrid, len(times))
	}
	for i := 1; i < len(times); i++ {
		if !(times[i] > times[i-1]) {
			return fmt.Errorf("%w: times[%d]=%g, times[%d]=%g", dynamics.ErrTimeGrid, i-1, times[i-1], i, times[i])
		}
	}
	return nil
}

// SampleAt integrates sys from times[0] to the last sample time with
// adaptive Dormand-Prince stepping and evaluates the solution at every
// requested time via dense output. The returned trajectory always has one
// state per requested time; if integration fails partway (collision
// singularity, step underflow, step budget), the remaining samples are NaN
// and the error describes where it stopped.
func SampleAt(sys dynamics.System, times []float64, x0 dynamics.State, opts Options) (*dynamics.Trajectory, error) {
	if err := validateGrid(times); err != nil {
		return nil, err
	}
	if len(x0) != sys.Dim() {
		return nil, fmt.Errorf("%w: state has %d components, system wants %d",
			dynamics.ErrDimensionMismatch, len(x0), sys.Dim())
	}
	if opts.AbsTol <= 0 || opts.RelTol < 0 {
		return nil, fmt.Errorf("dynamics: tolerances must be positive, got abstol=%g reltol=%g",
			opts.AbsTol, opts.RelTol)
	}

	d := NewDopri5()
	n := len(x0)

	traj := dynamics.NewTrajectory(times)
	traj.States[0] = x0.Clone()

	t := times[0]
	tf := times[len(times)-1]
	x := x0.Clone()
	k1 := sys.Derive(x, t)

	dt := opts.InitialStep
	if dt <= 0 {
		dt = (times[1] - times[0]) / 4
	}
	if opts.MaxStep > 0 {
		dt = math.Min(dt, opts.MaxStep)
	}

	minStep := opts.MinStep
	if minStep <= 0 {
		minStep = 1e-12
	}
	maxSteps := opts.MaxSteps
	if maxSteps <= 0 {
		maxSteps = 2_000_000
	}

	next := 1 // index of the first unsampled grid time
	fail := func(step int, err error) (*dynamics.Trajectory, error) {
		for ; next < len(times); next++ {
			traj.States[next] = dynamics.NaNState(n)
		}
		return traj, &dynamics.StepError{Time: t, Step: step, Wrapped: err}
	}

	for step := 0; next < len(times); step++ {
		if step >= maxSteps {
			return fail(step, dynamics.ErrMaxSteps)
		}
		if !x.IsValid() || !k1.IsValid() {
			return fail(step, dynamics.ErrNonFinite)
		}

		if t+dt > tf {
			dt = tf - t
		}

		xNew, k7, errNorm := d.stages(sys, x, k1, t, dt, opts.AbsTol, opts.RelTol)

		if errNorm > 1 || math.IsNaN(errNorm) {
			// A NaN error norm means a derivative went singular inside the
			// trial step; shrinking dt cannot recover from that.
			if math.IsNaN(errNorm) {
				return fail(step, dynamics.ErrNonFinite)
			}
			if dt <= minStep {
				return fail(step, dynamics.ErrStepTooSmall)
			}
			dt = math.Max(minStep, d.nextStep(dt, errNorm, false))
			continue
		}

		// Dense output for every grid time inside the accepted step.
		tEnd := t + dt
		slack := 1e-12 * math.Max(1, math.Abs(tEnd))
		for next < len(times) && times[next] <= tEnd+slack {
			s := 1.0
			if dt > 0 {
				s = math.Min(1, math.Max(0, (times[next]-t)/dt))
			}
			traj.States[next] = hermite(x, xNew, k1, k7, dt, s)
			next++
		}

		x = xNew
		k1 = k7 // first-same-as-last
		t = tEnd

		dt = d.nextStep(dt, errNorm, true)
		if opts.MaxStep > 0 {
			dt = math.Min(dt, opts.MaxStep)
		}
	}

	if last := traj.States[len(times)-1]; !last.IsValid() {
		return traj, &dynamics.StepError{Time: t, Step: 0, Wrapped: dynamics.ErrNonFinite}
	}
	return traj, nil
}
