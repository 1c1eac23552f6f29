// Package chaos quantifies sensitivity to initial conditions: separation
// curves of perturbed trajectory pairs, their exponential growth rate, and
// a largest-Lyapunov-exponent estimate.
package chaos

import (
	"fmt"
	"math"

	"github.com/jmkerr/odelab/internal/dynamics"
	"github.com/jmkerr/odelab/internal/solver"
)

// Divergence holds the separation history of two trajectories started from
// nearby initial conditions.
type Divergence struct {
	Times      []float64
	Separation []float64
	// GrowthRate is the least-squares slope of ln(separation) over the
	// window where the separation is finite and positive. Positive values
	// of order one and above indicate exponential divergence.
	GrowthRate float64
}

// Compare integrates sys from x0 and from x0 with perturbation added to
// component idx, on the same time grid, and measures their separation.
func Compare(sys dynamics.System, times []float64, x0 dynamics.State, idx int, perturbation float64, opts solver.Options) (*Divergence, error) {
	if idx < 0 || idx >= len(x0) {
		return nil, fmt.Errorf("chaos: perturbation index %d out of range for dim %d", idx, len(x0))
	}

	xp := x0.Clone()
	xp[idx] += perturbation

	base, err := solver.SampleAt(sys, times, x0, opts)
	if err != nil {
		return nil, fmt.Errorf("chaos: reference trajectory: %w", err)
	}
	pert, err := solver.SampleAt(sys, times, xp, opts)
	if err != nil {
		return nil, fmt.Errorf("chaos: perturbed trajectory: %w", err)
	}

	sep := Separation(base, pert)
	return &Divergence{
		Times:      base.Times,
		Separation: sep,
		GrowthRate: GrowthRate(base.Times, sep),
	}, nil
}

// Separation returns the euclidean distance between two trajectories at
// each shared sample. Trajectories must come from the same grid.
func Separation(a, b *dynamics.Trajectory) []float64 {
	n := a.Len()
	if b.Len() < n {
		n = b.Len()
	}
	sep := make([]float64, n)
	for i := 0; i < n; i++ {
		sep[i] = a.States[i].Sub(b.States[i]).Norm()
	}
	return sep
}

// ComponentSeparation returns |a_idx(t) - b_idx(t)| per sample, for
// tracking a single angle or coordinate.
func ComponentSeparation(a, b *dynamics.Trajectory, idx int) []float64 {
	n := a.Len()
	if b.Len() < n {
		n = b.Len()
	}
	sep := make([]float64, n)
	for i := 0; i < n; i++ {
		sep[i] = math.Abs(a.States[i][idx] - b.States[i][idx])
	}
	return sep
}

// GrowthRate fits ln(sep) = rate*t + c by least squares over the samples
// where sep is finite and positive, and returns rate. Zero is returned
// when fewer than two usable samples exist.
func GrowthRate(times, sep []float64) float64 {
	var n float64
	var sumT, sumY, sumTT, sumTY float64

	for i := range sep {
		if i >= len(times) {
			break
		}
		if sep[i] <= 0 || math.IsInf(sep[i], 0) || math.IsNaN(sep[i]) {
			continue
		}
		t := times[i]
		y := math.Log(sep[i])
		n++
		sumT += t
		sumY += y
		sumTT += t * t
		sumTY += t * y
	}

	den := n*sumTT - sumT*sumT
	if n < 2 || den == 0 {
		return 0
	}
	return (n*sumTY - sumT*sumY) / den
}
