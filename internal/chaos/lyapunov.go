package chaos

import (
	"math"

	"github.com/jmkerr/odelab/internal/dynamics"
)

// LyapunovExponent estimates the largest Lyapunov exponent by the
// trajectory separation method with renormalization: two nearby
// trajectories are stepped together and the perturbed one is pulled back
// to the reference distance whenever the separation saturates.
func LyapunovExponent(sys dynamics.System, integ dynamics.Integrator, x0 dynamics.State, dt, duration, d0 float64) float64 {
	if len(x0) == 0 || d0 <= 0 {
		return 0
	}

	x := x0.Clone()
	xp := x0.Clone()
	xp[0] += d0

	t := 0.0
	sumLog := 0.0
	count := 0

	for t < duration {
		x = integ.Step(sys, x, t, dt)
		xp = integ.Step(sys, xp, t, dt)
		t += dt

		sep := xp.Sub(x).Norm()
		if sep <= 0 || math.IsNaN(sep) {
			break
		}

		sumLog += math.Log(sep / d0)
		count++

		// Renormalize to keep the pair in the linear regime.
		if sep > 1.0 {
			diff := xp.Sub(x).Scale(d0 / sep)
			for i := range xp {
				xp[i] = x[i] + diff[i]
			}
		}
	}

	if count == 0 {
		return 0
	}
	return sumLog / (float64(count) * dt)
}
