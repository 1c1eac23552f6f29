package solver

import (
	"math"

	"github.com/jmkerr/odelab/internal/dynamics"
)

// Dormand-Prince 5(4) coefficients
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// Dopri5 is the Dormand-Prince 5(4) embedded Runge-Kutta pair with
// first-same-as-last stage reuse. The error estimate is scaled by
// abstol + reltol*|x| per component.
type Dopri5 struct {
	Safety   float64
	MinScale float64
	MaxScale float64
}

func NewDopri5() *Dopri5 {
	return &Dopri5{
		Safety:   0.9,
		MinScale: 0.2,
		MaxScale: 10.0,
	}
}

// stages advances one trial step of size dt. k1 is the derivative at
// (t, x); callers that already have it (FSAL) pass it in, otherwise nil.
// Returns the 5th-order solution, the derivative at the step end, and the
// scaled error norm (accept when <= 1).
func (d *Dopri5) stages(sys dynamics.System, x dynamics.State, k1 dynamics.State, t, dt, abstol, reltol float64) (xNew, k7 dynamics.State, errNorm float64) {
	n := len(x)

	if k1 == nil {
		k1 = sys.Derive(x, t)
	}

	scratch := make(dynamics.State, n)
	for i := 0; i < n; i++ {
		scratch[i] = x[i] + dt*b21*k1[i]
	}
	k2 := sys.Derive(scratch, t+a2*dt)

	for i := 0; i < n; i++ {
		scratch[i] = x[i] + dt*(b31*k1[i]+b32*k2[i])
	}
	k3 := sys.Derive(scratch, t+a3*dt)

	for i := 0; i < n; i++ {
		scratch[i] = x[i] + dt*(b41*k1[i]+b42*k2[i]+b43*k3[i])
	}
	k4 := sys.Derive(scratch, t+a4*dt)

	for i := 0; i < n; i++ {
		scratch[i] = x[i] + dt*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
	}
	k5 := sys.Derive(scratch, t+a5*dt)

	for i := 0; i < n; i++ {
		scratch[i] = x[i] + dt*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
	}
	k6 := sys.Derive(scratch, t+dt)

	xNew = make(dynamics.State, n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + dt*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}

	k7 = sys.Derive(xNew, t+dt)

	errNorm = 0.0
	for i := 0; i < n; i++ {
		errEst := dt * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
		scale := abstol + reltol*math.Max(math.Abs(x[i]), math.Abs(xNew[i]))
		if scale == 0 {
			scale = abstol
		}
		errNorm = math.Max(errNorm, math.Abs(errEst)/scale)
	}

	return xNew, k7, errNorm
}

// nextStep suggests a step size after a step with the given scaled error.
func (d *Dopri5) nextStep(dt, errNorm float64, accepted bool) float64 {
	if errNorm <= 0 {
		return dt * d.MaxScale
	}
	scale := d.Safety * math.Pow(errNorm, -0.2)
	if accepted {
		scale = math.Min(d.MaxScale, scale)
	} else {
		scale = math.Min(1.0, scale)
	}
	scale = math.Max(d.MinScale, scale)
	return dt * scale
}

// StepAdaptive takes a single trial step and reports the suggested next
// step size. The step is not retried here; rejection is signalled by a
// suggested size smaller than dt.
func (d *Dopri5) StepAdaptive(sys dynamics.System, x dynamics.State, t, dt, abstol, reltol float64) (dynamics.State, float64, error) {
	xNew, _, errNorm := d.stages(sys, x, nil, t, dt, abstol, reltol)
	return xNew, d.nextStep(dt, errNorm, errNorm <= 1), nil
}

// Step satisfies dynamics.Integrator with a fixed step and moderate
// tolerances.
func (d *Dopri5) Step(sys dynamics.System, x dynamics.State, t, dt float64) dynamics.State {
	xNew, _, _ := d.stages(sys, x, nil, t, dt, 1e-6, 1e-6)
	return xNew
}

// hermite evaluates the cubic Hermite dense-output interpolant on the
// accepted step [t, t+h] at fraction s, using the endpoint derivatives.
func hermite(x0, x1, f0, f1 dynamics.State, h, s float64) dynamics.State {
	n := len(x0)
	out := make(dynamics.State, n)
	for i := 0; i < n; i++ {
		d := x1[i] - x0[i]
		out[i] = (1-s)*x0[i] + s*x1[i] +
			s*(s-1)*((1-2*s)*d+(s-1)*h*f0[i]+s*h*f1[i])
	}
	return out
}
