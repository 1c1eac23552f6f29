package models

import (
	"fmt"
	"math"

	"github.com/jmkerr/odelab/internal/dynamics"
)

// TwoBody implements the planar two-body gravitational problem.
// State: [x1, x1dot, y1, y1dot, x2, x2dot, y2, y2dot]
// Positions and velocities interleave per component so that each
// coordinate is immediately followed by its derivative.
type TwoBody struct {
	M1, M2 float64
	G      float64 // gravitational strength sG
}

func NewTwoBody() *TwoBody {
	return &TwoBody{M1: 1.0, M2: 1.0, G: 1.0}
}

func (tb *TwoBody) Dim() int { return 8 }

// Derive returns [x1dot, ax1, y1dot, ay1, x2dot, ax2, y2dot, ay2].
// Coincident bodies make r3 zero; the resulting Inf/NaN values are the
// physical collision singularity and propagate unhandled under IEEE 754
// semantics.
func (tb *TwoBody) Derive(x dynamics.State, _ float64) dynamics.State {
	x1, vx1, y1, vy1 := x[0], x[1], x[2], x[3]
	x2, vx2, y2, vy2 := x[4], x[5], x[6], x[7]

	dx := x2 - x1
	dy := y2 - y1
	r2 := dx*dx + dy*dy
	r3 := r2 * math.Sqrt(r2)

	ax1 := tb.G * tb.M2 * dx / r3
	ay1 := tb.G * tb.M2 * dy / r3
	ax2 := -tb.G * tb.M1 * dx / r3
	ay2 := -tb.G * tb.M1 * dy / r3

	return dynamics.State{vx1, ax1, vy1, ay1, vx2, ax2, vy2, ay2}
}

// Energy returns total mechanical energy: kinetic terms of both bodies
// minus G*m1*m2/r.
func (tb *TwoBody) Energy(x dynamics.State) float64 {
	vx1, vy1 := x[1], x[3]
	vx2, vy2 := x[5], x[7]

	dx := x[4] - x[0]
	dy := x[6] - x[2]
	r := math.Hypot(dx, dy)

	ke := 0.5*tb.M1*(vx1*vx1+vy1*vy1) + 0.5*tb.M2*(vx2*vx2+vy2*vy2)
	return ke - tb.G*tb.M1*tb.M2/r
}

// CenterOfMass returns the mass-weighted mean position.
func (tb *TwoBody) CenterOfMass(x dynamics.State) (cx, cy float64) {
	m := tb.M1 + tb.M2
	cx = (tb.M1*x[0] + tb.M2*x[4]) / m
	cy = (tb.M1*x[2] + tb.M2*x[6]) / m
	return
}

func (tb *TwoBody) Momentum(x dynamics.State) (px, py float64) {
	px = tb.M1*x[1] + tb.M2*x[5]
	py = tb.M1*x[3] + tb.M2*x[7]
	return
}

func (tb *TwoBody) AngularMomentum(x dynamics.State) float64 {
	l1 := tb.M1 * (x[0]*x[3] - x[2]*x[1])
	l2 := tb.M2 * (x[4]*x[7] - x[6]*x[5])
	return l1 + l2
}

// Separation returns the distance between the two bodies.
func (tb *TwoBody) Separation(x dynamics.State) float64 {
	return math.Hypot(x[4]-x[0], x[6]-x[2])
}

// DefaultState places body 1 on a bound orbit around a heavier body 2 at
// the origin.
func (tb *TwoBody) DefaultState() dynamics.State {
	return dynamics.State{0, 5, -5, 0, 0, 0, 0, 0}
}

func (tb *TwoBody) Params() map[string]float64 {
	return map[string]float64{
		"m1": tb.M1,
		"m2": tb.M2,
		"g":  tb.G,
	}
}

func (tb *TwoBody) SetParam(name string, value float64) error {
	switch name {
	case "m1":
		tb.M1 = value
	case "m2":
		tb.M2 = value
	case "g":
		tb.G = value
	default:
		return fmt.Errorf("twobody: unknown parameter %q", name)
	}
	return nil
}
