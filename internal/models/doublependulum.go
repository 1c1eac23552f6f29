package models

import (
	"fmt"
	"math"

	"github.com/jmkerr/odelab/internal/dynamics"
)

const (
	DefaultMass    = 1.0
	DefaultLength  = 1.0
	DefaultGravity = 9.81
)

// DoublePendulum implements the planar double pendulum with point masses on
// massless rods, derived from its Lagrangian.
// State: [phi, phidot, theta, thetadot]
// phi is the inner rod angle, theta the outer, both measured from the
// downward vertical. Angles are never wrapped; large accumulated magnitudes
// stay valid trig inputs.
type DoublePendulum struct {
	M1, M2  float64
	L1, L2  float64
	Gravity float64
}

func NewDoublePendulum() *DoublePendulum {
	return &DoublePendulum{
		M1: DefaultMass, M2: DefaultMass,
		L1: DefaultLength, L2: DefaultLength,
		Gravity: DefaultGravity,
	}
}

func (d *DoublePendulum) Dim() int { return 4 }

// Derive returns [phidot, phiaccel, thetadot, thetaaccel]. The shared
// denominator m1 + m2*sin(theta-phi)^2 stays strictly positive for positive
// masses, so there is no singularity here.
func (d *DoublePendulum) Derive(x dynamics.State, _ float64) dynamics.State {
	phi, phidot, theta, thetadot := x[0], x[1], x[2], x[3]
	m1, m2, l1, l2, g := d.M1, d.M2, d.L1, d.L2, d.Gravity

	delta := theta - phi
	sinD, cosD := math.Sin(delta), math.Cos(delta)
	den := m1 + m2 - m2*cosD*cosD

	phiaccel := (2*thetadot*thetadot*l2*m2*sinD +
		phidot*phidot*l1*m2*math.Sin(2*delta) +
		g*(m2*math.Sin(2*theta-phi)-2*m1*math.Sin(phi)-m2*math.Sin(phi))) /
		(2 * l1 * den)

	thetaaccel := -sinD * (thetadot*thetadot*l2*m2*cosD +
		(m1+m2)*(phidot*phidot*l1+g*math.Cos(phi))) /
		(l2 * den)

	return dynamics.State{phidot, phiaccel, thetadot, thetaaccel}
}

// Energy returns T + U for the stated Lagrangian, with U measured from the
// pivot.
func (d *DoublePendulum) Energy(x dynamics.State) float64 {
	phi, phidot, theta, thetadot := x[0], x[1], x[2], x[3]
	m1, m2, l1, l2, g := d.M1, d.M2, d.L1, d.L2, d.Gravity

	ke := 0.5*(m1+m2)*l1*l1*phidot*phidot +
		0.5*m2*l2*l2*thetadot*thetadot +
		m2*l1*l2*phidot*thetadot*math.Cos(theta-phi)

	pe := -(m1+m2)*g*l1*math.Cos(phi) - m2*g*l2*math.Cos(theta)

	return ke + pe
}

// BobPositions returns cartesian coordinates of both bobs, pivot at the
// origin, y increasing upward.
func (d *DoublePendulum) BobPositions(x dynamics.State) (x1, y1, x2, y2 float64) {
	x1 = d.L1 * math.Sin(x[0])
	y1 = -d.L1 * math.Cos(x[0])
	x2 = x1 + d.L2*math.Sin(x[2])
	y2 = y1 - d.L2*math.Cos(x[2])
	return
}

// DefaultState starts both rods horizontal and at rest, a standard chaotic
// release.
func (d *DoublePendulum) DefaultState() dynamics.State {
	return dynamics.State{math.Pi / 2, 0, -math.Pi / 2, 0}
}

func (d *DoublePendulum) Params() map[string]float64 {
	return map[string]float64{
		"m1": d.M1,
		"m2": d.M2,
		"l1": d.L1,
		"l2": d.L2,
		"g":  d.Gravity,
	}
}

func (d *DoublePendulum) SetParam(name string, value float64) error {
	switch name {
	case "m1":
		d.M1 = value
	case "m2":
		d.M2 = value
	case "l1":
		d.L1 = value
	case "l2":
		d.L2 = value
	case "g":
		d.Gravity = value
	default:
		return fmt.Errorf("doublependulum: unknown parameter %q", name)
	}
	return nil
}
