// Package metrics provides conserved-quantity drift diagnostics observed
// over sampled trajectories.
package metrics

import (
	"math"

	"github.com/jmkerr/odelab/internal/dynamics"
	"github.com/jmkerr/odelab/internal/models"
)

// EnergyDrift tracks the worst relative deviation of total mechanical
// energy from its value at the first observed sample.
type EnergyDrift struct {
	sys      dynamics.ConservesEnergy
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift(sys dynamics.ConservesEnergy) *EnergyDrift {
	return &EnergyDrift{sys: sys}
}

func (e *EnergyDrift) Name() string { return "energy_drift" }

func (e *EnergyDrift) Observe(x dynamics.State, t float64) {
	energy := e.sys.Energy(x)

	if e.samples == 0 {
		e.initial = energy
	}
	e.samples++

	scale := math.Abs(e.initial)
	if scale == 0 {
		scale = 1
	}
	drift := math.Abs(energy-e.initial) / scale
	e.maxDrift = math.Max(e.maxDrift, drift)
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}

// CenterOfMassDrift tracks how far the two-body barycenter wanders from
// its initial position.
type CenterOfMassDrift struct {
	model    *models.TwoBody
	cx0, cy0 float64
	maxDrift float64
	samples  int
}

func NewCenterOfMassDrift(model *models.TwoBody) *CenterOfMassDrift {
	return &CenterOfMassDrift{model: model}
}

func (c *CenterOfMassDrift) Name() string { return "com_drift" }

func (c *CenterOfMassDrift) Observe(x dynamics.State, t float64) {
	cx, cy := c.model.CenterOfMass(x)
	if c.samples == 0 {
		c.cx0, c.cy0 = cx, cy
	}
	c.samples++

	c.maxDrift = math.Max(c.maxDrift, math.Hypot(cx-c.cx0, cy-c.cy0))
}

func (c *CenterOfMassDrift) Value() float64 { return c.maxDrift }

func (c *CenterOfMassDrift) Reset() {
	c.cx0, c.cy0 = 0, 0
	c.maxDrift = 0
	c.samples = 0
}

// AngularMomentumDrift tracks the worst absolute deviation of total
// angular momentum in the two-body system.
type AngularMomentumDrift struct {
	model    *models.TwoBody
	initial  float64
	maxDrift float64
	samples  int
}

func NewAngularMomentumDrift(model *models.TwoBody) *AngularMomentumDrift {
	return &AngularMomentumDrift{model: model}
}

func (a *AngularMomentumDrift) Name() string { return "angmom_drift" }

func (a *AngularMomentumDrift) Observe(x dynamics.State, t float64) {
	l := a.model.AngularMomentum(x)
	if a.samples == 0 {
		a.initial = l
	}
	a.samples++

	a.maxDrift = math.Max(a.maxDrift, math.Abs(l-a.initial))
}

func (a *AngularMomentumDrift) Value() float64 { return a.maxDrift }

func (a *AngularMomentumDrift) Reset() {
	a.initial = 0
	a.maxDrift = 0
	a.samples = 0
}
