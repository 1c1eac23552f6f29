package solver_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jmkerr/odelab/internal/dynamics"
	"github.com/jmkerr/odelab/internal/models"
	"github.com/jmkerr/odelab/internal/solver"
)

// harmonicOscillator has the exact solution x(t) = cos(t), v(t) = -sin(t)
// for x0 = {1, 0}.
type harmonicOscillator struct{}

func (h *harmonicOscillator) Dim() int { return 2 }

func (h *harmonicOscillator) Derive(x dynamics.State, t float64) dynamics.State {
	return dynamics.State{x[1], -x[0]}
}

var _ = Describe("Dopri5", func() {
	It("tracks the harmonic oscillator with fixed steps", func() {
		integ := solver.NewDopri5()
		sys := &harmonicOscillator{}

		x := dynamics.State{1, 0}
		dt := 0.01
		for i := 0; i < 1000; i++ {
			x = integ.Step(sys, x, float64(i)*dt, dt)
		}

		Expect(x[0]).To(BeNumerically("~", math.Cos(10), 1e-8))
		Expect(x[1]).To(BeNumerically("~", -math.Sin(10), 1e-8))
	})

	It("suggests a usable next step size", func() {
		integ := solver.NewDopri5()
		sys := &harmonicOscillator{}

		x, dtNext, err := integ.StepAdaptive(sys, dynamics.State{1, 0}, 0, 0.1, 1e-9, 1e-9)
		Expect(err).NotTo(HaveOccurred())
		Expect(x.IsValid()).To(BeTrue())
		Expect(dtNext).To(BeNumerically(">", 0))
	})
})

var _ = Describe("SampleAt", func() {
	var sys *harmonicOscillator
	var grid []float64

	BeforeEach(func() {
		sys = &harmonicOscillator{}
		grid = solver.UniformGrid(0, 10, 501)
	})

	It("returns one state per requested time", func() {
		traj, err := solver.SampleAt(sys, grid, dynamics.State{1, 0}, solver.DefaultOptions())
		Expect(err).NotTo(HaveOccurred())
		Expect(traj.Len()).To(Equal(len(grid)))
		Expect(traj.States[0]).To(Equal(dynamics.State{1, 0}))
	})

	It("matches the analytic solution at every sample", func() {
		traj, err := solver.SampleAt(sys, grid, dynamics.State{1, 0}, solver.DefaultOptions())
		Expect(err).NotTo(HaveOccurred())

		for i, t := range traj.Times {
			Expect(traj.States[i][0]).To(BeNumerically("~", math.Cos(t), 1e-6),
				"position at t=%v", t)
			Expect(traj.States[i][1]).To(BeNumerically("~", -math.Sin(t), 1e-6),
				"velocity at t=%v", t)
		}
	})

	It("is deterministic across repeated calls", func() {
		a, errA := solver.SampleAt(sys, grid, dynamics.State{1, 0}, solver.DefaultOptions())
		b, errB := solver.SampleAt(sys, grid, dynamics.State{1, 0}, solver.DefaultOptions())
		Expect(errA).NotTo(HaveOccurred())
		Expect(errB).NotTo(HaveOccurred())
		Expect(a.States).To(Equal(b.States))
	})

	It("rejects a non-increasing time grid", func() {
		_, err := solver.SampleAt(sys, []float64{0, 1, 1, 2}, dynamics.State{1, 0}, solver.DefaultOptions())
		Expect(err).To(MatchError(dynamics.ErrTimeGrid))
	})

	It("rejects a mismatched state dimension", func() {
		_, err := solver.SampleAt(sys, grid, dynamics.State{1, 0, 0}, solver.DefaultOptions())
		Expect(err).To(MatchError(dynamics.ErrDimensionMismatch))
	})

	It("rejects non-positive tolerances", func() {
		opts := solver.DefaultOptions()
		opts.AbsTol = 0
		_, err := solver.SampleAt(sys, grid, dynamics.State{1, 0}, opts)
		Expect(err).To(HaveOccurred())
	})

	It("pads with NaN after a collision singularity", func() {
		tb := models.NewTwoBody()

		// Coincident bodies at rest: the derivative is non-finite from the
		// first evaluation.
		x0 := dynamics.State{1, 0, 1, 0, 1, 0, 1, 0}
		traj, err := solver.SampleAt(tb, solver.UniformGrid(0, 1, 11), x0, solver.DefaultOptions())

		Expect(err).To(MatchError(dynamics.ErrNonFinite))
		Expect(traj.Len()).To(Equal(11))
		for i := 1; i < traj.Len(); i++ {
			Expect(traj.States[i].IsValid()).To(BeFalse(), "sample %d", i)
		}
	})
})

var _ = Describe("UniformGrid", func() {
	It("hits both endpoints exactly", func() {
		grid := solver.UniformGrid(0, 7, 8)
		Expect(grid).To(HaveLen(8))
		Expect(grid[0]).To(Equal(0.0))
		Expect(grid[7]).To(Equal(7.0))
	})
})
