package chaos

import (
	"math"
	"testing"

	"github.com/jmkerr/odelab/internal/dynamics"
	"github.com/jmkerr/odelab/internal/models"
	"github.com/jmkerr/odelab/internal/solver"
)

func TestGrowthRateExactExponential(t *testing.T) {
	// sep(t) = 1e-4 * e^(2t) must fit a slope of exactly 2.
	times := solver.UniformGrid(0, 5, 101)
	sep := make([]float64, len(times))
	for i, tt := range times {
		sep[i] = 1e-4 * math.Exp(2*tt)
	}

	rate := GrowthRate(times, sep)
	if math.Abs(rate-2) > 1e-9 {
		t.Errorf("growth rate %v, want 2", rate)
	}
}

func TestGrowthRateIgnoresBadSamples(t *testing.T) {
	times := []float64{0, 1, 2, 3, 4}
	sep := []float64{1, math.E, 0, math.NaN(), math.Exp(4)}

	rate := GrowthRate(times, sep)
	if math.Abs(rate-1) > 1e-9 {
		t.Errorf("growth rate %v, want 1", rate)
	}
}

func TestSeparationOfIdenticalTrajectories(t *testing.T) {
	tr := dynamics.NewTrajectory([]float64{0, 1})
	tr.States[0] = dynamics.State{1, 2}
	tr.States[1] = dynamics.State{3, 4}

	sep := Separation(tr, tr)
	for i, s := range sep {
		if s != 0 {
			t.Errorf("sample %d: separation %v, want 0", i, s)
		}
	}
}

func TestComponentSeparation(t *testing.T) {
	a := dynamics.NewTrajectory([]float64{0, 1, 2})
	a.States[0] = dynamics.State{1, 10}
	a.States[1] = dynamics.State{2, 20}
	a.States[2] = dynamics.State{3, 30}

	b := dynamics.NewTrajectory([]float64{0, 1})
	b.States[0] = dynamics.State{1.5, 10}
	b.States[1] = dynamics.State{1, 23}

	sep := ComponentSeparation(a, b, 0)
	if len(sep) != 2 {
		t.Fatalf("expected separation truncated to the shorter trajectory, got %d samples", len(sep))
	}
	if sep[0] != 0.5 || sep[1] != 1 {
		t.Errorf("component 0 separation %v, want [0.5 1]", sep)
	}

	sep = ComponentSeparation(a, b, 1)
	if sep[0] != 0 || sep[1] != 3 {
		t.Errorf("component 1 separation %v, want [0 3]", sep)
	}
}

// TestDoublePendulumChaosSensitivity checks the defining chaos property: a
// high-energy release amplifies a 1e-3 angle perturbation by orders of
// magnitude within 8 time units, while a near-equilibrium release keeps a
// 1e-4 perturbation bounded.
func TestDoublePendulumChaosSensitivity(t *testing.T) {
	dp := models.NewDoublePendulum()
	opts := solver.DefaultOptions()
	grid := solver.UniformGrid(0, 8, 801)

	chaotic, err := Compare(dp, grid, dynamics.State{math.Pi / 2, 0, -math.Pi / 2, 0}, 2, 0.001, opts)
	if err != nil {
		t.Fatalf("chaotic pair: %v", err)
	}

	calm, err := Compare(dp, grid, dynamics.State{0, 0, 0, 0}, 2, 0.0001, opts)
	if err != nil {
		t.Fatalf("calm pair: %v", err)
	}

	maxChaotic := 0.0
	for _, s := range chaotic.Separation {
		maxChaotic = math.Max(maxChaotic, s)
	}
	maxCalm := 0.0
	for _, s := range calm.Separation {
		maxCalm = math.Max(maxCalm, s)
	}

	// Chaotic regime: separation saturates near the attractor size,
	// orders of magnitude beyond the initial 1e-3 offset.
	if maxChaotic < 0.5 {
		t.Errorf("chaotic separation only reached %v, expected saturation", maxChaotic)
	}
	// Linear regime: the perturbation oscillates without growing far
	// beyond its initial size.
	if maxCalm > 0.01 {
		t.Errorf("near-equilibrium separation reached %v, expected bounded", maxCalm)
	}

	if chaotic.GrowthRate < 0.5 {
		t.Errorf("chaotic growth rate %v, expected clearly positive", chaotic.GrowthRate)
	}
	if chaotic.GrowthRate < 3*math.Abs(calm.GrowthRate)+0.5 {
		t.Errorf("chaotic rate %v not clearly above calm rate %v",
			chaotic.GrowthRate, calm.GrowthRate)
	}
}

func TestLyapunovPositiveForChaoticRelease(t *testing.T) {
	dp := models.NewDoublePendulum()
	integ := solver.NewRK4()

	lam := LyapunovExponent(dp, integ, dynamics.State{math.Pi / 2, 0, -math.Pi / 2, 0}, 0.001, 20, 1e-8)
	if lam <= 0 {
		t.Errorf("Lyapunov exponent %v, expected positive for chaotic release", lam)
	}
}

func TestPhasePortraitASCII(t *testing.T) {
	components := [][]float64{
		{-1, 0, 1},
		{1, 0, -1},
	}
	p := NewPhasePortrait(components, 0, 1)
	if p == nil {
		t.Fatal("expected portrait")
	}

	out := p.ASCII(20, 10)
	if out == "" {
		t.Fatal("expected non-empty rendering")
	}
	if !containsRune(out, '•') {
		t.Error("expected plotted points in output")
	}
}

func containsRune(s string, r rune) bool {
	for _, c := range s {
		if c == r {
			return true
		}
	}
	return false
}
