package sim

import (
	"context"
	"math"
	"testing"

	"github.com/jmkerr/odelab/internal/dynamics"
	"github.com/jmkerr/odelab/internal/models"
)

type decaySystem struct{}

func (d *decaySystem) Derive(x dynamics.State, t float64) dynamics.State {
	return dynamics.State{-x[0]}
}

func (d *decaySystem) Dim() int { return 1 }

func TestSimulatorRun(t *testing.T) {
	s := New(&decaySystem{})

	cfg := Config{Dt: 0.1, Duration: 1.0, AbsTol: 1e-9, RelTol: 1e-9}
	x0 := dynamics.State{1.0}

	result, err := s.Run(context.Background(), x0, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Trajectory.Len() != 11 {
		t.Errorf("expected 11 samples, got %d", result.Trajectory.Len())
	}

	final := result.Trajectory.Final()[0]
	want := math.Exp(-1.0)
	if math.Abs(final-want) > 1e-6 {
		t.Errorf("final state %.9f, want %.9f", final, want)
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	s := New(&decaySystem{})

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Duration: 1.0}},
		{"negative dt", Config{Dt: -0.1, Duration: 1.0}},
		{"zero duration", Config{Dt: 0.1, Duration: 0}},
		{"negative duration", Config{Dt: 0.1, Duration: -1.0}},
		{"duration below dt", Config{Dt: 0.5, Duration: 0.1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Run(context.Background(), dynamics.State{1.0}, tt.cfg)
			if err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

type countMetric struct {
	count int
	sum   float64
}

func (c *countMetric) Name() string { return "mean" }
func (c *countMetric) Observe(x dynamics.State, t float64) {
	c.count++
	c.sum += x[0]
}
func (c *countMetric) Value() float64 {
	if c.count == 0 {
		return 0
	}
	return c.sum / float64(c.count)
}
func (c *countMetric) Reset() {
	c.count = 0
	c.sum = 0
}

func TestSimulatorMetrics(t *testing.T) {
	s := New(&decaySystem{})

	metric := &countMetric{}
	s.AddMetric(metric)

	cfg := Config{Dt: 0.1, Duration: 1.0}
	result, err := s.Run(context.Background(), dynamics.State{1.0}, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, ok := result.Metrics["mean"]; !ok {
		t.Error("metric not found in result")
	}
	if metric.count != 11 {
		t.Errorf("expected 11 observations, got %d", metric.count)
	}
}

func TestSimulatorCancelledContext(t *testing.T) {
	s := New(&decaySystem{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Long enough grid that at least one chunk boundary is hit.
	cfg := Config{Dt: 0.001, Duration: 10.0}
	result, err := s.Run(ctx, dynamics.State{1.0}, cfg)
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result == nil || result.Trajectory.Len() != 10001 {
		t.Fatal("expected fully allocated partial trajectory")
	}
	if !math.IsNaN(result.Trajectory.Final()[0]) {
		t.Error("expected NaN padding past the cancellation point")
	}
}

func TestSimulatorSingularRunPadsNaN(t *testing.T) {
	tb := &models.TwoBody{M1: 1, M2: 1, G: 1}
	s := New(tb)

	// Head-on collision course.
	x0 := dynamics.State{-1, 1, 0, 0, 1, -1, 0, 0}
	cfg := Config{Dt: 0.01, Duration: 5.0}

	result, err := s.Run(context.Background(), x0, cfg)
	if err != nil {
		t.Fatalf("run returned hard error: %v", err)
	}
	if result.Err == nil {
		t.Fatal("expected recorded integration failure near collision")
	}
	if !math.IsNaN(result.Trajectory.Final()[0]) {
		t.Error("expected NaN samples after the failure point")
	}
	if !result.Trajectory.States[0].IsValid() {
		t.Error("expected valid initial sample")
	}
}

func TestEnsemblePerturbsInitialConditions(t *testing.T) {
	dp := models.NewDoublePendulum()
	e := NewEnsemble(dp, 3, 0, 0.01)

	cfg := Config{Dt: 0.1, Duration: 1.0}
	results, err := e.Run(context.Background(), dp.DefaultState(), cfg)
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	base := results[0].Trajectory.States[0][0]
	for i := 1; i < 3; i++ {
		got := results[i].Trajectory.States[0][0]
		want := base + float64(i)*0.01
		if math.Abs(got-want) > 1e-12 {
			t.Errorf("run %d initial angle %v, want %v", i, got, want)
		}
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	names := r.ListModels()
	if len(names) != 2 {
		t.Fatalf("expected 2 models, got %v", names)
	}

	for _, name := range names {
		sys, err := r.GetModel(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		x0, err := r.DefaultState(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(x0) != sys.Dim() {
			t.Errorf("%s: default state dim %d, system dim %d", name, len(x0), sys.Dim())
		}
		if len(r.DefaultMetrics(sys)) == 0 {
			t.Errorf("%s: expected default metrics", name)
		}
	}

	if _, err := r.GetModel("lorenz"); err == nil {
		t.Error("expected error for unknown model")
	}
}
