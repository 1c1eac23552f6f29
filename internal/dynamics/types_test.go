package dynamics

import (
	"math"
	"testing"
)

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		valid bool
	}{
		{"empty", State{}, true},
		{"normal", State{1.0, 2.0, 3.0}, true},
		{"zeros", State{0.0, 0.0}, true},
		{"with NaN", State{1.0, math.NaN()}, false},
		{"with +Inf", State{1.0, math.Inf(1)}, false},
		{"with -Inf", State{1.0, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestState_Norm(t *testing.T) {
	tests := []struct {
		state    State
		expected float64
	}{
		{State{3, 4}, 5.0},
		{State{1, 0}, 1.0},
		{State{0, 0}, 0.0},
		{State{1, 1, 1, 1}, 2.0},
	}

	for _, tt := range tests {
		if got := tt.state.Norm(); math.Abs(got-tt.expected) > 1e-10 {
			t.Errorf("Norm(%v) = %v, want %v", tt.state, got, tt.expected)
		}
	}
}

func TestState_CloneIndependence(t *testing.T) {
	a := State{1, 2, 3}
	b := a.Clone()
	b[0] = 99

	if a[0] != 1 {
		t.Errorf("Clone aliases original: %v", a)
	}
}

func TestState_Sub(t *testing.T) {
	a := State{4, 5, 6}
	b := State{1, 2, 3}

	diff := a.Sub(b)
	if diff[0] != 3 || diff[1] != 3 || diff[2] != 3 {
		t.Errorf("Sub failed: got %v", diff)
	}
}

func TestState_Scale(t *testing.T) {
	a := State{1, -2, 4}

	scaled := a.Scale(0.5)
	if scaled[0] != 0.5 || scaled[1] != -1 || scaled[2] != 2 {
		t.Errorf("Scale failed: got %v", scaled)
	}
	if a[0] != 1 {
		t.Errorf("Scale mutated receiver: %v", a)
	}
}

func TestNaNState(t *testing.T) {
	s := NaNState(4)
	if len(s) != 4 {
		t.Fatalf("expected length 4, got %d", len(s))
	}
	if s.IsValid() {
		t.Error("NaNState should not be valid")
	}
}

func TestTrajectory_Component(t *testing.T) {
	tr := NewTrajectory([]float64{0, 1, 2})
	tr.States[0] = State{1, 10}
	tr.States[1] = State{2, 20}
	tr.States[2] = State{3, 30}

	c0 := tr.Component(0)
	c1 := tr.Component(1)

	if c0[0] != 1 || c0[1] != 2 || c0[2] != 3 {
		t.Errorf("Component(0) = %v", c0)
	}
	if c1[0] != 10 || c1[1] != 20 || c1[2] != 30 {
		t.Errorf("Component(1) = %v", c1)
	}

	cols := tr.Components()
	if len(cols) != 2 {
		t.Fatalf("expected 2 component sequences, got %d", len(cols))
	}
	if len(cols[0]) != tr.Len() {
		t.Errorf("component length %d != grid length %d", len(cols[0]), tr.Len())
	}
}

func TestTrajectory_GridCopied(t *testing.T) {
	grid := []float64{0, 0.5, 1}
	tr := NewTrajectory(grid)
	grid[0] = 42

	if tr.Times[0] != 0 {
		t.Error("trajectory aliases caller's grid")
	}
}
