package dynamics

// Trajectory holds states sampled at the requested times of one integration
// call. Times and States always have equal length; the trajectory is owned
// by the caller once returned and is never mutated afterwards.
type Trajectory struct {
	Times  []float64
	States []State
}

func NewTrajectory(times []float64) *Trajectory {
	return &Trajectory{
		Times:  append([]float64(nil), times...),
		States: make([]State, len(times)),
	}
}

func (tr *Trajectory) Len() int { return len(tr.Times) }

// Component extracts one state component as a time series, in the fixed
// field order of the model that produced the trajectory.
func (tr *Trajectory) Component(i int) []float64 {
	out := make([]float64, len(tr.States))
	for k, s := range tr.States {
		if i < len(s) {
			out[k] = s[i]
		}
	}
	return out
}

// Components splits the trajectory into per-component sequences,
// one slice per state dimension.
func (tr *Trajectory) Components() [][]float64 {
	if len(tr.States) == 0 {
		return nil
	}
	n := len(tr.States[0])
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		out[i] = tr.Component(i)
	}
	return out
}

// Final returns the last sampled state.
func (tr *Trajectory) Final() State {
	if len(tr.States) == 0 {
		return nil
	}
	return tr.States[len(tr.States)-1]
}
