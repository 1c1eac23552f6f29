// Package sim orchestrates sampled integrations: it builds the time grid,
// drives the adaptive solver in cancellable chunks, feeds metrics, and
// collects results for storage and plotting.
package sim

import (
	"context"
	"fmt"

	"github.com/jmkerr/odelab/internal/dynamics"
	"github.com/jmkerr/odelab/internal/solver"
)

// chunkSamples bounds how many grid points are integrated between
// context-cancellation checks.
const chunkSamples = 256

// Config describes one run: a uniform sample grid over [0, Duration] with
// spacing Dt, integrated under the given tolerances.
type Config struct {
	Dt       float64
	Duration float64
	AbsTol   float64
	RelTol   float64
}

func DefaultConfig() Config {
	return Config{
		Dt:       0.01,
		Duration: 10.0,
		AbsTol:   1e-9,
		RelTol:   1e-9,
	}
}

// Result is the outcome of one run. Trajectory is always fully allocated;
// Err records a mid-run integration failure, after which samples are NaN.
type Result struct {
	Trajectory *dynamics.Trajectory
	Metrics    map[string]float64
	Err        error
}

type Simulator struct {
	sys     dynamics.System
	metrics []dynamics.Metric
}

func New(sys dynamics.System) *Simulator {
	return &Simulator{sys: sys}
}

func (s *Simulator) AddMetric(m dynamics.Metric) { s.metrics = append(s.metrics, m) }

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("sim: dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("sim: duration must be positive, got %f", cfg.Duration)
	}
	if cfg.Duration < cfg.Dt {
		return fmt.Errorf("sim: duration %f shorter than dt %f", cfg.Duration, cfg.Dt)
	}
	return nil
}

// Run integrates from x0 over the configured grid. The grid is processed
// in chunks so a cancelled context stops the run between chunks; the
// partial result produced so far is returned alongside ctx.Err().
func (s *Simulator) Run(ctx context.Context, x0 dynamics.State, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	samples := int(cfg.Duration/cfg.Dt) + 1
	grid := solver.UniformGrid(0, cfg.Duration, samples)

	opts := solver.DefaultOptions()
	if cfg.AbsTol > 0 {
		opts.AbsTol = cfg.AbsTol
	}
	if cfg.RelTol > 0 {
		opts.RelTol = cfg.RelTol
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	result := &Result{
		Trajectory: dynamics.NewTrajectory(grid),
		Metrics:    make(map[string]float64),
	}
	result.Trajectory.States[0] = x0.Clone()
	s.observe(x0, grid[0])

	x := x0.Clone()
	done := 0 // index of the last integrated grid point

	for done < len(grid)-1 {
		select {
		case <-ctx.Done():
			s.padNaN(result, done+1, len(x0))
			s.finish(result)
			return result, ctx.Err()
		default:
		}

		end := done + chunkSamples
		if end > len(grid)-1 {
			end = len(grid) - 1
		}

		chunk, err := solver.SampleAt(s.sys, grid[done:end+1], x, opts)
		if chunk == nil {
			return nil, err
		}
		for i := 1; i < chunk.Len(); i++ {
			result.Trajectory.States[done+i] = chunk.States[i]
			if chunk.States[i].IsValid() {
				s.observe(chunk.States[i], chunk.Times[i])
			}
		}
		if err != nil {
			// Integration failure: the rest of the grid stays NaN.
			s.padNaN(result, end+1, len(x0))
			result.Err = err
			s.finish(result)
			return result, nil
		}

		x = chunk.Final().Clone()
		done = end
	}

	s.finish(result)
	return result, nil
}

func (s *Simulator) observe(x dynamics.State, t float64) {
	for _, m := range s.metrics {
		m.Observe(x, t)
	}
}

func (s *Simulator) padNaN(result *Result, from, dim int) {
	for i := from; i < result.Trajectory.Len(); i++ {
		if result.Trajectory.States[i] == nil {
			result.Trajectory.States[i] = dynamics.NaNState(dim)
		}
	}
}

func (s *Simulator) finish(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}
