// Package dynamics provides core primitives for simulating autonomous
// classical-mechanics ODE systems.
//
// The package defines the fundamental types shared by the rest of the
// repository:
//
//   - [State]: vector of generalized coordinates and velocities
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator]: fixed-step numerical integrator interface
//   - [AdaptiveIntegrator]: integrator with embedded error control
//   - [Trajectory]: states sampled on a caller-supplied time grid
//
// # Example
//
//	sys := models.NewDoublePendulum()
//	grid := solver.UniformGrid(0, 10, 1001)
//	traj, _ := solver.SampleAt(sys, grid, sys.DefaultState(), solver.DefaultOptions())
//
// # Thread Safety
//
// Systems and integrators hold no mutable shared state across calls, so
// independent integrations may run concurrently. A single integrator
// instance must not be shared between goroutines.
package dynamics
