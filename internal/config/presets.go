package config

import "math"

var Presets = map[string]map[string]*Config{
	"twobody": {
		// Satellite released sideways around a heavy central mass.
		"heavy": {
			Model: "twobody", Dt: 0.01, Duration: 40.0, AbsTol: DefaultAbsTol, RelTol: DefaultRelTol,
			InitState: InitStateConfig{X1: 0, Y1: 0, VX1: 0, VY1: 0, X2: 5, Y2: 0, VX2: 0, VY2: 4.5},
			Params:    ParamsConfig{M1: 10000, M2: 1, G: 0.01},
		},
		// Equal masses orbiting their common barycenter.
		"binary": {
			Model: "twobody", Dt: 0.01, Duration: 30.0, AbsTol: DefaultAbsTol, RelTol: DefaultRelTol,
			InitState: InitStateConfig{X1: -1, Y1: 0, VX1: 0, VY1: -0.35, X2: 1, Y2: 0, VX2: 0, VY2: 0.35},
			Params:    ParamsConfig{M1: 1, M2: 1, G: 1},
		},
		"ellipse": {
			Model: "twobody", Dt: 0.01, Duration: 60.0, AbsTol: DefaultAbsTol, RelTol: DefaultRelTol,
			InitState: InitStateConfig{X1: 0, Y1: 0, VX1: 0, VY1: 0, X2: 5, Y2: 0, VX2: 0, VY2: 3.0},
			Params:    ParamsConfig{M1: 10000, M2: 1, G: 0.01},
		},
	},
	"double_pendulum": {
		// Horizontal release, the classic chaotic configuration.
		"chaotic": {
			Model: "double_pendulum", Dt: 0.005, Duration: 30.0, AbsTol: DefaultAbsTol, RelTol: DefaultRelTol,
			InitState: InitStateConfig{Phi: math.Pi / 2, Theta: -math.Pi / 2},
		},
		"gentle": {
			Model: "double_pendulum", Dt: 0.01, Duration: 30.0, AbsTol: DefaultAbsTol, RelTol: DefaultRelTol,
			InitState: InitStateConfig{Phi: 0.3, Theta: 0.3},
		},
		// Near-inverted start with enough energy to flip the inner arm.
		"flip": {
			Model: "double_pendulum", Dt: 0.005, Duration: 60.0, AbsTol: DefaultAbsTol, RelTol: DefaultRelTol,
			InitState: InitStateConfig{Phi: 3.0, Theta: 3.0},
		},
	},
}

func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	return names
}
