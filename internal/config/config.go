package config

import (
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = 0.01
	DefaultDuration = 10.0
	DefaultAbsTol   = 1e-9
	DefaultRelTol   = 1e-9
)

type Config struct {
	Model     string          `yaml:"model"`
	Dt        float64         `yaml:"dt"`
	Duration  float64         `yaml:"duration"`
	AbsTol    float64         `yaml:"abstol"`
	RelTol    float64         `yaml:"reltol"`
	InitState InitStateConfig `yaml:"init_state"`
	Params    ParamsConfig    `yaml:"params"`
}

// InitStateConfig covers both models; only the fields matching the
// chosen model are used.
type InitStateConfig struct {
	// two-body positions and velocities
	X1  float64 `yaml:"x1"`
	Y1  float64 `yaml:"y1"`
	VX1 float64 `yaml:"vx1"`
	VY1 float64 `yaml:"vy1"`
	X2  float64 `yaml:"x2"`
	Y2  float64 `yaml:"y2"`
	VX2 float64 `yaml:"vx2"`
	VY2 float64 `yaml:"vy2"`

	// double-pendulum angles (radians from vertical) and rates
	Phi      float64 `yaml:"phi"`
	PhiDot   float64 `yaml:"phidot"`
	Theta    float64 `yaml:"theta"`
	ThetaDot float64 `yaml:"thetadot"`
}

// ParamsConfig holds model parameters; zero values fall back to the
// model's defaults.
type ParamsConfig struct {
	M1      float64 `yaml:"m1"`
	M2      float64 `yaml:"m2"`
	G       float64 `yaml:"g"`
	L1      float64 `yaml:"l1"`
	L2      float64 `yaml:"l2"`
	Gravity float64 `yaml:"gravity"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:    "double_pendulum",
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		AbsTol:   DefaultAbsTol,
		RelTol:   DefaultRelTol,
		InitState: InitStateConfig{
			Phi:   math.Pi / 2,
			Theta: -math.Pi / 2,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// GetInitState maps the named fields onto the model's state vector
// ordering.
func (c *Config) GetInitState() []float64 {
	switch c.Model {
	case "twobody":
		return []float64{
			c.InitState.X1, c.InitState.VX1, c.InitState.Y1, c.InitState.VY1,
			c.InitState.X2, c.InitState.VX2, c.InitState.Y2, c.InitState.VY2,
		}
	case "double_pendulum":
		return []float64{c.InitState.Phi, c.InitState.PhiDot, c.InitState.Theta, c.InitState.ThetaDot}
	default:
		return nil
	}
}

// GetParams returns only the explicitly set parameters, keyed the way
// the models' SetParam expects.
func (c *Config) GetParams() map[string]float64 {
	out := make(map[string]float64)
	set := func(name string, v float64) {
		if v != 0 {
			out[name] = v
		}
	}
	set("m1", c.Params.M1)
	set("m2", c.Params.M2)
	switch c.Model {
	case "twobody":
		set("g", c.Params.G)
	case "double_pendulum":
		set("l1", c.Params.L1)
		set("l2", c.Params.L2)
		set("g", c.Params.Gravity)
	}
	return out
}
