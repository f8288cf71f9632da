// Package config holds the fixed execution parameters of an optimization
// run. Values are decided at startup, either from the compiled defaults or a
// YAML file, and never renegotiated while the loop runs.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full parameter set for a stress minimization run. The
// defaults reproduce the L-beam study.
type Config struct {
	// Mesh
	NumElemX int `yaml:"num_elem_x"`
	NumElemY int `yaml:"num_elem_y"`

	// Material
	YoungsModulus float64 `yaml:"youngs_modulus"`
	PoissonRatio  float64 `yaml:"poisson_ratio"`
	Density       float64 `yaml:"density"`

	// Total point load in y, split across the matched nodes.
	LoadMagnitude float64 `yaml:"load_magnitude"`

	// Optimization
	MaxIterations int     `yaml:"max_iterations"`
	MaxArea       float64 `yaml:"max_area"`
	PNorm         float64 `yaml:"p_norm"`
	MoveLimit     float64 `yaml:"move_limit"`
	TrustRegion   float64 `yaml:"trust_region"`
	Radius        float64 `yaml:"least_squares_radius"`

	// Level set
	BandWidth  float64 `yaml:"band_width"`
	HoleRadius float64 `yaml:"hole_radius"`

	// Output
	ResultsDir string `yaml:"results_dir"`
	Verbose    bool   `yaml:"verbose"`
}

// Default returns the L-beam study parameters.
func Default() Config {
	return Config{
		NumElemX:      100,
		NumElemY:      100,
		YoungsModulus: 1,
		PoissonRatio:  0.3,
		Density:       1,
		LoadMagnitude: -3,
		MaxIterations: 500,
		MaxArea:       0.4,
		PNorm:         6,
		MoveLimit:     0.5,
		TrustRegion:   0.15,
		Radius:        2,
		BandWidth:     6,
		HoleRadius:    10,
		ResultsDir:    "results",
		Verbose:       true,
	}
}

// Load reads a YAML file over the defaults, so a partial file overrides only
// what it names.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects parameter combinations the loop cannot run with.
func (c Config) Validate() error {
	if c.NumElemX <= 0 || c.NumElemY <= 0 {
		return fmt.Errorf("mesh dimensions must be positive: %dx%d", c.NumElemX, c.NumElemY)
	}
	if c.YoungsModulus <= 0 {
		return fmt.Errorf("Young's modulus must be positive, got %g", c.YoungsModulus)
	}
	if c.PoissonRatio <= -1 || c.PoissonRatio >= 0.5 {
		return fmt.Errorf("Poisson ratio %g outside (-1, 0.5)", c.PoissonRatio)
	}
	if c.MaxIterations <= 0 {
		return fmt.Errorf("max iterations must be positive, got %d", c.MaxIterations)
	}
	if c.MaxArea <= 0 || c.MaxArea > 1 {
		return fmt.Errorf("max area %g outside (0, 1]", c.MaxArea)
	}
	if c.PNorm <= 1 {
		return fmt.Errorf("p-norm exponent must exceed 1, got %g", c.PNorm)
	}
	if c.MoveLimit <= 0 || c.TrustRegion <= 0 {
		return fmt.Errorf("move limits must be positive (global %g, trust region %g)", c.MoveLimit, c.TrustRegion)
	}
	if c.TrustRegion > c.MoveLimit {
		return fmt.Errorf("trust region %g exceeds global move limit %g", c.TrustRegion, c.MoveLimit)
	}
	if c.Radius <= 0 {
		return fmt.Errorf("least squares radius must be positive, got %g", c.Radius)
	}
	if c.BandWidth <= 0 {
		return fmt.Errorf("band width must be positive, got %g", c.BandWidth)
	}
	return nil
}
