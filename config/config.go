// Package config provides configuration loading and access for the visualization.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation and display configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Tunnel    TunnelConfig    `yaml:"tunnel"`
	Particles ParticlesConfig `yaml:"particles"`
	Flow      FlowConfig      `yaml:"flow"`
	Slice     SliceConfig     `yaml:"slice"`
	Kernel    KernelConfig    `yaml:"kernel"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// TunnelConfig holds the bounding volume for particle recycling.
// EntryX must be less than ExitX.
type TunnelConfig struct {
	EntryX     float64 `yaml:"entry_x"`
	ExitX      float64 `yaml:"exit_x"`
	HalfWidth  float64 `yaml:"half_width"`
	HalfHeight float64 `yaml:"half_height"`
}

// ParticlesConfig holds advection parameters.
type ParticlesConfig struct {
	Count     int     `yaml:"count"`
	MaxCount  int     `yaml:"max_count"` // Upper bound for the count slider
	DT        float64 `yaml:"dt"`
	Smoothing float64 `yaml:"smoothing"` // Fraction of old velocity retained per tick
}

// FlowConfig holds the initial flow conditions and obstacle.
type FlowConfig struct {
	FreeStream float64 `yaml:"free_stream"`
	Density    float64 `yaml:"density"`
	Radius     float64 `yaml:"radius"`   // Characteristic obstacle scale; must be > 0
	Obstacle   string  `yaml:"obstacle"` // sphere | cylinder | airfoil
}

// SliceConfig holds slice-plane visualization parameters.
type SliceConfig struct {
	Resolution int     `yaml:"resolution"`
	Extent     float64 `yaml:"extent"` // Half-size of the sampled square
	Plane      string  `yaml:"plane"`  // xy | xz | yz
	Field      string  `yaml:"field"`  // speed | pressure
	Enabled    bool    `yaml:"enabled"`
}

// KernelConfig holds batch kernel tuning parameters.
type KernelConfig struct {
	ParallelThreshold int `yaml:"parallel_threshold"` // Minimum point count for worker dispatch
	FailureThreshold  int `yaml:"failure_threshold"`  // Consecutive kernel failures before permanent fallback
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"` // Seconds per stats window
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32        float32 // Particles.DT as float32
	Smoothing32 float32 // Particles.Smoothing as float32
	ScreenW32   float32
	ScreenH32   float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects configurations the simulation cannot run with.
func (c *Config) validate() error {
	if c.Tunnel.EntryX >= c.Tunnel.ExitX {
		return fmt.Errorf("config: tunnel entry_x (%g) must be less than exit_x (%g)",
			c.Tunnel.EntryX, c.Tunnel.ExitX)
	}
	if c.Flow.Radius <= 0 {
		return fmt.Errorf("config: flow radius must be positive, got %g", c.Flow.Radius)
	}
	if c.Particles.Count <= 0 {
		return fmt.Errorf("config: particle count must be positive, got %d", c.Particles.Count)
	}
	// The slice lattice spans [-extent, extent] with res-1 steps, so
	// anything below 2 cannot form a grid.
	if c.Slice.Resolution < 2 {
		return fmt.Errorf("config: slice resolution must be at least 2, got %d", c.Slice.Resolution)
	}
	switch c.Flow.Obstacle {
	case "sphere", "cylinder", "airfoil":
	default:
		return fmt.Errorf("config: unknown obstacle %q", c.Flow.Obstacle)
	}
	switch c.Slice.Plane {
	case "xy", "xz", "yz":
	default:
		return fmt.Errorf("config: unknown slice plane %q", c.Slice.Plane)
	}
	switch c.Slice.Field {
	case "speed", "pressure":
	default:
		return fmt.Errorf("config: unknown slice field %q", c.Slice.Field)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Particles.DT)
	c.Derived.Smoothing32 = float32(c.Particles.Smoothing)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	if c.Particles.MaxCount < c.Particles.Count {
		c.Particles.MaxCount = c.Particles.Count
	}
	if c.Kernel.FailureThreshold < 1 {
		c.Kernel.FailureThreshold = 3
	}
	if c.Kernel.ParallelThreshold < 1 {
		c.Kernel.ParallelThreshold = 1024
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
