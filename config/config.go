// Package config provides configuration loading and access for the
// swarm simulation: embedded defaults overlaid by an optional
// user-supplied YAML file, and conversion into a sim.Config value.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/swarmcore/sim"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters in their
// user-facing (YAML) shape. sim.NewWorld never sees this type
// directly; ToSimConfig projects it down to the plain sim.Config the
// core consumes.
type Config struct {
	World      WorldConfig      `yaml:"world"`
	Agents     AgentsConfig     `yaml:"agents"`
	Steering   SteeringConfig   `yaml:"steering"`
	Integration IntegrationConfig `yaml:"integration"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds world extent and initial population sizing.
type WorldConfig struct {
	Width           float64 `yaml:"width"`
	Height          float64 `yaml:"height"`
	InitialCapacity int     `yaml:"initial_capacity"`
	InitialAgents   int     `yaml:"initial_agents"`
	Seed            uint64  `yaml:"seed"`
	BoundaryMode    string  `yaml:"boundary_mode"` // "wrap" | "reflect" | "clamp"
}

// AgentsConfig holds genome sampling ranges for randomly seeded
// agents.
type AgentsConfig struct {
	SpeedFactorMin float64 `yaml:"speed_factor_min"`
	SpeedFactorMax float64 `yaml:"speed_factor_max"`
	SenseFactorMin float64 `yaml:"sense_factor_min"`
	SenseFactorMax float64 `yaml:"sense_factor_max"`
}

// SteeringConfig holds the Reynolds steering weights and radii.
type SteeringConfig struct {
	SenseRadius                 float64 `yaml:"sense_radius"`
	SeparationRadius             float64 `yaml:"separation_radius"`
	SeparationWeight             float64 `yaml:"separation_weight"`
	AlignmentWeight               float64 `yaml:"alignment_weight"`
	CohesionWeight                float64 `yaml:"cohesion_weight"`
	SeparationCrowdingThreshold   float64 `yaml:"separation_crowding_threshold"`
	SeparationCrowdingBoost       float64 `yaml:"separation_crowding_boost"`
	Mode                          string  `yaml:"mode"` // "prioritized" | "summed_raw"
}

// IntegrationConfig holds motion-integration parameters.
type IntegrationConfig struct {
	TargetSpeed float64 `yaml:"target_speed"`
	MaxSpeed    float64 `yaml:"max_speed"`
	MaxForce    float64 `yaml:"max_force"`
	Friction    float64 `yaml:"friction"`
	Dt          float64 `yaml:"dt"`
}

// TelemetryConfig holds telemetry collection parameters.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window"`
	PerfCollectorWindow int `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Dt32          float32 // Integration.Dt as float32
	CellCount     int     // approximate grid.TotalCells() at the configured SenseRadius
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded
// defaults if path is empty. Must be called before Cfg().
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

// Load loads configuration from a YAML file, merging with embedded
// defaults. If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Dt32 = float32(c.Integration.Dt)

	cols := int((c.World.Width + c.Steering.SenseRadius - 1) / maxFloat64(c.Steering.SenseRadius, 1))
	rows := int((c.World.Height + c.Steering.SenseRadius - 1) / maxFloat64(c.Steering.SenseRadius, 1))
	c.Derived.CellCount = cols * rows
}

func maxFloat64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// boundaryModeFromString maps the YAML boundary_mode string onto a
// sim.BoundaryMode, defaulting to sim.Wrap for an unrecognized value.
func boundaryModeFromString(s string) sim.BoundaryMode {
	switch s {
	case "reflect":
		return sim.Reflect
	case "clamp":
		return sim.Clamp
	default:
		return sim.Wrap
	}
}

// steeringModeFromString maps the YAML mode string onto a
// sim.SteeringMode, defaulting to sim.ModeReynoldsPrioritized.
func steeringModeFromString(s string) sim.SteeringMode {
	if s == "summed_raw" {
		return sim.ModeSummedRaw
	}
	return sim.ModeReynoldsPrioritized
}

// ToSimConfig projects the YAML-facing Config down to the plain
// sim.Config value sim.NewWorld consumes. sim itself never imports
// config nor touches the filesystem; this conversion is the one place
// the two meet.
func (c *Config) ToSimConfig() sim.Config {
	return sim.Config{
		WorldWidth:      float32(c.World.Width),
		WorldHeight:     float32(c.World.Height),
		InitialCapacity: c.World.InitialCapacity,
		BoundaryMode:    boundaryModeFromString(c.World.BoundaryMode),

		TargetSpeed: float32(c.Integration.TargetSpeed),
		MaxSpeed:    float32(c.Integration.MaxSpeed),
		MaxForce:    float32(c.Integration.MaxForce),
		Friction:    float32(c.Integration.Friction),

		SenseRadius:      float32(c.Steering.SenseRadius),
		SeparationRadius: float32(c.Steering.SeparationRadius),

		SeparationWeight: float32(c.Steering.SeparationWeight),
		AlignmentWeight:  float32(c.Steering.AlignmentWeight),
		CohesionWeight:   float32(c.Steering.CohesionWeight),

		SeparationCrowdingThreshold: float32(c.Steering.SeparationCrowdingThreshold),
		SeparationCrowdingBoost:     float32(c.Steering.SeparationCrowdingBoost),

		SteeringMode: steeringModeFromString(c.Steering.Mode),

		GenomeSpeedFactorMin: float32(c.Agents.SpeedFactorMin),
		GenomeSpeedFactorMax: float32(c.Agents.SpeedFactorMax),
		GenomeSenseFactorMin: float32(c.Agents.SenseFactorMin),
		GenomeSenseFactorMax: float32(c.Agents.SenseFactorMax),

		Dt:   c.Derived.Dt32,
		Seed: c.World.Seed,
	}
}

// PeacefulFlocksPreset returns the "peaceful flocks" sim.Config preset
// named in spec.md §6, bypassing YAML entirely — useful for tests and
// quick-start callers that don't need a config file.
func PeacefulFlocksPreset() sim.Config {
	return sim.PeacefulFlocksPreset()
}
