// Package sim implements the per-tick simulation pipeline: Sense
// (neighbor aggregation), Behavior (steering), Integrate (velocity and
// position update), and the World orchestrator that sequences them.
//
// Grounded on the teacher's game/game.go (simulationStep sequencing),
// systems/behavior.go (steering) and systems/physics.go (integration),
// generalized from ECS-component mutation into operations over plain
// agent.Store columns per spec.md's struct-of-arrays data model.
package sim

// BoundaryMode selects the world-edge policy applied during Integrate.
type BoundaryMode int

const (
	// Wrap treats the world as a torus.
	Wrap BoundaryMode = iota
	// Reflect bounces an agent back into bounds, negating the
	// offending velocity component.
	Reflect
	// Clamp pins an agent to the boundary and zeroes the offending
	// velocity component.
	Clamp
)

// SteeringMode selects how per-rule steering vectors combine into the
// final force (spec.md §9 allows offering the simpler summed-raw-force
// variant as a non-default option).
type SteeringMode int

const (
	// ModeReynoldsPrioritized applies the prioritized-add budget rule
	// of spec.md §4.E. This is the default used by every preset.
	ModeReynoldsPrioritized SteeringMode = iota
	// ModeSummedRaw simply sums the three rules' desired-minus-current
	// steering vectors with no priority order and no per-rule budget,
	// then clamps only the summed vector to MaxForce, matching the
	// teacher's un-prioritized raw-force variant. Offered as an option,
	// never the default.
	ModeSummedRaw
)

// Config holds every tunable recognized by the core (spec.md §6). It
// is a plain value consumed by NewWorld; loading it from YAML or a
// flag set is an ambient/CLI concern handled by the config package and
// cmd/ binaries, not by sim itself.
type Config struct {
	WorldWidth, WorldHeight float32
	InitialCapacity         int
	BoundaryMode            BoundaryMode

	TargetSpeed float32
	MaxSpeed    float32
	MaxForce    float32
	Friction    float32

	SenseRadius      float32
	SeparationRadius float32

	SeparationWeight float32
	AlignmentWeight  float32
	CohesionWeight   float32

	SeparationCrowdingThreshold float32
	SeparationCrowdingBoost     float32

	SteeringMode SteeringMode

	// GenomeSpeedFactorMin/Max and GenomeSenseFactorMin/Max bound the
	// uniform ranges World.AddRandomAgent samples a new agent's genome
	// from (spec.md §6's agents.speed_factor_*/sense_factor_* knobs).
	GenomeSpeedFactorMin float32
	GenomeSpeedFactorMax float32
	GenomeSenseFactorMin float32
	GenomeSenseFactorMax float32

	Dt   float32
	Seed uint64
}

// PeacefulFlocksPreset returns balanced steering weights suitable for
// visualization, matching the "peaceful flocks" preset named in
// spec.md §6.
func PeacefulFlocksPreset() Config {
	return Config{
		WorldWidth:      1000,
		WorldHeight:     1000,
		InitialCapacity: 1024,
		BoundaryMode:    Wrap,

		TargetSpeed: 60,
		MaxSpeed:    90,
		MaxForce:    40,
		Friction:    0.98,

		SenseRadius:      40,
		SeparationRadius: 16,

		SeparationWeight: 1.5,
		AlignmentWeight:  1.0,
		CohesionWeight:   1.0,

		SeparationCrowdingThreshold: 6,
		SeparationCrowdingBoost:     1.8,

		SteeringMode: ModeReynoldsPrioritized,

		GenomeSpeedFactorMin: 0.5,
		GenomeSpeedFactorMax: 2.0,
		GenomeSenseFactorMin: 0.5,
		GenomeSenseFactorMax: 2.0,

		Dt:   1.0 / 60.0,
		Seed: 42,
	}
}
