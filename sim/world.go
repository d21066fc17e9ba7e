package sim

import (
	"fmt"

	"github.com/pthm-cable/swarmcore/agent"
	"github.com/pthm-cable/swarmcore/grid"
	"github.com/pthm-cable/swarmcore/prng"
)

// World owns the agent store, spatial grid, sense aggregates, and the
// three pipeline stages, and sequences one tick end to end per
// spec.md §4.G: zero forces, rebuild the grid, Sense, Behavior,
// Integrate, advance tick count.
//
// Grounded on the teacher's game/game.go Game.simulationStep, which
// sequences the same five phases over ECS queries; World replaces
// queries with plain index loops bounded by Store.Count().
type World struct {
	cfg   Config
	store *agent.Store
	grid  *grid.Grid
	agg   *Aggregates
	rng   *prng.RNG

	sense     *Sense
	behavior  *Behavior
	integrate *Integrate

	tick    uint64
	ticking bool
}

// NewWorld constructs a World from cfg. Returns an error if cfg's grid
// dimensions are invalid.
func NewWorld(cfg Config) (*World, error) {
	cellSize := cfg.SenseRadius
	if cellSize <= 0 {
		cellSize = 1
	}
	g, err := grid.New(cellSize, cfg.WorldWidth, cfg.WorldHeight, cfg.InitialCapacity)
	if err != nil {
		return nil, fmt.Errorf("sim: new world: %w", err)
	}

	w := &World{
		cfg:       cfg,
		store:     agent.NewStore(cfg.InitialCapacity),
		grid:      g,
		agg:       NewAggregates(cfg.InitialCapacity),
		rng:       prng.New(cfg.Seed),
		sense:     NewSense(cfg.SenseRadius, cfg.SeparationRadius),
		behavior:  NewBehavior(cfg),
		integrate: NewIntegrate(cfg),
	}
	return w, nil
}

// MustNewWorld is like NewWorld but panics on error, for callers such
// as tests that treat an invalid Config as fatal (mirroring
// config.MustInit). cmd/swarmsim calls NewWorld and handles the error.
func MustNewWorld(cfg Config) *World {
	w, err := NewWorld(cfg)
	if err != nil {
		panic(fmt.Sprintf("sim: failed to create world: %v", err))
	}
	return w
}

// Store exposes the underlying agent store for read access and seeding.
func (w *World) Store() *agent.Store { return w.store }

// Grid exposes the underlying spatial index, valid only between ticks.
func (w *World) Grid() *grid.Grid { return w.grid }

// Tick returns the number of completed ticks.
func (w *World) Tick() uint64 { return w.tick }

// RNG returns the world's deterministic generator, for callers that
// need to seed new agents reproducibly via AddRandomAgent.
func (w *World) RNG() *prng.RNG { return w.rng }

// AddAgent adds an agent with explicit state and returns its id.
func (w *World) AddAgent(x, y, vx, vy float32, group uint16, genome agent.Genome) int {
	return w.store.Add(x, y, vx, vy, group, agent.ClampedGenome(genome))
}

// AddRandomAgent adds an agent at a uniformly sampled position with a
// uniformly sampled genome, drawing from the world's own RNG so the
// whole run stays reproducible from a single seed. Genome ranges come
// from cfg's GenomeSpeedFactor*/GenomeSenseFactor* fields.
func (w *World) AddRandomAgent(group uint16) int {
	gr := agent.GenomeRange{
		SpeedFactorMin: w.cfg.GenomeSpeedFactorMin,
		SpeedFactorMax: w.cfg.GenomeSpeedFactorMax,
		SenseFactorMin: w.cfg.GenomeSenseFactorMin,
		SenseFactorMax: w.cfg.GenomeSenseFactorMax,
	}
	return w.store.AddRandom(w.rng, w.cfg.WorldWidth, w.cfg.WorldHeight, group, gr)
}

// Step advances the simulation by exactly one tick of cfg.Dt:
//
//  1. zero every agent's force accumulator
//  2. rebuild the spatial grid from current positions
//  3. Sense: aggregate neighbor info per agent
//  4. Behavior: convert aggregates into a steering force
//  5. Integrate: apply force to velocity, velocity to position, and
//     the boundary policy
//
// Step panics if called reentrantly (e.g. from within a callback
// triggered by a previous, still-running Step), since the pipeline
// mutates store columns in place and is not safe for concurrent or
// nested use on the same World.
func (w *World) Step() {
	if w.ticking {
		panic("sim: World.Step called reentrantly")
	}
	w.ticking = true
	defer func() { w.ticking = false }()

	count := w.store.Count()

	w.store.ZeroForces()
	w.grid.Rebuild(w.store.X(), w.store.Y(), count)
	w.sense.Run(w.store, w.grid, w.agg, count)
	w.behavior.Run(w.store, w.agg, count)
	w.integrate.Run(w.store, count)

	w.tick++
}

// Stats reports current spatial-grid occupancy statistics, useful for
// telemetry and tuning cell size against population density.
func (w *World) Stats() grid.Stats {
	return w.grid.Stats(w.store.Count())
}
