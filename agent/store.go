// Package agent owns the parallel column arrays that back every live
// agent in a simulation. It mirrors the teacher's per-attribute
// component structs (components/*.go), but stores them columnar
// (struct-of-arrays) instead of per-entity, as the core's hot path
// requires cache-friendly sequential scans over tens of thousands of
// agents rather than archetype/entity indirection.
package agent

import "github.com/pthm-cable/swarmcore/prng"

// Store owns every agent column. All columns share length Cap() and
// grow together, in lockstep, only from Add/AddRandom.
type Store struct {
	x, y   []float32
	vx, vy []float32
	fx, fy []float32
	state  []State
	group  []uint16
	genome []Genome

	count int
}

// NewStore creates a Store with the given initial column capacity.
// Capacity must be >= 0; a capacity of 0 is valid and grows on first
// Add.
func NewStore(initialCapacity int) *Store {
	if initialCapacity < 0 {
		initialCapacity = 0
	}
	s := &Store{}
	s.grow(initialCapacity)
	return s
}

// Count returns the number of live-or-not agent slots currently in
// use (i.e. the high-water mark of Add calls, not the number with
// Dead unset — the core never recycles slots on its own).
func (s *Store) Count() int {
	return s.count
}

// Cap returns the current column capacity.
func (s *Store) Cap() int {
	return len(s.x)
}

// grow reallocates every column in lockstep to at least n, preserving
// existing contents. Column views obtained before a growing call are
// invalidated, per the no-reference-outlives-a-tick contract.
func (s *Store) grow(n int) {
	if n <= len(s.x) {
		return
	}
	grown := func(old []float32) []float32 {
		next := make([]float32, n)
		copy(next, old)
		return next
	}
	s.x = grown(s.x)
	s.y = grown(s.y)
	s.vx = grown(s.vx)
	s.vy = grown(s.vy)
	s.fx = grown(s.fx)
	s.fy = grown(s.fy)

	nextState := make([]State, n)
	copy(nextState, s.state)
	s.state = nextState

	nextGroup := make([]uint16, n)
	copy(nextGroup, s.group)
	s.group = nextGroup

	nextGenome := make([]Genome, n)
	copy(nextGenome, s.genome)
	s.genome = nextGenome
}

// ensureCapacity grows the store so index i is addressable.
func (s *Store) ensureCapacity(i int) {
	if i < len(s.x) {
		return
	}
	next := len(s.x) * 2
	if next <= i {
		next = i + 1
	}
	if next < 8 {
		next = 8
	}
	s.grow(next)
}

// Add creates a new agent with explicit position, velocity, group and
// genome, returning its id. Ids are assigned as the pre-call count and
// are stable within a tick; the store grows automatically if capacity
// is exhausted.
func (s *Store) Add(x, y, vx, vy float32, group uint16, genome Genome) int {
	id := s.count
	s.ensureCapacity(id)

	s.x[id], s.y[id] = x, y
	s.vx[id], s.vy[id] = vx, vy
	s.fx[id], s.fy[id] = 0, 0
	s.state[id] = 0
	s.group[id] = group
	s.genome[id] = genome

	s.count++
	return id
}

// AddRandom creates a new agent with a position sampled uniformly over
// [0,w]x[0,h], zero velocity, and a genome sampled uniformly within gr
// (SpeedFactor/SenseFactor) and [-1,1] (Aggression) from rng.
func (s *Store) AddRandom(rng *prng.RNG, w, h float32, group uint16, gr GenomeRange) int {
	x := float32(rng.NextFloatRange(0, float64(w)))
	y := float32(rng.NextFloatRange(0, float64(h)))
	genome := Genome{
		SpeedFactor: float32(rng.NextFloatRange(float64(gr.SpeedFactorMin), float64(gr.SpeedFactorMax))),
		SenseFactor: float32(rng.NextFloatRange(float64(gr.SenseFactorMin), float64(gr.SenseFactorMax))),
		Aggression:  float32(rng.NextFloatRange(-1, 1)),
		ColorIdx:    uint8(rng.NextInt(16)),
	}
	return s.Add(x, y, 0, 0, group, genome)
}

// X returns the position-X column, valid for slot indices [0, Cap()).
func (s *Store) X() []float32 { return s.x }

// Y returns the position-Y column.
func (s *Store) Y() []float32 { return s.y }

// Vx returns the velocity-X column.
func (s *Store) Vx() []float32 { return s.vx }

// Vy returns the velocity-Y column.
func (s *Store) Vy() []float32 { return s.vy }

// Fx returns the force-accumulator-X column.
func (s *Store) Fx() []float32 { return s.fx }

// Fy returns the force-accumulator-Y column.
func (s *Store) Fy() []float32 { return s.fy }

// ZeroForces resets Fx/Fy to zero for all in-use slots. Called by the
// World orchestrator at the start of every tick.
func (s *Store) ZeroForces() {
	for i := 0; i < s.count; i++ {
		s.fx[i] = 0
		s.fy[i] = 0
	}
}

// State returns the state bitset for agent i.
func (s *Store) State(i int) State { return s.state[i] }

// SetState overwrites the state bitset for agent i. The core never
// calls this with Dead set; only external systems do.
func (s *Store) SetState(i int, v State) { s.state[i] = v }

// IsDead reports whether agent i has the Dead bit set.
func (s *Store) IsDead(i int) bool { return s.state[i].Has(Dead) }

// Group returns the group tag for agent i.
func (s *Store) Group(i int) uint16 { return s.group[i] }

// Genome returns the genome for agent i.
func (s *Store) Genome(i int) Genome { return s.genome[i] }
