package sim

import (
	"math"

	"github.com/pthm-cable/swarmcore/agent"
	"github.com/pthm-cable/swarmcore/grid"
)

const (
	epsMagnitude = 1e-3
	epsDivide    = 1e-4
)

// Aggregates holds the per-tick neighbor-aggregation columns spec.md
// §3 names, rewritten in full by Sense.Run every tick. Grounded on the
// teacher's systems/behavior.go buildEntityList/getBrainOutputs
// accumulation style, reshaped into plain columns instead of a
// per-agent []EntityInfo slice so Sense stays zero-allocation.
type Aggregates struct {
	NeighborCount []int32
	SeparationX   []float32
	SeparationY   []float32
	AlignmentVx   []float32
	AlignmentVy   []float32
	CohesionX     []float32
	CohesionY     []float32
}

// NewAggregates allocates Aggregates columns of the given capacity.
func NewAggregates(capacity int) *Aggregates {
	return &Aggregates{
		NeighborCount: make([]int32, capacity),
		SeparationX:   make([]float32, capacity),
		SeparationY:   make([]float32, capacity),
		AlignmentVx:   make([]float32, capacity),
		AlignmentVy:   make([]float32, capacity),
		CohesionX:     make([]float32, capacity),
		CohesionY:     make([]float32, capacity),
	}
}

// grow reallocates every column in lockstep, preserving no content
// (Sense always rewrites every in-use slot from zero each tick, so
// preservation across growth is unnecessary).
func (a *Aggregates) grow(n int) {
	if n <= len(a.NeighborCount) {
		return
	}
	a.NeighborCount = make([]int32, n)
	a.SeparationX = make([]float32, n)
	a.SeparationY = make([]float32, n)
	a.AlignmentVx = make([]float32, n)
	a.AlignmentVy = make([]float32, n)
	a.CohesionX = make([]float32, n)
	a.CohesionY = make([]float32, n)
}

// Sense implements spec.md §4.D: for each live agent, scan the grid's
// 3x3 neighborhood and accumulate count/separation/alignment/cohesion
// over neighbors within SenseRadius.
type Sense struct {
	senseRadius      float32
	separationRadius float32

	// neighborBuf is reused across Run calls and ticks, grown only when
	// a query returns more candidates than it currently holds. This
	// keeps Run allocation-free once warmed to the densest cell
	// neighborhood the world reaches, per spec.md's zero-allocation
	// hot-path requirement; it exists specifically so Run can use
	// grid.Grid.Query3x3Buffer instead of the closure-based Query3x3,
	// whose func literal is not guaranteed to stay off the heap across
	// the package boundary.
	neighborBuf []int32
}

// NewSense creates a Sense stage with the given radii.
func NewSense(senseRadius, separationRadius float32) *Sense {
	return &Sense{
		senseRadius:      senseRadius,
		separationRadius: separationRadius,
		neighborBuf:      make([]int32, 32),
	}
}

// Run recomputes agg for every non-Dead agent in [0, count), reading
// positions and velocities from store and candidates from g. agg is
// grown to at least count first; all of its columns are reset to zero
// before accumulation. Dead agents are skipped as queriers, so their
// own aggregate rows stay zero, but they are not filtered out as
// candidates: a Dead neighbor within SenseRadius is counted and adds
// its position and velocity like any other. Behavior and Integrate
// skip Dead agents only as the agent being updated.
func (s *Sense) Run(store *agent.Store, g *grid.Grid, agg *Aggregates, count int) {
	agg.grow(count)

	x, y := store.X(), store.Y()
	vx, vy := store.Vx(), store.Vy()
	rSq := s.senseRadius * s.senseRadius

	for i := 0; i < count; i++ {
		agg.NeighborCount[i] = 0
		agg.SeparationX[i] = 0
		agg.SeparationY[i] = 0
		agg.AlignmentVx[i] = 0
		agg.AlignmentVy[i] = 0
		agg.CohesionX[i] = 0
		agg.CohesionY[i] = 0

		if store.IsDead(i) {
			continue
		}

		xi, yi := x[i], y[i]
		ids, total := g.Query3x3Buffer(xi, yi, s.neighborBuf)
		if total > len(s.neighborBuf) {
			s.neighborBuf = make([]int32, total)
			ids, _ = g.Query3x3Buffer(xi, yi, s.neighborBuf)
		}

		for _, jj := range ids {
			j := int(jj)
			if j == i {
				continue
			}

			dx := x[j] - xi
			dy := y[j] - yi
			dSq := dx*dx + dy*dy
			if dSq > rSq {
				continue
			}

			agg.NeighborCount[i]++
			agg.AlignmentVx[i] += vx[j]
			agg.AlignmentVy[i] += vy[j]
			agg.CohesionX[i] += x[j]
			agg.CohesionY[i] += y[j]

			if dSq > epsDivide*epsDivide {
				d := float32(math.Sqrt(float64(dSq)))
				strength := 1 - d/s.separationRadius
				if strength < 0 {
					strength = 0
				}
				if strength > 0 {
					scale := strength / d
					agg.SeparationX[i] += (-dx / d) * scale
					agg.SeparationY[i] += (-dy / d) * scale
				}
			}
		}
	}
}
