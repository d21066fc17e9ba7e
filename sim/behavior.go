package sim

import (
	"math"

	"github.com/pthm-cable/swarmcore/agent"
)

// Behavior implements spec.md §4.E: converts Sense aggregates into a
// steering force per agent using prioritized Reynolds rules
// (separation -> alignment -> cohesion) within a bounded force budget.
//
// Grounded on the teacher's systems/behavior.go priority sequencing
// and crowding-boost computation (flowScale-style constants, lerp
// toward a boosted weight past a threshold), with its neural-brain
// output replaced by the clamp-magnitude / prioritized-add budget rule
// spec.md §4.E specifies — the teacher itself never implements a
// budgeted priority rule, it sums raw forces, which is preserved here
// as the optional ModeSummedRaw.
type Behavior struct {
	maxSpeed float32
	maxForce float32

	separationWeight float32
	alignmentWeight  float32
	cohesionWeight   float32

	crowdingThreshold float32
	crowdingBoost     float32

	mode SteeringMode
}

// NewBehavior creates a Behavior stage from the steering-relevant
// subset of cfg.
func NewBehavior(cfg Config) *Behavior {
	return &Behavior{
		maxSpeed:          cfg.MaxSpeed,
		maxForce:          cfg.MaxForce,
		separationWeight:  cfg.SeparationWeight,
		alignmentWeight:   cfg.AlignmentWeight,
		cohesionWeight:    cfg.CohesionWeight,
		crowdingThreshold: cfg.SeparationCrowdingThreshold,
		crowdingBoost:     cfg.SeparationCrowdingBoost,
		mode:              cfg.SteeringMode,
	}
}

func magnitude(x, y float32) float32 {
	return float32(math.Sqrt(float64(x*x + y*y)))
}

// clampMagnitude scales (x,y) down to at most maxMag, leaving it
// unchanged if already within budget.
func clampMagnitude(x, y, maxMag float32) (cx, cy float32) {
	m := magnitude(x, y)
	if m <= maxMag || m < epsDivide {
		return x, y
	}
	scale := maxMag / m
	return x * scale, y * scale
}

// lerp linearly interpolates between a and b by t in [0,1].
func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// Run adds a steering force into store.Fx/Fy for every live agent with
// at least one neighbor in agg, for agents [0, count).
func (b *Behavior) Run(store *agent.Store, agg *Aggregates, count int) {
	vx, vy := store.Vx(), store.Vy()
	x, y := store.X(), store.Y()
	fx, fy := store.Fx(), store.Fy()

	for i := 0; i < count; i++ {
		if store.IsDead(i) {
			continue
		}
		n := agg.NeighborCount[i]
		if n <= 0 {
			continue
		}

		curX, curY := vx[i], vy[i]
		var accX, accY float32

		switch b.mode {
		case ModeSummedRaw:
			accX, accY = b.summedRaw(i, agg, n, curX, curY, x, y)
		default:
			accX, accY = b.prioritized(i, agg, n, curX, curY, x, y)
		}

		fx[i] += accX
		fy[i] += accY
	}
}

// prioritized implements the canonical spec.md §4.E pipeline:
// separation, then alignment, then cohesion, each contributing to a
// shared MaxForce budget via the prioritized-add rule.
func (b *Behavior) prioritized(i int, agg *Aggregates, n int32, curX, curY float32, x, y []float32) (accX, accY float32) {
	inv := 1.0 / float32(n)
	budget := b.maxForce

	add := func(steerX, steerY float32) {
		m := magnitude(steerX, steerY)
		if m < epsDivide {
			return
		}
		take := m
		if take > budget {
			take = budget
		}
		scale := take / m
		accX += steerX * scale
		accY += steerY * scale
		budget -= take
	}

	// Separation.
	sx, sy := agg.SeparationX[i], agg.SeparationY[i]
	if magnitude(sx, sy) > epsMagnitude && budget > 0 {
		boost := float32(1)
		if float32(n) > b.crowdingThreshold {
			excess := float32(n) - b.crowdingThreshold
			denom := b.crowdingThreshold
			if denom < 1 {
				denom = 1
			}
			t := excess / denom
			if t > 1 {
				t = 1
			}
			boost = lerp(1, b.crowdingBoost, t)
		}
		sm := magnitude(sx, sy)
		desiredX := (sx / sm) * (b.maxSpeed * b.separationWeight * boost)
		desiredY := (sy / sm) * (b.maxSpeed * b.separationWeight * boost)
		steerX, steerY := clampMagnitude(desiredX-curX, desiredY-curY, budget)
		add(steerX, steerY)
	}

	// Alignment.
	if budget > 0 {
		avgX := agg.AlignmentVx[i] * inv
		avgY := agg.AlignmentVy[i] * inv
		if magnitude(avgX, avgY) > epsMagnitude {
			am := magnitude(avgX, avgY)
			desiredX := (avgX / am) * (b.maxSpeed * b.alignmentWeight)
			desiredY := (avgY / am) * (b.maxSpeed * b.alignmentWeight)
			steerX, steerY := clampMagnitude(desiredX-curX, desiredY-curY, budget)
			add(steerX, steerY)
		}
	}

	// Cohesion.
	if budget > 0 {
		centerX := agg.CohesionX[i] * inv
		centerY := agg.CohesionY[i] * inv
		toX := centerX - x[i]
		toY := centerY - y[i]
		if magnitude(toX, toY) > epsMagnitude {
			tm := magnitude(toX, toY)
			desiredX := (toX / tm) * (b.maxSpeed * b.cohesionWeight)
			desiredY := (toY / tm) * (b.maxSpeed * b.cohesionWeight)
			steerX, steerY := clampMagnitude(desiredX-curX, desiredY-curY, budget)
			add(steerX, steerY)
		}
	}

	return accX, accY
}

// summedRaw is the simpler, un-prioritized option spec.md §9 allows
// offering without making it the default: every rule's steering
// vector is summed directly, with no shared budget; the sum is then
// clamped to MaxForce.
func (b *Behavior) summedRaw(i int, agg *Aggregates, n int32, curX, curY float32, x, y []float32) (accX, accY float32) {
	inv := 1.0 / float32(n)

	sx, sy := agg.SeparationX[i], agg.SeparationY[i]
	if magnitude(sx, sy) > epsMagnitude {
		sm := magnitude(sx, sy)
		desiredX := (sx / sm) * (b.maxSpeed * b.separationWeight)
		desiredY := (sy / sm) * (b.maxSpeed * b.separationWeight)
		accX += desiredX - curX
		accY += desiredY - curY
	}

	avgX := agg.AlignmentVx[i] * inv
	avgY := agg.AlignmentVy[i] * inv
	if magnitude(avgX, avgY) > epsMagnitude {
		am := magnitude(avgX, avgY)
		desiredX := (avgX / am) * (b.maxSpeed * b.alignmentWeight)
		desiredY := (avgY / am) * (b.maxSpeed * b.alignmentWeight)
		accX += desiredX - curX
		accY += desiredY - curY
	}

	centerX := agg.CohesionX[i] * inv
	centerY := agg.CohesionY[i] * inv
	toX := centerX - x[i]
	toY := centerY - y[i]
	if magnitude(toX, toY) > epsMagnitude {
		tm := magnitude(toX, toY)
		desiredX := (toX / tm) * (b.maxSpeed * b.cohesionWeight)
		desiredY := (toY / tm) * (b.maxSpeed * b.cohesionWeight)
		accX += desiredX - curX
		accY += desiredY - curY
	}

	accX, accY = clampMagnitude(accX, accY, b.maxForce)
	return accX, accY
}
