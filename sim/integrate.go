package sim

import (
	"github.com/pthm-cable/swarmcore/agent"
)

// Integrate implements spec.md §4.F: applies accumulated force to
// velocity (with friction and a speed cap), then velocity to position,
// then the configured boundary policy. Forces are zeroed by the caller
// (World.Step) at the start of the next tick, not here.
//
// Grounded on the teacher's systems/physics.go Update (friction decay,
// velocity clamp, position integration), generalized from per-entity
// Transform/Velocity components to agent.Store columns and extended
// with the three boundary policies spec.md §4.C names (the teacher
// only wraps).
type Integrate struct {
	maxSpeed float32
	friction float32
	dt       float32
	mode     BoundaryMode
	width    float32
	height   float32
}

// NewIntegrate creates an Integrate stage from cfg.
func NewIntegrate(cfg Config) *Integrate {
	return &Integrate{
		maxSpeed: cfg.MaxSpeed,
		friction: cfg.Friction,
		dt:       cfg.Dt,
		mode:     cfg.BoundaryMode,
		width:    cfg.WorldWidth,
		height:   cfg.WorldHeight,
	}
}

// Run advances velocity and position for every live agent in
// [0, count) by one step of dt, applying friction, the speed cap, and
// the configured boundary policy. Dead agents are left untouched.
func (in *Integrate) Run(store *agent.Store, count int) {
	x, y := store.X(), store.Y()
	vx, vy := store.Vx(), store.Vy()
	fx, fy := store.Fx(), store.Fy()

	for i := 0; i < count; i++ {
		if store.IsDead(i) {
			continue
		}

		vx[i] = (vx[i] + fx[i]*in.dt) * in.friction
		vy[i] = (vy[i] + fy[i]*in.dt) * in.friction

		if m := magnitude(vx[i], vy[i]); m > in.maxSpeed && m > epsDivide {
			scale := in.maxSpeed / m
			vx[i] *= scale
			vy[i] *= scale
		}

		x[i] += vx[i] * in.dt
		y[i] += vy[i] * in.dt

		x[i], vx[i] = in.applyBoundary(x[i], vx[i], in.width)
		y[i], vy[i] = in.applyBoundary(y[i], vy[i], in.height)
	}
}

// applyBoundary enforces the configured policy along one axis, where
// extent is the world's width or height for that axis.
func (in *Integrate) applyBoundary(pos, vel, extent float32) (float32, float32) {
	switch in.mode {
	case Wrap:
		// A single conditional add/subtract, not the literal
		// ((pos mod extent) + extent) mod extent spec.md §4.F gives:
		// equivalent whenever one tick's displacement stays under one
		// world-width, which holds for any MaxSpeed*Dt <= extent. A
		// config violating that bound would need more than one wrap
		// per tick, which this does not perform.
		if pos < 0 {
			pos += extent
		} else if pos >= extent {
			pos -= extent
		}
		return pos, vel
	case Reflect:
		if pos < 0 {
			pos = -pos
			vel = -vel
		} else if pos > extent {
			pos = extent - (pos - extent)
			vel = -vel
		}
		return pos, vel
	case Clamp:
		if pos < 0 {
			return 0, 0
		}
		if pos > extent {
			return extent, 0
		}
		return pos, vel
	default:
		return pos, vel
	}
}
