package telemetry

import (
	"math"

	"github.com/pthm-cable/swarmcore/agent"
	"github.com/pthm-cable/swarmcore/grid"
)

// Collector tracks tick windows and produces WindowStats by sampling
// the agent store and spatial grid at window boundaries. Grounded on
// the teacher's telemetry/collector.go windowing logic
// (windowDurationTicks, ShouldFlush, Flush-then-reset), with its
// birth/death/bite event counters dropped — a flocking world has no
// equivalent events — and Flush's energy-percentile inputs replaced
// by a direct sample of the world's own state.
type Collector struct {
	windowDurationTicks uint64
	dt                  float32
	windowStartTick     uint64
}

// NewCollector creates a stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds.
// dt: seconds per tick (used for tick-to-time conversion).
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := uint64(math.Round(windowDurationSec / float64(dt)))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick uint64) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() uint64 {
	return c.windowDurationTicks
}

// Flush samples store and g at currentTick and returns a WindowStats
// covering the window just completed, then resets the window start
// for the next one.
func (c *Collector) Flush(currentTick uint64, store *agent.Store, g *grid.Grid, neighborCountMean float64) WindowStats {
	count := store.Count()
	vx, vy := store.Vx(), store.Vy()

	speeds := make([]float64, 0, count)
	for i := 0; i < count; i++ {
		if store.IsDead(i) {
			continue
		}
		speeds = append(speeds, float64(magnitude(vx[i], vy[i])))
	}

	speedMean, speedStd, p10, p50, p90 := ComputeSpeedStats(speeds)
	orderParam := ComputeOrderParameter(vx[:count], vy[:count])
	gridStats := g.Stats(count)

	stats := WindowStats{
		WindowStartTick: int64(c.windowStartTick),
		WindowEndTick:   int64(currentTick),
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		AgentCount: len(speeds),

		SpeedMean: speedMean,
		SpeedStd:  speedStd,
		SpeedP10:  p10,
		SpeedP50:  p50,
		SpeedP90:  p90,

		NeighborCountMean: neighborCountMean,
		OrderParameter:    orderParam,

		GridOccupiedCells: gridStats.OccupiedCells,
		GridMaxPerCell:    gridStats.MaxAgentsPerCell,
		GridAvgPerCell:    gridStats.AvgAgentsPerOccupiedCell,
	}

	c.windowStartTick = currentTick

	return stats
}

func magnitude(x, y float32) float32 {
	return float32(math.Sqrt(float64(x)*float64(x) + float64(y)*float64(y)))
}
