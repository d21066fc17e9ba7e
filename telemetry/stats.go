package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated swarm statistics for a tick window.
// Grounded on the teacher's telemetry/stats.go field-and-CSV-tag
// shape, replaced with the population/speed/order-parameter metrics
// meaningful for a flocking simulation instead of predator/prey
// energy economics.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	AgentCount int `csv:"agent_count"`

	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	NeighborCountMean float64 `csv:"neighbor_count_mean"`

	// OrderParameter is the magnitude of the mean unit heading vector
	// across all agents (1 = perfectly aligned flock, 0 = no net
	// alignment), the standard flocking-order diagnostic.
	OrderParameter float64 `csv:"order_parameter"`

	GridOccupiedCells int     `csv:"grid_occupied_cells"`
	GridMaxPerCell    int     `csv:"grid_max_per_cell"`
	GridAvgPerCell    float64 `csv:"grid_avg_per_cell"`
}

// ComputeSpeedStats returns mean, sample (n-1) standard deviation, and
// the 10th/50th/90th percentiles of values, using gonum/stat for the
// moment computations instead of hand-rolled summation loops.
func ComputeSpeedStats(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	mean, std = stat.MeanStdDev(values, nil)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)

	return mean, std, p10, p50, p90
}

// ComputeOrderParameter returns the magnitude of the mean unit
// velocity vector over (vx, vy) pairs, the canonical Vicsek-style
// measure of flock alignment. Agents with near-zero speed contribute
// no heading and are skipped.
func ComputeOrderParameter(vx, vy []float32) float64 {
	var sumX, sumY float64
	var n int
	for i := range vx {
		mSq := float64(vx[i])*float64(vx[i]) + float64(vy[i])*float64(vy[i])
		if mSq < 1e-8 {
			continue
		}
		speed := math.Sqrt(mSq)
		sumX += float64(vx[i]) / speed
		sumY += float64(vy[i]) / speed
		n++
	}
	if n == 0 {
		return 0
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)
	return math.Sqrt(meanX*meanX + meanY*meanY)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("agent_count", s.AgentCount),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p10", s.SpeedP10),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("neighbor_count_mean", s.NeighborCountMean),
		slog.Float64("order_parameter", s.OrderParameter),
		slog.Int("grid_occupied_cells", s.GridOccupiedCells),
		slog.Int("grid_max_per_cell", s.GridMaxPerCell),
		slog.Float64("grid_avg_per_cell", s.GridAvgPerCell),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"agent_count", s.AgentCount,
		"speed_mean", s.SpeedMean,
		"speed_std", s.SpeedStd,
		"speed_p50", s.SpeedP50,
		"neighbor_count_mean", s.NeighborCountMean,
		"order_parameter", s.OrderParameter,
		"grid_occupied_cells", s.GridOccupiedCells,
		"grid_max_per_cell", s.GridMaxPerCell,
	)
}
