package main

import (
	"math"
	"sync"

	"github.com/pthm-cable/swarmcore/sim"
	"github.com/pthm-cable/swarmcore/telemetry"
)

// FitnessEvaluator runs headless simulations and scores a steering
// parameter vector against a target order parameter. Grounded on the
// teacher's cmd/optimize/fitness.go FitnessEvaluator shape (parallel
// seed evaluation, a mutex-guarded best-run tracker), with its
// extinction-based survivalTicks fitness replaced by a steering
// quality score, since the core has no population/energy model to
// produce a survival signal.
type FitnessEvaluator struct {
	params      *ParamVector
	baseConfig  sim.Config
	ticksPerRun int
	agentCount  int
	seeds       []uint64
	targetOrder float64
	statsWindow float64 // seconds per stats window

	mu          sync.Mutex
	bestFitness float64
	bestWindows []telemetry.WindowStats
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, base sim.Config, ticksPerRun, agentCount int, seeds []uint64, targetOrder float64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		baseConfig:  base,
		ticksPerRun: ticksPerRun,
		agentCount:  agentCount,
		seeds:       seeds,
		targetOrder: targetOrder,
		statsWindow: 2.0,
		bestFitness: math.Inf(1),
	}
}

// BestWindows returns the window-stats series from the best evaluation seen.
func (fe *FitnessEvaluator) BestWindows() []telemetry.WindowStats {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestWindows
}

// Evaluate computes fitness for a raw (denormalized) parameter vector.
// Lower is better, matching gonum/optimize's minimization convention.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s uint64) {
			defer wg.Done()
			results[idx] = fe.runSeed(x, s)
		}(i, seed)
	}
	wg.Wait()

	var total float64
	var best seedResult
	best.fitness = math.Inf(1)
	for _, r := range results {
		total += r.fitness
		if r.fitness < best.fitness {
			best = r
		}
	}
	avg := total / float64(len(results))

	fe.mu.Lock()
	if avg < fe.bestFitness {
		fe.bestFitness = avg
		fe.bestWindows = best.windows
	}
	fe.mu.Unlock()

	return avg
}

type seedResult struct {
	fitness float64
	windows []telemetry.WindowStats
}

// runSeed runs one headless simulation for ticksPerRun ticks, sampling
// WindowStats via telemetry.Collector, and scores the run.
func (fe *FitnessEvaluator) runSeed(x []float64, seed uint64) seedResult {
	cfg := fe.baseConfig
	fe.params.ApplyToConfig(&cfg, x)
	cfg.Seed = seed

	world, err := sim.NewWorld(cfg)
	if err != nil {
		return seedResult{fitness: math.Inf(1)}
	}
	for i := 0; i < fe.agentCount; i++ {
		world.AddRandomAgent(0)
	}

	collector := telemetry.NewCollector(fe.statsWindow, cfg.Dt)
	var windows []telemetry.WindowStats

	for i := 0; i < fe.ticksPerRun; i++ {
		world.Step()
		tick := world.Tick()
		if collector.ShouldFlush(tick) {
			gridStats := world.Stats()
			w := collector.Flush(tick, world.Store(), world.Grid(), gridStats.AvgAgentsPerOccupiedCell)
			windows = append(windows, w)
		}
	}

	return seedResult{fitness: fe.score(windows), windows: windows}
}

const warmupWindows = 2

// score combines how close the mean order parameter over the
// post-warmup windows is to the target with how stable it is
// (low variance), then negates so lower is better.
func (fe *FitnessEvaluator) score(windows []telemetry.WindowStats) float64 {
	if len(windows) <= warmupWindows {
		return math.Inf(1)
	}
	valid := windows[warmupWindows:]

	var sum, sumSq float64
	for _, w := range valid {
		sum += w.OrderParameter
		sumSq += w.OrderParameter * w.OrderParameter
	}
	n := float64(len(valid))
	mean := sum / n
	variance := sumSq/n - mean*mean
	if variance < 0 {
		variance = 0
	}

	targetErr := mean - fe.targetOrder
	quality := math.Exp(-targetErr*targetErr/0.05) * math.Exp(-variance/0.02)

	return -quality
}
