package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/gonum/optimize"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/swarmcore/config"
)

var (
	configPathFlag = flag.String("config", "", "Base config YAML overlay (empty = embedded defaults)")
	ticksPerRun    = flag.Int("ticks", 1200, "Ticks to simulate per seed evaluation")
	agentCount     = flag.Int("agents", 200, "Agents to seed per evaluation run")
	seeds          = flag.Int("seeds", 3, "Number of seeds averaged per evaluation")
	maxEvals       = flag.Int("max-evals", 80, "Maximum number of CMA-ES evaluations")
	population     = flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	targetOrder    = flag.Float64("target-order", 0.9, "Target mean order parameter in (0,1]")
	outputDir      = flag.String("output", "", "Output directory for results (required)")
)

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

// steeringOverlay mirrors just the steering section of config.Config,
// so the tool's output composes as a -config overlay with swarmsim
// without needing the full config shape.
type steeringOverlay struct {
	Steering struct {
		SeparationWeight            float64 `yaml:"separation_weight"`
		AlignmentWeight             float64 `yaml:"alignment_weight"`
		CohesionWeight              float64 `yaml:"cohesion_weight"`
		SeparationCrowdingThreshold float64 `yaml:"separation_crowding_threshold"`
		SeparationCrowdingBoost     float64 `yaml:"separation_crowding_boost"`
	} `yaml:"steering"`
	Integration struct {
		MaxForce float64 `yaml:"max_force"`
	} `yaml:"integration"`
}

func main() {
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("-output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	if err := config.Init(*configPathFlag); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg().ToSimConfig()

	params := NewParamVector()
	evaluator := NewFitnessEvaluator(params, baseCfg, *ticksPerRun, *agentCount, evalSeeds(*seeds), *targetOrder)

	dim := params.Dim()
	initX := params.Normalize(params.DefaultVector())

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return evaluator.Evaluate(params.Denormalize(x))
		},
	}

	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}

	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}
	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0,
	}

	logPath := filepath.Join(*outputDir, "tuneweights_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()
	logWriter := csv.NewWriter(logFile)
	defer logWriter.Flush()

	header := []string{"eval", "fitness"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	logWriter.Write(header)

	evalCount := 0
	bestFitness := 1e9
	var bestParams []float64
	start := time.Now()

	inner := problem.Func
	problem.Func = func(x []float64) float64 {
		fitness := inner(x)
		evalCount++

		raw := params.Clamp(params.Denormalize(x))
		if fitness < bestFitness {
			bestFitness = fitness
			bestParams = append([]float64(nil), raw...)
		}

		row := []string{strconv.Itoa(evalCount), fmt.Sprintf("%.6f", fitness)}
		for _, v := range raw {
			row = append(row, fmt.Sprintf("%.6f", v))
		}
		logWriter.Write(row)
		logWriter.Flush()

		elapsed := time.Since(start)
		avgPerEval := elapsed / time.Duration(evalCount)
		remaining := time.Duration(*maxEvals-evalCount) * avgPerEval
		fmt.Printf("eval %d/%d: fitness=%.4f (best=%.4f) | elapsed %s, eta %s\n",
			evalCount, *maxEvals, fitness, bestFitness, formatDuration(elapsed), formatDuration(remaining))

		return fitness
	}

	fmt.Printf("tuning %d steering parameters, population=%d, max_evals=%d, target_order=%.2f\n",
		dim, popSize, *maxEvals, *targetOrder)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}
	if bestParams == nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}

	fmt.Printf("\ndone after %d evaluations in %s, best fitness %.4f\n",
		evalCount, formatDuration(time.Since(start)), bestFitness)
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Name, bestParams[i])
	}

	var overlay steeringOverlay
	overlay.Steering.SeparationWeight = bestParams[0]
	overlay.Steering.AlignmentWeight = bestParams[1]
	overlay.Steering.CohesionWeight = bestParams[2]
	overlay.Steering.SeparationCrowdingThreshold = bestParams[3]
	overlay.Steering.SeparationCrowdingBoost = bestParams[4]
	overlay.Integration.MaxForce = bestParams[5]

	data, err := yaml.Marshal(&overlay)
	if err != nil {
		log.Fatalf("failed to marshal best config overlay: %v", err)
	}
	overlayPath := filepath.Join(*outputDir, "best_steering.yaml")
	if err := os.WriteFile(overlayPath, data, 0644); err != nil {
		log.Fatalf("failed to write best config overlay: %v", err)
	}
	fmt.Printf("\nbest steering overlay saved to: %s\n", overlayPath)
}

func evalSeeds(n int) []uint64 {
	out := make([]uint64, n)
	for i := range out {
		out[i] = uint64(i*1000 + 42)
	}
	return out
}
