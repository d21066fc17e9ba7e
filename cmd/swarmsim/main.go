// Command swarmsim runs the swarm simulation headlessly: no rendering,
// just ticks, optional periodic logging, performance sampling, CSV
// telemetry export, and snapshotting. Grounded on the teacher's
// runHeadless/main.go flag set and its logf-to-file pattern, adapted
// to log/slog and the sim/config/telemetry packages.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/swarmcore/config"
	"github.com/pthm-cable/swarmcore/sim"
	"github.com/pthm-cable/swarmcore/telemetry"
)

var (
	ticks       = flag.Int("ticks", 0, "Stop after N ticks (0 = run forever)")
	agentsFlag  = flag.Int("agents", 0, "Number of agents to seed (0 = use config's initial_agents)")
	seedFlag    = flag.Uint64("seed", 0, "RNG seed (0 = use config's seed)")
	configPath  = flag.String("config", "", "Path to a YAML config overlay (empty = embedded defaults)")
	logPath     = flag.String("log", "", "Write structured logs to this file instead of stderr")
	perfLog     = flag.Bool("perf", false, "Enable per-phase performance sampling and perf.csv export")
	snapshotDir = flag.String("snapshot-dir", "", "Directory to write a final snapshot JSON to (empty = skip)")
	outputDir   = flag.String("output", "", "Directory for telemetry.csv/perf.csv (empty = skip CSV export)")
	groupCount  = flag.Int("groups", 1, "Number of agent groups to distribute seeded agents across")
)

func main() {
	flag.Parse()

	logger := newLogger(*logPath)
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	simCfg := cfg.ToSimConfig()
	if *seedFlag != 0 {
		simCfg.Seed = *seedFlag
	}

	world, err := sim.NewWorld(simCfg)
	if err != nil {
		slog.Error("failed to create world", "error", err)
		os.Exit(1)
	}

	seedAgents(world, cfg, *agentsFlag, *groupCount)

	out, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output manager", "error", err)
		os.Exit(1)
	}
	defer out.Close()

	collector := telemetry.NewCollector(float64(cfg.Telemetry.StatsWindow)/60.0, simCfg.Dt)
	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)

	slog.Info("starting headless run",
		"agents", world.Store().Count(),
		"ticks", *ticks,
		"seed", simCfg.Seed,
		"boundary_mode", simCfg.BoundaryMode,
		"steering_mode", simCfg.SteeringMode,
	)

	start := time.Now()
	lastReport := start
	reportInterval := 10 * time.Second

	for {
		if *ticks > 0 && int(world.Tick()) >= *ticks {
			slog.Info("reached max ticks, stopping", "ticks", world.Tick())
			break
		}

		if *perfLog {
			perf.StartTick()
			perf.StartPhase(telemetry.PhaseGridRebuild)
		}
		world.Step()
		if *perfLog {
			perf.EndTick()
		}

		tick := world.Tick()

		if *perfLog && tick%uint64(cfg.Telemetry.PerfCollectorWindow) == 0 {
			stats := perf.Stats()
			stats.LogStats()
			if err := out.WritePerf(stats, int64(tick)); err != nil {
				slog.Warn("failed to write perf stats", "error", err)
			}
		}

		if collector.ShouldFlush(tick) {
			gridStats := world.Stats()
			neighborMean := float64(gridStats.AvgAgentsPerOccupiedCell)
			stats := collector.Flush(tick, world.Store(), world.Grid(), neighborMean)
			slog.Info("window", "tick", tick, "agents", stats.AgentCount,
				"speed_mean", stats.SpeedMean, "order_parameter", stats.OrderParameter)
			if err := out.WriteTelemetry(stats); err != nil {
				slog.Warn("failed to write telemetry", "error", err)
			}
		}

		if time.Since(lastReport) >= reportInterval {
			elapsed := time.Since(start)
			tps := float64(tick) / elapsed.Seconds()
			slog.Info("progress", "tick", tick, "ticks_per_sec", tps, "elapsed", elapsed.Round(time.Second))
			lastReport = time.Now()
		}
	}

	elapsed := time.Since(start)
	slog.Info("run complete", "ticks", world.Tick(), "elapsed", elapsed.Round(time.Millisecond),
		"avg_ticks_per_sec", float64(world.Tick())/elapsed.Seconds())

	if *snapshotDir != "" {
		snap := telemetry.FromWorld(simCfg.Seed, world.Tick(), simCfg.WorldWidth, simCfg.WorldHeight,
			world.Store(), world.Store().Count())
		path, err := telemetry.SaveSnapshot(snap, *snapshotDir)
		if err != nil {
			slog.Error("failed to save snapshot", "error", err)
			os.Exit(1)
		}
		slog.Info("snapshot saved", "path", path)
	}
}

// seedAgents populates world with n agents (or cfg.World.InitialAgents
// if n <= 0), distributed round-robin across groupCount groups.
func seedAgents(world *sim.World, cfg *config.Config, n, groupCount int) {
	if n <= 0 {
		n = cfg.World.InitialAgents
	}
	if groupCount < 1 {
		groupCount = 1
	}
	for i := 0; i < n; i++ {
		world.AddRandomAgent(uint16(i % groupCount))
	}
}

func newLogger(path string) *slog.Logger {
	if path == "" {
		return slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log file %q: %v\n", path, err)
		os.Exit(1)
	}
	return slog.New(slog.NewTextHandler(f, nil))
}
