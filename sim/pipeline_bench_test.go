package sim

import "testing"

// benchWorld builds a populated, grid-warmed World so benchmarks and
// allocation tests exercise each stage at steady state rather than
// paying first-tick growth costs.
func benchWorld(tb testing.TB, n int) *World {
	tb.Helper()
	cfg := PeacefulFlocksPreset()
	cfg.InitialCapacity = n
	w, err := NewWorld(cfg)
	if err != nil {
		tb.Fatal(err)
	}
	for i := 0; i < n; i++ {
		w.AddRandomAgent(uint16(i % 4))
	}
	w.Step() // warm every stage's internal scratch state once
	return w
}

// BenchmarkSenseRun measures the neighbor-aggregation hot path spec.md
// §4.D names, grounded on the teacher's systems/simd_bench_test.go
// table-of-sizes benchmark shape.
func BenchmarkSenseRun(b *testing.B) {
	w := benchWorld(b, 20000)
	count := w.Store().Count()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.grid.Rebuild(w.store.X(), w.store.Y(), count)
		w.sense.Run(w.store, w.grid, w.agg, count)
	}
}

// BenchmarkBehaviorRun measures the steering hot path spec.md §4.E
// names.
func BenchmarkBehaviorRun(b *testing.B) {
	w := benchWorld(b, 20000)
	count := w.Store().Count()
	w.grid.Rebuild(w.store.X(), w.store.Y(), count)
	w.sense.Run(w.store, w.grid, w.agg, count)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.store.ZeroForces()
		w.behavior.Run(w.store, w.agg, count)
	}
}

// BenchmarkIntegrateRun measures the motion-integration hot path
// spec.md §4.F names.
func BenchmarkIntegrateRun(b *testing.B) {
	w := benchWorld(b, 20000)
	count := w.Store().Count()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.integrate.Run(w.store, count)
	}
}

// TestSenseRunZeroAllocationsOnceWarmed exercises the zero-allocation
// hot-path property spec.md §1(c)/§4.D calls out: once Sense's scratch
// neighbor buffer and Aggregates columns have grown to the world's
// steady-state density and count, Run must not allocate.
func TestSenseRunZeroAllocationsOnceWarmed(t *testing.T) {
	w := benchWorld(t, 5000)
	count := w.Store().Count()
	w.grid.Rebuild(w.store.X(), w.store.Y(), count)
	w.sense.Run(w.store, w.grid, w.agg, count) // second warm-up pass

	allocs := testing.AllocsPerRun(20, func() {
		w.grid.Rebuild(w.store.X(), w.store.Y(), count)
		w.sense.Run(w.store, w.grid, w.agg, count)
	})
	if allocs != 0 {
		t.Errorf("expected 0 allocations per Sense.Run once warmed, got %v", allocs)
	}
}

// TestBehaviorRunZeroAllocationsOnceWarmed mirrors
// TestSenseRunZeroAllocationsOnceWarmed for the Behavior stage.
func TestBehaviorRunZeroAllocationsOnceWarmed(t *testing.T) {
	w := benchWorld(t, 5000)
	count := w.Store().Count()
	w.grid.Rebuild(w.store.X(), w.store.Y(), count)
	w.sense.Run(w.store, w.grid, w.agg, count)

	allocs := testing.AllocsPerRun(20, func() {
		w.store.ZeroForces()
		w.behavior.Run(w.store, w.agg, count)
	})
	if allocs != 0 {
		t.Errorf("expected 0 allocations per Behavior.Run once warmed, got %v", allocs)
	}
}

// TestIntegrateRunZeroAllocationsOnceWarmed mirrors the above for the
// Integrate stage, which touches no scratch state at all.
func TestIntegrateRunZeroAllocationsOnceWarmed(t *testing.T) {
	w := benchWorld(t, 5000)
	count := w.Store().Count()

	allocs := testing.AllocsPerRun(20, func() {
		w.integrate.Run(w.store, count)
	})
	if allocs != 0 {
		t.Errorf("expected 0 allocations per Integrate.Run once warmed, got %v", allocs)
	}
}
