package grid

import "testing"

// TestRebuildZeroAllocationsOnceWarmed exercises the zero-allocation
// hot-path property spec.md §1(c)/§4.C call out explicitly: once a
// Grid's Next column has been grown to at least count (by an initial
// Rebuild, or by passing InitialCapacity up front), every subsequent
// Rebuild at that same count must not allocate.
func TestRebuildZeroAllocationsOnceWarmed(t *testing.T) {
	const n = 5000
	g, err := New(20, 2000, 2000, n)
	if err != nil {
		t.Fatal(err)
	}
	x := make([]float32, n)
	y := make([]float32, n)
	for i := 0; i < n; i++ {
		x[i] = float32(i % 2000)
		y[i] = float32((i * 7) % 2000)
	}

	g.Rebuild(x, y, n) // warm up Next to capacity n

	allocs := testing.AllocsPerRun(20, func() {
		g.Rebuild(x, y, n)
	})
	if allocs != 0 {
		t.Errorf("expected 0 allocations per Rebuild once warmed, got %v", allocs)
	}
}

// TestRebuild100000AgentsWithoutReallocation exercises spec.md §8
// scenario 6 directly: spawning 100,000 agents uniformly into a Grid
// constructed with InitialCapacity = 100000 must rebuild without ever
// growing Next past its initial allocation.
func TestRebuild100000AgentsWithoutReallocation(t *testing.T) {
	const n = 100000
	g, err := New(40, 5000, 5000, n)
	if err != nil {
		t.Fatal(err)
	}
	x := make([]float32, n)
	y := make([]float32, n)
	for i := 0; i < n; i++ {
		x[i] = float32(i % 5000)
		y[i] = float32((i * 13) % 5000)
	}

	capBefore := cap(g.next)
	g.Rebuild(x, y, n)
	if cap(g.next) != capBefore {
		t.Fatalf("Rebuild reallocated Next: cap was %d, now %d", capBefore, cap(g.next))
	}

	allocs := testing.AllocsPerRun(5, func() {
		g.Rebuild(x, y, n)
	})
	if allocs != 0 {
		t.Errorf("expected 0 allocations rebuilding 100000 pre-sized agents, got %v", allocs)
	}
}

func TestNewRejectsNonPositiveDimensions(t *testing.T) {
	cases := []struct {
		cell, w, h float32
	}{
		{0, 100, 100},
		{-1, 100, 100},
		{10, 0, 100},
		{10, 100, 0},
	}
	for _, c := range cases {
		if _, err := New(c.cell, c.w, c.h, 10); err == nil {
			t.Errorf("expected error for cell=%v w=%v h=%v", c.cell, c.w, c.h)
		}
	}
}

func TestColsRows(t *testing.T) {
	g, err := New(10, 95, 100, 0)
	if err != nil {
		t.Fatal(err)
	}
	if g.Cols() != 10 {
		t.Errorf("expected 10 cols (ceil(95/10)), got %d", g.Cols())
	}
	if g.Rows() != 10 {
		t.Errorf("expected 10 rows, got %d", g.Rows())
	}
}

func TestRebuildAndQuerySelf(t *testing.T) {
	g, err := New(10, 100, 100, 10)
	if err != nil {
		t.Fatal(err)
	}
	x := []float32{50, 51, 90}
	y := []float32{50, 50, 90}
	g.Rebuild(x, y, 3)

	var found []int32
	g.Query3x3(50, 50, func(id int32) {
		found = append(found, id)
	})

	hasZero, hasOne := false, false
	for _, id := range found {
		if id == 0 {
			hasZero = true
		}
		if id == 1 {
			hasOne = true
		}
		if id == 2 {
			t.Error("agent 2 at (90,90) should not be in the 3x3 neighborhood of (50,50)")
		}
	}
	if !hasZero || !hasOne {
		t.Errorf("expected agents 0 and 1 in neighborhood, got %v", found)
	}
}

func TestPushToFrontOrder(t *testing.T) {
	g, err := New(10, 100, 100, 10)
	if err != nil {
		t.Fatal(err)
	}
	// All three land in the same cell.
	x := []float32{5, 5, 5}
	y := []float32{5, 5, 5}
	g.Rebuild(x, y, 3)

	var order []int32
	g.Query3x3(5, 5, func(id int32) {
		order = append(order, id)
	})

	want := []int32{2, 1, 0}
	if len(order) != len(want) {
		t.Fatalf("expected %d ids, got %d: %v", len(want), len(order), order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("push-to-front order mismatch at %d: got %v, want %v", i, order, want)
		}
	}
}

func TestClampEdgePositions(t *testing.T) {
	g, err := New(10, 100, 100, 2)
	if err != nil {
		t.Fatal(err)
	}
	x := []float32{100, -5}
	y := []float32{100, -5}
	g.Rebuild(x, y, 2)

	var found []int32
	g.Query3x3(95, 95, func(id int32) {
		found = append(found, id)
	})
	if len(found) != 1 || found[0] != 0 {
		t.Errorf("expected agent 0 clamped into last cell, got %v", found)
	}

	found = nil
	g.Query3x3(0, 0, func(id int32) {
		found = append(found, id)
	})
	if len(found) != 1 || found[0] != 1 {
		t.Errorf("expected agent 1 clamped into cell (0,0), got %v", found)
	}
}

func TestQuery3x3BufferCapsAndReportsTotal(t *testing.T) {
	g, err := New(50, 100, 100, 10)
	if err != nil {
		t.Fatal(err)
	}
	x := make([]float32, 10)
	y := make([]float32, 10)
	for i := range x {
		x[i], y[i] = 10, 10
	}
	g.Rebuild(x, y, 10)

	buf := make([]int32, 3)
	out, total := g.Query3x3Buffer(10, 10, buf)
	if total != 10 {
		t.Errorf("expected total 10, got %d", total)
	}
	if len(out) != 3 {
		t.Errorf("expected capped output of 3, got %d", len(out))
	}
}

func TestFullEnumerationVisitsEveryAgent(t *testing.T) {
	g, err := New(10, 100, 100, 200)
	if err != nil {
		t.Fatal(err)
	}
	n := 200
	x := make([]float32, n)
	y := make([]float32, n)
	for i := 0; i < n; i++ {
		x[i] = float32(i%10) * 10
		y[i] = float32(i/10) * 10
	}
	g.Rebuild(x, y, n)

	seen := make([]bool, n)
	for row := 0; row < g.Rows(); row++ {
		for col := 0; col < g.Cols(); col++ {
			cx := float32(col)*10 + 5
			cy := float32(row)*10 + 5
			g.Query3x3(cx, cy, func(id int32) {
				seen[id] = true
			})
		}
	}
	for i, s := range seen {
		if !s {
			t.Errorf("agent %d never visited", i)
		}
	}
}

func TestStatsBounds(t *testing.T) {
	g, err := New(10, 100, 100, 50)
	if err != nil {
		t.Fatal(err)
	}
	n := 50
	x := make([]float32, n)
	y := make([]float32, n)
	for i := 0; i < n; i++ {
		x[i], y[i] = 15, 15 // all in the same cell
	}
	g.Rebuild(x, y, n)

	stats := g.Stats(n)
	if stats.TotalCells != g.TotalCells() {
		t.Errorf("TotalCells mismatch: %d vs %d", stats.TotalCells, g.TotalCells())
	}
	if stats.OccupiedCells != 1 {
		t.Errorf("expected 1 occupied cell, got %d", stats.OccupiedCells)
	}
	if stats.MaxAgentsPerCell != n {
		t.Errorf("expected max %d, got %d", n, stats.MaxAgentsPerCell)
	}
	if stats.EmptyCells != stats.TotalCells-1 {
		t.Errorf("EmptyCells mismatch: %d", stats.EmptyCells)
	}
}
