package sim

import (
	"testing"

	"github.com/pthm-cable/swarmcore/agent"
	"github.com/pthm-cable/swarmcore/grid"
)

func newTestGrid(t *testing.T, cellSize, w, h float32, cap int) *grid.Grid {
	t.Helper()
	g, err := grid.New(cellSize, w, h, cap)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestSenseExcludesSelf(t *testing.T) {
	st := agent.NewStore(4)
	st.Add(50, 50, 0, 0, 0, agent.Genome{})
	g := newTestGrid(t, 20, 100, 100, 4)
	g.Rebuild(st.X(), st.Y(), 1)

	agg := NewAggregates(4)
	s := NewSense(40, 16)
	s.Run(st, g, agg, 1)

	if agg.NeighborCount[0] != 0 {
		t.Errorf("expected 0 neighbors (self-excluded), got %d", agg.NeighborCount[0])
	}
}

func TestSenseRespectsRadius(t *testing.T) {
	st := agent.NewStore(4)
	st.Add(50, 50, 0, 0, 0, agent.Genome{})
	st.Add(55, 50, 0, 0, 0, agent.Genome{}) // within radius 40
	st.Add(95, 50, 0, 0, 0, agent.Genome{}) // out of radius
	g := newTestGrid(t, 20, 100, 100, 4)
	g.Rebuild(st.X(), st.Y(), 3)

	agg := NewAggregates(4)
	s := NewSense(40, 16)
	s.Run(st, g, agg, 3)

	if agg.NeighborCount[0] != 1 {
		t.Errorf("expected 1 neighbor within radius, got %d", agg.NeighborCount[0])
	}
}

func TestSenseSeparationPointsAway(t *testing.T) {
	st := agent.NewStore(4)
	st.Add(50, 50, 0, 0, 0, agent.Genome{})
	st.Add(55, 50, 0, 0, 0, agent.Genome{}) // to the right, within separation radius
	g := newTestGrid(t, 20, 100, 100, 4)
	g.Rebuild(st.X(), st.Y(), 2)

	agg := NewAggregates(4)
	s := NewSense(40, 16)
	s.Run(st, g, agg, 2)

	if agg.SeparationX[0] >= 0 {
		t.Errorf("expected separation to point away (negative x) from neighbor to the right, got %v", agg.SeparationX[0])
	}
}

func TestSenseSkipsDeadQuerier(t *testing.T) {
	st := agent.NewStore(4)
	st.Add(50, 50, 0, 0, 0, agent.Genome{})
	st.SetState(0, agent.Dead)
	st.Add(55, 50, 0, 0, 0, agent.Genome{})
	g := newTestGrid(t, 20, 100, 100, 4)
	g.Rebuild(st.X(), st.Y(), 2)

	agg := NewAggregates(4)
	s := NewSense(40, 16)
	s.Run(st, g, agg, 2)

	if agg.NeighborCount[0] != 0 {
		t.Errorf("expected dead querier to get zero aggregates, got %d", agg.NeighborCount[0])
	}
}

func TestSenseZeroesStaleAggregatesEachRun(t *testing.T) {
	st := agent.NewStore(4)
	st.Add(50, 50, 0, 0, 0, agent.Genome{})
	st.Add(55, 50, 0, 0, 0, agent.Genome{})
	g := newTestGrid(t, 20, 100, 100, 4)
	g.Rebuild(st.X(), st.Y(), 2)

	agg := NewAggregates(4)
	s := NewSense(40, 16)
	s.Run(st, g, agg, 2)
	if agg.NeighborCount[0] != 1 {
		t.Fatalf("setup: expected 1 neighbor, got %d", agg.NeighborCount[0])
	}

	// Remove the neighbor and rerun; stale aggregate values must not
	// survive into the new run.
	st2 := agent.NewStore(4)
	st2.Add(50, 50, 0, 0, 0, agent.Genome{})
	g2 := newTestGrid(t, 20, 100, 100, 4)
	g2.Rebuild(st2.X(), st2.Y(), 1)
	s.Run(st2, g2, agg, 1)

	if agg.NeighborCount[0] != 0 {
		t.Errorf("expected aggregates reset to 0, got %d", agg.NeighborCount[0])
	}
	if agg.SeparationX[0] != 0 || agg.SeparationY[0] != 0 {
		t.Errorf("expected separation reset to 0, got (%v,%v)", agg.SeparationX[0], agg.SeparationY[0])
	}
}
