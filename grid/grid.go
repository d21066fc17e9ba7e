// Package grid implements the uniform cell-list spatial index used by
// the Sense stage to enumerate an agent's 3x3 cell neighborhood in
// sub-linear time. It is rebuilt from scratch every tick.
//
// Grounded on the teacher's systems/spatial.go SpatialGrid, but
// diverges from its []ecs.Entity-per-cell slices (which allocate on
// every Insert and Clear) to a push-to-front Head/Next linked list
// over plain int32 agent ids, matching the representation the spec
// mandates and whose per-cell iteration order (reverse of insertion
// id) is an observable, reproducible contract.
package grid

import "math"

// Grid is a fixed cell-size spatial index over a rectangular world.
type Grid struct {
	cellSize     float32
	cols, rows   int
	width        float32
	height       float32
	head         []int32 // length cols*rows, -1 = empty
	next         []int32 // length capacity, per-agent link
}

// New creates a Grid covering [0,width] x [0,height] with the given
// cell size and initial agent capacity. It returns an error if any
// dimension is non-positive.
func New(cellSize, width, height float32, capacity int) (*Grid, error) {
	if cellSize <= 0 {
		return nil, errInvalid("cellSize must be > 0")
	}
	if width <= 0 || height <= 0 {
		return nil, errInvalid("width and height must be > 0")
	}
	if capacity < 0 {
		capacity = 0
	}

	cols := int(math.Ceil(float64(width / cellSize)))
	rows := int(math.Ceil(float64(height / cellSize)))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	g := &Grid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		width:    width,
		height:   height,
		head:     make([]int32, cols*rows),
		next:     make([]int32, capacity),
	}
	for i := range g.head {
		g.head[i] = -1
	}
	for i := range g.next {
		g.next[i] = -1
	}
	return g, nil
}

type invalidError string

func (e invalidError) Error() string { return string(e) }

func errInvalid(msg string) error { return invalidError("grid: " + msg) }

// Cols returns the number of grid columns.
func (g *Grid) Cols() int { return g.cols }

// Rows returns the number of grid rows.
func (g *Grid) Rows() int { return g.rows }

// TotalCells returns Cols() * Rows().
func (g *Grid) TotalCells() int { return g.cols * g.rows }

// ensureCapacity grows next in lockstep with the agent store; called
// by Rebuild before inserting.
func (g *Grid) ensureCapacity(n int) {
	if n <= len(g.next) {
		return
	}
	next := make([]int32, n)
	copy(next, g.next)
	for i := len(g.next); i < n; i++ {
		next[i] = -1
	}
	g.next = next
}

// cellOf returns the clamped (col, row) for a world position. Exactly
// on the right/top edge falls into the last column/row; negative
// positions (only reachable if an external system violates the
// position invariant) fall into cell (0,0).
func (g *Grid) cellOf(x, y float32) (col, row int) {
	col = int(x / g.cellSize)
	row = int(y / g.cellSize)
	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}
	return col, row
}

// Rebuild clears the grid and reinserts every agent in [0, count)
// using X/Y. Insertion is push-to-front: Next[i] = Head[cell];
// Head[cell] = i, so a cell's list iterates in reverse of agent id.
// Zero allocations once ensureCapacity has grown to count.
func (g *Grid) Rebuild(x, y []float32, count int) {
	g.ensureCapacity(count)

	for i := range g.head {
		g.head[i] = -1
	}

	for i := 0; i < count; i++ {
		col, row := g.cellOf(x[i], y[i])
		cell := row*g.cols + col
		g.next[i] = g.head[cell]
		g.head[cell] = int32(i)
	}
}

// Query3x3 invokes visit for every agent id occupying the 3x3 cell
// neighborhood centered on (x, y), in push-to-front (descending
// within-cell insertion) order, cell by cell in dy,dx scan order.
// Out-of-range columns/rows are skipped, not wrapped — toroidal
// wrapping is strictly a §4.F Integrate boundary concern, not a grid
// concern.
func (g *Grid) Query3x3(x, y float32, visit func(id int32)) {
	centerCol, centerRow := g.cellOf(x, y)

	for dy := -1; dy <= 1; dy++ {
		row := centerRow + dy
		if row < 0 || row >= g.rows {
			continue
		}
		for dx := -1; dx <= 1; dx++ {
			col := centerCol + dx
			if col < 0 || col >= g.cols {
				continue
			}
			cell := row*g.cols + col
			for id := g.head[cell]; id != -1; id = g.next[id] {
				visit(id)
			}
		}
	}
}

// Query3x3Buffer writes matching agent ids into dst (up to cap(dst))
// and returns the slice actually written plus the total number of
// matches found (which may exceed len(dst) if the buffer was too
// small).
func (g *Grid) Query3x3Buffer(x, y float32, dst []int32) (out []int32, total int) {
	out = dst[:0]
	g.Query3x3(x, y, func(id int32) {
		total++
		if len(out) < cap(dst) {
			out = append(out, id)
		}
	})
	return out, total
}

// Stats summarizes grid occupancy, computed off the hot path.
type Stats struct {
	TotalCells               int
	OccupiedCells            int
	EmptyCells               int
	MaxAgentsPerCell         int
	AvgAgentsPerOccupiedCell float64
}

// Stats computes occupancy statistics over the current grid contents
// (i.e. since the last Rebuild). count bounds the walk of the Next
// chain per cell.
func (g *Grid) Stats(count int) Stats {
	total := g.TotalCells()
	occupied := 0
	maxPerCell := 0
	sum := 0

	for cell := 0; cell < total; cell++ {
		n := 0
		for id := g.head[cell]; id != -1; id = g.next[id] {
			n++
			if n > count {
				// Defensive bound in case of a corrupted chain; never
				// hit in practice since Rebuild always produces an
				// acyclic forest of length <= count.
				break
			}
		}
		if n > 0 {
			occupied++
			sum += n
			if n > maxPerCell {
				maxPerCell = n
			}
		}
	}

	avg := 0.0
	if occupied > 0 {
		avg = float64(sum) / float64(occupied)
	}

	return Stats{
		TotalCells:               total,
		OccupiedCells:            occupied,
		EmptyCells:               total - occupied,
		MaxAgentsPerCell:         maxPerCell,
		AvgAgentsPerOccupiedCell: avg,
	}
}
