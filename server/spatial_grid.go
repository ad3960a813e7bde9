package server

import (
	"math"

	"github.com/lab1702/arena-npc/ai"
)

// SpatialGrid is a uniform hash over the arena used to find swarm agents
// that might be flocking neighbors. Cells hold indices into the slice that
// was last indexed.
type SpatialGrid struct {
	cellSize float64
	cols     int
	rows     int
	cells    [][]int
}

// GridCellSize matches the widest flocking radius so a 3x3 block of cells
// always covers every neighbor an agent can react to.
const GridCellSize = ai.CohesionRadius

// NewSpatialGrid creates a grid covering a width x height world.
func NewSpatialGrid(width, height float64) *SpatialGrid {
	cols := int(math.Ceil(width / GridCellSize))
	rows := int(math.Ceil(height / GridCellSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	cells := make([][]int, cols*rows)
	for i := range cells {
		cells[i] = make([]int, 0, 4)
	}

	return &SpatialGrid{
		cellSize: GridCellSize,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// Clear resets the grid for a new frame
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

func (g *SpatialGrid) cell(x, y float64) (int, int) {
	col := int(x / g.cellSize)
	row := int(y / g.cellSize)

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

// Insert adds an index at a position.
func (g *SpatialGrid) Insert(index int, x, y float64) {
	col, row := g.cell(x, y)
	idx := row*g.cols + col
	g.cells[idx] = append(g.cells[idx], index)
}

// GetNearby returns indices that might be within one cell of the given
// position. The caller must still perform exact distance checks.
func (g *SpatialGrid) GetNearby(x, y float64) []int {
	col, row := g.cell(x, y)

	var result []int
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			c := col + dc
			r := row + dr
			if c < 0 || c >= g.cols || r < 0 || r >= g.rows {
				continue
			}
			result = append(result, g.cells[r*g.cols+c]...)
		}
	}
	return result
}

// IndexSwarms populates the grid with all living swarm agents.
func (g *SpatialGrid) IndexSwarms(agents []*ai.SwarmAgent) {
	g.Clear()
	for i, s := range agents {
		if !s.IsDead() {
			g.Insert(i, s.X, s.Y)
		}
	}
}

// Neighbors returns the candidate flock mates of agents[i], excluding the
// agent itself. IndexSwarms must have been called with the same slice.
func (g *SpatialGrid) Neighbors(agents []*ai.SwarmAgent, i int) []*ai.SwarmAgent {
	self := agents[i]
	nearby := g.GetNearby(self.X, self.Y)
	out := make([]*ai.SwarmAgent, 0, len(nearby))
	for _, j := range nearby {
		if j != i {
			out = append(out, agents[j])
		}
	}
	return out
}
