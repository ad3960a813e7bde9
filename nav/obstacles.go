// Package nav answers movement questions against the static wall set:
// line of sight, grid A* routes, path simplification and escape points.
package nav

import (
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/lab1702/arena-npc/game"
)

// Obstacles is the read-only wall set supplied to every navigation call.
type Obstacles interface {
	// Blocked reports whether the square of half-size radius around (x, y)
	// overlaps any wall. This is the coarse pathfinding test.
	Blocked(x, y, radius float64) bool
	// Collides reports whether the circle at (x, y) overlaps any wall.
	// This is the fine movement test.
	Collides(x, y, radius float64) bool
	// NearestWall returns the wall whose center is closest to (x, y).
	NearestWall(x, y float64) (game.Wall, bool)
}

// Walls is a plain wall list scanned linearly.
type Walls []game.Wall

// Blocked scans every wall with the coarse box test.
func (ws Walls) Blocked(x, y, radius float64) bool {
	for _, w := range ws {
		if w.BlocksBox(x, y, radius) {
			return true
		}
	}
	return false
}

// Collides scans every wall with the circle test.
func (ws Walls) Collides(x, y, radius float64) bool {
	for _, w := range ws {
		if game.CircleRectOverlap(x, y, radius, w) {
			return true
		}
	}
	return false
}

// NearestWall compares wall centers.
func (ws Walls) NearestWall(x, y float64) (game.Wall, bool) {
	return nearestByCenter(ws, x, y)
}

func nearestByCenter(ws []game.Wall, x, y float64) (game.Wall, bool) {
	best := -1
	bestDist := math.Inf(1)
	for i, w := range ws {
		c := w.Center()
		d := game.Distance(x, y, c.X, c.Y)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	if best < 0 {
		return game.Wall{}, false
	}
	return ws[best], true
}

// minExtent keeps degenerate walls and query boxes representable in the tree.
const minExtent = 1e-6

type wallEntry struct {
	wall game.Wall
	rect rtreego.Rect
}

func (e *wallEntry) Bounds() rtreego.Rect {
	return e.rect
}

// WallIndex is an R-tree over the wall set. Walls are immutable for a match,
// so the index is built once and shared read-only by every agent.
type WallIndex struct {
	walls []game.Wall
	tree  *rtreego.Rtree
}

// NewWallIndex builds the index. Walls with non-positive size are skipped.
func NewWallIndex(walls []game.Wall) *WallIndex {
	idx := &WallIndex{
		walls: make([]game.Wall, 0, len(walls)),
		tree:  rtreego.NewTree(2, 25, 50),
	}
	for _, w := range walls {
		rect, err := rtreego.NewRect(rtreego.Point{w.X, w.Y}, []float64{w.Width, w.Height})
		if err != nil {
			continue
		}
		idx.walls = append(idx.walls, w)
		idx.tree.Insert(&wallEntry{wall: w, rect: rect})
	}
	return idx
}

// Walls returns the indexed walls.
func (idx *WallIndex) Walls() []game.Wall {
	return idx.walls
}

// Len returns the number of indexed walls.
func (idx *WallIndex) Len() int {
	return len(idx.walls)
}

func (idx *WallIndex) query(x, y, radius float64) []rtreego.Spatial {
	side := math.Max(2*radius, minExtent)
	bb, err := rtreego.NewRect(rtreego.Point{x - side/2, y - side/2}, []float64{side, side})
	if err != nil {
		return nil
	}
	return idx.tree.SearchIntersect(bb)
}

// Blocked checks only walls whose bounds meet the query box.
func (idx *WallIndex) Blocked(x, y, radius float64) bool {
	for _, s := range idx.query(x, y, radius) {
		if s.(*wallEntry).wall.BlocksBox(x, y, radius) {
			return true
		}
	}
	return false
}

// Collides checks only walls whose bounds meet the circle's box.
func (idx *WallIndex) Collides(x, y, radius float64) bool {
	for _, s := range idx.query(x, y, radius) {
		if game.CircleRectOverlap(x, y, radius, s.(*wallEntry).wall) {
			return true
		}
	}
	return false
}

// NearestWall compares wall centers.
func (idx *WallIndex) NearestWall(x, y float64) (game.Wall, bool) {
	return nearestByCenter(idx.walls, x, y)
}

// SegmentClear reports whether the straight segment a-b misses every wall.
// Unlike HasLineOfSight it ignores entity size.
func (idx *WallIndex) SegmentClear(a, b game.Point) bool {
	minX, maxX := math.Min(a.X, b.X), math.Max(a.X, b.X)
	minY, maxY := math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)
	bb, err := rtreego.NewRect(rtreego.Point{minX, minY},
		[]float64{math.Max(maxX-minX, minExtent), math.Max(maxY-minY, minExtent)})
	if err != nil {
		return true
	}
	for _, s := range idx.tree.SearchIntersect(bb) {
		if game.SegmentIntersectsWall(a, b, s.(*wallEntry).wall) {
			return false
		}
	}
	return true
}
