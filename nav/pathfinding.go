package nav

import (
	"container/heap"
	"math"

	"github.com/charmbracelet/log"
	"github.com/lab1702/arena-npc/game"
)

const (
	// GridSize is the A* cell size in world units.
	GridSize = 50.0
	// MaxExpansions caps the work a single search may do in one tick.
	MaxExpansions = 1000
	// GoalReachCells is how close, in cells, a frontier node must get to the goal.
	GoalReachCells = 1.5
)

// DebugPaths enables per-search logging.
var DebugPaths = false

type gridNeighbor struct {
	col, row int
	diagonal bool
}

var gridNeighbors = [...]gridNeighbor{
	{col: 0, row: -1},
	{col: 1, row: 0},
	{col: 0, row: 1},
	{col: -1, row: 0},
	{col: 1, row: -1, diagonal: true},
	{col: 1, row: 1, diagonal: true},
	{col: -1, row: 1, diagonal: true},
	{col: -1, row: -1, diagonal: true},
}

type gridPoint struct {
	col, row int
}

func (p gridPoint) world() game.Point {
	return game.Point{X: float64(p.col) * GridSize, Y: float64(p.row) * GridSize}
}

func snap(p game.Point) gridPoint {
	return gridPoint{col: int(math.Round(p.X / GridSize)), row: int(math.Round(p.Y / GridSize))}
}

type searchNode struct {
	point  gridPoint
	g      float64
	f      float64
	index  int
	parent *searchNode
}

type searchQueue []*searchNode

func (pq searchQueue) Len() int { return len(pq) }

func (pq searchQueue) Less(i, j int) bool { return pq[i].f < pq[j].f }

func (pq searchQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *searchQueue) Push(x any) {
	n := len(*pq)
	item := x.(*searchNode)
	item.index = n
	*pq = append(*pq, item)
}

func (pq *searchQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}

func manhattan(a, b game.Point) float64 {
	return math.Abs(a.X-b.X) + math.Abs(a.Y-b.Y)
}

// searchResult carries the outcome of one A* run.
type searchResult struct {
	path       []game.Point
	expansions int
	found      bool
}

// FindPath returns a waypoint list from start to goal. The first and last
// entries are always exactly start and goal. When the direct segment is
// visible no search runs; when the search is exhausted the direct pair is
// returned and the caller must cope with the obstacle.
func FindPath(start, goal game.Point, obs Obstacles, worldW, worldH, radius float64) []game.Point {
	if HasLineOfSight(start, goal, obs, radius) {
		return []game.Point{start, goal}
	}
	res := search(start, goal, obs, worldW, worldH, radius)
	if !res.found {
		if DebugPaths {
			log.Info("path search exhausted, using direct route",
				"start", start, "goal", goal, "expansions", res.expansions)
		}
		return []game.Point{start, goal}
	}
	return res.path
}

func search(start, goal game.Point, obs Obstacles, worldW, worldH, radius float64) searchResult {
	maxCol := int(math.Floor(worldW / GridSize))
	maxRow := int(math.Floor(worldH / GridSize))
	inWorld := func(p gridPoint) bool {
		return p.col >= 0 && p.row >= 0 && p.col <= maxCol && p.row <= maxRow
	}
	free := func(p gridPoint) bool {
		w := p.world()
		return inWorld(p) && !obs.Blocked(w.X, w.Y, radius)
	}
	reach := GoalReachCells * GridSize

	origin := snap(start)
	open := &searchQueue{}
	heap.Init(open)
	heap.Push(open, &searchNode{point: origin, f: manhattan(origin.world(), goal)})
	gScore := map[gridPoint]float64{origin: 0}
	closed := make(map[gridPoint]struct{})

	expansions := 0
	for open.Len() > 0 && expansions < MaxExpansions {
		current := heap.Pop(open).(*searchNode)
		if _, seen := closed[current.point]; seen {
			continue
		}
		closed[current.point] = struct{}{}
		expansions++

		pos := current.point.world()
		if pos.DistanceTo(goal) <= reach {
			return searchResult{
				path:       reconstruct(current, start, goal),
				expansions: expansions,
				found:      true,
			}
		}

		for _, delta := range gridNeighbors {
			next := gridPoint{col: current.point.col + delta.col, row: current.point.row + delta.row}
			if _, seen := closed[next]; seen {
				continue
			}
			if !free(next) {
				continue
			}
			// No corner cutting: both orthogonal cells must be open.
			if delta.diagonal &&
				(!free(gridPoint{col: next.col, row: current.point.row}) ||
					!free(gridPoint{col: current.point.col, row: next.row})) {
				continue
			}
			nextPos := next.world()
			tentativeG := current.g + pos.DistanceTo(nextPos)
			if prev, ok := gScore[next]; ok && tentativeG >= prev {
				continue
			}
			gScore[next] = tentativeG
			heap.Push(open, &searchNode{
				point:  next,
				g:      tentativeG,
				f:      tentativeG + manhattan(nextPos, goal),
				parent: current,
			})
		}
	}
	return searchResult{expansions: expansions}
}

// reconstruct walks the parent chain and pins the ends to the exact
// start and goal coordinates.
func reconstruct(end *searchNode, start, goal game.Point) []game.Point {
	path := make([]game.Point, 0)
	for node := end; node != nil; node = node.parent {
		path = append(path, node.point.world())
	}
	for i := 0; i < len(path)/2; i++ {
		j := len(path) - 1 - i
		path[i], path[j] = path[j], path[i]
	}
	if len(path) == 1 {
		return []game.Point{start, goal}
	}
	path[0] = start
	path[len(path)-1] = goal
	return path
}
