package nav

import (
	"math"
	"math/rand"

	"github.com/lab1702/arena-npc/game"
)

// SimplifyPath removes waypoints that can be skipped: from each kept point it
// advances through the following waypoints while line of sight holds and
// keeps only the furthest visible one. The first and last points are kept.
func SimplifyPath(path []game.Point, obs Obstacles, radius float64) []game.Point {
	if len(path) <= 2 {
		out := make([]game.Point, len(path))
		copy(out, path)
		return out
	}

	out := []game.Point{path[0]}
	i := 0
	for i < len(path)-1 {
		furthest := i + 1
		for k := i + 2; k < len(path); k++ {
			if !HasLineOfSight(path[i], path[k], obs, radius) {
				break
			}
			furthest = k
		}
		out = append(out, path[furthest])
		i = furthest
	}
	return out
}

// FindSafePosition returns the next point an agent should head for. When the
// agent is clear of walls this is the second waypoint of a path to target.
// When it is stuck inside a blocked region it is pushed avoidDistance away
// from the nearest wall center, clamped to the world.
func FindSafePosition(current, target game.Point, obs Obstacles, worldW, worldH, radius, avoidDistance float64, rng *rand.Rand) game.Point {
	if obs == nil || !obs.Blocked(current.X, current.Y, radius) {
		path := FindPath(current, target, obs, worldW, worldH, radius)
		return path[1]
	}

	wall, ok := obs.NearestWall(current.X, current.Y)
	if !ok {
		return current
	}
	center := wall.Center()
	dx, dy, l := game.Normalize(current.X-center.X, current.Y-center.Y)
	if l == 0 {
		var angle float64
		if rng != nil {
			angle = rng.Float64() * 2 * math.Pi
		} else {
			angle = rand.Float64() * 2 * math.Pi
		}
		dx, dy = math.Cos(angle), math.Sin(angle)
	}
	return game.Point{
		X: game.Clamp(center.X+dx*avoidDistance, 0, worldW),
		Y: game.Clamp(center.Y+dy*avoidDistance, 0, worldH),
	}
}
