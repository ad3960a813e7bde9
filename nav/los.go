package nav

import (
	"math"

	"github.com/lab1702/arena-npc/game"
)

// LOSStep is the spacing between line-of-sight samples in world units.
const LOSStep = 5.0

// HasLineOfSight samples the segment a-b every LOSStep units and fails as
// soon as a sample inflated by radius is blocked. A zero-length segment is
// always visible.
func HasLineOfSight(a, b game.Point, obs Obstacles, radius float64) bool {
	if obs == nil {
		return true
	}
	dist := a.DistanceTo(b)
	steps := int(math.Ceil(dist / LOSStep))
	if steps == 0 {
		return true
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := a.X + (b.X-a.X)*t
		y := a.Y + (b.Y-a.Y)*t
		if obs.Blocked(x, y, radius) {
			return false
		}
	}
	return true
}
