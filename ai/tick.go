// Package ai holds the arena's non-player characters: behavior-tree driven
// combat agents, flocking swarm agents and the bases that spawn them.
//
// Agents never own the world. Each update receives a Tick describing the
// current simulation time and a read-only view of players and walls, and
// mutates only the agent itself.
package ai

import (
	"math"
	"time"

	"github.com/lab1702/arena-npc/game"
	"github.com/lab1702/arena-npc/nav"
)

// Tick is the per-update world view handed to agents.
type Tick struct {
	Now         time.Duration // simulation clock, monotonically increasing
	Dt          time.Duration // time since the previous update
	Players     map[string]game.Player
	Obstacles   nav.Obstacles
	WorldWidth  float64
	WorldHeight float64

	// Collides overrides the fine movement test. When nil the obstacle
	// set's circle test is used.
	Collides func(x, y, radius float64) bool
}

// Seconds returns Dt in seconds.
func (t *Tick) Seconds() float64 {
	return t.Dt.Seconds()
}

func (t *Tick) collides(x, y, radius float64) bool {
	if t.Collides != nil {
		return t.Collides(x, y, radius)
	}
	if t.Obstacles == nil {
		return false
	}
	return t.Obstacles.Collides(x, y, radius)
}

// ClosestPlayer returns the nearest alive player within maxRange of from.
// Ties are broken by player ID so the result does not depend on map order.
func (t *Tick) ClosestPlayer(from game.Point, maxRange float64) (game.Player, float64, bool) {
	var best game.Player
	bestDist := math.Inf(1)
	found := false
	for _, p := range t.Players {
		if !p.Alive() {
			continue
		}
		d := from.DistanceTo(p.Pos())
		if d > maxRange {
			continue
		}
		if d < bestDist || (d == bestDist && p.ID < best.ID) {
			best, bestDist, found = p, d, true
		}
	}
	return best, bestDist, found
}

// Player resolves a player by ID. Dead or departed players are not returned.
func (t *Tick) Player(id string) (game.Player, bool) {
	p, ok := t.Players[id]
	if !ok || !p.Alive() {
		return game.Player{}, false
	}
	return p, true
}

// clampToWorld keeps a body of the given radius inside the world.
func (t *Tick) clampToWorld(x, y, radius float64) (float64, float64) {
	if t.WorldWidth <= 0 || t.WorldHeight <= 0 {
		return x, y
	}
	return game.Clamp(x, radius, t.WorldWidth-radius), game.Clamp(y, radius, t.WorldHeight-radius)
}
