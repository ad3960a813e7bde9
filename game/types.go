package game

import (
	"math"
	"time"
)

// Arena defaults
const (
	DefaultWorldWidth  = 3000
	DefaultWorldHeight = 3000

	// Game timing
	FPS            = 20
	UpdateInterval = time.Second / FPS // 20 ticks per second

	// PlayerRadius is the collision radius of a human player.
	PlayerRadius = 20.0
)

// Point is a position in world coordinates.
type Point struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// DistanceTo returns the Euclidean distance between p and q.
func (p Point) DistanceTo(q Point) float64 {
	return Distance(p.X, p.Y, q.X, q.Y)
}

// Player is the live state of a human player as seen by NPCs for one tick.
// Agents only read it; the host owns and mutates it.
type Player struct {
	ID        string  `json:"id" msgpack:"id"`
	Name      string  `json:"name" msgpack:"name"`
	X         float64 `json:"x" msgpack:"x"`
	Y         float64 `json:"y" msgpack:"y"`
	Health    float64 `json:"health" msgpack:"health"`
	MaxHealth float64 `json:"maxHealth" msgpack:"maxHealth"`
}

// Alive reports whether the player can be targeted.
func (p Player) Alive() bool {
	return p.Health > 0
}

// Pos returns the player position.
func (p Player) Pos() Point {
	return Point{X: p.X, Y: p.Y}
}

// Distance returns the distance between two points.
func Distance(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return math.Sqrt(dx*dx + dy*dy)
}

// NormalizeAngle wraps an angle into [0, 2*pi).
func NormalizeAngle(angle float64) float64 {
	angle = math.Mod(angle, 2*math.Pi)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	return angle
}

// AngleDiff returns the signed shortest rotation from a to b, in (-pi, pi].
func AngleDiff(a, b float64) float64 {
	d := math.Mod(b-a, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	} else if d <= -math.Pi {
		d += 2 * math.Pi
	}
	return d
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Normalize returns the unit vector of (x, y) and its original length.
// A zero vector is returned unchanged with length 0.
func Normalize(x, y float64) (float64, float64, float64) {
	l := math.Hypot(x, y)
	if l == 0 {
		return 0, 0, 0
	}
	return x / l, y / l, l
}
