package game

import "math"

// Wall is a static axis-aligned rectangle. X, Y is the top-left corner.
type Wall struct {
	X      float64 `json:"x" yaml:"x" msgpack:"x"`
	Y      float64 `json:"y" yaml:"y" msgpack:"y"`
	Width  float64 `json:"width" yaml:"width" msgpack:"width"`
	Height float64 `json:"height" yaml:"height" msgpack:"height"`
}

// Center returns the rectangle center.
func (w Wall) Center() Point {
	return Point{X: w.X + w.Width/2, Y: w.Y + w.Height/2}
}

// Contains reports whether (x, y) lies inside the rectangle, edges included.
func (w Wall) Contains(x, y float64) bool {
	return x >= w.X && x <= w.X+w.Width && y >= w.Y && y <= w.Y+w.Height
}

// OverlapsBox reports whether the box [minX,maxX]x[minY,maxY] overlaps the
// rectangle interior. Touching edges do not count.
func (w Wall) OverlapsBox(minX, minY, maxX, maxY float64) bool {
	return minX < w.X+w.Width && maxX > w.X && minY < w.Y+w.Height && maxY > w.Y
}

// BlocksBox reports whether a point inflated by radius into a square overlaps the wall.
func (w Wall) BlocksBox(x, y, radius float64) bool {
	return w.OverlapsBox(x-radius, y-radius, x+radius, y+radius)
}

// CircleRectOverlap reports whether the circle at (cx, cy) overlaps the wall.
func CircleRectOverlap(cx, cy, radius float64, w Wall) bool {
	closestX := Clamp(cx, w.X, w.X+w.Width)
	closestY := Clamp(cy, w.Y, w.Y+w.Height)
	dx := cx - closestX
	dy := cy - closestY
	return dx*dx+dy*dy < radius*radius
}

// SegmentIntersectsWall reports whether the segment a-b crosses the rectangle.
// Liang-Barsky clipping against the four edges.
func SegmentIntersectsWall(a, b Point, w Wall) bool {
	dx := b.X - a.X
	dy := b.Y - a.Y
	t0, t1 := 0.0, 1.0
	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return false
			}
			t0 = math.Max(t0, r)
		} else {
			if r < t0 {
				return false
			}
			t1 = math.Min(t1, r)
		}
		return true
	}
	return clip(-dx, a.X-w.X) &&
		clip(dx, w.X+w.Width-a.X) &&
		clip(-dy, a.Y-w.Y) &&
		clip(dy, w.Y+w.Height-a.Y) &&
		t0 <= t1
}
