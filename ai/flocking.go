package ai

import (
	"math"
	"math/rand"
)

// FlockForces holds the three unit-length flocking steering directions.
// A zero component means no neighbor fell inside that rule's radius.
type FlockForces struct {
	SepX, SepY float64
	CohX, CohY float64
	AliX, AliY float64
}

// flock computes separation, cohesion and alignment for s against the other
// live swarm members in neighbors.
func (s *SwarmAgent) flock(neighbors []*SwarmAgent, rng *rand.Rand) FlockForces {
	var f FlockForces
	closeDx, closeDy := 0.0, 0.0
	xPosAvg, yPosAvg, cohesionCount := 0.0, 0.0, 0.0
	xVelAvg, yVelAvg, alignCount := 0.0, 0.0, 0.0

	for _, other := range neighbors {
		if other == nil || other == s || other.IsDead() {
			continue
		}
		dx := s.X - other.X
		dy := s.Y - other.Y
		dist := math.Hypot(dx, dy)

		// 1. Separation, inverse-distance weighted
		if dist < SeparationRadius {
			if dist == 0 {
				angle := rng.Float64() * 2 * math.Pi
				closeDx += math.Cos(angle)
				closeDy += math.Sin(angle)
			} else {
				closeDx += dx / dist / dist
				closeDy += dy / dist / dist
			}
		}

		// 2. Cohesion
		if dist < CohesionRadius {
			xPosAvg += other.X
			yPosAvg += other.Y
			cohesionCount++
		}

		// 3. Alignment
		if dist < AlignmentRadius {
			xVelAvg += other.VX
			yVelAvg += other.VY
			alignCount++
		}
	}

	f.SepX, f.SepY = unit(closeDx, closeDy)
	if cohesionCount > 0 {
		f.CohX, f.CohY = unit(xPosAvg/cohesionCount-s.X, yPosAvg/cohesionCount-s.Y)
	}
	if alignCount > 0 {
		f.AliX, f.AliY = unit(xVelAvg/alignCount-s.VX, yVelAvg/alignCount-s.VY)
	}
	return f
}

func unit(x, y float64) (float64, float64) {
	l := math.Hypot(x, y)
	if l == 0 {
		return 0, 0
	}
	return x / l, y / l
}

// limit scales (x, y) down to at most maxLen.
func limit(x, y, maxLen float64) (float64, float64) {
	l := math.Hypot(x, y)
	if l <= maxLen || l == 0 {
		return x, y
	}
	return x / l * maxLen, y / l * maxLen
}
