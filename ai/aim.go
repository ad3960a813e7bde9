package ai

import (
	"math"
	"math/rand"

	"github.com/lab1702/arena-npc/game"
)

// aimErrorRad returns a random signed aim error in radians. The error is
// bounded by (1 - accuracy) * MaxAimErrorDeg, so a perfect shot at accuracy 1.
func aimErrorRad(accuracy float64, rng *rand.Rand) float64 {
	// Uniform in [-1, 1], scaled by how inaccurate the shooter is
	deg := (1 - game.Clamp(accuracy, 0, 1)) * (rng.Float64()*2 - 1) * MaxAimErrorDeg
	return deg * math.Pi / 180
}

// signedNoise returns a uniform value in [-magnitude, magnitude].
func signedNoise(magnitude float64, rng *rand.Rand) float64 {
	return (rng.Float64()*2 - 1) * magnitude
}

// smoothingFactor is the fraction of the remaining gap closed in dt by a
// first-order lag with time constant tau.
func smoothingFactor(dtSeconds, tauSeconds float64) float64 {
	if tauSeconds <= 0 {
		return 1
	}
	return 1 - math.Exp(-dtSeconds/tauSeconds)
}
