package server

import (
	"math"
	"strings"

	"github.com/lab1702/arena-npc/game"
)

// Handler data structures

// JoinData represents a join request
type JoinData struct {
	Name string `json:"name"`
}

// MoveData is a client-side position report.
type MoveData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// HitData reports that the player's own weapon struck an NPC.
type HitData struct {
	Target string  `json:"target"` // combat agent, swarm agent or base ID
	Damage float64 `json:"damage"`
}

// DifficultyData asks for a combat agent's difficulty to change.
type DifficultyData struct {
	Agent string `json:"agent"`
	Label string `json:"label"`
}

// Utility functions

// sanitizeName removes non-alphanumeric characters
func sanitizeName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, name)

	const maxNameLength = 20
	if len(cleaned) > maxNameLength {
		cleaned = cleaned[:maxNameLength]
	}

	return cleaned
}

// validateCoordinate clamps a reported coordinate into [radius, limit-radius].
// NaN and infinities are rejected.
func validateCoordinate(v, limit, radius float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return game.Clamp(v, radius, limit-radius), true
}

// validateDamage accepts finite hits in (0, MaxHitDamage].
func validateDamage(d float64) bool {
	return !math.IsNaN(d) && d > 0 && d <= MaxHitDamage
}
