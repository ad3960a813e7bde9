package server

import (
	"github.com/charmbracelet/log"
	"github.com/lab1702/arena-npc/ai"
)

// Debug flags for various subsystems
var (
	DebugShots = false // log every shooting decision
	DebugMelee = false // log every swarm bite
)

func logShotDecision(shot ai.ShotDecision) {
	if DebugShots {
		log.Info("shot decision",
			"agent", shot.AgentID, "target", shot.TargetID, "weapon", shot.Weapon,
			"angle", shot.Angle, "distance", shot.Distance)
	}
}

func logMelee(ev MeleeEvent) {
	if DebugMelee {
		log.Info("melee",
			"attacker", ev.AttackerID, "target", ev.TargetID,
			"damage", ev.Damage, "lethal", ev.Lethal)
	}
}
