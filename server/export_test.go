package server

import "github.com/lab1702/arena-npc/ai"

// Test helpers to expose private state for testing purposes

// World returns the server's world. Callers must not run the game loop
// concurrently.
func (s *Server) World() *World {
	return s.world
}

// StepOnce advances the server by one tick and returns the snapshot.
func (s *Server) StepOnce() Snapshot {
	return s.step()
}

// SwarmAgents exposes the live swarm slice.
func (w *World) SwarmAgents() []*ai.SwarmAgent {
	return w.swarms
}

// CombatAgents exposes the live combat agent slice.
func (w *World) CombatAgents() []*ai.CombatAgent {
	return w.combat
}

// SwarmBases exposes the bases.
func (w *World) SwarmBases() []*ai.SwarmBase {
	return w.bases
}

// AddSwarm places a free swarm agent.
func (w *World) AddSwarm(s *ai.SwarmAgent) {
	w.swarms = append(w.swarms, s)
}

// SetPlayerPos teleports a player without validation.
func (w *World) SetPlayerPos(id string, x, y float64) {
	p := w.players[id]
	p.X, p.Y = x, y
}
