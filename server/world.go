package server

import (
	"math/rand"
	"slices"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/lab1702/arena-npc/ai"
	"github.com/lab1702/arena-npc/config"
	"github.com/lab1702/arena-npc/game"
	"github.com/lab1702/arena-npc/nav"
	"github.com/pkg/errors"
)

// Host rules that sit outside the agents themselves.
const (
	PlayerMaxHealth    = 100.0
	PlayerRespawnDelay = 3 * time.Second
	CombatRespawnDelay = 15 * time.Second
	MaxHitDamage       = 50.0 // largest single hit a client may report

	spawnAttempts = 32
)

var (
	ErrUnknownPlayer = errors.New("unknown player")
	ErrPlayerDead    = errors.New("player is dead")
	ErrInvalidDamage = errors.New("invalid damage")
	ErrUnknownTarget = errors.New("unknown target")
	ErrNoLineOfSight = errors.New("target not in line of sight")
)

// ShotEvent is a combat agent's decision to fire, as sent to clients.
type ShotEvent struct {
	AgentID  string  `json:"agentId" msgpack:"agentId"`
	TargetID string  `json:"targetId" msgpack:"targetId"`
	Weapon   string  `json:"weapon" msgpack:"weapon"`
	X        float64 `json:"x" msgpack:"x"`
	Y        float64 `json:"y" msgpack:"y"`
	Angle    float64 `json:"angle" msgpack:"angle"`
	Distance float64 `json:"distance" msgpack:"distance"`
}

// MeleeEvent is a swarm bite that landed on a player.
type MeleeEvent struct {
	AttackerID string  `json:"attackerId" msgpack:"attackerId"`
	TargetID   string  `json:"targetId" msgpack:"targetId"`
	Damage     float64 `json:"damage" msgpack:"damage"`
	Lethal     bool    `json:"lethal" msgpack:"lethal"`
}

// StepResult lists what happened during one Step.
type StepResult struct {
	Shots   []ShotEvent
	Melee   []MeleeEvent
	Spawned []string // new swarm and combat agent IDs
	Removed []string // dead NPC IDs dropped this step
}

// HitResult describes the outcome of a reported hit.
type HitResult struct {
	Target string  `json:"target" msgpack:"target"`
	Kind   string  `json:"kind" msgpack:"kind"`
	Health float64 `json:"health" msgpack:"health"`
	Killed bool    `json:"killed" msgpack:"killed"`
}

// Target kinds reported in HitResult.
const (
	KindCombat = "combat"
	KindSwarm  = "swarm"
	KindBase   = "base"
)

type pendingRespawn struct {
	at        time.Duration
	placement config.CombatAgent
}

// World owns every entity in the arena and advances them in fixed steps.
// It is not safe for concurrent use; the Server serializes access.
type World struct {
	Width, Height float64

	index      *nav.WallIndex
	players    map[string]*game.Player
	deaths     map[string]time.Duration
	combat     []*ai.CombatAgent
	placements map[string]config.CombatAgent
	respawns   []pendingRespawn
	swarms     []*ai.SwarmAgent
	bases      []*ai.SwarmBase
	grid       *SpatialGrid
	now        time.Duration
	frame      int64
	rng        *rand.Rand
	last       StepResult
}

// NewWorld builds the arena described by cfg. The seed drives every random
// choice made by the world and its agents.
func NewWorld(cfg *config.Arena, seed int64) *World {
	w := &World{
		Width:      cfg.World.Width,
		Height:     cfg.World.Height,
		index:      nav.NewWallIndex(cfg.Walls),
		players:    make(map[string]*game.Player),
		deaths:     make(map[string]time.Duration),
		placements: make(map[string]config.CombatAgent),
		grid:       NewSpatialGrid(cfg.World.Width, cfg.World.Height),
		rng:        rand.New(rand.NewSource(seed)),
	}

	for _, c := range cfg.CombatAgents {
		w.addCombatAgent(c)
	}
	for _, b := range cfg.SwarmBases {
		label := b.Difficulty
		if label == "" {
			label = cfg.SwarmDifficulty
		}
		w.bases = append(w.bases, ai.NewSwarmBase(game.Pt(b.X, b.Y), label, w.now))
	}

	log.Info("arena ready",
		"width", w.Width, "height", w.Height, "walls", w.index.Len(),
		"combatAgents", len(w.combat), "bases", len(w.bases))
	return w
}

func (w *World) childRNG() *rand.Rand {
	return rand.New(rand.NewSource(w.rng.Int63()))
}

func (w *World) addCombatAgent(c config.CombatAgent) *ai.CombatAgent {
	a := ai.NewCombatAgent(c.Name, game.Pt(c.X, c.Y), c.Difficulty, w.childRNG())
	w.combat = append(w.combat, a)
	w.placements[a.ID] = c
	return a
}

// Now is the simulation clock.
func (w *World) Now() time.Duration {
	return w.now
}

// Frame counts completed steps.
func (w *World) Frame() int64 {
	return w.frame
}

// Walls returns the static obstacles.
func (w *World) Walls() []game.Wall {
	return w.index.Walls()
}

func (w *World) tick(dt time.Duration) *ai.Tick {
	players := make(map[string]game.Player, len(w.players))
	for id, p := range w.players {
		players[id] = *p
	}
	return &ai.Tick{
		Now:         w.now,
		Dt:          dt,
		Players:     players,
		Obstacles:   w.index,
		WorldWidth:  w.Width,
		WorldHeight: w.Height,
		Collides:    w.index.Collides,
	}
}

// Step advances the world by dt.
func (w *World) Step(dt time.Duration) StepResult {
	w.now += dt
	w.frame++

	var res StepResult
	w.revivePlayers()
	w.respawnCombatAgents(&res)

	t := w.tick(dt)

	for _, a := range w.combat {
		if a.IsDead() {
			continue
		}
		a.Update(t)
		if shot, ok := a.ShootingInfo(t); ok {
			logShotDecision(shot)
			res.Shots = append(res.Shots, ShotEvent{
				AgentID:  shot.AgentID,
				TargetID: shot.TargetID,
				Weapon:   shot.Weapon.String(),
				X:        shot.X,
				Y:        shot.Y,
				Angle:    shot.Angle,
				Distance: shot.Distance,
			})
		}
	}

	w.grid.IndexSwarms(w.swarms)
	for i, s := range w.swarms {
		if s.IsDead() {
			continue
		}
		attack, ok := s.Update(t, w.grid.Neighbors(w.swarms, i))
		if !ok {
			continue
		}
		if ev, landed := w.applyMelee(t, attack); landed {
			logMelee(ev)
			res.Melee = append(res.Melee, ev)
		}
	}

	w.spawnSwarms(&res)
	w.removeDead(&res)

	w.last = res
	return res
}

// applyMelee damages the bitten player. Later agents in the same step see
// the reduced health through the tick view.
func (w *World) applyMelee(t *ai.Tick, attack ai.MeleeAttack) (MeleeEvent, bool) {
	p, ok := w.players[attack.TargetID]
	if !ok || !p.Alive() {
		return MeleeEvent{}, false
	}
	lethal := game.DamagePlayer(p, attack.Damage)
	t.Players[p.ID] = *p
	if lethal {
		w.deaths[p.ID] = w.now
		log.Info("player killed", "player", p.Name, "by", attack.AttackerID)
	}
	return MeleeEvent{
		AttackerID: attack.AttackerID,
		TargetID:   attack.TargetID,
		Damage:     attack.Damage,
		Lethal:     lethal,
	}, true
}

func (w *World) spawnSwarms(res *StepResult) {
	for _, b := range w.bases {
		if !b.ShouldSpawn(w.now) {
			continue
		}
		pos := b.SpawnPosition(w.rng)
		pos.X = game.Clamp(pos.X, ai.SwarmMaxRadius, w.Width-ai.SwarmMaxRadius)
		pos.Y = game.Clamp(pos.Y, ai.SwarmMaxRadius, w.Height-ai.SwarmMaxRadius)
		if w.index.Collides(pos.X, pos.Y, ai.SwarmMaxRadius) {
			// Retried next step with a fresh position
			continue
		}

		s := ai.NewSwarmAgent(pos, string(b.Difficulty), w.childRNG())
		s.BaseID = b.ID
		s.SetHome(b.Pos(), b.PatrolRadius)
		b.AddSwarm(s.ID, w.now)
		w.swarms = append(w.swarms, s)
		res.Spawned = append(res.Spawned, s.ID)
		log.Debug("swarm spawned", "base", b.ID, "swarm", s.ID, "count", b.SpawnedCount())
	}
}

func (w *World) removeDead(res *StepResult) {
	w.combat = slices.DeleteFunc(w.combat, func(a *ai.CombatAgent) bool {
		if !a.IsDead() {
			return false
		}
		res.Removed = append(res.Removed, a.ID)
		if c, ok := w.placements[a.ID]; ok {
			w.respawns = append(w.respawns, pendingRespawn{at: w.now + CombatRespawnDelay, placement: c})
			delete(w.placements, a.ID)
		}
		log.Info("combat agent destroyed", "agent", a.Name, "id", a.ID)
		return true
	})

	w.swarms = slices.DeleteFunc(w.swarms, func(s *ai.SwarmAgent) bool {
		if !s.IsDead() {
			return false
		}
		res.Removed = append(res.Removed, s.ID)
		if b := w.base(s.BaseID); b != nil {
			b.RemoveSwarm(s.ID)
		}
		return true
	})
}

func (w *World) respawnCombatAgents(res *StepResult) {
	w.respawns = slices.DeleteFunc(w.respawns, func(r pendingRespawn) bool {
		if w.now < r.at {
			return false
		}
		a := w.addCombatAgent(r.placement)
		res.Spawned = append(res.Spawned, a.ID)
		log.Info("combat agent respawned", "agent", a.Name, "id", a.ID)
		return true
	})
}

func (w *World) revivePlayers() {
	for id, at := range w.deaths {
		if w.now-at < PlayerRespawnDelay {
			continue
		}
		delete(w.deaths, id)
		p, ok := w.players[id]
		if !ok {
			continue
		}
		pos := w.spawnPoint(game.PlayerRadius)
		p.X, p.Y = pos.X, pos.Y
		p.Health = p.MaxHealth
	}
}

// spawnPoint picks a random position clear of walls. After spawnAttempts
// misses the world center is used.
func (w *World) spawnPoint(radius float64) game.Point {
	for i := 0; i < spawnAttempts; i++ {
		x := radius + w.rng.Float64()*(w.Width-2*radius)
		y := radius + w.rng.Float64()*(w.Height-2*radius)
		if !w.index.Collides(x, y, radius) {
			return game.Pt(x, y)
		}
	}
	return game.Pt(w.Width/2, w.Height/2)
}

// AddPlayer places a new player at a random clear position.
func (w *World) AddPlayer(name string) game.Player {
	pos := w.spawnPoint(game.PlayerRadius)
	p := &game.Player{
		ID:        uuid.NewString(),
		Name:      name,
		X:         pos.X,
		Y:         pos.Y,
		Health:    PlayerMaxHealth,
		MaxHealth: PlayerMaxHealth,
	}
	w.players[p.ID] = p
	log.Info("player joined", "player", name, "id", p.ID)
	return *p
}

// RemovePlayer drops a player. Agents lose the target on their next update.
func (w *World) RemovePlayer(id string) {
	if p, ok := w.players[id]; ok {
		log.Info("player left", "player", p.Name, "id", id)
	}
	delete(w.players, id)
	delete(w.deaths, id)
}

// Player returns a copy of a player.
func (w *World) Player(id string) (game.Player, bool) {
	p, ok := w.players[id]
	if !ok {
		return game.Player{}, false
	}
	return *p, true
}

// MovePlayer accepts a client position report. Coordinates are clamped to
// the world; a position inside a wall is refused and the old one kept.
func (w *World) MovePlayer(id string, x, y float64) (game.Player, error) {
	p, ok := w.players[id]
	if !ok {
		return game.Player{}, ErrUnknownPlayer
	}
	if !p.Alive() {
		return *p, ErrPlayerDead
	}
	cx, okX := validateCoordinate(x, w.Width, game.PlayerRadius)
	cy, okY := validateCoordinate(y, w.Height, game.PlayerRadius)
	if !okX || !okY {
		return *p, errors.Errorf("invalid position (%v, %v)", x, y)
	}
	if w.index.Collides(cx, cy, game.PlayerRadius) {
		return *p, errors.Errorf("position (%.0f, %.0f) is inside a wall", cx, cy)
	}
	p.X, p.Y = cx, cy
	return *p, nil
}

// CombatAgent looks up a living combat agent.
func (w *World) CombatAgent(id string) (*ai.CombatAgent, bool) {
	for _, a := range w.combat {
		if a.ID == id && !a.IsDead() {
			return a, true
		}
	}
	return nil, false
}

func (w *World) swarm(id string) *ai.SwarmAgent {
	for _, s := range w.swarms {
		if s.ID == id && !s.IsDead() {
			return s
		}
	}
	return nil
}

func (w *World) base(id string) *ai.SwarmBase {
	if id == "" {
		return nil
	}
	for _, b := range w.bases {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// SetAgentDifficulty changes a combat agent's difficulty. Unknown labels
// are rejected here even though the agent itself would fall back to MEDIUM.
func (w *World) SetAgentDifficulty(id, label string) (*ai.CombatAgent, error) {
	if _, ok := game.ParseDifficulty(label); !ok {
		return nil, errors.Errorf("unknown difficulty %q", label)
	}
	a, ok := w.CombatAgent(id)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownTarget, "agent %s", id)
	}
	a.SetDifficulty(label)
	return a, nil
}

// RefreshProfiles re-reads the installed difficulty tables into every live
// agent. Called after a config reload.
func (w *World) RefreshProfiles() {
	for _, a := range w.combat {
		a.SetDifficulty(string(a.Difficulty))
	}
	for _, s := range w.swarms {
		s.SetDifficulty(string(s.Difficulty))
	}
}

// ApplyHit routes a player's reported hit to the NPC it struck. The player
// must be alive and have a clear line to the target.
func (w *World) ApplyHit(playerID, target string, damage float64) (HitResult, error) {
	p, ok := w.players[playerID]
	if !ok {
		return HitResult{}, ErrUnknownPlayer
	}
	if !p.Alive() {
		return HitResult{}, ErrPlayerDead
	}
	if !validateDamage(damage) {
		return HitResult{}, errors.Wrapf(ErrInvalidDamage, "%v", damage)
	}

	if a, ok := w.CombatAgent(target); ok {
		if !w.index.SegmentClear(p.Pos(), a.Pos()) {
			return HitResult{}, ErrNoLineOfSight
		}
		killed := a.TakeDamage(damage)
		return HitResult{Target: a.ID, Kind: KindCombat, Health: a.Health, Killed: killed}, nil
	}
	if s := w.swarm(target); s != nil {
		if !w.index.SegmentClear(p.Pos(), s.Pos()) {
			return HitResult{}, ErrNoLineOfSight
		}
		killed := s.TakeDamage(damage)
		return HitResult{Target: s.ID, Kind: KindSwarm, Health: s.Health, Killed: killed}, nil
	}
	if b := w.base(target); b != nil && !b.IsDestroyed() {
		if !w.index.SegmentClear(p.Pos(), b.Pos()) {
			return HitResult{}, ErrNoLineOfSight
		}
		destroyed := b.TakeDamage(damage, w.now)
		if destroyed {
			w.releaseBase(b)
		}
		return HitResult{Target: b.ID, Kind: KindBase, Health: b.Health, Killed: destroyed}, nil
	}
	return HitResult{}, errors.Wrapf(ErrUnknownTarget, "%q", target)
}

// releaseBase turns a destroyed base's agents into free agents.
func (w *World) releaseBase(b *ai.SwarmBase) {
	released := b.ReleaseAll()
	for _, id := range released {
		if s := w.swarm(id); s != nil {
			s.BaseID = ""
			s.SetHome(s.Pos(), 0)
		}
	}
	log.Info("swarm base destroyed", "base", b.ID, "released", len(released))
}

// playersSorted returns player copies ordered by ID.
func (w *World) playersSorted() []game.Player {
	out := make([]game.Player, 0, len(w.players))
	for _, p := range w.players {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
