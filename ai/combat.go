package ai

import (
	"math"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/lab1702/arena-npc/bt"
	"github.com/lab1702/arena-npc/game"
)

// Behavior names the branch a combat agent executed on its last update.
const (
	BehaviorIdle   = "idle"
	BehaviorEngage = "engage"
	BehaviorAvoid  = "avoid"
	BehaviorPatrol = "patrol"
)

// CombatAgent is a ranged enemy driven by a behavior tree. The host reads
// position, facing and velocity after each Update and asks ShootingInfo
// whether to fire.
type CombatAgent struct {
	ID         string
	Name       string
	X, Y       float64
	VX, VY     float64
	Angle      float64 // current facing, radians
	Health     float64
	MaxHealth  float64
	Radius     float64
	Difficulty game.Difficulty
	Behavior   string
	TargetID   string // player engaged on the last update, empty when patrolling
	Maneuver   string // engagement band on the last engage update, empty otherwise

	baseName     string
	profile      game.DifficultyProfile
	targetAngle  float64
	path         []game.Point
	pathTarget   game.Point
	lastShot     [weaponCount]time.Duration
	fired        [weaponCount]bool
	patrolAnchor game.Point
	patrolAngle  float64
	strafeSign   float64
	tree         *bt.Tree[*combatContext]
	rng          *rand.Rand
}

// NewCombatAgent creates an agent at pos. Unknown difficulty labels fall back
// to MEDIUM. A nil rng gets a time-seeded source of its own.
func NewCombatAgent(name string, pos game.Point, difficulty string, rng *rand.Rand) *CombatAgent {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	a := &CombatAgent{
		ID:           uuid.NewString(),
		X:            pos.X,
		Y:            pos.Y,
		Radius:       CombatAgentRadius,
		Behavior:     BehaviorIdle,
		baseName:     name,
		patrolAnchor: pos,
		patrolAngle:  rng.Float64() * 2 * math.Pi,
		strafeSign:   1,
		rng:          rng,
	}
	a.applyProfile(game.Profile(difficulty))
	a.Health = a.MaxHealth
	a.Angle = a.patrolAngle
	a.targetAngle = a.Angle
	a.tree = buildCombatTree()
	return a
}

func (a *CombatAgent) applyProfile(p game.DifficultyProfile) {
	a.profile = p
	a.Difficulty = p.Label
	a.MaxHealth = p.Health
	a.Name = a.baseName + " " + p.Label.Indicator()
}

// Pos returns the agent position.
func (a *CombatAgent) Pos() game.Point {
	return game.Point{X: a.X, Y: a.Y}
}

// Profile returns the active tuning row.
func (a *CombatAgent) Profile() game.DifficultyProfile {
	return a.profile
}

// Path returns a copy of the remaining waypoints.
func (a *CombatAgent) Path() []game.Point {
	out := make([]game.Point, len(a.path))
	copy(out, a.path)
	return out
}

// TreeDescription renders the behavior tree shape.
func (a *CombatAgent) TreeDescription() string {
	return a.tree.Describe()
}

// IsDead reports whether the agent has no health left.
func (a *CombatAgent) IsDead() bool {
	return a.Health <= 0
}

// TakeDamage lowers health, clamped at zero. It reports whether this hit
// killed the agent.
func (a *CombatAgent) TakeDamage(amount float64) bool {
	if a.IsDead() {
		return false
	}
	a.Health, _ = game.ApplyDamage(a.Health, a.MaxHealth, amount)
	return a.IsDead()
}

// SetDifficulty swaps the tuning row. Current health is rescaled by the
// ratio of new to old max health, the name indicator is updated and the
// behavior tree is rebuilt.
func (a *CombatAgent) SetDifficulty(label string) {
	oldMax := a.MaxHealth
	oldLabel := a.Difficulty
	a.applyProfile(game.Profile(label))
	if oldMax > 0 {
		a.Health = game.Clamp(a.Health*a.MaxHealth/oldMax, 0, a.MaxHealth)
	} else {
		a.Health = a.MaxHealth
	}
	a.tree = buildCombatTree()
	log.Debug("combat agent difficulty changed",
		"agent", a.ID, "from", oldLabel, "to", a.Difficulty, "health", a.Health)
}

// Update runs one behavior-tree pass and integrates the resulting movement.
func (a *CombatAgent) Update(t *Tick) bt.Status {
	if a.IsDead() || t == nil {
		return bt.Failure
	}
	c := &combatContext{agent: a, tick: t}
	if p, d, ok := t.ClosestPlayer(a.Pos(), math.Inf(1)); ok {
		c.target, c.distance, c.hasTarget = p, d, true
	}

	status := a.tree.Tick(c)
	if c.steered {
		a.integrate(t, c.steer)
	}
	return status
}

// integrate blends the desired velocity and facing into the current ones and
// moves the agent, sliding along walls it would otherwise enter.
func (a *CombatAgent) integrate(t *Tick, s steering) {
	dt := t.Seconds()
	kv := smoothingFactor(dt, s.velocityTau.Seconds())
	a.VX += (s.vx - a.VX) * kv
	a.VY += (s.vy - a.VY) * kv

	a.targetAngle = s.facing
	kf := smoothingFactor(dt, s.facingTau.Seconds())
	a.Angle = game.NormalizeAngle(a.Angle + game.AngleDiff(a.Angle, a.targetAngle)*kf)

	nx, ny := a.X+a.VX*dt, a.Y+a.VY*dt
	// An agent already overlapping a wall may move freely so it can escape.
	if t.collides(nx, ny, a.Radius) && !t.collides(a.X, a.Y, a.Radius) {
		switch {
		case !t.collides(nx, a.Y, a.Radius):
			ny = a.Y
			a.VY = 0
		case !t.collides(a.X, ny, a.Radius):
			nx = a.X
			a.VX = 0
		default:
			nx, ny = a.X, a.Y
			a.VX, a.VY = 0, 0
		}
	}
	a.X, a.Y = t.clampToWorld(nx, ny, a.Radius)
}
