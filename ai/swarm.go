package ai

import (
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/lab1702/arena-npc/game"
)

// SwarmAgent is a small melee hunter that flocks with its siblings. It has
// no ranged weapon.
type SwarmAgent struct {
	ID         string
	BaseID     string // spawning base, empty for free agents
	X, Y       float64
	VX, VY     float64
	Health     float64
	MaxHealth  float64
	Radius     float64
	Difficulty game.Difficulty
	TargetID   string // re-resolved every update, never a pointer

	profile     game.SwarmProfile
	home        game.Point
	homeRadius  float64
	lastScan    time.Duration
	scanned     bool
	rushing     bool
	rushUntil   time.Duration
	lastAttack  time.Duration
	attacked    bool
	wanderAngle float64
	rng         *rand.Rand
}

// MeleeAttack is a bite the host applies to a player.
type MeleeAttack struct {
	AttackerID string  `json:"attackerId" msgpack:"attackerId"`
	TargetID   string  `json:"targetId" msgpack:"targetId"`
	Damage     float64 `json:"damage" msgpack:"damage"`
}

// NewSwarmAgent creates a swarm agent at pos. A nil rng gets a time-seeded
// source of its own.
func NewSwarmAgent(pos game.Point, difficulty string, rng *rand.Rand) *SwarmAgent {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	p := game.SwarmProfileFor(difficulty)
	return &SwarmAgent{
		ID:          uuid.NewString(),
		X:           pos.X,
		Y:           pos.Y,
		Health:      SwarmHealth,
		MaxHealth:   SwarmHealth,
		Radius:      SwarmMinRadius + rng.Float64()*(SwarmMaxRadius-SwarmMinRadius),
		Difficulty:  p.Label,
		profile:     p,
		home:        pos,
		wanderAngle: rng.Float64() * 2 * math.Pi,
		rng:         rng,
	}
}

// SetHome tethers the agent to a circle it drifts back into while idle.
// A zero radius disables the tether.
func (s *SwarmAgent) SetHome(center game.Point, radius float64) {
	s.home = center
	s.homeRadius = radius
}

// Pos returns the agent position.
func (s *SwarmAgent) Pos() game.Point {
	return game.Point{X: s.X, Y: s.Y}
}

// Profile returns the active swarm tuning row.
func (s *SwarmAgent) Profile() game.SwarmProfile {
	return s.profile
}

// SetDifficulty swaps the swarm tuning row.
func (s *SwarmAgent) SetDifficulty(label string) {
	s.profile = game.SwarmProfileFor(label)
	s.Difficulty = s.profile.Label
}

// Rushing reports whether the agent is in its short sprint.
func (s *SwarmAgent) Rushing() bool {
	return s.rushing
}

// IsDead reports whether the agent has no health left.
func (s *SwarmAgent) IsDead() bool {
	return s.Health <= 0
}

// TakeDamage lowers health, clamped at zero, and reports whether this hit
// killed the agent.
func (s *SwarmAgent) TakeDamage(amount float64) bool {
	if s.IsDead() {
		return false
	}
	s.Health, _ = game.ApplyDamage(s.Health, s.MaxHealth, amount)
	return s.IsDead()
}

// CalculateAttackDamage is the fixed bite plus the difficulty bonus.
func (s *SwarmAgent) CalculateAttackDamage() float64 {
	return SwarmBaseDamage + s.profile.DamageBonus
}

// AttackRange is the center distance at which a bite lands on a player.
func (s *SwarmAgent) AttackRange() float64 {
	return s.Radius + game.PlayerRadius + SwarmAttackReach
}

// Update steers, moves and possibly bites. neighbors may include s itself
// and dead agents; both are skipped. Neighbors are only read.
func (s *SwarmAgent) Update(t *Tick, neighbors []*SwarmAgent) (MeleeAttack, bool) {
	if s.IsDead() || t == nil {
		return MeleeAttack{}, false
	}
	dt := t.Seconds()

	s.scanTarget(t)
	target, hasTarget := t.Player(s.TargetID)
	if !hasTarget {
		s.TargetID = ""
	}
	dist := 0.0
	if hasTarget {
		dist = s.Pos().DistanceTo(target.Pos())
		if dist > s.profile.DetectionRange {
			hasTarget = false
		}
	}

	if s.rushing && (t.Now >= s.rushUntil || !hasTarget) {
		s.rushing = false
	}
	if hasTarget && !s.rushing && dist < RushTriggerDistance {
		s.rushing = true
		s.rushUntil = t.Now + RushDuration
	}

	f := s.flock(neighbors, s.rng)
	var fx, fy float64
	if hasTarget {
		hx, hy := unit(target.X-s.X, target.Y-s.Y)
		w := HuntWeight
		if s.rushing {
			w *= RushHuntMultiplier
		}
		fx = hx*w + f.SepX*HuntSeparationWeight + f.CohX*HuntCohesionWeight + f.AliX*HuntAlignmentWeight
		fy = hy*w + f.SepY*HuntSeparationWeight + f.CohY*HuntCohesionWeight + f.AliY*HuntAlignmentWeight
	} else {
		s.wanderAngle += signedNoise(WanderTurnRad, s.rng)
		fx = f.SepX*IdleSeparationWeight + f.CohX*IdleCohesionWeight + f.AliX*IdleAlignmentWeight +
			math.Cos(s.wanderAngle)*IdleWanderWeight
		fy = f.SepY*IdleSeparationWeight + f.CohY*IdleCohesionWeight + f.AliY*IdleAlignmentWeight +
			math.Sin(s.wanderAngle)*IdleWanderWeight
		if s.homeRadius > 0 && s.Pos().DistanceTo(s.home) > s.homeRadius {
			tx, ty := unit(s.home.X-s.X, s.home.Y-s.Y)
			fx += tx * IdleTetherWeight
			fy += ty * IdleTetherWeight
		}
	}

	ax, ay := limit(fx*SwarmMaxAcceleration, fy*SwarmMaxAcceleration, SwarmMaxAcceleration)
	s.VX += ax * dt
	s.VY += ay * dt
	maxSpeed := s.profile.Speed
	if s.rushing {
		maxSpeed = s.profile.RushSpeed
	}
	s.VX, s.VY = limit(s.VX, s.VY, maxSpeed)

	s.move(t, dt)

	if !hasTarget {
		return MeleeAttack{}, false
	}
	return s.tryMelee(target, t.Now)
}

func (s *SwarmAgent) scanTarget(t *Tick) {
	if s.scanned && t.Now-s.lastScan < TargetUpdateInterval {
		return
	}
	s.lastScan = t.Now
	s.scanned = true
	if p, _, ok := t.ClosestPlayer(s.Pos(), s.profile.DetectionRange); ok {
		s.TargetID = p.ID
	} else {
		s.TargetID = ""
	}
}

// move integrates position. Walls and world edges reflect the offending
// velocity axis at reduced magnitude instead of stopping the agent.
func (s *SwarmAgent) move(t *Tick, dt float64) {
	nx := s.X + s.VX*dt
	if t.collides(nx, s.Y, s.Radius) {
		s.VX = -s.VX * SwarmBounceRestitution
		nx = s.X
	}
	ny := s.Y + s.VY*dt
	if t.collides(nx, ny, s.Radius) {
		s.VY = -s.VY * SwarmBounceRestitution
		ny = s.Y
	}

	cx, cy := t.clampToWorld(nx, ny, s.Radius)
	if cx != nx {
		s.VX = -s.VX * SwarmBounceRestitution
	}
	if cy != ny {
		s.VY = -s.VY * SwarmBounceRestitution
	}
	s.X, s.Y = cx, cy
}

func (s *SwarmAgent) tryMelee(target game.Player, now time.Duration) (MeleeAttack, bool) {
	if s.Pos().DistanceTo(target.Pos()) > s.AttackRange() {
		return MeleeAttack{}, false
	}
	if s.attacked && now-s.lastAttack < SwarmAttackCooldown {
		return MeleeAttack{}, false
	}
	s.lastAttack = now
	s.attacked = true
	return MeleeAttack{
		AttackerID: s.ID,
		TargetID:   target.ID,
		Damage:     s.CalculateAttackDamage(),
	}, true
}
