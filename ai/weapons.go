package ai

import (
	"fmt"
	"math"
	"time"

	"github.com/lab1702/arena-npc/game"
	"github.com/lab1702/arena-npc/nav"
)

// Weapon is a ranged attack a combat agent can choose.
type Weapon int

const (
	Bullet Weapon = iota
	Missile
	weaponCount
)

func (w Weapon) String() string {
	switch w {
	case Bullet:
		return "bullet"
	case Missile:
		return "missile"
	}
	return fmt.Sprintf("Weapon(%d)", int(w))
}

// ShotDecision asks the host to spawn a projectile.
type ShotDecision struct {
	AgentID  string  `json:"agentId" msgpack:"agentId"`
	TargetID string  `json:"targetId" msgpack:"targetId"`
	Weapon   Weapon  `json:"weapon" msgpack:"weapon"`
	X        float64 `json:"x" msgpack:"x"`
	Y        float64 `json:"y" msgpack:"y"`
	Angle    float64 `json:"angle" msgpack:"angle"`
	Distance float64 `json:"distance" msgpack:"distance"`
}

func (a *CombatAgent) cooldown(w Weapon) time.Duration {
	if w == Missile {
		return a.profile.MissileCooldown
	}
	return a.profile.ShootCooldown
}

// WeaponReady reports whether w is off cooldown at now.
func (a *CombatAgent) WeaponReady(w Weapon, now time.Duration) bool {
	if w < 0 || w >= weaponCount {
		return false
	}
	return !a.fired[w] || now-a.lastShot[w] >= a.cooldown(w)
}

// ShootingInfo decides whether to fire this tick. It repeats the SmartShoot
// gate, picks a weapon by preference with a fallback when the preferred one
// is cooling down, and stamps the chosen weapon's cooldown. No decision is
// returned when both weapons are cooling down.
func (a *CombatAgent) ShootingInfo(t *Tick) (ShotDecision, bool) {
	if a.IsDead() || t == nil {
		return ShotDecision{}, false
	}
	p := a.profile
	target, dist, ok := t.ClosestPlayer(a.Pos(), p.DetectionRange)
	if !ok || !nav.HasLineOfSight(a.Pos(), target.Pos(), t.Obstacles, a.Radius) {
		return ShotDecision{}, false
	}

	// Favor the longer-ranged weapon at distance
	preference := p.MissilePreference
	if dist > p.OptimalRange {
		preference = math.Min(1, preference*MissileRangeBoost)
	}
	preferred, other := Bullet, Missile
	if a.rng.Float64() < preference {
		preferred, other = Missile, Bullet
	}

	var weapon Weapon
	switch {
	case a.WeaponReady(preferred, t.Now):
		weapon = preferred
	case a.WeaponReady(other, t.Now):
		weapon = other
	default:
		return ShotDecision{}, false
	}

	a.lastShot[weapon] = t.Now
	a.fired[weapon] = true

	bearing := math.Atan2(target.Y-a.Y, target.X-a.X)
	return ShotDecision{
		AgentID:  a.ID,
		TargetID: target.ID,
		Weapon:   weapon,
		X:        a.X,
		Y:        a.Y,
		Angle:    game.NormalizeAngle(bearing + aimErrorRad(p.Accuracy, a.rng)),
		Distance: dist,
	}, true
}
