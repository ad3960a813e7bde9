package ai

import (
	"math"
	"time"

	"github.com/lab1702/arena-npc/bt"
	"github.com/lab1702/arena-npc/game"
	"github.com/lab1702/arena-npc/nav"
)

// combatContext is the per-update blackboard the combat tree runs against.
// Actions record a steering request; the agent integrates it once after the
// tree pass so a fallback branch overrides rather than adds to movement.
type combatContext struct {
	agent     *CombatAgent
	tick      *Tick
	target    game.Player
	hasTarget bool
	distance  float64
	steer     steering
	steered   bool
}

type steering struct {
	vx, vy      float64 // desired velocity, units per second
	facing      float64
	velocityTau time.Duration
	facingTau   time.Duration
}

// Engagement bands reported in CombatAgent.Maneuver.
const (
	ManeuverFlee    = "flee"
	ManeuverCloseIn = "close-in"
	ManeuverStrafe  = "strafe"
)

// CombatManeuver is a movement decision inside the engagement bands.
type CombatManeuver struct {
	direction float64
	speed     float64
	maneuver  string
}

func buildCombatTree() *bt.Tree[*combatContext] {
	return &bt.Tree[*combatContext]{Root: bt.NewSelector[*combatContext]("Root",
		bt.NewSequence[*combatContext]("Combat",
			bt.NewCondition("EnemyInRange", (*combatContext).enemyInRange),
			bt.NewSelector[*combatContext]("Movement",
				bt.NewSequence[*combatContext]("DirectNavigation",
					bt.NewCondition("LineOfSight", (*combatContext).lineOfSight),
					bt.NewAction("NavigateToTarget", (*combatContext).navigateToTarget),
					bt.NewCondition("SmartShoot", (*combatContext).canShoot),
				),
				bt.NewSequence[*combatContext]("AvoidObstacles",
					bt.NewAction("AvoidObstacles", (*combatContext).avoidObstacles),
				),
			),
		),
		bt.NewAction("Patrol", (*combatContext).patrol),
	)}
}

func (c *combatContext) setSteering(vx, vy, facing float64, velocityTau, facingTau time.Duration) {
	c.steer = steering{vx: vx, vy: vy, facing: facing, velocityTau: velocityTau, facingTau: facingTau}
	c.steered = true
}

func (c *combatContext) enemyInRange() bool {
	return c.hasTarget && c.distance <= c.agent.profile.DetectionRange
}

func (c *combatContext) lineOfSight() bool {
	return nav.HasLineOfSight(c.agent.Pos(), c.target.Pos(), c.tick.Obstacles, c.agent.Radius)
}

// canShoot is the SmartShoot gate. Firing itself happens in ShootingInfo.
func (c *combatContext) canShoot() bool {
	return c.hasTarget && c.distance <= c.agent.profile.DetectionRange && c.lineOfSight()
}

// aimAngle is the bearing to the target with accuracy-scaled noise.
func (c *combatContext) aimAngle() float64 {
	a := c.agent
	bearing := math.Atan2(c.target.Y-a.Y, c.target.X-a.X)
	return bearing + aimErrorRad(a.profile.Accuracy, a.rng)
}

func (c *combatContext) navigateToTarget() bool {
	a := c.agent
	t := c.tick
	pos := a.Pos()
	goal := c.target.Pos()

	recompute := len(a.path) == 0 ||
		a.pathTarget.DistanceTo(goal) > PathRecomputeDrift ||
		(len(a.path) > 1 && pos.DistanceTo(a.path[1]) < WaypointLookahead)
	if recompute {
		raw := nav.FindPath(pos, goal, t.Obstacles, t.WorldWidth, t.WorldHeight, a.Radius)
		a.path = nav.SimplifyPath(raw, t.Obstacles, a.Radius)
		a.pathTarget = goal
	}
	if len(a.path) > 0 && pos.DistanceTo(a.path[0]) < WaypointLookahead {
		a.path = a.path[1:]
	}
	for len(a.path) > 0 && pos.DistanceTo(a.path[0]) < WaypointReached {
		a.path = a.path[1:]
	}

	waypoint := goal
	if len(a.path) > 0 {
		waypoint = a.path[0]
	}

	m := c.selectCombatManeuver(waypoint)
	c.setSteering(
		math.Cos(m.direction)*m.speed,
		math.Sin(m.direction)*m.speed,
		c.aimAngle(),
		CombatVelocityTau, CombatFacingTau,
	)
	a.Behavior = BehaviorEngage
	a.Maneuver = m.maneuver
	a.TargetID = c.target.ID
	return true
}

// selectCombatManeuver picks heading and speed from the engagement band the
// target distance falls in.
func (c *combatContext) selectCombatManeuver(waypoint game.Point) CombatManeuver {
	a := c.agent
	p := a.profile
	bearing := math.Atan2(c.target.Y-a.Y, c.target.X-a.X)

	switch {
	case c.distance < p.MinRange:
		return CombatManeuver{
			direction: bearing + math.Pi + signedNoise(FleeNoiseRad, a.rng),
			speed:     p.Speed * (FleeSpeedMin + a.rng.Float64()*(FleeSpeedMax-FleeSpeedMin)),
			maneuver:  ManeuverFlee,
		}
	case c.distance > p.OptimalRange:
		span := p.DetectionRange - p.OptimalRange
		depth := 1.0
		if span > 0 {
			depth = game.Clamp((c.distance-p.OptimalRange)/span, 0, 1)
		}
		return CombatManeuver{
			direction: math.Atan2(waypoint.Y-a.Y, waypoint.X-a.X),
			speed:     p.Speed * (CloseSpeedMin + depth*(CloseSpeedMax-CloseSpeedMin)),
			maneuver:  ManeuverCloseIn,
		}
	default:
		// Aggressive agents change strafe direction more often
		if a.rng.Float64() < StrafeFlipRate*p.Aggressiveness*c.tick.Seconds() {
			a.strafeSign = -a.strafeSign
		}
		return CombatManeuver{
			direction: bearing + a.strafeSign*math.Pi/2 + signedNoise(StrafeNoiseRad, a.rng),
			speed:     p.Speed * StrafeSpeed,
			maneuver:  ManeuverStrafe,
		}
	}
}

func (c *combatContext) avoidObstacles() bool {
	a := c.agent
	t := c.tick
	pos := a.Pos()
	safe := nav.FindSafePosition(pos, c.target.Pos(), t.Obstacles, t.WorldWidth, t.WorldHeight,
		a.Radius, a.profile.AvoidanceDistance, a.rng)

	var vx, vy float64
	if dx, dy, l := game.Normalize(safe.X-pos.X, safe.Y-pos.Y); l > 0 {
		speed := a.profile.Speed * AvoidSpeed
		vx, vy = dx*speed, dy*speed
	}
	c.setSteering(vx, vy, c.aimAngle(), CombatVelocityTau, CombatFacingTau)
	a.Behavior = BehaviorAvoid
	a.Maneuver = ""
	a.TargetID = c.target.ID
	return true
}

func (c *combatContext) patrol() bool {
	a := c.agent
	t := c.tick
	p := a.profile
	a.path = nil
	a.TargetID = ""
	a.Maneuver = ""

	a.patrolAngle = game.NormalizeAngle(a.patrolAngle +
		a.rng.Float64()*PatrolAngularSpeed*(0.5+p.Aggressiveness)*t.Seconds())
	goal := game.Point{
		X: a.patrolAnchor.X + math.Cos(a.patrolAngle)*p.PatrolRadius,
		Y: a.patrolAnchor.Y + math.Sin(a.patrolAngle)*p.PatrolRadius,
	}
	goal.X, goal.Y = t.clampToWorld(goal.X, goal.Y, a.Radius)

	pos := a.Pos()
	next := c.patrolStep(goal)

	dx, dy, dist := game.Normalize(next.X-pos.X, next.Y-pos.Y)
	speed := p.Speed * PatrolSpeed
	if dist < PatrolArrival {
		speed *= dist / PatrolArrival
	}
	facing := a.Angle
	if dist > 0 {
		facing = math.Atan2(dy, dx)
	}
	c.setSteering(dx*speed, dy*speed, facing, PatrolVelocityTau, PatrolFacingTau)
	a.Behavior = BehaviorPatrol
	return true
}

// patrolStep is the point to steer at on the way to goal: goal itself when
// visible, otherwise the next cell of a grid route.
func (c *combatContext) patrolStep(goal game.Point) game.Point {
	a := c.agent
	t := c.tick
	pos := a.Pos()
	if nav.HasLineOfSight(pos, goal, t.Obstacles, a.Radius) {
		return goal
	}
	return nav.FindPath(pos, goal, t.Obstacles, t.WorldWidth, t.WorldHeight, a.Radius)[1]
}
