package ai

import "time"

// AI Constants for NPC Behavior
// These constants control movement feel, path upkeep and swarm flocking.

const (
	// Combat agent body
	CombatAgentRadius = 20.0

	// Path upkeep thresholds
	PathRecomputeDrift = 100.0 // Recompute when the live target is this far from the cached path target
	WaypointLookahead  = 30.0  // Recompute when this close to the second waypoint; drop the first one inside this distance
	WaypointReached    = 35.0  // A waypoint is consumed inside this distance

	// Smoothing time constants
	CombatVelocityTau = 200 * time.Millisecond
	CombatFacingTau   = 150 * time.Millisecond
	PatrolVelocityTau = 300 * time.Millisecond
	PatrolFacingTau   = 400 * time.Millisecond

	// Aim error at accuracy 0, in degrees. Scaled by (1 - accuracy).
	MaxAimErrorDeg = 45.0

	// Engagement band speed multipliers
	FleeSpeedMin   = 1.5
	FleeSpeedMax   = 1.8
	FleeNoiseRad   = 0.35 // Heading noise while fleeing
	CloseSpeedMin  = 0.8  // Just outside optimal range
	CloseSpeedMax  = 1.4  // At detection range
	StrafeSpeed    = 0.9
	StrafeNoiseRad = 0.25
	StrafeFlipRate = 0.6 // Chance per second, at full aggressiveness, to reverse strafe direction
	AvoidSpeed     = 0.8

	// Weapon choice
	MissileRangeBoost = 1.5 // Missile preference multiplier beyond optimal range

	// Patrol
	PatrolAngularSpeed = 0.8 // Max patrol angle advance, radians per second, before aggressiveness scaling
	PatrolSpeed        = 0.5 // Fraction of profile speed while patrolling
	PatrolArrival      = 10.0

	// Swarm agent body
	SwarmHealth    = 5.0
	SwarmMinRadius = 8.0
	SwarmMaxRadius = 12.0

	// Flocking radii
	SeparationRadius = 30.0
	CohesionRadius   = 100.0
	AlignmentRadius  = 70.0

	// Flocking weights while hunting
	HuntWeight             = 2.0
	HuntSeparationWeight   = 0.8
	HuntCohesionWeight     = 0.2
	HuntAlignmentWeight    = 0.3
	RushHuntMultiplier     = 2.0
	IdleSeparationWeight   = 1.5
	IdleCohesionWeight     = 1.0
	IdleAlignmentWeight    = 1.0
	IdleWanderWeight       = 0.4
	IdleTetherWeight       = 1.2
	WanderTurnRad          = 0.5 // Max wander heading change per tick
	SwarmMaxAcceleration   = 900.0
	SwarmBounceRestitution = 0.5

	// Hunt and rush
	TargetUpdateInterval = 200 * time.Millisecond
	RushTriggerDistance  = 60.0
	RushDuration         = 1500 * time.Millisecond

	// Melee
	SwarmAttackReach    = 6.0 // Gap between bodies at which a bite lands
	SwarmAttackCooldown = 800 * time.Millisecond
	SwarmBaseDamage     = 5.0

	// Swarm base
	SwarmBaseRadius           = 40.0
	SwarmBasePatrolRadius     = 200.0
	SwarmBaseHealth           = 500.0
	SwarmBaseSpawnInterval    = 10 * time.Second
	SwarmBaseMaxSpawned       = 8
	SwarmBaseDamageCooldown   = 3 * time.Second
	SwarmBaseSpawnMinDistance = SwarmBaseRadius + 20
	SwarmBaseSpawnMaxDistance = SwarmBaseRadius + 80
)
