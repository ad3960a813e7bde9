package ai

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/lab1702/arena-npc/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSwarm(x, y float64) *SwarmAgent {
	return NewSwarmAgent(game.Pt(x, y), "MEDIUM", rand.New(rand.NewSource(9)))
}

func TestSwarmAgentDiesToOneHit(t *testing.T) {
	s := newTestSwarm(100, 100)
	require.Equal(t, 5.0, s.Health)

	assert.True(t, s.TakeDamage(5))
	assert.Equal(t, 0.0, s.Health, "health clamps to zero")
	assert.True(t, s.IsDead())

	assert.False(t, s.TakeDamage(5), "a corpse cannot die twice")
	assert.Equal(t, 0.0, s.Health)

	_, attacked := s.Update(newTick(0, nil, player("p1", 110, 100)), nil)
	assert.False(t, attacked)
}

func TestSwarmAgentOverkillClamps(t *testing.T) {
	s := newTestSwarm(100, 100)
	assert.True(t, s.TakeDamage(50))
	assert.Equal(t, 0.0, s.Health)
}

func TestSwarmAgentRadius(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		s := NewSwarmAgent(game.Pt(0, 0), "EASY", rng)
		assert.GreaterOrEqual(t, s.Radius, SwarmMinRadius)
		assert.LessOrEqual(t, s.Radius, SwarmMaxRadius)
	}
}

func TestSwarmTargetScanInterval(t *testing.T) {
	s := newTestSwarm(500, 500)

	s.Update(newTick(0, nil), nil)
	assert.Empty(t, s.TargetID)

	// Not rescanned until the interval passes
	s.Update(newTick(100*time.Millisecond, nil, player("p1", 600, 500)), nil)
	assert.Empty(t, s.TargetID)

	s.Update(newTick(TargetUpdateInterval, nil, player("p1", 600, 500)), nil)
	assert.Equal(t, "p1", s.TargetID)
}

func TestSwarmTargetOutsideDetectionIgnored(t *testing.T) {
	s := newTestSwarm(500, 500)
	far := player("p1", 500+s.Profile().DetectionRange+50, 500)
	s.Update(newTick(0, nil, far), nil)
	assert.Empty(t, s.TargetID)
}

func TestSwarmTargetDeathClearsTarget(t *testing.T) {
	s := newTestSwarm(500, 500)
	s.Update(newTick(0, nil, player("p1", 700, 500)), nil)
	require.Equal(t, "p1", s.TargetID)

	dead := player("p1", 700, 500)
	dead.Health = 0
	_, attacked := s.Update(newTick(50*time.Millisecond, nil, dead), nil)
	assert.False(t, attacked)
	assert.Empty(t, s.TargetID, "a dead target is dropped before the next scan")

	s.Update(newTick(60*time.Millisecond, nil), nil)
	assert.Empty(t, s.TargetID, "a departed target is dropped too")
}

func TestSwarmRushMode(t *testing.T) {
	s := newTestSwarm(500, 500)

	s.Update(newTick(0, nil, player("p1", 540, 500)), nil)
	require.True(t, s.Rushing(), "target inside trigger distance")

	s.Update(newTick(100*time.Millisecond, nil, player("p1", 800, 500)), nil)
	assert.True(t, s.Rushing(), "rush lasts its full duration")

	s.Update(newTick(RushDuration, nil, player("p1", 800, 500)), nil)
	assert.False(t, s.Rushing(), "rush expires")
}

func TestSwarmMeleeCooldown(t *testing.T) {
	s := newTestSwarm(500, 500)
	target := player("p1", 510, 500)

	attack, ok := s.Update(newTick(0, nil, target), nil)
	require.True(t, ok)
	assert.Equal(t, s.ID, attack.AttackerID)
	assert.Equal(t, "p1", attack.TargetID)
	assert.Equal(t, SwarmBaseDamage+game.SwarmProfileFor("MEDIUM").DamageBonus, attack.Damage)

	_, ok = s.Update(newTick(50*time.Millisecond, nil, target), nil)
	assert.False(t, ok, "cooling down")

	_, ok = s.Update(newTick(SwarmAttackCooldown, nil, target), nil)
	assert.True(t, ok)
}

func TestSwarmMeleeOutOfReach(t *testing.T) {
	s := newTestSwarm(500, 500)
	_, ok := s.Update(newTick(0, nil, player("p1", 700, 500)), nil)
	assert.False(t, ok)
}

func TestCalculateAttackDamageScalesWithDifficulty(t *testing.T) {
	prev := 0.0
	for _, d := range game.DifficultyOrder {
		s := NewSwarmAgent(game.Pt(0, 0), string(d), rand.New(rand.NewSource(1)))
		dmg := s.CalculateAttackDamage()
		assert.GreaterOrEqual(t, dmg, SwarmBaseDamage)
		assert.GreaterOrEqual(t, dmg, prev, "damage for %s", d)
		prev = dmg
	}
}

func TestSwarmSpeedClamp(t *testing.T) {
	s := newTestSwarm(500, 500)
	p := s.Profile()
	for i := 0; i < 100; i++ {
		now := time.Duration(i) * game.UpdateInterval
		s.Update(newTick(now, nil, player("p1", 850, 500)), nil)
		maxSpeed := p.Speed
		if s.Rushing() {
			maxSpeed = p.RushSpeed
		}
		require.LessOrEqual(t, math.Hypot(s.VX, s.VY), maxSpeed+1e-9)
	}
}

func TestSwarmBouncesOffWalls(t *testing.T) {
	s := newTestSwarm(0, 400)
	s.X = scenarioWall.X - s.Radius - 2
	s.VX = 180
	startX := s.X

	s.Update(newTick(0, []game.Wall{scenarioWall}), nil)
	assert.Less(t, s.VX, 0.0, "x velocity reflected")
	assert.Greater(t, s.VX, -180.0, "and damped")
	assert.Equal(t, startX, s.X)
}

func TestSwarmClampedToWorld(t *testing.T) {
	s := newTestSwarm(0, 400)
	s.X = s.Radius + 1
	s.VX = -180

	s.Update(newTick(0, nil), nil)
	assert.GreaterOrEqual(t, s.X, s.Radius)
	assert.Greater(t, s.VX, 0.0)
}

func TestSwarmHomeTether(t *testing.T) {
	s := newTestSwarm(900, 500)
	home := game.Pt(500, 500)
	s.SetHome(home, 100)
	start := s.Pos().DistanceTo(home)

	for i := 0; i < 40; i++ {
		s.Update(newTick(time.Duration(i)*game.UpdateInterval, nil), nil)
	}
	assert.Less(t, s.Pos().DistanceTo(home), start)
}

func TestFlockForces(t *testing.T) {
	s := newTestSwarm(100, 100)
	near := newTestSwarm(110, 100)
	near.VY = 50
	far := newTestSwarm(1000, 1000)
	dead := newTestSwarm(105, 100)
	dead.TakeDamage(SwarmHealth)

	f := s.flock([]*SwarmAgent{s, near, far, dead, nil}, rand.New(rand.NewSource(1)))
	assert.InDelta(t, -1, f.SepX, 1e-9)
	assert.InDelta(t, 0, f.SepY, 1e-9)
	assert.InDelta(t, 1, f.CohX, 1e-9)
	assert.InDelta(t, 0, f.CohY, 1e-9)
	assert.InDelta(t, 0, f.AliX, 1e-9)
	assert.InDelta(t, 1, f.AliY, 1e-9)

	lonely := s.flock([]*SwarmAgent{far}, nil)
	assert.Equal(t, FlockForces{}, lonely)
}

func TestFlockSeparationFromStackedNeighbor(t *testing.T) {
	s := newTestSwarm(100, 100)
	twin := newTestSwarm(100, 100)
	f := s.flock([]*SwarmAgent{twin}, rand.New(rand.NewSource(2)))
	assert.InDelta(t, 1, math.Hypot(f.SepX, f.SepY), 1e-9, "stacked agents still get a unit push")
}
