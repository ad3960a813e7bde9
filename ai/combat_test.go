package ai

import (
	"math"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/lab1702/arena-npc/bt"
	"github.com/lab1702/arena-npc/game"
	"github.com/lab1702/arena-npc/nav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scenarioWall = game.Wall{X: 400, Y: 300, Width: 200, Height: 200}

func player(id string, x, y float64) game.Player {
	return game.Player{ID: id, Name: id, X: x, Y: y, Health: 100, MaxHealth: 100}
}

func newTick(now time.Duration, walls []game.Wall, players ...game.Player) *Tick {
	ps := make(map[string]game.Player, len(players))
	for _, p := range players {
		ps[p.ID] = p
	}
	return &Tick{
		Now:         now,
		Dt:          game.UpdateInterval,
		Players:     ps,
		Obstacles:   nav.NewWallIndex(walls),
		WorldWidth:  game.DefaultWorldWidth,
		WorldHeight: game.DefaultWorldHeight,
	}
}

func newTestAgent(difficulty string, x, y float64) *CombatAgent {
	return NewCombatAgent("Sentinel", game.Pt(x, y), difficulty, rand.New(rand.NewSource(42)))
}

func TestNewCombatAgent(t *testing.T) {
	tests := []struct {
		label    string
		expected game.Difficulty
		name     string
	}{
		{"easy", game.Easy, "Sentinel [E]"},
		{"MEDIUM", game.Medium, "Sentinel [M]"},
		{"Nightmare", game.Nightmare, "Sentinel [N]"},
		{"impossible", game.Medium, "Sentinel [M]"},
		{"", game.Medium, "Sentinel [M]"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			a := newTestAgent(tt.label, 100, 100)
			assert.Equal(t, tt.expected, a.Difficulty)
			assert.Equal(t, tt.name, a.Name)
			assert.Equal(t, game.Profile(string(tt.expected)).Health, a.Health)
			assert.Equal(t, a.Health, a.MaxHealth)
			assert.NotEmpty(t, a.ID)
			assert.False(t, a.IsDead())
		})
	}
}

func TestCombatTreeShape(t *testing.T) {
	desc := newTestAgent("HARD", 0, 0).TreeDescription()
	expected := []string{
		"Selector Root",
		"  Sequence Combat",
		"    Condition EnemyInRange",
		"    Selector Movement",
		"      Sequence DirectNavigation",
		"        Condition LineOfSight",
		"        Action NavigateToTarget",
		"        Condition SmartShoot",
		"      Sequence AvoidObstacles",
		"        Action AvoidObstacles",
		"  Action Patrol",
	}
	assert.Equal(t, strings.Join(expected, "\n")+"\n", desc)
}

func TestCombatAgentBehaviorSelection(t *testing.T) {
	tests := []struct {
		name     string
		walls    []game.Wall
		players  []game.Player
		behavior string
		targetID string
	}{
		{"no players patrols", nil, nil, BehaviorPatrol, ""},
		{"visible player in range engages", nil, []game.Player{player("p1", 400, 400)}, BehaviorEngage, "p1"},
		{"player out of detection range patrols", nil, []game.Player{player("p1", 1000, 400)}, BehaviorPatrol, ""},
		{"dead player is ignored", nil, []game.Player{{ID: "p1", X: 300, Y: 400, Health: 0, MaxHealth: 100}}, BehaviorPatrol, ""},
		{"wall between agent and player avoids", []game.Wall{scenarioWall}, []game.Player{player("p1", 650, 400)}, BehaviorAvoid, "p1"},
		{"closest player wins", nil, []game.Player{player("far", 500, 400), player("near", 250, 400)}, BehaviorEngage, "near"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAgent("MEDIUM", 200, 400)
			status := a.Update(newTick(0, tt.walls, tt.players...))
			assert.Equal(t, bt.Success, status)
			assert.Equal(t, tt.behavior, a.Behavior)
			assert.Equal(t, tt.targetID, a.TargetID)
		})
	}
}

func TestCombatAgentEngagementBands(t *testing.T) {
	p := game.Profile("MEDIUM")

	tests := []struct {
		name       string
		targetX    float64
		movesRight bool
		maneuver   string
	}{
		{"inside min range flees", 200 + p.MinRange/2, false, ManeuverFlee},
		{"beyond optimal range closes in", 200 + (p.OptimalRange+p.DetectionRange)/2, true, ManeuverCloseIn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAgent("MEDIUM", 200, 400)
			a.Update(newTick(0, nil, player("p1", tt.targetX, 400)))
			require.Equal(t, BehaviorEngage, a.Behavior)
			assert.Equal(t, tt.maneuver, a.Maneuver)
			if tt.movesRight {
				assert.Greater(t, a.VX, 0.0)
				assert.Greater(t, a.X, 200.0)
			} else {
				assert.Less(t, a.VX, 0.0)
				assert.Less(t, a.X, 200.0)
			}
		})
	}

	t.Run("inside optimal band strafes", func(t *testing.T) {
		a := newTestAgent("MEDIUM", 200, 400)
		a.Update(newTick(0, nil, player("p1", 200+(p.MinRange+p.OptimalRange)/2, 400)))
		// Mostly perpendicular to the east-west line of fire
		assert.Greater(t, math.Abs(a.VY), math.Abs(a.VX))
		assert.Equal(t, ManeuverStrafe, a.Maneuver)

		a.Update(newTick(game.UpdateInterval, nil))
		assert.Equal(t, BehaviorPatrol, a.Behavior)
		assert.Empty(t, a.Maneuver)
	})
}

func TestCombatAgentVelocityIsSmoothed(t *testing.T) {
	a := newTestAgent("MEDIUM", 200, 400)
	p := a.Profile()
	a.Update(newTick(0, nil, player("p1", 200+p.DetectionRange-10, 400)))

	// One 50ms step of a 200ms lag covers only part of the gap
	speed := math.Hypot(a.VX, a.VY)
	assert.Greater(t, speed, 0.0)
	assert.Less(t, speed, p.Speed*CloseSpeedMin)
}

func TestNavigateToTargetKeepsPathToTarget(t *testing.T) {
	a := newTestAgent("HARD", 100, 400)
	target := player("p1", 100, 750)
	walls := []game.Wall{{X: 0, Y: 550, Width: 80, Height: 20}}

	tick := newTick(0, walls, target)
	a.Update(tick)
	require.Equal(t, BehaviorEngage, a.Behavior)
	path := a.Path()
	require.NotEmpty(t, path)
	assert.Equal(t, target.Pos(), path[len(path)-1])
	assert.Equal(t, target.Pos(), a.pathTarget)

	// A target that drifts far invalidates the cached route
	moved := player("p1", 300, 750)
	a.Update(newTick(game.UpdateInterval, walls, moved))
	assert.Equal(t, moved.Pos(), a.pathTarget)
}

func TestCombatAgentPatrolStaysNearAnchor(t *testing.T) {
	a := newTestAgent("EASY", 1500, 1500)
	anchor := a.Pos()
	radius := a.Profile().PatrolRadius

	for i := 0; i < 400; i++ {
		a.Update(newTick(time.Duration(i)*game.UpdateInterval, nil))
		require.Equal(t, BehaviorPatrol, a.Behavior)
	}
	assert.LessOrEqual(t, a.Pos().DistanceTo(anchor), radius*1.25)
	assert.Greater(t, a.Pos().DistanceTo(anchor), 0.0)
}

func TestCombatAgentDoesNotEnterWalls(t *testing.T) {
	a := newTestAgent("NIGHTMARE", 300, 400)
	walls := []game.Wall{scenarioWall}
	idx := nav.NewWallIndex(walls)

	for i := 0; i < 200; i++ {
		a.Update(newTick(time.Duration(i)*game.UpdateInterval, walls, player("p1", 700, 400)))
		require.False(t, idx.Collides(a.X, a.Y, a.Radius), "agent entered wall at %+v on tick %d", a.Pos(), i)
	}
}

func TestShootingInfo(t *testing.T) {
	t.Run("no target", func(t *testing.T) {
		a := newTestAgent("MEDIUM", 200, 400)
		_, ok := a.ShootingInfo(newTick(0, nil))
		assert.False(t, ok)
	})

	t.Run("target out of range", func(t *testing.T) {
		a := newTestAgent("MEDIUM", 200, 400)
		_, ok := a.ShootingInfo(newTick(0, nil, player("p1", 1200, 400)))
		assert.False(t, ok)
	})

	t.Run("line of sight blocked", func(t *testing.T) {
		a := newTestAgent("MEDIUM", 300, 400)
		_, ok := a.ShootingInfo(newTick(0, []game.Wall{scenarioWall}, player("p1", 700, 400)))
		assert.False(t, ok)
	})

	t.Run("falls back then waits for cooldowns", func(t *testing.T) {
		a := newTestAgent("MEDIUM", 200, 400)
		tick := newTick(0, nil, player("p1", 400, 400))

		first, ok := a.ShootingInfo(tick)
		require.True(t, ok)
		assert.Equal(t, a.ID, first.AgentID)
		assert.Equal(t, "p1", first.TargetID)

		second, ok := a.ShootingInfo(tick)
		require.True(t, ok, "the other weapon is still ready")
		assert.NotEqual(t, first.Weapon, second.Weapon)

		_, ok = a.ShootingInfo(tick)
		assert.False(t, ok, "both weapons cooling down")

		tick.Now = a.Profile().ShootCooldown
		third, ok := a.ShootingInfo(tick)
		require.True(t, ok)
		assert.Equal(t, Bullet, third.Weapon)
		assert.False(t, a.WeaponReady(Missile, tick.Now))
	})

	t.Run("aim error bounded by accuracy", func(t *testing.T) {
		for _, label := range []string{"EASY", "NIGHTMARE"} {
			a := newTestAgent(label, 200, 400)
			maxErr := (1 - a.Profile().Accuracy) * MaxAimErrorDeg * math.Pi / 180
			for i := 0; i < 50; i++ {
				// Far enough apart that both cooldowns have always expired
				tick := newTick(time.Duration(i)*time.Minute, nil, player("p1", 400, 400))
				shot, ok := a.ShootingInfo(tick)
				require.True(t, ok)
				assert.LessOrEqual(t, math.Abs(game.AngleDiff(0, shot.Angle)), maxErr+1e-9)
			}
		}
	})

	t.Run("dead agents never shoot", func(t *testing.T) {
		a := newTestAgent("MEDIUM", 200, 400)
		a.TakeDamage(1e6)
		_, ok := a.ShootingInfo(newTick(0, nil, player("p1", 400, 400)))
		assert.False(t, ok)
	})
}

func TestMissilePreferenceAmplifiedAtRange(t *testing.T) {
	count := func(targetX float64) int {
		missiles := 0
		a := newTestAgent("NIGHTMARE", 200, 400)
		for i := 0; i < 400; i++ {
			tick := newTick(time.Duration(i)*time.Minute, nil, player("p1", targetX, 400))
			shot, ok := a.ShootingInfo(tick)
			require.True(t, ok)
			if shot.Weapon == Missile {
				missiles++
			}
		}
		return missiles
	}

	p := game.Profile("NIGHTMARE")
	near := count(200 + p.OptimalRange - 50)
	far := count(200 + p.OptimalRange + 100)
	assert.Greater(t, far, near)
}

func TestSetDifficultyRescalesHealth(t *testing.T) {
	a := newTestAgent("MEDIUM", 200, 400)
	a.TakeDamage(a.MaxHealth / 2)
	oldTree := a.tree

	a.SetDifficulty("NIGHTMARE")
	assert.Equal(t, game.Nightmare, a.Difficulty)
	assert.Equal(t, "Sentinel [N]", a.Name)
	assert.Equal(t, game.Profile("NIGHTMARE").Health, a.MaxHealth)
	assert.InDelta(t, a.MaxHealth/2, a.Health, 1e-9)
	assert.NotSame(t, oldTree, a.tree)

	a.SetDifficulty("bogus")
	assert.Equal(t, game.Medium, a.Difficulty)
	assert.InDelta(t, a.MaxHealth/2, a.Health, 1e-9)

	a.TakeDamage(1e6)
	a.SetDifficulty("EASY")
	assert.True(t, a.IsDead(), "difficulty changes never revive")
}

func TestCombatAgentTakeDamage(t *testing.T) {
	a := newTestAgent("EASY", 0, 0)
	assert.False(t, a.TakeDamage(10))
	assert.Equal(t, a.MaxHealth-10, a.Health)
	assert.True(t, a.TakeDamage(1e6))
	assert.Equal(t, 0.0, a.Health)
	assert.False(t, a.TakeDamage(5), "already dead")
	assert.Equal(t, bt.Failure, a.Update(newTick(0, nil)))
}
