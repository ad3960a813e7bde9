package nav

import (
	"math/rand"
	"testing"

	"github.com/lab1702/arena-npc/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scenarioWall = game.Wall{X: 400, Y: 300, Width: 200, Height: 200}

func obstacleSets(walls ...game.Wall) map[string]Obstacles {
	return map[string]Obstacles{
		"list":  Walls(walls),
		"rtree": NewWallIndex(walls),
	}
}

func TestLineOfSightSymmetry(t *testing.T) {
	walls := []game.Wall{
		scenarioWall,
		{X: 1000, Y: 100, Width: 40, Height: 600},
		{X: 200, Y: 900, Width: 500, Height: 30},
	}
	rng := rand.New(rand.NewSource(7))

	for name, obs := range obstacleSets(walls...) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 300; i++ {
				a := game.Pt(rng.Float64()*1500, rng.Float64()*1200)
				b := game.Pt(rng.Float64()*1500, rng.Float64()*1200)
				radius := rng.Float64() * 30
				assert.Equal(t,
					HasLineOfSight(a, b, obs, radius),
					HasLineOfSight(b, a, obs, radius),
					"asymmetric LOS between %+v and %+v (r=%.1f)", a, b, radius)
			}
		})
	}
}

func TestLineOfSightDegenerate(t *testing.T) {
	obs := Walls{scenarioWall}
	inside := scenarioWall.Center()
	assert.True(t, HasLineOfSight(inside, inside, obs, 20), "zero-length segment is trivially visible")
	assert.True(t, HasLineOfSight(game.Pt(0, 0), game.Pt(100, 100), nil, 20))
}

func TestFindPathNoWallsShortcut(t *testing.T) {
	a := game.Pt(12.5, 40.25)
	b := game.Pt(2710.75, 1999.5)
	path := FindPath(a, b, Walls(nil), 3000, 3000, 20)
	assert.Equal(t, []game.Point{a, b}, path)
}

func TestScenarioWallBetweenAgentAndTarget(t *testing.T) {
	start := game.Pt(100, 400)
	goal := game.Pt(900, 400)
	const radius = 20.0

	for name, obs := range obstacleSets(scenarioWall) {
		t.Run(name, func(t *testing.T) {
			require.False(t, HasLineOfSight(start, goal, obs, radius))

			res := search(start, goal, obs, 3000, 3000, radius)
			require.True(t, res.found, "search should reach the goal")
			raw := res.path
			require.Greater(t, len(raw), 2)

			path := FindPath(start, goal, obs, 3000, 3000, radius)
			assert.Equal(t, raw, path)
			assert.Equal(t, start, path[0])
			assert.Equal(t, goal, path[len(path)-1])
			for i := 1; i < len(path); i++ {
				assert.True(t, HasLineOfSight(path[i-1], path[i], obs, radius),
					"segment %d %+v -> %+v is blocked", i, path[i-1], path[i])
			}

			simplified := SimplifyPath(path, obs, radius)
			assert.Less(t, len(simplified), len(raw))
			assert.Equal(t, start, simplified[0])
			assert.Equal(t, goal, simplified[len(simplified)-1])
			for i := 1; i < len(simplified); i++ {
				assert.True(t, HasLineOfSight(simplified[i-1], simplified[i], obs, radius))
			}
		})
	}
}

func TestFindPathEndpointsExact(t *testing.T) {
	obs := NewWallIndex([]game.Wall{scenarioWall, {X: 700, Y: 0, Width: 40, Height: 380}})
	rng := rand.New(rand.NewSource(11))

	for i := 0; i < 40; i++ {
		start := game.Pt(10+rng.Float64()*350, 10+rng.Float64()*900)
		goal := game.Pt(800+rng.Float64()*400, 10+rng.Float64()*900)
		path := FindPath(start, goal, obs, 1500, 1000, 15)
		require.GreaterOrEqual(t, len(path), 2)
		assert.Equal(t, start, path[0])
		assert.Equal(t, goal, path[len(path)-1])
	}
}

func TestSearchBoundRespected(t *testing.T) {
	// Goal sealed inside a box: the whole reachable grid must be explored
	// to prove it unreachable, which is far beyond the cap.
	box := []game.Wall{
		{X: 2400, Y: 2400, Width: 400, Height: 40},
		{X: 2400, Y: 2760, Width: 400, Height: 40},
		{X: 2400, Y: 2400, Width: 40, Height: 400},
		{X: 2760, Y: 2400, Width: 40, Height: 400},
	}
	obs := NewWallIndex(box)
	start := game.Pt(100, 100)
	goal := game.Pt(2600, 2600)

	res := search(start, goal, obs, 3000, 3000, 20)
	assert.False(t, res.found)
	assert.LessOrEqual(t, res.expansions, MaxExpansions)

	path := FindPath(start, goal, obs, 3000, 3000, 20)
	assert.Equal(t, []game.Point{start, goal}, path, "exhausted search degrades to the direct pair")
}

func TestSimplifyNeverLengthens(t *testing.T) {
	obs := Walls{scenarioWall}
	tests := []struct {
		name string
		path []game.Point
	}{
		{"empty", nil},
		{"single", []game.Point{game.Pt(1, 1)}},
		{"pair", []game.Point{game.Pt(1, 1), game.Pt(2, 2)}},
		{"collinear", []game.Point{game.Pt(0, 0), game.Pt(50, 0), game.Pt(100, 0), game.Pt(150, 0)}},
		{"around wall", []game.Point{
			game.Pt(100, 400), game.Pt(350, 400), game.Pt(350, 250),
			game.Pt(650, 250), game.Pt(650, 400), game.Pt(900, 400),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := SimplifyPath(tt.path, obs, 20)
			assert.LessOrEqual(t, len(out), len(tt.path))
			if len(tt.path) > 0 {
				assert.Equal(t, tt.path[0], out[0])
				assert.Equal(t, tt.path[len(tt.path)-1], out[len(out)-1])
			}
		})
	}

	collinear := SimplifyPath(tests[3].path, obs, 20)
	assert.Equal(t, []game.Point{game.Pt(0, 0), game.Pt(150, 0)}, collinear)
}

func TestFindSafePosition(t *testing.T) {
	obs := NewWallIndex([]game.Wall{scenarioWall})
	rng := rand.New(rand.NewSource(3))

	t.Run("clear agent follows the path", func(t *testing.T) {
		current := game.Pt(100, 400)
		target := game.Pt(900, 400)
		got := FindSafePosition(current, target, obs, 3000, 3000, 20, 100, rng)
		path := FindPath(current, target, obs, 3000, 3000, 20)
		assert.Equal(t, path[1], got)
	})

	t.Run("stuck agent is pushed away from the wall center", func(t *testing.T) {
		current := game.Pt(420, 400) // inside the wall, left of center
		got := FindSafePosition(current, game.Pt(900, 400), obs, 3000, 3000, 20, 150, rng)
		assert.InDelta(t, 350, got.X, 1e-9)
		assert.InDelta(t, 400, got.Y, 1e-9)
	})

	t.Run("agent on the wall center picks a random direction", func(t *testing.T) {
		center := scenarioWall.Center()
		for i := 0; i < 20; i++ {
			got := FindSafePosition(center, game.Pt(900, 400), obs, 3000, 3000, 20, 150, rng)
			assert.InDelta(t, 150, got.DistanceTo(center), 1e-9)
		}
	})

	t.Run("result is clamped to the world", func(t *testing.T) {
		edge := NewWallIndex([]game.Wall{{X: 0, Y: 0, Width: 100, Height: 100}})
		got := FindSafePosition(game.Pt(10, 10), game.Pt(500, 500), edge, 3000, 3000, 20, 200, rng)
		assert.GreaterOrEqual(t, got.X, 0.0)
		assert.GreaterOrEqual(t, got.Y, 0.0)
	})
}

func TestWallIndexMatchesList(t *testing.T) {
	walls := []game.Wall{scenarioWall, {X: 0, Y: 0, Width: 60, Height: 60}, {X: 900, Y: 50, Width: 10, Height: 10}}
	list := Walls(walls)
	idx := NewWallIndex(walls)
	rng := rand.New(rand.NewSource(5))

	for i := 0; i < 500; i++ {
		x, y, r := rng.Float64()*1000, rng.Float64()*700, rng.Float64()*40
		assert.Equal(t, list.Blocked(x, y, r), idx.Blocked(x, y, r), "Blocked(%.1f,%.1f,%.1f)", x, y, r)
		assert.Equal(t, list.Collides(x, y, r), idx.Collides(x, y, r), "Collides(%.1f,%.1f,%.1f)", x, y, r)
	}

	assert.False(t, idx.SegmentClear(game.Pt(100, 400), game.Pt(900, 400)))
	assert.True(t, idx.SegmentClear(game.Pt(100, 200), game.Pt(900, 200)))
	assert.Equal(t, 3, idx.Len())
}
