package ai

import (
	"math/rand"
	"testing"
	"time"

	"github.com/lab1702/arena-npc/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwarmBaseSpawnGatingAfterDamage(t *testing.T) {
	base := NewSwarmBase(game.Pt(1000, 1000), "MEDIUM", 0)
	require.Equal(t, 10*time.Second, base.SpawnInterval)
	require.Equal(t, 3*time.Second, base.DamageCooldown)
	require.True(t, base.ShouldSpawn(0), "a fresh base may spawn at once")

	// Damaged at t=0 while the spawn interval has already elapsed
	base.TakeDamage(10, 0)
	for now := time.Duration(0); now < 3*time.Second; now += 100 * time.Millisecond {
		assert.False(t, base.ShouldSpawn(now), "spawned at %v", now)
	}
	assert.True(t, base.ShouldSpawn(3*time.Second))
}

func TestSwarmBaseSpawnInterval(t *testing.T) {
	base := NewSwarmBase(game.Pt(1000, 1000), "EASY", 0)
	base.AddSwarm("a", 0)
	assert.True(t, base.Tracks("a"))
	assert.False(t, base.ShouldSpawn(5*time.Second))
	assert.False(t, base.ShouldSpawn(10*time.Second-time.Millisecond))
	assert.True(t, base.ShouldSpawn(10*time.Second))
}

func TestSwarmBaseCap(t *testing.T) {
	base := NewSwarmBase(game.Pt(0, 0), "HARD", 0)
	for i := 0; i < SwarmBaseMaxSpawned; i++ {
		base.AddSwarm(string(rune('a'+i)), 0)
	}
	late := time.Hour
	assert.Equal(t, SwarmBaseMaxSpawned, base.SpawnedCount())
	assert.False(t, base.ShouldSpawn(late), "at cap")

	assert.True(t, base.RemoveSwarm("c"))
	assert.False(t, base.RemoveSwarm("c"), "already removed")
	assert.False(t, base.RemoveSwarm("zz"), "never tracked")
	assert.True(t, base.ShouldSpawn(late))
}

func TestSwarmBaseDestructionIsTerminal(t *testing.T) {
	base := NewSwarmBase(game.Pt(0, 0), "NIGHTMARE", 0)
	base.AddSwarm("a", 0)

	assert.False(t, base.TakeDamage(base.MaxHealth-1, time.Second))
	assert.False(t, base.IsDestroyed())

	assert.True(t, base.TakeDamage(1e6, 2*time.Second))
	assert.True(t, base.IsDestroyed())
	assert.Equal(t, 0.0, base.Health)

	assert.False(t, base.TakeDamage(10, 3*time.Second), "no-op once destroyed")
	assert.Equal(t, 0.0, base.Health)
	for _, now := range []time.Duration{0, 10 * time.Second, time.Hour, 100 * time.Hour} {
		assert.False(t, base.ShouldSpawn(now))
	}
	assert.True(t, base.IsDestroyed())
}

func TestSwarmBaseSpawnPosition(t *testing.T) {
	base := NewSwarmBase(game.Pt(1500, 1500), "MEDIUM", 0)
	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 1000; i++ {
		d := base.SpawnPosition(rng).DistanceTo(base.Pos())
		assert.GreaterOrEqual(t, d, SwarmBaseSpawnMinDistance-1e-9)
		assert.LessOrEqual(t, d, SwarmBaseSpawnMaxDistance+1e-9)
	}
}

func TestSwarmBaseReleaseAll(t *testing.T) {
	base := NewSwarmBase(game.Pt(0, 0), "MEDIUM", 0)
	base.AddSwarm("b", 0)
	base.AddSwarm("a", 0)

	assert.Equal(t, []string{"a", "b"}, base.ReleaseAll())
	assert.Equal(t, 0, base.SpawnedCount())
	assert.Empty(t, base.ReleaseAll())
}

func TestSwarmBaseUnknownDifficulty(t *testing.T) {
	base := NewSwarmBase(game.Pt(0, 0), "whatever", 0)
	assert.Equal(t, game.Medium, base.Difficulty)
}
