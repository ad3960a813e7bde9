package ai

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lab1702/arena-npc/game"
)

// SwarmBase is a stationary spawner. It tracks the IDs of the agents it
// produced but does not own them; the host keeps the agents and reports
// deaths through RemoveSwarm.
type SwarmBase struct {
	ID             string
	X, Y           float64
	Health         float64
	MaxHealth      float64
	Radius         float64
	PatrolRadius   float64
	SpawnInterval  time.Duration
	MaxSpawned     int
	DamageCooldown time.Duration
	Difficulty     game.Difficulty

	spawned    map[string]struct{}
	lastSpawn  time.Duration
	lastDamage time.Duration
	damaged    bool
	destroyed  bool
}

// NewSwarmBase places a base at pos. The first spawn is allowed at now.
func NewSwarmBase(pos game.Point, difficulty string, now time.Duration) *SwarmBase {
	return &SwarmBase{
		ID:             uuid.NewString(),
		X:              pos.X,
		Y:              pos.Y,
		Health:         SwarmBaseHealth,
		MaxHealth:      SwarmBaseHealth,
		Radius:         SwarmBaseRadius,
		PatrolRadius:   SwarmBasePatrolRadius,
		SpawnInterval:  SwarmBaseSpawnInterval,
		MaxSpawned:     SwarmBaseMaxSpawned,
		DamageCooldown: SwarmBaseDamageCooldown,
		Difficulty:     game.ResolveDifficulty(difficulty),
		spawned:        make(map[string]struct{}),
		lastSpawn:      now - SwarmBaseSpawnInterval,
	}
}

// Pos returns the base center.
func (b *SwarmBase) Pos() game.Point {
	return game.Point{X: b.X, Y: b.Y}
}

// ShouldSpawn reports whether a new agent may be produced at now: the base
// stands, is under its cap, the spawn interval has passed and it has not
// been hit within the damage cooldown.
func (b *SwarmBase) ShouldSpawn(now time.Duration) bool {
	if b.destroyed || len(b.spawned) >= b.MaxSpawned {
		return false
	}
	if now-b.lastSpawn < b.SpawnInterval {
		return false
	}
	if b.damaged && now-b.lastDamage < b.DamageCooldown {
		return false
	}
	return true
}

// SpawnPosition picks a uniformly random angle and a distance uniformly
// sampled from the spawn ring around the center.
func (b *SwarmBase) SpawnPosition(rng *rand.Rand) game.Point {
	angle := rng.Float64() * 2 * math.Pi
	dist := SwarmBaseSpawnMinDistance + rng.Float64()*(SwarmBaseSpawnMaxDistance-SwarmBaseSpawnMinDistance)
	return game.Point{
		X: b.X + math.Cos(angle)*dist,
		Y: b.Y + math.Sin(angle)*dist,
	}
}

// AddSwarm registers a spawned agent and restarts the spawn interval.
func (b *SwarmBase) AddSwarm(id string, now time.Duration) {
	b.spawned[id] = struct{}{}
	b.lastSpawn = now
}

// RemoveSwarm forgets an agent. It reports whether the ID was tracked.
func (b *SwarmBase) RemoveSwarm(id string) bool {
	if _, ok := b.spawned[id]; !ok {
		return false
	}
	delete(b.spawned, id)
	return true
}

// Tracks reports whether id was spawned here and is still alive.
func (b *SwarmBase) Tracks(id string) bool {
	_, ok := b.spawned[id]
	return ok
}

// SpawnedCount is the number of tracked live agents.
func (b *SwarmBase) SpawnedCount() int {
	return len(b.spawned)
}

// SpawnedIDs returns the tracked IDs in sorted order.
func (b *SwarmBase) SpawnedIDs() []string {
	ids := make([]string, 0, len(b.spawned))
	for id := range b.spawned {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ReleaseAll drops every tracked ID and returns them. The host calls it when
// the base is destroyed so the survivors become free agents.
func (b *SwarmBase) ReleaseAll() []string {
	ids := b.SpawnedIDs()
	b.spawned = make(map[string]struct{})
	return ids
}

// TakeDamage is a no-op once destroyed. Otherwise it lowers health, restarts
// the damage cooldown and reports whether this hit destroyed the base.
func (b *SwarmBase) TakeDamage(amount float64, now time.Duration) bool {
	if b.destroyed {
		return false
	}
	b.Health, _ = game.ApplyDamage(b.Health, b.MaxHealth, amount)
	b.lastDamage = now
	b.damaged = true
	if b.Health <= 0 {
		b.destroyed = true
		return true
	}
	return false
}

// IsDestroyed is permanent once true.
func (b *SwarmBase) IsDestroyed() bool {
	return b.destroyed
}
