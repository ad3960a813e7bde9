// Package config loads the arena layout and tuning overrides from YAML.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lab1702/arena-npc/game"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Arena is the full server configuration.
type Arena struct {
	World               World                      `yaml:"world"`
	TickRate            int                        `yaml:"tick_rate"`
	Walls               []game.Wall                `yaml:"walls"`
	CombatAgents        []CombatAgent              `yaml:"combat_agents"`
	SwarmBases          []SwarmBase                `yaml:"swarm_bases"`
	SwarmDifficulty     string                     `yaml:"swarm_difficulty"`
	LogLevel            string                     `yaml:"log_level"`
	DifficultyOverrides map[string]ProfileOverride `yaml:"difficulty_overrides"`
}

type World struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// CombatAgent places one behavior-tree agent.
type CombatAgent struct {
	Name       string  `yaml:"name"`
	X          float64 `yaml:"x"`
	Y          float64 `yaml:"y"`
	Difficulty string  `yaml:"difficulty"`
}

// SwarmBase places one spawner.
type SwarmBase struct {
	X          float64 `yaml:"x"`
	Y          float64 `yaml:"y"`
	Difficulty string  `yaml:"difficulty"`
}

// ProfileOverride changes selected fields of a built-in difficulty row.
// Unset fields keep their built-in values.
type ProfileOverride struct {
	Health            *float64       `yaml:"health"`
	Speed             *float64       `yaml:"speed"`
	DetectionRange    *float64       `yaml:"detection_range"`
	OptimalRange      *float64       `yaml:"optimal_range"`
	MinRange          *float64       `yaml:"min_range"`
	Accuracy          *float64       `yaml:"accuracy"`
	ShootCooldown     *time.Duration `yaml:"shoot_cooldown"`
	MissileCooldown   *time.Duration `yaml:"missile_cooldown"`
	MissilePreference *float64       `yaml:"missile_preference"`
	Aggressiveness    *float64       `yaml:"aggressiveness"`
	PatrolRadius      *float64       `yaml:"patrol_radius"`
	AvoidanceDistance *float64       `yaml:"avoidance_distance"`
	Swarm             *SwarmOverride `yaml:"swarm"`
}

// SwarmOverride changes selected fields of a built-in swarm row.
type SwarmOverride struct {
	Speed          *float64 `yaml:"speed"`
	RushSpeed      *float64 `yaml:"rush_speed"`
	DetectionRange *float64 `yaml:"detection_range"`
	DamageBonus    *float64 `yaml:"damage_bonus"`
}

const (
	DefaultTickRate = game.FPS
	MaxTickRate     = 120
)

// Default returns a small playable arena.
func Default() *Arena {
	return &Arena{
		World:    World{Width: game.DefaultWorldWidth, Height: game.DefaultWorldHeight},
		TickRate: DefaultTickRate,
		Walls: []game.Wall{
			{X: 1400, Y: 600, Width: 200, Height: 600},
			{X: 600, Y: 1400, Width: 600, Height: 200},
			{X: 1800, Y: 1400, Width: 600, Height: 200},
			{X: 1400, Y: 1800, Width: 200, Height: 600},
		},
		CombatAgents: []CombatAgent{
			{Name: "Sentinel", X: 700, Y: 700, Difficulty: string(game.Medium)},
			{Name: "Warden", X: 2300, Y: 2300, Difficulty: string(game.Hard)},
		},
		SwarmBases: []SwarmBase{
			{X: 2400, Y: 600, Difficulty: string(game.Medium)},
		},
		SwarmDifficulty: string(game.Medium),
		LogLevel:        "info",
	}
}

// Load reads and validates a YAML file. Missing scalar settings keep their
// defaults; a missing list means none of that entity.
func Load(path string) (*Arena, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config: read %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config: %s", path)
	}
	return cfg, nil
}

// Parse decodes and validates YAML.
func Parse(data []byte) (*Arena, error) {
	def := Default()
	cfg := &Arena{
		World:           def.World,
		TickRate:        def.TickRate,
		SwarmDifficulty: def.SwarmDifficulty,
		LogLevel:        def.LogLevel,
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and cross-field constraints. Unknown difficulty
// labels on placements are not errors; the agents fall back to MEDIUM.
func (a *Arena) Validate() error {
	if a.World.Width <= 0 || a.World.Height <= 0 {
		return errors.Errorf("world: size must be positive, got %gx%g", a.World.Width, a.World.Height)
	}
	if a.TickRate <= 0 || a.TickRate > MaxTickRate {
		return errors.Errorf("tick_rate: must be in 1..%d, got %d", MaxTickRate, a.TickRate)
	}
	for i, w := range a.Walls {
		if w.Width <= 0 || w.Height <= 0 {
			return errors.Errorf("walls[%d]: size must be positive, got %gx%g", i, w.Width, w.Height)
		}
	}
	for i, c := range a.CombatAgents {
		if strings.TrimSpace(c.Name) == "" {
			return errors.Errorf("combat_agents[%d]: name is required", i)
		}
		if !a.inWorld(c.X, c.Y) {
			return errors.Errorf("combat_agents[%d]: position (%g, %g) outside world", i, c.X, c.Y)
		}
	}
	for i, b := range a.SwarmBases {
		if !a.inWorld(b.X, b.Y) {
			return errors.Errorf("swarm_bases[%d]: position (%g, %g) outside world", i, b.X, b.Y)
		}
	}
	if _, err := log.ParseLevel(a.LogLevel); err != nil {
		return errors.Errorf("log_level: unknown level %q", a.LogLevel)
	}
	if _, _, err := a.Profiles(); err != nil {
		return err
	}
	return nil
}

func (a *Arena) inWorld(x, y float64) bool {
	return x >= 0 && y >= 0 && x <= a.World.Width && y <= a.World.Height
}

// Level returns the configured log level, defaulting to info.
func (a *Arena) Level() log.Level {
	lvl, err := log.ParseLevel(a.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// TickInterval is the wall-clock period between simulation steps.
func (a *Arena) TickInterval() time.Duration {
	if a.TickRate <= 0 {
		return game.UpdateInterval
	}
	return time.Second / time.Duration(a.TickRate)
}
