package game

import (
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Difficulty is the label that selects a tuning row.
type Difficulty string

const (
	Easy      Difficulty = "EASY"
	Medium    Difficulty = "MEDIUM"
	Hard      Difficulty = "HARD"
	Expert    Difficulty = "EXPERT"
	Nightmare Difficulty = "NIGHTMARE"
)

// DefaultDifficulty is used whenever a label cannot be resolved.
const DefaultDifficulty = Medium

// DifficultyOrder lists the labels from weakest to strongest.
var DifficultyOrder = []Difficulty{Easy, Medium, Hard, Expert, Nightmare}

// Indicator returns the short tag appended to agent names.
func (d Difficulty) Indicator() string {
	switch d {
	case Easy:
		return "[E]"
	case Medium:
		return "[M]"
	case Hard:
		return "[H]"
	case Expert:
		return "[X]"
	case Nightmare:
		return "[N]"
	}
	return "[?]"
}

// DifficultyProfile holds the tuning for combat agents at one difficulty.
type DifficultyProfile struct {
	Label             Difficulty    `json:"label"`
	Health            float64       `json:"health"`
	Speed             float64       `json:"speed"`          // units per second
	DetectionRange    float64       `json:"detectionRange"` // engage inside this distance
	OptimalRange      float64       `json:"optimalRange"`   // close in beyond this distance
	MinRange          float64       `json:"minRange"`       // flee inside this distance
	Accuracy          float64       `json:"accuracy"`       // 0-1
	ShootCooldown     time.Duration `json:"shootCooldown"`
	MissileCooldown   time.Duration `json:"missileCooldown"`
	MissilePreference float64       `json:"missilePreference"` // probability of choosing the missile
	Aggressiveness    float64       `json:"aggressiveness"`    // 0-1
	PatrolRadius      float64       `json:"patrolRadius"`
	AvoidanceDistance float64       `json:"avoidanceDistance"`
}

// SwarmProfile holds the tuning for swarm agents at one difficulty.
// Swarm health is fixed and not part of the profile.
type SwarmProfile struct {
	Label          Difficulty `json:"label"`
	Speed          float64    `json:"speed"`
	RushSpeed      float64    `json:"rushSpeed"`
	DetectionRange float64    `json:"detectionRange"`
	DamageBonus    float64    `json:"damageBonus"` // added to the base melee damage
}

// builtinProfiles is the stock combat table. Rows are monotone in the label order.
var builtinProfiles = map[Difficulty]DifficultyProfile{
	Easy: {
		Label:             Easy,
		Health:            60,
		Speed:             120,
		DetectionRange:    400,
		OptimalRange:      250,
		MinRange:          100,
		Accuracy:          0.4,
		ShootCooldown:     1500 * time.Millisecond,
		MissileCooldown:   4000 * time.Millisecond,
		MissilePreference: 0.1,
		Aggressiveness:    0.3,
		PatrolRadius:      150,
		AvoidanceDistance: 80,
	},
	Medium: {
		Label:             Medium,
		Health:            80,
		Speed:             150,
		DetectionRange:    500,
		OptimalRange:      280,
		MinRange:          110,
		Accuracy:          0.55,
		ShootCooldown:     1200 * time.Millisecond,
		MissileCooldown:   3500 * time.Millisecond,
		MissilePreference: 0.2,
		Aggressiveness:    0.5,
		PatrolRadius:      200,
		AvoidanceDistance: 90,
	},
	Hard: {
		Label:             Hard,
		Health:            100,
		Speed:             180,
		DetectionRange:    600,
		OptimalRange:      300,
		MinRange:          120,
		Accuracy:          0.7,
		ShootCooldown:     1000 * time.Millisecond,
		MissileCooldown:   3000 * time.Millisecond,
		MissilePreference: 0.3,
		Aggressiveness:    0.7,
		PatrolRadius:      250,
		AvoidanceDistance: 100,
	},
	Expert: {
		Label:             Expert,
		Health:            130,
		Speed:             210,
		DetectionRange:    700,
		OptimalRange:      320,
		MinRange:          130,
		Accuracy:          0.82,
		ShootCooldown:     800 * time.Millisecond,
		MissileCooldown:   2500 * time.Millisecond,
		MissilePreference: 0.4,
		Aggressiveness:    0.85,
		PatrolRadius:      300,
		AvoidanceDistance: 110,
	},
	Nightmare: {
		Label:             Nightmare,
		Health:            160,
		Speed:             240,
		DetectionRange:    800,
		OptimalRange:      350,
		MinRange:          140,
		Accuracy:          0.92,
		ShootCooldown:     600 * time.Millisecond,
		MissileCooldown:   2000 * time.Millisecond,
		MissilePreference: 0.5,
		Aggressiveness:    1.0,
		PatrolRadius:      350,
		AvoidanceDistance: 120,
	},
}

var builtinSwarmProfiles = map[Difficulty]SwarmProfile{
	Easy:      {Label: Easy, Speed: 160, RushSpeed: 240, DetectionRange: 350, DamageBonus: 0},
	Medium:    {Label: Medium, Speed: 190, RushSpeed: 290, DetectionRange: 420, DamageBonus: 1},
	Hard:      {Label: Hard, Speed: 220, RushSpeed: 340, DetectionRange: 500, DamageBonus: 2},
	Expert:    {Label: Expert, Speed: 250, RushSpeed: 390, DetectionRange: 580, DamageBonus: 3},
	Nightmare: {Label: Nightmare, Speed: 280, RushSpeed: 440, DetectionRange: 660, DamageBonus: 4},
}

var (
	profilesMu    sync.RWMutex
	profiles      = cloneProfiles(builtinProfiles)
	swarmProfiles = cloneSwarmProfiles(builtinSwarmProfiles)
)

// ParseDifficulty normalizes a label. ok is false for unknown labels.
func ParseDifficulty(label string) (Difficulty, bool) {
	d := Difficulty(strings.ToUpper(strings.TrimSpace(label)))
	_, ok := builtinProfiles[d]
	return d, ok
}

// ResolveDifficulty normalizes a label, falling back to MEDIUM with a warning.
func ResolveDifficulty(label string) Difficulty {
	d, ok := ParseDifficulty(label)
	if !ok {
		log.Warn("unknown difficulty label, using fallback", "label", label, "fallback", DefaultDifficulty)
		return DefaultDifficulty
	}
	return d
}

// Profile returns the combat profile for a label (falling back to MEDIUM).
func Profile(label string) DifficultyProfile {
	d := ResolveDifficulty(label)
	profilesMu.RLock()
	defer profilesMu.RUnlock()
	return profiles[d]
}

// SwarmProfileFor returns the swarm profile for a label (falling back to MEDIUM).
func SwarmProfileFor(label string) SwarmProfile {
	d := ResolveDifficulty(label)
	profilesMu.RLock()
	defer profilesMu.RUnlock()
	return swarmProfiles[d]
}

// BuiltinProfile returns the stock row, ignoring installed overrides.
func BuiltinProfile(d Difficulty) (DifficultyProfile, bool) {
	p, ok := builtinProfiles[d]
	return p, ok
}

// BuiltinSwarmProfile returns the stock swarm row, ignoring installed overrides.
func BuiltinSwarmProfile(d Difficulty) (SwarmProfile, bool) {
	p, ok := builtinSwarmProfiles[d]
	return p, ok
}

// InstallProfiles replaces the active tables. Labels missing from the
// arguments keep their built-in rows.
func InstallProfiles(combat map[Difficulty]DifficultyProfile, swarm map[Difficulty]SwarmProfile) {
	nextCombat := cloneProfiles(builtinProfiles)
	for d, p := range combat {
		if _, ok := builtinProfiles[d]; !ok {
			continue
		}
		p.Label = d
		nextCombat[d] = p
	}
	nextSwarm := cloneSwarmProfiles(builtinSwarmProfiles)
	for d, p := range swarm {
		if _, ok := builtinSwarmProfiles[d]; !ok {
			continue
		}
		p.Label = d
		nextSwarm[d] = p
	}

	profilesMu.Lock()
	profiles = nextCombat
	swarmProfiles = nextSwarm
	profilesMu.Unlock()
}

// ResetProfiles restores the built-in tables.
func ResetProfiles() {
	InstallProfiles(nil, nil)
}

func cloneProfiles(src map[Difficulty]DifficultyProfile) map[Difficulty]DifficultyProfile {
	dst := make(map[Difficulty]DifficultyProfile, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func cloneSwarmProfiles(src map[Difficulty]SwarmProfile) map[Difficulty]SwarmProfile {
	dst := make(map[Difficulty]SwarmProfile, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
