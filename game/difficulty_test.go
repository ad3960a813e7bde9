package game

import (
	"testing"
	"time"
)

func TestDifficultyMonotonicity(t *testing.T) {
	for i := 1; i < len(DifficultyOrder); i++ {
		prev, _ := BuiltinProfile(DifficultyOrder[i-1])
		cur, _ := BuiltinProfile(DifficultyOrder[i])
		if cur.DetectionRange < prev.DetectionRange {
			t.Errorf("%s detection range %.0f < %s %.0f", cur.Label, cur.DetectionRange, prev.Label, prev.DetectionRange)
		}
		if cur.Speed < prev.Speed {
			t.Errorf("%s speed %.0f < %s %.0f", cur.Label, cur.Speed, prev.Label, prev.Speed)
		}
		if cur.Accuracy < prev.Accuracy {
			t.Errorf("%s accuracy %.2f < %s %.2f", cur.Label, cur.Accuracy, prev.Label, prev.Accuracy)
		}
	}
}

func TestProfileBands(t *testing.T) {
	for _, d := range DifficultyOrder {
		p, ok := BuiltinProfile(d)
		if !ok {
			t.Fatalf("missing profile for %s", d)
		}
		if !(p.MinRange < p.OptimalRange && p.OptimalRange < p.DetectionRange) {
			t.Errorf("%s engagement bands out of order: min=%.0f optimal=%.0f detection=%.0f",
				d, p.MinRange, p.OptimalRange, p.DetectionRange)
		}
		if p.Accuracy < 0 || p.Accuracy > 1 || p.Aggressiveness < 0 || p.Aggressiveness > 1 {
			t.Errorf("%s accuracy/aggressiveness outside [0,1]", d)
		}
	}
}

func TestResolveDifficulty(t *testing.T) {
	tests := []struct {
		label    string
		expected Difficulty
	}{
		{"EASY", Easy},
		{"hard", Hard},
		{"  Nightmare ", Nightmare},
		{"", Medium},
		{"IMPOSSIBLE", Medium},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := ResolveDifficulty(tt.label); got != tt.expected {
				t.Errorf("ResolveDifficulty(%q) = %s, want %s", tt.label, got, tt.expected)
			}
		})
	}

	if p := Profile("bogus"); p.Label != Medium {
		t.Errorf("Profile(bogus) label = %s, want MEDIUM", p.Label)
	}
}

func TestInstallProfiles(t *testing.T) {
	defer ResetProfiles()

	hard, _ := BuiltinProfile(Hard)
	hard.ShootCooldown = 250 * time.Millisecond
	InstallProfiles(map[Difficulty]DifficultyProfile{
		Hard:         hard,
		"LEGENDARY": hard, // unknown rows are ignored
	}, nil)

	if got := Profile("HARD").ShootCooldown; got != 250*time.Millisecond {
		t.Errorf("override not installed: cooldown %v", got)
	}
	if got := Profile("EASY"); got != builtinProfiles[Easy] {
		t.Errorf("untouched row changed: %+v", got)
	}
	if _, ok := ParseDifficulty("LEGENDARY"); ok {
		t.Error("unknown label became resolvable")
	}

	ResetProfiles()
	if got := Profile("HARD").ShootCooldown; got != builtinProfiles[Hard].ShootCooldown {
		t.Errorf("reset did not restore cooldown: %v", got)
	}
}

func TestIndicator(t *testing.T) {
	seen := map[string]bool{}
	for _, d := range DifficultyOrder {
		ind := d.Indicator()
		if seen[ind] {
			t.Errorf("duplicate indicator %s", ind)
		}
		seen[ind] = true
	}
}
