package config

import (
	"github.com/lab1702/arena-npc/game"
	"github.com/pkg/errors"
)

// Profiles merges the overrides onto the built-in tables and validates the
// resulting rows. Only overridden labels appear in the returned maps.
func (a *Arena) Profiles() (map[game.Difficulty]game.DifficultyProfile, map[game.Difficulty]game.SwarmProfile, error) {
	combat := make(map[game.Difficulty]game.DifficultyProfile, len(a.DifficultyOverrides))
	swarm := make(map[game.Difficulty]game.SwarmProfile)

	for label, o := range a.DifficultyOverrides {
		d, ok := game.ParseDifficulty(label)
		if !ok {
			return nil, nil, errors.Errorf("difficulty_overrides: unknown label %q", label)
		}
		p, _ := game.BuiltinProfile(d)
		o.applyTo(&p)
		if err := validateProfile(p); err != nil {
			return nil, nil, errors.Wrapf(err, "difficulty_overrides.%s", d)
		}
		combat[d] = p

		if o.Swarm != nil {
			sp, _ := game.BuiltinSwarmProfile(d)
			o.Swarm.applyTo(&sp)
			if sp.Speed <= 0 || sp.RushSpeed < sp.Speed || sp.DetectionRange <= 0 || sp.DamageBonus < 0 {
				return nil, nil, errors.Errorf("difficulty_overrides.%s.swarm: invalid row %+v", d, sp)
			}
			swarm[d] = sp
		}
	}
	if err := checkMonotone(combat, swarm); err != nil {
		return nil, nil, errors.Wrap(err, "difficulty_overrides")
	}
	return combat, swarm, nil
}

// checkMonotone walks the merged tables from EASY to NIGHTMARE. Detection
// range, speed and accuracy never drop as the label gets harder, and
// neither do swarm speed and detection range.
func checkMonotone(combat map[game.Difficulty]game.DifficultyProfile, swarm map[game.Difficulty]game.SwarmProfile) error {
	var prev game.DifficultyProfile
	var prevSwarm game.SwarmProfile
	for i, d := range game.DifficultyOrder {
		p, ok := combat[d]
		if !ok {
			p, _ = game.BuiltinProfile(d)
		}
		sp, ok := swarm[d]
		if !ok {
			sp, _ = game.BuiltinSwarmProfile(d)
		}
		if i > 0 {
			switch {
			case p.DetectionRange < prev.DetectionRange:
				return errors.Errorf("%s detection_range %g is below %s %g", d, p.DetectionRange, prev.Label, prev.DetectionRange)
			case p.Speed < prev.Speed:
				return errors.Errorf("%s speed %g is below %s %g", d, p.Speed, prev.Label, prev.Speed)
			case p.Accuracy < prev.Accuracy:
				return errors.Errorf("%s accuracy %g is below %s %g", d, p.Accuracy, prev.Label, prev.Accuracy)
			case sp.Speed < prevSwarm.Speed:
				return errors.Errorf("%s swarm speed %g is below %s %g", d, sp.Speed, prevSwarm.Label, prevSwarm.Speed)
			case sp.DetectionRange < prevSwarm.DetectionRange:
				return errors.Errorf("%s swarm detection_range %g is below %s %g",
					d, sp.DetectionRange, prevSwarm.Label, prevSwarm.DetectionRange)
			}
		}
		p.Label, sp.Label = d, d
		prev, prevSwarm = p, sp
	}
	return nil
}

// ApplyProfiles installs the merged tables process-wide. Labels without an
// override revert to their built-in rows.
func (a *Arena) ApplyProfiles() error {
	combat, swarm, err := a.Profiles()
	if err != nil {
		return err
	}
	game.InstallProfiles(combat, swarm)
	return nil
}

func (o ProfileOverride) applyTo(p *game.DifficultyProfile) {
	setFloat(&p.Health, o.Health)
	setFloat(&p.Speed, o.Speed)
	setFloat(&p.DetectionRange, o.DetectionRange)
	setFloat(&p.OptimalRange, o.OptimalRange)
	setFloat(&p.MinRange, o.MinRange)
	setFloat(&p.Accuracy, o.Accuracy)
	setFloat(&p.MissilePreference, o.MissilePreference)
	setFloat(&p.Aggressiveness, o.Aggressiveness)
	setFloat(&p.PatrolRadius, o.PatrolRadius)
	setFloat(&p.AvoidanceDistance, o.AvoidanceDistance)
	if o.ShootCooldown != nil {
		p.ShootCooldown = *o.ShootCooldown
	}
	if o.MissileCooldown != nil {
		p.MissileCooldown = *o.MissileCooldown
	}
}

func (o SwarmOverride) applyTo(p *game.SwarmProfile) {
	setFloat(&p.Speed, o.Speed)
	setFloat(&p.RushSpeed, o.RushSpeed)
	setFloat(&p.DetectionRange, o.DetectionRange)
	setFloat(&p.DamageBonus, o.DamageBonus)
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func validateProfile(p game.DifficultyProfile) error {
	switch {
	case p.Health <= 0:
		return errors.Errorf("health must be positive, got %g", p.Health)
	case p.Speed <= 0:
		return errors.Errorf("speed must be positive, got %g", p.Speed)
	case p.MinRange < 0 || p.MinRange > p.OptimalRange || p.OptimalRange > p.DetectionRange:
		return errors.Errorf("ranges must satisfy 0 <= min <= optimal <= detection, got %g/%g/%g",
			p.MinRange, p.OptimalRange, p.DetectionRange)
	case p.Accuracy < 0 || p.Accuracy > 1:
		return errors.Errorf("accuracy must be in [0,1], got %g", p.Accuracy)
	case p.MissilePreference < 0 || p.MissilePreference > 1:
		return errors.Errorf("missile_preference must be in [0,1], got %g", p.MissilePreference)
	case p.Aggressiveness < 0 || p.Aggressiveness > 1:
		return errors.Errorf("aggressiveness must be in [0,1], got %g", p.Aggressiveness)
	case p.ShootCooldown <= 0 || p.MissileCooldown <= 0:
		return errors.Errorf("cooldowns must be positive, got %v/%v", p.ShootCooldown, p.MissileCooldown)
	case p.PatrolRadius < 0 || p.AvoidanceDistance <= 0:
		return errors.Errorf("patrol_radius and avoidance_distance must be positive, got %g/%g",
			p.PatrolRadius, p.AvoidanceDistance)
	}
	return nil
}
