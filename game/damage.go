package game

// ApplyDamage subtracts damage from health and clamps the result to
// [0, maxHealth]. Returns the new health and the amount actually removed.
func ApplyDamage(health, maxHealth, damage float64) (float64, float64) {
	if damage <= 0 {
		return Clamp(health, 0, maxHealth), 0
	}
	next := Clamp(health-damage, 0, maxHealth)
	return next, health - next
}

// DamagePlayer applies damage to a player snapshot and reports whether the
// hit was lethal.
func DamagePlayer(p *Player, damage float64) bool {
	if p == nil || !p.Alive() {
		return false
	}
	p.Health, _ = ApplyDamage(p.Health, p.MaxHealth, damage)
	return p.Health == 0
}
