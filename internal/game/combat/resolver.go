package combat

import "math"

// Source is the subset of rng.Source used by the engine. Declaring it
// locally keeps the package free of imports beyond the standard library.
type Source interface {
	Intn(n int) int
}

// Hit chance bounds. The clamp guarantees no attack is ever certain or
// impossible.
const (
	HitChanceMin = 5
	HitChanceMax = 95
)

// d10 returns a die roll in [1, 10].
func d10(src Source) int { return src.Intn(10) + 1 }

// d100 returns a percentile roll in [1, 100].
func d100(src Source) int { return src.Intn(100) + 1 }

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// AttackResult holds the outcome of a single resolved attack. Damage is
// not yet applied to the target; the encounter owns that mutation.
type AttackResult struct {
	// AttackerID and TargetID identify the pair by stable actor ID.
	AttackerID string
	TargetID   string
	// HitChance is the clamped percent chance the roll was made against.
	HitChance int
	// Roll is the raw percentile hit roll.
	Roll int
	// Hit is true when Roll <= HitChance.
	Hit bool
	// Crit is true when the attack was a critical hit. Always false on a
	// miss.
	Crit bool
	// Damage is the final damage on a hit, at least 1. Zero on a miss.
	Damage int
}

// HitChance computes the attacker's percent chance to hit the defender:
// weapon accuracy minus the defender's dodge, minus a cover penalty when
// the defender is behind cover, clamped to [HitChanceMin, HitChanceMax].
func HitChance(attacker, defender *Actor, t Tuning) int {
	hit := attacker.Weapon.Accuracy - defender.DodgeChance()
	switch defender.Cover {
	case CoverHalf:
		hit -= t.CoverHalfPenalty
	case CoverFull:
		hit -= t.CoverFullPenalty
	}
	return clampInt(hit, HitChanceMin, HitChanceMax)
}

// ResolveAttack performs a full hit and damage resolution for attacker vs
// defender. Draws from src in a fixed order so seeded encounters replay
// exactly: hit roll, then on a hit the damage variance and the crit roll.
//
// Damage pipeline on a hit: base damage with +/-15% variance, plus the
// class stat bonus (body x3 melee, reflexes x2 otherwise), scaled by crit
// multiplier and morale modifier, minus penetrated armor, scaled by cover
// for non-tech weapons, floored at 1.
//
// Precondition: attacker and defender must be non-nil and alive; src must
// be non-nil.
// Postcondition: Returns a fully populated AttackResult; on a hit,
// Damage >= 1.
func ResolveAttack(attacker, defender *Actor, t Tuning, src Source) AttackResult {
	r := AttackResult{
		AttackerID: attacker.ID,
		TargetID:   defender.ID,
		HitChance:  HitChance(attacker, defender, t),
	}
	r.Roll = d100(src)
	if r.Roll > r.HitChance {
		return r
	}
	r.Hit = true

	// Variance drawn in whole-percent steps: 85..115.
	variance := float64(85+src.Intn(31)) / 100
	base := float64(attacker.Weapon.Damage) * variance

	statBonus := attacker.Reflexes * 2
	if attacker.Weapon.Class == ClassMelee {
		statBonus = attacker.Body * 3
	}

	critMult := 1.0
	if d100(src) <= attacker.CritChance() {
		r.Crit = true
		critMult = attacker.Weapon.CritMult
	}

	total := (base + float64(statBonus)) * critMult * attacker.MoraleModifier()

	effectiveArmor := float64(defender.Armor) * (1 - attacker.Weapon.ArmorPen)
	total -= effectiveArmor * t.ArmorReduction

	if defender.InCover() && attacker.Weapon.Class != ClassTech {
		if defender.Cover == CoverHalf {
			total *= t.CoverHalfDamageMult
		} else {
			total *= t.CoverFullDamageMult
		}
	}

	r.Damage = int(math.Round(total))
	if r.Damage < 1 {
		r.Damage = 1
	}
	return r
}
