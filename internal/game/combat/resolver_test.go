package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voltfall/tactics/internal/game/combat"
	"pgregory.net/rapid"
)

// fixedSource returns a fixed value from Intn, clamped to the bound.
type fixedSource struct{ val int }

func (f *fixedSource) Intn(n int) int {
	if f.val >= n {
		return n - 1
	}
	return f.val
}

// scriptedSource replays a fixed list of draws in order, then falls back
// to zero. Values are clamped to the requested bound.
type scriptedSource struct {
	vals []int
	i    int
}

func (s *scriptedSource) Intn(n int) int {
	v := 0
	if s.i < len(s.vals) {
		v = s.vals[s.i]
		s.i++
	}
	if v >= n {
		v = n - 1
	}
	return v
}

// shooter returns an attacker with mid-range stats and a ranged weapon:
// accuracy 75, damage 10, crit x1.5.
func shooter() *combat.Actor {
	return &combat.Actor{
		ID: "a", Name: "Jax", Team: combat.TeamPlayer,
		Body: 5, Reflexes: 5, Intelligence: 5, Tech: 5, Cool: 5,
		MaxHP: 40, CurrentHP: 40, Morale: 50,
		Weapon: combat.Weapon{
			Name: "sidearm", Class: combat.ClassRanged,
			Damage: 10, Accuracy: 75, Range: 6, CritMult: 1.5,
		},
	}
}

// dummy returns a defender with dodge 15 and no armor or cover.
func dummy() *combat.Actor {
	return &combat.Actor{
		ID: "d", Name: "Razor", Team: combat.TeamOpponent,
		Body: 5, Reflexes: 5, Intelligence: 5, Tech: 5, Cool: 5,
		MaxHP: 40, CurrentHP: 40, Morale: 50,
		Weapon: combat.Weapon{
			Name: "knife", Class: combat.ClassMelee,
			Damage: 8, Accuracy: 70, Range: 1, CritMult: 2.0,
		},
	}
}

// TestHitChance_Baseline verifies hit = accuracy - dodge with no cover.
func TestHitChance_Baseline(t *testing.T) {
	got := combat.HitChance(shooter(), dummy(), combat.DefaultTuning())
	assert.Equal(t, 60, got, "accuracy 75 - dodge 15 must yield 60")
}

// TestHitChance_ClampsHigh verifies the 95 ceiling: accuracy 100 against
// a defender with zero dodge yields 95, not 100.
func TestHitChance_ClampsHigh(t *testing.T) {
	atk := shooter()
	atk.Weapon.Accuracy = 100
	def := dummy()
	def.Reflexes = 0

	got := combat.HitChance(atk, def, combat.DefaultTuning())
	assert.Equal(t, combat.HitChanceMax, got, "no attack is ever certain")
}

// TestHitChance_ClampsLow verifies the 5 floor under stacked penalties.
func TestHitChance_ClampsLow(t *testing.T) {
	atk := shooter()
	atk.Weapon.Accuracy = 20
	def := dummy()
	def.Cover = combat.CoverFull

	got := combat.HitChance(atk, def, combat.DefaultTuning())
	assert.Equal(t, combat.HitChanceMin, got, "no attack is ever impossible")
}

// TestHitChance_CoverPenalties verifies the half and full cover
// subtractions against the baseline of 60.
func TestHitChance_CoverPenalties(t *testing.T) {
	tuning := combat.DefaultTuning()

	half := dummy()
	half.Cover = combat.CoverHalf
	assert.Equal(t, 35, combat.HitChance(shooter(), half, tuning))

	full := dummy()
	full.Cover = combat.CoverFull
	assert.Equal(t, 20, combat.HitChance(shooter(), full, tuning))
}

// TestHitChance_CoverAppliesToTechWeapons verifies tech weapons take the
// cover hit penalty; only the damage reduction ignores them.
func TestHitChance_CoverAppliesToTechWeapons(t *testing.T) {
	atk := shooter()
	atk.Weapon.Class = combat.ClassTech
	def := dummy()
	def.Cover = combat.CoverHalf

	assert.Equal(t, 35, combat.HitChance(atk, def, combat.DefaultTuning()))
}

// TestHitChance_InBand_Property verifies the [5, 95] clamp for arbitrary
// accuracy, dodge, and cover inputs.
func TestHitChance_InBand_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		atk := shooter()
		atk.Weapon.Accuracy = rapid.IntRange(-50, 200).Draw(rt, "accuracy")
		def := dummy()
		def.Reflexes = rapid.IntRange(0, 50).Draw(rt, "reflexes")
		def.Cover = rapid.SampledFrom([]combat.CoverKind{
			combat.CoverNone, combat.CoverHalf, combat.CoverFull,
		}).Draw(rt, "cover")

		hc := combat.HitChance(atk, def, combat.DefaultTuning())
		assert.GreaterOrEqual(rt, hc, combat.HitChanceMin)
		assert.LessOrEqual(rt, hc, combat.HitChanceMax)
	})
}

// TestResolveAttack_Miss verifies a roll above the hit chance produces a
// miss with zero damage and no crit.
func TestResolveAttack_Miss(t *testing.T) {
	src := &scriptedSource{vals: []int{98}} // roll 99 vs 60
	r := combat.ResolveAttack(shooter(), dummy(), combat.DefaultTuning(), src)

	require.False(t, r.Hit)
	assert.Equal(t, 99, r.Roll)
	assert.Equal(t, 60, r.HitChance)
	assert.False(t, r.Crit)
	assert.Zero(t, r.Damage)
}

// TestResolveAttack_Hit verifies the full damage pipeline at neutral
// variance: (10 + reflexes x2) with no crit, armor, or cover is 20.
func TestResolveAttack_Hit(t *testing.T) {
	// Draws: hit roll 1, variance 100%, crit roll 51 (no crit at 10%).
	src := &scriptedSource{vals: []int{0, 15, 50}}
	r := combat.ResolveAttack(shooter(), dummy(), combat.DefaultTuning(), src)

	require.True(t, r.Hit)
	assert.False(t, r.Crit)
	assert.Equal(t, 20, r.Damage)
}

// TestResolveAttack_Crit verifies the crit multiplier scales the damage
// before morale: 20 x 1.5 = 30.
func TestResolveAttack_Crit(t *testing.T) {
	src := &scriptedSource{vals: []int{0, 15, 0}} // crit roll 1 vs 10%
	r := combat.ResolveAttack(shooter(), dummy(), combat.DefaultTuning(), src)

	require.True(t, r.Hit)
	assert.True(t, r.Crit)
	assert.Equal(t, 30, r.Damage)
}

// TestResolveAttack_MeleeStatBonus verifies melee weapons add body x3
// instead of reflexes x2: (8 + 15) at neutral variance.
func TestResolveAttack_MeleeStatBonus(t *testing.T) {
	atk := dummy() // knife, body 5
	def := shooter()
	src := &scriptedSource{vals: []int{0, 15, 50}}
	r := combat.ResolveAttack(atk, def, combat.DefaultTuning(), src)

	require.True(t, r.Hit)
	assert.Equal(t, 23, r.Damage, "8 + body x3 = 23 at 100%% variance")
}

// TestResolveAttack_MoraleScalesDamage verifies the morale multiplier on
// outgoing damage: 1.25 at morale 100, 0.75 at morale 0.
func TestResolveAttack_MoraleScalesDamage(t *testing.T) {
	high := shooter()
	high.Morale = 100
	r := combat.ResolveAttack(high, dummy(), combat.DefaultTuning(),
		&scriptedSource{vals: []int{0, 15, 50}})
	assert.Equal(t, 25, r.Damage, "20 x 1.25")

	low := shooter()
	low.Morale = 0
	r = combat.ResolveAttack(low, dummy(), combat.DefaultTuning(),
		&scriptedSource{vals: []int{0, 15, 50}})
	assert.Equal(t, 15, r.Damage, "20 x 0.75")
}

// TestResolveAttack_ArmorReduction verifies penetration and the armor
// reduction multiplier: armor 60 at 50% pen cuts 15 off the total.
func TestResolveAttack_ArmorReduction(t *testing.T) {
	atk := shooter()
	atk.Weapon.ArmorPen = 0.5
	def := dummy()
	def.Armor = 60

	src := &scriptedSource{vals: []int{0, 15, 50}}
	r := combat.ResolveAttack(atk, def, combat.DefaultTuning(), src)
	assert.Equal(t, 5, r.Damage, "20 - (60 x 0.5 x 0.5)")
}

// TestResolveAttack_CoverDamageMultipliers verifies half and full cover
// scale damage for non-tech weapons and tech weapons ignore it.
func TestResolveAttack_CoverDamageMultipliers(t *testing.T) {
	tuning := combat.DefaultTuning()

	half := dummy()
	half.Cover = combat.CoverHalf
	r := combat.ResolveAttack(shooter(), half, tuning,
		&scriptedSource{vals: []int{0, 15, 50}})
	assert.Equal(t, 15, r.Damage, "20 x 0.75 behind half cover")

	full := dummy()
	full.Cover = combat.CoverFull
	r = combat.ResolveAttack(shooter(), full, tuning,
		&scriptedSource{vals: []int{0, 15, 50}})
	assert.Equal(t, 12, r.Damage, "20 x 0.60 behind full cover")

	tech := shooter()
	tech.Weapon.Class = combat.ClassTech
	r = combat.ResolveAttack(tech, full, tuning,
		&scriptedSource{vals: []int{0, 15, 50}})
	assert.Equal(t, 20, r.Damage, "tech weapons ignore cover damage reduction")
}

// TestResolveAttack_MinimumDamageFloor verifies a successful hit against
// maximum armor with zero penetration still deals 1 damage.
func TestResolveAttack_MinimumDamageFloor(t *testing.T) {
	atk := shooter() // damage 10, no penetration
	def := dummy()
	def.Armor = 100

	src := &scriptedSource{vals: []int{0, 15, 50}}
	r := combat.ResolveAttack(atk, def, combat.DefaultTuning(), src)

	require.True(t, r.Hit)
	assert.Equal(t, 1, r.Damage, "armor stacking must never reduce a hit below 1")
}

// TestResolveAttack_DamageFloor_Property verifies every successful hit
// deals at least 1 damage for arbitrary actor and weapon inputs.
func TestResolveAttack_DamageFloor_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		atk := shooter()
		atk.Body = rapid.IntRange(1, 10).Draw(rt, "body")
		atk.Reflexes = rapid.IntRange(1, 10).Draw(rt, "reflexes")
		atk.Cool = rapid.IntRange(1, 10).Draw(rt, "cool")
		atk.Morale = rapid.IntRange(0, 100).Draw(rt, "morale")
		atk.Weapon.Damage = rapid.IntRange(0, 100).Draw(rt, "damage")
		atk.Weapon.ArmorPen = rapid.Float64Range(0, 1).Draw(rt, "pen")
		atk.Weapon.CritMult = rapid.Float64Range(1, 3).Draw(rt, "critMult")
		atk.Weapon.Class = rapid.SampledFrom([]combat.WeaponClass{
			combat.ClassMelee, combat.ClassRanged, combat.ClassTech,
		}).Draw(rt, "class")

		def := dummy()
		def.Armor = rapid.IntRange(0, 100).Draw(rt, "armor")
		def.Cover = rapid.SampledFrom([]combat.CoverKind{
			combat.CoverNone, combat.CoverHalf, combat.CoverFull,
		}).Draw(rt, "cover")

		// A zero draw forces the lowest hit roll, which lands inside the
		// 5-percent floor.
		r := combat.ResolveAttack(atk, def, combat.DefaultTuning(), &fixedSource{val: 0})
		require.True(rt, r.Hit)
		assert.GreaterOrEqual(rt, r.Damage, 1,
			"successful hits deal at least 1 damage")
	})
}
