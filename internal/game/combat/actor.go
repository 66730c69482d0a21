package combat

// Weapon is the equipped weapon record an actor attacks with.
type Weapon struct {
	Name string
	// Class drives the damage stat bonus and the cover interaction: tech
	// weapons ignore cover damage reduction.
	Class WeaponClass
	// Damage is the base damage before variance and bonuses.
	Damage int
	// Accuracy is the base percent chance to hit before dodge and cover.
	Accuracy int
	// Range is the maximum attack distance in tiles.
	Range int
	// ArmorPen is the fraction of the target's armor ignored, in [0, 1].
	ArmorPen float64
	// CritMult scales damage on a critical hit.
	CritMult float64
}

// Actor is one participant in an encounter. Attributes are fixed for the
// encounter's duration; combat stats and flags mutate through attack
// resolution, movement, turn boundaries, and escape penalties.
//
// Invariant: 0 <= CurrentHP <= MaxHP and 0 <= AP <= MaxAP at all times.
type Actor struct {
	ID   string
	Name string
	Team Team
	Pos  Point

	// Attributes, nominal range 1-10. They drive every derived number.
	Body         int
	Reflexes     int
	Intelligence int
	Tech         int
	Cool         int

	MaxHP     int
	CurrentHP int
	// Armor is a flat rating in [0, 100] reduced by weapon penetration.
	Armor int
	// Morale is in [0, 100]; 50 is neutral. Mutated only by escape
	// penalties.
	Morale int

	AP    int
	MaxAP int

	Weapon Weapon

	// Initiative is rolled once at encounter start and never re-rolled.
	Initiative int

	// HasActed and HasMoved reset at turn start; Cover is a property of
	// the actor's current tile assignment.
	HasActed bool
	HasMoved bool
	Cover    CoverKind
}

// IsAlive reports whether the actor is still in the fight.
//
// Postcondition: Returns true iff CurrentHP > 0.
func (a *Actor) IsAlive() bool { return a.CurrentHP > 0 }

// InCover reports whether the actor benefits from any cover.
func (a *Actor) InCover() bool { return a.Cover != CoverNone }

// HPPercent returns current HP as a percentage of max HP.
//
// Precondition: MaxHP > 0.
func (a *Actor) HPPercent() float64 {
	return float64(a.CurrentHP) / float64(a.MaxHP) * 100
}

// DodgeChance returns the percent chance to evade an incoming attack,
// capped at 20.
//
// Postcondition: Returns a value in [0, 20] for non-negative reflexes.
func (a *Actor) DodgeChance() int {
	d := a.Reflexes * 3
	if d > 20 {
		d = 20
	}
	return d
}

// CritChance returns the percent chance an attack crits. The 1-10
// attribute range bounds it at 20 without an explicit cap.
func (a *Actor) CritChance() int {
	return a.Cool * 2
}

// MoraleModifier returns the multiplier applied to outgoing damage:
// 1.0 at morale 50, 1.25 at 100, 0.75 at 0. Hit chance is unaffected.
func (a *Actor) MoraleModifier() float64 {
	return 1.0 + float64(a.Morale-50)/200.0
}

// MovementRange returns how many tiles the actor may cross with one move
// action: base plus a reflexes bonus (integer division).
func (a *Actor) MovementRange(base int) int {
	return base + a.Reflexes/4
}

// ApplyDamage reduces CurrentHP by amount, flooring at zero. An actor
// whose HP reaches zero is out of the fight but stays in the roster.
//
// Precondition: amount must be >= 0.
// Postcondition: CurrentHP >= 0.
func (a *Actor) ApplyDamage(amount int) {
	a.CurrentHP -= amount
	if a.CurrentHP < 0 {
		a.CurrentHP = 0
	}
}

// SpendAP deducts cost from the actor's pool.
//
// Precondition: 0 <= cost <= AP; callers validate before spending.
// Postcondition: AP >= 0.
func (a *Actor) SpendAP(cost int) {
	a.AP -= cost
	if a.AP < 0 {
		a.AP = 0
	}
}

// StartTurn refills AP to MaxAP and clears the per-turn flags.
func (a *Actor) StartTurn() {
	a.AP = a.MaxAP
	a.HasActed = false
	a.HasMoved = false
}

// EndTurn marks the actor as having acted this turn.
func (a *Actor) EndTurn() {
	a.HasActed = true
}
