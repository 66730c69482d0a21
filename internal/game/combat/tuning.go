package combat

import (
	"fmt"
	"strings"
)

// Tuning collects the numeric knobs of the combat engine. Every encounter
// is constructed with one Tuning value that stays fixed for its duration.
type Tuning struct {
	// MaxAP is the action point pool each actor refills to at turn start.
	MaxAP int
	// AttackCost and MoveCost are the AP prices of the two actions.
	AttackCost int
	MoveCost   int
	// BaseMovementRange is the flat tile range before the reflexes bonus.
	BaseMovementRange int
	// GridWidth and GridHeight bound actor positions.
	GridWidth  int
	GridHeight int
	// CoverHalfPenalty and CoverFullPenalty subtract from incoming hit chance.
	CoverHalfPenalty int
	CoverFullPenalty int
	// CoverHalfDamageMult and CoverFullDamageMult scale incoming damage for
	// non-tech weapons.
	CoverHalfDamageMult float64
	CoverFullDamageMult float64
	// ArmorReduction scales the effective-armor subtraction in the damage
	// formula.
	ArmorReduction float64
	// EscapeMinRound is the first round on which escape conditions are
	// evaluated at all.
	EscapeMinRound int
	// EscapeBaseChance feeds the no-sacrifice escape roll alongside the
	// leader's reflexes.
	EscapeBaseChance int
	// SacrificeEscapeChance is the flat percent chance when an ally is
	// left behind.
	SacrificeEscapeChance int
	// EscapeMoraleLoss is subtracted from every survivor's morale on a
	// successful escape.
	EscapeMoraleLoss int
	// FailedEscapeDamagePct of the leader's max HP is dealt to the leader
	// when a no-sacrifice attempt fails.
	FailedEscapeDamagePct float64
}

// DefaultTuning returns the stock engine tuning.
func DefaultTuning() Tuning {
	return Tuning{
		MaxAP:                 3,
		AttackCost:            1,
		MoveCost:              1,
		BaseMovementRange:     3,
		GridWidth:             20,
		GridHeight:            20,
		CoverHalfPenalty:      25,
		CoverFullPenalty:      40,
		CoverHalfDamageMult:   0.75,
		CoverFullDamageMult:   0.60,
		ArmorReduction:        0.5,
		EscapeMinRound:        3,
		EscapeBaseChance:      45,
		SacrificeEscapeChance: 93,
		EscapeMoraleLoss:      20,
		FailedEscapeDamagePct: 0.20,
	}
}

// Validate checks all tuning invariants.
//
// Postcondition: Returns nil if the tuning is usable, or an error
// describing all violations.
func (t Tuning) Validate() error {
	var errs []string

	if t.MaxAP < 1 {
		errs = append(errs, fmt.Sprintf("max AP must be >= 1, got %d", t.MaxAP))
	}
	if t.AttackCost < 1 {
		errs = append(errs, fmt.Sprintf("attack cost must be >= 1, got %d", t.AttackCost))
	}
	if t.MoveCost < 1 {
		errs = append(errs, fmt.Sprintf("move cost must be >= 1, got %d", t.MoveCost))
	}
	if t.BaseMovementRange < 1 {
		errs = append(errs, fmt.Sprintf("base movement range must be >= 1, got %d", t.BaseMovementRange))
	}
	if t.GridWidth < 2 || t.GridHeight < 2 {
		errs = append(errs, fmt.Sprintf("grid must be at least 2x2, got %dx%d", t.GridWidth, t.GridHeight))
	}
	if t.CoverHalfPenalty < 0 || t.CoverFullPenalty < 0 {
		errs = append(errs, "cover penalties must be >= 0")
	}
	if t.CoverHalfDamageMult <= 0 || t.CoverHalfDamageMult > 1 {
		errs = append(errs, fmt.Sprintf("half cover damage multiplier must be in (0, 1], got %g", t.CoverHalfDamageMult))
	}
	if t.CoverFullDamageMult <= 0 || t.CoverFullDamageMult > 1 {
		errs = append(errs, fmt.Sprintf("full cover damage multiplier must be in (0, 1], got %g", t.CoverFullDamageMult))
	}
	if t.ArmorReduction < 0 {
		errs = append(errs, fmt.Sprintf("armor reduction must be >= 0, got %g", t.ArmorReduction))
	}
	if t.EscapeMinRound < 1 {
		errs = append(errs, fmt.Sprintf("escape minimum round must be >= 1, got %d", t.EscapeMinRound))
	}
	if t.EscapeBaseChance < 0 || t.EscapeBaseChance > 100 {
		errs = append(errs, fmt.Sprintf("escape base chance must be in [0, 100], got %d", t.EscapeBaseChance))
	}
	if t.SacrificeEscapeChance < 0 || t.SacrificeEscapeChance > 100 {
		errs = append(errs, fmt.Sprintf("sacrifice escape chance must be in [0, 100], got %d", t.SacrificeEscapeChance))
	}
	if t.EscapeMoraleLoss < 0 {
		errs = append(errs, fmt.Sprintf("escape morale loss must be >= 0, got %d", t.EscapeMoraleLoss))
	}
	if t.FailedEscapeDamagePct < 0 || t.FailedEscapeDamagePct > 1 {
		errs = append(errs, fmt.Sprintf("failed escape damage fraction must be in [0, 1], got %g", t.FailedEscapeDamagePct))
	}

	if len(errs) > 0 {
		return fmt.Errorf("tuning validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
