package doctrine

import (
	"fmt"

	"github.com/voltfall/tactics/internal/game/combat"
)

// PredicateEvaluator is the interface the Planner uses to test method
// preconditions against a snapshot.
type PredicateEvaluator interface {
	// Evaluate tests the named predicate. Unknown names return an error.
	Evaluate(name string, snap *Snapshot) (bool, error)
}

// builtinEvaluator implements the stock predicate vocabulary.
type builtinEvaluator struct{}

// NewBuiltinEvaluator returns the evaluator backing the stock predicates:
// enemy_in_range, hurt, critical, outnumbered, ally_down, escape_open, and
// in_cover.
func NewBuiltinEvaluator() PredicateEvaluator {
	return builtinEvaluator{}
}

func (builtinEvaluator) Evaluate(name string, snap *Snapshot) (bool, error) {
	switch name {
	case "enemy_in_range":
		return snap.EnemyInRange(), nil
	case "hurt":
		return snap.Self.HPPercent() < 50, nil
	case "critical":
		return snap.Self.HPPercent() < 25, nil
	case "outnumbered":
		return snap.Outnumbered(), nil
	case "ally_down":
		return snap.FallenAllies(), nil
	case "escape_open":
		return snap.EscapeOpen, nil
	case "in_cover":
		return snap.Self.Cover != combat.CoverNone, nil
	default:
		return false, fmt.Errorf("unknown predicate %q", name)
	}
}
