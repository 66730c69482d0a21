// Package sim drives complete encounters without a client attached. A
// Policy picks actions for the player squad; opponent turns resolve inside
// the engine. The runner guarantees forward progress no matter how badly a
// policy misbehaves.
package sim

import (
	"github.com/voltfall/tactics/internal/game/combat"
)

// ActionKind enumerates the verbs a policy can pick.
type ActionKind int

const (
	ActionEndTurn ActionKind = iota
	ActionMove
	ActionAttack
	ActionEscape
)

// String returns the action verb for logs.
func (k ActionKind) String() string {
	switch k {
	case ActionEndTurn:
		return "end_turn"
	case ActionMove:
		return "move"
	case ActionAttack:
		return "attack"
	case ActionEscape:
		return "escape"
	default:
		return "unknown"
	}
}

// Action is one decision for the active actor.
type Action struct {
	Kind ActionKind
	// TargetID is the actor to attack.
	TargetID string
	// Dest is the move destination.
	Dest combat.Point
	// Sacrifice optionally names the squadmate left behind on escape.
	Sacrifice string
}

// Policy picks the next action for the active player-team actor. The
// encounter is handed over for reading only; the runner applies the
// returned action itself.
type Policy interface {
	// Decide returns the next action. An error makes the runner pass
	// the turn instead.
	Decide(enc *combat.Encounter) (Action, error)
	// Name identifies the policy in logs and reports.
	Name() string
}
