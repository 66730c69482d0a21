// Package combat implements the turn-based tactical combat engine for
// Voltfall: initiative-ordered turns, an action point economy, percentile
// hit and damage resolution with cover and morale modifiers, a scripted
// opponent controller, and the negotiated escape mechanic.
package combat

import (
	"errors"
	"fmt"
)

// ErrInvalidEncounter is returned when an encounter cannot be constructed
// from the given rosters.
var ErrInvalidEncounter = errors.New("invalid encounter")

// ErrNotAllowed is returned when an action request is rejected. The
// encounter state is unchanged and no action points are spent.
var ErrNotAllowed = errors.New("action not allowed")

// Team identifies which side of the encounter an actor fights for.
type Team int

const (
	TeamPlayer Team = iota
	TeamOpponent
)

// String returns a human-readable team label.
func (t Team) String() string {
	switch t {
	case TeamPlayer:
		return "player"
	case TeamOpponent:
		return "opponent"
	default:
		return "unknown"
	}
}

// Opposing returns the other team.
func (t Team) Opposing() Team {
	if t == TeamPlayer {
		return TeamOpponent
	}
	return TeamPlayer
}

// WeaponClass distinguishes how a weapon scales and interacts with cover.
type WeaponClass int

const (
	ClassMelee WeaponClass = iota
	ClassRanged
	ClassTech
)

// String returns the lowercase class name.
func (c WeaponClass) String() string {
	switch c {
	case ClassMelee:
		return "melee"
	case ClassRanged:
		return "ranged"
	case ClassTech:
		return "tech"
	default:
		return "unknown"
	}
}

// ParseWeaponClass converts a definition-file string into a WeaponClass.
//
// Postcondition: Returns an error for anything other than "melee",
// "ranged", or "tech".
func ParseWeaponClass(s string) (WeaponClass, error) {
	switch s {
	case "melee":
		return ClassMelee, nil
	case "ranged":
		return ClassRanged, nil
	case "tech":
		return ClassTech, nil
	default:
		return 0, fmt.Errorf("unknown weapon class %q", s)
	}
}

// CoverKind is the defensive state of an actor's current tile.
type CoverKind int

const (
	CoverNone CoverKind = iota
	CoverHalf
	CoverFull
)

// String returns the lowercase cover name.
func (k CoverKind) String() string {
	switch k {
	case CoverNone:
		return "none"
	case CoverHalf:
		return "half"
	case CoverFull:
		return "full"
	default:
		return "unknown"
	}
}

// ParseCoverKind converts a definition-file string into a CoverKind.
//
// Postcondition: Returns an error for anything other than "none", "half",
// or "full".
func ParseCoverKind(s string) (CoverKind, error) {
	switch s {
	case "none":
		return CoverNone, nil
	case "half":
		return CoverHalf, nil
	case "full":
		return CoverFull, nil
	default:
		return 0, fmt.Errorf("unknown cover kind %q", s)
	}
}

// State is the lifecycle phase of an encounter.
type State int

const (
	StateInitializing State = iota
	StateInProgress
	StateTerminated
)

// String returns a human-readable state label.
func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateInProgress:
		return "in progress"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result of an encounter. OutcomeNone means the
// encounter has not terminated yet.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeVictory
	OutcomeDefeat
	OutcomeFled
)

// String returns a human-readable outcome label.
func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeVictory:
		return "victory"
	case OutcomeDefeat:
		return "defeat"
	case OutcomeFled:
		return "fled"
	default:
		return "unknown"
	}
}
