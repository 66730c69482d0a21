package doctrine

import (
	"github.com/voltfall/tactics/internal/game/combat"
)

// CombatantView captures one participant's combat-relevant state at
// planning time.
type CombatantView struct {
	ID          string
	Name        string
	Team        combat.Team
	Pos         combat.Point
	HP          int
	MaxHP       int
	Cover       combat.CoverKind
	WeaponRange int
	Dead        bool
}

// HPPercent returns current HP as a percentage of MaxHP; 0 if MaxHP == 0.
func (c *CombatantView) HPPercent() float64 {
	if c.MaxHP <= 0 {
		return 0
	}
	return float64(c.HP) / float64(c.MaxHP) * 100
}

// Snapshot is the state passed to the HTN planner for one squad turn.
//
// Invariant: Self must not be nil and also appears in Combatants.
type Snapshot struct {
	Self       *CombatantView
	Combatants []*CombatantView // every participant, dead ones included
	Round      int
	EscapeOpen bool
}

// TakeSnapshot freezes the encounter's current turn into a Snapshot.
//
// Postcondition: returns nil when the encounter has no active actor.
func TakeSnapshot(enc *combat.Encounter) *Snapshot {
	active := enc.ActiveActor()
	if active == nil {
		return nil
	}
	snap := &Snapshot{
		Round:      enc.Round(),
		EscapeOpen: enc.EscapeAvailable(),
	}
	for _, a := range enc.Actors() {
		view := &CombatantView{
			ID:          a.ID,
			Name:        a.Name,
			Team:        a.Team,
			Pos:         a.Pos,
			HP:          a.CurrentHP,
			MaxHP:       a.MaxHP,
			Cover:       a.Cover,
			WeaponRange: a.Weapon.Range,
			Dead:        !a.IsAlive(),
		}
		snap.Combatants = append(snap.Combatants, view)
		if a.ID == active.ID {
			snap.Self = view
		}
	}
	return snap
}

// Enemies returns all living combatants opposing Self, in roster order.
func (s *Snapshot) Enemies() []*CombatantView {
	var out []*CombatantView
	for _, c := range s.Combatants {
		if !c.Dead && c.Team != s.Self.Team {
			out = append(out, c)
		}
	}
	return out
}

// Allies returns all living combatants on Self's team, excluding Self.
func (s *Snapshot) Allies() []*CombatantView {
	var out []*CombatantView
	for _, c := range s.Combatants {
		if !c.Dead && c.ID != s.Self.ID && c.Team == s.Self.Team {
			out = append(out, c)
		}
	}
	return out
}

// FallenAllies reports whether Self's team has taken at least one casualty.
func (s *Snapshot) FallenAllies() bool {
	for _, c := range s.Combatants {
		if c.Dead && c.Team == s.Self.Team {
			return true
		}
	}
	return false
}

// NearestEnemy returns the living enemy closest to Self in king-move
// distance, or nil. Ties break in roster order.
func (s *Snapshot) NearestEnemy() *CombatantView {
	var nearest *CombatantView
	best := 0
	for _, e := range s.Enemies() {
		d := s.Self.Pos.Distance(e.Pos)
		if nearest == nil || d < best {
			nearest = e
			best = d
		}
	}
	return nearest
}

// WeakestEnemy returns the living enemy with the lowest HP percentage, or
// nil. Ties break in roster order.
func (s *Snapshot) WeakestEnemy() *CombatantView {
	var weakest *CombatantView
	for _, e := range s.Enemies() {
		if weakest == nil || e.HPPercent() < weakest.HPPercent() {
			weakest = e
		}
	}
	return weakest
}

// WeakestAlly returns the living squadmate (excluding Self) with the lowest
// HP percentage, or nil when Self fights alone.
func (s *Snapshot) WeakestAlly() *CombatantView {
	var weakest *CombatantView
	for _, a := range s.Allies() {
		if weakest == nil || a.HPPercent() < weakest.HPPercent() {
			weakest = a
		}
	}
	return weakest
}

// EnemyInRange reports whether any living enemy sits within Self's weapon
// range.
func (s *Snapshot) EnemyInRange() bool {
	for _, e := range s.Enemies() {
		if s.Self.Pos.Distance(e.Pos) <= s.Self.WeaponRange {
			return true
		}
	}
	return false
}

// Outnumbered reports whether living enemies strictly outnumber Self's side.
func (s *Snapshot) Outnumbered() bool {
	return len(s.Enemies()) > len(s.Allies())+1
}

// ResolveTarget maps a target token to a combatant ID.
//
// Postcondition: tokens "nearest_enemy", "weakest_enemy", "weakest_ally",
// and "self" resolve to actor IDs; unknown tokens are returned as-is (they
// may name an actor literally); empty string is returned when the token
// resolves to nobody.
func (s *Snapshot) ResolveTarget(token string) string {
	switch token {
	case "nearest_enemy":
		if e := s.NearestEnemy(); e != nil {
			return e.ID
		}
		return ""
	case "weakest_enemy":
		if e := s.WeakestEnemy(); e != nil {
			return e.ID
		}
		return ""
	case "weakest_ally":
		if a := s.WeakestAlly(); a != nil {
			return a.ID
		}
		return ""
	case "self":
		return s.Self.ID
	default:
		return token
	}
}
