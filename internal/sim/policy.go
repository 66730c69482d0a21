package sim

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/voltfall/tactics/internal/game/combat"
	"github.com/voltfall/tactics/internal/scripting"
)

// AggressivePolicy is the built-in squad policy: escape when the active
// actor is below half HP and the window is open, focus the weakest target
// in range, otherwise close distance toward the nearest opponent.
type AggressivePolicy struct{}

// Name identifies the policy in logs and reports.
func (AggressivePolicy) Name() string { return "aggressive" }

// Decide picks the next action for the active actor.
func (AggressivePolicy) Decide(enc *combat.Encounter) (Action, error) {
	active := enc.ActiveActor()
	if active == nil {
		return Action{}, fmt.Errorf("sim: no active actor")
	}

	if enc.EscapeAvailable() && active.CurrentHP*2 < active.MaxHP {
		return Action{Kind: ActionEscape}, nil
	}

	if targets := enc.ValidTargets(active.ID); len(targets) > 0 {
		best := targets[0]
		bestHP := targetHP(enc, best)
		for _, id := range targets[1:] {
			if hp := targetHP(enc, id); hp < bestHP {
				best, bestHP = id, hp
			}
		}
		return Action{Kind: ActionAttack, TargetID: best}, nil
	}

	quarry := nearestOpponent(enc, active)
	if quarry == nil {
		return Action{Kind: ActionEndTurn}, nil
	}

	moves := enc.ValidMoves(active.ID)
	if len(moves) == 0 {
		return Action{Kind: ActionEndTurn}, nil
	}
	best := moves[0]
	bestDist := best.Distance(quarry.Pos)
	for _, m := range moves[1:] {
		if d := m.Distance(quarry.Pos); d < bestDist {
			best, bestDist = m, d
		}
	}
	// Moving without closing distance just burns AP.
	if bestDist >= active.Pos.Distance(quarry.Pos) {
		return Action{Kind: ActionEndTurn}, nil
	}
	return Action{Kind: ActionMove, Dest: best}, nil
}

func targetHP(enc *combat.Encounter, id string) int {
	if a, ok := enc.ActorByID(id); ok {
		return a.CurrentHP
	}
	return 0
}

func nearestOpponent(enc *combat.Encounter, active *combat.Actor) *combat.Actor {
	var quarry *combat.Actor
	best := 0
	for _, a := range enc.Actors() {
		if a.Team != combat.TeamOpponent || !a.IsAlive() {
			continue
		}
		if d := active.Pos.Distance(a.Pos); quarry == nil || d < best {
			quarry, best = a, d
		}
	}
	return quarry
}

// LuaPolicy adapts a sandboxed Lua script into a Policy. The script's
// decide function receives a turn snapshot and returns an action table.
type LuaPolicy struct {
	inner *scripting.Policy
	name  string
}

// NewLuaPolicy loads the script at path into a fresh sandbox.
//
// Precondition: logger must be non-nil.
// Postcondition: Returns a ready policy or a non-nil error. The caller
// must Close() the policy when done.
func NewLuaPolicy(path string, instLimit int, logger *zap.Logger) (*LuaPolicy, error) {
	inner, err := scripting.LoadPolicy(path, instLimit, logger)
	if err != nil {
		return nil, err
	}
	base := filepath.Base(path)
	return &LuaPolicy{
		inner: inner,
		name:  strings.TrimSuffix(base, filepath.Ext(base)),
	}, nil
}

// Name returns the script name without its extension.
func (p *LuaPolicy) Name() string { return p.name }

// Close releases the Lua VM.
func (p *LuaPolicy) Close() { p.inner.Close() }

// Decide snapshots the active turn, runs the script and converts its
// decision back into an Action.
func (p *LuaPolicy) Decide(enc *combat.Encounter) (Action, error) {
	active := enc.ActiveActor()
	if active == nil {
		return Action{}, fmt.Errorf("sim: no active actor")
	}

	d, err := p.inner.Decide(turnView(enc, active))
	if err != nil {
		return Action{}, err
	}
	switch d.Action {
	case "move":
		return Action{Kind: ActionMove, Dest: combat.Point{X: d.X, Y: d.Y}}, nil
	case "attack":
		return Action{Kind: ActionAttack, TargetID: d.Target}, nil
	case "escape":
		return Action{Kind: ActionEscape, Sacrifice: d.Sacrifice}, nil
	default:
		return Action{Kind: ActionEndTurn}, nil
	}
}

// turnView builds the script-facing snapshot of the active turn.
func turnView(enc *combat.Encounter, active *combat.Actor) scripting.TurnView {
	t := enc.Tuning()
	view := scripting.TurnView{
		Round:           enc.Round(),
		GridWidth:       t.GridWidth,
		GridHeight:      t.GridHeight,
		EscapeAvailable: enc.EscapeAvailable(),
		Active:          actorView(active),
	}
	for _, a := range enc.Actors() {
		if !a.IsAlive() || a.ID == active.ID {
			continue
		}
		if a.Team == combat.TeamPlayer {
			view.Allies = append(view.Allies, actorView(a))
		} else {
			view.Enemies = append(view.Enemies, actorView(a))
		}
	}
	return view
}

func actorView(a *combat.Actor) scripting.ActorView {
	return scripting.ActorView{
		ID:     a.ID,
		Name:   a.Name,
		X:      a.Pos.X,
		Y:      a.Pos.Y,
		HP:     a.CurrentHP,
		MaxHP:  a.MaxHP,
		AP:     a.AP,
		Morale: a.Morale,
		Range:  a.Weapon.Range,
		Damage: a.Weapon.Damage,
	}
}
