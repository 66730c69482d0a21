package sim

import (
	"fmt"

	"github.com/voltfall/tactics/internal/game/combat"
	"github.com/voltfall/tactics/internal/game/doctrine"
)

// DoctrinePolicy adapts a declarative HTN doctrine into a Policy. The
// planner re-runs on every decision so plans never go stale; the first
// feasible planned action wins, and a turn with no feasible action is
// yielded.
type DoctrinePolicy struct {
	planner *doctrine.Planner
}

// NewDoctrinePolicy builds a policy around d using the stock predicate
// vocabulary.
//
// Postcondition: returns an error when d is nil or fails validation.
func NewDoctrinePolicy(d *doctrine.Doctrine) (*DoctrinePolicy, error) {
	if d == nil {
		return nil, fmt.Errorf("sim: doctrine must not be nil")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &DoctrinePolicy{
		planner: doctrine.NewPlanner(d, doctrine.NewBuiltinEvaluator()),
	}, nil
}

// Name identifies the policy in logs and reports.
func (p *DoctrinePolicy) Name() string {
	return "doctrine:" + p.planner.DoctrineID()
}

// Decide plans the active turn and converts the first feasible planned
// action into an encounter action.
func (p *DoctrinePolicy) Decide(enc *combat.Encounter) (Action, error) {
	active := enc.ActiveActor()
	if active == nil {
		return Action{}, fmt.Errorf("sim: no active actor")
	}

	plan, err := p.planner.Plan(doctrine.TakeSnapshot(enc))
	if err != nil {
		return Action{}, err
	}
	for _, pa := range plan {
		if act, ok := p.toAction(enc, active, pa); ok {
			return act, nil
		}
	}
	return Action{Kind: ActionEndTurn}, nil
}

// toAction converts one planned action into an encounter action, reporting
// false when the action cannot progress the turn right now.
func (p *DoctrinePolicy) toAction(enc *combat.Encounter, active *combat.Actor, pa doctrine.PlannedAction) (Action, bool) {
	switch pa.Action {
	case doctrine.ActionAttack:
		for _, id := range enc.ValidTargets(active.ID) {
			if id == pa.Target {
				return Action{Kind: ActionAttack, TargetID: id}, true
			}
		}
		return Action{}, false

	case doctrine.ActionAdvance:
		quarry, ok := enc.ActorByID(pa.Target)
		if !ok || !quarry.IsAlive() {
			return Action{}, false
		}
		dest, ok := closerTile(enc, active, quarry.Pos)
		if !ok {
			return Action{}, false
		}
		return Action{Kind: ActionMove, Dest: dest}, true

	case doctrine.ActionRetreat:
		dest, ok := fartherTile(enc, active)
		if !ok {
			return Action{}, false
		}
		return Action{Kind: ActionMove, Dest: dest}, true

	case doctrine.ActionEscape:
		if !enc.EscapeAvailable() {
			return Action{}, false
		}
		return Action{Kind: ActionEscape, Sacrifice: pa.Target}, true

	case doctrine.ActionHold:
		return Action{Kind: ActionEndTurn}, true

	default:
		return Action{}, false
	}
}

// closerTile returns the reachable tile nearest to goal, or false when no
// tile improves on the actor's current distance.
func closerTile(enc *combat.Encounter, active *combat.Actor, goal combat.Point) (combat.Point, bool) {
	moves := enc.ValidMoves(active.ID)
	if len(moves) == 0 {
		return combat.Point{}, false
	}
	best := moves[0]
	bestDist := best.Distance(goal)
	for _, m := range moves[1:] {
		if d := m.Distance(goal); d < bestDist {
			best, bestDist = m, d
		}
	}
	if bestDist >= active.Pos.Distance(goal) {
		return combat.Point{}, false
	}
	return best, true
}

// fartherTile returns the reachable tile that maximizes the distance to the
// closest living enemy, or false when no tile improves on the current
// separation.
func fartherTile(enc *combat.Encounter, active *combat.Actor) (combat.Point, bool) {
	moves := enc.ValidMoves(active.ID)
	if len(moves) == 0 {
		return combat.Point{}, false
	}
	current := enemySeparation(enc, active, active.Pos)
	best := moves[0]
	bestSep := enemySeparation(enc, active, best)
	for _, m := range moves[1:] {
		if sep := enemySeparation(enc, active, m); sep > bestSep {
			best, bestSep = m, sep
		}
	}
	if bestSep <= current {
		return combat.Point{}, false
	}
	return best, true
}

// enemySeparation is the distance from p to the closest living enemy of
// the actor's team; a large constant when no enemies remain.
func enemySeparation(enc *combat.Encounter, active *combat.Actor, p combat.Point) int {
	sep := 1 << 30
	for _, a := range enc.Actors() {
		if a.Team == active.Team || !a.IsAlive() {
			continue
		}
		if d := p.Distance(a.Pos); d < sep {
			sep = d
		}
	}
	return sep
}
