package combat

// runOpponentTurns resolves opponent turns until a player actor is active
// or the encounter terminates. Each opponent turn ends itself, so the
// external driver is never asked to advance past an opponent.
func (e *Encounter) runOpponentTurns() {
	for e.state == StateInProgress && e.activeActor().Team == TeamOpponent {
		e.runOpponentTurn()
	}
}

// runOpponentTurn plays out the active opponent's whole turn: attack the
// closest player in weapon range while AP allows, otherwise step toward
// the closest living player, then end the turn. No pathfinding and no
// threat weighing; a blocked step ends the turn.
func (e *Encounter) runOpponentTurn() {
	for e.state == StateInProgress {
		a := e.activeActor()
		if a.AP <= 0 {
			break
		}

		if ti, ok := e.closestTargetInRange(a); ok && a.AP >= e.tuning.AttackCost {
			target := &e.actors[ti]
			r := ResolveAttack(a, target, e.tuning, e.src)
			a.HasActed = true
			a.SpendAP(e.tuning.AttackCost)
			e.applyAttack(r, a, target)
			continue
		}

		if a.AP >= e.tuning.MoveCost {
			dest, ok := e.stepToward(a)
			if !ok {
				break
			}
			a.Pos = dest
			a.HasMoved = true
			a.SpendAP(e.tuning.MoveCost)
			e.logf("%s advances to %s.", a.Name, dest)
			continue
		}

		break
	}
	if e.state == StateInProgress {
		e.advanceTurn()
	}
}

// closestTargetInRange returns the arena index of the nearest living
// player inside a's weapon range. Ties break toward roster order.
func (e *Encounter) closestTargetInRange(a *Actor) (int, bool) {
	best, bestDist := -1, 0
	for i := range e.actors {
		t := &e.actors[i]
		if !e.isValidTarget(a, t) {
			continue
		}
		d := a.Pos.Distance(t.Pos)
		if best == -1 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, best != -1
}

// closestPlayer returns the arena index of the nearest living player
// regardless of range. Ties break toward roster order.
func (e *Encounter) closestPlayer(a *Actor) (int, bool) {
	best, bestDist := -1, 0
	for i := range e.actors {
		t := &e.actors[i]
		if t.Team != TeamPlayer || !t.IsAlive() {
			continue
		}
		d := a.Pos.Distance(t.Pos)
		if best == -1 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, best != -1
}

// stepToward computes a's one-tile step toward the nearest living player,
// one step along each axis independently. Returns false when there is no
// player to chase or the destination tile is blocked or off the grid.
func (e *Encounter) stepToward(a *Actor) (Point, bool) {
	ti, ok := e.closestPlayer(a)
	if !ok {
		return Point{}, false
	}
	t := &e.actors[ti]
	dest := Point{
		X: a.Pos.X + sign(t.Pos.X-a.Pos.X),
		Y: a.Pos.Y + sign(t.Pos.Y-a.Pos.Y),
	}
	if dest == a.Pos || !e.inBounds(dest) || e.occupied(dest) {
		return Point{}, false
	}
	return dest, true
}
