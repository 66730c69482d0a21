package combat

import (
	"fmt"
	"strings"
)

// Encounter is the state machine for one combat between a player-team
// roster and an opponent-team roster. It owns both rosters as one
// contiguous arena; the turn order, action targets, and sacrifice choices
// reference actors by arena index or stable ID, never by cached pointer.
//
// The encounter is single-threaded and synchronous. Opponent turns
// resolve inside the call that reaches them, so between exported calls
// the active actor is always a player-team actor or the encounter has
// terminated.
type Encounter struct {
	// actors holds every participant, players first in registration
	// order, then opponents. The slice is never resized, so pointers
	// into it stay valid for the encounter's lifetime.
	actors []Actor
	// order is the initiative-sorted list of arena indices.
	order []int
	// cursor is the position in order of the active actor.
	cursor int
	round  int
	// startingPlayers is the player roster size at construction, used by
	// the escape casualty condition.
	startingPlayers int

	state   State
	outcome Outcome

	// escapeAvailable is re-evaluated at every round boundary, strictly
	// before control returns to any caller that could read it.
	escapeAvailable bool

	log    []string
	tuning Tuning
	src    Source
}

// NewEncounter builds and starts an encounter from the two rosters. The
// input slices are copied, never mutated. Initiative is rolled once, the
// round counter starts at 1, and the first actor's turn begins; if the
// initiative winner is an opponent, opponent turns resolve before
// NewEncounter returns.
//
// Precondition: src must be non-nil.
// Postcondition: Returns an encounter in StateInProgress (or already
// StateTerminated if opening opponent turns ended the fight), or an
// error wrapping ErrInvalidEncounter with both rosters untouched.
func NewEncounter(players, opponents []Actor, t Tuning, src Source) (*Encounter, error) {
	if len(players) == 0 {
		return nil, fmt.Errorf("player roster is empty: %w", ErrInvalidEncounter)
	}
	if len(opponents) == 0 {
		return nil, fmt.Errorf("opponent roster is empty: %w", ErrInvalidEncounter)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", err, ErrInvalidEncounter)
	}

	arena := make([]Actor, 0, len(players)+len(opponents))
	for _, a := range players {
		a.Team = TeamPlayer
		arena = append(arena, a)
	}
	for _, a := range opponents {
		a.Team = TeamOpponent
		arena = append(arena, a)
	}
	if err := validateArena(arena, t); err != nil {
		return nil, err
	}
	for i := range arena {
		arena[i].MaxAP = t.MaxAP
		arena[i].AP = t.MaxAP
		arena[i].HasActed = false
		arena[i].HasMoved = false
	}

	e := &Encounter{
		actors:          arena,
		startingPlayers: len(players),
		state:           StateInitializing,
		tuning:          t,
		src:             src,
	}

	RollInitiative(e.actors, src)
	e.order = newTurnOrder(e.actors)
	e.cursor = 0
	e.round = 1
	e.state = StateInProgress

	e.logInitiative()
	e.logf("Round 1 begins.")
	e.activeActor().StartTurn()
	e.runOpponentTurns()
	return e, nil
}

// validateArena rejects rosters the engine cannot run: blank or duplicate
// IDs, actors already out of the fight, and positions off the grid or
// stacked on one tile.
func validateArena(arena []Actor, t Tuning) error {
	ids := make(map[string]bool, len(arena))
	tiles := make(map[Point]bool, len(arena))
	for i := range arena {
		a := &arena[i]
		if a.ID == "" {
			return fmt.Errorf("actor %q has an empty ID: %w", a.Name, ErrInvalidEncounter)
		}
		if ids[a.ID] {
			return fmt.Errorf("duplicate actor ID %q: %w", a.ID, ErrInvalidEncounter)
		}
		ids[a.ID] = true
		if a.MaxHP < 1 || a.CurrentHP < 1 || a.CurrentHP > a.MaxHP {
			return fmt.Errorf("actor %q has HP %d/%d: %w", a.ID, a.CurrentHP, a.MaxHP, ErrInvalidEncounter)
		}
		if a.Pos.X < 0 || a.Pos.X >= t.GridWidth || a.Pos.Y < 0 || a.Pos.Y >= t.GridHeight {
			return fmt.Errorf("actor %q starts out of bounds at %s: %w", a.ID, a.Pos, ErrInvalidEncounter)
		}
		if tiles[a.Pos] {
			return fmt.Errorf("actor %q starts on an occupied tile %s: %w", a.ID, a.Pos, ErrInvalidEncounter)
		}
		tiles[a.Pos] = true
	}
	return nil
}

// Move offsets the active actor's position by (dx, dy) for MoveCost AP.
// The destination must be a valid move: on the grid, unoccupied, and
// within the actor's movement range. When the move drains the last AP the
// turn ends and any opponent turns resolve before Move returns.
//
// Postcondition: On refusal, returns an error wrapping ErrNotAllowed and
// no state changes.
func (e *Encounter) Move(dx, dy int) error {
	if e.state != StateInProgress {
		return e.refuse("move: encounter is not in progress")
	}
	a := e.activeActor()
	if a.Team != TeamPlayer {
		return e.refuse("move: it is not a player turn")
	}
	if a.AP < e.tuning.MoveCost {
		return e.refuse("move: %s has %d AP, needs %d", a.Name, a.AP, e.tuning.MoveCost)
	}
	dest := a.Pos.Add(Point{X: dx, Y: dy})
	if !e.isValidMove(a, dest) {
		return e.refuse("move: %s cannot reach %s", a.Name, dest)
	}

	a.Pos = dest
	a.HasMoved = true
	a.SpendAP(e.tuning.MoveCost)
	e.logf("%s moves to %s.", a.Name, dest)

	if a.AP == 0 {
		e.advanceTurn()
		e.runOpponentTurns()
	}
	return nil
}

// Attack resolves an attack by the active actor against the target for
// AttackCost AP. The target must be a valid target: alive, on the other
// team, and within weapon range. When the attack drains the last AP the
// turn ends and any opponent turns resolve before Attack returns.
//
// Postcondition: On refusal, returns an error wrapping ErrNotAllowed and
// no state changes.
func (e *Encounter) Attack(targetID string) error {
	if e.state != StateInProgress {
		return e.refuse("attack: encounter is not in progress")
	}
	a := e.activeActor()
	if a.Team != TeamPlayer {
		return e.refuse("attack: it is not a player turn")
	}
	if a.AP < e.tuning.AttackCost {
		return e.refuse("attack: %s has %d AP, needs %d", a.Name, a.AP, e.tuning.AttackCost)
	}
	ti, ok := e.actorIdx(targetID)
	if !ok {
		return e.refuse("attack: no actor %q", targetID)
	}
	target := &e.actors[ti]
	if !e.isValidTarget(a, target) {
		return e.refuse("attack: %s is not a valid target for %s", target.Name, a.Name)
	}

	r := ResolveAttack(a, target, e.tuning, e.src)
	a.HasActed = true
	a.SpendAP(e.tuning.AttackCost)
	e.applyAttack(r, a, target)

	if e.state == StateInProgress && a.AP == 0 {
		e.advanceTurn()
		e.runOpponentTurns()
	}
	return nil
}

// EndTurn ends the active player actor's turn early, advancing to the
// next living actor and resolving any opponent turns before returning.
//
// Postcondition: On refusal, returns an error wrapping ErrNotAllowed and
// no state changes.
func (e *Encounter) EndTurn() error {
	if e.state != StateInProgress {
		return e.refuse("end turn: encounter is not in progress")
	}
	if e.activeActor().Team != TeamPlayer {
		return e.refuse("end turn: it is not a player turn")
	}
	e.advanceTurn()
	e.runOpponentTurns()
	return nil
}

// applyAttack applies a resolved attack to the target, writes the log
// narrative, and re-checks victory immediately after the damage lands.
func (e *Encounter) applyAttack(r AttackResult, attacker, target *Actor) {
	if !r.Hit {
		e.logf("%s attacks %s: miss (roll %d vs %d).",
			attacker.Name, target.Name, r.Roll, r.HitChance)
		return
	}
	target.ApplyDamage(r.Damage)
	if r.Crit {
		e.logf("%s crits %s for %d damage (roll %d vs %d).",
			attacker.Name, target.Name, r.Damage, r.Roll, r.HitChance)
	} else {
		e.logf("%s hits %s for %d damage (roll %d vs %d).",
			attacker.Name, target.Name, r.Damage, r.Roll, r.HitChance)
	}
	if !target.IsAlive() {
		e.logf("%s goes down.", target.Name)
	}
	e.checkVictory()
}

// advanceTurn ends the active actor's turn and hands the turn to the next
// living actor in initiative order, wrapping and incrementing the round
// as needed. Victory is re-checked after every advance.
func (e *Encounter) advanceTurn() {
	if e.state != StateInProgress {
		return
	}
	e.activeActor().EndTurn()
	e.stepCursor()
	// Unreachable with every actor dead: the victory check terminates the
	// encounter as soon as either side is wiped.
	for !e.activeActor().IsAlive() {
		e.stepCursor()
	}
	e.activeActor().StartTurn()
	e.checkVictory()
}

// stepCursor advances the cursor one slot. Crossing the end of the turn
// order starts a new round: the counter increments and escape
// availability is re-evaluated before any caller can read it.
func (e *Encounter) stepCursor() {
	e.cursor++
	if e.cursor >= len(e.order) {
		e.cursor = 0
		e.round++
		e.refreshEscape()
		e.logf("Round %d begins.", e.round)
	}
}

// checkVictory terminates the encounter the moment either roster has no
// living actors left. Runs after every damage application and every turn
// advance so a wiped team never takes a ghost turn.
func (e *Encounter) checkVictory() {
	if e.state != StateInProgress {
		return
	}
	switch {
	case !e.hasLiving(TeamOpponent):
		e.terminate(OutcomeVictory, "All hostiles are down. The crew holds the field.")
	case !e.hasLiving(TeamPlayer):
		e.terminate(OutcomeDefeat, "The crew has been wiped out.")
	}
}

func (e *Encounter) terminate(o Outcome, msg string) {
	e.state = StateTerminated
	e.outcome = o
	e.log = append(e.log, msg)
}

// activeActor returns the actor under the cursor. Internal callers only;
// valid while the encounter is in progress.
func (e *Encounter) activeActor() *Actor {
	return &e.actors[e.order[e.cursor]]
}

func (e *Encounter) actorIdx(id string) (int, bool) {
	for i := range e.actors {
		if e.actors[i].ID == id {
			return i, true
		}
	}
	return 0, false
}

func (e *Encounter) hasLiving(team Team) bool {
	for i := range e.actors {
		if e.actors[i].Team == team && e.actors[i].IsAlive() {
			return true
		}
	}
	return false
}

func (e *Encounter) livingCount(team Team) int {
	n := 0
	for i := range e.actors {
		if e.actors[i].Team == team && e.actors[i].IsAlive() {
			n++
		}
	}
	return n
}

func (e *Encounter) inBounds(p Point) bool {
	return p.X >= 0 && p.X < e.tuning.GridWidth && p.Y >= 0 && p.Y < e.tuning.GridHeight
}

// occupied reports whether a living actor stands on p. Downed actors do
// not block tiles.
func (e *Encounter) occupied(p Point) bool {
	for i := range e.actors {
		if e.actors[i].IsAlive() && e.actors[i].Pos == p {
			return true
		}
	}
	return false
}

// isValidMove reports whether a may relocate to dest with one move
// action.
func (e *Encounter) isValidMove(a *Actor, dest Point) bool {
	dist := a.Pos.Distance(dest)
	if dist < 1 || dist > a.MovementRange(e.tuning.BaseMovementRange) {
		return false
	}
	return e.inBounds(dest) && !e.occupied(dest)
}

// isValidTarget reports whether a may attack target with its weapon.
func (e *Encounter) isValidTarget(a, target *Actor) bool {
	if target.Team == a.Team || !target.IsAlive() {
		return false
	}
	return a.Pos.Distance(target.Pos) <= a.Weapon.Range
}

// ValidMoves returns every tile the actor could relocate to with one move
// action, in row-major order. Nil when id is unknown or the actor is
// down.
func (e *Encounter) ValidMoves(id string) []Point {
	i, ok := e.actorIdx(id)
	if !ok {
		return nil
	}
	a := &e.actors[i]
	if !a.IsAlive() {
		return nil
	}
	reach := a.MovementRange(e.tuning.BaseMovementRange)
	var moves []Point
	for y := a.Pos.Y - reach; y <= a.Pos.Y+reach; y++ {
		for x := a.Pos.X - reach; x <= a.Pos.X+reach; x++ {
			p := Point{X: x, Y: y}
			if p == a.Pos || !e.inBounds(p) || e.occupied(p) {
				continue
			}
			moves = append(moves, p)
		}
	}
	return moves
}

// ValidTargets returns the IDs of every living enemy within the actor's
// weapon range, in roster order. Nil when id is unknown or the actor is
// down.
func (e *Encounter) ValidTargets(id string) []string {
	i, ok := e.actorIdx(id)
	if !ok {
		return nil
	}
	a := &e.actors[i]
	if !a.IsAlive() {
		return nil
	}
	var ids []string
	for j := range e.actors {
		t := &e.actors[j]
		if e.isValidTarget(a, t) {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// ActiveActor returns the actor whose turn it is, or nil once the
// encounter has terminated. The pointer is owned by the encounter;
// callers must treat it as read-only.
func (e *Encounter) ActiveActor() *Actor {
	if e.state != StateInProgress {
		return nil
	}
	return e.activeActor()
}

// ActorByID returns the actor with the given ID. The pointer is owned by
// the encounter; callers must treat it as read-only.
func (e *Encounter) ActorByID(id string) (*Actor, bool) {
	i, ok := e.actorIdx(id)
	if !ok {
		return nil, false
	}
	return &e.actors[i], true
}

// Actors returns every participant in roster order, players first. The
// pointers are owned by the encounter; callers must treat them as
// read-only.
func (e *Encounter) Actors() []*Actor {
	out := make([]*Actor, len(e.actors))
	for i := range e.actors {
		out[i] = &e.actors[i]
	}
	return out
}

// TurnOrder returns actor IDs in initiative order, highest first.
func (e *Encounter) TurnOrder() []string {
	ids := make([]string, len(e.order))
	for i, idx := range e.order {
		ids[i] = e.actors[idx].ID
	}
	return ids
}

// Active reports whether the encounter is still in progress.
func (e *Encounter) Active() bool { return e.state == StateInProgress }

// State returns the lifecycle phase.
func (e *Encounter) State() State { return e.state }

// Outcome returns the terminal outcome, or OutcomeNone while the
// encounter is in progress.
func (e *Encounter) Outcome() Outcome { return e.outcome }

// Round returns the current round number, starting at 1.
func (e *Encounter) Round() int { return e.round }

// Tuning returns the knob set the encounter was built with.
func (e *Encounter) Tuning() Tuning { return e.tuning }

// EscapeAvailable reports whether the player team may attempt an escape
// this round. Always false before the escape minimum round.
func (e *Encounter) EscapeAvailable() bool { return e.escapeAvailable }

// Log returns a copy of the append-only combat log.
func (e *Encounter) Log() []string {
	cp := make([]string, len(e.log))
	copy(cp, e.log)
	return cp
}

func (e *Encounter) logf(format string, args ...any) {
	e.log = append(e.log, fmt.Sprintf(format, args...))
}

// refuse records a rejected action in the log and returns the refusal
// wrapping ErrNotAllowed.
func (e *Encounter) refuse(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	e.logf("Action refused: %s.", msg)
	return fmt.Errorf("%s: %w", msg, ErrNotAllowed)
}

func (e *Encounter) logInitiative() {
	parts := make([]string, len(e.order))
	for i, idx := range e.order {
		parts[i] = fmt.Sprintf("%s (%d)", e.actors[idx].Name, e.actors[idx].Initiative)
	}
	e.logf("Initiative order: %s.", strings.Join(parts, ", "))
}
