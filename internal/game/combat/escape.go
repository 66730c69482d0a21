package combat

import "math"

// EscapeChance returns the percent chance of a no-sacrifice escape led by
// leader: base chance plus reflexes x2, clamped to the same [5, 95] band
// as hit chances.
func EscapeChance(leader *Actor, t Tuning) int {
	return clampInt(t.EscapeBaseChance+leader.Reflexes*2, HitChanceMin, HitChanceMax)
}

// refreshEscape re-evaluates escape availability. Called at every round
// boundary, strictly before control returns to anything that could read
// the flag, so a caller never observes a stale value for the current
// round. Before the minimum round the flag is always false.
func (e *Encounter) refreshEscape() {
	if e.round < e.tuning.EscapeMinRound {
		e.escapeAvailable = false
		return
	}
	was := e.escapeAvailable
	e.escapeAvailable = e.escapeConditionsMet()
	if e.escapeAvailable && !was {
		e.logf("The crew spots a way out. Escape is on the table.")
	}
}

// escapeConditionsMet reports whether the squad currently qualifies for a
// negotiated escape: average HP of living players under half, any
// casualty taken, or living opponents at twice the living players.
func (e *Encounter) escapeConditionsMet() bool {
	livingPlayers := e.livingCount(TeamPlayer)
	if livingPlayers == 0 {
		return false
	}
	total := 0.0
	for i := range e.actors {
		a := &e.actors[i]
		if a.Team == TeamPlayer && a.IsAlive() {
			total += a.HPPercent()
		}
	}
	lowHP := total/float64(livingPlayers) < 50
	casualties := livingPlayers < e.startingPlayers
	outnumbered := e.livingCount(TeamOpponent) >= livingPlayers*2
	return lowHP || casualties || outnumbered
}

// leader returns the first living player-team actor in roster order: the
// one who negotiates and absorbs a failed attempt.
func (e *Encounter) leader() *Actor {
	for i := range e.actors {
		a := &e.actors[i]
		if a.Team == TeamPlayer && a.IsAlive() {
			return a
		}
	}
	return nil
}

// AttemptEscape tries to negotiate the squad out of the fight. Costs no
// AP. With sacrificeID set, that living squadmate is left behind (HP
// forced to 0 before the roll) and the success chance is the flat
// sacrifice chance; without, the leader rolls EscapeChance. Success drops
// every survivor's morale and terminates the encounter as fled. A failed
// no-sacrifice attempt costs the leader a fraction of max HP; the fight
// goes on and the attempt may be retried while conditions keep holding.
//
// Postcondition: On refusal, returns an error wrapping ErrNotAllowed and
// no state changes. Sacrificing the last living squadmate is refused.
func (e *Encounter) AttemptEscape(sacrificeID string) error {
	if e.state != StateInProgress {
		return e.refuse("escape: encounter is not in progress")
	}
	if e.activeActor().Team != TeamPlayer {
		return e.refuse("escape: it is not a player turn")
	}
	if !e.escapeAvailable {
		return e.refuse("escape: conditions are not met")
	}

	var chance int
	if sacrificeID != "" {
		i, ok := e.actorIdx(sacrificeID)
		if !ok {
			return e.refuse("escape: no actor %q to sacrifice", sacrificeID)
		}
		s := &e.actors[i]
		if s.Team != TeamPlayer {
			return e.refuse("escape: %s is not on the squad", s.Name)
		}
		if !s.IsAlive() {
			return e.refuse("escape: %s is already down", s.Name)
		}
		if e.livingCount(TeamPlayer) == 1 {
			return e.refuse("escape: cannot sacrifice the last squadmate standing")
		}
		s.ApplyDamage(s.CurrentHP)
		e.logf("%s stays behind to buy the crew time.", s.Name)
		e.checkVictory()
		chance = e.tuning.SacrificeEscapeChance
	} else {
		chance = EscapeChance(e.leader(), e.tuning)
	}

	roll := d100(e.src)
	if roll <= chance {
		for i := range e.actors {
			a := &e.actors[i]
			if a.Team == TeamPlayer && a.IsAlive() {
				a.Morale -= e.tuning.EscapeMoraleLoss
				if a.Morale < 0 {
					a.Morale = 0
				}
			}
		}
		e.logf("The talk works (roll %d vs %d). The crew scatters into the dark.", roll, chance)
		e.terminate(OutcomeFled, "The crew got away.")
		return nil
	}

	e.logf("The talk falls flat (roll %d vs %d).", roll, chance)
	if sacrificeID == "" {
		leader := e.leader()
		dmg := int(math.Round(e.tuning.FailedEscapeDamagePct * float64(leader.MaxHP)))
		leader.ApplyDamage(dmg)
		e.logf("%s takes %d damage covering the botched retreat.", leader.Name, dmg)
		if !leader.IsAlive() {
			e.logf("%s goes down.", leader.Name)
		}
		e.checkVictory()
	}
	// A failed attempt can kill the active actor (the leader, or a
	// sacrificed squadmate who was mid-turn); the turn cannot continue.
	if e.state == StateInProgress && !e.activeActor().IsAlive() {
		e.advanceTurn()
		e.runOpponentTurns()
	}
	return nil
}
