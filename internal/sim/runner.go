package sim

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/voltfall/tactics/internal/game/combat"
	"github.com/voltfall/tactics/internal/game/content"
	"github.com/voltfall/tactics/internal/game/rng"
	"github.com/voltfall/tactics/internal/observability"
)

// Report summarizes one finished encounter run.
type Report struct {
	ScenarioID string
	// Seed is the effective seed: the scenario's own, or the one drawn
	// for a scenario that left it at zero. Replaying with this seed
	// reproduces the run exactly.
	Seed       int64
	Policy     string
	Outcome    combat.Outcome
	Rounds     int
	Survivors  []string
	Casualties []string
	Log        []string
	Duration   time.Duration
}

// Runner drives encounters to termination.
type Runner struct {
	logger    *zap.Logger
	maxRounds int
}

// NewRunner creates a Runner.
//
// Precondition: logger must be non-nil; maxRounds must be >= 1.
func NewRunner(logger *zap.Logger, maxRounds int) *Runner {
	return &Runner{logger: logger, maxRounds: maxRounds}
}

// RunScenario builds the rosters, seeds the dice and plays the scenario
// to its end.
//
// Postcondition: Returns a terminal Report or a non-nil error.
func (r *Runner) RunScenario(reg *content.Registry, sc *content.Scenario, base combat.Tuning, pol Policy) (*Report, error) {
	players, opponents, err := content.BuildRosters(reg, sc)
	if err != nil {
		return nil, err
	}

	seed := sc.Seed
	if seed == 0 {
		seed = randomSeed()
	}

	start := time.Now()
	enc, err := combat.NewEncounter(players, opponents, sc.ApplyTuning(base), rng.NewSeededSource(seed))
	if err != nil {
		return nil, fmt.Errorf("sim: scenario %q: %w", sc.ID, err)
	}

	// Every log line of the run carries the scenario and effective seed.
	run := *r
	run.logger = observability.WithRun(r.logger, sc.ID, seed)

	if err := run.Drive(enc, pol); err != nil {
		return nil, fmt.Errorf("sim: scenario %q: %w", sc.ID, err)
	}

	rep := run.report(sc.ID, seed, pol, enc, time.Since(start))
	run.logger.Info("encounter finished",
		zap.String("policy", rep.Policy),
		zap.String("outcome", rep.Outcome.String()),
		zap.Int("rounds", rep.Rounds),
		zap.Int("survivors", len(rep.Survivors)),
		zap.Duration("duration", rep.Duration),
	)
	return rep, nil
}

// Drive plays an already-built encounter until it terminates. Policy
// failures and refused actions pass the turn instead of aborting, so a
// broken script cannot wedge a run; only an unresolvable engine state or
// the round cap produce an error.
func (r *Runner) Drive(enc *combat.Encounter, pol Policy) error {
	// An honest turn spends at most MaxAP action points plus an escape
	// plea or two; anything past that is a stalling policy.
	actionCap := enc.Tuning().MaxAP + 2

	var (
		lastRound  int
		lastActive string
		actions    int
	)

	for enc.Active() {
		if enc.Round() > r.maxRounds {
			return fmt.Errorf("still unresolved after %d rounds", r.maxRounds)
		}

		active := enc.ActiveActor()
		if active == nil {
			return fmt.Errorf("in-progress encounter has no active actor")
		}
		if enc.Round() != lastRound || active.ID != lastActive {
			lastRound, lastActive = enc.Round(), active.ID
			actions = 0
		}
		actions++
		if actions > actionCap {
			r.logger.Warn("policy is stalling, passing turn",
				zap.String("policy", pol.Name()),
				zap.String("actor", active.Name),
				zap.Int("round", enc.Round()),
			)
			if err := enc.EndTurn(); err != nil {
				return fmt.Errorf("cannot pass stalled turn: %w", err)
			}
			continue
		}

		act, err := pol.Decide(enc)
		if err != nil {
			r.logger.Warn("policy decision failed, passing turn",
				zap.String("policy", pol.Name()),
				zap.Error(err),
			)
			act = Action{Kind: ActionEndTurn}
		}

		if err := r.apply(enc, act); err != nil {
			r.logger.Warn("action refused, passing turn",
				zap.String("policy", pol.Name()),
				zap.Stringer("action", act.Kind),
				zap.Error(err),
			)
			if err := enc.EndTurn(); err != nil {
				return fmt.Errorf("cannot pass refused turn: %w", err)
			}
		}
	}
	return nil
}

func (r *Runner) apply(enc *combat.Encounter, act Action) error {
	switch act.Kind {
	case ActionMove:
		active := enc.ActiveActor()
		if active == nil {
			return fmt.Errorf("no active actor to move")
		}
		// Policies emit absolute destinations; the engine moves by offset.
		return enc.Move(act.Dest.X-active.Pos.X, act.Dest.Y-active.Pos.Y)
	case ActionAttack:
		return enc.Attack(act.TargetID)
	case ActionEscape:
		return enc.AttemptEscape(act.Sacrifice)
	case ActionEndTurn:
		return enc.EndTurn()
	default:
		return fmt.Errorf("unknown action kind %d", act.Kind)
	}
}

func (r *Runner) report(scenarioID string, seed int64, pol Policy, enc *combat.Encounter, elapsed time.Duration) *Report {
	rep := &Report{
		ScenarioID: scenarioID,
		Seed:       seed,
		Policy:     pol.Name(),
		Outcome:    enc.Outcome(),
		Rounds:     enc.Round(),
		Log:        enc.Log(),
		Duration:   elapsed,
	}
	for _, a := range enc.Actors() {
		if a.Team != combat.TeamPlayer {
			continue
		}
		if a.IsAlive() {
			rep.Survivors = append(rep.Survivors, a.Name)
		} else {
			rep.Casualties = append(rep.Casualties, a.Name)
		}
	}
	return rep
}

// randomSeed draws a nonzero seed from the crypto source, built from two
// 30-bit halves so the draws stay within int range on every platform.
func randomSeed() int64 {
	src := rng.NewCryptoSource()
	seed := int64(src.Intn(1<<30))<<30 | int64(src.Intn(1<<30))
	if seed == 0 {
		seed = 1
	}
	return seed
}
