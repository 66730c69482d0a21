package doctrine_test

import (
	"testing"

	"github.com/voltfall/tactics/internal/game/combat"
	"github.com/voltfall/tactics/internal/game/doctrine"
	"github.com/voltfall/tactics/internal/game/rng"
)

func view(id string, team combat.Team, x, y, hp, maxHP, weaponRange int) *doctrine.CombatantView {
	return &doctrine.CombatantView{
		ID:          id,
		Name:        id,
		Team:        team,
		Pos:         combat.Point{X: x, Y: y},
		HP:          hp,
		MaxHP:       maxHP,
		WeaponRange: weaponRange,
		Dead:        hp <= 0,
	}
}

func snapshotOf(self *doctrine.CombatantView, others ...*doctrine.CombatantView) *doctrine.Snapshot {
	return &doctrine.Snapshot{
		Self:       self,
		Combatants: append([]*doctrine.CombatantView{self}, others...),
		Round:      1,
	}
}

func loadPlanner(t *testing.T) *doctrine.Planner {
	t.Helper()
	d, err := doctrine.LoadDoctrineFromBytes([]byte(validDoctrineYAML()))
	if err != nil {
		t.Fatalf("LoadDoctrineFromBytes: %v", err)
	}
	return doctrine.NewPlanner(d, doctrine.NewBuiltinEvaluator())
}

func TestPlan_AttacksWeakestWhenInRange(t *testing.T) {
	p := loadPlanner(t)
	snap := snapshotOf(
		view("self", combat.TeamPlayer, 5, 5, 40, 40, 6),
		view("near", combat.TeamOpponent, 6, 5, 40, 40, 1),
		view("weak", combat.TeamOpponent, 8, 5, 10, 40, 1),
	)

	plan, err := p.Plan(snap)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(plan) != 1 {
		t.Fatalf("plan length = %d, want 1: %+v", len(plan), plan)
	}
	if plan[0].Action != doctrine.ActionAttack || plan[0].Target != "weak" {
		t.Fatalf("plan[0] = %+v, want attack on weak", plan[0])
	}
}

func TestPlan_ClosesDistanceWhenOutOfRange(t *testing.T) {
	p := loadPlanner(t)
	snap := snapshotOf(
		view("self", combat.TeamPlayer, 0, 0, 40, 40, 2),
		view("far", combat.TeamOpponent, 10, 10, 40, 40, 1),
	)

	plan, err := p.Plan(snap)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(plan) != 2 {
		t.Fatalf("plan length = %d, want 2: %+v", len(plan), plan)
	}
	if plan[0].Action != doctrine.ActionAdvance || plan[0].Target != "far" {
		t.Fatalf("plan[0] = %+v, want advance on far", plan[0])
	}
	if plan[1].Action != doctrine.ActionAttack || plan[1].Target != "far" {
		t.Fatalf("plan[1] = %+v, want attack on far", plan[1])
	}
}

func TestPlan_PrefersEscapeWhenOpen(t *testing.T) {
	p := loadPlanner(t)
	snap := snapshotOf(
		view("self", combat.TeamPlayer, 5, 5, 40, 40, 6),
		view("o1", combat.TeamOpponent, 6, 5, 40, 40, 1),
	)
	snap.EscapeOpen = true

	plan, err := p.Plan(snap)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(plan) != 1 || plan[0].Action != doctrine.ActionEscape {
		t.Fatalf("plan = %+v, want a lone escape", plan)
	}
	if plan[0].Target != "" {
		t.Fatalf("escape target = %q, want empty", plan[0].Target)
	}
}

func TestPlan_UnknownPredicateIsFalse(t *testing.T) {
	yaml := `doctrine:
  id: stubborn
  root: take_turn
  tasks:
    - id: take_turn
  methods:
    - task: take_turn
      id: only
      precondition: gibberish
      subtasks: [shoot]
  operators:
    - id: shoot
      action: attack
      target: nearest_enemy
`
	d, err := doctrine.LoadDoctrineFromBytes([]byte(yaml))
	if err != nil {
		t.Fatalf("LoadDoctrineFromBytes: %v", err)
	}
	p := doctrine.NewPlanner(d, doctrine.NewBuiltinEvaluator())
	snap := snapshotOf(
		view("self", combat.TeamPlayer, 0, 0, 40, 40, 6),
		view("o1", combat.TeamOpponent, 1, 1, 40, 40, 1),
	)

	plan, err := p.Plan(snap)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(plan) != 0 {
		t.Fatalf("plan = %+v, want empty when no method applies", plan)
	}
}

func TestPlan_CyclicDecompositionTerminates(t *testing.T) {
	yaml := `doctrine:
  id: ouroboros
  root: loop
  tasks:
    - id: loop
  methods:
    - task: loop
      id: again
      subtasks: [loop]
  operators:
    - id: noop
      action: hold
`
	d, err := doctrine.LoadDoctrineFromBytes([]byte(yaml))
	if err != nil {
		t.Fatalf("LoadDoctrineFromBytes: %v", err)
	}
	p := doctrine.NewPlanner(d, doctrine.NewBuiltinEvaluator())
	snap := snapshotOf(view("self", combat.TeamPlayer, 0, 0, 40, 40, 6))

	plan, err := p.Plan(snap)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(plan) != 0 {
		t.Fatalf("plan = %+v, want empty from a pure cycle", plan)
	}
}

func TestPlan_NilSnapshotFails(t *testing.T) {
	p := loadPlanner(t)
	if _, err := p.Plan(nil); err == nil {
		t.Fatal("expected error for nil snapshot")
	}
}

func TestBuiltinEvaluator_Predicates(t *testing.T) {
	eval := doctrine.NewBuiltinEvaluator()
	hurt := view("self", combat.TeamPlayer, 5, 5, 10, 40, 2)
	hurt.Cover = combat.CoverHalf
	snap := snapshotOf(
		hurt,
		view("ally", combat.TeamPlayer, 5, 6, 0, 40, 2),
		view("o1", combat.TeamOpponent, 6, 5, 40, 40, 1),
		view("o2", combat.TeamOpponent, 12, 12, 40, 40, 1),
	)
	snap.EscapeOpen = true

	cases := []struct {
		name string
		want bool
	}{
		{"enemy_in_range", true},
		{"hurt", true},
		{"critical", false},
		{"outnumbered", true},
		{"ally_down", true},
		{"escape_open", true},
		{"in_cover", true},
	}
	for _, tc := range cases {
		got, err := eval.Evaluate(tc.name, snap)
		if err != nil {
			t.Fatalf("Evaluate(%s): %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("Evaluate(%s) = %v, want %v", tc.name, got, tc.want)
		}
	}

	if _, err := eval.Evaluate("gibberish", snap); err == nil {
		t.Fatal("expected error for unknown predicate")
	}
}

func TestTakeSnapshot_FreezesActiveTurn(t *testing.T) {
	players := []combat.Actor{squadActor("p1", 5, 5), squadActor("p2", 5, 6)}
	opponents := []combat.Actor{squadActor("o1", 9, 9)}
	enc, err := combat.NewEncounter(players, opponents, combat.DefaultTuning(), rng.NewSeededSource(42))
	if err != nil {
		t.Fatalf("NewEncounter: %v", err)
	}

	snap := doctrine.TakeSnapshot(enc)
	if snap == nil {
		t.Fatal("TakeSnapshot returned nil for an active encounter")
	}
	if snap.Self == nil || snap.Self.ID != enc.ActiveActor().ID {
		t.Fatalf("Self = %+v, want the active actor %q", snap.Self, enc.ActiveActor().ID)
	}
	if len(snap.Combatants) != 3 {
		t.Fatalf("combatants = %d, want 3", len(snap.Combatants))
	}
	if snap.Round != 1 {
		t.Fatalf("Round = %d, want 1", snap.Round)
	}
	if snap.EscapeOpen {
		t.Fatal("escape open on round 1")
	}
	for _, c := range snap.Combatants {
		a, ok := enc.ActorByID(c.ID)
		if !ok {
			t.Fatalf("snapshot names unknown actor %q", c.ID)
		}
		if c.Pos != a.Pos || c.HP != a.CurrentHP || c.Team != a.Team {
			t.Fatalf("view %q diverges from actor: %+v vs %+v", c.ID, c, a)
		}
	}
}

func squadActor(id string, x, y int) combat.Actor {
	return combat.Actor{
		ID:           id,
		Name:         id,
		Pos:          combat.Point{X: x, Y: y},
		Body:         5,
		Reflexes:     5,
		Intelligence: 5,
		Tech:         5,
		Cool:         5,
		MaxHP:        40,
		CurrentHP:    40,
		Morale:       50,
		Weapon: combat.Weapon{
			Name:     "sidearm",
			Class:    combat.ClassRanged,
			Damage:   10,
			Accuracy: 75,
			Range:    6,
			CritMult: 1.5,
		},
	}
}
