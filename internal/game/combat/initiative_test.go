package combat_test

import (
	"testing"

	"github.com/voltfall/tactics/internal/game/combat"
	"github.com/voltfall/tactics/internal/game/rng"
)

// TestRollInitiative_Formula verifies initiative = reflexes x2 + d10.
func TestRollInitiative_Formula(t *testing.T) {
	actors := []combat.Actor{
		{ID: "a", Reflexes: 5},
		{ID: "b", Reflexes: 2},
	}
	combat.RollInitiative(actors, &fixedSource{val: 3}) // every d10 rolls 4

	if actors[0].Initiative != 14 {
		t.Errorf("actor a: Initiative = %d, want 14", actors[0].Initiative)
	}
	if actors[1].Initiative != 8 {
		t.Errorf("actor b: Initiative = %d, want 8", actors[1].Initiative)
	}
}

// TestTurnOrder_TiesKeepRosterOrder verifies identical initiative rolls
// leave actors in registration order, players ahead of opponents.
func TestTurnOrder_TiesKeepRosterOrder(t *testing.T) {
	players := []combat.Actor{
		testActor("p1", 0, 0),
		testActor("p2", 1, 0),
	}
	opponents := []combat.Actor{
		testActor("o1", 10, 10),
		testActor("o2", 11, 10),
	}
	enc, err := combat.NewEncounter(players, opponents, combat.DefaultTuning(), &fixedSource{val: 0})
	if err != nil {
		t.Fatalf("NewEncounter: %v", err)
	}

	got := enc.TurnOrder()
	want := []string{"p1", "p2", "o1", "o2"}
	if len(got) != len(want) {
		t.Fatalf("TurnOrder length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("TurnOrder[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

// TestTurnOrder_SortsByInitiativeDescending verifies higher rolls act
// first.
func TestTurnOrder_SortsByInitiativeDescending(t *testing.T) {
	slow := testActor("p1", 0, 0)
	slow.Reflexes = 1
	fast := testActor("o1", 10, 10)
	fast.Reflexes = 8

	enc, err := combat.NewEncounter(
		[]combat.Actor{slow}, []combat.Actor{fast},
		combat.DefaultTuning(), &fixedSource{val: 0},
	)
	if err != nil {
		t.Fatalf("NewEncounter: %v", err)
	}

	got := enc.TurnOrder()
	if got[0] != "o1" || got[1] != "p1" {
		t.Errorf("TurnOrder = %v, want [o1 p1]", got)
	}
}

// TestTurnOrder_DeterministicWithSeed verifies a fixed seed reproduces
// the identical turn order across independent encounters.
func TestTurnOrder_DeterministicWithSeed(t *testing.T) {
	build := func() *combat.Encounter {
		players := []combat.Actor{
			testActor("p1", 0, 0), testActor("p2", 1, 0), testActor("p3", 2, 0),
		}
		opponents := []combat.Actor{
			testActor("o1", 10, 10), testActor("o2", 11, 10), testActor("o3", 12, 10),
		}
		enc, err := combat.NewEncounter(players, opponents, combat.DefaultTuning(), rng.NewSeededSource(1234))
		if err != nil {
			t.Fatalf("NewEncounter: %v", err)
		}
		return enc
	}

	first := build().TurnOrder()
	second := build().TurnOrder()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("turn order diverged at %d: %v vs %v", i, first, second)
		}
	}
}
