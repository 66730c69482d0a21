package content_test

import (
	"strings"
	"testing"

	"github.com/voltfall/tactics/internal/game/combat"
	"github.com/voltfall/tactics/internal/game/content"
)

func validScenarioYAML() string {
	return `scenario:
  id: neon-alley
  name: Neon Alley Ambush
  description: |
    A corpo snatch squad corners the crew behind the noodle bar.
  seed: 1337
  tuning:
    grid_width: 24
    grid_height: 16
  players:
    - template: street-samurai
      name: Vega
      position: {x: 2, y: 3}
      cover: half
    - template: netrunner
      position: {x: 3, y: 3}
  opponents:
    - template: corpo-enforcer
      position: {x: 12, y: 12}
    - template: corpo-enforcer
      position: {x: 13, y: 12}
      cover: full
`
}

func TestLoadScenarioFromBytes_Valid(t *testing.T) {
	sc, err := content.LoadScenarioFromBytes([]byte(validScenarioYAML()))
	if err != nil {
		t.Fatalf("LoadScenarioFromBytes: %v", err)
	}

	if sc.ID != "neon-alley" || sc.Name != "Neon Alley Ambush" {
		t.Errorf("identity = %q/%q", sc.ID, sc.Name)
	}
	if sc.Seed != 1337 {
		t.Errorf("Seed = %d, want 1337", sc.Seed)
	}
	if len(sc.Players) != 2 || len(sc.Opponents) != 2 {
		t.Fatalf("rosters = %d/%d, want 2/2", len(sc.Players), len(sc.Opponents))
	}

	vega := sc.Players[0]
	if vega.TemplateID != "street-samurai" || vega.Name != "Vega" {
		t.Errorf("first player = %+v", vega)
	}
	if (vega.Position != combat.Point{X: 2, Y: 3}) {
		t.Errorf("first player position = %s, want (2,3)", vega.Position)
	}
	if vega.Cover != combat.CoverHalf {
		t.Errorf("first player cover = %v, want half", vega.Cover)
	}
	if sc.Players[1].Name != "" {
		t.Errorf("second player name override = %q, want empty", sc.Players[1].Name)
	}
	if sc.Players[1].Cover != combat.CoverNone {
		t.Errorf("omitted cover = %v, want none", sc.Players[1].Cover)
	}
	if sc.Opponents[1].Cover != combat.CoverFull {
		t.Errorf("second opponent cover = %v, want full", sc.Opponents[1].Cover)
	}
}

func TestScenario_ApplyTuning(t *testing.T) {
	sc, err := content.LoadScenarioFromBytes([]byte(validScenarioYAML()))
	if err != nil {
		t.Fatalf("LoadScenarioFromBytes: %v", err)
	}

	tuning := sc.ApplyTuning(combat.DefaultTuning())
	if tuning.GridWidth != 24 || tuning.GridHeight != 16 {
		t.Errorf("grid = %dx%d, want 24x16", tuning.GridWidth, tuning.GridHeight)
	}
	if tuning.MaxAP != combat.DefaultTuning().MaxAP {
		t.Errorf("MaxAP = %d, want the base value to survive", tuning.MaxAP)
	}
	if err := tuning.Validate(); err != nil {
		t.Errorf("overridden tuning must stay valid: %v", err)
	}
}

func TestLoadScenarioFromBytes_Violations(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(s string) string
	}{
		{"missing id", func(s string) string { return strings.Replace(s, "id: neon-alley", "id: \"\"", 1) }},
		{"unknown cover", func(s string) string { return strings.Replace(s, "cover: half", "cover: bulletproof", 1) }},
		{"negative position", func(s string) string { return strings.Replace(s, "position: {x: 2, y: 3}", "position: {x: -2, y: 3}", 1) }},
		{"empty players", func(s string) string {
			start := strings.Index(s, "  players:")
			end := strings.Index(s, "  opponents:")
			return s[:start] + "  players: []\n" + s[end:]
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := content.LoadScenarioFromBytes([]byte(tc.mutate(validScenarioYAML()))); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestLoadScenariosFromDir_EmptyDirFails(t *testing.T) {
	if _, err := content.LoadScenariosFromDir(t.TempDir()); err == nil {
		t.Fatal("expected error for a directory without scenarios, got nil")
	}
}
