package content

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/voltfall/tactics/internal/game/combat"
)

// yamlScenarioFile is the top-level YAML structure for scenario files.
type yamlScenarioFile struct {
	Scenario yamlScenario `yaml:"scenario"`
}

// yamlScenario is the YAML representation of a scenario.
type yamlScenario struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Seed        int64       `yaml:"seed"`
	Tuning      yamlTuning  `yaml:"tuning"`
	Players     []yamlSpawn `yaml:"players"`
	Opponents   []yamlSpawn `yaml:"opponents"`
}

// yamlSpawn is the YAML representation of one roster slot.
type yamlSpawn struct {
	Template string    `yaml:"template"`
	Name     string    `yaml:"name"`
	Position yamlPoint `yaml:"position"`
	Cover    string    `yaml:"cover"`
}

type yamlPoint struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// yamlTuning holds optional per-scenario engine overrides. A zero field
// keeps the base value, which means a knob cannot be overridden to zero
// from a scenario file; the base tuning carries those cases.
type yamlTuning struct {
	MaxAP                 int     `yaml:"max_ap"`
	AttackCost            int     `yaml:"attack_cost"`
	MoveCost              int     `yaml:"move_cost"`
	BaseMovementRange     int     `yaml:"base_movement_range"`
	GridWidth             int     `yaml:"grid_width"`
	GridHeight            int     `yaml:"grid_height"`
	CoverHalfPenalty      int     `yaml:"cover_half_penalty"`
	CoverFullPenalty      int     `yaml:"cover_full_penalty"`
	CoverHalfDamageMult   float64 `yaml:"cover_half_damage_mult"`
	CoverFullDamageMult   float64 `yaml:"cover_full_damage_mult"`
	EscapeMinRound        int     `yaml:"escape_min_round"`
	EscapeBaseChance      int     `yaml:"escape_base_chance"`
	SacrificeEscapeChance int     `yaml:"sacrifice_escape_chance"`
	EscapeMoraleLoss      int     `yaml:"escape_morale_loss"`
	ArmorReduction        float64 `yaml:"armor_reduction"`
	FailedEscapeDamagePct float64 `yaml:"failed_escape_damage_pct"`
}

// Spawn places one archetype on the grid.
type Spawn struct {
	// TemplateID references an ActorTemplate, resolved at build time.
	TemplateID string
	// Name overrides the template's display name when non-empty.
	Name     string
	Position combat.Point
	// Cover is the starting cover state of the spawn tile.
	Cover combat.CoverKind
}

// Scenario is a fully parsed encounter setup: two rosters with spawn
// positions, an optional deterministic seed, and optional engine tuning
// overrides.
type Scenario struct {
	ID          string
	Name        string
	Description string
	// Seed drives the encounter's random source when non-zero; zero
	// selects the cryptographic source.
	Seed      int64
	Players   []Spawn
	Opponents []Spawn

	overrides yamlTuning
}

// Validate checks the scenario's standalone invariants. Template
// references are resolved against a Registry at build time, not here.
//
// Postcondition: Returns nil iff the scenario has an ID, a name, at least
// one spawn per roster, and every spawn names a template on a
// non-negative position.
func (s *Scenario) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("scenario: id must not be empty")
	}
	if s.Name == "" {
		return fmt.Errorf("scenario %q: name must not be empty", s.ID)
	}
	if len(s.Players) == 0 {
		return fmt.Errorf("scenario %q: players roster must not be empty", s.ID)
	}
	if len(s.Opponents) == 0 {
		return fmt.Errorf("scenario %q: opponents roster must not be empty", s.ID)
	}
	for _, roster := range [][]Spawn{s.Players, s.Opponents} {
		for _, sp := range roster {
			if sp.TemplateID == "" {
				return fmt.Errorf("scenario %q: every spawn must name a template", s.ID)
			}
			if sp.Position.X < 0 || sp.Position.Y < 0 {
				return fmt.Errorf("scenario %q: spawn %q has a negative position %s", s.ID, sp.TemplateID, sp.Position)
			}
		}
	}
	return nil
}

// ApplyTuning returns base with the scenario's non-zero overrides laid on
// top.
func (s *Scenario) ApplyTuning(base combat.Tuning) combat.Tuning {
	o := s.overrides
	if o.MaxAP != 0 {
		base.MaxAP = o.MaxAP
	}
	if o.AttackCost != 0 {
		base.AttackCost = o.AttackCost
	}
	if o.MoveCost != 0 {
		base.MoveCost = o.MoveCost
	}
	if o.BaseMovementRange != 0 {
		base.BaseMovementRange = o.BaseMovementRange
	}
	if o.GridWidth != 0 {
		base.GridWidth = o.GridWidth
	}
	if o.GridHeight != 0 {
		base.GridHeight = o.GridHeight
	}
	if o.CoverHalfPenalty != 0 {
		base.CoverHalfPenalty = o.CoverHalfPenalty
	}
	if o.CoverFullPenalty != 0 {
		base.CoverFullPenalty = o.CoverFullPenalty
	}
	if o.CoverHalfDamageMult != 0 {
		base.CoverHalfDamageMult = o.CoverHalfDamageMult
	}
	if o.CoverFullDamageMult != 0 {
		base.CoverFullDamageMult = o.CoverFullDamageMult
	}
	if o.EscapeMinRound != 0 {
		base.EscapeMinRound = o.EscapeMinRound
	}
	if o.EscapeBaseChance != 0 {
		base.EscapeBaseChance = o.EscapeBaseChance
	}
	if o.SacrificeEscapeChance != 0 {
		base.SacrificeEscapeChance = o.SacrificeEscapeChance
	}
	if o.EscapeMoraleLoss != 0 {
		base.EscapeMoraleLoss = o.EscapeMoraleLoss
	}
	if o.ArmorReduction != 0 {
		base.ArmorReduction = o.ArmorReduction
	}
	if o.FailedEscapeDamagePct != 0 {
		base.FailedEscapeDamagePct = o.FailedEscapeDamagePct
	}
	return base
}

// LoadScenarioFromFile reads and validates a single scenario YAML file.
//
// Precondition: path must point to a valid YAML scenario file.
// Postcondition: Returns a validated Scenario or a non-nil error.
func LoadScenarioFromFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file %s: %w", path, err)
	}
	return LoadScenarioFromBytes(data)
}

// LoadScenarioFromBytes parses and validates a scenario from YAML bytes.
//
// Precondition: data must be valid YAML conforming to the scenario schema.
// Postcondition: Returns a validated Scenario or a non-nil error.
func LoadScenarioFromBytes(data []byte) (*Scenario, error) {
	var file yamlScenarioFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing scenario YAML: %w", err)
	}

	scenario, err := convertYAMLScenario(file.Scenario)
	if err != nil {
		return nil, err
	}
	if err := scenario.Validate(); err != nil {
		return nil, fmt.Errorf("validating scenario: %w", err)
	}

	return scenario, nil
}

// LoadScenariosFromDir loads all YAML files in a directory as scenarios.
//
// Precondition: dir must be a valid directory path.
// Postcondition: Returns all validated scenarios or the first error
// encountered.
func LoadScenariosFromDir(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading scenario directory %s: %w", dir, err)
	}

	var scenarios []*Scenario
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		scenario, err := LoadScenarioFromFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("loading scenario from %s: %w", name, err)
		}
		scenarios = append(scenarios, scenario)
	}

	if len(scenarios) == 0 {
		return nil, fmt.Errorf("no scenario files found in %s", dir)
	}

	return scenarios, nil
}

// convertYAMLScenario converts the parsed YAML structures into domain
// types.
func convertYAMLScenario(ys yamlScenario) (*Scenario, error) {
	scenario := &Scenario{
		ID:          ys.ID,
		Name:        ys.Name,
		Description: strings.TrimSpace(ys.Description),
		Seed:        ys.Seed,
		overrides:   ys.Tuning,
	}

	var err error
	if scenario.Players, err = convertYAMLSpawns(ys.Players); err != nil {
		return nil, fmt.Errorf("scenario %q players: %w", ys.ID, err)
	}
	if scenario.Opponents, err = convertYAMLSpawns(ys.Opponents); err != nil {
		return nil, fmt.Errorf("scenario %q opponents: %w", ys.ID, err)
	}
	return scenario, nil
}

func convertYAMLSpawns(in []yamlSpawn) ([]Spawn, error) {
	var out []Spawn
	for _, y := range in {
		cover := combat.CoverNone
		if y.Cover != "" {
			var err error
			if cover, err = combat.ParseCoverKind(y.Cover); err != nil {
				return nil, fmt.Errorf("spawn %q: %w", y.Template, err)
			}
		}
		out = append(out, Spawn{
			TemplateID: y.Template,
			Name:       y.Name,
			Position:   combat.Point{X: y.Position.X, Y: y.Position.Y},
			Cover:      cover,
		})
	}
	return out, nil
}
