package content

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Attributes holds the five core attribute scores of an actor archetype.
type Attributes struct {
	Body         int `yaml:"body"`
	Reflexes     int `yaml:"reflexes"`
	Intelligence int `yaml:"intelligence"`
	Tech         int `yaml:"tech"`
	Cool         int `yaml:"cool"`
}

// ActorTemplate defines a reusable combatant archetype loaded from YAML.
// Templates carry no position or team; those come from the scenario spawn
// that references them.
type ActorTemplate struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Attributes  Attributes `yaml:"attributes"`
	MaxHP       int        `yaml:"max_hp"`
	// Armor is a flat rating in [0, 100].
	Armor int `yaml:"armor"`
	// Morale starts in [0, 100]; 50 is neutral.
	Morale int `yaml:"morale"`
	// WeaponID references a WeaponDef by ID, resolved at build time.
	WeaponID string `yaml:"weapon"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff the ID, name, and weapon reference are
// non-empty and every numeric field is inside its band; returns an error
// on the first violation otherwise.
func (t *ActorTemplate) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("actor template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("actor template %q: name must not be empty", t.ID)
	}
	for _, attr := range []struct {
		name  string
		value int
	}{
		{"body", t.Attributes.Body},
		{"reflexes", t.Attributes.Reflexes},
		{"intelligence", t.Attributes.Intelligence},
		{"tech", t.Attributes.Tech},
		{"cool", t.Attributes.Cool},
	} {
		if attr.value < 1 || attr.value > 10 {
			return fmt.Errorf("actor template %q: %s must be in [1, 10], got %d", t.ID, attr.name, attr.value)
		}
	}
	if t.MaxHP < 1 {
		return fmt.Errorf("actor template %q: max_hp must be >= 1", t.ID)
	}
	if t.Armor < 0 || t.Armor > 100 {
		return fmt.Errorf("actor template %q: armor must be in [0, 100], got %d", t.ID, t.Armor)
	}
	if t.Morale < 0 || t.Morale > 100 {
		return fmt.Errorf("actor template %q: morale must be in [0, 100], got %d", t.ID, t.Morale)
	}
	if t.WeaponID == "" {
		return fmt.Errorf("actor template %q: weapon must not be empty", t.ID)
	}
	return nil
}

// LoadTemplateFromBytes parses a single actor template from raw YAML bytes.
//
// Precondition: data must be valid YAML for a single ActorTemplate.
// Postcondition: Returns a validated *ActorTemplate, or an error.
func LoadTemplateFromBytes(data []byte) (*ActorTemplate, error) {
	var tmpl ActorTemplate
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir and returns the parsed
// templates.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or
// validate failure; on error, the partial result is discarded.
func LoadTemplates(dir string) ([]*ActorTemplate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading template dir %q: %w", dir, err)
	}

	var templates []*ActorTemplate
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}

		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}
