package content

import (
	"fmt"
	"path/filepath"
	"sort"
)

// Registry holds all loaded weapon, template, and scenario definitions
// indexed by ID.
type Registry struct {
	weapons   map[string]*WeaponDef
	templates map[string]*ActorTemplate
	scenarios map[string]*Scenario
}

// NewRegistry returns an empty Registry.
//
// Postcondition: all internal maps are initialised.
func NewRegistry() *Registry {
	return &Registry{
		weapons:   make(map[string]*WeaponDef),
		templates: make(map[string]*ActorTemplate),
		scenarios: make(map[string]*Scenario),
	}
}

// RegisterWeapon adds w to the registry.
//
// Precondition:  w must not be nil.
// Postcondition: Weapon(w.ID) returns w; returns error if w.ID already
// registered.
func (r *Registry) RegisterWeapon(w *WeaponDef) error {
	if _, exists := r.weapons[w.ID]; exists {
		return fmt.Errorf("content: Registry.RegisterWeapon: weapon ID %q already registered", w.ID)
	}
	r.weapons[w.ID] = w
	return nil
}

// RegisterTemplate adds t to the registry.
//
// Precondition:  t must not be nil.
// Postcondition: Template(t.ID) returns t; returns error if t.ID already
// registered.
func (r *Registry) RegisterTemplate(t *ActorTemplate) error {
	if _, exists := r.templates[t.ID]; exists {
		return fmt.Errorf("content: Registry.RegisterTemplate: template ID %q already registered", t.ID)
	}
	r.templates[t.ID] = t
	return nil
}

// RegisterScenario adds s to the registry.
//
// Precondition:  s must not be nil.
// Postcondition: Scenario(s.ID) returns s; returns error if s.ID already
// registered.
func (r *Registry) RegisterScenario(s *Scenario) error {
	if _, exists := r.scenarios[s.ID]; exists {
		return fmt.Errorf("content: Registry.RegisterScenario: scenario ID %q already registered", s.ID)
	}
	r.scenarios[s.ID] = s
	return nil
}

// Weapon returns the WeaponDef for the given id and whether it was found.
func (r *Registry) Weapon(id string) (*WeaponDef, bool) {
	w, ok := r.weapons[id]
	return w, ok
}

// Template returns the ActorTemplate for the given id and whether it was
// found.
func (r *Registry) Template(id string) (*ActorTemplate, bool) {
	t, ok := r.templates[id]
	return t, ok
}

// Scenario returns the Scenario for the given id and whether it was
// found.
func (r *Registry) Scenario(id string) (*Scenario, bool) {
	s, ok := r.scenarios[id]
	return s, ok
}

// Scenarios returns all registered scenarios sorted by ID.
func (r *Registry) Scenarios() []*Scenario {
	out := make([]*Scenario, 0, len(r.scenarios))
	for _, s := range r.scenarios {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadDir builds a registry from a content root holding weapons/,
// actors/, and scenarios/ subdirectories, then cross-checks every
// reference between them.
//
// Postcondition: On success every template's weapon and every scenario
// spawn's template resolve within the returned registry.
func LoadDir(root string) (*Registry, error) {
	r := NewRegistry()

	weapons, err := LoadWeapons(filepath.Join(root, "weapons"))
	if err != nil {
		return nil, err
	}
	for _, w := range weapons {
		if err := r.RegisterWeapon(w); err != nil {
			return nil, err
		}
	}

	templates, err := LoadTemplates(filepath.Join(root, "actors"))
	if err != nil {
		return nil, err
	}
	for _, t := range templates {
		if err := r.RegisterTemplate(t); err != nil {
			return nil, err
		}
	}

	scenarios, err := LoadScenariosFromDir(filepath.Join(root, "scenarios"))
	if err != nil {
		return nil, err
	}
	for _, s := range scenarios {
		if err := r.RegisterScenario(s); err != nil {
			return nil, err
		}
	}

	if err := r.validateReferences(); err != nil {
		return nil, err
	}
	return r, nil
}

// validateReferences checks that every cross-file ID reference resolves.
func (r *Registry) validateReferences() error {
	for _, t := range r.templates {
		if _, ok := r.weapons[t.WeaponID]; !ok {
			return fmt.Errorf("content: template %q references unknown weapon %q", t.ID, t.WeaponID)
		}
	}
	for _, s := range r.scenarios {
		for _, roster := range [][]Spawn{s.Players, s.Opponents} {
			for _, sp := range roster {
				if _, ok := r.templates[sp.TemplateID]; !ok {
					return fmt.Errorf("content: scenario %q references unknown template %q", s.ID, sp.TemplateID)
				}
			}
		}
	}
	return nil
}
