// Package content provides the YAML definition loaders and the factory
// that turns archetypes into encounter-ready actors.
package content

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/voltfall/tactics/internal/game/combat"
)

// WeaponDef defines the static properties of a weapon loaded from YAML.
type WeaponDef struct {
	ID       string  `yaml:"id"`
	Name     string  `yaml:"name"`
	Class    string  `yaml:"class"` // melee, ranged, or tech
	Damage   int     `yaml:"damage"`
	Accuracy int     `yaml:"accuracy"`
	Range    int     `yaml:"range"`
	ArmorPen float64 `yaml:"armor_pen"`
	CritMult float64 `yaml:"crit_mult"`
}

// Validate checks that the WeaponDef satisfies its invariants.
//
// Precondition: w is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (w *WeaponDef) Validate() error {
	var errs []error
	if w.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if w.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if _, err := combat.ParseWeaponClass(w.Class); err != nil {
		errs = append(errs, err)
	}
	if w.Damage < 1 {
		errs = append(errs, fmt.Errorf("Damage must be >= 1, got %d", w.Damage))
	}
	if w.Accuracy < 1 || w.Accuracy > 100 {
		errs = append(errs, fmt.Errorf("Accuracy must be in [1, 100], got %d", w.Accuracy))
	}
	if w.Range < 1 {
		errs = append(errs, fmt.Errorf("Range must be >= 1, got %d", w.Range))
	}
	if w.ArmorPen < 0 || w.ArmorPen > 1 {
		errs = append(errs, fmt.Errorf("ArmorPen must be in [0, 1], got %g", w.ArmorPen))
	}
	if w.CritMult < 1 {
		errs = append(errs, fmt.Errorf("CritMult must be >= 1, got %g", w.CritMult))
	}
	if len(errs) > 0 {
		return fmt.Errorf("weapon validation failed: %v", errs)
	}
	return nil
}

// ToWeapon converts the definition into the engine's weapon record.
//
// Precondition: w has passed Validate.
func (w *WeaponDef) ToWeapon() combat.Weapon {
	class, _ := combat.ParseWeaponClass(w.Class)
	return combat.Weapon{
		Name:     w.Name,
		Class:    class,
		Damage:   w.Damage,
		Accuracy: w.Accuracy,
		Range:    w.Range,
		ArmorPen: w.ArmorPen,
		CritMult: w.CritMult,
	}
}

// LoadWeapons reads all *.yaml files from dir, parses each as a WeaponDef,
// validates it, and returns the collected slice.
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid WeaponDefs or the first encountered error.
func LoadWeapons(dir string) ([]*WeaponDef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadWeapons: cannot read directory %q: %w", dir, err)
	}

	var weapons []*WeaponDef
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadWeapons: cannot read file %q: %w", path, err)
		}
		var w WeaponDef
		if err := yaml.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("LoadWeapons: cannot parse file %q: %w", path, err)
		}
		if err := w.Validate(); err != nil {
			return nil, fmt.Errorf("LoadWeapons: invalid weapon in %q: %w", path, err)
		}
		weapons = append(weapons, &w)
	}
	return weapons, nil
}
