package content

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/voltfall/tactics/internal/game/combat"
)

// BuildActor instantiates a spawn into an encounter-ready actor: the
// template's numbers, the resolved weapon, a fresh unique instance ID,
// and full HP. The spawn's name override wins over the template name.
//
// Precondition: reg must be non-nil.
// Postcondition: CurrentHP equals the template's MaxHP; ID is unique per
// call.
func BuildActor(reg *Registry, spawn Spawn) (combat.Actor, error) {
	tmpl, ok := reg.Template(spawn.TemplateID)
	if !ok {
		return combat.Actor{}, fmt.Errorf("build actor: no template %q", spawn.TemplateID)
	}
	weapon, ok := reg.Weapon(tmpl.WeaponID)
	if !ok {
		return combat.Actor{}, fmt.Errorf("build actor: template %q references unknown weapon %q", tmpl.ID, tmpl.WeaponID)
	}

	name := spawn.Name
	if name == "" {
		name = tmpl.Name
	}
	return combat.Actor{
		ID:           uuid.New().String(),
		Name:         name,
		Pos:          spawn.Position,
		Body:         tmpl.Attributes.Body,
		Reflexes:     tmpl.Attributes.Reflexes,
		Intelligence: tmpl.Attributes.Intelligence,
		Tech:         tmpl.Attributes.Tech,
		Cool:         tmpl.Attributes.Cool,
		MaxHP:        tmpl.MaxHP,
		CurrentHP:    tmpl.MaxHP,
		Armor:        tmpl.Armor,
		Morale:       tmpl.Morale,
		Weapon:       weapon.ToWeapon(),
		Cover:        spawn.Cover,
	}, nil
}

// BuildRosters instantiates both scenario rosters in spawn order. Teams
// are stamped by the encounter at construction, not here.
//
// Postcondition: On success the slice lengths match the scenario's
// rosters; on error both returned slices are nil.
func BuildRosters(reg *Registry, sc *Scenario) (players, opponents []combat.Actor, err error) {
	for _, spawn := range sc.Players {
		a, err := BuildActor(reg, spawn)
		if err != nil {
			return nil, nil, fmt.Errorf("scenario %q: %w", sc.ID, err)
		}
		players = append(players, a)
	}
	for _, spawn := range sc.Opponents {
		a, err := BuildActor(reg, spawn)
		if err != nil {
			return nil, nil, fmt.Errorf("scenario %q: %w", sc.ID, err)
		}
		opponents = append(opponents, a)
	}
	return players, opponents, nil
}
