package content_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/voltfall/tactics/internal/game/content"
)

func validTemplateYAML() string {
	return `id: street-samurai
name: Street Samurai
description: Chrome-armed melee specialist.
attributes:
  body: 7
  reflexes: 6
  intelligence: 4
  tech: 3
  cool: 5
max_hp: 45
armor: 20
morale: 60
weapon: mono-katana
`
}

func TestLoadTemplateFromBytes_Valid(t *testing.T) {
	tmpl, err := content.LoadTemplateFromBytes([]byte(validTemplateYAML()))
	if err != nil {
		t.Fatalf("LoadTemplateFromBytes: %v", err)
	}
	if tmpl.ID != "street-samurai" {
		t.Errorf("ID = %q, want street-samurai", tmpl.ID)
	}
	if tmpl.Attributes.Body != 7 || tmpl.Attributes.Cool != 5 {
		t.Errorf("attributes = %+v, want body 7 cool 5", tmpl.Attributes)
	}
	if tmpl.MaxHP != 45 || tmpl.Armor != 20 || tmpl.Morale != 60 {
		t.Errorf("stats = %d/%d/%d, want 45/20/60", tmpl.MaxHP, tmpl.Armor, tmpl.Morale)
	}
	if tmpl.WeaponID != "mono-katana" {
		t.Errorf("WeaponID = %q, want mono-katana", tmpl.WeaponID)
	}
}

func TestActorTemplate_Validate_Violations(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(s string) string
	}{
		{"missing id", func(s string) string { return strings.Replace(s, "id: street-samurai", "id: \"\"", 1) }},
		{"attribute too high", func(s string) string { return strings.Replace(s, "body: 7", "body: 11", 1) }},
		{"attribute too low", func(s string) string { return strings.Replace(s, "cool: 5", "cool: 0", 1) }},
		{"zero max_hp", func(s string) string { return strings.Replace(s, "max_hp: 45", "max_hp: 0", 1) }},
		{"armor out of band", func(s string) string { return strings.Replace(s, "armor: 20", "armor: 101", 1) }},
		{"morale out of band", func(s string) string { return strings.Replace(s, "morale: 60", "morale: 150", 1) }},
		{"missing weapon", func(s string) string { return strings.Replace(s, "weapon: mono-katana", "weapon: \"\"", 1) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := content.LoadTemplateFromBytes([]byte(tc.mutate(validTemplateYAML()))); err == nil {
				t.Fatalf("expected validation error, got nil")
			}
		})
	}
}

func TestLoadTemplates_LoadsDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "samurai.yaml"), []byte(validTemplateYAML()), 0644); err != nil {
		t.Fatalf("failed to write temp YAML: %v", err)
	}
	second := strings.Replace(validTemplateYAML(), "street-samurai", "netrunner", 1)
	if err := os.WriteFile(filepath.Join(dir, "netrunner.yaml"), []byte(second), 0644); err != nil {
		t.Fatalf("failed to write temp YAML: %v", err)
	}

	templates, err := content.LoadTemplates(dir)
	if err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}
	if len(templates) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(templates))
	}
}

func TestLoadTemplates_PropagatesInvalid(t *testing.T) {
	dir := t.TempDir()
	bad := strings.Replace(validTemplateYAML(), "reflexes: 6", "reflexes: 99", 1)
	if err := os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(bad), 0644); err != nil {
		t.Fatalf("failed to write temp YAML: %v", err)
	}
	if _, err := content.LoadTemplates(dir); err == nil {
		t.Fatal("expected error for out-of-band reflexes, got nil")
	}
}
