package ability

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drakmor/spellgo/internal/game/anim"
	"github.com/drakmor/spellgo/internal/game/target"
	"github.com/drakmor/spellgo/internal/model"
)

func validTemplate() *Template {
	return &Template{
		ID:                   "stone_burst",
		Name:                 "Stone Burst",
		MaxRange:             12,
		FootprintSize:        1,
		Shape:                ShapeSpec{Kind: "round", Size: 7},
		TravelSpeed:          20,
		BaseAmount:           -2000,
		Defense:              "Reflex",
		Attack:               "Ranged",
		DetonationDurationMs: 1200,
		AttackDelayMs:        300,
		DriftDamping:         5,
	}
}

func TestTemplate_Validate(t *testing.T) {
	tmpl := validTemplate()
	require.NoError(t, tmpl.Validate())

	assert.IsType(t, target.Circle{}, tmpl.GatherShape())
	assert.Equal(t, "round r=3.5", tmpl.GatherShape().Name())
	assert.Equal(t, model.DefenseReflex, tmpl.DefenseKind())
	assert.Equal(t, "Ranged", tmpl.AttackKind().String())
}

func TestTemplate_ValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Template)
	}{
		{"missing id", func(t *Template) { t.ID = "" }},
		{"non-positive range", func(t *Template) { t.MaxRange = 0 }},
		{"non-positive speed", func(t *Template) { t.TravelSpeed = -1 }},
		{"unknown shape", func(t *Template) { t.Shape.Kind = "hex" }},
		{"unknown defense", func(t *Template) { t.Defense = "Dodge" }},
		{"unknown attack", func(t *Template) { t.Attack = "Thrown" }},
		{"zero detonation duration", func(t *Template) { t.DetonationDurationMs = 0 }},
		{"delay past detonation end", func(t *Template) { t.AttackDelayMs = 1500 }},
		{"negative delay", func(t *Template) { t.AttackDelayMs = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := validTemplate()
			tt.mutate(tmpl)
			assert.Error(t, tmpl.Validate())
		})
	}
}

func TestTemplate_ValidateDefaults(t *testing.T) {
	tmpl := validTemplate()
	tmpl.FootprintSize = 0
	tmpl.DriftDamping = 0
	require.NoError(t, tmpl.Validate())

	assert.Equal(t, 1, tmpl.FootprintSize)
	assert.Equal(t, anim.DefaultDriftDamping, tmpl.DriftDamping)
}

const templateYAML = `
abilities:
  - id: ember_charge
    name: Ember Charge
    script: ember_charge.lua
    max_range: 12
    footprint_size: 1
    shape: {kind: round, size: 7}
    travel_speed: 20
    base_amount: -2000
    defense: Reflex
    attack: Ranged
    detonation_duration_ms: 1200
    attack_delay_ms: 300
    drift_damping: 5
    fragment_radius: 3
  - id: stone_burst
    name: Stone Burst
    max_range: 8
    shape: {kind: square, size: 5}
    travel_speed: 14
    base_amount: -1200
    defense: Fortitude
    attack: Melee
    detonation_duration_ms: 900
    attack_delay_ms: 200
`

func writeTemplates(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "abilities.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTemplates(t *testing.T) {
	templates, err := LoadTemplates(writeTemplates(t, templateYAML))
	require.NoError(t, err)
	require.Len(t, templates, 2)

	ember := templates["ember_charge"]
	require.NotNil(t, ember)
	assert.Equal(t, "ember_charge.lua", ember.Script)
	assert.Equal(t, 12.0, ember.MaxRange)
	assert.Equal(t, 3.0, ember.FragmentRadius, "accepted even though nothing reads it")

	stone := templates["stone_burst"]
	require.NotNil(t, stone)
	assert.Empty(t, stone.Script)
	assert.IsType(t, target.Square{}, stone.GatherShape())
	assert.Equal(t, "square half=2.5", stone.GatherShape().Name())
}

func TestLoadTemplates_DuplicateID(t *testing.T) {
	dup := templateYAML + `
  - id: stone_burst
    name: Stone Burst Again
    max_range: 8
    shape: {kind: round, size: 3}
    travel_speed: 10
    base_amount: -100
    defense: Will
    attack: Spell
    detonation_duration_ms: 500
`
	_, err := LoadTemplates(writeTemplates(t, dup))
	assert.Error(t, err)
}

func TestLoadTemplates_MissingFile(t *testing.T) {
	_, err := LoadTemplates(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
