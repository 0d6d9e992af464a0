package ability

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/drakmor/spellgo/internal/game/anim"
	"github.com/drakmor/spellgo/internal/game/combat"
	"github.com/drakmor/spellgo/internal/game/target"
	"github.com/drakmor/spellgo/internal/model"
)

// ShapeSpec is the authoring form of a gather shape.
type ShapeSpec struct {
	Kind string `yaml:"kind"` // "round" or "square"
	Size int    `yaml:"size"` // footprint size in tiles (7 → round radius 3.5)
}

// Template holds the authoring-time constants of one ability. Loaded from
// yaml and validated before anything is scheduled; validation failures are
// fatal authoring errors.
type Template struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Script string `yaml:"script"` // script file name; empty → native handlers

	MaxRange      float64   `yaml:"max_range"`
	FootprintSize int       `yaml:"footprint_size"`
	Shape         ShapeSpec `yaml:"shape"`

	TravelSpeed float64 `yaml:"travel_speed"`
	BaseAmount  int32   `yaml:"base_amount"`
	Defense     string  `yaml:"defense"`
	Attack      string  `yaml:"attack"`

	ProjectileTemplate   string  `yaml:"projectile_template"`
	DetonationTemplate   string  `yaml:"detonation_template"`
	DetonationDurationMs int     `yaml:"detonation_duration_ms"`
	AttackDelayMs        int     `yaml:"attack_delay_ms"`
	DriftDamping         float64 `yaml:"drift_damping"`

	// FragmentRadius is declared by the authoring data but consumed by no
	// stage. Accepted so existing ability files keep loading.
	FragmentRadius float64 `yaml:"fragment_radius"`

	shape   target.Shape
	defense model.DefenseKind
	attack  combat.AttackKind
}

// GatherShape returns the parsed gather shape.
func (t *Template) GatherShape() target.Shape { return t.shape }

// DefenseKind returns the parsed defense kind.
func (t *Template) DefenseKind() model.DefenseKind { return t.defense }

// AttackKind returns the parsed attack kind.
func (t *Template) AttackKind() combat.AttackKind { return t.attack }

// DetonationDuration returns the detonation timeline duration.
func (t *Template) DetonationDuration() time.Duration {
	return time.Duration(t.DetonationDurationMs) * time.Millisecond
}

// AttackDelay returns the per-target strike offset into the detonation.
// Every target uses this same offset.
func (t *Template) AttackDelay() time.Duration {
	return time.Duration(t.AttackDelayMs) * time.Millisecond
}

// Validate parses and checks the template. Must be called (via LoadTemplates
// or directly) before the template is used.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("ability id is required")
	}
	if t.MaxRange <= 0 {
		return fmt.Errorf("ability %s: max_range must be positive, got %v", t.ID, t.MaxRange)
	}
	if t.TravelSpeed <= 0 {
		return fmt.Errorf("ability %s: travel_speed must be positive, got %v", t.ID, t.TravelSpeed)
	}
	if t.FootprintSize < 1 {
		t.FootprintSize = 1
	}
	if t.DetonationDurationMs <= 0 {
		return fmt.Errorf("ability %s: detonation_duration_ms must be positive", t.ID)
	}
	if t.AttackDelayMs < 0 || t.AttackDelayMs > t.DetonationDurationMs {
		return fmt.Errorf("ability %s: attack_delay_ms %d outside detonation duration %d",
			t.ID, t.AttackDelayMs, t.DetonationDurationMs)
	}
	if t.DriftDamping <= 0 {
		t.DriftDamping = anim.DefaultDriftDamping
	}

	shape, err := target.ParseShape(t.Shape.Kind, t.Shape.Size)
	if err != nil {
		return fmt.Errorf("ability %s: %w", t.ID, err)
	}
	t.shape = shape

	defense, ok := model.ParseDefenseKind(t.Defense)
	if !ok {
		return fmt.Errorf("ability %s: unknown defense kind %q", t.ID, t.Defense)
	}
	t.defense = defense

	attack, ok := combat.ParseAttackKind(t.Attack)
	if !ok {
		return fmt.Errorf("ability %s: unknown attack kind %q", t.ID, t.Attack)
	}
	t.attack = attack

	return nil
}

type templateFile struct {
	Abilities []*Template `yaml:"abilities"`
}

// LoadTemplates reads and validates an ability template file.
// Returns templates keyed by ability id.
func LoadTemplates(path string) (map[string]*Template, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ability templates: %w", err)
	}

	var file templateFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing ability templates: %w", err)
	}

	templates := make(map[string]*Template, len(file.Abilities))
	for _, tmpl := range file.Abilities {
		if err := tmpl.Validate(); err != nil {
			return nil, err
		}
		if _, dup := templates[tmpl.ID]; dup {
			return nil, fmt.Errorf("duplicate ability id %q", tmpl.ID)
		}
		templates[tmpl.ID] = tmpl
	}
	return templates, nil
}
