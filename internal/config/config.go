package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/drakmor/spellgo/internal/game/combat"
)

// Runtime holds all configuration for the ability runtime.
type Runtime struct {
	LogLevel string `yaml:"log_level"`

	// TickIntervalMs is the anim manager tick period.
	TickIntervalMs int `yaml:"tick_interval_ms"`

	// AnimationBaseTimeMs is the host display's base animation frame time,
	// exposed to ability scripts via game.anim_base_time().
	AnimationBaseTimeMs int `yaml:"animation_base_time_ms"`

	// AbilitiesPath is the ability template file.
	AbilitiesPath string `yaml:"abilities_path"`

	// ScriptsDir holds the Lua ability scripts.
	ScriptsDir string `yaml:"scripts_dir"`

	Rules combat.Rules `yaml:"rules"`
}

// DefaultRuntime returns a Runtime config with sensible defaults.
func DefaultRuntime() Runtime {
	return Runtime{
		LogLevel:            "info",
		TickIntervalMs:      50,
		AnimationBaseTimeMs: 25,
		AbilitiesPath:       "config/abilities.yaml",
		ScriptsDir:          "scripts",
		Rules:               combat.DefaultRules(),
	}
}

// LoadRuntime reads a Runtime config from a yaml file, applying defaults for
// omitted fields, and validates it.
func LoadRuntime(path string) (Runtime, error) {
	cfg := DefaultRuntime()

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects malformed configuration before anything starts.
func (c Runtime) Validate() error {
	if c.TickIntervalMs <= 0 {
		return fmt.Errorf("tick_interval_ms must be positive, got %d", c.TickIntervalMs)
	}
	if c.AnimationBaseTimeMs <= 0 {
		return fmt.Errorf("animation_base_time_ms must be positive, got %d", c.AnimationBaseTimeMs)
	}
	if err := c.Rules.Validate(); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	return nil
}
