package combat

import (
	"fmt"
	"math/rand"
)

// HitTier is the discrete outcome of an attack check.
type HitTier int8

const (
	TierMiss HitTier = iota
	TierGraze
	TierHit
	TierCrit
)

// String returns the tier name used in logs and test output.
func (h HitTier) String() string {
	switch h {
	case TierMiss:
		return "miss"
	case TierGraze:
		return "graze"
	case TierHit:
		return "hit"
	case TierCrit:
		return "crit"
	default:
		return "unknown"
	}
}

// AttackKind selects which accuracy stat feeds an attack check.
type AttackKind int8

const (
	AttackRanged AttackKind = iota
	AttackMelee
	AttackSpell
)

// String returns the attack kind name used in templates and logs.
func (a AttackKind) String() string {
	switch a {
	case AttackRanged:
		return "Ranged"
	case AttackMelee:
		return "Melee"
	case AttackSpell:
		return "Spell"
	default:
		return "Unknown"
	}
}

// ParseAttackKind parses an attack kind name from an ability template.
func ParseAttackKind(s string) (AttackKind, bool) {
	switch s {
	case "Ranged":
		return AttackRanged, true
	case "Melee":
		return AttackMelee, true
	case "Spell":
		return AttackSpell, true
	default:
		return 0, false
	}
}

// Rules holds the attack-check percentiles and per-tier damage multipliers.
type Rules struct {
	GrazePercentile int32 `yaml:"graze_percentile"`
	HitPercentile   int32 `yaml:"hit_percentile"`
	CritPercentile  int32 `yaml:"crit_percentile"`

	GrazeMultiplier float64 `yaml:"graze_damage_multiplier"`
	HitMultiplier   float64 `yaml:"hit_damage_multiplier"`
	CritMultiplier  float64 `yaml:"crit_damage_multiplier"`
}

// DefaultRules returns the stock ruleset: graze above 25, hit above 50,
// crit above 90, with 0.5x / 1x / 2x damage.
func DefaultRules() Rules {
	return Rules{
		GrazePercentile: 25,
		HitPercentile:   50,
		CritPercentile:  90,
		GrazeMultiplier: 0.5,
		HitMultiplier:   1.0,
		CritMultiplier:  2.0,
	}
}

// Validate rejects malformed rulesets at load time, before any attack rolls.
func (r Rules) Validate() error {
	if r.GrazePercentile < 0 || r.GrazePercentile > r.HitPercentile || r.HitPercentile > r.CritPercentile {
		return fmt.Errorf("percentiles must be ascending: graze=%d hit=%d crit=%d",
			r.GrazePercentile, r.HitPercentile, r.CritPercentile)
	}
	if r.GrazeMultiplier <= 0 || r.HitMultiplier <= 0 || r.CritMultiplier <= 0 {
		return fmt.Errorf("damage multipliers must be positive")
	}
	return nil
}

// RollFunc produces the raw d100 roll. Injectable for deterministic tests.
type RollFunc func() int32

// DefaultRoll rolls 1-100 inclusive.
func DefaultRoll() int32 {
	return int32(rand.Intn(100)) + 1
}

// AttackRoll maps a probabilistic check into an outcome tier:
// roll + accuracy below defense always misses; otherwise the margin over the
// defense decides the tier against the percentile thresholds.
func (r Rules) AttackRoll(roll RollFunc, accuracy, defense int32) HitTier {
	if roll == nil {
		roll = DefaultRoll
	}
	n := roll()

	if n+accuracy < defense {
		return TierMiss
	}
	result := n + accuracy - defense

	switch {
	case result >= r.CritPercentile:
		return TierCrit
	case result >= r.HitPercentile:
		return TierHit
	case result >= r.GrazePercentile:
		return TierGraze
	default:
		return TierMiss
	}
}
