package combat

import (
	"log/slog"

	"github.com/drakmor/spellgo/internal/model"
	"github.com/drakmor/spellgo/internal/world"
)

// AttackOutcome is the result of one resolved attack: the outcome tier and
// the signed magnitude applied to the target's HP pool. Skipped marks a
// target that was no longer valid at resolution time — a silent no-op, not
// a failure.
type AttackOutcome struct {
	Tier      HitTier
	Magnitude int32
	Skipped   bool
}

// HitResult carries one resolved attack for observation in tests.
type HitResult struct {
	AttackerID model.ObjectID
	TargetID   model.ObjectID
	Outcome    AttackOutcome
}

// Resolver maps attack checks into outcomes and applies the resulting
// magnitude. It is the only component of the pipeline that mutates actor
// state, and it always re-validates the target at the moment of mutation:
// the world may have removed or killed it since the callback was scheduled.
type Resolver struct {
	area  *world.Area
	rules Rules
	roll  RollFunc

	// hitObserver observes resolved attacks (nil in production).
	hitObserver func(HitResult)
}

// NewResolver creates a resolver using the given ruleset.
func NewResolver(area *world.Area, rules Rules) *Resolver {
	return &Resolver{area: area, rules: rules}
}

// SetRollFunc overrides the d100 source (for deterministic tests).
func (r *Resolver) SetRollFunc(fn RollFunc) {
	r.roll = fn
}

// SetHitObserver sets a callback observing attack results (for tests).
func (r *Resolver) SetHitObserver(fn func(HitResult)) {
	r.hitObserver = fn
}

// Resolve performs one attack check of attacker against target and applies
// the magnitude derived from baseAmount (negative for damage):
// miss applies nothing, graze/hit/crit apply the tier multiplier.
//
// An invalid target (removed or dead) is skipped, never an error, and the
// skip is idempotent: resolving twice against an already-invalid target
// produces no effect both times.
func (r *Resolver) Resolve(attackerID, targetID model.ObjectID, defense model.DefenseKind, attack AttackKind, baseAmount int32) AttackOutcome {
	target, ok := r.area.Get(targetID)
	if !ok || !target.IsValid() {
		slog.Debug("attack skipped, target invalid",
			"attacker", attackerID,
			"target", targetID)
		out := AttackOutcome{Skipped: true}
		r.observe(attackerID, targetID, out)
		return out
	}

	var accuracy int32
	if attacker, ok := r.area.Get(attackerID); ok {
		accuracy = attacker.Accuracy()
	}

	tier := r.rules.AttackRoll(r.roll, accuracy, target.Defense(defense))
	out := AttackOutcome{Tier: tier}

	if tier == TierMiss {
		// No effect applied on a miss.
		r.observe(attackerID, targetID, out)
		return out
	}

	switch tier {
	case TierGraze:
		out.Magnitude = int32(float64(baseAmount) * r.rules.GrazeMultiplier)
	case TierHit:
		out.Magnitude = int32(float64(baseAmount) * r.rules.HitMultiplier)
	case TierCrit:
		out.Magnitude = int32(float64(baseAmount) * r.rules.CritMultiplier)
	}

	target.ApplyHPDelta(out.Magnitude)

	slog.Debug("attack resolved",
		"attacker", attackerID,
		"target", targetID,
		"defense", defense.String(),
		"attack", attack.String(),
		"tier", tier.String(),
		"magnitude", out.Magnitude,
		"target_hp", target.CurrentHP())

	r.observe(attackerID, targetID, out)
	return out
}

func (r *Resolver) observe(attackerID, targetID model.ObjectID, out AttackOutcome) {
	if r.hitObserver != nil {
		r.hitObserver(HitResult{AttackerID: attackerID, TargetID: targetID, Outcome: out})
	}
}
