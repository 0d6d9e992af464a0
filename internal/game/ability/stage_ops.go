package ability

import (
	"fmt"
	"time"

	"github.com/drakmor/spellgo/internal/game/anim"
	"github.com/drakmor/spellgo/internal/game/combat"
	"github.com/drakmor/spellgo/internal/game/target"
	"github.com/drakmor/spellgo/internal/model"
)

// Stage operations shared by the native handlers and the script bindings.
// Each one is a step a stage may take: build a targeter, launch the
// projectile, chain a detonation, resolve an attack.

// CreateTargeter builds the activation's targeter. Malformed params are
// fatal at this point, before anything is scheduled.
func (c *Context) CreateTargeter(params target.Params) error {
	caster, ok := c.Caster()
	if !ok {
		return fmt.Errorf("ability %s: caster gone before targeting", c.Template.ID)
	}
	t, err := target.New(caster, c.Area, params)
	if err != nil {
		return err
	}
	c.targeter = t
	return nil
}

// ActiveTargeter returns the targeter built during activation.
func (c *Context) ActiveTargeter() *target.Targeter {
	return c.targeter
}

// CreateProjectile computes travel kinematics from the caster to the
// selected point and registers the traveling effect, with the named handler
// scheduled on completion for the full target list. The computed travel is
// kept on the context for the detonation's counter-drift.
func (c *Context) CreateProjectile(speed float64, visual, onComplete string) error {
	caster, ok := c.Caster()
	if !ok {
		return fmt.Errorf("ability %s: caster gone before launch", c.Template.ID)
	}
	if c.Targets == nil {
		return fmt.Errorf("ability %s: no target set", c.Template.ID)
	}
	if !c.pipeline.canDispatch(c, onComplete) {
		return fmt.Errorf("ability %s: handler %q not registered", c.Template.ID, onComplete)
	}

	travel, err := anim.ComputeTravel(caster.Position(), c.Targets.Point, speed)
	if err != nil {
		return fmt.Errorf("ability %s: %w", c.Template.ID, err)
	}
	c.Travel = travel

	tl, err := anim.NewTimeline(travel.Duration)
	if err != nil {
		return err
	}
	tl.Template = visual
	tl.Origin = travel.Origin
	tl.Velocity = travel.Velocity
	tl.Ctx = c

	if err := tl.OnComplete(onComplete, c.Targets.Targets); err != nil {
		return err
	}
	_, err = c.pipeline.animMgr.Register(tl)
	return err
}

// CreateDetonation builds the detonation timeline anchored at the selected
// point. Child particles get the counter-drift term derived from the
// projectile travel, so they stay put in world space while the parent frame
// carries the projectile's velocity. Each target in targets gets its own
// strike callback at the same delay offset.
func (c *Context) CreateDetonation(visual string, duration, attackDelay time.Duration, strikeHandler string, targets []model.ObjectID) error {
	if !c.pipeline.canDispatch(c, strikeHandler) {
		return fmt.Errorf("ability %s: handler %q not registered", c.Template.ID, strikeHandler)
	}

	tl, err := anim.NewTimeline(duration)
	if err != nil {
		return err
	}
	tl.Template = visual
	tl.Origin = c.Targets.Point
	tl.Drift = c.Travel.CounterDrift(c.Template.DriftDamping)
	tl.Ctx = c

	for _, id := range targets {
		if err := tl.OnUpdateAt(attackDelay, strikeHandler, []model.ObjectID{id}); err != nil {
			return err
		}
	}
	_, err = c.pipeline.animMgr.Register(tl)
	return err
}

// Attack resolves one attack of the caster against the given target using
// the template's check and magnitude constants. The resolver re-validates
// the target and silently skips it when it is gone.
func (c *Context) Attack(targetID model.ObjectID) combat.AttackOutcome {
	tmpl := c.Template
	return c.pipeline.resolver.Resolve(c.CasterID, targetID,
		tmpl.DefenseKind(), tmpl.AttackKind(), tmpl.BaseAmount)
}
