package ability

import (
	"fmt"
	"log/slog"

	"github.com/drakmor/spellgo/internal/game/anim"
	"github.com/drakmor/spellgo/internal/game/combat"
	"github.com/drakmor/spellgo/internal/game/target"
	"github.com/drakmor/spellgo/internal/model"
	"github.com/drakmor/spellgo/internal/world"
)

// ScriptDispatcher invokes a function inside an ability script by name.
// Implemented by the script host; injected to keep this package independent
// of the Lua layer.
type ScriptDispatcher interface {
	Has(script, fn string) bool
	Dispatch(script, fn string, ctx *Context, targets []model.ObjectID) error
}

// Pipeline runs ability activations: targeting, projectile kinematics,
// scheduled detonation and per-target attack resolution. It implements
// anim.Dispatcher, so fired timeline callbacks come back through it and are
// routed to native handlers or into the ability's script.
type Pipeline struct {
	area     *world.Area
	animMgr  *anim.Manager
	resolver *combat.Resolver
	registry *Registry
	scripts  ScriptDispatcher
}

// NewPipeline wires the pipeline. The caller connects it to the anim manager
// as its dispatcher.
func NewPipeline(area *world.Area, resolver *combat.Resolver) *Pipeline {
	return &Pipeline{
		area:     area,
		resolver: resolver,
		registry: NewRegistry(),
	}
}

// BindAnimManager sets the timeline manager used by stage operations.
// Must be called before any activation.
func (p *Pipeline) BindAnimManager(m *anim.Manager) {
	p.animMgr = m
}

// SetScriptDispatcher attaches the script host for script-backed abilities.
func (p *Pipeline) SetScriptDispatcher(d ScriptDispatcher) {
	p.scripts = d
}

// RegisterAbility installs the native stage handlers for a template that has
// no script. Script-backed templates register nothing here: their stage
// handlers live in the script and are dispatched by name.
func (p *Pipeline) RegisterAbility(tmpl *Template) error {
	if tmpl.Script != "" {
		return nil
	}
	if err := p.registry.Register(tmpl.ID+"/detonate", HandlerFunc(detonateStage)); err != nil {
		return err
	}
	return p.registry.Register(tmpl.ID+"/strike", HandlerFunc(strikeStage))
}

// Dispatch implements anim.Dispatcher: a fired ScheduledCallback is routed
// to the registered handler, falling back to the owning ability's script.
func (p *Pipeline) Dispatch(handlerID string, inv anim.Invocation) error {
	ctx, ok := inv.Ctx.(*Context)
	if !ok || ctx == nil {
		return fmt.Errorf("dispatch %s: timeline has no ability context", handlerID)
	}

	if h, found := p.registry.Lookup(handlerID); found {
		return h.Invoke(ctx, inv.Targets)
	}
	if p.scripts != nil && ctx.Template.Script != "" && p.scripts.Has(ctx.Template.Script, handlerID) {
		return p.scripts.Dispatch(ctx.Template.Script, handlerID, ctx, inv.Targets)
	}
	return fmt.Errorf("dispatch %s: unknown handler", handlerID)
}

// canDispatch reports whether a handler identifier will resolve for the
// given context. Checked when the callback is registered, not when it fires.
func (p *Pipeline) canDispatch(ctx *Context, handlerID string) bool {
	if _, found := p.registry.Lookup(handlerID); found {
		return true
	}
	return p.scripts != nil && ctx.Template.Script != "" && p.scripts.Has(ctx.Template.Script, handlerID)
}

// OnActivate is the host entry point for an ability activation: it
// constructs the targeter the host will drive selection with. Script-backed
// abilities build their targeter in the script's on_activate.
func (p *Pipeline) OnActivate(casterID model.ObjectID, tmpl *Template) (*Context, error) {
	caster, ok := p.area.Get(casterID)
	if !ok || !caster.IsValid() {
		return nil, fmt.Errorf("ability %s: caster %d not valid", tmpl.ID, casterID)
	}

	ctx := &Context{
		CasterID: casterID,
		Template: tmpl,
		Area:     p.area,
		pipeline: p,
	}

	if tmpl.Script != "" && p.scripts != nil && p.scripts.Has(tmpl.Script, "on_activate") {
		if err := p.scripts.Dispatch(tmpl.Script, "on_activate", ctx, nil); err != nil {
			return nil, fmt.Errorf("ability %s: on_activate: %w", tmpl.ID, err)
		}
	} else {
		if err := ctx.CreateTargeter(target.Params{
			MaxRange:      tmpl.MaxRange,
			FootprintSize: tmpl.FootprintSize,
			Shape:         tmpl.GatherShape(),
		}); err != nil {
			return nil, err
		}
	}

	if ctx.targeter == nil {
		return nil, fmt.Errorf("ability %s: activation produced no targeter", tmpl.ID)
	}

	slog.Info("ability activated",
		"ability", tmpl.ID,
		"caster", caster.Name(),
		"max_range", tmpl.MaxRange)
	return ctx, nil
}

// OnTargetSelect is the host entry point after selection completes: it runs
// the projectile kinematics and schedules the first stage. A cancelled
// selection never reaches this point.
func (p *Pipeline) OnTargetSelect(ctx *Context, targets *target.TargetSet) error {
	ctx.Targets = targets

	tmpl := ctx.Template
	if tmpl.Script != "" && p.scripts != nil && p.scripts.Has(tmpl.Script, "on_target_select") {
		if err := p.scripts.Dispatch(tmpl.Script, "on_target_select", ctx, targets.Targets); err != nil {
			return fmt.Errorf("ability %s: on_target_select: %w", tmpl.ID, err)
		}
		return nil
	}

	return ctx.CreateProjectile(tmpl.TravelSpeed, tmpl.ProjectileTemplate, tmpl.ID+"/detonate")
}

// detonateStage fires when the projectile timeline completes: it builds the
// detonation timeline at the selected point and schedules one attack
// callback per gathered target, each at the same declared offset with an
// independent single-target list.
func detonateStage(ctx *Context, targets []model.ObjectID) error {
	tmpl := ctx.Template
	return ctx.CreateDetonation(tmpl.DetonationTemplate, tmpl.DetonationDuration(),
		tmpl.AttackDelay(), tmpl.ID+"/strike", targets)
}

// strikeStage fires once per affected target at the detonation's attack
// offset and resolves that target's attack. Invalid targets are skipped
// inside the resolver without disturbing sibling callbacks.
func strikeStage(ctx *Context, targets []model.ObjectID) error {
	for _, id := range targets {
		ctx.Attack(id)
	}
	return nil
}
