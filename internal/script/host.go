// Package script hosts Lua ability definitions. A script file evaluates to a
// table of functions keyed by entry-point or stage-handler name; the runtime
// dispatches into them by identifier when the host or a timeline callback
// asks for that name.
package script

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Shopify/go-lua"

	"github.com/drakmor/spellgo/internal/game/ability"
	"github.com/drakmor/spellgo/internal/game/target"
	"github.com/drakmor/spellgo/internal/model"
	"github.com/drakmor/spellgo/internal/world"
)

const (
	contextTypeName = "ability_context"
	handlersGlobal  = "__ability_handlers"
)

// Host owns one Lua state per loaded ability script and implements
// ability.ScriptDispatcher.
type Host struct {
	area         *world.Area
	animBaseTime time.Duration
	states       map[string]*lua.State
}

// NewHost creates a script host bound to an area. animBaseTime is the value
// scripts read through game.anim_base_time().
func NewHost(area *world.Area, animBaseTime time.Duration) *Host {
	return &Host{
		area:         area,
		animBaseTime: animBaseTime,
		states:       make(map[string]*lua.State),
	}
}

// LoadDir loads every *.lua file in dir. Script names are file base names.
func (h *Host) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading scripts dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".lua") {
			continue
		}
		if err := h.Load(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// Load runs one script file. The script must return a table of functions;
// anything else is a fatal authoring error.
func (h *Host) Load(path string) error {
	name := filepath.Base(path)

	l := lua.NewState()
	lua.OpenLibraries(l)
	h.registerGame(l)
	h.registerContextType(l)

	if err := lua.LoadFile(l, path, ""); err != nil {
		return fmt.Errorf("loading script %s: %w", name, err)
	}
	if err := l.ProtectedCall(0, 1, 0); err != nil {
		return fmt.Errorf("running script %s: %w", name, err)
	}
	if l.TypeOf(-1) != lua.TypeTable {
		l.Pop(1)
		return fmt.Errorf("script %s must return a table of handlers", name)
	}
	l.SetGlobal(handlersGlobal)

	h.states[name] = l
	slog.Info("ability script loaded", "script", name)
	return nil
}

// Has implements ability.ScriptDispatcher.
func (h *Host) Has(script, fn string) bool {
	l, ok := h.states[script]
	if !ok {
		return false
	}
	l.Global(handlersGlobal)
	l.Field(-1, fn)
	isFn := l.TypeOf(-1) == lua.TypeFunction
	l.Pop(2)
	return isFn
}

// Dispatch implements ability.ScriptDispatcher: it calls the named script
// function with the activation context and the fired callback's target list.
// Lua runtime errors are returned to the scheduler boundary, which isolates
// them per callback.
func (h *Host) Dispatch(script, fn string, ctx *ability.Context, targets []model.ObjectID) error {
	l, ok := h.states[script]
	if !ok {
		return fmt.Errorf("script %s not loaded", script)
	}

	l.Global(handlersGlobal)
	l.Field(-1, fn)
	if l.TypeOf(-1) != lua.TypeFunction {
		l.Pop(2)
		return fmt.Errorf("script %s has no handler %q", script, fn)
	}
	l.Remove(-2)

	l.PushUserData(ctx)
	lua.SetMetaTableNamed(l, contextTypeName)
	pushTargetList(l, targets)

	if err := l.ProtectedCall(2, 0, 0); err != nil {
		return fmt.Errorf("script %s handler %q: %w", script, fn, err)
	}
	return nil
}

// registerGame installs the host interface scripts use for queries that do
// not belong to one activation.
func (h *Host) registerGame(l *lua.State) {
	funcs := []lua.RegistryFunction{
		{Name: "log", Function: func(l *lua.State) int {
			msg := lua.CheckString(l, 1)
			slog.Info("[script] " + msg)
			return 0
		}},
		{Name: "anim_base_time", Function: func(l *lua.State) int {
			l.PushNumber(h.animBaseTime.Seconds())
			return 1
		}},
		{Name: "atan2", Function: func(l *lua.State) int {
			x := lua.CheckNumber(l, 1)
			y := lua.CheckNumber(l, 2)
			l.PushNumber(math.Atan2(y, x))
			return 1
		}},
		{Name: "is_passable", Function: func(l *lua.State) int {
			x := lua.CheckNumber(l, 1)
			y := lua.CheckNumber(l, 2)
			l.PushBoolean(h.area.IsPassable(model.NewPoint(x, y), 1))
			return 1
		}},
	}
	l.NewTable()
	lua.SetFunctions(l, funcs, 0)
	l.SetGlobal("game")
}

func (h *Host) registerContextType(l *lua.State) {
	methods := []lua.RegistryFunction{
		{Name: "caster_pos", Function: contextCasterPos},
		{Name: "selected_point", Function: contextSelectedPoint},
		{Name: "targets", Function: contextTargets},
		{Name: "create_targeter", Function: contextCreateTargeter},
		{Name: "create_projectile", Function: contextCreateProjectile},
		{Name: "create_detonation", Function: contextCreateDetonation},
		{Name: "attack", Function: contextAttack},
	}
	lua.NewMetaTable(l, contextTypeName)
	l.NewTable()
	lua.SetFunctions(l, methods, 0)
	l.SetField(-2, "__index")
	l.Pop(1)
}

func checkContext(l *lua.State) *ability.Context {
	ud := lua.CheckUserData(l, 1, contextTypeName)
	if ctx, ok := ud.(*ability.Context); ok && ctx != nil {
		return ctx
	}
	lua.ArgumentError(l, 1, "ability context expected")
	return nil
}

func contextCasterPos(l *lua.State) int {
	ctx := checkContext(l)
	caster, ok := ctx.Caster()
	if !ok {
		lua.Errorf(l, "caster no longer in area")
		return 0
	}
	pos := caster.Position()
	l.PushNumber(pos.X)
	l.PushNumber(pos.Y)
	return 2
}

func contextSelectedPoint(l *lua.State) int {
	ctx := checkContext(l)
	if ctx.Targets == nil {
		lua.Errorf(l, "no point selected yet")
		return 0
	}
	l.PushNumber(ctx.Targets.Point.X)
	l.PushNumber(ctx.Targets.Point.Y)
	return 2
}

func contextTargets(l *lua.State) int {
	ctx := checkContext(l)
	if ctx.Targets == nil {
		l.NewTable()
		return 1
	}
	pushTargetList(l, ctx.Targets.Targets)
	return 1
}

func contextCreateTargeter(l *lua.State) int {
	ctx := checkContext(l)
	lua.CheckType(l, 2, lua.TypeTable)

	shape, err := target.ParseShape(
		tableString(l, 2, "shape_kind", "round"),
		int(tableNumber(l, 2, "shape_size", 7)))
	if err != nil {
		lua.Errorf(l, "create_targeter: %s", err.Error())
		return 0
	}
	params := target.Params{
		MaxRange:      tableNumber(l, 2, "max_range", ctx.Template.MaxRange),
		FootprintSize: int(tableNumber(l, 2, "footprint", 1)),
		Shape:         shape,
	}
	if err := ctx.CreateTargeter(params); err != nil {
		lua.Errorf(l, "create_targeter: %s", err.Error())
		return 0
	}
	return 0
}

func contextCreateProjectile(l *lua.State) int {
	ctx := checkContext(l)
	lua.CheckType(l, 2, lua.TypeTable)

	speed := tableNumber(l, 2, "speed", ctx.Template.TravelSpeed)
	visual := tableString(l, 2, "visual", ctx.Template.ProjectileTemplate)
	onComplete := tableString(l, 2, "on_complete", "")
	if onComplete == "" {
		lua.Errorf(l, "create_projectile: on_complete handler name is required")
		return 0
	}
	if err := ctx.CreateProjectile(speed, visual, onComplete); err != nil {
		lua.Errorf(l, "create_projectile: %s", err.Error())
		return 0
	}
	return 0
}

func contextCreateDetonation(l *lua.State) int {
	ctx := checkContext(l)
	lua.CheckType(l, 2, lua.TypeTable)

	visual := tableString(l, 2, "visual", ctx.Template.DetonationTemplate)
	duration := time.Duration(tableNumber(l, 2, "duration_ms",
		float64(ctx.Template.DetonationDurationMs))) * time.Millisecond
	delay := time.Duration(tableNumber(l, 2, "attack_delay_ms",
		float64(ctx.Template.AttackDelayMs))) * time.Millisecond
	onStrike := tableString(l, 2, "on_strike", "")
	if onStrike == "" {
		lua.Errorf(l, "create_detonation: on_strike handler name is required")
		return 0
	}

	targets := tableTargetList(l, 2, "targets")
	if targets == nil && ctx.Targets != nil {
		targets = ctx.Targets.Targets
	}
	if err := ctx.CreateDetonation(visual, duration, delay, onStrike, targets); err != nil {
		lua.Errorf(l, "create_detonation: %s", err.Error())
		return 0
	}
	return 0
}

func contextAttack(l *lua.State) int {
	ctx := checkContext(l)
	id := model.ObjectID(lua.CheckInteger(l, 2))
	out := ctx.Attack(id)
	l.PushString(out.Tier.String())
	l.PushInteger(int(out.Magnitude))
	l.PushBoolean(out.Skipped)
	return 3
}

func pushTargetList(l *lua.State, targets []model.ObjectID) {
	l.CreateTable(len(targets), 0)
	for i, id := range targets {
		l.PushInteger(int(id))
		l.RawSetInt(-2, i+1)
	}
}

func tableNumber(l *lua.State, index int, key string, def float64) float64 {
	l.Field(index, key)
	defer l.Pop(1)
	if l.TypeOf(-1) == lua.TypeNil {
		return def
	}
	n, ok := l.ToNumber(-1)
	if !ok {
		return def
	}
	return n
}

func tableString(l *lua.State, index int, key string, def string) string {
	l.Field(index, key)
	defer l.Pop(1)
	if l.TypeOf(-1) == lua.TypeNil {
		return def
	}
	s, ok := l.ToString(-1)
	if !ok {
		return def
	}
	return s
}

func tableTargetList(l *lua.State, index int, key string) []model.ObjectID {
	l.Field(index, key)
	defer l.Pop(1)
	if l.TypeOf(-1) != lua.TypeTable {
		return nil
	}
	n := l.RawLength(-1)
	targets := make([]model.ObjectID, 0, n)
	for i := 1; i <= n; i++ {
		l.RawGetInt(-1, i)
		if id, ok := l.ToInteger(-1); ok {
			targets = append(targets, model.ObjectID(id))
		}
		l.Pop(1)
	}
	return targets
}
