package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/drakmor/spellgo/internal/config"
	"github.com/drakmor/spellgo/internal/game/ability"
	"github.com/drakmor/spellgo/internal/game/anim"
	"github.com/drakmor/spellgo/internal/game/combat"
	"github.com/drakmor/spellgo/internal/game/target"
	"github.com/drakmor/spellgo/internal/model"
	"github.com/drakmor/spellgo/internal/script"
	"github.com/drakmor/spellgo/internal/world"
)

const ConfigPath = "config/simulator.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("SPELLGO_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadRuntime(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Info("spellgo simulator starting", "log_level", cfg.LogLevel)

	templates, err := ability.LoadTemplates(cfg.AbilitiesPath)
	if err != nil {
		return fmt.Errorf("loading abilities: %w", err)
	}
	slog.Info("abilities loaded", "count", len(templates))

	tmpl, ok := templates["ember_charge"]
	if !ok {
		return fmt.Errorf("default ability ember_charge not found")
	}

	// Demo area: caster in one corner, a hostile cluster across the map,
	// a wall between them that free-select cannot land on.
	area := world.NewArea(40, 40)
	for y := 12; y < 16; y++ {
		area.Block(12, y)
	}

	ids := model.NewObjectIDGenerator()
	caster := model.NewActor(ids.Next(), "Vessa", model.FactionPlayer, model.NewPoint(5, 5), 4000)
	caster.SetAccuracy(60)
	area.Add(caster)

	hostiles := []*model.Actor{
		model.NewActor(ids.Next(), "gravel golem", model.FactionHostile, model.NewPoint(5, 14), 5000),
		model.NewActor(ids.Next(), "gravel golem", model.FactionHostile, model.NewPoint(6, 15), 5000),
		model.NewActor(ids.Next(), "shale golem", model.FactionHostile, model.NewPoint(4, 15), 6000),
	}
	for _, h := range hostiles {
		h.SetDefense(model.DefenseReflex, 30)
		h.SetDefense(model.DefenseFortitude, 45)
		area.Add(h)
	}

	resolver := combat.NewResolver(area, cfg.Rules)
	pipeline := ability.NewPipeline(area, resolver)

	animMgr := anim.NewManager(pipeline, time.Duration(cfg.TickIntervalMs)*time.Millisecond)
	pipeline.BindAnimManager(animMgr)

	host := script.NewHost(area, time.Duration(cfg.AnimationBaseTimeMs)*time.Millisecond)
	if err := host.LoadDir(cfg.ScriptsDir); err != nil {
		return fmt.Errorf("loading scripts: %w", err)
	}
	pipeline.SetScriptDispatcher(host)

	for _, t := range templates {
		if err := pipeline.RegisterAbility(t); err != nil {
			return fmt.Errorf("registering ability %s: %w", t.ID, err)
		}
	}

	// Count strikes so the scenario can stop once every target resolved.
	var resolved atomic.Int32
	resolver.SetHitObserver(func(hr combat.HitResult) {
		resolved.Add(1)
	})

	actCtx, err := pipeline.OnActivate(caster.ObjectID(), tmpl)
	if err != nil {
		return err
	}

	targets, err := actCtx.ActiveTargeter().AutoSelect()
	if err != nil {
		if errors.Is(err, target.ErrSelectionCancelled) {
			slog.Info("selection cancelled, nothing to do")
			return nil
		}
		return err
	}
	slog.Info("point selected",
		"x", targets.Point.X,
		"y", targets.Point.Y,
		"targets", len(targets.Targets))

	if err := pipeline.OnTargetSelect(actCtx, targets); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	runCtx, stopRun := context.WithCancel(gctx)
	defer stopRun()

	g.Go(func() error {
		if err := animMgr.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("anim manager: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		deadline := time.After(30 * time.Second)
		for {
			select {
			case <-runCtx.Done():
				return nil
			case <-deadline:
				stopRun()
				return fmt.Errorf("scenario timed out")
			case <-ticker.C:
				if int(resolved.Load()) >= len(targets.Targets) && animMgr.Live() == 0 {
					stopRun()
					return nil
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		return err
	}

	for _, h := range hostiles {
		slog.Info("scenario result",
			"target", h.Name(),
			"hp", h.CurrentHP(),
			"max_hp", h.MaxHP(),
			"dead", h.IsDead())
	}
	return nil
}

// parseLogLevel converts a string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
