package target

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/drakmor/spellgo/internal/model"
	"github.com/drakmor/spellgo/internal/world"
)

// ErrSelectionCancelled aborts an ability activation: no valid point was
// selected, no TargetSet is produced, no resources are consumed.
var ErrSelectionCancelled = errors.New("target selection cancelled")

// Params configures a Targeter for one ability activation.
type Params struct {
	// MaxRange is the free-select radius around the caster (inclusive).
	MaxRange float64

	// FootprintSize is the passability footprint of the selected point in
	// tiles (default 1: the single tile under the point must be passable).
	FootprintSize int

	// Shape gathers affectable actors around the selected point.
	Shape Shape
}

// TargetSet is the outcome of a completed selection: the chosen point plus
// an ordered list of weak actor references gathered under the shape filter.
// Read-only after creation. References may dangle by the time a scheduled
// callback fires; consumers re-validate against the area.
type TargetSet struct {
	Point   model.Point
	Targets []model.ObjectID
}

// Targeter presents a free-point selection constrained to a maximum radius
// and a passability footprint around the caster, then applies a shape filter
// at the chosen point. It never mutates area state.
type Targeter struct {
	caster *model.Actor
	area   *world.Area
	params Params
}

// New builds a targeter bound to a caster. Malformed params are a fatal
// authoring error and surface here, before anything is scheduled.
func New(caster *model.Actor, area *world.Area, params Params) (*Targeter, error) {
	if caster == nil {
		return nil, fmt.Errorf("targeter: caster is nil")
	}
	if params.MaxRange <= 0 {
		return nil, fmt.Errorf("targeter: max range must be positive, got %v", params.MaxRange)
	}
	if params.Shape == nil {
		return nil, fmt.Errorf("targeter: shape is required")
	}
	if params.FootprintSize < 1 {
		params.FootprintSize = 1
	}
	return &Targeter{caster: caster, area: area, params: params}, nil
}

// SelectPoint completes the selection at p. The point must be within MaxRange
// of the caster and passable for the footprint; otherwise the selection is
// reported as cancelled and no TargetSet is produced.
func (t *Targeter) SelectPoint(p model.Point) (*TargetSet, error) {
	casterPos := t.caster.Position()
	if casterPos.DistanceSquared(p) > t.params.MaxRange*t.params.MaxRange {
		return nil, fmt.Errorf("%w: point out of range", ErrSelectionCancelled)
	}
	if !t.area.IsPassable(p, t.params.FootprintSize) {
		return nil, fmt.Errorf("%w: point not passable", ErrSelectionCancelled)
	}

	set := &TargetSet{Point: p}
	for _, actor := range t.area.Actors() {
		if !actor.IsValid() {
			continue
		}
		if t.params.Shape.Contains(p, actor.Position()) {
			set.Targets = append(set.Targets, actor.ObjectID())
		}
	}

	slog.Debug("targeter selection complete",
		"caster", t.caster.Name(),
		"point_x", p.X,
		"point_y", p.Y,
		"shape", t.params.Shape.Name(),
		"targets", len(set.Targets))

	return set, nil
}

// AutoSelect picks a point for AI casters: the position of the nearest valid
// hostile actor within range on a passable tile. Reports a cancelled
// selection when no such actor exists.
func (t *Targeter) AutoSelect() (*TargetSet, error) {
	casterPos := t.caster.Position()
	maxSq := t.params.MaxRange * t.params.MaxRange

	var best *model.Actor
	bestSq := maxSq + 1
	for _, actor := range t.area.Actors() {
		if !actor.IsValid() || actor.Faction() == t.caster.Faction() {
			continue
		}
		pos := actor.Position()
		if !t.area.IsPassable(pos, t.params.FootprintSize) {
			continue
		}
		if d := casterPos.DistanceSquared(pos); d <= maxSq && d < bestSq {
			best = actor
			bestSq = d
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: no hostile in range", ErrSelectionCancelled)
	}
	return t.SelectPoint(best.Position())
}

// Cancel reports the selection as cancelled by the host (user escape, AI
// giving up). Provided so callers share one abort path with SelectPoint.
func (t *Targeter) Cancel() error {
	return fmt.Errorf("%w: cancelled by host", ErrSelectionCancelled)
}
