package anim

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/drakmor/spellgo/internal/model"
)

// TriggerKind selects when a scheduled callback fires on its timeline.
type TriggerKind int8

const (
	// TriggerOnComplete fires once, when the timeline clock reaches its
	// total duration.
	TriggerOnComplete TriggerKind = iota

	// TriggerOnUpdateAt fires once, at a fixed offset into the timeline.
	TriggerOnUpdateAt
)

// State is the timeline lifecycle. There is no transition back to Pending;
// cancellation moves directly to Complete without firing remaining callbacks.
type State int8

const (
	StatePending State = iota // callbacks registering
	StateActive               // clock running
	StateComplete             // all callbacks fired or discarded
)

// String returns the state name for logs.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateActive:
		return "active"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// ScheduledCallback is one (trigger, targets, handler, fire-time) entry owned
// by its Timeline. It never outlives the timeline and fires at most once.
type ScheduledCallback struct {
	Kind      TriggerKind
	FireAt    time.Duration
	HandlerID string
	Targets   []model.ObjectID

	seq   int
	fired bool
}

// Invocation is the payload delivered to a handler when its callback fires.
// Ctx is the opaque ability context threaded through the scheduler (set on
// the timeline by whoever built it), never global state.
type Invocation struct {
	Ctx      any
	Targets  []model.ObjectID
	Timeline *Timeline
}

// Dispatcher resolves a handler identifier and invokes it. Injected into the
// Manager so the scheduler stays independent of the ability package.
type Dispatcher interface {
	Dispatch(handlerID string, inv Invocation) error
}

// Timeline is one scheduled effect instance with its own relative clock.
// Callers register callbacks while Pending, then the manager activates it and
// advances its clock once per tick. Callbacks fire exactly once, in ascending
// fire-time order, ties broken by registration order. Time offsets are always
// relative to this timeline, never to a parent stage.
type Timeline struct {
	// Visual parameterization read by the host renderer; opaque here.
	Template string
	Origin   model.Point
	Velocity model.Vec
	Drift    model.Vec

	// Ctx is carried into every Invocation dispatched from this timeline.
	Ctx any

	id        uint64
	duration  time.Duration
	state     State
	elapsed   time.Duration
	callbacks []*ScheduledCallback
	sorted    bool
}

// NewTimeline creates a Pending timeline with total duration d.
func NewTimeline(d time.Duration) (*Timeline, error) {
	if d <= 0 {
		return nil, fmt.Errorf("timeline duration must be positive, got %v", d)
	}
	return &Timeline{duration: d, state: StatePending}, nil
}

// ID returns the manager-assigned id (0 until registered).
func (t *Timeline) ID() uint64 { return t.id }

// Duration returns the total timeline duration.
func (t *Timeline) Duration() time.Duration { return t.duration }

// State returns the current lifecycle state.
func (t *Timeline) State() State { return t.state }

// OnComplete registers a callback firing when the clock reaches the total
// duration. Only valid while Pending.
func (t *Timeline) OnComplete(handlerID string, targets []model.ObjectID) error {
	return t.register(&ScheduledCallback{
		Kind:      TriggerOnComplete,
		FireAt:    t.duration,
		HandlerID: handlerID,
		Targets:   targets,
	})
}

// OnUpdateAt registers a callback firing once at the given offset. The same
// offset may be registered multiple times with independent target lists —
// this is how a detonation dispatches one attack callback per target.
func (t *Timeline) OnUpdateAt(offset time.Duration, handlerID string, targets []model.ObjectID) error {
	if offset < 0 || offset > t.duration {
		return fmt.Errorf("callback offset %v outside timeline [0, %v]", offset, t.duration)
	}
	return t.register(&ScheduledCallback{
		Kind:      TriggerOnUpdateAt,
		FireAt:    offset,
		HandlerID: handlerID,
		Targets:   targets,
	})
}

func (t *Timeline) register(cb *ScheduledCallback) error {
	if t.state != StatePending {
		return fmt.Errorf("cannot register callback on %s timeline", t.state)
	}
	cb.seq = len(t.callbacks)
	t.callbacks = append(t.callbacks, cb)
	t.sorted = false
	return nil
}

// activate starts the clock. Called by the manager on Register.
func (t *Timeline) activate() error {
	if t.state != StatePending {
		return fmt.Errorf("cannot activate %s timeline", t.state)
	}
	t.state = StateActive
	if !t.sorted {
		sort.SliceStable(t.callbacks, func(i, j int) bool {
			if t.callbacks[i].FireAt != t.callbacks[j].FireAt {
				return t.callbacks[i].FireAt < t.callbacks[j].FireAt
			}
			return t.callbacks[i].seq < t.callbacks[j].seq
		})
		t.sorted = true
	}
	return nil
}

// Cancel discards all unfired callbacks and moves the timeline to Complete.
// Idempotent; a cancelled timeline never fires anything again, and a later
// timeline built with the same parameters starts with no carryover state.
func (t *Timeline) Cancel() {
	if t.state == StateComplete {
		return
	}
	t.state = StateComplete
	slog.Debug("timeline cancelled", "template", t.Template, "elapsed", t.elapsed)
}

// advance moves the clock forward and fires due callbacks through dispatch.
// A handler fault is isolated at this boundary: it is recovered, logged, and
// does not prevent sibling callbacks from firing. Returns true once the
// timeline is Complete.
func (t *Timeline) advance(delta time.Duration, dispatch func(*ScheduledCallback)) bool {
	if t.state != StateActive {
		return t.state == StateComplete
	}

	t.elapsed += delta
	for _, cb := range t.callbacks {
		if cb.fired || cb.FireAt > t.elapsed {
			continue
		}
		cb.fired = true
		t.fire(cb, dispatch)

		// Cancelled from inside a handler: discard the rest.
		if t.state == StateComplete {
			return true
		}
	}

	if t.elapsed >= t.duration {
		t.state = StateComplete
	}
	return t.state == StateComplete
}

func (t *Timeline) fire(cb *ScheduledCallback, dispatch func(*ScheduledCallback)) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("callback handler panicked",
				"handler", cb.HandlerID,
				"template", t.Template,
				"fire_at", cb.FireAt,
				"panic", r)
		}
	}()
	dispatch(cb)
}
