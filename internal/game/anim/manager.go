package anim

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Manager owns all live timelines and drives their clocks from a single tick
// loop. Callback firing is synchronous with respect to the tick; a handler
// invoked from one timeline may register new timelines (chaining), and those
// start advancing on the next tick, each with its own relative clock.
type Manager struct {
	dispatcher Dispatcher
	interval   time.Duration

	mu        sync.Mutex
	nextID    uint64
	timelines map[uint64]*Timeline
	order     []uint64

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewManager creates a manager that dispatches fired callbacks through d.
// interval is the tick period used by Run.
func NewManager(d Dispatcher, interval time.Duration) *Manager {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	return &Manager{
		dispatcher: d,
		interval:   interval,
		timelines:  make(map[uint64]*Timeline),
		stopCh:     make(chan struct{}),
	}
}

// Register activates a Pending timeline and begins advancing it.
// Returns the assigned timeline id.
func (m *Manager) Register(t *Timeline) (uint64, error) {
	if t == nil {
		return 0, fmt.Errorf("nil timeline")
	}
	if err := t.activate(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	t.id = m.nextID
	m.timelines[t.id] = t
	m.order = append(m.order, t.id)

	slog.Debug("timeline registered",
		"id", t.id,
		"template", t.Template,
		"duration", t.Duration(),
		"callbacks", len(t.callbacks))
	return t.id, nil
}

// Cancel destroys a live timeline early: unfired callbacks are discarded with
// no further side effects. Safe to call for unknown or completed ids.
func (m *Manager) Cancel(id uint64) {
	m.mu.Lock()
	t, ok := m.timelines[id]
	m.mu.Unlock()
	if !ok {
		return
	}
	t.Cancel()
	m.release(id)
}

// CancelAll cancels every live timeline (area unload, caster removed).
func (m *Manager) CancelAll() {
	for _, t := range m.snapshot() {
		t.Cancel()
		m.release(t.id)
	}
}

// Live returns the number of timelines still advancing.
func (m *Manager) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timelines)
}

// AdvanceAll moves every live timeline forward by delta and releases the
// completed ones. Timelines registered by handlers during this pass are not
// advanced until the next pass.
func (m *Manager) AdvanceAll(delta time.Duration) {
	for _, t := range m.snapshot() {
		done := t.advance(delta, func(cb *ScheduledCallback) {
			if err := m.dispatcher.Dispatch(cb.HandlerID, Invocation{
				Ctx:      t.Ctx,
				Targets:  cb.Targets,
				Timeline: t,
			}); err != nil {
				// Handler faults stay local to the callback.
				slog.Warn("callback handler failed",
					"handler", cb.HandlerID,
					"template", t.Template,
					"err", err)
			}
		})
		if done {
			m.release(t.id)
		}
	}
}

// Run drives AdvanceAll from a ticker until the context is cancelled or Stop
// is called.
func (m *Manager) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	slog.Info("anim manager started", "interval", m.interval)

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			slog.Info("anim manager stopping")
			return ctx.Err()

		case <-m.stopCh:
			slog.Info("anim manager stopped")
			return nil

		case now := <-ticker.C:
			m.AdvanceAll(now.Sub(last))
			last = now
		}
	}
}

// Stop terminates the Run loop. Safe to call more than once.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
	})
}

func (m *Manager) snapshot() []*Timeline {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]*Timeline, 0, len(m.order))
	for _, id := range m.order {
		if t, ok := m.timelines[id]; ok {
			result = append(result, t)
		}
	}
	return result
}

func (m *Manager) release(id uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.timelines[id]; !ok {
		return
	}
	delete(m.timelines, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}
