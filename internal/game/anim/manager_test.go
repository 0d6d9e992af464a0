package anim

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingDispatcher collects dispatched invocations and can chain new
// timelines from inside a handler, like the detonation stage does.
type recordingDispatcher struct {
	calls   []string
	failOn  string
	chainOn string
	mgr     *Manager
}

func (d *recordingDispatcher) Dispatch(handlerID string, inv Invocation) error {
	d.calls = append(d.calls, handlerID)
	if handlerID == d.failOn {
		return errors.New("handler fault")
	}
	if handlerID == d.chainOn && d.mgr != nil {
		child, _ := NewTimeline(300 * time.Millisecond)
		_ = child.OnUpdateAt(100*time.Millisecond, "child-strike", nil)
		_, _ = d.mgr.Register(child)
	}
	return nil
}

func TestManager_AdvanceFiresThroughDispatcher(t *testing.T) {
	d := &recordingDispatcher{}
	m := NewManager(d, 50*time.Millisecond)

	tl := mustTimeline(t, time.Second)
	require.NoError(t, tl.OnComplete("detonate", nil))

	id, err := m.Register(tl)
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Equal(t, 1, m.Live())

	m.AdvanceAll(time.Second)

	assert.Equal(t, []string{"detonate"}, d.calls)
	assert.Equal(t, 0, m.Live(), "completed timeline released")
}

func TestManager_RegisterRejectsActive(t *testing.T) {
	m := NewManager(&recordingDispatcher{}, 50*time.Millisecond)

	tl := mustTimeline(t, time.Second)
	_, err := m.Register(tl)
	require.NoError(t, err)

	_, err = m.Register(tl)
	assert.Error(t, err, "a timeline registers once")

	_, err = m.Register(nil)
	assert.Error(t, err)
}

func TestManager_ChainedTimelineAdvancesNextPass(t *testing.T) {
	d := &recordingDispatcher{chainOn: "detonate"}
	m := NewManager(d, 50*time.Millisecond)
	d.mgr = m

	tl := mustTimeline(t, time.Second)
	require.NoError(t, tl.OnComplete("detonate", nil))
	_, err := m.Register(tl)
	require.NoError(t, err)

	// First pass completes the parent and registers the child; the child
	// must not advance within the same pass.
	m.AdvanceAll(time.Second)
	assert.Equal(t, []string{"detonate"}, d.calls)
	assert.Equal(t, 1, m.Live())

	m.AdvanceAll(100 * time.Millisecond)
	assert.Equal(t, []string{"detonate", "child-strike"}, d.calls)

	m.AdvanceAll(200 * time.Millisecond)
	assert.Equal(t, 0, m.Live())
}

func TestManager_HandlerErrorDoesNotStopSiblings(t *testing.T) {
	d := &recordingDispatcher{failOn: "strike-a"}
	m := NewManager(d, 50*time.Millisecond)

	tl := mustTimeline(t, time.Second)
	require.NoError(t, tl.OnUpdateAt(100*time.Millisecond, "strike-a", nil))
	require.NoError(t, tl.OnUpdateAt(100*time.Millisecond, "strike-b", nil))
	_, err := m.Register(tl)
	require.NoError(t, err)

	m.AdvanceAll(200 * time.Millisecond)

	assert.Equal(t, []string{"strike-a", "strike-b"}, d.calls)
}

func TestManager_CancelPreventsFiring(t *testing.T) {
	d := &recordingDispatcher{}
	m := NewManager(d, 50*time.Millisecond)

	tl := mustTimeline(t, time.Second)
	require.NoError(t, tl.OnUpdateAt(500*time.Millisecond, "strike", nil))
	id, err := m.Register(tl)
	require.NoError(t, err)

	m.AdvanceAll(200 * time.Millisecond)
	m.Cancel(id)
	m.AdvanceAll(2 * time.Second)

	assert.Empty(t, d.calls, "no callback fires after cancellation")
	assert.Equal(t, 0, m.Live())

	// Unknown ids are a no-op.
	m.Cancel(id)
	m.Cancel(99999)
}

func TestManager_StopIsIdempotent(t *testing.T) {
	m := NewManager(&recordingDispatcher{}, 50*time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- m.Run(context.Background()) }()

	m.Stop()
	m.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestManager_CancelAll(t *testing.T) {
	d := &recordingDispatcher{}
	m := NewManager(d, 50*time.Millisecond)

	for i := 0; i < 3; i++ {
		tl := mustTimeline(t, time.Second)
		require.NoError(t, tl.OnComplete("done", nil))
		_, err := m.Register(tl)
		require.NoError(t, err)
	}
	require.Equal(t, 3, m.Live())

	m.CancelAll()
	m.AdvanceAll(2 * time.Second)

	assert.Empty(t, d.calls)
	assert.Equal(t, 0, m.Live())
}
