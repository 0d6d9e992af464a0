package anim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drakmor/spellgo/internal/model"
)

func mustTimeline(t *testing.T, d time.Duration) *Timeline {
	t.Helper()
	tl, err := NewTimeline(d)
	require.NoError(t, err)
	return tl
}

func firedIDs(tl *Timeline, steps ...time.Duration) func() []string {
	var fired []string
	dispatch := func(cb *ScheduledCallback) {
		fired = append(fired, cb.HandlerID)
	}
	for _, step := range steps {
		tl.advance(step, dispatch)
	}
	return func() []string { return fired }
}

func TestNewTimeline_InvalidDuration(t *testing.T) {
	_, err := NewTimeline(0)
	assert.Error(t, err)
	_, err = NewTimeline(-time.Second)
	assert.Error(t, err)
}

func TestTimeline_FireOrder(t *testing.T) {
	tl := mustTimeline(t, time.Second)

	// Registered out of order; must fire in ascending fire-time order.
	require.NoError(t, tl.OnComplete("complete", nil))
	require.NoError(t, tl.OnUpdateAt(600*time.Millisecond, "late", nil))
	require.NoError(t, tl.OnUpdateAt(200*time.Millisecond, "early", nil))
	require.NoError(t, tl.activate())

	fired := firedIDs(tl, 2*time.Second)
	assert.Equal(t, []string{"early", "late", "complete"}, fired())
	assert.Equal(t, StateComplete, tl.State())
}

func TestTimeline_TiesBreakByRegistrationOrder(t *testing.T) {
	tl := mustTimeline(t, time.Second)

	// Same offset, independent target lists: one strike per target.
	require.NoError(t, tl.OnUpdateAt(300*time.Millisecond, "strike-a", []model.ObjectID{10}))
	require.NoError(t, tl.OnUpdateAt(300*time.Millisecond, "strike-b", []model.ObjectID{11}))
	require.NoError(t, tl.activate())

	fired := firedIDs(tl, time.Second)
	assert.Equal(t, []string{"strike-a", "strike-b"}, fired())
}

func TestTimeline_ExactlyOnce(t *testing.T) {
	tl := mustTimeline(t, time.Second)
	require.NoError(t, tl.OnUpdateAt(100*time.Millisecond, "once", nil))
	require.NoError(t, tl.activate())

	fired := firedIDs(tl, 150*time.Millisecond, 150*time.Millisecond, time.Second)
	assert.Equal(t, []string{"once"}, fired())
}

func TestTimeline_OffsetBounds(t *testing.T) {
	tl := mustTimeline(t, time.Second)

	assert.Error(t, tl.OnUpdateAt(-time.Millisecond, "neg", nil))
	assert.Error(t, tl.OnUpdateAt(time.Second+time.Millisecond, "past-end", nil))
	assert.NoError(t, tl.OnUpdateAt(0, "at-start", nil))
	assert.NoError(t, tl.OnUpdateAt(time.Second, "at-end", nil))
}

func TestTimeline_NoRegistrationAfterActivate(t *testing.T) {
	tl := mustTimeline(t, time.Second)
	require.NoError(t, tl.activate())

	assert.Error(t, tl.OnComplete("late", nil))
	assert.Error(t, tl.OnUpdateAt(100*time.Millisecond, "late", nil))
	assert.Error(t, tl.activate(), "double activate")
}

func TestTimeline_CancelDiscardsUnfired(t *testing.T) {
	tl := mustTimeline(t, time.Second)
	require.NoError(t, tl.OnUpdateAt(500*time.Millisecond, "strike", nil))
	require.NoError(t, tl.activate())

	var fired []string
	dispatch := func(cb *ScheduledCallback) { fired = append(fired, cb.HandlerID) }

	tl.advance(200*time.Millisecond, dispatch)
	tl.Cancel()
	tl.advance(time.Second, dispatch)

	assert.Empty(t, fired, "cancelled timeline must never fire")
	assert.Equal(t, StateComplete, tl.State())

	// Cancel is idempotent.
	tl.Cancel()

	// A recreated timeline with the same parameters carries no state over.
	fresh := mustTimeline(t, time.Second)
	require.NoError(t, fresh.OnUpdateAt(500*time.Millisecond, "strike", nil))
	require.NoError(t, fresh.activate())
	freshFired := firedIDs(fresh, time.Second)
	assert.Equal(t, []string{"strike"}, freshFired())
}

func TestTimeline_PanicIsolation(t *testing.T) {
	tl := mustTimeline(t, time.Second)
	require.NoError(t, tl.OnUpdateAt(100*time.Millisecond, "faulty", nil))
	require.NoError(t, tl.OnUpdateAt(100*time.Millisecond, "sibling", nil))
	require.NoError(t, tl.OnComplete("complete", nil))
	require.NoError(t, tl.activate())

	var fired []string
	dispatch := func(cb *ScheduledCallback) {
		if cb.HandlerID == "faulty" {
			panic("handler exploded")
		}
		fired = append(fired, cb.HandlerID)
	}

	tl.advance(2*time.Second, dispatch)

	// The fault stays local to its callback; siblings and later callbacks fire.
	assert.Equal(t, []string{"sibling", "complete"}, fired)
	assert.Equal(t, StateComplete, tl.State())
}

func TestTimeline_StateString(t *testing.T) {
	tl := mustTimeline(t, time.Second)
	assert.Equal(t, "pending", tl.State().String())
	require.NoError(t, tl.activate())
	assert.Equal(t, "active", tl.State().String())
	tl.Cancel()
	assert.Equal(t, "complete", tl.State().String())
}
