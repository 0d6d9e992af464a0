package anim

import (
	"fmt"
	"time"

	"github.com/drakmor/spellgo/internal/model"
)

const (
	// MinTravelDuration is the clamp applied when origin and destination
	// coincide: the effect resolves near-immediately instead of dividing
	// by zero distance.
	MinTravelDuration = 10 * time.Millisecond

	// DefaultDriftDamping is the damping constant k for particle
	// counter-drift (drift = -velocity / k).
	DefaultDriftDamping = 5.0
)

// Travel describes projectile kinematics between two points: the duration a
// visual effect needs to cover the distance at the given speed, and the
// velocity used to parameterize its trajectory.
type Travel struct {
	Origin      model.Point
	Destination model.Point
	Distance    float64
	Duration    time.Duration
	Velocity    model.Vec
}

// ComputeTravel derives travel duration and velocity from distance and speed
// (units per second). Zero distance clamps the duration to MinTravelDuration.
// Non-positive speed is an authoring error and fails immediately.
func ComputeTravel(origin, dest model.Point, speed float64) (Travel, error) {
	if speed <= 0 {
		return Travel{}, fmt.Errorf("travel speed must be positive, got %v", speed)
	}

	dist := origin.Distance(dest)
	tr := Travel{Origin: origin, Destination: dest, Distance: dist}

	if dist == 0 {
		tr.Duration = MinTravelDuration
		return tr, nil
	}

	secs := dist / speed
	tr.Duration = time.Duration(secs * float64(time.Second))
	tr.Velocity = dest.Sub(origin).Div(secs)
	return tr, nil
}

// CounterDrift returns the velocity child particles need so they stay
// stationary relative to the world while their parent effect's origin tracks
// the moving projectile head. Damping <= 0 falls back to DefaultDriftDamping.
func (t Travel) CounterDrift(damping float64) model.Vec {
	if damping <= 0 {
		damping = DefaultDriftDamping
	}
	return t.Velocity.Scale(-1.0 / damping)
}
