package target

import (
	"fmt"

	"github.com/drakmor/spellgo/internal/model"
)

// Shape is a geometric footprint used to gather actors around a point.
type Shape interface {
	// Contains reports whether pos falls inside the shape centered at center.
	// The boundary is inclusive.
	Contains(center, pos model.Point) bool
	Name() string
}

// Circle is a round footprint. A "7x7 round" authoring spec maps to
// Circle{Radius: 3.5}; an actor exactly on the boundary is included.
type Circle struct {
	Radius float64
}

// Contains implements Shape with an inclusive boundary (dist <= radius).
func (c Circle) Contains(center, pos model.Point) bool {
	return center.DistanceSquared(pos) <= c.Radius*c.Radius
}

// Name implements Shape.
func (c Circle) Name() string { return fmt.Sprintf("round r=%.1f", c.Radius) }

// Square is an axis-aligned square footprint, inclusive on the boundary.
type Square struct {
	HalfSize float64
}

// Contains implements Shape.
func (s Square) Contains(center, pos model.Point) bool {
	dx := pos.X - center.X
	if dx < 0 {
		dx = -dx
	}
	dy := pos.Y - center.Y
	if dy < 0 {
		dy = -dy
	}
	return dx <= s.HalfSize && dy <= s.HalfSize
}

// Name implements Shape.
func (s Square) Name() string { return fmt.Sprintf("square half=%.1f", s.HalfSize) }

// ParseShape builds a Shape from an authoring spec: kind "round" or "square"
// with a footprint size in tiles (e.g. round size 7 → radius 3.5).
// Malformed specs are a fatal authoring error.
func ParseShape(kind string, size int) (Shape, error) {
	if size < 1 {
		return nil, fmt.Errorf("shape size must be >= 1, got %d", size)
	}
	half := float64(size) / 2.0
	switch kind {
	case "round":
		return Circle{Radius: half}, nil
	case "square":
		return Square{HalfSize: half}, nil
	default:
		return nil, fmt.Errorf("unknown shape kind %q", kind)
	}
}
