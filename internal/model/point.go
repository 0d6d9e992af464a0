package model

import "math"

// Point represents a position in the area's coordinate space.
// Value type, passed by value (immutable).
type Point struct {
	X float64
	Y float64
}

// NewPoint creates a Point at the given coordinates.
func NewPoint(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Vec is a 2D vector, used for velocities and drift terms.
type Vec struct {
	X float64
	Y float64
}

// Sub returns the vector from other to p.
func (p Point) Sub(other Point) Vec {
	return Vec{X: p.X - other.X, Y: p.Y - other.Y}
}

// Translate returns a new Point offset by v (immutable pattern).
func (p Point) Translate(v Vec) Point {
	return Point{X: p.X + v.X, Y: p.Y + v.Y}
}

// Distance returns the euclidean distance to another point.
func (p Point) Distance(other Point) float64 {
	return math.Sqrt(p.DistanceSquared(other))
}

// DistanceSquared returns the squared distance to another point (no sqrt for hot paths).
func (p Point) DistanceSquared(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return dx*dx + dy*dy
}

// Tile returns the integer tile containing the point.
func (p Point) Tile() (int, int) {
	return int(math.Floor(p.X)), int(math.Floor(p.Y))
}

// Scale returns v multiplied by s.
func (v Vec) Scale(s float64) Vec {
	return Vec{X: v.X * s, Y: v.Y * s}
}

// Div returns v divided by s. The caller guarantees s != 0.
func (v Vec) Div(s float64) Vec {
	return Vec{X: v.X / s, Y: v.Y / s}
}

// Len returns the vector length.
func (v Vec) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}
