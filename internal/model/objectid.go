package model

import "sync/atomic"

// ObjectID uniquely identifies an actor within an area.
// Zero is reserved for "no object".
type ObjectID uint32

// ObjectIDGenerator generates unique object IDs for all area entities.
// Centralized so casters, hostiles and summoned actors never collide.
type ObjectIDGenerator struct {
	next atomic.Uint32
}

// NewObjectIDGenerator creates a new ID generator starting above the reserved range.
func NewObjectIDGenerator() *ObjectIDGenerator {
	g := &ObjectIDGenerator{}
	g.next.Store(0x1000)
	return g
}

// Next generates the next unique object ID.
// Thread-safe via atomic increment.
func (g *ObjectIDGenerator) Next() ObjectID {
	return ObjectID(g.next.Add(1))
}
