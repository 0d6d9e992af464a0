package world

import (
	"sync"

	"github.com/drakmor/spellgo/internal/model"
)

// Area owns every actor and the passability grid for one playable map.
//
// Enumeration order is insertion order, so a shape query over the candidate
// pool is deterministic for a given area snapshot. The grid is authored once
// (Block calls) before the scenario runs; actors come and go at runtime.
type Area struct {
	width  int
	height int

	mu      sync.RWMutex
	actors  map[model.ObjectID]*model.Actor
	ordered []model.ObjectID
	blocked map[[2]int]bool
}

// NewArea creates an empty area of width×height tiles.
// Tiles outside the bounds are impassable.
func NewArea(width, height int) *Area {
	return &Area{
		width:   width,
		height:  height,
		actors:  make(map[model.ObjectID]*model.Actor),
		blocked: make(map[[2]int]bool),
	}
}

// Width returns the area width in tiles.
func (a *Area) Width() int { return a.width }

// Height returns the area height in tiles.
func (a *Area) Height() int { return a.height }

// Add registers an actor. Later Actors() calls enumerate in Add order.
func (a *Area) Add(actor *model.Actor) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := actor.ObjectID()
	if _, exists := a.actors[id]; exists {
		return
	}
	a.actors[id] = actor
	a.ordered = append(a.ordered, id)
}

// Remove unregisters an actor and marks it invalid, so any scheduled
// callback still holding its ID resolves to a skip.
func (a *Area) Remove(id model.ObjectID) {
	a.mu.Lock()
	defer a.mu.Unlock()

	actor, ok := a.actors[id]
	if !ok {
		return
	}
	actor.SetRemoved()
	delete(a.actors, id)
	for i, oid := range a.ordered {
		if oid == id {
			a.ordered = append(a.ordered[:i], a.ordered[i+1:]...)
			break
		}
	}
}

// Get resolves a weak actor reference. The second return is false when the
// actor has been removed; a live pointer may still be dead — callers that
// are about to mutate must use model.Actor.IsValid.
func (a *Area) Get(id model.ObjectID) (*model.Actor, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	actor, ok := a.actors[id]
	return actor, ok
}

// Actors returns all actors in insertion order.
func (a *Area) Actors() []*model.Actor {
	a.mu.RLock()
	defer a.mu.RUnlock()

	result := make([]*model.Actor, 0, len(a.ordered))
	for _, id := range a.ordered {
		result = append(result, a.actors[id])
	}
	return result
}

// Block marks a tile impassable (authoring-time obstacle).
func (a *Area) Block(x, y int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.blocked[[2]int{x, y}] = true
}

// IsPassable reports whether a footprint of size×size tiles anchored at the
// tile containing p fits entirely on unblocked, in-bounds tiles.
func (a *Area) IsPassable(p model.Point, size int) bool {
	if size < 1 {
		size = 1
	}
	tx, ty := p.Tile()

	a.mu.RLock()
	defer a.mu.RUnlock()

	for dy := 0; dy < size; dy++ {
		for dx := 0; dx < size; dx++ {
			x, y := tx+dx, ty+dy
			if x < 0 || y < 0 || x >= a.width || y >= a.height {
				return false
			}
			if a.blocked[[2]int{x, y}] {
				return false
			}
		}
	}
	return true
}
