package model

import "sync"

// Faction determines hostility between actors.
type Faction int8

const (
	FactionPlayer Faction = iota
	FactionHostile
	FactionNeutral
)

// Actor is a living entity in the area: identity, position and resource pools.
// The area owns every Actor; the ability pipeline holds only ObjectIDs and must
// re-check IsValid() before applying any effect, because the area may remove or
// kill an actor between a callback being scheduled and it firing.
type Actor struct {
	objectID ObjectID
	name     string
	faction  Faction

	mu        sync.RWMutex
	position  Point
	currentHP int32
	maxHP     int32
	accuracy  int32
	defenses  map[DefenseKind]int32
	removed   bool
}

// DefenseKind selects which defense stat an attack is rolled against.
type DefenseKind int8

const (
	DefenseReflex DefenseKind = iota
	DefenseFortitude
	DefenseWill
)

// String returns the defense name used in templates and logs.
func (d DefenseKind) String() string {
	switch d {
	case DefenseReflex:
		return "Reflex"
	case DefenseFortitude:
		return "Fortitude"
	case DefenseWill:
		return "Will"
	default:
		return "Unknown"
	}
}

// ParseDefenseKind parses a defense name from an ability template.
func ParseDefenseKind(s string) (DefenseKind, bool) {
	switch s {
	case "Reflex":
		return DefenseReflex, true
	case "Fortitude":
		return DefenseFortitude, true
	case "Will":
		return DefenseWill, true
	default:
		return 0, false
	}
}

// NewActor creates an actor with full HP at the given position.
func NewActor(objectID ObjectID, name string, faction Faction, pos Point, maxHP int32) *Actor {
	return &Actor{
		objectID:  objectID,
		name:      name,
		faction:   faction,
		position:  pos,
		currentHP: maxHP,
		maxHP:     maxHP,
		defenses:  make(map[DefenseKind]int32),
	}
}

// ObjectID returns the unique ID (immutable after creation).
func (a *Actor) ObjectID() ObjectID { return a.objectID }

// Name returns the actor name (immutable after creation).
func (a *Actor) Name() string { return a.name }

// Faction returns the actor faction (immutable after creation).
func (a *Actor) Faction() Faction { return a.faction }

// Position returns a copy of the actor position (value type).
func (a *Actor) Position() Point {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.position
}

// SetPosition moves the actor.
func (a *Actor) SetPosition(p Point) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.position = p
}

// CurrentHP returns current HP.
func (a *Actor) CurrentHP() int32 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.currentHP
}

// MaxHP returns maximum HP.
func (a *Actor) MaxHP() int32 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.maxHP
}

// ApplyHPDelta applies a signed delta to the HP pool, clamped to [0, maxHP].
// This is the single additive mutation the combat resolver performs.
func (a *Actor) ApplyHPDelta(delta int32) {
	a.mu.Lock()
	defer a.mu.Unlock()

	hp := a.currentHP + delta
	if hp < 0 {
		hp = 0
	}
	if hp > a.maxHP {
		hp = a.maxHP
	}
	a.currentHP = hp
}

// Accuracy returns the attack accuracy stat.
func (a *Actor) Accuracy() int32 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.accuracy
}

// SetAccuracy sets the attack accuracy stat.
func (a *Actor) SetAccuracy(v int32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.accuracy = v
}

// Defense returns the stat for the given defense kind (0 when unset).
func (a *Actor) Defense(kind DefenseKind) int32 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.defenses[kind]
}

// SetDefense sets the stat for the given defense kind.
func (a *Actor) SetDefense(kind DefenseKind, v int32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.defenses[kind] = v
}

// IsDead reports whether the actor's HP pool is exhausted.
func (a *Actor) IsDead() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.currentHP <= 0
}

// SetRemoved marks the actor as gone from the area.
// Called by the area on Remove; scheduled callbacks observe it via IsValid.
func (a *Actor) SetRemoved() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.removed = true
}

// IsValid reports whether the actor is still present in the area and alive.
// Every consumer of a weak actor reference must check this at fire time.
func (a *Actor) IsValid() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return !a.removed && a.currentHP > 0
}
