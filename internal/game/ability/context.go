package ability

import (
	"github.com/drakmor/spellgo/internal/game/anim"
	"github.com/drakmor/spellgo/internal/game/target"
	"github.com/drakmor/spellgo/internal/model"
	"github.com/drakmor/spellgo/internal/world"
)

// Context carries one ability activation through every stage of its
// pipeline. It is threaded explicitly from the activation into the scheduler
// and back into each fired handler — never global state. A single Context is
// shared by all stages of one activation, so the detonation handler sees the
// travel the projectile stage computed.
type Context struct {
	CasterID model.ObjectID
	Template *Template

	// Targets is the TargetSet produced by selection: the chosen point and
	// the ordered weak references gathered under the shape filter.
	Targets *target.TargetSet

	// Travel is set by the projectile stage and read by the detonation
	// stage for particle counter-drift.
	Travel anim.Travel

	Area     *world.Area
	pipeline *Pipeline
	targeter *target.Targeter
}

// Caster resolves the caster as a weak reference; the second return is false
// when the caster has left the area.
func (c *Context) Caster() (*model.Actor, bool) {
	return c.Area.Get(c.CasterID)
}
