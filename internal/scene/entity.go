package scene

import (
	"github.com/gridfire/arena/internal/core/ident"
	"github.com/gridfire/arena/internal/data"
)

// Entity is the tagged-variant game object: one struct for every kind,
// with behavior selected by the capability table in its definition rather
// than a subclass hierarchy.
type Entity struct {
	node Node

	// ID never changes while the entity is alive. The scene owns the
	// identity; the entity holds a non-owning copy.
	ID   ident.NetworkID
	Kind data.Kind
	Def  *data.EntityDef

	Pos    Vec2
	Vel    Vec2
	Orient float64 // radians

	Health  int
	OwnerID uint32 // owning player id, 0 = unowned

	// TicksLeft counts down for time-limited entities (projectiles).
	// Zero means no expiry.
	TicksLeft int

	// FireCooldown gates the weapon capability between shots.
	FireCooldown int

	scene *Scene // weak back-reference, nil after destroy
}

// Node exposes the entity's scene-tree node.
func (e *Entity) Node() *Node { return &e.node }

// Scene returns the owning scene, nil once the entity is destroyed.
func (e *Entity) Scene() *Scene { return e.scene }

// Alive reports whether the entity still holds a live identity.
func (e *Entity) Alive() bool { return e.scene != nil }

// Update advances per-entity simulation for one tick. The default is a
// no-op; kinds customize it through their Behavior's Update slot (the
// avatar slot integrates velocity into position, for example).
func (e *Entity) Update(elapsed float64) {
	if e.scene == nil {
		return
	}
	if b := e.scene.behaviors[e.Kind]; b != nil && b.Update != nil {
		b.Update(e, elapsed)
	}
}

// Destroy detaches the entity from the graph, fires the kind's OnRemoved
// slot, and releases the identity back to the pool. Safe to call once; a
// second call is a no-op.
func (e *Entity) Destroy() {
	if e.scene == nil {
		return
	}
	e.scene.remove(e, true)
}

func (e *Entity) reset() {
	e.ID = 0
	e.Kind = data.KindNone
	e.Def = nil
	e.Pos = Vec2{}
	e.Vel = Vec2{}
	e.Orient = 0
	e.Health = 0
	e.OwnerID = 0
	e.TicksLeft = 0
	e.FireCooldown = 0
	e.scene = nil
}
