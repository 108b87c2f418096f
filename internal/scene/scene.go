package scene

import (
	"github.com/gridfire/arena/internal/core/ident"
	"github.com/gridfire/arena/internal/data"
)

// Scene owns the entity pool, the identity registry, and the scene tree
// for one session. It is exclusively owned and mutated by the goroutine
// running that session's tick.
type Scene struct {
	root      *Node
	alloc     *ident.Allocator
	registry  *ident.Registry[*Entity]
	behaviors BehaviorTable
	defs      *data.EntityTable

	free         []*Entity // pooled entity structs awaiting reuse
	destroyQueue []*Entity
	scratch      []*Entity
}

func NewScene(defs *data.EntityTable, behaviors BehaviorTable) *Scene {
	if behaviors == nil {
		behaviors = BehaviorTable{}
	}
	return &Scene{
		root:      NewGroupNode(),
		alloc:     ident.NewAllocator(),
		registry:  ident.NewRegistry[*Entity](),
		behaviors: behaviors,
		defs:      defs,
		free:      make([]*Entity, 0, 64),
	}
}

func (s *Scene) Root() *Node { return s.root }

// Len returns the live entity count.
func (s *Scene) Len() int { return s.registry.Len() }

// Resolve returns the live entity holding id, or nil if the identity is
// unknown or has been released. It never panics.
func (s *Scene) Resolve(id ident.NetworkID) *Entity {
	e, ok := s.registry.Resolve(id)
	if !ok {
		return nil
	}
	return e
}

// Spawn allocates an entity from the pool under a fresh NetworkID. The
// entity is initialized from its kind's capability table but not yet part
// of the graph; callers position it and then Add it.
func (s *Scene) Spawn(kind data.Kind) *Entity {
	id := s.alloc.Allocate()
	e := s.init(id, kind)
	s.registry.Bind(id, e)
	return e
}

// SpawnBound allocates an entity under a server-assigned NetworkID (the
// client side of a Spawn message). It returns nil when the id is already
// live: exactly one live entity may hold an identity, so the caller
// drops the duplicate announcement.
func (s *Scene) SpawnBound(id ident.NetworkID, kind data.Kind) *Entity {
	if id.IsZero() {
		return nil
	}
	if _, exists := s.registry.Resolve(id); exists {
		return nil
	}
	e := s.init(id, kind)
	s.registry.Bind(id, e)
	return e
}

func (s *Scene) init(id ident.NetworkID, kind data.Kind) *Entity {
	var e *Entity
	if n := len(s.free); n > 0 {
		e = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		e = &Entity{}
	}
	e.ID = id
	e.Kind = kind
	e.scene = s
	e.node.entity = e
	if s.defs != nil {
		if def := s.defs.Get(kind); def != nil {
			e.Def = def
			e.Health = def.MaxHealth
		}
	}
	return e
}

// Add attaches the entity to the session root and fires its kind's
// OnAdded slot.
func (s *Scene) Add(e *Entity) {
	if e == nil || e.scene != s {
		panic("scene: Add requires an entity spawned from this scene")
	}
	e.node.Attach(s.root)
	if b := s.behaviors[e.Kind]; b != nil && b.OnAdded != nil {
		b.OnAdded(e)
	}
}

// MarkDestroy queues an entity for end-of-tick destruction. Duplicate
// marks are tolerated; destruction happens once.
func (s *Scene) MarkDestroy(e *Entity) {
	if e == nil || e.scene != s {
		return
	}
	s.destroyQueue = append(s.destroyQueue, e)
}

// FlushDestroyed destroys all queued entities. Called at the cleanup phase
// so systems never observe half-removed entities mid-tick.
func (s *Scene) FlushDestroyed() {
	for _, e := range s.destroyQueue {
		if e.scene == s {
			s.remove(e, true)
		}
	}
	s.destroyQueue = s.destroyQueue[:0]
}

// remove is the single destruction path: detach, optional OnRemoved,
// identity release, pool return.
func (s *Scene) remove(e *Entity, explicit bool) {
	e.node.Detach()
	if explicit {
		if b := s.behaviors[e.Kind]; b != nil && b.OnRemoved != nil {
			b.OnRemoved(e)
		}
	}
	s.registry.Release(e.ID)
	s.alloc.Release(e.ID)
	e.node.entity = nil
	e.reset()
	s.free = append(s.free, e)
}

// Update advances per-entity simulation for one tick over a stable
// snapshot, so behaviors may mark entities for destruction while running.
func (s *Scene) Update(elapsed float64) {
	s.scratch = s.scratch[:0]
	s.registry.Each(func(_ ident.NetworkID, e *Entity) {
		s.scratch = append(s.scratch, e)
	})
	for _, e := range s.scratch {
		e.Update(elapsed)
	}
}

// Each visits every live entity.
func (s *Scene) Each(fn func(*Entity)) {
	s.registry.Each(func(_ ident.NetworkID, e *Entity) {
		fn(e)
	})
}

// Teardown drops the whole graph during session shutdown. Scene-graph
// detachment and OnRemoved notification are skipped: teardown must not
// attempt per-entity network notification.
func (s *Scene) Teardown() {
	s.registry.Each(func(id ident.NetworkID, e *Entity) {
		s.registry.Release(id)
		s.alloc.Release(id)
		e.node.entity = nil
		e.reset()
	})
	s.root = NewGroupNode()
	s.destroyQueue = s.destroyQueue[:0]
	s.free = s.free[:0]
}
