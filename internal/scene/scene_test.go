package scene

import (
	"testing"

	"github.com/gridfire/arena/internal/data"
)

const testDefs = `
entities:
  - name: avatar
    kind: avatar
    max_health: 100
    movement: { max_speed: 240 }
    collision: { radius: 14 }
    weapon: { projectile_speed: 600, cooldown_ticks: 6, damage: 25, lifetime_ticks: 45 }
  - name: bolt
    kind: projectile
    movement: { max_speed: 600 }
    collision: { radius: 3 }
  - name: medkit
    kind: collectible
    points: 5
    collision: { radius: 10 }
`

func testTable(t *testing.T) *data.EntityTable {
	t.Helper()
	tbl, err := data.ParseEntityTable([]byte(testDefs))
	if err != nil {
		t.Fatalf("parse test defs: %v", err)
	}
	return tbl
}

func TestAttachDetach(t *testing.T) {
	root := NewGroupNode()
	a := NewGroupNode()
	b := NewGroupNode()

	a.Attach(root)
	b.Attach(a)
	if !a.Attached() || a.Parent() != root {
		t.Fatalf("a not attached to root")
	}
	if len(root.Children()) != 1 || len(a.Children()) != 1 {
		t.Fatalf("child lists wrong: root=%d a=%d", len(root.Children()), len(a.Children()))
	}

	// Re-attach moves the node; it never has two parents.
	b.Attach(root)
	if len(a.Children()) != 0 || b.Parent() != root {
		t.Fatalf("re-attach did not move node")
	}

	b.Detach()
	if b.Attached() || len(root.Children()) != 1 {
		t.Fatalf("detach left node linked")
	}
	b.Detach() // no-op
}

func TestAddFiresOnAddedOnly(t *testing.T) {
	var added, removed int
	behaviors := BehaviorTable{
		data.KindAvatar: {
			OnAdded:   func(*Entity) { added++ },
			OnRemoved: func(*Entity) { removed++ },
		},
	}
	s := NewScene(testTable(t), behaviors)

	e := s.Spawn(data.KindAvatar)
	if added != 0 {
		t.Fatalf("OnAdded fired before Add")
	}
	s.Add(e)
	if added != 1 || removed != 0 {
		t.Fatalf("after Add: added=%d removed=%d", added, removed)
	}
	if !e.Node().Attached() || e.Node().Parent() != s.Root() {
		t.Fatalf("Add did not attach to session root")
	}

	e.Destroy()
	if removed != 1 {
		t.Fatalf("OnRemoved fired %d times, want 1", removed)
	}
	e.Destroy() // second destroy is a no-op
	if removed != 1 {
		t.Fatalf("double Destroy re-fired OnRemoved")
	}
}

func TestResolveAfterDestroy(t *testing.T) {
	s := NewScene(testTable(t), nil)
	e := s.Spawn(data.KindCollectible)
	s.Add(e)
	id := e.ID

	if s.Resolve(id) != e {
		t.Fatalf("Resolve did not return live entity")
	}
	e.Destroy()
	if s.Resolve(id) != nil {
		t.Fatalf("Resolve returned destroyed entity")
	}
}

func TestIdentityUniqueAndPooled(t *testing.T) {
	s := NewScene(testTable(t), nil)

	a := s.Spawn(data.KindAvatar)
	s.Add(a)
	first := a.ID

	// Detach alone is not release: the identity stays live and the index
	// stays unavailable.
	a.Node().Detach()
	b := s.Spawn(data.KindAvatar)
	if b.ID == first || b.ID.Index() == first.Index() {
		t.Fatalf("identity recycled without Release")
	}
	if s.Resolve(first) != a {
		t.Fatalf("detached entity no longer resolvable")
	}

	// Destroy releases; the index is immediately reusable under a new
	// generation.
	a.Destroy()
	c := s.Spawn(data.KindAvatar)
	if c.ID.Index() != first.Index() {
		t.Fatalf("index %d not recycled after release, got %d", first.Index(), c.ID.Index())
	}
	if c.ID == first {
		t.Fatalf("recycled identity equals released identity")
	}
	if s.Resolve(first) != nil {
		t.Fatalf("stale identity resolves after recycling")
	}
}

func TestSpawnBoundRejectsDuplicate(t *testing.T) {
	s := NewScene(testTable(t), nil)
	e := s.SpawnBound(77, data.KindProjectile)
	if e == nil {
		t.Fatalf("SpawnBound failed for fresh id")
	}
	if dup := s.SpawnBound(77, data.KindProjectile); dup != nil {
		t.Fatalf("SpawnBound accepted duplicate live identity")
	}
	if s.SpawnBound(0, data.KindProjectile) != nil {
		t.Fatalf("SpawnBound accepted zero identity")
	}
}

func TestUpdateDispatchesBehaviorSlot(t *testing.T) {
	behaviors := BehaviorTable{
		data.KindAvatar: {
			Update: func(e *Entity, elapsed float64) {
				e.Pos = e.Pos.Add(e.Vel.Scale(elapsed))
			},
		},
	}
	s := NewScene(testTable(t), behaviors)

	av := s.Spawn(data.KindAvatar)
	av.Pos = Vec2{X: 10, Y: 10}
	av.Vel = Vec2{X: 100, Y: -50}
	s.Add(av)

	med := s.Spawn(data.KindCollectible)
	med.Pos = Vec2{X: 5, Y: 5}
	s.Add(med)

	s.Update(0.1)
	if av.Pos.X != 20 || av.Pos.Y != 5 {
		t.Fatalf("avatar did not integrate velocity: %+v", av.Pos)
	}
	// No Update slot registered for collectibles: default no-op.
	if med.Pos.X != 5 || med.Pos.Y != 5 {
		t.Fatalf("collectible moved without an update slot: %+v", med.Pos)
	}
}

func TestMarkDestroyFlushed(t *testing.T) {
	s := NewScene(testTable(t), nil)
	e := s.Spawn(data.KindProjectile)
	s.Add(e)
	id := e.ID

	s.MarkDestroy(e)
	s.MarkDestroy(e) // duplicate marks tolerated
	if s.Resolve(id) == nil {
		t.Fatalf("entity destroyed before flush")
	}
	s.FlushDestroyed()
	if s.Resolve(id) != nil || s.Len() != 0 {
		t.Fatalf("flush did not destroy queued entity")
	}
}

func TestTeardownSkipsCallbacks(t *testing.T) {
	var removed int
	behaviors := BehaviorTable{
		data.KindAvatar: {OnRemoved: func(*Entity) { removed++ }},
	}
	s := NewScene(testTable(t), behaviors)
	for i := 0; i < 5; i++ {
		s.Add(s.Spawn(data.KindAvatar))
	}

	s.Teardown()
	if removed != 0 {
		t.Fatalf("teardown fired OnRemoved %d times", removed)
	}
	if s.Len() != 0 {
		t.Fatalf("entities survived teardown: %d", s.Len())
	}
	if len(s.Root().Children()) != 0 {
		t.Fatalf("root kept children after teardown")
	}
}
