package scene

import "github.com/gridfire/arena/internal/data"

// Behavior holds the user-supplied callback slots for one entity kind.
// These fire only on explicit add/remove and per-tick update, never on
// whole-graph teardown, which must not attempt per-entity notification
// during session shutdown. Graph bookkeeping itself is fixed in Node and
// cannot be customized here.
type Behavior struct {
	OnAdded   func(e *Entity)
	OnRemoved func(e *Entity)
	Update    func(e *Entity, elapsed float64)
}

// BehaviorTable maps entity kinds to their callback slots.
type BehaviorTable map[data.Kind]*Behavior
