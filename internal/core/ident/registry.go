package ident

// Registry maps live NetworkIDs to their entities. No reflect, no
// interface{}, pure generics. The registry does not own allocation: the
// server pairs it with an Allocator, the client binds ids assigned by the
// server. Exactly one live entry may hold a given id at a time.
type Registry[E any] struct {
	entries map[NetworkID]E
}

func NewRegistry[E any]() *Registry[E] {
	return &Registry[E]{
		entries: make(map[NetworkID]E, 256),
	}
}

// Resolve returns the entity bound to id. The second result is false when
// the id is unknown or has been released; Resolve never panics.
func (r *Registry[E]) Resolve(id NetworkID) (E, bool) {
	e, ok := r.entries[id]
	return e, ok
}

// Bind associates id with e. Binding an id that is already live reports
// false and leaves the registry unchanged.
func (r *Registry[E]) Bind(id NetworkID, e E) bool {
	if id.IsZero() {
		return false
	}
	if _, exists := r.entries[id]; exists {
		return false
	}
	r.entries[id] = e
	return true
}

// Release removes id from the registry. Future Resolve calls for id fail.
func (r *Registry[E]) Release(id NetworkID) {
	delete(r.entries, id)
}

func (r *Registry[E]) Len() int {
	return len(r.entries)
}

func (r *Registry[E]) Each(fn func(NetworkID, E)) {
	for id, e := range r.entries {
		fn(id, e)
	}
}
