package event

import "sync"

// Bus is a double-buffered event bus. Events emitted in tick N are readable
// in tick N+1. SwapBuffers() is called at tick start by the pre-update
// phase. Streams are generic per event type; no reflection anywhere, same
// as the identity registry.
type Bus struct {
	mu      sync.Mutex // only protects stream/handler registration
	streams map[any]stream
	order   []stream
}

type stream interface {
	swap()
	dispatch()
}

type typedStream[T any] struct {
	front    []T
	back     []T
	handlers []func(T)
}

func (s *typedStream[T]) swap() {
	s.front, s.back = s.back, s.front[:0]
}

func (s *typedStream[T]) dispatch() {
	for _, ev := range s.front {
		for _, h := range s.handlers {
			h(ev)
		}
	}
}

func NewBus() *Bus {
	return &Bus{streams: make(map[any]stream, 8)}
}

// streamOf finds or creates the stream for T. The map key is a typed nil
// pointer: distinct event types box into distinct comparable keys.
func streamOf[T any](b *Bus) *typedStream[T] {
	k := any((*T)(nil))
	if s, ok := b.streams[k]; ok {
		return s.(*typedStream[T])
	}
	s := &typedStream[T]{}
	b.streams[k] = s
	b.order = append(b.order, s)
	return s
}

// Emit queues an event into the back buffer (readable next tick).
func Emit[T any](b *Bus, ev T) {
	s := streamOf[T](b)
	s.back = append(s.back, ev)
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := streamOf[T](b)
	s.handlers = append(s.handlers, fn)
}

// SwapBuffers rotates back to front and clears the new back buffer.
// Called once at tick start.
func (b *Bus) SwapBuffers() {
	for _, s := range b.order {
		s.swap()
	}
}

// DispatchAll delivers all front-buffer events to their subscribed
// handlers, in stream registration order.
func (b *Bus) DispatchAll() {
	for _, s := range b.order {
		s.dispatch()
	}
}
