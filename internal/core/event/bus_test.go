package event

import "testing"

type tickEvent struct{ n int }
type otherEvent struct{ s string }

func TestEventsDeliverOneTickLater(t *testing.T) {
	b := NewBus()
	var got []int
	Subscribe(b, func(e tickEvent) { got = append(got, e.n) })

	Emit(b, tickEvent{n: 1})
	b.DispatchAll()
	if len(got) != 0 {
		t.Fatalf("event visible in the tick it was emitted")
	}

	b.SwapBuffers()
	b.DispatchAll()
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("got = %v, want [1]", got)
	}

	// Nothing is redelivered on the next rotation.
	b.SwapBuffers()
	b.DispatchAll()
	if len(got) != 1 {
		t.Fatalf("event redelivered: %v", got)
	}
}

func TestStreamsStayTyped(t *testing.T) {
	b := NewBus()
	var ticks, others int
	Subscribe(b, func(tickEvent) { ticks++ })
	Subscribe(b, func(otherEvent) { others++ })

	Emit(b, tickEvent{n: 1})
	Emit(b, tickEvent{n: 2})
	Emit(b, otherEvent{s: "x"})
	b.SwapBuffers()
	b.DispatchAll()

	if ticks != 2 || others != 1 {
		t.Fatalf("ticks=%d others=%d, want 2 and 1", ticks, others)
	}
}

func TestAllHandlersSeeEachEvent(t *testing.T) {
	b := NewBus()
	var a, c int
	Subscribe(b, func(tickEvent) { a++ })
	Subscribe(b, func(tickEvent) { c++ })

	Emit(b, tickEvent{})
	b.SwapBuffers()
	b.DispatchAll()
	if a != 1 || c != 1 {
		t.Fatalf("a=%d c=%d, want both 1", a, c)
	}
}
