package ident

import "testing"

func TestAllocateUnique(t *testing.T) {
	a := NewAllocator()
	seen := make(map[NetworkID]bool)
	for i := 0; i < 1000; i++ {
		id := a.Allocate()
		if id.IsZero() {
			t.Fatalf("allocated zero id at iteration %d", i)
		}
		if seen[id] {
			t.Fatalf("duplicate id %d among simultaneously live identities", id)
		}
		seen[id] = true
	}
	if got := a.Live(); got != 1000 {
		t.Fatalf("Live() = %d, want 1000", got)
	}
}

func TestIndexNotReusableUntilRelease(t *testing.T) {
	a := NewAllocator()
	first := a.Allocate()

	// No release: further allocations must not recycle the index.
	for i := 0; i < 10; i++ {
		id := a.Allocate()
		if id.Index() == first.Index() {
			t.Fatalf("index %d recycled before Release", first.Index())
		}
	}

	// After release the index is immediately reusable, under a new generation.
	a.Release(first)
	recycled := a.Allocate()
	if recycled.Index() != first.Index() {
		t.Fatalf("expected index %d to be recycled after Release, got %d",
			first.Index(), recycled.Index())
	}
	if recycled == first {
		t.Fatalf("recycled id must differ from released id (generation bump)")
	}
	if a.Alive(first) {
		t.Fatalf("released id still reported alive")
	}
	if !a.Alive(recycled) {
		t.Fatalf("recycled id not reported alive")
	}
}

func TestReleaseStaleIsNoop(t *testing.T) {
	a := NewAllocator()
	id := a.Allocate()
	a.Release(id)
	live := a.Live()
	a.Release(id) // stale: index already recycled to the free list
	if a.Live() != live {
		t.Fatalf("double Release changed live count")
	}
}

func TestResolveAfterRelease(t *testing.T) {
	r := NewRegistry[*string]()
	a := NewAllocator()

	v := "avatar"
	id := a.Allocate()
	if !r.Bind(id, &v) {
		t.Fatalf("Bind failed for fresh id")
	}
	if got, ok := r.Resolve(id); !ok || got != &v {
		t.Fatalf("Resolve(%d) = (%v, %v), want bound entity", id, got, ok)
	}

	r.Release(id)
	a.Release(id)
	if _, ok := r.Resolve(id); ok {
		t.Fatalf("Resolve succeeded after Release")
	}
}

func TestBindRejectsDuplicate(t *testing.T) {
	r := NewRegistry[int]()
	id := MakeID(7, 0)
	if !r.Bind(id, 1) {
		t.Fatalf("first Bind failed")
	}
	if r.Bind(id, 2) {
		t.Fatalf("second Bind for live id succeeded")
	}
	if got, _ := r.Resolve(id); got != 1 {
		t.Fatalf("duplicate Bind overwrote entry: got %d", got)
	}
	if r.Bind(0, 3) {
		t.Fatalf("Bind accepted zero id")
	}
}
