package seq

import (
	"testing"

	"go.uber.org/zap"
)

func TestAcceptMonotonic(t *testing.T) {
	var s Stream
	if s.State() != Idle {
		t.Fatalf("fresh stream not Idle")
	}

	if !s.Accept(5) {
		t.Fatalf("Accept(5) on fresh stream rejected")
	}
	if s.State() != Accepting || s.Last() != 5 {
		t.Fatalf("after accept: state=%v last=%d", s.State(), s.Last())
	}

	// Non-increasing sequence numbers never advance the stream.
	for _, n := range []uint32{5, 4, 3, 0, 5} {
		if s.Accept(n) {
			t.Errorf("Accept(%d) succeeded with last=5", n)
		}
		if s.Last() != 5 {
			t.Fatalf("rejection mutated last: %d", s.Last())
		}
	}

	if !s.Accept(6) {
		t.Fatalf("Accept(6) rejected")
	}
	if s.Last() != 6 {
		t.Fatalf("last = %d, want 6", s.Last())
	}
}

func TestAcceptZeroOnIdle(t *testing.T) {
	var s Stream
	if s.Accept(0) {
		t.Fatalf("Accept(0) succeeded on Idle stream")
	}
	if s.State() != Idle {
		t.Fatalf("rejected delivery changed stream state")
	}
}

func TestScenarioFiveThreeSeven(t *testing.T) {
	tr := NewTracker(zap.NewNop())
	const entity = 42

	results := []bool{
		tr.Accept(entity, FieldTransform, 5),
		tr.Accept(entity, FieldTransform, 3),
		tr.Accept(entity, FieldTransform, 7),
	}
	want := []bool{true, false, true}
	for i := range want {
		if results[i] != want[i] {
			t.Fatalf("delivery %d: accept=%v, want %v", i+1, results[i], want[i])
		}
	}
	if tr.Rejected() != 1 {
		t.Fatalf("Rejected() = %d, want 1", tr.Rejected())
	}
}

func TestTrackerIsolatesStreams(t *testing.T) {
	tr := NewTracker(zap.NewNop())

	if !tr.Accept(1, FieldTransform, 10) {
		t.Fatalf("stream (1,transform) rejected first delivery")
	}
	// Same entity, different field: independent stream.
	if !tr.Accept(1, FieldScore, 2) {
		t.Fatalf("stream (1,score) affected by transform stream")
	}
	// Different entity, same field.
	if !tr.Accept(2, FieldTransform, 1) {
		t.Fatalf("stream (2,transform) affected by entity 1")
	}
	if tr.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", tr.Len())
	}
}

func TestDropResetsEntityStreams(t *testing.T) {
	tr := NewTracker(zap.NewNop())
	tr.Accept(9, FieldTransform, 100)
	tr.Accept(9, FieldScore, 100)
	tr.Accept(8, FieldTransform, 100)

	tr.Drop(9)
	if tr.Len() != 1 {
		t.Fatalf("Len() after Drop = %d, want 1", tr.Len())
	}
	// A recycled identity starts over from Idle.
	if !tr.Accept(9, FieldTransform, 1) {
		t.Fatalf("stream survived Drop")
	}
}
