package packet

import (
	"errors"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	w := NewWriterWithTag(0x2A)
	w.WriteC(7)
	w.WriteH(0xBEEF)
	w.WriteD(0xDEADBEEF)
	w.WriteQ(1<<40 + 3)
	w.WriteF(-123.456)
	w.WriteS("avatar-01")
	w.WriteB([]byte{1, 2, 3})
	w.WriteS("") // empty string still carries its length prefix

	r := NewReader(w.Bytes())
	if r.Tag() != 0x2A {
		t.Fatalf("Tag() = %d, want 42", r.Tag())
	}
	if got := r.ReadC(); got != 7 {
		t.Errorf("ReadC = %d, want 7", got)
	}
	if got := r.ReadH(); got != 0xBEEF {
		t.Errorf("ReadH = %#x, want 0xBEEF", got)
	}
	if got := r.ReadD(); got != 0xDEADBEEF {
		t.Errorf("ReadD = %#x, want 0xDEADBEEF", got)
	}
	if got := r.ReadQ(); got != 1<<40+3 {
		t.Errorf("ReadQ = %d", got)
	}
	if got := r.ReadF(); got != -123.456 {
		t.Errorf("ReadF = %v, want -123.456", got)
	}
	if got := r.ReadS(); got != "avatar-01" {
		t.Errorf("ReadS = %q", got)
	}
	b := r.ReadB()
	if len(b) != 3 || b[0] != 1 || b[2] != 3 {
		t.Errorf("ReadB = %v", b)
	}
	if got := r.ReadS(); got != "" {
		t.Errorf("empty ReadS = %q", got)
	}
	if err := r.Err(); err != nil {
		t.Fatalf("Err() = %v after clean round trip", err)
	}
	if r.Remaining() != 0 {
		t.Fatalf("Remaining() = %d, want 0", r.Remaining())
	}
}

func TestLittleEndianLayout(t *testing.T) {
	w := NewWriterWithTag(1)
	w.WriteH(0x0102)
	w.WriteD(0x01020304)
	b := w.Bytes()
	want := []byte{1, 0x02, 0x01, 0x04, 0x03, 0x02, 0x01}
	if len(b) != len(want) {
		t.Fatalf("len = %d, want %d", len(b), len(want))
	}
	for i := range want {
		if b[i] != want[i] {
			t.Fatalf("byte %d = %#x, want %#x", i, b[i], want[i])
		}
	}
}

func TestTruncatedBufferIsSticky(t *testing.T) {
	w := NewWriterWithTag(3)
	w.WriteD(99)
	full := w.Bytes()

	r := NewReader(full[:3]) // cut mid-field
	_ = r.ReadD()
	var mal *MalformedError
	if !errors.As(r.Err(), &mal) {
		t.Fatalf("Err() = %v, want MalformedError", r.Err())
	}
	if mal.Reason != "truncated buffer" {
		t.Fatalf("Reason = %q, want %q", mal.Reason, "truncated buffer")
	}

	// Sticky: later reads keep returning zero values, error unchanged.
	if got := r.ReadQ(); got != 0 {
		t.Fatalf("read after poison = %d, want 0", got)
	}
	if r.Err() == nil {
		t.Fatalf("error cleared by later read")
	}
}

func TestLengthPrefixExceedsBuffer(t *testing.T) {
	w := NewWriterWithTag(3)
	w.WriteH(500) // declares 500 bytes, none follow

	r := NewReader(w.Bytes())
	if got := r.ReadS(); got != "" {
		t.Fatalf("ReadS = %q, want empty on malformed input", got)
	}
	var mal *MalformedError
	if !errors.As(r.Err(), &mal) {
		t.Fatalf("Err() = %v, want MalformedError", r.Err())
	}
	if mal.Reason != "truncated buffer" {
		t.Fatalf("Reason = %q, want %q", mal.Reason, "truncated buffer")
	}
}

func TestEmptyBuffer(t *testing.T) {
	r := NewReader(nil)
	if r.Err() == nil {
		t.Fatalf("empty buffer did not poison reader")
	}
	if r.Tag() != 0 {
		t.Fatalf("Tag() on empty buffer = %d", r.Tag())
	}
}
