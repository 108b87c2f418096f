package packet

import (
	"encoding/binary"
	"math"
)

// Reader reads wire message fields from an untrusted buffer. Byte 0 is the
// type tag. The reader is sticky: the first short read or bad length prefix
// poisons it, every later read returns the zero value, and Err() reports
// the failure. Callers check Err() once after decoding all fields.
type Reader struct {
	data []byte
	off  int
	err  *MalformedError
}

func NewReader(data []byte) *Reader {
	r := &Reader{data: data, off: 1} // skip type tag
	if len(data) == 0 {
		r.fail("truncated buffer")
	}
	return r
}

func (r *Reader) Tag() byte {
	if len(r.data) == 0 {
		return 0
	}
	return r.data[0]
}

// Err returns the sticky decode error, or nil when all reads were in bounds.
func (r *Reader) Err() error {
	if r.err == nil {
		return nil
	}
	return r.err
}

func (r *Reader) fail(reason string) {
	if r.err == nil {
		r.err = errMalformed(reason)
	}
}

func (r *Reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if r.off+n > len(r.data) {
		r.fail("truncated buffer")
		return false
	}
	return true
}

// ReadC reads 1 byte.
func (r *Reader) ReadC() byte {
	if !r.need(1) {
		return 0
	}
	v := r.data[r.off]
	r.off++
	return v
}

// ReadH reads 2 bytes as little-endian uint16.
func (r *Reader) ReadH() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v
}

// ReadD reads 4 bytes as little-endian uint32.
func (r *Reader) ReadD() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v
}

// ReadQ reads 8 bytes as little-endian uint64.
func (r *Reader) ReadQ() uint64 {
	if !r.need(8) {
		return 0
	}
	v := binary.LittleEndian.Uint64(r.data[r.off:])
	r.off += 8
	return v
}

// ReadF reads 8 bytes as a little-endian IEEE-754 float64.
func (r *Reader) ReadF() float64 {
	return math.Float64frombits(r.ReadQ())
}

// ReadS reads a length-prefixed UTF-8 string.
func (r *Reader) ReadS() string {
	n := int(r.ReadH())
	if r.err != nil {
		return ""
	}
	if r.off+n > len(r.data) {
		r.fail("truncated buffer")
		return ""
	}
	s := string(r.data[r.off : r.off+n])
	r.off += n
	return s
}

// ReadB reads a length-prefixed byte slice. The result is a copy.
func (r *Reader) ReadB() []byte {
	n := int(r.ReadH())
	if r.err != nil {
		return nil
	}
	if r.off+n > len(r.data) {
		r.fail("truncated buffer")
		return nil
	}
	b := make([]byte, n)
	copy(b, r.data[r.off:r.off+n])
	r.off += n
	return b
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}
