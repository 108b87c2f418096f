package packet

import (
	"encoding/binary"
	"math"
)

// Writer builds a wire message. All multi-byte writes are little-endian.
// Variable-length fields carry an explicit uint16 length prefix.
type Writer struct {
	buf []byte
}

func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 64)}
}

func NewWriterWithTag(tag byte) *Writer {
	w := &Writer{buf: make([]byte, 0, 64)}
	w.WriteC(tag)
	return w
}

// WriteC writes 1 byte.
func (w *Writer) WriteC(v byte) {
	w.buf = append(w.buf, v)
}

// WriteH writes 2 bytes little-endian.
func (w *Writer) WriteH(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteD writes 4 bytes little-endian.
func (w *Writer) WriteD(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteQ writes 8 bytes little-endian.
func (w *Writer) WriteQ(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteF writes a float64 as 8 bytes little-endian IEEE-754 bits.
func (w *Writer) WriteF(v float64) {
	w.WriteQ(math.Float64bits(v))
}

// WriteS writes a length-prefixed UTF-8 string (uint16 byte count).
func (w *Writer) WriteS(s string) {
	w.WriteH(uint16(len(s)))
	w.buf = append(w.buf, s...)
}

// WriteB writes a length-prefixed byte slice (uint16 byte count).
func (w *Writer) WriteB(b []byte) {
	w.WriteH(uint16(len(b)))
	w.buf = append(w.buf, b...)
}

// Bytes returns the accumulated message content.
func (w *Writer) Bytes() []byte {
	return w.buf
}

func (w *Writer) Len() int {
	return len(w.buf)
}
