// Package assets loads the game's data bundles: gzip-compressed payloads
// stamped with the GUID of the content they were built from, so a client
// and server can verify they run against the same data.
package assets

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// GUID identifies one built bundle.
type GUID [16]byte

func (g GUID) String() string { return hex.EncodeToString(g[:]) }

// ParseGUID reads a 32-character hex GUID.
func ParseGUID(s string) (GUID, error) {
	var g GUID
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != len(g) {
		return g, fmt.Errorf("bad guid %q", s)
	}
	copy(g[:], b)
	return g, nil
}

// IntegrityError means the bundle on disk was built from different content
// than the caller expects. It is not recoverable by retrying.
type IntegrityError struct {
	Want GUID
	Got  GUID
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("bundle integrity: want guid %s, got %s", e.Want, e.Got)
}

// Bundle layout: 16-byte GUID, 4-byte little-endian uncompressed length,
// gzip stream.

// Write builds a bundle around payload.
func Write(w io.Writer, guid GUID, payload []byte) error {
	if _, err := w.Write(guid[:]); err != nil {
		return fmt.Errorf("write bundle header: %w", err)
	}
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(len(payload)))
	if _, err := w.Write(size[:]); err != nil {
		return fmt.Errorf("write bundle header: %w", err)
	}
	zw := gzip.NewWriter(w)
	if _, err := zw.Write(payload); err != nil {
		return fmt.Errorf("compress bundle: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("compress bundle: %w", err)
	}
	return nil
}

// Read unpacks a bundle, verifying the GUID before touching the payload.
func Read(r io.Reader, want GUID) ([]byte, error) {
	var header [20]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("read bundle header: %w", err)
	}
	var got GUID
	copy(got[:], header[:16])
	if got != want {
		return nil, &IntegrityError{Want: want, Got: got}
	}
	size := binary.LittleEndian.Uint32(header[16:])

	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open bundle stream: %w", err)
	}
	defer zr.Close()

	payload, err := io.ReadAll(io.LimitReader(zr, int64(size)+1))
	if err != nil {
		return nil, fmt.Errorf("decompress bundle: %w", err)
	}
	if uint32(len(payload)) != size {
		return nil, fmt.Errorf("bundle size mismatch: header %d, payload %d", size, len(payload))
	}
	return payload, nil
}

// Load reads a bundle file from disk.
func Load(path string, want GUID) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bundle %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, want)
}

// Save writes a bundle file to disk.
func Save(path string, guid GUID, payload []byte) error {
	var buf bytes.Buffer
	if err := Write(&buf, guid, payload); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write bundle %s: %w", path, err)
	}
	return nil
}
