package assets

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
)

func TestBundleRoundTrip(t *testing.T) {
	guid, err := ParseGUID("0123456789abcdef0123456789abcdef")
	if err != nil {
		t.Fatalf("parse guid: %v", err)
	}
	payload := bytes.Repeat([]byte("entity data "), 100)

	var buf bytes.Buffer
	if err := Write(&buf, guid, payload); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := Read(&buf, guid)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload corrupted through bundle")
	}
}

func TestBundleGUIDMismatch(t *testing.T) {
	want, _ := ParseGUID("0123456789abcdef0123456789abcdef")
	other, _ := ParseGUID("ffffffffffffffffffffffffffffffff")

	var buf bytes.Buffer
	if err := Write(&buf, other, []byte("payload")); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := Read(&buf, want)
	var ie *IntegrityError
	if !errors.As(err, &ie) {
		t.Fatalf("err = %v, want IntegrityError", err)
	}
	if ie.Want != want || ie.Got != other {
		t.Fatalf("error guids wrong: %+v", ie)
	}
}

func TestBundleTruncated(t *testing.T) {
	guid, _ := ParseGUID("0123456789abcdef0123456789abcdef")
	var buf bytes.Buffer
	if err := Write(&buf, guid, []byte("some payload bytes")); err != nil {
		t.Fatalf("write: %v", err)
	}
	raw := buf.Bytes()
	for _, cut := range []int{0, 10, 19, len(raw) - 3} {
		if _, err := Read(bytes.NewReader(raw[:cut]), guid); err == nil {
			t.Fatalf("truncation at %d not detected", cut)
		}
	}
}

func TestBundleFile(t *testing.T) {
	guid, _ := ParseGUID("0123456789abcdef0123456789abcdef")
	path := filepath.Join(t.TempDir(), "entities.bundle")
	payload := []byte("entities: []")

	if err := Save(path, guid, payload); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path, guid)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("file round trip corrupted payload")
	}
}
