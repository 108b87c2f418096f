package packet

import "fmt"

// MalformedError reports wire data that cannot be decoded: truncated
// buffers, length prefixes past the end of the buffer, unknown type tags.
// It is always recoverable: the caller drops the whole datagram and
// continues; it must never crash the process.
type MalformedError struct {
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed message: %s", e.Reason)
}

func errMalformed(reason string) *MalformedError {
	return &MalformedError{Reason: reason}
}
