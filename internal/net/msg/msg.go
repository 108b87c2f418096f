package msg

import (
	"github.com/gridfire/arena/internal/net/packet"
)

// ProtocolVersion is carried in Hello; the server rejects peers built
// against a different wire format.
const ProtocolVersion uint16 = 1

// Tag identifies a message kind on the wire. Byte 0 of every datagram.
type Tag byte

const (
	TagHello Tag = iota + 1
	TagWelcome
	TagReject
	TagPlayerInput
	TagSpawn
	TagUpdateTransform
	TagDestroy
	TagPlayerJoined
	TagPlayerLeft
	TagScore
	TagPing
	TagPong
	TagBye
)

func (t Tag) String() string {
	switch t {
	case TagHello:
		return "Hello"
	case TagWelcome:
		return "Welcome"
	case TagReject:
		return "Reject"
	case TagPlayerInput:
		return "PlayerInput"
	case TagSpawn:
		return "Spawn"
	case TagUpdateTransform:
		return "UpdateTransform"
	case TagDestroy:
		return "Destroy"
	case TagPlayerJoined:
		return "PlayerJoined"
	case TagPlayerLeft:
		return "PlayerLeft"
	case TagScore:
		return "Score"
	case TagPing:
		return "Ping"
	case TagPong:
		return "Pong"
	case TagBye:
		return "Bye"
	default:
		return "Unknown"
	}
}

// Message is the tagged variant over all wire message kinds.
type Message interface {
	Tag() Tag
	encode(w *packet.Writer)
	decode(r *packet.Reader)
}

// Encode serializes m to its compact binary wire form.
func Encode(m Message) []byte {
	w := packet.NewWriterWithTag(byte(m.Tag()))
	m.encode(w)
	return w.Bytes()
}

// Decode parses one message from an untrusted buffer. It fails with a
// *packet.MalformedError when the buffer is truncated, a length prefix
// overruns it, or the type tag is unrecognized. Decode(Encode(m)) == m for
// every valid message.
func Decode(data []byte) (Message, error) {
	r := packet.NewReader(data)
	if err := r.Err(); err != nil {
		return nil, err
	}
	m := newByTag(Tag(r.Tag()))
	if m == nil {
		return nil, &packet.MalformedError{Reason: "unknown message type"}
	}
	m.decode(r)
	if err := r.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

func newByTag(t Tag) Message {
	switch t {
	case TagHello:
		return &Hello{}
	case TagWelcome:
		return &Welcome{}
	case TagReject:
		return &Reject{}
	case TagPlayerInput:
		return &PlayerInput{}
	case TagSpawn:
		return &Spawn{}
	case TagUpdateTransform:
		return &UpdateTransform{}
	case TagDestroy:
		return &Destroy{}
	case TagPlayerJoined:
		return &PlayerJoined{}
	case TagPlayerLeft:
		return &PlayerLeft{}
	case TagScore:
		return &Score{}
	case TagPing:
		return &Ping{}
	case TagPong:
		return &Pong{}
	case TagBye:
		return &Bye{}
	default:
		return nil
	}
}
