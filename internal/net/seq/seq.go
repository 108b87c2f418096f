// Package seq implements at-most-once-forward acceptance for entity-field
// update streams. There is no retransmission request: stale and duplicate
// deliveries are silently and permanently discarded, and the latest-wins
// policy relies on the sender re-broadcasting state continuously.
package seq

import (
	"go.uber.org/zap"

	"github.com/gridfire/arena/internal/core/ident"
)

// Field tags a logical per-entity update stream.
type Field byte

const (
	FieldTransform Field = 1
	FieldScore     Field = 2
)

// State of a single stream.
type State int

const (
	Idle      State = iota // nothing accepted yet
	Accepting              // at least one update accepted
)

// Stream tracks the last accepted sequence number for one entity-field
// stream. Sequence numbers are uint32 and assumed not to wrap within a
// session lifetime.
type Stream struct {
	state State
	last  uint32
}

// Accept reports whether incoming supersedes the last accepted sequence
// number, advancing it on success. Rejection leaves the stream unchanged.
func (s *Stream) Accept(incoming uint32) bool {
	if incoming <= s.last {
		return false
	}
	s.last = incoming
	s.state = Accepting
	return true
}

func (s *Stream) State() State { return s.state }
func (s *Stream) Last() uint32 { return s.last }

type streamKey struct {
	id    ident.NetworkID
	field Field
}

// Tracker holds the streams for every known entity-field pair on one
// connection. Streams are created lazily on first delivery.
type Tracker struct {
	streams  map[streamKey]*Stream
	rejected uint64
	log      *zap.Logger
}

func NewTracker(log *zap.Logger) *Tracker {
	return &Tracker{
		streams: make(map[streamKey]*Stream, 128),
		log:     log,
	}
}

// Accept runs the sequence check for the (entity, field) stream. Rejects
// are diagnostic-logged and counted, never escalated.
func (t *Tracker) Accept(id ident.NetworkID, field Field, incoming uint32) bool {
	k := streamKey{id: id, field: field}
	s := t.streams[k]
	if s == nil {
		s = &Stream{}
		t.streams[k] = s
	}
	if !s.Accept(incoming) {
		t.rejected++
		t.log.Debug("stale update rejected",
			zap.Uint64("entity", uint64(id)),
			zap.Uint8("field", uint8(field)),
			zap.Uint32("incoming", incoming),
			zap.Uint32("last", s.last),
		)
		return false
	}
	return true
}

// Drop removes every stream belonging to id. Called when the entity is
// destroyed so a recycled index starts its streams from Idle.
func (t *Tracker) Drop(id ident.NetworkID) {
	for k := range t.streams {
		if k.id == id {
			delete(t.streams, k)
		}
	}
}

// Rejected returns the number of deliveries discarded as stale.
func (t *Tracker) Rejected() uint64 { return t.rejected }

func (t *Tracker) Len() int { return len(t.streams) }
