package msg

import (
	"fmt"

	"go.uber.org/zap"
)

// ConnState is a peer's protocol phase.
type ConnState int

const (
	StateHandshake ConnState = iota
	StateInGame
	StateDisconnecting
)

func (s ConnState) String() string {
	switch s {
	case StateHandshake:
		return "Handshake"
	case StateInGame:
		return "InGame"
	case StateDisconnecting:
		return "Disconnecting"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// HandlerFunc is the callback signature for message handlers. The peer is
// passed as an opaque interface to avoid import cycles.
type HandlerFunc func(peer any, m Message)

type handlerEntry struct {
	fn            HandlerFunc
	allowedStates map[ConnState]bool
}

// Registry maps message tags to handlers with state-based access control.
type Registry struct {
	handlers map[Tag]*handlerEntry
	log      *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		handlers: make(map[Tag]*handlerEntry),
		log:      log,
	}
}

// Register maps a tag to a handler, restricted to the given peer states.
func (reg *Registry) Register(tag Tag, states []ConnState, fn HandlerFunc) {
	allowed := make(map[ConnState]bool, len(states))
	for _, s := range states {
		allowed[s] = true
	}
	reg.handlers[tag] = &handlerEntry{
		fn:            fn,
		allowedStates: allowed,
	}
}

// Dispatch decodes data and calls the registered handler after validating
// the peer state. Malformed datagrams and unknown-but-valid tags are
// dropped; neither is an error that should touch the peer.
func (reg *Registry) Dispatch(peer any, state ConnState, data []byte) error {
	m, err := Decode(data)
	if err != nil {
		reg.log.Debug("dropping malformed datagram",
			zap.Int("size", len(data)),
			zap.Error(err),
		)
		return nil
	}

	entry, ok := reg.handlers[m.Tag()]
	if !ok {
		reg.log.Debug("no handler for message", zap.String("tag", m.Tag().String()))
		return nil
	}

	if !entry.allowedStates[state] {
		reg.log.Warn("message not allowed in peer state",
			zap.String("tag", m.Tag().String()),
			zap.String("state", state.String()),
		)
		return fmt.Errorf("message %s not allowed in state %s", m.Tag(), state)
	}

	return reg.safeCall(entry.fn, peer, m)
}

// safeCall executes a handler with panic recovery so a single bad message
// cannot take down the tick loop.
func (reg *Registry) safeCall(fn HandlerFunc, peer any, m Message) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reg.log.Error("handler panic recovered",
				zap.String("tag", m.Tag().String()),
				zap.Any("panic", rec),
			)
			err = fmt.Errorf("handler panic for %s: %v", m.Tag(), rec)
		}
	}()
	fn(peer, m)
	return nil
}
