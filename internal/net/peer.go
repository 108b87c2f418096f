package net

import (
	"net"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/gridfire/arena/internal/net/msg"
)

// Peer represents one remote client as seen by the server. Network I/O
// runs in the endpoint's goroutines; game state on the peer is accessed
// only from the game loop.
type Peer struct {
	ID   uint64
	Addr *net.UDPAddr

	state    atomic.Int32 // msg.ConnState
	lastRecv atomic.Int64 // unix nanos of last datagram

	InQueue chan []byte // game loop drains decoded-on-dispatch datagrams

	// Game-loop-only fields: no locks needed.
	PlayerID     uint32
	Name         string
	AuthPending  bool // credential check in flight
	LastInputSeq uint32
	Input        InputState
	outBuf       [][]byte

	log *zap.Logger
}

// InputState is the newest input the peer has delivered, applied by the
// update phase each tick.
type InputState struct {
	MoveX float64
	MoveY float64
	Aim   float64
	Fire  bool
}

func newPeer(id uint64, addr *net.UDPAddr, inSize int, log *zap.Logger) *Peer {
	p := &Peer{
		ID:      id,
		Addr:    addr,
		InQueue: make(chan []byte, inSize),
		log:     log.With(zap.Uint64("peer", id)),
	}
	p.state.Store(int32(msg.StateHandshake))
	return p
}

func (p *Peer) State() msg.ConnState {
	return msg.ConnState(p.state.Load())
}

func (p *Peer) SetState(st msg.ConnState) {
	p.state.Store(int32(st))
}

// LastSeen returns the receive timestamp of the peer's newest datagram in
// unix nanoseconds.
func (p *Peer) LastSeen() int64 {
	return p.lastRecv.Load()
}

// Send buffers an encoded message for this peer. Nothing touches the
// socket until FlushOutput runs at the output phase. Game loop only.
func (p *Peer) Send(data []byte) {
	p.outBuf = append(p.outBuf, data)
}

// FlushOutput hands the buffered messages to the endpoint's write loop.
// Datagrams that do not fit the outgoing queue are dropped; the protocol
// re-broadcasts state continuously, so loss here behaves like loss on the
// wire.
func (p *Peer) FlushOutput(ep *Endpoint) {
	for _, data := range p.outBuf {
		ep.enqueue(p.Addr, data)
	}
	p.outBuf = p.outBuf[:0]
}

// PendingOutput returns the number of unflushed messages.
func (p *Peer) PendingOutput() int { return len(p.outBuf) }
