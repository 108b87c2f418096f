// Package net provides the UDP transport for the arena protocol: a server
// endpoint that demultiplexes datagrams into per-peer queues, and a client
// connection. Delivery, ordering, and duplication guarantees live one
// layer up (net/seq); this package moves bytes.
package net

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// maxDatagram bounds a single message on the wire. Anything larger is
// malformed by construction.
const maxDatagram = 2048

type outPacket struct {
	addr *net.UDPAddr
	data []byte
}

// Endpoint owns the server's UDP socket. New peers surface on a channel
// for the game loop to adopt; datagrams land in per-peer queues.
type Endpoint struct {
	conn   *net.UDPConn
	nextID atomic.Uint64

	mu    sync.Mutex
	peers map[string]*Peer // keyed by remote addr string

	newPeers chan *Peer
	outCh    chan outPacket
	inSize   int

	closeCh   chan struct{}
	closeOnce sync.Once
	log       *zap.Logger
}

func Listen(bindAddr string, inSize, outSize int, log *zap.Logger) (*Endpoint, error) {
	addr, err := net.ResolveUDPAddr("udp", bindAddr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", bindAddr, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", bindAddr, err)
	}
	ep := &Endpoint{
		conn:     conn,
		peers:    make(map[string]*Peer, 32),
		newPeers: make(chan *Peer, 64),
		outCh:    make(chan outPacket, outSize),
		inSize:   inSize,
		closeCh:  make(chan struct{}),
		log:      log,
	}
	return ep, nil
}

// Start launches the read and write goroutines.
func (ep *Endpoint) Start() {
	go ep.readLoop()
	go ep.writeLoop()
}

// NewPeers returns the channel of peers seen for the first time.
func (ep *Endpoint) NewPeers() <-chan *Peer {
	return ep.newPeers
}

// readLoop receives datagrams, resolves or creates the sending peer, and
// pushes the payload onto the peer's queue. A full queue drops the
// datagram, keeping UDP semantics end-to-end.
func (ep *Endpoint) readLoop() {
	buf := make([]byte, maxDatagram)
	for {
		n, addr, err := ep.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-ep.closeCh:
				return
			default:
			}
			ep.log.Error("udp read failed", zap.Error(err))
			continue
		}
		if n == 0 || n == maxDatagram {
			continue // empty or oversized: drop
		}

		p := ep.peerFor(addr)
		if p == nil {
			continue // peer table full
		}
		p.lastRecv.Store(time.Now().UnixNano())

		data := make([]byte, n)
		copy(data, buf[:n])
		select {
		case p.InQueue <- data:
		default:
			p.log.Debug("in-queue full, datagram dropped")
		}
	}
}

func (ep *Endpoint) peerFor(addr *net.UDPAddr) *Peer {
	key := addr.String()
	ep.mu.Lock()
	p, ok := ep.peers[key]
	if !ok {
		p = newPeer(ep.nextID.Add(1), addr, ep.inSize, ep.log)
		ep.peers[key] = p
	}
	ep.mu.Unlock()

	if !ok {
		select {
		case ep.newPeers <- p:
		default:
			// Game loop is not keeping up with joins; forget the peer so a
			// later datagram retries.
			ep.log.Warn("new-peer queue full, peer dropped", zap.String("addr", key))
			ep.mu.Lock()
			delete(ep.peers, key)
			ep.mu.Unlock()
			return nil
		}
		ep.log.Info("peer connected",
			zap.Uint64("peer", p.ID),
			zap.String("addr", key),
		)
	}
	return p
}

// Remove forgets a peer. Pending queue contents are abandoned.
func (ep *Endpoint) Remove(p *Peer) {
	ep.mu.Lock()
	delete(ep.peers, p.Addr.String())
	ep.mu.Unlock()
}

// enqueue hands one datagram to the write loop, dropping on backpressure.
func (ep *Endpoint) enqueue(addr *net.UDPAddr, data []byte) {
	select {
	case ep.outCh <- outPacket{addr: addr, data: data}:
	default:
		ep.log.Debug("out-queue full, datagram dropped")
	}
}

func (ep *Endpoint) writeLoop() {
	for {
		select {
		case pkt := <-ep.outCh:
			if _, err := ep.conn.WriteToUDP(pkt.data, pkt.addr); err != nil {
				select {
				case <-ep.closeCh:
					return
				default:
				}
				ep.log.Debug("udp write failed", zap.Error(err))
			}
		case <-ep.closeCh:
			return
		}
	}
}

// Shutdown stops the loops and closes the socket.
func (ep *Endpoint) Shutdown() {
	ep.closeOnce.Do(func() {
		close(ep.closeCh)
		ep.conn.Close()
	})
}

// Addr returns the bound local address.
func (ep *Endpoint) Addr() net.Addr {
	return ep.conn.LocalAddr()
}
