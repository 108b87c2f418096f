package net

import (
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"
)

// Conn is the client side: one connected UDP socket to the server.
// Received datagrams land on InQueue for the client loop to drain.
type Conn struct {
	conn    *net.UDPConn
	InQueue chan []byte

	closeCh   chan struct{}
	closeOnce sync.Once
	log       *zap.Logger
}

func Dial(serverAddr string, inSize int, log *zap.Logger) (*Conn, error) {
	addr, err := net.ResolveUDPAddr("udp", serverAddr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", serverAddr, err)
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", serverAddr, err)
	}
	c := &Conn{
		conn:    conn,
		InQueue: make(chan []byte, inSize),
		closeCh: make(chan struct{}),
		log:     log,
	}
	go c.readLoop()
	return c, nil
}

func (c *Conn) readLoop() {
	buf := make([]byte, maxDatagram)
	for {
		n, err := c.conn.Read(buf)
		if err != nil {
			select {
			case <-c.closeCh:
				return
			default:
			}
			c.log.Debug("udp read failed", zap.Error(err))
			continue
		}
		if n == 0 || n == maxDatagram {
			continue
		}
		data := make([]byte, n)
		copy(data, buf[:n])
		select {
		case c.InQueue <- data:
		default:
			c.log.Debug("in-queue full, datagram dropped")
		}
	}
}

// Send writes one datagram to the server. Client volume is one small
// message per input tick, so writes go straight to the socket.
func (c *Conn) Send(data []byte) {
	if _, err := c.conn.Write(data); err != nil {
		c.log.Debug("udp write failed", zap.Error(err))
	}
}

func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.closeCh)
		c.conn.Close()
	})
}
