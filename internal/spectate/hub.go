// Package spectate streams read-only match snapshots to websocket
// viewers. It is a one-way feed: viewer input is read only to service
// the websocket control frames.
package spectate

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 5 * time.Second
	maxViewers     = 64
	sendQueueDepth = 16
)

type viewer struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans snapshot frames out to connected viewers. Slow viewers are
// disconnected rather than allowed to stall the feed.
type Hub struct {
	upgrader websocket.Upgrader
	log      *zap.Logger

	register   chan *viewer
	unregister chan *viewer
	broadcast  chan []byte
	viewers    map[*viewer]struct{}
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log:        log,
		register:   make(chan *viewer),
		unregister: make(chan *viewer),
		broadcast:  make(chan []byte, 8),
		viewers:    make(map[*viewer]struct{}),
	}
}

// Run owns the viewer set until ctx ends.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for v := range h.viewers {
				close(v.send)
			}
			return
		case v := <-h.register:
			if len(h.viewers) >= maxViewers {
				close(v.send)
				continue
			}
			h.viewers[v] = struct{}{}
			h.log.Info("viewer connected", zap.Int("viewers", len(h.viewers)))
		case v := <-h.unregister:
			if _, ok := h.viewers[v]; ok {
				delete(h.viewers, v)
				close(v.send)
				h.log.Info("viewer disconnected", zap.Int("viewers", len(h.viewers)))
			}
		case frame := <-h.broadcast:
			for v := range h.viewers {
				select {
				case v.send <- frame:
				default:
					delete(h.viewers, v)
					close(v.send)
					h.log.Warn("slow viewer dropped")
				}
			}
		}
	}
}

// Publish queues one encoded frame for every viewer. Never blocks the
// game loop: when the hub is behind, the frame is skipped.
func (h *Hub) Publish(frame []byte) {
	select {
	case h.broadcast <- frame:
	default:
	}
}

// ServeHTTP upgrades a viewer connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	v := &viewer{conn: conn, send: make(chan []byte, sendQueueDepth)}
	h.register <- v
	go v.writePump()
	go v.readPump(h)
}

func (v *viewer) writePump() {
	defer v.conn.Close()
	for frame := range v.send {
		v.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := v.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			return
		}
	}
	v.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// readPump discards viewer input; it exists to process control frames and
// notice disconnects.
func (v *viewer) readPump(h *Hub) {
	defer func() { h.unregister <- v }()
	v.conn.SetReadLimit(512)
	for {
		if _, _, err := v.conn.ReadMessage(); err != nil {
			return
		}
	}
}
