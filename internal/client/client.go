package client

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gridfire/arena/internal/config"
	"github.com/gridfire/arena/internal/core/ident"
	"github.com/gridfire/arena/internal/data"
	gonet "github.com/gridfire/arena/internal/net"
	"github.com/gridfire/arena/internal/net/msg"
	"github.com/gridfire/arena/internal/scene"
)

// Input is one sample of player intent.
type Input struct {
	MoveX float64 // -1..1
	MoveY float64 // -1..1
	Aim   float64 // radians
	Fire  bool
}

// InputSource supplies the newest input sample each frame. Implementations
// wrap whatever device layer the frontend uses.
type InputSource interface {
	Sample() Input
}

// Sprite is one drawable entity for the frontend.
type Sprite struct {
	ID     ident.NetworkID
	Kind   data.Kind
	Pos    scene.Vec2
	Orient float64
	Mine   bool
}

// Frame is everything the frontend needs to draw one tick.
type Frame struct {
	Sprites []Sprite
	Roster  map[uint32]*RosterEntry
	RTT     time.Duration
}

// Renderer consumes frames. The terminal renderer in cmd/arena-client is
// one implementation; a real frontend is another.
type Renderer interface {
	Render(f Frame)
}

// helloRetryTicks paces handshake retries while no Welcome has arrived.
const helloRetryTicks = 15

// Client drives one connection: handshake, input upload, replica
// maintenance, prediction, and frame production.
type Client struct {
	conn *gonet.Conn
	rep  *Replica
	cfg  config.ClientConfig
	log  *zap.Logger

	renderer Renderer
	input    InputSource

	inputSeq   uint32
	retryTicks int
	pingTicks  int
	rtt        time.Duration

	sprites []Sprite // reused frame buffer
}

func New(conn *gonet.Conn, defs *data.EntityTable, cfg config.ClientConfig, renderer Renderer, input InputSource, log *zap.Logger) *Client {
	return &Client{
		conn:     conn,
		rep:      NewReplica(defs, log),
		cfg:      cfg,
		log:      log,
		renderer: renderer,
		input:    input,
	}
}

// Replica exposes the replicated match state.
func (c *Client) Replica() *Replica { return c.rep }

// Run loops until the context ends, sending a best-effort Bye on the way
// out.
func (c *Client) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.cfg.InputRate)
	defer ticker.Stop()

	c.sendHello()
	for {
		select {
		case <-ctx.Done():
			c.conn.Send(msg.Encode(&msg.Bye{}))
			return ctx.Err()
		case <-ticker.C:
			c.Tick(c.cfg.InputRate)
		}
	}
}

// Tick runs one frame: fold in what the server sent, upload input,
// predict, and hand a frame to the renderer.
func (c *Client) Tick(dt time.Duration) {
	c.drain()

	if !c.rep.Joined() {
		c.retryTicks--
		if c.retryTicks <= 0 {
			c.sendHello()
		}
		return
	}

	in := c.input.Sample()
	c.sendInput(in)
	c.predict(in, dt)
	c.advanceInterp(dt)
	c.maybePing()

	if c.renderer != nil {
		c.renderer.Render(c.frame())
	}
}

func (c *Client) drain() {
	for {
		select {
		case raw := <-c.conn.InQueue:
			c.handle(raw)
		default:
			return
		}
	}
}

func (c *Client) handle(raw []byte) {
	m, err := msg.Decode(raw)
	if err != nil {
		c.log.Debug("dropping malformed datagram", zap.Error(err))
		return
	}
	switch m := m.(type) {
	case *msg.Reject:
		c.log.Warn("join rejected", zap.String("reason", m.Reason))
	case *msg.Pong:
		c.rtt = time.Duration(time.Now().UnixNano() - int64(m.Nonce))
	default:
		c.rep.Apply(m)
	}
}

func (c *Client) sendHello() {
	c.retryTicks = helloRetryTicks
	c.conn.Send(msg.Encode(&msg.Hello{
		Version: msg.ProtocolVersion,
		Name:    c.cfg.PlayerName,
	}))
}

func (c *Client) sendInput(in Input) {
	c.inputSeq++
	c.conn.Send(msg.Encode(&msg.PlayerInput{
		Seq:   c.inputSeq,
		MoveX: in.MoveX,
		MoveY: in.MoveY,
		Aim:   in.Aim,
		Fire:  in.Fire,
	}))
}

// predict applies the input to the local avatar immediately, mirroring
// the server's movement rules. Server corrections overwrite this state
// when they arrive, so drift never accumulates.
func (c *Client) predict(in Input, dt time.Duration) {
	e := c.rep.Avatar()
	if e == nil || e.Def == nil {
		return
	}
	move := scene.Vec2{X: in.MoveX, Y: in.MoveY}
	if l := move.Len(); l > 1 {
		move = move.Scale(1 / l)
	}
	e.Vel = move.Scale(e.Def.Movement.MaxSpeed)
	e.Orient = in.Aim
	e.Pos = e.Pos.Add(e.Vel.Scale(dt.Seconds()))

	r := e.Def.Collision.Radius
	e.Pos.X = clamp(e.Pos.X, r, c.rep.ArenaW-r)
	e.Pos.Y = clamp(e.Pos.Y, r, c.rep.ArenaH-r)
}

func (c *Client) advanceInterp(dt time.Duration) {
	tickInterval := time.Duration(c.rep.TickMillis) * time.Millisecond
	if tickInterval <= 0 {
		return
	}
	step := float64(dt) / float64(tickInterval)
	for _, st := range c.rep.interp {
		st.advance(step)
	}
}

// maybePing measures round-trip time roughly once per second.
func (c *Client) maybePing() {
	c.pingTicks--
	if c.pingTicks > 0 {
		return
	}
	c.pingTicks = int(time.Second / c.cfg.InputRate)
	c.conn.Send(msg.Encode(&msg.Ping{Nonce: uint64(time.Now().UnixNano())}))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// frame assembles the draw list. Remote entities render at their
// interpolated transform; the local avatar renders at its predicted one.
func (c *Client) frame() Frame {
	c.sprites = c.sprites[:0]
	c.rep.Scene.Each(func(e *scene.Entity) {
		pos := e.Pos
		orient := e.Orient
		if e.ID != c.rep.AvatarID {
			if st := c.rep.interp[e.ID]; st != nil {
				pos = st.pos(e.Pos)
				orient = st.orient(e.Orient)
			}
		}
		c.sprites = append(c.sprites, Sprite{
			ID:     e.ID,
			Kind:   e.Kind,
			Pos:    pos,
			Orient: orient,
			Mine:   e.ID == c.rep.AvatarID,
		})
	})
	return Frame{Sprites: c.sprites, Roster: c.rep.Roster, RTT: c.rtt}
}
