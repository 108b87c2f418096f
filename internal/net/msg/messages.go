package msg

import (
	"github.com/gridfire/arena/internal/core/ident"
	"github.com/gridfire/arena/internal/net/packet"
)

// Hello opens the handshake. Repeated by the client until a Welcome or
// Reject arrives (datagrams carry no delivery guarantee).
type Hello struct {
	Version  uint16
	Name     string
	Password string
}

func (*Hello) Tag() Tag { return TagHello }

func (m *Hello) encode(w *packet.Writer) {
	w.WriteH(m.Version)
	w.WriteS(m.Name)
	w.WriteS(m.Password)
}

func (m *Hello) decode(r *packet.Reader) {
	m.Version = r.ReadH()
	m.Name = r.ReadS()
	m.Password = r.ReadS()
}

// Welcome acknowledges a join and names the avatar the server spawned for
// the player.
type Welcome struct {
	PlayerID   uint32
	AvatarID   ident.NetworkID
	TickMillis uint32
	ArenaW     float64
	ArenaH     float64
}

func (*Welcome) Tag() Tag { return TagWelcome }

func (m *Welcome) encode(w *packet.Writer) {
	w.WriteD(m.PlayerID)
	w.WriteQ(uint64(m.AvatarID))
	w.WriteD(m.TickMillis)
	w.WriteF(m.ArenaW)
	w.WriteF(m.ArenaH)
}

func (m *Welcome) decode(r *packet.Reader) {
	m.PlayerID = r.ReadD()
	m.AvatarID = ident.NetworkID(r.ReadQ())
	m.TickMillis = r.ReadD()
	m.ArenaW = r.ReadF()
	m.ArenaH = r.ReadF()
}

type Reject struct {
	Reason string
}

func (*Reject) Tag() Tag { return TagReject }

func (m *Reject) encode(w *packet.Writer) { w.WriteS(m.Reason) }
func (m *Reject) decode(r *packet.Reader) { m.Reason = r.ReadS() }

// PlayerInput carries one tick of client input. Seq increases monotonically
// per client; the server keeps only the newest.
type PlayerInput struct {
	Seq   uint32
	MoveX float64 // -1..1
	MoveY float64 // -1..1
	Aim   float64 // radians
	Fire  bool
}

func (*PlayerInput) Tag() Tag { return TagPlayerInput }

func (m *PlayerInput) encode(w *packet.Writer) {
	w.WriteD(m.Seq)
	w.WriteF(m.MoveX)
	w.WriteF(m.MoveY)
	w.WriteF(m.Aim)
	fire := byte(0)
	if m.Fire {
		fire = 1
	}
	w.WriteC(fire)
}

func (m *PlayerInput) decode(r *packet.Reader) {
	m.Seq = r.ReadD()
	m.MoveX = r.ReadF()
	m.MoveY = r.ReadF()
	m.Aim = r.ReadF()
	m.Fire = r.ReadC() != 0
}

// Spawn announces a live entity. Also re-sent for every live entity on the
// periodic resync pass, so a lost Spawn is not permanent.
type Spawn struct {
	ID      ident.NetworkID
	Kind    byte
	OwnerID uint32 // owning player, 0 = none
	X, Y    float64
	Orient  float64
	VelX    float64
	VelY    float64
}

func (*Spawn) Tag() Tag { return TagSpawn }

func (m *Spawn) encode(w *packet.Writer) {
	w.WriteQ(uint64(m.ID))
	w.WriteC(m.Kind)
	w.WriteD(m.OwnerID)
	w.WriteF(m.X)
	w.WriteF(m.Y)
	w.WriteF(m.Orient)
	w.WriteF(m.VelX)
	w.WriteF(m.VelY)
}

func (m *Spawn) decode(r *packet.Reader) {
	m.ID = ident.NetworkID(r.ReadQ())
	m.Kind = r.ReadC()
	m.OwnerID = r.ReadD()
	m.X = r.ReadF()
	m.Y = r.ReadF()
	m.Orient = r.ReadF()
	m.VelX = r.ReadF()
	m.VelY = r.ReadF()
}

// UpdateTransform is the authoritative per-entity transform broadcast.
// Seq orders deliveries for the (entity, transform) stream: receivers keep
// the update iff Seq is strictly greater than the last accepted one.
type UpdateTransform struct {
	ID     ident.NetworkID
	Seq    uint32
	X, Y   float64
	Orient float64
	VelX   float64
	VelY   float64
}

func (*UpdateTransform) Tag() Tag { return TagUpdateTransform }

func (m *UpdateTransform) encode(w *packet.Writer) {
	w.WriteQ(uint64(m.ID))
	w.WriteD(m.Seq)
	w.WriteF(m.X)
	w.WriteF(m.Y)
	w.WriteF(m.Orient)
	w.WriteF(m.VelX)
	w.WriteF(m.VelY)
}

func (m *UpdateTransform) decode(r *packet.Reader) {
	m.ID = ident.NetworkID(r.ReadQ())
	m.Seq = r.ReadD()
	m.X = r.ReadF()
	m.Y = r.ReadF()
	m.Orient = r.ReadF()
	m.VelX = r.ReadF()
	m.VelY = r.ReadF()
}

type Destroy struct {
	ID ident.NetworkID
}

func (*Destroy) Tag() Tag { return TagDestroy }

func (m *Destroy) encode(w *packet.Writer) { w.WriteQ(uint64(m.ID)) }
func (m *Destroy) decode(r *packet.Reader) { m.ID = ident.NetworkID(r.ReadQ()) }

type PlayerJoined struct {
	PlayerID uint32
	Name     string
}

func (*PlayerJoined) Tag() Tag { return TagPlayerJoined }

func (m *PlayerJoined) encode(w *packet.Writer) {
	w.WriteD(m.PlayerID)
	w.WriteS(m.Name)
}

func (m *PlayerJoined) decode(r *packet.Reader) {
	m.PlayerID = r.ReadD()
	m.Name = r.ReadS()
}

type PlayerLeft struct {
	PlayerID uint32
}

func (*PlayerLeft) Tag() Tag { return TagPlayerLeft }

func (m *PlayerLeft) encode(w *packet.Writer) { w.WriteD(m.PlayerID) }
func (m *PlayerLeft) decode(r *packet.Reader) { m.PlayerID = r.ReadD() }

// Score carries a player's standing. Seq orders deliveries for the
// player's score stream the same way UpdateTransform.Seq orders transforms.
type Score struct {
	PlayerID uint32
	Seq      uint32
	Kills    uint32
	Deaths   uint32
	Points   uint32
}

func (*Score) Tag() Tag { return TagScore }

func (m *Score) encode(w *packet.Writer) {
	w.WriteD(m.PlayerID)
	w.WriteD(m.Seq)
	w.WriteD(m.Kills)
	w.WriteD(m.Deaths)
	w.WriteD(m.Points)
}

func (m *Score) decode(r *packet.Reader) {
	m.PlayerID = r.ReadD()
	m.Seq = r.ReadD()
	m.Kills = r.ReadD()
	m.Deaths = r.ReadD()
	m.Points = r.ReadD()
}

type Ping struct {
	Nonce uint64
}

func (*Ping) Tag() Tag { return TagPing }

func (m *Ping) encode(w *packet.Writer) { w.WriteQ(m.Nonce) }
func (m *Ping) decode(r *packet.Reader) { m.Nonce = r.ReadQ() }

type Pong struct {
	Nonce uint64
}

func (*Pong) Tag() Tag { return TagPong }

func (m *Pong) encode(w *packet.Writer) { w.WriteQ(m.Nonce) }
func (m *Pong) decode(r *packet.Reader) { m.Nonce = r.ReadQ() }

// Bye is a best-effort disconnect notice.
type Bye struct{}

func (*Bye) Tag() Tag { return TagBye }

func (m *Bye) encode(w *packet.Writer) {}
func (m *Bye) decode(r *packet.Reader) {}
