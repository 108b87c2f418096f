// Package client implements the client side of the arena protocol: a
// replica of the server's entity state, prediction for the local avatar,
// and interpolation for everything else.
package client

import (
	"go.uber.org/zap"

	"github.com/gridfire/arena/internal/core/ident"
	"github.com/gridfire/arena/internal/data"
	"github.com/gridfire/arena/internal/net/msg"
	"github.com/gridfire/arena/internal/net/seq"
	"github.com/gridfire/arena/internal/scene"
)

// RosterEntry mirrors one player's public standing.
type RosterEntry struct {
	Name   string
	Kills  uint32
	Deaths uint32
	Points uint32
}

// Replica is the client's copy of the match. It is built entirely from
// server messages; nothing here is authoritative except the predicted
// transform of the local avatar between server corrections.
type Replica struct {
	Scene   *scene.Scene
	Tracker *seq.Tracker
	Roster  map[uint32]*RosterEntry

	PlayerID uint32
	AvatarID ident.NetworkID
	ArenaW   float64
	ArenaH   float64

	// TickMillis is the server's simulation interval, used to pace
	// interpolation between transform updates.
	TickMillis uint32

	interp map[ident.NetworkID]*interpState
	log    *zap.Logger
}

func NewReplica(defs *data.EntityTable, log *zap.Logger) *Replica {
	return &Replica{
		Scene:   scene.NewScene(defs, nil),
		Tracker: seq.NewTracker(log),
		Roster:  make(map[uint32]*RosterEntry, 16),
		interp:  make(map[ident.NetworkID]*interpState, 64),
		log:     log,
	}
}

// Joined reports whether the handshake has completed.
func (r *Replica) Joined() bool { return r.PlayerID != 0 }

// Apply folds one server message into the replica. Unknown or stale
// content is dropped without error: the stream repairs itself through
// re-broadcast and the periodic resync.
func (r *Replica) Apply(m msg.Message) {
	switch m := m.(type) {
	case *msg.Welcome:
		r.applyWelcome(m)
	case *msg.Spawn:
		r.applySpawn(m)
	case *msg.UpdateTransform:
		r.applyUpdate(m)
	case *msg.Destroy:
		r.applyDestroy(m)
	case *msg.PlayerJoined:
		r.Roster[m.PlayerID] = &RosterEntry{Name: m.Name}
	case *msg.PlayerLeft:
		delete(r.Roster, m.PlayerID)
		r.Tracker.Drop(scoreStream(m.PlayerID))
	case *msg.Score:
		r.applyScore(m)
	default:
		r.log.Debug("unhandled message", zap.String("tag", m.Tag().String()))
	}
}

func (r *Replica) applyWelcome(m *msg.Welcome) {
	r.PlayerID = m.PlayerID
	r.AvatarID = m.AvatarID
	r.TickMillis = m.TickMillis
	r.ArenaW = m.ArenaW
	r.ArenaH = m.ArenaH
}

// applySpawn creates the announced entity. A Spawn for an identity that is
// already live is the resync re-broadcast and carries nothing new.
func (r *Replica) applySpawn(m *msg.Spawn) {
	if r.Scene.Resolve(m.ID) != nil {
		return
	}
	e := r.Scene.SpawnBound(m.ID, data.Kind(m.Kind))
	if e == nil {
		r.log.Debug("spawn dropped", zap.Uint64("id", uint64(m.ID)))
		return
	}
	e.OwnerID = m.OwnerID
	e.Pos = scene.Vec2{X: m.X, Y: m.Y}
	e.Vel = scene.Vec2{X: m.VelX, Y: m.VelY}
	e.Orient = m.Orient
	r.Scene.Add(e)
	r.interp[m.ID] = newInterpState(e.Pos, e.Orient)
}

// applyUpdate runs the sequence check and, on acceptance, snaps the
// authoritative transform. Updates for entities this replica has never
// seen are dropped; the resync pass will deliver the missing Spawn.
func (r *Replica) applyUpdate(m *msg.UpdateTransform) {
	e := r.Scene.Resolve(m.ID)
	if e == nil {
		r.log.Debug("update for unknown entity dropped", zap.Uint64("id", uint64(m.ID)))
		return
	}
	if !r.Tracker.Accept(m.ID, seq.FieldTransform, m.Seq) {
		return
	}
	target := scene.Vec2{X: m.X, Y: m.Y}
	if st := r.interp[m.ID]; st != nil {
		st.retarget(e.Pos, e.Orient, target, m.Orient)
	}
	e.Pos = target
	e.Vel = scene.Vec2{X: m.VelX, Y: m.VelY}
	e.Orient = m.Orient
}

func (r *Replica) applyDestroy(m *msg.Destroy) {
	e := r.Scene.Resolve(m.ID)
	if e == nil {
		return
	}
	e.Destroy()
	r.Tracker.Drop(m.ID)
	delete(r.interp, m.ID)
}

// applyScore runs the sequence check for the player's score stream, so a
// reordered or duplicated standing never regresses the roster.
func (r *Replica) applyScore(m *msg.Score) {
	if !r.Tracker.Accept(scoreStream(m.PlayerID), seq.FieldScore, m.Seq) {
		return
	}
	entry := r.Roster[m.PlayerID]
	if entry == nil {
		entry = &RosterEntry{}
		r.Roster[m.PlayerID] = entry
	}
	entry.Kills = m.Kills
	entry.Deaths = m.Deaths
	entry.Points = m.Points
}

// scoreStream keys a player's score stream in the tracker. The generation
// is pinned past anything the entity allocator hands out in a session, so
// the key never aliases an entity identity.
func scoreStream(playerID uint32) ident.NetworkID {
	return ident.MakeID(playerID, ^uint32(0))
}

// Avatar returns the local player's entity, nil until its Spawn arrives.
func (r *Replica) Avatar() *scene.Entity {
	if r.AvatarID.IsZero() {
		return nil
	}
	return r.Scene.Resolve(r.AvatarID)
}

// Reset drops all replicated state for a reconnect.
func (r *Replica) Reset() {
	r.Scene.Teardown()
	r.Tracker = seq.NewTracker(r.log)
	r.Roster = make(map[uint32]*RosterEntry, 16)
	r.interp = make(map[ident.NetworkID]*interpState, 64)
	r.PlayerID = 0
	r.AvatarID = 0
}
