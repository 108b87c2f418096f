// Package handler wires inbound message handling for the server. Handlers
// run on the game loop goroutine via the message registry's dispatch.
package handler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gridfire/arena/internal/config"
	"github.com/gridfire/arena/internal/core/ident"
	gonet "github.com/gridfire/arena/internal/net"
	"github.com/gridfire/arena/internal/net/msg"
	"github.com/gridfire/arena/internal/persist"
	"github.com/gridfire/arena/internal/world"
)

// AccountStore is the credential backend behind the handshake.
// *persist.AccountRepo implements it; nil means an open server.
type AccountStore interface {
	Load(ctx context.Context, name string) (*persist.AccountRow, error)
	Create(ctx context.Context, name, rawPassword string) (*persist.AccountRow, error)
	ValidatePassword(hash, rawPassword string) bool
	TouchLastSeen(ctx context.Context, name string) error
}

// Deps bundles everything handlers need.
type Deps struct {
	Session  *world.Session
	Endpoint *gonet.Endpoint
	Peers    *gonet.PeerSet
	Accounts AccountStore // nil when the database is disabled
	Config   *config.Config
	Log      *zap.Logger

	joins chan joinResult
}

type joinResult struct {
	peer *gonet.Peer
	name string
	ok   bool
}

// RegisterAll binds every server-side message handler.
func RegisterAll(reg *msg.Registry, deps *Deps) {
	reg.Register(msg.TagHello, []msg.ConnState{msg.StateHandshake, msg.StateInGame},
		func(peer any, m msg.Message) {
			HandleHello(peer.(*gonet.Peer), m.(*msg.Hello), deps)
		})
	reg.Register(msg.TagPlayerInput, []msg.ConnState{msg.StateInGame},
		func(peer any, m msg.Message) {
			HandlePlayerInput(peer.(*gonet.Peer), m.(*msg.PlayerInput), deps)
		})
	reg.Register(msg.TagPing, []msg.ConnState{msg.StateHandshake, msg.StateInGame},
		func(peer any, m msg.Message) {
			peer.(*gonet.Peer).Send(msg.Encode(&msg.Pong{Nonce: m.(*msg.Ping).Nonce}))
		})
	reg.Register(msg.TagBye, []msg.ConnState{msg.StateHandshake, msg.StateInGame},
		func(peer any, m msg.Message) {
			HandleBye(peer.(*gonet.Peer), deps)
		})
}

// HandleHello admits a peer into the match. Hello is repeated by clients
// until acknowledged, so a peer that already joined just gets its Welcome
// again.
func HandleHello(peer *gonet.Peer, m *msg.Hello, deps *Deps) {
	sess := deps.Session

	if peer.PlayerID != 0 {
		if p := sess.PlayerByID(peer.PlayerID); p != nil {
			sendWelcome(peer, p, deps)
		}
		return
	}
	if peer.AuthPending {
		return // answered when the credential check lands
	}

	if m.Version != msg.ProtocolVersion {
		peer.Send(msg.Encode(&msg.Reject{Reason: "protocol version mismatch"}))
		return
	}
	if m.Name == "" {
		peer.Send(msg.Encode(&msg.Reject{Reason: "empty player name"}))
		return
	}
	if len(sess.Players) >= deps.Config.Game.MaxPlayers {
		peer.Send(msg.Encode(&msg.Reject{Reason: "server full"}))
		return
	}

	if deps.Accounts == nil {
		finishJoin(peer, m.Name, deps)
		return
	}

	// bcrypt and the account lookup are slow, so they run off the game
	// loop; CompleteJoins picks up the verdict on a later tick.
	if deps.joins == nil {
		deps.joins = make(chan joinResult, 32)
	}
	peer.AuthPending = true
	name, password := m.Name, m.Password
	go func() {
		deps.joins <- joinResult{peer: peer, name: name, ok: authenticate(name, password, deps)}
	}()
}

// CompleteJoins drains finished credential checks and admits or rejects
// the waiting peers. Runs on the game loop at the start of each tick.
func (d *Deps) CompleteJoins() {
	if d.joins == nil {
		return
	}
	for {
		select {
		case r := <-d.joins:
			r.peer.AuthPending = false
			if r.peer.State() != msg.StateHandshake {
				continue // peer dropped while the check ran
			}
			if !r.ok {
				r.peer.Send(msg.Encode(&msg.Reject{Reason: "bad credentials"}))
				continue
			}
			if len(d.Session.Players) >= d.Config.Game.MaxPlayers {
				r.peer.Send(msg.Encode(&msg.Reject{Reason: "server full"}))
				continue
			}
			finishJoin(r.peer, r.name, d)
		default:
			return
		}
	}
}

func finishJoin(peer *gonet.Peer, name string, deps *Deps) {
	sess := deps.Session
	p := sess.AddPlayer(peer, name)
	peer.SetState(msg.StateInGame)
	sendWelcome(peer, p, deps)

	// Tell everyone else about the newcomer.
	joined := msg.Encode(&msg.PlayerJoined{PlayerID: p.ID, Name: p.Name})
	sess.AllPlayers(func(other *world.Player) {
		if other.ID != p.ID {
			other.Peer.Send(joined)
		}
	})

	// The new client needs the current roster; live entities follow via
	// the broadcast system's spawn announcements and resync pass.
	sess.AllPlayers(func(other *world.Player) {
		if other.ID != p.ID {
			peer.Send(msg.Encode(&msg.PlayerJoined{PlayerID: other.ID, Name: other.Name}))
		}
	})
}

func sendWelcome(peer *gonet.Peer, p *world.Player, deps *Deps) {
	var avatarID ident.NetworkID
	if p.Avatar != nil {
		avatarID = p.Avatar.ID
	}
	peer.Send(msg.Encode(&msg.Welcome{
		PlayerID:   p.ID,
		AvatarID:   avatarID,
		TickMillis: uint32(deps.Config.Network.TickRate / time.Millisecond),
		ArenaW:     deps.Config.Game.ArenaWidth,
		ArenaH:     deps.Config.Game.ArenaHeight,
	}))
}

// authenticate runs off the game loop. It touches only the account store
// and the logger, both safe for concurrent use.
func authenticate(name, password string, deps *Deps) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	row, err := deps.Accounts.Load(ctx, name)
	if err != nil {
		deps.Log.Error("account lookup failed", zap.String("name", name), zap.Error(err))
		return false
	}
	if row == nil {
		if _, err := deps.Accounts.Create(ctx, name, password); err != nil {
			deps.Log.Error("account create failed", zap.String("name", name), zap.Error(err))
			return false
		}
		return true
	}
	if !deps.Accounts.ValidatePassword(row.PasswordHash, password) {
		return false
	}
	if err := deps.Accounts.TouchLastSeen(ctx, name); err != nil {
		deps.Log.Warn("last-seen update failed", zap.String("name", name), zap.Error(err))
	}
	return true
}

// HandlePlayerInput keeps only the newest input per client; anything with
// a non-increasing sequence number is a stale or duplicated datagram.
func HandlePlayerInput(peer *gonet.Peer, m *msg.PlayerInput, deps *Deps) {
	if m.Seq <= peer.LastInputSeq {
		return
	}
	peer.LastInputSeq = m.Seq
	peer.Input = gonet.InputState{
		MoveX: clampUnit(m.MoveX),
		MoveY: clampUnit(m.MoveY),
		Aim:   m.Aim,
		Fire:  m.Fire,
	}
}

// HandleBye removes the player immediately instead of waiting for the
// idle timeout.
func HandleBye(peer *gonet.Peer, deps *Deps) {
	peer.SetState(msg.StateDisconnecting)
	if p := deps.Session.PlayerByID(peer.PlayerID); p != nil {
		DropPlayer(p, deps)
	} else {
		deps.Peers.Remove(peer)
		deps.Endpoint.Remove(peer)
	}
}

// DropPlayer is the single leave path, shared by Bye and the idle-timeout
// sweep: announce, remove from the session, forget the peer.
func DropPlayer(p *world.Player, deps *Deps) {
	deps.Session.RemovePlayer(p)
	left := msg.Encode(&msg.PlayerLeft{PlayerID: p.ID})
	deps.Session.AllPlayers(func(other *world.Player) {
		other.Peer.Send(left)
	})
	deps.Peers.Remove(p.Peer)
	deps.Endpoint.Remove(p.Peer)
}

func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
