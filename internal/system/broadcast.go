package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/gridfire/arena/internal/config"
	"github.com/gridfire/arena/internal/core/event"
	"github.com/gridfire/arena/internal/core/ident"
	"github.com/gridfire/arena/internal/core/system"
	gonet "github.com/gridfire/arena/internal/net"
	"github.com/gridfire/arena/internal/net/msg"
	"github.com/gridfire/arena/internal/scene"
	"github.com/gridfire/arena/internal/world"
)

// BroadcastSystem is the output phase: every tick it re-sends each live
// entity's transform, stamped with a fresh per-entity sequence number.
// State is repeated rather than retransmitted: a lost datagram is
// superseded by the next tick's broadcast, and a periodic full resync
// repairs clients that missed a spawn entirely.
type BroadcastSystem struct {
	ep    *gonet.Endpoint
	peers *gonet.PeerSet
	sess  *world.Session
	log   *zap.Logger

	outSeq   map[ident.NetworkID]uint32
	scoreSeq map[uint32]uint32

	resyncTicks int
	countdown   int
}

func NewBroadcastSystem(ep *gonet.Endpoint, peers *gonet.PeerSet, netCfg config.NetworkConfig, log *zap.Logger) *BroadcastSystem {
	resync := int(netCfg.ResyncInterval / netCfg.TickRate)
	if resync < 1 {
		resync = 1
	}
	return &BroadcastSystem{
		ep:          ep,
		peers:       peers,
		log:         log,
		outSeq:      make(map[ident.NetworkID]uint32, 128),
		scoreSeq:    make(map[uint32]uint32, 16),
		resyncTicks: resync,
		countdown:   resync,
	}
}

// Bind attaches the session. Construction is two-step because the session's
// behavior table needs the broadcaster for its add/remove slots.
func (b *BroadcastSystem) Bind(sess *world.Session) {
	b.sess = sess
	event.Subscribe(sess.Bus, func(e event.PlayerLeft) {
		delete(b.scoreSeq, e.PlayerID)
	})
}

func (b *BroadcastSystem) Phase() system.Phase { return system.PhaseOutput }

// AnnounceSpawn tells every client about a new entity. Invoked from the
// scene's OnAdded slot.
func (b *BroadcastSystem) AnnounceSpawn(e *scene.Entity) {
	b.each(msg.Encode(spawnMsg(e)))
}

// AnnounceDestroy tells every client an entity is gone and drops its
// per-entity stream state. Invoked from the scene's OnRemoved slot.
func (b *BroadcastSystem) AnnounceDestroy(e *scene.Entity) {
	delete(b.outSeq, e.ID)
	b.each(msg.Encode(&msg.Destroy{ID: e.ID}))
}

func (b *BroadcastSystem) Update(dt time.Duration) {
	b.countdown--
	resync := b.countdown <= 0
	if resync {
		b.countdown = b.resyncTicks
	}

	b.sess.Scene.Each(func(e *scene.Entity) {
		if resync {
			b.each(msg.Encode(spawnMsg(e)))
		}
		b.outSeq[e.ID]++
		b.each(msg.Encode(&msg.UpdateTransform{
			ID:     e.ID,
			Seq:    b.outSeq[e.ID],
			X:      e.Pos.X,
			Y:      e.Pos.Y,
			Orient: e.Orient,
			VelX:   e.Vel.X,
			VelY:   e.Vel.Y,
		}))
	})

	b.sess.AllPlayers(func(p *world.Player) {
		if !p.ScoreDirty {
			return
		}
		p.ScoreDirty = false
		b.scoreSeq[p.ID]++
		b.each(msg.Encode(&msg.Score{
			PlayerID: p.ID,
			Seq:      b.scoreSeq[p.ID],
			Kills:    p.Kills,
			Deaths:   p.Deaths,
			Points:   p.Points,
		}))
	})

	// Handshake peers have Welcome/Reject replies buffered too, so every
	// adopted peer gets flushed, not just players.
	b.peers.Each(func(p *gonet.Peer) {
		p.FlushOutput(b.ep)
	})
}

// each buffers one encoded message for every in-game peer.
func (b *BroadcastSystem) each(data []byte) {
	b.peers.Each(func(p *gonet.Peer) {
		if p.State() == msg.StateInGame {
			p.Send(data)
		}
	})
}

func spawnMsg(e *scene.Entity) *msg.Spawn {
	return &msg.Spawn{
		ID:      e.ID,
		Kind:    byte(e.Kind),
		OwnerID: e.OwnerID,
		X:       e.Pos.X,
		Y:       e.Pos.Y,
		Orient:  e.Orient,
		VelX:    e.Vel.X,
		VelY:    e.Vel.Y,
	}
}
