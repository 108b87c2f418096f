package spectate

import (
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/gridfire/arena/internal/core/system"
	"github.com/gridfire/arena/internal/scene"
	"github.com/gridfire/arena/internal/world"
)

// EntitySnap is one entity in a spectator frame.
type EntitySnap struct {
	ID     uint64  `msgpack:"id"`
	Kind   uint8   `msgpack:"k"`
	Owner  uint32  `msgpack:"o,omitempty"`
	X      float64 `msgpack:"x"`
	Y      float64 `msgpack:"y"`
	Orient float64 `msgpack:"a"`
}

// PlayerSnap is one scoreboard row in a spectator frame.
type PlayerSnap struct {
	ID     uint32 `msgpack:"id"`
	Name   string `msgpack:"n"`
	Kills  uint32 `msgpack:"k"`
	Deaths uint32 `msgpack:"d"`
	Points uint32 `msgpack:"p"`
}

// Snapshot is one complete spectator frame, msgpack-encoded on the wire.
type Snapshot struct {
	Tick     uint64       `msgpack:"t"`
	Entities []EntitySnap `msgpack:"e"`
	Players  []PlayerSnap `msgpack:"pl"`
}

// System samples the session every few simulation ticks and publishes the
// frame to the hub. It runs at the output phase, after the game broadcast.
type System struct {
	sess    *world.Session
	hub     *Hub
	divisor int
	tick    uint64
	log     *zap.Logger
}

func NewSystem(sess *world.Session, hub *Hub, divisor int) *System {
	if divisor < 1 {
		divisor = 1
	}
	return &System{sess: sess, hub: hub, divisor: divisor, log: sess.Log}
}

func (s *System) Phase() system.Phase { return system.PhaseOutput }

func (s *System) Update(dt time.Duration) {
	s.tick++
	if s.tick%uint64(s.divisor) != 0 {
		return
	}
	frame, err := msgpack.Marshal(s.build())
	if err != nil {
		s.log.Error("snapshot encode failed", zap.Error(err))
		return
	}
	s.hub.Publish(frame)
}

func (s *System) build() *Snapshot {
	snap := &Snapshot{Tick: s.tick}
	s.sess.Scene.Each(func(e *scene.Entity) {
		snap.Entities = append(snap.Entities, EntitySnap{
			ID:     uint64(e.ID),
			Kind:   uint8(e.Kind),
			Owner:  e.OwnerID,
			X:      e.Pos.X,
			Y:      e.Pos.Y,
			Orient: e.Orient,
		})
	})
	s.sess.AllPlayers(func(p *world.Player) {
		snap.Players = append(snap.Players, PlayerSnap{
			ID:     p.ID,
			Name:   p.Name,
			Kills:  p.Kills,
			Deaths: p.Deaths,
			Points: p.Points,
		})
	})
	return snap
}
