package system

import (
	"time"

	"github.com/gridfire/arena/internal/core/system"
	"github.com/gridfire/arena/internal/data"
	"github.com/gridfire/arena/internal/world"
)

// MaintainSystem runs the slow housekeeping after the simulation settles:
// respawn countdowns and keeping the collectible population topped up.
type MaintainSystem struct {
	sess *world.Session
}

func NewMaintainSystem(sess *world.Session) *MaintainSystem {
	return &MaintainSystem{sess: sess}
}

func (s *MaintainSystem) Phase() system.Phase { return system.PhasePostUpdate }

func (s *MaintainSystem) Update(dt time.Duration) {
	s.sess.AllPlayers(func(p *world.Player) {
		if p.Avatar != nil {
			return
		}
		p.RespawnTicks--
		if p.RespawnTicks <= 0 {
			s.sess.SpawnAvatar(p)
		}
	})

	want := s.sess.Cfg.CollectibleCap
	for have := s.sess.CountKind(data.KindCollectible); have < want; have++ {
		s.sess.SpawnCollectible()
	}
}
