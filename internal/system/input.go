// Package system holds the server's tick systems, one per simulation
// concern, ordered by the phase runner.
package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/gridfire/arena/internal/core/system"
	"github.com/gridfire/arena/internal/handler"
	gonet "github.com/gridfire/arena/internal/net"
	"github.com/gridfire/arena/internal/net/msg"
)

// InputSystem adopts new peers, drains their datagram queues through the
// message registry, and sweeps out peers that went silent.
type InputSystem struct {
	deps *handler.Deps
	reg  *msg.Registry
	log  *zap.Logger
}

func NewInputSystem(deps *handler.Deps, reg *msg.Registry) *InputSystem {
	return &InputSystem{deps: deps, reg: reg, log: deps.Log}
}

func (s *InputSystem) Phase() system.Phase { return system.PhaseInput }

func (s *InputSystem) Update(dt time.Duration) {
	// Adopt peers the endpoint saw for the first time.
adopting:
	for {
		select {
		case p := <-s.deps.Endpoint.NewPeers():
			s.deps.Peers.Add(p)
		default:
			break adopting
		}
	}

	// Settle credential checks that finished since last tick.
	s.deps.CompleteJoins()

	budget := s.deps.Config.Network.MaxPacketsPerTick
	s.deps.Peers.Each(func(p *gonet.Peer) {
		for i := 0; i < budget; i++ {
			select {
			case data := <-p.InQueue:
				if err := s.reg.Dispatch(p, p.State(), data); err != nil {
					s.log.Debug("dispatch failed",
						zap.Uint64("peer", p.ID),
						zap.Error(err),
					)
				}
			default:
				return
			}
		}
	})

	s.expireIdle()
}

// expireIdle removes peers that have not sent anything for the configured
// timeout. Players go through the normal leave path so the rest of the
// match hears about it.
func (s *InputSystem) expireIdle() {
	deadline := time.Now().Add(-s.deps.Config.Network.PeerTimeout).UnixNano()
	var idle []*gonet.Peer
	s.deps.Peers.Each(func(p *gonet.Peer) {
		if p.LastSeen() < deadline {
			idle = append(idle, p)
		}
	})
	for _, p := range idle {
		s.log.Info("peer timed out", zap.Uint64("peer", p.ID))
		if pl := s.deps.Session.PlayerByID(p.PlayerID); pl != nil {
			handler.DropPlayer(pl, s.deps)
		} else {
			s.deps.Peers.Remove(p)
			s.deps.Endpoint.Remove(p)
		}
	}
}
