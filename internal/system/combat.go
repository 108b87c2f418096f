package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/gridfire/arena/internal/core/event"
	"github.com/gridfire/arena/internal/core/system"
	"github.com/gridfire/arena/internal/data"
	"github.com/gridfire/arena/internal/scene"
	"github.com/gridfire/arena/internal/world"
)

// CombatSystem fires weapons, detects projectile hits and pickups, and
// settles kills. It runs after movement so overlap tests see this tick's
// positions.
type CombatSystem struct {
	sess         *world.Session
	respawnTicks int
	log          *zap.Logger

	avatars      []*scene.Entity // per-tick scratch
	projectiles  []*scene.Entity
	collectibles []*scene.Entity
}

func NewCombatSystem(sess *world.Session, respawnTicks int) *CombatSystem {
	if respawnTicks < 1 {
		respawnTicks = 1
	}
	return &CombatSystem{sess: sess, respawnTicks: respawnTicks, log: sess.Log}
}

func (s *CombatSystem) Phase() system.Phase { return system.PhaseUpdate }

func (s *CombatSystem) Update(dt time.Duration) {
	s.fireWeapons()
	s.collect()
	s.resolveHits()
	s.resolvePickups()
}

func (s *CombatSystem) fireWeapons() {
	s.sess.AllPlayers(func(p *world.Player) {
		e := p.Avatar
		if e == nil {
			return
		}
		if e.FireCooldown > 0 {
			e.FireCooldown--
		}
		if p.Peer.Input.Fire && e.FireCooldown == 0 {
			s.sess.SpawnProjectile(e, e.Orient)
			e.FireCooldown = e.Def.Weapon.CooldownTicks
		}
	})
}

func (s *CombatSystem) collect() {
	s.avatars = s.avatars[:0]
	s.projectiles = s.projectiles[:0]
	s.collectibles = s.collectibles[:0]
	s.sess.Scene.Each(func(e *scene.Entity) {
		switch e.Kind {
		case data.KindAvatar:
			s.avatars = append(s.avatars, e)
		case data.KindProjectile:
			s.projectiles = append(s.projectiles, e)
		case data.KindCollectible:
			s.collectibles = append(s.collectibles, e)
		}
	})
}

func (s *CombatSystem) resolveHits() {
	for _, proj := range s.projectiles {
		if !proj.Alive() {
			continue
		}
		for _, av := range s.avatars {
			if !av.Alive() || av.OwnerID == proj.OwnerID || av.Health <= 0 {
				continue
			}
			if !overlap(proj, av) {
				continue
			}
			av.Health -= proj.Health // projectile health doubles as damage
			s.sess.Scene.MarkDestroy(proj)
			if av.Health <= 0 {
				s.settleKill(proj.OwnerID, av)
			}
			break
		}
	}
}

func (s *CombatSystem) settleKill(killerID uint32, victim *scene.Entity) {
	victimPlayer := s.sess.PlayerByID(victim.OwnerID)
	if victimPlayer != nil {
		victimPlayer.Deaths++
		victimPlayer.Avatar = nil
		victimPlayer.RespawnTicks = s.respawnTicks
		victimPlayer.ScoreDirty = true
	}
	if killer := s.sess.PlayerByID(killerID); killer != nil {
		killer.Kills++
		killer.Points += uint32(victim.Def.Points)
		killer.ScoreDirty = true
	}
	s.sess.Scene.MarkDestroy(victim)
	event.Emit(s.sess.Bus, event.Kill{
		KillerPlayerID: killerID,
		VictimPlayerID: victim.OwnerID,
	})
	s.log.Info("kill",
		zap.Uint32("killer", killerID),
		zap.Uint32("victim", victim.OwnerID),
	)
}

func (s *CombatSystem) resolvePickups() {
	for _, c := range s.collectibles {
		if !c.Alive() {
			continue
		}
		for _, av := range s.avatars {
			if !av.Alive() || av.Health <= 0 {
				continue
			}
			if !overlap(c, av) {
				continue
			}
			if p := s.sess.PlayerByID(av.OwnerID); p != nil {
				p.Points += uint32(c.Def.Points)
				p.ScoreDirty = true
				event.Emit(s.sess.Bus, event.Pickup{
					PlayerID: p.ID,
					Points:   c.Def.Points,
				})
			}
			s.sess.Scene.MarkDestroy(c)
			break
		}
	}
}

func overlap(a, b *scene.Entity) bool {
	reach := a.Def.Collision.Radius + b.Def.Collision.Radius
	return a.Pos.DistTo(b.Pos) < reach
}
