package system

import (
	"math"
	"time"

	"github.com/gridfire/arena/internal/core/system"
	"github.com/gridfire/arena/internal/data"
	"github.com/gridfire/arena/internal/scene"
	"github.com/gridfire/arena/internal/world"
)

// MovementSystem turns pending inputs into avatar velocities, advances
// every entity one tick, and resolves collisions against the arena.
type MovementSystem struct {
	sess *world.Session
}

func NewMovementSystem(sess *world.Session) *MovementSystem {
	return &MovementSystem{sess: sess}
}

func (s *MovementSystem) Phase() system.Phase { return system.PhaseUpdate }

func (s *MovementSystem) Update(dt time.Duration) {
	s.applyInputs()
	s.sess.Scene.Update(dt.Seconds())
	s.resolveCollisions()
}

// applyInputs maps each player's newest input onto its avatar. The move
// vector is normalized so diagonals are no faster than axes.
func (s *MovementSystem) applyInputs() {
	s.sess.AllPlayers(func(p *world.Player) {
		e := p.Avatar
		if e == nil {
			return
		}
		in := p.Peer.Input
		move := scene.Vec2{X: in.MoveX, Y: in.MoveY}
		if l := move.Len(); l > 1 {
			move = move.Scale(1 / l)
		}
		e.Vel = move.Scale(e.Def.Movement.MaxSpeed)
		e.Orient = normalizeAngle(in.Aim)
	})
}

// resolveCollisions clamps movers back inside the arena. A projectile
// that touches the boundary is spent.
func (s *MovementSystem) resolveCollisions() {
	s.sess.Scene.Each(func(e *scene.Entity) {
		r := e.Def.Collision.Radius
		fixed := s.sess.Collider.Resolve(e.Pos, r)
		if fixed == e.Pos {
			return
		}
		if e.Kind == data.KindProjectile {
			s.sess.Scene.MarkDestroy(e)
			return
		}
		e.Pos = fixed
	})
}

func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
