package world

import "github.com/gridfire/arena/internal/scene"

// Collider is the collision collaborator the movement phase consults after
// integration. Implementations stay outside the entity update path so the
// arena shape can change without touching simulation code.
type Collider interface {
	// Resolve returns the corrected position for a circle of the given
	// radius that wants to be at pos.
	Resolve(pos scene.Vec2, radius float64) scene.Vec2
}

// ArenaBounds is the default collider: an axis-aligned rectangle from the
// origin. Entities are clamped so their whole circle stays inside.
type ArenaBounds struct {
	Width  float64
	Height float64
}

func (b ArenaBounds) Resolve(pos scene.Vec2, radius float64) scene.Vec2 {
	if pos.X < radius {
		pos.X = radius
	}
	if pos.Y < radius {
		pos.Y = radius
	}
	if pos.X > b.Width-radius {
		pos.X = b.Width - radius
	}
	if pos.Y > b.Height-radius {
		pos.Y = b.Height - radius
	}
	return pos
}

// Contains reports whether a point lies inside the arena.
func (b ArenaBounds) Contains(pos scene.Vec2) bool {
	return pos.X >= 0 && pos.Y >= 0 && pos.X <= b.Width && pos.Y <= b.Height
}
