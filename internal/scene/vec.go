package scene

import "math"

// Vec2 is a 2D position or velocity in arena units.
type Vec2 struct {
	X float64
	Y float64
}

func (v Vec2) Add(o Vec2) Vec2          { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2          { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2     { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Len() float64             { return math.Hypot(v.X, v.Y) }
func (v Vec2) DistTo(o Vec2) float64    { return v.Sub(o).Len() }

// Clamp limits the vector's length to max.
func (v Vec2) Clamp(max float64) Vec2 {
	l := v.Len()
	if l <= max || l == 0 {
		return v
	}
	return v.Scale(max / l)
}
