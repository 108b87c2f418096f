package client

import (
	"math"

	"github.com/gridfire/arena/internal/scene"
)

// interpState blends an entity's rendered transform from the previous
// authoritative snapshot toward the newest one, hiding the stepwise
// arrival of transform updates.
type interpState struct {
	prev         scene.Vec2
	target       scene.Vec2
	prevOrient   float64
	targetOrient float64
	alpha        float64 // 0 at the last update, 1 when fully caught up
}

func newInterpState(pos scene.Vec2, orient float64) *interpState {
	return &interpState{prev: pos, target: pos, prevOrient: orient, targetOrient: orient, alpha: 1}
}

// retarget starts a new blend from the currently rendered transform.
func (st *interpState) retarget(fromPos scene.Vec2, fromOrient float64, toPos scene.Vec2, toOrient float64) {
	st.prev = st.pos(fromPos)
	st.prevOrient = st.orient(fromOrient)
	st.target = toPos
	st.targetOrient = toOrient
	st.alpha = 0
}

// advance moves the blend forward by step (a fraction of the server tick
// interval).
func (st *interpState) advance(step float64) {
	st.alpha += step
	if st.alpha > 1 {
		st.alpha = 1
	}
}

// pos returns the rendered position; fallback is used when the state has
// fully caught up (the entity's authoritative position).
func (st *interpState) pos(fallback scene.Vec2) scene.Vec2 {
	if st.alpha >= 1 {
		return fallback
	}
	return scene.Vec2{
		X: st.prev.X + (st.target.X-st.prev.X)*st.alpha,
		Y: st.prev.Y + (st.target.Y-st.prev.Y)*st.alpha,
	}
}

// orient blends angles along the short way around the circle.
func (st *interpState) orient(fallback float64) float64 {
	if st.alpha >= 1 {
		return fallback
	}
	d := math.Mod(st.targetOrient-st.prevOrient, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	}
	if d < -math.Pi {
		d += 2 * math.Pi
	}
	return st.prevOrient + d*st.alpha
}
