package system

import (
	"github.com/gridfire/arena/internal/data"
	"github.com/gridfire/arena/internal/scene"
)

// ServerBehaviors builds the authoritative behavior table. Spawn and
// destroy announcements ride the scene's add/remove slots, so every path
// that creates or destroys an entity notifies clients without extra
// bookkeeping. Session teardown skips these slots on purpose.
func ServerBehaviors(bc *BroadcastSystem) scene.BehaviorTable {
	return scene.BehaviorTable{
		data.KindAvatar: {
			OnAdded:   bc.AnnounceSpawn,
			OnRemoved: bc.AnnounceDestroy,
			Update:    integrate,
		},
		data.KindProjectile: {
			OnAdded:   bc.AnnounceSpawn,
			OnRemoved: bc.AnnounceDestroy,
			Update:    updateProjectile,
		},
		data.KindCollectible: {
			OnAdded:   bc.AnnounceSpawn,
			OnRemoved: bc.AnnounceDestroy,
		},
	}
}

func integrate(e *scene.Entity, elapsed float64) {
	e.Pos = e.Pos.Add(e.Vel.Scale(elapsed))
}

func updateProjectile(e *scene.Entity, elapsed float64) {
	integrate(e, elapsed)
	e.TicksLeft--
	if e.TicksLeft <= 0 {
		e.Scene().MarkDestroy(e)
	}
}
