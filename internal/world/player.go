package world

import (
	gonet "github.com/gridfire/arena/internal/net"
	"github.com/gridfire/arena/internal/scene"
)

// Player holds in-memory data for a player currently in the match.
// Accessed only from the game loop goroutine, so no locks.
type Player struct {
	ID   uint32
	Name string
	Peer *gonet.Peer

	// Avatar is nil while the player waits to respawn. The avatar entity
	// carries this player's id as its OwnerID.
	Avatar *scene.Entity

	Kills  uint32
	Deaths uint32
	Points uint32

	// RespawnTicks counts down after death; the post-update phase respawns
	// the avatar when it reaches zero.
	RespawnTicks int

	// ScoreDirty marks that a Score message must go out this tick.
	ScoreDirty bool
}
