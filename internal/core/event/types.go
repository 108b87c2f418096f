package event

import "github.com/gridfire/arena/internal/core/ident"

type PlayerJoined struct {
	PlayerID uint32
	Name     string
}

type PlayerLeft struct {
	PlayerID uint32
}

type EntityDestroyed struct {
	ID ident.NetworkID
}

// Kill is emitted when a projectile brings an avatar to zero health.
type Kill struct {
	KillerPlayerID uint32
	VictimPlayerID uint32
}

// Pickup is emitted when an avatar collects a collectible.
type Pickup struct {
	PlayerID uint32
	Points   int
}
