package system

import (
	"time"

	"github.com/gridfire/arena/internal/core/system"
	"github.com/gridfire/arena/internal/world"
)

// CleanupSystem retires entities queued for destruction during the tick.
// It runs last so no system observes a half-removed entity.
type CleanupSystem struct {
	sess *world.Session
}

func NewCleanupSystem(sess *world.Session) *CleanupSystem {
	return &CleanupSystem{sess: sess}
}

func (s *CleanupSystem) Phase() system.Phase { return system.PhaseCleanup }

func (s *CleanupSystem) Update(dt time.Duration) {
	s.sess.Scene.FlushDestroyed()
}
