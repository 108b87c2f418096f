package system

import (
	"time"

	"github.com/gridfire/arena/internal/core/event"
	"github.com/gridfire/arena/internal/core/system"
)

// EventSystem rotates the session bus at tick start and delivers last
// tick's events to their subscribers.
type EventSystem struct {
	bus *event.Bus
}

func NewEventSystem(bus *event.Bus) *EventSystem {
	return &EventSystem{bus: bus}
}

func (s *EventSystem) Phase() system.Phase { return system.PhasePreUpdate }

func (s *EventSystem) Update(dt time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
