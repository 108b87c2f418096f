package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain datagram queues
	PhasePreUpdate               // 1: dispatch last tick's events
	PhaseUpdate                  // 2: simulation (movement, combat)
	PhasePostUpdate              // 3: respawn, pickups, scores
	PhaseOutput                  // 4: diff + broadcast + flush sends
	PhasePersist                 // 5: periodic database saves
	PhaseCleanup                 // 6: destroy queued entities
)

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
