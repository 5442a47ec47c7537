package simulation

import (
	"log"

	"github.com/fight-club/lockstep/internal/components"
	"github.com/fight-club/lockstep/internal/ecs"
)

// Cleanup is pipeline step 11: clear per-tick Collision components so the
// next tick starts with an empty contact list. Overflowed contact buffers
// are surfaced here, once per tick, before the counters reset.
func Cleanup(world *ecs.World) {
	dropped := 0
	ecs.Each[components.Collision](world, func(e ecs.Entity, c *components.Collision) bool {
		dropped += c.Dropped
		c.Reset()
		return true
	})
	if dropped > 0 {
		log.Printf("simulation: %d collision contacts dropped this tick (8-slot cap)", dropped)
	}
}
