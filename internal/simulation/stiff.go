package simulation

import (
	"github.com/fight-club/lockstep/internal/components"
	"github.com/fight-club/lockstep/internal/ecs"
	"github.com/fight-club/lockstep/internal/fixedmath"
)

// StiffTimers is pipeline step 9: decrement stiff (hit-stun) timers on
// every entity that carries one.
func StiffTimers(world *ecs.World, dt fixedmath.Fixed64) {
	ecs.Each[components.Stiff](world, func(e ecs.Entity, s *components.Stiff) bool {
		if s.Timer.Sign() > 0 {
			s.Timer = fixedmath.Max(fixedmath.Zero, s.Timer.Sub(dt))
		}
		return true
	})
}
