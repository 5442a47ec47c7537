package simulation

import (
	"github.com/fight-club/lockstep/internal/components"
	"github.com/fight-club/lockstep/internal/ecs"
	"github.com/fight-club/lockstep/internal/fixedmath"
)

// Movement is pipeline step 5: copy each player's Intent.Move into its
// Velocity component. PhysicsStep (step 6) performs the actual
// integration; this step only sets the target velocity.
func Movement(world *ecs.World) {
	ecs.Iter2(world, func(e ecs.Entity, p *components.Player, v *components.Velocity) bool {
		if p.Mode == components.PlayerModeDowned {
			v.Linear = fixedmath.Vec2{}
			return true
		}
		if stiff, ok := ecs.Get[components.Stiff](world, e); ok && stiff.Timer.Sign() > 0 {
			// Hit-stun: the player holds still until the timer runs out.
			v.Linear = fixedmath.Vec2{}
			return true
		}
		intent, ok := ecs.Get[components.Intent](world, e)
		if !ok {
			return true
		}
		v.Linear = intent.Move
		return true
	})
}
