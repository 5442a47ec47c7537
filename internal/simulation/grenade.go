package simulation

import (
	"github.com/fight-club/lockstep/internal/components"
	"github.com/fight-club/lockstep/internal/ecs"
	"github.com/fight-club/lockstep/internal/fixedmath"
)

// GrenadeFuse advances every live grenade's fuse timer; on expiry it tags
// the grenade Death instead of destroying it directly, so DeathSystem
// stays the single place that turns a death into an Explosion (mirroring
// how Barrel does it).
func GrenadeFuse(world *ecs.World, dt fixedmath.Fixed64) {
	ecs.Each[components.Grenade](world, func(e ecs.Entity, g *components.Grenade) bool {
		if _, dying := ecs.Get[components.Death](world, e); dying {
			return true
		}
		g.FuseRemaining = fixedmath.Max(fixedmath.Zero, g.FuseRemaining.Sub(dt))
		if g.FuseRemaining.Sign() == 0 {
			ecs.Add(world, e, components.Death{Cause: components.DeathExplosion})
		}
		return true
	})
}
