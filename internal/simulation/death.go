package simulation

import (
	"github.com/fight-club/lockstep/internal/components"
	"github.com/fight-club/lockstep/internal/ecs"
	"github.com/fight-club/lockstep/internal/fixedmath"
)

// DeathSystem is pipeline step 10: for every entity tagged Death, run the
// type-specific death effect (a barrel spawns an Explosion; a player
// drops into Downed mode instead of being destroyed), then destroy
// anything that isn't a player.
func DeathSystem(world *ecs.World) {
	var dying []ecs.Entity
	ecs.Each[components.Death](world, func(e ecs.Entity, _ *components.Death) bool {
		dying = append(dying, e)
		return true
	})

	var toDestroy []ecs.Entity
	var revived []ecs.Entity

	for _, e := range dying {
		if barrel, ok := ecs.Get[components.Barrel](world, e); ok {
			spawnExplosion(world, e, barrel)
		}
		if grenade, ok := ecs.Get[components.Grenade](world, e); ok {
			spawnGrenadeExplosion(world, e, grenade)
		}

		if p, ok := ecs.GetPtr[components.Player](world, e); ok {
			p.Mode = components.PlayerModeDowned
			revived = append(revived, e)
			continue
		}

		toDestroy = append(toDestroy, e)
	}

	for _, e := range revived {
		ecs.Remove[components.Death](world, e)
	}
	for _, e := range toDestroy {
		world.Destroy(e)
	}
}

// spawnGrenadeExplosion projects the grenade's 3D position onto the
// ground plane (X, Z become the 2D explosion's X, Y) and spawns the same
// Explosion entity a Barrel's death would, reusing ExplosionLifetime
// unchanged for the detonation.
func spawnGrenadeExplosion(world *ecs.World, source ecs.Entity, grenade components.Grenade) {
	transform, ok := ecs.Get[components.Transform3D](world, source)
	if !ok {
		return
	}
	ground := fixedmath.NewVec2(transform.Position.X, transform.Position.Z)
	explosion := world.CreateEntity()
	ecs.Add(world, explosion, components.Transform2D{Position: ground})
	ecs.Add(world, explosion, components.Explosion{
		Radius:         grenade.Radius,
		Damage:         grenade.Damage,
		TimerRemaining: fixedmath.Zero,
		Owner:          grenade.Owner,
	})
}

func spawnExplosion(world *ecs.World, source ecs.Entity, barrel components.Barrel) {
	transform, ok := ecs.Get[components.Transform2D](world, source)
	if !ok {
		return
	}
	explosion := world.CreateEntity()
	ecs.Add(world, explosion, components.Transform2D{Position: transform.Position})
	ecs.Add(world, explosion, components.Explosion{
		Radius:         barrel.ExplosionRadius,
		Damage:         barrel.ExplosionDamage,
		TimerRemaining: fixedmath.Zero,
		Owner:          source,
	})
}
