package simulation

import (
	"github.com/fight-club/lockstep/internal/components"
	"github.com/fight-club/lockstep/internal/ecs"
	"github.com/fight-club/lockstep/internal/fixedmath"
	"github.com/fight-club/lockstep/internal/physics"
)

// ExplosionLifetime is pipeline step 8: advance explosion timers; on
// expiry, damage everything within the blast radius (a direct distance
// check rather than a spatial-index query, since explosions are rare and
// short-lived compared to the player/zombie population), then destroy the
// explosion entity.
func ExplosionLifetime(world *ecs.World, dt fixedmath.Fixed64) {
	var expired []ecs.Entity

	ecs.Iter2(world, func(e ecs.Entity, exp *components.Explosion, t *components.Transform2D) bool {
		exp.TimerRemaining = fixedmath.Max(fixedmath.Zero, exp.TimerRemaining.Sub(dt))
		if exp.TimerRemaining.Sign() > 0 {
			return true
		}
		if !exp.DamageApplied {
			exp.DamageApplied = true
			applyExplosionDamage(world, exp, t.Position)
		}
		expired = append(expired, e)
		return true
	})

	for _, e := range expired {
		world.Destroy(e)
	}
}

func applyExplosionDamage(world *ecs.World, exp *components.Explosion, center fixedmath.Vec2) {
	ecs.Iter2(world, func(e ecs.Entity, t *components.Transform2D, hp *components.HP) bool {
		if e == exp.Owner {
			return true
		}
		delta := t.Position.Sub(center)
		dist := delta.Magnitude()
		if dist.Cmp(exp.Radius) > 0 {
			return true
		}
		hp.Current -= exp.Damage
		if hp.Current <= 0 {
			ecs.Add(world, e, components.Death{Cause: components.DeathExplosion})
			return true
		}
		// Survivors get knocked away from the blast center; the queued
		// force is integrated by the next tick's physics step.
		dir := delta.Normalize()
		if dir.SqrMagnitude().Sign() != 0 {
			physics.ApplyForce(world, e, dir.Scale(fixedmath.FromInt(int64(exp.Damage))))
		}
		return true
	})
}
