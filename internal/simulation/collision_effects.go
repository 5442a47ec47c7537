package simulation

import (
	"github.com/fight-club/lockstep/internal/components"
	"github.com/fight-club/lockstep/internal/ecs"
)

// CollisionEffects is pipeline step 7: react to this tick's Collision
// components. Bullets apply damage and self-destruct on their first
// contact; walls flip their placement trigger on first contact; barrels
// take bullet damage and queue an explosion on death.
func CollisionEffects(world *ecs.World) {
	applyBulletDamage(world)
	applyWallTriggers(world)
}

func applyBulletDamage(world *ecs.World) {
	var spent []ecs.Entity
	ecs.Iter2(world, func(e ecs.Entity, b *components.Bullet, c *components.Collision) bool {
		for i := 0; i < c.Count; i++ {
			target := c.Contacts[i]
			if target == b.Owner {
				continue
			}
			if hp, ok := ecs.GetPtr[components.HP](world, target); ok {
				hp.Current -= b.Damage
				if hp.Current <= 0 {
					ecs.Add(world, target, components.Death{Cause: components.DeathBulletHit})
					creditKill(world, b.Owner)
				}
				spent = append(spent, e)
				break
			}
			if barrel, ok := ecs.GetPtr[components.Barrel](world, target); ok {
				barrel.HP -= b.Damage
				if barrel.HP <= 0 {
					ecs.Add(world, target, components.Death{Cause: components.DeathBulletHit})
				}
				spent = append(spent, e)
				break
			}
			if wall, ok := ecs.GetPtr[components.Wall](world, target); ok {
				wall.HP -= b.Damage
				if wall.HP <= 0 {
					ecs.Add(world, target, components.Death{Cause: components.DeathBulletHit})
				}
				spent = append(spent, e)
				break
			}
		}
		return true
	})
	for _, e := range spent {
		world.Destroy(e)
	}
}

// creditKill bumps the shooter's team kill tally when a bullet finishes a
// target off.
func creditKill(world *ecs.World, owner ecs.Entity) {
	if team, ok := ecs.GetPtr[components.Team](world, owner); ok {
		team.Kills++
	}
}

func applyWallTriggers(world *ecs.World) {
	ecs.Iter2(world, func(e ecs.Entity, wp *components.WallPlacement, c *components.Collision) bool {
		if !wp.Triggered && c.Count > 0 {
			wp.Triggered = true
		}
		return true
	})
}
