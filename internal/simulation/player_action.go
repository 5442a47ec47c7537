package simulation

import (
	"github.com/fight-club/lockstep/internal/components"
	"github.com/fight-club/lockstep/internal/ecs"
	"github.com/fight-club/lockstep/internal/fixedmath"
)

// PlayerAction is pipeline step 2: consume action intents and spawn
// bullets/walls subject to the cooldown timers on the player's own
// component. Cooldowns tick down every frame regardless of whether the
// action fires.
func PlayerAction(world *ecs.World, cfg Config, dt fixedmath.Fixed64) {
	type spawn struct {
		owner   ecs.Entity
		pos     fixedmath.Vec2
		dir     fixedmath.Vec2
		place   bool
		grenade bool
	}
	var spawns []spawn

	ecs.Iter2(world, func(e ecs.Entity, p *components.Player, t *components.Transform2D) bool {
		p.ShootCooldown = fixedmath.Max(fixedmath.Zero, p.ShootCooldown.Sub(dt))
		p.PlaceCooldown = fixedmath.Max(fixedmath.Zero, p.PlaceCooldown.Sub(dt))
		p.GrenadeCooldown = fixedmath.Max(fixedmath.Zero, p.GrenadeCooldown.Sub(dt))
		if p.SpawnProtection.Sign() > 0 {
			p.SpawnProtection = fixedmath.Max(fixedmath.Zero, p.SpawnProtection.Sub(dt))
		}

		if p.Mode == components.PlayerModeDowned {
			return true
		}

		intent, ok := ecs.Get[components.Intent](world, e)
		if !ok {
			return true
		}

		if intent.Shoot && p.ShootCooldown.Sign() == 0 {
			p.ShootCooldown = cfg.ShootCooldown
			aim := intent.AimDir
			if aim.SqrMagnitude().Sign() == 0 {
				aim = fixedmath.NewVec2(fixedmath.One, fixedmath.Zero)
			}
			spawns = append(spawns, spawn{owner: e, pos: t.Position, dir: aim.Normalize()})
		}
		if intent.PlaceWall && p.PlaceCooldown.Sign() == 0 {
			p.PlaceCooldown = cfg.PlaceCooldown
			spawns = append(spawns, spawn{owner: e, pos: t.Position, place: true})
		}
		if intent.ThrowGrenade && p.GrenadeCooldown.Sign() == 0 {
			p.GrenadeCooldown = cfg.GrenadeCooldown
			aim := intent.AimDir
			if aim.SqrMagnitude().Sign() == 0 {
				aim = fixedmath.NewVec2(fixedmath.One, fixedmath.Zero)
			}
			spawns = append(spawns, spawn{owner: e, pos: t.Position, dir: aim.Normalize(), grenade: true})
		}
		return true
	})

	for _, s := range spawns {
		if s.grenade {
			throwGrenade(world, cfg, s.owner, s.pos, s.dir)
			continue
		}
		if s.place {
			wallEntity := world.CreateEntity()
			ecs.Add(world, wallEntity, components.Transform2D{Position: s.pos})
			ecs.Add(world, wallEntity, components.PhysicsBody{Static: true})
			ecs.Add(world, wallEntity, components.CollisionShape{
				Kind: components.ShapeBox, Width: fixedmath.One, Height: fixedmath.One,
			})
			ecs.Add(world, wallEntity, components.Wall{HP: 50})
			ecs.Add(world, wallEntity, components.WallPlacement{})
			ecs.Add(world, wallEntity, components.Collision{})
			continue
		}

		bullet := world.CreateEntity()
		ecs.Add(world, bullet, components.Transform2D{Position: s.pos})
		ecs.Add(world, bullet, components.Velocity{Linear: s.dir.Scale(cfg.BulletSpeed)})
		ecs.Add(world, bullet, components.PhysicsBody{Trigger: true, Layer: LayerBullet})
		ecs.Add(world, bullet, components.CollisionShape{Kind: components.ShapeCircle, Radius: fixedmath.Half})
		ecs.Add(world, bullet, components.Bullet{Owner: s.owner, Velocity: s.dir.Scale(cfg.BulletSpeed), Damage: cfg.BulletDamage, Lifetime: cfg.BulletLifetime})
		ecs.Add(world, bullet, components.Collision{})
	}
}

// throwGrenade spawns a 3D grenade entity arcing away from the thrower:
// dir (a 2D ground-plane direction) becomes the X/Z throw velocity, with
// a fixed upward component for the arc, and a starting height of one
// unit so it has somewhere to fall from.
func throwGrenade(world *ecs.World, cfg Config, owner ecs.Entity, pos, dir fixedmath.Vec2) {
	start := fixedmath.NewVec3(pos.X, fixedmath.One, pos.Y)
	vel := fixedmath.NewVec3(dir.X, fixedmath.Zero, dir.Y).Scale(cfg.GrenadeThrowSpeed)
	vel.Y = cfg.GrenadeThrowSpeed.Div(fixedmath.Two)

	grenade := world.CreateEntity()
	ecs.Add(world, grenade, components.Transform3D{Position: start})
	ecs.Add(world, grenade, components.Velocity3D{Linear: vel})
	ecs.Add(world, grenade, components.PhysicsBody{
		Mass:        fixedmath.One,
		GravityOn:   true,
		Restitution: fixedmath.Half,
		Friction:    fixedmath.Half,
		Damping:     fixedmath.FromRaw(fixedmath.One.Raw() / 10),
		Layer:       LayerGrenade,
	})
	ecs.Add(world, grenade, components.NewSphereShape(fixedmath.Half))
	ecs.Add(world, grenade, components.Grenade{
		Owner:         owner,
		FuseRemaining: cfg.GrenadeFuseDuration,
		Radius:        cfg.GrenadeRadius,
		Damage:        cfg.GrenadeDamage,
	})
	ecs.Add(world, grenade, components.Collision{})
}

